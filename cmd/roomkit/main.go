package main

import (
	"fmt"
	"os"

	"github.com/roomkit/roomkit/internal/cli"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	root := cli.NewRootCommand(cli.BuildInfo{Version: version, Commit: commit, Date: date})
	if err := root.Execute(); err != nil {
		if !cli.Reported(err) {
			fmt.Fprintf(os.Stderr, "roomkit: %v\n", err)
		}
		os.Exit(1)
	}
}
