package initcmd

import "io/fs"

const (
	DefaultDir      = "."
	DefaultName     = "app"
	DefaultTemplate = "standard"
)

// appPlaceholder stands for the app name in template paths and contents.
const (
	appPlaceholder   = "{{app}}"
	placeholderChars = "{}"
)

const (
	fileApp        = appPlaceholder + ".js"
	fileScenario   = "scenario.yaml"
	fileSettings   = "settings.yaml"
	fileConfig     = "roomkit.toml"
	fileEnvExample = ".env.example"
	fileHelp       = "ROOMKIT.md"
	gitignoreFile  = ".gitignore"
	gitignoreEntry = ".env"
)

const (
	dirPerm  fs.FileMode = 0o755
	filePerm fs.FileMode = 0o644
)

const tempPattern = ".roomkit-*"
