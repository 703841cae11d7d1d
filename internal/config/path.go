package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

const (
	fileName    = "roomkit.toml"
	appsDirName = "apps"
	historyName = "history.json"
)

func Dir() string {
	if override := os.Getenv("ROOMKIT_CONFIG_DIR"); override != "" {
		return override
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ".roomkit"
	}

	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "roomkit")
	case "windows":
		return filepath.Join(home, "AppData", "Roaming", "roomkit")
	default:
		return filepath.Join(home, ".config", "roomkit")
	}
}

// FilePath is the default location of the host configuration file.
func FilePath() string {
	return filepath.Join(Dir(), fileName)
}

// HistoryPath is where finished runs are recorded.
func HistoryPath() string {
	return filepath.Join(Dir(), historyName)
}

// AppsDir returns the folder searched for apps given by bare name.
func AppsDir() string {
	if override := os.Getenv("ROOMKIT_APPS_DIR"); override != "" {
		return override
	}
	return filepath.Join(Dir(), appsDirName)
}

// ResolveApp turns an app argument into a script path. Existing paths are
// returned unchanged; a bare name such as "tipgoal" is looked up in AppsDir.
func ResolveApp(arg string) string {
	if _, err := os.Stat(arg); err == nil {
		return arg
	}
	if strings.ContainsAny(arg, `/\`) {
		return arg
	}
	name := arg
	if filepath.Ext(name) == "" {
		name += ".js"
	}
	return filepath.Join(AppsDir(), name)
}
