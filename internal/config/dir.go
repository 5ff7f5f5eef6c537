// Package config provides the per-user configuration directory and the
// key/value store kept inside it.
package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// Dir returns the ideabook configuration directory.
//
// Resolution:
//   - $IDEABOOK_CONFIG_HOME if set (explicit override)
//   - $XDG_CONFIG_HOME/ideabook if set (respects XDG on any platform)
//   - %AppData%/ideabook on Windows
//   - ~/.config/ideabook on macOS and Linux
func Dir() string {
	if dir := os.Getenv("IDEABOOK_CONFIG_HOME"); dir != "" {
		return dir
	}

	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "ideabook")
	}

	if runtime.GOOS == "windows" {
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "ideabook")
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "ideabook")
}
