package paths

import (
	"path/filepath"

	"github.com/adrg/xdg"
)

const (

	// Name used for directory and file naming.
	toolName = "cherryctl"

	// Name of the project-level configuration file.
	ProjectConfigName = "cherryctl.yaml"
)

// Path to the directory holding user-level configuration.
//
//	Linux:   $XDG_CONFIG_HOME/cherryctl
//	macOS:   ~/Library/Application Support/cherryctl
func Config() string {
	return filepath.Join(xdg.ConfigHome, toolName)
}

// Path to the user-level configuration file, used when the project does not
// carry its own.
func UserConfigFile() string {
	return filepath.Join(Config(), "config.yaml")
}

// Path to the project-level configuration file inside dir.
func ProjectConfigFile(dir string) string {
	return filepath.Join(dir, ProjectConfigName)
}
