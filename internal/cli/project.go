package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/cherryrecorder/cherryctl/internal/paths"
	"github.com/cherryrecorder/cherryctl/internal/project"
	"github.com/spf13/afero"
)

// The project a command operates on.
type workspace struct {
	dir string          // Absolute project directory.
	cfg *project.Config // Loaded settings.
	fs  afero.Fs        // Filesystem rooted at dir.
}

// Resolves the project directory and loads its settings.
func openWorkspace(dir, configFile string, getenv func(string) string) (*workspace, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWorkspace, err)
	}

	if configFile == "" {
		configFile = discoverConfig(abs)
	}
	slog.Debug("loading configuration", "dir", abs, "file", configFile)

	cfg, err := project.Load(configFile, getenv)
	if err != nil {
		return nil, err
	}

	return &workspace{
		dir: abs,
		cfg: cfg,
		fs:  afero.NewBasePathFs(afero.NewOsFs(), abs),
	}, nil
}

// Returns the configuration file to use for a project: its own file when
// present, otherwise the user-level one (which may not exist either).
func discoverConfig(dir string) string {
	path := paths.ProjectConfigFile(dir)
	if _, err := os.Stat(path); err == nil {
		return path
	} else if !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("could not inspect project configuration", "path", path, "error", err)
	}
	return paths.UserConfigFile()
}
