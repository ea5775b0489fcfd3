package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/cherryrecorder/cherryctl/internal/manifest"
)

// Represents the 'cherryctl recover' command.
type RecoverCmd struct{}

// Executes the recover command.
//
// Moves the ignore-file backup of an interrupted test build back into
// place. Succeeds without changes when there is no backup.
func (c *RecoverCmd) Run(ctx context.Context) error {
	ws, err := openWorkspace(RootCmd.Dir, RootCmd.Config, os.Getenv)
	if err != nil {
		return err
	}

	ignore := ws.cfg.Ignore
	ok, err := manifest.Recover(manifest.Options{
		Fs:     ws.fs,
		Target: ignore.Target,
		Backup: ignore.Backup,
	})
	if err != nil {
		return err
	}

	if ok {
		fmt.Printf("Restored %s from %s.\n", ignore.Target, ignore.Backup)
	} else {
		fmt.Println("No ignore file backup found, nothing to recover.")
	}
	return nil
}
