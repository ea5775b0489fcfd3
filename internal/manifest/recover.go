package manifest

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/spf13/afero"
)

// Moves a backup left behind by an interrupted run back to the target.
//
// Whatever currently sits at the target is replaced. Returns false if there
// was no backup to recover. The Source option is not used.
func Recover(opts Options) (bool, error) {
	if opts.Target == "" || opts.Backup == "" {
		return false, fmt.Errorf("%w: target and backup are required", ErrInvalid)
	}
	fsys := opts.fs()

	ok, err := afero.Exists(fsys, opts.Backup)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrRestore, err)
	}
	if !ok {
		slog.Debug("no ignore file backup to recover", "path", opts.Backup)
		return false, nil
	}

	if err := fsys.Remove(opts.Target); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("%w: %w", ErrRestore, err)
	}
	if err := fsys.Rename(opts.Backup, opts.Target); err != nil {
		return false, fmt.Errorf("%w: %w", ErrRestore, err)
	}

	slog.Info("recovered ignore file from backup", "path", opts.Target, "backup", opts.Backup)
	return true, nil
}
