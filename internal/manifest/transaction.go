package manifest

import (
	_ "crypto/sha256"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/opencontainers/go-digest"
	"github.com/spf13/afero"
)

// Position of a [Transaction] in its enter/exit protocol.
type State int

const (
	StateClean       State = iota // Target holds whatever the operator left there.
	StateBackedUp                 // Original moved to the backup slot, target empty.
	StateSubstituted              // Target holds a copy of the substitute source.
)

// Returns the state name.
func (s State) String() string {
	switch s {
	case StateClean:
		return "clean"
	case StateBackedUp:
		return "backed-up"
	case StateSubstituted:
		return "substituted"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Locations involved in a substitution.
type Options struct {
	Fs     afero.Fs // Filesystem holding the files. Nil uses the OS filesystem.
	Target string   // Ignore file read by the build (e.g. ".dockerignore").
	Source string   // Mode-specific file to install at Target.
	Backup string   // Slot the original Target is moved to while substituted.
}

// Returns an error unless all three paths are set and distinct.
func (o Options) validate() error {
	if o.Target == "" || o.Source == "" || o.Backup == "" {
		return fmt.Errorf("%w: target, source and backup are required", ErrInvalid)
	}
	target, source, backup := filepath.Clean(o.Target), filepath.Clean(o.Source), filepath.Clean(o.Backup)
	if target == source || target == backup || source == backup {
		return fmt.Errorf("%w: target, source and backup must differ", ErrInvalid)
	}
	return nil
}

// Returns the configured filesystem or the OS filesystem.
func (o Options) fs() afero.Fs {
	if o.Fs != nil {
		return o.Fs
	}
	return afero.NewOsFs()
}

// An in-progress substitution of the ignore file.
//
// Created by [Begin] and finished by [Transaction.Restore], which must run
// on every exit path once Begin has returned successfully.
type Transaction struct {
	fs         afero.Fs
	target     string
	source     string
	backup     string
	state      State
	backupMade bool          // Whether the original was moved to the backup slot.
	installed  digest.Digest // Digest of the bytes installed at target, empty if none.
	finished   bool          // Whether Restore has already run.
}

// Installs the substitute ignore file at the target path.
//
// A leftover backup from an earlier aborted run is removed first; failing
// to remove it is only a warning. If the substitute source does not exist
// the returned transaction is a no-op. Otherwise an existing target is
// renamed to the backup slot and the source is copied over the target,
// preserving its mode and modification time. If the copy fails, the
// partial target is removed and the backup renamed back before the error is
// returned. A non-nil error always leaves the files as they were found,
// apart from the stale backup.
func Begin(opts Options) (*Transaction, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	t := &Transaction{
		fs:     opts.fs(),
		target: opts.Target,
		source: opts.Source,
		backup: opts.Backup,
	}

	t.removeStaleBackup()

	ok, err := afero.Exists(t.fs, t.source)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSubstitute, err)
	}
	if !ok {
		slog.Warn("substitute ignore file not found, building with the current one",
			"source", t.source,
			"target", t.target,
		)
		return t, nil
	}

	if err := t.takeBackup(); err != nil {
		return nil, err
	}

	if err := t.substitute(); err != nil {
		return nil, errors.Join(err, t.rollback())
	}

	return t, nil
}

// Returns the current state.
func (t *Transaction) State() State {
	return t.state
}

// Returns true if the original ignore file was moved to the backup slot.
func (t *Transaction) BackupMade() bool {
	return t.backupMade
}

// Returns the digest of the substitute installed at the target, or an empty
// digest if nothing was installed.
func (t *Transaction) Installed() digest.Digest {
	return t.installed
}

// Puts the original ignore file back.
//
// With a backup, whatever sits at the target is removed and the backup is
// renamed into place. Without one, the target is removed only if its digest
// still matches the substitute that was installed; a file that changed or
// appeared independently is kept. Only the first call has any effect.
//
// Errors are returned for the caller to report. They mean the operator may
// have to restore the file by hand.
func (t *Transaction) Restore() error {
	if t.finished {
		return nil
	}
	t.finished = true

	if t.backupMade {
		return t.restoreBackup()
	}
	return t.removeSubstitute()
}

// Deletes a backup left behind by an earlier run.
func (t *Transaction) removeStaleBackup() {
	if err := t.fs.Remove(t.backup); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("could not remove stale ignore file backup", "path", t.backup, "error", err)
		return
	}
}

// Moves an existing target into the backup slot.
func (t *Transaction) takeBackup() error {
	if _, err := t.fs.Stat(t.target); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("%w: %w", ErrBackup, err)
	}

	slog.Info("backing up ignore file", "from", t.target, "to", t.backup)

	if err := t.fs.Rename(t.target, t.backup); err != nil {
		return fmt.Errorf("%w: %w", ErrBackup, err)
	}

	t.backupMade = true
	t.state = StateBackedUp
	return nil
}

// Copies the source over the target and records what was installed.
func (t *Transaction) substitute() error {
	slog.Info("installing substitute ignore file", "from", t.source, "to", t.target)

	d, err := copyFile(t.fs, t.source, t.target)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSubstitute, err)
	}

	t.installed = d
	t.state = StateSubstituted
	return nil
}

// Undoes a partially completed Begin.
//
// Anything at the target was written by this transaction, since the
// original (if any) is in the backup slot.
func (t *Transaction) rollback() error {
	var errs []error

	if err := t.fs.Remove(t.target); err != nil && !errors.Is(err, fs.ErrNotExist) {
		errs = append(errs, err)
	}

	if t.backupMade {
		if err := t.fs.Rename(t.backup, t.target); err != nil {
			slog.Error("could not move ignore file backup back into place",
				"backup", t.backup,
				"target", t.target,
				"error", err,
			)
			errs = append(errs, err)
		} else {
			t.backupMade = false
		}
	}

	t.state = StateClean
	t.finished = true

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrRestore, errors.Join(errs...))
	}
	return nil
}

// Replaces the target with the backup.
func (t *Transaction) restoreBackup() error {
	if err := t.fs.Remove(t.target); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return t.restoreFailed(err)
	}
	if err := t.fs.Rename(t.backup, t.target); err != nil {
		return t.restoreFailed(err)
	}

	slog.Info("restored ignore file", "path", t.target)
	t.state = StateClean
	return nil
}

// Removes the installed substitute if it is still unmodified.
func (t *Transaction) removeSubstitute() error {
	if t.installed == "" {
		return nil
	}

	current, err := digestFile(t.fs, t.target)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			t.state = StateClean
			return nil
		}
		return t.restoreFailed(err)
	}

	if current != t.installed {
		slog.Warn("ignore file changed since it was installed, leaving it in place",
			"path", t.target,
			"installed", t.installed,
			"current", current,
		)
		t.state = StateClean
		return nil
	}

	if err := t.fs.Remove(t.target); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return t.restoreFailed(err)
	}

	slog.Info("removed temporary ignore file", "path", t.target)
	t.state = StateClean
	return nil
}

// Wraps a restoration error.
func (t *Transaction) restoreFailed(err error) error {
	return fmt.Errorf("%w %s (backup at %s): %w", ErrRestore, t.target, t.backup, err)
}

// Copies src to dst, preserving mode and modification time, and returns
// the digest of the copied bytes.
func copyFile(fsys afero.Fs, src, dst string) (digest.Digest, error) {
	in, err := fsys.Open(src)
	if err != nil {
		return "", err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return "", err
	}

	out, err := fsys.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return "", err
	}

	digester := digest.Canonical.Digester()
	if _, err := io.Copy(io.MultiWriter(out, digester.Hash()), in); err != nil {
		out.Close()
		return "", err
	}
	if err := out.Close(); err != nil {
		return "", err
	}

	if err := fsys.Chmod(dst, info.Mode().Perm()); err != nil {
		return "", err
	}
	if err := fsys.Chtimes(dst, info.ModTime(), info.ModTime()); err != nil {
		return "", err
	}

	return digester.Digest(), nil
}

// Returns the digest of the file at path.
func digestFile(fsys afero.Fs, path string) (digest.Digest, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return digest.Canonical.FromReader(f)
}
