// Package manifest swaps the container build's ignore list for a
// mode-specific variant and puts the original back afterwards.
//
// A [Transaction] moves through three states. [Begin] takes it from
// [StateClean] to [StateBackedUp] by renaming the current ignore file to a
// backup slot, then to [StateSubstituted] by copying the mode-specific
// source over the target. [Transaction.Restore] returns it to [StateClean]
// by removing the substitute and renaming the backup into place. If Begin
// fails after the backup was taken, the backup is moved back before the
// error is returned, so a failed Begin never needs a Restore.
//
// When no original ignore file existed, Restore deletes the target only if
// it still holds exactly the bytes the transaction installed, identified by
// digest. Anything else at that path is left alone.
//
// The protocol assumes a single writer. Two transactions against the same
// path at the same time are not supported and not detected.
//
// Example usage:
//
//	tx, err := manifest.Begin(manifest.Options{
//	    Target: ".dockerignore",
//	    Source: "Dockerfile.test.dockerignore",
//	    Backup: ".dockerignore.original",
//	})
//	if err != nil {
//	    return err
//	}
//	defer func() {
//	    if err := tx.Restore(); err != nil {
//	        slog.Warn("ignore file not restored", "error", err)
//	    }
//	}()
package manifest
