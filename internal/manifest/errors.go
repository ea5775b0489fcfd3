package manifest

import "errors"

var (
	ErrBackup     = errors.New("failed to back up ignore file")
	ErrSubstitute = errors.New("failed to install substitute ignore file")
	ErrRestore    = errors.New("failed to restore ignore file")
	ErrInvalid    = errors.New("invalid manifest paths")
)
