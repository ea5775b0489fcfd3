package mode

import "errors"

var (
	ErrUnknownKind      = errors.New("unknown target")
	ErrMissingNamespace = errors.New("registry namespace required to push")
	ErrInvalidReference = errors.New("invalid image reference")
)
