package command

import (
	"errors"
	"fmt"

	"github.com/containerd/errdefs"
)

var (
	ErrEmptyCommand       = errors.New("empty command")
	ErrCommandFailed      = errors.New("command failed")
	ErrExecutableNotFound = fmt.Errorf("executable %w", errdefs.ErrNotFound)
)
