package cli

import "errors"

var ErrWorkspace = errors.New("invalid project directory")
