package deploy

import "errors"

var ErrNotRunning = errors.New("container is not running")
