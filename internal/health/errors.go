package health

import "errors"

var ErrUnhealthy = errors.New("health check failed")
