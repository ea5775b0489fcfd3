package project

import "errors"

var (
	ErrConfig = errors.New("invalid configuration")
	ErrLoad   = errors.New("failed to load configuration")
)
