package engine

import "errors"

var (
	ErrBuild   = errors.New("image build failed")
	ErrTag     = errors.New("image tag failed")
	ErrPush    = errors.New("image push failed")
	ErrRun     = errors.New("container run failed")
	ErrInspect = errors.New("container inspect failed")
)
