// Package health probes the HTTP health endpoint of a started container.
//
// A probe is a single GET request. Any 2xx status is healthy; everything
// else, including a connection failure or a timeout, is reported as
// [ErrUnhealthy] with the underlying cause attached.
package health
