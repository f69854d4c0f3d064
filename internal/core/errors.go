package core

import "errors"

var (
	// ErrBadRequest marks a command that is missing required fields. Such commands are dropped.
	ErrBadRequest = errors.New("bad request")
	// ErrHubStopped is returned by hub queries after Run has returned.
	ErrHubStopped = errors.New("hub stopped")
)
