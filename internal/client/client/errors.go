package client

import (
	"errors"
	"fmt"
)

var (
	ErrUnavailable = errors.New("coordinator unavailable")
	ErrNoPageID    = errors.New("client has no page id")
)

// RemoteError is an {error} reply from the coordinator: the call reached a
// handler (or the router) and failed there.
type RemoteError struct {
	Function string
	Message  string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s: %s", e.Function, e.Message)
}
