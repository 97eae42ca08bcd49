// internal/api/errors.go
//
// Error taxonomy for remote calls. Two kinds matter to callers:
//   - not-found: the server answered and said the entity does not exist
//     (drives identity repair, surfaced as "does not exist" elsewhere).
//   - everything else: transport or unexpected server failure, surfaced
//     as a failed operation and never reinterpreted as not-found.

package api

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is a non-2xx response from the remote API.
type Error struct {
	Status  int    // HTTP status code
	Message string // server-provided detail, if any
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: status %d", e.Status)
	}
	return fmt.Sprintf("api: status %d: %s", e.Status, e.Message)
}

// IsNotFound reports whether err is a remote 404. Transport failures
// and other statuses return false; callers must not conflate them.
func IsNotFound(err error) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Status == http.StatusNotFound
}
