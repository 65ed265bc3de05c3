package api

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when the backend reports that the requested
// entity does not exist. It is distinguishable from transport failures
// so callers can treat "unknown symbol" differently from "network down".
var ErrNotFound = errors.New("not found")

// AuthError indicates that the backend rejected the current credential
// with a 401-class response. It is never retried; the session gate
// reacts to it by clearing the session.
type AuthError struct {
	// Op names the request that was rejected, e.g. "GET /notifications".
	Op string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth error: %s rejected with 401", e.Op)
}

// IsAuthError reports whether err (or any error in its chain) is an AuthError.
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}
