package gate

import "errors"

// Sentinel errors returned by Gate.Authorize.
var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
)

// ErrUnknownSubject is returned by resolvers for subjects that do not exist.
var ErrUnknownSubject = errors.New("unknown subject")
