package services

import (
	"errors"
	"sort"
	"strings"

	"github.com/diewo77/dealflow/internal/store"
	"github.com/diewo77/dealflow/validation"
)

var (
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrPermissionDenied   = errors.New("permission_denied")
	ErrDuplicateUsername  = errors.New("username_taken")
	// ErrNotFound is returned when an id reference does not resolve.
	ErrNotFound = store.ErrNotFound
)

// InvalidInputError carries per-field validation codes.
type InvalidInputError struct {
	Violations validation.Violations
}

func (e *InvalidInputError) Error() string {
	fields := make([]string, 0, len(e.Violations))
	for f, code := range e.Violations {
		fields = append(fields, f+"="+code)
	}
	sort.Strings(fields)
	return "invalid_input: " + strings.Join(fields, ", ")
}

func invalid(v validation.Violations) error {
	if v.Empty() {
		return nil
	}
	return &InvalidInputError{Violations: v}
}

// Violations extracts field errors from err, if it is an *InvalidInputError.
func Violations(err error) (validation.Violations, bool) {
	var ie *InvalidInputError
	if errors.As(err, &ie) {
		return ie.Violations, true
	}
	return nil, false
}
