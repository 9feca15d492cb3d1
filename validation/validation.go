package validation

import (
	"strconv"
	"strings"
)

type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Basic validators
func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v[field] = "required"
	}
}

func MinLength(field, value string, n int, v Violations) {
	if len(value) < n {
		v[field] = "too_short"
	}
}

// PositiveID parses a form value as an entity id.
// Missing values are reported as required, anything else non-positive as invalid_id.
func PositiveID(field, value string, v Violations) uint {
	value = strings.TrimSpace(value)
	if value == "" {
		v[field] = "required"
		return 0
	}
	id, err := strconv.ParseUint(value, 10, 64)
	if err != nil || id == 0 {
		v[field] = "invalid_id"
		return 0
	}
	return uint(id)
}

func OneOf(field, value string, allowed []string, v Violations) {
	for _, a := range allowed {
		if value == a {
			return
		}
	}
	v[field] = "unknown_value"
}
