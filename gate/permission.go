package gate

import "strings"

// Permission represents an allowed action on a resource type.
// Format: "resource:action" (e.g., "deal:create", "user:list")
type Permission string

// NewPermission creates a permission from resource type and action.
func NewPermission(resourceType string, action Action) Permission {
	return Permission(resourceType + ":" + string(action))
}

// Parse splits a permission into resource type and action.
func (p Permission) Parse() (resourceType string, action Action) {
	parts := strings.SplitN(string(p), ":", 2)
	if len(parts) != 2 {
		return "", ""
	}
	return parts[0], Action(parts[1])
}

// WildcardAll matches every action of a resource ("user:*").
const WildcardAll = "*"

// Matches checks if this permission grants a requested permission.
// "deal:*" matches every deal action. There is deliberately no global
// wildcard: every capability must be listed for the role that holds it.
func (p Permission) Matches(requested Permission) bool {
	if p == requested {
		return true
	}
	res, act := p.Parse()
	reqRes, reqAct := requested.Parse()
	if res == "" || reqRes == "" || reqAct == "" {
		return false
	}
	return res == reqRes && string(act) == WildcardAll
}
