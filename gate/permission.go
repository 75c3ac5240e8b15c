package gate

import "strings"

// Permission grants an action on a resource type, written "resource:action"
// (e.g. "user:update"). Either half may be the wildcard "*".
type Permission string

const (
	Wildcard                        = "*"
	PermissionSuperAdmin Permission = "*:*"
)

func NewPermission(resourceType string, action Action) Permission {
	return Permission(resourceType + ":" + string(action))
}

// Split returns both halves; ok is false unless both are non-empty.
func (p Permission) Split() (resourceType string, action Action, ok bool) {
	res, act, found := strings.Cut(string(p), ":")
	if !found || res == "" || act == "" {
		return "", "", false
	}
	return res, Action(act), true
}

// Matches reports whether p covers requested. A wildcard half in p matches
// any value; a wildcard in requested only matches a wildcard in p.
func (p Permission) Matches(requested Permission) bool {
	res, act, ok := p.Split()
	reqRes, reqAct, reqOK := requested.Split()
	if !ok || !reqOK {
		return false
	}
	return (res == Wildcard || res == reqRes) && (act == Wildcard || act == reqAct)
}

// Grants reports whether any of perms matches requested.
func Grants(perms []Permission, requested Permission) bool {
	for _, p := range perms {
		if p.Matches(requested) {
			return true
		}
	}
	return false
}
