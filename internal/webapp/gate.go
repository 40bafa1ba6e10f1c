package webapp

import (
	"taskboard.org/internal/permissions"
)

// Gate answers permission checks for the identity bound to one request.
// Methods take plain strings so templates can call them with literals.
type Gate struct {
	id *permissions.Identity
}

func NewGate(id *permissions.Identity) Gate {
	return Gate{id: id}
}

// Allow reports whether the identity holds the named permission.
// A gate over no identity denies everything.
func (g Gate) Allow(perm string) bool {
	return permissions.Has(g.id, permissions.Permission(perm))
}

// AllowAny reports whether at least one of the named permissions is held.
func (g Gate) AllowAny(perms ...string) bool {
	return permissions.HasAny(g.id, convertPerms(perms))
}

// AllowAll reports whether every named permission is held.
func (g Gate) AllowAll(perms ...string) bool {
	return permissions.HasAll(g.id, convertPerms(perms))
}

// Role returns the identity's role name, or "" when anonymous.
func (g Gate) Role() string {
	if g.id == nil {
		return ""
	}
	return string(g.id.Role)
}

func convertPerms(perms []string) []permissions.Permission {
	out := make([]permissions.Permission, len(perms))
	for i, p := range perms {
		out[i] = permissions.Permission(p)
	}
	return out
}
