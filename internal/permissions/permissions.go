package permissions

// Permission identifies one allowed action on one entity type. The tags are
// wire-level constants shared with the backend policy.
type Permission string

const (
	TeamsCreate    Permission = "teams.create"
	TeamsUpdate    Permission = "teams.update"
	TeamsDelete    Permission = "teams.delete"
	TeamsView      Permission = "teams.view"
	ProjectsCreate Permission = "projects.create"
	ProjectsUpdate Permission = "projects.update"
	ProjectsDelete Permission = "projects.delete"
	ProjectsView   Permission = "projects.view"
	TasksCreate    Permission = "tasks.create"
	TasksUpdate    Permission = "tasks.update"
	TasksDelete    Permission = "tasks.delete"
	TasksView      Permission = "tasks.view"
	TasksAssign    Permission = "tasks.assign"
	MembersAdd     Permission = "members.add"
	MembersRemove  Permission = "members.remove"
)

// Role names one of the three account roles assigned by the backend.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleMember  Role = "member"
)

// Identity is the authenticated user as held client-side after login. It is
// destroyed on logout or a failed session restore.
type Identity struct {
	ID    int64
	Name  string
	Email string
	Role  Role
}

// rolePermissions is the static policy table, immutable for the process
// lifetime. Grants are monotone: member < manager < admin.
var rolePermissions = map[Role][]Permission{
	RoleAdmin: {
		TeamsCreate, TeamsUpdate, TeamsDelete, TeamsView,
		ProjectsCreate, ProjectsUpdate, ProjectsDelete, ProjectsView,
		TasksCreate, TasksUpdate, TasksDelete, TasksView, TasksAssign,
		MembersAdd, MembersRemove,
	},
	RoleManager: {
		TeamsView,
		ProjectsCreate, ProjectsUpdate, ProjectsView,
		TasksCreate, TasksUpdate, TasksDelete, TasksView, TasksAssign,
		MembersAdd,
	},
	RoleMember: {
		TeamsView,
		ProjectsView,
		TasksCreate, TasksUpdate, TasksDelete, TasksView,
	},
}

// ForRole returns a copy of the permission set granted to role. Unknown
// roles yield an empty set.
func ForRole(role Role) []Permission {
	perms := rolePermissions[role]
	out := make([]Permission, len(perms))
	copy(out, perms)
	return out
}

// RoleHas reports whether role is granted perm.
func RoleHas(role Role, perm Permission) bool {
	for _, p := range rolePermissions[role] {
		if p == perm {
			return true
		}
	}
	return false
}

// Has reports whether the identity is granted perm. A nil identity is never
// granted anything.
func Has(id *Identity, perm Permission) bool {
	if id == nil {
		return false
	}
	return RoleHas(id.Role, perm)
}

// HasAny reports whether the identity is granted at least one of perms. An
// empty set grants nothing.
func HasAny(id *Identity, perms []Permission) bool {
	if id == nil {
		return false
	}
	for _, p := range perms {
		if RoleHas(id.Role, p) {
			return true
		}
	}
	return false
}

// HasAll reports whether the identity is granted every permission in perms.
// The empty set is vacuously true for any non-nil identity.
func HasAll(id *Identity, perms []Permission) bool {
	if id == nil {
		return false
	}
	for _, p := range perms {
		if !RoleHas(id.Role, p) {
			return false
		}
	}
	return true
}
