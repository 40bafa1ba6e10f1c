package permissions

import "testing"

func identityWithRole(role Role) *Identity {
	return &Identity{ID: 1, Name: "Test User", Email: "user@example.com", Role: role}
}

func TestRoleGrantsMatchTable(t *testing.T) {
	cases := []struct {
		role    Role
		perm    Permission
		granted bool
	}{
		{RoleAdmin, TeamsDelete, true},
		{RoleAdmin, MembersRemove, true},
		{RoleManager, ProjectsCreate, true},
		{RoleManager, TasksAssign, true},
		{RoleManager, TeamsCreate, false},
		{RoleManager, TeamsDelete, false},
		{RoleManager, MembersRemove, false},
		{RoleMember, TeamsView, true},
		{RoleMember, TasksCreate, true},
		{RoleMember, TeamsCreate, false},
		{RoleMember, TeamsDelete, false},
		{RoleMember, ProjectsDelete, false},
		{RoleMember, TasksAssign, false},
	}
	for _, tc := range cases {
		if got := Has(identityWithRole(tc.role), tc.perm); got != tc.granted {
			t.Fatalf("Has(%s, %s) = %v, want %v", tc.role, tc.perm, got, tc.granted)
		}
	}
}

func TestGrantsAreMonotone(t *testing.T) {
	member := ForRole(RoleMember)
	manager := ForRole(RoleManager)
	for _, p := range member {
		if !RoleHas(RoleManager, p) {
			t.Fatalf("manager missing member permission %s", p)
		}
	}
	for _, p := range manager {
		if !RoleHas(RoleAdmin, p) {
			t.Fatalf("admin missing manager permission %s", p)
		}
	}
}

func TestNilIdentityDeniesEverything(t *testing.T) {
	if Has(nil, TeamsView) {
		t.Fatal("nil identity granted a permission")
	}
	if HasAny(nil, []Permission{TeamsView, TasksView}) {
		t.Fatal("nil identity granted via HasAny")
	}
	if HasAll(nil, nil) {
		t.Fatal("nil identity granted via empty HasAll")
	}
}

func TestUnknownRoleHasEmptySet(t *testing.T) {
	id := identityWithRole(Role("owner"))
	for _, p := range ForRole(RoleAdmin) {
		if Has(id, p) {
			t.Fatalf("unknown role granted %s", p)
		}
	}
}

func TestEmptyPermissionSets(t *testing.T) {
	id := identityWithRole(RoleMember)
	if HasAny(id, nil) {
		t.Fatal("HasAny with empty set must be false")
	}
	if !HasAll(id, nil) {
		t.Fatal("HasAll with empty set must be vacuously true")
	}
}

func TestForRoleReturnsCopy(t *testing.T) {
	perms := ForRole(RoleMember)
	if len(perms) == 0 {
		t.Fatal("expected member grants")
	}
	perms[0] = Permission("teams.destroy")
	if Has(identityWithRole(RoleMember), Permission("teams.destroy")) {
		t.Fatal("mutating the returned slice leaked into the table")
	}
}
