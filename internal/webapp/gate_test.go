package webapp

import (
	"testing"

	"taskboard.org/internal/permissions"
)

func TestGateDeniesWithoutIdentity(t *testing.T) {
	g := NewGate(nil)
	if g.Allow("teams.view") {
		t.Fatal("nil identity must be denied")
	}
	if g.AllowAny("teams.view", "tasks.view") {
		t.Fatal("nil identity must be denied by AllowAny")
	}
	if g.AllowAll() {
		t.Fatal("nil identity must be denied even for the empty set")
	}
	if g.Role() != "" {
		t.Fatalf("Role() = %q, want empty", g.Role())
	}
}

func TestGateByRole(t *testing.T) {
	cases := []struct {
		role permissions.Role
		perm string
		want bool
	}{
		{permissions.RoleMember, "tasks.create", true},
		{permissions.RoleMember, "teams.create", false},
		{permissions.RoleMember, "tasks.assign", false},
		{permissions.RoleManager, "tasks.assign", true},
		{permissions.RoleManager, "members.add", true},
		{permissions.RoleManager, "teams.delete", false},
		{permissions.RoleAdmin, "teams.delete", true},
		{permissions.RoleAdmin, "members.remove", true},
	}
	for _, tc := range cases {
		g := NewGate(&permissions.Identity{ID: 1, Role: tc.role})
		if got := g.Allow(tc.perm); got != tc.want {
			t.Errorf("role %s perm %s: got %v, want %v", tc.role, tc.perm, got, tc.want)
		}
	}
}

func TestGateAllowAnyAll(t *testing.T) {
	g := NewGate(&permissions.Identity{ID: 1, Role: permissions.RoleManager})
	if !g.AllowAny("teams.delete", "members.add") {
		t.Fatal("manager holds members.add")
	}
	if g.AllowAll("members.add", "members.remove") {
		t.Fatal("manager does not hold members.remove")
	}
	if !g.AllowAll() {
		t.Fatal("empty set is vacuously allowed for a real identity")
	}
}
