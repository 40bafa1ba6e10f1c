package obs

import "testing"

func TestCanonicalPath(t *testing.T) {
	cases := map[string]string{
		"":                          "/",
		"/metrics":                  "/metrics",
		"/teams":                    "/teams",
		"/teams/12":                 "/teams/:id",
		"/teams/12/members":         "/teams/:id/members",
		"/teams/12/members/5":       "/teams/:id/members/:id",
		"/projects/7/tasks":         "/projects/:id/tasks",
		"/tasks?status=pending":     "/tasks",
		"/tasks/33?assigned_to=4":   "/tasks/:id",
		"/dashboard":                "/dashboard",
	}
	for input, expected := range cases {
		if got := CanonicalPath(input); got != expected {
			t.Fatalf("CanonicalPath(%q) = %q, want %q", input, got, expected)
		}
	}
}
