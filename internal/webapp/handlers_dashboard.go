package webapp

import (
	"net/http"

	"golang.org/x/sync/errgroup"

	"taskboard.org/internal/api"
)

type dashboardData struct {
	TeamCount    int
	ProjectCount int
	TaskCount    int
	PendingTasks int
	RecentTasks  []api.Task
}

// handleDashboard joins the three list endpoints concurrently; the page
// either has all counts or reports the first failure.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	var (
		teams    []api.Team
		projects []api.Project
		tasks    []api.Task
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() (err error) {
		teams, err = s.teams.List(ctx)
		return err
	})
	g.Go(func() (err error) {
		projects, err = s.projects.List(ctx)
		return err
	})
	g.Go(func() (err error) {
		tasks, err = s.tasks.List(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		s.failPage(w, r, err, "Could not load the dashboard.")
		return
	}

	data := dashboardData{
		TeamCount:    len(teams),
		ProjectCount: len(projects),
		TaskCount:    len(tasks),
	}
	for _, t := range tasks {
		if t.Status == api.TaskPending {
			data.PendingTasks++
		}
	}
	recent := tasks
	if len(recent) > 5 {
		recent = recent[len(recent)-5:]
	}
	data.RecentTasks = recent

	s.render(w, r, http.StatusOK, "dashboard", "Dashboard", data)
}
