package webapp

import (
	"fmt"
	"net/http"
	"strconv"

	"golang.org/x/sync/errgroup"

	"taskboard.org/internal/api"
)

type projectListData struct {
	Projects []api.Project
	Teams    []api.Team
}

func (s *Server) handleProjectList(w http.ResponseWriter, r *http.Request) {
	if !s.allow("projects.view") {
		s.deny(w, r, "/dashboard")
		return
	}

	var data projectListData
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() (err error) {
		data.Projects, err = s.projects.List(ctx)
		return err
	})
	// Teams feed the create form's team selector.
	g.Go(func() (err error) {
		data.Teams, err = s.teams.List(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		s.failPage(w, r, err, "Could not load projects.")
		return
	}
	s.render(w, r, http.StatusOK, "projects", "Projects", data)
}

type projectDetailData struct {
	Project api.Project
	Tasks   []api.Task
	Members []api.TeamMember
}

func (s *Server) handleProjectDetail(w http.ResponseWriter, r *http.Request) {
	if !s.allow("projects.view") {
		s.deny(w, r, "/dashboard")
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		http.NotFound(w, r)
		return
	}

	project, err := s.projects.Get(r.Context(), id)
	if err != nil {
		s.failPage(w, r, err, "Could not load the project.")
		return
	}

	data := projectDetailData{Project: project}
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() (err error) {
		data.Tasks, err = s.tasks.ListByProject(ctx, id)
		return err
	})
	// Team members feed the assignee selector.
	g.Go(func() (err error) {
		data.Members, err = s.teams.Members(ctx, project.TeamID)
		return err
	})
	if err := g.Wait(); err != nil {
		s.failPage(w, r, err, "Could not load the project.")
		return
	}
	s.render(w, r, http.StatusOK, "project", project.Name, data)
}

func (s *Server) handleProjectCreate(w http.ResponseWriter, r *http.Request) {
	if !s.allow("projects.create") {
		s.deny(w, r, "/projects")
		return
	}
	if !s.consumeToken(w, r, "/projects") {
		return
	}
	name := formValue(r, "name")
	teamID, err := strconv.ParseInt(formValue(r, "team_id"), 10, 64)
	if name == "" || err != nil || teamID <= 0 {
		redirectFlash(w, r, "/projects", "error", "A project name and a team are required.")
		return
	}
	project, err := s.projects.Create(r.Context(), api.ProjectInput{
		Name:        name,
		Description: optString(formValue(r, "description")),
		TeamID:      teamID,
	})
	if err != nil {
		s.failMutation(w, r, err, "/projects", "Could not create the project.")
		return
	}
	redirectFlash(w, r, fmt.Sprintf("/projects/%d", project.ID), "success", "Project created.")
}

func (s *Server) handleProjectUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		http.NotFound(w, r)
		return
	}
	back := fmt.Sprintf("/projects/%d", id)
	if !s.allow("projects.update") {
		s.deny(w, r, back)
		return
	}
	if !s.consumeToken(w, r, back) {
		return
	}
	name := formValue(r, "name")
	if name == "" {
		redirectFlash(w, r, back, "error", "Project name is required.")
		return
	}
	upd := api.ProjectUpdate{
		Name:        &name,
		Description: optString(formValue(r, "description")),
	}
	switch status := api.ProjectStatus(formValue(r, "status")); status {
	case api.ProjectActive, api.ProjectCompleted, api.ProjectArchived:
		upd.Status = &status
	}
	if _, err := s.projects.Update(r.Context(), id, upd); err != nil {
		s.failMutation(w, r, err, back, "Could not update the project.")
		return
	}
	redirectFlash(w, r, back, "success", "Project updated.")
}

func (s *Server) handleProjectDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		http.NotFound(w, r)
		return
	}
	if !s.allow("projects.delete") {
		s.deny(w, r, fmt.Sprintf("/projects/%d", id))
		return
	}
	if !s.consumeToken(w, r, "/projects") {
		return
	}
	if err := s.projects.Delete(r.Context(), id); err != nil {
		s.failMutation(w, r, err, fmt.Sprintf("/projects/%d", id), "Could not delete the project.")
		return
	}
	redirectFlash(w, r, "/projects", "success", "Project deleted.")
}
