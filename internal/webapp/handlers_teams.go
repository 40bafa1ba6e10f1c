package webapp

import (
	"fmt"
	"net/http"

	"golang.org/x/sync/errgroup"

	"taskboard.org/internal/api"
)

func (s *Server) handleTeamList(w http.ResponseWriter, r *http.Request) {
	if !s.allow("teams.view") {
		s.deny(w, r, "/dashboard")
		return
	}
	teams, err := s.teams.List(r.Context())
	if err != nil {
		s.failPage(w, r, err, "Could not load teams.")
		return
	}
	s.render(w, r, http.StatusOK, "teams", "Teams", struct{ Teams []api.Team }{teams})
}

type teamDetailData struct {
	Team     api.Team
	Members  []api.TeamMember
	Projects []api.Project
}

// handleTeamDetail joins the team, its members and its projects
// concurrently.
func (s *Server) handleTeamDetail(w http.ResponseWriter, r *http.Request) {
	if !s.allow("teams.view") {
		s.deny(w, r, "/dashboard")
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		http.NotFound(w, r)
		return
	}

	var data teamDetailData
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() (err error) {
		data.Team, err = s.teams.Get(ctx, id)
		return err
	})
	g.Go(func() (err error) {
		data.Members, err = s.teams.Members(ctx, id)
		return err
	})
	g.Go(func() (err error) {
		data.Projects, err = s.projects.ListByTeam(ctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		s.failPage(w, r, err, "Could not load the team.")
		return
	}
	s.render(w, r, http.StatusOK, "team", data.Team.Name, data)
}

func (s *Server) handleTeamCreate(w http.ResponseWriter, r *http.Request) {
	if !s.allow("teams.create") {
		s.deny(w, r, "/teams")
		return
	}
	if !s.consumeToken(w, r, "/teams") {
		return
	}
	name := formValue(r, "name")
	if name == "" {
		redirectFlash(w, r, "/teams", "error", "Team name is required.")
		return
	}
	team, err := s.teams.Create(r.Context(), api.TeamInput{
		Name:        name,
		Description: optString(formValue(r, "description")),
	})
	if err != nil {
		s.failMutation(w, r, err, "/teams", "Could not create the team.")
		return
	}
	redirectFlash(w, r, fmt.Sprintf("/teams/%d", team.ID), "success", "Team created.")
}

func (s *Server) handleTeamUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		http.NotFound(w, r)
		return
	}
	back := fmt.Sprintf("/teams/%d", id)
	if !s.allow("teams.update") {
		s.deny(w, r, back)
		return
	}
	if !s.consumeToken(w, r, back) {
		return
	}
	name := formValue(r, "name")
	if name == "" {
		redirectFlash(w, r, back, "error", "Team name is required.")
		return
	}
	upd := api.TeamUpdate{
		Name:        &name,
		Description: optString(formValue(r, "description")),
	}
	if _, err := s.teams.Update(r.Context(), id, upd); err != nil {
		s.failMutation(w, r, err, back, "Could not update the team.")
		return
	}
	redirectFlash(w, r, back, "success", "Team updated.")
}

func (s *Server) handleTeamDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		http.NotFound(w, r)
		return
	}
	if !s.allow("teams.delete") {
		s.deny(w, r, fmt.Sprintf("/teams/%d", id))
		return
	}
	if !s.consumeToken(w, r, "/teams") {
		return
	}
	if err := s.teams.Delete(r.Context(), id); err != nil {
		s.failMutation(w, r, err, fmt.Sprintf("/teams/%d", id), "Could not delete the team.")
		return
	}
	redirectFlash(w, r, "/teams", "success", "Team deleted.")
}

func (s *Server) handleMemberAdd(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		http.NotFound(w, r)
		return
	}
	back := fmt.Sprintf("/teams/%d", id)
	if !s.allow("members.add") {
		s.deny(w, r, back)
		return
	}
	if !s.consumeToken(w, r, back) {
		return
	}
	email := formValue(r, "email")
	if email == "" {
		redirectFlash(w, r, back, "error", "An email address is required.")
		return
	}
	member, err := s.teams.AddMemberByEmail(r.Context(), id, email)
	if err != nil {
		s.failMutation(w, r, err, back, "Could not add the member.")
		return
	}
	redirectFlash(w, r, back, "success", member.User.Name+" added to the team.")
}

func (s *Server) handleMemberRemove(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		http.NotFound(w, r)
		return
	}
	userID, ok := pathID(r, "userID")
	if !ok {
		http.NotFound(w, r)
		return
	}
	back := fmt.Sprintf("/teams/%d", id)
	if !s.allow("members.remove") {
		s.deny(w, r, back)
		return
	}
	if !s.consumeToken(w, r, back) {
		return
	}
	if err := s.teams.RemoveMember(r.Context(), id, userID); err != nil {
		s.failMutation(w, r, err, back, "Could not remove the member.")
		return
	}
	redirectFlash(w, r, back, "success", "Member removed.")
}
