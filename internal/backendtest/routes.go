package backendtest

import (
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"taskboard.org/internal/api"
)

// Handler returns the fake backend's HTTP surface. Paths and envelope
// shapes mirror the real REST API.
func (b *Backend) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /login", b.handleLogin)
	mux.HandleFunc("POST /register", b.handleRegister)
	mux.HandleFunc("POST /logout", b.handleLogout)
	mux.HandleFunc("GET /user", b.handleCurrentUser)

	mux.HandleFunc("GET /teams", b.handleListTeams)
	mux.HandleFunc("POST /teams", b.handleCreateTeam)
	mux.HandleFunc("GET /teams/{id}", b.handleGetTeam)
	mux.HandleFunc("PUT /teams/{id}", b.handleUpdateTeam)
	mux.HandleFunc("DELETE /teams/{id}", b.handleDeleteTeam)
	mux.HandleFunc("GET /teams/{id}/members", b.handleListMembers)
	mux.HandleFunc("POST /teams/{id}/members", b.handleAddMember)
	mux.HandleFunc("DELETE /teams/{id}/members/{userID}", b.handleRemoveMember)
	mux.HandleFunc("GET /teams/{id}/projects", b.handleTeamProjects)

	mux.HandleFunc("GET /projects", b.handleListProjects)
	mux.HandleFunc("POST /projects", b.handleCreateProject)
	mux.HandleFunc("GET /projects/{id}", b.handleGetProject)
	mux.HandleFunc("PUT /projects/{id}", b.handleUpdateProject)
	mux.HandleFunc("DELETE /projects/{id}", b.handleDeleteProject)
	mux.HandleFunc("GET /projects/{id}/tasks", b.handleProjectTasks)

	mux.HandleFunc("GET /tasks", b.handleListTasks)
	mux.HandleFunc("POST /tasks", b.handleCreateTask)
	mux.HandleFunc("GET /tasks/{id}", b.handleGetTask)
	mux.HandleFunc("PUT /tasks/{id}", b.handleUpdateTask)
	mux.HandleFunc("DELETE /tasks/{id}", b.handleDeleteTask)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.Requests++
		b.mu.Unlock()
		mux.ServeHTTP(w, r)
	})
}

func (b *Backend) respond(w http.ResponseWriter, status int, v any, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil && message == "" {
		return
	}
	if b.Wrap {
		_ = json.NewEncoder(w).Encode(map[string]any{"data": v, "message": message})
		return
	}
	if v == nil {
		_ = json.NewEncoder(w).Encode(map[string]string{"message": message})
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

func (b *Backend) fail(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": message})
}

func (b *Backend) requireAuth(w http.ResponseWriter, r *http.Request) (*api.User, string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	user, token, ok := b.authenticate(r)
	if !ok {
		b.fail(w, http.StatusUnauthorized, "Unauthenticated.")
		return nil, "", false
	}
	return user, token, true
}

func pathID(r *http.Request, name string) int64 {
	id, _ := strconv.ParseInt(r.PathValue(name), 10, 64)
	return id
}

// --- auth ---

func (b *Backend) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		b.fail(w, http.StatusBadRequest, "Malformed request.")
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, acct := range b.users {
		if strings.EqualFold(acct.user.Email, req.Email) && acct.password == req.Password {
			token, err := b.sign(acct.user.ID)
			if err != nil {
				b.fail(w, http.StatusInternalServerError, "Token generation failed.")
				return
			}
			b.respond(w, http.StatusOK, api.AuthResult{User: acct.user, Token: token}, "")
			return
		}
	}
	b.fail(w, http.StatusUnprocessableEntity, "These credentials do not match our records.")
}

func (b *Backend) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req api.Registration
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		b.fail(w, http.StatusBadRequest, "Malformed request.")
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if req.Name == "" || req.Email == "" || req.Password == "" {
		b.fail(w, http.StatusUnprocessableEntity, "All fields are required.")
		return
	}
	for _, acct := range b.users {
		if strings.EqualFold(acct.user.Email, req.Email) {
			b.fail(w, http.StatusUnprocessableEntity, "The email has already been taken.")
			return
		}
	}
	b.nextID++
	user := api.User{
		ID:        b.nextID,
		Name:      req.Name,
		Email:     req.Email,
		Role:      "member",
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	b.users[user.ID] = &account{user: user, password: req.Password}
	token, err := b.sign(user.ID)
	if err != nil {
		b.fail(w, http.StatusInternalServerError, "Token generation failed.")
		return
	}
	b.respond(w, http.StatusCreated, api.AuthResult{User: user, Token: token}, "")
}

func (b *Backend) handleLogout(w http.ResponseWriter, r *http.Request) {
	_, token, ok := b.requireAuth(w, r)
	if !ok {
		return
	}
	if b.FailLogout {
		b.fail(w, http.StatusInternalServerError, "Logout failed.")
		return
	}
	b.mu.Lock()
	b.revoked[token] = true
	b.mu.Unlock()
	b.respond(w, http.StatusOK, nil, "Logged out.")
}

func (b *Backend) handleCurrentUser(w http.ResponseWriter, r *http.Request) {
	user, _, ok := b.requireAuth(w, r)
	if !ok {
		return
	}
	b.respond(w, http.StatusOK, user, "")
}

// --- teams ---

func (b *Backend) handleListTeams(w http.ResponseWriter, r *http.Request) {
	if _, _, ok := b.requireAuth(w, r); !ok {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	teams := make([]api.Team, 0, len(b.teams))
	for _, t := range b.teams {
		withCount := *t
		withCount.MembersCount = len(b.members[t.ID])
		teams = append(teams, withCount)
	}
	sort.Slice(teams, func(i, j int) bool { return teams[i].ID < teams[j].ID })
	b.respond(w, http.StatusOK, teams, "")
}

func (b *Backend) handleCreateTeam(w http.ResponseWriter, r *http.Request) {
	if _, _, ok := b.requireAuth(w, r); !ok {
		return
	}
	var in api.TeamInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || strings.TrimSpace(in.Name) == "" {
		b.fail(w, http.StatusUnprocessableEntity, "The name field is required.")
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	team := api.Team{
		ID:          b.nextID,
		Name:        in.Name,
		Description: in.Description,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}
	b.teams[team.ID] = &team
	b.respond(w, http.StatusCreated, team, "Team created.")
}

func (b *Backend) handleGetTeam(w http.ResponseWriter, r *http.Request) {
	if _, _, ok := b.requireAuth(w, r); !ok {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	team, ok := b.teams[pathID(r, "id")]
	if !ok {
		b.fail(w, http.StatusNotFound, "Team not found.")
		return
	}
	b.respond(w, http.StatusOK, team, "")
}

func (b *Backend) handleUpdateTeam(w http.ResponseWriter, r *http.Request) {
	if _, _, ok := b.requireAuth(w, r); !ok {
		return
	}
	var upd api.TeamUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		b.fail(w, http.StatusBadRequest, "Malformed request.")
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	team, ok := b.teams[pathID(r, "id")]
	if !ok {
		b.fail(w, http.StatusNotFound, "Team not found.")
		return
	}
	if upd.Name != nil {
		team.Name = *upd.Name
	}
	if upd.Description != nil {
		team.Description = upd.Description
	}
	team.UpdatedAt = time.Now().UTC()
	b.respond(w, http.StatusOK, team, "Team updated.")
}

func (b *Backend) handleDeleteTeam(w http.ResponseWriter, r *http.Request) {
	if _, _, ok := b.requireAuth(w, r); !ok {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	id := pathID(r, "id")
	if _, ok := b.teams[id]; !ok {
		b.fail(w, http.StatusNotFound, "Team not found.")
		return
	}
	delete(b.teams, id)
	delete(b.members, id)
	w.WriteHeader(http.StatusNoContent)
}

func (b *Backend) handleListMembers(w http.ResponseWriter, r *http.Request) {
	if _, _, ok := b.requireAuth(w, r); !ok {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	members := b.members[pathID(r, "id")]
	if members == nil {
		members = []api.TeamMember{}
	}
	b.respond(w, http.StatusOK, members, "")
}

func (b *Backend) handleAddMember(w http.ResponseWriter, r *http.Request) {
	if _, _, ok := b.requireAuth(w, r); !ok {
		return
	}
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		b.fail(w, http.StatusUnprocessableEntity, "The email field is required.")
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	teamID := pathID(r, "id")
	if _, ok := b.teams[teamID]; !ok {
		b.fail(w, http.StatusNotFound, "Team not found.")
		return
	}
	for _, acct := range b.users {
		if strings.EqualFold(acct.user.Email, req.Email) {
			for _, m := range b.members[teamID] {
				if m.UserID == acct.user.ID {
					b.fail(w, http.StatusUnprocessableEntity, "User is already a member of this team.")
					return
				}
			}
			b.nextID++
			member := api.TeamMember{
				ID:       b.nextID,
				TeamID:   teamID,
				UserID:   acct.user.ID,
				User:     acct.user,
				Role:     "member",
				JoinedAt: time.Now().UTC(),
			}
			b.members[teamID] = append(b.members[teamID], member)
			b.respond(w, http.StatusCreated, member, "Member added.")
			return
		}
	}
	b.fail(w, http.StatusNotFound, "No user found with this email address.")
}

func (b *Backend) handleRemoveMember(w http.ResponseWriter, r *http.Request) {
	if _, _, ok := b.requireAuth(w, r); !ok {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	teamID := pathID(r, "id")
	userID := pathID(r, "userID")
	members := b.members[teamID]
	for i, m := range members {
		if m.UserID == userID {
			b.members[teamID] = append(members[:i], members[i+1:]...)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	b.fail(w, http.StatusNotFound, "Member not found.")
}

func (b *Backend) handleTeamProjects(w http.ResponseWriter, r *http.Request) {
	if _, _, ok := b.requireAuth(w, r); !ok {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	teamID := pathID(r, "id")
	projects := []api.Project{}
	for _, p := range b.projects {
		if p.TeamID == teamID {
			projects = append(projects, *p)
		}
	}
	sort.Slice(projects, func(i, j int) bool { return projects[i].ID < projects[j].ID })
	b.respond(w, http.StatusOK, projects, "")
}

// --- projects ---

func (b *Backend) handleListProjects(w http.ResponseWriter, r *http.Request) {
	if _, _, ok := b.requireAuth(w, r); !ok {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	projects := make([]api.Project, 0, len(b.projects))
	for _, p := range b.projects {
		withCount := *p
		for _, task := range b.tasks {
			if task.ProjectID == p.ID {
				withCount.TasksCount++
			}
		}
		projects = append(projects, withCount)
	}
	sort.Slice(projects, func(i, j int) bool { return projects[i].ID < projects[j].ID })
	b.respond(w, http.StatusOK, projects, "")
}

func (b *Backend) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	if _, _, ok := b.requireAuth(w, r); !ok {
		return
	}
	var in api.ProjectInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || strings.TrimSpace(in.Name) == "" || in.TeamID == 0 {
		b.fail(w, http.StatusUnprocessableEntity, "The name and team_id fields are required.")
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.teams[in.TeamID]; !ok {
		b.fail(w, http.StatusUnprocessableEntity, "The selected team is invalid.")
		return
	}
	b.nextID++
	project := api.Project{
		ID:          b.nextID,
		Name:        in.Name,
		Description: in.Description,
		TeamID:      in.TeamID,
		Status:      api.ProjectActive,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}
	b.projects[project.ID] = &project
	b.respond(w, http.StatusCreated, project, "Project created.")
}

func (b *Backend) handleGetProject(w http.ResponseWriter, r *http.Request) {
	if _, _, ok := b.requireAuth(w, r); !ok {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	project, ok := b.projects[pathID(r, "id")]
	if !ok {
		b.fail(w, http.StatusNotFound, "Project not found.")
		return
	}
	out := *project
	if team, ok := b.teams[project.TeamID]; ok {
		out.Team = team
	}
	b.respond(w, http.StatusOK, out, "")
}

func (b *Backend) handleUpdateProject(w http.ResponseWriter, r *http.Request) {
	if _, _, ok := b.requireAuth(w, r); !ok {
		return
	}
	var upd api.ProjectUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		b.fail(w, http.StatusBadRequest, "Malformed request.")
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	project, ok := b.projects[pathID(r, "id")]
	if !ok {
		b.fail(w, http.StatusNotFound, "Project not found.")
		return
	}
	if upd.Name != nil {
		project.Name = *upd.Name
	}
	if upd.Description != nil {
		project.Description = upd.Description
	}
	if upd.Status != nil {
		project.Status = *upd.Status
	}
	if upd.TeamID != nil {
		project.TeamID = *upd.TeamID
	}
	project.UpdatedAt = time.Now().UTC()
	b.respond(w, http.StatusOK, project, "Project updated.")
}

func (b *Backend) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	if _, _, ok := b.requireAuth(w, r); !ok {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	id := pathID(r, "id")
	if _, ok := b.projects[id]; !ok {
		b.fail(w, http.StatusNotFound, "Project not found.")
		return
	}
	delete(b.projects, id)
	w.WriteHeader(http.StatusNoContent)
}

func (b *Backend) handleProjectTasks(w http.ResponseWriter, r *http.Request) {
	if _, _, ok := b.requireAuth(w, r); !ok {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	projectID := pathID(r, "id")
	tasks := []api.Task{}
	for _, task := range b.tasks {
		if task.ProjectID != projectID {
			continue
		}
		out := *task
		if out.AssignedTo != nil {
			if acct, ok := b.users[*out.AssignedTo]; ok {
				u := acct.user
				out.AssignedUser = &u
			}
		}
		tasks = append(tasks, out)
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID < tasks[j].ID })
	b.respond(w, http.StatusOK, tasks, "")
}

// --- tasks ---

func (b *Backend) handleListTasks(w http.ResponseWriter, r *http.Request) {
	if _, _, ok := b.requireAuth(w, r); !ok {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	tasks := make([]api.Task, 0, len(b.tasks))
	for _, task := range b.tasks {
		out := *task
		if out.AssignedTo != nil {
			if acct, ok := b.users[*out.AssignedTo]; ok {
				u := acct.user
				out.AssignedUser = &u
			}
		}
		tasks = append(tasks, out)
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID < tasks[j].ID })
	b.respond(w, http.StatusOK, tasks, "")
}

func (b *Backend) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	if _, _, ok := b.requireAuth(w, r); !ok {
		return
	}
	var in api.TaskInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || strings.TrimSpace(in.Title) == "" || in.ProjectID == 0 {
		b.fail(w, http.StatusUnprocessableEntity, "The title and project_id fields are required.")
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.projects[in.ProjectID]; !ok {
		b.fail(w, http.StatusUnprocessableEntity, "The selected project is invalid.")
		return
	}
	b.nextID++
	task := api.Task{
		ID:          b.nextID,
		Title:       in.Title,
		Description: in.Description,
		ProjectID:   in.ProjectID,
		AssignedTo:  in.AssignedTo,
		Status:      api.TaskPending,
		Priority:    api.PriorityMedium,
		DueDate:     in.DueDate,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}
	if in.Status != nil {
		task.Status = *in.Status
	}
	if in.Priority != nil {
		task.Priority = *in.Priority
	}
	b.tasks[task.ID] = &task
	b.respond(w, http.StatusCreated, task, "Task created.")
}

func (b *Backend) handleGetTask(w http.ResponseWriter, r *http.Request) {
	if _, _, ok := b.requireAuth(w, r); !ok {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	task, ok := b.tasks[pathID(r, "id")]
	if !ok {
		b.fail(w, http.StatusNotFound, "Task not found.")
		return
	}
	b.respond(w, http.StatusOK, task, "")
}

func (b *Backend) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	if _, _, ok := b.requireAuth(w, r); !ok {
		return
	}
	var upd api.TaskUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		b.fail(w, http.StatusBadRequest, "Malformed request.")
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	task, ok := b.tasks[pathID(r, "id")]
	if !ok {
		b.fail(w, http.StatusNotFound, "Task not found.")
		return
	}
	if upd.Title != nil {
		task.Title = *upd.Title
	}
	if upd.Description != nil {
		task.Description = upd.Description
	}
	if upd.ProjectID != nil {
		task.ProjectID = *upd.ProjectID
	}
	if upd.AssignedTo != nil {
		// Zero means unassign.
		if *upd.AssignedTo == 0 {
			task.AssignedTo = nil
		} else {
			task.AssignedTo = upd.AssignedTo
		}
	}
	if upd.Status != nil {
		task.Status = *upd.Status
	}
	if upd.Priority != nil {
		task.Priority = *upd.Priority
	}
	if upd.DueDate != nil {
		task.DueDate = upd.DueDate
	}
	task.UpdatedAt = time.Now().UTC()
	b.respond(w, http.StatusOK, task, "Task updated.")
}

func (b *Backend) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	if _, _, ok := b.requireAuth(w, r); !ok {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	id := pathID(r, "id")
	if _, ok := b.tasks[id]; !ok {
		b.fail(w, http.StatusNotFound, "Task not found.")
		return
	}
	delete(b.tasks, id)
	w.WriteHeader(http.StatusNoContent)
}
