package webapp

import (
	"fmt"
	"net/http"
	"strconv"

	"taskboard.org/internal/api"
)

func (s *Server) handleTaskList(w http.ResponseWriter, r *http.Request) {
	if !s.allow("tasks.view") {
		s.deny(w, r, "/dashboard")
		return
	}
	tasks, err := s.tasks.List(r.Context())
	if err != nil {
		s.failPage(w, r, err, "Could not load tasks.")
		return
	}
	s.render(w, r, http.StatusOK, "tasks", "Tasks", struct{ Tasks []api.Task }{tasks})
}

func (s *Server) handleTaskCreate(w http.ResponseWriter, r *http.Request) {
	projectID, err := strconv.ParseInt(formValue(r, "project_id"), 10, 64)
	if err != nil || projectID <= 0 {
		http.NotFound(w, r)
		return
	}
	back := fmt.Sprintf("/projects/%d", projectID)
	if !s.allow("tasks.create") {
		s.deny(w, r, back)
		return
	}
	if !s.consumeToken(w, r, back) {
		return
	}
	title := formValue(r, "title")
	if title == "" {
		redirectFlash(w, r, back, "error", "A task title is required.")
		return
	}
	in := api.TaskInput{
		Title:       title,
		Description: optString(formValue(r, "description")),
		ProjectID:   projectID,
		DueDate:     optString(formValue(r, "due_date")),
	}
	switch priority := api.TaskPriority(formValue(r, "priority")); priority {
	case api.PriorityLow, api.PriorityMedium, api.PriorityHigh:
		in.Priority = &priority
	}
	if _, err := s.tasks.Create(r.Context(), in); err != nil {
		s.failMutation(w, r, err, back, "Could not create the task.")
		return
	}
	redirectFlash(w, r, back, "success", "Task created.")
}

func (s *Server) handleTaskUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		http.NotFound(w, r)
		return
	}
	back := taskBack(r)
	if !s.allow("tasks.update") {
		s.deny(w, r, back)
		return
	}
	if !s.consumeToken(w, r, back) {
		return
	}
	var upd api.TaskUpdate
	if title := formValue(r, "title"); title != "" {
		upd.Title = &title
	}
	switch status := api.TaskStatus(formValue(r, "status")); status {
	case api.TaskPending, api.TaskInProgress, api.TaskCompleted:
		upd.Status = &status
	}
	switch priority := api.TaskPriority(formValue(r, "priority")); priority {
	case api.PriorityLow, api.PriorityMedium, api.PriorityHigh:
		upd.Priority = &priority
	}
	if _, err := s.tasks.Update(r.Context(), id, upd); err != nil {
		s.failMutation(w, r, err, back, "Could not update the task.")
		return
	}
	redirectFlash(w, r, back, "success", "Task updated.")
}

func (s *Server) handleTaskDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		http.NotFound(w, r)
		return
	}
	back := taskBack(r)
	if !s.allow("tasks.delete") {
		s.deny(w, r, back)
		return
	}
	if !s.consumeToken(w, r, back) {
		return
	}
	if err := s.tasks.Delete(r.Context(), id); err != nil {
		s.failMutation(w, r, err, back, "Could not delete the task.")
		return
	}
	redirectFlash(w, r, back, "success", "Task deleted.")
}

// handleTaskAssign changes the assignee. An empty selection sends zero,
// which the backend reads as unassign.
func (s *Server) handleTaskAssign(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		http.NotFound(w, r)
		return
	}
	back := taskBack(r)
	if !s.allow("tasks.assign") {
		s.deny(w, r, back)
		return
	}
	if !s.consumeToken(w, r, back) {
		return
	}
	var upd api.TaskUpdate
	if raw := formValue(r, "assigned_to"); raw != "" {
		userID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || userID <= 0 {
			redirectFlash(w, r, back, "error", "Invalid assignee.")
			return
		}
		upd.AssignedTo = &userID
	} else {
		var unassigned int64
		upd.AssignedTo = &unassigned
	}
	if _, err := s.tasks.Update(r.Context(), id, upd); err != nil {
		s.failMutation(w, r, err, back, "Could not assign the task.")
		return
	}
	redirectFlash(w, r, back, "success", "Task assignment updated.")
}

// taskBack decides where a task mutation returns to. Forms on a project page
// carry the project id; the global list is the fallback.
func taskBack(r *http.Request) string {
	if pid, err := strconv.ParseInt(r.FormValue("project_id"), 10, 64); err == nil && pid > 0 {
		return fmt.Sprintf("/projects/%d", pid)
	}
	return "/tasks"
}
