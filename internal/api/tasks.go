package api

import (
	"context"
	"fmt"
)

// TaskInput carries the fields accepted when creating a task.
type TaskInput struct {
	Title       string        `json:"title"`
	Description *string       `json:"description,omitempty"`
	ProjectID   int64         `json:"project_id"`
	AssignedTo  *int64        `json:"assigned_to,omitempty"`
	Status      *TaskStatus   `json:"status,omitempty"`
	Priority    *TaskPriority `json:"priority,omitempty"`
	DueDate     *string       `json:"due_date,omitempty"`
}

// TaskUpdate is a partial field set; nil fields are left untouched.
// AssignedTo covers the assign operation.
type TaskUpdate struct {
	Title       *string       `json:"title,omitempty"`
	Description *string       `json:"description,omitempty"`
	ProjectID   *int64        `json:"project_id,omitempty"`
	AssignedTo  *int64        `json:"assigned_to,omitempty"`
	Status      *TaskStatus   `json:"status,omitempty"`
	Priority    *TaskPriority `json:"priority,omitempty"`
	DueDate     *string       `json:"due_date,omitempty"`
}

// TaskService talks to the backend task endpoints.
type TaskService struct {
	client *Client
}

func NewTaskService(client *Client) *TaskService {
	return &TaskService{client: client}
}

// List returns all tasks visible to the current user. Never nil.
func (s *TaskService) List(ctx context.Context) ([]Task, error) {
	var tasks []Task
	if err := s.client.Get(ctx, "/tasks", &tasks); err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []Task{}
	}
	return tasks, nil
}

func (s *TaskService) Get(ctx context.Context, id int64) (Task, error) {
	var task Task
	if err := s.client.Get(ctx, fmt.Sprintf("/tasks/%d", id), &task); err != nil {
		return Task{}, err
	}
	return task, nil
}

// ListByProject returns the tasks belonging to one project. Never nil.
func (s *TaskService) ListByProject(ctx context.Context, projectID int64) ([]Task, error) {
	var tasks []Task
	if err := s.client.Get(ctx, fmt.Sprintf("/projects/%d/tasks", projectID), &tasks); err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []Task{}
	}
	return tasks, nil
}

func (s *TaskService) Create(ctx context.Context, in TaskInput) (Task, error) {
	var task Task
	if err := s.client.Post(ctx, "/tasks", in, &task); err != nil {
		return Task{}, err
	}
	return task, nil
}

func (s *TaskService) Update(ctx context.Context, id int64, upd TaskUpdate) (Task, error) {
	var task Task
	if err := s.client.Put(ctx, fmt.Sprintf("/tasks/%d", id), upd, &task); err != nil {
		return Task{}, err
	}
	return task, nil
}

func (s *TaskService) Delete(ctx context.Context, id int64) error {
	return s.client.Delete(ctx, fmt.Sprintf("/tasks/%d", id))
}
