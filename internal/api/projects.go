package api

import (
	"context"
	"fmt"
)

// ProjectInput carries the fields accepted when creating a project.
type ProjectInput struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	TeamID      int64   `json:"team_id"`
}

// ProjectUpdate is a partial field set; nil fields are left untouched.
type ProjectUpdate struct {
	Name        *string        `json:"name,omitempty"`
	Description *string        `json:"description,omitempty"`
	Status      *ProjectStatus `json:"status,omitempty"`
	TeamID      *int64         `json:"team_id,omitempty"`
}

// ProjectService talks to the backend project endpoints.
type ProjectService struct {
	client *Client
}

func NewProjectService(client *Client) *ProjectService {
	return &ProjectService{client: client}
}

// List returns all projects visible to the current user. Never nil.
func (s *ProjectService) List(ctx context.Context) ([]Project, error) {
	var projects []Project
	if err := s.client.Get(ctx, "/projects", &projects); err != nil {
		return nil, err
	}
	if projects == nil {
		projects = []Project{}
	}
	return projects, nil
}

func (s *ProjectService) Get(ctx context.Context, id int64) (Project, error) {
	var project Project
	if err := s.client.Get(ctx, fmt.Sprintf("/projects/%d", id), &project); err != nil {
		return Project{}, err
	}
	return project, nil
}

// ListByTeam returns the projects belonging to one team. Never nil.
func (s *ProjectService) ListByTeam(ctx context.Context, teamID int64) ([]Project, error) {
	var projects []Project
	if err := s.client.Get(ctx, fmt.Sprintf("/teams/%d/projects", teamID), &projects); err != nil {
		return nil, err
	}
	if projects == nil {
		projects = []Project{}
	}
	return projects, nil
}

func (s *ProjectService) Create(ctx context.Context, in ProjectInput) (Project, error) {
	var project Project
	if err := s.client.Post(ctx, "/projects", in, &project); err != nil {
		return Project{}, err
	}
	return project, nil
}

func (s *ProjectService) Update(ctx context.Context, id int64, upd ProjectUpdate) (Project, error) {
	var project Project
	if err := s.client.Put(ctx, fmt.Sprintf("/projects/%d", id), upd, &project); err != nil {
		return Project{}, err
	}
	return project, nil
}

func (s *ProjectService) Delete(ctx context.Context, id int64) error {
	return s.client.Delete(ctx, fmt.Sprintf("/projects/%d", id))
}
