package api

import (
	"context"
	"encoding/json"
	"fmt"
)

// TeamInput carries the fields accepted when creating a team.
type TeamInput struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

// TeamUpdate is a partial field set; nil fields are left untouched.
type TeamUpdate struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

// TeamService talks to the backend team endpoints.
type TeamService struct {
	client *Client
}

func NewTeamService(client *Client) *TeamService {
	return &TeamService{client: client}
}

// List returns all teams visible to the current user. Never nil.
func (s *TeamService) List(ctx context.Context) ([]Team, error) {
	var teams []Team
	if err := s.client.Get(ctx, "/teams", &teams); err != nil {
		return nil, err
	}
	if teams == nil {
		teams = []Team{}
	}
	return teams, nil
}

// Get fetches one team. The backend has been observed answering with either
// the team object or a one-element array; both shapes are accepted.
func (s *TeamService) Get(ctx context.Context, id int64) (Team, error) {
	var raw json.RawMessage
	if err := s.client.Get(ctx, fmt.Sprintf("/teams/%d", id), &raw); err != nil {
		return Team{}, err
	}
	var team Team
	if err := json.Unmarshal(raw, &team); err == nil {
		return team, nil
	}
	var teams []Team
	if err := json.Unmarshal(raw, &teams); err != nil {
		return Team{}, fmt.Errorf("api: decode team: %w", err)
	}
	if len(teams) == 0 {
		return Team{}, &APIError{StatusCode: 404, Message: "Team not found"}
	}
	return teams[0], nil
}

func (s *TeamService) Create(ctx context.Context, in TeamInput) (Team, error) {
	var team Team
	if err := s.client.Post(ctx, "/teams", in, &team); err != nil {
		return Team{}, err
	}
	return team, nil
}

func (s *TeamService) Update(ctx context.Context, id int64, upd TeamUpdate) (Team, error) {
	var team Team
	if err := s.client.Put(ctx, fmt.Sprintf("/teams/%d", id), upd, &team); err != nil {
		return Team{}, err
	}
	return team, nil
}

func (s *TeamService) Delete(ctx context.Context, id int64) error {
	return s.client.Delete(ctx, fmt.Sprintf("/teams/%d", id))
}

// Members lists the team roster. Never nil.
func (s *TeamService) Members(ctx context.Context, teamID int64) ([]TeamMember, error) {
	var members []TeamMember
	if err := s.client.Get(ctx, fmt.Sprintf("/teams/%d/members", teamID), &members); err != nil {
		return nil, err
	}
	if members == nil {
		members = []TeamMember{}
	}
	return members, nil
}

// AddMemberByEmail asks the backend to resolve email to a user and add it to
// the roster.
func (s *TeamService) AddMemberByEmail(ctx context.Context, teamID int64, email string) (TeamMember, error) {
	body := map[string]string{"email": email}
	var member TeamMember
	if err := s.client.Post(ctx, fmt.Sprintf("/teams/%d/members", teamID), body, &member); err != nil {
		return TeamMember{}, err
	}
	return member, nil
}

func (s *TeamService) RemoveMember(ctx context.Context, teamID, userID int64) error {
	return s.client.Delete(ctx, fmt.Sprintf("/teams/%d/members/%d", teamID, userID))
}
