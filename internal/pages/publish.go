package pages

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"pandora-cli/internal/api"
	"pandora-cli/internal/model"
)

const (
	userPickerPageSize = 100
	teamLookupWorkers  = 8
)

type PublishForm struct {
	Title       string
	Description string
	// DueAt accepts the datetime-local form (2006-01-02T15:04) in local time, or RFC 3339.
	DueAt       string
	Priority    string
	Tags        string
	AssigneeIDs []model.ID
}

func (f PublishForm) Validate() error {
	if strings.TrimSpace(f.Title) == "" {
		return invalid("title", "please enter a task title")
	}
	if strings.TrimSpace(f.Description) == "" {
		return invalid("description", "please enter a task description")
	}
	if strings.TrimSpace(f.DueAt) == "" {
		return invalid("dueAt", "please choose a due time")
	}
	if _, err := ParseDue(f.DueAt); err != nil {
		return invalid("dueAt", "invalid due time %q", f.DueAt)
	}
	if strings.TrimSpace(f.Priority) == "" {
		return invalid("priority", "please choose a priority")
	}
	if len(f.AssigneeIDs) == 0 {
		return invalid("assigneeIds", "please select at least one member")
	}
	return nil
}

// Task builds the create payload. Call Validate first.
func (f PublishForm) Task() (model.Task, error) {
	due, err := ParseDue(f.DueAt)
	if err != nil {
		return model.Task{}, err
	}
	return model.Task{
		Title:       strings.TrimSpace(f.Title),
		Description: strings.TrimSpace(f.Description),
		DueAt:       model.NewTimestamp(due),
		Priority:    model.Priority(strings.TrimSpace(f.Priority)),
		Tags:        ParseTags(f.Tags),
		AssigneeIDs: f.AssigneeIDs,
	}, nil
}

var dueLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
}

// ParseDue reads a due time. Zone-less values are local time.
func ParseDue(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	for _, layout := range dueLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid due time: %q", s)
}

// ParseTags splits on commas, trims, and drops empty tags.
func ParseTags(s string) []string {
	out := []string{}
	for _, tag := range strings.Split(s, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			out = append(out, tag)
		}
	}
	return out
}

// DefaultDue is tomorrow at 18:00 in now's location.
func DefaultDue(now time.Time) time.Time {
	y, m, d := now.AddDate(0, 0, 1).Date()
	return time.Date(y, m, d, 18, 0, 0, 0, now.Location())
}

type PublishPage struct {
	API *api.Client
	Now func() time.Time
}

// DefaultForm pre-fills the due time.
func (p *PublishPage) DefaultForm() PublishForm {
	return PublishForm{DueAt: DefaultDue(clock(p.Now)()).Format("2006-01-02T15:04")}
}

func (p *PublishPage) Submit(ctx context.Context, f PublishForm) (model.Result, error) {
	if err := f.Validate(); err != nil {
		return model.Result{}, err
	}
	t, err := f.Task()
	if err != nil {
		return model.Result{}, err
	}
	return p.API.CreateTask(ctx, t)
}

// UserOption is one row of the assignee picker.
type UserOption struct {
	ID    model.ID `json:"id"`
	Name  string   `json:"name"`
	Email string   `json:"email,omitempty"`
	Team  string   `json:"team"`
	Role  string   `json:"role"`
}

// LoadUsers walks every page of the user directory, drops duplicate ids, and
// resolves team names concurrently.
func (p *PublishPage) LoadUsers(ctx context.Context) ([]UserOption, error) {
	var users []model.User
	seen := map[model.ID]bool{}
	for page, totalPages := 1, 1; page <= totalPages; page++ {
		res, err := p.API.ListUsers(ctx, api.UserQuery{Page: page, PageSize: userPickerPageSize})
		if err != nil {
			return nil, err
		}
		if res.TotalPages > totalPages {
			totalPages = res.TotalPages
		}
		added := 0
		for _, u := range res.List {
			if seen[u.ID] {
				continue
			}
			seen[u.ID] = true
			users = append(users, u)
			added++
		}
		if added == 0 {
			break
		}
	}

	out := make([]UserOption, len(users))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(teamLookupWorkers)
	for i, u := range users {
		out[i] = UserOption{
			ID:    u.ID,
			Name:  orDefault(u.Name, "Unknown"),
			Email: u.Email,
			Role:  u.DisplayRole(),
		}
		g.Go(func() error {
			out[i].Team = p.teamDisplay(gctx, u)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (p *PublishPage) teamDisplay(ctx context.Context, u model.User) string {
	if u.Team != nil && u.Team.Name != "" {
		return u.Team.Name
	}
	if u.TeamName != "" {
		return u.TeamName
	}
	if u.TeamID.IsZero() {
		return "Unassigned"
	}
	name, err := p.API.TeamName(ctx, u.TeamID)
	if err != nil {
		return "Team " + u.TeamID.String()
	}
	return name
}
