package pages

import (
	"context"
	"strings"

	"pandora-cli/internal/api"
	"pandora-cli/internal/model"
)

const DefaultTasksPageSize = 12

// TaskCard is the list page's view of one task.
type TaskCard struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Summary   string   `json:"summary"`
	Details   string   `json:"details"`
	StartDate string   `json:"startDate"`
	EndDate   string   `json:"endDate"`
	Publisher string   `json:"publisher"`
	Owner     string   `json:"owner"`
	Priority  string   `json:"priority"`
	Status    string   `json:"status"`
	Progress  int      `json:"progress"`
	Tags      []string `json:"tags,omitempty"`
}

// CardFromTask maps a task onto a card. Progress follows the workflow status
// when one is set.
func CardFromTask(t model.Task) TaskCard {
	progress := t.EffectiveProgress()
	if t.Status != "" {
		progress = model.ProgressForStatus(t.Status)
	}
	creator := ""
	if t.Creator != nil {
		creator = t.Creator.Name
	}
	return TaskCard{
		ID:        orDefault(t.ID.String(), "N/A"),
		Name:      orDefault(t.Title, "Untitled task"),
		Summary:   t.Description,
		Details:   t.Description,
		StartDate: t.StartAt.Date(),
		EndDate:   t.DueAt.Date(),
		Publisher: orDefault(firstOf(t.Publisher, creator), "Unknown"),
		Owner:     orDefault(t.OwnerName(), "Unknown"),
		Priority:  orDefault(string(t.Priority), string(model.PriorityMedium)),
		Status:    orDefault(string(t.Status), string(model.StatusPublished)),
		Progress:  progress,
		Tags:      t.Tags,
	}
}

// TaskFilter narrows the loaded page on the client. Field selects what Keyword
// matches ("id", "name", "owner", "publisher", or "" for any); Start/End bound
// the card's start date (end date when the task has none).
type TaskFilter struct {
	Field   string
	Keyword string
	Start   string
	End     string
}

func (f TaskFilter) Match(c TaskCard) bool {
	date := c.StartDate
	if date == "" {
		date = c.EndDate
	}
	if !WithinRange(date, f.Start, f.End) {
		return false
	}
	if strings.TrimSpace(f.Keyword) == "" {
		return true
	}
	switch strings.ToLower(strings.TrimSpace(f.Field)) {
	case "id":
		return MatchKeyword(c.ID, f.Keyword)
	case "name", "title":
		return MatchKeyword(c.Name, f.Keyword)
	case "owner":
		return MatchKeyword(c.Owner, f.Keyword)
	case "publisher":
		return MatchKeyword(c.Publisher, f.Keyword)
	default:
		for _, v := range []string{c.ID, c.Name, c.Summary, c.Owner, c.Publisher} {
			if MatchKeyword(v, f.Keyword) {
				return true
			}
		}
		return false
	}
}

// MatchKeyword is a case-insensitive substring test; an empty keyword matches everything.
func MatchKeyword(val, kw string) bool {
	if kw == "" {
		return true
	}
	return strings.Contains(strings.ToLower(val), strings.ToLower(kw))
}

// WithinRange reports whether date lies in [start, end]. Unparsable bounds are
// ignored; with any bound set, an empty or unparsable date never matches.
func WithinRange(date, start, end string) bool {
	if strings.TrimSpace(start) == "" && strings.TrimSpace(end) == "" {
		return true
	}
	d, err := model.ParseTimestamp(date)
	if err != nil || d.IsZero() {
		return false
	}
	if s, err := model.ParseTimestamp(start); err == nil && !s.IsZero() && d.Before(s.Time) {
		return false
	}
	if e, err := model.ParseTimestamp(end); err == nil && !e.IsZero() && d.After(e.Time) {
		return false
	}
	return true
}

type TasksView struct {
	Cards      []TaskCard `json:"cards"`
	Total      int        `json:"total"`
	Page       int        `json:"page"`
	PageSize   int        `json:"pageSize"`
	TotalPages int        `json:"totalPages"`
	HasPrev    bool       `json:"hasPrev"`
	HasNext    bool       `json:"hasNext"`
}

// PrevPage returns the previous page number, or false on the first page.
func (v TasksView) PrevPage() (int, bool) {
	if v.Page <= 1 {
		return 0, false
	}
	return v.Page - 1, true
}

// NextPage returns the next page number, or false on the last page.
func (v TasksView) NextPage() (int, bool) {
	if v.Page >= v.TotalPages {
		return 0, false
	}
	return v.Page + 1, true
}

// TaskSource selects which list endpoint the page reads.
type TaskSource string

const (
	SourceAll      TaskSource = "all"
	SourcePersonal TaskSource = "personal"
	SourceView     TaskSource = "view"
)

type TasksPage struct {
	API      *api.Client
	PageSize int
	Source   TaskSource
	UserID   model.ID
}

func (p *TasksPage) Load(ctx context.Context, page int, q api.TaskQuery, f TaskFilter) (TasksView, error) {
	size := p.PageSize
	if size <= 0 {
		size = DefaultTasksPageSize
	}
	if page < 1 {
		page = 1
	}
	q.Page, q.PageSize = page, size

	var (
		res model.Page[model.Task]
		err error
	)
	switch p.Source {
	case SourcePersonal:
		res, err = p.API.PersonalTasks(ctx, p.UserID, q)
	case SourceView:
		res, err = p.API.ViewTasks(ctx, q)
	default:
		res, err = p.API.ListTasks(ctx, q)
	}
	if err != nil {
		return TasksView{}, err
	}

	cards := make([]TaskCard, 0, len(res.List))
	for _, t := range res.List {
		c := CardFromTask(t)
		if f.Match(c) {
			cards = append(cards, c)
		}
	}
	v := TasksView{
		Cards:      cards,
		Total:      res.Total,
		Page:       orInt(res.Page, page),
		PageSize:   orInt(res.PageSize, size),
		TotalPages: res.TotalPages,
	}
	if v.TotalPages <= 0 {
		v.TotalPages = model.TotalPagesFor(v.Total, v.PageSize)
	}
	if v.TotalPages < 1 {
		v.TotalPages = 1
	}
	_, v.HasPrev = v.PrevPage()
	_, v.HasNext = v.NextPage()
	return v, nil
}

func orInt(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
