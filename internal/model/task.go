package model

import (
	"strings"

	"pandora-cli/internal/normalize"
)

type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
	PriorityUrgent Priority = "Urgent"
)

type TaskStatus string

const (
	StatusPublished  TaskStatus = "Published"
	StatusAssigned   TaskStatus = "Assigned"
	StatusInProgress TaskStatus = "InProgress"
	StatusReported   TaskStatus = "Reported"
	StatusCompleted  TaskStatus = "Completed"
	StatusClosed     TaskStatus = "Closed"
)

// ProgressForStatus maps a workflow status onto a completion percentage.
func ProgressForStatus(status TaskStatus) int {
	switch strings.ToLower(strings.TrimSpace(string(status))) {
	case "assigned":
		return 10
	case "inprogress", "in_progress":
		return 50
	case "reported":
		return 80
	case "completed", "closed":
		return 100
	default:
		return 0
	}
}

type Task struct {
	ID          ID         `json:"id"`
	Title       string     `json:"title,omitempty"`
	Description string     `json:"description,omitempty"`
	StartAt     *Timestamp `json:"startAt,omitempty"`
	DueAt       *Timestamp `json:"dueAt,omitempty"`
	Priority    Priority   `json:"priority,omitempty"`
	Status      TaskStatus `json:"status,omitempty"`
	Progress    *int       `json:"progress,omitempty"`

	Creator   *UserRef `json:"creator,omitempty"`
	CreatorID ID       `json:"creatorId,omitempty"`
	Owner     string   `json:"owner,omitempty"`
	Publisher string   `json:"publisher,omitempty"`

	AssigneeIDs []ID     `json:"assigneeIds,omitempty"`
	Tags        []string `json:"tags,omitempty"`

	CreatedAt *Timestamp `json:"createdAt,omitempty"`
	UpdatedAt *Timestamp `json:"updatedAt,omitempty"`
}

func (t Task) Key() string { return string(t.ID) }

// EffectiveProgress prefers an explicit progress value and falls back to the status mapping.
func (t Task) EffectiveProgress() int {
	if t.Progress != nil {
		return clampPercent(*t.Progress)
	}
	return ProgressForStatus(t.Status)
}

// OwnerName resolves the display owner: explicit owner, then creator name.
func (t Task) OwnerName() string {
	if s := strings.TrimSpace(t.Owner); s != "" {
		return s
	}
	if t.Creator != nil {
		return strings.TrimSpace(t.Creator.Name)
	}
	return ""
}

func (t Task) MarshalJSON() ([]byte, error) {
	type plain Task
	return normalize.Task.Marshal(plain(t))
}

func (t *Task) UnmarshalJSON(b []byte) error {
	type plain Task
	var p plain
	if err := normalize.Task.Unmarshal(b, &p); err != nil {
		return err
	}
	*t = Task(p)
	return nil
}

func (u UserRef) MarshalJSON() ([]byte, error) {
	type plain UserRef
	return normalize.UserRef.Marshal(plain(u))
}

func (u *UserRef) UnmarshalJSON(b []byte) error {
	type plain UserRef
	var p plain
	if err := normalize.UserRef.Unmarshal(b, &p); err != nil {
		return err
	}
	*u = UserRef(p)
	return nil
}

func clampPercent(n int) int {
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}
