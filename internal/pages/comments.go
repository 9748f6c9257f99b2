package pages

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"pandora-cli/internal/api"
	"pandora-cli/internal/model"
)

const commentsPageSize = 50

type CommentView struct {
	ID         string `json:"id"`
	AuthorID   string `json:"authorId,omitempty"`
	AuthorName string `json:"authorName"`
	Content    string `json:"content"`
	CreatedAt  string `json:"createdAt,omitempty"`
	TimeAgo    string `json:"timeAgo,omitempty"`
}

type CommentsPage struct {
	API *api.Client
	Now func() time.Time
}

// Load returns the first page of comments on an owner (a task, a journal entry)
// and the total count.
func (p *CommentsPage) Load(ctx context.Context, ownerType string, ownerID model.ID) ([]CommentView, int, error) {
	res, err := p.API.ListComments(ctx, ownerType, ownerID, 1, commentsPageSize)
	if err != nil {
		return nil, 0, err
	}
	now := clock(p.Now)()
	out := make([]CommentView, 0, len(res.List))
	for _, c := range res.List {
		v := CommentView{
			ID:         c.ID.String(),
			AuthorID:   c.AuthorID.String(),
			AuthorName: c.DisplayAuthor(),
			Content:    c.Content,
			TimeAgo:    FormatTimeAgo(c.CreatedAt, now),
		}
		if v.AuthorID == "" && c.AuthorInfo != nil {
			v.AuthorID = c.AuthorInfo.ID.String()
		}
		if c.CreatedAt != nil && !c.CreatedAt.IsZero() {
			v.CreatedAt = c.CreatedAt.UTC().Format(time.RFC3339)
		}
		out = append(out, v)
	}
	return out, res.Total, nil
}

func (p *CommentsPage) Post(ctx context.Context, ownerType string, ownerID model.ID, content string) (model.Result, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return model.Result{}, invalid("content", "please enter a comment")
	}
	return p.API.CreateComment(ctx, model.Comment{OwnerType: ownerType, OwnerID: ownerID, Content: content})
}

// Delete removes a comment on behalf of the signed-in user.
func (p *CommentsPage) Delete(ctx context.Context, commentID model.ID) (model.Result, error) {
	uid, err := p.currentUserID(ctx)
	if err != nil {
		return model.Result{}, err
	}
	res, err := p.API.DeleteComment(ctx, commentID, DeleteUserID(uid))
	if err != nil {
		switch {
		case errors.Is(err, api.ErrForbidden):
			return model.Result{}, fmt.Errorf("you do not have permission to delete this comment: %w", err)
		case errors.Is(err, api.ErrNotFound):
			return model.Result{}, fmt.Errorf("comment does not exist or was already deleted: %w", err)
		}
		return model.Result{}, err
	}
	return res, nil
}

func (p *CommentsPage) currentUserID(ctx context.Context) (model.ID, error) {
	if u, ok, err := p.API.Session.CurrentUser(ctx); err != nil {
		return "", err
	} else if ok && !u.ID.IsZero() {
		return u.ID, nil
	}
	u, err := p.API.CurrentUserWithID(ctx)
	if err != nil || u.ID.IsZero() {
		return "", errors.New("cannot resolve current user, please log in again")
	}
	return u.ID, nil
}

// DeleteUserID formats the user id the comment endpoint expects: numeric ids
// pass through, other ids gain a "U-" prefix unless they already contain one.
func DeleteUserID(id model.ID) model.ID {
	s := strings.TrimSpace(id.String())
	if s == "" {
		return ""
	}
	if _, err := strconv.ParseInt(s, 10, 64); err == nil {
		return model.ID(s)
	}
	if strings.Contains(s, "U-") {
		return model.ID(s)
	}
	return model.ID("U-" + s)
}

// FormatTimeAgo renders a timestamp relative to now: "just now", minutes,
// hours and days up to a week, then the calendar date.
func FormatTimeAgo(t *model.Timestamp, now time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	d := now.Sub(t.Time)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return plural(int(d/time.Minute), "minute") + " ago"
	case d < 24*time.Hour:
		return plural(int(d/time.Hour), "hour") + " ago"
	case d < 7*24*time.Hour:
		return plural(int(d/(24*time.Hour)), "day") + " ago"
	default:
		return t.In(now.Location()).Format("Jan 2, 2006")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return strconv.Itoa(n) + " " + unit + "s"
}
