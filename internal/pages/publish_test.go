package pages

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pandora-cli/internal/model"
)

func validForm() PublishForm {
	return PublishForm{
		Title:       "Ship release",
		Description: "Cut and tag",
		DueAt:       "2025-06-16T18:00",
		Priority:    "High",
		Tags:        "release, ops,, ",
		AssigneeIDs: []model.ID{"3"},
	}
}

func TestPublishFormValidate(t *testing.T) {
	require.NoError(t, validForm().Validate())

	cases := map[string]func(*PublishForm){
		"title":       func(f *PublishForm) { f.Title = " " },
		"description": func(f *PublishForm) { f.Description = "" },
		"dueAt":       func(f *PublishForm) { f.DueAt = "tomorrow" },
		"priority":    func(f *PublishForm) { f.Priority = "" },
		"assigneeIds": func(f *PublishForm) { f.AssigneeIDs = nil },
	}
	for field, mutate := range cases {
		f := validForm()
		mutate(&f)
		var ve *ValidationError
		require.True(t, errors.As(f.Validate(), &ve), field)
		assert.Equal(t, field, ve.Field)
	}
}

func TestParseTags(t *testing.T) {
	assert.Equal(t, []string{"release", "ops"}, ParseTags("release, ops,, "))
	assert.Equal(t, []string{}, ParseTags(""))
}

func TestParseDue(t *testing.T) {
	got, err := ParseDue("2025-06-16T18:00:00Z")
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2025, 6, 16, 18, 0, 0, 0, time.UTC)))

	got, err = ParseDue("2025-06-16T18:00")
	require.NoError(t, err)
	assert.Equal(t, time.Local, got.Location())
	assert.Equal(t, 18, got.Hour())

	_, err = ParseDue("soon")
	assert.Error(t, err)
}

func TestDefaultDue(t *testing.T) {
	loc := time.FixedZone("UTC+8", 8*3600)
	got := DefaultDue(time.Date(2025, 6, 30, 23, 10, 0, 0, loc))
	assert.Equal(t, time.Date(2025, 7, 1, 18, 0, 0, 0, loc), got)

	p := &PublishPage{Now: nowFn}
	assert.Equal(t, "2025-06-16T18:00", p.DefaultForm().DueAt)
}

func TestPublishSubmitMock(t *testing.T) {
	ctx := context.Background()
	c := newClient(t, "", false)
	p := &PublishPage{API: c, Now: nowFn}

	_, err := p.Submit(ctx, PublishForm{})
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))

	res, err := p.Submit(ctx, validForm())
	require.NoError(t, err)
	require.True(t, res.OK)

	got, err := c.GetTask(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ship release", got.Title)
	assert.Equal(t, []string{"release", "ops"}, got.Tags)
	assert.Equal(t, model.StatusPublished, got.Status)
}

func TestLoadUsersPagesDedupesAndResolvesTeams(t *testing.T) {
	var teamHits atomic.Int64
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/user":
			page, _ := strconv.Atoi(r.URL.Query().Get("page"))
			assert.Equal(t, "100", r.URL.Query().Get("pageSize"))
			switch page {
			case 1:
				writeJSON(t, w, http.StatusOK, map[string]any{
					"total": 3, "page": 1, "pageSize": 100, "totalPages": 2,
					"list": []any{
						map[string]any{"user_id": 1, "name": "Alice", "team_id": 10, "role_id": 3},
						map[string]any{"user_id": 2, "name": "Bob", "team": map[string]any{"name": "Infra"}},
					},
				})
			default:
				writeJSON(t, w, http.StatusOK, map[string]any{
					"total": 3, "page": 2, "pageSize": 100, "totalPages": 2,
					"list": []any{
						map[string]any{"user_id": 2, "name": "Bob"},
						map[string]any{"user_id": 3, "name": "", "team_id": 99},
					},
				})
			}
		case "/api/team/10":
			teamHits.Add(1)
			writeJSON(t, w, http.StatusOK, map[string]any{"data": map[string]any{"team_name": "Platform"}})
		case "/api/team/99":
			writeJSON(t, w, http.StatusInternalServerError, map[string]any{"message": "boom"})
		default:
			http.NotFound(w, r)
		}
	})
	p := &PublishPage{API: newClient(t, srv.URL, true), Now: nowFn}

	users, err := p.LoadUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 3)

	assert.Equal(t, UserOption{ID: "1", Name: "Alice", Team: "Platform", Role: "Team Lead"}, users[0])
	assert.Equal(t, "Infra", users[1].Team)
	assert.Equal(t, "Unknown", users[2].Name)
	assert.Equal(t, "Team 99", users[2].Team)
	assert.EqualValues(t, 1, teamHits.Load())
}
