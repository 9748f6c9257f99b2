package api

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"pandora-cli/internal/model"
)

func strPtr(s string) *string { return &s }

func TestJournal_MockRoundTrip(t *testing.T) {
	c := newTestClient(t, "http://unused.invalid", false)
	ctx := context.Background()

	res, err := c.CreateJournal(ctx, model.JournalEntry{Date: "2025-06-15", Summary: "wrote tests"})
	require.NoError(t, err)
	require.True(t, res.OK)

	page, err := c.ListJournal(ctx, JournalQuery{})
	require.NoError(t, err)
	require.Len(t, page.List, 1)
	e := page.List[0]
	require.Equal(t, res.ID, e.ID)
	require.Equal(t, "wrote tests", e.Summary)
	require.Equal(t, fixedNow.UnixMilli(), e.TS)

	_, err = c.UpdateJournal(ctx, e.ID, model.JournalPatch{Summary: strPtr("wrote more tests"), Plan: strPtr("ship")})
	require.NoError(t, err)

	page, err = c.ListJournal(ctx, JournalQuery{Date: "2025-06-15"})
	require.NoError(t, err)
	require.Len(t, page.List, 1)
	require.Equal(t, "wrote more tests", page.List[0].Summary)
	require.Equal(t, "ship", page.List[0].Plan)
	require.NotNil(t, page.List[0].UpdatedAt)
	require.NotNil(t, page.List[0].CreatedAt)

	hist, err := c.JournalHistory(ctx, e.ID)
	require.NoError(t, err)
	require.Len(t, hist, 1)
	require.Equal(t, "wrote tests", hist[0].Previous.Summary)

	_, err = c.DeleteJournal(ctx, e.ID)
	require.NoError(t, err)
	page, err = c.ListJournal(ctx, JournalQuery{})
	require.NoError(t, err)
	require.Empty(t, page.List)
}

func TestJournal_MockMissingEntry(t *testing.T) {
	c := newTestClient(t, "http://unused.invalid", false)
	ctx := context.Background()

	_, err := c.UpdateJournal(ctx, "entry-x", model.JournalPatch{Summary: strPtr("x")})
	require.EqualError(t, err, "entry not found")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = c.DeleteJournal(ctx, "entry-x")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateJournal_RealSendsClearedRelatedTasks(t *testing.T) {
	var body map[string]any
	b := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/api/journals/entry-1/", r.URL.Path)
		_ = json.NewDecoder(r.Body).Decode(&body)
		writeJSON(t, w, http.StatusOK, map[string]any{"ok": true})
	})
	c := newTestClient(t, b.URL, true)

	_, err := c.UpdateJournal(context.Background(), "entry-1", model.JournalPatch{RelatedIDs: []model.ID{}})
	require.NoError(t, err)
	require.Contains(t, body, "relatedTaskIds")
	require.Equal(t, []any{}, body["relatedTaskIds"])
	require.NotContains(t, body, "summary")
}
