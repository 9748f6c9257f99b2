package api

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pandora-cli/internal/model"
)

func taskIDs(ts []model.Task) []string {
	out := make([]string, 0, len(ts))
	for _, t := range ts {
		out = append(out, t.ID.String())
	}
	return out
}

func TestListTasks_MockSortsSeedAndPublished(t *testing.T) {
	c := newTestClient(t, "http://unused.invalid", false)
	ctx := context.Background()

	created, err := c.CreateTask(ctx, model.Task{ID: "T-2000", Title: "Local task", Priority: model.PriorityLow})
	require.NoError(t, err)
	require.Equal(t, model.ID("T-2000"), created.ID)

	page, err := c.ListTasks(ctx, TaskQuery{})
	require.NoError(t, err)
	want := []string{"T-2000", "T-1004", "T-1002", "T-1005", "T-1001", "T-1003"}
	if diff := cmp.Diff(want, taskIDs(page.List)); diff != "" {
		t.Fatalf("order (-want +got):\n%s", diff)
	}
	require.Equal(t, 6, page.Total)
}

func TestListTasks_MockFilterAndPaginate(t *testing.T) {
	c := newTestClient(t, "http://unused.invalid", false)
	ctx := context.Background()

	page, err := c.ListTasks(ctx, TaskQuery{Page: 2, PageSize: 2})
	require.NoError(t, err)
	require.Equal(t, []string{"T-1005", "T-1001"}, taskIDs(page.List))
	require.Equal(t, 5, page.Total)
	require.Equal(t, 3, page.TotalPages)

	page, err = c.ListTasks(ctx, TaskQuery{Keyword: "alice"})
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"T-1001", "T-1005"}, taskIDs(page.List))

	page, err = c.ListTasks(ctx, TaskQuery{Page: 9, PageSize: 2})
	require.NoError(t, err)
	require.Empty(t, page.List)
	require.NotNil(t, page.List)
}

func TestListTasks_MockReadsDataDirSeed(t *testing.T) {
	c := newTestClient(t, "http://unused.invalid", false)
	require.NoError(t, os.MkdirAll(filepath.Join(c.seedDir, "data"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(c.seedDir, "data", "tasks.json"),
		[]byte(`[{"task_id": 5, "name": "From file", "create_time": "2024-01-01"}]`), 0o644))

	page, err := c.ListTasks(context.Background(), TaskQuery{})
	require.NoError(t, err)
	require.Len(t, page.List, 1)
	require.Equal(t, model.ID("5"), page.List[0].ID)
	require.Equal(t, "From file", page.List[0].Title)
}

func TestListTasks_RealEnvelope(t *testing.T) {
	b := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tasks/all", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "High", r.URL.Query().Get("priority"))
		writeJSON(t, w, http.StatusOK, map[string]any{
			"total":    11,
			"page":     2,
			"pageSize": 5,
			"list": []any{
				map[string]any{"id": 6, "title": "six", "status": "Assigned", "creator": map[string]any{"user_id": 3, "name": "Zed"}},
			},
		})
	})
	c := newTestClient(t, b.URL, true)

	page, err := c.ListTasks(context.Background(), TaskQuery{Page: 2, PageSize: 5, Priority: "High"})
	require.NoError(t, err)
	require.Equal(t, 11, page.Total)
	require.Equal(t, 3, page.TotalPages)
	require.Len(t, page.List, 1)
	require.Equal(t, "Zed", page.List[0].OwnerName())
	require.Equal(t, 10, page.List[0].EffectiveProgress())
}

func TestListTasks_RealUnpaginatedListIsSlicedLocally(t *testing.T) {
	b := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		list := []any{}
		for i := 1; i <= 7; i++ {
			list = append(list, map[string]any{"id": i})
		}
		writeJSON(t, w, http.StatusOK, list)
	})
	c := newTestClient(t, b.URL, true)

	page, err := c.ListTasks(context.Background(), TaskQuery{Page: 2, PageSize: 3})
	require.NoError(t, err)
	require.Equal(t, []string{"4", "5", "6"}, taskIDs(page.List))
	require.Equal(t, 7, page.Total)
	require.Equal(t, 3, page.TotalPages)
}

func TestFeatureToggle_OnlyAffectsItsFeature(t *testing.T) {
	b := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]any{"ok": true, "taskId": 99})
	})
	c := newTestClient(t, b.URL, true)
	c.Flags.SetFeatureMode(model.FeatureTasksList, false)
	ctx := context.Background()

	_, err := c.ListTasks(ctx, TaskQuery{})
	require.NoError(t, err)
	require.EqualValues(t, 0, b.hits.Load(), "tasksList in mock mode must not hit the backend")

	res, err := c.CreateTask(ctx, model.Task{Title: "real"})
	require.NoError(t, err)
	require.Equal(t, model.ID("99"), res.ID)
	require.EqualValues(t, 1, b.hits.Load())
}

func TestGetTask_Mock(t *testing.T) {
	c := newTestClient(t, "http://unused.invalid", false)
	ctx := context.Background()

	res, err := c.CreateTask(ctx, model.Task{Title: "Round trip", Tags: []string{"a"}})
	require.NoError(t, err)

	got, err := c.GetTask(ctx, res.ID)
	require.NoError(t, err)
	require.Equal(t, "Round trip", got.Title)
	require.Equal(t, []string{"a"}, got.Tags)
	require.Equal(t, model.StatusPublished, got.Status)

	_, err = c.GetTask(ctx, "nope")
	require.ErrorIs(t, err, ErrNotFound)
	require.EqualError(t, err, "task not found")
}

func TestGetTask_RealWrappedAndNotFound(t *testing.T) {
	b := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/tasks/1" {
			writeJSON(t, w, http.StatusOK, map[string]any{"ok": true, "task": map[string]any{"taskId": 1, "title": "One", "due_at": "2025-07-01 18:00:00"}})
			return
		}
		writeJSON(t, w, http.StatusNotFound, map[string]any{"message": "missing"})
	})
	c := newTestClient(t, b.URL, true)
	ctx := context.Background()

	got, err := c.GetTask(ctx, "1")
	require.NoError(t, err)
	require.Equal(t, "One", got.Title)
	require.Equal(t, "2025-07-01", got.DueAt.Date())

	_, err = c.GetTask(ctx, "2")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestImportantTasks_Mock(t *testing.T) {
	c := newTestClient(t, "http://unused.invalid", false)
	got, err := c.ImportantTasks(context.Background())
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"T-1001", "T-1004"}, taskIDs(got))
}

func TestCreateTask_MockDropsUndecodableStoredTask(t *testing.T) {
	c := newTestClient(t, "http://unused.invalid", false)
	ctx := context.Background()
	require.NoError(t, c.KV.SetItem(ctx, "publishedTasks",
		`[{"id":"T-OLD","title":"old"},{"id":"T-X","title":"x","progress":"50"}]`))

	res, err := c.CreateTask(ctx, model.Task{Title: "new", Priority: model.PriorityLow})
	require.NoError(t, err)

	page, err := c.ListTasks(ctx, TaskQuery{Page: 1, PageSize: 50})
	require.NoError(t, err)
	assert.Equal(t, 7, page.Total)
	for _, task := range page.List {
		assert.False(t, task.ID.IsZero(), "blank task in list: %+v", task)
	}
	ids := taskIDs(page.List)
	assert.Contains(t, ids, res.ID.String())
	assert.Contains(t, ids, "T-OLD")
}
