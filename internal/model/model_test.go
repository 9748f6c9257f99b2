package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestID_JSON(t *testing.T) {
	var ids []ID
	require.NoError(t, json.Unmarshal([]byte(`[5, " T-1 ", null, "007", 12.5]`), &ids))
	assert.Equal(t, []ID{"5", "T-1", "", "007", "12.5"}, ids)

	b, err := json.Marshal([]ID{"5", "T-1", "007", "0"})
	require.NoError(t, err)
	assert.Equal(t, `[5,"T-1","007",0]`, string(b))
}

func TestIDFrom(t *testing.T) {
	assert.Equal(t, ID("3"), IDFrom(json.Number("3")))
	assert.Equal(t, ID("3"), IDFrom(float64(3)))
	assert.Equal(t, ID("x"), IDFrom(" x "))
	assert.Equal(t, ID(""), IDFrom(nil))
	assert.True(t, IDFrom(nil).IsZero())
}

func TestParseTimestamp(t *testing.T) {
	want := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	for _, in := range []string{"2025-06-01T09:00:00Z", "2025-06-01 09:00:00", "2025-06-01T09:00", "1748768400000"} {
		got, err := ParseTimestamp(in)
		require.NoError(t, err, in)
		assert.True(t, want.Equal(got.Time), "%s: got %v", in, got.Time)
	}
	_, err := ParseTimestamp("June 1")
	require.Error(t, err)

	var ts Timestamp
	require.NoError(t, json.Unmarshal([]byte(`"2025-06-01"`), &ts))
	assert.Equal(t, "2025-06-01", ts.Date())
	b, err := json.Marshal(ts)
	require.NoError(t, err)
	assert.Equal(t, `"2025-06-01T00:00:00Z"`, string(b))

	var nilTS *Timestamp
	assert.Equal(t, "", nilTS.Date())
}

func TestTask_LegacyKeysAndProgress(t *testing.T) {
	var task Task
	require.NoError(t, json.Unmarshal([]byte(`{"taskId": 42, "name": "Ship", "details": "d", "endDate": "2025-06-20", "status": "Reported"}`), &task))
	assert.Equal(t, ID("42"), task.ID)
	assert.Equal(t, "Ship", task.Title)
	assert.Equal(t, "d", task.Description)
	assert.Equal(t, "2025-06-20", task.DueAt.Date())
	assert.Equal(t, 80, task.EffectiveProgress())

	p := 150
	task.Progress = &p
	assert.Equal(t, 100, task.EffectiveProgress())
}

func TestProgressForStatus(t *testing.T) {
	cases := map[TaskStatus]int{
		StatusPublished:  0,
		StatusAssigned:   10,
		StatusInProgress: 50,
		"in_progress":    50,
		StatusReported:   80,
		StatusCompleted:  100,
		StatusClosed:     100,
		"":               0,
	}
	for status, want := range cases {
		assert.Equal(t, want, ProgressForStatus(status), status)
	}
}

func TestUser_DisplayRole(t *testing.T) {
	assert.Equal(t, "Unknown", User{}.DisplayRole())
	assert.Equal(t, "Team Lead", User{RoleID: "3"}.DisplayRole())
	assert.Equal(t, "Member", User{RoleID: "99"}.DisplayRole())
	assert.Equal(t, "Auditor", User{RoleID: "3", RoleName: "Auditor"}.DisplayRole())
}

func TestJournalPatch_Apply(t *testing.T) {
	summary := "new"
	e := JournalEntry{ID: "entry-1", Summary: "old", Plan: "keep", RelatedIDs: []ID{"T-1"}}
	got := JournalPatch{Summary: &summary, RelatedIDs: []ID{}}.Apply(e)
	assert.Equal(t, "new", got.Summary)
	assert.Equal(t, "keep", got.Plan)
	assert.Empty(t, got.RelatedIDs)
	assert.Equal(t, "old", e.Summary)
}

func TestJournalPatch_MarshalRelatedIDs(t *testing.T) {
	b, err := json.Marshal(JournalPatch{RelatedIDs: []ID{}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"relatedTaskIds":[]}`, string(b))

	summary := "s"
	b, err = json.Marshal(JournalPatch{Summary: &summary})
	require.NoError(t, err)
	assert.JSONEq(t, `{"summary":"s"}`, string(b))

	b, err = json.Marshal(JournalPatch{RelatedIDs: []ID{"T-1", "7"}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"relatedTaskIds":["T-1",7]}`, string(b))
}

func TestComment_DisplayAuthor(t *testing.T) {
	assert.Equal(t, "Anonymous", Comment{}.DisplayAuthor())
	assert.Equal(t, "Flat", Comment{AuthorName: "Flat"}.DisplayAuthor())
	assert.Equal(t, "Info", Comment{AuthorName: "Flat", AuthorInfo: &UserRef{Name: "Info"}}.DisplayAuthor())
}

func TestFeatures(t *testing.T) {
	assert.Len(t, Features(), 10)
	assert.True(t, IsFeature(FeatureJournal))
	assert.False(t, IsFeature("users"))
}
