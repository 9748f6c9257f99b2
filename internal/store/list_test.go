package store

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

type rec struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (r rec) Key() string { return r.ID }

func TestUpsert_InsertsAtFrontAndReplacesInPlace(t *testing.T) {
	list := []rec{{ID: "a", Name: "A"}, {ID: "b", Name: "B"}}

	got := Upsert(list, rec{ID: "c", Name: "C"})
	want := []rec{{ID: "c", Name: "C"}, {ID: "a", Name: "A"}, {ID: "b", Name: "B"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Upsert new (-want +got):\n%s", diff)
	}

	got = Upsert(got, rec{ID: "a", Name: "A2"})
	want = []rec{{ID: "c", Name: "C"}, {ID: "a", Name: "A2"}, {ID: "b", Name: "B"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Upsert existing (-want +got):\n%s", diff)
	}
	if list[0].Name != "A" {
		t.Fatalf("Upsert mutated its input: %+v", list)
	}
}

func TestMergeByID_LocalWinsAndAppendsLocalOnly(t *testing.T) {
	server := []rec{{ID: "1", Name: "s1"}, {ID: "2", Name: "s2"}}
	local := []rec{{ID: "3", Name: "l3"}, {ID: "2", Name: "l2"}}

	got := MergeByID(server, local)
	want := []rec{{ID: "1", Name: "s1"}, {ID: "2", Name: "l2"}, {ID: "3", Name: "l3"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("MergeByID (-want +got):\n%s", diff)
	}
}

func TestRemoveByIDAndFindByID(t *testing.T) {
	list := []rec{{ID: "a"}, {ID: "b"}}
	out, removed := RemoveByID(list, "a")
	require.True(t, removed)
	require.Equal(t, []rec{{ID: "b"}}, out)

	_, removed = RemoveByID(out, "zzz")
	require.False(t, removed)

	got, ok := FindByID(list, " b ")
	require.True(t, ok)
	require.Equal(t, "b", got.ID)
}

func TestLoadList_CorruptValueIsEmpty(t *testing.T) {
	ctx := context.Background()
	kv := NewMemory()
	require.NoError(t, kv.SetItem(ctx, KeyPublishedTasks, "{not json"))

	list, err := LoadList[rec](ctx, kv, KeyPublishedTasks)
	require.NoError(t, err)
	require.NotNil(t, list)
	require.Empty(t, list)
}

func TestUpdateList_RoundTrip(t *testing.T) {
	ctx := context.Background()
	kv := NewMemory()

	_, err := UpdateList(ctx, kv, KeyJournalEntries, func(l []rec) ([]rec, error) {
		return Upsert(l, rec{ID: "e1", Name: "first"}), nil
	})
	require.NoError(t, err)

	list, err := LoadList[rec](ctx, kv, KeyJournalEntries)
	require.NoError(t, err)
	require.Equal(t, []rec{{ID: "e1", Name: "first"}}, list)

	raw, ok, err := kv.GetItem(ctx, KeyJournalEntries)
	require.NoError(t, err)
	require.True(t, ok)
	require.JSONEq(t, `[{"id":"e1","name":"first"}]`, raw)
}

func TestLoadList_SkipsUndecodableElements(t *testing.T) {
	ctx := context.Background()
	kv := NewMemory()
	require.NoError(t, kv.SetItem(ctx, KeyPublishedTasks, `[{"id":"a","name":"A"},{"id":"x","name":5},{"id":"b","name":"B"}]`))

	list, err := LoadList[rec](ctx, kv, KeyPublishedTasks)
	require.NoError(t, err)
	require.Equal(t, []rec{{ID: "a", Name: "A"}, {ID: "b", Name: "B"}}, list)

	_, err = UpdateList(ctx, kv, KeyPublishedTasks, func(l []rec) ([]rec, error) {
		return Upsert(l, rec{ID: "c", Name: "C"}), nil
	})
	require.NoError(t, err)
	raw, _, err := kv.GetItem(ctx, KeyPublishedTasks)
	require.NoError(t, err)
	require.JSONEq(t, `[{"id":"c","name":"C"},{"id":"a","name":"A"},{"id":"b","name":"B"}]`, raw)
}

func TestReadJSON_BadValueLeavesOutUntouched(t *testing.T) {
	ctx := context.Background()
	kv := NewMemory()
	require.NoError(t, kv.SetItem(ctx, KeyProfile, `{"id":"u1","name":7}`))

	out := rec{ID: "keep", Name: "Keep"}
	found, err := ReadJSON(ctx, kv, KeyProfile, &out)
	require.NoError(t, err)
	require.False(t, found)
	require.Equal(t, rec{ID: "keep", Name: "Keep"}, out)

	require.NoError(t, kv.SetItem(ctx, KeyProfile, `{"id":"u1","name":"Ann"}`))
	found, err = ReadJSON(ctx, kv, KeyProfile, &out)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, rec{ID: "u1", Name: "Ann"}, out)
}
