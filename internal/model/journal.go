package model

import (
	"encoding/json"

	"pandora-cli/internal/normalize"
)

type JournalEntry struct {
	ID         ID         `json:"id"`
	Date       string     `json:"date,omitempty"`
	Summary    string     `json:"summary,omitempty"`
	Plan       string     `json:"plan,omitempty"`
	Help       string     `json:"help,omitempty"`
	AuthorID   ID         `json:"authorId,omitempty"`
	AuthorName string     `json:"authorName,omitempty"`
	AuthorInfo *UserRef   `json:"authorInfo,omitempty"`
	RelatedIDs []ID       `json:"relatedTaskIds,omitempty"`
	TS         int64      `json:"ts,omitempty"`
	CreatedAt  *Timestamp `json:"createdAt,omitempty"`
	UpdatedAt  *Timestamp `json:"updatedAt,omitempty"`
}

func (e JournalEntry) Key() string { return string(e.ID) }

func (e JournalEntry) MarshalJSON() ([]byte, error) {
	type plain JournalEntry
	return normalize.Journal.Marshal(plain(e))
}

func (e *JournalEntry) UnmarshalJSON(b []byte) error {
	type plain JournalEntry
	var p plain
	if err := normalize.Journal.Unmarshal(b, &p); err != nil {
		return err
	}
	*e = JournalEntry(p)
	return nil
}

// JournalPatch carries the fields of an update; nil fields are left unchanged.
type JournalPatch struct {
	Date       *string `json:"date,omitempty"`
	Summary    *string `json:"summary,omitempty"`
	Plan       *string `json:"plan,omitempty"`
	Help       *string `json:"help,omitempty"`
	RelatedIDs []ID    `json:"relatedTaskIds,omitempty"`
}

// MarshalJSON sends a non-nil empty RelatedIDs as [] so the server clears the links.
func (p JournalPatch) MarshalJSON() ([]byte, error) {
	type plain JournalPatch
	w := struct {
		plain
		RelatedIDs *[]ID `json:"relatedTaskIds,omitempty"`
	}{plain: plain(p)}
	if p.RelatedIDs != nil {
		w.RelatedIDs = &p.RelatedIDs
	}
	return json.Marshal(w)
}

// Apply merges p onto e and returns the result.
func (p JournalPatch) Apply(e JournalEntry) JournalEntry {
	if p.Date != nil {
		e.Date = *p.Date
	}
	if p.Summary != nil {
		e.Summary = *p.Summary
	}
	if p.Plan != nil {
		e.Plan = *p.Plan
	}
	if p.Help != nil {
		e.Help = *p.Help
	}
	if p.RelatedIDs != nil {
		e.RelatedIDs = p.RelatedIDs
	}
	return e
}

// JournalRevision is one recorded edit of an entry: the state before the edit.
type JournalRevision struct {
	EntryID    ID           `json:"entryId"`
	ModifiedAt *Timestamp   `json:"modifiedAt,omitempty"`
	Previous   JournalEntry `json:"previous"`
}
