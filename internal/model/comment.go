package model

import "pandora-cli/internal/normalize"

type Comment struct {
	ID         ID         `json:"id"`
	OwnerType  string     `json:"ownerType,omitempty"`
	OwnerID    ID         `json:"ownerId,omitempty"`
	Content    string     `json:"content"`
	AuthorID   ID         `json:"authorId,omitempty"`
	AuthorName string     `json:"authorName,omitempty"`
	AuthorInfo *UserRef   `json:"authorInfo,omitempty"`
	CreatedAt  *Timestamp `json:"createdAt,omitempty"`
}

func (c Comment) Key() string { return string(c.ID) }

// DisplayAuthor prefers the embedded author info, then the flat author name.
func (c Comment) DisplayAuthor() string {
	if c.AuthorInfo != nil && c.AuthorInfo.Name != "" {
		return c.AuthorInfo.Name
	}
	if c.AuthorName != "" {
		return c.AuthorName
	}
	return "Anonymous"
}

func (c Comment) MarshalJSON() ([]byte, error) {
	type plain Comment
	return normalize.Comment.Marshal(plain(c))
}

func (c *Comment) UnmarshalJSON(b []byte) error {
	type plain Comment
	var p plain
	if err := normalize.Comment.Unmarshal(b, &p); err != nil {
		return err
	}
	*c = Comment(p)
	return nil
}

func (s Stats) MarshalJSON() ([]byte, error) {
	type plain Stats
	return normalize.Stats.Marshal(plain(s))
}

func (s *Stats) UnmarshalJSON(b []byte) error {
	type plain Stats
	var p plain
	if err := normalize.Stats.Unmarshal(b, &p); err != nil {
		return err
	}
	*s = Stats(p)
	return nil
}
