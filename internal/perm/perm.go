// Package perm holds the ownership rules the local mock enforces in place of
// the backend.
package perm

import (
	"strings"

	"pandora-cli/internal/model"
)

// CanDeleteComment reports whether userID may delete c.
//
// Rules:
//   - Comments without a recorded author can be deleted by anyone signed in.
//   - Otherwise the caller must be the author. The backend's "U-" prefix on
//     string ids is ignored when comparing.
func CanDeleteComment(userID model.ID, c model.Comment) bool {
	actor := canonicalUserID(userID)
	if actor == "" {
		return false
	}
	author := c.AuthorID
	if author.IsZero() && c.AuthorInfo != nil {
		author = c.AuthorInfo.ID
	}
	if author.IsZero() {
		return true
	}
	return canonicalUserID(author) == actor
}

func canonicalUserID(id model.ID) string {
	s := strings.TrimSpace(id.String())
	return strings.TrimPrefix(s, "U-")
}
