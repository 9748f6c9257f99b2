package perm

import (
	"testing"

	"pandora-cli/internal/model"
)

func TestCanDeleteComment(t *testing.T) {
	tests := []struct {
		name   string
		userID model.ID
		c      model.Comment
		want   bool
	}{
		{name: "author", userID: "5", c: model.Comment{AuthorID: "5"}, want: true},
		{name: "prefixed caller", userID: "U-5", c: model.Comment{AuthorID: "5"}, want: true},
		{name: "prefixed author", userID: "abc", c: model.Comment{AuthorID: "U-abc"}, want: true},
		{name: "mock user id", userID: "mockU-1", c: model.Comment{AuthorID: "mockU-1"}, want: true},
		{name: "author from info", userID: "7", c: model.Comment{AuthorInfo: &model.UserRef{ID: "7"}}, want: true},
		{name: "other user", userID: "6", c: model.Comment{AuthorID: "5"}, want: false},
		{name: "other info", userID: "6", c: model.Comment{AuthorInfo: &model.UserRef{ID: "7"}}, want: false},
		{name: "no author", userID: "6", c: model.Comment{}, want: true},
		{name: "no caller", userID: "", c: model.Comment{}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanDeleteComment(tt.userID, tt.c); got != tt.want {
				t.Fatalf("CanDeleteComment(%q) = %v, want %v", tt.userID, got, tt.want)
			}
		})
	}
}
