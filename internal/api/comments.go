package api

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"pandora-cli/internal/model"
	"pandora-cli/internal/perm"
	"pandora-cli/internal/store"
)

func (c *Client) ListComments(ctx context.Context, ownerType string, ownerID model.ID, page, pageSize int) (model.Page[model.Comment], error) {
	if !c.useAPI(model.FeatureComments) {
		all, err := store.LoadList[model.Comment](ctx, c.KV, store.KeyTaskComments)
		if err != nil {
			return model.Page[model.Comment]{}, err
		}
		out := make([]model.Comment, 0, len(all))
		for _, cm := range all {
			if strings.EqualFold(cm.OwnerType, ownerType) && cm.OwnerID == ownerID {
				out = append(out, cm)
			}
		}
		return paginate(out, page, pageSize), nil
	}
	v := url.Values{}
	v.Set("ownerType", ownerType)
	v.Set("ownerId", ownerID.String())
	if page > 0 {
		v.Set("page", strconv.Itoa(page))
	}
	if pageSize > 0 {
		v.Set("pageSize", strconv.Itoa(pageSize))
	}
	res, err := c.do(ctx, "GET", "/api/comments", v, nil)
	if err != nil {
		return model.Page[model.Comment]{}, fmt.Errorf("list comments: %w", err)
	}
	return pageFrom[model.Comment](res, page, pageSize), nil
}

func (c *Client) CreateComment(ctx context.Context, cm model.Comment) (model.Result, error) {
	cm.Content = strings.TrimSpace(cm.Content)
	if cm.Content == "" {
		return model.Result{}, errors.New("comment content is empty")
	}
	if !c.useAPI(model.FeatureComments) {
		cm.ID = model.ID("cmt-" + uuid.NewString())
		cm.CreatedAt = model.NewTimestamp(c.now())
		if cm.AuthorID.IsZero() && cm.AuthorName == "" {
			if u, ok, err := c.Session.CurrentUser(ctx); err == nil && ok {
				ref := u.Ref()
				cm.AuthorID = u.ID
				cm.AuthorName = u.Name
				cm.AuthorInfo = &ref
			}
		}
		if _, err := store.UpdateList(ctx, c.KV, store.KeyTaskComments, func(l []model.Comment) ([]model.Comment, error) {
			return store.Upsert(l, cm), nil
		}); err != nil {
			return model.Result{}, err
		}
		return model.Result{OK: true, ID: cm.ID}, nil
	}
	res, err := c.do(ctx, "POST", "/api/comments", nil, map[string]any{
		"ownerType": cm.OwnerType,
		"ownerId":   cm.OwnerID,
		"content":   cm.Content,
	})
	if err != nil {
		return model.Result{}, fmt.Errorf("create comment: %w", err)
	}
	return model.Result{
		OK:      true,
		ID:      pickID(res, "id", "commentId", "comment_id", "data.id", "data.commentId"),
		Message: pickString(res, "message"),
	}, nil
}

// DeleteComment removes a comment; userID must match the author (the mock
// checks it the way the backend does).
func (c *Client) DeleteComment(ctx context.Context, commentID, userID model.ID) (model.Result, error) {
	if !c.useAPI(model.FeatureComments) {
		if _, err := store.UpdateList(ctx, c.KV, store.KeyTaskComments, func(l []model.Comment) ([]model.Comment, error) {
			cm, ok := store.FindByID(l, commentID.String())
			if !ok {
				return nil, fmt.Errorf("comment %w", ErrNotFound)
			}
			if !perm.CanDeleteComment(userID, cm) {
				return nil, fmt.Errorf("delete comment %s: %w", commentID, ErrForbidden)
			}
			out, _ := store.RemoveByID(l, commentID.String())
			return out, nil
		}); err != nil {
			return model.Result{}, err
		}
		return model.Result{OK: true, ID: commentID}, nil
	}
	v := url.Values{}
	if !userID.IsZero() {
		v.Set("userId", userID.String())
	}
	res, err := c.do(ctx, "DELETE", "/api/comments/"+url.PathEscape(commentID.String()), v, nil)
	if err != nil {
		return model.Result{}, fmt.Errorf("delete comment %s: %w", commentID, err)
	}
	return model.Result{OK: true, ID: commentID, Message: pickString(res, "message")}, nil
}
