package api

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"pandora-cli/internal/model"
	"pandora-cli/internal/store"
)

// GetProfile returns the signed-in user's profile. A profile fetched from the
// backend is also cached under the profile key for the profile page.
func (c *Client) GetProfile(ctx context.Context) (model.User, error) {
	if !c.useAPI(model.FeatureProfile) {
		return c.CachedProfile(ctx)
	}
	res, err := c.do(ctx, "GET", "/api/user/profile", nil, nil)
	if err != nil {
		return model.User{}, fmt.Errorf("get profile: %w", err)
	}
	raw := pickMap(res, "profile", "data.profile")
	if raw == nil {
		raw = pickMap(res, "data")
	}
	if raw == nil {
		raw, _ = res.(map[string]any)
	}
	var u model.User
	if raw != nil {
		if err := convert(raw, &u); err != nil {
			return model.User{}, fmt.Errorf("get profile: decode: %w", err)
		}
	}
	if err := store.WriteJSON(ctx, c.KV, store.KeyProfile, u); err != nil {
		c.log.Warn("cache profile", zap.Error(err))
	}
	return u, nil
}

// CachedProfile reads the profile key; a missing or unreadable value is an empty profile.
func (c *Client) CachedProfile(ctx context.Context) (model.User, error) {
	var u model.User
	if _, err := store.ReadJSON(ctx, c.KV, store.KeyProfile, &u); err != nil {
		return model.User{}, err
	}
	return u, nil
}

func (c *Client) UpdateProfile(ctx context.Context, u model.User) (model.Result, error) {
	if !c.useAPI(model.FeatureProfile) {
		if err := store.WriteJSON(ctx, c.KV, store.KeyProfile, u); err != nil {
			return model.Result{}, err
		}
		return model.Result{OK: true}, nil
	}
	if _, err := c.do(ctx, "PUT", "/api/user/profile", nil, u); err != nil {
		return model.Result{}, fmt.Errorf("update profile: %w", err)
	}
	return model.Result{OK: true}, nil
}
