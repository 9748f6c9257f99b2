package api

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"pandora-cli/internal/model"
)

// User directory calls always go to the backend; there is no mock directory.

type UserQuery struct {
	Page     int
	PageSize int
	Keyword  string
	RoleID   model.ID
	TeamID   model.ID
}

func (q UserQuery) values() url.Values {
	v := url.Values{}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.PageSize > 0 {
		v.Set("pageSize", strconv.Itoa(q.PageSize))
	}
	if s := strings.TrimSpace(q.Keyword); s != "" {
		v.Set("keyword", s)
	}
	if !q.RoleID.IsZero() {
		v.Set("role_id", q.RoleID.String())
	}
	if !q.TeamID.IsZero() {
		v.Set("team_id", q.TeamID.String())
	}
	return v
}

func (c *Client) ListUsers(ctx context.Context, q UserQuery) (model.Page[model.User], error) {
	res, err := c.do(ctx, "GET", "/api/user", q.values(), nil)
	if err != nil {
		return model.Page[model.User]{}, fmt.Errorf("list users: %w", err)
	}
	return pageFrom[model.User](res, q.Page, q.PageSize), nil
}

func (c *Client) GetUser(ctx context.Context, id model.ID) (model.User, error) {
	res, err := c.do(ctx, "GET", "/api/user/"+url.PathEscape(id.String()), nil, nil)
	if err != nil {
		return model.User{}, fmt.Errorf("get user %s: %w", id, err)
	}
	raw := pickMap(res, "user", "data.user", "data")
	if raw == nil {
		raw, _ = res.(map[string]any)
	}
	if raw == nil || pick(raw, "user_id", "userId", "id", "name") == nil {
		return model.User{}, fmt.Errorf("user %w", ErrNotFound)
	}
	var u model.User
	if err := convert(raw, &u); err != nil {
		return model.User{}, fmt.Errorf("get user %s: decode: %w", id, err)
	}
	return u, nil
}

func (c *Client) CreateUser(ctx context.Context, u model.User) (model.Result, error) {
	res, err := c.do(ctx, "POST", "/api/user", nil, u)
	if err != nil {
		return model.Result{}, fmt.Errorf("create user: %w", err)
	}
	return model.Result{OK: true, ID: pickID(res, "id", "userId", "user_id", "data.id"), Message: pickString(res, "message")}, nil
}

func (c *Client) UpdateUser(ctx context.Context, id model.ID, u model.User) (model.Result, error) {
	res, err := c.do(ctx, "PUT", "/api/user/"+url.PathEscape(id.String()), nil, u)
	if err != nil {
		return model.Result{}, fmt.Errorf("update user %s: %w", id, err)
	}
	return model.Result{OK: true, ID: id, Message: pickString(res, "message")}, nil
}

// TeamName resolves a team id to its name. Successful lookups are cached for the
// lifetime of the client.
func (c *Client) TeamName(ctx context.Context, teamID model.ID) (string, error) {
	key := teamID.String()
	c.teamMu.Lock()
	name, ok := c.teamNames[key]
	c.teamMu.Unlock()
	if ok {
		return name, nil
	}
	res, err := c.do(ctx, "GET", "/api/team/"+url.PathEscape(key), nil, nil)
	if err != nil {
		return "", fmt.Errorf("team %s: %w", key, err)
	}
	if s, ok := res.(string); ok && strings.TrimSpace(s) != "" {
		name = strings.TrimSpace(s)
	} else {
		name = pickString(res, "name", "teamName", "team_name", "data.name", "data.teamName", "data.team_name")
	}
	if name == "" {
		return "", fmt.Errorf("team %s: %w", key, ErrNotFound)
	}
	c.teamMu.Lock()
	c.teamNames[key] = name
	c.teamMu.Unlock()
	return name, nil
}

// CurrentUserWithID returns the cached user when it carries an id; otherwise it
// asks for the profile, fills the id in, and refreshes the cache.
func (c *Client) CurrentUserWithID(ctx context.Context) (model.User, error) {
	u, ok, err := c.Session.CurrentUser(ctx)
	if err != nil {
		return model.User{}, err
	}
	if ok && !u.ID.IsZero() {
		return u, nil
	}
	pf, err := c.GetProfile(ctx)
	if err != nil {
		return model.User{}, err
	}
	if pf.ID.IsZero() {
		return model.User{}, errors.New("current user id unavailable")
	}
	if !ok {
		u = pf
	} else {
		u.ID = pf.ID
		if u.Name == "" {
			u.Name = pf.Name
		}
		if u.Email == "" {
			u.Email = pf.Email
		}
	}
	if err := c.Session.SetCurrentUser(ctx, u); err != nil {
		c.log.Warn("cache current user", zap.Error(err))
	}
	return u, nil
}
