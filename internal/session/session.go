// Package session persists the signed-in user the way the web client does:
// the bearer token as a JSON string under authToken and the user record
// under currentUser.
package session

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"pandora-cli/internal/model"
	"pandora-cli/internal/store"
)

type Session struct {
	Token string      `json:"token"`
	User  *model.User `json:"user,omitempty"`
}

func (s Session) SignedIn() bool { return strings.TrimSpace(s.Token) != "" }

type Manager struct {
	KV store.KV
}

func New(kv store.KV) *Manager { return &Manager{KV: kv} }

// Token returns the stored bearer token, or "" when signed out.
func (m *Manager) Token(ctx context.Context) (string, error) {
	var tok string
	if _, err := store.ReadJSON(ctx, m.KV, store.KeyAuthToken, &tok); err != nil {
		return "", err
	}
	return strings.TrimSpace(tok), nil
}

// CurrentUser returns the cached user; ok=false when none is stored.
func (m *Manager) CurrentUser(ctx context.Context) (model.User, bool, error) {
	var u model.User
	ok, err := store.ReadJSON(ctx, m.KV, store.KeyCurrentUser, &u)
	if err != nil || !ok {
		return model.User{}, false, err
	}
	return u, true, nil
}

func (m *Manager) Load(ctx context.Context) (Session, error) {
	tok, err := m.Token(ctx)
	if err != nil {
		return Session{}, err
	}
	s := Session{Token: tok}
	if u, ok, err := m.CurrentUser(ctx); err != nil {
		return Session{}, err
	} else if ok {
		s.User = &u
	}
	return s, nil
}

// Save stores the token and, when it carries a name or email, the user.
func (m *Manager) Save(ctx context.Context, token string, user *model.User) error {
	if strings.TrimSpace(token) != "" {
		if err := store.WriteJSON(ctx, m.KV, store.KeyAuthToken, token); err != nil {
			return err
		}
	}
	if user != nil && (user.Name != "" || user.Email != "") {
		return m.SetCurrentUser(ctx, *user)
	}
	return nil
}

func (m *Manager) SetCurrentUser(ctx context.Context, u model.User) error {
	return store.WriteJSON(ctx, m.KV, store.KeyCurrentUser, u)
}

// Clear removes the token and cached user.
func (m *Manager) Clear(ctx context.Context) error {
	return errors.Join(
		m.KV.RemoveItem(ctx, store.KeyAuthToken),
		m.KV.RemoveItem(ctx, store.KeyCurrentUser),
	)
}

// Claims is the unverified view of a JWT bearer token.
type Claims struct {
	Subject   string     `json:"subject,omitempty"`
	Issuer    string     `json:"issuer,omitempty"`
	IssuedAt  *time.Time `json:"issuedAt,omitempty"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
	UserID    string     `json:"userId,omitempty"`
}

// Expired reports whether the token carries an expiry that has passed.
func (c Claims) Expired(now time.Time) bool {
	return c.ExpiresAt != nil && !now.Before(*c.ExpiresAt)
}

// ErrNotJWT is returned by ParseClaims for opaque tokens (mock tokens included).
var ErrNotJWT = errors.New("token is not a JWT")

// ParseClaims decodes the token's claims without verifying the signature;
// the client never holds the signing key.
func ParseClaims(token string) (Claims, error) {
	token = strings.TrimSpace(token)
	if strings.Count(token, ".") != 2 {
		return Claims{}, ErrNotJWT
	}
	mc := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, mc); err != nil {
		return Claims{}, errors.Join(ErrNotJWT, err)
	}
	var c Claims
	c.Subject, _ = mc.GetSubject()
	c.Issuer, _ = mc.GetIssuer()
	if t, err := mc.GetIssuedAt(); err == nil && t != nil {
		v := t.UTC()
		c.IssuedAt = &v
	}
	if t, err := mc.GetExpirationTime(); err == nil && t != nil {
		v := t.UTC()
		c.ExpiresAt = &v
	}
	for _, k := range []string{"userId", "user_id", "uid"} {
		if v, ok := mc[k]; ok && v != nil {
			c.UserID = model.IDFrom(v).String()
			break
		}
	}
	if c.UserID == "" {
		c.UserID = c.Subject
	}
	return c, nil
}
