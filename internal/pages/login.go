package pages

import (
	"context"
	"strings"

	"pandora-cli/internal/api"
)

type LoginPage struct {
	API *api.Client
}

// Submit validates the credentials and signs in; the facade persists the session.
func (p *LoginPage) Submit(ctx context.Context, username, password string) (api.LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return api.LoginResult{}, invalid("username", "please enter a username or email")
	}
	if password == "" {
		return api.LoginResult{}, invalid("password", "please enter a password")
	}
	return p.API.Login(ctx, api.LoginRequest{Username: username, Password: password})
}
