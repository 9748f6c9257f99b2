package api

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"pandora-cli/internal/model"
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResult struct {
	Token string     `json:"token"`
	User  model.User `json:"user"`
}

type RegisterRequest struct {
	Name             string `json:"name,omitempty"`
	Username         string `json:"username,omitempty"`
	Email            string `json:"email,omitempty"`
	Password         string `json:"password,omitempty"`
	VerificationCode string `json:"verificationCode,omitempty"`
}

type RegisterResult struct {
	OK   bool       `json:"ok"`
	User model.User `json:"user"`
}

// Login signs in and persists the session.
func (c *Client) Login(ctx context.Context, req LoginRequest) (LoginResult, error) {
	if !c.useAPI(model.FeatureAuthLogin) {
		name := strings.TrimSpace(req.Username)
		if name == "" {
			name = "User"
		}
		u := model.User{ID: model.ID("mockU-" + uuid.NewString()), Name: name, EmployeeID: c.employeeID()}
		if strings.Contains(req.Username, "@") {
			u.Email = strings.TrimSpace(req.Username)
		}
		token := "mock-" + strconv.FormatInt(c.now().UnixMilli(), 10)
		if err := c.Session.Save(ctx, token, &u); err != nil {
			return LoginResult{}, err
		}
		return LoginResult{Token: token, User: u}, nil
	}

	res, err := c.do(ctx, "POST", "/api/login", nil, req)
	if err != nil {
		return LoginResult{}, fmt.Errorf("login: %w", err)
	}
	if truthy(pick(res, "error")) {
		msg := pickString(res, "message")
		if msg == "" {
			msg = "login failed"
		}
		if code := pickString(res, "code"); code != "" {
			msg += " (" + code + ")"
		}
		return LoginResult{}, errors.New(msg)
	}
	token := pickString(res, "token", "access_token", "data.token", "data.access_token")
	if token == "" {
		return LoginResult{}, errors.New("login failed: server returned no token")
	}
	var u model.User
	if m := pickMap(res, "user", "data.user"); m != nil {
		if err := convert(m, &u); err != nil {
			return LoginResult{}, fmt.Errorf("login: decode user: %w", err)
		}
	}
	if u.Name == "" && u.Email == "" {
		return LoginResult{}, errors.New("login failed: server returned no valid user")
	}
	if err := c.Session.Save(ctx, token, &u); err != nil {
		return LoginResult{}, err
	}
	return LoginResult{Token: token, User: u}, nil
}

func (c *Client) Register(ctx context.Context, req RegisterRequest) (RegisterResult, error) {
	if !c.useAPI(model.FeatureAuthRegister) {
		name := firstNonBlank(req.Name, req.Username, "New user")
		return RegisterResult{OK: true, User: model.User{
			ID:         model.ID("mockU-" + uuid.NewString()),
			Name:       name,
			Username:   strings.TrimSpace(req.Username),
			Email:      strings.TrimSpace(req.Email),
			EmployeeID: c.employeeID(),
		}}, nil
	}
	res, err := c.do(ctx, "POST", "/api/register/", nil, req)
	if err != nil {
		return RegisterResult{}, fmt.Errorf("register: %w", err)
	}
	var u model.User
	if m := pickMap(res, "user", "data.user"); m != nil {
		if err := convert(m, &u); err != nil {
			return RegisterResult{}, fmt.Errorf("register: decode user: %w", err)
		}
	}
	// The backend acknowledges with or without an explicit ok flag.
	return RegisterResult{OK: true, User: u}, nil
}

// Logout notifies the backend when enabled and always clears the local session.
func (c *Client) Logout(ctx context.Context) (model.Result, error) {
	if c.useAPI(model.FeatureAuthLogout) {
		if _, err := c.do(ctx, "POST", "/api/user/logout", nil, map[string]any{}); err != nil {
			c.log.Debug("logout request failed", zap.Error(err))
		}
	}
	if err := c.Session.Clear(ctx); err != nil {
		return model.Result{}, err
	}
	return model.Result{OK: true}, nil
}

// SendForgotPasswordCode shares the authRegister switch with registration.
func (c *Client) SendForgotPasswordCode(ctx context.Context, email string) (model.Result, error) {
	if !c.useAPI(model.FeatureAuthRegister) {
		return model.Result{OK: true, Message: "verification code sent to your email"}, nil
	}
	res, err := c.do(ctx, "POST", "/api/send-verification-code/", nil, map[string]any{"email": strings.TrimSpace(email)})
	if err != nil {
		return model.Result{}, fmt.Errorf("send verification code: %w", err)
	}
	if truthy(pick(res, "error")) || !truthy(pick(res, "ok")) {
		msg := pickString(res, "message")
		if msg == "" {
			msg = "failed to send verification code"
		}
		return model.Result{}, errors.New(msg)
	}
	return model.Result{OK: true, Message: firstNonBlank(pickString(res, "message"), "verification code sent")}, nil
}

func (c *Client) ResetPassword(ctx context.Context, email, code, newPassword string) (model.Result, error) {
	if !c.useAPI(model.FeatureAuthRegister) {
		return model.Result{OK: true, Message: "password reset successful"}, nil
	}
	res, err := c.do(ctx, "POST", "/api/forgot-password/reset/", nil, map[string]any{
		"email":            strings.TrimSpace(email),
		"verificationCode": strings.TrimSpace(code),
		"newPassword":      newPassword,
	})
	if err != nil {
		return model.Result{}, fmt.Errorf("reset password: %w", err)
	}
	return model.Result{OK: true, Message: firstNonBlank(pickString(res, "message"), "password reset successful")}, nil
}

// employeeID returns EMP + two-digit year + two-digit month + a number in [1000, 9999].
func (c *Client) employeeID() string {
	now := c.now()
	return fmt.Sprintf("EMP%02d%02d%d", now.Year()%100, int(now.Month()), 1000+rand.IntN(9000))
}

func firstNonBlank(vals ...string) string {
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
