package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"pandora-cli/internal/api"
	"pandora-cli/internal/model"
	"pandora-cli/internal/pages"
	"pandora-cli/internal/session"
	"pandora-cli/internal/store"
)

// readPassword returns the flag value, then $PANDORA_PASSWORD, then a
// terminal prompt when stdin is a TTY.
func readPassword(cmd *cobra.Command, flagVal, prompt string) (string, error) {
	if flagVal != "" {
		return flagVal, nil
	}
	if v := os.Getenv("PANDORA_PASSWORD"); v != "" {
		return v, nil
	}
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("missing --password")
	}
	fmt.Fprint(cmd.ErrOrStderr(), prompt)
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(cmd.ErrOrStderr())
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func newLoginCmd(app *App) *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session locally",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.facade(cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			pw, err := readPassword(cmd, password, "Password: ")
			if err != nil {
				return writeErr(cmd, err)
			}
			p := &pages.LoginPage{API: c}
			res, err := p.Submit(ctxOf(cmd), username, pw)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": res.User,
				"meta": map[string]any{
					"mode":  store.ModeName(c.Flags.FeatureMode(model.FeatureAuthLogin)),
					"token": tokenKind(res.Token),
				},
				"_hints": []string{"pandora whoami", "pandora tasks list"},
			})
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "Username or email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password (default: $PANDORA_PASSWORD or prompt)")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}

func tokenKind(tok string) string {
	if _, err := session.ParseClaims(tok); err == nil {
		return "jwt"
	}
	return "opaque"
}

func newRegisterCmd(app *App) *cobra.Command {
	var req api.RegisterRequest

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.facade(cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			req.Name = strings.TrimSpace(req.Name)
			req.Email = strings.TrimSpace(req.Email)
			if req.Name == "" || req.Email == "" {
				return writeErr(cmd, errors.New("--name and --email are required"))
			}
			if req.Password, err = readPassword(cmd, req.Password, "Choose a password: "); err != nil {
				return writeErr(cmd, err)
			}
			res, err := c.Register(ctxOf(cmd), req)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data":   res,
				"_hints": []string{"pandora login --username " + req.Email},
			})
		},
	}

	cmd.Flags().StringVar(&req.Name, "name", "", "Display name")
	cmd.Flags().StringVar(&req.Username, "username", "", "Username (default: name)")
	cmd.Flags().StringVar(&req.Email, "email", "", "Email")
	cmd.Flags().StringVar(&req.Password, "password", "", "Password (default: $PANDORA_PASSWORD or prompt)")
	cmd.Flags().StringVar(&req.VerificationCode, "code", "", "Email verification code")
	return cmd
}

func newLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and clear the local session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.facade(cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			res, err := c.Logout(ctxOf(cmd))
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": res})
		},
	}
}

func newWhoamiCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the stored session (user and token claims)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.facade(cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			s, err := c.Session.Load(ctxOf(cmd))
			if err != nil {
				return writeErr(cmd, err)
			}
			if !s.SignedIn() {
				return writeErr(cmd, fmt.Errorf("not signed in: %w", api.ErrUnauthorized))
			}
			data := map[string]any{"signedIn": true, "user": s.User}
			meta := map[string]any{"token": tokenKind(s.Token)}
			if claims, err := session.ParseClaims(s.Token); err == nil {
				data["claims"] = claims
				meta["expired"] = claims.Expired(app.now())
			}
			return writeOut(cmd, app, map[string]any{"data": data, "meta": meta})
		},
	}
}

func newPasswordCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "password",
		Short: "Forgotten password flow",
	}
	cmd.AddCommand(newPasswordSendCodeCmd(app))
	cmd.AddCommand(newPasswordResetCmd(app))
	return cmd
}

func newPasswordSendCodeCmd(app *App) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "send-code",
		Short: "Email a verification code",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.facade(cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			res, err := c.SendForgotPasswordCode(ctxOf(cmd), email)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data":   res,
				"_hints": []string{"pandora password reset --email " + email + " --code <code>"},
			})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newPasswordResetCmd(app *App) *cobra.Command {
	var email, code, password string

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Set a new password using an emailed code",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.facade(cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			pw, err := readPassword(cmd, password, "New password: ")
			if err != nil {
				return writeErr(cmd, err)
			}
			res, err := c.ResetPassword(ctxOf(cmd), email, code, pw)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": res})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&code, "code", "", "Verification code")
	cmd.Flags().StringVar(&password, "password", "", "New password (default: $PANDORA_PASSWORD or prompt)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("code")
	return cmd
}
