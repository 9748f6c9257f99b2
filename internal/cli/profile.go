package cli

import (
	"github.com/spf13/cobra"

	"pandora-cli/internal/pages"
)

func newProfileCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or edit your profile",
	}
	cmd.AddCommand(newProfileShowCmd(app))
	cmd.AddCommand(newProfileUpdateCmd(app))
	return cmd
}

func newProfileShowCmd(app *App) *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the profile form (cached profile, then signed-in user)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.facade(cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			if refresh {
				if _, err := c.GetProfile(ctxOf(cmd)); err != nil {
					return writeErr(cmd, err)
				}
			}
			p := &pages.ProfilePage{API: c, Now: app.Now}
			f, err := p.Fill(ctxOf(cmd))
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": f})
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", true, "Fetch the profile before showing it")
	return cmd
}

func newProfileUpdateCmd(app *App) *cobra.Command {
	var in pages.ProfileInput

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Save profile changes (unset flags keep the current value)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.facade(cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			p := &pages.ProfilePage{API: c, Now: app.Now}
			cur, err := p.Fill(ctxOf(cmd))
			if err != nil {
				return writeErr(cmd, err)
			}
			fl := cmd.Flags()
			if !fl.Changed("name") {
				in.Name = cur.Name
			}
			if !fl.Changed("email") {
				in.Email = cur.Email
			}
			if !fl.Changed("phone") {
				in.Phone = cur.Phone
			}
			if !fl.Changed("gender") {
				in.Gender = cur.Gender
			}
			if !fl.Changed("birth-date") {
				in.BirthDate = cur.BirthDate
			}
			if !fl.Changed("bio") {
				in.Bio = cur.Bio
			}
			res, err := p.Save(ctxOf(cmd), in)
			if err != nil {
				return writeErr(cmd, err)
			}
			f, err := p.Fill(ctxOf(cmd))
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": f, "meta": map[string]any{"message": res.Message}})
		},
	}

	cmd.Flags().StringVar(&in.Name, "name", "", "Display name")
	cmd.Flags().StringVar(&in.Email, "email", "", "Email")
	cmd.Flags().StringVar(&in.Phone, "phone", "", "Phone")
	cmd.Flags().StringVar(&in.Gender, "gender", "", "Gender (M|F)")
	cmd.Flags().StringVar(&in.BirthDate, "birth-date", "", "Birth date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&in.Bio, "bio", "", "Short bio")
	return cmd
}
