package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"pandora-cli/internal/api"
	"pandora-cli/internal/model"
)

func newUsersCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "User directory (always served by the backend)",
	}
	cmd.AddCommand(newUsersListCmd(app))
	cmd.AddCommand(newUsersShowCmd(app))
	return cmd
}

func newUsersListCmd(app *App) *cobra.Command {
	var (
		q      api.UserQuery
		roleID string
		teamID string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List users (paginated)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.facade(cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			q.RoleID, q.TeamID = model.ID(roleID), model.ID(teamID)
			res, err := c.ListUsers(ctxOf(cmd), q)
			if err != nil {
				return writeErr(cmd, err)
			}
			var hints []string
			if res.Page < res.TotalPages {
				hints = append(hints, "pandora users list --page "+strconv.Itoa(res.Page+1))
			}
			return writeOut(cmd, app, map[string]any{
				"data": res.List,
				"meta": map[string]any{
					"total":      res.Total,
					"page":       res.Page,
					"pageSize":   res.PageSize,
					"totalPages": res.TotalPages,
				},
				"_hints": hints,
			})
		},
	}

	cmd.Flags().IntVar(&q.Page, "page", 1, "Page number (1-based)")
	cmd.Flags().IntVar(&q.PageSize, "page-size", 20, "Users per page")
	cmd.Flags().StringVar(&q.Keyword, "keyword", "", "Search keyword")
	cmd.Flags().StringVar(&roleID, "role", "", "Filter by role id")
	cmd.Flags().StringVar(&teamID, "team", "", "Filter by team id")
	return cmd
}

func newUsersShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <user-id>",
		Short: "Show one user with team and role names resolved",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.facade(cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			u, err := c.GetUser(ctxOf(cmd), model.ID(args[0]))
			if err != nil {
				return writeErr(cmd, err)
			}
			meta := map[string]any{"role": u.DisplayRole()}
			if u.TeamName == "" && !u.TeamID.IsZero() {
				if name, err := c.TeamName(ctxOf(cmd), u.TeamID); err == nil {
					meta["team"] = name
				}
			} else if u.TeamName != "" {
				meta["team"] = u.TeamName
			}
			return writeOut(cmd, app, map[string]any{"data": u, "meta": meta})
		},
	}
}
