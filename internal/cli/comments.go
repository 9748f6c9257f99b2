package cli

import (
	"github.com/spf13/cobra"

	"pandora-cli/internal/model"
	"pandora-cli/internal/pages"
)

func newCommentsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "comments",
		Short: "Comment commands",
	}
	cmd.AddCommand(newCommentsAddCmd(app))
	cmd.AddCommand(newCommentsListCmd(app))
	cmd.AddCommand(newCommentsDeleteCmd(app))
	return cmd
}

func newCommentsAddCmd(app *App) *cobra.Command {
	var body string

	cmd := &cobra.Command{
		Use:   "add <owner-type> <owner-id>",
		Short: "Comment on a task or journal entry",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.facade(cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			p := &pages.CommentsPage{API: c, Now: app.Now}
			res, err := p.Post(ctxOf(cmd), args[0], model.ID(args[1]), body)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data":   res,
				"_hints": []string{"pandora comments list " + args[0] + " " + args[1]},
			})
		},
	}

	cmd.Flags().StringVar(&body, "body", "", "Comment body")
	_ = cmd.MarkFlagRequired("body")
	return cmd
}

func newCommentsListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list <owner-type> <owner-id>",
		Short: "List comments on a task or journal entry",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.facade(cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			p := &pages.CommentsPage{API: c, Now: app.Now}
			views, total, err := p.Load(ctxOf(cmd), args[0], model.ID(args[1]))
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": views,
				"meta": map[string]any{"total": total, "count": len(views)},
			})
		},
	}
}

func newCommentsDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <comment-id>",
		Short: "Delete one of your comments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.facade(cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			p := &pages.CommentsPage{API: c, Now: app.Now}
			res, err := p.Delete(ctxOf(cmd), model.ID(args[0]))
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": res})
		},
	}
}
