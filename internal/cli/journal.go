package cli

import (
	"errors"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"pandora-cli/internal/api"
	"pandora-cli/internal/model"
)

const defaultJournalPageSize = 9

func newJournalCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Work journal commands",
	}
	cmd.AddCommand(newJournalListCmd(app))
	cmd.AddCommand(newJournalAddCmd(app))
	cmd.AddCommand(newJournalUpdateCmd(app))
	cmd.AddCommand(newJournalDeleteCmd(app))
	cmd.AddCommand(newJournalHistoryCmd(app))
	return cmd
}

func newJournalListCmd(app *App) *cobra.Command {
	var q api.JournalQuery

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List journal entries (paginated)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.facade(cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := checkDateFlags(map[string]string{"date": q.Date}); err != nil {
				return writeErr(cmd, err)
			}
			res, err := c.ListJournal(ctxOf(cmd), q)
			if err != nil {
				return writeErr(cmd, err)
			}
			var hints []string
			if res.Page < res.TotalPages {
				hints = append(hints, "pandora journal list --page "+strconv.Itoa(res.Page+1))
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

	cmd.Flags().StringVar(&q.Date, "date", "", "Only entries for this date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&q.Page, "page", 1, "Page number (1-based)")
	cmd.Flags().IntVar(&q.PageSize, "page-size", defaultJournalPageSize, "Entries per page")
	return cmd
}

func parseIDs(vals []string) []model.ID {
	var out []model.ID
	for _, v := range vals {
		for _, id := range strings.Split(v, ",") {
			if id = strings.TrimSpace(id); id != "" {
				out = append(out, model.ID(id))
			}
		}
	}
	return out
}

func newJournalAddCmd(app *App) *cobra.Command {
	var (
		e       model.JournalEntry
		related []string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Write a journal entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.facade(cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := checkDateFlags(map[string]string{"date": e.Date}); err != nil {
				return writeErr(cmd, err)
			}
			e.Summary = strings.TrimSpace(e.Summary)
			e.Plan = strings.TrimSpace(e.Plan)
			e.Help = strings.TrimSpace(e.Help)
			if e.Summary == "" && e.Plan == "" && e.Help == "" {
				return writeErr(cmd, errors.New("journal entry is empty: pass --summary, --plan or --help-needed"))
			}
			e.RelatedIDs = parseIDs(related)
			res, err := c.CreateJournal(ctxOf(cmd), e)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data":   res,
				"_hints": []string{"pandora journal update " + res.ID.String() + " --summary ..."},
			})
		},
	}

	cmd.Flags().StringVar(&e.Date, "date", "", "Entry date, YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&e.Summary, "summary", "", "What was done")
	cmd.Flags().StringVar(&e.Plan, "plan", "", "What comes next")
	cmd.Flags().StringVar(&e.Help, "help-needed", "", "Where help is needed")
	cmd.Flags().StringArrayVar(&related, "task", nil, "Related task id (repeatable or comma-separated)")
	return cmd
}

func newJournalUpdateCmd(app *App) *cobra.Command {
	var (
		date, summary, plan, help string
		related                   []string
	)

	cmd := &cobra.Command{
		Use:   "update <entry-id>",
		Short: "Edit a journal entry (only the given fields change)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.facade(cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := checkDateFlags(map[string]string{"date": date}); err != nil {
				return writeErr(cmd, err)
			}
			var p model.JournalPatch
			fl := cmd.Flags()
			if fl.Changed("date") {
				p.Date = &date
			}
			if fl.Changed("summary") {
				p.Summary = &summary
			}
			if fl.Changed("plan") {
				p.Plan = &plan
			}
			if fl.Changed("help-needed") {
				p.Help = &help
			}
			if fl.Changed("task") {
				p.RelatedIDs = parseIDs(related)
				if p.RelatedIDs == nil {
					p.RelatedIDs = []model.ID{}
				}
			}
			if p.Date == nil && p.Summary == nil && p.Plan == nil && p.Help == nil && p.RelatedIDs == nil {
				return writeErr(cmd, errors.New("nothing to update"))
			}
			res, err := c.UpdateJournal(ctxOf(cmd), model.ID(args[0]), p)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data":   res,
				"_hints": []string{"pandora journal history " + args[0]},
			})
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Entry date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&summary, "summary", "", "What was done")
	cmd.Flags().StringVar(&plan, "plan", "", "What comes next")
	cmd.Flags().StringVar(&help, "help-needed", "", "Where help is needed")
	cmd.Flags().StringArrayVar(&related, "task", nil, "Related task ids, replacing the current list")
	return cmd
}

func newJournalDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <entry-id>",
		Short: "Delete a journal entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.facade(cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			res, err := c.DeleteJournal(ctxOf(cmd), model.ID(args[0]))
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": res})
		},
	}
}

func newJournalHistoryCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "history <entry-id>",
		Short: "List recorded edits of a journal entry, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.facade(cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			revs, err := c.JournalHistory(ctxOf(cmd), model.ID(args[0]))
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": revs, "meta": map[string]any{"count": len(revs)}})
		},
	}
}
