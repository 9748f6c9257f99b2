package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"pandora-cli/internal/api"
	"pandora-cli/internal/model"
	"pandora-cli/internal/pages"
)

func newTasksCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "Task commands",
	}
	cmd.AddCommand(newTasksListCmd(app, "list", "List all tasks (paginated)", pages.SourceAll))
	cmd.AddCommand(newTasksListCmd(app, "personal", "List tasks assigned to you (paginated)", pages.SourcePersonal))
	cmd.AddCommand(newTasksListCmd(app, "view", "List tasks visible to you (paginated)", pages.SourceView))
	cmd.AddCommand(newTasksImportantCmd(app))
	cmd.AddCommand(newTasksShowCmd(app))
	cmd.AddCommand(newTasksPublishCmd(app))
	cmd.AddCommand(newTasksAssigneesCmd(app))
	return cmd
}

func newTasksListCmd(app *App, use, short string, source pages.TaskSource) *cobra.Command {
	var (
		page     int
		pageSize int
		q        api.TaskQuery
		f        pages.TaskFilter
		userID   string
	)

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.facade(cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := checkDateFlags(map[string]string{"from": f.Start, "to": f.End}); err != nil {
				return writeErr(cmd, err)
			}
			p := &pages.TasksPage{API: c, PageSize: pageSize, Source: source, UserID: model.ID(userID)}
			if source == pages.SourcePersonal && p.UserID.IsZero() {
				u, ok, err := c.Session.CurrentUser(ctxOf(cmd))
				if err != nil {
					return writeErr(cmd, err)
				}
				if ok && !u.ID.IsZero() {
					p.UserID = u.ID
				} else if c.Flags.FeatureMode(model.FeatureTasksList) {
					u, err := c.CurrentUserWithID(ctxOf(cmd))
					if err != nil {
						return writeErr(cmd, err)
					}
					p.UserID = u.ID
				}
			}
			v, err := p.Load(ctxOf(cmd), page, q, f)
			if err != nil {
				return writeErr(cmd, err)
			}

			base := "pandora tasks " + use
			var hints []string
			if n, ok := v.NextPage(); ok {
				hints = append(hints, base+" --page "+strconv.Itoa(n))
			}
			if n, ok := v.PrevPage(); ok {
				hints = append(hints, base+" --page "+strconv.Itoa(n))
			}
			if len(v.Cards) > 0 {
				hints = append(hints, "pandora tasks show "+v.Cards[0].ID)
			}
			return writeOut(cmd, app, map[string]any{
				"data": v.Cards,
				"meta": map[string]any{
					"total":      v.Total,
					"page":       v.Page,
					"pageSize":   v.PageSize,
					"totalPages": v.TotalPages,
					"hasPrev":    v.HasPrev,
					"hasNext":    v.HasNext,
				},
				"_hints": hints,
			})
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "Page number (1-based)")
	cmd.Flags().IntVar(&pageSize, "page-size", pages.DefaultTasksPageSize, "Tasks per page")
	cmd.Flags().StringVar(&q.Status, "status", "", "Filter by status (sent to the backend)")
	cmd.Flags().StringVar(&q.Priority, "priority", "", "Filter by priority (sent to the backend)")
	cmd.Flags().StringVar(&q.Keyword, "keyword", "", "Search keyword (sent to the backend)")
	cmd.Flags().StringVar(&f.Field, "field", "", "Client-side search field: id|name|owner|publisher (default any)")
	cmd.Flags().StringVar(&f.Keyword, "search", "", "Client-side search within the loaded page")
	cmd.Flags().StringVar(&f.Start, "from", "", "Only tasks starting on or after this date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.End, "to", "", "Only tasks starting on or before this date (YYYY-MM-DD)")
	if source == pages.SourcePersonal {
		cmd.Flags().StringVar(&userID, "user", "", "User id (default: signed-in user)")
	}
	return cmd
}

func newTasksImportantCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "important",
		Short: "List company-wide important tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.facade(cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			tasks, err := c.ImportantTasks(ctxOf(cmd))
			if err != nil {
				return writeErr(cmd, err)
			}
			cards := make([]pages.TaskCard, 0, len(tasks))
			for _, t := range tasks {
				cards = append(cards, pages.CardFromTask(t))
			}
			return writeOut(cmd, app, map[string]any{"data": cards, "meta": map[string]any{"count": len(cards)}})
		},
	}
}

// taskDetail is a task that renders itself as a markdown document for --format text.
type taskDetail struct {
	model.Task
	Comments []pages.CommentView `json:"-"`
}

func (d taskDetail) MarshalJSON() ([]byte, error) { return json.Marshal(d.Task) }

func (d taskDetail) Markdown() string {
	t := d.Task
	c := pages.CardFromTask(t)
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", c.Name)
	fmt.Fprintf(&b, "`%s` · **%s** · %s · %d%%\n\n", c.ID, c.Status, c.Priority, c.Progress)
	if c.StartDate != "" || c.EndDate != "" {
		fmt.Fprintf(&b, "- **Dates**: %s → %s\n", orNA(c.StartDate), orNA(c.EndDate))
	}
	fmt.Fprintf(&b, "- **Owner**: %s\n", c.Owner)
	fmt.Fprintf(&b, "- **Publisher**: %s\n", c.Publisher)
	if len(t.Tags) > 0 {
		fmt.Fprintf(&b, "- **Tags**: %s\n", strings.Join(t.Tags, ", "))
	}
	if strings.TrimSpace(t.Description) != "" {
		b.WriteString("\n## Description\n\n" + strings.TrimSpace(t.Description) + "\n")
	}
	if len(d.Comments) > 0 {
		b.WriteString("\n## Comments\n\n")
		for _, cm := range d.Comments {
			fmt.Fprintf(&b, "- **%s** (%s): %s\n", cm.AuthorName, cm.TimeAgo, cm.Content)
		}
	}
	return b.String()
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func newTasksShowCmd(app *App) *cobra.Command {
	var withComments bool

	cmd := &cobra.Command{
		Use:   "show <task-id>",
		Short: "Show one task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.facade(cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			t, err := c.GetTask(ctxOf(cmd), model.ID(args[0]))
			if err != nil {
				return writeErr(cmd, err)
			}
			out := map[string]any{"data": taskDetail{Task: t}}
			if withComments {
				p := &pages.CommentsPage{API: c, Now: app.Now}
				views, total, err := p.Load(ctxOf(cmd), "task", t.ID)
				if err != nil {
					return writeErr(cmd, err)
				}
				out["data"] = taskDetail{Task: t, Comments: views}
				out["meta"] = map[string]any{"comments": views, "commentTotal": total}
			}
			out["_hints"] = []string{"pandora comments list task " + t.ID.String()}
			return writeOut(cmd, app, out)
		},
	}

	cmd.Flags().BoolVar(&withComments, "comments", false, "Include the task's comments")
	return cmd
}

func newTasksPublishCmd(app *App) *cobra.Command {
	var (
		f         pages.PublishForm
		assignees []string
	)

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Publish a new task",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.facade(cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			p := &pages.PublishPage{API: c, Now: app.Now}
			if strings.TrimSpace(f.DueAt) == "" {
				f.DueAt = p.DefaultForm().DueAt
			}
			for _, a := range assignees {
				for _, id := range strings.Split(a, ",") {
					if id = strings.TrimSpace(id); id != "" {
						f.AssigneeIDs = append(f.AssigneeIDs, model.ID(id))
					}
				}
			}
			res, err := p.Submit(ctxOf(cmd), f)
			if err != nil {
				return writeErr(cmd, err)
			}
			var hints []string
			if !res.ID.IsZero() {
				hints = append(hints, "pandora tasks show "+res.ID.String())
			}
			return writeOut(cmd, app, map[string]any{"data": res, "_hints": hints})
		},
	}

	cmd.Flags().StringVar(&f.Title, "title", "", "Task title")
	cmd.Flags().StringVar(&f.Description, "description", "", "Task description")
	cmd.Flags().StringVar(&f.DueAt, "due", "", "Due time, YYYY-MM-DDTHH:MM local or RFC 3339 (default: tomorrow 18:00)")
	cmd.Flags().StringVar(&f.Priority, "priority", string(model.PriorityMedium), "Priority: Low|Medium|High|Urgent")
	cmd.Flags().StringVar(&f.Tags, "tags", "", "Comma-separated tags")
	cmd.Flags().StringArrayVar(&assignees, "assignee", nil, "Assignee user id (repeatable or comma-separated)")
	return cmd
}

func newTasksAssigneesCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "assignees",
		Short: "List users that can be assigned to a task",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.facade(cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			p := &pages.PublishPage{API: c, Now: app.Now}
			users, err := p.LoadUsers(ctxOf(cmd))
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": users, "meta": map[string]any{"count": len(users)}})
		},
	}
}
