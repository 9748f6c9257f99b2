package api

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"pandora-cli/internal/model"
	"pandora-cli/internal/store"
)

const defaultPageSize = 10

// TaskQuery carries list filters. Zero values are omitted from the request.
type TaskQuery struct {
	Page     int
	PageSize int
	Status   string
	Priority string
	Keyword  string
}

func (q TaskQuery) values() url.Values {
	v := url.Values{}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.PageSize > 0 {
		v.Set("pageSize", strconv.Itoa(q.PageSize))
	}
	if s := strings.TrimSpace(q.Status); s != "" {
		v.Set("status", s)
	}
	if s := strings.TrimSpace(q.Priority); s != "" {
		v.Set("priority", s)
	}
	if s := strings.TrimSpace(q.Keyword); s != "" {
		v.Set("keyword", s)
	}
	return v
}

// Match applies the query's filters to one task.
func (q TaskQuery) Match(t model.Task) bool {
	if s := strings.TrimSpace(q.Status); s != "" && !strings.EqualFold(s, string(t.Status)) {
		return false
	}
	if s := strings.TrimSpace(q.Priority); s != "" && !strings.EqualFold(s, string(t.Priority)) {
		return false
	}
	if kw := strings.ToLower(strings.TrimSpace(q.Keyword)); kw != "" {
		hay := strings.ToLower(strings.Join([]string{string(t.ID), t.Title, t.Description, t.OwnerName()}, "\n"))
		if !strings.Contains(hay, kw) {
			return false
		}
	}
	return true
}

func (c *Client) ListTasks(ctx context.Context, q TaskQuery) (model.Page[model.Task], error) {
	return c.taskPage(ctx, "/api/tasks/all", q.values(), q)
}

func (c *Client) PersonalTasks(ctx context.Context, userID model.ID, q TaskQuery) (model.Page[model.Task], error) {
	v := q.values()
	if !userID.IsZero() {
		v.Set("userId", userID.String())
	}
	return c.taskPage(ctx, "/api/tasks/personal", v, q)
}

func (c *Client) ViewTasks(ctx context.Context, q TaskQuery) (model.Page[model.Task], error) {
	return c.taskPage(ctx, "/api/tasks/myView", q.values(), q)
}

func (c *Client) taskPage(ctx context.Context, path string, v url.Values, q TaskQuery) (model.Page[model.Task], error) {
	if !c.useAPI(model.FeatureTasksList) {
		all, err := c.MockTasks(ctx)
		if err != nil {
			return model.Page[model.Task]{}, err
		}
		return paginate(filterTasks(all, q), q.Page, q.PageSize), nil
	}
	res, err := c.do(ctx, "GET", path, v, nil)
	if err != nil {
		return model.Page[model.Task]{}, fmt.Errorf("list tasks: %w", err)
	}
	return pageFrom[model.Task](res, q.Page, q.PageSize), nil
}

// ImportantTasks returns the company-wide important tasks; the mock serves the High/Urgent subset.
func (c *Client) ImportantTasks(ctx context.Context) ([]model.Task, error) {
	if !c.useAPI(model.FeatureTasksList) {
		all, err := c.MockTasks(ctx)
		if err != nil {
			return nil, err
		}
		out := []model.Task{}
		for _, t := range all {
			if t.Priority == model.PriorityHigh || t.Priority == model.PriorityUrgent {
				out = append(out, t)
			}
		}
		return out, nil
	}
	res, err := c.do(ctx, "GET", "/api/company-tasks/important", nil, nil)
	if err != nil {
		return nil, fmt.Errorf("important tasks: %w", err)
	}
	if l, ok := res.([]any); ok {
		return decodeList[model.Task](l), nil
	}
	return decodeList[model.Task](pickList(res, "tasks", "data.tasks", "list", "data.list")), nil
}

func (c *Client) GetTask(ctx context.Context, id model.ID) (model.Task, error) {
	if id.IsZero() {
		return model.Task{}, fmt.Errorf("get task: missing id")
	}
	if !c.useAPI(model.FeatureTaskDetail) {
		all, err := c.MockTasks(ctx)
		if err != nil {
			return model.Task{}, err
		}
		t, ok := store.FindByID(all, id.String())
		if !ok {
			return model.Task{}, fmt.Errorf("task %w", ErrNotFound)
		}
		return t, nil
	}
	res, err := c.do(ctx, "GET", "/api/tasks/"+url.PathEscape(id.String()), nil, nil)
	if err != nil {
		return model.Task{}, fmt.Errorf("get task %s: %w", id, err)
	}
	if truthy(pick(res, "error")) {
		return model.Task{}, fmt.Errorf("get task %s: %s", id, firstNonBlank(pickString(res, "message"), "request failed"))
	}
	raw := pickMap(res, "task", "data.task", "data")
	if raw == nil {
		raw, _ = res.(map[string]any)
	}
	var t model.Task
	if raw != nil {
		if err := convert(raw, &t); err != nil {
			return model.Task{}, fmt.Errorf("get task %s: decode: %w", id, err)
		}
	}
	if t.ID.IsZero() && t.Title == "" {
		return model.Task{}, fmt.Errorf("task %w", ErrNotFound)
	}
	return t, nil
}

// CreateTask publishes a task. The mock stores it at the front of publishedTasks.
func (c *Client) CreateTask(ctx context.Context, t model.Task) (model.Result, error) {
	if !c.useAPI(model.FeatureTaskCreate) {
		if t.ID.IsZero() {
			t.ID = model.ID("T-" + uuid.NewString())
		}
		if t.Status == "" {
			t.Status = model.StatusPublished
		}
		now := model.NewTimestamp(c.now())
		if t.CreatedAt == nil {
			t.CreatedAt = now
		}
		t.UpdatedAt = now
		if t.Creator == nil {
			if u, ok, err := c.Session.CurrentUser(ctx); err == nil && ok {
				ref := u.Ref()
				t.Creator = &ref
			}
		}
		if _, err := store.UpdateList(ctx, c.KV, store.KeyPublishedTasks, func(l []model.Task) ([]model.Task, error) {
			return store.Upsert(l, t), nil
		}); err != nil {
			return model.Result{}, err
		}
		return model.Result{OK: true, ID: t.ID, Message: "task created"}, nil
	}
	res, err := c.do(ctx, "POST", "/api/tasks", nil, t)
	if err != nil {
		return model.Result{}, fmt.Errorf("create task: %w", err)
	}
	id := pickID(res, "id", "taskId", "data.id", "data.taskId")
	if id.IsZero() {
		id = t.ID
	}
	return model.Result{OK: true, ID: id, Message: pickString(res, "message")}, nil
}

// MockTasks returns the seed tasks merged with locally published ones,
// newest first (createdAt desc, then id desc).
func (c *Client) MockTasks(ctx context.Context) ([]model.Task, error) {
	var seed []model.Task
	if err := store.LoadSeedTasks(c.seedDir, &seed); err != nil {
		return nil, fmt.Errorf("load seed tasks: %w", err)
	}
	local, err := store.LoadList[model.Task](ctx, c.KV, store.KeyPublishedTasks)
	if err != nil {
		return nil, err
	}
	all := store.MergeByID(seed, local)
	sort.SliceStable(all, func(i, j int) bool {
		ai, aj := createdMillis(all[i]), createdMillis(all[j])
		if ai != aj {
			return ai > aj
		}
		return all[i].ID.String() > all[j].ID.String()
	})
	return all, nil
}

func createdMillis(t model.Task) int64 {
	if t.CreatedAt == nil || t.CreatedAt.IsZero() {
		return 0
	}
	return t.CreatedAt.UnixMilli()
}

func filterTasks(all []model.Task, q TaskQuery) []model.Task {
	out := make([]model.Task, 0, len(all))
	for _, t := range all {
		if q.Match(t) {
			out = append(out, t)
		}
	}
	return out
}

// paginate slices list into the requested page. pageSize <= 0 returns everything as page 1.
func paginate[T any](list []T, page, pageSize int) model.Page[T] {
	total := len(list)
	if pageSize <= 0 {
		return model.Page[T]{Total: total, List: list, Page: 1, PageSize: total, TotalPages: model.TotalPagesFor(total, total)}
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	items := make([]T, 0, end-start)
	items = append(items, list[start:end]...)
	return model.Page[T]{
		Total:      total,
		List:       items,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: model.TotalPagesFor(total, pageSize),
	}
}

// pageFrom reads a list envelope ({total, list, page, pageSize, totalPages},
// optionally under data). A bare array, or a list longer than the page size,
// is paginated locally.
func pageFrom[T any](res any, page, pageSize int) model.Page[T] {
	if l, ok := res.([]any); ok {
		if pageSize <= 0 {
			pageSize = defaultPageSize
		}
		list := decodeList[T](l)
		if len(list) > pageSize {
			return paginate(list, page, pageSize)
		}
		if page <= 0 {
			page = 1
		}
		return model.Page[T]{Total: len(list), List: list, Page: page, PageSize: pageSize, TotalPages: model.TotalPagesFor(len(list), pageSize)}
	}
	env := res
	if pickList(res, "list") == nil && pickMap(res, "data") != nil {
		env = pickMap(res, "data")
	}
	list := decodeList[T](pickList(env, "list", "items", "records"))
	p := model.Page[T]{
		Total:      pickInt(env, "total"),
		List:       list,
		Page:       pickInt(env, "page"),
		PageSize:   pickInt(env, "pageSize", "page_size"),
		TotalPages: pickInt(env, "totalPages", "total_pages"),
	}
	if p.Page <= 0 {
		p.Page = page
		if p.Page <= 0 {
			p.Page = 1
		}
	}
	if p.PageSize <= 0 {
		p.PageSize = pageSize
		if p.PageSize <= 0 {
			p.PageSize = defaultPageSize
		}
	}
	if p.Total < len(list) {
		p.Total = len(list)
	}
	if len(list) > p.PageSize {
		return paginate(list, p.Page, p.PageSize)
	}
	if p.TotalPages <= 0 {
		p.TotalPages = model.TotalPagesFor(p.Total, p.PageSize)
	}
	return p
}
