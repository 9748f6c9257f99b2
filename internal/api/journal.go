package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"pandora-cli/internal/model"
	"pandora-cli/internal/store"
)

type JournalQuery struct {
	Date     string
	Page     int
	PageSize int
}

func (c *Client) ListJournal(ctx context.Context, q JournalQuery) (model.Page[model.JournalEntry], error) {
	if !c.useAPI(model.FeatureJournal) {
		list, err := store.LoadList[model.JournalEntry](ctx, c.KV, store.KeyJournalEntries)
		if err != nil {
			return model.Page[model.JournalEntry]{}, err
		}
		if d := strings.TrimSpace(q.Date); d != "" {
			filtered := make([]model.JournalEntry, 0, len(list))
			for _, e := range list {
				if e.Date == d {
					filtered = append(filtered, e)
				}
			}
			list = filtered
		}
		return paginate(list, q.Page, q.PageSize), nil
	}
	v := url.Values{}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.PageSize > 0 {
		v.Set("pageSize", strconv.Itoa(q.PageSize))
	}
	if d := strings.TrimSpace(q.Date); d != "" {
		v.Set("date", d)
	}
	res, err := c.do(ctx, "GET", "/api/journals/", v, nil)
	if err != nil {
		return model.Page[model.JournalEntry]{}, fmt.Errorf("list journal: %w", err)
	}
	if truthy(pick(res, "error")) {
		// The proxy degrades backend failures to an empty list carrying the error message.
		c.log.Warn("journal list degraded", zap.String("message", pickString(res, "message")))
	}
	if l := pickList(res, "entries", "data.entries"); l != nil {
		return paginate(decodeList[model.JournalEntry](l), q.Page, q.PageSize), nil
	}
	return pageFrom[model.JournalEntry](res, q.Page, q.PageSize), nil
}

func (c *Client) CreateJournal(ctx context.Context, e model.JournalEntry) (model.Result, error) {
	if !c.useAPI(model.FeatureJournal) {
		now := c.now()
		e.ID = model.ID("entry-" + uuid.NewString())
		e.TS = now.UnixMilli()
		e.CreatedAt = model.NewTimestamp(now)
		if e.Date == "" {
			e.Date = now.Format("2006-01-02")
		}
		if e.AuthorID.IsZero() && e.AuthorName == "" {
			if u, ok, err := c.Session.CurrentUser(ctx); err == nil && ok {
				e.AuthorID = u.ID
				e.AuthorName = u.Name
			}
		}
		if _, err := store.UpdateList(ctx, c.KV, store.KeyJournalEntries, func(l []model.JournalEntry) ([]model.JournalEntry, error) {
			return store.Upsert(l, e), nil
		}); err != nil {
			return model.Result{}, err
		}
		return model.Result{OK: true, ID: e.ID}, nil
	}
	res, err := c.do(ctx, "POST", "/api/journals/", nil, e)
	if err != nil {
		return model.Result{}, fmt.Errorf("create journal entry: %w", err)
	}
	id := pickID(res, "id", "data.id")
	if id.IsZero() {
		id = model.ID("entry-" + strconv.FormatInt(c.now().UnixMilli(), 10))
	}
	return model.Result{OK: true, ID: id}, nil
}

// UpdateJournal applies patch to an entry. The mock keeps the pre-edit state in journalHistory.
func (c *Client) UpdateJournal(ctx context.Context, id model.ID, patch model.JournalPatch) (model.Result, error) {
	if !c.useAPI(model.FeatureJournal) {
		now := c.now()
		var previous model.JournalEntry
		_, err := store.UpdateList(ctx, c.KV, store.KeyJournalEntries, func(l []model.JournalEntry) ([]model.JournalEntry, error) {
			orig, ok := store.FindByID(l, id.String())
			if !ok {
				return nil, fmt.Errorf("entry %w", ErrNotFound)
			}
			previous = orig
			next := patch.Apply(orig)
			next.UpdatedAt = model.NewTimestamp(now)
			if next.CreatedAt == nil || next.CreatedAt.IsZero() {
				if orig.TS > 0 {
					next.CreatedAt = model.NewTimestamp(time.UnixMilli(orig.TS))
				} else {
					next.CreatedAt = model.NewTimestamp(now)
				}
			}
			return store.Upsert(l, next), nil
		})
		if err != nil {
			return model.Result{}, err
		}
		rev := model.JournalRevision{EntryID: id, ModifiedAt: model.NewTimestamp(now), Previous: previous}
		if _, err := store.UpdateList(ctx, c.KV, store.KeyJournalHistory, func(l []model.JournalRevision) ([]model.JournalRevision, error) {
			return append([]model.JournalRevision{rev}, l...), nil
		}); err != nil {
			return model.Result{}, err
		}
		return model.Result{OK: true, ID: id}, nil
	}
	if _, err := c.do(ctx, "PUT", "/api/journals/"+url.PathEscape(id.String())+"/", nil, patch); err != nil {
		return model.Result{}, fmt.Errorf("update journal entry %s: %w", id, err)
	}
	return model.Result{OK: true, ID: id}, nil
}

func (c *Client) DeleteJournal(ctx context.Context, id model.ID) (model.Result, error) {
	if !c.useAPI(model.FeatureJournal) {
		if _, err := store.UpdateList(ctx, c.KV, store.KeyJournalEntries, func(l []model.JournalEntry) ([]model.JournalEntry, error) {
			out, removed := store.RemoveByID(l, id.String())
			if !removed {
				return nil, fmt.Errorf("entry %w", ErrNotFound)
			}
			return out, nil
		}); err != nil {
			return model.Result{}, err
		}
		return model.Result{OK: true, ID: id}, nil
	}
	if _, err := c.do(ctx, "DELETE", "/api/journals/"+url.PathEscape(id.String())+"/", nil, nil); err != nil {
		return model.Result{}, fmt.Errorf("delete journal entry %s: %w", id, err)
	}
	return model.Result{OK: true, ID: id}, nil
}

// JournalHistory lists the recorded edits of an entry, newest first.
func (c *Client) JournalHistory(ctx context.Context, id model.ID) ([]model.JournalRevision, error) {
	if !c.useAPI(model.FeatureJournal) {
		all, err := store.LoadList[model.JournalRevision](ctx, c.KV, store.KeyJournalHistory)
		if err != nil {
			return nil, err
		}
		out := []model.JournalRevision{}
		for _, r := range all {
			if r.EntryID == id {
				out = append(out, r)
			}
		}
		return out, nil
	}
	res, err := c.do(ctx, "GET", "/api/journals/"+url.PathEscape(id.String())+"/history/", nil, nil)
	if err != nil {
		return nil, fmt.Errorf("journal history %s: %w", id, err)
	}
	if l, ok := res.([]any); ok {
		return decodeList[model.JournalRevision](l), nil
	}
	return decodeList[model.JournalRevision](pickList(res, "history", "data.history")), nil
}
