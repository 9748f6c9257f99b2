package api

import (
	"context"
	"fmt"

	"pandora-cli/internal/model"
)

const recentTaskCount = 5

func (c *Client) GetStats(ctx context.Context) (model.Stats, error) {
	if !c.useAPI(model.FeatureStats) {
		page, err := c.ListTasks(ctx, TaskQuery{})
		if err != nil {
			return model.Stats{}, err
		}
		return StatsFromTasks(page.List), nil
	}
	res, err := c.do(ctx, "GET", "/api/dashboard/stats", nil, nil)
	if err != nil {
		return model.Stats{}, fmt.Errorf("get stats: %w", err)
	}
	raw := pickMap(res, "stats", "data.stats")
	if raw == nil {
		raw, _ = res.(map[string]any)
	}
	var s model.Stats
	if raw != nil {
		if err := convert(raw, &s); err != nil {
			return model.Stats{}, fmt.Errorf("get stats: decode: %w", err)
		}
	}
	if s.RecentTasks == nil {
		s.RecentTasks = []model.RecentTask{}
	}
	return s, nil
}

// StatsFromTasks buckets tasks by progress: 100 completed, 1-99 in progress, 0 pending.
func StatsFromTasks(tasks []model.Task) model.Stats {
	s := model.Stats{TotalTasks: len(tasks), RecentTasks: []model.RecentTask{}}
	for _, t := range tasks {
		switch p := t.EffectiveProgress(); {
		case p >= 100:
			s.CompletedTasks++
		case p > 0:
			s.InProgressTasks++
		default:
			s.PendingTasks++
		}
	}
	for i, t := range tasks {
		if i == recentTaskCount {
			break
		}
		s.RecentTasks = append(s.RecentTasks, model.RecentTask{
			ID:       t.ID,
			Name:     t.Title,
			Progress: t.EffectiveProgress(),
			DueDate:  t.DueAt,
			Owner:    t.OwnerName(),
		})
	}
	return s
}
