// services/duplicates.go
package services

import (
	"context"
	"net/url"
	"strings"

	"upvote-club/models"
	"upvote-club/store"
)

// NormalizeURL reduces a post URL to the form used to spot the same target
// across accounts: lowercase scheme and host, no "www.", no query, no
// fragment, no trailing slash. The path keeps its case.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return strings.TrimRight(strings.ToLower(raw), "/")
	}

	host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")
	path := strings.TrimRight(u.EscapedPath(), "/")
	return strings.ToLower(u.Scheme) + "://" + host + path
}

type urlGroup struct {
	firstCreator string
	active       []models.Task
	creators     map[string]bool // creators holding ACTIVE tasks
}

// RunDuplicateCleanup deletes ACTIVE tasks whose normalized URL is also
// promoted by other creators, keeping only those of the creator who first
// posted the URL. A single creator running several tasks on one URL is left
// alone.
func (s *Sweeper) RunDuplicateCleanup(ctx context.Context) (*SweepReport, error) {
	report := s.begin(SweepDuplicates)

	tasks, err := s.Store.ListTasks(ctx, store.TaskFilter{
		Statuses: []models.TaskStatus{
			models.TaskStatusActive, models.TaskStatusPaused, models.TaskStatusCompleted,
		},
		OldestFirst: true,
	})
	if err != nil {
		return nil, err
	}

	groups, order := groupByURL(tasks)
	for _, key := range order {
		g := groups[key]
		if len(g.creators) < 2 {
			continue
		}
		for _, t := range g.active {
			if t.CreatorID == g.firstCreator {
				continue
			}
			report.add(s.deleteOne(ctx, t.ID, models.DeletionDoubleAccount))
		}
	}
	return s.finish(ctx, report), nil
}

// groupByURL expects tasks oldest first, so the first task seen in a group
// belongs to the first creator.
func groupByURL(tasks []models.Task) (map[string]*urlGroup, []string) {
	groups := map[string]*urlGroup{}
	var order []string
	for _, t := range tasks {
		key := NormalizeURL(t.PostURL)
		g, ok := groups[key]
		if !ok {
			g = &urlGroup{firstCreator: t.CreatorID, creators: map[string]bool{}}
			groups[key] = g
			order = append(order, key)
		}
		if t.Status == models.TaskStatusActive {
			g.active = append(g.active, t)
			g.creators[t.CreatorID] = true
		}
	}
	return groups, order
}
