// productplan/ideas.go
package productplan

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gewnthar/ideatrack/models"
)

const ideasPath = "discovery/ideas"

// FetchAll retrieves the entire eligible collection, archived included,
// with per-idea detail enhancement.
func (c *Client) FetchAll(ctx context.Context) ([]models.ItemResult, error) {
	return c.fetchIdeas(ctx, nil)
}

// FetchUpdatedSince retrieves records changed on or after the given date.
// The time-scoping happens server-side via the updated_at filter.
func (c *Client) FetchUpdatedSince(ctx context.Context, since time.Time) ([]models.ItemResult, error) {
	return c.fetchIdeas(ctx, map[string]string{
		"updated_at_gteq": since.Format("2006-01-02"),
	})
}

// fetchIdeas pulls the idea list and enhances each row with its detail
// payload. A failed detail fetch degrades the record to a Partial outcome
// (list data only); a list row that cannot even be decoded is Failed. One
// bad record never aborts the batch.
func (c *Client) fetchIdeas(ctx context.Context, filters map[string]string) ([]models.ItemResult, error) {
	c.log.Infof("Fetching ideas from %s...", c.baseURL)
	raws, err := c.fetchAllPages(ctx, ideasPath, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch idea list: %w", err)
	}
	c.log.Infof("Fetched %d ideas, enhancing with details...", len(raws))

	results := make([]models.ItemResult, 0, len(raws))
	for i, raw := range raws {
		var idea models.RawIdea
		if err := json.Unmarshal(raw, &idea); err != nil {
			results = append(results, models.ItemResult{
				Outcome: models.FetchFailed,
				Err:     fmt.Errorf("failed to decode idea %d in list: %w", i+1, err),
			})
			continue
		}
		if idea.ID == 0 {
			results = append(results, models.ItemResult{
				Idea:    idea,
				Outcome: models.FetchFailed,
				Err:     fmt.Errorf("idea %d in list has no id", i+1),
			})
			continue
		}

		// The detail endpoint carries the attribute bags and accurate
		// location status; merge it over the list row. Fields absent
		// from the detail payload keep their list values.
		detailErr := c.getJSON(ctx, fmt.Sprintf("%s/%d", ideasPath, idea.ID), nil, &idea)
		if detailErr != nil {
			c.log.Warnf("Failed to fetch details for idea %d: %v", idea.ID, detailErr)
			results = append(results, models.ItemResult{
				Idea:    idea,
				Outcome: models.FetchPartial,
				Err:     detailErr,
			})
			continue
		}
		results = append(results, models.ItemResult{Idea: idea, Outcome: models.FetchFull})
	}
	c.log.Infof("Enhanced %d ideas", len(results))
	return results, nil
}
