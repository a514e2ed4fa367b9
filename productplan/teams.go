// productplan/teams.go
package productplan

import (
	"context"
	"encoding/json"
	"fmt"
)

const teamsPath = "teams"

type team struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Teams builds the team id to name lookup consumed once per pass.
func (c *Client) Teams(ctx context.Context) (map[int64]string, error) {
	raws, err := c.fetchAllPages(ctx, teamsPath, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch teams: %w", err)
	}

	mapping := make(map[int64]string, len(raws))
	for i, raw := range raws {
		var t team
		if err := json.Unmarshal(raw, &t); err != nil {
			return nil, fmt.Errorf("failed to decode team %d: %w", i+1, err)
		}
		if t.Name != "" {
			mapping[t.ID] = t.Name
		}
	}
	return mapping, nil
}
