// productplan/client.go
package productplan

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// DefaultBaseURL is the production API root.
const DefaultBaseURL = "https://app.productplan.com/api/v2"

const defaultPageSize = 200

// Client talks to the ProductPlan v2 REST API with bearer-token auth. It
// implements the engine's Source interface.
type Client struct {
	baseURL    string
	token      string
	pageSize   int
	httpClient *http.Client
	log        *zap.SugaredLogger
}

// NewClient builds a client. An empty baseURL selects the production API.
func NewClient(baseURL, token string, log *zap.SugaredLogger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:  baseURL,
		token:    token,
		pageSize: defaultPageSize,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: log,
	}
}

// listResponse is the paginated envelope every list endpoint returns.
type listResponse struct {
	Results []json.RawMessage `json:"results"`
	Paging  struct {
		Next string `json:"next"`
	} `json:"paging"`
}

// getJSON performs one GET and decodes the body into out.
func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out interface{}) error {
	u := c.baseURL + "/" + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("failed to build request for %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("request to %s returned status %d: %s", path, resp.StatusCode, body)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", path, err)
	}
	return nil
}

// fetchAllPages walks the paginated list endpoint until the paging info
// reports no next page. Filters are sent in the API's q[...] form.
func (c *Client) fetchAllPages(ctx context.Context, path string, filters map[string]string) ([]json.RawMessage, error) {
	var all []json.RawMessage
	page := 1
	for {
		params := url.Values{}
		params.Set("page", strconv.Itoa(page))
		params.Set("page_size", strconv.Itoa(c.pageSize))
		for k, v := range filters {
			params.Set("q["+k+"]", v)
		}

		var resp listResponse
		if err := c.getJSON(ctx, path, params, &resp); err != nil {
			return nil, err
		}
		all = append(all, resp.Results...)
		c.log.Debugf("Fetched page %d of %s: %d items, total %d", page, path, len(resp.Results), len(all))

		if len(resp.Results) == 0 || resp.Paging.Next == "" {
			return all, nil
		}
		page++
	}
}
