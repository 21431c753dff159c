// Package upstream holds the paged HTTP clients for the external people
// systems (payroll, LMS). Token exchange and refresh are handled by the
// surrounding platform; clients here carry a ready bearer token.
package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/complyops/backoffice/internal/reconcile"
)

type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// pageEnvelope is the wire shape both upstream APIs share.
type pageEnvelope struct {
	Items      []map[string]any `json:"items"`
	TotalPages int              `json:"totalPages"`
}

func (c *Client) fetchPage(ctx context.Context, path string, page, pageSize int) ([]map[string]any, int, error) {
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return nil, 0, fmt.Errorf("build url: %w", err)
	}
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	q.Set("pageSize", strconv.Itoa(pageSize))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("fetch %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, 0, fmt.Errorf("fetch %s: unexpected status %d", path, resp.StatusCode)
	}

	var env pageEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, 0, fmt.Errorf("decode %s page %d: %w", path, page, err)
	}
	return env.Items, env.TotalPages, nil
}

// Source adapts one paged endpoint to the reconciliation engine. The
// external id is read from the given field and stringified, since the
// upstreams disagree on numeric vs string ids.
func (c *Client) Source(path, idField string) reconcile.Source {
	return pagedSource{client: c, path: path, idField: idField}
}

type pagedSource struct {
	client  *Client
	path    string
	idField string
}

func (s pagedSource) FetchPage(ctx context.Context, page, pageSize int) ([]reconcile.Record, int, error) {
	items, totalPages, err := s.client.fetchPage(ctx, s.path, page, pageSize)
	if err != nil {
		return nil, 0, err
	}

	records := make([]reconcile.Record, 0, len(items))
	for _, item := range items {
		records = append(records, reconcile.Record{
			ExternalID: stringifyID(item[s.idField]),
			Attributes: item,
		})
	}
	return records, totalPages, nil
}

func stringifyID(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatInt(int64(t), 10)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", t)
	}
}
