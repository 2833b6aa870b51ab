// Package pocketbase implements the remote catalog backend over the
// PocketBase records API. Field names of the collection are isolated in a
// dialect; callers only see canonical records.
package pocketbase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mesh-intelligence/shelf/pkg/types"
)

// pageSize is the perPage used when listing.
const pageSize = 500

// Client is a record store backed by one PocketBase collection.
type Client struct {
	baseURL    string
	collection string
	dialect    dialect
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a client for cfg. httpClient may be nil, in which case
// a client with the given timeout is used.
func NewClient(cfg types.PocketBaseConfig, httpClient *http.Client, timeout time.Duration, logger *slog.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, types.ErrURLEmpty
	}
	d, err := lookupDialect(cfg.Dialect)
	if err != nil {
		return nil, err
	}
	if cfg.Collection == "" {
		cfg.Collection = types.DefaultCollection
	}
	if httpClient == nil {
		if timeout <= 0 {
			timeout = types.DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		collection: cfg.Collection,
		dialect:    d,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// listResponse is the paginated envelope of the list endpoint.
type listResponse struct {
	Page       int              `json:"page"`
	PerPage    int              `json:"perPage"`
	TotalPages int              `json:"totalPages"`
	TotalItems int              `json:"totalItems"`
	Items      []map[string]any `json:"items"`
}

// errorResponse is the body PocketBase sends with non-2xx statuses.
type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// ListAll returns every record with listing fields only, sorted by title.
func (c *Client) ListAll(ctx context.Context) ([]types.Record, error) {
	return c.list(ctx, "")
}

// QueryFiltered runs the filter on the server.
func (c *Client) QueryFiltered(ctx context.Context, f types.Filters) ([]types.Record, error) {
	return c.list(ctx, c.dialect.filter(f))
}

func (c *Client) list(ctx context.Context, filter string) ([]types.Record, error) {
	records := make([]types.Record, 0)
	for page := 1; ; page++ {
		q := url.Values{}
		q.Set("page", strconv.Itoa(page))
		q.Set("perPage", strconv.Itoa(pageSize))
		q.Set("sort", c.dialect.title)
		if filter != "" {
			q.Set("filter", filter)
		}

		var resp listResponse
		if err := c.do(ctx, http.MethodGet, c.recordsURL("")+"?"+q.Encode(), nil, &resp); err != nil {
			return nil, fmt.Errorf("listing %s: %w", c.collection, err)
		}
		for _, item := range resp.Items {
			records = append(records, c.dialect.record(item).Lightweight())
		}
		if page >= resp.TotalPages || len(resp.Items) == 0 {
			break
		}
	}
	c.logger.Debug("pocketbase list", "collection", c.collection, "filter", filter, "records", len(records))
	return records, nil
}

// Get returns the full record.
func (c *Client) Get(ctx context.Context, id string) (types.Record, error) {
	if strings.TrimSpace(id) == "" {
		return types.Record{}, types.ErrInvalidID
	}
	var item map[string]any
	if err := c.do(ctx, http.MethodGet, c.recordsURL(id), nil, &item); err != nil {
		return types.Record{}, fmt.Errorf("getting book %s: %w", id, err)
	}
	return c.dialect.record(item), nil
}

// Update sends patch as a PATCH and returns the record PocketBase answers
// with.
func (c *Client) Update(ctx context.Context, id string, patch types.RecordPatch) (types.Record, error) {
	if strings.TrimSpace(id) == "" {
		return types.Record{}, types.ErrInvalidID
	}
	body := c.dialect.body(patch)
	if len(body) == 0 {
		return types.Record{}, fmt.Errorf("updating book %s: %w: empty patch", id, types.ErrValidation)
	}
	var item map[string]any
	if err := c.do(ctx, http.MethodPatch, c.recordsURL(id), body, &item); err != nil {
		return types.Record{}, fmt.Errorf("updating book %s: %w", id, err)
	}
	return c.dialect.record(item), nil
}

func (c *Client) recordsURL(id string) string {
	u := fmt.Sprintf("%s/api/collections/%s/records", c.baseURL, url.PathEscape(c.collection))
	if id != "" {
		u += "/" + url.PathEscape(id)
	}
	return u
}

// do performs one request and decodes a 2xx JSON body into out. Failures
// are mapped onto the catalog error sentinels.
func (c *Client) do(ctx context.Context, method, target string, in any, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("%w: building request: %w", types.ErrStoreUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return transportError(err)
	}
	defer resp.Body.Close()
	c.logger.Debug("pocketbase request", "method", method, "url", target, "status", resp.StatusCode, "elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%w: %w", types.ErrTimeout, err)
		}
		return fmt.Errorf("%w: decoding response: %w", types.ErrStoreUnavailable, err)
	}
	return nil
}

func transportError(err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%w: %w", types.ErrTimeout, err)
	}
	return fmt.Errorf("%w: %w", types.ErrStoreUnavailable, err)
}

func statusError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	msg := strings.TrimSpace(string(data))
	var e errorResponse
	if json.Unmarshal(data, &e) == nil && e.Message != "" {
		msg = e.Message
	}

	var sentinel error
	switch resp.StatusCode {
	case http.StatusNotFound:
		sentinel = types.ErrNotFound
	case http.StatusBadRequest, http.StatusForbidden:
		// 403 is a collection rule refusing the request, not an outage.
		sentinel = types.ErrValidation
	default:
		sentinel = types.ErrStoreUnavailable
	}
	return fmt.Errorf("%w: status %d: %s", sentinel, resp.StatusCode, msg)
}
