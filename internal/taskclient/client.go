// Package taskclient is the board's HTTP client for the task store.
//
// The store speaks the json-server conventions: GET /tasks takes column,
// _page, _per_page, _sort, _order and _limit, and answers with either a bare
// JSON array or a {data, next} page envelope. Both shapes are accepted.
package taskclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/kandev/taskboard/internal/common/errors"
	"github.com/kandev/taskboard/internal/common/logger"
	"github.com/kandev/taskboard/internal/common/tracing"
	"github.com/kandev/taskboard/internal/task/models"
)

// DefaultBaseURL is where a local task store listens.
const DefaultBaseURL = "http://localhost:4000"

// DefaultTimeout bounds every request unless WithTimeout says otherwise.
const DefaultTimeout = 30 * time.Second

// Client talks to the task store over HTTP. It never retries.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	logger     *logger.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout. It applies to a copy of the
// http.Client, so a shared client passed to WithHTTPClient is left alone.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// NewClient creates a task store client for baseURL.
func NewClient(baseURL string, log *logger.Logger, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     log.WithFields(zap.String("component", "taskclient")),
	}
	for _, opt := range opts {
		opt(c)
	}
	var hc http.Client
	if c.httpClient != nil {
		hc = *c.httpClient
	}
	if c.timeout > 0 {
		hc.Timeout = c.timeout
	}
	c.httpClient = &hc
	return c
}

// List fetches tasks matching q and returns the page along with whether
// another page follows. For a bare array response the page is full, and
// more may follow, iff exactly PerPage (or Limit) items came back.
func (c *Client) List(ctx context.Context, q Query) (Page, error) {
	var body []byte
	status, err := c.do(ctx, "list", http.MethodGet, "/tasks", q.values(), nil, &body)
	if err != nil {
		return Page{}, err
	}

	page := Page{Number: q.Page}
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var env envelope
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return Page{}, apperrors.StoreFailure("list", status,
				fmt.Errorf("failed to parse list envelope (body: %s): %w", truncateBody(body), err))
		}
		page.Tasks = env.Data
		page.HasMore = env.Next != nil
	} else {
		if err := json.Unmarshal(trimmed, &page.Tasks); err != nil {
			return Page{}, apperrors.StoreFailure("list", status,
				fmt.Errorf("failed to parse task list (body: %s): %w", truncateBody(body), err))
		}
		want := q.PerPage
		if q.Page == 0 {
			want = q.Limit
		}
		page.HasMore = want > 0 && len(page.Tasks) == want
	}
	if page.Tasks == nil {
		page.Tasks = []Task{}
	}
	return page, nil
}

// ColumnPage fetches page number (1-based) of column in ascending position order.
func (c *Client) ColumnPage(ctx context.Context, column models.Column, number, perPage int) (Page, error) {
	return c.List(ctx, Query{
		Column:  column,
		Page:    number,
		PerPage: perPage,
		Sort:    "position",
		Order:   "asc",
	})
}

// First returns the lowest-positioned task of column, or nil when it is empty.
func (c *Client) First(ctx context.Context, column models.Column) (*Task, error) {
	page, err := c.List(ctx, Query{Column: column, Sort: "position", Order: "asc", Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(page.Tasks) == 0 {
		return nil, nil
	}
	return &page.Tasks[0], nil
}

// Create stores a new task. The id must be set by the caller.
func (c *Client) Create(ctx context.Context, task Task) (*Task, error) {
	var created Task
	if _, err := c.do(ctx, "create", http.MethodPost, "/tasks", nil, task, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// Patch applies a partial update to task id.
func (c *Client) Patch(ctx context.Context, id string, patch Patch) (*Task, error) {
	var updated Task
	if _, err := c.do(ctx, "patch", http.MethodPatch, "/tasks/"+url.PathEscape(id), nil, patch, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete removes task id.
func (c *Client) Delete(ctx context.Context, id string) error {
	_, err := c.do(ctx, "delete", http.MethodDelete, "/tasks/"+url.PathEscape(id), nil, nil, nil)
	return err
}

// Rebalance asks the store to renumber column and returns it in order.
func (c *Client) Rebalance(ctx context.Context, column models.Column) ([]Task, error) {
	var tasks []Task
	path := "/columns/" + url.PathEscape(string(column)) + "/rebalance"
	if _, err := c.do(ctx, "rebalance", http.MethodPost, path, nil, nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// do performs one request. out may be nil, a *[]byte for the raw body, or a
// value to decode the JSON body into. Every failure is an AppError: NotFound
// for 404, StoreFailure for anything else.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, in, out interface{}) (int, error) {
	ctx, span := tracing.TraceHTTPRequest(ctx, method, path)
	defer span.End()

	status, err := c.roundTrip(ctx, op, method, path, query, in, out)
	tracing.TraceHTTPResponse(span, status, err)
	if err != nil {
		c.logger.Debug("task store request failed",
			zap.String("op", op),
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Error(err))
	}
	return status, err
}

func (c *Client) roundTrip(ctx context.Context, op, method, path string, query url.Values, in, out interface{}) (int, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reqBody io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return 0, apperrors.StoreFailure(op, 0, fmt.Errorf("failed to encode request: %w", err))
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return 0, apperrors.StoreFailure(op, 0, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if id, ok := ctx.Value(logger.MoveIDKey).(string); ok && id != "" {
		req.Header.Set("X-Request-ID", id)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, apperrors.StoreFailure(op, 0, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := readResponseBody(resp)
	if err != nil {
		return resp.StatusCode, apperrors.StoreFailure(op, resp.StatusCode, fmt.Errorf("failed to read response body: %w", err))
	}

	if resp.StatusCode == http.StatusNotFound {
		return resp.StatusCode, apperrors.NotFound("task store resource", path)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.StatusCode, apperrors.StoreFailure(op, resp.StatusCode, fmt.Errorf("%s", truncateBody(respBody)))
	}

	switch dst := out.(type) {
	case nil:
	case *[]byte:
		*dst = respBody
	default:
		if len(bytes.TrimSpace(respBody)) == 0 {
			return resp.StatusCode, nil
		}
		if err := json.Unmarshal(respBody, dst); err != nil {
			return resp.StatusCode, apperrors.StoreFailure(op, resp.StatusCode,
				fmt.Errorf("failed to parse response (body: %s): %w", truncateBody(respBody), err))
		}
	}
	return resp.StatusCode, nil
}

func (q Query) values() url.Values {
	v := url.Values{}
	if q.Column != "" {
		v.Set("column", string(q.Column))
	}
	if q.Page > 0 {
		v.Set("_page", strconv.Itoa(q.Page))
	}
	if q.PerPage > 0 {
		v.Set("_per_page", strconv.Itoa(q.PerPage))
	}
	if q.Sort != "" {
		v.Set("_sort", q.Sort)
	}
	if q.Order != "" {
		v.Set("_order", q.Order)
	}
	if q.Limit > 0 {
		v.Set("_limit", strconv.Itoa(q.Limit))
	}
	return v
}

func readResponseBody(resp *http.Response) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// truncateBody truncates body for error messages to avoid huge logs
func truncateBody(body []byte) string {
	const maxLen = 200
	if len(body) > maxLen {
		return string(body[:maxLen]) + "..."
	}
	return string(body)
}
