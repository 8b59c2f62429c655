// Package rest implements the service.Service interface over the task REST API.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"

	"taskdash/internal/config"
	"taskdash/internal/service"
)

// Client implements service.Service against a task backend.
type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
}

// New creates a client for the API URL in cfg.
// When cfg.Token is set every request carries it as a bearer token.
func New(ctx context.Context, cfg *config.Config) (*Client, error) {
	apiURL, err := cfg.APIURL()
	if err != nil {
		return nil, err
	}

	httpClient := &http.Client{}
	if cfg.Token != "" {
		tokenSource := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token})
		httpClient = oauth2.NewClient(ctx, tokenSource)
	}

	c, err := NewWithHTTPClient(apiURL, httpClient)
	if err != nil {
		return nil, err
	}
	c.timeout = cfg.Timeout
	return c, nil
}

// NewWithHTTPClient creates a client with a custom HTTP client (for testing).
// baseURL is the API root, e.g. http://localhost:4000/api.
func NewWithHTTPClient(baseURL string, httpClient *http.Client) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid api url: %q", baseURL)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}, nil
}

// SetTimeout bounds each request. Zero disables the deadline.
func (c *Client) SetTimeout(d time.Duration) {
	c.timeout = d
}

// ListTasks implements service.Service.
func (c *Client) ListTasks(ctx context.Context) ([]service.Task, error) {
	body, err := c.do(ctx, http.MethodGet, "/tasks", nil, nil)
	if err != nil {
		return nil, err
	}
	env, err := DecodeList(body)
	if err != nil {
		return nil, err
	}
	log.Debug().Stringer("shape", env.Shape).Int("count", len(env.Tasks)).Msg("tasks listed")
	return env.Tasks, nil
}

// GetTask implements service.Service.
func (c *Client) GetTask(ctx context.Context, id int64) (service.Task, error) {
	body, err := c.do(ctx, http.MethodGet, taskPath(id), nil, nil)
	if err != nil {
		return service.Task{}, err
	}
	return decodeTask(body, service.Task{ID: id})
}

// CreateTask implements service.Service.
func (c *Client) CreateTask(ctx context.Context, task service.Task) (service.Task, error) {
	if err := task.Validate(); err != nil {
		return service.Task{}, err
	}
	task.ID = 0
	body, err := c.do(ctx, http.MethodPost, "/tasks", nil, task)
	if err != nil {
		return service.Task{}, err
	}
	return decodeTask(body, task)
}

// UpdateTask implements service.Service.
// The id travels only in the path.
func (c *Client) UpdateTask(ctx context.Context, task service.Task) (service.Task, error) {
	if err := task.Validate(); err != nil {
		return service.Task{}, err
	}
	id := task.ID
	task.ID = 0
	body, err := c.do(ctx, http.MethodPut, taskPath(id), nil, task)
	if err != nil {
		return service.Task{}, err
	}
	task.ID = id
	return decodeTask(body, task)
}

// DeleteTask implements service.Service.
func (c *Client) DeleteTask(ctx context.Context, id int64) error {
	_, err := c.do(ctx, http.MethodDelete, taskPath(id), nil, nil)
	return err
}

// UpdateStatus implements service.Service.
func (c *Client) UpdateStatus(ctx context.Context, id int64, status service.Status) (service.Task, error) {
	query := url.Values{"status": {string(status)}}
	body, err := c.do(ctx, http.MethodPut, taskPath(id)+"/status", query, nil)
	if err != nil {
		return service.Task{}, err
	}
	return decodeTask(body, service.Task{ID: id, Status: status})
}

// ListStatuses implements service.Service.
func (c *Client) ListStatuses(ctx context.Context) ([]service.Status, error) {
	body, err := c.do(ctx, http.MethodGet, "/tasks/statuses", nil, nil)
	if err != nil {
		return nil, err
	}
	var statuses []service.Status
	if err := json.Unmarshal(body, &statuses); err != nil {
		return nil, fmt.Errorf("invalid statuses response: %w", err)
	}
	return statuses, nil
}

// SearchTasks implements service.Service.
// If the server search fails for any reason the full list is fetched and
// filtered locally; the result is then tagged SourceLocalFallback.
func (c *Client) SearchTasks(ctx context.Context, filters service.SearchFilters) (service.SearchResult, error) {
	tasks, err := c.serverSearch(ctx, filters)
	if err == nil {
		return service.SearchResult{Tasks: tasks, Source: service.SourceServer}, nil
	}

	log.Warn().Err(err).Msg("search endpoint failed, filtering locally")

	all, listErr := c.ListTasks(ctx)
	if listErr != nil {
		return service.SearchResult{}, listErr
	}
	matched := []service.Task{}
	for _, t := range all {
		if filters.Match(t) {
			matched = append(matched, t)
		}
	}
	return service.SearchResult{
		Tasks:  matched,
		Source: service.SourceLocalFallback,
		Cause:  err,
	}, nil
}

func (c *Client) serverSearch(ctx context.Context, filters service.SearchFilters) ([]service.Task, error) {
	query := url.Values{}
	if filters.Title != "" {
		query.Set("title", filters.Title)
	}
	if filters.Status != "" {
		query.Set("status", string(filters.Status))
	}
	if filters.DueDate != "" {
		query.Set("dueDate", filters.DueDate)
	}

	log.Debug().Bool("unfiltered", filters.IsEmpty()).Str("query", query.Encode()).Msg("searching tasks")
	body, err := c.do(ctx, http.MethodGet, "/tasks/search", query, nil)
	if err != nil {
		return nil, err
	}
	env, err := DecodeList(body)
	if err != nil {
		return nil, err
	}
	return env.Tasks, nil
}

// do performs one request and returns the response body.
// Non-2xx responses become *HTTPError.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, in any) ([]byte, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reqBody io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	log.Debug().Str("method", method).Str("url", target).Msg("request")

	res, err := c.http.Do(req)
	if err != nil {
		return nil, wrapError(err)
	}
	defer googleapi.CloseBody(res)

	if err := googleapi.CheckResponse(res); err != nil {
		return nil, wrapError(err)
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, wrapError(err)
	}
	log.Debug().Str("method", method).Str("url", target).Int("status", res.StatusCode).Msg("response")
	return body, nil
}

func taskPath(id int64) string {
	return "/tasks/" + strconv.FormatInt(id, 10)
}

// decodeTask decodes a single task. An empty body yields fallback, since
// some backends answer mutations with 204.
func decodeTask(body []byte, fallback service.Task) (service.Task, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return fallback, nil
	}
	var task service.Task
	if err := json.Unmarshal(body, &task); err != nil {
		return service.Task{}, fmt.Errorf("invalid task response: %w", err)
	}
	if task.ID == 0 {
		task.ID = fallback.ID
	}
	return task, nil
}

// springError is the error body of Spring Boot backends.
type springError struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// HTTPError is a non-2xx backend response. It unwraps to the
// *googleapi.Error produced by CheckResponse.
type HTTPError struct {
	Code    int
	Message string

	err *googleapi.Error
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.Code, e.Message)
}

func (e *HTTPError) Unwrap() error {
	return e.err
}

// wrapError wraps transport and HTTP errors with user-friendly messages.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("request timed out: %w", err)
	}

	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return err
	}

	herr := &HTTPError{Code: gerr.Code, Message: gerr.Message, err: gerr}
	if herr.Message == "" {
		var se springError
		if json.Unmarshal([]byte(gerr.Body), &se) == nil {
			herr.Message = se.Message
			if herr.Message == "" {
				herr.Message = se.Error
			}
		}
		if herr.Message == "" {
			herr.Message = http.StatusText(gerr.Code)
		}
	}

	if gerr.Code == http.StatusNotFound {
		return fmt.Errorf("%w: %w", service.ErrNotFound, herr)
	}
	return herr
}
