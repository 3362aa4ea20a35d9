package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sandeepkv93/adhdash/internal/model"
)

const DefaultTimeout = 30 * time.Second

// Client talks to the dashboard backend REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type TaskQuery struct {
	Status  string
	Urgency string
	Limit   int
}

func (q TaskQuery) encode() string {
	v := url.Values{}
	if q.Status != "" {
		v.Set("status", q.Status)
	}
	if q.Urgency != "" {
		v.Set("urgency", q.Urgency)
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if len(v) == 0 {
		return ""
	}
	return "?" + v.Encode()
}

type successEnvelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

func (c *Client) ListTasks(ctx context.Context, q TaskQuery) ([]model.Task, error) {
	var out struct {
		Tasks []model.Task `json:"tasks"`
	}
	if err := c.do(ctx, "list tasks", http.MethodGet, "/api/tasks"+q.encode(), nil, &out); err != nil {
		return nil, err
	}
	return out.Tasks, nil
}

func (c *Client) CreateTask(ctx context.Context, title string) (model.Task, error) {
	var out struct {
		successEnvelope
		Task model.Task `json:"task"`
	}
	body := map[string]string{"title": title}
	if err := c.do(ctx, "create task", http.MethodPost, "/api/tasks", body, &out); err != nil {
		return model.Task{}, err
	}
	if !out.Success {
		return model.Task{}, &BackendError{Op: "create task", Message: out.Error}
	}
	return out.Task, nil
}

func (c *Client) MarkDone(ctx context.Context, id string) error {
	return c.doSuccess(ctx, "mark done", http.MethodPost, "/api/tasks/"+url.PathEscape(id)+"/done", nil)
}

// UpdateStatus only cares whether the PATCH was accepted; the body is ignored.
func (c *Client) UpdateStatus(ctx context.Context, id, status string) error {
	body := map[string]string{"status": status}
	return c.do(ctx, "update status", http.MethodPatch, "/api/tasks/"+url.PathEscape(id), body, nil)
}

func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.doSuccess(ctx, "delete task", http.MethodDelete, "/api/tasks/"+url.PathEscape(id), nil)
}

func (c *Client) ListHabits(ctx context.Context) ([]model.Habit, error) {
	var out struct {
		Habits []model.Habit `json:"habits"`
	}
	if err := c.do(ctx, "list habits", http.MethodGet, "/api/habits", nil, &out); err != nil {
		return nil, err
	}
	return out.Habits, nil
}

func (c *Client) IncrementHabit(ctx context.Context, id string) (model.Habit, error) {
	var out struct {
		successEnvelope
		Habit *model.Habit `json:"habit"`
	}
	if err := c.do(ctx, "increment habit", http.MethodPost, "/api/habits/"+url.PathEscape(id)+"/increment", nil, &out); err != nil {
		return model.Habit{}, err
	}
	if !out.Success {
		return model.Habit{}, &BackendError{Op: "increment habit", Message: out.Error}
	}
	if out.Habit == nil {
		return model.Habit{}, &BackendError{Op: "increment habit", Message: "response has no habit", Err: ErrMalformedResponse}
	}
	habit := *out.Habit
	if habit.ID == "" {
		habit.ID = id
	}
	return habit, nil
}

// Import posts the batch untouched. Any response that is not a success is a
// BackendError carrying the backend's message; only transport failures are
// NetworkErrors.
func (c *Client) Import(ctx context.Context, items []json.RawMessage) (model.ImportResult, error) {
	const op = "import"
	body := struct {
		Tasks []json.RawMessage `json:"tasks"`
	}{Tasks: items}
	status, raw, err := c.roundTrip(ctx, op, http.MethodPost, "/api/import", body)
	if err != nil {
		return model.ImportResult{}, err
	}
	var res model.ImportResult
	if decodeErr := json.Unmarshal(raw, &res); decodeErr != nil {
		return model.ImportResult{}, &BackendError{Op: op, Message: "malformed response", Err: ErrMalformedResponse}
	}
	if status < 200 || status > 299 || !res.Success || res.Error != "" {
		msg := res.Error
		if msg == "" {
			msg = fmt.Sprintf("import rejected (HTTP %d)", status)
		}
		return res, &BackendError{Op: op, Message: msg}
	}
	return res, nil
}

func (c *Client) Stats(ctx context.Context) (model.Stats, error) {
	var out model.Stats
	if err := c.do(ctx, "stats", http.MethodGet, "/api/stats", nil, &out); err != nil {
		return model.Stats{}, err
	}
	return out, nil
}

func (c *Client) MoodTrend(ctx context.Context, days int) (model.MoodTrend, error) {
	path := "/api/mood-data"
	if days > 0 {
		path += "?days=" + strconv.Itoa(days)
	}
	var out model.MoodTrend
	if err := c.do(ctx, "mood data", http.MethodGet, path, nil, &out); err != nil {
		return model.MoodTrend{}, err
	}
	return out, nil
}

func (c *Client) BadHabits(ctx context.Context) ([]model.NamedCount, error) {
	var out []model.NamedCount
	if err := c.do(ctx, "bad habits", http.MethodGet, "/api/analytics/bad-habits", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GoodHabits(ctx context.Context) ([]model.DatedCount, error) {
	var out []model.DatedCount
	if err := c.do(ctx, "good habits", http.MethodGet, "/api/analytics/good-habits", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Techniques(ctx context.Context) ([]model.NamedValue, error) {
	var out []model.NamedValue
	if err := c.do(ctx, "techniques", http.MethodGet, "/api/analytics/techniques", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) doSuccess(ctx context.Context, op, method, path string, body any) error {
	var env successEnvelope
	if err := c.do(ctx, op, method, path, body, &env); err != nil {
		return err
	}
	if !env.Success {
		return &BackendError{Op: op, Message: env.Error}
	}
	return nil
}

func (c *Client) do(ctx context.Context, op, method, path string, body any, out any) error {
	status, raw, err := c.roundTrip(ctx, op, method, path, body)
	if err != nil {
		return err
	}
	if status < 200 || status > 299 {
		return &NetworkError{Op: op, StatusCode: status, Message: errorField(raw)}
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		if out != nil {
			return &BackendError{Op: op, Message: "empty response", Err: ErrMalformedResponse}
		}
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &BackendError{Op: op, Message: "malformed response", Err: fmt.Errorf("%w: %v", ErrMalformedResponse, err)}
	}
	return nil
}

func (c *Client) roundTrip(ctx context.Context, op, method, path string, body any) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("%s: marshal request: %w", op, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("%s: create request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("backend request failed", "op", op, "method", method, "path", path, "error", err)
		return 0, nil, &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, &NetworkError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}
	c.logger.Debug("backend request", "op", op, "method", method, "path", path, "status", resp.StatusCode, "elapsed", time.Since(started))
	return resp.StatusCode, raw, nil
}

func errorField(raw []byte) string {
	var env successEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return ""
	}
	return env.Error
}
