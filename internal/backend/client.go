// Package backend is the read-only HTTP client for the mirror API. It
// decodes the today and range payloads into mirror types and never writes
// to the backend.
package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/sadopc/mirror/internal/calendar"
	"github.com/sadopc/mirror/internal/goals"
	"github.com/sadopc/mirror/internal/logging"
	"github.com/sadopc/mirror/internal/mirror"
)

const (
	DefaultTimeout = 15 * time.Second

	todayPath = "/api/mirror/today"
	rangePath = "/api/mirror/range"
	goalsPath = "/api/goals"

	maxErrorBody = 64 << 10
)

// Client fetches mirror payloads.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *log.Logger
	now        func() time.Time
}

type Option func(*Client)

// WithHTTPClient replaces the default client, mainly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithLogger(l *log.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithClock sets the clock used for the today fallback date.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// New returns a client for baseURL. A blank baseURL gives ErrNotConfigured.
func New(baseURL, token string, timeout time.Duration, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, ErrNotConfigured
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("parse backend url: %w", err)
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c := &Client{
		baseURL:    baseURL,
		token:      strings.TrimSpace(token),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logging.Discard(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) BaseURL() string { return c.baseURL }

// Today fetches the current day's summary.
func (c *Client) Today(ctx context.Context) (mirror.TodayPayload, error) {
	raw, err := c.get(ctx, todayPath, nil)
	if err != nil {
		return mirror.TodayPayload{}, err
	}
	p, err := decodeToday(raw, calendar.FromTime(c.now().UTC()))
	if err != nil {
		return mirror.TodayPayload{}, fmt.Errorf("decode today: %w", err)
	}
	c.logger.Debug("fetched today", "date", p.Date, "activities", len(p.Activities))
	return p, nil
}

// Range fetches the day records for r.
func (c *Client) Range(ctx context.Context, r calendar.Range) (mirror.RangePayload, error) {
	q := url.Values{}
	q.Set("start", r.Start.String())
	q.Set("end", r.End.String())

	raw, err := c.get(ctx, rangePath, q)
	if err != nil {
		return mirror.RangePayload{}, err
	}
	p, skipped, err := decodeRange(raw, r)
	if err != nil {
		return mirror.RangePayload{}, fmt.Errorf("decode range: %w", err)
	}
	if len(skipped) > 0 {
		c.logger.Warn("dropped days with bad dates", "dates", skipped)
	}
	c.logger.Debug("fetched range", "range", p.Range, "days", len(p.Days), "emotions", p.EmotionSource)
	return p, nil
}

// Goals fetches the user's goals with completion already resolved.
func (c *Client) Goals(ctx context.Context) ([]goals.Goal, error) {
	raw, err := c.get(ctx, goalsPath, nil)
	if err != nil {
		return nil, err
	}
	var list []goals.RawGoal
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("decode goals: %w", err)
	}
	return goals.NormalizeAll(list), nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values) ([]byte, error) {
	endpoint := c.baseURL + path
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, &FetchError{Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()
	c.logger.Debug("GET", "path", path, "status", resp.StatusCode, "took", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &FetchError{Status: resp.StatusCode, Message: errorMessage(resp.StatusCode, body)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{Status: resp.StatusCode, Message: err.Error(), Err: err}
	}
	return body, nil
}

// errorMessage pulls msg, message or error out of an error body, falling
// back to the status text.
func errorMessage(status int, body []byte) string {
	var b struct {
		Msg     string `json:"msg"`
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(body, &b) == nil {
		for _, s := range []string{b.Msg, b.Message, b.Error} {
			if s = strings.TrimSpace(s); s != "" {
				return s
			}
		}
	}
	if status == http.StatusUnauthorized {
		return "unauthorized"
	}
	if text := http.StatusText(status); text != "" {
		return strings.ToLower(text)
	}
	return fmt.Sprintf("status %d", status)
}
