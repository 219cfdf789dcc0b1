// Package source fetches offer records from the tenders API.
package source

import (
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

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	hjson "github.com/hjson/hjson-go/v4"
	"golang.org/x/time/rate"

	"github.com/nurpe/oil-tenders/internal/model"
)

const (
	DefaultBaseURL      = "https://oil-tenders-api.up.railway.app"
	MaxPageSize         = 500
	defaultDesiredTotal = 1000
	defaultTimeout      = 30 * time.Second
	defaultRatePerSec   = 5
	defaultMaxRetries   = 3
	defaultUserAgent    = "oil-tenders/1.0"
)

var ErrUnexpectedShape = errors.New("source: unexpected response shape")

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("source: API %d: %s", e.Code, e.Body)
}

func (e *StatusError) retryable() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= http.StatusInternalServerError
}

type Config struct {
	BaseURL         string
	DesiredTotal    int
	PageSize        int
	Timeout         time.Duration
	RateLimitPerSec float64
	MaxRetries      int
	UserAgent       string
}

type Client struct {
	config  Config
	client  *http.Client
	limiter *rate.Limiter
}

func NewClient(cfg Config) *Client {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.DesiredTotal <= 0 {
		cfg.DesiredTotal = defaultDesiredTotal
	}
	if cfg.PageSize <= 0 || cfg.PageSize > MaxPageSize {
		cfg.PageSize = MaxPageSize
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.RateLimitPerSec <= 0 {
		cfg.RateLimitPerSec = defaultRatePerSec
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}

	return &Client{
		config:  cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimitPerSec), 1),
	}
}

type Health struct {
	Status string `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (c *Client) Health(ctx context.Context) (Health, error) {
	body, err := c.get(ctx, "/health", nil)
	if err != nil {
		return Health{}, err
	}
	var h Health
	if err := json.Unmarshal(body, &h); err != nil {
		return Health{}, fmt.Errorf("source: decode health: %w", err)
	}
	return h, nil
}

// FetchOffers pages through /offers until desired records are collected or
// the API returns a short page. desired <= 0 uses the configured total.
func (c *Client) FetchOffers(ctx context.Context, desired int) ([]model.Offer, error) {
	if desired <= 0 {
		desired = c.config.DesiredTotal
	}

	out := make([]model.Offer, 0, min(desired, c.config.PageSize))
	for len(out) < desired {
		limit := min(c.config.PageSize, desired-len(out))
		params := url.Values{}
		params.Set("limit", strconv.Itoa(limit))
		params.Set("offset", strconv.Itoa(len(out)))

		body, err := c.get(ctx, "/offers", params)
		if err != nil {
			return nil, err
		}
		page, err := DecodeOffers(body)
		if err != nil {
			return nil, fmt.Errorf("source: offset %d: %w", len(out), err)
		}
		if len(page) > limit {
			// The API ignored the limit.
			page = page[:limit]
			out = append(out, page...)
			break
		}
		out = append(out, page...)
		if len(page) < limit {
			break
		}
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	attempts := c.config.MaxRetries + 1
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		body, retryAfter, err := c.do(ctx, path, params)
		if err == nil {
			return body, nil
		}
		lastErr = err

		var statusErr *StatusError
		if !errors.As(err, &statusErr) || !statusErr.retryable() || attempt == attempts-1 {
			return nil, err
		}
		if retryAfter <= 0 {
			retryAfter = time.Duration(attempt+1) * 500 * time.Millisecond
		}
		if err := sleepWithContext(ctx, retryAfter); err != nil {
			return nil, err
		}
	}
	return nil, lastErr
}

func (c *Client) do(ctx context.Context, path string, params url.Values) ([]byte, time.Duration, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, 0, err
	}

	uri := c.config.BaseURL + path
	if len(params) > 0 {
		uri += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.config.UserAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, err
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, parseRetryAfter(resp), &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	return body, 0, nil
}

// DecodeOffers accepts either a JSON array of offers or an object with an
// "items" array. Malformed payloads are retried through json-repair and then
// hjson before giving up.
func DecodeOffers(body []byte) ([]model.Offer, error) {
	offers, err := decodeStrict(body)
	if err == nil || errors.Is(err, ErrUnexpectedShape) {
		return offers, err
	}

	if repaired, rerr := jsonrepair.RepairJSON(string(body)); rerr == nil {
		if offers, err := decodeStrict([]byte(repaired)); err == nil {
			return offers, nil
		}
	}

	var lenient any
	if herr := hjson.Unmarshal(body, &lenient); herr == nil {
		if normalized, merr := json.Marshal(lenient); merr == nil {
			if offers, err := decodeStrict(normalized); err == nil {
				return offers, nil
			}
		}
	}
	return nil, fmt.Errorf("source: decode offers: %w", err)
}

func decodeStrict(body []byte) ([]model.Offer, error) {
	trimmed := strings.TrimSpace(string(body))
	if strings.HasPrefix(trimmed, "[") {
		var offers []model.Offer
		if err := json.Unmarshal([]byte(trimmed), &offers); err != nil {
			return nil, err
		}
		return offers, nil
	}

	var envelope struct {
		Items *[]model.Offer `json:"items"`
	}
	if err := json.Unmarshal([]byte(trimmed), &envelope); err != nil {
		return nil, err
	}
	if envelope.Items == nil {
		return nil, ErrUnexpectedShape
	}
	return *envelope.Items, nil
}

func parseRetryAfter(resp *http.Response) time.Duration {
	value := strings.TrimSpace(resp.Header.Get("Retry-After"))
	if value == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(value); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	if when, err := time.Parse(http.TimeFormat, value); err == nil {
		if wait := time.Until(when); wait > 0 {
			return wait
		}
	}
	return 0
}

func sleepWithContext(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
