// Package tracker queries the tracker search API with shared backpressure.
package tracker

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

	"github.com/avast/retry-go/v4"
	"github.com/rs/zerolog"

	"github.com/idkjsp/Lacale-check/internal/config"
	"github.com/idkjsp/Lacale-check/internal/media"
)

const searchPath = "/external"

// Client searches the tracker. It is safe for concurrent use; all callers
// share one Gate.
type Client struct {
	baseURL    string
	passkey    string
	cfg        config.SearchConfig
	httpClient *http.Client
	gate       *Gate
	backoff    Backoff
	logger     zerolog.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithGate shares an existing gate.
func WithGate(g *Gate) Option {
	return func(c *Client) {
		c.gate = g
	}
}

// NewClient creates a tracker client from the loaded configuration.
func NewClient(cfg config.Config, logger zerolog.Logger, opts ...Option) *Client {
	log := logger.With().Str("component", "tracker-client").Logger()

	c := &Client{
		baseURL:    strings.TrimSuffix(cfg.LacaleAPIBase, "/"),
		passkey:    cfg.LacalePasskey,
		cfg:        cfg.Search,
		httpClient: &http.Client{Timeout: cfg.Search.Timeout},
		backoff: Backoff{
			Base:   cfg.Search.BaseDelay,
			Max:    cfg.Search.MaxDelay,
			Jitter: cfg.Search.Jitter,
		},
		logger: log,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.gate == nil {
		c.gate = NewGate(cfg.Search.MinInterval, logger)
	}
	return c
}

// Gate returns the backpressure gate used by the client.
func (c *Client) Gate() *Gate {
	return c.gate
}

// Search runs one query. A 429 response pushes the shared cool-down
// forward and the query is retried up to MaxAttempts times before
// ErrRateLimited is returned. Transport errors and any other HTTP error are
// retried NetworkRetries times with a linear delay before ErrNetwork is
// returned.
func (c *Client) Search(ctx context.Context, query string) ([]media.Candidate, error) {
	var (
		attempts    int
		rateLimited int
		netFailures int
		stop        bool
		lastErr     error
	)

	candidates, err := retry.DoWithData(
		func() ([]media.Candidate, error) {
			if err := c.gate.Acquire(ctx); err != nil {
				stop = true
				return nil, err
			}

			attempts++
			found, err := c.fetch(ctx, query)
			if err == nil {
				return found, nil
			}
			lastErr = err

			var se *statusError
			switch {
			case ctx.Err() != nil:
				stop = true
			case errors.As(err, &se) && se.code == http.StatusTooManyRequests:
				delay := c.backoff.Delay(rateLimited, parseRetryAfter(se.retryAfter, c.gate.now()))
				rateLimited++
				until := c.gate.Extend(delay)
				stop = rateLimited >= c.cfg.MaxAttempts
				c.logger.Warn().
					Str("query", query).
					Int("attempt", rateLimited).
					Int("maxAttempts", c.cfg.MaxAttempts).
					Dur("delay", delay).
					Time("cooldownUntil", until).
					Msg("Rate limited, backing off")
			default:
				netFailures++
				stop = netFailures > c.cfg.NetworkRetries
				c.logger.Debug().Err(err).
					Str("query", query).
					Int("failures", netFailures).
					Msg("Search request failed")
			}
			return nil, err
		},
		retry.Context(ctx),
		retry.Attempts(uint(c.cfg.MaxAttempts+c.cfg.NetworkRetries+1)),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(error) bool { return !stop }),
		retry.DelayType(func(_ uint, err error, _ *retry.Config) time.Duration {
			if _, ok := isTooManyRequests(err); ok {
				return 0 // the gate holds the cool-down
			}
			return c.cfg.NetworkDelay * time.Duration(netFailures)
		}),
	)
	if err == nil {
		return candidates, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if _, ok := isTooManyRequests(lastErr); ok {
		return nil, &Error{Op: "search", Query: query, Attempts: attempts, Err: ErrRateLimited}
	}
	if lastErr == nil {
		lastErr = err
	}
	return nil, &Error{Op: "search", Query: query, Attempts: attempts, Err: fmt.Errorf("%w: %w", ErrNetwork, lastErr)}
}

func (c *Client) fetch(ctx context.Context, query string) ([]media.Candidate, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("passkey", c.passkey)
	reqURL := c.baseURL + searchPath + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "lacale-check/"+config.Version)

	c.logger.Debug().Str("query", query).Msg("Searching tracker")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// the URL carries the passkey
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &statusError{
			code:       resp.StatusCode,
			retryAfter: resp.Header.Get("Retry-After"),
			body:       strings.TrimSpace(string(bodyBytes)),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return parseResults(body)
}

type apiRelease struct {
	Name        string     `json:"name"`
	Title       string     `json:"title"`
	ReleaseName string     `json:"release_name"`
	Seeders     flexNumber `json:"seeders"`
	Seeds       flexNumber `json:"seeds"`
}

// flexNumber accepts 12, 12.5 or "12".
type flexNumber float64

func (f *flexNumber) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil //nolint:nilerr // popularity is optional
	}
	*f = flexNumber(v)
	return nil
}

// parseResults accepts a JSON array or an object with a "results" array.
// Entries are release names or objects naming the release.
func parseResults(body []byte) ([]media.Candidate, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return []media.Candidate{}, nil
	}

	var entries []json.RawMessage
	if body[0] == '{' {
		var wrapped struct {
			Results []json.RawMessage `json:"results"`
		}
		if err := json.Unmarshal(body, &wrapped); err != nil {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}
		entries = wrapped.Results
	} else if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	candidates := make([]media.Candidate, 0, len(entries))
	for _, raw := range entries {
		var name string
		if err := json.Unmarshal(raw, &name); err == nil {
			if name = strings.TrimSpace(name); name != "" {
				candidates = append(candidates, media.Candidate{Name: name})
			}
			continue
		}

		var rel apiRelease
		if err := json.Unmarshal(raw, &rel); err != nil {
			continue
		}
		name = firstNonEmpty(rel.Name, rel.Title, rel.ReleaseName)
		if name == "" {
			continue
		}
		candidates = append(candidates, media.Candidate{
			Name:       name,
			Popularity: float64(max(rel.Seeders, rel.Seeds)),
		})
	}
	return candidates, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
