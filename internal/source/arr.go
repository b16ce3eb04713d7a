package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/idkjsp/Lacale-check/internal/config"
)

// arrClient talks to the v3 API shared by Radarr and Sonarr.
type arrClient struct {
	name    string
	client  *http.Client
	baseURL string
	apiKey  string
	sentTag string
	logger  zerolog.Logger
}

func newArrClient(name, baseURL, apiKey string, cfg config.SourcesConfig, logger zerolog.Logger) arrClient {
	return arrClient{
		name:    name,
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		sentTag: cfg.SentTag,
		logger:  logger.With().Str("component", name).Logger(),
	}
}

func (c *arrClient) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("API returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to parse %s response: %w", path, err)
	}
	return nil
}

// sentTagID resolves the id of the tag marking items already shared.
// It returns 0 when the tag is not configured or does not exist.
func (c *arrClient) sentTagID(ctx context.Context) (int64, error) {
	if c.sentTag == "" {
		return 0, nil
	}

	var tags []struct {
		ID    int64  `json:"id"`
		Label string `json:"label"`
	}
	if err := c.getJSON(ctx, "/api/v3/tag", &tags); err != nil {
		return 0, err
	}
	for _, t := range tags {
		if strings.EqualFold(t.Label, c.sentTag) {
			return t.ID, nil
		}
	}
	c.logger.Debug().Str("tag", c.sentTag).Msg("Sent tag not defined")
	return 0, nil
}

func (c *arrClient) fail(op string, err error) error {
	return &Error{Source: c.name, Op: op, Err: err}
}

func hasTag(tags []int64, id int64) bool {
	if id == 0 {
		return false
	}
	for _, t := range tags {
		if t == id {
			return true
		}
	}
	return false
}

type apiAlternateTitle struct {
	Title        string `json:"title"`
	SeasonNumber *int   `json:"seasonNumber"`
}
