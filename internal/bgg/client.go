package bgg

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"gamenight/internal/metrics"
	"gamenight/pkg/models"
)

// DefaultBaseURL is the public BGG XML API v2 root.
const DefaultBaseURL = "https://boardgamegeek.com/xmlapi2"

// maxBodyBytes bounds how much of a response body is read.
const maxBodyBytes = 32 << 20

// Config controls how the client reaches the BGG API.
type Config struct {
	BaseURL    string
	Token      string        // optional application token sent as a bearer header
	RatePerSec float64       // 0 disables the limiter
	Timeout    time.Duration // used when HTTPClient is nil
	HTTPClient *http.Client
	Logger     *zap.Logger
	Metrics    *metrics.Metrics
}

// Client fetches collections and game metadata from the BGG XML API.
type Client struct {
	baseURL   string
	token     string
	http      *http.Client
	limiter   *rate.Limiter
	extractor *Extractor
	log       *zap.Logger
	metrics   *metrics.Metrics
}

// NewClient builds a Client from cfg, filling defaults.
func NewClient(cfg Config) *Client {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}
	var limiter *rate.Limiter
	if cfg.RatePerSec > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSec), 1)
	}
	return &Client{
		baseURL:   base,
		token:     cfg.Token,
		http:      hc,
		limiter:   limiter,
		extractor: NewExtractor(log),
		log:       log,
		metrics:   cfg.Metrics,
	}
}

// FetchCollection returns the owned, non-expansion board games of user.
func (c *Client) FetchCollection(ctx context.Context, user string) (*models.CollectionInfo, error) {
	q := url.Values{}
	q.Set("username", user)
	q.Set("own", "1")
	q.Set("subtype", "boardgame")
	q.Set("excludesubtype", "boardgameexpansion")

	items, err := c.fetchItems(ctx, "collection", q)
	if err != nil {
		return nil, err
	}
	info := ParseCollection(items, user)
	if info == nil {
		return nil, ErrEmptyResult
	}
	return info, nil
}

// FetchGames requests metadata for all ids in one call and extracts every
// returned item.
func (c *Client) FetchGames(ctx context.Context, ids []string) ([]models.Game, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	q := url.Values{}
	q.Set("id", strings.Join(ids, ","))

	items, err := c.fetchItems(ctx, "thing", q)
	if err != nil {
		return nil, err
	}
	return c.extractor.Games(items), nil
}

func (c *Client) fetchItems(ctx context.Context, endpoint string, q url.Values) ([]*Node, error) {
	body, err := c.get(ctx, endpoint, q)
	if err != nil {
		c.metrics.BGGRequest(endpoint, "error")
		return nil, err
	}
	items, err := DecodeItems(body)
	switch {
	case errors.Is(err, ErrEmptyResult):
		c.metrics.BGGRequest(endpoint, "empty")
		return nil, err
	case err != nil:
		c.metrics.BGGRequest(endpoint, "error")
		return nil, err
	}
	c.metrics.BGGRequest(endpoint, "ok")
	return items, nil
}

func (c *Client) get(ctx context.Context, endpoint string, q url.Values) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("bgg: %s: rate limit wait: %w", endpoint, err)
		}
	}

	u := c.baseURL + "/" + endpoint + "?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("bgg: %s: build request: %w", endpoint, err)
	}
	req.Header.Set("Accept", "application/xml")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("bgg: %s: request: %w", endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("bgg: %s: read body: %w", endpoint, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet := strings.TrimSpace(string(body))
		if len(snippet) > 256 {
			snippet = snippet[:256]
		}
		return nil, &DecodeError{Status: resp.StatusCode, Err: errors.New(snippet)}
	}

	c.log.Debug("bgg response",
		zap.String("endpoint", endpoint),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(body)),
	)
	return body, nil
}
