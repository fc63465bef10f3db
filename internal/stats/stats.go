package stats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const statsPath = "/api/v1/stats"

// Snapshot mirrors the protocol statistics endpoint's payload.
type Snapshot struct {
	TVL              string `json:"tvl"`
	DeployedCapital  string `json:"deployedCapital"`
	ActiveOrders     int    `json:"activeOrders"`
	LastOracleUpdate string `json:"lastOracleUpdate"`
	OracleHealth     string `json:"oracleHealth"`
}

// Options parameterise the stats client.
type Options struct {
	BaseURL string
	Timeout time.Duration
}

// Client polls the protocol statistics endpoint. A failed poll keeps the
// previous snapshot; consumers see stale figures rather than blanks.
type Client struct {
	opts   Options
	logger zerolog.Logger
	client *http.Client

	mu        sync.RWMutex
	current   *Snapshot
	fetchedAt time.Time
	stale     bool
}

// NewClient constructs a stats client.
func NewClient(opts Options, logger zerolog.Logger) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		opts:   opts,
		logger: logger.With().Str("component", "stats").Logger(),
		client: &http.Client{Timeout: timeout},
	}
}

// Current returns the last successful snapshot (nil before the first one),
// its fetch time, and whether a later poll has failed.
func (c *Client) Current() (*Snapshot, time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current, c.fetchedAt, c.stale
}

// Refresh fetches a fresh snapshot. On failure the previous value is
// retained and returned alongside the error.
func (c *Client) Refresh(ctx context.Context) (*Snapshot, error) {
	snap, err := c.fetch(ctx)
	if err != nil {
		c.mu.Lock()
		c.stale = true
		previous := c.current
		c.mu.Unlock()
		c.logger.Warn().Err(err).Msg("stats poll failed; retaining previous snapshot")
		return previous, err
	}

	c.mu.Lock()
	c.current = snap
	c.fetchedAt = time.Now().UTC()
	c.stale = false
	c.mu.Unlock()
	return snap, nil
}

func (c *Client) fetch(ctx context.Context) (*Snapshot, error) {
	if c.opts.BaseURL == "" {
		return nil, errors.New("stats base url not configured")
	}

	endpoint := strings.TrimRight(c.opts.BaseURL, "/") + statsPath
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("stats api error (%d): %s", resp.StatusCode, strings.TrimSpace(string(payload)))
	}

	var snap Snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return nil, fmt.Errorf("decode stats payload: %w", err)
	}
	return &snap, nil
}
