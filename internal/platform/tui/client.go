package tui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/vovakirdan/minigame-arena/internal/api"
	"github.com/vovakirdan/minigame-arena/internal/storage"
)

// ErrHistoryDisabled is returned when the server runs without a database.
var ErrHistoryDisabled = errors.New("tui: match history is disabled on the server")

// Snapshot is one poll of a running arena server.
type Snapshot struct {
	Health    api.HealthResponse
	Recent    []storage.Tournament
	NoHistory bool // Server has no database
	FetchedAt time.Time
}

// Fetcher loads a Snapshot. *Client implements it.
type Fetcher interface {
	Fetch(ctx context.Context, recent int) (Snapshot, error)
}

// Client reads the arena HTTP API.
type Client struct {
	base string
	http *http.Client
}

// NewClient creates a client for the server at baseURL (e.g. "http://localhost:3000").
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{Timeout: timeout},
	}
}

// Health fetches GET /health.
func (c *Client) Health(ctx context.Context) (api.HealthResponse, error) {
	var out api.HealthResponse
	err := c.get(ctx, "/health", &out)
	return out, err
}

// Recent fetches the latest stored tournaments.
func (c *Client) Recent(ctx context.Context, limit int) ([]storage.Tournament, error) {
	q := url.Values{"limit": {strconv.Itoa(limit)}}
	var out []storage.Tournament
	err := c.get(ctx, "/api/matches/recent?"+q.Encode(), &out)
	var se *statusError
	if errors.As(err, &se) && se.code == http.StatusServiceUnavailable {
		return nil, ErrHistoryDisabled
	}
	return out, err
}

type statusError struct {
	path   string
	code   int
	status string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("tui: %s returned %s", e.path, e.status)
}

// Fetch polls health and recent tournaments. A server without history is
// not an error.
func (c *Client) Fetch(ctx context.Context, recent int) (Snapshot, error) {
	health, err := c.Health(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	snap := Snapshot{Health: health, FetchedAt: time.Now()}

	matches, err := c.Recent(ctx, recent)
	switch {
	case errors.Is(err, ErrHistoryDisabled):
		snap.NoHistory = true
	case err != nil:
		return Snapshot{}, err
	default:
		snap.Recent = matches
	}
	return snap, nil
}

func (c *Client) get(ctx context.Context, path string, into any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return fmt.Errorf("tui: bad request for %s: %w", path, err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("tui: %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &statusError{path: path, code: resp.StatusCode, status: resp.Status}
	}

	if err := json.NewDecoder(resp.Body).Decode(into); err != nil {
		return fmt.Errorf("tui: cannot decode %s: %w", path, err)
	}
	return nil
}
