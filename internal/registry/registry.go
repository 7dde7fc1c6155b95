// Package registry provides the catalog of mini-game types.
// The catalog is constructed explicitly at startup and handed to the
// coordinator; nothing registers itself through init().
package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/vovakirdan/minigame-arena/internal/core"
)

var (
	// ErrNotFound is returned when a game type id is not registered.
	ErrNotFound = errors.New("registry: unknown game type")

	// ErrPlayerCount is returned when the seated players do not fit the game.
	ErrPlayerCount = errors.New("registry: player count mismatch")

	// ErrNotEnoughGames is returned when more unique games are requested than exist.
	ErrNotEnoughGames = errors.New("registry: not enough game types")
)

// GameConfig is the immutable metadata of one game type.
type GameConfig struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	MinPlayers  int           `json:"minPlayers"`
	MaxPlayers  int           `json:"maxPlayers"`
	Duration    time.Duration `json:"-"`
	Category    string        `json:"category"`
}

// MarshalJSON serializes Duration as durationMs.
func (c GameConfig) MarshalJSON() ([]byte, error) {
	type plain GameConfig
	return json.Marshal(struct {
		plain
		DurationMs int64 `json:"durationMs"`
	}{plain(c), c.Duration.Milliseconds()})
}

// Factory creates a new engine seated with env.Players.
type Factory func(env core.Env) core.Engine

// Entry is one registrable game type.
type Entry struct {
	Config GameConfig
	New    Factory
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithLeadGame forces id to be the first game of every picked sequence.
func WithLeadGame(id string) Option {
	return func(c *Catalog) {
		c.leadGame = id
	}
}

// Catalog holds all registered game types.
type Catalog struct {
	mu       sync.RWMutex
	entries  map[string]Entry
	leadGame string
}

// NewCatalog creates an empty catalog.
func NewCatalog(opts ...Option) *Catalog {
	c := &Catalog{entries: make(map[string]Entry)}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Register adds a game type. Called at startup only.
// Panics if the id is already registered or the entry is malformed.
func (c *Catalog) Register(e Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := e.Config.ID
	if id == "" || e.New == nil {
		panic("registry: entry needs an id and a factory")
	}
	if e.Config.MinPlayers < 1 || e.Config.MaxPlayers < e.Config.MinPlayers {
		panic(fmt.Sprintf("registry: game %q has invalid player bounds [%d,%d]",
			id, e.Config.MinPlayers, e.Config.MaxPlayers))
	}
	if _, exists := c.entries[id]; exists {
		panic(fmt.Sprintf("registry: game %q already registered", id))
	}

	c.entries[id] = e
}

// Get returns the config of a game type.
func (c *Catalog) Get(id string) (GameConfig, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[id]
	return e.Config, ok
}

// Exists checks if a game with the given ID is registered.
func (c *Catalog) Exists(id string) bool {
	_, ok := c.Get(id)
	return ok
}

// List returns the configs of all registered games, sorted by ID.
func (c *Catalog) List() []GameConfig {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make([]GameConfig, 0, len(c.entries))
	for _, e := range c.entries {
		result = append(result, e.Config)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})

	return result
}

// IDs returns all registered ids, sorted.
func (c *Catalog) IDs() []string {
	configs := c.List()
	ids := make([]string, len(configs))
	for i, cfg := range configs {
		ids[i] = cfg.ID
	}
	return ids
}

// Len returns the number of registered game types.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Create instantiates a game seated with env.Players.
// The player count is validated before the factory runs.
func (c *Catalog) Create(id string, env core.Env) (core.Engine, GameConfig, error) {
	c.mu.RLock()
	e, ok := c.entries[id]
	c.mu.RUnlock()

	if !ok {
		return nil, GameConfig{}, fmt.Errorf("%w %q", ErrNotFound, id)
	}

	n := len(env.Players)
	if n < e.Config.MinPlayers || n > e.Config.MaxPlayers {
		return nil, e.Config, fmt.Errorf("%w: %q needs %d-%d players, got %d",
			ErrPlayerCount, id, e.Config.MinPlayers, e.Config.MaxPlayers, n)
	}

	return e.New(env), e.Config, nil
}

// PickRandomUnique returns count distinct game ids in play order.
// When a lead game is configured and registered it always comes first;
// the remaining ids are shuffled.
func (c *Catalog) PickRandomUnique(count int, rng *rand.Rand) ([]string, error) {
	ids := c.IDs()
	if count < 1 || count > len(ids) {
		return nil, fmt.Errorf("%w: requested %d, have %d", ErrNotEnoughGames, count, len(ids))
	}

	rng.Shuffle(len(ids), func(i, j int) {
		ids[i], ids[j] = ids[j], ids[i]
	})

	if c.leadGame != "" {
		for i, id := range ids {
			if id == c.leadGame {
				ids[0], ids[i] = ids[i], ids[0]
				break
			}
		}
	}

	return ids[:count], nil
}

// PickOne returns a random id not listed in exclude, falling back to any id
// when everything is excluded.
func (c *Catalog) PickOne(rng *rand.Rand, exclude ...string) (string, error) {
	ids := c.IDs()
	if len(ids) == 0 {
		return "", fmt.Errorf("%w: catalog is empty", ErrNotEnoughGames)
	}

	skip := make(map[string]bool, len(exclude))
	for _, id := range exclude {
		skip[id] = true
	}

	var candidates []string
	for _, id := range ids {
		if !skip[id] {
			candidates = append(candidates, id)
		}
	}
	if len(candidates) == 0 {
		candidates = ids
	}

	return candidates[rng.Intn(len(candidates))], nil
}
