package catalog

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"sjsage522/refundscraper/internal/extractor"
)

// MemoryCatalog keeps games in memory. It backs the CLI when no database is
// configured.
type MemoryCatalog struct {
	mu    sync.RWMutex
	games map[string]Game
	now   func() time.Time
}

// NewMemoryCatalog creates a catalog holding the given games
func NewMemoryCatalog(games ...Game) *MemoryCatalog {
	c := &MemoryCatalog{
		games: make(map[string]Game, len(games)),
		now:   time.Now,
	}
	for _, g := range games {
		c.games[g.ID] = g
	}
	return c
}

// AllKnownGames returns the games ordered by ID
func (c *MemoryCatalog) AllKnownGames(_ context.Context) ([]Game, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	games := make([]Game, 0, len(c.games))
	for _, g := range c.games {
		games = append(games, g)
	}
	sort.Slice(games, func(i, j int) bool { return games[i].ID < games[j].ID })
	return games, nil
}

func (c *MemoryCatalog) FindByPhoneNumber(_ context.Context, number string) ([]Game, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var found []Game
	for _, g := range c.games {
		if g.PhoneNumber == number {
			found = append(found, g)
		}
	}
	sort.Slice(found, func(i, j int) bool { return found[i].ID < found[j].ID })
	return found, nil
}

func (c *MemoryCatalog) CreatePlaceholderGame(_ context.Context, number string) (Game, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, g := range c.games {
		if g.Placeholder && g.PhoneNumber == number {
			return g, nil
		}
	}

	g := Game{
		ID:          uuid.NewString(),
		PhoneNumber: number,
		Title:       placeholderTitle(number),
		Cost:        decimal.Zero,
		Placeholder: true,
		UpdatedAt:   c.now(),
	}
	c.games[g.ID] = g
	return g, nil
}

// SaveGame follows the same merge order as PostgresCatalog: the game holding
// the URL first, then a placeholder with the phone number.
func (c *MemoryCatalog) SaveGame(_ context.Context, record extractor.GameRecord) (Game, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	g := fromRecord(record)
	g.UpdatedAt = c.now()

	if id, ok := c.mergeTarget(g); ok {
		g.ID = id
	}

	c.games[g.ID] = g
	return g, nil
}

func (c *MemoryCatalog) mergeTarget(g Game) (string, bool) {
	var placeholder string
	for id, existing := range c.games {
		if g.SourceURL != "" && existing.SourceURL == g.SourceURL {
			return id, true
		}
		if g.PhoneNumber != "" && existing.Placeholder && existing.PhoneNumber == g.PhoneNumber {
			placeholder = id
		}
	}
	return placeholder, placeholder != ""
}
