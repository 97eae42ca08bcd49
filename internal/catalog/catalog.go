// internal/catalog/catalog.go
//
// Read-only country reference data for the session.
// Responsibilities:
//   - Fetch the full catalog once and reuse it; refetch only after a
//     coarse staleness window expires (effectively never mid-session).
//   - Fast lookup by id, full list in server order, and the local
//     "remaining selectable" filter recomputed from a game's guesses.

package catalog

import (
	"context"
	"sync"
	"time"

	"github.com/lexeme-dev/worldle/internal/api"
)

// staleAfter is the catalog refresh interval. Within a session the
// catalog is treated as immutable.
const staleAfter = 24 * time.Hour

// Catalog holds the cached country list.
type Catalog struct {
	client *api.Client

	mu        sync.RWMutex
	countries []api.Country
	byID      map[int]api.Country
	fetchedAt time.Time
}

// New constructs an empty Catalog; Load must succeed before List or
// Lookup return data.
func New(client *api.Client) *Catalog {
	return &Catalog{client: client}
}

// Load fetches the catalog if it was never fetched or has gone stale.
// Safe to call repeatedly; only the first caller in a window pays.
func (c *Catalog) Load(ctx context.Context) error {
	c.mu.RLock()
	fresh := c.countries != nil && time.Since(c.fetchedAt) < staleAfter
	c.mu.RUnlock()
	if fresh {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.countries != nil && time.Since(c.fetchedAt) < staleAfter {
		return nil
	}
	countries, err := c.client.ListCountries(ctx)
	if err != nil {
		return err
	}
	byID := make(map[int]api.Country, len(countries))
	for _, country := range countries {
		byID[country.ID] = country
	}
	c.countries, c.byID, c.fetchedAt = countries, byID, time.Now()
	return nil
}

// List returns the catalog in server order. The slice is shared; do
// not mutate.
func (c *Catalog) List() []api.Country {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.countries
}

// Lookup returns the country with id, if present.
func (c *Catalog) Lookup(id int) (api.Country, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	country, ok := c.byID[id]
	return country, ok
}

// Remaining returns the countries not yet guessed in game, preserving
// catalog order. A nil game returns the full list.
func (c *Catalog) Remaining(game *api.Game) []api.Country {
	all := c.List()
	if game == nil || len(game.Guesses) == 0 {
		return all
	}
	guessed := make(map[int]struct{}, len(game.Guesses))
	for _, g := range game.Guesses {
		guessed[g.GuessedCountryID] = struct{}{}
	}
	out := make([]api.Country, 0, len(all)-len(guessed))
	for _, country := range all {
		if _, ok := guessed[country.ID]; !ok {
			out = append(out, country)
		}
	}
	return out
}
