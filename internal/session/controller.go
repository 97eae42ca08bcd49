// internal/session/controller.go
//
// Game session lifecycle for one resolved identity.
// Responsibilities:
//   - Read-through caching of the identity's current game and stats.
//   - Auto-creation of a game when none exists, guarded so re-entrant
//     triggers never issue a second create while one is in flight or
//     has just been installed.
//   - Guess submission with client-side preconditions; on success the
//     server's returned snapshot replaces the cached game wholesale
//     (never a local merge), on failure the cache is left untouched
//     and the error is surfaced. No automatic retries.
//   - The explicit "play again" path, which supersedes a finished game
//     unconditionally.

package session

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/lexeme-dev/worldle/internal/api"
	"github.com/lexeme-dev/worldle/internal/cache"
)

var (
	// ErrGameOver rejects guesses against a game that is no longer in
	// progress. Checked locally, before any network call.
	ErrGameOver = errors.New("session: game is not in progress")

	// ErrAlreadyGuessed rejects a country already guessed in this game.
	ErrAlreadyGuessed = errors.New("session: country already guessed")

	// ErrGuessInFlight rejects a guess while a previous submission for
	// the same game has not resolved yet.
	ErrGuessInFlight = errors.New("session: guess already in flight")
)

// Controller coordinates game state between the UI and the server.
type Controller struct {
	client *api.Client
	cache  *cache.Cache

	createSF singleflight.Group // keyed by identity token

	mu            sync.Mutex
	guessInFlight map[int]bool // keyed by game id
}

// NewController wires a Controller around the shared snapshot cache.
func NewController(client *api.Client, c *cache.Cache) *Controller {
	return &Controller{
		client:        client,
		cache:         c,
		guessInFlight: make(map[int]bool),
	}
}

// CurrentGame returns the identity's open game, or nil if it has none.
// The result is cached per token; a cached "no game" is returned
// without refetching.
func (c *Controller) CurrentGame(ctx context.Context, token string) (*api.Game, error) {
	if v, ok := c.cache.Get(cache.KindCurrentGame, token); ok {
		game, _ := v.(*api.Game)
		return game, nil
	}
	game, err := c.client.ReadCurrentGame(ctx, token)
	if err != nil {
		return nil, err
	}
	c.cache.Put(cache.KindCurrentGame, token, game)
	return game, nil
}

// EnsureGame returns the current game, creating one if the identity
// has none. Concurrent triggers (the readiness transition may fire
// more than once) share a single creation request: the guard is
// "creation in flight or current game already present", not a one-shot
// flag.
func (c *Controller) EnsureGame(ctx context.Context, token string) (*api.Game, error) {
	game, err := c.CurrentGame(ctx, token)
	if err != nil {
		return nil, err
	}
	if game != nil {
		return game, nil
	}

	v, err, _ := c.createSF.Do(token, func() (any, error) {
		// A concurrent trigger may have installed a game between our
		// read and this critical section.
		if cached, ok := c.cache.Get(cache.KindCurrentGame, token); ok {
			if g, _ := cached.(*api.Game); g != nil {
				return g, nil
			}
		}
		created, err := c.client.CreateGame(ctx, token)
		if err != nil {
			return nil, err
		}
		c.cache.Put(cache.KindCurrentGame, token, created)
		log.Info().Int("gameId", created.ID).Msg("auto-created game")
		return created, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*api.Game), nil
}

// StartNewGame unconditionally creates a game and installs it as
// current, superseding a finished one. This is the user-initiated
// "play again" path; EnsureGame only acts when no game exists at all.
func (c *Controller) StartNewGame(ctx context.Context, token string) (*api.Game, error) {
	created, err := c.client.CreateGame(ctx, token)
	if err != nil {
		return nil, err
	}
	c.cache.Put(cache.KindCurrentGame, token, created)
	log.Info().Int("gameId", created.ID).Msg("started new game")
	return created, nil
}

// SubmitGuess scores countryID against game. Preconditions, checked
// before any network call: the game is in progress, the country was
// not guessed before, and no other guess for this game is in flight.
// Returns the updated authoritative snapshot.
func (c *Controller) SubmitGuess(ctx context.Context, token string, game *api.Game, countryID int) (*api.Game, error) {
	if game.Status.Terminal() || len(game.Guesses) >= api.MaxGuesses {
		return nil, ErrGameOver
	}
	if game.HasGuessed(countryID) {
		return nil, ErrAlreadyGuessed
	}

	c.mu.Lock()
	if c.guessInFlight[game.ID] {
		c.mu.Unlock()
		return nil, ErrGuessInFlight
	}
	c.guessInFlight[game.ID] = true
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		delete(c.guessInFlight, game.ID)
		c.mu.Unlock()
	}()

	res, err := c.client.CreateGuess(ctx, game.ID, countryID)
	if err != nil {
		return nil, err
	}

	snapshot := res.Game
	c.cache.Put(cache.KindCurrentGame, token, &snapshot)
	if snapshot.Status.Terminal() {
		// The finished game changes the aggregate history.
		c.cache.Invalidate(cache.KindStats, token)
	}
	return &snapshot, nil
}

// Stats returns the identity's aggregate history, read-through cached.
func (c *Controller) Stats(ctx context.Context, token string) (*api.UserStats, error) {
	if v, ok := c.cache.Get(cache.KindStats, token); ok {
		if stats, ok := v.(*api.UserStats); ok {
			return stats, nil
		}
	}
	stats, err := c.client.ReadUserStats(ctx, token)
	if err != nil {
		return nil, err
	}
	c.cache.Put(cache.KindStats, token, stats)
	return stats, nil
}
