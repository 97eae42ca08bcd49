package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexeme-dev/worldle/internal/api"
	"github.com/lexeme-dev/worldle/internal/cache"
)

// fakeRemote serves the game endpoints with call counters and canned
// responses.
type fakeRemote struct {
	mu          sync.Mutex
	createCalls int
	guessCalls  int
	currentGame *api.Game     // response for GET current_game
	nextCreated *api.Game     // response for POST /games
	nextGuess   *api.GuessRead // response for POST guesses
	guessStatus int            // non-zero forces an error status on guesses
}

func (f *fakeRemote) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/current_game"):
		_ = json.NewEncoder(w).Encode(f.currentGame)

	case r.Method == http.MethodPost && r.URL.Path == "/games":
		f.createCalls++
		_ = json.NewEncoder(w).Encode(f.nextCreated)

	case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/guesses"):
		f.guessCalls++
		if f.guessStatus != 0 {
			http.Error(w, `{"detail":"nope"}`, f.guessStatus)
			return
		}
		_ = json.NewEncoder(w).Encode(f.nextGuess)

	case r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/stats"):
		_ = json.NewEncoder(w).Encode(api.UserStats{NumPlayed: 1, GuessDistribution: map[int]int{}})

	default:
		http.NotFound(w, r)
	}
}

func (f *fakeRemote) counts() (created, guessed int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.createCalls, f.guessCalls
}

func newTestController(t *testing.T, remote *fakeRemote) (*Controller, *cache.Cache) {
	t.Helper()
	ts := httptest.NewServer(remote)
	t.Cleanup(ts.Close)
	snapshots := cache.New()
	return NewController(api.New(ts.URL), snapshots), snapshots
}

func inProgressGame(id int, guesses ...api.Guess) *api.Game {
	return &api.Game{
		ID:      id,
		Status:  api.GameInProgress,
		Guesses: guesses,
	}
}

const token = "11111111-2222-4333-8444-555555555555"

func TestEnsureGame_ConcurrentTriggers_CreateOnce(t *testing.T) {
	remote := &fakeRemote{nextCreated: inProgressGame(42)}
	ctrl, _ := newTestController(t, remote)
	ctx := context.Background()

	// Simulate the readiness trigger firing twice in quick succession.
	var wg sync.WaitGroup
	games := make([]*api.Game, 2)
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			games[i], errs[i] = ctrl.EnsureGame(ctx, token)
		}(i)
	}
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	created, _ := remote.counts()
	assert.Equal(t, 1, created, "double trigger must issue one create-game request")
	assert.Equal(t, games[0].ID, games[1].ID)

	// A third trigger sees the installed game: still one creation.
	again, err := ctrl.EnsureGame(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, 42, again.ID)
	created, _ = remote.counts()
	assert.Equal(t, 1, created)
}

func TestEnsureGame_ExistingGame_NoCreation(t *testing.T) {
	remote := &fakeRemote{currentGame: inProgressGame(7)}
	ctrl, _ := newTestController(t, remote)

	game, err := ctrl.EnsureGame(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, 7, game.ID)
	created, _ := remote.counts()
	assert.Equal(t, 0, created)
}

func TestCurrentGame_CachesAbsence(t *testing.T) {
	remote := &fakeRemote{} // current_game answers null
	ctrl, snapshots := newTestController(t, remote)
	ctx := context.Background()

	game, err := ctrl.CurrentGame(ctx, token)
	require.NoError(t, err)
	assert.Nil(t, game)

	// The absence itself is cached: a present entry holding nil.
	v, ok := snapshots.Get(cache.KindCurrentGame, token)
	require.True(t, ok)
	assert.Nil(t, v.(*api.Game))
}

func TestSubmitGuess_ReplacesSnapshotWholesale(t *testing.T) {
	game := inProgressGame(9,
		api.Guess{ID: 1, GuessedCountryID: 11},
		api.Guess{ID: 2, GuessedCountryID: 12},
	)
	winning := api.Game{
		ID:     9,
		Status: api.GameWon,
		Guesses: []api.Guess{
			{ID: 1, GuessedCountryID: 11},
			{ID: 2, GuessedCountryID: 12},
			{ID: 3, GuessedCountryID: 13, IsCorrect: true},
		},
	}
	remote := &fakeRemote{nextGuess: &api.GuessRead{
		Guess: winning.Guesses[2],
		Game:  winning,
	}}
	ctrl, snapshots := newTestController(t, remote)
	snapshots.Put(cache.KindStats, token, &api.UserStats{NumPlayed: 5})

	updated, err := ctrl.SubmitGuess(context.Background(), token, game, 13)
	require.NoError(t, err)

	assert.Equal(t, api.GameWon, updated.Status)
	require.Len(t, updated.Guesses, 3)

	// Cached value is exactly the server snapshot, not a local merge.
	v, ok := snapshots.Get(cache.KindCurrentGame, token)
	require.True(t, ok)
	assert.Equal(t, &winning, v.(*api.Game))

	// Finishing a game invalidates the cached stats.
	_, ok = snapshots.Get(cache.KindStats, token)
	assert.False(t, ok)
}

func TestSubmitGuess_FailureLeavesCacheUntouched(t *testing.T) {
	game := inProgressGame(9, api.Guess{ID: 1, GuessedCountryID: 11})
	remote := &fakeRemote{guessStatus: http.StatusBadGateway}
	ctrl, snapshots := newTestController(t, remote)
	snapshots.Put(cache.KindCurrentGame, token, game)

	_, err := ctrl.SubmitGuess(context.Background(), token, game, 13)
	require.Error(t, err)

	v, ok := snapshots.Get(cache.KindCurrentGame, token)
	require.True(t, ok)
	assert.Equal(t, game, v.(*api.Game), "failed mutation must not change the snapshot")
}

func TestSubmitGuess_Preconditions(t *testing.T) {
	remote := &fakeRemote{}
	ctrl, _ := newTestController(t, remote)
	ctx := context.Background()

	t.Run("terminal game rejected without network", func(t *testing.T) {
		done := &api.Game{ID: 1, Status: api.GameWon}
		_, err := ctrl.SubmitGuess(ctx, token, done, 5)
		require.ErrorIs(t, err, ErrGameOver)
	})

	t.Run("six guesses rejected without network", func(t *testing.T) {
		full := inProgressGame(2)
		for i := 0; i < api.MaxGuesses; i++ {
			full.Guesses = append(full.Guesses, api.Guess{ID: i, GuessedCountryID: 100 + i})
		}
		_, err := ctrl.SubmitGuess(ctx, token, full, 5)
		require.ErrorIs(t, err, ErrGameOver)
	})

	t.Run("duplicate country rejected without network", func(t *testing.T) {
		game := inProgressGame(3, api.Guess{ID: 1, GuessedCountryID: 5})
		_, err := ctrl.SubmitGuess(ctx, token, game, 5)
		require.ErrorIs(t, err, ErrAlreadyGuessed)
	})

	t.Run("in-flight guess rejected", func(t *testing.T) {
		game := inProgressGame(4)
		ctrl.mu.Lock()
		ctrl.guessInFlight[game.ID] = true
		ctrl.mu.Unlock()
		_, err := ctrl.SubmitGuess(ctx, token, game, 5)
		require.ErrorIs(t, err, ErrGuessInFlight)
	})

	_, guessed := remote.counts()
	assert.Equal(t, 0, guessed, "precondition failures must not reach the network")
}

func TestStartNewGame_SupersedesFinishedGame(t *testing.T) {
	remote := &fakeRemote{nextCreated: inProgressGame(100)}
	ctrl, snapshots := newTestController(t, remote)
	snapshots.Put(cache.KindCurrentGame, token, &api.Game{ID: 99, Status: api.GameLost})

	game, err := ctrl.StartNewGame(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, 100, game.ID)

	v, ok := snapshots.Get(cache.KindCurrentGame, token)
	require.True(t, ok)
	assert.Equal(t, 100, v.(*api.Game).ID)
}

func TestStats_ReadThrough(t *testing.T) {
	remote := &fakeRemote{}
	ctrl, snapshots := newTestController(t, remote)
	ctx := context.Background()

	stats, err := ctrl.Stats(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.NumPlayed)

	// Second read is served from the cache; seed a marker to prove it.
	snapshots.Put(cache.KindStats, token, &api.UserStats{NumPlayed: 77})
	stats, err = ctrl.Stats(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, 77, stats.NumPlayed)
}
