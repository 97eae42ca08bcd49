// internal/stub/server.go
//
// In-memory stub of the Worldle API for development and tests.
// Responsibilities:
//   - Router + middleware (request IDs, panic recovery, timeouts,
//     JSON responses).
//   - The full wire contract: countries, user clients, current game,
//     stats, games, guesses.
//   - One in-progress game per identity: creating a game marks the
//     identity's previous in-progress game abandoned.
//
// State lives in maps guarded by a single RWMutex and is lost on
// restart. Good enough for a dev loop; never for production.

package stub

import (
	"encoding/json"
	"math/rand"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/lexeme-dev/worldle/internal/api"
)

// gameRecord is the stub's stored form of one game.
type gameRecord struct {
	ID              int
	UserClientID    int
	AnswerCountryID int
	Status          api.GameStatus
	Guesses         []api.Guess
	createdSeq      int // creation order, for streak computation
}

// Server is the stub API server.
type Server struct {
	r   *chi.Mux
	rng *rand.Rand

	mu          sync.RWMutex
	userIDs     map[string]int        // token → user client id
	games       map[int]*gameRecord   // keyed by game id
	gamesByUser map[int][]*gameRecord // creation order per user
	userSeq     int
	gameSeq     int
	guessSeq    int
}

// NewServer constructs the stub with a deterministic rng when seed is
// non-zero (useful in tests), and registers all routes.
func NewServer(seed int64) (*Server, error) {
	if err := initCountries(); err != nil {
		return nil, err
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	s := &Server{
		r:           chi.NewRouter(),
		rng:         rand.New(rand.NewSource(seed)),
		userIDs:     make(map[string]int),
		games:       make(map[int]*gameRecord),
		gamesByUser: make(map[int][]*gameRecord),
	}

	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.Recoverer)
	s.r.Use(chimw.Timeout(10 * time.Second))
	s.r.Use(jsonContentType)

	s.r.Get("/countries", s.handleListCountries)
	s.r.Get("/countries/{countryID}", s.handleReadCountry)
	s.r.Post("/user_clients", s.handleCreateUserClient)
	s.r.Get("/user_clients/{token}", s.handleReadUserClient)
	s.r.Get("/user_clients/{token}/current_game", s.handleReadCurrentGame)
	s.r.Get("/user_clients/{token}/stats", s.handleReadUserStats)
	s.r.Post("/games", s.handleCreateGame)
	s.r.Get("/games/{gameID}", s.handleReadGame)
	s.r.Post("/games/{gameID}/guesses", s.handleCreateGuess)

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeDetail(w, http.StatusNotFound, "Not found")
	})
	return s, nil
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error {
	log.Info().Str("addr", addr).Msg("stub api listening")
	return http.ListenAndServe(addr, s.r)
}

// Router exposes the internal router (used by tests and httptest).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// ------------------------------ handlers -----------------------------------

func (s *Server) handleListCountries(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, allCountries())
}

func (s *Server) handleReadCountry(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "countryID"))
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "Invalid country id")
		return
	}
	rec, ok := recordByID[id]
	if !ok {
		writeDetail(w, http.StatusNotFound, "Country not found")
		return
	}
	writeJSON(w, http.StatusOK, wireCountry(rec))
}

func (s *Server) handleCreateUserClient(w http.ResponseWriter, r *http.Request) {
	token := uuid.NewString()

	s.mu.Lock()
	s.userSeq++
	s.userIDs[token] = s.userSeq
	s.mu.Unlock()

	log.Debug().Str("token", token).Msg("created user client")
	writeJSON(w, http.StatusOK, api.UserClient{UUID: token})
}

func (s *Server) handleReadUserClient(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	s.mu.RLock()
	_, ok := s.userIDs[token]
	s.mu.RUnlock()

	if !ok {
		writeDetail(w, http.StatusNotFound, "User client not found")
		return
	}
	writeJSON(w, http.StatusOK, api.UserClient{UUID: token})
}

func (s *Server) handleReadCurrentGame(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	s.mu.RLock()
	defer s.mu.RUnlock()
	userID, ok := s.userIDs[token]
	if !ok {
		writeDetail(w, http.StatusNotFound, "User client not found")
		return
	}
	for _, g := range s.gamesByUser[userID] {
		if g.Status == api.GameInProgress {
			writeJSON(w, http.StatusOK, wireGame(g))
			return
		}
	}
	// No open game: the contract answers a JSON null, not a 404.
	writeJSON(w, http.StatusOK, nil)
}

func (s *Server) handleReadUserStats(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	s.mu.RLock()
	defer s.mu.RUnlock()
	userID, ok := s.userIDs[token]
	if !ok {
		writeDetail(w, http.StatusNotFound, "User client not found")
		return
	}
	writeJSON(w, http.StatusOK, computeStats(s.gamesByUser[userID]))
}

func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	var req api.GameCreate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "Invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	userID, ok := s.userIDs[req.UserClientUUID]
	if !ok {
		writeDetail(w, http.StatusNotFound, "User client not found")
		return
	}

	// At most one in-progress game per identity.
	for _, g := range s.gamesByUser[userID] {
		if g.Status == api.GameInProgress {
			g.Status = api.GameAbandoned
		}
	}

	s.gameSeq++
	g := &gameRecord{
		ID:              s.gameSeq,
		UserClientID:    userID,
		AnswerCountryID: randomAnswer(s.rng),
		Status:          api.GameInProgress,
		Guesses:         []api.Guess{},
		createdSeq:      s.gameSeq,
	}
	s.games[g.ID] = g
	s.gamesByUser[userID] = append(s.gamesByUser[userID], g)

	log.Debug().Int("gameId", g.ID).Int("answer", g.AnswerCountryID).Msg("created game")
	writeJSON(w, http.StatusOK, wireGame(g))
}

func (s *Server) handleReadGame(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "gameID"))
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "Invalid game id")
		return
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.games[id]
	if !ok {
		writeDetail(w, http.StatusNotFound, "Game not found")
		return
	}
	writeJSON(w, http.StatusOK, wireGame(g))
}

func (s *Server) handleCreateGuess(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "gameID"))
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "Invalid game id")
		return
	}
	var req api.GuessCreate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "Invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.games[id]
	if !ok {
		writeDetail(w, http.StatusNotFound, "Game not found")
		return
	}
	if _, ok := recordByID[req.GuessedCountryID]; !ok {
		writeDetail(w, http.StatusNotFound, "Country not found")
		return
	}
	guess, err := s.applyGuess(g, req.GuessedCountryID)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, api.GuessRead{Guess: guess, Game: wireGame(g)})
}

// ------------------------------ helpers ------------------------------------

// wireGame converts a stored game to its wire shape.
func wireGame(g *gameRecord) api.Game {
	guesses := make([]api.Guess, len(g.Guesses))
	copy(guesses, g.Guesses)
	return api.Game{
		ID:              g.ID,
		UserClientID:    g.UserClientID,
		AnswerCountryID: g.AnswerCountryID,
		Status:          g.Status,
		AnswerCountry:   wireCountry(recordByID[g.AnswerCountryID]),
		Guesses:         guesses,
	}
}

// computeStats aggregates a user's game history. Only games with at
// least one guess count; the streak walks finished games from newest
// to oldest and stops at the first non-won one.
func computeStats(games []*gameRecord) api.UserStats {
	stats := api.UserStats{GuessDistribution: make(map[int]int, api.MaxGuesses)}
	for i := 1; i <= api.MaxGuesses; i++ {
		stats.GuessDistribution[i] = 0
	}

	played := make([]*gameRecord, 0, len(games))
	for _, g := range games {
		if len(g.Guesses) == 0 {
			continue
		}
		if g.Status != api.GameInProgress {
			stats.NumPlayed++
		}
		if g.Status == api.GameWon {
			stats.NumWon++
			stats.GuessDistribution[len(g.Guesses)]++
		}
		played = append(played, g)
	}
	if stats.NumPlayed > 0 {
		stats.WinRate = float64(stats.NumWon) / float64(stats.NumPlayed)
	}

	sort.Slice(played, func(i, j int) bool {
		return played[i].createdSeq > played[j].createdSeq
	})
	for _, g := range played {
		if g.Status != api.GameWon {
			break
		}
		stats.CurrentStreak++
	}
	if stats.CurrentStreak > stats.MaxStreak {
		stats.MaxStreak = stats.CurrentStreak
	}
	return stats
}

// writeJSON encodes v with status. A nil v writes a JSON null.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("encode response")
	}
}

// writeDetail writes a FastAPI-style {"detail": ...} error body.
func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
