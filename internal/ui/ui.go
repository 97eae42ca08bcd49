// internal/ui/ui.go
//
// Terminal UI for the Worldle client.
// Responsibilities:
//   - Drive the readiness gate, then the game loop, as bubbletea
//     commands; every remote call is a command whose result comes back
//     as a message, so all state transitions happen in Update.
//   - Pane switching (main/stats/settings) via the view state machine;
//     switch requests are dropped while loading.
//   - Country picking (filter + cursor), guess submission, play-again,
//     stats display, distance unit setting and identity replacement.
//
// Key bindings:
//   ctrl+c        quit
//   ctrl+s        toggle stats pane
//   ctrl+e        toggle settings pane
//   esc           back to main / clear input
//   up/down       move country cursor
//   enter         guess highlighted country (or play again / apply
//                 identity change, depending on context)
//   ctrl+u        toggle distance unit (settings pane)

package ui

import (
	"context"
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/lexeme-dev/worldle/internal/api"
	"github.com/lexeme-dev/worldle/internal/catalog"
	"github.com/lexeme-dev/worldle/internal/identity"
	"github.com/lexeme-dev/worldle/internal/ready"
	"github.com/lexeme-dev/worldle/internal/session"
	"github.com/lexeme-dev/worldle/internal/view"
)

// DistanceUnit selects how guess distances are displayed.
type DistanceUnit string

const (
	UnitMiles      DistanceUnit = "miles"
	UnitKilometers DistanceUnit = "kilometers"
)

// Deps bundles the services the UI drives.
type Deps struct {
	Gate       *ready.Gate
	View       *view.State
	Controller *session.Controller
	Catalog    *catalog.Catalog
	Identity   *identity.Manager
}

type model struct {
	ctx  context.Context
	deps Deps

	width int

	// readiness
	loading bool
	loadErr error
	token   string

	// game state
	game         *api.Game
	guessPending bool
	gameErr      string

	// country picker
	filter string
	cursor int

	// stats pane
	stats    *api.UserStats
	statsErr string

	// settings pane
	unit        DistanceUnit
	identityIn  string
	identityMsg string

	styles styles
}

// Messages carrying command results back into Update.

type readyMsg struct{ token string }
type readyErrMsg struct{ err error }
type gameMsg struct{ game *api.Game }
type gameErrMsg struct{ err error }
type guessMsg struct{ game *api.Game }
type guessErrMsg struct{ err error }
type statsMsg struct{ stats *api.UserStats }
type statsErrMsg struct{ err error }
type identityChangedMsg struct{ token string }
type identityErrMsg struct{ err error }

func newModel(ctx context.Context, deps Deps) model {
	return model{
		ctx:     ctx,
		deps:    deps,
		loading: true,
		unit:    UnitMiles,
		styles:  newStyles(),
	}
}

// Init kicks off the readiness gate.
func (m model) Init() tea.Cmd {
	return m.waitReady()
}

// ------------------------------ commands -----------------------------------

func (m model) waitReady() tea.Cmd {
	return func() tea.Msg {
		token, err := m.deps.Gate.Wait(m.ctx)
		if err != nil {
			return readyErrMsg{err: err}
		}
		return readyMsg{token: token}
	}
}

func (m model) ensureGame() tea.Cmd {
	token := m.token
	return func() tea.Msg {
		game, err := m.deps.Controller.EnsureGame(m.ctx, token)
		if err != nil {
			return gameErrMsg{err: err}
		}
		return gameMsg{game: game}
	}
}

func (m model) startNewGame() tea.Cmd {
	token := m.token
	return func() tea.Msg {
		game, err := m.deps.Controller.StartNewGame(m.ctx, token)
		if err != nil {
			return gameErrMsg{err: err}
		}
		return gameMsg{game: game}
	}
}

func (m model) submitGuess(countryID int) tea.Cmd {
	token, game := m.token, m.game
	return func() tea.Msg {
		updated, err := m.deps.Controller.SubmitGuess(m.ctx, token, game, countryID)
		if err != nil {
			return guessErrMsg{err: err}
		}
		return guessMsg{game: updated}
	}
}

func (m model) loadStats() tea.Cmd {
	token := m.token
	return func() tea.Msg {
		stats, err := m.deps.Controller.Stats(m.ctx, token)
		if err != nil {
			return statsErrMsg{err: err}
		}
		return statsMsg{stats: stats}
	}
}

func (m model) changeIdentity(candidate string) tea.Cmd {
	return func() tea.Msg {
		if err := m.deps.Identity.ChangeIdentity(m.ctx, candidate); err != nil {
			return identityErrMsg{err: err}
		}
		return identityChangedMsg{token: m.deps.Identity.Token()}
	}
}

// ------------------------------- update ------------------------------------

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case readyMsg:
		m.loading = false
		m.token = msg.token
		m.deps.View.SetReady(true)
		return m, m.ensureGame()

	case readyErrMsg:
		m.loading = false
		m.loadErr = msg.err
		return m, nil

	case gameMsg:
		m.game = msg.game
		m.gameErr = ""
		m.filter = ""
		m.cursor = 0
		return m, nil

	case gameErrMsg:
		m.gameErr = msg.err.Error()
		return m, nil

	case guessMsg:
		// The server snapshot replaces local state wholesale; the
		// selection is cleared for the next guess.
		m.game = msg.game
		m.guessPending = false
		m.gameErr = ""
		m.filter = ""
		m.cursor = 0
		return m, nil

	case guessErrMsg:
		m.guessPending = false
		m.gameErr = guessErrText(msg.err)
		return m, nil

	case statsMsg:
		m.stats = msg.stats
		m.statsErr = ""
		return m, nil

	case statsErrMsg:
		m.statsErr = msg.err.Error()
		return m, nil

	case identityChangedMsg:
		m.token = msg.token
		m.identityIn = ""
		m.identityMsg = "identity replaced"
		m.game = nil
		m.stats = nil
		return m, m.ensureGame()

	case identityErrMsg:
		m.identityMsg = identityErrText(msg.err)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "ctrl+s":
		if pane := m.deps.View.Toggle(view.PaneStats); pane == view.PaneStats {
			return m, m.loadStats()
		}
		return m, nil

	case "ctrl+e":
		m.deps.View.Toggle(view.PaneSettings)
		return m, nil
	}

	if m.loading || m.loadErr != nil {
		// Everything else is a no-op until readiness settles.
		return m, nil
	}

	switch m.deps.View.Active() {
	case view.PaneSettings:
		return m.handleSettingsKey(msg)
	case view.PaneStats:
		if msg.String() == "esc" {
			m.deps.View.Toggle(view.PaneStats)
		}
		return m, nil
	default:
		return m.handleMainKey(msg)
	}
}

func (m model) handleMainKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.game == nil {
		return m, nil
	}

	if m.game.Status.Terminal() {
		if msg.String() == "enter" {
			return m, m.startNewGame()
		}
		return m, nil
	}

	switch msg.String() {
	case "enter":
		if m.guessPending {
			return m, nil
		}
		options := m.options()
		if len(options) == 0 {
			return m, nil
		}
		choice := options[clamp(m.cursor, 0, len(options)-1)]
		m.guessPending = true
		m.gameErr = ""
		return m, m.submitGuess(choice.ID)

	case "up":
		m.cursor = clamp(m.cursor-1, 0, maxInt(0, len(m.options())-1))
		return m, nil

	case "down":
		m.cursor = clamp(m.cursor+1, 0, maxInt(0, len(m.options())-1))
		return m, nil

	case "esc":
		m.filter = ""
		m.cursor = 0
		return m, nil

	case "backspace":
		if len(m.filter) > 0 {
			m.filter = m.filter[:len(m.filter)-1]
			m.cursor = 0
		}
		return m, nil
	}

	if len(msg.Runes) == 1 {
		m.filter += string(msg.Runes)
		m.cursor = 0
	}
	return m, nil
}

func (m model) handleSettingsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.identityIn = ""
		m.identityMsg = ""
		m.deps.View.Toggle(view.PaneSettings)
		return m, nil

	case "ctrl+u":
		if m.unit == UnitMiles {
			m.unit = UnitKilometers
		} else {
			m.unit = UnitMiles
		}
		return m, nil

	case "enter":
		candidate := strings.TrimSpace(m.identityIn)
		if candidate == "" {
			return m, nil
		}
		m.identityMsg = "validating..."
		return m, m.changeIdentity(candidate)

	case "backspace":
		if len(m.identityIn) > 0 {
			m.identityIn = m.identityIn[:len(m.identityIn)-1]
		}
		return m, nil
	}

	if len(msg.Runes) == 1 {
		m.identityIn += string(msg.Runes)
	}
	return m, nil
}

// options returns the selectable countries: not yet guessed, filtered
// by the typed substring. Recomputed locally on every change.
func (m model) options() []api.Country {
	remaining := m.deps.Catalog.Remaining(m.game)
	if m.filter == "" {
		return remaining
	}
	needle := strings.ToLower(m.filter)
	out := make([]api.Country, 0, len(remaining))
	for _, c := range remaining {
		if strings.Contains(strings.ToLower(c.Name), needle) {
			out = append(out, c)
		}
	}
	return out
}

// guessErrText maps submission failures to user-visible text.
func guessErrText(err error) string {
	switch {
	case errors.Is(err, session.ErrGameOver):
		return "This game is already over."
	case errors.Is(err, session.ErrAlreadyGuessed):
		return "You already guessed that country."
	case errors.Is(err, session.ErrGuessInFlight):
		return "Hold on, your last guess is still being scored."
	default:
		return "Guess failed: " + err.Error()
	}
}

// identityErrText distinguishes the three failure kinds of the
// replacement path: malformed, unknown to the server, or unreachable.
func identityErrText(err error) string {
	switch {
	case errors.Is(err, identity.ErrBadFormat):
		return "That is not a valid identity token."
	case api.IsNotFound(err):
		return "No identity with that token exists."
	default:
		return "Could not validate token: " + err.Error()
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Run starts the TUI and blocks until it exits.
func Run(ctx context.Context, deps Deps) error {
	p := tea.NewProgram(newModel(ctx, deps), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
