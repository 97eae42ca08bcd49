// internal/view/view.go
//
// UI pane visibility state machine, independent of game state.
// Three panes, one active at a time. Toggling the active auxiliary
// pane returns to MAIN; toggling the other switches directly. While
// the client is not yet ready, switch requests are dropped, not
// queued.

package view

import "sync"

// ActivePane selects which pane the UI shows.
type ActivePane string

const (
	PaneMain     ActivePane = "main"
	PaneStats    ActivePane = "stats"
	PaneSettings ActivePane = "settings"
)

// State is the pane selector. Process-local; a fresh State starts at
// MAIN.
type State struct {
	mu     sync.Mutex
	active ActivePane
	ready  bool
}

// NewState returns a State showing MAIN, not yet accepting toggles.
func NewState() *State {
	return &State{active: PaneMain}
}

// SetReady opens the state machine for pane switching once the
// readiness gate has settled.
func (s *State) SetReady(ready bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready = ready
}

// Active returns the currently visible pane.
func (s *State) Active() ActivePane {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Toggle requests pane. Selecting the already-active pane returns to
// MAIN; selecting a different pane switches to it directly. Ignored
// while not ready. Returns the resulting active pane.
func (s *State) Toggle(pane ActivePane) ActivePane {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return s.active
	}
	if s.active == pane {
		s.active = PaneMain
	} else {
		s.active = pane
	}
	return s.active
}
