package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToggle_Semantics(t *testing.T) {
	s := NewState()
	s.SetReady(true)

	assert.Equal(t, PaneMain, s.Active(), "fresh state shows MAIN")

	// Selecting an auxiliary pane switches to it.
	assert.Equal(t, PaneStats, s.Toggle(PaneStats))

	// Selecting the already-active pane returns to MAIN.
	assert.Equal(t, PaneMain, s.Toggle(PaneStats))

	// Switching between auxiliary panes is direct, no MAIN in between.
	s.Toggle(PaneStats)
	assert.Equal(t, PaneSettings, s.Toggle(PaneSettings))
	assert.Equal(t, PaneStats, s.Toggle(PaneStats))
}

func TestToggle_IgnoredWhileLoading(t *testing.T) {
	s := NewState()

	assert.Equal(t, PaneMain, s.Toggle(PaneStats), "toggles are no-ops before readiness")
	assert.Equal(t, PaneMain, s.Active())

	s.SetReady(true)
	assert.Equal(t, PaneStats, s.Toggle(PaneStats))
}
