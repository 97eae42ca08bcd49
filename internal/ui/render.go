// internal/ui/render.go
//
// View rendering for the TUI. Pure presentation: everything here reads
// model state and produces strings, no transitions.

package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/lexeme-dev/worldle/internal/api"
	"github.com/lexeme-dev/worldle/internal/view"
)

// maxVisibleOptions bounds the country picker height.
const maxVisibleOptions = 8

type styles struct {
	title    lipgloss.Style
	subtle   lipgloss.Style
	correct  lipgloss.Style
	errText  lipgloss.Style
	selected lipgloss.Style
	box      lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")),
		subtle:   lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		correct:  lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true),
		errText:  lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		selected: lipgloss.NewStyle().Reverse(true),
		box:      lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1),
	}
}

// compassArrows maps 8-wind directions to glyphs.
var compassArrows = map[api.CompassDirection]string{
	api.North:     "↑",
	api.Northeast: "↗",
	api.East:      "→",
	api.Southeast: "↘",
	api.South:     "↓",
	api.Southwest: "↙",
	api.West:      "←",
	api.Northwest: "↖",
}

func (m model) View() string {
	var b strings.Builder
	b.WriteString(m.styles.title.Render("Worldle"))
	b.WriteString("\n")
	b.WriteString(m.styles.subtle.Render("ctrl+s stats · ctrl+e settings · ctrl+c quit"))
	b.WriteString("\n\n")

	switch {
	case m.loading:
		b.WriteString("Loading...\n")
	case m.loadErr != nil:
		b.WriteString(m.styles.errText.Render("Startup failed: " + m.loadErr.Error()))
		b.WriteString("\n")
	default:
		switch m.deps.View.Active() {
		case view.PaneStats:
			b.WriteString(m.viewStats())
		case view.PaneSettings:
			b.WriteString(m.viewSettings())
		default:
			b.WriteString(m.viewGame())
		}
	}
	return b.String()
}

func (m model) viewGame() string {
	if m.game == nil {
		return "Preparing your game...\n"
	}
	var b strings.Builder

	b.WriteString(m.styles.box.Render(m.outlineInfo()))
	b.WriteString("\n\n")
	b.WriteString(m.viewGuesses())
	b.WriteString("\n")

	if m.game.Status.Terminal() {
		switch m.game.Status {
		case api.GameWon:
			n := len(m.game.Guesses)
			word := "guesses"
			if n == 1 {
				word = "guess"
			}
			b.WriteString(m.styles.correct.Render(fmt.Sprintf("You won in %d %s!", n, word)))
		default:
			b.WriteString(fmt.Sprintf("The country was %s.", m.game.AnswerCountry.Name))
		}
		b.WriteString("\n")
		b.WriteString(m.styles.subtle.Render("press enter to play again"))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(m.viewPicker())
	if m.gameErr != "" {
		b.WriteString(m.styles.errText.Render(m.gameErr))
		b.WriteString("\n")
	}
	return b.String()
}

// outlineInfo stands in for the country outline graphic, which the
// terminal cannot render. The SVG reference is still surfaced.
func (m model) outlineInfo() string {
	if m.game.AnswerCountry.SvgURL != nil {
		return "Mystery country outline: " + *m.game.AnswerCountry.SvgURL
	}
	return "Mystery country: no outline available, guess away"
}

func (m model) viewGuesses() string {
	var b strings.Builder
	for _, g := range m.game.Guesses {
		if g.IsCorrect {
			b.WriteString(fmt.Sprintf("  %-24s %s\n", g.GuessedCountry.Name, m.styles.correct.Render("✓")))
			continue
		}
		b.WriteString(fmt.Sprintf("  %-24s %8s %s %3.0f%%\n",
			g.GuessedCountry.Name,
			m.distanceText(g),
			compassArrows[g.CompassDirectionToAnswer],
			g.ProximityProp*100))
	}
	for i := len(m.game.Guesses); i < api.MaxGuesses && m.game.Status == api.GameInProgress; i++ {
		b.WriteString(m.styles.subtle.Render("  ·"))
		b.WriteString("\n")
	}
	b.WriteString(m.styles.subtle.Render(fmt.Sprintf("  GUESS %d / %d", len(m.game.Guesses), api.MaxGuesses)))
	b.WriteString("\n")
	return b.String()
}

func (m model) distanceText(g api.Guess) string {
	if m.unit == UnitKilometers {
		return fmt.Sprintf("%.0fkm", g.DistanceToAnswerKm)
	}
	return fmt.Sprintf("%.0fmi", g.DistanceToAnswerMiles)
}

func (m model) viewPicker() string {
	var b strings.Builder
	prompt := m.filter
	if prompt == "" {
		prompt = m.styles.subtle.Render("type to filter countries...")
	}
	b.WriteString("Guess: " + prompt)
	if m.guessPending {
		b.WriteString(m.styles.subtle.Render("  (scoring...)"))
	}
	b.WriteString("\n")

	options := m.options()
	if len(options) == 0 {
		b.WriteString(m.styles.subtle.Render("  no matching countries"))
		b.WriteString("\n")
		return b.String()
	}

	cursor := clamp(m.cursor, 0, len(options)-1)
	start := clamp(cursor-maxVisibleOptions/2, 0, maxInt(0, len(options)-maxVisibleOptions))
	end := start + maxVisibleOptions
	if end > len(options) {
		end = len(options)
	}
	for i := start; i < end; i++ {
		line := "  " + options[i].Name
		if i == cursor {
			line = m.styles.selected.Render("> " + options[i].Name)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

func (m model) viewStats() string {
	if m.statsErr != "" {
		return m.styles.errText.Render("Could not load stats: "+m.statsErr) + "\n"
	}
	if m.stats == nil {
		return "Loading stats...\n"
	}
	var b strings.Builder
	b.WriteString(m.styles.title.Render("Statistics"))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("  Played         %d\n", m.stats.NumPlayed))
	b.WriteString(fmt.Sprintf("  Win rate       %.0f%%\n", m.stats.WinRate*100))
	b.WriteString(fmt.Sprintf("  Current streak %d\n", m.stats.CurrentStreak))
	b.WriteString(fmt.Sprintf("  Max streak     %d\n", m.stats.MaxStreak))
	b.WriteString("\n")
	b.WriteString(m.styles.title.Render("Guess Distribution"))
	b.WriteString("\n\n")
	for i := 1; i <= api.MaxGuesses; i++ {
		count := m.stats.GuessDistribution[i]
		bar := strings.Repeat("█", count)
		if bar == "" {
			bar = m.styles.subtle.Render("·")
		}
		b.WriteString(fmt.Sprintf("  %d %s %d\n", i, bar, count))
	}
	b.WriteString("\n")
	b.WriteString(m.styles.subtle.Render("esc to go back"))
	b.WriteString("\n")
	return b.String()
}

func (m model) viewSettings() string {
	var b strings.Builder
	b.WriteString(m.styles.title.Render("Settings"))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("  Distance unit: %s  ", m.unit))
	b.WriteString(m.styles.subtle.Render("(ctrl+u to switch)"))
	b.WriteString("\n\n")
	b.WriteString("  Identity token: " + m.styles.subtle.Render(m.token))
	b.WriteString("\n")
	entry := m.identityIn
	if entry == "" {
		entry = m.styles.subtle.Render("paste a token and press enter to migrate")
	}
	b.WriteString("  Replace with:   " + entry)
	b.WriteString("\n")
	if m.identityMsg != "" {
		b.WriteString("  " + m.identityMsg)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.styles.subtle.Render("esc to go back"))
	b.WriteString("\n")
	return b.String()
}
