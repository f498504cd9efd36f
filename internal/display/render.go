// Package display renders game snapshots for terminals.
package display

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/lox/pokerstate/internal/game"
)

// Renderer turns snapshots into styled text.
type Renderer struct {
	lg     *lipgloss.Renderer
	Styles Styles
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithProfile forces a colour profile instead of detecting one from the
// output. termenv.Ascii strips all styling.
func WithProfile(p termenv.Profile) Option {
	return func(r *Renderer) { r.lg.SetColorProfile(p) }
}

// NewRenderer creates a renderer for w.
func NewRenderer(w io.Writer, opts ...Option) *Renderer {
	r := &Renderer{lg: lipgloss.NewRenderer(w)}
	for _, opt := range opts {
		opt(r)
	}
	r.Styles = NewStyles(r.lg)
	return r
}

// Lipgloss exposes the underlying lipgloss renderer.
func (r *Renderer) Lipgloss() *lipgloss.Renderer { return r.lg }

// Snapshot renders the header, seats, pots and betting line.
func (r *Renderer) Snapshot(s game.Snapshot) string {
	sections := []string{
		r.header(s),
		r.Seats(s),
		r.Pots(s),
		r.betting(s),
	}
	return r.Styles.Box.Render(strings.Join(sections, "\n\n"))
}

func (r *Renderer) header(s game.Snapshot) string {
	return r.Styles.Header.Render(fmt.Sprintf("Hand %d · %s · %s", s.Hands+1, s.BettingStage.Stage, s.Phase))
}

// Seats renders one row per player with the button, blind and turn
// markers.
func (r *Renderer) Seats(s game.Snapshot) string {
	width := 0
	for _, p := range s.Players {
		width = max(width, len(p.ID))
	}

	rows := make([]string, 0, len(s.Players))
	for i, p := range s.Players {
		seat := game.Seat(i)

		cursor := "  "
		style := r.Styles.Player
		switch {
		case !p.IsPlaying:
			style = r.Styles.Folded
		case seat == s.Positions.Turn && s.Phase == game.PhaseActionSelector:
			cursor = "▶ "
			style = r.Styles.Turn
		}

		row := fmt.Sprintf("%s%-*s %6d chips  %5d staged", cursor, width, p.ID, p.Chips, p.PendingChips)
		if !p.IsPlaying {
			row += "  out"
		}
		rows = append(rows, style.Render(row)+" "+r.Styles.Marker.Render(markers(s.Positions, seat)))
	}
	return r.Styles.Label.Render("Seats") + "\n" + strings.Join(rows, "\n")
}

func markers(pos game.PositionSnapshot, seat game.Seat) string {
	var tags []string
	if seat == pos.Dealer {
		tags = append(tags, "D")
	}
	if seat == pos.SmallBlind {
		tags = append(tags, "SB")
	}
	if seat == pos.BigBlind {
		tags = append(tags, "BB")
	}
	return strings.Join(tags, " ")
}

// Pots renders every pot with its contenders.
func (r *Renderer) Pots(s game.Snapshot) string {
	lines := []string{r.Styles.Label.Render("Pots")}
	if len(s.Pots) == 0 {
		return lines[0] + "\n" + r.Styles.Info.Render("  none")
	}
	for _, pot := range s.Pots {
		name := "Main pot"
		if pot.Index > 0 {
			name = fmt.Sprintf("Side pot %d", pot.Index)
		}
		line := fmt.Sprintf("  %s: %d", name, pot.Chips)
		if pot.PendingChips > 0 {
			line += fmt.Sprintf(" (+%d)", pot.PendingChips)
		}
		line += "  [" + strings.Join(pot.ActivePlayerIDs, ", ") + "]"
		lines = append(lines, r.Styles.Pot.Render(line))
	}
	return strings.Join(lines, "\n")
}

func (r *Renderer) betting(s game.Snapshot) string {
	return r.Styles.Info.Render(fmt.Sprintf("Blinds %d/%d · to call %d · min raise %d · total %d",
		s.HandStage.SmallBlind, s.HandStage.BigBlind,
		s.BettingStage.ActualBet, s.BettingStage.MinimumRaise, s.TotalChips))
}

// Actions renders the legal actions as a vertical menu with the cursor
// on selected.
func (r *Renderer) Actions(actions []game.ActionType, selected int) string {
	lines := make([]string, 0, len(actions))
	for i, a := range actions {
		label := a.String()
		if a.NeedsAmount() {
			label += " …"
		}
		if i == selected {
			lines = append(lines, r.Styles.Selected.Render("> "+label))
			continue
		}
		lines = append(lines, r.Styles.Player.Render("  "+label))
	}
	return strings.Join(lines, "\n")
}

// Error renders err as a one-line message.
func (r *Renderer) Error(err error) string {
	return r.Styles.Error.Render("✗ " + err.Error())
}
