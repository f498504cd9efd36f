package tui

import (
	"fmt"
	"strings"

	"github.com/lox/pokerstate/internal/game"
)

// FormatEvent renders an engine event as one log line. Unknown events
// yield an empty string.
func FormatEvent(event game.GameEvent) string {
	switch e := event.(type) {
	case game.HandStartedEvent:
		dealer := "?"
		if int(e.Dealer) >= 0 && int(e.Dealer) < len(e.Players) {
			dealer = e.Players[e.Dealer]
		}
		return fmt.Sprintf("*** HAND %d *** button %s, blinds %d/%d", e.Hand, dealer, e.Blinds[0], e.Blinds[1])
	case game.ActionAppliedEvent:
		if e.Staged > 0 {
			return fmt.Sprintf("%s: %s %d", e.PlayerID, e.Action, e.Staged)
		}
		return fmt.Sprintf("%s: %s", e.PlayerID, e.Action)
	case game.StageEndedEvent:
		return fmt.Sprintf("--- %s done, pot %d ---", e.Street, e.PotTotal)
	case game.SidePotCreatedEvent:
		return fmt.Sprintf("Side pot %d opened for %s", e.Pot, strings.Join(e.Active, ", "))
	case game.PotAwardedEvent:
		return fmt.Sprintf("Pot %d (%d) goes to %s", e.Pot, e.Amount, strings.Join(e.Winners, ", "))
	case game.GameOverEvent:
		return fmt.Sprintf("Game over after %d hands", e.Hands)
	}
	return ""
}
