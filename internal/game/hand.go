package game

import "fmt"

// MinBigBlind is the smallest big blind a game accepts.
const MinBigBlind = 2

// HandStage carries the blind levels across hands and the stages already
// completed in the current hand.
type HandStage struct {
	smallBlind int
	bigBlind   int
	played     []Street
}

// DefineBlinds sets the big blind and derives the small blind as half of it.
func (hs *HandStage) DefineBlinds(bigBlind int) error {
	if bigBlind < MinBigBlind {
		return fmt.Errorf("%w: big blind must be %d or higher, got %d", ErrInvalidAmount, MinBigBlind, bigBlind)
	}
	hs.bigBlind = bigBlind
	hs.smallBlind = bigBlind / 2
	return nil
}

// SetBlinds sets both blinds explicitly. The small blind must be positive
// and below the big blind.
func (hs *HandStage) SetBlinds(smallBlind, bigBlind int) error {
	if bigBlind < MinBigBlind {
		return fmt.Errorf("%w: big blind must be %d or higher, got %d", ErrInvalidAmount, MinBigBlind, bigBlind)
	}
	if smallBlind <= 0 || smallBlind >= bigBlind {
		return fmt.Errorf("%w: small blind %d must be positive and below big blind %d", ErrInvalidAmount, smallBlind, bigBlind)
	}
	hs.smallBlind, hs.bigBlind = smallBlind, bigBlind
	return nil
}

// SmallBlind is the small blind amount.
func (hs *HandStage) SmallBlind() int { return hs.smallBlind }

// BigBlind is the big blind amount.
func (hs *HandStage) BigBlind() int { return hs.bigBlind }

// StagesPlayed returns the streets completed so far this hand.
func (hs *HandStage) StagesPlayed() []Street {
	return append([]Street(nil), hs.played...)
}

func (hs *HandStage) clearStages() { hs.played = hs.played[:0] }

func (hs *HandStage) recordStage(s Street) {
	if len(hs.played) < StreetCount {
		hs.played = append(hs.played, s)
	}
}

// HandStageValidator decides whether another hand can be dealt.
type HandStageValidator struct{}

// Validate starts a hand while more than one player is still in the game.
func (HandStageValidator) Validate(g *Game) HandOutcome {
	if g.players.countPlaying() > 1 {
		return StartHandStage
	}
	return EndGame
}

// Apply carries out the verdict and returns the next phase.
func (HandStageValidator) Apply(g *Game, outcome HandOutcome) (Phase, error) {
	switch outcome {
	case StartHandStage:
		g.pots.Playing().SeedActive(g.players)
		g.handStage.clearStages()
		g.logger.Debug("Starting hand",
			"hand", g.hands+1,
			"dealer", g.positions.dealer,
			"smallBlind", g.positions.smallBlind,
			"bigBlind", g.positions.bigBlind)
		g.publish(NewHandStartedEvent(g))
		return PhaseBettingStageValidator, nil
	case EndGame:
		for _, p := range g.players.players {
			p.StopPlaying()
		}
		g.logger.Debug("Game over", "hands", g.hands)
		g.publish(NewGameOverEvent(g.hands))
		return PhaseGameOver, nil
	}
	return g.phase, invalidOutcome(outcome)
}

func invalidOutcome(outcome fmt.Stringer) error {
	return fmt.Errorf("%w: unhandled outcome %s", ErrInvariantViolation, outcome)
}
