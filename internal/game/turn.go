package game

import "fmt"

// TurnValidator decides, for the seat on turn, whether the betting stage
// is over, the seat must be skipped, or the player must act.
type TurnValidator struct{}

// Validate evaluates the checks in priority order; the first match wins.
func (TurnValidator) Validate(g *Game) (TurnOutcome, error) {
	pos := g.positions
	bs := g.bettingStage
	current := g.players.At(pos.turn)
	if current == nil {
		return 0, fmt.Errorf("%w: turn points at seat %d of %d", ErrInvariantViolation, pos.turn, g.players.Len())
	}

	contenders := g.players.countInContention()
	switch {
	case !g.pots.Playing().HasContest(),
		pos.turn == pos.raiser,
		bs.bigBlindCheck,
		bs.checkCount == contenders,
		contenders <= 1,
		g.players.countCanAct() == 0:
		return EndBettingStage, nil
	case !current.IsPlaying() || current.chips == 0:
		return NextPlayer, nil
	case current.canAct():
		return GiveActions, nil
	}
	return 0, fmt.Errorf("%w: no turn outcome for seat %d", ErrInvariantViolation, pos.turn)
}

// Apply carries out the verdict and returns the next phase.
func (TurnValidator) Apply(g *Game, outcome TurnOutcome) (Phase, error) {
	switch outcome {
	case EndBettingStage:
		if err := g.endBettingStage(); err != nil {
			return g.phase, err
		}
		return PhaseBettingStageValidator, nil
	case GiveActions:
		return PhaseActionSelector, nil
	case NextPlayer:
		g.positions.UpdateNextTurn(g.players)
		return PhaseTurnValidator, nil
	}
	return g.phase, invalidOutcome(outcome)
}

// endBettingStage splits side pots while stakes differ, sweeps what is
// left into the playing pot and records the finished stage.
func (g *Game) endBettingStage() error {
	for splits := 0; ; splits++ {
		if splits > g.players.Len() {
			return fmt.Errorf("%w: side pot split did not converge after %d pots", ErrInvariantViolation, splits)
		}
		settled, err := g.pots.SettleHeadsUp(g.players)
		if err != nil {
			return err
		}
		if settled || !g.pots.NeedsSidePot(g.players) {
			break
		}
		pot, err := g.pots.CreateSidePot(g.players)
		if err != nil {
			return err
		}
		g.logger.Debug("Created side pot", "pot", pot.index, "contenders", pot.active)
		g.publish(NewSidePotCreatedEvent(pot))
	}

	if err := g.pots.CollectToPlayingPot(g.players); err != nil {
		return err
	}
	street := g.bettingStage.street
	g.handStage.recordStage(street)
	g.positions.UpdateNextStage()
	g.logger.Debug("Betting stage ended", "street", street, "pot", g.pots.Total())
	g.publish(NewStageEndedEvent(street, g.pots.Total()))
	return nil
}
