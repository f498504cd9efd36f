package game

import "fmt"

// ActionExecutor applies a single legal action for the seat on turn.
// Chips are staged before any betting state changes, so a rejected
// action leaves the game untouched.
type ActionExecutor struct{}

// Execute applies action for the current seat and passes the turn on.
func (ActionExecutor) Execute(g *Game, action ActionType, amount int) error {
	player := g.players.At(g.positions.turn)
	if player == nil {
		return fmt.Errorf("%w: no player on turn", ErrInvariantViolation)
	}
	pos := g.positions
	bs := g.bettingStage
	hs := g.handStage

	switch action {
	case PutSmallBlind:
		if err := player.Prepare(min(hs.smallBlind, player.chips)); err != nil {
			return err
		}

	case PutBigBlind:
		if err := player.Prepare(min(hs.bigBlind, player.chips)); err != nil {
			return err
		}
		bs.actualBet = hs.bigBlind
		bs.minimumRaise = hs.bigBlind * 2

	case CheckBigBlind:
		bs.bigBlindCheck = true

	case Check:
		bs.checkCount++

	case Bet:
		if amount < hs.bigBlind {
			return fmt.Errorf("%w: bet %d is below the big blind %d", ErrInvalidAmount, amount, hs.bigBlind)
		}
		if amount <= player.pending {
			return fmt.Errorf("%w: bet %d does not exceed the %d already staged", ErrInvalidAmount, amount, player.pending)
		}
		if err := player.Prepare(amount - player.pending); err != nil {
			return err
		}
		pos.raiser = pos.turn
		bs.actualBet = amount
		bs.minimumRaise = amount * 2
		bs.checkCount = 0

	case Call:
		if err := player.Prepare(bs.actualBet - player.pending); err != nil {
			return err
		}

	case Raise:
		if amount < bs.minimumRaise {
			return fmt.Errorf("%w: raise to %d is below the minimum %d", ErrInvalidAmount, amount, bs.minimumRaise)
		}
		increment := amount - bs.actualBet
		if err := player.Prepare(amount - player.pending); err != nil {
			return err
		}
		pos.raiser = pos.turn
		bs.actualBet = amount
		bs.minimumRaise = amount + increment

	case MustAllIn:
		if err := player.PrepareAll(); err != nil {
			return err
		}

	case RaiseAllIn:
		total := player.Total()
		increment := total - bs.actualBet
		if err := player.PrepareAll(); err != nil {
			return err
		}
		pos.raiser = pos.turn
		bs.actualBet = total
		bs.minimumRaise = total + increment

	case Fold:
		player.StopPlaying()
		g.pots.removeFromAll(player.id)

	default:
		return fmt.Errorf("%w: %s cannot be executed", ErrIllegalAction, action)
	}

	pos.UpdateNextTurn(g.players)
	return nil
}
