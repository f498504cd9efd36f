package game

import "github.com/lox/pokerstate/internal/randutil"

// Seat indexes the roster. It is a distinct type so seat numbers cannot be
// confused with pot indices or chip amounts.
type Seat int

// NoSeat marks an unassigned position.
const NoSeat Seat = -1

// PositionManager tracks the dealer, blinds, turn and last raiser, plus the
// winners recorded for the hand just played.
type PositionManager struct {
	dealer     Seat
	smallBlind Seat
	bigBlind   Seat
	turn       Seat
	raiser     Seat
	winners    []Seat
}

// NewPositionManager returns a manager with every position unassigned.
func NewPositionManager() *PositionManager {
	return &PositionManager{
		dealer:     NoSeat,
		smallBlind: NoSeat,
		bigBlind:   NoSeat,
		turn:       NoSeat,
		raiser:     NoSeat,
	}
}

// Dealer is the seat holding the button.
func (pm *PositionManager) Dealer() Seat { return pm.dealer }

// SmallBlind is the seat posting the small blind this hand.
func (pm *PositionManager) SmallBlind() Seat { return pm.smallBlind }

// BigBlind is the seat posting the big blind this hand.
func (pm *PositionManager) BigBlind() Seat { return pm.bigBlind }

// Turn is the seat being asked to act.
func (pm *PositionManager) Turn() Seat { return pm.turn }

// Raiser is the last seat to bet or raise, or NoSeat.
func (pm *PositionManager) Raiser() Seat { return pm.raiser }

// Winners returns the seats recorded by the last DefineWinners call.
func (pm *PositionManager) Winners() []Seat {
	return append([]Seat(nil), pm.winners...)
}

// next returns the seat after s, wrapping around the table.
func next(s Seat, seats int) Seat {
	return Seat((int(s) + 1) % seats)
}

// firstEligible walks forward from s to the first seat whose player can
// act. It gives up after one lap and returns where it stopped.
func firstEligible(roster *PlayerManager, s Seat) Seat {
	seats := roster.Len()
	for checked := 0; checked < seats && !roster.At(s).canAct(); checked++ {
		s = next(s, seats)
	}
	return s
}

// InitializePositions seats the button at dealer (or a random seat when
// dealer is NoSeat), moved forward to the first eligible player, and
// derives the blinds from it. Turn starts at the small blind.
func (pm *PositionManager) InitializePositions(roster *PlayerManager, dealer Seat, rng randutil.Source) {
	seats := roster.Len()
	if seats == 0 {
		return
	}
	if dealer == NoSeat || int(dealer) >= seats {
		dealer = Seat(rng.IntN(seats))
	}
	pm.dealer = firstEligible(roster, dealer)
	pm.smallBlind = firstEligible(roster, next(pm.dealer, seats))
	pm.bigBlind = firstEligible(roster, next(pm.smallBlind, seats))
	pm.turn = pm.smallBlind
	pm.raiser = NoSeat
	pm.winners = nil
}

// UpdateNextTurn passes the turn to the next seat. Eligibility is left to
// the turn validator.
func (pm *PositionManager) UpdateNextTurn(roster *PlayerManager) {
	if roster.Len() == 0 {
		return
	}
	pm.turn = next(pm.turn, roster.Len())
}

// UpdateNextStage hands the turn back to the small blind and clears the raiser.
func (pm *PositionManager) UpdateNextStage() {
	pm.turn = pm.smallBlind
	pm.raiser = NoSeat
}

// UpdateNextHand moves the button one seat and re-derives every position.
func (pm *PositionManager) UpdateNextHand(roster *PlayerManager, rng randutil.Source) {
	if roster.Len() == 0 {
		return
	}
	pm.InitializePositions(roster, next(pm.dealer, roster.Len()), rng)
}
