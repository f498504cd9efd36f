package game

import (
	"fmt"

	"github.com/lox/pokerstate/internal/randutil"
)

// DefineWinners records the seats of the given winner ids as the hand's
// winners for this pot.
func (p *Pot) DefineWinners(roster *PlayerManager, positions *PositionManager, ids []string) error {
	seats := make([]Seat, 0, len(ids))
	for _, id := range ids {
		seat, err := roster.SeatOf(id)
		if err != nil {
			return err
		}
		seats = append(seats, seat)
	}
	positions.winners = seats
	return nil
}

// PayWinners splits the pot evenly across the recorded winners. Any
// remainder left by integer division goes to one winner drawn uniformly
// at random, so no chip is lost to rounding.
func (p *Pot) PayWinners(roster *PlayerManager, positions *PositionManager, rng randutil.Source) error {
	winners := positions.winners
	if p.chips == 0 {
		return nil
	}
	if len(winners) == 0 {
		return fmt.Errorf("%w: pot %d holds %d chips but has no winners", ErrIllegalAction, p.index, p.chips)
	}
	recipients := make([]*Player, len(winners))
	for i, seat := range winners {
		if recipients[i] = roster.At(seat); recipients[i] == nil {
			return fmt.Errorf("%w: winner seat %d", ErrNotFound, seat)
		}
	}

	share := p.chips / len(recipients)
	for _, winner := range recipients {
		if err := p.pay(winner, share); err != nil {
			return err
		}
	}
	if p.chips > 0 {
		lucky := recipients[rng.IntN(len(recipients))]
		if err := p.pay(lucky, p.chips); err != nil {
			return err
		}
	}
	return nil
}

func (p *Pot) pay(winner *Player, amount int) error {
	if err := p.Prepare(amount); err != nil {
		return err
	}
	return p.TransferAll(winner)
}
