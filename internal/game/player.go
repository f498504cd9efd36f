package game

import "fmt"

// Player is a seated participant. Its id is stable for the life of a game.
type Player struct {
	ChipHolder
	id      string
	playing bool
}

// NewPlayer funds a new player with their starting balance. This is the
// only place chips enter the engine.
func NewPlayer(id string, chips int) (*Player, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: player id is empty", ErrIllegalAction)
	}
	if err := checkAmount(chips); err != nil {
		return nil, err
	}
	return &Player{
		ChipHolder: ChipHolder{chips: chips},
		id:         id,
		playing:    true,
	}, nil
}

// ID returns the player's identifier.
func (p *Player) ID() string { return p.id }

// IsPlaying reports whether the player may act in and contest the current hand.
func (p *Player) IsPlaying() bool { return p.playing }

// StartPlaying marks the player eligible for the current hand.
func (p *Player) StartPlaying() { p.playing = true }

// StopPlaying marks the player out of the current hand.
func (p *Player) StopPlaying() { p.playing = false }

// canAct is true when the player could be given a turn.
func (p *Player) canAct() bool {
	return p.playing && p.chips > 0
}

// inContention is true while the player still has money riding on or
// available for the hand.
func (p *Player) inContention() bool {
	return p.playing && p.Total() > 0
}

// PlayerManager owns the ordered roster. Seat indices refer to positions
// in this slice, which is fixed for the lifetime of a game.
type PlayerManager struct {
	players []*Player
}

// NewPlayerManager creates an empty roster.
func NewPlayerManager() *PlayerManager {
	return &PlayerManager{}
}

// Players returns the roster in seat order.
func (pm *PlayerManager) Players() []*Player { return pm.players }

// Len returns the number of seats.
func (pm *PlayerManager) Len() int { return len(pm.players) }

// At returns the player in seat s, or nil when s is out of range.
func (pm *PlayerManager) At(s Seat) *Player {
	if s < 0 || int(s) >= len(pm.players) {
		return nil
	}
	return pm.players[s]
}

// SeatOf returns the seat holding the player with the given id.
func (pm *PlayerManager) SeatOf(id string) (Seat, error) {
	for i, p := range pm.players {
		if p.id == id {
			return Seat(i), nil
		}
	}
	return NoSeat, fmt.Errorf("%w: player %q", ErrNotFound, id)
}

// ResetIsPlaying re-arms every funded player for a new hand and benches
// the busted ones.
func (pm *PlayerManager) ResetIsPlaying() {
	for _, p := range pm.players {
		if p.chips > 0 {
			p.StartPlaying()
		} else {
			p.StopPlaying()
		}
	}
}

func (pm *PlayerManager) countPlaying() int {
	n := 0
	for _, p := range pm.players {
		if p.playing {
			n++
		}
	}
	return n
}

func (pm *PlayerManager) countInContention() int {
	n := 0
	for _, p := range pm.players {
		if p.inContention() {
			n++
		}
	}
	return n
}

func (pm *PlayerManager) countCanAct() int {
	n := 0
	for _, p := range pm.players {
		if p.canAct() {
			n++
		}
	}
	return n
}

func (pm *PlayerManager) total() int {
	total := 0
	for _, p := range pm.players {
		total += p.Total()
	}
	return total
}
