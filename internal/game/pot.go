package game

import (
	"fmt"
	"slices"
)

// PotIndex identifies a pot by creation order. Index 0 is the main pot.
type PotIndex int

// Pot is a chip pool contested by a specific set of players.
type Pot struct {
	ChipHolder
	index  PotIndex
	active []string // ids of players still contesting this pot, in seat order
}

func newPot(index PotIndex) *Pot {
	return &Pot{index: index}
}

// Index returns the pot's position in the pot list.
func (p *Pot) Index() PotIndex { return p.index }

// ActiveIDs returns a copy of the ids still contesting the pot.
func (p *Pot) ActiveIDs() []string {
	return slices.Clone(p.active)
}

// IsActive reports whether id is contesting the pot.
func (p *Pot) IsActive(id string) bool {
	return slices.Contains(p.active, id)
}

// SeedActive replaces the participant set with every playing player who
// still has chips on or off the table.
func (p *Pot) SeedActive(roster *PlayerManager) {
	p.active = p.active[:0]
	for _, player := range roster.players {
		if player.inContention() {
			p.active = append(p.active, player.id)
		}
	}
}

// RemoveActive drops id from the participant set.
func (p *Pot) RemoveActive(id string) error {
	i := slices.Index(p.active, id)
	if i < 0 {
		return fmt.Errorf("%w: player %q is not contesting pot %d", ErrNotFound, id, p.index)
	}
	p.active = slices.Delete(p.active, i, i+1)
	return nil
}

// HasContest reports whether more than one player is contesting the pot.
func (p *Pot) HasContest() bool {
	return len(p.active) > 1
}

func (p *Pot) activePlayers(roster *PlayerManager) []*Player {
	players := make([]*Player, 0, len(p.active))
	for _, player := range roster.players {
		if p.IsActive(player.id) {
			players = append(players, player)
		}
	}
	return players
}

// MinPendingChips returns the smallest staged amount among the pot's
// participants, or 0 when nobody is contesting it.
func (p *Pot) MinPendingChips(roster *PlayerManager) int {
	players := p.activePlayers(roster)
	if len(players) == 0 {
		return 0
	}
	least := players[0].pending
	for _, player := range players[1:] {
		least = min(least, player.pending)
	}
	return least
}

// MaxPossibleBet returns the most every participant can cover: the
// smallest total stack among them. It sizes side pot splits.
func (p *Pot) MaxPossibleBet(roster *PlayerManager) int {
	players := p.activePlayers(roster)
	if len(players) == 0 {
		return 0
	}
	least := players[0].Total()
	for _, player := range players[1:] {
		least = min(least, player.Total())
	}
	return least
}

// PotManager owns the ordered pot list. The last pot is always the one
// currently receiving chips.
type PotManager struct {
	pots []*Pot
}

// NewPotManager starts with a single, empty main pot.
func NewPotManager() *PotManager {
	return &PotManager{pots: []*Pot{newPot(0)}}
}

// Pots returns all pots in creation order.
func (pm *PotManager) Pots() []*Pot { return pm.pots }

// Pot returns the pot at index i.
func (pm *PotManager) Pot(i PotIndex) (*Pot, error) {
	if i < 0 || int(i) >= len(pm.pots) {
		return nil, fmt.Errorf("%w: pot %d", ErrNotFound, i)
	}
	return pm.pots[i], nil
}

// Playing returns the pot currently receiving chips.
func (pm *PotManager) Playing() *Pot {
	return pm.pots[len(pm.pots)-1]
}

// Reset discards every pot and starts over with an empty main pot.
func (pm *PotManager) Reset() {
	pm.pots = []*Pot{newPot(0)}
}

// Total returns the chips held across all pots.
func (pm *PotManager) Total() int {
	total := 0
	for _, p := range pm.pots {
		total += p.Total()
	}
	return total
}

// NeedsSidePot reports whether the playing pot's participants have staged
// different amounts. Heads-up pots never need a split; their excess is
// returned by SettleHeadsUp instead.
func (pm *PotManager) NeedsSidePot(roster *PlayerManager) bool {
	players := pm.Playing().activePlayers(roster)
	if len(players) == 0 || len(players) == 2 {
		return false
	}
	first := players[0].pending
	for _, p := range players[1:] {
		if p.pending != first {
			return true
		}
	}
	return false
}

// SettleHeadsUp truncates both stakes in a two-player pot down to the
// smaller one, refunding the excess. It reports whether it applied.
func (pm *PotManager) SettleHeadsUp(roster *PlayerManager) (bool, error) {
	pot := pm.Playing()
	players := pot.activePlayers(roster)
	if len(players) != 2 {
		return false, nil
	}
	final := pot.MinPendingChips(roster)
	for _, p := range players {
		if err := p.Refund(p.pending - final); err != nil {
			return false, err
		}
	}
	return true, nil
}

// CollectToPlayingPot sweeps every staged balance into the playing pot.
func (pm *PotManager) CollectToPlayingPot(roster *PlayerManager) error {
	pot := pm.Playing()
	for _, p := range roster.players {
		if p.pending > 0 {
			if err := p.TransferAll(pot); err != nil {
				return err
			}
		}
	}
	return nil
}

// collectUpTo sweeps at most amount from each staged balance into the
// playing pot.
func (pm *PotManager) collectUpTo(roster *PlayerManager, amount int) error {
	if err := checkAmount(amount); err != nil {
		return err
	}
	pot := pm.Playing()
	for _, p := range roster.players {
		if p.pending > 0 {
			if err := p.Transfer(pot, min(amount, p.pending)); err != nil {
				return err
			}
		}
	}
	return nil
}

// CreateSidePot caps the playing pot at the largest stake every participant
// can cover, then opens a new pot contested by whoever still has chips.
func (pm *PotManager) CreateSidePot(roster *PlayerManager) (*Pot, error) {
	capAmount := pm.Playing().MaxPossibleBet(roster)
	if err := pm.collectUpTo(roster, capAmount); err != nil {
		return nil, err
	}
	pot := newPot(PotIndex(len(pm.pots)))
	pm.pots = append(pm.pots, pot)
	pot.SeedActive(roster)
	return pot, nil
}

// removeFromAll drops id from every pot it is contesting.
func (pm *PotManager) removeFromAll(id string) {
	for _, p := range pm.pots {
		if i := slices.Index(p.active, id); i >= 0 {
			p.active = slices.Delete(p.active, i, i+1)
		}
	}
}
