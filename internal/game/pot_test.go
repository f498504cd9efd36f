package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/pokerstate/internal/randutil"
)

// fixedSource always draws the same index.
type fixedSource int

func (f fixedSource) IntN(n int) int { return int(f) % n }

func stake(t *testing.T, roster *PlayerManager, amounts ...int) {
	t.Helper()
	for i, amount := range amounts {
		require.NoError(t, roster.At(Seat(i)).Prepare(amount))
	}
}

func TestPotManagerStartsWithMainPot(t *testing.T) {
	t.Parallel()

	pm := NewPotManager()
	require.Len(t, pm.Pots(), 1)
	assert.Equal(t, PotIndex(0), pm.Playing().Index())
	assert.Zero(t, pm.Total())

	_, err := pm.Pot(1)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSeedActiveSkipsBustedAndFolded(t *testing.T) {
	t.Parallel()

	roster := rosterOf(t, 100, 0, 100, 100)
	roster.ResetIsPlaying()
	roster.At(3).StopPlaying()

	pot := newPot(0)
	pot.SeedActive(roster)
	assert.Equal(t, []string{"p0", "p2"}, pot.ActiveIDs())
	assert.True(t, pot.HasContest())

	require.NoError(t, pot.RemoveActive("p0"))
	assert.False(t, pot.HasContest())
	require.ErrorIs(t, pot.RemoveActive("p0"), ErrNotFound)

	pot.SeedActive(roster)
	assert.Equal(t, []string{"p0", "p2"}, pot.ActiveIDs(), "seeding replaces the set")
}

func TestMinPendingAndMaxPossibleBet(t *testing.T) {
	t.Parallel()

	roster := rosterOf(t, 50, 200, 300)
	stake(t, roster, 50, 100, 120)
	pot := newPot(0)
	pot.SeedActive(roster)

	assert.Equal(t, 50, pot.MinPendingChips(roster))
	assert.Equal(t, 50, pot.MaxPossibleBet(roster))

	empty := newPot(1)
	assert.Zero(t, empty.MinPendingChips(roster))
	assert.Zero(t, empty.MaxPossibleBet(roster))
}

func TestSidePotSplit(t *testing.T) {
	t.Parallel()

	// p0 is all in for 50, p1 and p2 have 100 each on the table.
	roster := rosterOf(t, 50, 1000, 1000)
	stake(t, roster, 50, 100, 100)
	pm := NewPotManager()
	pm.Playing().SeedActive(roster)
	before := roster.total()

	require.True(t, pm.NeedsSidePot(roster))
	side, err := pm.CreateSidePot(roster)
	require.NoError(t, err)
	assert.Equal(t, PotIndex(1), side.Index())
	assert.Equal(t, []string{"p1", "p2"}, side.ActiveIDs())

	mainPot, err := pm.Pot(0)
	require.NoError(t, err)
	assert.Equal(t, 150, mainPot.Chips(), "main pot is capped at three times the short stake")

	assert.False(t, pm.NeedsSidePot(roster), "two participants never split")
	settled, err := pm.SettleHeadsUp(roster)
	require.NoError(t, err)
	assert.True(t, settled)
	require.NoError(t, pm.CollectToPlayingPot(roster))

	assert.Equal(t, 100, side.Chips())
	assert.Equal(t, 250, pm.Total())
	assert.Equal(t, before, roster.total()+pm.Total())
	for _, p := range roster.Players() {
		assert.Zero(t, p.PendingChips())
	}
}

func TestSettleHeadsUpRefundsExcess(t *testing.T) {
	t.Parallel()

	roster := rosterOf(t, 1000, 1000)
	stake(t, roster, 30, 80)
	pm := NewPotManager()
	pm.Playing().SeedActive(roster)

	assert.False(t, pm.NeedsSidePot(roster))
	settled, err := pm.SettleHeadsUp(roster)
	require.NoError(t, err)
	assert.True(t, settled)

	assert.Equal(t, 30, roster.At(0).PendingChips())
	assert.Equal(t, 30, roster.At(1).PendingChips())
	assert.Equal(t, 970, roster.At(1).Chips(), "the 80 staker gets 50 back")
	assert.Len(t, pm.Pots(), 1)
}

func TestSettleHeadsUpIgnoresLargerPots(t *testing.T) {
	t.Parallel()

	roster := rosterOf(t, 1000, 1000, 1000)
	stake(t, roster, 30, 80, 80)
	pm := NewPotManager()
	pm.Playing().SeedActive(roster)

	settled, err := pm.SettleHeadsUp(roster)
	require.NoError(t, err)
	assert.False(t, settled)
	assert.Equal(t, 80, roster.At(1).PendingChips())
}

func TestCollectIncludesFoldedStakes(t *testing.T) {
	t.Parallel()

	roster := rosterOf(t, 100, 100, 100)
	stake(t, roster, 20, 20, 10)
	pm := NewPotManager()
	pm.Playing().SeedActive(roster)

	roster.At(2).StopPlaying()
	pm.removeFromAll("p2")
	pm.removeFromAll("p2")

	require.NoError(t, pm.CollectToPlayingPot(roster))
	assert.Equal(t, 50, pm.Total())
	assert.Equal(t, []string{"p0", "p1"}, pm.Playing().ActiveIDs())
}

func TestPayWinnersSplitsRemainderToOneWinner(t *testing.T) {
	t.Parallel()

	roster := rosterOf(t, 0, 0, 0)
	positions := NewPositionManager()
	pot := newPot(0)
	require.NoError(t, pot.IncrementChips(101))

	require.NoError(t, pot.DefineWinners(roster, positions, []string{"p0", "p1"}))
	assert.Equal(t, []Seat{0, 1}, positions.Winners())
	require.NoError(t, pot.PayWinners(roster, positions, fixedSource(1)))

	assert.Equal(t, 50, roster.At(0).Chips())
	assert.Equal(t, 51, roster.At(1).Chips())
	assert.Zero(t, roster.At(2).Chips())
	assert.Zero(t, pot.Total())
}

func TestPayWinnersDrawsFromWinnerList(t *testing.T) {
	t.Parallel()

	roster := rosterOf(t, 0, 0, 0)
	positions := NewPositionManager()
	pot := newPot(0)
	require.NoError(t, pot.IncrementChips(7))

	// Draw index 0 of the winner list, which is seat 2, not roster seat 0.
	require.NoError(t, pot.DefineWinners(roster, positions, []string{"p2", "p1"}))
	require.NoError(t, pot.PayWinners(roster, positions, fixedSource(0)))

	assert.Zero(t, roster.At(0).Chips())
	assert.Equal(t, 3, roster.At(1).Chips())
	assert.Equal(t, 4, roster.At(2).Chips())
}

func TestPayWinnersRemainderIsRandom(t *testing.T) {
	t.Parallel()

	got := map[int]bool{}
	for seed := range int64(64) {
		roster := rosterOf(t, 0, 0)
		positions := NewPositionManager()
		pot := newPot(0)
		require.NoError(t, pot.IncrementChips(101))
		require.NoError(t, pot.DefineWinners(roster, positions, []string{"p0", "p1"}))
		require.NoError(t, pot.PayWinners(roster, positions, randutil.New(seed)))

		require.Equal(t, 101, roster.total())
		got[roster.At(0).Chips()] = true
	}
	assert.Equal(t, map[int]bool{50: true, 51: true}, got)
}

func TestPayWinnersErrors(t *testing.T) {
	t.Parallel()

	roster := rosterOf(t, 0, 0)
	positions := NewPositionManager()
	pot := newPot(0)

	require.NoError(t, pot.PayWinners(roster, positions, fixedSource(0)), "empty pots pay nothing")

	require.NoError(t, pot.IncrementChips(10))
	require.ErrorIs(t, pot.PayWinners(roster, positions, fixedSource(0)), ErrIllegalAction)
	require.ErrorIs(t, pot.DefineWinners(roster, positions, []string{"ghost"}), ErrNotFound)
	assert.Equal(t, 10, pot.Chips())
}
