package game

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/lox/pokerstate/internal/randutil"
)

// TestGameOption configures test game creation
type TestGameOption func(*testGameBuilder)

type testGameBuilder struct {
	seed     int64
	bigBlind int
	dealer   Seat
	chips    []int
	players  []string
	eventBus EventBus
}

func WithSeed(seed int64) TestGameOption {
	return func(b *testGameBuilder) { b.seed = seed }
}

func WithBigBlind(bigBlind int) TestGameOption {
	return func(b *testGameBuilder) { b.bigBlind = bigBlind }
}

func WithButton(seat Seat) TestGameOption {
	return func(b *testGameBuilder) { b.dealer = seat }
}

func WithPlayers(ids ...string) TestGameOption {
	return func(b *testGameBuilder) { b.players = ids }
}

// WithStacks sets per-seat starting balances; missing seats get 1000.
func WithStacks(chips ...int) TestGameOption {
	return func(b *testGameBuilder) { b.chips = chips }
}

func WithTestEventBus(bus EventBus) TestGameOption {
	return func(b *testGameBuilder) { b.eventBus = bus }
}

// NewTestGame creates a seated game with deterministic randomness: three
// players of 1000 chips, blinds 5/10, the button on seat 0.
func NewTestGame(opts ...TestGameOption) *Game {
	builder := &testGameBuilder{
		seed:     42,
		bigBlind: 10,
		dealer:   0,
		players:  []string{"alice", "bob", "carol"},
	}
	for _, opt := range opts {
		opt(builder)
	}

	gameOpts := []GameOption{
		WithRand(randutil.New(builder.seed)),
		WithLogger(log.New(io.Discard)),
		WithDealer(builder.dealer),
	}
	if builder.eventBus != nil {
		gameOpts = append(gameOpts, WithEventBus(builder.eventBus))
	}
	g, err := NewGame(builder.bigBlind, gameOpts...)
	if err != nil {
		panic(err)
	}

	seats := make([]Seating, len(builder.players))
	for i, id := range builder.players {
		chips := 1000
		if i < len(builder.chips) {
			chips = builder.chips[i]
		}
		seats[i] = Seating{ID: id, Chips: chips}
	}
	if err := g.SetRoster(seats); err != nil {
		panic(err)
	}
	return g
}

// playRandomAction applies a uniformly chosen legal action. Bets and raises
// use the smallest legal amount.
func playRandomAction(g *Game, rng randutil.Source) error {
	actions, err := g.LegalActions()
	if err != nil {
		return err
	}
	action := actions[rng.IntN(len(actions))]
	amount := 0
	switch action {
	case Bet:
		amount = g.handStage.bigBlind
	case Raise:
		amount = g.bettingStage.minimumRaise
	}
	err = g.Act(action, amount)
	if err != nil && action.NeedsAmount() {
		// Short stacks cannot always cover the minimum. The first option
		// never takes an amount.
		return g.Act(actions[0], 0)
	}
	return err
}
