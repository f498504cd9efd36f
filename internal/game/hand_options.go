package game

import (
	"github.com/charmbracelet/log"

	"github.com/lox/pokerstate/internal/randutil"
)

// GameOption configures a Game during creation.
type GameOption func(*gameConfig)

// gameConfig holds the optional collaborators of a Game.
type gameConfig struct {
	rng        randutil.Source // Default: time-seeded PCG
	logger     *log.Logger     // Default: discard
	events     EventBus        // Default: a fresh SimpleEventBus
	dealer     Seat            // Default: random seat
	smallBlind int             // Default: half the big blind
}

// WithRand sets the random source used for the initial dealer and payout
// remainders. Pass a seeded source for reproducible games:
//
//	g, err := game.NewGame(10, game.WithRand(randutil.New(42)))
func WithRand(rng randutil.Source) GameOption {
	return func(c *gameConfig) {
		c.rng = rng
	}
}

// WithLogger sets the logger the engine writes debug transitions to.
func WithLogger(logger *log.Logger) GameOption {
	return func(c *gameConfig) {
		c.logger = logger
	}
}

// WithEventBus publishes engine events to an existing bus, so several
// games can share subscribers.
func WithEventBus(bus EventBus) GameOption {
	return func(c *gameConfig) {
		c.events = bus
	}
}

// WithDealer fixes the first hand's dealer seat instead of drawing one.
func WithDealer(seat Seat) GameOption {
	return func(c *gameConfig) {
		c.dealer = seat
	}
}

// WithSmallBlind overrides the derived small blind. It must stay below the
// big blind.
func WithSmallBlind(amount int) GameOption {
	return func(c *gameConfig) {
		c.smallBlind = amount
	}
}
