package simulator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/lox/pokerstate/internal/game"
	"github.com/lox/pokerstate/internal/randutil"
	"github.com/lox/pokerstate/internal/statistics"
)

// ErrChipLeak is returned when a game ends holding a different number of
// chips than it was seated with, or a balance goes negative.
var ErrChipLeak = errors.New("chip conservation violated")

// Config holds configuration for running simulations
type Config struct {
	Games    int
	Players  int
	Chips    int
	BigBlind int
	Seed     int64
	Workers  int
	MaxHands int
	Timeout  time.Duration
	Logger   *log.Logger
}

// GameResult describes one simulated game.
type GameResult struct {
	Index    int   `json:"index"`
	Seed     int64 `json:"seed"`
	Hands    int   `json:"hands"`
	Actions  int   `json:"actions"`
	SidePots int   `json:"sidePots"`
	Finished bool  `json:"finished"`
	Chips    int   `json:"chips"`
}

// Report aggregates a simulation run.
type Report struct {
	Results        []GameResult      `json:"results"`
	Games          int               `json:"games"`
	Hands          int               `json:"hands"`
	Actions        int               `json:"actions"`
	SidePots       int               `json:"sidePots"`
	Finished       int               `json:"finished"`
	HandsPerGame   statistics.Sample `json:"handsPerGame"`
	ActionsPerHand statistics.Sample `json:"actionsPerHand"`
	Duration       time.Duration     `json:"duration"`
}

// Simulator plays many games with random legal actions and random winners.
type Simulator struct {
	config Config
	logger *log.Logger
}

// New creates a new simulator with the given configuration. Zero values
// get defaults.
func New(config Config) *Simulator {
	if config.Players == 0 {
		config.Players = 6
	}
	if config.Chips == 0 {
		config.Chips = 1000
	}
	if config.BigBlind == 0 {
		config.BigBlind = 10
	}
	if config.Workers <= 0 {
		config.Workers = 1
	}
	if config.MaxHands == 0 {
		config.MaxHands = 500
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	logger := config.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Simulator{config: config, logger: logger.WithPrefix("simulator")}
}

// Run plays every game across the worker pool. The first failing game
// cancels the rest.
func (s *Simulator) Run(ctx context.Context) (*Report, error) {
	if s.config.Players < 2 {
		return nil, fmt.Errorf("need at least 2 players, got %d", s.config.Players)
	}
	if s.config.Games < 1 {
		return nil, fmt.Errorf("need at least 1 game, got %d", s.config.Games)
	}

	start := time.Now()
	results := make([]GameResult, s.config.Games)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.Workers)

	for i := range s.config.Games {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			result, err := s.playGame(ctx, i)
			if err != nil {
				return fmt.Errorf("game %d (seed %d): %w", i, result.Seed, err)
			}
			results[i] = result
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &Report{Results: results, Games: len(results), Duration: time.Since(start)}
	for _, r := range results {
		report.Hands += r.Hands
		report.Actions += r.Actions
		report.SidePots += r.SidePots
		if r.Finished {
			report.Finished++
		}
		report.HandsPerGame.Add(float64(r.Hands))
		if r.Hands > 0 {
			report.ActionsPerHand.Add(float64(r.Actions) / float64(r.Hands))
		}
	}
	if err := report.HandsPerGame.Validate(); err != nil {
		return nil, fmt.Errorf("statistics validation failed: %w", err)
	}
	s.logger.Info("Simulation complete",
		"games", report.Games,
		"hands", report.Hands,
		"actions", report.Actions,
		"duration", report.Duration)
	return report, nil
}

// counter tallies engine events for one game.
type counter struct {
	actions  int
	sidePots int
}

func (c *counter) OnEvent(event game.GameEvent) {
	switch event.EventType() {
	case game.EventTypeActionApplied:
		c.actions++
	case game.EventTypeSidePotCreated:
		c.sidePots++
	}
}

func (s *Simulator) playGame(ctx context.Context, index int) (GameResult, error) {
	seed := s.config.Seed + int64(index)
	result := GameResult{Index: index, Seed: seed}

	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	rng := randutil.New(seed)
	g, err := game.NewGame(s.config.BigBlind,
		game.WithRand(rng),
		game.WithLogger(s.logger.With("game", index)))
	if err != nil {
		return result, err
	}

	tally := &counter{}
	g.Events().Subscribe(tally)

	seats := make([]game.Seating, s.config.Players)
	for i := range seats {
		seats[i] = game.Seating{ID: fmt.Sprintf("p%d", i), Chips: s.config.Chips}
	}
	if err := g.SetRoster(seats); err != nil {
		return result, err
	}
	want := s.config.Players * s.config.Chips

	for g.Hands() < s.config.MaxHands {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		phase, err := g.Advance()
		if err != nil {
			return result, err
		}

		switch phase {
		case game.PhaseActionSelector:
			action, amount, err := RandomAction(g, rng)
			if err != nil {
				return result, err
			}
			if err := g.Act(action, amount); err != nil {
				return result, fmt.Errorf("act %s %d: %w", action, amount, err)
			}

		case game.PhaseWinnerSelector:
			if err := g.SubmitResult(RandomWinners(g, rng)); err != nil {
				return result, err
			}
			if err := checkConservation(g, want); err != nil {
				return result, err
			}

		case game.PhaseGameOver:
			result.Finished = true
		}

		if result.Finished {
			break
		}
	}

	if err := checkConservation(g, want); err != nil {
		return result, err
	}

	result.Hands = g.Hands()
	result.Actions = tally.actions
	result.SidePots = tally.sidePots
	result.Chips = g.TotalChips()
	s.logger.Debug("Game finished", "game", index, "hands", result.Hands, "over", result.Finished)
	return result, nil
}

func checkConservation(g *game.Game, want int) error {
	if got := g.TotalChips(); got != want {
		return fmt.Errorf("%w: seated %d chips, holding %d", ErrChipLeak, want, got)
	}
	for _, p := range g.Players().Players() {
		if p.Chips() < 0 || p.PendingChips() < 0 {
			return fmt.Errorf("%w: %s has %d chips and %d pending", ErrChipLeak, p.ID(), p.Chips(), p.PendingChips())
		}
	}
	return nil
}

// RandomAction picks a uniformly random legal action for the player on
// turn. Bet and raise amounts are drawn between the minimum and the
// player's whole stack; when the stack cannot cover the minimum the first
// legal option is used instead.
func RandomAction(g *game.Game, rng randutil.Source) (game.ActionType, int, error) {
	actions, err := g.LegalActions()
	if err != nil {
		return 0, 0, err
	}

	action := actions[rng.IntN(len(actions))]
	if !action.NeedsAmount() {
		return action, 0, nil
	}

	player := g.CurrentPlayer()
	ceiling := player.Chips() + player.PendingChips()
	floor := g.HandStage().BigBlind()
	if action == game.Raise {
		floor = g.BettingStage().MinimumRaise()
	}
	if action == game.Bet && floor <= player.PendingChips() {
		floor = player.PendingChips() + 1
	}
	if floor > ceiling {
		return actions[0], 0, nil
	}
	return action, floor + rng.IntN(ceiling-floor+1), nil
}

// RandomWinners awards each funded pot to one or two of its contenders.
// A pot nobody contests any more goes to the first seat.
func RandomWinners(g *game.Game, rng randutil.Source) map[game.PotIndex][]string {
	winners := make(map[game.PotIndex][]string)
	for _, pot := range g.Pots().Pots() {
		if pot.Total() == 0 {
			continue
		}
		ids := pot.ActiveIDs()
		if len(ids) == 0 {
			ids = []string{g.Players().At(0).ID()}
		}
		first := rng.IntN(len(ids))
		picked := []string{ids[first]}
		if len(ids) > 1 && rng.IntN(2) == 0 {
			second := (first + 1 + rng.IntN(len(ids)-1)) % len(ids)
			picked = append(picked, ids[second])
		}
		winners[pot.Index()] = picked
	}
	return winners
}
