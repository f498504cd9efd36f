package game

import (
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/lox/pokerstate/internal/randutil"
)

// Seating is one roster entry: a player id and their starting balance.
type Seating struct {
	ID    string `json:"id"`
	Chips int    `json:"chips"`
}

// Game is the aggregate root of one match. It owns every manager and the
// phase that tells the driver what runs next. A Game performs no locking;
// callers serialise access.
type Game struct {
	phase        Phase
	players      *PlayerManager
	pots         *PotManager
	positions    *PositionManager
	handStage    *HandStage
	bettingStage *BettingStage

	handValidator  HandStageValidator
	stageValidator BettingStageValidator
	turnValidator  TurnValidator
	selector       ActionSelector
	executor       ActionExecutor

	rng     randutil.Source
	logger  *log.Logger
	events  EventBus
	dealer  Seat
	hands   int
	started bool
}

// NewGame creates a game with the given big blind. The small blind is half
// of it unless WithSmallBlind says otherwise.
func NewGame(bigBlind int, opts ...GameOption) (*Game, error) {
	cfg := &gameConfig{dealer: NoSeat}
	for _, opt := range opts {
		opt(cfg)
	}

	hs := &HandStage{}
	var err error
	if cfg.smallBlind > 0 {
		err = hs.SetBlinds(cfg.smallBlind, bigBlind)
	} else {
		err = hs.DefineBlinds(bigBlind)
	}
	if err != nil {
		return nil, err
	}

	if cfg.rng == nil {
		rng, _ := randutil.Seeded(nil)
		cfg.rng = rng
	}
	if cfg.logger == nil {
		cfg.logger = log.New(io.Discard)
	}
	if cfg.events == nil {
		cfg.events = NewEventBus()
	}

	return &Game{
		phase:        PhaseHandStageValidator,
		players:      NewPlayerManager(),
		pots:         NewPotManager(),
		positions:    NewPositionManager(),
		handStage:    hs,
		bettingStage: NewBettingStage(),
		rng:          cfg.rng,
		logger:       cfg.logger.WithPrefix("engine"),
		events:       cfg.events,
		dealer:       cfg.dealer,
	}, nil
}

// SetRoster seats the players in the given order and places the button.
// It is only accepted before the first hand starts.
func (g *Game) SetRoster(seats []Seating) error {
	if g.started {
		return fmt.Errorf("%w: roster is fixed once play has started", ErrIllegalAction)
	}
	if len(seats) < 2 {
		return fmt.Errorf("%w: need at least 2 players, got %d", ErrIllegalAction, len(seats))
	}

	players := make([]*Player, 0, len(seats))
	seen := make(map[string]bool, len(seats))
	for _, s := range seats {
		if seen[s.ID] {
			return fmt.Errorf("%w: duplicate player id %q", ErrIllegalAction, s.ID)
		}
		seen[s.ID] = true
		p, err := NewPlayer(s.ID, s.Chips)
		if err != nil {
			return err
		}
		players = append(players, p)
	}

	g.players = &PlayerManager{players: players}
	g.players.ResetIsPlaying()
	g.positions = NewPositionManager()
	g.positions.InitializePositions(g.players, g.dealer, g.rng)
	g.logger.Debug("Roster set", "players", len(players), "dealer", g.positions.dealer)
	return nil
}

// Phase returns the state machine's program counter.
func (g *Game) Phase() Phase { return g.phase }

// Hands returns the number of hands paid out so far.
func (g *Game) Hands() int { return g.hands }

func (g *Game) Players() *PlayerManager { return g.players }
func (g *Game) Pots() *PotManager { return g.pots }
func (g *Game) Positions() *PositionManager { return g.positions }
func (g *Game) HandStage() *HandStage { return g.handStage }
func (g *Game) BettingStage() *BettingStage { return g.bettingStage }
func (g *Game) Events() EventBus { return g.events }
func (g *Game) CurrentPlayer() *Player { return g.players.At(g.positions.turn) }
func (g *Game) publish(event GameEvent) { g.events.Publish(event) }

func (g *Game) awaiting(phase Phase, op string) error {
	if g.phase != phase {
		return fmt.Errorf("%w: %s needs phase %s, game is in %s", ErrIllegalAction, op, phase, g.phase)
	}
	return nil
}

// Step runs exactly one validator transition and returns the new phase.
// It refuses to run while the game waits on Act or SubmitResult. Once the
// game is over every Step reports PhaseGameOver.
func (g *Game) Step() (Phase, error) {
	if g.players.Len() == 0 {
		return g.phase, fmt.Errorf("%w: roster is not set", ErrIllegalAction)
	}
	if g.phase == PhaseGameOver {
		return g.phase, nil
	}
	if g.phase.AwaitsInput() {
		return g.phase, fmt.Errorf("%w: game is waiting in %s", ErrIllegalAction, g.phase)
	}
	g.started = true

	var (
		next Phase
		err  error
	)
	switch g.phase {
	case PhaseHandStageValidator:
		next, err = g.handValidator.Apply(g, g.handValidator.Validate(g))
	case PhaseBettingStageValidator:
		next, err = g.stageValidator.Apply(g, g.stageValidator.Validate(g))
	case PhaseTurnValidator:
		var outcome TurnOutcome
		if outcome, err = g.turnValidator.Validate(g); err == nil {
			next, err = g.turnValidator.Apply(g, outcome)
		}
	default:
		err = fmt.Errorf("%w: no validator for phase %s", ErrInvariantViolation, g.phase)
	}
	if err != nil {
		g.logger.Error("Transition failed", "phase", g.phase, "error", err)
		return g.phase, err
	}

	g.logger.Debug("Transition", "from", g.phase, "to", next)
	g.phase = next
	return next, nil
}

// Advance steps until the game needs a player action, a hand result, or
// is over.
func (g *Game) Advance() (Phase, error) {
	limit := 16 * (g.players.Len() + 4)
	for steps := 0; !g.phase.AwaitsInput(); steps++ {
		if steps >= limit {
			return g.phase, fmt.Errorf("%w: no input point reached after %d steps", ErrInvariantViolation, steps)
		}
		if _, err := g.Step(); err != nil {
			return g.phase, err
		}
	}
	return g.phase, nil
}

// LegalActions lists what the player on turn may do.
func (g *Game) LegalActions() ([]ActionType, error) {
	if err := g.awaiting(PhaseActionSelector, "legal actions"); err != nil {
		return nil, err
	}
	return g.selector.Options(g), nil
}

// Act applies action for the player on turn. amount is only read for Bet
// and Raise, where it is the total the player's stake is brought to.
func (g *Game) Act(action ActionType, amount int) error {
	if err := g.awaiting(PhaseActionSelector, "act"); err != nil {
		return err
	}
	if !slices.Contains(g.selector.Options(g), action) {
		return fmt.Errorf("%w: %s is not available to seat %d", ErrIllegalAction, action, g.positions.turn)
	}

	seat := g.positions.turn
	player := g.players.At(seat)
	before := player.pending
	if err := g.executor.Execute(g, action, amount); err != nil {
		return err
	}

	staged := player.pending - before
	g.logger.Debug("Applied action", "seat", seat, "player", player.id, "action", action, "staged", staged)
	g.publish(NewActionAppliedEvent(player.id, seat, action, staged, g.bettingStage.street, g.pots.Total()))
	g.phase = PhaseTurnValidator
	return nil
}

// SubmitResult pays every pot to its winners, then rotates the button and
// prepares the next hand. winners maps pot index to the ids splitting that
// pot. Every pot holding chips needs at least one winner, and each winner
// must still be contesting that pot. Nothing is paid unless the whole
// result is valid.
func (g *Game) SubmitResult(winners map[PotIndex][]string) error {
	if err := g.awaiting(PhaseWinnerSelector, "submit result"); err != nil {
		return err
	}
	if err := g.validateResult(winners); err != nil {
		return err
	}

	for _, pot := range g.pots.pots {
		ids := winners[pot.index]
		if len(ids) == 0 {
			continue
		}
		amount := pot.Total()
		if err := pot.DefineWinners(g.players, g.positions, ids); err != nil {
			return err
		}
		if err := pot.PayWinners(g.players, g.positions, g.rng); err != nil {
			return err
		}
		g.logger.Debug("Paid pot", "pot", pot.index, "winners", ids, "amount", amount)
		g.publish(NewPotAwardedEvent(pot.index, ids, amount))
	}

	g.hands++
	g.pots.Reset()
	g.players.ResetIsPlaying()
	g.positions.UpdateNextHand(g.players, g.rng)
	g.handStage.clearStages()
	g.bettingStage.Reset(g.handStage)
	g.phase = PhaseHandStageValidator
	return nil
}

func (g *Game) validateResult(winners map[PotIndex][]string) error {
	for idx, ids := range winners {
		pot, err := g.pots.Pot(idx)
		if err != nil {
			return err
		}
		seen := make(map[string]bool, len(ids))
		for _, id := range ids {
			if seen[id] {
				return fmt.Errorf("%w: %q listed twice for pot %d", ErrIllegalAction, id, idx)
			}
			seen[id] = true
			if _, err := g.players.SeatOf(id); err != nil {
				return err
			}
			if len(pot.active) > 0 && !pot.IsActive(id) {
				return fmt.Errorf("%w: %q is not contesting pot %d", ErrIllegalAction, id, idx)
			}
		}
	}
	var errs []error
	for _, pot := range g.pots.pots {
		if pot.chips > 0 && len(winners[pot.index]) == 0 {
			errs = append(errs, fmt.Errorf("%w: pot %d holds %d chips but has no winners", ErrIllegalAction, pot.index, pot.chips))
		}
	}
	return errors.Join(errs...)
}

// TotalChips sums every balance held by players and pots. It only changes
// when a roster is funded.
func (g *Game) TotalChips() int {
	return g.players.total() + g.pots.Total()
}
