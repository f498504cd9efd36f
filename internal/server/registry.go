package server

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/lox/pokerstate/internal/game"
	"github.com/lox/pokerstate/internal/gameid"
	"github.com/lox/pokerstate/internal/randutil"
)

// ErrGameNotFound is returned when a game id is not held by the registry.
var ErrGameNotFound = errors.New("game not found")

// GameInstance is one engine plus the lock that serialises access to it.
type GameInstance struct {
	ID       string
	Created  time.Time
	BigBlind int
	Seed     int64

	mu       sync.Mutex
	game     *game.Game
	lastUsed time.Time
}

// GameSummary holds lightweight metadata for clients.
type GameSummary struct {
	ID           string     `json:"id"`
	Phase        game.Phase `json:"phase"`
	Hands        int        `json:"hands"`
	Players      int        `json:"players"`
	BigBlind     int        `json:"bigBlind"`
	TotalChips   int        `json:"totalChips"`
	Created      time.Time  `json:"created"`
	LastActivity time.Time  `json:"lastActivity"`
}

// CreateOptions are the per-game knobs accepted at creation.
type CreateOptions struct {
	BigBlind   int
	SmallBlind int
	Seed       *int64
}

// Registry tracks live games and reaps the idle ones.
type Registry struct {
	logger  *log.Logger
	clock   quartz.Clock
	ids     *gameid.Generator
	metrics *Metrics
	hub     *Hub
	idle    time.Duration

	mu    sync.RWMutex
	games map[string]*GameInstance
}

// NewRegistry constructs an empty registry. idRand feeds game id
// generation; nil uses crypto/rand.
func NewRegistry(logger *log.Logger, clock quartz.Clock, idle time.Duration, idRand io.Reader, metrics *Metrics, hub *Hub) *Registry {
	return &Registry{
		logger:  logger.WithPrefix("registry"),
		clock:   clock,
		ids:     gameid.NewGenerator(idRand),
		metrics: metrics,
		hub:     hub,
		idle:    idle,
		games:   make(map[string]*GameInstance),
	}
}

// Create builds a new game and registers it under a fresh id.
func (r *Registry) Create(opts CreateOptions) (*GameInstance, error) {
	id, err := r.ids.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate game id: %w", err)
	}

	rng, seed := randutil.Seeded(opts.Seed)
	gameOpts := []game.GameOption{
		game.WithRand(rng),
		game.WithLogger(r.logger.With("game_id", id)),
	}
	if opts.SmallBlind > 0 {
		gameOpts = append(gameOpts, game.WithSmallBlind(opts.SmallBlind))
	}

	g, err := game.NewGame(opts.BigBlind, gameOpts...)
	if err != nil {
		return nil, err
	}
	if r.metrics != nil {
		g.Events().Subscribe(r.metrics)
	}

	now := r.clock.Now()
	instance := &GameInstance{
		ID:       id,
		Created:  now,
		BigBlind: opts.BigBlind,
		Seed:     seed,
		game:     g,
		lastUsed: now,
	}

	r.mu.Lock()
	r.games[id] = instance
	r.mu.Unlock()

	if r.metrics != nil {
		r.metrics.gameAdded()
	}
	r.logger.Info("Game created", "game_id", id, "big_blind", opts.BigBlind, "seed", seed)
	return instance, nil
}

// Get retrieves a game by ID.
func (r *Registry) Get(id string) (*GameInstance, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	instance, ok := r.games[id]
	return instance, ok
}

// Delete removes a game by ID.
func (r *Registry) Delete(id string) bool {
	if !r.remove(id, false) {
		return false
	}
	r.logger.Info("Game deleted", "game_id", id)
	return true
}

func (r *Registry) remove(id string, reaped bool) bool {
	r.mu.Lock()
	_, ok := r.games[id]
	delete(r.games, id)
	r.mu.Unlock()

	if !ok {
		return false
	}
	if r.hub != nil {
		r.hub.CloseGame(id)
	}
	if r.metrics != nil {
		r.metrics.gameRemoved(reaped)
	}
	return true
}

// View runs fn with exclusive access to the game without counting as a
// mutation.
func (r *Registry) View(id string, fn func(*game.Game) error) error {
	instance, ok := r.Get(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrGameNotFound, id)
	}

	instance.mu.Lock()
	defer instance.mu.Unlock()
	instance.lastUsed = r.clock.Now()
	return fn(instance.game)
}

// Update runs fn with exclusive access to the game. When fn succeeds the
// new snapshot is pushed to the game's watchers before the lock is
// released, so watchers see mutations in order.
func (r *Registry) Update(id string, fn func(*game.Game) error) error {
	instance, ok := r.Get(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrGameNotFound, id)
	}

	instance.mu.Lock()
	defer instance.mu.Unlock()
	instance.lastUsed = r.clock.Now()

	if err := fn(instance.game); err != nil {
		return err
	}
	if r.hub != nil {
		r.hub.Broadcast(id, instance.game.Snapshot())
	}
	return nil
}

// List returns a summary per game, oldest first.
func (r *Registry) List() []GameSummary {
	r.mu.RLock()
	instances := make([]*GameInstance, 0, len(r.games))
	for _, instance := range r.games {
		instances = append(instances, instance)
	}
	r.mu.RUnlock()

	summaries := make([]GameSummary, 0, len(instances))
	for _, instance := range instances {
		instance.mu.Lock()
		summaries = append(summaries, GameSummary{
			ID:           instance.ID,
			Phase:        instance.game.Phase(),
			Hands:        instance.game.Hands(),
			Players:      instance.game.Players().Len(),
			BigBlind:     instance.BigBlind,
			TotalChips:   instance.game.TotalChips(),
			Created:      instance.Created,
			LastActivity: instance.lastUsed,
		})
		instance.mu.Unlock()
	}

	slices.SortFunc(summaries, func(a, b GameSummary) int {
		if c := a.Created.Compare(b.Created); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return summaries
}

// Len reports how many games are registered.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.games)
}

// ReapIdle removes games untouched for longer than the idle timeout and
// returns how many were removed. A zero timeout disables reaping.
func (r *Registry) ReapIdle() int {
	if r.idle <= 0 {
		return 0
	}

	r.mu.RLock()
	var stale []string
	for id, instance := range r.games {
		instance.mu.Lock()
		if r.clock.Since(instance.lastUsed) > r.idle {
			stale = append(stale, id)
		}
		instance.mu.Unlock()
	}
	r.mu.RUnlock()

	reaped := 0
	for _, id := range stale {
		if r.remove(id, true) {
			reaped++
			r.logger.Info("Reaped idle game", "game_id", id)
		}
	}
	return reaped
}

// RunReaper calls ReapIdle every interval until ctx is done.
func (r *Registry) RunReaper(ctx context.Context, interval time.Duration) error {
	ticker := r.clock.NewTicker(interval, "reaper")
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			r.ReapIdle()
		}
	}
}
