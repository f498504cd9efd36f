package main

import (
	"fmt"
	"time"

	"github.com/lox/pokerstate/internal/fileutil"
	"github.com/lox/pokerstate/internal/simulator"
)

// SimulateCmd runs random games across a worker pool
type SimulateCmd struct {
	Games    int           `short:"n" default:"1000" help:"Number of games to play"`
	Players  int           `short:"p" default:"6" help:"Players per game"`
	Chips    int           `default:"1000" help:"Starting chips per player"`
	BigBlind int           `default:"10" help:"Big blind"`
	Seed     int64         `short:"s" default:"0" help:"Base RNG seed (0 for time-based)"`
	Workers  int           `short:"w" default:"4" help:"Concurrent workers"`
	MaxHands int           `default:"500" help:"Stop a game after this many hands"`
	Timeout  time.Duration `default:"30s" help:"Per-game timeout"`
	Report   string        `help:"Write the full report as JSON to this file"`
	Debug    bool          `help:"Enable debug logging"`
}

func (c *SimulateCmd) Run() error {
	logger := stderrLogger(c.Debug)

	seed := c.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	logger.Info("Starting simulation", "games", c.Games, "players", c.Players, "seed", seed, "workers", c.Workers)

	ctx, stop := signalContext(logger)
	defer stop()

	report, err := simulator.New(simulator.Config{
		Games:    c.Games,
		Players:  c.Players,
		Chips:    c.Chips,
		BigBlind: c.BigBlind,
		Seed:     seed,
		Workers:  c.Workers,
		MaxHands: c.MaxHands,
		Timeout:  c.Timeout,
		Logger:   logger,
	}).Run(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("\n=== SIMULATION RESULTS (seed %d) ===\n", seed)
	fmt.Printf("Games played: %d (%d reached game over)\n", report.Games, report.Finished)
	fmt.Printf("Hands played: %d\n", report.Hands)
	fmt.Printf("Actions applied: %d\n", report.Actions)
	fmt.Printf("Side pots created: %d\n", report.SidePots)
	fmt.Printf("Hands per game: %s\n", report.HandsPerGame.String())
	fmt.Printf("Actions per hand: %s\n", report.ActionsPerHand.String())
	fmt.Printf("Chip conservation: OK\n")
	fmt.Printf("Duration: %s\n", report.Duration.Round(time.Millisecond))

	if c.Report != "" {
		if err := fileutil.WriteJSON(c.Report, report, 0o644); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		logger.Info("Report written", "path", c.Report)
	}
	return nil
}
