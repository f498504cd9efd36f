package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"

	"github.com/lox/pokerstate/internal/display"
	"github.com/lox/pokerstate/internal/game"
	"github.com/lox/pokerstate/internal/randutil"
	"github.com/lox/pokerstate/internal/tui"
)

// PlayCmd runs a hot-seat game in the terminal
type PlayCmd struct {
	Players  []string `short:"p" default:"alice,bob,carol" help:"Player ids, in seat order"`
	Chips    int      `default:"500" help:"Starting chips per player"`
	BigBlind int      `default:"10" help:"Big blind"`
	Seed     *int64   `help:"RNG seed for the initial button"`
	NoColor  bool     `help:"Disable colour output"`
	LogFile  string   `help:"Write debug logs to this file"`
}

func (c *PlayCmd) Run() error {
	logger := log.New(io.Discard)
	if c.LogFile != "" {
		f, err := os.OpenFile(c.LogFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		logger = setupLogger(f, log.DebugLevel)
	}

	rng, seed := randutil.Seeded(c.Seed)
	logger.Info("Starting hot-seat game", "players", strings.Join(c.Players, ","), "seed", seed)

	g, err := game.NewGame(c.BigBlind, game.WithRand(rng), game.WithLogger(logger))
	if err != nil {
		return err
	}
	seats := make([]game.Seating, len(c.Players))
	for i, id := range c.Players {
		seats[i] = game.Seating{ID: strings.TrimSpace(id), Chips: c.Chips}
	}
	if err := g.SetRoster(seats); err != nil {
		return err
	}

	var opts []display.Option
	if c.NoColor {
		opts = append(opts, display.WithProfile(termenv.Ascii))
	}
	return tui.Run(g, display.NewRenderer(os.Stdout, opts...), logger)
}
