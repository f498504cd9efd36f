package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"

	"github.com/lox/pokerstate/internal/server"
)

// ServerCmd runs the HTTP/WebSocket server
type ServerCmd struct {
	Config     string `short:"c" default:"pokerstate.hcl" help:"Path to HCL configuration file"`
	Addr       string `short:"a" help:"Server address to bind to (overrides config)"`
	LogLevel   string `short:"l" help:"Log level (overrides config)"`
	Debug      bool   `help:"Enable debug logging"`
	BigBlind   int    `help:"Default big blind for new games (overrides config)"`
	MaxPlayers int    `help:"Maximum players per game (overrides config)"`
}

func (c *ServerCmd) Run() error {
	cfg, err := server.LoadConfig(c.Config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if c.Addr != "" {
		cfg.Server.Address = c.Addr
	}
	if c.LogLevel != "" {
		cfg.Server.LogLevel = c.LogLevel
	}
	if c.Debug {
		cfg.Server.LogLevel = "debug"
	}
	if c.BigBlind > 0 {
		cfg.Defaults.BigBlind = c.BigBlind
	}
	if c.MaxPlayers > 0 {
		cfg.Defaults.MaxPlayers = c.MaxPlayers
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger := setupLogger(os.Stderr, cfg.Level())
	logger.Info("Starting pokerstate server",
		"address", cfg.Server.Address,
		"big_blind", cfg.Defaults.BigBlind,
		"max_players", cfg.Defaults.MaxPlayers,
		"idle_timeout", cfg.IdleTimeout())

	ctx, stop := signalContext(logger)
	defer stop()

	return server.NewServer(cfg, logger).Run(ctx)
}

// signalContext is cancelled on interrupt or SIGTERM.
func signalContext(logger *log.Logger) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	go func() {
		<-ctx.Done()
		logger.Info("Received signal, shutting down gracefully")
	}()
	return ctx, stop
}
