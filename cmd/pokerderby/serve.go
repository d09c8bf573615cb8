package main

import (
	"context"
	"fmt"
	"time"

	"github.com/coder/quartz"
	"golang.org/x/sync/errgroup"

	"github.com/lox/pokerderby/cmd/pokerderby/shared"
	"github.com/lox/pokerderby/internal/config"
	"github.com/lox/pokerderby/internal/driver"
	"github.com/lox/pokerderby/internal/server"
)

const shutdownTimeout = 5 * time.Second

// ServeCmd runs the WebSocket server
type ServeCmd struct {
	Config string `kong:"default='pokerderby.hcl',env='POKERDERBY_CONFIG',help='Path to HCL config file'"`
	Addr   string `kong:"env='POKERDERBY_ADDR',help='Listen address, overrides the config file'"`
	Debug  bool   `kong:"help='Enable debug logging'"`
	Seed   *int64 `kong:"help='Deterministic RNG seed for dealing (optional)'"`
}

func (c *ServeCmd) Run() error {
	cfg, err := loadConfig(c.Config, c.Seed)
	if err != nil {
		return err
	}

	logger := shared.SetupLogger(shared.Level(c.Debug, cfg.Level()))

	seed, source := cfg.TableSource()
	logger.Info("Dealing tables", "seed", seed)

	rooms := server.NewRoomManager(cfg.Game, source, quartz.NewReal(), logger,
		driver.WithRevealDuration(cfg.RevealDuration()))
	for _, code := range cfg.Rooms {
		if _, err := rooms.Create(code); err != nil {
			return fmt.Errorf("open room %s: %w", code, err)
		}
	}

	addr := cfg.ListenAddress()
	if c.Addr != "" {
		addr = c.Addr
	}
	srv := server.NewServer(addr, rooms, logger)

	logger.Info("Starting Poker Derby server",
		"address", addr,
		"rooms", len(cfg.Rooms),
		"round_seconds", cfg.Game.RoundSeconds,
		"min_bet", cfg.Game.MinBet,
		"max_players", cfg.Game.MaxPlayers)

	ctx := shared.SetupSignalHandler(logger)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(srv.ListenAndServe)
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server...")
		defer rooms.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// loadConfig loads and validates the config file, applying a seed override
func loadConfig(path string, seed *int64) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if seed != nil {
		cfg.Table.Seed = seed
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}
