package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/coder/quartz"

	"github.com/lox/pokerderby/cmd/pokerderby/shared"
	"github.com/lox/pokerderby/internal/driver"
	"github.com/lox/pokerderby/internal/game"
	"github.com/lox/pokerderby/internal/tui"
)

// PlayCmd runs a local game in the terminal
type PlayCmd struct {
	Config  string `kong:"default='pokerderby.hcl',env='POKERDERBY_CONFIG',help='Path to HCL config file'"`
	Room    string `kong:"default='${room}',help='Room code shown in the header'"`
	Seed    *int64 `kong:"help='Deterministic RNG seed for dealing (optional)'"`
	NoColor bool   `kong:"env='NO_COLOR',help='Disable colour output'"`
	Debug   bool   `kong:"help='Enable debug logging'"`
	LogFile string `kong:"default='pokerderby.log',help='Log file, the terminal is used by the game'"`
}

func (c *PlayCmd) Run() error {
	cfg, err := loadConfig(c.Config, c.Seed)
	if err != nil {
		return err
	}

	logger, closer, err := shared.SetupFileLogger(c.LogFile, shared.Level(c.Debug, cfg.Level()))
	if err != nil {
		return err
	}
	defer func() { _ = closer.Close() }()

	if c.NoColor {
		tui.DisableColor()
	}

	clock := quartz.NewReal()
	seed, source := cfg.TableSource()
	logger.Info("Dealing tables", "seed", seed)

	session, err := game.NewSession(cfg.Game, source,
		game.WithClock(clock),
		game.WithLogger(logger))
	if err != nil {
		return err
	}
	if err := session.Initialize(c.Room); err != nil {
		return fmt.Errorf("start game: %w", err)
	}

	d := driver.New(session, clock,
		driver.WithLogger(logger),
		driver.WithRevealDuration(cfg.RevealDuration()))
	d.Start()
	defer d.Stop()

	model := tui.New(session, logger)
	defer model.Close()

	_, err = tea.NewProgram(model, tea.WithAltScreen()).Run()
	return err
}
