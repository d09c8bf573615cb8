package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/lox/pokerderby/internal/config"
)

// ConfigCmd validates a config file
type ConfigCmd struct {
	Path string `arg:"" optional:"" default:"pokerderby.hcl" help:"Path to HCL config file"`
}

func (c *ConfigCmd) Run() error {
	cfg, err := loadConfig(c.Path, nil)
	if err != nil {
		return err
	}
	if _, err := os.Stat(c.Path); err != nil {
		fmt.Fprintf(os.Stderr, "%s not found, showing defaults\n", c.Path)
	}
	printConfig(os.Stdout, cfg)
	return nil
}

func printConfig(w io.Writer, cfg *config.Config) {
	spec := cfg.TableSpec()
	fmt.Fprintf(w, "listen:        %s\n", cfg.ListenAddress())
	fmt.Fprintf(w, "log level:     %s\n", cfg.Level())
	fmt.Fprintf(w, "reveal:        %s\n", cfg.RevealDuration())
	fmt.Fprintf(w, "round seconds: %d\n", cfg.Game.RoundSeconds)
	fmt.Fprintf(w, "min bet:       %d\n", cfg.Game.MinBet)
	fmt.Fprintf(w, "max players:   %d\n", cfg.Game.MaxPlayers)
	fmt.Fprintf(w, "players:       %s\n", strings.Join(spec.PlayerNames, ", "))
	fmt.Fprintf(w, "start chips:   %d\n", spec.StartChips)
	fmt.Fprintf(w, "hands:         %d (dark horse: %t)\n", spec.Hands, spec.DarkHorse)
	fmt.Fprintf(w, "rooms:         %s\n", strings.Join(cfg.Rooms, ", "))
}
