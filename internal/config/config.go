// Package config loads the HCL file that describes a Poker Derby server:
// where it listens, the game rules, the table every room is dealt from and
// the rooms to open at startup.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/pokerderby/internal/game"
	"github.com/lox/pokerderby/internal/randutil"
)

// Config is a fully resolved configuration with defaults applied
type Config struct {
	Server ServerSettings
	Game   game.Config
	Table  TableSettings
	Rooms  []string
}

// ServerSettings contains listener and logging settings
type ServerSettings struct {
	Address       string `hcl:"address,optional"`
	Port          int    `hcl:"port,optional"`
	LogLevel      string `hcl:"log_level,optional"`
	RevealSeconds *int   `hcl:"reveal_seconds,optional"`
}

// TableSettings describes the table dealt for every new game
type TableSettings struct {
	Players    []string `hcl:"players,optional"`
	StartChips int      `hcl:"start_chips,optional"`
	Hands      int      `hcl:"hands,optional"`
	DarkHorse  *bool    `hcl:"dark_horse,optional"`
	Labels     []string `hcl:"labels,optional"`
	Seed       *int64   `hcl:"seed,optional"`
}

// file mirrors the HCL layout; every block is optional
type file struct {
	Server *ServerSettings `hcl:"server,block"`
	Game   *gameBlock      `hcl:"game,block"`
	Table  *TableSettings  `hcl:"table,block"`
	Rooms  []roomBlock     `hcl:"room,block"`
}

type gameBlock struct {
	RoundSeconds int     `hcl:"round_seconds,optional"`
	MinBet       int     `hcl:"min_bet,optional"`
	MaxPlayers   int     `hcl:"max_players,optional"`
	Ante         int     `hcl:"ante,optional"`
	HouseEdge    float64 `hcl:"house_edge,optional"`
}

type roomBlock struct {
	Code string `hcl:"code,label"`
}

const (
	defaultAddress       = "localhost"
	defaultPort          = 8080
	defaultLogLevel      = "info"
	defaultRevealSeconds = 2
	defaultStartChips    = 1000
	defaultHands         = 4

	// the terminal client selects hands with the keys 1-9, Dark Horse included
	maxTableHands = 9
)

var defaultPlayers = []string{"Alex", "Sarah", "Mike", "Luna"}

// Default returns the configuration used when no file is present
func Default() *Config {
	reveal := defaultRevealSeconds
	darkHorse := true
	return &Config{
		Server: ServerSettings{
			Address:       defaultAddress,
			Port:          defaultPort,
			LogLevel:      defaultLogLevel,
			RevealSeconds: &reveal,
		},
		Game: game.DefaultConfig(),
		Table: TableSettings{
			Players:    append([]string(nil), defaultPlayers...),
			StartChips: defaultStartChips,
			Hands:      defaultHands,
			DarkHorse:  &darkHorse,
		},
		Rooms: []string{game.DefaultRoomCode},
	}
}

// Load reads configuration from an HCL file. A missing file yields the
// defaults.
func Load(filename string) (*Config, error) {
	src, err := os.ReadFile(filename)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(src, filename)
}

// Parse decodes HCL source and applies defaults for anything left unset
func Parse(src []byte, filename string) (*Config, error) {
	parser := hclparse.NewParser()
	f, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var raw file
	if diags := gohcl.DecodeBody(f.Body, nil, &raw); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	cfg := Default()
	if raw.Server != nil {
		applyServer(&cfg.Server, *raw.Server)
	}
	if raw.Game != nil {
		applyGame(&cfg.Game, *raw.Game)
	}
	if raw.Table != nil {
		applyTable(&cfg.Table, *raw.Table)
	}
	if len(raw.Rooms) > 0 {
		cfg.Rooms = cfg.Rooms[:0]
		for _, r := range raw.Rooms {
			cfg.Rooms = append(cfg.Rooms, strings.ToUpper(r.Code))
		}
	}
	return cfg, nil
}

func applyServer(dst *ServerSettings, src ServerSettings) {
	if src.Address != "" {
		dst.Address = src.Address
	}
	if src.Port != 0 {
		dst.Port = src.Port
	}
	if src.LogLevel != "" {
		dst.LogLevel = src.LogLevel
	}
	if src.RevealSeconds != nil {
		dst.RevealSeconds = src.RevealSeconds
	}
}

func applyGame(dst *game.Config, src gameBlock) {
	if src.RoundSeconds != 0 {
		dst.RoundSeconds = src.RoundSeconds
	}
	if src.MinBet != 0 {
		dst.MinBet = src.MinBet
	}
	if src.MaxPlayers != 0 {
		dst.MaxPlayers = src.MaxPlayers
	}
	dst.Ante = src.Ante
	dst.HouseEdge = src.HouseEdge
}

func applyTable(dst *TableSettings, src TableSettings) {
	if len(src.Players) > 0 {
		dst.Players = src.Players
	}
	if src.StartChips != 0 {
		dst.StartChips = src.StartChips
	}
	if src.Hands != 0 {
		dst.Hands = src.Hands
	}
	if src.DarkHorse != nil {
		dst.DarkHorse = src.DarkHorse
	}
	if len(src.Labels) > 0 {
		dst.Labels = src.Labels
	}
	if src.Seed != nil {
		dst.Seed = src.Seed
	}
}

// Validate checks the resolved configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if _, err := log.ParseLevel(c.Server.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q", c.Server.LogLevel)
	}
	if c.Server.RevealSeconds != nil && *c.Server.RevealSeconds < 0 {
		return fmt.Errorf("reveal seconds must not be negative, got %d", *c.Server.RevealSeconds)
	}

	if err := c.Game.Validate(); err != nil {
		return fmt.Errorf("game: %w", err)
	}

	if len(c.Table.Players) == 0 {
		return errors.New("table: at least one player is required")
	}
	if len(c.Table.Players) > c.Game.MaxPlayers {
		return fmt.Errorf("table: %d players exceeds max players %d", len(c.Table.Players), c.Game.MaxPlayers)
	}
	if c.Table.StartChips <= 0 {
		return fmt.Errorf("table: start chips must be positive, got %d", c.Table.StartChips)
	}
	maxHands := maxTableHands
	if c.TableSpec().DarkHorse {
		maxHands--
	}
	if c.Table.Hands < 1 || c.Table.Hands > maxHands {
		return fmt.Errorf("table: hands must be between 1 and %d, got %d", maxHands, c.Table.Hands)
	}

	seen := make(map[string]bool, len(c.Rooms))
	for _, code := range c.Rooms {
		if code == "" {
			return errors.New("room: empty room code")
		}
		if seen[code] {
			return fmt.Errorf("room %s: declared twice", code)
		}
		seen[code] = true
	}
	return nil
}

// ListenAddress returns the host:port the server listens on
func (c *Config) ListenAddress() string {
	return net.JoinHostPort(c.Server.Address, strconv.Itoa(c.Server.Port))
}

// Level returns the configured log level, info if unparsable
func (c *Config) Level() log.Level {
	level, err := log.ParseLevel(c.Server.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return level
}

// RevealDuration is how long the driver lets a reveal animation run
func (c *Config) RevealDuration() time.Duration {
	if c.Server.RevealSeconds == nil {
		return defaultRevealSeconds * time.Second
	}
	return time.Duration(*c.Server.RevealSeconds) * time.Second
}

// TableSpec returns the dealer input for a new game
func (c *Config) TableSpec() game.TableSpec {
	return game.TableSpec{
		PlayerNames: append([]string(nil), c.Table.Players...),
		StartChips:  c.Table.StartChips,
		Hands:       c.Table.Hands,
		DarkHorse:   c.Table.DarkHorse == nil || *c.Table.DarkHorse,
		Labels:      append([]string(nil), c.Table.Labels...),
	}
}

// TableSource returns a source dealing a fresh table for every game. The
// source is safe to share between rooms. The seed used is returned so runs
// can be reproduced.
func (c *Config) TableSource() (int64, game.TableSource) {
	seed, rng := randutil.Resolve(c.Table.Seed)
	spec := c.TableSpec()

	var mu sync.Mutex
	return seed, func() (game.Table, error) {
		mu.Lock()
		defer mu.Unlock()
		return game.DealTable(rng, spec)
	}
}
