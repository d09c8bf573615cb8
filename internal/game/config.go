package game

import (
	"fmt"
	"time"
)

// Config holds the static tunables of a game
type Config struct {
	RoundSeconds int     // Countdown length of every round
	MinBet       int     // Minimum amount per selected hand
	MaxPlayers   int     // Maximum players seated in a room
	Ante         int     // Reserved, not charged by the session
	HouseEdge    float64 // Reserved fraction in [0,1), not applied to payouts
}

// DefaultConfig returns the default game configuration
func DefaultConfig() Config {
	return Config{
		RoundSeconds: 15,
		MinBet:       10,
		MaxPlayers:   6,
		Ante:         0,
		HouseEdge:    0,
	}
}

// RoundDuration returns the round length as a duration
func (c Config) RoundDuration() time.Duration {
	return time.Duration(c.RoundSeconds) * time.Second
}

// Validate checks the configuration for values the session cannot work with
func (c Config) Validate() error {
	if c.RoundSeconds <= 0 {
		return fmt.Errorf("round seconds must be positive, got %d", c.RoundSeconds)
	}
	if c.MinBet <= 0 {
		return fmt.Errorf("minimum bet must be positive, got %d", c.MinBet)
	}
	if c.MaxPlayers <= 0 {
		return fmt.Errorf("max players must be positive, got %d", c.MaxPlayers)
	}
	if c.Ante < 0 {
		return fmt.Errorf("ante must not be negative, got %d", c.Ante)
	}
	if c.HouseEdge < 0 || c.HouseEdge >= 1 {
		return fmt.Errorf("house edge must be in [0,1), got %g", c.HouseEdge)
	}
	return nil
}
