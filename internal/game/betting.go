package game

import (
	"errors"
	"fmt"
)

// Validation errors returned by ValidateBet and Session.PlaceBet
var (
	ErrBelowMinimum           = errors.New("bet below minimum")
	ErrInsufficientChips      = errors.New("insufficient chips")
	ErrNoHandSelected         = errors.New("no hand selected")
	ErrInsufficientTotalChips = errors.New("insufficient chips for total bet")
)

// Guard rejections returned by Session actions
var (
	ErrBettingLocked   = errors.New("betting is locked")
	ErrNoCurrentPlayer = errors.New("no current player")
	ErrNoStake         = errors.New("no bets placed")
	ErrUnknownHand     = errors.New("unknown hand")
	ErrUnknownPlayer   = errors.New("unknown player")
	ErrEmptyMessage    = errors.New("empty message")
)

// ValidateBet checks a bet of amount on each of the selected hands against
// the player's chips. Checks run in a fixed order and the first failure is
// returned.
func ValidateBet(amount, playerChips int, selectedHandIDs []string, cfg Config) error {
	if amount < cfg.MinBet {
		return fmt.Errorf("%w: minimum bet is %d chips", ErrBelowMinimum, cfg.MinBet)
	}
	if amount > playerChips {
		return fmt.Errorf("%w: %d requested, %d available", ErrInsufficientChips, amount, playerChips)
	}
	if len(selectedHandIDs) == 0 {
		return fmt.Errorf("%w: must select at least one hand", ErrNoHandSelected)
	}
	if total := amount * len(selectedHandIDs); total > playerChips {
		return fmt.Errorf("%w: %d across %d hands, %d available",
			ErrInsufficientTotalChips, total, len(selectedHandIDs), playerChips)
	}
	return nil
}
