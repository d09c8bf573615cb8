package game

import "fmt"

// Round is one of the four fixed phases of a game
type Round int

const (
	OutOfTheGate Round = iota
	InTheRunning
	FinalFurlong
	PhotoFinish
)

var roundNames = [...]string{"Out of the Gate", "In the Running", "Final Furlong", "Photo Finish"}

// board cards visible during each round
var roundBoardCards = [...]int{0, 3, 4, 5}

// Rounds returns every round in play order
func Rounds() []Round {
	return []Round{OutOfTheGate, InTheRunning, FinalFurlong, PhotoFinish}
}

func (r Round) String() string {
	if r.valid() {
		return roundNames[r]
	}
	return fmt.Sprintf("Round(%d)", int(r))
}

// ParseRound returns the round with the given display name
func ParseRound(name string) (Round, error) {
	for i, n := range roundNames {
		if n == name {
			return Round(i), nil
		}
	}
	return OutOfTheGate, fmt.Errorf("unknown round %q", name)
}

// MarshalText implements encoding.TextMarshaler
func (r Round) MarshalText() ([]byte, error) {
	if !r.valid() {
		return nil, fmt.Errorf("invalid round %d", int(r))
	}
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (r *Round) UnmarshalText(text []byte) error {
	parsed, err := ParseRound(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Next returns the round after r. It returns false when r is the final
// round, which means the game is complete rather than an error.
func (r Round) Next() (Round, bool) {
	if !r.valid() || r == PhotoFinish {
		return r, false
	}
	return r + 1, true
}

// IsTerminal reports whether r is the final, betting-locked round
func (r Round) IsTerminal() bool {
	return r == PhotoFinish
}

// Progress returns the share of the game reached at r, in equal steps of
// 25 up to 100.
func (r Round) Progress() int {
	if !r.valid() {
		return 0
	}
	return (int(r) + 1) * 100 / len(roundNames)
}

// BoardCards returns how many board cards are visible during r
func (r Round) BoardCards() int {
	if !r.valid() {
		return 0
	}
	return roundBoardCards[r]
}

func (r Round) valid() bool {
	return r >= OutOfTheGate && r <= PhotoFinish
}

// AllPlayersReady reports whether every player is ready. An empty player
// list is never ready, so a room does not advance before anyone joins.
func AllPlayersReady(players []Player) bool {
	if len(players) == 0 {
		return false
	}
	for _, p := range players {
		if !p.IsReady {
			return false
		}
	}
	return true
}
