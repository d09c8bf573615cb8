package game

import (
	"maps"

	"github.com/lox/pokerderby/poker"
)

// BoardSize is the number of cards in a complete board
const BoardSize = 5

// Player is a participant who backs hands with chips
type Player struct {
	ID      string         `json:"id"`
	Name    string         `json:"name"`
	Chips   int            `json:"chips"`
	IsReady bool           `json:"isReady"`
	Bets    map[string]int `json:"bets"` // hand ID -> cumulative amount
}

// HasBets reports whether the player has backed any hand
func (p Player) HasBets() bool {
	return len(p.Bets) > 0
}

// TotalStaked returns the sum of all the player's bets
func (p Player) TotalStaked() int {
	total := 0
	for _, amount := range p.Bets {
		total += amount
	}
	return total
}

func (p Player) clone() Player {
	p.Bets = maps.Clone(p.Bets)
	if p.Bets == nil {
		p.Bets = map[string]int{}
	}
	return p
}

// Hand is a competing entity players bet on
type Hand struct {
	ID          string        `json:"id"`
	Label       string        `json:"label"`
	Cards       [2]poker.Card `json:"cards"`
	Pot         int           `json:"pot"`
	IsDarkHorse bool          `json:"isDarkHorse"`
}

// Board holds the revealed community cards
type Board struct {
	Flop  []poker.Card `json:"flop"`
	Turn  *poker.Card  `json:"turn,omitempty"`
	River *poker.Card  `json:"river,omitempty"`
}

// Cards returns the revealed cards in deal order
func (b Board) Cards() []poker.Card {
	cards := make([]poker.Card, 0, BoardSize)
	cards = append(cards, b.Flop...)
	if b.Turn != nil {
		cards = append(cards, *b.Turn)
	}
	if b.River != nil {
		cards = append(cards, *b.River)
	}
	return cards
}

// Len returns the number of revealed cards
func (b Board) Len() int {
	return len(b.Cards())
}

func (b Board) clone() Board {
	return revealBoard(b.Cards(), b.Len())
}

// revealBoard lays out the first n cards of a run-out as flop, turn and river
func revealBoard(runout []poker.Card, n int) Board {
	n = min(n, len(runout))
	b := Board{Flop: []poker.Card{}}
	if n >= 3 {
		b.Flop = append(b.Flop, runout[:3]...)
	}
	if n >= 4 {
		turn := runout[3]
		b.Turn = &turn
	}
	if n >= 5 {
		river := runout[4]
		b.River = &river
	}
	return b
}
