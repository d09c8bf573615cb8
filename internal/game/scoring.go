package game

import (
	"fmt"

	"github.com/lox/pokerderby/poker"
)

// HandRank is the ordinal strength class of a scored hand. Only HighCard
// is produced by HighCardScore; the remaining classes exist for scorers
// that model real combinations.
type HandRank int

const (
	HighCard HandRank = iota + 1
	Pair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
	RoyalFlush
)

func (r HandRank) String() string {
	names := [...]string{"High Card", "Pair", "Two Pair", "Three of a Kind", "Straight",
		"Flush", "Full House", "Four of a Kind", "Straight Flush", "Royal Flush"}
	if r >= HighCard && r <= RoyalFlush {
		return names[r-HighCard]
	}
	return fmt.Sprintf("HandRank(%d)", int(r))
}

// Score is the comparable strength of a hand against a board
type Score struct {
	Rank  HandRank `json:"rank"`
	Value int      `json:"value"`
	Label string   `json:"label"`
}

// Scorer computes the strength of a hand given the revealed board
type Scorer func(Hand, Board) Score

// HighCardScore is the default scorer. It pools the hand with the revealed
// board and takes the highest rank value; every hand lands in the HighCard
// class. Dark Horse hands always score HighCard with value 0.
func HighCardScore(h Hand, b Board) Score {
	if h.IsDarkHorse {
		return Score{Rank: HighCard, Value: 0, Label: "Dark Horse (Hidden)"}
	}

	var best poker.Rank
	for _, c := range append(h.Cards[:], b.Cards()...) {
		if c.Rank.Value() > best.Value() {
			best = c.Rank
		}
	}

	return Score{
		Rank:  HighCard,
		Value: best.Value(),
		Label: "High Card: " + best.Name(),
	}
}
