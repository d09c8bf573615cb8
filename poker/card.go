// Package poker provides the playing cards used by the derby: ranks, suits,
// a hidden placeholder rank for cards that are never shown, and a seeded
// deck.
package poker

import (
	"fmt"
	"strings"
)

// Suit represents a card suit
type Suit uint8

const (
	Clubs Suit = iota
	Diamonds
	Hearts
	Spades
)

var suitSymbols = [...]string{"♣", "♦", "♥", "♠"}

// String returns the suit symbol
func (s Suit) String() string {
	if int(s) < len(suitSymbols) {
		return suitSymbols[s]
	}
	return "?"
}

// IsRed returns true for hearts and diamonds
func (s Suit) IsRed() bool {
	return s == Hearts || s == Diamonds
}

// Rank represents a card rank. Hidden is the placeholder rank of a card
// whose face is never revealed.
type Rank uint8

const (
	Hidden Rank = iota
	Two    Rank = iota + 1
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
)

// String returns the short rank symbol used in card text ("10", "J", "?")
func (r Rank) String() string {
	switch {
	case r == Hidden:
		return "?"
	case r >= Two && r <= Ten:
		return fmt.Sprintf("%d", int(r))
	case r == Jack:
		return "J"
	case r == Queen:
		return "Q"
	case r == King:
		return "K"
	case r == Ace:
		return "A"
	}
	return "?"
}

// Name returns the long rank name ("Ace", "10")
func (r Rank) Name() string {
	switch r {
	case Jack:
		return "Jack"
	case Queen:
		return "Queen"
	case King:
		return "King"
	case Ace:
		return "Ace"
	case Hidden:
		return "Unknown"
	}
	if r.Valid() {
		return r.String()
	}
	return "Unknown"
}

// Value returns the numeric strength of the rank: 2..14, 0 for Hidden.
func (r Rank) Value() int {
	if !r.Valid() || r == Hidden {
		return 0
	}
	return int(r)
}

// Valid reports whether r is Hidden or one of Two..Ace
func (r Rank) Valid() bool {
	return r == Hidden || (r >= Two && r <= Ace)
}

// Card is an immutable playing card
type Card struct {
	Rank Rank
	Suit Suit
}

// NewCard creates a card
func NewCard(rank Rank, suit Suit) Card {
	return Card{Rank: rank, Suit: suit}
}

// HiddenCard returns a placeholder card with the given suit
func HiddenCard(suit Suit) Card {
	return Card{Rank: Hidden, Suit: suit}
}

// IsHidden reports whether the card is a placeholder
func (c Card) IsHidden() bool {
	return c.Rank == Hidden
}

// String returns the card text, rank then suit symbol (e.g. "A♠", "10♥").
func (c Card) String() string {
	return c.Rank.String() + c.Suit.String()
}

// MarshalText implements encoding.TextMarshaler
func (c Card) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (c *Card) UnmarshalText(text []byte) error {
	parsed, err := ParseCard(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseCard parses a single card. Ranks may be written 2-10, T, J, Q, K, A
// or ? and suits as symbols or the letters c, d, h, s (case-insensitive).
func ParseCard(s string) (Card, error) {
	s = strings.TrimSpace(s)
	for i, sym := range suitSymbols {
		if strings.HasSuffix(s, sym) {
			rank, err := parseRank(strings.TrimSuffix(s, sym))
			if err != nil {
				return Card{}, fmt.Errorf("invalid card %q: %w", s, err)
			}
			return Card{Rank: rank, Suit: Suit(i)}, nil
		}
	}
	if len(s) < 2 {
		return Card{}, fmt.Errorf("invalid card %q: too short", s)
	}
	suit, err := parseSuitLetter(s[len(s)-1])
	if err != nil {
		return Card{}, fmt.Errorf("invalid card %q: %w", s, err)
	}
	rank, err := parseRank(s[:len(s)-1])
	if err != nil {
		return Card{}, fmt.Errorf("invalid card %q: %w", s, err)
	}
	return Card{Rank: rank, Suit: suit}, nil
}

// MustParseCard parses a card and panics on error. Intended for tests and
// fixed tables.
func MustParseCard(s string) Card {
	c, err := ParseCard(s)
	if err != nil {
		panic(err)
	}
	return c
}

// ParseCards parses a whitespace separated list of cards
func ParseCards(s string) ([]Card, error) {
	fields := strings.Fields(s)
	cards := make([]Card, 0, len(fields))
	for _, f := range fields {
		c, err := ParseCard(f)
		if err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, nil
}

// MustParseCards is ParseCards that panics on error
func MustParseCards(s string) []Card {
	cards, err := ParseCards(s)
	if err != nil {
		panic(err)
	}
	return cards
}

func parseRank(s string) (Rank, error) {
	switch strings.ToUpper(s) {
	case "?":
		return Hidden, nil
	case "T", "10":
		return Ten, nil
	case "J":
		return Jack, nil
	case "Q":
		return Queen, nil
	case "K":
		return King, nil
	case "A":
		return Ace, nil
	}
	if len(s) == 1 && s[0] >= '2' && s[0] <= '9' {
		return Rank(s[0]-'0'), nil
	}
	return Hidden, fmt.Errorf("unknown rank %q", s)
}

func parseSuitLetter(b byte) (Suit, error) {
	switch b {
	case 'c', 'C':
		return Clubs, nil
	case 'd', 'D':
		return Diamonds, nil
	case 'h', 'H':
		return Hearts, nil
	case 's', 'S':
		return Spades, nil
	}
	return Clubs, fmt.Errorf("unknown suit %q", string(b))
}
