package game

import (
	"errors"
	"fmt"
	rand "math/rand/v2"
	"strconv"

	"github.com/lox/pokerderby/poker"
)

// Table is everything a session needs to start a game: who plays, which
// hands compete, and the hidden run-out the board is revealed from.
type Table struct {
	Players         []Player
	Hands           []Hand
	Runout          []poker.Card // BoardSize cards, revealed round by round
	CurrentPlayerID string       // Defaults to the first player
}

// TableSource produces a fresh table for every Initialize and Reset
type TableSource func() (Table, error)

// StaticTable returns a source that always yields a copy of t
func StaticTable(t Table) TableSource {
	return func() (Table, error) {
		return t.clone(), nil
	}
}

// Validate checks the structural invariants of a table
func (t Table) Validate(cfg Config) error {
	if len(t.Players) == 0 {
		return errors.New("table has no players")
	}
	if len(t.Players) > cfg.MaxPlayers {
		return fmt.Errorf("table has %d players, maximum is %d", len(t.Players), cfg.MaxPlayers)
	}
	seen := make(map[string]bool, len(t.Players))
	for _, p := range t.Players {
		if p.ID == "" {
			return errors.New("player with empty id")
		}
		if seen[p.ID] {
			return fmt.Errorf("duplicate player id %q", p.ID)
		}
		seen[p.ID] = true
		if p.Chips < 0 {
			return fmt.Errorf("player %q has negative chips", p.ID)
		}
	}

	if len(t.Hands) == 0 {
		return errors.New("table has no hands")
	}
	seen = make(map[string]bool, len(t.Hands))
	for _, h := range t.Hands {
		if h.ID == "" {
			return errors.New("hand with empty id")
		}
		if seen[h.ID] {
			return fmt.Errorf("duplicate hand id %q", h.ID)
		}
		seen[h.ID] = true
		if h.Pot < 0 {
			return fmt.Errorf("hand %q has a negative pot", h.ID)
		}
		for _, c := range h.Cards {
			if c.IsHidden() != h.IsDarkHorse {
				return fmt.Errorf("hand %q: card %s does not match dark horse=%t", h.ID, c, h.IsDarkHorse)
			}
		}
	}

	if len(t.Runout) != BoardSize {
		return fmt.Errorf("run-out has %d cards, want %d", len(t.Runout), BoardSize)
	}
	for _, c := range t.Runout {
		if c.IsHidden() {
			return errors.New("run-out contains a hidden card")
		}
	}

	if t.CurrentPlayerID != "" && !t.hasPlayer(t.CurrentPlayerID) {
		return fmt.Errorf("current player %q is not seated", t.CurrentPlayerID)
	}
	return nil
}

func (t Table) hasPlayer(id string) bool {
	for _, p := range t.Players {
		if p.ID == id {
			return true
		}
	}
	return false
}

func (t Table) clone() Table {
	c := Table{
		Players:         make([]Player, len(t.Players)),
		Hands:           append([]Hand(nil), t.Hands...),
		Runout:          append([]poker.Card(nil), t.Runout...),
		CurrentPlayerID: t.CurrentPlayerID,
	}
	for i, p := range t.Players {
		c.Players[i] = p.clone()
	}
	return c
}

// TableSpec describes a table to deal
type TableSpec struct {
	PlayerNames []string
	StartChips  int
	Hands       int      // Revealed hands, not counting the Dark Horse
	DarkHorse   bool     // Add a hidden hand after the revealed ones
	Labels      []string // Optional labels for the revealed hands
}

// DealTable deals a table from a deck shuffled with rng. Players get ids
// "1".."n" and hands "hand1".."handN"; the Dark Horse, when enabled, is the
// last hand and carries placeholder cards.
func DealTable(rng *rand.Rand, spec TableSpec) (Table, error) {
	if len(spec.PlayerNames) == 0 {
		return Table{}, errors.New("at least one player is required")
	}
	if spec.StartChips < 0 {
		return Table{}, fmt.Errorf("start chips must not be negative, got %d", spec.StartChips)
	}
	if spec.Hands <= 0 && !spec.DarkHorse {
		return Table{}, errors.New("at least one hand is required")
	}
	if need := spec.Hands*2 + BoardSize; spec.Hands < 0 || need > poker.DeckSize {
		return Table{}, fmt.Errorf("cannot deal %d hands from one deck", spec.Hands)
	}

	deck := poker.NewDeck(rng)
	t := Table{}

	for i, name := range spec.PlayerNames {
		t.Players = append(t.Players, Player{
			ID:    strconv.Itoa(i + 1),
			Name:  name,
			Chips: spec.StartChips,
			Bets:  map[string]int{},
		})
	}

	for i := range spec.Hands {
		cards, _ := deck.Deal(2)
		label := fmt.Sprintf("Hand %d", i+1)
		if i < len(spec.Labels) && spec.Labels[i] != "" {
			label = spec.Labels[i]
		}
		t.Hands = append(t.Hands, Hand{
			ID:    handID(i),
			Label: label,
			Cards: [2]poker.Card{cards[0], cards[1]},
		})
	}

	if spec.DarkHorse {
		t.Hands = append(t.Hands, Hand{
			ID:          handID(len(t.Hands)),
			Label:       "Dark Horse",
			Cards:       [2]poker.Card{poker.HiddenCard(poker.Hearts), poker.HiddenCard(poker.Spades)},
			IsDarkHorse: true,
		})
	}

	t.Runout, _ = deck.Deal(BoardSize)
	return t, nil
}

func handID(i int) string {
	return "hand" + strconv.Itoa(i+1)
}
