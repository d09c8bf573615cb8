package game

import (
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/require"

	"github.com/lox/pokerderby/poker"
)

// derbyTable is the four player, five hand table used across the tests
func derbyTable() Table {
	return Table{
		Players: []Player{
			{ID: "1", Name: "Alex", Chips: 1250},
			{ID: "2", Name: "Sarah", Chips: 890},
			{ID: "3", Name: "Mike", Chips: 1560},
			{ID: "4", Name: "Luna", Chips: 720},
		},
		Hands: []Hand{
			{ID: "hand1", Label: "Royal Flush", Cards: cards2("A♥ K♥"), Pot: 245},
			{ID: "hand2", Label: "Full House", Cards: cards2("K♠ K♣"), Pot: 180},
			{ID: "hand3", Label: "Straight", Cards: cards2("9♦ 10♥"), Pot: 165},
			{ID: "hand4", Label: "Two Pair", Cards: cards2("Q♣ Q♦"), Pot: 95},
			{ID: "hand5", Label: "Dark Horse", Cards: cards2("?♥ ?♠"), Pot: 420, IsDarkHorse: true},
		},
		Runout: poker.MustParseCards("A♠ K♦ Q♥ J♣ 3♦"),
	}
}

func cards2(s string) [2]poker.Card {
	c := poker.MustParseCards(s)
	return [2]poker.Card{c[0], c[1]}
}

func testLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}

// sequentialIDs returns an id generator yielding n1, n2, ...
func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("n%d", n)
	}
}

func newTestSession(t *testing.T, opts ...SessionOption) (*Session, *quartz.Mock) {
	t.Helper()

	clock := quartz.NewMock(t)
	opts = append([]SessionOption{
		WithClock(clock),
		WithLogger(testLogger()),
		WithIDGenerator(sequentialIDs()),
	}, opts...)

	s, err := NewSession(DefaultConfig(), StaticTable(derbyTable()), opts...)
	require.NoError(t, err)
	require.NoError(t, s.Initialize(""))
	return s, clock
}

// advanceTo moves the session into round r with the reveal animation done
func advanceTo(t *testing.T, s *Session, r Round) {
	t.Helper()
	for s.Status().Round != r {
		s.AdvanceRound()
		s.SetAnimationState(false)
	}
}

// withoutNotifications strips the notification queue for comparisons
func withoutNotifications(snap Snapshot) Snapshot {
	snap.Notifications = nil
	return snap
}

func joinCards(cards []poker.Card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}
