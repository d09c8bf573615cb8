package game

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lox/pokerderby/poker"
)

func TestHighCardScore(t *testing.T) {
	t.Parallel()

	flop := Board{Flop: poker.MustParseCards("7♠ 4♦ 2♥")}

	tests := []struct {
		name  string
		hand  Hand
		board Board
		want  Score
	}{
		{
			name:  "hand card is highest",
			hand:  Hand{ID: "h", Cards: cards2("K♠ 3♣")},
			board: flop,
			want:  Score{Rank: HighCard, Value: 13, Label: "High Card: King"},
		},
		{
			name:  "board card is highest",
			hand:  Hand{ID: "h", Cards: cards2("5♠ 3♣")},
			board: flop,
			want:  Score{Rank: HighCard, Value: 7, Label: "High Card: 7"},
		},
		{
			name:  "ace on the board",
			hand:  Hand{ID: "h", Cards: cards2("J♠ 3♣")},
			board: Board{Flop: poker.MustParseCards("A♠ 4♦ 2♥")},
			want:  Score{Rank: HighCard, Value: 14, Label: "High Card: Ace"},
		},
		{
			name:  "empty board",
			hand:  Hand{ID: "h", Cards: cards2("10♥ 9♦")},
			board: Board{},
			want:  Score{Rank: HighCard, Value: 10, Label: "High Card: 10"},
		},
		{
			name:  "dark horse always scores zero",
			hand:  Hand{ID: "h", Cards: cards2("?♥ ?♠"), IsDarkHorse: true},
			board: Board{Flop: poker.MustParseCards("A♠ K♦ Q♥")},
			want:  Score{Rank: HighCard, Value: 0, Label: "Dark Horse (Hidden)"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HighCardScore(tt.hand, tt.board))
		})
	}
}

func TestHighCardScoreUsesTurnAndRiver(t *testing.T) {
	t.Parallel()

	runout := poker.MustParseCards("2♠ 3♦ 4♥ 5♣ A♦")
	hand := Hand{ID: "h", Cards: cards2("6♠ 7♣")}

	assert.Equal(t, 7, HighCardScore(hand, revealBoard(runout, 4)).Value)
	assert.Equal(t, 14, HighCardScore(hand, revealBoard(runout, 5)).Value)
}

func TestHandRankString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "High Card", HighCard.String())
	assert.Equal(t, "Royal Flush", RoyalFlush.String())
	assert.Equal(t, "HandRank(42)", HandRank(42).String())
}
