package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rankedScorer gives the listed hands the given rank and everything else
// HighCard
func rankedScorer(ranks map[string]HandRank) Scorer {
	return func(h Hand, b Board) Score {
		if r, ok := ranks[h.ID]; ok {
			return Score{Rank: r, Value: int(r), Label: r.String()}
		}
		return HighCardScore(h, b)
	}
}

func TestSettleUniqueWinner(t *testing.T) {
	t.Parallel()

	table := derbyTable()
	table.Players[0].Bets = map[string]int{"hand1": 50, "hand2": 20}
	table.Players[1].Bets = map[string]int{"hand1": 10}
	table.Players[2].Bets = map[string]int{"hand3": 100}

	payouts := Settle(table.Hands, revealBoard(table.Runout, 5), table.Players,
		rankedScorer(map[string]HandRank{"hand1": Flush}))

	require.Len(t, payouts, 1)
	p := payouts[0]
	assert.Equal(t, "hand1", p.HandID)
	assert.Equal(t, []string{"1", "2"}, p.WinnerIDs)
	assert.Equal(t, 245, p.Amount)
	assert.Equal(t, Flush, p.Score.Rank)
	assert.False(t, p.Unclaimed())
}

func TestSettleAmountIsWholePot(t *testing.T) {
	t.Parallel()

	// Stakes differ, but every backer is listed against the full pot rather
	// than a proportional share.
	hands := []Hand{{ID: "a", Cards: cards2("A♠ K♠"), Pot: 300}}
	players := []Player{
		{ID: "1", Bets: map[string]int{"a": 250}},
		{ID: "2", Bets: map[string]int{"a": 50}},
	}

	payouts := Settle(hands, Board{}, players, nil)

	require.Len(t, payouts, 1)
	assert.Equal(t, 300, payouts[0].Amount)
	assert.Equal(t, map[string]int{"1": 250, "2": 50}, payouts[0].Stakes)
	assert.Equal(t, 300, payouts[0].TotalStake())
}

func TestSettleTiesShareRankClass(t *testing.T) {
	t.Parallel()

	table := derbyTable()
	board := revealBoard(table.Runout, 5)

	// Every hand scores HighCard with the default scorer, so all of them
	// win regardless of value, including the Dark Horse.
	payouts := Settle(table.Hands, board, table.Players, HighCardScore)

	require.Len(t, payouts, len(table.Hands))
	for i, p := range payouts {
		assert.Equal(t, table.Hands[i].ID, p.HandID)
		assert.Equal(t, table.Hands[i].Pot, p.Amount)
	}
	assert.Equal(t, 0, payouts[4].Score.Value)
}

func TestSettleUnclaimedHand(t *testing.T) {
	t.Parallel()

	table := derbyTable()
	table.Players[0].Bets = map[string]int{"hand2": 40}

	payouts := Settle(table.Hands, Board{}, table.Players,
		rankedScorer(map[string]HandRank{"hand1": Pair}))

	require.Len(t, payouts, 1)
	assert.Equal(t, "hand1", payouts[0].HandID)
	assert.Empty(t, payouts[0].WinnerIDs)
	assert.NotNil(t, payouts[0].WinnerIDs)
	assert.True(t, payouts[0].Unclaimed())
	assert.Equal(t, 245, payouts[0].Amount)
}

func TestSettleIgnoresZeroBets(t *testing.T) {
	t.Parallel()

	hands := []Hand{{ID: "a", Cards: cards2("2♠ 3♠"), Pot: 10}}
	players := []Player{
		{ID: "1", Bets: map[string]int{"a": 0}},
		{ID: "2", Bets: map[string]int{"a": 10}},
		{ID: "3"},
	}

	payouts := Settle(hands, Board{}, players, nil)

	require.Len(t, payouts, 1)
	assert.Equal(t, []string{"2"}, payouts[0].WinnerIDs)
}

func TestSettleNoHands(t *testing.T) {
	t.Parallel()

	assert.Nil(t, Settle(nil, Board{}, nil, nil))
}
