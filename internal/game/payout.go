package game

// Payout is the settlement of one winning hand
type Payout struct {
	HandID    string         `json:"handId"`
	Score     Score          `json:"score"`
	WinnerIDs []string       `json:"winnerIds"`
	Stakes    map[string]int `json:"stakes,omitempty"` // winner ID -> amount staked on the hand
	Amount    int            `json:"amount"`
}

// Unclaimed reports whether nobody backed the winning hand
func (p Payout) Unclaimed() bool {
	return len(p.WinnerIDs) == 0
}

// TotalStake returns the sum of the winners' stakes
func (p Payout) TotalStake() int {
	total := 0
	for _, s := range p.Stakes {
		total += s
	}
	return total
}

// Settle scores every hand and returns one Payout per winning hand, in hand
// order. Hands win by rank class alone: every hand sharing the best class
// wins, whatever its Value. Every backer of a winning hand is listed as a
// winner and Amount is the hand's whole pot; it is not divided by stake.
func Settle(hands []Hand, board Board, players []Player, score Scorer) []Payout {
	if len(hands) == 0 {
		return nil
	}
	if score == nil {
		score = HighCardScore
	}

	scores := make([]Score, len(hands))
	best := scores[0].Rank
	for i, h := range hands {
		scores[i] = score(h, board)
		if i == 0 || scores[i].Rank > best {
			best = scores[i].Rank
		}
	}

	var payouts []Payout
	for i, h := range hands {
		if scores[i].Rank != best {
			continue
		}

		p := Payout{
			HandID:    h.ID,
			Score:     scores[i],
			WinnerIDs: []string{},
			Amount:    h.Pot,
		}
		for _, pl := range players {
			if stake := pl.Bets[h.ID]; stake > 0 {
				p.WinnerIDs = append(p.WinnerIDs, pl.ID)
				if p.Stakes == nil {
					p.Stakes = make(map[string]int)
				}
				p.Stakes[pl.ID] = stake
			}
		}
		payouts = append(payouts, p)
	}
	return payouts
}
