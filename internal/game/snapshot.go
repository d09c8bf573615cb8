package game

import (
	"maps"
	"slices"
)

// Snapshot is a read-only copy of a session's state for presentation
type Snapshot struct {
	RoomCode        string         `json:"roomCode"`
	Connected       bool           `json:"connected"`
	Round           Round          `json:"round"`
	RoundIndex      int            `json:"roundIndex"`
	TimeRemaining   int            `json:"timeRemaining"`
	RoundProgress   int            `json:"roundProgress"`
	Animating       bool           `json:"animating"`
	BettingLocked   bool           `json:"bettingLocked"`
	CanReady        bool           `json:"canReady"`
	CurrentPlayerID string         `json:"currentPlayerId"`
	Players         []Player       `json:"players"`
	Hands           []Hand         `json:"hands"`
	Board           Board          `json:"board"`
	SelectedHands   []string       `json:"selectedHands"`
	BetAmount       int            `json:"betAmount"`
	TotalBet        int            `json:"totalBet"`
	Ready           bool           `json:"ready"`
	HasConfirmedBet bool           `json:"hasConfirmedBet"`
	Notifications   []Notification `json:"notifications"`
	Chat            []ChatMessage  `json:"chat"`
	Finished        bool           `json:"finished"`
	Results         []Payout       `json:"results,omitempty"`
}

// Player returns the player with the given id
func (s Snapshot) Player(id string) (Player, bool) {
	for _, p := range s.Players {
		if p.ID == id {
			return p, true
		}
	}
	return Player{}, false
}

// Hand returns the hand with the given id
func (s Snapshot) Hand(id string) (Hand, bool) {
	for _, h := range s.Hands {
		if h.ID == id {
			return h, true
		}
	}
	return Hand{}, false
}

// IsSelected reports whether a hand is in the current selection
func (s Snapshot) IsSelected(handID string) bool {
	return slices.Contains(s.SelectedHands, handID)
}

func (s *Session) snapshotLocked() Snapshot {
	st := &s.state

	players := make([]Player, len(st.players))
	ready := false
	for i, p := range st.players {
		players[i] = p.clone()
		if p.ID == st.currentPlayerID {
			ready = p.IsReady
		}
	}

	snap := Snapshot{
		RoomCode:        st.roomCode,
		Connected:       st.connected,
		Round:           st.round,
		RoundIndex:      int(st.round),
		TimeRemaining:   st.timeRemaining,
		RoundProgress:   st.round.Progress(),
		Animating:       st.animating,
		BettingLocked:   st.round.IsTerminal(),
		CanReady:        s.canReadyLocked(),
		CurrentPlayerID: st.currentPlayerID,
		Players:         players,
		Hands:           slices.Clone(st.hands),
		Board:           st.board.clone(),
		SelectedHands:   slices.Clone(st.selected),
		BetAmount:       st.betAmount,
		TotalBet:        st.betAmount * len(st.selected),
		Ready:           ready,
		HasConfirmedBet: st.hasConfirmedBet,
		Notifications:   slices.Clone(st.notifications),
		Chat:            slices.Clone(st.chat),
		Finished:        st.finished,
	}
	if snap.Hands == nil {
		snap.Hands = []Hand{}
	}
	if snap.SelectedHands == nil {
		snap.SelectedHands = []string{}
	}
	if snap.Notifications == nil {
		snap.Notifications = []Notification{}
	}
	if snap.Chat == nil {
		snap.Chat = []ChatMessage{}
	}
	if st.finished {
		snap.Results = clonePayouts(s.results)
	}
	return snap
}

func clonePayouts(payouts []Payout) []Payout {
	out := make([]Payout, len(payouts))
	for i, p := range payouts {
		p.WinnerIDs = slices.Clone(p.WinnerIDs)
		p.Stakes = maps.Clone(p.Stakes)
		out[i] = p
	}
	return out
}
