package game

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionInitialize(t *testing.T) {
	t.Parallel()

	s, _ := newTestSession(t)
	snap := s.Snapshot()

	assert.Equal(t, DefaultRoomCode, snap.RoomCode)
	assert.True(t, snap.Connected)
	assert.Equal(t, OutOfTheGate, snap.Round)
	assert.Equal(t, 15, snap.TimeRemaining)
	assert.Equal(t, 25, snap.RoundProgress)
	assert.Equal(t, "1", snap.CurrentPlayerID)
	assert.Equal(t, 10, snap.BetAmount)
	assert.Empty(t, snap.SelectedHands)
	assert.Empty(t, snap.Board.Cards())
	assert.False(t, snap.Finished)
	assert.True(t, snap.CanReady)

	require.Len(t, snap.Notifications, 1)
	assert.Equal(t, msgRoundStarted, snap.Notifications[0].Message)
	assert.Equal(t, NotifyInfo, snap.Notifications[0].Kind)
}

func TestSessionInitializeRoomCode(t *testing.T) {
	t.Parallel()

	s, _ := newTestSession(t)
	require.NoError(t, s.Initialize("ABC123"))
	assert.Equal(t, "ABC123", s.Snapshot().RoomCode)
}

func TestSessionInitializeRejectsBadTable(t *testing.T) {
	t.Parallel()

	table := derbyTable()
	for i := range 3 {
		table.Players = append(table.Players, Player{ID: string(rune('5' + i)), Name: "extra"})
	}

	s, err := NewSession(DefaultConfig(), StaticTable(table), WithLogger(testLogger()))
	require.NoError(t, err)

	err = s.Initialize("")
	assert.ErrorContains(t, err, "maximum is 6")
	assert.False(t, s.Snapshot().Connected)
	assert.Empty(t, s.Snapshot().Players)
}

func TestSessionInitializeSourceError(t *testing.T) {
	t.Parallel()

	s, _ := newTestSession(t)
	s.source = func() (Table, error) { return Table{}, errors.New("deck jammed") }

	before := s.Snapshot()
	err := s.Initialize("OTHER")
	assert.ErrorContains(t, err, "deck jammed")
	assert.Equal(t, before, s.Snapshot())
}

func TestNewSessionInvalidConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.MinBet = 0
	_, err := NewSession(cfg, StaticTable(derbyTable()))
	assert.Error(t, err)

	_, err = NewSession(DefaultConfig(), nil)
	assert.Error(t, err)
}

func TestPlaceBetAcrossHands(t *testing.T) {
	t.Parallel()

	s, _ := newTestSession(t)

	require.NoError(t, s.SelectHand("hand1"))
	require.NoError(t, s.SelectHand("hand2"))
	require.NoError(t, s.SetBetAmount(50))
	assert.Equal(t, 100, s.CurrentTotalBet())
	assert.False(t, s.CanReady(), "pending selection must be confirmed first")

	require.NoError(t, s.PlaceBet())

	snap := s.Snapshot()
	alex, ok := snap.Player("1")
	require.True(t, ok)
	assert.Equal(t, 1150, alex.Chips)
	assert.Equal(t, map[string]int{"hand1": 50, "hand2": 50}, alex.Bets)
	assert.True(t, snap.HasConfirmedBet)
	assert.True(t, snap.CanReady)

	h1, _ := snap.Hand("hand1")
	h2, _ := snap.Hand("hand2")
	assert.Equal(t, 295, h1.Pot)
	assert.Equal(t, 230, h2.Pot)

	last := snap.Notifications[len(snap.Notifications)-1]
	assert.Equal(t, "Bet $100 placed on 2 hand(s)!", last.Message)
	assert.Equal(t, NotifyAction, last.Kind)
}

func TestPlaceBetAccumulates(t *testing.T) {
	t.Parallel()

	s, _ := newTestSession(t)

	require.NoError(t, s.SelectHand("hand3"))
	require.NoError(t, s.SetBetAmount(20))
	require.NoError(t, s.PlaceBet())
	require.NoError(t, s.PlaceBet())

	alex, _ := s.CurrentPlayer()
	assert.Equal(t, 40, alex.Bets["hand3"])
	assert.Equal(t, 1210, alex.Chips)
	assert.Equal(t, 40, alex.TotalStaked())
}

func TestPlaceBetRejections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		setup func(t *testing.T, s *Session)
		want  error
	}{
		{
			name:  "no selection",
			setup: func(t *testing.T, s *Session) {},
			want:  ErrNoHandSelected,
		},
		{
			name: "more than stack",
			setup: func(t *testing.T, s *Session) {
				require.NoError(t, s.SelectHand("hand1"))
				require.NoError(t, s.SetBetAmount(2000))
			},
			want: ErrInsufficientChips,
		},
		{
			name: "total exceeds stack",
			setup: func(t *testing.T, s *Session) {
				require.NoError(t, s.SelectHand("hand1"))
				require.NoError(t, s.SelectHand("hand2"))
				require.NoError(t, s.SetBetAmount(700))
			},
			want: ErrInsufficientTotalChips,
		},
		{
			name: "no current player",
			setup: func(t *testing.T, s *Session) {
				require.NoError(t, s.SelectHand("hand1"))
				s.mu.Lock()
				s.state.currentPlayerID = "missing"
				s.mu.Unlock()
			},
			want: ErrNoCurrentPlayer,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestSession(t)
			tt.setup(t, s)

			before := s.Snapshot()
			err := s.PlaceBet()
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, before, s.Snapshot())
		})
	}
}

func TestSetBetAmountFloorsAtMinimum(t *testing.T) {
	t.Parallel()

	s, _ := newTestSession(t)
	require.NoError(t, s.SetBetAmount(3))
	assert.Equal(t, 10, s.Snapshot().BetAmount)

	require.NoError(t, s.SetBetAmount(-50))
	assert.Equal(t, 10, s.Snapshot().BetAmount)
}

func TestSetBetAmountUnconfirmsBet(t *testing.T) {
	t.Parallel()

	s, _ := newTestSession(t)
	require.NoError(t, s.SelectHand("hand1"))
	require.NoError(t, s.PlaceBet())
	require.True(t, s.CanReady())

	require.NoError(t, s.SetBetAmount(30))
	assert.False(t, s.Snapshot().HasConfirmedBet)
	assert.False(t, s.CanReady())
}

func TestDeselectHandUnconfirmsBet(t *testing.T) {
	t.Parallel()

	s, _ := newTestSession(t)
	require.NoError(t, s.SelectHand("hand1"))
	require.NoError(t, s.SelectHand("hand2"))
	require.NoError(t, s.PlaceBet())
	require.True(t, s.CanReady())

	require.NoError(t, s.DeselectHand("hand2"))

	snap := s.Snapshot()
	assert.Equal(t, []string{"hand1"}, snap.SelectedHands)
	assert.False(t, snap.HasConfirmedBet)
	assert.False(t, snap.CanReady)

	require.NoError(t, s.DeselectHand("hand1"))
	assert.True(t, s.CanReady(), "nothing pending means betting can be skipped")
}

func TestSelectHandIsIdempotent(t *testing.T) {
	t.Parallel()

	s, _ := newTestSession(t)
	require.NoError(t, s.SelectHand("hand4"))
	require.NoError(t, s.SelectHand("hand4"))
	assert.Equal(t, []string{"hand4"}, s.Snapshot().SelectedHands)
}

func TestUnknownHandRejected(t *testing.T) {
	t.Parallel()

	s, _ := newTestSession(t)
	err := s.SelectHand("hand9")
	assert.ErrorIs(t, err, ErrUnknownHand)

	snap := s.Snapshot()
	assert.Empty(t, snap.SelectedHands)
	assert.Contains(t, snap.Notifications[len(snap.Notifications)-1].Message, "hand9")

	assert.ErrorIs(t, s.DeselectHand("hand9"), ErrUnknownHand)
}

func TestBettingLockedInPhotoFinish(t *testing.T) {
	t.Parallel()

	s, _ := newTestSession(t)
	advanceTo(t, s, PhotoFinish)
	require.True(t, s.IsBettingLocked())

	actions := map[string]func() error{
		"select":   func() error { return s.SelectHand("hand1") },
		"deselect": func() error { return s.DeselectHand("hand1") },
		"amount":   func() error { return s.SetBetAmount(100) },
		"place":    func() error { return s.PlaceBet() },
	}

	for name, action := range actions {
		before := s.Snapshot()
		err := action()
		after := s.Snapshot()

		assert.ErrorIs(t, err, ErrBettingLocked, name)
		assert.Equal(t, withoutNotifications(before), withoutNotifications(after), name)
		require.Len(t, after.Notifications, len(before.Notifications)+1, name)
		assert.Equal(t, msgBettingLocked, after.Notifications[len(after.Notifications)-1].Message, name)
	}

	assert.False(t, s.CanReady())
	assert.True(t, s.Snapshot().BettingLocked)
}

func TestSetReadyRequiresStake(t *testing.T) {
	t.Parallel()

	s, _ := newTestSession(t)

	err := s.SetReady(true)
	assert.ErrorIs(t, err, ErrNoStake)
	snap := s.Snapshot()
	assert.False(t, snap.Ready)
	assert.Equal(t, msgNeedStake, snap.Notifications[len(snap.Notifications)-1].Message)

	require.NoError(t, s.SelectHand("hand1"))
	require.NoError(t, s.PlaceBet())
	require.NoError(t, s.SetReady(true))
	assert.True(t, s.Snapshot().Ready)

	require.NoError(t, s.SetReady(false))
	assert.False(t, s.Snapshot().Ready)
}

func TestSetReadyWithoutCurrentPlayer(t *testing.T) {
	t.Parallel()

	for _, ready := range []bool{true, false} {
		s, _ := newTestSession(t)
		s.mu.Lock()
		s.state.currentPlayerID = "missing"
		s.mu.Unlock()

		before := len(s.Snapshot().Notifications)
		err := s.SetReady(ready)
		require.Error(t, err)

		snap := s.Snapshot()
		require.Len(t, snap.Notifications, before+1)
		last := snap.Notifications[len(snap.Notifications)-1].Message
		if ready {
			assert.ErrorIs(t, err, ErrNoStake)
			assert.Equal(t, msgNeedStake, last)
		} else {
			assert.ErrorIs(t, err, ErrNoCurrentPlayer)
			assert.Equal(t, msgNoPlayer, last)
		}
	}
}

func TestSetCurrentPlayer(t *testing.T) {
	t.Parallel()

	s, _ := newTestSession(t)
	require.NoError(t, s.SetCurrentPlayer("3"))
	assert.Equal(t, 1560, s.CurrentPlayerChips())

	assert.ErrorIs(t, s.SetCurrentPlayer("nope"), ErrUnknownPlayer)
	assert.Equal(t, "3", s.Snapshot().CurrentPlayerID)
}

func TestTick(t *testing.T) {
	t.Parallel()

	s, _ := newTestSession(t)
	s.Tick()
	s.Tick()
	assert.Equal(t, 13, s.Status().TimeRemaining)

	s.SetAnimationState(true)
	s.Tick()
	assert.Equal(t, 13, s.Status().TimeRemaining, "ticks are dropped while animating")
	s.SetAnimationState(false)

	for range 20 {
		s.Tick()
	}
	assert.Equal(t, 0, s.Status().TimeRemaining)
}

func TestAutoAdvanceOnTimeout(t *testing.T) {
	t.Parallel()

	s, _ := newTestSession(t)
	require.NoError(t, s.SelectHand("hand2"))
	require.NoError(t, s.SetBetAmount(40))
	require.NoError(t, s.PlaceBet())

	assert.False(t, s.AutoAdvance())

	for range 15 {
		s.Tick()
	}
	require.True(t, s.Status().ShouldAdvance)
	require.True(t, s.AutoAdvance())

	snap := s.Snapshot()
	assert.Equal(t, InTheRunning, snap.Round)
	assert.Equal(t, 15, snap.TimeRemaining)
	assert.True(t, snap.Animating)
	assert.Empty(t, snap.SelectedHands)
	assert.Equal(t, 10, snap.BetAmount)
	assert.False(t, snap.HasConfirmedBet)
	assert.Len(t, snap.Board.Flop, 3)
	assert.Nil(t, snap.Board.Turn)

	// Bets and chips carry over between rounds
	alex, _ := snap.Player("1")
	assert.Equal(t, 40, alex.Bets["hand2"])
	assert.Equal(t, 1210, alex.Chips)

	n := len(snap.Notifications)
	assert.Equal(t, msgFlopDealt, snap.Notifications[n-2].Message)
	assert.Equal(t, "In the Running phase begins!", snap.Notifications[n-1].Message)
	assert.Equal(t, NotifyTimer, snap.Notifications[n-1].Kind)
}

func TestAutoAdvanceNotWhileAnimating(t *testing.T) {
	t.Parallel()

	s, _ := newTestSession(t)
	for range 15 {
		s.Tick()
	}
	s.SetAnimationState(true)
	assert.False(t, s.Status().ShouldAdvance)
	assert.False(t, s.AutoAdvance())
	assert.Equal(t, OutOfTheGate, s.Status().Round)
}

func TestAutoAdvanceWhenAllReady(t *testing.T) {
	t.Parallel()

	s, _ := newTestSession(t)
	for _, id := range []string{"1", "2", "3", "4"} {
		require.NoError(t, s.SetCurrentPlayer(id))
		require.NoError(t, s.SelectHand("hand1"))
		require.NoError(t, s.PlaceBet())
		if id != "4" {
			require.NoError(t, s.SetReady(true))
			assert.False(t, s.Status().ShouldAdvance)
		}
	}
	require.NoError(t, s.SetReady(true))

	require.True(t, s.AutoAdvance())
	snap := s.Snapshot()
	assert.Equal(t, InTheRunning, snap.Round)
	for _, p := range snap.Players {
		assert.False(t, p.IsReady, p.Name)
	}
}

func TestBoardRevealByRound(t *testing.T) {
	t.Parallel()

	s, _ := newTestSession(t)
	want := map[Round]int{OutOfTheGate: 0, InTheRunning: 3, FinalFurlong: 4, PhotoFinish: 5}

	for _, r := range Rounds() {
		advanceTo(t, s, r)
		board := s.Snapshot().Board
		assert.Equal(t, want[r], board.Len(), r.String())
	}

	board := s.Snapshot().Board
	assert.Equal(t, "A♠ K♦ Q♥", joinCards(board.Flop))
	require.NotNil(t, board.Turn)
	require.NotNil(t, board.River)
	assert.Equal(t, "J♣", board.Turn.String())
	assert.Equal(t, "3♦", board.River.String())

	last := s.Snapshot().Notifications
	assert.Equal(t, msgRiverCompletes, last[len(last)-2].Message)
}

func TestSettlementAtPhotoFinish(t *testing.T) {
	t.Parallel()

	s, _ := newTestSession(t, WithScorer(rankedScorer(map[string]HandRank{"hand2": FullHouse})))

	require.NoError(t, s.SelectHand("hand2"))
	require.NoError(t, s.SetBetAmount(100))
	require.NoError(t, s.PlaceBet())
	require.NoError(t, s.SetCurrentPlayer("2"))
	require.NoError(t, s.DeselectHand("hand2"))
	require.NoError(t, s.SelectHand("hand1"))
	require.NoError(t, s.PlaceBet())

	advanceTo(t, s, PhotoFinish)
	_, ok := s.Results()
	assert.False(t, ok)

	s.AdvanceRound()

	results, ok := s.Results()
	require.True(t, ok)
	require.Len(t, results, 1)
	assert.Equal(t, "hand2", results[0].HandID)
	assert.Equal(t, []string{"1"}, results[0].WinnerIDs)
	assert.Equal(t, 280, results[0].Amount)

	snap := s.Snapshot()
	assert.True(t, snap.Finished)
	assert.Equal(t, PhotoFinish, snap.Round)
	assert.Equal(t, results, snap.Results)
	assert.Equal(t, msgGameComplete, snap.Notifications[len(snap.Notifications)-1].Message)

	// Settlement does not move chips and does not repeat
	alex, _ := snap.Player("1")
	assert.Equal(t, 1150, alex.Chips)
	s.AdvanceRound()
	assert.False(t, s.AutoAdvance())
	assert.Len(t, s.Snapshot().Notifications, len(snap.Notifications))
}

func TestFinalRoundEndsWhenAllReady(t *testing.T) {
	t.Parallel()

	s, _ := newTestSession(t)
	for _, p := range []string{"1", "2", "3", "4"} {
		require.NoError(t, s.SetCurrentPlayer(p))
		require.NoError(t, s.SelectHand("hand3"))
		require.NoError(t, s.PlaceBet())
	}
	advanceTo(t, s, PhotoFinish)

	for _, p := range []string{"1", "2", "3", "4"} {
		require.NoError(t, s.SetCurrentPlayer(p))
		require.NoError(t, s.SetReady(true))
	}
	require.True(t, s.AutoAdvance())
	assert.True(t, s.Status().Finished)
}

func TestReset(t *testing.T) {
	t.Parallel()

	s, _ := newTestSession(t)
	require.NoError(t, s.Initialize("ROOM7"))
	require.NoError(t, s.SelectHand("hand1"))
	require.NoError(t, s.PlaceBet())
	advanceTo(t, s, FinalFurlong)

	require.NoError(t, s.Reset())

	snap := s.Snapshot()
	assert.Equal(t, "ROOM7", snap.RoomCode)
	assert.Equal(t, OutOfTheGate, snap.Round)
	alex, _ := snap.Player("1")
	assert.Equal(t, 1250, alex.Chips)
	assert.Empty(t, alex.Bets)
	h1, _ := snap.Hand("hand1")
	assert.Equal(t, 245, h1.Pot)
	require.Len(t, snap.Notifications, 1)
}

func TestChat(t *testing.T) {
	t.Parallel()

	s, _ := newTestSession(t)

	require.NoError(t, s.PostChatMessage("  go hand two  "))
	require.NoError(t, s.SetCurrentPlayer("4"))
	require.NoError(t, s.PostReaction("🔥"))
	assert.ErrorIs(t, s.PostChatMessage("   "), ErrEmptyMessage)
	notes := s.Snapshot().Notifications
	assert.Equal(t, msgEmptyMessage, notes[len(notes)-1].Message)

	chat := s.Snapshot().Chat
	require.Len(t, chat, 2)
	assert.Equal(t, "Alex", chat[0].Player)
	assert.Equal(t, "go hand two", chat[0].Message)
	assert.Equal(t, ChatText, chat[0].Kind)
	assert.Equal(t, "Luna", chat[1].Player)
	assert.Equal(t, ChatReaction, chat[1].Kind)
}

func TestChatIsCapped(t *testing.T) {
	t.Parallel()

	s, _ := newTestSession(t)
	for i := range maxChatMessages + 5 {
		require.NoError(t, s.PostChatMessage(strings.Repeat("x", i+1)))
	}

	chat := s.Snapshot().Chat
	require.Len(t, chat, maxChatMessages)
	assert.Len(t, chat[0].Message, 6)
}

func TestDismissNotification(t *testing.T) {
	t.Parallel()

	s, _ := newTestSession(t)
	id := s.Snapshot().Notifications[0].ID

	assert.True(t, s.DismissNotification(id))
	assert.Empty(t, s.Snapshot().Notifications)
	assert.False(t, s.DismissNotification(id))
}

func TestNotificationTimestampsFollowClock(t *testing.T) {
	t.Parallel()

	s, clock := newTestSession(t)
	require.NoError(t, s.SetReady(false))

	n := s.Snapshot().Notifications
	assert.Equal(t, clock.Now(), n[len(n)-1].Timestamp)
}

func TestSubscribe(t *testing.T) {
	t.Parallel()

	s, _ := newTestSession(t)

	var got []Snapshot
	cancel := s.Subscribe(func(snap Snapshot) { got = append(got, snap) })

	require.NoError(t, s.SelectHand("hand1"))
	require.Len(t, got, 1)
	assert.Equal(t, []string{"hand1"}, got[0].SelectedHands)

	// Rejected actions still publish the notification they raise
	_ = s.SetReady(true)
	require.Len(t, got, 2)

	cancel()
	cancel()
	require.NoError(t, s.SelectHand("hand2"))
	assert.Len(t, got, 2)
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	t.Parallel()

	s, _ := newTestSession(t)
	require.NoError(t, s.SelectHand("hand1"))
	require.NoError(t, s.PlaceBet())

	snap := s.Snapshot()
	snap.Players[0].Bets["hand1"] = 9999
	snap.Players[0].Chips = 0
	snap.Hands[0].Pot = 0
	snap.SelectedHands[0] = "hand5"

	fresh := s.Snapshot()
	alex, _ := fresh.Player("1")
	assert.Equal(t, 10, alex.Bets["hand1"])
	assert.Equal(t, 1240, alex.Chips)
	assert.Equal(t, 255, fresh.Hands[0].Pot)
	assert.Equal(t, []string{"hand1"}, fresh.SelectedHands)
}
