package game

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/google/uuid"

	"github.com/lox/pokerderby/poker"
)

// DefaultRoomCode is used when Initialize is called without a room code
const DefaultRoomCode = "TXHS42"

// Observer receives a snapshot after every change to a session
type Observer func(Snapshot)

// Status is the subset of session state a timer driver needs
type Status struct {
	Round         Round
	TimeRemaining int
	Animating     bool
	Finished      bool
	ShouldAdvance bool // The countdown or readiness says the round is over
}

// Session owns the authoritative state of one game room. Every action is
// applied atomically under the session lock; observers are called after
// the lock is released.
type Session struct {
	cfg    Config
	source TableSource
	clock  quartz.Clock
	logger *log.Logger
	scorer Scorer
	newID  func() string

	mu      sync.Mutex
	state   gameState
	index   map[string]int // player id -> position in state.players
	runout  []poker.Card
	results []Payout

	obsMu     sync.Mutex
	observers map[int]Observer
	nextObs   int
}

type gameState struct {
	roomCode        string
	connected       bool
	round           Round
	timeRemaining   int
	animating       bool
	currentPlayerID string
	players         []Player
	selected        []string
	betAmount       int
	hasConfirmedBet bool
	hands           []Hand
	board           Board
	notifications   []Notification
	chat            []ChatMessage
	finished        bool
}

// NewSession creates a session that deals its tables from source. The
// session holds no players until Initialize is called.
func NewSession(cfg Config, source TableSource, opts ...SessionOption) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if source == nil {
		return nil, errors.New("table source is required")
	}

	s := &Session{
		cfg:       cfg,
		source:    source,
		clock:     quartz.NewReal(),
		logger:    log.New(io.Discard),
		scorer:    HighCardScore,
		newID:     uuid.NewString,
		observers: make(map[int]Observer),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.state = gameState{
		round:         OutOfTheGate,
		timeRemaining: cfg.RoundSeconds,
		betAmount:     cfg.MinBet,
		board:         Board{Flop: []poker.Card{}},
	}
	s.index = map[string]int{}
	return s, nil
}

// Config returns the session configuration
func (s *Session) Config() Config {
	return s.cfg
}

// Subscribe registers an observer and returns a function that removes it
func (s *Session) Subscribe(fn Observer) (cancel func()) {
	s.obsMu.Lock()
	id := s.nextObs
	s.nextObs++
	s.observers[id] = fn
	s.obsMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.obsMu.Lock()
			delete(s.observers, id)
			s.obsMu.Unlock()
		})
	}
}

// update applies fn under the lock and then publishes a snapshot
func (s *Session) update(fn func() error) error {
	s.mu.Lock()
	err := fn()
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.publish(snap)
	return err
}

func (s *Session) publish(snap Snapshot) {
	s.obsMu.Lock()
	ids := make([]int, 0, len(s.observers))
	for id := range s.observers {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	observers := make([]Observer, 0, len(ids))
	for _, id := range ids {
		observers = append(observers, s.observers[id])
	}
	s.obsMu.Unlock()

	for _, fn := range observers {
		fn(snap)
	}
}

// Initialize replaces the whole game with a freshly dealt table. On error
// the previous game is kept.
func (s *Session) Initialize(roomCode string) error {
	if roomCode == "" {
		roomCode = DefaultRoomCode
	}

	table, err := s.source()
	if err != nil {
		return fmt.Errorf("deal table: %w", err)
	}
	if err := table.Validate(s.cfg); err != nil {
		return fmt.Errorf("invalid table: %w", err)
	}

	return s.update(func() error {
		s.loadLocked(roomCode, table)
		s.logger.Info("Game initialized",
			"room", roomCode,
			"players", len(table.Players),
			"hands", len(table.Hands))
		return nil
	})
}

// Reset starts a new game in the same room
func (s *Session) Reset() error {
	s.mu.Lock()
	code := s.state.roomCode
	s.mu.Unlock()
	return s.Initialize(code)
}

func (s *Session) loadLocked(roomCode string, table Table) {
	table = table.clone()

	current := table.CurrentPlayerID
	if current == "" {
		current = table.Players[0].ID
	}

	index := make(map[string]int, len(table.Players))
	for i := range table.Players {
		table.Players[i].IsReady = false
		index[table.Players[i].ID] = i
	}

	s.index = index
	s.runout = table.Runout
	s.results = nil
	s.state = gameState{
		roomCode:        roomCode,
		connected:       true,
		round:           OutOfTheGate,
		timeRemaining:   s.cfg.RoundSeconds,
		currentPlayerID: current,
		players:         table.Players,
		betAmount:       s.cfg.MinBet,
		hands:           table.Hands,
		board:           revealBoard(s.runout, OutOfTheGate.BoardCards()),
	}
	s.notifyLocked(NotifyInfo, msgRoundStarted)
}

// SelectHand adds a hand to the current selection
func (s *Session) SelectHand(handID string) error {
	return s.update(func() error {
		if err := s.bettingGuardLocked(); err != nil {
			return err
		}
		if _, ok := s.handLocked(handID); !ok {
			return s.rejectLocked(fmt.Errorf("%w: %s", ErrUnknownHand, handID), fmt.Sprintf("Unknown hand %q", handID))
		}
		if !slices.Contains(s.state.selected, handID) {
			s.state.selected = append(s.state.selected, handID)
		}
		return nil
	})
}

// DeselectHand removes a hand from the selection. A confirmed bet no longer
// matches the selection afterwards, so it is unconfirmed.
func (s *Session) DeselectHand(handID string) error {
	return s.update(func() error {
		if err := s.bettingGuardLocked(); err != nil {
			return err
		}
		if _, ok := s.handLocked(handID); !ok {
			return s.rejectLocked(fmt.Errorf("%w: %s", ErrUnknownHand, handID), fmt.Sprintf("Unknown hand %q", handID))
		}
		s.state.selected = slices.DeleteFunc(s.state.selected, func(id string) bool { return id == handID })
		s.state.hasConfirmedBet = false
		return nil
	})
}

// SetBetAmount sets the per-hand bet, raised to the minimum bet if lower
func (s *Session) SetBetAmount(amount int) error {
	return s.update(func() error {
		if err := s.bettingGuardLocked(); err != nil {
			return err
		}
		s.state.betAmount = max(s.cfg.MinBet, amount)
		s.state.hasConfirmedBet = false
		return nil
	})
}

// PlaceBet stakes the bet amount on every selected hand for the current
// player. It is the only action that moves chips.
func (s *Session) PlaceBet() error {
	return s.update(func() error {
		if err := s.bettingGuardLocked(); err != nil {
			return err
		}

		idx, ok := s.currentLocked()
		if !ok {
			return fmt.Errorf("%w: player not found", ErrNoCurrentPlayer)
		}
		if len(s.state.selected) == 0 {
			return fmt.Errorf("%w: please select at least one hand", ErrNoHandSelected)
		}

		player := &s.state.players[idx]
		amount := s.state.betAmount
		if err := ValidateBet(amount, player.Chips, s.state.selected, s.cfg); err != nil {
			return err
		}

		if player.Bets == nil {
			player.Bets = make(map[string]int)
		}
		for _, handID := range s.state.selected {
			player.Bets[handID] += amount
			if h, ok := s.handLocked(handID); ok {
				h.Pot += amount
			}
		}
		total := amount * len(s.state.selected)
		player.Chips -= total
		s.state.hasConfirmedBet = true

		s.logger.Debug("Bet placed",
			"room", s.state.roomCode,
			"player", player.ID,
			"amount", amount,
			"hands", len(s.state.selected),
			"chips", player.Chips)
		s.notifyLocked(NotifyAction, fmt.Sprintf("Bet $%d placed on %d hand(s)!", total, len(s.state.selected)))
		return nil
	})
}

// SetReady marks the current player ready or not. Becoming ready requires
// at least one bet; becoming unready is always allowed.
func (s *Session) SetReady(ready bool) error {
	return s.update(func() error {
		idx, ok := s.currentLocked()
		if ready && (!ok || !s.state.players[idx].HasBets()) {
			return s.rejectLocked(ErrNoStake, msgNeedStake)
		}
		if !ok {
			return s.rejectLocked(ErrNoCurrentPlayer, msgNoPlayer)
		}

		s.state.players[idx].IsReady = ready
		if ready {
			s.notifyLocked(NotifyAction, msgReady)
		} else {
			s.notifyLocked(NotifyInfo, msgNotReady)
		}
		return nil
	})
}

// SetCurrentPlayer changes which seated player the action API acts for
func (s *Session) SetCurrentPlayer(playerID string) error {
	return s.update(func() error {
		if _, ok := s.index[playerID]; !ok {
			return s.rejectLocked(fmt.Errorf("%w: %s", ErrUnknownPlayer, playerID), fmt.Sprintf("Unknown player %q", playerID))
		}
		s.state.currentPlayerID = playerID
		return nil
	})
}

// Tick counts the round clock down by one second. Ticks are dropped while a
// reveal animation runs, once the clock is at zero and after the game ends.
func (s *Session) Tick() {
	_ = s.update(func() error {
		if s.state.timeRemaining > 0 && !s.state.animating && !s.state.finished {
			s.state.timeRemaining--
		}
		return nil
	})
}

// AutoAdvance advances the round if the countdown has run out or every
// player is ready, and never while animating. It reports whether it
// advanced.
func (s *Session) AutoAdvance() bool {
	advanced := false
	_ = s.update(func() error {
		if s.shouldAdvanceLocked() {
			s.advanceLocked()
			advanced = true
		}
		return nil
	})
	return advanced
}

// AdvanceRound moves to the next round unconditionally, or settles the game
// when the final round is over. It does nothing once the game is finished.
func (s *Session) AdvanceRound() {
	_ = s.update(func() error {
		s.advanceLocked()
		return nil
	})
}

func (s *Session) shouldAdvanceLocked() bool {
	if s.state.finished || s.state.animating || len(s.state.players) == 0 {
		return false
	}
	return s.state.timeRemaining == 0 || AllPlayersReady(s.state.players)
}

func (s *Session) advanceLocked() {
	if s.state.finished {
		return
	}

	next, ok := s.state.round.Next()
	if !ok {
		s.results = Settle(s.state.hands, s.state.board, s.state.players, s.scorer)
		s.state.finished = true
		s.logger.Info("Game complete", "room", s.state.roomCode, "winningHands", len(s.results))
		s.notifyLocked(NotifyInfo, msgGameComplete)
		return
	}

	s.state.round = next
	s.state.timeRemaining = s.cfg.RoundSeconds
	s.state.animating = true
	for i := range s.state.players {
		s.state.players[i].IsReady = false
	}
	s.state.selected = nil
	s.state.hasConfirmedBet = false
	s.state.betAmount = s.cfg.MinBet
	s.state.board = revealBoard(s.runout, next.BoardCards())

	s.logger.Info("Round advanced", "room", s.state.roomCode, "round", next, "board", s.state.board.Len())
	if msg := revealMessage(next); msg != "" {
		s.notifyLocked(NotifyInfo, msg)
	}
	s.notifyLocked(NotifyTimer, fmt.Sprintf("%s phase begins!", next))
}

// SetAnimationState records whether a reveal animation is running
func (s *Session) SetAnimationState(animating bool) {
	_ = s.update(func() error {
		s.state.animating = animating
		return nil
	})
}

// DismissNotification removes a notification, reporting whether it existed
func (s *Session) DismissNotification(id string) bool {
	found := false
	_ = s.update(func() error {
		before := len(s.state.notifications)
		s.state.notifications = slices.DeleteFunc(s.state.notifications, func(n Notification) bool { return n.ID == id })
		found = len(s.state.notifications) != before
		return nil
	})
	return found
}

// PostChatMessage appends a chat message from the current player
func (s *Session) PostChatMessage(text string) error {
	return s.postChat(ChatText, text)
}

// PostReaction appends a reaction glyph from the current player
func (s *Session) PostReaction(glyph string) error {
	return s.postChat(ChatReaction, glyph)
}

func (s *Session) postChat(kind ChatKind, text string) error {
	text = strings.TrimSpace(text)
	return s.update(func() error {
		if text == "" {
			return s.rejectLocked(ErrEmptyMessage, msgEmptyMessage)
		}
		idx, ok := s.currentLocked()
		if !ok {
			return ErrNoCurrentPlayer
		}
		s.state.chat = append(s.state.chat, ChatMessage{
			ID:        s.newID(),
			Player:    s.state.players[idx].Name,
			Message:   text,
			Kind:      kind,
			Timestamp: s.clock.Now(),
		})
		if n := len(s.state.chat); n > maxChatMessages {
			s.state.chat = slices.Delete(s.state.chat, 0, n-maxChatMessages)
		}
		return nil
	})
}

// CurrentPlayer returns a copy of the player the action API acts for
func (s *Session) CurrentPlayer() (Player, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, ok := s.currentLocked()
	if !ok {
		return Player{}, false
	}
	return s.state.players[idx].clone(), true
}

// CurrentPlayerChips returns the current player's chips, 0 without one
func (s *Session) CurrentPlayerChips() int {
	p, _ := s.CurrentPlayer()
	return p.Chips
}

// CurrentTotalBet returns the bet amount times the number of selected hands
func (s *Session) CurrentTotalBet() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.betAmount * len(s.state.selected)
}

// CanReady reports whether the current player may mark ready now. A player
// with a pending selection and amount must confirm the bet first; a player
// with nothing pending may skip betting for the round.
func (s *Session) CanReady() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.canReadyLocked()
}

func (s *Session) canReadyLocked() bool {
	if s.state.round.IsTerminal() {
		return false
	}
	if _, ok := s.currentLocked(); !ok {
		return false
	}
	if len(s.state.selected) > 0 && s.state.betAmount > 0 {
		return s.state.hasConfirmedBet
	}
	return true
}

// IsBettingLocked reports whether the game is in the final, locked round
func (s *Session) IsBettingLocked() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.round.IsTerminal()
}

// Status returns what a timer driver needs to arm or disarm its clocks
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{
		Round:         s.state.round,
		TimeRemaining: s.state.timeRemaining,
		Animating:     s.state.animating,
		Finished:      s.state.finished,
		ShouldAdvance: s.shouldAdvanceLocked(),
	}
}

// Results returns the settlement once the game is finished
func (s *Session) Results() ([]Payout, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.state.finished {
		return nil, false
	}
	return clonePayouts(s.results), true
}

// Snapshot returns a deep copy of the current state
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// bettingGuardLocked rejects betting changes during the locked round
func (s *Session) bettingGuardLocked() error {
	if s.state.round.IsTerminal() {
		return s.rejectLocked(ErrBettingLocked, msgBettingLocked)
	}
	return nil
}

// rejectLocked surfaces a rejected action as a notification and returns err
func (s *Session) rejectLocked(err error, message string) error {
	s.logger.Debug("Action rejected", "room", s.state.roomCode, "error", err)
	s.notifyLocked(NotifyInfo, message)
	return err
}

func (s *Session) notifyLocked(kind NotificationKind, message string) {
	s.state.notifications = append(s.state.notifications, Notification{
		ID:        s.newID(),
		Kind:      kind,
		Message:   message,
		Timestamp: s.clock.Now(),
	})
	if n := len(s.state.notifications); n > maxNotifications {
		s.state.notifications = slices.Delete(s.state.notifications, 0, n-maxNotifications)
	}
}

func (s *Session) currentLocked() (int, bool) {
	idx, ok := s.index[s.state.currentPlayerID]
	return idx, ok
}

func (s *Session) handLocked(id string) (*Hand, bool) {
	for i := range s.state.hands {
		if s.state.hands[i].ID == id {
			return &s.state.hands[i], true
		}
	}
	return nil, false
}
