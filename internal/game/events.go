package game

import "time"

// NotificationKind classifies a user-facing notification
type NotificationKind string

const (
	NotifyInfo   NotificationKind = "info"
	NotifyPlayer NotificationKind = "player"
	NotifyTimer  NotificationKind = "timer"
	NotifyAction NotificationKind = "action"
)

// Notification is a toast emitted by the session. The session appends them
// and the presentation layer dismisses them.
type Notification struct {
	ID        string           `json:"id"`
	Kind      NotificationKind `json:"kind"`
	Message   string           `json:"message"`
	Timestamp time.Time        `json:"timestamp"`
}

// ChatKind distinguishes chat text from reactions
type ChatKind string

const (
	ChatText     ChatKind = "message"
	ChatReaction ChatKind = "reaction"
)

// ChatMessage is an entry in the room chat
type ChatMessage struct {
	ID        string    `json:"id"`
	Player    string    `json:"player"`
	Message   string    `json:"message"`
	Kind      ChatKind  `json:"kind"`
	Timestamp time.Time `json:"timestamp"`
}

// queue limits, oldest entries are dropped first
const (
	maxNotifications = 50
	maxChatMessages  = 100
)

const (
	msgRoundStarted   = "Round started! Place your bets or click READY to skip betting."
	msgBettingLocked  = "Betting is locked during Photo Finish stage!"
	msgNeedStake      = "You must place bets before marking ready"
	msgReady          = "You are ready! Waiting for other players..."
	msgNotReady       = "You are no longer ready"
	msgGameComplete   = "Game complete! Check results above."
	msgFlopDealt      = "The flop is being dealt!"
	msgTurnRevealed   = "The turn card is revealed!"
	msgRiverCompletes = "The river completes the board! Betting is now LOCKED!"
	msgNoPlayer       = "Choose a player first"
	msgEmptyMessage   = "Type a message before sending"
)

// revealMessage returns the info notification announcing the board cards
// dealt on entering r
func revealMessage(r Round) string {
	switch r {
	case InTheRunning:
		return msgFlopDealt
	case FinalFurlong:
		return msgTurnRevealed
	case PhotoFinish:
		return msgRiverCompletes
	}
	return ""
}
