package server

// MessageType represents a WebSocket message type with type safety
type MessageType string

// WebSocket message type constants
const (
	// Client to server messages
	MessageTypeSelectHand   MessageType = "select_hand"
	MessageTypeDeselectHand MessageType = "deselect_hand"
	MessageTypeSetBet       MessageType = "set_bet"
	MessageTypePlaceBet     MessageType = "place_bet"
	MessageTypeSetReady     MessageType = "set_ready"
	MessageTypeSetPlayer    MessageType = "set_player"
	MessageTypeDismiss      MessageType = "dismiss"
	MessageTypeChat         MessageType = "chat"
	MessageTypeReaction     MessageType = "reaction"
	MessageTypeAnimation    MessageType = "animation"
	MessageTypeReset        MessageType = "reset"

	// Server to client messages
	MessageTypeState MessageType = "state"
	MessageTypeError MessageType = "error"
)

// String returns the string representation of the message type
func (mt MessageType) String() string {
	return string(mt)
}

// Error codes carried by error messages
const (
	CodeInvalidMessage         = "invalid_message"
	CodeUnknownMessageType     = "unknown_message_type"
	CodeBettingLocked          = "betting_locked"
	CodeBelowMinimum           = "below_minimum"
	CodeInsufficientChips      = "insufficient_chips"
	CodeInsufficientTotalChips = "insufficient_total_chips"
	CodeNoHandSelected         = "no_hand_selected"
	CodeNoCurrentPlayer        = "no_current_player"
	CodeNoStake                = "no_stake"
	CodeUnknownHand            = "unknown_hand"
	CodeUnknownPlayer          = "unknown_player"
	CodeEmptyMessage           = "empty_message"
	CodeNotFound               = "not_found"
	CodeRoomExists             = "room_exists"
	CodeActionFailed           = "action_failed"
)
