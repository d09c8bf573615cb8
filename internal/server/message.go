package server

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/lox/pokerderby/internal/game"
)

// Message represents the base WebSocket message structure
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(messageType MessageType, data any) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Message{
		Type:      messageType,
		Data:      dataBytes,
		Timestamp: time.Now(),
	}, nil
}

// Client → Server Messages

type HandData struct {
	HandID string `json:"handId"`
}

type SetBetData struct {
	Amount int `json:"amount"`
}

type SetReadyData struct {
	Ready bool `json:"ready"`
}

type SetPlayerData struct {
	PlayerID string `json:"playerId"`
}

type DismissData struct {
	NotificationID string `json:"notificationId"`
}

type ChatData struct {
	Message string `json:"message"`
}

type ReactionData struct {
	Reaction string `json:"reaction"`
}

type AnimationData struct {
	Animating bool `json:"animating"`
}

// Server → Client Messages

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// RoomSummary is the listing entry for a room
type RoomSummary struct {
	Code        string     `json:"code"`
	Round       game.Round `json:"round"`
	Players     int        `json:"players"`
	Connections int        `json:"connections"`
	Finished    bool       `json:"finished"`
}

var errorCodes = []struct {
	err  error
	code string
}{
	{game.ErrBettingLocked, CodeBettingLocked},
	{game.ErrBelowMinimum, CodeBelowMinimum},
	{game.ErrInsufficientTotalChips, CodeInsufficientTotalChips},
	{game.ErrInsufficientChips, CodeInsufficientChips},
	{game.ErrNoHandSelected, CodeNoHandSelected},
	{game.ErrNoCurrentPlayer, CodeNoCurrentPlayer},
	{game.ErrNoStake, CodeNoStake},
	{game.ErrUnknownHand, CodeUnknownHand},
	{game.ErrUnknownPlayer, CodeUnknownPlayer},
	{game.ErrEmptyMessage, CodeEmptyMessage},
}

// errorCode maps a session error to its stable wire code
func errorCode(err error) string {
	for _, ec := range errorCodes {
		if errors.Is(err, ec.err) {
			return ec.code
		}
	}
	return CodeActionFailed
}
