package server

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/lox/pokerderby/internal/game"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192

	sendBufferSize = 256
)

// ErrConnectionClosed is returned when sending on a closed connection
var ErrConnectionClosed = errors.New("connection closed")

// Connection represents a WebSocket client attached to one room
type Connection struct {
	conn   *websocket.Conn
	room   *Room
	send   chan *Message
	logger *log.Logger
	ctx    context.Context
	cancel context.CancelFunc

	mu          sync.RWMutex
	closed      bool
	unsubscribe func()
	closeOnce   sync.Once
}

// NewConnection creates a new connection wrapper
func NewConnection(conn *websocket.Conn, room *Room, logger *log.Logger) *Connection {
	ctx, cancel := context.WithCancel(context.Background())

	return &Connection{
		conn:   conn,
		room:   room,
		send:   make(chan *Message, sendBufferSize),
		logger: logger.WithPrefix("conn").With("room", room.Code),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start subscribes to the room, sends the current state and begins
// pumping messages
func (c *Connection) Start() {
	unsubscribe := c.room.Session.Subscribe(c.sendState)
	c.mu.Lock()
	c.unsubscribe = unsubscribe
	c.mu.Unlock()

	c.sendState(c.room.Session.Snapshot())

	go c.writePump()
	go c.readPump()
}

// Done is closed when the connection shuts down
func (c *Connection) Done() <-chan struct{} {
	return c.ctx.Done()
}

// Close closes the connection
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()

		c.mu.Lock()
		c.closed = true
		unsubscribe := c.unsubscribe
		close(c.send)
		c.mu.Unlock()

		if unsubscribe != nil {
			unsubscribe()
		}
		err = c.conn.Close()
	})
	return err
}

// SendMessage queues a message for the client. A client that cannot keep
// up is disconnected.
func (c *Connection) SendMessage(msg *Message) error {
	c.mu.RLock()
	if c.closed {
		c.mu.RUnlock()
		return ErrConnectionClosed
	}

	select {
	case c.send <- msg:
		c.mu.RUnlock()
		return nil
	default:
		c.mu.RUnlock()
		c.logger.Warn("Connection send buffer full, closing connection")
		_ = c.Close()
		return ErrConnectionClosed
	}
}

func (c *Connection) sendState(snap game.Snapshot) {
	msg, err := NewMessage(MessageTypeState, snap)
	if err != nil {
		c.logger.Error("Failed to create state message", "error", err)
		return
	}
	_ = c.SendMessage(msg)
}

// readPump handles incoming messages from the client
func (c *Connection) readPump() {
	defer func() { _ = c.Close() }()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", "error", err)
			}
			return
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			c.sendError(CodeInvalidMessage, "Message is not valid JSON")
			continue
		}
		c.handleMessage(&msg)
	}
}

// writePump handles outgoing messages to the client
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Error("Failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage applies a client message to the room session
func (c *Connection) handleMessage(msg *Message) {
	c.logger.Debug("Received message", "type", msg.Type)

	s := c.room.Session
	var err error

	switch msg.Type {
	case MessageTypeSelectHand:
		var data HandData
		if !c.decode(msg, &data) {
			return
		}
		err = s.SelectHand(data.HandID)

	case MessageTypeDeselectHand:
		var data HandData
		if !c.decode(msg, &data) {
			return
		}
		err = s.DeselectHand(data.HandID)

	case MessageTypeSetBet:
		var data SetBetData
		if !c.decode(msg, &data) {
			return
		}
		err = s.SetBetAmount(data.Amount)

	case MessageTypePlaceBet:
		err = s.PlaceBet()

	case MessageTypeSetReady:
		var data SetReadyData
		if !c.decode(msg, &data) {
			return
		}
		err = s.SetReady(data.Ready)

	case MessageTypeSetPlayer:
		var data SetPlayerData
		if !c.decode(msg, &data) {
			return
		}
		err = s.SetCurrentPlayer(data.PlayerID)

	case MessageTypeDismiss:
		var data DismissData
		if !c.decode(msg, &data) {
			return
		}
		if !s.DismissNotification(data.NotificationID) {
			c.sendError(CodeNotFound, "Notification not found")
		}

	case MessageTypeChat:
		var data ChatData
		if !c.decode(msg, &data) {
			return
		}
		err = s.PostChatMessage(data.Message)

	case MessageTypeReaction:
		var data ReactionData
		if !c.decode(msg, &data) {
			return
		}
		err = s.PostReaction(data.Reaction)

	case MessageTypeAnimation:
		var data AnimationData
		if !c.decode(msg, &data) {
			return
		}
		s.SetAnimationState(data.Animating)

	case MessageTypeReset:
		err = s.Reset()

	default:
		c.sendError(CodeUnknownMessageType, "Unknown message type: "+msg.Type.String())
		return
	}

	if err != nil {
		c.logger.Debug("Action rejected", "type", msg.Type, "error", err)
		c.sendError(errorCode(err), err.Error())
	}
}

func (c *Connection) decode(msg *Message, v any) bool {
	if len(msg.Data) == 0 {
		c.sendError(CodeInvalidMessage, "Missing data for "+msg.Type.String())
		return false
	}
	if err := json.Unmarshal(msg.Data, v); err != nil {
		c.sendError(CodeInvalidMessage, "Failed to parse "+msg.Type.String()+" data")
		return false
	}
	return true
}

// sendError sends an error message to the client
func (c *Connection) sendError(code, message string) {
	errorMsg, err := NewMessage(MessageTypeError, ErrorData{
		Code:    code,
		Message: message,
	})
	if err != nil {
		c.logger.Error("Failed to create error message", "error", err)
		return
	}

	_ = c.SendMessage(errorMsg)
}
