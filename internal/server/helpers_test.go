package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/lox/pokerderby/internal/game"
	"github.com/lox/pokerderby/internal/randutil"
)

func testLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}

// newTestManager builds a manager whose rooms never tick: the mock clock is
// never advanced.
func newTestManager(t *testing.T) *RoomManager {
	t.Helper()

	rng := randutil.New(7)
	source := func() (game.Table, error) {
		return game.DealTable(rng, game.TableSpec{
			PlayerNames: []string{"Alex", "Sarah"},
			StartChips:  100,
			Hands:       3,
			DarkHorse:   true,
		})
	}

	m := NewRoomManager(game.DefaultConfig(), source, quartz.NewMock(t), testLogger())
	t.Cleanup(m.Close)
	return m
}

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()

	srv := NewServer("", newTestManager(t), testLogger())
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
		ts.Close()
	})
	return srv, ts
}

func dial(t *testing.T, ts *httptest.Server, room string) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	if room != "" {
		url += "?room=" + room
	}
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, typ MessageType, data any) {
	t.Helper()

	msg, err := NewMessage(typ, data)
	require.NoError(t, err)
	if data == nil {
		msg.Data = nil
	}
	require.NoError(t, conn.WriteJSON(msg))
}

// readUntil reads messages until one of type typ arrives
func readUntil(t *testing.T, conn *websocket.Conn, typ MessageType) *Message {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		var msg Message
		require.NoError(t, conn.ReadJSON(&msg))
		if msg.Type == typ {
			return &msg
		}
	}
}

// readStateWhere reads state messages until one satisfies ok
func readStateWhere(t *testing.T, conn *websocket.Conn, ok func(game.Snapshot) bool) game.Snapshot {
	t.Helper()

	for {
		msg := readUntil(t, conn, MessageTypeState)
		var snap game.Snapshot
		require.NoError(t, json.Unmarshal(msg.Data, &snap))
		if ok(snap) {
			return snap
		}
	}
}

func readError(t *testing.T, conn *websocket.Conn) ErrorData {
	t.Helper()

	msg := readUntil(t, conn, MessageTypeError)
	var data ErrorData
	require.NoError(t, json.Unmarshal(msg.Data, &data))
	return data
}
