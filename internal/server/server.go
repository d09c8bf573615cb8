package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/lox/pokerderby/internal/game"
)

const readHeaderTimeout = 10 * time.Second

// Server serves the room API and WebSocket endpoint
type Server struct {
	addr     string
	upgrader websocket.Upgrader
	rooms    *RoomManager
	logger   *log.Logger

	mu          sync.Mutex
	connections map[*Connection]struct{}
	httpServer  *http.Server
}

// NewServer creates a new server for the rooms in manager
func NewServer(addr string, rooms *RoomManager, logger *log.Logger) *Server {
	return &Server{
		addr: addr,
		upgrader: websocket.Upgrader{
			// Terminal and browser clients connect from anywhere
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		rooms:       rooms,
		logger:      logger.WithPrefix("server"),
		connections: make(map[*Connection]struct{}),
	}
}

// Handler returns the HTTP routes of the server
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/rooms", s.handleRooms)
	return mux
}

// ListenAndServe serves until Shutdown is called
func (s *Server) ListenAndServe() error {
	s.mu.Lock()
	s.httpServer = &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}
	srv := s.httpServer
	s.mu.Unlock()

	s.logger.Info("Starting WebSocket server", "addr", s.addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown closes every client connection and stops the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	conns := make([]*Connection, 0, len(s.connections))
	for c := range s.connections {
		conns = append(conns, c)
	}
	srv := s.httpServer
	s.mu.Unlock()

	for _, c := range conns {
		_ = c.Close()
	}
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

// handleWebSocket upgrades the request and attaches the client to a room
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("room")
	if code == "" {
		code = game.DefaultRoomCode
	}

	room, err := s.rooms.Join(code)
	if err != nil {
		s.logger.Error("Failed to open room", "room", code, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade connection", "error", err)
		s.rooms.Leave(room)
		return
	}

	client := NewConnection(conn, room, s.logger)
	s.mu.Lock()
	s.connections[client] = struct{}{}
	total := len(s.connections)
	s.mu.Unlock()
	s.logger.Info("Client connected", "room", room.Code, "total", total)

	client.Start()

	go func() {
		<-client.Done()
		s.mu.Lock()
		delete(s.connections, client)
		total := len(s.connections)
		s.mu.Unlock()
		s.rooms.Leave(room)
		s.logger.Info("Client disconnected", "room", room.Code, "total", total)
	}()
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "OK")
}

type createRoomRequest struct {
	Code string `json:"code"`
}

// handleRooms lists rooms on GET and opens one on POST
func (s *Server) handleRooms(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, s.rooms.List())

	case http.MethodPost:
		var req createRoomRequest
		if r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeJSON(w, http.StatusBadRequest, ErrorData{Code: CodeInvalidMessage, Message: err.Error()})
				return
			}
		}
		room, err := s.rooms.Create(req.Code)
		if errors.Is(err, ErrRoomExists) {
			writeJSON(w, http.StatusConflict, ErrorData{Code: CodeRoomExists, Message: err.Error()})
			return
		}
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, ErrorData{Code: CodeActionFailed, Message: err.Error()})
			return
		}
		writeJSON(w, http.StatusCreated, room.Summary())

	default:
		w.Header().Set("Allow", "GET, POST")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
