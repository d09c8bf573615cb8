package server

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/google/uuid"

	"github.com/lox/pokerderby/internal/driver"
	"github.com/lox/pokerderby/internal/game"
)

// ErrRoomExists is returned when creating a room whose code is taken
var ErrRoomExists = errors.New("room already exists")

const generatedCodeLength = 6

// Room is a single game room: a session and the driver running its clocks
type Room struct {
	Code    string
	Session *game.Session
	Created time.Time

	driver *driver.Driver

	// ephemeral rooms were opened by a joining client and close when the
	// last connection leaves
	ephemeral bool

	mu          sync.Mutex
	connections int
}

func (r *Room) addConnection(delta int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.connections += delta
	return r.connections
}

// Summary returns the listing entry for the room
func (r *Room) Summary() RoomSummary {
	st := r.Session.Status()
	snap := r.Session.Snapshot()

	r.mu.Lock()
	conns := r.connections
	r.mu.Unlock()

	return RoomSummary{
		Code:        r.Code,
		Round:       st.Round,
		Players:     len(snap.Players),
		Connections: conns,
		Finished:    st.Finished,
	}
}

// RoomManager tracks open rooms
type RoomManager struct {
	cfg        game.Config
	source     game.TableSource
	clock      quartz.Clock
	logger     *log.Logger
	driverOpts []driver.Option

	mu    sync.RWMutex
	rooms map[string]*Room
}

// NewRoomManager constructs an empty room manager. Every room deals its
// tables from source and runs a driver built with driverOpts.
func NewRoomManager(cfg game.Config, source game.TableSource, clock quartz.Clock, logger *log.Logger, driverOpts ...driver.Option) *RoomManager {
	return &RoomManager{
		cfg:        cfg,
		source:     source,
		clock:      clock,
		logger:     logger.WithPrefix("rooms"),
		driverOpts: append([]driver.Option{driver.WithLogger(logger)}, driverOpts...),
		rooms:      make(map[string]*Room),
	}
}

// NormalizeCode upper-cases and trims a room code
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Create opens a room and starts its driver. An empty code gets a
// generated one.
func (m *RoomManager) Create(code string) (*Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createLocked(code)
}

// Join attaches a connection to the room with code, opening an ephemeral
// room if none exists. Every Join must be paired with a Leave.
func (m *RoomManager) Join(code string) (*Room, error) {
	code = NormalizeCode(code)

	m.mu.Lock()
	defer m.mu.Unlock()
	room, ok := m.rooms[code]
	if !ok || code == "" {
		var err error
		if room, err = m.createLocked(code); err != nil {
			return nil, err
		}
		room.ephemeral = true
	}
	room.addConnection(1)
	return room, nil
}

// Leave detaches a connection from room. An ephemeral room is closed once
// its last connection has left.
func (m *RoomManager) Leave(room *Room) {
	m.mu.Lock()
	remaining := room.addConnection(-1)
	closing := room.ephemeral && remaining <= 0 && m.rooms[room.Code] == room
	if closing {
		delete(m.rooms, room.Code)
	}
	m.mu.Unlock()

	if closing {
		m.stop(room)
	}
}

func (m *RoomManager) createLocked(code string) (*Room, error) {
	code = NormalizeCode(code)
	if code == "" {
		code = m.generateCodeLocked()
	}
	if _, ok := m.rooms[code]; ok {
		return nil, fmt.Errorf("%w: %s", ErrRoomExists, code)
	}

	session, err := game.NewSession(m.cfg, m.source,
		game.WithClock(m.clock),
		game.WithLogger(m.logger.With("room", code)))
	if err != nil {
		return nil, err
	}
	if err := session.Initialize(code); err != nil {
		return nil, fmt.Errorf("initialize room %s: %w", code, err)
	}

	room := &Room{
		Code:    code,
		Session: session,
		Created: m.clock.Now(),
		driver:  driver.New(session, m.clock, m.driverOpts...),
	}
	room.driver.Start()
	m.rooms[code] = room

	m.logger.Info("Room opened", "room", code, "rooms", len(m.rooms))
	return room, nil
}

func (m *RoomManager) generateCodeLocked() string {
	for {
		id := strings.ReplaceAll(uuid.NewString(), "-", "")
		code := strings.ToUpper(id[:generatedCodeLength])
		if _, taken := m.rooms[code]; !taken {
			return code
		}
	}
}

// Get retrieves a room by code
func (m *RoomManager) Get(code string) (*Room, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	room, ok := m.rooms[NormalizeCode(code)]
	return room, ok
}

// List returns a summary of every room ordered by code
func (m *RoomManager) List() []RoomSummary {
	m.mu.RLock()
	rooms := make([]*Room, 0, len(m.rooms))
	for _, r := range m.rooms {
		rooms = append(rooms, r)
	}
	m.mu.RUnlock()

	slices.SortFunc(rooms, func(a, b *Room) int { return strings.Compare(a.Code, b.Code) })

	summaries := make([]RoomSummary, 0, len(rooms))
	for _, r := range rooms {
		summaries = append(summaries, r.Summary())
	}
	return summaries
}

func (m *RoomManager) stop(room *Room) {
	room.driver.Stop()
	m.logger.Info("Room closed", "room", room.Code)
}

// Close stops every room driver
func (m *RoomManager) Close() {
	m.mu.Lock()
	rooms := m.rooms
	m.rooms = make(map[string]*Room)
	m.mu.Unlock()

	for _, r := range rooms {
		r.driver.Stop()
	}
}
