// Package tui is the terminal client for a Poker Derby session
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/lox/pokerderby/internal/game"
	"github.com/lox/pokerderby/poker"
)

// Game is the session API the terminal client drives
type Game interface {
	SelectHand(handID string) error
	DeselectHand(handID string) error
	SetBetAmount(amount int) error
	PlaceBet() error
	SetReady(ready bool) error
	SetCurrentPlayer(playerID string) error
	DismissNotification(id string) bool
	PostChatMessage(text string) error
	Reset() error
	Snapshot() game.Snapshot
	Subscribe(fn game.Observer) (cancel func())
	Config() game.Config
}

// snapshotMsg carries a session snapshot into the update loop
type snapshotMsg game.Snapshot

const (
	sidebarWidth  = 28
	minNotesLines = 3
)

// Model is the Bubble Tea model for a game session
type Model struct {
	game   Game
	logger *log.Logger

	updates     chan game.Snapshot
	unsubscribe func()

	snap game.Snapshot

	// UI components
	notes     viewport.Model
	countdown progress.Model
	chatInput textinput.Model
	chatting  bool

	status   string
	statusOK bool
	quitting bool

	width  int
	height int
}

// New creates a model subscribed to g
func New(g Game, logger *log.Logger) *Model {
	vp := viewport.New(40, minNotesLines)

	ti := textinput.New()
	ti.Placeholder = "Say something to the table"
	ti.CharLimit = 200
	ti.Prompt = "> "
	ti.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true)

	m := &Model{
		game:      g,
		logger:    logger.WithPrefix("tui"),
		updates:   make(chan game.Snapshot, 1),
		notes:     vp,
		countdown: progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		chatInput: ti,
		snap:      g.Snapshot(),
	}
	m.unsubscribe = g.Subscribe(m.push)
	return m
}

// push keeps only the newest undelivered snapshot
func (m *Model) push(s game.Snapshot) {
	for {
		select {
		case m.updates <- s:
			return
		default:
		}
		select {
		case <-m.updates:
		default:
		}
	}
}

func (m *Model) waitForSnapshot() tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(<-m.updates)
	}
}

// Init starts listening for session updates
func (m *Model) Init() tea.Cmd {
	return m.waitForSnapshot()
}

// Close unsubscribes from the session
func (m *Model) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
		m.unsubscribe = nil
	}
}

// Update handles messages in the TUI
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case snapshotMsg:
		m.setSnapshot(game.Snapshot(msg))
		return m, m.waitForSnapshot()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		return m, nil

	case tea.KeyMsg:
		if m.chatting {
			return m.updateChat(msg)
		}
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.notes, cmd = m.notes.Update(msg)
	return m, cmd
}

func (m *Model) updateChat(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.stopChat()
		return m, nil
	case tea.KeyEnter:
		text := m.chatInput.Value()
		m.stopChat()
		m.apply(m.game.PostChatMessage(text), "")
		return m, nil
	}

	var cmd tea.Cmd
	m.chatInput, cmd = m.chatInput.Update(msg)
	return m, cmd
}

func (m *Model) stopChat() {
	m.chatting = false
	m.chatInput.Reset()
	m.chatInput.Blur()
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	minBet := m.game.Config().MinBet

	switch key {
	case "q", "ctrl+c", "esc":
		m.quitting = true
		m.Close()
		return m, tea.Quit

	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		m.toggleHand(int(key[0] - '1'))

	case "+", "=":
		m.apply(m.game.SetBetAmount(m.snap.BetAmount+minBet), "")

	case "-", "_":
		m.apply(m.game.SetBetAmount(m.snap.BetAmount-minBet), "")

	case "enter":
		total := m.snap.TotalBet
		m.apply(m.game.PlaceBet(), fmt.Sprintf("Bet $%d placed", total))

	case "r":
		m.apply(m.game.SetReady(!m.snap.Ready), "")

	case "tab":
		m.nextPlayer()

	case "x":
		if len(m.snap.Notifications) > 0 {
			m.game.DismissNotification(m.snap.Notifications[0].ID)
		}

	case "/":
		m.chatting = true
		return m, m.chatInput.Focus()

	case "n":
		m.apply(m.game.Reset(), "New game dealt")

	case "up", "k":
		m.notes.ScrollUp(1)
	case "down", "j":
		m.notes.ScrollDown(1)
	}

	m.setSnapshot(m.game.Snapshot())
	return m, nil
}

func (m *Model) toggleHand(i int) {
	if i < 0 || i >= len(m.snap.Hands) {
		return
	}
	id := m.snap.Hands[i].ID
	if m.snap.IsSelected(id) {
		m.apply(m.game.DeselectHand(id), "")
	} else {
		m.apply(m.game.SelectHand(id), "")
	}
}

func (m *Model) nextPlayer() {
	players := m.snap.Players
	if len(players) == 0 {
		return
	}
	next := 0
	for i, p := range players {
		if p.ID == m.snap.CurrentPlayerID {
			next = (i + 1) % len(players)
			break
		}
	}
	m.apply(m.game.SetCurrentPlayer(players[next].ID), "")
}

// apply records the outcome of an action in the status line
func (m *Model) apply(err error, ok string) {
	if err != nil {
		m.logger.Debug("Action rejected", "error", err)
		m.status = err.Error()
		m.statusOK = false
		return
	}
	m.status = ok
	m.statusOK = true
}

func (m *Model) setSnapshot(s game.Snapshot) {
	m.snap = s
	m.notes.SetContent(m.renderNotifications())
	m.notes.GotoBottom()
}

func (m *Model) layout() {
	w := max(m.width-sidebarWidth-4, 20)
	m.notes.Width = w
	m.notes.Height = max(m.height/4, minNotesLines)
	m.countdown.Width = min(w, 40)
	m.chatInput.Width = w - 2
	m.notes.SetContent(m.renderNotifications())
}

// View renders the TUI
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	var main strings.Builder
	main.WriteString(m.renderHeader())
	main.WriteString("\n\n")
	main.WriteString(m.renderBoard())
	main.WriteString("\n\n")
	main.WriteString(m.renderHands())
	main.WriteString("\n")
	main.WriteString(m.renderBet())
	main.WriteString("\n")
	if m.snap.Finished {
		main.WriteString("\n")
		main.WriteString(m.renderResults())
		main.WriteString("\n")
	}
	main.WriteString("\n")
	main.WriteString(PaneStyle.Render(m.notes.View()))
	main.WriteString("\n")
	main.WriteString(m.renderStatus())

	left := main.String()
	right := PaneStyle.Width(sidebarWidth).Render(m.renderSidebar())
	body := lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right)

	return lipgloss.JoinVertical(lipgloss.Left, body, m.renderFooter())
}

func (m *Model) renderHeader() string {
	s := m.snap
	title := HeaderStyle.Render(fmt.Sprintf("Poker Derby · Room %s", s.RoomCode))
	round := RoundStyle.Render(fmt.Sprintf("Round %d/%d: %s", s.RoundIndex+1, len(game.Rounds()), s.Round))

	timer := TimerStyle.Render(fmt.Sprintf("%ds", s.TimeRemaining))
	switch {
	case s.Finished:
		timer = SuccessStyle.Render("finished")
	case s.Animating:
		timer = InfoStyle.Render("revealing…")
	}

	rounds := float64(m.game.Config().RoundSeconds)
	bar := m.countdown.ViewAs(float64(s.TimeRemaining) / rounds)

	line := lipgloss.JoinHorizontal(lipgloss.Top, round, "  ", timer)
	if s.BettingLocked {
		line = lipgloss.JoinHorizontal(lipgloss.Top, line, "  ", ErrorStyle.Render("BETTING LOCKED"))
	}
	return lipgloss.JoinVertical(lipgloss.Left, title, line, bar)
}

func (m *Model) renderBoard() string {
	cards := m.snap.Board.Cards()
	slots := make([]string, game.BoardSize)
	for i := range slots {
		if i < len(cards) {
			slots[i] = renderCard(cards[i])
		} else {
			slots[i] = InfoStyle.Render("[ ]")
		}
	}
	return "Board: " + strings.Join(slots, " ")
}

func (m *Model) renderHands() string {
	current, _ := m.snap.Player(m.snap.CurrentPlayerID)

	var b strings.Builder
	for i, h := range m.snap.Hands {
		marker := "[ ]"
		if m.snap.IsSelected(h.ID) {
			marker = SelectedStyle.Render("[x]")
		}
		line := fmt.Sprintf("%s %d. %-12s %s %s  pot $%d",
			marker, i+1, h.Label, renderCard(h.Cards[0]), renderCard(h.Cards[1]), h.Pot)
		if stake := current.Bets[h.ID]; stake > 0 {
			line += WarningStyle.Render(fmt.Sprintf("  your stake $%d", stake))
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

func (m *Model) renderBet() string {
	s := m.snap
	line := fmt.Sprintf("Bet $%d × %d hand(s) = $%d", s.BetAmount, len(s.SelectedHands), s.TotalBet)
	if s.HasConfirmedBet {
		line += "  " + SuccessStyle.Render("confirmed")
	}
	switch {
	case s.Ready:
		line += "  " + SuccessStyle.Render("READY")
	case s.CanReady:
		line += "  " + InfoStyle.Render("r to ready")
	}
	return line
}

func (m *Model) renderResults() string {
	var b strings.Builder
	b.WriteString(SuccessStyle.Render("Results"))
	for _, p := range m.snap.Results {
		h, _ := m.snap.Hand(p.HandID)
		winners := "unclaimed"
		if !p.Unclaimed() {
			names := make([]string, 0, len(p.WinnerIDs))
			for _, id := range p.WinnerIDs {
				if pl, ok := m.snap.Player(id); ok {
					names = append(names, pl.Name)
				}
			}
			winners = strings.Join(names, ", ")
		}
		fmt.Fprintf(&b, "\n  %s (%s): $%d to %s", h.Label, p.Score.Label, p.Amount, winners)
	}
	return b.String()
}

func (m *Model) renderNotifications() string {
	lines := make([]string, 0, len(m.snap.Notifications)+len(m.snap.Chat))
	for _, n := range m.snap.Notifications {
		style := InfoStyle
		switch n.Kind {
		case game.NotifyAction:
			style = SuccessStyle
		case game.NotifyTimer:
			style = TimerStyle
		case game.NotifyPlayer:
			style = WarningStyle
		}
		lines = append(lines, style.Render("• "+n.Message))
	}
	for _, c := range m.snap.Chat {
		lines = append(lines, fmt.Sprintf("%s: %s", PlayerInfoStyle.Bold(true).Render(c.Player), c.Message))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderSidebar() string {
	var b strings.Builder
	b.WriteString(InfoStyle.Render("Players"))
	b.WriteString("\n")
	for _, p := range m.snap.Players {
		cursor := "  "
		if p.ID == m.snap.CurrentPlayerID {
			cursor = SelectedStyle.Render("▶ ")
		}
		ready := ""
		if p.IsReady {
			ready = SuccessStyle.Render(" ✓")
		}
		fmt.Fprintf(&b, "%s%s $%d%s\n", cursor, p.Name, p.Chips, ready)
	}
	return b.String()
}

func (m *Model) renderStatus() string {
	if m.chatting {
		return m.chatInput.View()
	}
	if m.status == "" {
		return ""
	}
	if m.statusOK {
		return SuccessStyle.Render(m.status)
	}
	return ErrorStyle.Render(m.status)
}

func (m *Model) renderFooter() string {
	return InfoStyle.Render("1-9 hand • +/- bet • enter place • r ready • tab player • x dismiss • / chat • n new • q quit")
}

func renderCard(c poker.Card) string {
	switch {
	case c.IsHidden():
		return HiddenCardStyle.Render(c.String())
	case c.Suit.IsRed():
		return RedCardStyle.Render(c.String())
	default:
		return BlackCardStyle.Render(c.String())
	}
}
