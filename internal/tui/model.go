// Package tui is a hot-seat terminal driver: every player acts from the
// same keyboard and the table decides who won each pot.
package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/lox/pokerstate/internal/display"
	"github.com/lox/pokerstate/internal/game"
)

type mode int

const (
	modeAction mode = iota
	modeAmount
	modeWinners
	modeOver
)

const logHeight = 8

// Model is the Bubble Tea model driving a local game.
type Model struct {
	game     *game.Game
	renderer *display.Renderer
	logger   *log.Logger

	logViewport viewport.Model
	input       textinput.Model

	mode     mode
	actions  []game.ActionType
	cursor   int
	chosen   game.ActionType
	potQueue []game.PotIndex
	winners  map[game.PotIndex][]string
	gameLog  []string
	err      error
	quitting bool
	width    int
}

// New creates a model for g and runs it to the first decision.
func New(g *game.Game, renderer *display.Renderer, logger *log.Logger) *Model {
	vp := viewport.New(60, logHeight)

	ti := textinput.New()
	ti.CharLimit = 100
	ti.Width = 60
	ti.Prompt = "> "

	m := &Model{
		game:        g,
		renderer:    renderer,
		logger:      logger.WithPrefix("tui"),
		logViewport: vp,
		input:       ti,
	}
	g.Events().Subscribe(m)
	m.advance()
	return m
}

// OnEvent implements game.EventSubscriber by appending to the hand log.
func (m *Model) OnEvent(event game.GameEvent) {
	if line := FormatEvent(event); line != "" {
		m.AddLogEntry(line)
	}
}

// AddLogEntry appends a line to the hand log and scrolls to it.
func (m *Model) AddLogEntry(entry string) {
	m.gameLog = append(m.gameLog, entry)
	m.logViewport.SetContent(strings.Join(m.gameLog, "\n"))
	m.logViewport.GotoBottom()
}

// Log returns the hand log lines.
func (m *Model) Log() []string { return m.gameLog }

// Init initializes the TUI model
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// advance runs the engine to its next input point and sets up the prompt
// for it.
func (m *Model) advance() {
	phase, err := m.game.Advance()
	if err != nil {
		m.err = err
		m.logger.Error("Advance failed", "error", err)
		return
	}

	switch phase {
	case game.PhaseActionSelector:
		m.actions, m.err = m.game.LegalActions()
		m.cursor = 0
		m.setMode(modeAction)

	case game.PhaseWinnerSelector:
		m.startWinners()

	case game.PhaseGameOver:
		m.setMode(modeOver)
	}
}

func (m *Model) startWinners() {
	m.resetWinners()
	if len(m.potQueue) == 0 {
		m.submitResult()
	}
}

func (m *Model) resetWinners() {
	m.winners = make(map[game.PotIndex][]string)
	m.potQueue = m.potQueue[:0]
	for _, pot := range m.game.Pots().Pots() {
		if pot.Total() > 0 {
			m.potQueue = append(m.potQueue, pot.Index())
		}
	}
	m.setMode(modeWinners)
}

func (m *Model) setMode(next mode) {
	m.mode = next
	m.input.SetValue("")
	switch next {
	case modeAmount:
		floor := m.game.BettingStage().MinimumRaise()
		if m.chosen == game.Bet {
			floor = m.game.HandStage().BigBlind()
		}
		m.input.Placeholder = fmt.Sprintf("%s to (min %d)", m.chosen, floor)
		m.input.Focus()
	case modeWinners:
		m.input.Placeholder = "winner ids, comma separated"
		m.input.Focus()
	default:
		m.input.Blur()
	}
}

// Update handles key presses.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.logViewport.Width = msg.Width
		m.input.Width = msg.Width - 4
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}
		switch m.mode {
		case modeAction:
			return m.updateAction(msg)
		case modeAmount:
			return m.updateAmount(msg)
		case modeWinners:
			return m.updateWinners(msg)
		case modeOver:
			if msg.String() == "q" || msg.String() == "enter" {
				m.quitting = true
				return m, tea.Quit
			}
		}
	}

	var cmd tea.Cmd
	m.logViewport, cmd = m.logViewport.Update(msg)
	return m, cmd
}

func (m *Model) updateAction(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		m.quitting = true
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.actions)-1 {
			m.cursor++
		}
	case "enter":
		if len(m.actions) == 0 {
			return m, nil
		}
		m.chosen = m.actions[m.cursor]
		if m.chosen.NeedsAmount() {
			m.setMode(modeAmount)
			return m, textinput.Blink
		}
		m.act(m.chosen, 0)
	}
	return m, nil
}

func (m *Model) updateAmount(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.setMode(modeAction)
		return m, nil
	case "enter":
		amount, err := strconv.Atoi(strings.TrimSpace(m.input.Value()))
		if err != nil {
			m.err = fmt.Errorf("amount must be a whole number")
			m.input.SetValue("")
			return m, nil
		}
		m.act(m.chosen, amount)
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) updateWinners(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() != "enter" {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	var ids []string
	for _, id := range strings.Split(m.input.Value(), ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	m.input.SetValue("")
	if len(ids) == 0 {
		m.err = errors.New("name at least one winner")
		return m, nil
	}

	m.err = nil
	m.winners[m.potQueue[0]] = ids
	m.potQueue = m.potQueue[1:]
	if len(m.potQueue) == 0 {
		m.submitResult()
	}
	return m, nil
}

func (m *Model) submitResult() {
	if err := m.game.SubmitResult(m.winners); err != nil {
		m.resetWinners()
		m.err = err
		return
	}
	m.err = nil
	m.advance()
}

func (m *Model) act(action game.ActionType, amount int) {
	if err := m.game.Act(action, amount); err != nil {
		m.err = err
		m.setMode(modeAction)
		return
	}
	m.err = nil
	m.advance()
}

// View renders the table, the hand log and the prompt.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.renderer.Snapshot(m.game.Snapshot()))
	b.WriteString("\n\n")
	b.WriteString(m.logViewport.View())
	b.WriteString("\n\n")
	b.WriteString(m.prompt())
	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(m.renderer.Error(m.err))
	}
	b.WriteString("\n")
	b.WriteString(m.renderer.Styles.Info.Render(m.help()))
	return b.String()
}

func (m *Model) prompt() string {
	styles := m.renderer.Styles
	switch m.mode {
	case modeAction:
		player := m.game.CurrentPlayer()
		header := styles.Label.Render(fmt.Sprintf("%s to act (%d chips, %d staged)", player.ID(), player.Chips(), player.PendingChips()))
		return header + "\n" + m.renderer.Actions(m.actions, m.cursor)
	case modeAmount:
		return styles.Label.Render(fmt.Sprintf("%s: enter amount", m.chosen)) + "\n" + m.input.View()
	case modeWinners:
		if len(m.potQueue) == 0 {
			return ""
		}
		pot, err := m.game.Pots().Pot(m.potQueue[0])
		if err != nil {
			return m.renderer.Error(err)
		}
		header := fmt.Sprintf("Who wins pot %d (%d chips)? Contenders: %s",
			pot.Index(), pot.Total(), strings.Join(pot.ActiveIDs(), ", "))
		return styles.Label.Render(header) + "\n" + m.input.View()
	case modeOver:
		return styles.Success.Render(fmt.Sprintf("Game over after %d hands.", m.game.Hands()))
	}
	return ""
}

func (m *Model) help() string {
	switch m.mode {
	case modeAction:
		return "↑/↓ choose • enter confirm • q quit"
	case modeAmount:
		return "enter confirm • esc back • ctrl+c quit"
	case modeWinners:
		return "enter confirm • ctrl+c quit"
	}
	return "enter/q quit"
}

// Run plays g in the terminal until the game ends or the user quits.
func Run(g *game.Game, renderer *display.Renderer, logger *log.Logger) error {
	program := tea.NewProgram(New(g, renderer, logger), tea.WithAltScreen())
	_, err := program.Run()
	return err
}
