// Package tui is an interactive seat picker for one flight.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Domenick1991/seatbooking/internal/domain"
	"github.com/Domenick1991/seatbooking/internal/seatmap"
	"github.com/Domenick1991/seatbooking/internal/selection"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
)

const requestTimeout = 15 * time.Second

// Backend is what the picker needs from the API.
type Backend interface {
	SeatMap(ctx context.Context, flightID int64) (*seatmap.Grid, error)
	CommitBooking(ctx context.Context, flightID int64, seatIDs []string, idempotencyKey string) (*domain.BookingResult, error)
}

type seatMapMsg struct {
	grid *seatmap.Grid
	err  error
}

type commitMsg struct {
	result *domain.BookingResult
	err    error
}

var (
	titleStyle     = lipgloss.NewStyle().Bold(true)
	availableStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	bookedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	selectedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("5")).Bold(true)
	cursorStyle    = lipgloss.NewStyle().Reverse(true)
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	hintStyle      = lipgloss.NewStyle().Faint(true)
)

type Model struct {
	backend  Backend
	flightID int64
	grid     *seatmap.Grid
	sel      *selection.Set
	row, col int

	keys    keyMap
	help    help.Model
	spinner spinner.Model
	loading bool

	status string
	err    error
	last   *domain.BookingResult
	newKey func() string
	// remaining are the seats of the last conflicted commit that were not
	// reported as conflicting.
	remaining []string
}

func New(backend Backend, flightID int64) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
	return Model{
		backend:  backend,
		flightID: flightID,
		sel:      selection.New(flightID, nil),
		keys:     defaultKeyMap(),
		help:     help.New(),
		spinner:  sp,
		loading:  true,
		newKey:   uuid.NewString,
	}
}

// LastResult is the result of the latest commit, if any.
func (m Model) LastResult() *domain.BookingResult {
	return m.last
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetchSeatMapCmd())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case seatMapMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.grid = msg.grid
		m.sel.Refresh(msg.grid)
		m.clampCursor()
		return m, nil

	case commitMsg:
		m.loading = false
		return m.handleCommit(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}
	if m.loading {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Up):
		m.move(-1, 0)
	case key.Matches(msg, m.keys.Down):
		m.move(1, 0)
	case key.Matches(msg, m.keys.Left):
		m.move(0, -1)
	case key.Matches(msg, m.keys.Right):
		m.move(0, 1)
	case key.Matches(msg, m.keys.Toggle):
		m.toggle()
	case key.Matches(msg, m.keys.Refresh):
		m.loading = true
		m.status = ""
		return m, tea.Batch(m.spinner.Tick, m.fetchSeatMapCmd())
	case key.Matches(msg, m.keys.Reselect):
		m.reselect()
	case key.Matches(msg, m.keys.Commit):
		if m.sel.Len() == 0 {
			m.status = "Select at least one seat."
			return m, nil
		}
		m.loading = true
		m.status = ""
		return m, tea.Batch(m.spinner.Tick, m.commitCmd(m.sel.IDs()))
	}
	return m, nil
}

// handleCommit empties the selection whatever the outcome, so the next
// attempt starts from a fresh seat map.
func (m Model) handleCommit(msg commitMsg) (tea.Model, tea.Cmd) {
	m.err = nil
	m.last = msg.result
	m.remaining = nil
	switch {
	case msg.err != nil:
		m.status = fmt.Sprintf("Commit failed: %v. Select again to retry.", msg.err)
	case msg.result.Succeeded():
		m.status = fmt.Sprintf("Booked %d seat(s).", len(msg.result.BookedSeats))
	case msg.result.Retryable:
		m.status = "The seat inventory did not answer; nothing was booked. Select again to retry."
	default:
		m.status = fmt.Sprintf("Nothing was booked: %s already taken.", strings.Join(msg.result.ConflictingSeats, ", "))
		m.sel.Drop(msg.result.ConflictingSeats...)
		if m.remaining = m.sel.IDs(); len(m.remaining) > 0 {
			m.status += fmt.Sprintf(" Press %s to select the other %d seat(s) again.", m.keys.Reselect.Help().Key, len(m.remaining))
		}
	}
	m.sel.Clear()
	m.loading = true
	return m, tea.Batch(m.spinner.Tick, m.fetchSeatMapCmd())
}

// reselect picks the unconflicted seats of the last conflict again. Seats
// taken since then are skipped.
func (m *Model) reselect() {
	if len(m.remaining) == 0 {
		return
	}
	picked := 0
	for _, id := range m.remaining {
		if err := m.sel.Add(id); err == nil {
			picked++
		}
	}
	m.status = fmt.Sprintf("Selected %d of %d seat(s) again.", picked, len(m.remaining))
	m.remaining = nil
}

func (m *Model) move(dr, dc int) {
	if m.grid == nil {
		return
	}
	m.row = clamp(m.row+dr, len(m.grid.Rows))
	m.col = clamp(m.col+dc, len(m.grid.Cols))
}

func (m *Model) clampCursor() {
	m.move(0, 0)
}

func (m *Model) toggle() {
	cell, ok := m.cursorCell()
	if !ok || cell.Empty() {
		return
	}
	selected, err := m.sel.Toggle(cell.SeatID)
	switch {
	case errors.Is(err, domain.ErrInvalidSelection):
		m.status = "That seat is not available."
	case err != nil:
		m.status = err.Error()
	case selected:
		m.status = fmt.Sprintf("Selected %s.", seatLabel(cell))
	default:
		m.status = fmt.Sprintf("Released %s.", seatLabel(cell))
	}
}

func (m Model) cursorCell() (seatmap.Cell, bool) {
	if m.grid == nil || len(m.grid.Rows) == 0 || len(m.grid.Cols) == 0 {
		return seatmap.Cell{}, false
	}
	return m.grid.Cells[m.row][m.col], true
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Flight %s", m.flightLabel())))
	b.WriteString("\n\n")

	switch {
	case m.grid != nil:
		b.WriteString(m.renderGrid())
	case m.err == nil:
		b.WriteString(m.spinner.View() + " Loading seat map...")
	}
	b.WriteString("\n")

	if m.loading && m.grid != nil {
		b.WriteString(m.spinner.View() + " Working...\n")
	}
	if m.err != nil {
		b.WriteString(errorStyle.Render(m.err.Error()) + "\n")
	}
	if m.status != "" {
		b.WriteString(m.status + "\n")
	}
	b.WriteString(hintStyle.Render(fmt.Sprintf("%d selected", m.sel.Len())) + "\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Model) flightLabel() string {
	if m.grid != nil && m.grid.FlightNumber != "" {
		return m.grid.FlightNumber
	}
	return fmt.Sprintf("#%d", m.flightID)
}

func (m Model) renderGrid() string {
	if len(m.grid.Rows) == 0 {
		return "No seats on this flight.\n"
	}
	var b strings.Builder
	b.WriteString("    ")
	for _, col := range m.grid.Cols {
		b.WriteString(fmt.Sprintf(" %s ", columnLetter(col)))
	}
	b.WriteString("\n")

	for r, row := range m.grid.Rows {
		b.WriteString(fmt.Sprintf("%3d ", row))
		for c, cell := range m.grid.Cells[r] {
			token, style := "   ", lipgloss.NewStyle()
			switch {
			case cell.Empty():
			case m.sel.Contains(cell.SeatID):
				token, style = "[*]", selectedStyle
			case cell.Status == domain.SeatBooked:
				token, style = "[x]", bookedStyle
			default:
				token, style = "[ ]", availableStyle
			}
			if r == m.row && c == m.col {
				style = style.Inherit(cursorStyle)
			}
			b.WriteString(style.Render(token))
		}
		b.WriteString("\n")
	}
	b.WriteString(hintStyle.Render(fmt.Sprintf("[ ] free  [x] booked  [*] selected  %d free of %d", m.grid.Available, m.grid.SeatCount())))
	b.WriteString("\n")
	return b.String()
}

func (m Model) fetchSeatMapCmd() tea.Cmd {
	backend, flightID := m.backend, m.flightID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		grid, err := backend.SeatMap(ctx, flightID)
		return seatMapMsg{grid: grid, err: err}
	}
}

// commitCmd uses one idempotency key for the whole commit, including the
// client's own retries.
func (m Model) commitCmd(seatIDs []string) tea.Cmd {
	backend, flightID, key := m.backend, m.flightID, m.newKey()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		result, err := backend.CommitBooking(ctx, flightID, seatIDs, key)
		return commitMsg{result: result, err: err}
	}
}

func clamp(v, n int) int {
	if n == 0 || v < 0 {
		return 0
	}
	if v >= n {
		return n - 1
	}
	return v
}

func columnLetter(col int) string {
	if col >= 1 && col <= 26 {
		return string(rune('A' + col - 1))
	}
	return fmt.Sprintf("%d", col)
}

func seatLabel(cell seatmap.Cell) string {
	return fmt.Sprintf("%d%s", cell.SeatRow, columnLetter(cell.Col))
}
