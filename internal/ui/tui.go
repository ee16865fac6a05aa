// Package ui provides an optional terminal grid editor.
package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nibzard/gridmark/internal/grid"
	"github.com/nibzard/gridmark/internal/logging"
)

// Recorder receives journal events for edits made in the editor.
type Recorder interface {
	Record(event logging.Event) error
}

// TUIOption configures the TUI behavior.
type TUIOption func(*tuiModel)

// WithRecorder journals every edit.
func WithRecorder(r Recorder) TUIOption {
	return func(m *tuiModel) {
		m.recorder = r
	}
}

// RunTUI opens the grid editor on store. The grid file must already exist.
func RunTUI(ctx context.Context, store *grid.Store, opts ...TUIOption) error {
	if !IsTTY(os.Stdout) {
		return fmt.Errorf("tui requires a TTY")
	}

	model := newTUIModel(store, opts...)
	if model.loadErr != nil {
		return model.loadErr
	}

	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	finalModel, err := program.Run()
	if err != nil {
		return err
	}
	if m, ok := finalModel.(*tuiModel); ok && m.fatalErr != nil {
		return m.fatalErr
	}
	return nil
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	yesStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	noStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	skipStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	otherStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	selectedStyle = lipgloss.NewStyle().Reverse(true)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	footerStyle   = lipgloss.NewStyle().Faint(true)
)

type tuiModel struct {
	store    *grid.Store
	recorder Recorder
	grid     grid.Grid
	row      int
	col      int
	status   string
	loadErr  error
	fatalErr error
	showHelp bool
}

func newTUIModel(store *grid.Store, opts ...TUIOption) *tuiModel {
	m := &tuiModel{store: store}
	for _, opt := range opts {
		opt(m)
	}
	m.refresh()
	return m
}

func (m *tuiModel) Init() tea.Cmd {
	return nil
}

func (m *tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "up", "k":
		m.move(-1, 0)
	case "down", "j":
		m.move(1, 0)
	case "left", "h":
		m.move(0, -1)
	case "right", "l":
		m.move(0, 1)
	case "y":
		return m, m.set("yes")
	case "n":
		return m, m.set("no")
	case "s", " ", "space":
		return m, m.set("skip")
	case "r", "f5":
		m.refresh()
		if m.loadErr == nil {
			m.status = "Reloaded"
		}
	case "?":
		m.showHelp = !m.showHelp
	}
	return m, nil
}

func (m *tuiModel) move(dr, dc int) {
	if len(m.grid) == 0 {
		return
	}
	m.row = clamp(m.row+dr, 0, len(m.grid)-1)
	m.col = clamp(m.col+dc, 0, len(m.grid[m.row])-1)
}

func (m *tuiModel) set(response string) tea.Cmd {
	update, err := m.store.Update(m.row, m.col, response)
	if err != nil {
		if isInputError(err) {
			m.status = err.Error()
			m.refresh()
			return nil
		}
		m.fatalErr = err
		return tea.Quit
	}
	m.grid = update.Grid
	m.status = fmt.Sprintf("Set (%d, %d) to %s", update.Row, update.Col, update.Value.Label())
	if m.recorder != nil {
		err := m.recorder.Record(logging.Event{
			Type:     logging.EventUpdate,
			GridFile: m.store.Path,
			Row:      logging.Int(update.Row),
			Col:      logging.Int(update.Col),
			Response: response,
			Previous: logging.Int(int(update.Previous)),
			Value:    logging.Int(int(update.Value)),
		})
		if err != nil {
			m.status += fmt.Sprintf(" (journal write failed: %v)", err)
		}
	}
	return nil
}

func (m *tuiModel) refresh() {
	g, err := m.store.Load()
	if err != nil {
		m.loadErr = err
		return
	}
	m.loadErr = nil
	m.grid = g
	m.move(0, 0)
}

func (m *tuiModel) View() string {
	var b strings.Builder
	writeTitle(&b, m.store.Path)

	if m.showHelp {
		writeHelp(&b)
		writeFooter(&b)
		return b.String()
	}

	if m.loadErr != nil {
		b.WriteString(errorStyle.Render("Error loading grid file:") + "\n")
		b.WriteString("  " + m.loadErr.Error() + "\n\n")
		writeFooter(&b)
		return b.String()
	}

	writeGrid(&b, m.grid, m.row, m.col)
	writeCounts(&b, m.grid.Counts())
	if m.status != "" {
		b.WriteString(m.status + "\n\n")
	}
	writeFooter(&b)
	return b.String()
}

func writeTitle(b *strings.Builder, path string) {
	title := "gridmark"
	b.WriteString(titleStyle.Render(title) + "  " + path + "\n")
	b.WriteString(strings.Repeat("=", len(title)) + "\n\n")
}

func writeGrid(b *strings.Builder, g grid.Grid, selRow, selCol int) {
	if len(g) == 0 {
		b.WriteString("  (empty grid)\n\n")
		return
	}

	b.WriteString("     ")
	for c := 0; c < g.Cols(); c++ {
		b.WriteString(fmt.Sprintf("%4d", c))
	}
	b.WriteString("\n")

	for r, row := range g {
		b.WriteString(fmt.Sprintf("  %3d", r))
		for c, cell := range row {
			text := fmt.Sprintf("%4s", cell.String())
			style := cellStyle(cell)
			if r == selRow && c == selCol {
				style = style.Inherit(selectedStyle)
			}
			b.WriteString(style.Render(text))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

func cellStyle(cell grid.Cell) lipgloss.Style {
	switch cell {
	case grid.CellYes:
		return yesStyle
	case grid.CellNo:
		return noStyle
	case grid.CellSkip:
		return skipStyle
	default:
		return otherStyle
	}
}

func writeCounts(b *strings.Builder, counts grid.Counts) {
	b.WriteString(fmt.Sprintf("  Yes: %d  No: %d  Skip: %d", counts.Yes, counts.No, counts.Skip))
	if counts.Other > 0 {
		b.WriteString(fmt.Sprintf("  Other: %d", counts.Other))
	}
	b.WriteString("\n\n")
}

func writeHelp(b *strings.Builder) {
	b.WriteString("Keyboard Shortcuts\n\n")
	b.WriteString("  arrows, hjkl   Move the cursor\n")
	b.WriteString("  y              Mark cell yes\n")
	b.WriteString("  n              Mark cell no\n")
	b.WriteString("  s, space       Mark cell skip\n")
	b.WriteString("  r, F5          Reload from disk\n")
	b.WriteString("  ?              Toggle this help screen\n")
	b.WriteString("  q, ctrl+c      Quit\n\n")
}

func writeFooter(b *strings.Builder) {
	b.WriteString(footerStyle.Render("Press ? for help | q to quit") + "\n")
}

func isInputError(err error) bool {
	var (
		rangeErr     *grid.OutOfRangeError
		notFoundErr  *grid.NotFoundError
		malformedErr *grid.MalformedDataError
	)
	return errors.As(err, &rangeErr) ||
		errors.As(err, &notFoundErr) ||
		errors.As(err, &malformedErr)
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// IsTTY returns true if w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
