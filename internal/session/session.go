// Package session runs the interactive prompt loop over a grid file.
package session

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/nibzard/gridmark/internal/grid"
	"github.com/nibzard/gridmark/internal/logging"
)

// QuitKeyword ends the session when entered at the row prompt.
const QuitKeyword = "quit"

// Prompts and messages written to the output.
const (
	PromptRows     = "Enter number of rows: "
	PromptCols     = "Enter number of columns: "
	PromptRow      = "Enter row number (0-based): "
	PromptCol      = "Enter column number (0-based): "
	PromptResponse = "Enter response (yes/no/skip): "
	QuitHint       = "Enter 'quit' to exit"
	InvalidInput   = "Invalid input. Please try again."
	GridHeader     = "Current Grid State:"
)

// State is a position in the session state machine.
type State int

const (
	StateAwaitingInit State = iota
	StatePromptingRow
	StatePromptingColAndResponse
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateAwaitingInit:
		return "awaiting-init"
	case StatePromptingRow:
		return "prompting-row"
	case StatePromptingColAndResponse:
		return "prompting-col-and-response"
	case StateTerminated:
		return "terminated"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Recorder receives journal events for a session.
type Recorder interface {
	Record(event logging.Event) error
}

// Session drives one console run against a grid store.
type Session struct {
	store    *grid.Store
	in       *bufio.Reader
	out      io.Writer
	logger   *log.Logger
	recorder Recorder
	state    State

	lines chan lineResult
	done  chan struct{}
}

type lineResult struct {
	line string
	err  error
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the diagnostic logger.
func WithLogger(logger *log.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithRecorder sets the journal recorder.
func WithRecorder(r Recorder) Option {
	return func(s *Session) {
		s.recorder = r
	}
}

// New creates a session that reads answers from in and writes prompts and
// the grid display to out.
func New(store *grid.Store, in io.Reader, out io.Writer, opts ...Option) *Session {
	s := &Session{
		store:  store,
		in:     bufio.NewReader(in),
		out:    out,
		logger: logging.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current state.
func (s *Session) State() State {
	return s.state
}

// Run initializes the grid if needed and loops until the quit keyword, end
// of input, or ctx is done. Invalid coordinates are reported and retried;
// setup and file I/O failures are returned.
func (s *Session) Run(ctx context.Context) error {
	s.done = make(chan struct{})
	defer close(s.done)

	exists, err := s.store.Exists()
	if err != nil {
		return err
	}
	if exists {
		s.state = StatePromptingRow
	} else {
		s.state = StateAwaitingInit
		if err := s.initialize(ctx); err != nil {
			if errors.Is(err, io.EOF) {
				s.transition(StateTerminated)
				return nil
			}
			return err
		}
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		g, err := s.store.Load()
		if err != nil {
			return fmt.Errorf("load grid: %w", err)
		}
		s.display(g)

		s.transition(StatePromptingRow)
		fmt.Fprintf(s.out, "\n%s\n", QuitHint)
		rowInput, err := s.prompt(ctx, PromptRow)
		if err != nil {
			return s.endOfInput(err)
		}
		if strings.EqualFold(strings.TrimSpace(rowInput), QuitKeyword) {
			s.transition(StateTerminated)
			s.record(logging.Event{Type: logging.EventQuit, GridFile: s.store.Path})
			return nil
		}

		s.transition(StatePromptingColAndResponse)
		colInput, err := s.prompt(ctx, PromptCol)
		if err != nil {
			return s.endOfInput(err)
		}
		response, err := s.prompt(ctx, PromptResponse)
		if err != nil {
			return s.endOfInput(err)
		}

		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.apply(rowInput, colInput, response); err != nil {
			if !recoverable(err) {
				return err
			}
			s.logger.Debug("rejected input", "row", rowInput, "col", colInput, "err", err)
			s.record(logging.Event{
				Type:     logging.EventInvalid,
				GridFile: s.store.Path,
				Response: response,
				Message:  err.Error(),
			})
			fmt.Fprintln(s.out, InvalidInput)
		}
	}
}

func (s *Session) initialize(ctx context.Context) error {
	rowsInput, err := s.prompt(ctx, PromptRows)
	if err != nil {
		return err
	}
	colsInput, err := s.prompt(ctx, PromptCols)
	if err != nil {
		return err
	}
	rows, err := grid.ParseIndex("rows", rowsInput)
	if err != nil {
		return err
	}
	cols, err := grid.ParseIndex("columns", colsInput)
	if err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := s.store.Initialize(rows, cols); err != nil {
		return fmt.Errorf("initialize grid: %w", err)
	}
	fmt.Fprintf(s.out, "Grid initialized with %dx%d grid of zeros\n", rows, cols)
	s.logger.Info("grid initialized", "path", s.store.Path, "rows", rows, "cols", cols)
	s.record(logging.Event{
		Type:     logging.EventInit,
		GridFile: s.store.Path,
		Rows:     logging.Int(rows),
		Cols:     logging.Int(cols),
	})
	return nil
}

func (s *Session) apply(rowInput, colInput, response string) error {
	row, err := grid.ParseIndex("row", rowInput)
	if err != nil {
		return err
	}
	col, err := grid.ParseIndex("column", colInput)
	if err != nil {
		return err
	}

	update, err := s.store.Update(row, col, response)
	if err != nil {
		return err
	}

	s.logger.Debug("cell updated", "row", row, "col", col, "from", update.Previous, "to", update.Value)
	s.record(logging.Event{
		Type:     logging.EventUpdate,
		GridFile: s.store.Path,
		Row:      logging.Int(row),
		Col:      logging.Int(col),
		Response: response,
		Previous: logging.Int(int(update.Previous)),
		Value:    logging.Int(int(update.Value)),
	})
	return nil
}

func (s *Session) display(g grid.Grid) {
	fmt.Fprintf(s.out, "\n%s\n", GridHeader)
	for _, row := range g {
		fmt.Fprintln(s.out, grid.FormatRow(row))
	}
}

// prompt writes label and waits for one line or for ctx to be done. A
// final line without a newline is returned as-is; io.EOF is returned only
// when no input remains.
func (s *Session) prompt(ctx context.Context, label string) (string, error) {
	fmt.Fprint(s.out, label)
	if s.lines == nil {
		s.lines = make(chan lineResult)
		go s.readLines()
	}

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res, ok := <-s.lines:
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if !ok {
			return "", io.EOF
		}
		if res.err != nil {
			return "", res.err
		}
		return strings.TrimRight(res.line, "\r\n"), nil
	}
}

// readLines feeds input lines to prompt until the input fails or Run
// returns. It stays at most one line ahead of the prompts.
func (s *Session) readLines() {
	defer close(s.lines)
	for {
		line, err := s.in.ReadString('\n')
		if line != "" && !s.send(lineResult{line: line}) {
			return
		}
		if err != nil {
			s.send(lineResult{err: err})
			return
		}
	}
}

func (s *Session) send(res lineResult) bool {
	select {
	case s.lines <- res:
		return true
	case <-s.done:
		return false
	}
}

func (s *Session) endOfInput(err error) error {
	if errors.Is(err, io.EOF) {
		fmt.Fprintln(s.out)
		s.transition(StateTerminated)
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("read input: %w", err)
}

func (s *Session) transition(next State) {
	if s.state != next {
		s.logger.Debug("session state", "from", s.state, "to", next)
	}
	s.state = next
}

func (s *Session) record(event logging.Event) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.Record(event); err != nil {
		s.logger.Warn("journal write failed", "err", err)
	}
}

// recoverable reports whether err is an input problem the loop retries.
func recoverable(err error) bool {
	var (
		parseErr     *grid.ParseError
		rangeErr     *grid.OutOfRangeError
		notFoundErr  *grid.NotFoundError
		malformedErr *grid.MalformedDataError
	)
	return errors.As(err, &parseErr) ||
		errors.As(err, &rangeErr) ||
		errors.As(err, &notFoundErr) ||
		errors.As(err, &malformedErr)
}
