package grid

import (
	"fmt"
	"strconv"
	"strings"
)

// Cell is a single grid entry.
type Cell int

const (
	CellNo   Cell = -1
	CellSkip Cell = 0
	CellYes  Cell = 1
)

// String returns the cell's CSV representation.
func (c Cell) String() string {
	return strconv.Itoa(int(c))
}

// Label returns the response word for the cell, or its number if it is not
// a known value.
func (c Cell) Label() string {
	switch c {
	case CellYes:
		return "yes"
	case CellNo:
		return "no"
	case CellSkip:
		return "skip"
	default:
		return c.String()
	}
}

// Valid reports whether c is one of the three recognised values.
func (c Cell) Valid() bool {
	return c == CellYes || c == CellNo || c == CellSkip
}

// Grid is an ordered list of rows of cells.
type Grid [][]Cell

// New returns a rows x cols grid of skip cells.
func New(rows, cols int) (Grid, error) {
	if rows < 0 || cols < 0 {
		return nil, fmt.Errorf("grid dimensions must be non-negative, got %dx%d", rows, cols)
	}
	g := make(Grid, rows)
	for r := range g {
		g[r] = make([]Cell, cols)
	}
	return g, nil
}

// Rows returns the number of rows.
func (g Grid) Rows() int {
	return len(g)
}

// Cols returns the column count of the first row, or 0 for an empty grid.
func (g Grid) Cols() int {
	if len(g) == 0 {
		return 0
	}
	return len(g[0])
}

// Clone returns a deep copy of g.
func (g Grid) Clone() Grid {
	if g == nil {
		return nil
	}
	out := make(Grid, len(g))
	for r, row := range g {
		out[r] = append([]Cell(nil), row...)
	}
	return out
}

// Equal reports whether g and other have the same shape and values.
func (g Grid) Equal(other Grid) bool {
	if len(g) != len(other) {
		return false
	}
	for r := range g {
		if len(g[r]) != len(other[r]) {
			return false
		}
		for c := range g[r] {
			if g[r][c] != other[r][c] {
				return false
			}
		}
	}
	return true
}

// Get returns the cell at (row, col).
func (g Grid) Get(row, col int) (Cell, error) {
	if err := g.checkBounds(row, col); err != nil {
		return 0, err
	}
	return g[row][col], nil
}

// Counts tallies the cells of g by value.
type Counts struct {
	Yes   int
	No    int
	Skip  int
	Other int
}

// Total returns the number of cells counted.
func (c Counts) Total() int {
	return c.Yes + c.No + c.Skip + c.Other
}

// Add tallies a single cell.
func (c *Counts) Add(cell Cell) {
	switch cell {
	case CellYes:
		c.Yes++
	case CellNo:
		c.No++
	case CellSkip:
		c.Skip++
	default:
		c.Other++
	}
}

// Counts returns the value tally over every cell in g.
func (g Grid) Counts() Counts {
	var counts Counts
	for _, row := range g {
		for _, cell := range row {
			counts.Add(cell)
		}
	}
	return counts
}

// FormatRow renders a row as "[a, b, c]".
func FormatRow(row []Cell) string {
	parts := make([]string, len(row))
	for i, cell := range row {
		parts[i] = cell.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// ParseResponse maps a response word to a cell value. "yes" and "no" are
// matched case-insensitively; every other input is skip.
func ParseResponse(response string) Cell {
	switch strings.ToLower(strings.TrimSpace(response)) {
	case "yes":
		return CellYes
	case "no":
		return CellNo
	default:
		return CellSkip
	}
}

// ParseIndex parses a 0-based row or column index typed by a user.
// field names the index in the returned ParseError.
func ParseIndex(field, input string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil {
		return 0, &ParseError{Field: field, Input: input, Err: err}
	}
	return n, nil
}

// UpdateCell returns a copy of g with the cell at (row, col) set from
// response. g itself is not modified.
func UpdateCell(g Grid, row, col int, response string) (Grid, error) {
	if err := g.checkBounds(row, col); err != nil {
		return nil, err
	}
	out := g.Clone()
	out[row][col] = ParseResponse(response)
	return out, nil
}

func (g Grid) checkBounds(row, col int) error {
	if row < 0 || row >= len(g) {
		return &OutOfRangeError{Row: row, Col: col, Rows: len(g), Cols: g.Cols()}
	}
	if col < 0 || col >= len(g[row]) {
		return &OutOfRangeError{Row: row, Col: col, Rows: len(g), Cols: len(g[row])}
	}
	return nil
}
