package grid

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// DefaultFile is the backing file name used when none is configured.
const DefaultFile = "grid.csv"

// Initialize writes a rows x cols grid of zeros to path, replacing any
// existing file, and returns the new grid.
func Initialize(path string, rows, cols int) (Grid, error) {
	g, err := New(rows, cols)
	if err != nil {
		return nil, err
	}
	if err := Persist(g, path); err != nil {
		return nil, err
	}
	return g, nil
}

// Load reads the grid stored at path.
func Load(path string) (Grid, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &NotFoundError{Path: path, Err: err}
		}
		return nil, fmt.Errorf("open grid file: %w", err)
	}
	defer file.Close()

	return Decode(file, path)
}

// Decode parses CSV grid data from r. name is used in error messages.
func Decode(r io.Reader, name string) (Grid, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 0
	reader.TrimLeadingSpace = true

	var g Grid
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				reason := pe.Err.Error()
				if errors.Is(pe.Err, csv.ErrFieldCount) {
					reason = fmt.Sprintf("expected %d cells per row, got %d", g.Cols(), len(record))
				}
				return nil, &MalformedDataError{Path: name, Line: pe.Line, Reason: reason, Err: err}
			}
			return nil, fmt.Errorf("read grid file: %w", err)
		}

		line, _ := reader.FieldPos(0)
		row := make([]Cell, len(record))
		for i, field := range record {
			n, err := strconv.Atoi(strings.TrimSpace(field))
			if err != nil {
				return nil, &MalformedDataError{
					Path:   name,
					Line:   line,
					Reason: fmt.Sprintf("cell %d: %q is not an integer", i, field),
					Err:    err,
				}
			}
			row[i] = Cell(n)
		}
		g = append(g, row)
	}

	if g == nil {
		g = Grid{}
	}
	return g, nil
}

// Encode writes g to w as CSV.
func Encode(w io.Writer, g Grid) error {
	writer := csv.NewWriter(w)
	for _, row := range g {
		record := make([]string, len(row))
		for i, cell := range row {
			record[i] = cell.String()
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write grid row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// Persist writes g to path. The data goes to a temporary file in the same
// directory first and is renamed over path once fully written.
func Persist(g Grid, path string) error {
	return WriteFileAtomic(path, func(w io.Writer) error {
		if err := Encode(w, g); err != nil {
			return fmt.Errorf("encode grid: %w", err)
		}
		return nil
	})
}

// WriteFileAtomic replaces path with whatever write produces. The file is
// written to a temp file beside path, synced and renamed into place, so
// path is untouched if write or any later step fails. An existing file
// keeps its permissions; new files get 0644.
func WriteFileAtomic(path string, write func(w io.Writer) error) (err error) {
	mode := os.FileMode(0644)
	if info, statErr := os.Stat(path); statErr == nil {
		if info.IsDir() {
			return fmt.Errorf("%s is a directory", path)
		}
		mode = info.Mode().Perm()
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if err := write(tmp); err != nil {
		return err
	}
	if err := tmp.Chmod(mode); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("replace %s: %w", filepath.Base(path), err)
	}
	return nil
}

// Store binds grid operations to one backing file.
type Store struct {
	Path string
}

// NewStore returns a store for path, or for DefaultFile when path is empty.
func NewStore(path string) *Store {
	if path == "" {
		path = DefaultFile
	}
	return &Store{Path: path}
}

// Exists reports whether the backing file is present.
func (s *Store) Exists() (bool, error) {
	info, err := os.Stat(s.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("stat grid file: %w", err)
	}
	if info.IsDir() {
		return false, fmt.Errorf("grid path is a directory: %s", s.Path)
	}
	return true, nil
}

// Initialize replaces the backing file with a rows x cols grid of zeros.
func (s *Store) Initialize(rows, cols int) (Grid, error) {
	return Initialize(s.Path, rows, cols)
}

// Load reads the backing file.
func (s *Store) Load() (Grid, error) {
	return Load(s.Path)
}

// Persist replaces the backing file with g.
func (s *Store) Persist(g Grid) error {
	return Persist(g, s.Path)
}

// Update is the result of a single-cell write.
type Update struct {
	Row      int
	Col      int
	Response string
	Previous Cell
	Value    Cell
	Grid     Grid
}

// Update loads the grid, sets one cell and persists the result. Nothing is
// written when the coordinate is out of range.
func (s *Store) Update(row, col int, response string) (*Update, error) {
	g, err := s.Load()
	if err != nil {
		return nil, err
	}
	previous, err := g.Get(row, col)
	if err != nil {
		return nil, err
	}
	updated, err := UpdateCell(g, row, col, response)
	if err != nil {
		return nil, err
	}
	if err := s.Persist(updated); err != nil {
		return nil, err
	}
	return &Update{
		Row:      row,
		Col:      col,
		Response: response,
		Previous: previous,
		Value:    updated[row][col],
		Grid:     updated,
	}, nil
}
