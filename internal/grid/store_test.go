package grid

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func TestInitialize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grid.csv")

	g, err := Initialize(path, 3, 4)
	if err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if g.Rows() != 3 || g.Cols() != 4 {
		t.Errorf("Initialize returned %dx%d, want 3x4", g.Rows(), g.Cols())
	}

	want := "0,0,0,0\n0,0,0,0\n0,0,0,0\n"
	if got := readFile(t, path); got != want {
		t.Errorf("file content = %q, want %q", got, want)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Rows() != 3 {
		t.Fatalf("rows = %d, want 3", loaded.Rows())
	}
	for r, row := range loaded {
		if len(row) != 4 {
			t.Errorf("row %d has %d cells, want 4", r, len(row))
		}
		for c, cell := range row {
			if cell != CellSkip {
				t.Errorf("cell (%d, %d) = %d, want 0", r, c, cell)
			}
		}
	}
}

func TestInitializeOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grid.csv")
	if err := os.WriteFile(path, []byte("1,1,1\n-1,-1,-1\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Initialize(path, 1, 2); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if got := readFile(t, path); got != "0,0\n" {
		t.Errorf("file content = %q, want %q", got, "0,0\n")
	}
}

func TestInitializeNegative(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grid.csv")
	if _, err := Initialize(path, -2, 3); err == nil {
		t.Fatal("expected error for negative rows")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("expected no file to be written, stat err = %v", err)
	}
}

func TestInitializeZeroColumns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grid.csv")
	if _, err := Initialize(path, 2, 0); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	g, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if g.Rows() != 0 {
		t.Errorf("rows = %d, want 0 (blank lines are ignored)", g.Rows())
	}
}

func TestLoadNotFound(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.csv")
	_, err := Load(path)
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("Load error = %v, want NotFoundError", err)
	}
	if nf.Path != path {
		t.Errorf("NotFoundError.Path = %q, want %q", nf.Path, path)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Error("NotFoundError should unwrap to os.ErrNotExist")
	}
}

func TestLoadMalformed(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantLine int
	}{
		{"ragged rows", "0,0,0\n0,0\n", 2},
		{"extra cell", "0,0\n0,0\n0,0,0\n", 3},
		{"non-integer cell", "0,0\n0,abc\n", 2},
		{"float cell", "0.5,0\n", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "grid.csv")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}
			_, err := Load(path)
			var md *MalformedDataError
			if !errors.As(err, &md) {
				t.Fatalf("Load error = %v, want MalformedDataError", err)
			}
			if md.Line != tt.wantLine {
				t.Errorf("MalformedDataError.Line = %d, want %d", md.Line, tt.wantLine)
			}
		})
	}
}

func TestLoadToleratesWhitespaceAndExternalValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grid.csv")
	if err := os.WriteFile(path, []byte("1, 0\n\n5,-1\n"), 0644); err != nil {
		t.Fatal(err)
	}
	g, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	want := Grid{{1, 0}, {5, -1}}
	if diff := cmp.Diff(want, g); diff != "" {
		t.Errorf("Load mismatch (-want +got):\n%s", diff)
	}
}

func TestRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grid.csv")
	original := Grid{
		{1, 0, -1},
		{0, 0, 1},
		{-1, -1, 0},
	}
	if err := Persist(original, path); err != nil {
		t.Fatalf("Persist failed: %v", err)
	}

	first, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	before := readFile(t, path)

	if err := Persist(first, path); err != nil {
		t.Fatalf("Persist failed: %v", err)
	}
	second, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if diff := cmp.Diff(original, second); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
	if after := readFile(t, path); after != before {
		t.Errorf("file changed across round trip: %q -> %q", before, after)
	}
}

func TestUpdateScenario(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "grid.csv"))

	if _, err := store.Initialize(2, 2); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if got := readFile(t, store.Path); got != "0,0\n0,0\n" {
		t.Fatalf("after init: %q", got)
	}

	up, err := store.Update(0, 0, "yes")
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if up.Previous != CellSkip || up.Value != CellYes {
		t.Errorf("Update(0,0,yes) = %d -> %d, want 0 -> 1", up.Previous, up.Value)
	}
	if got := readFile(t, store.Path); got != "1,0\n0,0\n" {
		t.Fatalf("after yes: %q", got)
	}

	if _, err := store.Update(1, 1, "no"); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if got := readFile(t, store.Path); got != "1,0\n0,-1\n" {
		t.Fatalf("after no: %q", got)
	}
}

func TestUpdateOutOfRangeLeavesFileUnchanged(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "grid.csv"))
	if err := store.Persist(Grid{{1, 0}, {0, -1}}); err != nil {
		t.Fatal(err)
	}
	before, err := os.ReadFile(store.Path)
	if err != nil {
		t.Fatal(err)
	}
	infoBefore, err := os.Stat(store.Path)
	if err != nil {
		t.Fatal(err)
	}

	for _, coord := range [][2]int{{2, 0}, {0, 2}, {-1, 0}, {0, -1}} {
		_, err := store.Update(coord[0], coord[1], "yes")
		var oor *OutOfRangeError
		if !errors.As(err, &oor) {
			t.Fatalf("Update(%d, %d) error = %v, want OutOfRangeError", coord[0], coord[1], err)
		}
	}

	after, err := os.ReadFile(store.Path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(before, after) {
		t.Errorf("file changed: %q -> %q", before, after)
	}
	infoAfter, err := os.Stat(store.Path)
	if err != nil {
		t.Fatal(err)
	}
	if !os.SameFile(infoBefore, infoAfter) {
		t.Error("file was replaced despite out-of-range update")
	}
}

func TestUpdateMissingFile(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "grid.csv"))
	_, err := store.Update(0, 0, "yes")
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("Update error = %v, want NotFoundError", err)
	}
	if exists, _ := store.Exists(); exists {
		t.Error("Update must not create the backing file")
	}
}

func TestPersistLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "grid.csv")
	for i := 0; i < 3; i++ {
		if err := Persist(Grid{{Cell(i)}}, path); err != nil {
			t.Fatalf("Persist failed: %v", err)
		}
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "grid.csv" {
		var names []string
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("directory entries = %v, want [grid.csv]", names)
	}
}

func TestPersistMissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "grid.csv")
	err := Persist(Grid{{0}}, path)
	if err == nil {
		t.Fatal("expected error persisting into a missing directory")
	}
	if !strings.Contains(err.Error(), "create temp file") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestPersistKeepsFileMode(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("file modes are not enforced on windows")
	}
	dir := t.TempDir()

	private := filepath.Join(dir, "private.csv")
	if err := os.WriteFile(private, []byte("0\n"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := os.Chmod(private, 0600); err != nil {
		t.Fatal(err)
	}
	if err := Persist(Grid{{CellYes}}, private); err != nil {
		t.Fatalf("Persist failed: %v", err)
	}
	info, err := os.Stat(private)
	if err != nil {
		t.Fatal(err)
	}
	if got := info.Mode().Perm(); got != 0600 {
		t.Errorf("existing file mode = %o, want 600", got)
	}

	fresh := filepath.Join(dir, "fresh.csv")
	if err := Persist(Grid{{CellNo}}, fresh); err != nil {
		t.Fatalf("Persist failed: %v", err)
	}
	info, err = os.Stat(fresh)
	if err != nil {
		t.Fatal(err)
	}
	if got := info.Mode().Perm(); got != 0644 {
		t.Errorf("new file mode = %o, want 644", got)
	}
}

func TestWriteFileAtomicFailureKeepsTarget(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "grid.csv")
	if err := os.WriteFile(path, []byte("1,0\n"), 0644); err != nil {
		t.Fatal(err)
	}

	writeErr := errors.New("render failed")
	err := WriteFileAtomic(path, func(w io.Writer) error {
		if _, err := io.WriteString(w, "partial"); err != nil {
			return err
		}
		return writeErr
	})
	if !errors.Is(err, writeErr) {
		t.Fatalf("WriteFileAtomic error = %v, want %v", err, writeErr)
	}
	if got := readFile(t, path); got != "1,0\n" {
		t.Errorf("target content = %q, want unchanged", got)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("temp file left behind: %d entries", len(entries))
	}
}

func TestStoreExists(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(filepath.Join(dir, "grid.csv"))

	exists, err := store.Exists()
	if err != nil || exists {
		t.Fatalf("Exists() = %v, %v; want false, nil", exists, err)
	}
	if _, err := store.Initialize(1, 1); err != nil {
		t.Fatal(err)
	}
	exists, err = store.Exists()
	if err != nil || !exists {
		t.Fatalf("Exists() = %v, %v; want true, nil", exists, err)
	}

	if _, err := NewStore(dir).Exists(); err == nil {
		t.Error("expected error when the grid path is a directory")
	}
}

func TestNewStoreDefault(t *testing.T) {
	if got := NewStore("").Path; got != DefaultFile {
		t.Errorf("NewStore(\"\").Path = %q, want %q", got, DefaultFile)
	}
}
