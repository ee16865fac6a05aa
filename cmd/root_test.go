package cmd

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nibzard/gridmark/internal/config"
	"github.com/nibzard/gridmark/internal/grid"
	"github.com/nibzard/gridmark/internal/logging"
)

// isolate points config discovery at empty temp dirs and moves into a fresh
// working directory.
func isolate(t *testing.T) string {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	for _, key := range []string{
		"GRIDMARK_FILE", "GRIDMARK_JOURNAL", "GRIDMARK_JOURNAL_DIR",
		"GRIDMARK_LOG_LEVEL", "GRIDMARK_LOG_FORMAT",
		"GRIDMARK_LOG_TIMESTAMPS", "GRIDMARK_LOG_CALLER",
	} {
		t.Setenv(key, "")
	}
	wd := t.TempDir()
	// Equivalent of t.Chdir (Go 1.24+) for older toolchains.
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(wd); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PWD", wd)
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatal(err)
		}
	})
	return wd
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		GridFile:   filepath.Join(dir, "grid.csv"),
		JournalDir: filepath.Join(dir, "journal"),
		LogLevel:   "info",
		LogFormat:  "text",
		WorkDir:    dir,
	}
}

func writeGrid(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func readGrid(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestRun(t *testing.T) {
	ctx := context.Background()

	for _, args := range [][]string{{"--help"}, {"-h"}, {"help"}, {"--version"}, {"-v"}, {"version"}} {
		t.Run(strings.Join(args, " "), func(t *testing.T) {
			isolate(t)
			assert.NoError(t, Run(ctx, args))
		})
	}

	t.Run("unknown command returns error", func(t *testing.T) {
		isolate(t)
		err := Run(ctx, []string{"unknown-command"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown command")
	})

	t.Run("init uses the grid flag", func(t *testing.T) {
		wd := isolate(t)
		require.NoError(t, Run(ctx, []string{"-grid", "marks.csv", "init", "2", "3"}))
		assert.Equal(t, "0,0,0\n0,0,0\n", readGrid(t, filepath.Join(wd, "marks.csv")))
	})

	t.Run("bad config file is reported", func(t *testing.T) {
		wd := isolate(t)
		writeGrid(t, filepath.Join(wd, "gridmark.toml"), "no_such_key = 1\n")
		err := Run(ctx, []string{"version"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "loading config")
	})
}

func TestRunCommandScenario(t *testing.T) {
	cfg := testConfig(t)
	writeGrid(t, cfg.GridFile, "0,0\n0,0\n")

	in := strings.NewReader("0\n0\nyes\n1\n1\nno\nquit\n")
	var out bytes.Buffer
	err := runCommand(context.Background(), cfg, logging.Discard(), nil, in, &out)
	require.NoError(t, err)

	assert.Equal(t, "1,0\n0,-1\n", readGrid(t, cfg.GridFile))
	assert.Contains(t, out.String(), "Current Grid State:\n[1, 0]\n[0, -1]\n")
}

func TestRunCommandInitializesAndJournals(t *testing.T) {
	cfg := testConfig(t)
	cfg.Journal = true

	in := strings.NewReader("2\n2\n0\n1\nyes\nquit\n")
	var out bytes.Buffer
	err := runCommand(context.Background(), cfg, logging.Discard(), nil, in, &out)
	require.NoError(t, err)

	assert.Contains(t, out.String(), "Grid initialized with 2x2 grid of zeros")
	assert.Equal(t, "0,1\n0,0\n", readGrid(t, cfg.GridFile))

	logDir, err := logging.FindLogDir(cfg.JournalDir, cfg.WorkDir)
	require.NoError(t, err)
	logPath, err := logging.FindLatestLog(logDir)
	require.NoError(t, err)
	require.NotEmpty(t, logPath)

	f, err := os.Open(logPath)
	require.NoError(t, err)
	defer f.Close()

	var types []string
	sessionIDs := map[string]bool{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var event logging.Event
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &event))
		types = append(types, event.Type)
		sessionIDs[event.SessionID] = true
	}
	require.NoError(t, scanner.Err())
	assert.Equal(t, []string{logging.EventInit, logging.EventUpdate, logging.EventQuit}, types)
	assert.Len(t, sessionIDs, 1)
}

func TestRunCommandNoJournalFlag(t *testing.T) {
	cfg := testConfig(t)
	cfg.Journal = true
	writeGrid(t, cfg.GridFile, "0\n")

	err := runCommand(context.Background(), cfg, logging.Discard(), []string{"-no-journal"}, strings.NewReader("quit\n"), &bytes.Buffer{})
	require.NoError(t, err)
	_, err = os.Stat(cfg.JournalDir)
	assert.True(t, os.IsNotExist(err), "journal dir should not be created")
}

func TestRunCommandPositionalGridFile(t *testing.T) {
	cfg := testConfig(t)
	other := filepath.Join(cfg.WorkDir, "other.csv")
	writeGrid(t, other, "0,0\n")

	err := runCommand(context.Background(), cfg, logging.Discard(), []string{"other.csv"}, strings.NewReader("0\n1\nno\nquit\n"), &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, "0,-1\n", readGrid(t, other))
	assert.NoFileExists(t, cfg.GridFile)
}

func TestInitCommand(t *testing.T) {
	t.Run("creates grid", func(t *testing.T) {
		cfg := testConfig(t)
		var out bytes.Buffer
		require.NoError(t, initCommand(cfg, logging.Discard(), []string{"3", "4"}, &out))
		assert.Equal(t, "0,0,0,0\n0,0,0,0\n0,0,0,0\n", readGrid(t, cfg.GridFile))
		assert.Equal(t, "Grid initialized with 3x4 grid of zeros\n", out.String())
	})

	t.Run("refuses to overwrite without force", func(t *testing.T) {
		cfg := testConfig(t)
		writeGrid(t, cfg.GridFile, "1,1\n")
		err := initCommand(cfg, logging.Discard(), []string{"1", "1"}, &bytes.Buffer{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "already exists")
		assert.Equal(t, "1,1\n", readGrid(t, cfg.GridFile))
	})

	t.Run("force overwrites", func(t *testing.T) {
		cfg := testConfig(t)
		writeGrid(t, cfg.GridFile, "1,1\n")
		require.NoError(t, initCommand(cfg, logging.Discard(), []string{"-force", "1", "1"}, &bytes.Buffer{}))
		assert.Equal(t, "0\n", readGrid(t, cfg.GridFile))
	})

	t.Run("rejects non-integer dimensions", func(t *testing.T) {
		cfg := testConfig(t)
		err := initCommand(cfg, logging.Discard(), []string{"two", "2"}, &bytes.Buffer{})
		var parseErr *grid.ParseError
		require.ErrorAs(t, err, &parseErr)
		assert.Equal(t, "rows", parseErr.Field)
		assert.NoFileExists(t, cfg.GridFile)
	})

	t.Run("requires two arguments", func(t *testing.T) {
		cfg := testConfig(t)
		err := initCommand(cfg, logging.Discard(), []string{"2"}, &bytes.Buffer{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "usage")
	})
}

func TestShowCommand(t *testing.T) {
	cfg := testConfig(t)
	writeGrid(t, cfg.GridFile, "1,0\n0,-1\n")

	var out bytes.Buffer
	require.NoError(t, showCommand(cfg, nil, &out))
	assert.Equal(t, "Current Grid State:\n[1, 0]\n[0, -1]\n", out.String())

	require.NoError(t, os.Remove(cfg.GridFile))
	var notFound *grid.NotFoundError
	assert.ErrorAs(t, showCommand(cfg, nil, &bytes.Buffer{}), &notFound)
}

func TestSetCommand(t *testing.T) {
	cfg := testConfig(t)
	writeGrid(t, cfg.GridFile, "0,0\n0,0\n")

	var out bytes.Buffer
	require.NoError(t, setCommand(cfg, logging.Discard(), []string{"0", "1", "YES"}, &out))
	assert.Equal(t, "Set (0, 1) to yes (was skip)\n", out.String())
	assert.Equal(t, "0,1\n0,0\n", readGrid(t, cfg.GridFile))

	err := setCommand(cfg, logging.Discard(), []string{"5", "0", "no"}, &bytes.Buffer{})
	var rangeErr *grid.OutOfRangeError
	require.ErrorAs(t, err, &rangeErr)
	assert.Equal(t, "0,1\n0,0\n", readGrid(t, cfg.GridFile))
}

func TestExportCommand(t *testing.T) {
	cfg := testConfig(t)
	writeGrid(t, cfg.GridFile, "1,0\n0,-1\n")

	t.Run("json to stdout", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, exportCommand(cfg, []string{"-format", "json"}, &out))
		assert.JSONEq(t, `{"rows":2,"cols":2,"cells":[[1,0],[0,-1]]}`, out.String())
	})

	t.Run("yaml to file", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, exportCommand(cfg, []string{"-format", "yaml", "-o", "grid.yaml"}, &out))
		data := readGrid(t, filepath.Join(cfg.WorkDir, "grid.yaml"))
		assert.Contains(t, data, "rows: 2")
		assert.Contains(t, data, "cells: [[1, 0], [0, -1]]")
		assert.Contains(t, out.String(), "Exported yaml to")
	})

	t.Run("unknown format", func(t *testing.T) {
		err := exportCommand(cfg, []string{"-format", "xml"}, &bytes.Buffer{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown export format")
	})
}

func TestStatsCommand(t *testing.T) {
	cfg := testConfig(t)
	writeGrid(t, cfg.GridFile, "1,0\n0,-1\n")

	var out bytes.Buffer
	require.NoError(t, statsCommand(cfg, nil, &out))
	output := out.String()
	assert.Contains(t, output, "(2 rows x 2 cols)")
	assert.Contains(t, output, "Total: 1 yes, 1 no, 2 skip\n")
	assert.Contains(t, output, "Columns:")
	assert.Contains(t, output, "Rows:")
	assert.Contains(t, output, "StdDev")
	assert.NotContains(t, output, "Other")

	out.Reset()
	require.NoError(t, statsCommand(cfg, []string{"-rows=false"}, &out))
	assert.NotContains(t, out.String(), "Rows:")
}

func TestChartCommand(t *testing.T) {
	cfg := testConfig(t)
	writeGrid(t, cfg.GridFile, "1,0\n-1,1\n")

	var out bytes.Buffer
	require.NoError(t, chartCommand(cfg, logging.Discard(), []string{"-o", "chart.svg"}, &out))
	data := readGrid(t, filepath.Join(cfg.WorkDir, "chart.svg"))
	assert.Contains(t, data, "<svg")
	assert.Contains(t, out.String(), "Wrote chart to")

	err := chartCommand(cfg, logging.Discard(), []string{"-o", "chart.txt"}, &bytes.Buffer{})
	require.Error(t, err)
	assert.NoFileExists(t, filepath.Join(cfg.WorkDir, "chart.txt"))

	err = chartCommand(cfg, logging.Discard(), []string{"-width", "0"}, &bytes.Buffer{})
	require.Error(t, err)
}

func TestChartCommandRejectedOutputKeepsExistingFile(t *testing.T) {
	cfg := testConfig(t)
	writeGrid(t, cfg.GridFile, "1,0\n0,-1\n")

	err := chartCommand(cfg, logging.Discard(), []string{"-o", cfg.GridFile}, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported chart format")
	assert.Equal(t, "1,0\n0,-1\n", readGrid(t, cfg.GridFile))

	other := filepath.Join(cfg.WorkDir, "notes.txt")
	writeGrid(t, other, "keep me\n")
	require.Error(t, chartCommand(cfg, logging.Discard(), []string{"-o", "notes.txt"}, &bytes.Buffer{}))
	assert.Equal(t, "keep me\n", readGrid(t, other))
}

func TestChartCommandRenderFailureKeepsExistingChart(t *testing.T) {
	cfg := testConfig(t)
	writeGrid(t, cfg.GridFile, "\n")
	chart := filepath.Join(cfg.WorkDir, "chart.png")
	writeGrid(t, chart, "old chart")

	err := chartCommand(cfg, logging.Discard(), []string{"-o", "chart.png"}, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no columns")
	assert.Equal(t, "old chart", readGrid(t, chart))
}

func TestDoctorCommand(t *testing.T) {
	t.Run("valid grid", func(t *testing.T) {
		cfg := testConfig(t)
		writeGrid(t, cfg.GridFile, "1,0\n0,-1\n")
		var out bytes.Buffer
		require.NoError(t, doctorCommand(cfg, []string{"-v"}, &out))
		assert.Contains(t, out.String(), "✅ Valid")
		assert.Contains(t, out.String(), "Size: 2 rows x 2 cols")
		assert.Contains(t, out.String(), "All checks passed")
	})

	t.Run("missing grid is a warning", func(t *testing.T) {
		cfg := testConfig(t)
		var out bytes.Buffer
		require.NoError(t, doctorCommand(cfg, nil, &out))
		assert.Contains(t, out.String(), "Not found")
	})

	t.Run("out of range values fail", func(t *testing.T) {
		cfg := testConfig(t)
		writeGrid(t, cfg.GridFile, "1,5\n0,0\n")
		var out bytes.Buffer
		err := doctorCommand(cfg, nil, &out)
		require.Error(t, err)
		assert.Contains(t, out.String(), "Validation failed")
		assert.Contains(t, out.String(), "[0][1]")
	})

	t.Run("malformed grid fails", func(t *testing.T) {
		cfg := testConfig(t)
		writeGrid(t, cfg.GridFile, "1,x\n")
		var out bytes.Buffer
		require.Error(t, doctorCommand(cfg, nil, &out))
		assert.Contains(t, out.String(), "Load error")
	})
}

func TestTailCommand(t *testing.T) {
	cfg := testConfig(t)

	var out bytes.Buffer
	require.NoError(t, tailCommand(context.Background(), cfg, nil, &out))
	assert.Equal(t, "No journal files found.\n", out.String())

	journal, err := logging.NewJournal(cfg.JournalDir, cfg.WorkDir)
	require.NoError(t, err)
	require.NoError(t, journal.Record(logging.Event{Type: logging.EventUpdate, Row: logging.Int(0), Col: logging.Int(1)}))
	require.NoError(t, journal.Record(logging.Event{Type: logging.EventQuit}))
	require.NoError(t, journal.Close())

	out.Reset()
	require.NoError(t, tailCommand(context.Background(), cfg, []string{"-n", "1"}, &out))
	assert.Contains(t, out.String(), "Tailing: "+journal.LogPath)
	assert.Contains(t, out.String(), `"type":"quit"`)
	assert.NotContains(t, out.String(), `"type":"update"`)
}

func TestConfigCommand(t *testing.T) {
	cfg := testConfig(t)

	var out bytes.Buffer
	require.NoError(t, configCommand(cfg, nil, &out))
	assert.Equal(t, config.ExampleConfig(), out.String())

	out.Reset()
	cfg.Files = []string{"/etc/gridmark.toml"}
	require.NoError(t, configCommand(cfg, []string{"-effective"}, &out))
	assert.Contains(t, out.String(), "# loaded from /etc/gridmark.toml")
	assert.Contains(t, out.String(), `grid_file = "`+cfg.GridFile+`"`)
	assert.NotContains(t, out.String(), "WorkDir")
}
