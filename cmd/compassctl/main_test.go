package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func run(t *testing.T, dir, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	a := newApp(strings.NewReader(stdin), &out)
	a.errOut = &bytes.Buffer{}
	err := a.execute(append([]string{"--backend", "file", "--dir", dir}, args...))
	if a.store != nil {
		t.Fatalf("storage still open after %v", args)
	}
	return out.String(), err
}

func TestChartsAndPoints(t *testing.T) {
	t.Chdir(t.TempDir())
	dir := t.TempDir()

	if out, err := run(t, dir, "", "charts", "create", "A"); err != nil || !strings.Contains(out, "created A") {
		t.Fatalf("charts create = %q, %v", out, err)
	}
	if out, err := run(t, dir, "", "points", "add", "Origin", "0.5", "0.5"); err != nil || !strings.Contains(out, "index 0") {
		t.Fatalf("points add = %q, %v", out, err)
	}
	out, err := run(t, dir, "", "points", "list")
	if err != nil || !strings.Contains(out, "0\t0.5000\t0.5000\tOrigin\t-") {
		t.Fatalf("points list = %q, %v", out, err)
	}
	if _, err := run(t, dir, "", "points", "rename", "0", "Center"); err != nil {
		t.Fatalf("points rename error = %v", err)
	}
	if out, _ := run(t, dir, "", "--json", "points", "list"); !strings.Contains(out, `"name": "Center"`) {
		t.Fatalf("points list --json = %q", out)
	}
	if _, err := run(t, dir, "", "transform", "0"); err == nil {
		t.Fatalf("transform of a point without image error = nil")
	}
	if _, err := run(t, dir, "", "points", "delete", "3"); err == nil {
		t.Fatalf("points delete out of range error = nil")
	}
	if _, err := run(t, dir, "", "points", "delete", "0"); err != nil {
		t.Fatalf("points delete error = %v", err)
	}
}

func TestChartsCreatePromptsUntilUnique(t *testing.T) {
	t.Chdir(t.TempDir())
	dir := t.TempDir()
	run(t, dir, "", "charts", "create", "A")

	out, err := run(t, dir, "A\nB\n", "charts", "create")
	if err != nil || !strings.Contains(out, "created B") {
		t.Fatalf("charts create (prompt) = %q, %v", out, err)
	}
	if strings.Count(out, "Please specify a name:") != 2 {
		t.Fatalf("prompted %d times; want 2: %q", strings.Count(out, "Please specify a name:"), out)
	}

	out, _ = run(t, dir, "", "charts", "list")
	if out != "  A\n* B\n" {
		t.Fatalf("charts list = %q", out)
	}
}

func TestChartsDeleteConfirm(t *testing.T) {
	t.Chdir(t.TempDir())
	dir := t.TempDir()
	run(t, dir, "", "charts", "create", "A")
	run(t, dir, "", "charts", "create", "B")

	if _, err := run(t, dir, "n\n", "charts", "delete", "B"); err == nil {
		t.Fatalf("declined delete error = nil")
	}
	out, err := run(t, dir, "y\n", "charts", "delete", "B")
	if err != nil || !strings.Contains(out, "loaded A") {
		t.Fatalf("charts delete = %q, %v", out, err)
	}
	if _, err := run(t, dir, "", "charts", "delete", "--yes", "nope"); err == nil {
		t.Fatalf("delete unknown chart error = nil")
	}
	if out, _ := run(t, dir, "", "--chart", "A", "charts", "load", "A"); !strings.Contains(out, "loaded A (0 points)") {
		t.Fatalf("charts load = %q", out)
	}
}

func journalLines(t *testing.T, path string) int {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read journal: %v", err)
	}
	return strings.Count(string(data), "\n")
}

func TestFailingCommandFlushesJournal(t *testing.T) {
	t.Chdir(t.TempDir())
	dir := t.TempDir()
	journal := filepath.Join(t.TempDir(), "journal.jsonl")
	t.Setenv("STORAGE_JOURNAL_FILE", journal)

	if _, err := run(t, dir, "", "charts", "create", "A"); err != nil {
		t.Fatalf("charts create error = %v", err)
	}
	before := journalLines(t, journal)
	if before == 0 {
		t.Fatalf("journal empty after charts create")
	}

	// Restoring chart A rewrites its last-selected marker before the command fails.
	if _, err := run(t, dir, "", "points", "delete", "7"); err == nil {
		t.Fatalf("points delete out of range error = nil")
	}
	afterRunE := journalLines(t, journal)
	if afterRunE <= before {
		t.Fatalf("journal lines = %d after failing command; want more than %d", afterRunE, before)
	}

	if _, err := run(t, dir, "", "--chart", "nope", "points", "list"); err == nil {
		t.Fatalf("--chart nope error = nil")
	}
	if got := journalLines(t, journal); got <= afterRunE {
		t.Fatalf("journal lines = %d after failing setup; want more than %d", got, afterRunE)
	}
}

func TestPointsAddRejectsOutOfRange(t *testing.T) {
	t.Chdir(t.TempDir())
	dir := t.TempDir()
	run(t, dir, "", "charts", "create", "A")

	for _, pos := range [][2]string{{"5", "-3"}, {"NaN", "0.5"}, {"0.5", "Inf"}} {
		if _, err := run(t, dir, "", "points", "add", "Far", pos[0], pos[1]); err == nil {
			t.Fatalf("points add %s %s error = nil", pos[0], pos[1])
		}
	}
	if out, _ := run(t, dir, "", "points", "list"); out != "" {
		t.Fatalf("points list = %q; want empty", out)
	}
}
