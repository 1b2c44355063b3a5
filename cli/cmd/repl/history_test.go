package repl

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func TestHistory_WriteLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), baseHistory)

	h := NewHistory(path)
	for _, line := range []string{"{a|b}", ":num 3", "  ", "{a|b}", ":num 3", "c"} {
		if _, err := h.Write(line); err != nil {
			t.Fatalf("Write(%q): %v", line, err)
		}
	}

	want := []string{"{a|b}", ":num 3", "c"}
	if got := h.Entries(); !slices.Equal(got, want) {
		t.Errorf("entries = %q, want %q", got, want)
	}

	loaded := NewHistory(path)
	if err := loaded.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if got := loaded.Entries(); !slices.Equal(got, want) {
		t.Errorf("loaded entries = %q, want %q", got, want)
	}
}

func TestHistory_DuplicateMovesToEnd(t *testing.T) {
	path := filepath.Join(t.TempDir(), baseHistory)

	h := NewHistory(path)
	for _, line := range []string{"a", "b", "a"} {
		if _, err := h.Write(line); err != nil {
			t.Fatal(err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if string(data) != "b\na\n" {
		t.Errorf("file = %q, want %q", data, "b\na\n")
	}
}

func TestHistory_Line(t *testing.T) {
	h := NewHistory("")
	_, _ = h.Write("first")

	if got, err := h.Line(0); err != nil || got != "first" {
		t.Errorf("Line(0) = (%q, %v), want first", got, err)
	}

	if _, err := h.Line(1); err != ErrOutOfBounds {
		t.Errorf("Line(1) error = %v, want %v", err, ErrOutOfBounds)
	}
}

func TestHistory_LoadMissing(t *testing.T) {
	h := NewHistory(filepath.Join(t.TempDir(), "missing"))
	if err := h.Load(); err != nil {
		t.Errorf("Load of a missing file: %v", err)
	}

	if h.Len() != 0 {
		t.Errorf("Len = %d, want 0", h.Len())
	}
}
