package lang

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
)

func TestParseCached_Reuses(t *testing.T) {
	ClearCache()
	t.Cleanup(ClearCache)

	ctx := context.Background()

	a, err := ParseCached(ctx, "{a|b}")
	if err != nil {
		t.Fatal(err)
	}

	b, err := ParseCached(ctx, "{a|b}")
	if err != nil {
		t.Fatal(err)
	}

	if a != b {
		t.Error("identical source parsed twice")
	}

	c, err := ParseCached(ctx, "{a|b}", WithLenient(true))
	if err != nil {
		t.Fatal(err)
	}

	if c == a || !c.Lenient {
		t.Error("lenient parse shared a strict cache entry")
	}
}

func TestParseCached_CachesErrors(t *testing.T) {
	ClearCache()
	t.Cleanup(ClearCache)

	ctx := context.Background()

	_, err1 := ParseCached(ctx, "{x:bad}")
	_, err2 := ParseCached(ctx, "{x:bad}")

	if !errors.Is(err1, ErrInvalidWeight) || err1 != err2 {
		t.Errorf("errors = %v, %v; want one cached %v", err1, err2, ErrInvalidWeight)
	}

	tmpl, err := ParseCached(ctx, "{x:bad}", WithLenient(true))
	if err != nil || tmpl.String() != `{x\:bad}` {
		t.Errorf("lenient parse = %v, %v", tmpl, err)
	}
}

func TestParseCached_Concurrent(t *testing.T) {
	ClearCache()
	t.Cleanup(ClearCache)

	const workers = 16

	var (
		wg  sync.WaitGroup
		got [workers]*Template
	)

	for i := range workers {
		wg.Go(func() {
			got[i], _ = ParseCached(context.Background(), "{p|q}{r|s}")
		})
	}

	wg.Wait()

	for i := range got {
		if got[i] == nil || got[i] != got[0] {
			t.Fatalf("worker %d got %p, want %p", i, got[i], got[0])
		}
	}
}

func TestParseReader(t *testing.T) {
	ClearCache()
	t.Cleanup(ClearCache)

	src := strings.Repeat("{a|b} ", 10000)

	tmpl, err := ParseReader(context.Background(), strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}

	if tmpl.Source != src {
		t.Error("source not read completely")
	}

	if n := tmpl.Stats().Choices; n != 10000 {
		t.Errorf("choices = %d, want 10000", n)
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("unreadable") }

func TestParseReader_Error(t *testing.T) {
	_, err := ParseReader(context.Background(), failingReader{})
	if !errors.Is(err, ErrReadInput) {
		t.Errorf("error = %v, want %v", err, ErrReadInput)
	}
}

func TestParseReader_TrailingNewline(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lf", "{a|b}\n", "{a|b}"},
		{"crlf", "{a|b}\r\n", "{a|b}"},
		{"only_one", "a\n\n", "a\n"},
		{"none", "a ", "a "},
		{"bare_cr", "a\r", "a\r"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl, err := ParseReader(context.Background(), strings.NewReader(tt.in))
			if err != nil {
				t.Fatal(err)
			}

			if tmpl.Source != tt.want {
				t.Errorf("source = %q, want %q", tmpl.Source, tt.want)
			}
		})
	}
}
