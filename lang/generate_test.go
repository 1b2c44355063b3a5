package lang

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestGenerate_Count(t *testing.T) {
	tmpl := MustParse("{a|b|c}")

	for _, count := range []int{0, 1, 7, 100} {
		out, err := Generate(context.Background(), tmpl, count, WithSeed(1))
		if err != nil {
			t.Fatalf("count %d: %v", count, err)
		}

		if len(out) != count {
			t.Errorf("count %d: got %d outputs", count, len(out))
		}

		for i, s := range out {
			if s != "a" && s != "b" && s != "c" {
				t.Errorf("count %d: output %d = %q", count, i, s)
			}
		}
	}
}

func TestGenerate_NegativeCount(t *testing.T) {
	_, err := Generate(context.Background(), MustParse("x"), -1)
	if !errors.Is(err, ErrInvalidCount) {
		t.Errorf("error = %v, want %v", err, ErrInvalidCount)
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	tmpl := MustParse("{ball:1|box:3}")

	out, err := Generate(context.Background(), tmpl, 4, WithPolicy(PolicyMostLikely))
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"box", "box", "box", "box"}
	if diff := cmp.Diff(want, out); diff != "" {
		t.Errorf("outputs (-want +got):\n%s", diff)
	}
}

func TestGenerate_SeedIndependentOfJobs(t *testing.T) {
	tmpl := MustParse("{a|b|c|d}{e|f|g|h}{i|j|k|l}")
	ctx := context.Background()

	serial, err := Generate(ctx, tmpl, 64, WithSeed(99), WithJobs(1))
	if err != nil {
		t.Fatal(err)
	}

	for _, jobs := range []int{2, 4, 16} {
		parallel, err := Generate(ctx, tmpl, 64, WithSeed(99), WithJobs(jobs))
		if err != nil {
			t.Fatal(err)
		}

		if diff := cmp.Diff(serial, parallel); diff != "" {
			t.Errorf("jobs=%d differs from serial (-serial +parallel):\n%s", jobs, diff)
		}
	}
}

func TestGenerate_WithSource(t *testing.T) {
	tmpl := MustParse("{a|b}")
	src := &fixedSource{draws: []float64{0.1, 0.9, 0.9, 0.1}}

	out, err := Generate(context.Background(), tmpl, 4, WithSource(src), WithJobs(8))
	if err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff([]string{"a", "b", "b", "a"}, out); diff != "" {
		t.Errorf("outputs (-want +got):\n%s", diff)
	}
}

func TestGenerate_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, jobs := range []int{1, 4} {
		_, err := Generate(ctx, MustParse("{a|b}"), 10, WithJobs(jobs))
		if !errors.Is(err, context.Canceled) {
			t.Errorf("jobs=%d: error = %v, want %v", jobs, err, context.Canceled)
		}
	}
}

func TestGenerate_Filter(t *testing.T) {
	tmpl := MustParse("{a|b|c|d|e|f}")
	keep := func(_ int, s string) (bool, error) { return s == "c" || s == "d", nil }

	out, err := Generate(context.Background(), tmpl, 50,
		WithSeed(3), WithJobs(4), WithFilter(keep))
	if err != nil {
		t.Fatal(err)
	}

	for i, s := range out {
		if s != "c" && s != "d" {
			t.Errorf("output %d = %q passed the filter", i, s)
		}
	}
}

func TestGenerate_FilterError(t *testing.T) {
	boom := errors.New("boom")
	fail := func(int, string) (bool, error) { return false, boom }

	_, err := Generate(context.Background(), MustParse("{a|b}"), 3, WithFilter(fail))
	if !errors.Is(err, boom) {
		t.Errorf("error = %v, want %v", err, boom)
	}
}

func TestGenerate_Exhausted(t *testing.T) {
	never := func(int, string) (bool, error) { return false, nil }

	tests := []struct {
		name   string
		policy Policy
	}{
		{"random", PolicyRandom},
		{"deterministic", PolicyShortest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Generate(context.Background(), MustParse("{a|b}"), 2,
				WithPolicy(tt.policy), WithFilter(never), WithMaxAttempts(5))
			if !errors.Is(err, ErrExhausted) {
				t.Errorf("error = %v, want %v", err, ErrExhausted)
			}
		})
	}
}

func TestGenerate_Unique(t *testing.T) {
	tmpl := MustParse("{a|b|c|d}{1|2}")

	out, err := Generate(context.Background(), tmpl, 8, WithSeed(5), WithUnique(true),
		WithMaxAttempts(1000))
	if err != nil {
		t.Fatal(err)
	}

	seen := make(map[string]bool)
	for _, s := range out {
		if seen[s] {
			t.Errorf("duplicate output %q in %v", s, out)
		}

		seen[s] = true
	}

	_, err = Generate(context.Background(), tmpl, 9, WithSeed(5), WithUnique(true))
	if !errors.Is(err, ErrExhausted) {
		t.Errorf("more outputs than paths: error = %v, want %v", err, ErrExhausted)
	}
}

func TestGenerate_UniqueDeterministic(t *testing.T) {
	_, err := Generate(context.Background(), MustParse("{a|b}"), 2,
		WithPolicy(PolicyLongest), WithUnique(true))
	if !errors.Is(err, ErrExhausted) {
		t.Errorf("error = %v, want %v", err, ErrExhausted)
	}
}

func TestGenerate_FilterSeesIndex(t *testing.T) {
	var indices []int

	record := func(i int, _ string) (bool, error) {
		indices = append(indices, i)

		return true, nil
	}

	_, err := Generate(context.Background(), MustParse("x"), 3,
		WithFilter(record), WithJobs(1))
	if err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff([]int{0, 1, 2}, indices); diff != "" {
		t.Errorf("indices (-want +got):\n%s", diff)
	}
}
