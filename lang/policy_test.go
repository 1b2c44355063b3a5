package lang

import (
	"errors"
	"slices"
	"testing"
)

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		input string
		want  Policy
	}{
		{"", PolicyRandom},
		{"random", PolicyRandom},
		{"Shortest", PolicyShortest},
		{" longest ", PolicyLongest},
		{"least-likely", PolicyLeastLikely},
		{"least_likely", PolicyLeastLikely},
		{"MOST_LIKELY", PolicyMostLikely},
	}

	for _, tt := range tests {
		got, err := ParsePolicy(tt.input)
		if err != nil || got != tt.want {
			t.Errorf("ParsePolicy(%q) = %v, %v; want %v", tt.input, got, err, tt.want)
		}
	}

	if _, err := ParsePolicy("likeliest"); !errors.Is(err, ErrUnknownPolicy) {
		t.Errorf("unknown policy error = %v", err)
	}
}

func TestPolicy_Text(t *testing.T) {
	for p := range PolicyMostLikely + 1 {
		text, err := p.MarshalText()
		if err != nil {
			t.Fatal(err)
		}

		var back Policy
		if err := back.UnmarshalText(text); err != nil || back != p {
			t.Errorf("%s: round trip = %v, %v", p, back, err)
		}
	}

	if got := Policy(42).String(); got != "Policy(42)" {
		t.Errorf("String() = %q", got)
	}
}

func TestPolicies(t *testing.T) {
	want := []string{"random", "shortest", "longest", "least-likely", "most-likely"}
	if got := slices.Collect(Policies()); !slices.Equal(got, want) {
		t.Errorf("Policies() = %v, want %v", got, want)
	}
}

func TestPolicy_Deterministic(t *testing.T) {
	if PolicyRandom.Deterministic() {
		t.Error("random reported deterministic")
	}

	if !PolicyLongest.Deterministic() {
		t.Error("longest reported random")
	}
}
