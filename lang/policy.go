package lang

import (
	"errors"
	"iter"
	"strconv"
	"strings"
)

// Policy decides which alternative of each choice an expansion takes.
type Policy int

const (
	// PolicyRandom draws an alternative with probability proportional to its
	// weight.
	PolicyRandom Policy = iota

	// PolicyShortest takes the alternative with the shortest expansion.
	PolicyShortest

	// PolicyLongest takes the alternative with the longest expansion.
	PolicyLongest

	// PolicyLeastLikely takes the alternative with the smallest weight.
	PolicyLeastLikely

	// PolicyMostLikely takes the alternative with the largest weight.
	PolicyMostLikely
)

var policyNames = []struct {
	policy Policy
	name   string
}{
	{PolicyRandom, "random"},
	{PolicyShortest, "shortest"},
	{PolicyLongest, "longest"},
	{PolicyLeastLikely, "least-likely"},
	{PolicyMostLikely, "most-likely"},
}

// String returns the name of the policy.
func (p Policy) String() string {
	for _, n := range policyNames {
		if n.policy == p {
			return n.name
		}
	}

	return "Policy(" + strconv.Itoa(int(p)) + ")"
}

// Deterministic reports whether expansions under p never consult a [Source].
func (p Policy) Deterministic() bool {
	return p != PolicyRandom
}

// Policies returns an iterator over the names of all policies.
func Policies() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, n := range policyNames {
			if !yield(n.name) {
				return
			}
		}
	}
}

// ErrUnknownPolicy is returned for a policy name that is not recognised.
var ErrUnknownPolicy = NewError("unknown policy")

// ParsePolicy parses a policy name. Matching ignores case, and '_' may stand
// in for '-'. The empty string is [PolicyRandom].
func ParsePolicy(s string) (Policy, error) {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "-")
	if key == "" {
		return PolicyRandom, nil
	}

	for _, n := range policyNames {
		if n.name == key {
			return n.policy, nil
		}
	}

	return PolicyRandom, ErrUnknownPolicy.Wrap(errors.New(strconv.Quote(s)))
}

// MarshalText implements [encoding.TextMarshaler].
func (p Policy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (p *Policy) UnmarshalText(text []byte) error {
	v, err := ParsePolicy(string(text))
	if err != nil {
		return err
	}

	*p = v

	return nil
}
