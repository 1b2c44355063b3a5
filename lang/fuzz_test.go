package lang

import (
	"errors"
	"testing"
	"unicode/utf8"
)

// FuzzParse checks that parsing never panics, that failures are typed, and
// that accepted templates survive a canonical round trip.
func FuzzParse(f *testing.F) {
	f.Add("a random {prompt|word}")
	f.Add("this {{large |}cake|{loud|tiny} boat} is not very nice")
	f.Add("{ball:1|box:3}")
	f.Add("{ball:abc|box:3}")
	f.Add("{ball:-1}")
	f.Add("a {unterminated")
	f.Add("a } stray")
	f.Add(`\{\}\|\:\\`)
	f.Add("{:|:}")

	f.Fuzz(func(t *testing.T, input string) {
		if !utf8.ValidString(input) {
			t.Skip("invalid UTF-8")
		}

		for _, lenient := range []bool{false, true} {
			tmpl, err := Parse(input, WithLenient(lenient))
			if err != nil {
				if _, ok := AsParseError(err); !ok {
					t.Fatalf("error %T is not a *ParseError: %v", err, err)
				}

				if pe, _ := AsParseError(err); pe.Offset() < 0 || pe.Offset() > len(input) {
					t.Fatalf("offset %d out of range", pe.Offset())
				}

				if lenient && errors.Is(err, ErrInvalidWeight) {
					t.Fatalf("lenient parse reported invalid weight: %v", err)
				}

				continue
			}

			again, err := Parse(tmpl.String())
			if err != nil {
				t.Fatalf("canonical %q does not parse: %v", tmpl.String(), err)
			}

			if again.String() != tmpl.String() {
				t.Fatalf("canonical text unstable: %q then %q", tmpl.String(), again.String())
			}

			shortest := tmpl.Expand(PolicyShortest, nil)
			longest := tmpl.Expand(PolicyLongest, nil)

			if utf8.RuneCountInString(shortest) > utf8.RuneCountInString(longest) {
				t.Fatalf("shortest %q longer than longest %q", shortest, longest)
			}
		}
	})
}
