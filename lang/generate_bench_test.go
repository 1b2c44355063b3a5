package lang

import (
	"context"
	"strconv"
	"strings"
	"testing"
)

func BenchmarkParse(b *testing.B) {
	src := strings.Repeat("this {{large |}cake|{loud|tiny} boat:2} is {not |}very nice. ", 50)

	b.ReportAllocs()

	for b.Loop() {
		if _, err := Parse(src); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkParse_Nested(b *testing.B) {
	for _, depth := range []int{1000, 4000, 16000} {
		src := strings.Repeat("{a|", depth) + strings.Repeat("}", depth)

		b.Run(strconv.Itoa(depth), func(b *testing.B) {
			b.ReportAllocs()

			for b.Loop() {
				if _, err := Parse(src); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkExpand(b *testing.B) {
	tmpl := MustParse(strings.Repeat("{a|bb|ccc:3}{{d|e}|f:0.5} ", 50))

	for _, p := range []Policy{PolicyRandom, PolicyLongest, PolicyMostLikely} {
		b.Run(p.String(), func(b *testing.B) {
			ev := NewEvaluator(p, NewSource(1))

			b.ReportAllocs()

			for b.Loop() {
				ev.Expand(tmpl)
			}
		})
	}
}

func BenchmarkGenerate(b *testing.B) {
	tmpl := MustParse(strings.Repeat("{a|bb|ccc:3}{{d|e}|f:0.5} ", 50))

	for _, jobs := range []int{1, 4} {
		b.Run("jobs="+strconv.Itoa(jobs), func(b *testing.B) {
			for b.Loop() {
				if _, err := Generate(context.Background(), tmpl, 1000,
					WithSeed(1), WithJobs(jobs)); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
