// Package lang parses and expands weighted-choice templates.
//
// A template is literal text interleaved with choice groups. A group is a
// brace-delimited list of alternatives separated by '|'. Each alternative may
// carry a trailing positive weight after its last top-level ':'. Groups nest.
//
// # Grammar
//
// Informal EBNF:
//
//	Template    → Sequence EOF
//	Sequence    → (Literal | Choice)*
//	Choice      → '{' Alternative ('|' Alternative)* '}'
//	Alternative → Sequence (':' Weight)?
//	Weight      → [+-]? (Digits ('.' Digits?)? | '.' Digits)
//	Literal     → <text; '\' escapes '{', '}', '|', ':' and '\'>
//
// Outside every group, '|' and ':' are ordinary text. Whitespace around a
// weight is ignored. A weight that is zero or negative is always an error; a
// weight that is not a number is an error unless the template is parsed with
// [WithLenient], in which case the whole alternative is literal text.
//
// Weights are float64. A weight beyond the float64 range (about 1.8e308) is
// not a number in the sense above, and one so small that it rounds to zero
// is a zero weight.
//
// # Example
//
//	a random {prompt|word}
//	this {{large |}cake|{loud|tiny} boat} is not very nice
//	{ball:1|box:3}
//
// # Expansion
//
// [Template.Expand] resolves every choice by a [Policy]:
//
//   - [PolicyRandom] draws by weight from a [Source].
//   - [PolicyShortest] and [PolicyLongest] pick the alternative whose best
//     expansion has the fewest or most runes.
//   - [PolicyLeastLikely] and [PolicyMostLikely] pick the alternative with
//     the smallest or largest weight among its siblings.
//
// Ties always go to the leftmost alternative. [Generate] produces many
// expansions, in parallel when the policy is random.
package lang
