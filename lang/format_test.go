package lang

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/goccy/go-yaml"
	"github.com/google/go-cmp/cmp"
)

func TestTemplate_String(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		lenient bool
		want    string
	}{
		{"plain", "hello", false, "hello"},
		{"unit weights omitted", "{ball:1|box:3}", false, "{ball|box:3}"},
		{"decimal weight", "{a: .50 |b}", false, "{a:0.5|b}"},
		{"top-level delimiters escaped", "a|b:c", false, `a\|b\:c`},
		{"backslash escaped", `C:\path`, false, `C\:\\path`},
		{"nested", "{{large |}cake|{loud|tiny} boat}", false, "{{large |}cake|{loud|tiny} boat}"},
		{"lenient literal", "{ball:abc|box}", true, `{ball\:abc|box}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl := MustParse(tt.input, WithLenient(tt.lenient))
			if got := tmpl.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTemplate_StringRoundTrip(t *testing.T) {
	inputs := []string{
		"",
		"a random {prompt|word}",
		"this {{large |}cake|{loud|tiny} boat} is not very nice",
		"{ball:1|box:3}",
		`\{a\}|b:c\\d\e`,
		"{x:0.125|{y|z:7}:2.5|}",
		"line one\n{two|2}\n",
	}

	for _, input := range inputs {
		first := MustParse(input)

		second, err := Parse(first.String())
		if err != nil {
			t.Fatalf("reparse of %q: %v", first.String(), err)
		}

		if diff := cmp.Diff(first.Root, second.Root, ignorePos); diff != "" {
			t.Errorf("%q: tree changed on round trip (-first +second):\n%s", input, diff)
		}

		if second.String() != first.String() {
			t.Errorf("%q: canonical text not stable: %q then %q",
				input, first.String(), second.String())
		}
	}
}

func TestTemplate_Format(t *testing.T) {
	var buf bytes.Buffer

	if err := MustParse("{a:1|b:2}").Format(context.Background(), &buf); err != nil {
		t.Fatal(err)
	}

	if got := buf.String(); got != "{a|b:2}\n" {
		t.Errorf("Format() = %q", got)
	}
}

func TestTemplate_FormatJSON(t *testing.T) {
	var buf bytes.Buffer

	tmpl := MustParse("x{a|b:2}")
	if err := tmpl.FormatJSON(context.Background(), &buf, 2); err != nil {
		t.Fatal(err)
	}

	var got nodeView
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON %q: %v", buf.String(), err)
	}

	want := nodeView{
		Kind: "sequence", Line: 1, Column: 1,
		Children: []nodeView{
			{Kind: "literal", Text: "x", Line: 1, Column: 1},
			{
				Kind: "choice", Line: 1, Column: 2,
				Alternatives: []alternativeView{
					{Weight: 1, Node: nodeView{
						Kind: "sequence", Line: 1, Column: 3,
						Children: []nodeView{{Kind: "literal", Text: "a", Line: 1, Column: 3}},
					}},
					{Weight: 2, Node: nodeView{
						Kind: "sequence", Line: 1, Column: 5,
						Children: []nodeView{{Kind: "literal", Text: "b", Line: 1, Column: 5}},
					}},
				},
			},
		},
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("JSON tree (-want +got):\n%s", diff)
	}

	if !strings.Contains(buf.String(), "\n  \"kind\"") {
		t.Errorf("JSON not indented:\n%s", buf.String())
	}
}

func TestTemplate_FormatYAML(t *testing.T) {
	var buf bytes.Buffer

	tmpl := MustParse("{a|b:2}")
	if err := tmpl.FormatYAML(context.Background(), &buf, 2); err != nil {
		t.Fatal(err)
	}

	var got map[string]any
	if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid YAML %q: %v", buf.String(), err)
	}

	if got["kind"] != "sequence" {
		t.Errorf("kind = %v, want sequence", got["kind"])
	}

	if !strings.Contains(buf.String(), "weight: 2") {
		t.Errorf("YAML missing weight:\n%s", buf.String())
	}
}

func TestTemplate_FormatYAMLFlow(t *testing.T) {
	var buf bytes.Buffer

	if err := MustParse("x").FormatYAML(context.Background(), &buf, 0); err != nil {
		t.Fatal(err)
	}

	if !strings.HasPrefix(buf.String(), "{") {
		t.Errorf("flow YAML = %q", buf.String())
	}
}

func TestTemplate_FormatYAMLWeights(t *testing.T) {
	var buf bytes.Buffer
	if err := MustParse("{a:3}").FormatYAML(context.Background(), &buf, 2); err != nil {
		t.Fatal(err)
	}

	var tree struct {
		Children []struct {
			Alternatives []struct {
				Weight float64 `yaml:"weight"`
			} `yaml:"alternatives"`
		} `yaml:"children"`
	}

	if err := yaml.Unmarshal(buf.Bytes(), &tree); err != nil {
		t.Fatal(err)
	}

	if len(tree.Children) != 1 || len(tree.Children[0].Alternatives) != 1 {
		t.Fatalf("tree = %+v", tree)
	}

	if w := tree.Children[0].Alternatives[0].Weight; w != 3 {
		t.Errorf("weight = %v, want 3", w)
	}
}
