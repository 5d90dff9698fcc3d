package markers_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/docchunk/markers"
	logger "github.com/sevigo/docchunk/parsers/testing"
	"github.com/sevigo/docchunk/schema"
)

func newSplitter(t *testing.T) *markers.Splitter {
	t.Helper()
	log, _ := logger.NewTestLogger(t)
	return markers.New(nil, log)
}

func TestSplit_GoodThenBad(t *testing.T) {
	s := newSplitter(t)
	code := `# GOOD: use a context manager
with open(path) as f:
    data = f.read()
# BAD: leaks the handle
f = open(path)
data = f.read()`

	units := s.Split(code, "block-1", "", "")
	require.Len(t, units, 2)

	assert.Equal(t, schema.ExampleGood, units[0].Label)
	assert.Equal(t, schema.ExampleBad, units[1].Label)
	assert.Equal(t, 0, units[0].Index)
	assert.Equal(t, 1, units[1].Index)
	assert.Equal(t, "block-1", units[1].BlockID)
	assert.Equal(t, 0, units[0].LineStart)
	assert.Equal(t, 3, units[0].LineEnd)
	assert.Equal(t, 3, units[1].LineStart)
	assert.Equal(t, []string{"good-label"}, units[0].Evidence)
	assert.Equal(t, []string{"bad-label"}, units[1].Evidence)
	assert.False(t, units[0].Inferred)

	assert.Equal(t, code, units[0].Content+"\n"+units[1].Content)
}

func TestSplit_BareAndTrailingMarkers(t *testing.T) {
	s := newSplitter(t)
	tests := []struct {
		name     string
		code     string
		evidence []string
	}{
		{"bare keywords", "GOOD:\nx = compute()\nBAD:\nx = eval(s)", []string{"good-bare", "bad-bare"}},
		{"indented bare", "  Correct:\nok()\n  Wrong:\nnot_ok()", []string{"good-bare", "bad-bare"}},
		{"trailing comments", "x = 1  # GOOD: inline\ny = 2  # BAD: inline", []string{"good-trailing", "bad-trailing"}},
		{"trailing slashes", "ctx := context.TODO() // good: explicit\nctx = nil // avoid: nil context", []string{"good-trailing", "bad-trailing"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			units := s.Split(tt.code, "b", "", "")
			require.Len(t, units, 2)
			assert.Equal(t, schema.ExampleGood, units[0].Label)
			assert.Equal(t, schema.ExampleBad, units[1].Label)
			assert.Equal(t, []string{tt.evidence[0]}, units[0].Evidence)
			assert.Equal(t, []string{tt.evidence[1]}, units[1].Evidence)
			assert.Equal(t, tt.code, units[0].Content+"\n"+units[1].Content)
		})
	}
}

func TestSplit_MarkerStyles(t *testing.T) {
	s := newSplitter(t)
	tests := []struct {
		name string
		line string
		want schema.ExampleType
	}{
		{"hash good", "# Good: simple", schema.ExampleGood},
		{"slash good", "// CORRECT: pass ctx", schema.ExampleGood},
		{"check emoji", "# ✅ GOOD", schema.ExampleGood},
		{"bare check", "✓ works", schema.ExampleGood},
		{"sql bad", "-- Avoid: select *", schema.ExampleBad},
		{"dont", "# Don't: mutate globals", schema.ExampleBad},
		{"cross emoji", "// ❌ Bad", schema.ExampleBad},
		{"deprecated", "# DEPRECATED: old api", schema.ExampleBad},
		{"x bad", "# X BAD", schema.ExampleBad},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			units := s.Split(tt.line+"\nbody()", "b", "", "")
			require.Len(t, units, 1)
			assert.Equal(t, tt.want, units[0].Label)
			assert.False(t, units[0].Inferred)
		})
	}
}

func TestSplit_PlainCodeIsNotAMarker(t *testing.T) {
	s := newSplitter(t)
	code := "good = compute()\ndo_thing(good)"
	units := s.Split(code, "b", "", "")
	require.Len(t, units, 1)
	assert.Equal(t, schema.ExampleNeutral, units[0].Label)
	assert.True(t, units[0].Inferred)
	assert.Equal(t, code, units[0].Content)
}

func TestSplit_Preamble(t *testing.T) {
	s := newSplitter(t)

	t.Run("kept as its own unit", func(t *testing.T) {
		code := "import os\n\n# GOOD:\nos.getenv('X')\n# BAD:\nos.environ['X']"
		units := s.Split(code, "b", "", "")
		require.Len(t, units, 3)
		assert.Equal(t, schema.ExampleNeutral, units[0].Label)
		assert.True(t, units[0].Inferred)
		assert.Equal(t, "import os\n", units[0].Content)
		assert.Equal(t, schema.ExampleGood, units[1].Label)
		assert.Equal(t, schema.ExampleBad, units[2].Label)

		parts := make([]string, len(units))
		for i, u := range units {
			parts[i] = u.Content
		}
		assert.Equal(t, code, strings.Join(parts, "\n"))
	})

	t.Run("blank preamble joins first unit", func(t *testing.T) {
		code := "\n\n# GOOD:\nx()"
		units := s.Split(code, "b", "", "")
		require.Len(t, units, 1)
		assert.Equal(t, schema.ExampleGood, units[0].Label)
		assert.Equal(t, code, units[0].Content)
	})
}

func TestSplit_InfersFromContext(t *testing.T) {
	s := newSplitter(t)

	units := s.Split("x = eval(input())", "b", "This is a common mistake:", "")
	require.Len(t, units, 1)
	assert.Equal(t, schema.ExampleBad, units[0].Label)
	assert.True(t, units[0].Inferred)
	assert.Contains(t, units[0].Evidence, "bad-phrase")

	units = s.Split("x = 1", "b", "The recommended approach is shown below.", "")
	assert.Equal(t, schema.ExampleGood, units[0].Label)
}

func TestClassify(t *testing.T) {
	s := newSplitter(t)
	tests := []struct {
		name string
		text string
		want schema.ExampleType
	}{
		{"dont do this is only bad", "Don't do this:", schema.ExampleBad},
		{"do this is good", "Do this instead.", schema.ExampleGood},
		{"good and bad", "A good example next to a bad example.", schema.ExampleComparison},
		{"before after", "# Before:\nold()\n# After:\nnew()", schema.ExampleComparison},
		{"versus", "tabs vs. spaces", schema.ExampleComparison},
		{"nothing", "x := 1", schema.ExampleNeutral},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := s.Classify(tt.text)
			assert.Equal(t, tt.want, got)
		})
	}

	_, evidence := s.Classify("Here is a sample.")
	assert.Equal(t, []string{"example-context"}, evidence)
}

func TestTable(t *testing.T) {
	t.Run("default is ordered", func(t *testing.T) {
		rules := markers.DefaultTable().Rules()
		require.NotEmpty(t, rules)
		for i := 1; i < len(rules); i++ {
			assert.LessOrEqual(t, rules[i-1].Precedence, rules[i].Precedence)
		}
	})

	t.Run("custom table", func(t *testing.T) {
		table, err := markers.LoadTable(strings.NewReader(`
rules:
  - name: later
    label: bad
    kind: marker
    precedence: 20
    pattern: '^//\s*nope'
  - name: first
    label: good
    kind: marker
    precedence: 5
    pattern: '^//\s*yep'
`))
		require.NoError(t, err)
		rules := table.Rules()
		require.Len(t, rules, 2)
		assert.Equal(t, "first", rules[0].Name)

		rule, ok := table.MatchMarker("// NOPE")
		require.True(t, ok)
		assert.Equal(t, schema.ExampleBad, rule.Label)
	})

	t.Run("invalid label", func(t *testing.T) {
		_, err := markers.ParseTable([]byte("rules:\n  - name: x\n    label: great\n    kind: marker\n    pattern: 'x'\n"))
		assert.ErrorIs(t, err, markers.ErrInvalidTable)
	})

	t.Run("invalid pattern", func(t *testing.T) {
		_, err := markers.ParseTable([]byte("rules:\n  - name: x\n    label: good\n    kind: marker\n    pattern: '('\n"))
		assert.ErrorIs(t, err, markers.ErrInvalidTable)
	})
}
