// Package markers splits code blocks into labeled sub-examples using a
// declarative table of marker patterns.
package markers

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/sevigo/docchunk/schema"
)

//go:embed patterns.yaml
var defaultPatterns []byte

var ErrInvalidTable = errors.New("invalid marker table")

type Kind string

const (
	KindMarker     Kind = "marker"
	KindPhrase     Kind = "phrase"
	KindComparison Kind = "comparison"
)

// RuleSpec is one row of a marker table as written in YAML.
type RuleSpec struct {
	Name       string `yaml:"name" validate:"required"`
	Pattern    string `yaml:"pattern" validate:"required"`
	Label      string `yaml:"label" validate:"required,oneof=good bad comparison"`
	Kind       string `yaml:"kind" validate:"required,oneof=marker phrase comparison"`
	Precedence int    `yaml:"precedence" validate:"gte=0"`
}

type tableFile struct {
	Rules []RuleSpec `yaml:"rules" validate:"required,min=1,dive"`
}

// Rule is a compiled RuleSpec.
type Rule struct {
	Name       string
	Label      schema.ExampleType
	Kind       Kind
	Precedence int
	re         *regexp.Regexp
}

// Table is an ordered rule set. Rules are sorted by precedence, ties keep file order.
type Table struct {
	rules []Rule
}

// DefaultTable returns the built-in table.
func DefaultTable() *Table {
	t, err := ParseTable(defaultPatterns)
	if err != nil {
		panic(fmt.Sprintf("markers: built-in table: %v", err))
	}
	return t
}

func LoadTableFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read marker table %s: %w", path, err)
	}
	return ParseTable(data)
}

func LoadTable(r io.Reader) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read marker table: %w", err)
	}
	return ParseTable(data)
}

func ParseTable(data []byte) (*Table, error) {
	var f tableFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTable, err)
	}
	if err := validator.New().Struct(f); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTable, err)
	}

	rules := make([]Rule, 0, len(f.Rules))
	for _, spec := range f.Rules {
		re, err := regexp.Compile("(?im)" + spec.Pattern)
		if err != nil {
			return nil, fmt.Errorf("%w: rule %q: %w", ErrInvalidTable, spec.Name, err)
		}
		rules = append(rules, Rule{
			Name:       spec.Name,
			Label:      schema.ExampleType(spec.Label),
			Kind:       Kind(spec.Kind),
			Precedence: spec.Precedence,
			re:         re,
		})
	}
	sort.SliceStable(rules, func(i, j int) bool {
		return rules[i].Precedence < rules[j].Precedence
	})
	return &Table{rules: rules}, nil
}

// Rules returns the rules in evaluation order.
func (t *Table) Rules() []Rule {
	out := make([]Rule, len(t.rules))
	copy(out, t.rules)
	return out
}

// MatchMarker returns the first marker rule matching line.
func (t *Table) MatchMarker(line string) (Rule, bool) {
	for _, r := range t.rules {
		if r.Kind == KindMarker && r.re.MatchString(line) {
			return r, true
		}
	}
	return Rule{}, false
}
