package markers

import (
	"log/slog"
	"strings"

	"github.com/sevigo/docchunk/schema"
)

// exampleContextWords mark a neutral block as an example without saying which kind.
var exampleContextWords = []string{"example", "sample", "demo", "snippet"}

const exampleContextEvidence = "example-context"

// Splitter cuts code blocks into sub-examples at marker lines.
type Splitter struct {
	table  *Table
	logger *slog.Logger
}

// New creates a Splitter. A nil table selects DefaultTable.
func New(table *Table, logger *slog.Logger) *Splitter {
	if table == nil {
		table = DefaultTable()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Splitter{
		table:  table,
		logger: logger.With("component", "marker_splitter"),
	}
}

type openUnit struct {
	start    int
	label    schema.ExampleType
	evidence []string
	preamble bool
}

// Split scans content line by line. A marker line closes the open sub-example
// and starts a new one. Lines before the first marker form a preamble unit.
// Without any marker the whole block is one unit labeled by Classify over the
// surrounding text as well. Joining the unit contents with "\n" gives content back.
func (s *Splitter) Split(content, blockID, before, after string) []schema.SubExample {
	lines := strings.Split(content, "\n")

	var units []openUnit
	for i, line := range lines {
		if rule, ok := s.table.MatchMarker(line); ok {
			units = append(units, openUnit{start: i, label: rule.Label, evidence: []string{rule.Name}})
			continue
		}
		if len(units) == 0 {
			units = append(units, openUnit{start: i, label: schema.ExampleNeutral, preamble: true})
		}
	}

	if len(units) == 0 || (len(units) == 1 && units[0].preamble) {
		label, evidence := s.Classify(before + "\n" + content + "\n" + after)
		return []schema.SubExample{{
			Content:   content,
			Label:     label,
			Index:     0,
			BlockID:   blockID,
			LineStart: 0,
			LineEnd:   len(lines),
			Evidence:  evidence,
			Inferred:  true,
		}}
	}

	if units[0].preamble && strings.TrimSpace(strings.Join(lines[:units[1].start], "\n")) == "" {
		units[1].start = 0
		units = units[1:]
	}

	out := make([]schema.SubExample, 0, len(units))
	for i, u := range units {
		end := len(lines)
		if i+1 < len(units) {
			end = units[i+1].start
		}
		sub := schema.SubExample{
			Content:   strings.Join(lines[u.start:end], "\n"),
			Label:     u.label,
			Index:     i,
			BlockID:   blockID,
			LineStart: u.start,
			LineEnd:   end,
			Evidence:  u.evidence,
		}
		if u.preamble {
			sub.Label, sub.Evidence = s.Classify(sub.Content)
			sub.Inferred = true
		}
		out = append(out, sub)
	}

	s.logger.Debug("Split code block at markers", "block_id", blockID, "units", len(out))
	return out
}

// Classify is the broad, best-effort pass. Every rule kind takes part; a span
// matched by a rule is consumed before later rules run. Good and bad together
// mean comparison.
func (s *Splitter) Classify(text string) (schema.ExampleType, []string) {
	work := []byte(text)
	var evidence []string
	found := map[schema.ExampleType]bool{}

	for _, r := range s.table.rules {
		locs := r.re.FindAllIndex(work, -1)
		if len(locs) == 0 {
			continue
		}
		found[r.Label] = true
		evidence = append(evidence, r.Name)
		for _, loc := range locs {
			for i := loc[0]; i < loc[1]; i++ {
				if work[i] != '\n' {
					work[i] = ' '
				}
			}
		}
	}

	switch {
	case found[schema.ExampleGood] && found[schema.ExampleBad]:
		return schema.ExampleComparison, evidence
	case found[schema.ExampleGood]:
		return schema.ExampleGood, evidence
	case found[schema.ExampleBad]:
		return schema.ExampleBad, evidence
	case found[schema.ExampleComparison]:
		return schema.ExampleComparison, evidence
	}

	lower := strings.ToLower(text)
	for _, w := range exampleContextWords {
		if strings.Contains(lower, w) {
			return schema.ExampleNeutral, []string{exampleContextEvidence}
		}
	}
	return schema.ExampleNeutral, nil
}
