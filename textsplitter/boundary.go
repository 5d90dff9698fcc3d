package textsplitter

import (
	"fmt"
	"regexp"

	"github.com/clipperhouse/uax29/sentences"
	"github.com/clipperhouse/uax29/words"
)

// Segment is one piece of an oversized text unit.
type Segment struct {
	Text   string
	Tokens int
	// BudgetExceeded is set on a single word that is larger than the budget on its own.
	BudgetExceeded bool
}

// paragraphBreak matches the blank-line run between paragraphs.
var paragraphBreak = regexp.MustCompile(`\n[ \t]*\n\s*`)

type splitFunc func(text string) []string

// Segmenter splits text that does not fit a budget, preferring paragraph
// breaks, then sentence ends, then word boundaries. Segments are contiguous:
// concatenating them yields the input.
type Segmenter struct {
	tokenizer Tokenizer
	levels    []splitFunc
}

// NewSegmenter builds a segmenter. Word boundaries are always used as the last level.
func NewSegmenter(tok Tokenizer, respectParagraphs, respectSentences bool) *Segmenter {
	var levels []splitFunc
	if respectParagraphs {
		levels = append(levels, splitParagraphs)
	}
	if respectSentences {
		levels = append(levels, splitSentences)
	}
	levels = append(levels, splitWords)
	return &Segmenter{tokenizer: tok, levels: levels}
}

// Split returns text unchanged when it fits, otherwise segments of at most
// budget tokens each, except for flagged single words.
func (s *Segmenter) Split(text string, budget int) ([]Segment, error) {
	if budget <= 0 {
		return nil, fmt.Errorf("%w: segment budget must be positive, got %d", ErrInvalidConfig, budget)
	}
	n, err := s.tokenizer.Count(text)
	if err != nil {
		return nil, err
	}
	if n <= budget {
		return []Segment{{Text: text, Tokens: n}}, nil
	}
	return s.split(text, budget, 0)
}

func (s *Segmenter) split(text string, budget, level int) ([]Segment, error) {
	var (
		out       []Segment
		buf       string
		bufTokens int
	)
	flush := func() {
		if buf != "" {
			out = append(out, Segment{Text: buf, Tokens: bufTokens})
			buf, bufTokens = "", 0
		}
	}

	for _, piece := range s.levels[level](text) {
		if buf != "" {
			n, err := s.tokenizer.Count(buf + piece)
			if err != nil {
				return nil, err
			}
			if n <= budget {
				buf, bufTokens = buf+piece, n
				continue
			}
			flush()
		}

		n, err := s.tokenizer.Count(piece)
		if err != nil {
			return nil, err
		}
		if n <= budget {
			buf, bufTokens = piece, n
			continue
		}

		if level+1 == len(s.levels) {
			out = append(out, Segment{Text: piece, Tokens: n, BudgetExceeded: true})
			continue
		}
		sub, err := s.split(piece, budget, level+1)
		if err != nil {
			return nil, err
		}
		// the tail of a split piece may still share room with what follows
		if last := sub[len(sub)-1]; !last.BudgetExceeded {
			out = append(out, sub[:len(sub)-1]...)
			buf, bufTokens = last.Text, last.Tokens
			continue
		}
		out = append(out, sub...)
	}
	flush()
	return out, nil
}

// splitParagraphs cuts after each blank-line run so the separator stays with
// the preceding paragraph.
func splitParagraphs(text string) []string {
	var pieces []string
	start := 0
	for _, loc := range paragraphBreak.FindAllStringIndex(text, -1) {
		pieces = append(pieces, text[start:loc[1]])
		start = loc[1]
	}
	if start < len(text) {
		pieces = append(pieces, text[start:])
	}
	return pieces
}

func splitSentences(text string) []string {
	return toStrings(sentences.SegmentAll([]byte(text)))
}

func splitWords(text string) []string {
	return toStrings(words.SegmentAll([]byte(text)))
}

func toStrings(segs [][]byte) []string {
	out := make([]string, len(segs))
	for i, s := range segs {
		out[i] = string(s)
	}
	return out
}
