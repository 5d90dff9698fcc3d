package tokenizer

import (
	"fmt"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/clipperhouse/uax29/words"
)

// WordsModel is the id of the offline Unicode word encoding.
const WordsModel = "uax29-words"

// WordsEncoding tokenizes on Unicode word boundaries (UAX #29). Whitespace is
// attached to the segment that follows it, the way BPE vocabularies fold a
// leading space into the next word. Ids are assigned on first sight, so they
// are stable within a process only. The vocabulary keeps every distinct piece
// it has seen and is never trimmed: ids handed out earlier must stay decodable,
// so memory grows with the number of distinct words in a long run.
type WordsEncoding struct {
	mu    sync.RWMutex
	ids   map[string]int
	vocab []string
}

func NewWordsEncoding() *WordsEncoding {
	return &WordsEncoding{ids: make(map[string]int)}
}

func (e *WordsEncoding) Encode(text string) ([]int, error) {
	pieces := wordPieces(text)
	tokens := make([]int, len(pieces))
	for i, p := range pieces {
		tokens[i] = e.intern(p)
	}
	return tokens, nil
}

func (e *WordsEncoding) Decode(tokens []int) (string, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	buf := make([]byte, 0, len(tokens)*4)
	for _, id := range tokens {
		if id < 0 || id >= len(e.vocab) {
			return "", fmt.Errorf("%w: %d", ErrInvalidToken, id)
		}
		buf = append(buf, e.vocab[id]...)
	}
	return string(buf), nil
}

func (e *WordsEncoding) intern(piece string) int {
	e.mu.RLock()
	id, ok := e.ids[piece]
	e.mu.RUnlock()
	if ok {
		return id
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if id, ok := e.ids[piece]; ok {
		return id
	}
	id = len(e.vocab)
	e.vocab = append(e.vocab, piece)
	e.ids[piece] = id
	return id
}

func wordPieces(text string) []string {
	segments := words.SegmentAll([]byte(text))
	pieces := make([]string, 0, len(segments))
	pending := ""
	for _, seg := range segments {
		s := string(seg)
		if isSpace(s) {
			pending += s
			continue
		}
		pieces = append(pieces, pending+s)
		pending = ""
	}
	if pending != "" {
		pieces = append(pieces, pending)
	}
	return pieces
}

func isSpace(s string) bool {
	for len(s) > 0 {
		r, size := utf8.DecodeRuneInString(s)
		if !unicode.IsSpace(r) {
			return false
		}
		s = s[size:]
	}
	return true
}
