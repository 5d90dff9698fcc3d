package textsplitter

import "github.com/sevigo/docchunk/tokenizer"

// Tokenizer is the token accounting the chunker measures everything with.
// *tokenizer.Counter is the standard implementation.
type Tokenizer interface {
	Count(text string) (int, error)
	Encode(text string) ([]int, error)
	Decode(tokens []int) (string, error)
	SplitAtTokenLimit(text string, maxTokens, overlapTokens int) ([]string, error)
	Model() string
}

var _ Tokenizer = (*tokenizer.Counter)(nil)
