package textsplitter

import "errors"

// OversizePolicy decides what happens to a unit that no boundary can bring under budget.
type OversizePolicy string

const (
	// OversizeEmit keeps the unit whole and flags it BudgetExceeded.
	OversizeEmit OversizePolicy = "emit"
	// OversizeError fails the document with ErrBudgetExceeded.
	OversizeError OversizePolicy = "error"
	// OversizeSplit cuts the unit into token windows. The cut is lossy and flagged ForcedSplit.
	OversizeSplit OversizePolicy = "split"
)

// BlockSeparator joins blocks that share a chunk.
const BlockSeparator = "\n\n"

const (
	defaultMaxTokens      = 512
	defaultOverlapTokens  = 50
	defaultMinChunkTokens = 50
	defaultEncodingModel  = "cl100k_base"

	// mixedPrefixChars is how much prose may precede a fence before a chunk counts as mixed.
	mixedPrefixChars = 100
	// contextWindowBlocks bounds the search for prose around a code block.
	contextWindowBlocks = 5
	contextMaxRunes     = 500
)

var (
	ErrInvalidConfig  = errors.New("invalid chunking config")
	ErrBudgetExceeded = errors.New("unit exceeds token budget")
	ErrNilRegistry    = errors.New("parser registry cannot be nil")
)
