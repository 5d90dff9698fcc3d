package tokenizer

import (
	"crypto/sha256"
	"fmt"
	"log/slog"

	lru "github.com/hashicorp/golang-lru/v2"
)

const DefaultCacheSize = 10000

type counterOptions struct {
	cacheSize int
	logger    *slog.Logger
}

// Option configures a Counter.
type Option func(*counterOptions)

// WithCacheSize bounds the number of memoized counts.
func WithCacheSize(size int) Option {
	return func(o *counterOptions) {
		if size > 0 {
			o.cacheSize = size
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *counterOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Counter is the token accounting unit: it counts, encodes and windows text
// with one encoding and memoizes counts by content hash. It is safe for
// concurrent use.
type Counter struct {
	model  string
	enc    Encoding
	cache  *lru.Cache[[sha256.Size]byte, int]
	logger *slog.Logger
}

// NewCounter loads the encoding registered for model.
func NewCounter(model string, opts ...Option) (*Counter, error) {
	enc, err := NewEncoding(model)
	if err != nil {
		return nil, err
	}
	return NewCounterWithEncoding(model, enc, opts...)
}

// NewCounterWithEncoding wraps an already loaded encoding.
func NewCounterWithEncoding(model string, enc Encoding, opts ...Option) (*Counter, error) {
	if enc == nil {
		return nil, fmt.Errorf("%w: nil encoding for %q", ErrUnknownModel, model)
	}

	o := counterOptions{cacheSize: DefaultCacheSize, logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	cache, err := lru.New[[sha256.Size]byte, int](o.cacheSize)
	if err != nil {
		return nil, fmt.Errorf("create token cache: %w", err)
	}

	return &Counter{
		model:  model,
		enc:    enc,
		cache:  cache,
		logger: o.logger.With("component", "token_counter", "model", model),
	}, nil
}

func (c *Counter) Model() string {
	return c.model
}

// Count returns the number of tokens in text.
func (c *Counter) Count(text string) (int, error) {
	if text == "" {
		return 0, nil
	}

	key := sha256.Sum256([]byte(text))
	if n, ok := c.cache.Get(key); ok {
		return n, nil
	}

	tokens, err := c.Encode(text)
	if err != nil {
		return 0, err
	}
	c.cache.Add(key, len(tokens))
	return len(tokens), nil
}

func (c *Counter) Encode(text string) ([]int, error) {
	tokens, err := c.enc.Encode(text)
	if err != nil {
		return nil, fmt.Errorf("encode with %s: %w", c.model, err)
	}
	return tokens, nil
}

func (c *Counter) Decode(tokens []int) (string, error) {
	text, err := c.enc.Decode(tokens)
	if err != nil {
		return "", fmt.Errorf("decode with %s: %w", c.model, err)
	}
	return text, nil
}

// SplitAtTokenLimit cuts text into windows of at most maxTokens tokens. Every
// window after the first starts with the last overlapTokens tokens of the
// window before it. Text that already fits is returned unchanged.
func (c *Counter) SplitAtTokenLimit(text string, maxTokens, overlapTokens int) ([]string, error) {
	if maxTokens <= 0 {
		return nil, fmt.Errorf("%w: max tokens must be positive, got %d", ErrInvalidLimit, maxTokens)
	}

	tokens, err := c.Encode(text)
	if err != nil {
		return nil, err
	}
	if len(tokens) <= maxTokens {
		return []string{text}, nil
	}

	if overlapTokens < 0 {
		overlapTokens = 0
	}
	if overlapTokens >= maxTokens {
		c.logger.Warn("Overlap not smaller than window, clamping",
			"overlap_tokens", overlapTokens, "max_tokens", maxTokens)
		overlapTokens = maxTokens - 1
	}

	var windows []string
	start, prevStart := 0, -1
	for start < len(tokens) {
		if start <= prevStart {
			c.logger.Warn("Token window did not advance, stopping", "start", start)
			break
		}
		prevStart = start

		end := min(start+maxTokens, len(tokens))
		window, err := c.Decode(tokens[start:end])
		if err != nil {
			return nil, err
		}
		windows = append(windows, window)

		if end >= len(tokens) {
			break
		}
		start = max(start+1, end-overlapTokens)
	}
	return windows, nil
}

// EstimateChunksNeeded is a ceiling estimate of the windows SplitAtTokenLimit
// would produce. It is meant for reporting.
func (c *Counter) EstimateChunksNeeded(text string, maxTokens, overlapTokens int) (int, error) {
	total, err := c.Count(text)
	if err != nil {
		return 0, err
	}
	return EstimateChunks(total, maxTokens, overlapTokens), nil
}

// CacheLen returns the number of memoized counts.
func (c *Counter) CacheLen() int {
	return c.cache.Len()
}

// ClearCache empties the count cache. The encoding itself is left alone, so
// tokens returned by Encode stay decodable.
func (c *Counter) ClearCache() {
	c.cache.Purge()
}
