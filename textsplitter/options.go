package textsplitter

// Option is a function type for configuring the chunker.
type Option func(*Config)

// WithConfig replaces the whole configuration. Later options still apply on top.
func WithConfig(cfg Config) Option {
	return func(c *Config) {
		*c = cfg
	}
}

// WithMaxTokens sets the token budget per chunk.
func WithMaxTokens(n int) Option {
	return func(c *Config) {
		c.MaxTokens = n
	}
}

// WithOverlapTokens sets how many tokens neighbouring chunks share as context.
func WithOverlapTokens(n int) Option {
	return func(c *Config) {
		c.OverlapTokens = n
	}
}

// WithMinChunkTokens sets the advisory lower bound. Smaller chunks are logged, never merged.
func WithMinChunkTokens(n int) Option {
	return func(c *Config) {
		c.MinChunkTokens = n
	}
}

func WithPreserveCodeBlocks(preserve bool) Option {
	return func(c *Config) {
		c.PreserveCodeBlocks = preserve
	}
}

func WithPreserveSections(preserve bool) Option {
	return func(c *Config) {
		c.PreserveSections = preserve
	}
}

func WithRespectSentences(respect bool) Option {
	return func(c *Config) {
		c.RespectSentenceBoundaries = respect
	}
}

func WithRespectParagraphs(respect bool) Option {
	return func(c *Config) {
		c.RespectParagraphBoundaries = respect
	}
}

// WithEncodingModel selects the encoding New loads when no tokenizer is given.
// A tokenizer passed to New decides what is actually counted; a mismatch is logged.
func WithEncodingModel(model string) Option {
	return func(c *Config) {
		c.EncodingModel = model
	}
}

func WithOversizePolicy(policy OversizePolicy) Option {
	return func(c *Config) {
		c.OversizePolicy = policy
	}
}

// WithDetectExamples toggles marker-based sub-example splitting of code blocks.
func WithDetectExamples(detect bool) Option {
	return func(c *Config) {
		c.DetectExamples = detect
	}
}

// WithMarkerTable loads marker rules from a YAML file instead of the built-in table.
func WithMarkerTable(path string) Option {
	return func(c *Config) {
		c.MarkerTable = path
	}
}

// WithWorkers bounds concurrent documents in SplitDocuments. Zero means one per CPU.
func WithWorkers(n int) Option {
	return func(c *Config) {
		c.Workers = n
	}
}
