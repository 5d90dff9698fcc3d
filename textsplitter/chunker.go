package textsplitter

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sevigo/docchunk/markers"
	"github.com/sevigo/docchunk/parsers"
	"github.com/sevigo/docchunk/schema"
	"github.com/sevigo/docchunk/tokenizer"
)

// Chunker turns documents into token-bounded chunks that respect structure:
// code blocks stay whole where the budget allows, text breaks at paragraph,
// sentence and word boundaries, and neighbouring chunks are linked.
type Chunker struct {
	cfg       Config
	tokenizer Tokenizer
	registry  parsers.ParserRegistry
	segmenter *Segmenter
	markers   *markers.Splitter
	logger    *slog.Logger
}

var _ TextSplitter = (*Chunker)(nil)

// New validates the configuration and builds a Chunker. The registry supplies
// markdown parsing and declaration boundaries for oversized code. A nil
// tokenizer is replaced by a tokenizer.Counter for the configured encoding model.
func New(registry parsers.ParserRegistry, tok Tokenizer, logger *slog.Logger, opts ...Option) (*Chunker, error) {
	if registry == nil {
		return nil, ErrNilRegistry
	}
	if logger == nil {
		logger = slog.Default()
	}

	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if tok == nil {
		counter, err := tokenizer.NewCounter(cfg.EncodingModel,
			tokenizer.WithCacheSize(cfg.CacheSize),
			tokenizer.WithLogger(logger))
		if err != nil {
			return nil, fmt.Errorf("failed to load encoding %q: %w", cfg.EncodingModel, err)
		}
		tok = counter
	}

	table := markers.DefaultTable()
	if cfg.MarkerTable != "" {
		var err error
		table, err = markers.LoadTableFile(cfg.MarkerTable)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
	}

	chunkerLogger := logger.With("component", "chunker")
	if tok.Model() != cfg.EncodingModel {
		chunkerLogger.Warn("Tokenizer model differs from configured encoding",
			"tokenizer_model", tok.Model(), "encoding_model", cfg.EncodingModel)
	}

	return &Chunker{
		cfg:       cfg,
		tokenizer: tok,
		registry:  registry,
		segmenter: NewSegmenter(tok, cfg.RespectParagraphBoundaries, cfg.RespectSentenceBoundaries),
		markers:   markers.New(table, logger),
		logger:    chunkerLogger,
	}, nil
}

func (c *Chunker) Config() Config {
	return c.cfg
}

// ChunkText chunks plain text as a single paragraph.
func (c *Chunker) ChunkText(ctx context.Context, sourceID, text string) ([]schema.Chunk, error) {
	return c.ChunkBlocks(ctx, sourceID, []schema.Block{{Type: schema.BlockParagraph, Content: text}})
}

// ChunkBlocks builds linked chunks from an ordered block list. Empty input
// yields a single empty chunk.
func (c *Chunker) ChunkBlocks(ctx context.Context, sourceID string, blocks []schema.Block) ([]schema.Chunk, error) {
	b := &builder{c: c, sourceID: sourceID}
	for i := range blocks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := b.addBlock(blocks, i); err != nil {
			return nil, fmt.Errorf("block %d of %s: %w", i, sourceID, err)
		}
	}
	b.flush()

	chunks := b.chunks
	if len(chunks) == 0 {
		chunks = []schema.Chunk{{
			Type:     schema.ChunkTypeText,
			Metadata: schema.ChunkMetadata{SourceID: sourceID},
		}}
	}
	if err := c.link(chunks); err != nil {
		return nil, err
	}

	c.logger.Debug("Chunked blocks", "source", sourceID, "blocks", len(blocks), "chunks", len(chunks))
	return chunks, nil
}

// ChunkDocument picks a parser by the document source. Markdown-like sources
// are parsed into blocks, other known languages become one code block and
// anything else is chunked as text.
func (c *Chunker) ChunkDocument(ctx context.Context, doc schema.Document) ([]schema.Chunk, error) {
	source := doc.Source()
	if source == "" {
		return c.ChunkText(ctx, source, doc.PageContent)
	}

	plugin, err := c.registry.GetParserForFile(source, nil)
	if err != nil {
		return c.ChunkText(ctx, source, doc.PageContent)
	}

	if bp, ok := plugin.(schema.BlockParser); ok {
		blocks, err := bp.ParseBlocks(doc.PageContent)
		if err != nil {
			c.logger.Warn("Block parsing failed, chunking as text", "source", source, "parser", plugin.Name(), "error", err)
			return c.ChunkText(ctx, source, doc.PageContent)
		}
		return c.ChunkBlocks(ctx, source, blocks)
	}

	return c.ChunkBlocks(ctx, source, []schema.Block{{
		Type:     schema.BlockCode,
		Language: plugin.Name(),
		Content:  doc.PageContent,
	}})
}

// SplitDocuments turns every document into one document per chunk, carrying
// the original metadata plus the chunk fields.
func (c *Chunker) SplitDocuments(ctx context.Context, docs []schema.Document) ([]schema.Document, error) {
	results, err := c.ChunkDocuments(ctx, docs, c.cfg.Workers)
	if err != nil {
		return nil, err
	}

	var out []schema.Document
	for i, chunks := range results {
		for _, ch := range chunks {
			out = append(out, chunkDocument(docs[i], ch))
		}
	}
	return out, nil
}

func chunkDocument(parent schema.Document, ch schema.Chunk) schema.Document {
	meta := make(map[string]any, len(parent.Metadata)+12)
	for k, v := range parent.Metadata {
		meta[k] = v
	}
	meta["chunk_id"] = ch.ID
	meta["chunk_index"] = ch.Index
	meta["total_chunks"] = ch.TotalChunks
	meta["chunk_type"] = string(ch.Type)
	meta["token_count"] = ch.TokenCount
	meta["budget_exceeded"] = ch.Metadata.BudgetExceeded
	meta["has_code"] = ch.Metadata.HasCode
	if ch.PrevID != "" {
		meta["prev_chunk_id"] = ch.PrevID
	}
	if ch.NextID != "" {
		meta["next_chunk_id"] = ch.NextID
	}
	if ch.Metadata.Section != "" {
		meta["section"] = ch.Metadata.Section
	}
	if lang := ch.Language(); lang != "" {
		meta["language"] = lang
	}
	if len(ch.Metadata.ExampleTypes) > 0 {
		meta["example_type"] = string(ch.Metadata.ExampleTypes[0])
	}
	return schema.NewDocument(ch.Content, meta)
}

// EstimateChunks predicts how many token windows text needs under the configured budget.
func (c *Chunker) EstimateChunks(text string) (int, error) {
	n, err := c.tokenizer.Count(text)
	if err != nil {
		return 0, err
	}
	return tokenizer.EstimateChunks(n, c.cfg.MaxTokens, c.cfg.OverlapTokens), nil
}

// Stats describes the chunker configuration and tokenizer state.
type Stats struct {
	EncodingModel  string         `json:"encoding_model"`
	MaxTokens      int            `json:"max_tokens"`
	OverlapTokens  int            `json:"overlap_tokens"`
	OversizePolicy OversizePolicy `json:"oversize_policy"`
	CachedCounts   int            `json:"cached_counts"`
	Parsers        int            `json:"parsers"`
}

func (c *Chunker) Stats() Stats {
	s := Stats{
		EncodingModel:  c.tokenizer.Model(),
		MaxTokens:      c.cfg.MaxTokens,
		OverlapTokens:  c.cfg.OverlapTokens,
		OversizePolicy: c.cfg.OversizePolicy,
		Parsers:        len(c.registry.GetAllParsers()),
	}
	if cached, ok := c.tokenizer.(interface{ CacheLen() int }); ok {
		s.CachedCounts = cached.CacheLen()
	}
	return s
}
