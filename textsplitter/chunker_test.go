package textsplitter_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/docchunk/parsers"
	logger "github.com/sevigo/docchunk/parsers/testing"
	"github.com/sevigo/docchunk/schema"
	"github.com/sevigo/docchunk/textsplitter"
	"github.com/sevigo/docchunk/tokenizer"
)

func newCounter(t *testing.T) *tokenizer.Counter {
	t.Helper()
	log, _ := logger.NewTestLogger(t)
	counter, err := tokenizer.NewCounter(tokenizer.WordsModel, tokenizer.WithLogger(log))
	require.NoError(t, err)
	return counter
}

func newChunker(t *testing.T, opts ...textsplitter.Option) (*textsplitter.Chunker, *tokenizer.Counter) {
	t.Helper()
	log, _ := logger.NewTestLogger(t)
	registry, err := parsers.RegisterLanguagePlugins(log)
	require.NoError(t, err)

	counter := newCounter(t)
	base := []textsplitter.Option{
		textsplitter.WithEncodingModel(tokenizer.WordsModel),
		textsplitter.WithOverlapTokens(0),
		textsplitter.WithMinChunkTokens(0),
	}
	c, err := textsplitter.New(registry, counter, log, append(base, opts...)...)
	require.NoError(t, err)
	return c, counter
}

func fenced(s string) string {
	return strings.ReplaceAll(s, "'''", "```")
}

func TestChunkText_RepeatedSentences(t *testing.T) {
	c, counter := newChunker(t, textsplitter.WithMaxTokens(50), textsplitter.WithOverlapTokens(10))
	text := strings.Repeat("This is a test. ", 20)

	chunks, err := c.ChunkText(context.Background(), "notes", text)
	require.NoError(t, err)
	require.Len(t, chunks, 3)

	for i, ch := range chunks {
		n, err := counter.Count(ch.Content)
		require.NoError(t, err)
		assert.LessOrEqual(t, n, 50, "chunk %d", i)
		assert.Equal(t, n, ch.TokenCount, "chunk %d", i)
		assert.Equal(t, i, ch.Index)
		assert.Equal(t, 3, ch.TotalChunks)
		assert.Equal(t, schema.ChunkTypeText, ch.Type)
		assert.False(t, ch.Metadata.BudgetExceeded)
		assert.Equal(t, tokenizer.WordsModel, ch.Metadata.EncodingModel)
	}

	assert.False(t, chunks[0].Metadata.Continues)
	assert.True(t, chunks[1].Metadata.Continues)
	assert.True(t, chunks[2].Metadata.Continues)

	assert.Empty(t, chunks[0].PrevID)
	assert.Equal(t, chunks[1].ID, chunks[0].NextID)
	assert.Equal(t, chunks[0].ID, chunks[1].PrevID)
	assert.Empty(t, chunks[2].NextID)
	assert.True(t, strings.HasPrefix(chunks[1].ID, "chunk_0001_"))

	assert.Empty(t, chunks[0].OverlapPrev)
	assert.NotEmpty(t, chunks[0].OverlapNext)
	assert.True(t, strings.HasSuffix(chunks[0].Content, chunks[1].OverlapPrev))
	assert.True(t, strings.HasPrefix(chunks[1].Content, chunks[0].OverlapNext))
	assert.Equal(t, 10, chunks[0].OverlapTokenCount)
	assert.Equal(t, 20, chunks[1].OverlapTokenCount)
	assert.Equal(t, 10, chunks[2].OverlapTokenCount)

	assert.Equal(t, text, textsplitter.Reconstruct(chunks))
}

func TestChunkText_SmallCodeBlock(t *testing.T) {
	c, _ := newChunker(t)

	chunks, err := c.ChunkText(context.Background(), "snippet", fenced("'''python\nx = 1\n'''"))
	require.NoError(t, err)
	require.Len(t, chunks, 1)

	ch := chunks[0]
	assert.Equal(t, schema.ChunkTypeCode, ch.Type)
	assert.True(t, ch.Metadata.HasCode)
	assert.False(t, ch.Metadata.BudgetExceeded)
	assert.Positive(t, ch.TokenCount)
	assert.Equal(t, 1, ch.TotalChunks)
}

func TestChunkText_Empty(t *testing.T) {
	c, _ := newChunker(t)

	chunks, err := c.ChunkText(context.Background(), "empty", "")
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "", chunks[0].Content)
	assert.Equal(t, 0, chunks[0].TokenCount)
	assert.Equal(t, "chunk_0000_e3b0c442", chunks[0].ID)

	chunks, err = c.ChunkBlocks(context.Background(), "empty", nil)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, 1, chunks[0].TotalChunks)
	assert.Equal(t, "empty", chunks[0].Metadata.SourceID)
}

func TestChunkText_DeterministicIDs(t *testing.T) {
	text := strings.Repeat("Chunk ids only depend on content and position. ", 30)

	first, _ := newChunker(t, textsplitter.WithMaxTokens(40))
	second, _ := newChunker(t, textsplitter.WithMaxTokens(40))

	a, err := first.ChunkText(context.Background(), "doc", text)
	require.NoError(t, err)
	b, err := second.ChunkText(context.Background(), "doc", text)
	require.NoError(t, err)

	require.Equal(t, len(a), len(b))
	require.Greater(t, len(a), 1)
	for i := range a {
		assert.Equal(t, a[i].ID, b[i].ID)
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	log, _ := logger.NewTestLogger(t)
	registry, err := parsers.RegisterLanguagePlugins(log)
	require.NoError(t, err)
	counter := newCounter(t)

	tests := []struct {
		name string
		opts []textsplitter.Option
		msg  string
	}{
		{"OverlapEqualsMax", []textsplitter.Option{textsplitter.WithMaxTokens(10), textsplitter.WithOverlapTokens(10), textsplitter.WithMinChunkTokens(0)}, "overlap_tokens (10) must be less than max_tokens (10)"},
		{"ZeroMax", []textsplitter.Option{textsplitter.WithMaxTokens(0), textsplitter.WithOverlapTokens(0), textsplitter.WithMinChunkTokens(0)}, "max_tokens must be positive"},
		{"BadPolicy", []textsplitter.Option{textsplitter.WithOversizePolicy("drop")}, "oversize_policy"},
		{"MissingModel", []textsplitter.Option{textsplitter.WithEncodingModel("")}, "encoding_model is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := textsplitter.New(registry, counter, log, tt.opts...)
			require.ErrorIs(t, err, textsplitter.ErrInvalidConfig)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}

	t.Run("NilRegistry", func(t *testing.T) {
		_, err := textsplitter.New(nil, counter, log)
		assert.ErrorIs(t, err, textsplitter.ErrNilRegistry)
	})

	t.Run("TokenizerFromModel", func(t *testing.T) {
		c, err := textsplitter.New(registry, nil, log, textsplitter.WithEncodingModel(tokenizer.WordsModel))
		require.NoError(t, err)
		assert.Equal(t, tokenizer.WordsModel, c.Stats().EncodingModel)

		_, err = textsplitter.New(registry, nil, log, textsplitter.WithEncodingModel("no-such-model"))
		assert.ErrorIs(t, err, tokenizer.ErrUnknownModel)
	})
}

const errorGuide = `# Error Handling

Always wrap errors with context.

'''go
// GOOD: wrap with context
if err != nil {
	return fmt.Errorf("open config: %w", err)
}
// BAD: drop the error
f, _ := os.Open(path)
'''

## Logging

Use structured logging.`

func TestChunkDocument_MarkdownWithExamples(t *testing.T) {
	c, _ := newChunker(t, textsplitter.WithPreserveSections(true))
	doc := schema.NewDocument(fenced(errorGuide), map[string]any{"source": "docs/errors.md"})

	chunks, err := c.ChunkDocument(context.Background(), doc)
	require.NoError(t, err)
	require.Len(t, chunks, 4)

	assert.Equal(t, schema.ChunkTypeSectionHeader, chunks[0].Type)
	assert.Equal(t, "# Error Handling\n\nAlways wrap errors with context.", chunks[0].Content)
	assert.Equal(t, "error-handling", chunks[0].Metadata.Section)

	good, bad := chunks[1], chunks[2]
	assert.Equal(t, schema.ChunkTypeCode, good.Type)
	assert.Equal(t, []schema.ExampleType{schema.ExampleGood}, good.Metadata.ExampleTypes)
	assert.Equal(t, 1, good.Metadata.Part)
	assert.Equal(t, 2, good.Metadata.Parts)
	assert.Equal(t, schema.SplitMarkers, good.Metadata.SplitStrategy)
	assert.Equal(t, []string{"go"}, good.Metadata.CodeLanguages)
	assert.True(t, strings.HasPrefix(good.Content, "```go\n// GOOD:"))

	assert.Equal(t, schema.ChunkTypeCode, bad.Type)
	assert.Equal(t, []schema.ExampleType{schema.ExampleBad}, bad.Metadata.ExampleTypes)
	assert.Equal(t, 2, bad.Metadata.Part)
	assert.True(t, bad.Metadata.Continues)
	assert.Contains(t, bad.RetrievalText(), "Example: Bad")

	assert.Equal(t, schema.ChunkTypeSectionHeader, chunks[3].Type)
	assert.Equal(t, "error-handling/logging", chunks[3].Metadata.Section)
	assert.Equal(t, []string{"Error Handling", "Logging"}, chunks[3].Metadata.SectionPath)

	rebuilt := textsplitter.Reconstruct(chunks)
	assert.Contains(t, rebuilt, "```go\n// GOOD: wrap with context\n")
	assert.Contains(t, rebuilt, "// BAD: drop the error\nf, _ := os.Open(path)\n```")
}

func TestChunkDocument_Sections(t *testing.T) {
	doc := schema.NewDocument("# Setup\n\nInstall the tool.\n\n## Usage\n\nRun it.", map[string]any{"source": "README.md"})

	t.Run("Preserved", func(t *testing.T) {
		c, _ := newChunker(t, textsplitter.WithPreserveSections(true))
		chunks, err := c.ChunkDocument(context.Background(), doc)
		require.NoError(t, err)
		require.Len(t, chunks, 2)
		assert.Equal(t, "# Setup\n\nInstall the tool.", chunks[0].Content)
		assert.Equal(t, "setup/usage", chunks[1].Metadata.Section)
	})

	t.Run("Packed", func(t *testing.T) {
		c, _ := newChunker(t)
		chunks, err := c.ChunkDocument(context.Background(), doc)
		require.NoError(t, err)
		require.Len(t, chunks, 1)
		assert.Equal(t, doc.PageContent, chunks[0].Content)
		assert.Equal(t, 0, chunks[0].Metadata.BlockStart)
		assert.Equal(t, 3, chunks[0].Metadata.BlockEnd)
		assert.Equal(t, "setup", chunks[0].Metadata.Section)
	})
}

const goSource = `package main

func a() int {
	return 1
}

func b() int {
	return 2
}`

func TestChunkBlocks_OversizedCodeSplitsAtDeclarations(t *testing.T) {
	c, counter := newChunker(t, textsplitter.WithMaxTokens(20), textsplitter.WithDetectExamples(false))
	block := schema.Block{Type: schema.BlockCode, Language: "go", Content: goSource}

	chunks, err := c.ChunkBlocks(context.Background(), "main.go", []schema.Block{block})
	require.NoError(t, err)
	require.Len(t, chunks, 2)

	for i, ch := range chunks {
		n, err := counter.Count(ch.Content)
		require.NoError(t, err)
		assert.LessOrEqual(t, n, 20, "part %d", i)
		assert.Equal(t, schema.ChunkTypeCode, ch.Type)
		assert.Equal(t, schema.SplitDeclarations, ch.Metadata.SplitStrategy)
		assert.Equal(t, i+1, ch.Metadata.Part)
		assert.Equal(t, 2, ch.Metadata.Parts)
		assert.True(t, ch.IsCodePart())
	}
	assert.True(t, strings.HasPrefix(chunks[1].Content, "```go\nfunc b() int {"))

	assert.Equal(t, block.Render(), textsplitter.Reconstruct(chunks))
}

func TestChunkBlocks_OversizedLine(t *testing.T) {
	line := strings.Repeat("x ", 40)
	block := schema.Block{Type: schema.BlockCode, Content: line}

	t.Run("Emit", func(t *testing.T) {
		c, _ := newChunker(t, textsplitter.WithMaxTokens(20), textsplitter.WithDetectExamples(false))
		chunks, err := c.ChunkBlocks(context.Background(), "long", []schema.Block{block})
		require.NoError(t, err)
		require.Len(t, chunks, 1)
		assert.True(t, chunks[0].Metadata.BudgetExceeded)
		assert.Greater(t, chunks[0].TokenCount, 20)
		assert.Equal(t, schema.ChunkTypeCode, chunks[0].Type)
	})

	t.Run("Error", func(t *testing.T) {
		c, _ := newChunker(t, textsplitter.WithMaxTokens(20), textsplitter.WithDetectExamples(false),
			textsplitter.WithOversizePolicy(textsplitter.OversizeError))
		_, err := c.ChunkBlocks(context.Background(), "long", []schema.Block{block})
		assert.ErrorIs(t, err, textsplitter.ErrBudgetExceeded)
	})

	t.Run("Split", func(t *testing.T) {
		c, _ := newChunker(t, textsplitter.WithMaxTokens(20), textsplitter.WithDetectExamples(false),
			textsplitter.WithOversizePolicy(textsplitter.OversizeSplit))
		chunks, err := c.ChunkBlocks(context.Background(), "long", []schema.Block{block})
		require.NoError(t, err)
		require.Greater(t, len(chunks), 1)
		for _, ch := range chunks {
			assert.True(t, ch.Metadata.ForcedSplit)
			assert.Equal(t, schema.SplitTokens, ch.Metadata.SplitStrategy)
			assert.Equal(t, len(chunks), ch.Metadata.Parts)
		}
	})
}

func TestChunkBlocks_CanceledContext(t *testing.T) {
	c, _ := newChunker(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.ChunkBlocks(ctx, "doc", []schema.Block{{Type: schema.BlockParagraph, Content: "text"}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSplitDocuments(t *testing.T) {
	c, _ := newChunker(t, textsplitter.WithWorkers(2))
	docs := []schema.Document{
		schema.NewDocument("hello world", map[string]any{"source": "notes.txt", "owner": "docs"}),
		schema.NewDocument(fenced(errorGuide), map[string]any{"source": "errors.md"}),
	}

	out, err := c.SplitDocuments(context.Background(), docs)
	require.NoError(t, err)
	require.Len(t, out, 5)

	first := out[0]
	assert.Equal(t, "hello world", first.PageContent)
	assert.Equal(t, "notes.txt", first.Source())
	assert.Equal(t, "docs", first.Metadata["owner"])
	id, ok := first.Metadata["chunk_id"].(string)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(id, "chunk_0000_"))
	assert.Equal(t, 1, first.Metadata["total_chunks"])

	assert.Equal(t, "errors.md", out[1].Source())
	assert.Equal(t, "good", out[2].Metadata["example_type"])
	assert.Equal(t, "go", out[2].Metadata["language"])
}

func TestEstimateAndStats(t *testing.T) {
	c, _ := newChunker(t, textsplitter.WithMaxTokens(50), textsplitter.WithOverlapTokens(10))

	n, err := c.EstimateChunks(strings.Repeat("This is a test. ", 20))
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	stats := c.Stats()
	assert.Equal(t, tokenizer.WordsModel, stats.EncodingModel)
	assert.Equal(t, 50, stats.MaxTokens)
	assert.Equal(t, 10, stats.OverlapTokens)
	assert.Equal(t, textsplitter.OversizeEmit, stats.OversizePolicy)
	assert.Positive(t, stats.CachedCounts)
	assert.Positive(t, stats.Parsers)
}

func TestChunkBlocks_StructuralDocument(t *testing.T) {
	longParagraph := strings.TrimSpace(strings.Repeat(
		"Tokens are counted per chunk. Paragraphs break at sentences before words. ", 8))
	examples := []string{"Guide", "Examples"}
	blocks := []schema.Block{
		{Type: schema.BlockHeading, Level: 1, Content: "# Guide", SectionPath: []string{"Guide"}},
		{Type: schema.BlockParagraph, Content: longParagraph, SectionPath: []string{"Guide"}},
		{Type: schema.BlockCode, Language: "go", Content: goSource, SectionPath: []string{"Guide"}},
		{Type: schema.BlockHeading, Level: 2, Content: "## Examples", SectionPath: examples},
		{Type: schema.BlockCode, Language: "python", SectionPath: examples,
			Content: "# GOOD: close the file\nwith open(p) as f:\n    f.read()\n# BAD: leak it\nf = open(p)"},
		{Type: schema.BlockChecklist, Content: "- [x] wrap errors\n- [ ] add metrics", SectionPath: examples},
		{Type: schema.BlockTable, Content: "| name | value |\n|------|-------|\n| max | 512 |", SectionPath: examples},
	}

	rendered := make([]string, len(blocks))
	for i, b := range blocks {
		rendered[i] = b.Render()
	}
	want := strings.Join(rendered, textsplitter.BlockSeparator)

	for _, maxTokens := range []int{12, 25, 40, 400} {
		for _, preserve := range []bool{false, true} {
			t.Run(fmt.Sprintf("max=%d/sections=%t", maxTokens, preserve), func(t *testing.T) {
				c, counter := newChunker(t,
					textsplitter.WithMaxTokens(maxTokens),
					textsplitter.WithPreserveSections(preserve))

				chunks, err := c.ChunkBlocks(context.Background(), "guide.md", blocks)
				require.NoError(t, err)
				assert.Equal(t, want, textsplitter.Reconstruct(chunks))

				var labels []schema.ExampleType
				for i, ch := range chunks {
					labels = append(labels, ch.Metadata.ExampleTypes...)
					if ch.Metadata.BudgetExceeded {
						continue
					}
					n, err := counter.Count(ch.Content)
					require.NoError(t, err)
					assert.LessOrEqual(t, n, maxTokens, "chunk %d", i)
				}
				assert.Contains(t, labels, schema.ExampleGood)
				assert.Contains(t, labels, schema.ExampleBad)
			})
		}
	}
}

// byteTokenizer makes every byte a token, so token windows can cut runes.
type byteTokenizer struct{}

func (byteTokenizer) Count(text string) (int, error) { return len(text), nil }

func (byteTokenizer) Encode(text string) ([]int, error) {
	tokens := make([]int, len(text))
	for i := 0; i < len(text); i++ {
		tokens[i] = int(text[i])
	}
	return tokens, nil
}

func (byteTokenizer) Decode(tokens []int) (string, error) {
	buf := make([]byte, len(tokens))
	for i, tok := range tokens {
		buf[i] = byte(tok)
	}
	return string(buf), nil
}

func (byteTokenizer) SplitAtTokenLimit(text string, maxTokens, _ int) ([]string, error) {
	var out []string
	for len(text) > maxTokens {
		out = append(out, text[:maxTokens])
		text = text[maxTokens:]
	}
	return append(out, text), nil
}

func (byteTokenizer) Model() string { return "bytes" }

func TestChunkBlocks_OverlapKeepsWholeRunes(t *testing.T) {
	log, _ := logger.NewTestLogger(t)
	registry, err := parsers.RegisterLanguagePlugins(log)
	require.NoError(t, err)

	blocks := []schema.Block{
		{Type: schema.BlockParagraph, Content: "xxxxxxxxé"},
		{Type: schema.BlockParagraph, Content: "éyyyyyyyy"},
	}

	tests := []struct {
		overlap  int
		wantPrev string
		wantNext string
	}{
		{overlap: 1, wantPrev: "", wantNext: ""},
		{overlap: 2, wantPrev: "é", wantNext: "é"},
		{overlap: 3, wantPrev: "xé", wantNext: "éy"},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("overlap=%d", tt.overlap), func(t *testing.T) {
			c, err := textsplitter.New(registry, byteTokenizer{}, log,
				textsplitter.WithEncodingModel("bytes"),
				textsplitter.WithMaxTokens(12),
				textsplitter.WithMinChunkTokens(0),
				textsplitter.WithOverlapTokens(tt.overlap))
			require.NoError(t, err)

			chunks, err := c.ChunkBlocks(context.Background(), "runes", blocks)
			require.NoError(t, err)
			require.Len(t, chunks, 2)

			assert.Equal(t, tt.wantNext, chunks[0].OverlapNext)
			assert.Equal(t, tt.wantPrev, chunks[1].OverlapPrev)
			assert.True(t, utf8.ValidString(chunks[0].OverlapNext))
			assert.True(t, utf8.ValidString(chunks[1].OverlapPrev))
		})
	}
}
