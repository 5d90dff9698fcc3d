package textsplitter

import (
	"fmt"
	"slices"
	"strings"

	"github.com/sevigo/docchunk/schema"
)

// builder accumulates blocks of one document into chunks. Blocks are packed
// into an open buffer joined by BlockSeparator until the next block would
// overflow the budget.
type builder struct {
	c        *Chunker
	sourceID string
	chunks   []schema.Chunk

	open   bool
	parts  []string
	tokens int
	meta   schema.ChunkMetadata
}

func (b *builder) addBlock(blocks []schema.Block, i int) error {
	block := blocks[i]
	cfg := b.c.cfg

	if cfg.PreserveSections && b.open &&
		(block.Type == schema.BlockHeading || !slices.Equal(block.SectionPath, b.meta.SectionPath)) {
		b.flush()
	}

	if block.Type == schema.BlockCode && cfg.PreserveCodeBlocks {
		return b.addCode(blocks, i)
	}
	return b.addText(i, block, block.Render())
}

// addText packs a text unit, segmenting it when it cannot fit a chunk on its own.
// The last segment stays open so the following blocks can share its chunk.
func (b *builder) addText(i int, block schema.Block, text string) error {
	if ok, n, err := b.fits(text); err != nil {
		return err
	} else if ok {
		b.add(i, block, text, n, nil)
		return nil
	}
	b.flush()

	segs, err := b.c.segmenter.Split(text, b.c.cfg.MaxTokens)
	if err != nil {
		return err
	}
	if len(segs) == 1 && !segs[0].BudgetExceeded && segs[0].Tokens <= b.c.cfg.MaxTokens {
		b.add(i, block, text, segs[0].Tokens, nil)
		return nil
	}

	b.c.logger.Debug("Segmented oversized text", "source", b.sourceID, "block", i, "segments", len(segs))
	for k, seg := range segs {
		meta := b.blockMeta(i, block, seg.Text)
		meta.Continues = k > 0
		meta.SplitStrategy = schema.SplitSegments

		if !seg.BudgetExceeded {
			if k == len(segs)-1 {
				b.open, b.parts, b.tokens, b.meta = true, []string{seg.Text}, seg.Tokens, meta
				continue
			}
			b.emit(seg.Text, seg.Tokens, meta, "")
			continue
		}

		pieces, err := b.oversizedText(seg)
		if err != nil {
			return err
		}
		for j, p := range pieces {
			pm := meta
			pm.Continues = meta.Continues || j > 0
			pm.BudgetExceeded = p.exceeded
			pm.ForcedSplit = p.forced
			if p.forced {
				pm.SplitStrategy = schema.SplitTokens
			}
			b.emit(p.code, p.tokens, pm, "")
		}
	}
	return nil
}

// oversizedText applies the oversize policy to a word that no boundary can shrink.
func (b *builder) oversizedText(seg Segment) ([]codePiece, error) {
	cfg := b.c.cfg
	switch cfg.OversizePolicy {
	case OversizeError:
		return nil, fmt.Errorf("%w: word of %d tokens, budget %d", ErrBudgetExceeded, seg.Tokens, cfg.MaxTokens)
	case OversizeSplit:
		windows, err := b.c.tokenizer.SplitAtTokenLimit(seg.Text, cfg.MaxTokens, 0)
		if err != nil {
			return nil, err
		}
		pieces := make([]codePiece, 0, len(windows))
		for _, w := range windows {
			n, err := b.c.tokenizer.Count(w)
			if err != nil {
				return nil, err
			}
			pieces = append(pieces, codePiece{code: w, tokens: n, forced: true, exceeded: n > cfg.MaxTokens})
		}
		return pieces, nil
	}
	b.c.logger.Warn("Word exceeds token budget", "source", b.sourceID, "tokens", seg.Tokens, "max_tokens", cfg.MaxTokens)
	return []codePiece{{code: seg.Text, tokens: seg.Tokens, exceeded: true}}, nil
}

// addCode keeps a code block whole when it fits. Marked sub-examples become
// chunks of their own and an oversized block is split by declarations or lines.
func (b *builder) addCode(blocks []schema.Block, i int) error {
	block := blocks[i]
	units := []schema.SubExample{{
		Content: block.Content,
		Label:   schema.ExampleNeutral,
		LineEnd: strings.Count(block.Content, "\n") + 1,
	}}
	if b.c.cfg.DetectExamples {
		before, after := surroundingText(blocks, i)
		units = b.c.markers.Split(block.Content, fmt.Sprintf("%s#%d", b.sourceID, i), before, after)
	}

	if len(units) == 1 {
		unit := units[0]
		rendered := block.Render()
		ok, n, err := b.fits(rendered)
		if err != nil {
			return err
		}
		if ok {
			b.add(i, block, rendered, n, &unit)
			return nil
		}
		b.flush()
		if ok, n, err = b.fits(rendered); err != nil {
			return err
		} else if ok {
			b.add(i, block, rendered, n, &unit)
			return nil
		}

		pieces, err := b.c.splitCode(block.Language, block.Content)
		if err != nil {
			return err
		}
		b.emitCodeParts(i, block, []schema.SubExample{unit}, [][]codePiece{pieces})
		return nil
	}

	b.flush()
	perUnit := make([][]codePiece, len(units))
	for k, unit := range units {
		pieces, err := b.c.splitCode(block.Language, unit.Content)
		if err != nil {
			return err
		}
		for j := range pieces {
			if pieces[j].strategy == "" {
				pieces[j].strategy = schema.SplitMarkers
			}
		}
		perUnit[k] = pieces
	}
	b.emitCodeParts(i, block, units, perUnit)
	return nil
}

// emitCodeParts emits the parts of one code block as standalone code chunks
// numbered across all of its sub-examples.
func (b *builder) emitCodeParts(i int, block schema.Block, units []schema.SubExample, perUnit [][]codePiece) {
	total := 0
	for _, pieces := range perUnit {
		total += len(pieces)
	}

	part := 0
	for k, pieces := range perUnit {
		unit := units[k]
		for _, p := range pieces {
			part++
			content := schema.RenderCode(block.Language, p.code)
			meta := b.blockMeta(i, block, content)
			meta.Part = part
			meta.Parts = total
			meta.Continues = part > 1
			meta.SplitStrategy = p.strategy
			meta.BudgetExceeded = p.exceeded
			meta.ForcedSplit = p.forced
			addExample(&meta, &unit)
			b.emit(content, p.tokens, meta, schema.ChunkTypeCode)
		}
	}
	if total > 1 {
		b.c.logger.Debug("Split code block", "source", b.sourceID, "block", i,
			"language", block.Language, "sub_examples", len(units), "parts", total)
	}
}

// fits reports whether text can join the open buffer and the token count of
// the result. With no open buffer it measures text alone.
func (b *builder) fits(text string) (bool, int, error) {
	candidate := text
	if b.open {
		candidate = strings.Join(b.parts, BlockSeparator) + BlockSeparator + text
	}
	n, err := b.c.tokenizer.Count(candidate)
	if err != nil {
		return false, 0, err
	}
	return n <= b.c.cfg.MaxTokens, n, nil
}

func (b *builder) add(i int, block schema.Block, content string, tokens int, unit *schema.SubExample) {
	if !b.open {
		b.open = true
		b.parts = nil
		b.meta = b.blockMeta(i, block, content)
	} else {
		b.meta.BlockEnd = i
		if block.LineEnd > 0 {
			b.meta.LineEnd = block.LineEnd
		}
		mergeCode(&b.meta, block, content)
	}
	addExample(&b.meta, unit)
	b.parts = append(b.parts, content)
	b.tokens = tokens
}

func (b *builder) flush() {
	if !b.open {
		return
	}
	b.emit(strings.Join(b.parts, BlockSeparator), b.tokens, b.meta, "")
	b.open, b.parts, b.tokens = false, nil, 0
	b.meta = schema.ChunkMetadata{}
}

func (b *builder) emit(content string, tokens int, meta schema.ChunkMetadata, typ schema.ChunkType) {
	if typ == "" {
		typ = DetectChunkType(content)
	}
	if minTokens := b.c.cfg.MinChunkTokens; tokens < minTokens {
		b.c.logger.Debug("Chunk below minimum size", "source", b.sourceID, "tokens", tokens, "min_chunk_tokens", minTokens)
	}
	b.chunks = append(b.chunks, schema.Chunk{
		Content:    content,
		TokenCount: tokens,
		Type:       typ,
		Metadata:   meta,
	})
}

func (b *builder) blockMeta(i int, block schema.Block, content string) schema.ChunkMetadata {
	meta := schema.ChunkMetadata{
		SourceID:    b.sourceID,
		SectionPath: slices.Clone(block.SectionPath),
		BlockStart:  i,
		BlockEnd:    i,
		LineStart:   block.LineStart,
		LineEnd:     block.LineEnd,
	}
	mergeCode(&meta, block, content)
	return meta
}

func mergeCode(meta *schema.ChunkMetadata, block schema.Block, content string) {
	if block.Type == schema.BlockCode || strings.Contains(content, schema.CodeFence) {
		meta.HasCode = true
	}
	if block.Type == schema.BlockCode && block.Language != "" && !slices.Contains(meta.CodeLanguages, block.Language) {
		meta.CodeLanguages = append(meta.CodeLanguages, block.Language)
	}
}

func addExample(meta *schema.ChunkMetadata, unit *schema.SubExample) {
	if unit == nil || unit.Label == "" || unit.Label == schema.ExampleNeutral {
		return
	}
	if !slices.Contains(meta.ExampleTypes, unit.Label) {
		meta.ExampleTypes = append(meta.ExampleTypes, unit.Label)
	}
	for _, ev := range unit.Evidence {
		if !slices.Contains(meta.PatternEvidence, ev) {
			meta.PatternEvidence = append(meta.PatternEvidence, ev)
		}
	}
}
