package textsplitter

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/gosimple/slug"

	"github.com/sevigo/docchunk/schema"
)

// link finalizes chunks in order: index, total, deterministic id, neighbour
// ids and the overlap context taken from each neighbour.
func (c *Chunker) link(chunks []schema.Chunk) error {
	total := len(chunks)
	model := c.tokenizer.Model()
	for i := range chunks {
		ch := &chunks[i]
		ch.Index = i
		ch.TotalChunks = total
		ch.ID = chunkID(i, ch.Content)
		ch.Metadata.EncodingModel = model
		ch.Metadata.Section = sectionSlug(ch.Metadata.SectionPath)
	}
	for i := range chunks {
		if i > 0 {
			chunks[i].PrevID = chunks[i-1].ID
		}
		if i+1 < total {
			chunks[i].NextID = chunks[i+1].ID
		}
	}

	k := c.cfg.OverlapTokens
	if k <= 0 || total < 2 {
		return nil
	}

	encoded := make([][]int, total)
	for i := range chunks {
		tokens, err := c.tokenizer.Encode(chunks[i].Content)
		if err != nil {
			return fmt.Errorf("failed to encode chunk %d: %w", i, err)
		}
		encoded[i] = tokens
	}

	for i := range chunks {
		ch := &chunks[i]
		if i > 0 && len(encoded[i-1]) > k {
			prev := encoded[i-1]
			text, err := c.tokenizer.Decode(prev[len(prev)-k:])
			if err != nil {
				return fmt.Errorf("failed to decode overlap of chunk %d: %w", i-1, err)
			}
			ch.OverlapPrev = trimPartialRunes(text)
			ch.OverlapTokenCount += k
		}
		if i+1 < total && len(encoded[i+1]) > k {
			text, err := c.tokenizer.Decode(encoded[i+1][:k])
			if err != nil {
				return fmt.Errorf("failed to decode overlap of chunk %d: %w", i+1, err)
			}
			ch.OverlapNext = trimPartialRunes(text)
			ch.OverlapTokenCount += k
		}
	}
	return nil
}

// trimPartialRunes drops the bytes of characters cut by a token window edge.
// Byte-level encodings can split a multi-byte rune across two tokens.
func trimPartialRunes(s string) string {
	for len(s) > 0 {
		r, size := utf8.DecodeRuneInString(s)
		if r != utf8.RuneError || size != 1 {
			break
		}
		s = s[1:]
	}
	for len(s) > 0 {
		r, size := utf8.DecodeLastRuneInString(s)
		if r != utf8.RuneError || size != 1 {
			break
		}
		s = s[:len(s)-1]
	}
	return s
}

// chunkID is stable across runs: the ordinal plus a prefix of the content hash.
func chunkID(index int, content string) string {
	sum := sha256.Sum256([]byte(content))
	return fmt.Sprintf("chunk_%04d_%s", index, hex.EncodeToString(sum[:])[:8])
}

func sectionSlug(path []string) string {
	parts := make([]string, 0, len(path))
	for _, p := range path {
		if s := slug.Make(p); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "/")
}
