package schema

import (
	"strings"
)

const overlapPreviewRunes = 50

// EmbeddingText is the chunk content prefixed with a short context header.
func (c Chunk) EmbeddingText() string {
	var parts []string
	if c.Metadata.Section != "" {
		parts = append(parts, "Section: "+strings.Join(c.Metadata.SectionPath, " > "))
	}
	if c.Metadata.HasCode && len(c.Metadata.CodeLanguages) > 0 {
		parts = append(parts, "Language: "+strings.Join(c.Metadata.CodeLanguages, ", "))
	}
	if len(c.Metadata.ExampleTypes) > 0 {
		labels := make([]string, len(c.Metadata.ExampleTypes))
		for i, t := range c.Metadata.ExampleTypes {
			labels[i] = string(t)
		}
		parts = append(parts, "Example type: "+strings.Join(labels, ", "))
	}
	parts = append(parts, c.Content)
	return strings.Join(parts, "\n\n")
}

// RetrievalText formats the chunk for display next to search results.
func (c Chunk) RetrievalText() string {
	var parts []string
	if len(c.Metadata.SectionPath) > 0 {
		parts = append(parts, "## "+strings.Join(c.Metadata.SectionPath, " > "))
	}
	for _, t := range c.Metadata.ExampleTypes {
		if t != ExampleNeutral {
			parts = append(parts, "Example: "+t.Title())
			break
		}
	}
	if c.OverlapPrev != "" {
		parts = append(parts, "[..."+lastRunes(c.OverlapPrev, overlapPreviewRunes)+"]")
	}
	content := c.Content
	if c.Type == ChunkTypeCode && !strings.HasPrefix(content, CodeFence) {
		content = RenderCode(c.Language(), content)
	}
	parts = append(parts, content)
	if c.OverlapNext != "" {
		parts = append(parts, "["+firstRunes(c.OverlapNext, overlapPreviewRunes)+"...]")
	}
	return strings.Join(parts, "\n\n")
}

func firstRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func lastRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[len(r)-n:])
}
