package schema

import "strings"

type BlockType string

const (
	BlockHeading       BlockType = "heading"
	BlockParagraph     BlockType = "paragraph"
	BlockCode          BlockType = "code"
	BlockTable         BlockType = "table"
	BlockChecklist     BlockType = "checklist"
	BlockList          BlockType = "list"
	BlockQuote         BlockType = "quote"
	BlockHTML          BlockType = "html"
	BlockThematicBreak BlockType = "thematic_break"
)

// CodeFence is the marker that opens and closes a rendered code block.
const CodeFence = "```"

// Block is one structural unit of a parsed document.
type Block struct {
	Type        BlockType `json:"type"`
	Content     string    `json:"content"`
	Language    string    `json:"language,omitempty"`
	SectionPath []string  `json:"section_path,omitempty"`
	Level       int       `json:"level,omitempty"`
	LineStart   int       `json:"line_start,omitempty"`
	LineEnd     int       `json:"line_end,omitempty"`
}

// Render returns the text a chunk carries for the block.
func (b Block) Render() string {
	if b.Type == BlockCode {
		return RenderCode(b.Language, b.Content)
	}
	return b.Content
}

func RenderCode(language, code string) string {
	var sb strings.Builder
	sb.Grow(len(code) + len(language) + 2*len(CodeFence) + 2)
	sb.WriteString(CodeFence)
	sb.WriteString(language)
	sb.WriteByte('\n')
	sb.WriteString(code)
	sb.WriteByte('\n')
	sb.WriteString(CodeFence)
	return sb.String()
}

// UnfenceCode reverses RenderCode. ok is false when s is not a rendered block of that language.
func UnfenceCode(language, s string) (string, bool) {
	open := CodeFence + language + "\n"
	closing := "\n" + CodeFence
	if !strings.HasPrefix(s, open) || !strings.HasSuffix(s, closing) || len(s) < len(open)+len(closing) {
		return "", false
	}
	return s[len(open) : len(s)-len(closing)], true
}
