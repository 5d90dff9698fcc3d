// core.go - Main plugin file with goldmark integration
package markdown

import (
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	model "github.com/sevigo/docchunk/schema"
)

const frontMatterSeparator = "---"

// MarkdownPlugin turns Markdown documents into blocks using goldmark
type MarkdownPlugin struct {
	logger   *slog.Logger
	markdown goldmark.Markdown
}

var (
	_ model.ParserPlugin = (*MarkdownPlugin)(nil)
	_ model.BlockParser  = (*MarkdownPlugin)(nil)
)

// NewMarkdownPlugin creates a new Markdown language plugin with goldmark
func NewMarkdownPlugin(logger *slog.Logger) model.ParserPlugin {
	return &MarkdownPlugin{
		logger:   logger,
		markdown: initializeGoldmark(),
	}
}

// initializeGoldmark creates and configures the goldmark parser
func initializeGoldmark() goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(
			extension.GFM, // tables, strikethrough, linkify, task lists
		),
	)
}

// Name returns "markdown" as the language name
func (p *MarkdownPlugin) Name() string {
	return "markdown"
}

func (p *MarkdownPlugin) Aliases() []string {
	return []string{"md", "gfm"}
}

// Extensions returns file extensions for Markdown
func (p *MarkdownPlugin) Extensions() []string {
	return []string{".md", ".markdown"}
}

// CanHandle determines if this plugin can process the given file
func (p *MarkdownPlugin) CanHandle(path string, info fs.FileInfo) bool {
	if info != nil && info.IsDir() {
		return false
	}

	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".md" || ext == ".markdown"
}

// ParseBlocks returns the document's top-level blocks in order.
func (p *MarkdownPlugin) ParseBlocks(content string) ([]model.Block, error) {
	return p.Parse(content).Blocks, nil
}

// Parse returns the blocks together with the title and front matter properties.
func (p *MarkdownPlugin) Parse(content string) model.ParseResult {
	doc := p.parseMarkdown(content)
	result := model.ParseResult{
		Title:  doc.Title,
		Blocks: doc.Blocks,
	}
	if doc.FrontMatter != nil {
		result.Properties = doc.FrontMatter.Properties
	}
	return result
}

// DeclarationStarts returns the 0-based lines of headings, the natural split
// points of a Markdown snippet.
func (p *MarkdownPlugin) DeclarationStarts(code string) ([]int, error) {
	var starts []int
	for _, b := range p.parseMarkdown(code).Blocks {
		if b.Type == model.BlockHeading {
			starts = append(starts, b.LineStart-1)
		}
	}
	return starts, nil
}
