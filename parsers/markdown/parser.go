// parser.go - Goldmark-based Markdown parser
package markdown

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark/ast"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	model "github.com/sevigo/docchunk/schema"
)

// DocumentStructure represents the parsed markdown document
type DocumentStructure struct {
	FrontMatter *FrontMatter
	Blocks      []model.Block
	Title       string
}

// nodeSpan is the line range of a top-level node, 0-based within the parsed source.
type nodeSpan struct {
	node  ast.Node
	first int
	last  int
	known bool
}

type headingEntry struct {
	level int
	title string
}

// parseMarkdown parses markdown content using goldmark into an ordered block list
func (p *MarkdownPlugin) parseMarkdown(content string) *DocumentStructure {
	lines := strings.Split(content, "\n")
	doc := &DocumentStructure{}

	contentToParse := content
	lineOffset := 0
	if len(lines) > 2 && lines[0] == frontMatterSeparator {
		if frontMatter, endIdx := p.parseFrontMatter(lines); frontMatter != nil {
			doc.FrontMatter = frontMatter
			lineOffset = endIdx + 1
			contentToParse = strings.Join(lines[lineOffset:], "\n")
		}
	}

	source := []byte(contentToParse)
	docNode := p.markdown.Parser().Parse(text.NewReader(source))
	doc.Blocks = p.convertASTToBlocks(docNode, source, lines[lineOffset:], lineOffset)
	doc.Title = p.deriveTitle(doc)

	return doc
}

// convertASTToBlocks converts the document's direct children into blocks. A
// block runs from its first line up to the line before the next block, minus
// trailing blank lines, so nothing between blocks except blank lines is lost.
func (p *MarkdownPlugin) convertASTToBlocks(root ast.Node, source []byte, srcLines []string, lineOffset int) []model.Block {
	var spans []nodeSpan
	prevLast := -1
	for child := root.FirstChild(); child != nil; child = child.NextSibling() {
		span := p.spanOf(child, source, srcLines)
		if !span.known {
			span.first = nextNonBlank(srcLines, prevLast+1)
			if span.first < 0 {
				continue
			}
			span.last = span.first
			if _, ok := child.(*ast.FencedCodeBlock); ok && isFenceLine(lineAt(srcLines, span.first+1)) {
				span.last = span.first + 1
			}
		}
		if span.first <= prevLast {
			span.first = prevLast + 1
		}
		if span.last < span.first {
			span.last = span.first
		}
		spans = append(spans, span)
		prevLast = span.last
	}

	var (
		blocks   []model.Block
		headings []headingEntry
	)
	for i, span := range spans {
		end := len(srcLines) - 1
		if i+1 < len(spans) {
			end = spans[i+1].first - 1
		}
		for end > span.last && strings.TrimSpace(srcLines[end]) == "" {
			end--
		}

		block := p.createBlockForNode(span.node, source, srcLines[span.first:end+1])
		block.LineStart = span.first + lineOffset + 1
		block.LineEnd = end + lineOffset + 1

		if block.Type == model.BlockHeading {
			for len(headings) > 0 && headings[len(headings)-1].level >= block.Level {
				headings = headings[:len(headings)-1]
			}
			headings = append(headings, headingEntry{level: block.Level, title: extractTextFromNode(span.node, source)})
		}
		block.SectionPath = sectionPath(headings)
		blocks = append(blocks, block)
	}
	return blocks
}

// spanOf finds the lines covered by a node from its own line segments or,
// for container nodes, from those of its descendants.
func (p *MarkdownPlugin) spanOf(node ast.Node, source []byte, srcLines []string) nodeSpan {
	span := nodeSpan{node: node, first: -1, last: -1}

	if fenced, ok := node.(*ast.FencedCodeBlock); ok {
		if fenced.Lines().Len() == 0 {
			return span
		}
		bodyFirst := segmentToLineNumber(fenced.Lines().At(0), source)
		bodyLast := segmentToLineNumber(fenced.Lines().At(fenced.Lines().Len()-1), source)
		span.first, span.last, span.known = bodyFirst-1, bodyLast, true
		if isFenceLine(lineAt(srcLines, bodyLast+1)) {
			span.last = bodyLast + 1
		}
		return span
	}

	minOffset, maxOffset := len(source), -1
	_ = ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if n.Type() == ast.TypeBlock && n.Lines().Len() > 0 {
			minOffset = min(minOffset, n.Lines().At(0).Start)
			maxOffset = max(maxOffset, n.Lines().At(n.Lines().Len()-1).Stop)
			return ast.WalkSkipChildren, nil
		}
		if t, ok := n.(*ast.Text); ok && t.Segment.Len() > 0 {
			minOffset = min(minOffset, t.Segment.Start)
			maxOffset = max(maxOffset, t.Segment.Stop)
		}
		return ast.WalkContinue, nil
	})
	if maxOffset < 0 {
		p.logger.Debug("No line segments for node", "kind", node.Kind().String())
		return span
	}

	span.first = bytes.Count(source[:minOffset], []byte("\n"))
	span.last = bytes.Count(source[:max(maxOffset-1, minOffset)], []byte("\n"))
	span.known = true
	return span
}

// createBlockForNode creates a block for a given node type
func (p *MarkdownPlugin) createBlockForNode(node ast.Node, source []byte, raw []string) model.Block {
	content := strings.Join(raw, "\n")

	switch n := node.(type) {
	case *ast.Heading:
		return model.Block{Type: model.BlockHeading, Level: n.Level, Content: content}

	case *ast.FencedCodeBlock:
		language := strings.TrimSpace(string(n.Language(source)))
		return model.Block{Type: model.BlockCode, Language: language, Content: codeBody(n, source)}

	case *ast.CodeBlock:
		return model.Block{Type: model.BlockCode, Content: codeBody(n, source)}

	case *extast.Table:
		return model.Block{Type: model.BlockTable, Content: content}

	case *ast.List:
		if hasTaskCheckBox(n) {
			return model.Block{Type: model.BlockChecklist, Content: content}
		}
		return model.Block{Type: model.BlockList, Content: content}

	case *ast.Blockquote:
		return model.Block{Type: model.BlockQuote, Content: content}

	case *ast.HTMLBlock:
		return model.Block{Type: model.BlockHTML, Content: content}

	case *ast.ThematicBreak:
		return model.Block{Type: model.BlockThematicBreak, Content: content}

	case *ast.Paragraph, *ast.TextBlock:
		return model.Block{Type: model.BlockParagraph, Content: content}

	default:
		p.logger.Debug("Treating unknown node as paragraph", "node_type", fmt.Sprintf("%T", node))
		return model.Block{Type: model.BlockParagraph, Content: content}
	}
}

func codeBody(n ast.Node, source []byte) string {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(source))
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

func hasTaskCheckBox(list *ast.List) bool {
	found := false
	_ = ast.Walk(list, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering && n.Kind() == extast.KindTaskCheckBox {
			found = true
			return ast.WalkStop, nil
		}
		return ast.WalkContinue, nil
	})
	return found
}

// extractTextFromNode returns the plain text of a node's inline children.
func extractTextFromNode(node ast.Node, source []byte) string {
	var sb strings.Builder
	_ = ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := n.(type) {
		case *ast.Text:
			sb.Write(t.Segment.Value(source))
			if t.SoftLineBreak() {
				sb.WriteByte(' ')
			}
		case *ast.String:
			sb.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(sb.String())
}

func sectionPath(headings []headingEntry) []string {
	if len(headings) == 0 {
		return nil
	}
	path := make([]string, len(headings))
	for i, h := range headings {
		path[i] = h.title
	}
	return path
}

// segmentToLineNumber returns the 0-based line of a segment's start
func segmentToLineNumber(seg text.Segment, source []byte) int {
	return bytes.Count(source[:seg.Start], []byte("\n"))
}

func nextNonBlank(lines []string, from int) int {
	for i := max(from, 0); i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) != "" {
			return i
		}
	}
	return -1
}

func lineAt(lines []string, i int) string {
	if i < 0 || i >= len(lines) {
		return ""
	}
	return lines[i]
}

func isFenceLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	return strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~")
}

// deriveTitle determines the document title from front matter or the first H1
func (p *MarkdownPlugin) deriveTitle(doc *DocumentStructure) string {
	if doc.FrontMatter != nil {
		if title, exists := doc.FrontMatter.Properties["title"]; exists && title != "" {
			return title
		}
	}

	for _, block := range doc.Blocks {
		if block.Type == model.BlockHeading && block.Level == 1 && len(block.SectionPath) > 0 {
			return block.SectionPath[len(block.SectionPath)-1]
		}
	}
	return ""
}
