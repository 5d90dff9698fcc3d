package markdown

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// FrontMatter represents the parsed frontmatter
type FrontMatter struct {
	Content    string
	Properties map[string]string
	LineStart  int
	LineEnd    int
}

// parseFrontMatter extracts YAML frontmatter; endIdx is the 0-based line of the closing separator
func (p *MarkdownPlugin) parseFrontMatter(lines []string) (*FrontMatter, int) {
	if len(lines) < 3 || lines[0] != frontMatterSeparator {
		return nil, -1
	}

	endIdx := -1
	for i := 1; i < len(lines); i++ {
		if lines[i] == frontMatterSeparator {
			endIdx = i
			break
		}
	}

	if endIdx <= 1 {
		p.logger.Debug("Invalid frontmatter structure - no closing separator found")
		return nil, -1
	}

	frontMatter := &FrontMatter{
		Content:    strings.Join(lines[0:endIdx+1], "\n"),
		Properties: make(map[string]string),
		LineStart:  1,
		LineEnd:    endIdx + 1,
	}

	var yamlData map[string]any
	if err := yaml.Unmarshal([]byte(strings.Join(lines[1:endIdx], "\n")), &yamlData); err != nil {
		p.logger.Debug("Failed to parse YAML frontmatter", "error", err)
		p.parseSimpleFrontMatter(lines[1:endIdx], frontMatter)
		return frontMatter, endIdx
	}

	for key, value := range yamlData {
		switch v := value.(type) {
		case []any:
			items := make([]string, len(v))
			for i, item := range v {
				items[i] = fmt.Sprintf("%v", item)
			}
			frontMatter.Properties[key] = strings.Join(items, ",")
		default:
			frontMatter.Properties[key] = fmt.Sprintf("%v", v)
		}
	}
	return frontMatter, endIdx
}

// parseSimpleFrontMatter provides fallback parsing for malformed YAML
func (p *MarkdownPlugin) parseSimpleFrontMatter(lines []string, frontMatter *FrontMatter) {
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		value = strings.Trim(strings.TrimSpace(value), `"'`)
		frontMatter.Properties[key] = value
	}
}
