package yaml

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sevigo/docchunk/parsers/boundary"
	"github.com/sevigo/docchunk/schema"
)

// YamlPlugin finds top-level keys and documents in YAML
type YamlPlugin struct {
	logger *slog.Logger
}

// NewYamlPlugin creates a new YAML language plugin
func NewYamlPlugin(logger *slog.Logger) schema.ParserPlugin {
	return &YamlPlugin{
		logger: logger,
	}
}

// Name returns "yaml" as the language name
func (p *YamlPlugin) Name() string {
	return "yaml"
}

func (p *YamlPlugin) Aliases() []string {
	return []string{"yml"}
}

// Extensions returns file extensions for YAML
func (p *YamlPlugin) Extensions() []string {
	return []string{".yaml", ".yml"}
}

// CanHandle determines if this plugin can process the given file
func (p *YamlPlugin) CanHandle(path string, info fs.FileInfo) bool {
	if info != nil && info.IsDir() {
		return false
	}

	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// DeclarationStarts returns the line of every top-level mapping key, or of
// the document itself when its root is not a mapping. Multi-document streams
// are supported.
func (p *YamlPlugin) DeclarationStarts(code string) ([]int, error) {
	decoder := yaml.NewDecoder(strings.NewReader(code))

	var starts []int
	for {
		var node yaml.Node
		err := decoder.Decode(&node)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
		if node.Kind != yaml.DocumentNode || len(node.Content) == 0 {
			continue
		}

		root := node.Content[0]
		if root.Kind != yaml.MappingNode {
			starts = append(starts, root.Line-1)
			continue
		}
		for i := 0; i < len(root.Content); i += 2 {
			starts = append(starts, root.Content[i].Line-1)
		}
	}

	lines := strings.Split(code, "\n")
	return boundary.AttachComments(lines, boundary.Normalize(starts, len(lines)), "#"), nil
}
