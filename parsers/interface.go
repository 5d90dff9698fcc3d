package parsers

import (
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/sevigo/docchunk/parsers/generic"
	"github.com/sevigo/docchunk/parsers/golang"
	"github.com/sevigo/docchunk/parsers/markdown"
	"github.com/sevigo/docchunk/parsers/protobuf"
	"github.com/sevigo/docchunk/parsers/terraform"
	"github.com/sevigo/docchunk/parsers/yaml"
	"github.com/sevigo/docchunk/schema"
)

// ParserRegistry tracks registered language plugins
type ParserRegistry interface {
	RegisterParser(plugin schema.ParserPlugin) error
	// GetParser looks a plugin up by name or alias, case-insensitively.
	GetParser(language string) (schema.ParserPlugin, error)
	GetParserForFile(path string, info fs.FileInfo) (schema.ParserPlugin, error)
	GetParserForExtension(ext string) (schema.ParserPlugin, error)
	GetAllParsers() []schema.ParserPlugin
}

// RegisterLanguagePlugins initializes and populates a language registry
func RegisterLanguagePlugins(logger *slog.Logger) (ParserRegistry, error) {
	if logger == nil {
		logger = slog.Default()
	}
	registry := NewRegistry(logger)

	pluginFactories := []struct {
		name    string
		factory func(*slog.Logger) schema.ParserPlugin
	}{
		{"go", golang.NewGoPlugin},
		{"markdown", markdown.NewMarkdownPlugin},
		{"yaml", yaml.NewYamlPlugin},
		{"terraform", terraform.NewTerraformPlugin},
		{"protobuf", protobuf.NewProtobufParser},
	}

	for _, pf := range pluginFactories {
		plugin := pf.factory(logger.With("plugin", pf.name))
		if err := registry.RegisterParser(plugin); err != nil {
			return registry, fmt.Errorf("failed to register plugin %s: %w", pf.name, err)
		}
	}

	for _, plugin := range generic.Plugins(logger) {
		if err := registry.RegisterParser(plugin); err != nil {
			return registry, fmt.Errorf("failed to register plugin %s: %w", plugin.Name(), err)
		}
	}

	logger.Debug("Language plugins registered", "count", len(registry.GetAllParsers()))
	return registry, nil
}
