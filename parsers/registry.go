package parsers

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/sevigo/docchunk/schema"
)

// ErrPluginNotFound is returned when a plugin is not found
var ErrPluginNotFound = errors.New("language plugin not found")

// registry implements the ParserRegistry interface
type registry struct {
	plugins    map[string]schema.ParserPlugin // language name to plugin
	aliases    map[string]schema.ParserPlugin // lower-cased name or alias to plugin
	extensions map[string]schema.ParserPlugin // file extension to plugin
	logger     *slog.Logger
	mu         sync.RWMutex
}

// NewRegistry creates a new language plugin registry
func NewRegistry(logger *slog.Logger) ParserRegistry {
	if logger == nil {
		logger = slog.Default()
	}
	return &registry{
		plugins:    make(map[string]schema.ParserPlugin),
		aliases:    make(map[string]schema.ParserPlugin),
		extensions: make(map[string]schema.ParserPlugin),
		logger:     logger,
	}
}

// RegisterParser adds a language plugin to the registry
func (r *registry) RegisterParser(plugin schema.ParserPlugin) error {
	if plugin == nil {
		return errors.New("cannot register nil plugin")
	}

	name := plugin.Name()
	if name == "" {
		return errors.New("plugin must have a non-empty name")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.plugins[name]; exists {
		return fmt.Errorf("plugin with name %q already registered", name)
	}

	r.plugins[name] = plugin
	r.aliases[strings.ToLower(name)] = plugin
	for _, alias := range plugin.Aliases() {
		key := strings.ToLower(alias)
		if existing, taken := r.aliases[key]; taken {
			r.logger.Warn("Alias already taken, keeping first plugin",
				"alias", alias, "plugin", name, "owner", existing.Name())
			continue
		}
		r.aliases[key] = plugin
	}

	for _, ext := range plugin.Extensions() {
		if ext == "" {
			continue
		}
		if ext[0] != '.' {
			ext = "." + ext
		}
		r.extensions[strings.ToLower(ext)] = plugin
	}

	r.logger.Debug("Registered language plugin", "language", name, "extensions", plugin.Extensions())
	return nil
}

// GetParser retrieves a plugin by language name or alias
func (r *registry) GetParser(language string) (schema.ParserPlugin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	plugin, ok := r.aliases[strings.ToLower(strings.TrimSpace(language))]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPluginNotFound, language)
	}
	return plugin, nil
}

// GetParserForFile returns the appropriate plugin for a file
func (r *registry) GetParserForFile(path string, info fs.FileInfo) (schema.ParserPlugin, error) {
	if ext := filepath.Ext(path); ext != "" {
		if plugin, err := r.GetParserForExtension(ext); err == nil {
			return plugin, nil
		}
	}

	for _, plugin := range r.GetAllParsers() {
		if plugin.CanHandle(path, info) {
			return plugin, nil
		}
	}

	return nil, fmt.Errorf("%w for file %s", ErrPluginNotFound, path)
}

// GetParserForExtension returns a plugin for a file extension
func (r *registry) GetParserForExtension(ext string) (schema.ParserPlugin, error) {
	if ext == "" {
		return nil, fmt.Errorf("%w: empty extension", ErrPluginNotFound)
	}

	if ext[0] != '.' {
		ext = "." + ext
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	plugin, ok := r.extensions[strings.ToLower(ext)]
	if !ok {
		return nil, fmt.Errorf("%w for extension %s", ErrPluginNotFound, ext)
	}

	return plugin, nil
}

// GetAllParsers returns all registered plugins sorted by name
func (r *registry) GetAllParsers() []schema.ParserPlugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	plugins := make([]schema.ParserPlugin, 0, len(r.plugins))
	for _, plugin := range r.plugins {
		plugins = append(plugins, plugin)
	}
	sort.Slice(plugins, func(i, j int) bool {
		return plugins[i].Name() < plugins[j].Name()
	})

	return plugins
}
