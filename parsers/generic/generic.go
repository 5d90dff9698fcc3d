// Package generic finds declaration boundaries with per-language line patterns,
// for languages without a dedicated parser.
package generic

import (
	"io/fs"
	"log/slog"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/sevigo/docchunk/parsers/boundary"
	"github.com/sevigo/docchunk/schema"
)

// Language describes how to spot top-level declarations in one language.
type Language struct {
	Name       string
	Aliases    []string
	Extensions []string
	// Declarations match a line that opens a top-level declaration.
	Declarations []*regexp.Regexp
	// Decorators match lines that belong to the declaration below them.
	Decorators []*regexp.Regexp
	// CommentPrefixes mark doc comment lines kept with the declaration below.
	CommentPrefixes []string
}

// Plugin implements schema.ParserPlugin for a Language.
type Plugin struct {
	lang   Language
	logger *slog.Logger
}

func NewPlugin(lang Language, logger *slog.Logger) schema.ParserPlugin {
	if logger == nil {
		logger = slog.Default()
	}
	return &Plugin{lang: lang, logger: logger}
}

func (p *Plugin) Name() string {
	return p.lang.Name
}

func (p *Plugin) Aliases() []string {
	return p.lang.Aliases
}

func (p *Plugin) Extensions() []string {
	return p.lang.Extensions
}

func (p *Plugin) CanHandle(path string, info fs.FileInfo) bool {
	if info != nil && info.IsDir() {
		return false
	}
	return slices.Contains(p.lang.Extensions, strings.ToLower(filepath.Ext(path)))
}

// DeclarationStarts returns lines matching a declaration pattern. A run of
// decorator lines directly above a declaration starts the declaration instead.
func (p *Plugin) DeclarationStarts(code string) ([]int, error) {
	lines := strings.Split(code, "\n")

	var starts []int
	for i, line := range lines {
		if !matchesAny(p.lang.Declarations, line) {
			continue
		}
		start := i
		for start > 0 && matchesAny(p.lang.Decorators, lines[start-1]) {
			start--
		}
		starts = append(starts, start)
	}

	if len(p.lang.CommentPrefixes) > 0 {
		starts = boundary.AttachComments(lines, boundary.Normalize(starts, len(lines)), p.lang.CommentPrefixes...)
	}
	return boundary.Normalize(starts, len(lines)), nil
}

func matchesAny(patterns []*regexp.Regexp, line string) bool {
	for _, re := range patterns {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}
