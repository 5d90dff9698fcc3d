// Package documentloaders reads raw documents from local trees and remote
// repositories so they can be chunked.
package documentloaders

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/sevigo/docchunk/parsers"
	"github.com/sevigo/docchunk/schema"
)

const defaultMaxFileSize = 10 * 1024 * 1024

// DirectoryLoader walks a directory tree and returns one document per file.
// Files are not chunked here; metadata carries what the chunker needs to pick
// a parser.
type DirectoryLoader struct {
	root        string
	registry    parsers.ParserRegistry
	logger      *slog.Logger
	maxFileSize int64
	extensions  []string
}

var _ schema.Loader = (*DirectoryLoader)(nil)

// DirectoryOption configures a DirectoryLoader.
type DirectoryOption func(*DirectoryLoader)

// WithMaxFileSize skips files larger than size bytes.
func WithMaxFileSize(size int64) DirectoryOption {
	return func(d *DirectoryLoader) {
		if size > 0 {
			d.maxFileSize = size
		}
	}
}

// WithExtensions restricts loading to the given extensions, e.g. ".md".
func WithExtensions(exts ...string) DirectoryOption {
	return func(d *DirectoryLoader) {
		for _, ext := range exts {
			ext = strings.ToLower(ext)
			if !strings.HasPrefix(ext, ".") {
				ext = "." + ext
			}
			d.extensions = append(d.extensions, ext)
		}
	}
}

// NewDirectory creates a loader rooted at root. root may also name a single file.
func NewDirectory(root string, registry parsers.ParserRegistry, logger *slog.Logger, opts ...DirectoryOption) *DirectoryLoader {
	if logger == nil {
		logger = slog.Default()
	}
	d := &DirectoryLoader{
		root:        root,
		registry:    registry,
		logger:      logger.With("component", "directory_loader"),
		maxFileSize: defaultMaxFileSize,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Load walks the tree in lexical order. Unreadable entries are skipped with a warning.
func (d *DirectoryLoader) Load(ctx context.Context) ([]schema.Document, error) {
	d.logger.Info("Loading documents", "path", d.root)

	info, err := os.Stat(d.root)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", d.root, err)
	}
	base := d.root
	if !info.IsDir() {
		base = filepath.Dir(d.root)
	}

	var documents []schema.Document
	err = filepath.WalkDir(d.root, func(path string, entry fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			d.logger.Warn("Skipping unreadable path", "path", path, "error", err)
			return nil
		}
		if entry.IsDir() {
			if path != d.root && shouldSkipDir(entry.Name()) {
				d.logger.Debug("Skipping excluded directory", "path", path)
				return filepath.SkipDir
			}
			return nil
		}

		fileInfo, err := entry.Info()
		if err != nil {
			d.logger.Warn("Could not get file info, skipping", "path", path, "error", err)
			return nil
		}
		if d.skipFile(path, fileInfo) {
			d.logger.Debug("Skipping excluded file", "path", path, "size", fileInfo.Size())
			return nil
		}

		doc, ok := d.loadFile(base, path, fileInfo)
		if ok {
			documents = append(documents, doc)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	d.logger.Info("Documents loaded", "path", d.root, "documents", len(documents))
	return documents, nil
}

func (d *DirectoryLoader) loadFile(base, path string, info fs.FileInfo) (schema.Document, bool) {
	var content string
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		text, err := extractPDFText(path)
		if err != nil {
			d.logger.Warn("Cannot extract PDF text, skipping", "path", path, "error", err)
			return schema.Document{}, false
		}
		content = text
	} else {
		data, err := os.ReadFile(path)
		if err != nil {
			d.logger.Warn("Cannot read file, skipping", "path", path, "error", err)
			return schema.Document{}, false
		}
		content = string(data)
	}

	relPath, err := filepath.Rel(base, path)
	if err != nil {
		relPath = path
	}
	relPath = filepath.ToSlash(relPath)

	metadata := map[string]any{
		"source":      relPath,
		"document_id": DocumentID(relPath),
		"size":        info.Size(),
		"mod_time":    info.ModTime(),
	}
	if d.registry != nil {
		if plugin, err := d.registry.GetParserForFile(path, info); err == nil {
			metadata["language"] = plugin.Name()
			if p, ok := plugin.(documentParser); ok {
				addDocumentProperties(metadata, p.Parse(content))
			}
		}
	}
	return schema.NewDocument(content, metadata), true
}

// documentParser is implemented by plugins that know a document's title and
// front matter.
type documentParser interface {
	Parse(content string) schema.ParseResult
}

func addDocumentProperties(metadata map[string]any, result schema.ParseResult) {
	if result.Title != "" {
		metadata["title"] = result.Title
	}
	for k, v := range result.Properties {
		if _, taken := metadata[k]; !taken {
			metadata[k] = v
		}
	}
}

// DocumentID is a stable name-based UUID for a source path.
func DocumentID(source string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(source)).String()
}

func (d *DirectoryLoader) skipFile(path string, info fs.FileInfo) bool {
	if info.Size() > d.maxFileSize {
		return true
	}
	ext := strings.ToLower(filepath.Ext(path))
	if len(d.extensions) > 0 {
		return !slices.Contains(d.extensions, ext)
	}
	return binaryExts[ext]
}

func shouldSkipDir(name string) bool {
	skipDirs := []string{
		".git", ".svn", ".hg",
		"vendor", "node_modules", "__pycache__",
		"build", "dist", "target", "out", "bin",
		".vscode", ".idea", ".vs",
	}
	return slices.Contains(skipDirs, name)
}

var binaryExts = map[string]bool{
	".exe": true, ".dll": true, ".so": true, ".dylib": true,
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	".bmp": true, ".tiff": true, ".svg": true, ".ico": true,
	".zip": true, ".tar": true, ".gz": true, ".rar": true,
	".7z": true, ".bz2": true, ".xz": true,
	".mp3": true, ".mp4": true, ".avi": true, ".mov": true,
	".wav": true, ".flac": true, ".ogg": true,
	".doc": true, ".docx": true, ".xls": true, ".xlsx": true,
	".ppt": true, ".pptx": true,
	".bin": true, ".dat": true, ".db": true, ".sqlite": true,
}
