package golang

import (
	"io/fs"
	"log/slog"
	"path/filepath"

	"github.com/sevigo/docchunk/schema"
)

type GoPlugin struct {
	logger *slog.Logger
}

func NewGoPlugin(logger *slog.Logger) schema.ParserPlugin {
	return &GoPlugin{
		logger: logger,
	}
}

func (p *GoPlugin) Name() string {
	return "go"
}

func (p *GoPlugin) Aliases() []string {
	return []string{"golang"}
}

func (p *GoPlugin) Extensions() []string {
	return []string{".go"}
}

func (p *GoPlugin) CanHandle(path string, info fs.FileInfo) bool {
	if info != nil && info.IsDir() {
		return false
	}
	return filepath.Ext(path) == ".go"
}
