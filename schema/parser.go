package schema

import (
	"io/fs"
)

// ParserPlugin knows the structure of one language or document format.
type ParserPlugin interface {
	Name() string
	// Aliases are alternative names, usually fence info strings such as "golang" or "tf".
	Aliases() []string
	Extensions() []string
	CanHandle(path string, info fs.FileInfo) bool
	// DeclarationStarts returns the 0-based line numbers at which top-level
	// declarations begin, in ascending order.
	DeclarationStarts(code string) ([]int, error)
}

// BlockParser is implemented by plugins that turn a whole document into blocks.
type BlockParser interface {
	ParseBlocks(content string) ([]Block, error)
}

// ParseResult is what a BlockParser-capable plugin knows about a document.
type ParseResult struct {
	Title      string            `json:"title,omitempty"`
	Blocks     []Block           `json:"blocks"`
	Properties map[string]string `json:"properties,omitempty"`
}
