package protobuf

import (
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/yoheimuta/go-protoparser/v4"
	"github.com/yoheimuta/go-protoparser/v4/parser"

	"github.com/sevigo/docchunk/parsers/boundary"
	"github.com/sevigo/docchunk/schema"
)

// NewProtobufParser is the factory function that creates a new Protobuf parser plugin.
func NewProtobufParser(logger *slog.Logger) schema.ParserPlugin {
	return &ProtobufParser{
		logger: logger,
	}
}

// ProtobufParser finds message, service and enum definitions in Protocol Buffer sources.
type ProtobufParser struct {
	logger *slog.Logger
}

// Name returns the language name.
func (p *ProtobufParser) Name() string {
	return "protobuf"
}

func (p *ProtobufParser) Aliases() []string {
	return []string{"proto", "proto3", "proto2"}
}

// Extensions returns the file extensions this parser handles.
func (p *ProtobufParser) Extensions() []string {
	return []string{".proto"}
}

// CanHandle determines if the parser should process a given file.
func (p *ProtobufParser) CanHandle(path string, info fs.FileInfo) bool {
	if info != nil && info.IsDir() {
		return false
	}
	return filepath.Ext(path) == ".proto"
}

// DeclarationStarts returns the lines of top-level messages, services and enums.
func (p *ProtobufParser) DeclarationStarts(code string) ([]int, error) {
	parsed, err := protoparser.Parse(strings.NewReader(code),
		protoparser.WithDebug(false),
		protoparser.WithPermissive(true),
		protoparser.WithFilename("snippet.proto"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to parse protobuf: %w", err)
	}

	var starts []int
	for _, element := range parsed.ProtoBody {
		switch v := element.(type) {
		case *parser.Message:
			starts = append(starts, v.Meta.Pos.Line-1)
		case *parser.Service:
			starts = append(starts, v.Meta.Pos.Line-1)
		case *parser.Enum:
			starts = append(starts, v.Meta.Pos.Line-1)
		}
	}

	lines := strings.Split(code, "\n")
	return boundary.AttachComments(lines, boundary.Normalize(starts, len(lines)), "//", "/*", "*"), nil
}
