package golang

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"

	"github.com/sevigo/docchunk/parsers/boundary"
)

// snippetHeader lets go/parser accept code blocks that omit the package clause.
const snippetHeader = "package snippet\n"

// DeclarationStarts returns the lines where top-level declarations begin,
// including their doc comments. Snippets without a package clause are parsed
// as if they had one.
func (p *GoPlugin) DeclarationStarts(code string) ([]int, error) {
	fset := token.NewFileSet()
	lineOffset := 0

	file, err := parser.ParseFile(fset, "", code, parser.ParseComments)
	if err != nil {
		var retryErr error
		file, retryErr = parser.ParseFile(fset, "", snippetHeader+code, parser.ParseComments)
		if retryErr != nil {
			return nil, fmt.Errorf("failed to parse Go code: %w", err)
		}
		lineOffset = 1
	}

	var starts []int
	if lineOffset == 0 && file.Package.IsValid() {
		pos := file.Package
		if file.Doc != nil {
			pos = file.Doc.Pos()
		}
		starts = append(starts, fset.Position(pos).Line-1)
	}
	for _, decl := range file.Decls {
		pos := decl.Pos()
		switch d := decl.(type) {
		case *ast.FuncDecl:
			if d.Doc != nil {
				pos = d.Doc.Pos()
			}
		case *ast.GenDecl:
			if d.Doc != nil {
				pos = d.Doc.Pos()
			}
		}
		starts = append(starts, fset.Position(pos).Line-1-lineOffset)
	}

	p.logger.Debug("Found Go declarations", "count", len(starts), "snippet", lineOffset > 0)
	return boundary.Normalize(starts, boundary.CountLines(code)), nil
}
