package terraform

import (
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"

	"github.com/sevigo/docchunk/parsers/boundary"
)

var commentPrefixes = []string{"#", "//", "/*", "*"}

// DeclarationStarts returns the lines of top-level blocks and attributes.
func (p *TerraformPlugin) DeclarationStarts(code string) ([]int, error) {
	if strings.TrimSpace(code) == "" {
		return nil, nil
	}

	file, diags := hclsyntax.ParseConfig([]byte(code), "snippet.tf", hcl.Pos{Line: 1, Column: 1})
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL: %s", diags.Error())
	}

	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		return nil, fmt.Errorf("HCL snippet has an invalid body type %T", file.Body)
	}

	starts := make([]int, 0, len(body.Blocks)+len(body.Attributes))
	for _, block := range body.Blocks {
		starts = append(starts, block.Range().Start.Line-1)
	}
	for _, attr := range body.Attributes {
		starts = append(starts, attr.SrcRange.Start.Line-1)
	}

	lines := strings.Split(code, "\n")
	starts = boundary.AttachComments(lines, boundary.Normalize(starts, len(lines)), commentPrefixes...)
	p.logger.Debug("Found HCL declarations", "blocks", len(body.Blocks), "attributes", len(body.Attributes))
	return starts, nil
}
