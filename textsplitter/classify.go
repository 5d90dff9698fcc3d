package textsplitter

import (
	"regexp"
	"strings"

	"github.com/sevigo/docchunk/schema"
)

var (
	requirementPattern    = regexp.MustCompile(`(?i)\b(?:must|shall|should|required)\b`)
	checklistPattern      = regexp.MustCompile(`(?m)^\s*[-*+]\s+\[[ xX]\]`)
	tableSeparatorPattern = regexp.MustCompile(`(?m)^\s*\|?\s*:?-{3,}:?\s*(?:\|\s*:?-{3,}:?\s*)*\|?\s*$`)
)

// DetectChunkType classifies chunk content. The first matching rule wins:
// a code fence (mixed when more than a short lead-in precedes it), a leading
// heading, requirement keywords, checklist items, then a pipe table.
func DetectChunkType(content string) schema.ChunkType {
	if idx := strings.Index(content, schema.CodeFence); idx >= 0 {
		if len(strings.TrimSpace(content[:idx])) > mixedPrefixChars {
			return schema.ChunkTypeMixed
		}
		return schema.ChunkTypeCode
	}

	if strings.HasPrefix(strings.TrimSpace(content), "#") {
		return schema.ChunkTypeSectionHeader
	}
	if requirementPattern.MatchString(content) {
		return schema.ChunkTypeRequirement
	}
	if checklistPattern.MatchString(content) {
		return schema.ChunkTypeChecklist
	}
	if strings.Contains(content, "|") && tableSeparatorPattern.MatchString(content) {
		return schema.ChunkTypeTable
	}
	return schema.ChunkTypeText
}
