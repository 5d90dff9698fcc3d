package textsplitter

import (
	"strings"

	"github.com/sevigo/docchunk/schema"
)

// Reconstruct joins chunks back into the document text they were built from.
// Chunks start new blocks unless marked as continuations: text continuations
// are appended directly and the parts of a split code block are unfenced and
// rejoined line by line. Force-split parts are not guaranteed to round trip.
func Reconstruct(chunks []schema.Chunk) string {
	var sb strings.Builder
	var code []string
	lang := ""

	flushCode := func() {
		if code != nil {
			sb.WriteString(schema.RenderCode(lang, strings.Join(code, "\n")))
			code = nil
		}
	}

	for i, ch := range chunks {
		if ch.IsCodePart() {
			body, ok := schema.UnfenceCode(ch.Language(), ch.Content)
			if ok {
				if ch.Metadata.Continues && code != nil {
					code = append(code, body)
					continue
				}
				flushCode()
				if i > 0 {
					sb.WriteString(BlockSeparator)
				}
				code, lang = []string{body}, ch.Language()
				continue
			}
		}
		flushCode()

		if i > 0 && !ch.Metadata.Continues {
			sb.WriteString(BlockSeparator)
		}
		sb.WriteString(ch.Content)
	}
	flushCode()
	return sb.String()
}
