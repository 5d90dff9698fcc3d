package documentloaders

import (
	"context"
	"fmt"
	"io"

	"github.com/sevigo/docchunk/schema"
)

// ReaderLoader loads a single document from a stream such as stdin.
type ReaderLoader struct {
	r      io.Reader
	source string
}

var _ schema.Loader = (*ReaderLoader)(nil)

// NewReader names the document source. The extension of source decides the parser.
func NewReader(r io.Reader, source string) *ReaderLoader {
	return &ReaderLoader{r: r, source: source}
}

func (l *ReaderLoader) Load(ctx context.Context) ([]schema.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := io.ReadAll(l.r)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", l.source, err)
	}
	doc := schema.NewDocument(string(data), map[string]any{
		"source":      l.source,
		"document_id": DocumentID(l.source),
		"size":        int64(len(data)),
	})
	return []schema.Document{doc}, nil
}
