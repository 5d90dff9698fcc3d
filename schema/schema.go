package schema

import "context"

type Document struct {
	PageContent string
	Metadata    map[string]any
}

func (d Document) String() string {
	return d.PageContent
}

func NewDocument(content string, metadata map[string]any) Document {
	if metadata == nil {
		metadata = make(map[string]any)
	}
	return Document{
		PageContent: content,
		Metadata:    metadata,
	}
}

// Source returns the "source" metadata entry, or "" when it is missing.
func (d Document) Source() string {
	if s, ok := d.Metadata["source"].(string); ok {
		return s
	}
	return ""
}

// Loader produces raw documents for chunking.
type Loader interface {
	Load(ctx context.Context) ([]Document, error)
}
