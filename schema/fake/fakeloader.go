package fake

import (
	"context"

	"github.com/sevigo/docchunk/schema"
)

// Loader is a mock loader for testing purposes.
type Loader struct {
	DocsToReturn []schema.Document
	ErrToReturn  error
	Calls        int
}

// NewLoader creates a new fake loader returning docs.
func NewLoader(docs ...schema.Document) *Loader {
	return &Loader{DocsToReturn: docs}
}

// Load returns the pre-configured documents and error.
func (l *Loader) Load(_ context.Context) ([]schema.Document, error) {
	l.Calls++
	return l.DocsToReturn, l.ErrToReturn
}
