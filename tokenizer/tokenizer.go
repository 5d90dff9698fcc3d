// Package tokenizer counts, encodes and windows text in model tokens.
package tokenizer

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

var (
	ErrUnknownModel = errors.New("unknown encoding model")
	ErrInvalidToken = errors.New("invalid token id")
	ErrInvalidLimit = errors.New("invalid token limit")
)

// Encoding converts between text and token ids for one model.
type Encoding interface {
	Encode(text string) ([]int, error)
	Decode(tokens []int) (string, error)
}

// Factory builds an Encoding.
type Factory func() (Encoding, error)

var (
	registryMu sync.RWMutex
	factories  = map[string]Factory{}
)

func init() {
	for _, name := range tiktokenEncodings {
		Register(name, tiktokenFactory(name))
	}
	Register(WordsModel, func() (Encoding, error) { return NewWordsEncoding(), nil })
	Register("words", func() (Encoding, error) { return NewWordsEncoding(), nil })
}

// Register makes an encoding available under name. Registering a name twice replaces the factory.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	factories[strings.ToLower(name)] = factory
}

// Models lists the registered model ids.
func Models() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewEncoding returns the encoding registered for model.
func NewEncoding(model string) (Encoding, error) {
	registryMu.RLock()
	factory, ok := factories[strings.ToLower(model)]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownModel, model)
	}

	enc, err := factory()
	if err != nil {
		return nil, fmt.Errorf("load encoding %q: %w", model, err)
	}
	return enc, nil
}
