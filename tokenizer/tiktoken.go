package tokenizer

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

var tiktokenEncodings = []string{"cl100k_base", "o200k_base", "p50k_base", "p50k_edit", "r50k_base"}

type tiktokenEncoding struct {
	tke *tiktoken.Tiktoken
}

func tiktokenFactory(name string) Factory {
	return func() (Encoding, error) {
		tke, err := tiktoken.GetEncoding(name)
		if err != nil {
			return nil, fmt.Errorf("failed to get encoding: %w", err)
		}
		return &tiktokenEncoding{tke: tke}, nil
	}
}

// Special tokens are neither allowed nor disallowed, so they are encoded as plain text.
func (e *tiktokenEncoding) Encode(text string) (tokens []int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("tiktoken encode: %v", r)
		}
	}()
	return e.tke.Encode(text, nil, nil), nil
}

func (e *tiktokenEncoding) Decode(tokens []int) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: tiktoken decode: %v", ErrInvalidToken, r)
		}
	}()
	return e.tke.Decode(tokens), nil
}
