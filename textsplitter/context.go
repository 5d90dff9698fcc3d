package textsplitter

import (
	"strings"

	"github.com/sevigo/docchunk/schema"
)

// surroundingText returns the nearest prose before and after blocks[i], looking
// at most contextWindowBlocks away. It feeds the broad classification of code
// blocks that carry no markers of their own.
func surroundingText(blocks []schema.Block, i int) (before, after string) {
	for j := i - 1; j >= 0 && j >= i-contextWindowBlocks; j-- {
		if isProse(blocks[j]) {
			before = lastRunes(blocks[j].Content, contextMaxRunes)
			break
		}
	}
	for j := i + 1; j < len(blocks) && j <= i+contextWindowBlocks; j++ {
		if isProse(blocks[j]) {
			after = firstRunes(blocks[j].Content, contextMaxRunes)
			break
		}
	}
	return before, after
}

func isProse(b schema.Block) bool {
	return (b.Type == schema.BlockParagraph || b.Type == schema.BlockHeading) && strings.TrimSpace(b.Content) != ""
}

func firstRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func lastRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[len(r)-n:])
}
