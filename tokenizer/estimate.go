package tokenizer

import (
	"math"
	"strings"
)

// EstimateChunks returns ceil((total-overlap)/(max-overlap)), or 1 when total fits.
func EstimateChunks(totalTokens, maxTokens, overlapTokens int) int {
	if totalTokens <= maxTokens || maxTokens <= 0 {
		return 1
	}
	overlapTokens = max(0, min(overlapTokens, maxTokens-1))
	step := maxTokens - overlapTokens
	return (totalTokens - overlapTokens + step - 1) / step
}

// EstimateTokens approximates a token count without an encoding: the larger
// of 1.3 tokens per word and 4 characters per token.
func EstimateTokens(text string) int {
	byWords := float64(len(strings.Fields(text))) * 1.3
	byChars := float64(len(text)) / 4
	return int(math.Max(byWords, byChars))
}
