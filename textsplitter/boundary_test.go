package textsplitter_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/docchunk/textsplitter"
)

func joinSegments(segs []textsplitter.Segment) string {
	var sb strings.Builder
	for _, s := range segs {
		sb.WriteString(s.Text)
	}
	return sb.String()
}

func TestSegmenter(t *testing.T) {
	counter := newCounter(t)

	t.Run("FitsUnchanged", func(t *testing.T) {
		s := textsplitter.NewSegmenter(counter, true, true)
		segs, err := s.Split("short text", 10)
		require.NoError(t, err)
		require.Len(t, segs, 1)
		assert.Equal(t, "short text", segs[0].Text)
		assert.Equal(t, 2, segs[0].Tokens)
	})

	t.Run("Paragraphs", func(t *testing.T) {
		s := textsplitter.NewSegmenter(counter, true, true)
		text := "First paragraph here.\n\nSecond paragraph here.\n\nThird one."
		segs, err := s.Split(text, 6)
		require.NoError(t, err)
		require.Len(t, segs, 3)
		assert.Equal(t, "First paragraph here.\n\n", segs[0].Text)
		assert.Equal(t, "Second paragraph here.\n\n", segs[1].Text)
		assert.Equal(t, "Third one.", segs[2].Text)
	})

	t.Run("SentencesThenWords", func(t *testing.T) {
		s := textsplitter.NewSegmenter(counter, true, true)
		text := "One two three four five six seven eight nine ten. Short one."
		segs, err := s.Split(text, 5)
		require.NoError(t, err)
		assert.Equal(t, text, joinSegments(segs))
		for _, seg := range segs {
			assert.LessOrEqual(t, seg.Tokens, 5)
			assert.False(t, seg.BudgetExceeded)
		}
	})

	t.Run("WordsOnly", func(t *testing.T) {
		s := textsplitter.NewSegmenter(counter, false, false)
		text := strings.Repeat("word ", 25)
		segs, err := s.Split(text, 10)
		require.NoError(t, err)
		assert.Equal(t, text, joinSegments(segs))
		assert.Len(t, segs, 3)
	})

	t.Run("InvalidBudget", func(t *testing.T) {
		s := textsplitter.NewSegmenter(counter, true, true)
		_, err := s.Split("text", 0)
		assert.ErrorIs(t, err, textsplitter.ErrInvalidConfig)
	})
}
