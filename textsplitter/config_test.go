package textsplitter_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/docchunk/textsplitter"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chunking.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := textsplitter.DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 512, cfg.MaxTokens)
	assert.Equal(t, 50, cfg.OverlapTokens)
	assert.Equal(t, "cl100k_base", cfg.EncodingModel)
	assert.Equal(t, textsplitter.OversizeEmit, cfg.OversizePolicy)
	assert.True(t, cfg.PreserveCodeBlocks)
	assert.False(t, cfg.PreserveSections)
	assert.True(t, cfg.DetectExamples)
}

func TestLoadConfig(t *testing.T) {
	t.Run("OverridesDefaults", func(t *testing.T) {
		path := writeConfig(t, "max_tokens: 256\noverlap_tokens: 20\noversize_policy: split\nrespect_sentence_boundaries: false\n")
		cfg, err := textsplitter.LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, 256, cfg.MaxTokens)
		assert.Equal(t, 20, cfg.OverlapTokens)
		assert.Equal(t, textsplitter.OversizeSplit, cfg.OversizePolicy)
		assert.False(t, cfg.RespectSentenceBoundaries)
		assert.True(t, cfg.PreserveCodeBlocks)
	})

	t.Run("Invalid", func(t *testing.T) {
		path := writeConfig(t, "max_tokens: 100\noverlap_tokens: 300\n")
		_, err := textsplitter.LoadConfig(path)
		require.ErrorIs(t, err, textsplitter.ErrInvalidConfig)
		assert.Contains(t, err.Error(), "overlap_tokens (300) must be less than max_tokens (100)")
	})

	t.Run("Malformed", func(t *testing.T) {
		path := writeConfig(t, "max_tokens: [1, 2\n")
		_, err := textsplitter.LoadConfig(path)
		assert.ErrorIs(t, err, textsplitter.ErrInvalidConfig)
	})

	t.Run("Missing", func(t *testing.T) {
		_, err := textsplitter.LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}
