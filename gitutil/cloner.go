package gitutil

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/go-git/go-git/v5"
)

// Cloner handles the temporary cloning of remote Git repositories.
type Cloner struct {
	Logger *slog.Logger
}

// NewCloner creates a Cloner. A nil logger means slog.Default.
func NewCloner(logger *slog.Logger) *Cloner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cloner{Logger: logger}
}

// Clone makes a depth-1 checkout of repoURL in a temporary directory. The
// returned cleanup removes it.
func (c *Cloner) Clone(ctx context.Context, repoURL string) (string, func(), error) {
	tempPath, err := os.MkdirTemp("", "docchunk-repo-*")
	if err != nil {
		return "", nil, fmt.Errorf("failed to create temp directory: %w", err)
	}

	c.Logger.InfoContext(ctx, "Cloning repository", "url", repoURL, "path", tempPath)

	cleanupFunc := func() {
		c.Logger.Info("Cleaning up temporary repository", "path", tempPath)
		_ = os.RemoveAll(tempPath)
	}

	_, err = git.PlainCloneContext(ctx, tempPath, false, &git.CloneOptions{
		URL:          repoURL,
		Depth:        1,
		SingleBranch: true,
		Tags:         git.NoTags,
	})

	if err != nil {
		cleanupFunc()
		return "", nil, fmt.Errorf("failed to clone repo '%s': %w", repoURL, err)
	}

	c.Logger.InfoContext(ctx, "Repository cloned", "url", repoURL)
	return tempPath, cleanupFunc, nil
}
