package documentloaders

import (
	"context"
	"log/slog"

	"github.com/sevigo/docchunk/gitutil"
	"github.com/sevigo/docchunk/parsers"
	"github.com/sevigo/docchunk/schema"
)

// RemoteGitLoader shallow-clones a repository and loads it like a local directory.
type RemoteGitLoader struct {
	RepoURL  string
	Registry parsers.ParserRegistry
	Logger   *slog.Logger
	Options  []DirectoryOption
}

var _ schema.Loader = (*RemoteGitLoader)(nil)

func NewRemoteGit(repoURL string, registry parsers.ParserRegistry, logger *slog.Logger, opts ...DirectoryOption) *RemoteGitLoader {
	if logger == nil {
		logger = slog.Default()
	}
	return &RemoteGitLoader{
		RepoURL:  repoURL,
		Registry: registry,
		Logger:   logger,
		Options:  opts,
	}
}

func (l *RemoteGitLoader) Load(ctx context.Context) ([]schema.Document, error) {
	cloner := gitutil.NewCloner(l.Logger)
	tempPath, cleanup, err := cloner.Clone(ctx, l.RepoURL)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	documents, err := NewDirectory(tempPath, l.Registry, l.Logger, l.Options...).Load(ctx)
	if err != nil {
		return nil, err
	}

	for i := range documents {
		documents[i].Metadata["repository"] = l.RepoURL
		documents[i].Metadata["document_id"] = DocumentID(l.RepoURL + "/" + documents[i].Source())
	}
	return documents, nil
}
