package textsplitter

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/sevigo/docchunk/schema"
)

// ChunkDocuments chunks documents concurrently with at most workers in flight.
// Results keep the input order. Zero or fewer workers means one per CPU.
func (c *Chunker) ChunkDocuments(ctx context.Context, docs []schema.Document, workers int) ([][]schema.Chunk, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	results := make([][]schema.Chunk, len(docs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, doc := range docs {
		i, doc := i, doc
		g.Go(func() error {
			chunks, err := c.ChunkDocument(gctx, doc)
			if err != nil {
				return fmt.Errorf("failed to chunk %s: %w", doc.Source(), err)
			}
			results[i] = chunks
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	c.logger.Info("Chunked documents", "documents", len(docs), "workers", workers)
	return results, nil
}
