package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/sevigo/docchunk/documentloaders"
	"github.com/sevigo/docchunk/parsers"
	"github.com/sevigo/docchunk/schema"
	"github.com/sevigo/docchunk/textsplitter"
)

const (
	viewChunks    = "chunks"
	viewEmbedding = "embedding"
	viewRetrieval = "retrieval"
)

type options struct {
	configPath string
	maxTokens  int
	overlap    int
	model      string
	policy     string
	repo       string
	workers    int
	view       string
	verbose    bool
}

func newRootCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "chunkdoc [paths...]",
		Short: "Split documents into token-bounded, structure-aware chunks",
		Long: `chunkdoc loads markdown, source files, PDFs or text, chunks them within a
token budget and writes the chunks as JSON to stdout. Use "-" to read stdin.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && opts.repo == "" {
				return errors.New("no input: pass paths, - or --repo")
			}
			cfg, err := opts.config(cmd)
			if err != nil {
				return err
			}
			logger := newLogger(cmd.ErrOrStderr(), opts.verbose)
			return run(cmd.Context(), cfg, opts, args, cmd.InOrStdin(), cmd.OutOrStdout(), logger)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.configPath, "config", "", "YAML chunking config")
	flags.IntVar(&opts.maxTokens, "max-tokens", 0, "token budget per chunk")
	flags.IntVar(&opts.overlap, "overlap", 0, "overlap tokens shared with neighbouring chunks")
	flags.StringVar(&opts.model, "model", "", "encoding model, e.g. cl100k_base or uax29-words")
	flags.StringVar(&opts.policy, "policy", "", "oversize policy: emit, error or split")
	flags.StringVar(&opts.repo, "repo", "", "remote git repository to clone and chunk")
	flags.IntVar(&opts.workers, "workers", 0, "documents chunked concurrently (0 = one per CPU)")
	flags.StringVar(&opts.view, "view", viewChunks, "output view: chunks, embedding or retrieval")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging on stderr")
	return cmd
}

// config layers explicitly set flags over the config file over the defaults.
func (o *options) config(cmd *cobra.Command) (textsplitter.Config, error) {
	cfg := textsplitter.DefaultConfig()
	if o.configPath != "" {
		loaded, err := textsplitter.LoadConfig(o.configPath)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("max-tokens") {
		cfg.MaxTokens = o.maxTokens
	}
	if flags.Changed("overlap") {
		cfg.OverlapTokens = o.overlap
	}
	if flags.Changed("model") {
		cfg.EncodingModel = o.model
	}
	if flags.Changed("policy") {
		cfg.OversizePolicy = textsplitter.OversizePolicy(o.policy)
	}
	if flags.Changed("workers") {
		cfg.Workers = o.workers
	}
	if cfg.MinChunkTokens > cfg.MaxTokens {
		cfg.MinChunkTokens = 0
	}

	switch o.view {
	case viewChunks, viewEmbedding, viewRetrieval:
	default:
		return cfg, fmt.Errorf("unknown view %q: want chunks, embedding or retrieval", o.view)
	}
	return cfg, cfg.Validate()
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

type documentOutput struct {
	Source     string         `json:"source"`
	DocumentID string         `json:"document_id,omitempty"`
	Chunks     []schema.Chunk `json:"chunks"`
}

type viewOutput struct {
	ChunkID string `json:"chunk_id"`
	Source  string `json:"source"`
	Text    string `json:"text"`
}

func run(ctx context.Context, cfg textsplitter.Config, opts *options, args []string, stdin io.Reader, stdout io.Writer, logger *slog.Logger) error {
	registry, err := parsers.RegisterLanguagePlugins(logger)
	if err != nil {
		return err
	}
	chunker, err := textsplitter.New(registry, nil, logger, textsplitter.WithConfig(cfg))
	if err != nil {
		return err
	}

	return writeChunks(ctx, chunker, opts.loaders(args, stdin, registry, logger), opts.view, cfg.Workers, stdout, logger)
}

func (o *options) loaders(args []string, stdin io.Reader, registry parsers.ParserRegistry, logger *slog.Logger) []schema.Loader {
	var loaders []schema.Loader
	for _, path := range args {
		if path == "-" {
			loaders = append(loaders, documentloaders.NewReader(stdin, "stdin"))
			continue
		}
		loaders = append(loaders, documentloaders.NewDirectory(path, registry, logger))
	}
	if o.repo != "" {
		loaders = append(loaders, documentloaders.NewRemoteGit(o.repo, registry, logger))
	}
	return loaders
}

// writeChunks loads every source, chunks the documents and encodes the chosen view.
func writeChunks(ctx context.Context, chunker *textsplitter.Chunker, loaders []schema.Loader, view string, workers int, stdout io.Writer, logger *slog.Logger) error {
	var docs []schema.Document
	for _, loader := range loaders {
		loaded, err := loader.Load(ctx)
		if err != nil {
			return err
		}
		docs = append(docs, loaded...)
	}

	results, err := chunker.ChunkDocuments(ctx, docs, workers)
	if err != nil {
		return err
	}
	logger.Debug("Chunking finished", "documents", len(docs), "stats", chunker.Stats())

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)

	if view == viewChunks {
		out := make([]documentOutput, len(docs))
		for i, doc := range docs {
			id, _ := doc.Metadata["document_id"].(string)
			out[i] = documentOutput{Source: doc.Source(), DocumentID: id, Chunks: results[i]}
		}
		return enc.Encode(out)
	}

	var out []viewOutput
	for i, doc := range docs {
		for _, ch := range results[i] {
			text := ch.EmbeddingText()
			if view == viewRetrieval {
				text = ch.RetrievalText()
			}
			out = append(out, viewOutput{ChunkID: ch.ID, Source: doc.Source(), Text: text})
		}
	}
	return enc.Encode(out)
}
