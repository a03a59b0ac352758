package columnindexer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/c360studio/semstreams/natsclient"
	"github.com/google/uuid"

	"github.com/c360studio/semaeis/analyzer"
	"github.com/c360studio/semaeis/decoder"
	"github.com/c360studio/semaeis/graph"
	"github.com/c360studio/semaeis/source/extract"
	"github.com/c360studio/semaeis/storage"
)

// AnalysisStore stores decoded columns.
type AnalysisStore interface {
	Put(ctx context.Context, a *storage.Analysis) error
}

// Publisher publishes decoded columns to the knowledge graph.
type Publisher interface {
	PublishColumn(ctx context.Context, rec *decoder.Record, descriptions []string, source string) error
}

// NATSPublisher publishes column entities to graph ingestion over NATS.
type NATSPublisher struct {
	Client *natsclient.Client
}

// PublishColumn implements Publisher.
func (p NATSPublisher) PublishColumn(ctx context.Context, rec *decoder.Record, descriptions []string, source string) error {
	return graph.PublishRecord(ctx, p.Client, rec, descriptions, source)
}

// IndexerOptions configures an Indexer. Store, Publisher and Metrics are optional.
type IndexerOptions struct {
	Analyzer  analyzer.Options
	Patterns  []string
	Filter    extract.Filter
	Store     AnalysisStore
	Publisher Publisher
	Metrics   *Metrics
	Logger    *slog.Logger
}

// Summary counts the outcome of one index run.
type Summary struct {
	RunID     string
	Files     int
	Columns   int
	Failures  int
	Stored    int
	Published int
	Errors    int
}

func (s *Summary) add(other Summary) {
	s.Files += other.Files
	s.Columns += other.Columns
	s.Failures += other.Failures
	s.Stored += other.Stored
	s.Published += other.Published
	s.Errors += other.Errors
}

// Indexer discovers extracts, decodes their columns and hands the decoded
// columns to the analysis store and the graph.
type Indexer struct {
	analyzer  *analyzer.Analyzer
	patterns  []string
	filter    extract.Filter
	store     AnalysisStore
	publisher Publisher
	metrics   *Metrics
	logger    *slog.Logger
}

// NewIndexer creates an Indexer.
func NewIndexer(opts IndexerOptions) *Indexer {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	aopts := opts.Analyzer
	if aopts.Logger == nil {
		aopts.Logger = logger
	}
	if opts.Metrics != nil {
		next := aopts.Decoder
		if next == nil {
			next = decoder.NewPipeline(nil)
		}
		aopts.Decoder = opts.Metrics.Instrument(next)
	}

	return &Indexer{
		analyzer:  analyzer.New(aopts),
		patterns:  opts.Patterns,
		filter:    opts.Filter,
		store:     opts.Store,
		publisher: opts.Publisher,
		metrics:   opts.Metrics,
		logger:    logger,
	}
}

// Discover returns the extracts below root selected by the indexer's filter.
func (ix *Indexer) Discover(root string) ([]*extract.File, error) {
	files, err := extract.Discover(root, ix.patterns...)
	if err != nil {
		return nil, fmt.Errorf("discover extracts in %s: %w", root, err)
	}
	return ix.filter.Apply(files), nil
}

// IndexRoot indexes every selected extract below root.
func (ix *Indexer) IndexRoot(ctx context.Context, root string) (Summary, error) {
	files, err := ix.Discover(root)
	if err != nil {
		return Summary{}, err
	}
	return ix.IndexFiles(ctx, root, files)
}

// IndexFiles indexes files under a new run id. Store and publish failures are
// logged and counted; they do not stop the run.
func (ix *Indexer) IndexFiles(ctx context.Context, root string, files []*extract.File) (Summary, error) {
	sum := Summary{RunID: uuid.NewString()}
	source := graph.DefaultSource + "." + sum.RunID
	logger := ix.logger.With("run_id", sum.RunID)

	logger.Info("Starting index run", "root", root, "files", len(files))

	err := ix.analyzer.Run(ctx, root, files, func(res *analyzer.FileResult) error {
		sum.add(ix.handleFile(ctx, logger, res, sum.RunID, source))
		return nil
	})

	logger.Info("Index run complete",
		"files", sum.Files,
		"columns", sum.Columns,
		"failures", sum.Failures,
		"stored", sum.Stored,
		"published", sum.Published,
		"errors", sum.Errors)

	if err != nil {
		return sum, fmt.Errorf("index %s: %w", root, err)
	}
	return sum, nil
}

func (ix *Indexer) handleFile(ctx context.Context, logger *slog.Logger, res *analyzer.FileResult, runID, source string) Summary {
	var sum Summary
	sum.Files = 1
	if ix.metrics != nil {
		ix.metrics.FilesIndexed.WithLabelValues(res.File.RootName).Inc()
	}

	for _, col := range res.Columns {
		if col.Err != nil {
			sum.Failures++
			logger.Debug("Column decode failed",
				"file", res.File.String(),
				"column", col.Code,
				"error", col.Err)
			continue
		}
		sum.Columns++

		if ix.store != nil {
			err := ix.store.Put(ctx, &storage.Analysis{
				Record:       col.Record,
				Descriptions: col.Descriptions,
				RunID:        runID,
			})
			if err != nil {
				sum.Errors++
				logger.Warn("Failed to store analysis", "column", col.Code, "error", err)
			} else {
				sum.Stored++
			}
		}

		if ix.publisher != nil {
			if err := ix.publisher.PublishColumn(ctx, col.Record, col.Descriptions, source); err != nil {
				sum.Errors++
				logger.Warn("Failed to publish column", "column", col.Code, "error", err)
			} else {
				sum.Published++
			}
		}
	}
	return sum
}
