// Package analyzer decodes every column of AEIS extract files.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/c360studio/semaeis/decoder"
	"github.com/c360studio/semaeis/source/extract"
)

// Column is the outcome of decoding one column code of a file.
type Column struct {
	Code         string
	Record       *decoder.Record
	Err          error
	Descriptions []string
}

// FileResult holds the decoded columns of one extract, sorted by code.
type FileResult struct {
	File    *extract.File
	Columns []Column
}

// Records returns the successfully decoded columns.
func (r *FileResult) Records() []Column {
	var out []Column
	for _, c := range r.Columns {
		if c.Err == nil {
			out = append(out, c)
		}
	}
	return out
}

// Failures returns the columns that could not be decoded.
func (r *FileResult) Failures() []Column {
	var out []Column
	for _, c := range r.Columns {
		if c.Err != nil {
			out = append(out, c)
		}
	}
	return out
}

// Options configures an Analyzer.
type Options struct {
	// Readers reads extract files. Nil uses extract.DefaultRegistry.
	Readers *extract.Registry

	// Decoder decodes column codes. Nil uses a pipeline over decoder.DefaultRegistry.
	Decoder decoder.Decoder

	// Batch bounds decode concurrency and selects fail-fast behaviour.
	Batch decoder.BatchOptions

	// Logger for progress and failures. Nil uses slog.Default().
	Logger *slog.Logger
}

// Analyzer reads the header of each extract and decodes its columns.
type Analyzer struct {
	readers *extract.Registry
	decoder decoder.Decoder
	batch   decoder.BatchOptions
	logger  *slog.Logger
}

// New creates an Analyzer.
func New(opts Options) *Analyzer {
	a := &Analyzer{
		readers: opts.Readers,
		decoder: opts.Decoder,
		batch:   opts.Batch,
		logger:  opts.Logger,
	}
	if a.readers == nil {
		a.readers = extract.DefaultRegistry
	}
	if a.decoder == nil {
		a.decoder = decoder.NewPipeline(nil)
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}
	return a
}

// AnalyzeFile decodes every column of f as a column of f's dataset kind.
// Descriptions found while reading f are added to m and attached to the
// decoded columns. Decode failures are kept per column; with fail-fast the
// first failure is also returned.
func (a *Analyzer) AnalyzeFile(ctx context.Context, f *extract.File, m extract.Metadata) (*FileResult, error) {
	if m == nil {
		m = extract.Metadata{}
	}
	codes, err := a.readers.Columns(ctx, f, m)
	if err != nil {
		return nil, fmt.Errorf("columns of %s: %w", f, err)
	}
	sort.Strings(codes)

	a.logger.Debug("Decoding columns", "file", f.String(), "columns", len(codes))

	results, err := decoder.DecodeAll(ctx, a.decoder, f.RootName, f.Year, codes, a.batch)
	out := &FileResult{File: f, Columns: make([]Column, 0, len(results))}
	for _, res := range results {
		if res.Code == "" && res.Record == nil && res.Err == nil {
			continue // not started before the batch stopped
		}
		out.Columns = append(out.Columns, Column{
			Code:         res.Code,
			Record:       res.Record,
			Err:          res.Err,
			Descriptions: m.Descriptions(res.Code),
		})
	}
	if err != nil {
		return out, fmt.Errorf("decode %s: %w", f, err)
	}
	return out, nil
}

// Run analyzes files in order and hands each result to fn. Metadata is
// shared across files, as column codes repeat between years and levels, and
// is seeded from the extra reference files below root. Files of a kind with no
// grammar are skipped. Other per-file errors stop the run when fail-fast is
// set, on an invalid grammar and on cancellation; otherwise they are logged.
func (a *Analyzer) Run(ctx context.Context, root string, files []*extract.File, fn func(*FileResult) error) error {
	m := extract.Metadata{}
	if root != "" {
		if err := extract.ExtraMetadata(root, m); err != nil {
			a.logger.Warn("Failed to load extra metadata", "root", root, "error", err)
		}
	}

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return err
		}

		res, err := a.AnalyzeFile(ctx, f, m)
		if errors.Is(err, decoder.ErrNoGrammar) {
			a.logger.Warn("No grammar for dataset kind, skipping file", "file", f.String(), "kind", f.RootName)
			continue
		}
		if err != nil {
			if a.batch.FailFast || decoder.IsConfigError(err) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				if res != nil && fn != nil {
					_ = fn(res)
				}
				return err
			}
			a.logger.Warn("Failed to analyze file", "file", f.String(), "error", err)
			if res == nil {
				continue
			}
		}

		if fails := len(res.Failures()); fails > 0 {
			a.logger.Info("Analyzed file with failures",
				"file", f.String(),
				"columns", len(res.Columns),
				"failures", fails)
		} else {
			a.logger.Debug("Analyzed file", "file", f.String(), "columns", len(res.Columns))
		}

		if fn != nil {
			if err := fn(res); err != nil {
				return err
			}
		}
	}
	return nil
}
