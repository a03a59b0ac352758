package main

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/c360studio/semaeis/analyzer"
	"github.com/c360studio/semaeis/decoder"
	"github.com/c360studio/semaeis/export"
	"github.com/c360studio/semaeis/source/extract"
)

// selectionFlags are the extract selection flags shared by the commands that
// walk an extract root.
type selectionFlags struct {
	years   []int
	kinds   []string
	exclude []string
}

func (s *selectionFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntSliceVar(&s.years, "year", nil, "Report years to include (repeatable)")
	cmd.Flags().StringSliceVar(&s.kinds, "kind", nil, "Dataset kinds to include (repeatable)")
	cmd.Flags().StringSliceVar(&s.exclude, "exclude", nil, "Dataset kinds to exclude (repeatable)")
}

// apply overrides the extract config with the flags that were set.
func (s *selectionFlags) apply(cmd *cobra.Command, a *app) {
	if cmd.Flags().Changed("year") {
		a.cfg.Extract.Years = s.years
	}
	if cmd.Flags().Changed("kind") {
		a.cfg.Extract.Kinds = s.kinds
	}
	if cmd.Flags().Changed("exclude") {
		a.cfg.Extract.Exclude = s.exclude
	}
}

// rootArg returns the extract root from the first argument or the config.
func (a *app) rootArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return a.cfg.Extract.Root
}

// selectFiles discovers the extracts below root selected by the config.
func (a *app) selectFiles(root string) ([]*extract.File, error) {
	files, err := extract.Discover(root, a.cfg.Extract.Include...)
	if err != nil {
		return nil, fmt.Errorf("discover extracts: %w", err)
	}
	flt := extract.Filter{
		Years:        a.cfg.Extract.Years,
		Kinds:        a.cfg.Extract.Kinds,
		ExcludeKinds: a.cfg.Extract.Exclude,
	}
	files = flt.Apply(files)
	a.logger.Info("Discovered extracts", "root", root, "files", len(files))
	return files, nil
}

// openOutput returns stdout or the created output file.
func openOutput(cmd *cobra.Command, path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopCloser{cmd.OutOrStdout()}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create output: %w", err)
	}
	return f, nil
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func analyzeCmd(a *app) *cobra.Command {
	var (
		sel      selectionFlags
		format   string
		output   string
		profile  string
		failFast bool
		workers  int
	)

	cmd := &cobra.Command{
		Use:   "analyze [root]",
		Short: "Decode every column of the extracts below root",
		Long: `Analyze discovers the extracts below root (one directory per report year),
decodes every column of every file and writes the decoded columns.

Columns that cannot be decoded are reported in a summary on stderr.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sel.apply(cmd, a)
			if cmd.Flags().Changed("format") {
				a.cfg.Output.Format = format
			}
			if cmd.Flags().Changed("output") {
				a.cfg.Output.Path = output
			}
			if cmd.Flags().Changed("profile") {
				a.cfg.Output.Profile = profile
			}
			if cmd.Flags().Changed("fail-fast") {
				a.cfg.Decode.FailFast = failFast
			}
			if cmd.Flags().Changed("workers") {
				a.cfg.Decode.Workers = workers
			}
			if err := a.cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()
			return a.runAnalyze(ctx, cmd, a.rootArg(args))
		},
	}

	sel.register(cmd)
	cmd.Flags().StringVarP(&format, "format", "f", "jsonl", "Output format ("+strings.Join(export.Formats(), ", ")+")")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")
	cmd.Flags().StringVar(&profile, "profile", "minimal", "RDF type profile (minimal, bfo, cco)")
	cmd.Flags().BoolVar(&failFast, "fail-fast", false, "Stop at the first column that cannot be decoded")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "Concurrent decodes per file (0 for GOMAXPROCS)")
	return cmd
}

// analyzeSummary counts the outcome of an analyze run.
type analyzeSummary struct {
	files    int
	columns  int
	failures []failure
}

type failure struct {
	file string
	code string
	err  error
}

func (a *app) runAnalyze(ctx context.Context, cmd *cobra.Command, root string) error {
	format, err := export.ParseFormat(a.cfg.Output.Format)
	if err != nil {
		return err
	}
	files, err := a.selectFiles(root)
	if err != nil {
		return err
	}
	d, err := a.newDecoder()
	if err != nil {
		return err
	}

	out, err := openOutput(cmd, a.cfg.Output.Path)
	if err != nil {
		return err
	}
	defer out.Close()
	bw := bufio.NewWriter(out)

	an := analyzer.New(analyzer.Options{
		Decoder: d,
		Batch:   decoder.BatchOptions{Workers: a.cfg.Decode.Workers, FailFast: a.cfg.Decode.FailFast},
		Logger:  a.logger,
	})

	var (
		sum     analyzeSummary
		columns []export.Column
	)
	runErr := an.Run(ctx, root, files, func(res *analyzer.FileResult) error {
		sum.files++
		var decoded []export.Column
		for _, c := range res.Columns {
			if c.Err != nil {
				sum.failures = append(sum.failures, failure{file: res.File.String(), code: c.Code, err: c.Err})
				continue
			}
			sum.columns++
			decoded = append(decoded, export.Column{Record: c.Record, Descriptions: c.Descriptions})
		}
		// JSON lines are streamed per file; RDF documents are written once.
		if format == export.FormatJSONLines {
			return export.WriteJSONLines(bw, decoded)
		}
		columns = append(columns, decoded...)
		return nil
	})

	if runErr == nil && format != export.FormatJSONLines {
		runErr = export.Write(bw, format, export.Profile(a.cfg.Output.Profile), columns)
	}
	if err := bw.Flush(); err != nil && runErr == nil {
		runErr = fmt.Errorf("write output: %w", err)
	}

	writeSummary(cmd.ErrOrStderr(), sum)
	return runErr
}

// writeSummary prints the counts of a run and every column that failed.
func writeSummary(w io.Writer, sum analyzeSummary) {
	fmt.Fprintf(w, "%d files, %d columns decoded, %d failures\n", sum.files, sum.columns, len(sum.failures))
	for _, f := range sum.failures {
		fmt.Fprintf(w, "  %s %s: %v\n", f.file, f.code, f.err)
	}
}

func columnsCmd(a *app) *cobra.Command {
	var (
		sel    selectionFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "columns [root]",
		Short: "List every column with its segments and descriptions as CSV",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sel.apply(cmd, a)
			if cmd.Flags().Changed("output") {
				a.cfg.Output.Path = output
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			root := a.rootArg(args)
			files, err := a.selectFiles(root)
			if err != nil {
				return err
			}

			out, err := openOutput(cmd, a.cfg.Output.Path)
			if err != nil {
				return err
			}
			defer out.Close()
			return writeColumns(ctx, out, root, files)
		},
	}

	sel.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")
	return cmd
}

// writeColumns writes the distinct columns of files as CSV rows of column,
// first character, middle, last character and descriptions.
func writeColumns(ctx context.Context, w io.Writer, root string, files []*extract.File) error {
	m := extract.Metadata{}
	seen := make(map[string]struct{})
	for _, f := range files {
		cols, err := extract.DefaultRegistry.Columns(ctx, f, m)
		if err != nil {
			return fmt.Errorf("columns of %s: %w", f, err)
		}
		for _, c := range cols {
			if c != "" {
				seen[c] = struct{}{}
			}
		}
	}
	// Some reference files match no extract name.
	if err := extract.ExtraMetadata(root, m); err != nil {
		return fmt.Errorf("extra metadata: %w", err)
	}

	columns := make([]string, 0, len(seen))
	for c := range seen {
		columns = append(columns, c)
	}
	sort.Strings(columns)

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"column", "first", "middle", "last", "descriptions"}); err != nil {
		return err
	}
	for _, c := range columns {
		first, middle, last := segments(c)
		row := []string{c, first, middle, last, strings.Join(m.Descriptions(c), "; ")}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// segments splits a column name into its first character, the middle and
// its last character. A one-character name is both first and last.
func segments(column string) (first, middle, last string) {
	first = column[:1]
	last = column[len(column)-1:]
	if len(column) > 2 {
		middle = column[1 : len(column)-1]
	}
	return first, middle, last
}
