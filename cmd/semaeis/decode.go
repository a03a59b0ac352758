package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/c360studio/semaeis/decoder"
)

func decodeCmd(a *app) *cobra.Command {
	var flat bool

	cmd := &cobra.Command{
		Use:   "decode <kind> <year> <code>...",
		Short: "Decode column codes of one dataset kind and year",
		Example: `  semaeis decode othr 1994 CA0EQ94R
  semaeis decode fin 2012 DPFEAINR --flat`,
		Args: cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid year %q", args[1])
			}
			d, err := a.newDecoder()
			if err != nil {
				return err
			}
			return runDecode(cmd.OutOrStdout(), cmd.ErrOrStderr(), d, args[0], year, args[2:], flat)
		},
	}

	cmd.Flags().BoolVar(&flat, "flat", false, "Print the flat document instead of the record with its steps")
	return cmd
}

// runDecode prints one JSON line per decoded code to out and the diagnostics
// of failed codes to diag. Configuration errors stop immediately.
func runDecode(out, diag io.Writer, d decoder.Decoder, kind string, year int, codes []string, flat bool) error {
	enc := json.NewEncoder(out)
	failed := 0
	for _, code := range codes {
		rec, err := d.Decode(kind, year, code)
		if err != nil {
			if decoder.IsConfigError(err) {
				return err
			}
			failed++
			writeDiagnostics(diag, code, err)
			continue
		}

		var v any = rec
		if flat {
			v = rec.Document()
		}
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode %s: %w", code, err)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d codes failed to decode", failed, len(codes))
	}
	return nil
}

// writeDiagnostics prints where and why a code failed, with the facts
// decoded before the failure.
func writeDiagnostics(w io.Writer, code string, err error) {
	de, ok := decoder.AsDecodeError(err)
	if !ok {
		fmt.Fprintf(w, "%s: %v\n", code, err)
		return
	}

	fmt.Fprintf(w, "%s: %v\n", code, de.Err)
	fmt.Fprintf(w, "  %s\n  %s^ offset %d, remainder %q\n", de.Code, strings.Repeat(" ", de.Offset), de.Offset, de.Remainder)
	if de.Group != "" {
		fmt.Fprintf(w, "  group: %s\n", de.Group)
	}
	if de.Cause != nil {
		fmt.Fprintf(w, "  cause: %v\n", de.Cause)
	}
	for _, key := range de.Partial.Keys() {
		fmt.Fprintf(w, "  %s = %v\n", key, de.Partial[key])
	}
}

func grammarsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "grammars",
		Short: "List registered dataset kinds and revisions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, g := range decoder.DefaultRegistry.Grammars() {
				if g.Revision == 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\n", g.Kind)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t(report year %d only)\n", g.Kind, g.Revision)
			}
			return nil
		},
	}
}
