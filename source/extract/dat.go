package extract

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
)

// DATReader reads comma-separated .dat extracts.
type DATReader struct{}

// NewDATReader creates a .dat reader.
func NewDATReader() *DATReader {
	return &DATReader{}
}

// Format implements Reader.
func (r *DATReader) Format() Format {
	return FormatDAT
}

// Read implements Reader. With a layout, cells are named by layout position;
// without one, the first row is the header.
func (r *DATReader) Read(ctx context.Context, f *File, fn func(Record) error) error {
	var layout []LayoutField
	if f.LayoutPath != "" {
		var err error
		if layout, err = LoadLayout(f.LayoutPath); err != nil {
			return err
		}
	}

	file, err := os.Open(f.Path)
	if err != nil {
		return fmt.Errorf("open extract: %w", err)
	}
	defer file.Close()

	if len(layout) > 0 {
		return readWithLayout(ctx, file, layout, fn)
	}
	return readWithHeader(ctx, file, fn)
}

func newCSVReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	return cr
}

func readWithLayout(ctx context.Context, r io.Reader, layout []LayoutField, fn func(Record) error) error {
	columns := make([]string, len(layout))
	for i, field := range layout {
		columns[i] = field.Name
	}

	cr := newCSVReader(r)
	for line := 1; ; line++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read row %d: %w", line, err)
		}

		// A first row repeating the first layout name is a header.
		if line == 1 && len(row) > 0 && row[0] == layout[0].Name {
			continue
		}
		if len(row) <= 1 {
			continue
		}

		values := make(map[string]string, len(layout))
		for _, field := range layout {
			if i := field.Pos - 1; i >= 0 && i < len(row) {
				values[field.Name] = row[i]
			}
		}
		if err := fn(Record{Columns: columns, Values: values}); err != nil {
			return err
		}
	}
}

func readWithHeader(ctx context.Context, r io.Reader, fn func(Record) error) error {
	cr := newCSVReader(r)

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read header: %w", err)
	}

	for line := 2; ; line++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read row %d: %w", line, err)
		}
		if err := fn(zipRecord(header, row)); err != nil {
			return err
		}
	}
}

// zipRecord names cells by header position. Cells past the header are dropped.
func zipRecord(header, row []string) Record {
	values := make(map[string]string, len(header))
	for i, name := range header {
		if i < len(row) {
			values[name] = row[i]
		}
	}
	return Record{Columns: header, Values: values}
}
