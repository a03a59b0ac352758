package extract

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Record is one data row. Columns keeps header order; a column missing from
// Values had no cell in the row.
type Record struct {
	Columns []string
	Values  map[string]string
}

// Get returns the value of column and whether the row had a cell for it.
func (r Record) Get(column string) (string, bool) {
	v, ok := r.Values[column]
	return v, ok
}

// Reader reads the records of one extract format.
type Reader interface {
	// Format returns the format this reader handles.
	Format() Format

	// Read calls fn for each record in file order. Returning ErrStop from fn
	// ends the read without error.
	Read(ctx context.Context, f *File, fn func(Record) error) error
}

// ErrStop can be returned from a Read callback to stop reading early.
var ErrStop = errors.New("stop reading")

// Registry manages extract readers keyed by format.
type Registry struct {
	mu      sync.RWMutex
	readers map[Format]Reader
}

// DefaultRegistry holds the .dat and .xls readers.
var DefaultRegistry = NewRegistry()

// NewRegistry creates a registry with the default readers.
func NewRegistry() *Registry {
	r := &Registry{readers: make(map[Format]Reader)}
	r.Register(NewDATReader())
	r.Register(NewXLSReader())
	return r
}

// Register adds a reader, replacing any reader for the same format.
func (r *Registry) Register(reader Reader) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.readers[reader.Format()] = reader
}

// Get returns the reader for format.
func (r *Registry) Get(format Format) (Reader, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reader, ok := r.readers[format]
	return reader, ok
}

// Formats lists the registered formats.
func (r *Registry) Formats() []Format {
	r.mu.RLock()
	defer r.mu.RUnlock()

	formats := make([]Format, 0, len(r.readers))
	for f := range r.readers {
		formats = append(formats, f)
	}
	sort.Slice(formats, func(i, j int) bool { return formats[i] < formats[j] })
	return formats
}

// Read reads f with the reader registered for its format.
func (r *Registry) Read(ctx context.Context, f *File, fn func(Record) error) error {
	reader, ok := r.Get(f.Format)
	if !ok {
		return fmt.Errorf("%s: %w", f.Path, ErrUnknownFormat)
	}
	err := reader.Read(ctx, f, fn)
	if errors.Is(err, ErrStop) {
		return nil
	}
	return err
}

// First returns the first record of f. ok is false for a file with no records.
func (r *Registry) First(ctx context.Context, f *File) (rec Record, ok bool, err error) {
	err = r.Read(ctx, f, func(first Record) error {
		rec, ok = first, true
		return ErrStop
	})
	return rec, ok, err
}
