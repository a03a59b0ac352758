package extract

import (
	"context"
	"fmt"
	"strings"
)

// Columns returns the column names of f's first record in header order and
// adds their descriptions to m: from the layout when f has one, otherwise
// from the year's reference files.
func (r *Registry) Columns(ctx context.Context, f *File, m Metadata) ([]string, error) {
	rec, ok, err := r.First(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f, err)
	}
	if !ok {
		return nil, nil
	}

	if m != nil {
		if err := describe(f, m); err != nil {
			return nil, err
		}
	}
	return append([]string(nil), rec.Columns...), nil
}

func describe(f *File, m Metadata) error {
	if f.LayoutPath == "" {
		return f.ReferenceMetadata(m)
	}
	layout, err := LoadLayout(f.LayoutPath)
	if err != nil {
		return err
	}
	for _, field := range layout {
		m.Add(field.Name, field.Description, f.LayoutPath)
	}
	return nil
}

// EntityKey returns the id of the entity a record reports on. State records
// are keyed "state"; otherwise the first column containing "cdc", or the
// column named after the level, holds the key.
func EntityKey(rec Record, level string) (string, error) {
	if level == LevelState {
		return LevelState, nil
	}

	for _, column := range rec.Columns {
		lower := strings.ToLower(column)
		match := strings.Contains(lower, "cdc") ||
			(lower == level && level != "") ||
			(level == LevelRegion && lower == "region_n")
		if !match {
			continue
		}
		if v, ok := rec.Get(column); ok {
			return v, nil
		}
	}
	return "", fmt.Errorf("%s record: %w", level, ErrNoEntityKey)
}
