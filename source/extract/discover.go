package extract

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultPatterns match the extracts in the year directories below a root.
var DefaultPatterns = []string{"*/*.{dat,xls}"}

// Discover finds the extract files below root matching patterns, which are
// relative to root. Files outside a year directory are skipped. Results are
// sorted by year, then name.
func Discover(root string, patterns ...string) ([]*File, error) {
	if len(patterns) == 0 {
		patterns = DefaultPatterns
	}

	seen := make(map[string]bool)
	var files []*File
	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(filepath.Join(root, pattern))
		if err != nil {
			return nil, fmt.Errorf("glob %q: %w", pattern, err)
		}

		for _, path := range matches {
			if seen[path] {
				continue
			}
			seen[path] = true

			f, err := NewFile(path)
			if errors.Is(err, ErrNoYear) || errors.Is(err, ErrUnknownFormat) {
				continue
			}
			if err != nil {
				return nil, err
			}
			files = append(files, f)
		}
	}

	sort.Slice(files, func(i, j int) bool {
		if files[i].Year != files[j].Year {
			return files[i].Year < files[j].Year
		}
		return files[i].BaseName < files[j].BaseName
	})
	return files, nil
}

// Filter selects files by year and root name. Empty years or kinds select all;
// excluded kinds are always dropped.
type Filter struct {
	Years        []int
	Kinds        []string
	ExcludeKinds []string
}

// Apply returns the files selected by the filter, keeping their order.
func (flt Filter) Apply(files []*File) []*File {
	var out []*File
	for _, f := range files {
		if len(flt.Years) > 0 && !slices.Contains(flt.Years, f.Year) {
			continue
		}
		if len(flt.Kinds) > 0 && !slices.Contains(flt.Kinds, f.RootName) {
			continue
		}
		if slices.Contains(flt.ExcludeKinds, f.RootName) {
			continue
		}
		out = append(out, f)
	}
	return out
}
