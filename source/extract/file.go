// Package extract reads AEIS extract files: comma-separated .dat files with
// optional .lyt layouts, HTML tables saved as .xls, and the HTML reference
// files published alongside the 2013 extracts.
package extract

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

var (
	// ErrUnknownFormat is returned for files that are neither .dat nor .xls.
	ErrUnknownFormat = errors.New("unknown extract format")

	// ErrNoYear is returned when a file's parent directory is not a year.
	ErrNoYear = errors.New("extract directory is not a year")

	// ErrNoEntityKey is returned when a record has no column identifying its entity.
	ErrNoEntityKey = errors.New("no entity key column")
)

// Format is the on-disk format of an extract.
type Format string

const (
	FormatDAT Format = "dat"
	FormatXLS Format = "xls"
)

// Reporting levels.
const (
	LevelCampus   = "campus"
	LevelDistrict = "district"
	LevelRegion   = "region"
	LevelState    = "state"
)

var levelCodes = map[byte]string{
	'c': LevelCampus,
	'd': LevelDistrict,
	'r': LevelRegion,
	's': LevelState,
}

// prefixRewrites normalise file name prefixes to a one-letter level code.
// Only the first matching prefix applies.
var prefixRewrites = []struct{ old, new string }{
	{"stat", "s"},
	{"dist", "d"},
	{"regn", "r"},
	{"camp", "c"},
	{"cad", "ccad"},
	{"rad", "rcad"},
	{"dad", "dcad"},
	{"sad", "scad"},
}

// File is one extract file located under <root>/<year>/.
type File struct {
	Path     string
	Dir      string
	BaseName string // file name with extension
	Name     string // file name without extension
	Year     int
	Format   Format

	// RootName is the dataset kind shared by every level, e.g. "fin" for
	// campfin.dat and distfin.dat.
	RootName string

	// LevelCode is the one-letter level prefix of the normalised name.
	LevelCode string

	// LayoutPath is the .lyt file next to a .dat file, if one exists.
	LayoutPath string
}

// NewFile describes the extract at path. The year is taken from the parent
// directory name.
func NewFile(path string) (*File, error) {
	base := filepath.Base(path)
	ext := filepath.Ext(base)

	var format Format
	switch strings.ToLower(ext) {
	case ".dat":
		format = FormatDAT
	case ".xls":
		format = FormatXLS
	default:
		return nil, fmt.Errorf("%s: %w", path, ErrUnknownFormat)
	}

	dir := filepath.Dir(path)
	year, err := strconv.Atoi(filepath.Base(dir))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, ErrNoYear)
	}

	name := strings.TrimSuffix(base, ext)
	normalised := normaliseName(name)

	f := &File{
		Path:     path,
		Dir:      dir,
		BaseName: base,
		Name:     name,
		Year:     year,
		Format:   format,
	}
	if normalised != "" {
		f.LevelCode = normalised[:1]
		f.RootName = normalised[1:]
	}

	if format == FormatDAT {
		layout := filepath.Join(dir, name+".lyt")
		if _, err := os.Stat(layout); err == nil {
			f.LayoutPath = layout
		}
	}
	return f, nil
}

func normaliseName(name string) string {
	for _, r := range prefixRewrites {
		if strings.HasPrefix(name, r.old) {
			return r.new + name[len(r.old):]
		}
	}
	return name
}

// Level returns the reporting level of the file, or "" when the name does not
// start with a known level.
func (f *File) Level() string {
	if f.LevelCode == "" {
		return ""
	}
	return levelCodes[f.LevelCode[0]]
}

// LevelRootName is the level code followed by the root name, e.g. "cfin".
func (f *File) LevelRootName() string {
	return f.LevelCode + f.RootName
}

func (f *File) String() string {
	return fmt.Sprintf("<%d %s>", f.Year, f.Name)
}
