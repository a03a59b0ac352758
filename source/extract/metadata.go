package extract

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/net/html"
)

// ReferenceYear is the first report year published with HTML reference files.
const ReferenceYear = 2013

// ColumnDescription pairs a column name with one description of it.
type ColumnDescription struct {
	Name        string
	Description string
}

// ColumnMeta collects what layout and reference files say about one column.
type ColumnMeta struct {
	Descriptions map[string]struct{}
	Sources      map[string]struct{}
}

// Metadata maps column names to their collected descriptions.
type Metadata map[string]*ColumnMeta

// Add records a description of column found in source.
func (m Metadata) Add(column, description, source string) {
	meta, ok := m[column]
	if !ok {
		meta = &ColumnMeta{
			Descriptions: make(map[string]struct{}),
			Sources:      make(map[string]struct{}),
		}
		m[column] = meta
	}
	if description != "" {
		meta.Descriptions[description] = struct{}{}
	}
	if source != "" {
		meta.Sources[source] = struct{}{}
	}
}

// Merge adds everything in other to m.
func (m Metadata) Merge(other Metadata) {
	for column, meta := range other {
		for d := range meta.Descriptions {
			m.Add(column, d, "")
		}
		for s := range meta.Sources {
			m.Add(column, "", s)
		}
	}
}

// Descriptions returns the sorted descriptions of column.
func (m Metadata) Descriptions(column string) []string {
	meta, ok := m[column]
	if !ok {
		return nil
	}
	return sortedKeys(meta.Descriptions)
}

// Sources returns the sorted source paths that described column.
func (m Metadata) Sources(column string) []string {
	meta, ok := m[column]
	if !ok {
		return nil
	}
	return sortedKeys(meta.Sources)
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// descriptionConverter turns description cell markup into plain text.
var descriptionConverter = md.NewConverter("", true, nil)

func cellDescription(cell *html.Node) string {
	text, err := descriptionConverter.ConvertString(innerHTML(cell))
	if err != nil {
		return textContent(cell)
	}
	return strings.Join(strings.Fields(text), " ")
}

// ParseHTMLMetadata reads a tabular reference file. The reference table is the
// one with a thead; each row holds the column name in its first cell and the
// description in its fourth.
func ParseHTMLMetadata(r io.Reader) ([]ColumnDescription, error) {
	doc, err := parseHTML(r)
	if err != nil {
		return nil, err
	}

	theads := findAll(doc, "thead")
	if len(theads) == 0 {
		return nil, nil
	}
	table := theads[0].Parent

	var out []ColumnDescription
	for _, row := range findAll(table, "tr") {
		if row.Parent != nil && row.Parent.Data == "thead" {
			continue
		}
		cs := cells(row)
		if len(cs) < 4 {
			continue
		}
		name := textContent(cs[0])
		description := cellDescription(cs[3])
		if name != "" && description != "" {
			out = append(out, ColumnDescription{Name: name, Description: description})
		}
	}
	return out, nil
}

// ParseRefMetadata reads a "ref" reference file, where each column is a
// paragraph of the form "NAME -- label".
func ParseRefMetadata(r io.Reader) ([]ColumnDescription, error) {
	doc, err := parseHTML(r)
	if err != nil {
		return nil, err
	}

	var out []ColumnDescription
	for _, p := range findAll(doc, "p") {
		name, label, ok := strings.Cut(textContent(p), "--")
		if !ok {
			continue
		}
		out = append(out, ColumnDescription{Name: strings.TrimSpace(name), Description: strings.TrimSpace(label)})
	}
	return out, nil
}

// referenceFile identifies the reference files that describe one extract.
type referenceFile struct {
	dir       string
	year      int
	name      string // extract file name without extension
	levelRoot string // level code plus root name
	rootName  string
}

// ReferenceMetadata adds descriptions from the year's HTML reference files
// matching f. Years before ReferenceYear have none.
func (f *File) ReferenceMetadata(m Metadata) error {
	return loadReferenceMetadata(referenceFile{
		dir:       f.Dir,
		year:      f.Year,
		name:      f.Name,
		levelRoot: f.LevelRootName(),
		rootName:  f.RootName,
	}, m)
}

// ExtraMetadata adds 2013 reference descriptions whose file names match no
// extract: the comp and othr references at every level.
func ExtraMetadata(root string, m Metadata) error {
	dir := filepath.Join(root, fmt.Sprint(ReferenceYear))
	for _, rootName := range []string{"comp", "othr"} {
		for _, level := range []string{"c", "d", "r", "s"} {
			ref := referenceFile{
				dir:       dir,
				year:      ReferenceYear,
				levelRoot: level + rootName,
				rootName:  rootName,
			}
			if err := loadReferenceMetadata(ref, m); err != nil {
				return err
			}
		}
	}
	return nil
}

func loadReferenceMetadata(ref referenceFile, m Metadata) error {
	if ref.year < ReferenceYear {
		return nil
	}

	var patterns []string
	if ref.name != "" {
		patterns = append(patterns, ref.name+"*.html")
	}
	patterns = append(patterns, ref.levelRoot+"*.html")

	seen := make(map[string]bool)
	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(filepath.Join(ref.dir, pattern))
		if err != nil {
			return fmt.Errorf("glob reference files: %w", err)
		}
		sort.Strings(matches)

		for _, path := range matches {
			if seen[path] {
				continue
			}
			seen[path] = true

			descriptions, err := parseReferenceFile(path, ref.rootName == "ref")
			if err != nil {
				return err
			}
			for _, d := range descriptions {
				m.Add(d.Name, d.Description, path)
			}
		}
	}
	return nil
}

func parseReferenceFile(path string, paragraphs bool) ([]ColumnDescription, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open reference file: %w", err)
	}
	defer f.Close()

	var out []ColumnDescription
	if paragraphs {
		out, err = ParseRefMetadata(f)
	} else {
		out, err = ParseHTMLMetadata(f)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return out, nil
}
