package decoder

import (
	"fmt"
	"strings"
)

// Decoder decodes one column code for a dataset kind and report year.
type Decoder interface {
	Decode(kind string, year int, code string) (*Record, error)
}

// specialNames are whole column names that are not encoded codes.
var specialNames = map[string]Facts{
	"campus":   {"field": "key"},
	"district": {"field": "key"},
	"region":   {"field": "key"},
	"region_n": {"field": "key"},
	"campname": {"field": "name"},
	"distname": {"field": "name"},
	"class":    {"field": "school-type"},
	"paircamp": {"field": "paired-campus.code"},
	"pairname": {"field": "paired-campus.name"},
	"cflchart": {"field": "is-charter-school"},
	"dflchart": {"field": "is-charter-district"},
	"cntyname": {"field": "county-name"},
	"county":   {"field": "county-number"},
	"grdspan":  {"field": "grade-span"},
	"grdtype":  {"field": "grade-type"},
	// Performance-based monitoring, special education results status.
	"secs": {"field": "pbm-results-status"},
}

// levels maps the leading character of a code to its reporting level. B and G
// are campus rows holding the mean of the campus's TEA peer group.
var levels = map[byte]Facts{
	'B': {"level": "campus", "group": "tea-peers"},
	'G': {"level": "campus", "group": "tea-peers"},
	'C': {"level": "campus"},
	'D': {"level": "district"},
	'R': {"level": "region"},
	'S': {"level": "state"},
}

// suffixes are whole remainders after the level character.
var suffixes = map[string]Facts{
	"suprate": {"field": "accountability-rating-supplemental-acknowledgment"},
	"_rating": {"field": "accountability-rating"},
}

// measures are trailing one-letter measure codes left unclaimed by kind grammars.
var measures = map[byte]Facts{
	'T': {"measure": "total"},
	'C': {"measure": "count"},
	'P': {"measure": "percent"},
	'K': {"measure": "per-pupil"},
	'A': {"measure": "average"},
	'R': {"measure": "rate"},
}

// Pipeline applies the structure shared by every dataset kind around the
// kind-specific rule tree selected from a registry.
type Pipeline struct {
	registry *Registry
}

// NewPipeline creates a pipeline over registry. A nil registry uses DefaultRegistry.
func NewPipeline(registry *Registry) *Pipeline {
	if registry == nil {
		registry = DefaultRegistry
	}
	return &Pipeline{registry: registry}
}

// Registry returns the registry the pipeline selects grammars from.
func (p *Pipeline) Registry() *Registry {
	return p.registry
}

// Decode decodes code as a column of a kind extract from the given report year.
func (p *Pipeline) Decode(kind string, year int, code string) (*Record, error) {
	tree, err := p.registry.Select(kind, year)
	if err != nil {
		return nil, err
	}
	if code == "" {
		return nil, &DecodeError{Err: ErrEmptyCode, Code: code, Partial: Facts{}}
	}

	steps, err := p.decode(tree, code)
	if err != nil {
		return nil, err
	}
	if err := VerifyEvidence(code, steps); err != nil {
		return nil, fmt.Errorf("decode %s %q: %w", kind, code, err)
	}

	rec := newRecord(kind, year, code, steps)
	rec.Revision = tree.Revision()
	return rec, nil
}

func (p *Pipeline) decode(tree *Tree, code string) ([]Step, error) {
	if facts, ok := specialNames[strings.ToLower(code)]; ok {
		return []Step{{Evidence: code, Offset: 0, Facts: facts.Clone()}}, nil
	}

	level, ok := levels[code[0]]
	if !ok {
		return nil, unparsed(code, 0, nil)
	}
	steps := []Step{{Evidence: code[:1], Offset: 0, Facts: level.Clone()}}

	if facts, ok := suffixes[strings.ToLower(code[1:])]; ok {
		return append(steps, Step{Evidence: code[1:], Offset: 1, Facts: facts.Clone()}), nil
	}

	steps, cursor, err := tree.walk(code, 1, steps)
	if err != nil {
		return nil, err
	}

	if len(code)-cursor == 1 {
		if facts, ok := measures[code[cursor]]; ok {
			steps = append(steps, Step{Evidence: code[cursor:], Offset: cursor, Facts: facts.Clone()})
			cursor++
		}
	}
	if cursor < len(code) {
		return nil, unparsed(code, cursor, steps)
	}
	return steps, nil
}
