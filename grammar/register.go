package grammar

import (
	"fmt"
	"sort"

	"github.com/c360studio/semaeis/decoder"
)

func init() {
	if err := Register(decoder.DefaultRegistry); err != nil {
		panic(fmt.Sprintf("grammar: %v", err))
	}
}

// baseGrammars apply to every report year of their kind.
var baseGrammars = map[string]func() decoder.RuleSet{
	"fin":   fin,
	"othr":  othr,
	"ref":   ref,
	"staf":  staf,
	"stud":  stud,
	"taas":  taas,
	"tasa":  taas,
	"tasb":  taas,
	"tasc":  taas,
	"cad":   cad,
	"comp":  comp,
	"taks":  taks,
	"taks1": taks,
	"taks2": taks,
	"taks3": taks,
	"taks4": taks,
	"taks5": taks,
}

// revisions apply to one report year only.
var revisions = []struct {
	kind string
	year int
	root func() decoder.RuleSet
}{
	{"fin", 2012, fin2012},
	{"part1", 2013, participation2013},
	{"part2", 2013, participation2013},
}

// Kinds returns every dataset kind with at least one grammar, sorted.
func Kinds() []string {
	seen := make(map[string]bool)
	var kinds []string
	for kind := range baseGrammars {
		seen[kind] = true
		kinds = append(kinds, kind)
	}
	for _, rev := range revisions {
		if !seen[rev.kind] {
			seen[rev.kind] = true
			kinds = append(kinds, rev.kind)
		}
	}
	sort.Strings(kinds)
	return kinds
}

// Register compiles every grammar into r.
func Register(r *decoder.Registry) error {
	for kind, root := range baseGrammars {
		if err := r.Register(kind, root()); err != nil {
			return err
		}
	}
	for _, rev := range revisions {
		if err := r.RegisterRevision(rev.kind, rev.year, rev.root()); err != nil {
			return err
		}
	}
	return nil
}
