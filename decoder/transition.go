package decoder

import (
	"fmt"
	"regexp"
	"strings"
)

// Transition is a test that may consume part of the remainder: an exact,
// case-sensitive literal prefix or a regular expression anchored at the cursor.
type Transition struct {
	Text   string
	Regexp bool
}

func (t Transition) String() string {
	if t.Regexp {
		return "/" + t.Text + "/"
	}
	return fmt.Sprintf("%q", t.Text)
}

type namedGroup struct {
	index int
	name  string
}

// edge is a compiled transition with its compiled rule.
type edge struct {
	on     Transition
	re     *regexp.Regexp
	groups []namedGroup
	rule   *compiledRule
}

type compiledRule struct {
	facts     Facts
	resolvers Resolvers
	note      string
	next      *node
}

// node is a compiled decision point: the concatenation of one or more rule sets.
// Literals are tried before patterns, each in declaration order.
type node struct {
	literals []*edge
	patterns []*edge
}

var emptyNode = &node{}

// match returns the first edge matching at the start of rem and the match
// locations (nil for literals).
func (n *node) match(rem string) (*edge, []int) {
	for _, e := range n.literals {
		if strings.HasPrefix(rem, e.on.Text) {
			return e, nil
		}
	}
	for _, e := range n.patterns {
		if loc := e.re.FindStringSubmatchIndex(rem); loc != nil {
			return e, loc
		}
	}
	return nil, nil
}

// matchLen is the number of characters consumed by a match.
func (e *edge) matchLen(loc []int) int {
	if e.re == nil {
		return len(e.on.Text)
	}
	return loc[1]
}

func compileEdge(path string, entry Entry) (*edge, error) {
	e := &edge{on: entry.On}
	if entry.On.Text == "" {
		return nil, fmt.Errorf("%w: %s: empty transition", ErrInvalidGrammar, path)
	}

	if entry.On.Regexp {
		re, err := regexp.Compile(`^(?:` + entry.On.Text + `)`)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidGrammar, path, err)
		}
		if re.MatchString("") {
			return nil, fmt.Errorf("%w: %s: pattern can match zero characters", ErrInvalidGrammar, path)
		}
		e.re = re
		for i, name := range re.SubexpNames() {
			if name != "" {
				e.groups = append(e.groups, namedGroup{index: i, name: name})
			}
		}
	}

	rule := entry.Rule
	if len(rule.Facts) > 0 && len(rule.Resolvers) > 0 {
		return nil, fmt.Errorf("%w: %s: rule declares both facts and resolvers", ErrInvalidGrammar, path)
	}
	if len(rule.Resolvers) > 0 && e.re == nil {
		return nil, fmt.Errorf("%w: %s: literal transition cannot carry resolvers", ErrInvalidGrammar, path)
	}
	if len(rule.Resolvers) > 0 {
		declared := make(map[string]bool, len(e.groups))
		for _, g := range e.groups {
			if _, ok := rule.Resolvers[g.name]; !ok {
				return nil, fmt.Errorf("%w: %s: group %q has no resolver", ErrInvalidGrammar, path, g.name)
			}
			declared[g.name] = true
		}
		for name, r := range rule.Resolvers {
			if !declared[name] {
				return nil, fmt.Errorf("%w: %s: resolver %q has no matching group", ErrInvalidGrammar, path, name)
			}
			if r == nil {
				return nil, fmt.Errorf("%w: %s: resolver %q is nil", ErrInvalidGrammar, path, name)
			}
		}
	}

	next, err := compileSets(path+" > "+entry.On.String(), rule.Children)
	if err != nil {
		return nil, err
	}

	e.rule = &compiledRule{
		facts:     rule.Facts.Clone(),
		resolvers: rule.Resolvers,
		note:      rule.Note,
		next:      next,
	}
	return e, nil
}

// compileSets compiles the concatenation of sets into one decision point.
func compileSets(path string, sets []RuleSet) (*node, error) {
	n := &node{}
	for _, set := range sets {
		for _, entry := range set {
			e, err := compileEdge(path+" > "+entry.On.String(), entry)
			if err != nil {
				return nil, err
			}
			if e.re == nil {
				n.literals = append(n.literals, e)
			} else {
				n.patterns = append(n.patterns, e)
			}
		}
	}
	if len(n.literals) == 0 && len(n.patterns) == 0 {
		return emptyNode, nil
	}
	return n, nil
}
