package decoder

import (
	"fmt"
	"sort"
)

// Resolver turns the text captured by one named group into a fact fragment.
// Implementations are Lookup and Transform.
type Resolver interface {
	resolve(group, text string) (Facts, string, error)
}

// Lookup resolves a capture by exact dictionary lookup on the captured text.
// A missing key is a decode failure; there is no default.
type Lookup map[string]Outcome

func (l Lookup) resolve(group, text string) (Facts, string, error) {
	o, ok := l[text]
	if !ok {
		return nil, "", fmt.Errorf("no %s entry for %q", group, text)
	}
	o, note := unwrapOutcome(o)
	switch v := o.(type) {
	case Value:
		return Facts{group: string(v)}, note, nil
	case Facts:
		return v.Clone(), note, nil
	default:
		return nil, "", fmt.Errorf("unsupported %s entry for %q", group, text)
	}
}

// Transform resolves a capture by applying a function to the captured text.
// The result is emitted as {group: value}. Returning an error rejects the capture.
type Transform func(text string) (any, error)

func (t Transform) resolve(group, text string) (Facts, string, error) {
	v, err := t(text)
	if err != nil {
		return nil, "", err
	}
	return Facts{group: v}, "", nil
}

// Resolvers maps capture group names to their resolvers.
type Resolvers map[string]Resolver

// Rule is what a matched transition contributes: static facts or per-group
// resolvers, plus the rule sets that become active next.
type Rule struct {
	Facts     Facts
	Resolvers Resolvers
	Children  []RuleSet
	Note      string
}

// Terminal returns a rule that emits facts and has no children.
func Terminal(facts Facts) Rule {
	return Rule{Facts: facts}
}

// Branch returns a rule that emits facts and continues with the children.
func Branch(facts Facts, children ...RuleSet) Rule {
	return Rule{Facts: facts, Children: children}
}

// Capture returns a rule that resolves named groups and continues with the children.
func Capture(resolvers Resolvers, children ...RuleSet) Rule {
	return Rule{Resolvers: resolvers, Children: children}
}

// Unconfirmed returns a copy of the rule flagged with an unconfirmed-mapping note.
func (r Rule) Unconfirmed(note string) Rule {
	r.Note = note
	return r
}

// Entry pairs a transition with the rule it leads to.
type Entry struct {
	On   Transition
	Rule Rule
}

// RuleSet is one ordered decision point.
type RuleSet []Entry

// Literal returns an entry for an exact prefix transition.
func Literal(text string, rule Rule) Entry {
	return Entry{On: Transition{Text: text}, Rule: rule}
}

// Pattern returns an entry for a regular expression transition anchored at the cursor.
func Pattern(expr string, rule Rule) Entry {
	return Entry{On: Transition{Text: expr, Regexp: true}, Rule: rule}
}

// Literals builds a rule set of terminal literal entries. Longer literals are
// placed first so a literal never shadows one it prefixes.
func Literals(table map[string]Facts) RuleSet {
	keys := make([]string, 0, len(table))
	for k := range table {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})

	set := make(RuleSet, 0, len(keys))
	for _, k := range keys {
		set = append(set, Literal(k, Terminal(table[k])))
	}
	return set
}
