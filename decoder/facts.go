package decoder

import "sort"

// Facts is a flat fact fragment produced by one matched transition.
type Facts map[string]any

func (Facts) outcome() {}

// Clone returns a shallow copy of the fragment. A nil fragment clones to an empty one.
func (f Facts) Clone() Facts {
	out := make(Facts, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Merge layers other on top of f. Keys in other win.
func (f Facts) Merge(other Facts) {
	for k, v := range other {
		f[k] = v
	}
}

// Keys returns the fragment keys in sorted order.
func (f Facts) Keys() []string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Outcome is what a lookup key resolves to: either a Value stored under the
// capture group's own name or a Facts fragment emitted verbatim.
type Outcome interface {
	outcome()
}

// Value is a plain lookup result, emitted as {group: value}.
type Value string

func (Value) outcome() {}

type unconfirmedOutcome struct {
	Outcome
	note string
}

// Unconfirmed marks a lookup result whose meaning has not been confirmed by a
// domain expert. The note travels with the decode step that used it.
func Unconfirmed(o Outcome, note string) Outcome {
	return unconfirmedOutcome{Outcome: o, note: note}
}

// unwrapOutcome strips the unconfirmed wrapper and returns the note, if any.
func unwrapOutcome(o Outcome) (Outcome, string) {
	if u, ok := o.(unconfirmedOutcome); ok {
		return u.Outcome, u.note
	}
	return o, ""
}
