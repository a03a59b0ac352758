package decoder

import "fmt"

// Step is one piece of evidence consumed during a decode and the fragment it produced.
type Step struct {
	Evidence string `json:"evidence"`
	Offset   int    `json:"offset"`
	Facts    Facts  `json:"facts"`
	Note     string `json:"note,omitempty"`
}

// Tree is a compiled, immutable rule tree for one dataset kind and revision.
// A Tree is safe for concurrent use.
type Tree struct {
	kind     string
	revision int
	root     *node
}

// Compile validates and compiles a root rule set. Invalid regular expressions,
// empty transitions, patterns that can match zero characters and resolver
// mismatches are reported as ErrInvalidGrammar.
func Compile(kind string, revision int, root RuleSet) (*Tree, error) {
	path := kind
	if revision != 0 {
		path = fmt.Sprintf("%s@%d", kind, revision)
	}
	n, err := compileSets(path, []RuleSet{root})
	if err != nil {
		return nil, err
	}
	return &Tree{kind: kind, revision: revision, root: n}, nil
}

// Kind returns the dataset kind the tree decodes.
func (t *Tree) Kind() string { return t.kind }

// Revision returns the report year of the revision, or 0 for the base grammar.
func (t *Tree) Revision() int { return t.revision }

// Decode decodes the whole code against the tree. The returned steps
// concatenate to exactly code.
func (t *Tree) Decode(code string) ([]Step, error) {
	steps, end, err := t.walk(code, 0, nil)
	if err != nil {
		return nil, err
	}
	if end < len(code) {
		return nil, unparsed(code, end, steps)
	}
	return steps, nil
}

// walk runs the engine from offset start and stops at the first decision point
// with no matching transition. It returns the cursor where it stopped.
func (t *Tree) walk(code string, start int, steps []Step) ([]Step, int, error) {
	cursor := start
	n := t.root
	for cursor < len(code) {
		e, loc := n.match(code[cursor:])
		if e == nil {
			break
		}

		var err error
		steps, err = e.emit(code, cursor, loc, steps)
		if err != nil {
			return steps, cursor, err
		}
		cursor += e.matchLen(loc)

		n = e.rule.next
	}
	return steps, cursor, nil
}

// emit appends the steps for one matched transition.
func (e *edge) emit(code string, cursor int, loc []int, steps []Step) ([]Step, error) {
	n := e.matchLen(loc)
	if n == 0 {
		return steps, &DecodeError{
			Err:       ErrInvariant,
			Code:      code,
			Offset:    cursor,
			Remainder: code[cursor:],
			Partial:   mergeSteps(steps),
			Cause:     fmt.Errorf("transition %s consumed nothing", e.on),
		}
	}

	r := e.rule
	if len(r.resolvers) == 0 {
		return append(steps, Step{
			Evidence: code[cursor : cursor+n],
			Offset:   cursor,
			Facts:    r.facts.Clone(),
			Note:     r.note,
		}), nil
	}

	note := r.note
	pos := 0
	for _, g := range e.groups {
		start, end := loc[2*g.index], loc[2*g.index+1]
		if start < 0 {
			continue
		}
		if start < pos {
			return steps, &DecodeError{
				Err:       ErrInvariant,
				Code:      code,
				Offset:    cursor + start,
				Remainder: code[cursor+start:],
				Group:     g.name,
				Partial:   mergeSteps(steps),
				Cause:     fmt.Errorf("group %q overlaps earlier evidence", g.name),
			}
		}
		if start > pos {
			steps = append(steps, Step{Evidence: code[cursor+pos : cursor+start], Offset: cursor + pos, Facts: Facts{}})
		}

		text := code[cursor+start : cursor+end]
		facts, entryNote, err := r.resolvers[g.name].resolve(g.name, text)
		if err != nil {
			return steps, &DecodeError{
				Err:       ErrUnresolvedCapture,
				Code:      code,
				Offset:    cursor + start,
				Remainder: code[cursor+start:],
				Group:     g.name,
				Partial:   mergeSteps(steps),
				Cause:     err,
			}
		}

		step := Step{Evidence: text, Offset: cursor + start, Facts: facts, Note: note}
		if entryNote != "" {
			step.Note = entryNote
		}
		steps = append(steps, step)
		note = ""
		pos = end
	}

	if pos < n {
		steps = append(steps, Step{Evidence: code[cursor+pos : cursor+n], Offset: cursor + pos, Facts: Facts{}, Note: note})
	}
	return steps, nil
}

func unparsed(code string, offset int, steps []Step) *DecodeError {
	return &DecodeError{
		Err:       ErrUnparsedRemainder,
		Code:      code,
		Offset:    offset,
		Remainder: code[offset:],
		Partial:   mergeSteps(steps),
	}
}

// mergeSteps layers the fragments of steps in order. Later fragments win.
func mergeSteps(steps []Step) Facts {
	merged := Facts{}
	for _, s := range steps {
		merged.Merge(s.Facts)
	}
	return merged
}

// VerifyEvidence checks that steps concatenate to exactly code with contiguous
// offsets. A violation means a grammar claimed text twice or skipped text.
func VerifyEvidence(code string, steps []Step) error {
	pos := 0
	for i, s := range steps {
		if s.Offset != pos {
			return fmt.Errorf("%w: step %d at offset %d, expected %d", ErrInvariant, i, s.Offset, pos)
		}
		if len(code)-pos < len(s.Evidence) || code[pos:pos+len(s.Evidence)] != s.Evidence {
			return fmt.Errorf("%w: step %d evidence %q does not prefix %q", ErrInvariant, i, s.Evidence, code[pos:])
		}
		pos += len(s.Evidence)
	}
	if pos != len(code) {
		return fmt.Errorf("%w: evidence covers %d of %d characters of %q", ErrInvariant, pos, len(code), code)
	}
	return nil
}
