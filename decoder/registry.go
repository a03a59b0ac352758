package decoder

import (
	"fmt"
	"sort"
	"sync"
)

// Grammar identifies one registered rule tree.
type Grammar struct {
	Kind     string `json:"kind"`
	Revision int    `json:"revision,omitempty"` // 0 for the base grammar
}

func (g Grammar) String() string {
	if g.Revision == 0 {
		return g.Kind
	}
	return fmt.Sprintf("%s@%d", g.Kind, g.Revision)
}

// Registry maps dataset kinds and report years to rule trees.
type Registry struct {
	mu    sync.RWMutex
	trees map[Grammar]*Tree
}

// DefaultRegistry is the process-wide registry populated by grammar packages in init().
var DefaultRegistry = NewRegistry()

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{trees: make(map[Grammar]*Tree)}
}

// Register compiles root and registers it as the base grammar for kind.
func (r *Registry) Register(kind string, root RuleSet) error {
	return r.register(Grammar{Kind: kind}, root)
}

// RegisterRevision compiles root and registers it for kind in one report year only.
func (r *Registry) RegisterRevision(kind string, year int, root RuleSet) error {
	if year <= 0 {
		return fmt.Errorf("%w: %s: revision year must be positive, got %d", ErrInvalidGrammar, kind, year)
	}
	return r.register(Grammar{Kind: kind, Revision: year}, root)
}

func (r *Registry) register(g Grammar, root RuleSet) error {
	if g.Kind == "" {
		return fmt.Errorf("%w: kind is required", ErrInvalidGrammar)
	}
	tree, err := Compile(g.Kind, g.Revision, root)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.trees[g]; exists {
		return fmt.Errorf("%w: %s already registered", ErrInvalidGrammar, g)
	}
	r.trees[g] = tree
	return nil
}

// MustRegister is Register for use in init(); it panics on configuration errors.
func (r *Registry) MustRegister(kind string, root RuleSet) {
	if err := r.Register(kind, root); err != nil {
		panic(err)
	}
}

// MustRegisterRevision is RegisterRevision for use in init().
func (r *Registry) MustRegisterRevision(kind string, year int, root RuleSet) {
	if err := r.RegisterRevision(kind, year, root); err != nil {
		panic(err)
	}
}

// Select returns the tree registered for exactly (kind, year), falling back to
// the base tree for kind.
func (r *Registry) Select(kind string, year int) (*Tree, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if t, ok := r.trees[Grammar{Kind: kind, Revision: year}]; ok && year != 0 {
		return t, nil
	}
	if t, ok := r.trees[Grammar{Kind: kind}]; ok {
		return t, nil
	}
	return nil, fmt.Errorf("%w for kind %q in year %d", ErrNoGrammar, kind, year)
}

// Has reports whether Select would succeed.
func (r *Registry) Has(kind string, year int) bool {
	_, err := r.Select(kind, year)
	return err == nil
}

// Grammars lists registered grammars sorted by kind then revision.
func (r *Registry) Grammars() []Grammar {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Grammar, 0, len(r.trees))
	for g := range r.trees {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return out[i].Kind < out[j].Kind
		}
		return out[i].Revision < out[j].Revision
	})
	return out
}
