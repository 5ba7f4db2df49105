package testtype

// #region registry

// TestTypeSParameters is the built-in strategy identifier.
const TestTypeSParameters = "S-Parameters"

// Registry is an immutable test-type lookup table. It is built once at
// process start and handed to the orchestrator; no registration or
// removal happens afterwards, so reads need no locking.
type Registry struct {
	types map[string]TestType
}

// NewRegistry builds a registry from the given strategies. A later
// strategy with a duplicate name replaces the earlier one.
func NewRegistry(types ...TestType) *Registry {
	m := make(map[string]TestType, len(types))
	for _, t := range types {
		m[t.Name()] = t
	}
	return &Registry{types: m}
}

// DefaultRegistry returns a registry holding the built-in strategies.
func DefaultRegistry() *Registry {
	return NewRegistry(NewSParameters())
}

// Get looks up a strategy by identifier.
func (r *Registry) Get(name string) (TestType, error) {
	t, ok := r.types[name]
	if !ok {
		return nil, &UnknownTestTypeError{Name: name}
	}
	return t, nil
}

// Names lists registered identifiers (unordered).
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.types))
	for n := range r.types {
		names = append(names, n)
	}
	return names
}

// #endregion
