package schema

import "sort"

// Registry is an immutable index of FunctionSpecs keyed by function id.
// It is built once by the loader and is safe for any number of concurrent
// readers without locking. A schema reload produces a fresh Registry; an
// existing one is never mutated.
type Registry struct {
	specs map[string]*FunctionSpec
	ids   []string
}

func newRegistry(specs map[string]*FunctionSpec) *Registry {
	ids := make([]string, 0, len(specs))
	for id := range specs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return &Registry{specs: specs, ids: ids}
}

// Lookup returns the FunctionSpec for id, or an UnknownFunctionError when
// the Registry has no entry for it.
func (r *Registry) Lookup(id string) (*FunctionSpec, error) {
	spec, ok := r.specs[id]
	if !ok {
		return nil, &UnknownFunctionError{Function: id}
	}
	return spec, nil
}

// Functions returns the ids of every registered function, sorted.
func (r *Registry) Functions() []string {
	out := make([]string, len(r.ids))
	copy(out, r.ids)
	return out
}

// Len returns the number of registered functions.
func (r *Registry) Len() int {
	return len(r.specs)
}
