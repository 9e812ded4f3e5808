package schema

// FunctionSpec describes the parameter contract of one Alpha Vantage API
// function: which query parameters every call must carry and which ones it
// may carry. Specs are built by the loader and never mutated afterwards.
type FunctionSpec struct {
	// ID is the canonical function identifier, e.g. "SMA" or
	// "TIME_SERIES_INTRADAY". It is the lookup key in the Registry.
	ID string `json:"id"`

	// Label is the human-readable description from the schema asset
	// ("verbose" field). Informational only; kept verbatim, including any
	// stray whitespace present in the asset.
	Label string `json:"label"`

	// Desc is the longer description from the asset. May be empty.
	Desc string `json:"desc,omitempty"`

	// Required and Optional hold parameter names in the order the asset
	// declares them. The two lists are disjoint; the loader rejects assets
	// where they are not.
	Required []string `json:"required"`
	Optional []string `json:"optional"`

	required map[string]struct{}
	optional map[string]struct{}
}

// newFunctionSpec builds a spec and its membership indexes. The caller owns
// the slices; they must not be mutated after construction.
func newFunctionSpec(id, label, desc string, required, optional []string) *FunctionSpec {
	s := &FunctionSpec{
		ID:       id,
		Label:    label,
		Desc:     desc,
		Required: required,
		Optional: optional,
		required: make(map[string]struct{}, len(required)),
		optional: make(map[string]struct{}, len(optional)),
	}
	for _, name := range required {
		s.required[name] = struct{}{}
	}
	for _, name := range optional {
		s.optional[name] = struct{}{}
	}
	return s
}

// IsRequired reports whether name is a required parameter of this function.
func (s *FunctionSpec) IsRequired(name string) bool {
	_, ok := s.required[name]
	return ok
}

// IsOptional reports whether name is an optional parameter of this function.
func (s *FunctionSpec) IsOptional(name string) bool {
	_, ok := s.optional[name]
	return ok
}

// IsSupported reports whether name is a known parameter of this function,
// required or optional.
func (s *FunctionSpec) IsSupported(name string) bool {
	return s.IsRequired(name) || s.IsOptional(name)
}
