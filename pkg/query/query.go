package query

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Ruscigno/AlphaPulse/pkg/schema"
)

// Engine validates candidate parameter sets against a schema Registry and
// composes canonical requests from them. It is stateless apart from the
// Registry reference; the Registry is immutable, so an Engine is safe for
// arbitrary concurrent use.
type Engine struct {
	registry *schema.Registry
}

// NewEngine creates an Engine over the given Registry.
func NewEngine(registry *schema.Registry) *Engine {
	return &Engine{registry: registry}
}

// Registry returns the Registry this Engine validates against.
func (e *Engine) Registry() *schema.Registry {
	return e.registry
}

// ValidationError reports every violation found in a single call: all missing
// required parameter names and all unsupported parameter names. Both checks
// always run, so a caller can fix every problem in one round-trip.
type ValidationError struct {
	Function    string   `json:"function"`
	Missing     []string `json:"missing,omitempty"`
	Unsupported []string `json:"unsupported,omitempty"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, 2)
	if len(e.Missing) > 0 {
		parts = append(parts, fmt.Sprintf("missing required parameters: %s", strings.Join(e.Missing, ", ")))
	}
	if len(e.Unsupported) > 0 {
		parts = append(parts, fmt.Sprintf("unsupported parameters: %s", strings.Join(e.Unsupported, ", ")))
	}
	return fmt.Sprintf("invalid call to %s: %s", e.Function, strings.Join(parts, "; "))
}

// ValidatedParams is a parameter set that passed validation for one function.
// It holds exactly the supplied entries: nothing is dropped and no defaults
// are injected. Defaults belong to the transport collaborator.
type ValidatedParams struct {
	spec   *schema.FunctionSpec
	values map[string]string
}

// Function returns the function id the parameters were validated for.
func (p *ValidatedParams) Function() string {
	return p.spec.ID
}

// Spec returns the FunctionSpec the parameters were validated against.
func (p *ValidatedParams) Spec() *schema.FunctionSpec {
	return p.spec
}

// Get returns the supplied value for name.
func (p *ValidatedParams) Get(name string) (string, bool) {
	v, ok := p.values[name]
	return v, ok
}

// Values returns a copy of the supplied parameters.
func (p *ValidatedParams) Values() map[string]string {
	out := make(map[string]string, len(p.values))
	for k, v := range p.values {
		out[k] = v
	}
	return out
}

// Validate checks the supplied parameters against the contract of functionID.
// It returns schema.UnknownFunctionError when the Registry has no entry for
// functionID, and a *ValidationError carrying the complete missing and
// unsupported name lists when the parameter set violates the contract.
func (e *Engine) Validate(functionID string, params map[string]string) (*ValidatedParams, error) {
	spec, err := e.registry.Lookup(functionID)
	if err != nil {
		return nil, err
	}

	// Missing names come out in the schema's declared order; unsupported
	// names are sorted, map iteration order being unstable.
	var missing []string
	for _, name := range spec.Required {
		if _, ok := params[name]; !ok {
			missing = append(missing, name)
		}
	}
	var unsupported []string
	for name := range params {
		if !spec.IsSupported(name) {
			unsupported = append(unsupported, name)
		}
	}
	sort.Strings(unsupported)

	if len(missing) > 0 || len(unsupported) > 0 {
		return nil, &ValidationError{
			Function:    functionID,
			Missing:     missing,
			Unsupported: unsupported,
		}
	}

	values := make(map[string]string, len(params))
	for k, v := range params {
		values[k] = v
	}
	return &ValidatedParams{spec: spec, values: values}, nil
}

// ValidateAndBuild validates the supplied parameters and, on success, builds
// the canonical request. This is the contract exposed to the transport
// collaborator.
func (e *Engine) ValidateAndBuild(functionID string, params map[string]string) (*CanonicalRequest, error) {
	validated, err := e.Validate(functionID, params)
	if err != nil {
		return nil, err
	}
	return Build(validated), nil
}
