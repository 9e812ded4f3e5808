package query

import (
	"net/url"
	"strings"
)

// FunctionKey is the query parameter naming the API function being called.
const FunctionKey = "function"

// Param is one key-value pair of a canonical request.
type Param struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// CanonicalRequest is the ordered parameter representation of a validated
// call, ready for transport: the function parameter first, then the required
// parameters in the schema's declared order, then any supplied optional
// parameters in the schema's declared order.
type CanonicalRequest struct {
	function string
	params   []Param
}

// Function returns the function id of the request.
func (c *CanonicalRequest) Function() string {
	return c.function
}

// Pairs returns the ordered key-value pairs, function parameter included.
func (c *CanonicalRequest) Pairs() []Param {
	out := make([]Param, len(c.params))
	copy(out, c.params)
	return out
}

// Encode renders the request as a query string, preserving canonical order.
func (c *CanonicalRequest) Encode() string {
	var b strings.Builder
	for i, p := range c.params {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(p.Key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.Value))
	}
	return b.String()
}

// Build composes the canonical request for a validated parameter set.
// It trusts the Validator's guarantee and performs no re-validation;
// parameters absent from the call are simply omitted.
func Build(validated *ValidatedParams) *CanonicalRequest {
	spec := validated.Spec()
	params := make([]Param, 0, 1+len(spec.Required)+len(spec.Optional))
	params = append(params, Param{Key: FunctionKey, Value: spec.ID})
	for _, name := range spec.Required {
		if v, ok := validated.Get(name); ok {
			params = append(params, Param{Key: name, Value: v})
		}
	}
	for _, name := range spec.Optional {
		if v, ok := validated.Get(name); ok {
			params = append(params, Param{Key: name, Value: v})
		}
	}
	return &CanonicalRequest{function: spec.ID, params: params}
}
