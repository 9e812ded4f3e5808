package schema

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// The bundled function->parameter table, same shape as the external asset:
// a JSON mapping from function id to {verbose, desc, req, opt}.
//
//go:embed av_func_param_map.json
var defaultAsset []byte

// rawEntry mirrors one asset entry. Req and Opt are pointers so a missing
// field can be told apart from an empty list; both are mandatory.
type rawEntry struct {
	Verbose string    `json:"verbose"`
	Desc    string    `json:"desc"`
	Req     *[]string `json:"req"`
	Opt     *[]string `json:"opt"`
}

// Load reads a schema asset from r and builds an immutable Registry.
// The asset must be a JSON mapping of function id to entry; every entry must
// carry req and opt lists that are internally duplicate-free and mutually
// disjoint. Any violation yields a *SchemaLoadError and no Registry.
// Load keeps no reference to the raw asset after it returns.
func Load(r io.Reader) (*Registry, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, &SchemaLoadError{Reason: "reading asset", Cause: err}
	}

	var entries map[string]rawEntry
	dec := json.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(&entries); err != nil {
		return nil, &SchemaLoadError{Reason: "asset is not a mapping of function id to entry", Cause: err}
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, &SchemaLoadError{Reason: "trailing data after asset mapping"}
	}
	if len(entries) == 0 {
		return nil, &SchemaLoadError{Reason: "asset declares no functions"}
	}

	specs := make(map[string]*FunctionSpec, len(entries))
	for id, entry := range entries {
		if id == "" {
			return nil, &SchemaLoadError{Reason: "empty function id"}
		}
		if entry.Req == nil {
			return nil, &SchemaLoadError{Function: id, Reason: "missing req field"}
		}
		if entry.Opt == nil {
			return nil, &SchemaLoadError{Function: id, Reason: "missing opt field"}
		}
		req, opt := *entry.Req, *entry.Opt
		if dup := firstDuplicate(req); dup != "" {
			return nil, &SchemaLoadError{Function: id, Reason: fmt.Sprintf("duplicate required parameter %q", dup)}
		}
		if dup := firstDuplicate(opt); dup != "" {
			return nil, &SchemaLoadError{Function: id, Reason: fmt.Sprintf("duplicate optional parameter %q", dup)}
		}
		if overlap := firstOverlap(req, opt); overlap != "" {
			return nil, &SchemaLoadError{Function: id, Reason: fmt.Sprintf("parameter %q is both required and optional", overlap)}
		}
		specs[id] = newFunctionSpec(id, entry.Verbose, entry.Desc, req, opt)
	}
	return newRegistry(specs), nil
}

// LoadFile loads a schema asset from disk.
func LoadFile(path string) (*Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &SchemaLoadError{Reason: fmt.Sprintf("opening asset %s", path), Cause: err}
	}
	defer f.Close()
	return Load(f)
}

// LoadDefault builds a Registry from the bundled asset.
func LoadDefault() (*Registry, error) {
	return Load(bytes.NewReader(defaultAsset))
}

func firstDuplicate(names []string) string {
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		if _, ok := seen[name]; ok {
			return name
		}
		seen[name] = struct{}{}
	}
	return ""
}

func firstOverlap(a, b []string) string {
	set := make(map[string]struct{}, len(a))
	for _, name := range a {
		set[name] = struct{}{}
	}
	for _, name := range b {
		if _, ok := set[name]; ok {
			return name
		}
	}
	return ""
}
