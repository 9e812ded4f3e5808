package schema

import "fmt"

// SchemaLoadError reports a malformed schema asset. It is fatal at startup:
// a process must not serve validation traffic without a loaded Registry.
type SchemaLoadError struct {
	Function string // function entry that failed, empty for asset-level problems
	Reason   string
	Cause    error
}

func (e *SchemaLoadError) Error() string {
	if e.Function != "" {
		return fmt.Sprintf("schema load failed for function %q: %s", e.Function, e.Reason)
	}
	return fmt.Sprintf("schema load failed: %s", e.Reason)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

// UnknownFunctionError reports a lookup for a function id the Registry does
// not know. Recoverable; surfaced to the caller.
type UnknownFunctionError struct {
	Function string
}

func (e *UnknownFunctionError) Error() string {
	return fmt.Sprintf("unknown function %q", e.Function)
}
