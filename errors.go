package strictmodel

import (
	"errors"
	"fmt"
	"strings"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	CodeTypeMismatch         = "type_mismatch"
	CodeArityMismatch        = "arity_mismatch"
	CodeMissingRequiredField = "missing_required_field"
	CodeUnknownField         = "unknown_field"
	CodeImmutableRecord      = "immutable_record"
	CodeDuplicateKey         = "duplicate_key"
	CodeUnknownKey           = "unknown_key"
	CodeAmbiguousInput       = "ambiguous_input"
	CodeStructureMismatch    = "structure_mismatch"
	// Record-level rules
	CodeRuleViolation = "rule_violation"
	// Declaration and registry lifecycle
	CodeInvalidSchema  = "invalid_schema"
	CodeRegistrySealed = "registry_sealed"
	// Input decoding (source package)
	CodeParseError     = "parse_error"
	CodeDuplicateField = "duplicate_field"
)

// Issue represents a single failure with the path where it occurred.
type Issue struct {
	Path    Path   // Field names and indices from the root.
	Code    string // One of the codes listed above.
	Message string
	// Expected and Actual describe the declared kind and the kind that was
	// found, when the failure is about a kind.
	Expected string
	Actual   string
	// Alternatives lists every union alternative that was attempted.
	Alternatives []string
	// Rule records the rule name that produced this issue.
	Rule  string
	Cause error // Optional: underlying error.
}

// Issues is a collection of failures that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := min(n, maxShown)
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. type_mismatch at /age
		fmt.Fprintf(b, "%s at %s", it.Code, it.Path.Pointer())
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// Codes returns the code of every issue in order.
func (iss Issues) Codes() []string {
	out := make([]string, len(iss))
	for i, it := range iss {
		out[i] = it.Code
	}
	return out
}

// Unwrap exposes issue causes to errors.Is / errors.As.
func (iss Issues) Unwrap() []error {
	var out []error
	for _, it := range iss {
		if it.Cause != nil {
			out = append(out, it.Cause)
		}
	}
	return out
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// HasCode reports whether err carries at least one issue with the given code.
func HasCode(err error, code string) bool {
	iss, ok := AsIssues(err)
	if !ok {
		return false
	}
	for _, it := range iss {
		if it.Code == code {
			return true
		}
	}
	return false
}

// rebase prefixes every issue path with base.
func (iss Issues) rebase(base Path) Issues {
	if len(base) == 0 {
		return iss
	}
	out := make(Issues, len(iss))
	for i, it := range iss {
		it.Path = base.Join(it.Path)
		out[i] = it
	}
	return out
}
