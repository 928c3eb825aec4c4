package fingerprint

import (
	"errors"
	"strings"
)

// Kind is a stable category for programmatic error handling.
//
// Encoding itself is total for every type with a canonical form. Errors only
// arise when the reflective encoder meets a value that has none (a nil pointer,
// a func, a cycle) or when a non-digest Sink fails to accept bytes.
//
// Callers should branch on Kind/RuleID rather than matching error strings.
type Kind string

const (
	KindUnsupported Kind = "Unsupported"
	KindNil         Kind = "Nil"
	KindCycle       Kind = "Cycle"
	KindOrder       Kind = "Order"
	KindEnum        Kind = "Enum"
	KindSink        Kind = "Sink"
)

// Rule identifiers carried by *Error.
const (
	RuleUnsupportedType = "FP-TYPE-001"
	RuleInvalidAddr     = "FP-TYPE-002"
	RuleNilPointer      = "FP-NIL-001"
	RuleNilInterface    = "FP-NIL-002"
	RuleCycle           = "FP-CYCLE-001"
	RuleUnorderedKey    = "FP-ORD-001"
	RuleUnknownVariant  = "FP-ENUM-001"
	RuleInvalidEnum     = "FP-ENUM-002"
	RuleSinkWrite       = "FP-SINK-001"
)

// Error is the package's structured error type.
//
// Path names the offending value relative to the encoded root, for example
// ".Shapes[2].Center" or "{\"key\"}". It is empty for top-level failures.
type Error struct {
	Kind    Kind
	RuleID  string
	Path    string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	var b strings.Builder
	b.WriteString("fingerprint: ")
	if e.Path != "" {
		b.WriteString(e.Path)
		b.WriteString(": ")
	}
	b.WriteString(e.Message)
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// IsKind reports whether err is (or wraps) a *Error with the given Kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}

// RuleID returns the stable RuleID for a structured error, or "" if unknown.
func RuleID(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return ""
	}
	return e.RuleID
}
