package report

// The fixed taxonomy of reasons a declaration can be rejected. Kernel code
// creates these with the offending terms attached as opaque values; rendering
// them is left to the caller, which keeps the pretty printer out of the hot
// path.

import (
	"fmt"

	"github.com/quern-dev/quern/source/name"
)

type Kind int

const (
	UNKNOWN_REFERENCE Kind = iota
	DUPLICATE_NAME
	UNIVERSE_ARITY
	NOT_A_FUNCTION
	TYPE_MISMATCH
	MALFORMED_CONSTRUCTOR
	BAD_COMPUTATION_RULE
	STACK_EXHAUSTED
)

func (k Kind) String() string {
	switch k {
	case UNKNOWN_REFERENCE:
		return "unknown reference"
	case DUPLICATE_NAME:
		return "duplicate name"
	case UNIVERSE_ARITY:
		return "universe arity error"
	case NOT_A_FUNCTION:
		return "not a function"
	case TYPE_MISMATCH:
		return "type mismatch"
	case MALFORMED_CONSTRUCTOR:
		return "malformed constructor"
	case BAD_COMPUTATION_RULE:
		return "bad computation rule"
	case STACK_EXHAUSTED:
		return "stack exhausted"
	}
	return "unknown error"
}

type Error struct {
	Kind    Kind
	Name    *name.Name // the declaration being certified, if known
	Left    any        // offending term(s); for TYPE_MISMATCH, the declared type
	Right   any        // for TYPE_MISMATCH, the inferred type
	Message string
}

func (e *Error) Error() string {
	s := e.Kind.String()
	if e.Name != nil {
		s = s + " in '" + e.Name.String() + "'"
	}
	if e.Message != "" {
		s = s + ": " + e.Message
	}
	return s
}

func New(k Kind, msg string, args ...any) *Error {
	return &Error{Kind: k, Message: fmt.Sprintf(msg, args...)}
}

// Mismatch records a failed conversion between a required and an inferred
// type.
func Mismatch(want, got any) *Error {
	return &Error{Kind: TYPE_MISMATCH, Left: want, Right: got, Message: "inferred type does not match the required type"}
}

// At stamps the error with the declaration it arose in, if it has no owner
// yet.
func At(err error, n *name.Name) error {
	if err == nil {
		return nil
	}
	if e, ok := err.(*Error); ok && e.Name == nil {
		e.Name = n
	}
	return err
}
