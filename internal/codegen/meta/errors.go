package meta

import (
	"errors"
	"fmt"
	"go/token"
)

// ErrorKind classifies a ProcessingError.
type ErrorKind string

const (
	MissingIdentifiers     ErrorKind = "MissingIdentifiers"
	MissingTargetInterface ErrorKind = "MissingTargetInterface"
	MalformedDirective     ErrorKind = "MalformedDirective"
	OverlappingIdentifiers ErrorKind = "OverlappingIdentifiers"
	UnresolvedInterface    ErrorKind = "UnresolvedInterface"
	UnexportedReference    ErrorKind = "UnexportedReference"
)

// ProcessingError is a diagnostic tied to one producer declaration. Any
// ProcessingError aborts the pass it was raised in.
type ProcessingError struct {
	Kind ErrorKind
	Decl string         // qualified name of the offending declaration
	Pos  token.Position // where to report it; may be invalid for manifest entries
	Msg  string
}

func (e *ProcessingError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s: %s", e.Pos, e.Msg)
	}
	if e.Pos.Filename != "" {
		return fmt.Sprintf("%s: %s", e.Pos.Filename, e.Msg)
	}
	return e.Msg
}

// Is matches another *ProcessingError of the same Kind, so callers can write
// errors.Is(err, &meta.ProcessingError{Kind: meta.MissingIdentifiers}).
func (e *ProcessingError) Is(target error) bool {
	t, ok := target.(*ProcessingError)
	return ok && t.Kind == e.Kind
}

// Errorf builds a ProcessingError for the declaration d.
func Errorf(kind ErrorKind, d Declaration, format string, args ...any) *ProcessingError {
	return &ProcessingError{
		Kind: kind,
		Decl: d.QualifiedName(),
		Pos:  d.Pos,
		Msg:  fmt.Sprintf(format, args...),
	}
}

func ErrMissingIdentifiers(d Declaration) *ProcessingError {
	return Errorf(MissingIdentifiers, d,
		"ids in factorygen:producer for type %s is empty; that's not allowed", d.QualifiedName())
}

func ErrMissingTargetInterface(d Declaration) *ProcessingError {
	return Errorf(MissingTargetInterface, d,
		"interface in factorygen:producer for type %s is empty; that's not allowed", d.QualifiedName())
}

func ErrMalformed(d Declaration, detail string) *ProcessingError {
	return Errorf(MalformedDirective, d, "malformed factorygen:producer on %s: %s", d.QualifiedName(), detail)
}

// KindOf returns the kind of the first ProcessingError found in err's tree.
func KindOf(err error) (ErrorKind, bool) {
	var pe *ProcessingError
	if errors.As(err, &pe) {
		return pe.Kind, true
	}
	return "", false
}

// ProcessingErrors flattens err (including errors.Join trees) into the
// ProcessingErrors it contains, in order.
func ProcessingErrors(err error) []*ProcessingError {
	switch e := err.(type) {
	case nil:
		return nil
	case *ProcessingError:
		return []*ProcessingError{e}
	case interface{ Unwrap() []error }:
		var out []*ProcessingError
		for _, inner := range e.Unwrap() {
			out = append(out, ProcessingErrors(inner)...)
		}
		return out
	case interface{ Unwrap() error }:
		return ProcessingErrors(e.Unwrap())
	}
	return nil
}
