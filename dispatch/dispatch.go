// Package dispatch holds the runtime contract shared by every generated
// factory. Generated Create methods return the errors defined here so callers
// can tell a rejected id from a successful construction without string
// matching:
//
//	fruit, err := fruits.FruitFactory{}.Create(id)
//	switch {
//	case errors.Is(err, dispatch.ErrInvalidArgument):
//		// id < 0
//	case errors.Is(err, dispatch.ErrUnknownIdentifier):
//		// no producer claims id
//	}
package dispatch

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument is returned for negative identifiers.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrUnknownIdentifier is returned when no producer claims the identifier.
	ErrUnknownIdentifier = errors.New("unknown identifier")
)

// IDError describes an identifier a factory refused to dispatch.
type IDError struct {
	Factory string // e.g. "FruitFactory"
	ID      int
	Err     error // ErrInvalidArgument or ErrUnknownIdentifier
}

func (e *IDError) Error() string {
	switch e.Err {
	case ErrInvalidArgument:
		return fmt.Sprintf("%s: id is less than zero: %d", e.Factory, e.ID)
	case ErrUnknownIdentifier:
		return fmt.Sprintf("%s: unknown id = %d", e.Factory, e.ID)
	default:
		return fmt.Sprintf("%s: id %d: %v", e.Factory, e.ID, e.Err)
	}
}

func (e *IDError) Unwrap() error { return e.Err }

// InvalidArgument reports a negative id passed to factory.
func InvalidArgument(factory string, id int) error {
	return &IDError{Factory: factory, ID: id, Err: ErrInvalidArgument}
}

// UnknownIdentifier reports an id no producer of factory claims.
func UnknownIdentifier(factory string, id int) error {
	return &IDError{Factory: factory, ID: id, Err: ErrUnknownIdentifier}
}

// ID extracts the rejected identifier from err, if err came from a factory.
func ID(err error) (int, bool) {
	var ie *IDError
	if errors.As(err, &ie) {
		return ie.ID, true
	}
	return 0, false
}
