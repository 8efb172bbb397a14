package generator

import (
	"errors"
	"fmt"
)

// Kind classifies a generation failure.
type Kind string

const (
	KindIO            Kind = "io"
	KindSerialization Kind = "serialization"
	KindConfig        Kind = "config"
	KindValidation    Kind = "validation"
	KindGeneration    Kind = "generation"
)

// Error wraps an error with the kind of failure.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func wrap(kind Kind, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or "" if there
// is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
