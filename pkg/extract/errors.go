package extract

import "fmt"

// MalformedValueError indicates a field expected to be numeric failed to
// parse. Only item extractors produce it today; the header sections are
// all-string by contract.
type MalformedValueError struct {
	Field string
	Value string
	Err   error
}

func (e *MalformedValueError) Error() string {
	return fmt.Sprintf("malformed %s value %q: %v", e.Field, e.Value, e.Err)
}

func (e *MalformedValueError) Unwrap() error {
	return e.Err
}
