package graph

import (
	"errors"
	"fmt"
)

var (
	// ErrEntityNotFound is matched (via errors.Is) by every error reporting
	// a referenced entity that does not exist.
	ErrEntityNotFound = errors.New("entity not found")

	// ErrMalformedRecord is matched by every durable-record parse failure.
	ErrMalformedRecord = errors.New("malformed record")
)

// NotFoundError names the entity an operation required but could not find.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("entity with name %q not found", e.Name)
}

// Is reports ErrEntityNotFound equivalence.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrEntityNotFound
}

// MalformedRecordError reports the durable-storage line that failed to parse.
// Line is 1-based; it is zero when a single record was parsed in isolation.
type MalformedRecordError struct {
	Line int
	Err  error
}

func (e *MalformedRecordError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("malformed record on line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("malformed record: %v", e.Err)
}

func (e *MalformedRecordError) Unwrap() error { return e.Err }

// Is reports ErrMalformedRecord equivalence.
func (e *MalformedRecordError) Is(target error) bool {
	return target == ErrMalformedRecord
}
