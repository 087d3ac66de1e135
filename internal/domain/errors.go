package domain

import (
	"errors"
	"fmt"
)

var (
	ErrBackendUnavailable = errors.New("ledger backend unavailable")
	ErrMalformedRecord    = errors.New("malformed ledger record")
	ErrClientNotFound     = errors.New("client not found")
	ErrDuplicateEmail     = errors.New("a client with this email already exists")
)

// MalformedRecordError describes a ledger row that could not be parsed into
// its typed record. It matches ErrMalformedRecord with errors.Is.
type MalformedRecordError struct {
	Collection string
	Row        int
	Column     string
	Value      string
	Err        error
}

func (e *MalformedRecordError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s row %d: column %s has invalid value %q: %v", e.Collection, e.Row, e.Column, e.Value, e.Err)
	}
	return fmt.Sprintf("%s row %d: column %s has invalid value %q", e.Collection, e.Row, e.Column, e.Value)
}

func (e *MalformedRecordError) Unwrap() error { return e.Err }

func (e *MalformedRecordError) Is(target error) bool { return target == ErrMalformedRecord }
