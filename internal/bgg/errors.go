package bgg

import (
	"errors"
	"fmt"
)

var (
	// ErrDecode marks a payload that could not be turned into an item tree:
	// malformed XML or a non-2xx response.
	ErrDecode = errors.New("bgg: decode failed")

	// ErrEmptyResult marks a well-formed payload without any items. BGG
	// answers unknown users and ids this way, so callers treat it as "not found".
	ErrEmptyResult = errors.New("bgg: no items in response")
)

// DecodeError carries the cause of a failed decode. It matches ErrDecode
// with errors.Is.
type DecodeError struct {
	Status int // HTTP status when the failure came from the transport, else 0
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("bgg: decode failed: status %d: %v", e.Status, e.Err)
	}
	return fmt.Sprintf("bgg: decode failed: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

func (e *DecodeError) Is(target error) bool { return target == ErrDecode }
