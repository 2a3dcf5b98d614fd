// Package faults defines the error taxonomy shared by the store, the Discord
// session, and the campaign engine. Faults are surfaced to MCP clients as
// structured results, never as transport errors.
package faults

import (
	"errors"
	"fmt"
	"time"
)

// Kind classifies a fault for handler branching and client reporting.
type Kind string

const (
	NotConnected Kind = "not_connected"
	Forbidden    Kind = "forbidden"
	NotFound     Kind = "not_found"
	Duplicate    Kind = "duplicate"
	InvalidState Kind = "invalid_state"
	RateLimited  Kind = "rate_limited"
	Transient    Kind = "transient"
	Internal     Kind = "internal"
)

// Error is a classified fault. The sender is the only component that branches
// on Kind (retry on RateLimited vs log-and-stop); everything else returns the
// first fault upward.
type Error struct {
	Kind Kind
	Msg  string

	// RetryAfter is set on RateLimited faults when Discord reported one.
	RetryAfter time.Duration

	// CampaignID carries the existing campaign on Duplicate faults.
	CampaignID int64

	Err error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// New creates a fault of the given kind.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap creates a fault that preserves the underlying error for errors.Is/As.
func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

// KindOf extracts the Kind from an error chain. Unclassified errors are
// Internal.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return Internal
}

// As returns the fault in the chain, if any.
func As(err error) (*Error, bool) {
	var fe *Error
	ok := errors.As(err, &fe)
	return fe, ok
}
