package source

import (
	"context"
	"errors"
	"fmt"
)

// TransportError reports a network or IO failure while talking to a backend.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error during %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// DecodeError reports a malformed page, detail payload or cursor.
type DecodeError struct {
	Op  string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode error during %s: %v", e.Op, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// NotFoundError reports an entity id without a detail record.
type NotFoundError struct {
	EntityID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("entity %q not found", e.EntityID)
}

// IsNotFound reports whether err carries a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsTransient reports whether err is worth retrying (transport failures only).
func IsTransient(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// IsCanceled reports whether err stems from context cancellation.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// Describe renders err as a short message suitable for a panel status line.
func Describe(err error) string {
	if err == nil {
		return ""
	}
	var (
		te *TransportError
		de *DecodeError
		nf *NotFoundError
	)
	switch {
	case errors.As(err, &nf):
		return fmt.Sprintf("No record for %s", nf.EntityID)
	case errors.As(err, &de):
		return fmt.Sprintf("Bad response from backend (%s)", de.Op)
	case errors.As(err, &te):
		return fmt.Sprintf("Backend unreachable (%s): %v", te.Op, te.Err)
	default:
		return err.Error()
	}
}
