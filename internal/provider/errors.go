package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sony/gobreaker"
)

// Kind classifies a provider failure.
type Kind int

const (
	KindCredentialMissing Kind = iota + 1
	KindNetworkFailure
	KindParseFailure
)

func (k Kind) String() string {
	switch k {
	case KindCredentialMissing:
		return "credential_missing"
	case KindNetworkFailure:
		return "network_failure"
	case KindParseFailure:
		return "parse_failure"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is.
var (
	ErrCredentialMissing = errors.New("credential missing")
	ErrNetworkFailure    = errors.New("network failure")
	ErrParseFailure      = errors.New("parse failure")
)

func (k Kind) sentinel() error {
	switch k {
	case KindCredentialMissing:
		return ErrCredentialMissing
	case KindNetworkFailure:
		return ErrNetworkFailure
	case KindParseFailure:
		return ErrParseFailure
	default:
		return nil
	}
}

// Error is the failure of one provider call.
type Error struct {
	Kind     Kind
	Provider ID
	Err      error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Provider, e.Kind.sentinel())
	}
	return fmt.Sprintf("%s: %s: %v", e.Provider, e.Kind.sentinel(), e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the sentinel of the error's kind.
func (e *Error) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}

// KindOf returns the kind of a provider error, or 0 if err is not one.
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return 0
}

func newError(kind Kind, id ID, err error) *Error {
	return &Error{Kind: kind, Provider: id, Err: err}
}

// classifyCallError sorts an error returned by the transport. A body that
// arrived with a success status but does not decode is a parse failure;
// everything else (HTTP status, transport, cancellation, open breaker) is a
// network failure.
func classifyCallError(err error) Kind {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return KindParseFailure
	}
	return KindNetworkFailure
}

// countsAsBreakerFailure tells the breaker which errors indicate an unhealthy
// provider.
func countsAsBreakerFailure(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return false
	}
	return classifyCallError(err) == KindNetworkFailure
}
