package chat

import (
	"context"
	"errors"
	"net"
	"strings"
)

// Kind separates failures the client can be told about from failures of the
// connection itself.
type Kind int

const (
	KindProvider Kind = iota + 1
	KindTransport
)

func (k Kind) String() string {
	switch k {
	case KindProvider:
		return "provider"
	case KindTransport:
		return "transport"
	default:
		return "unknown"
	}
}

var (
	ErrMissingAPIKey = errors.New("missing provider API key")
	ErrEmptyMessage  = errors.New("empty message")
	ErrNoChoices     = errors.New("provider returned no choices")
)

// Error is the relay's failure type. Error() is the bare description of the
// underlying failure; that text is what a client sees in an error envelope.
type Error struct {
	Kind      Kind
	Op        string
	Retryable bool
	Err       error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return e.Kind.String() + " failure"
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func NewProviderError(err error) *Error {
	return &Error{Kind: KindProvider, Op: "complete", Retryable: isRetryable(err), Err: err}
}

func NewTransportError(op string, err error) *Error {
	return &Error{Kind: KindTransport, Op: op, Err: err}
}

// KindOf reports the failure kind of err, treating foreign errors as provider failures.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindProvider
}

func IsRetryable(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Retryable
	}
	return isRetryable(err)
}

var retryableMarkers = []string{
	"429",
	"rate limit",
	"500",
	"502",
	"503",
	"504",
	"overloaded",
	"timeout",
	"connection refused",
	"connection reset",
	"eof",
}

// isRetryable recognises transient upstream conditions. Authentication,
// configuration and decoding problems are terminal.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrMissingAPIKey) || errors.Is(err, ErrEmptyMessage) || errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, m := range retryableMarkers {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}
