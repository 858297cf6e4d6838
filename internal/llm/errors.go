package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Kind classifies a provider failure.
type Kind int

const (
	// KindUnavailable covers network failures and 5xx responses.
	KindUnavailable Kind = iota
	// KindRateLimited is a 429 from the provider or a local limiter that
	// could not grant a token before the deadline.
	KindRateLimited
	// KindInvalidOutput means the reply was not JSON matching the schema.
	KindInvalidOutput
	// KindTruncated means the reply hit MaxTokens.
	KindTruncated
	// KindRejected is a 4xx other than 429: bad key, bad model, bad request.
	KindRejected
)

func (k Kind) String() string {
	switch k {
	case KindUnavailable:
		return "unavailable"
	case KindRateLimited:
		return "rate limited"
	case KindInvalidOutput:
		return "invalid output"
	case KindTruncated:
		return "truncated"
	case KindRejected:
		return "rejected"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Error is returned by every provider in this package.
type Error struct {
	Kind     Kind
	Provider string

	// RetryAfter is the provider's requested pause, when it sent one.
	RetryAfter time.Duration

	// Content is the offending reply for KindInvalidOutput and KindTruncated.
	Content json.RawMessage

	Err error
}

func (e *Error) Error() string {
	msg := "llm"
	if e.Provider != "" {
		msg += " " + e.Provider
	}
	msg += ": " + e.Kind.String()
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Retryable reports whether the same request may succeed when sent again.
// Invalid output is retryable but the retry decorator caps it at once.
func (e *Error) Retryable() bool {
	switch e.Kind {
	case KindUnavailable, KindRateLimited, KindInvalidOutput:
		return true
	default:
		return false
	}
}

// IsKind reports whether err wraps an *Error of kind k.
func IsKind(err error, k Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == k
}

// statusError classifies an HTTP status returned by a provider SDK.
func statusError(provider string, status int, err error) error {
	kind := KindUnavailable
	switch {
	case status == http.StatusTooManyRequests:
		kind = KindRateLimited
	case status >= 400 && status < 500:
		kind = KindRejected
	}
	return &Error{Kind: kind, Provider: provider, Err: err}
}
