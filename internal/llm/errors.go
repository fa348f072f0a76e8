package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// ErrorClass partitions call failures into the two outcomes the retry
// loop cares about. Transient failures may succeed on a later attempt;
// permanent failures never will.
type ErrorClass int

const (
	ClassTransient ErrorClass = iota
	ClassPermanent
)

func (c ErrorClass) String() string {
	if c == ClassPermanent {
		return "permanent"
	}
	return "transient"
}

// APIError is a structured failure reported by a provider backend.
type APIError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %d %s: %s", e.Provider, e.StatusCode, http.StatusText(e.StatusCode), e.Message)
}

// Class maps the HTTP status onto an error class. Rate limits, request
// timeouts and server errors are worth retrying; authentication,
// malformed-request and unknown-model responses are not.
func (e *APIError) Class() ErrorClass {
	switch {
	case e.StatusCode == http.StatusTooManyRequests:
		return ClassTransient
	case e.StatusCode == http.StatusRequestTimeout:
		return ClassTransient
	case e.StatusCode >= 500:
		return ClassTransient
	default:
		return ClassPermanent
	}
}

// Classify determines whether an arbitrary call error is worth retrying.
// Unknown errors default to transient, matching the conservative stance
// for remote LLM calls: a wasted retry is cheaper than a dropped topic.
func Classify(err error) ErrorClass {
	if err == nil {
		return ClassTransient
	}

	// Caller cancelled: retrying is pointless.
	if errors.Is(err, context.Canceled) {
		return ClassPermanent
	}

	// Per-attempt deadline expired: the next attempt gets a fresh one.
	if errors.Is(err, context.DeadlineExceeded) {
		return ClassTransient
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Class()
	}

	// Connection resets, DNS hiccups and friends.
	var netErr net.Error
	if errors.As(err, &netErr) {
		return ClassTransient
	}

	return ClassTransient
}
