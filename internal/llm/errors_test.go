package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestAPIErrorClass(t *testing.T) {
	cases := []struct {
		status int
		want   ErrorClass
	}{
		{http.StatusTooManyRequests, ClassTransient},
		{http.StatusRequestTimeout, ClassTransient},
		{http.StatusInternalServerError, ClassTransient},
		{http.StatusBadGateway, ClassTransient},
		{http.StatusServiceUnavailable, ClassTransient},
		{http.StatusUnauthorized, ClassPermanent},
		{http.StatusForbidden, ClassPermanent},
		{http.StatusBadRequest, ClassPermanent},
		{http.StatusNotFound, ClassPermanent},
	}

	for _, tc := range cases {
		err := &APIError{Provider: "test", StatusCode: tc.status}
		if got := err.Class(); got != tc.want {
			t.Errorf("status %d: Class() = %v, want %v", tc.status, got, tc.want)
		}
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want ErrorClass
	}{
		{"context canceled", context.Canceled, ClassPermanent},
		{"deadline exceeded", context.DeadlineExceeded, ClassTransient},
		{"wrapped cancel", fmt.Errorf("call failed: %w", context.Canceled), ClassPermanent},
		{"api error 401", &APIError{StatusCode: 401}, ClassPermanent},
		{"api error 500", &APIError{StatusCode: 500}, ClassTransient},
		{"wrapped api error", fmt.Errorf("attempt: %w", &APIError{StatusCode: 429}), ClassTransient},
		{"unknown error", errors.New("something odd"), ClassTransient},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Classify(tc.err); got != tc.want {
				t.Errorf("Classify(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}

func TestAPIErrorMessage(t *testing.T) {
	err := &APIError{Provider: "openai", StatusCode: 429, Message: "rate limited"}
	got := err.Error()
	want := "openai: 429 Too Many Requests: rate limited"
	if got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
