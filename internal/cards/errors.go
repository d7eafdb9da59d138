package cards

import (
	"errors"
	"fmt"
)

// Failure classes for catalog requests. Retries happen inside the client;
// callers only ever see the final classification.
var (
	// ErrUnauthorized means the API rejected the key. Never retried.
	ErrUnauthorized = errors.New("pokemontcg.io: unauthorized (check API key)")

	// ErrNotFound means the requested resource does not exist. Never retried.
	ErrNotFound = errors.New("pokemontcg.io: not found")

	// ErrRateLimited means 429 responses persisted through the whole retry
	// budget.
	ErrRateLimited = errors.New("pokemontcg.io: rate limited")
)

// HTTPError is any other non-success status. Not retried.
type HTTPError struct {
	StatusCode int
	Status     string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("pokemontcg.io: unexpected status %s", e.Status)
}

// NetworkError wraps a failure to send the request or receive a response,
// as opposed to an HTTP error status. Reported after the retry budget is
// spent.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("pokemontcg.io: request failed: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// DecodeError wraps a JSON parse failure on a success response.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("pokemontcg.io: decoding response: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// IsRetryable reports whether the client would have retried this class of
// failure (rate limiting and network-level faults).
func IsRetryable(err error) bool {
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	var ne *NetworkError
	return errors.As(err, &ne)
}
