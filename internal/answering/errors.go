package answering

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrEmptyQuestion  = errors.New("question must not be empty")
	ErrServiceFailure = errors.New("answering service failure")
	ErrOverloaded     = errors.New("answering service overloaded")
	// ErrEmptyResponse is a successful call that carried no text.
	ErrEmptyResponse = errors.New("answering service returned an empty response")
)

const (
	GenericFallback    = "Sorry, I encountered an error. Please try again."
	OverloadedFallback = "The AI model is currently busy. Please try again in a moment."
)

type Kind int

const (
	KindFailure Kind = iota
	KindOverloaded
)

func (k Kind) String() string {
	if k == KindOverloaded {
		return "overloaded"
	}
	return "failure"
}

// ServiceError is every failure that came back from (or on the way to) the
// backend. It matches ErrServiceFailure, and also ErrOverloaded when the
// backend signalled overload.
type ServiceError struct {
	Kind Kind
	Err  error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("answering service %s: %v", e.Kind, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func (e *ServiceError) Is(target error) bool {
	switch target {
	case ErrServiceFailure:
		return true
	case ErrOverloaded:
		return e.Kind == KindOverloaded
	}
	return false
}

// overloadCodes are provider error codes that mean "try again later".
var overloadCodes = map[string]bool{
	"overloaded":          true,
	"overloaded_error":    true,
	"server_overloaded":   true,
	"rate_limit_exceeded": true,
	"resource_exhausted":  true,
	"unavailable":         true,
}

// KindFromStatus maps a structured signal (HTTP status plus provider error
// code) to a failure kind.
func KindFromStatus(status int, code string) Kind {
	code = strings.ToLower(code)
	if overloadCodes[code] {
		return KindOverloaded
	}
	switch status {
	case http.StatusTooManyRequests:
		if code == "insufficient_quota" {
			return KindFailure
		}
		return KindOverloaded
	case http.StatusServiceUnavailable, 529:
		return KindOverloaded
	}
	return KindFailure
}

// overloadMarkers is the fallback for backends that only give us text.
var overloadMarkers = []string{
	"model is overloaded",
	"overloaded",
	"status code: 429",
	"status code: 503",
	"status code: 529",
	"too many requests",
	"resource has been exhausted",
}

func Classify(err error) *ServiceError {
	if err == nil {
		return nil
	}

	var serr *ServiceError
	if errors.As(err, &serr) {
		return serr
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range overloadMarkers {
		if strings.Contains(msg, marker) {
			return &ServiceError{Kind: KindOverloaded, Err: err}
		}
	}
	return &ServiceError{Kind: KindFailure, Err: err}
}

// FallbackMessage is the assistant text shown in place of a failed answer.
func FallbackMessage(err error) string {
	if errors.Is(err, ErrOverloaded) {
		return OverloadedFallback
	}
	return GenericFallback
}
