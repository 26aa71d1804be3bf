package llm

import (
	"errors"
	"fmt"
	"net/http"
)

// StatusError is a non-200 provider reply.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("provider returned status %d: %s", e.Code, e.Body)
}

// Failure is the terminal model-layer error: the provider could not be
// made to answer, after however many attempts the caller allowed.
type Failure struct {
	Provider string
	Attempts int
	Cause    error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("llm provider %s failed after %d attempt(s): %v", f.Provider, f.Attempts, f.Cause)
}

func (f *Failure) Unwrap() error { return f.Cause }

// ExtractionError reports that a completion could not be parsed into the
// requested typed object.
type ExtractionError struct {
	TypeName string
	Raw      string
	Cause    error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("could not extract %s from model output: %v", e.TypeName, e.Cause)
}

func (e *ExtractionError) Unwrap() error { return e.Cause }

// IsRetryable reports whether an error is worth another attempt:
// rate limits, server-side failures, and transport errors qualify;
// client errors do not.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code == http.StatusTooManyRequests || se.Code >= http.StatusInternalServerError
	}
	var ee *ExtractionError
	if errors.As(err, &ee) {
		return false
	}
	return true
}
