package backend

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthorized  = errors.New("unauthorized")
	ErrEmptyResponse = errors.New("empty response")
	ErrTransport     = errors.New("transport error")
	ErrMalformedJSON = errors.New("malformed json")
)

// FetchError reports why the roster could not be obtained.
// errors.Is(err, ErrUnauthorized) and friends match on Kind.
type FetchError struct {
	URL  string
	Kind error
	Err  error
}

func (e *FetchError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("fetch %s: %v", e.URL, e.Kind)
	}
	return fmt.Sprintf("fetch %s: %v: %v", e.URL, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}
