package model

import (
	"errors"
	"fmt"
)

var (
	ErrNetworkUnavailable        = errors.New("network unavailable")
	ErrFeatureUnavailableOffline = errors.New("feature unavailable offline")
	ErrUnavailable               = errors.New("api unavailable")
	ErrNotFound                  = errors.New("entity not found")
)

type ServerError struct {
	Status int
	Body   string
}

func (e *ServerError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("server error: status %d", e.Status)
	}
	return fmt.Sprintf("server error: status %d: %s", e.Status, e.Body)
}

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Reason
	}
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Reason)
}

type PersistenceError struct {
	Op  string
	Key string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// UnavailableError is the single failure result of a gateway call. Callers
// on the fallback path only need errors.Is(err, ErrUnavailable); Reason
// tells why.
type UnavailableError struct {
	Reason error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("%v: %v", ErrUnavailable, e.Reason)
}

func (e *UnavailableError) Is(target error) bool {
	return target == ErrUnavailable
}

func (e *UnavailableError) Unwrap() error { return e.Reason }

// StatusOf returns the HTTP status behind err, or 0 when there was none.
func StatusOf(err error) int {
	var serverErr *ServerError
	if errors.As(err, &serverErr) {
		return serverErr.Status
	}
	return 0
}
