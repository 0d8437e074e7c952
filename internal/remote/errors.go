package remote

import (
	"context"
	"errors"
	"fmt"
	"time"

	"medcore/m/domain"
)

var (
	// ErrOffline is returned by Flush when the remote endpoint cannot be reached.
	ErrOffline = errors.New("remote endpoint offline")

	// ErrMissingID is returned when a record payload carries no id.
	ErrMissingID = errors.New("record has no id")

	errNotCollection = errors.New("remote answer is not a collection")
)

// PersistenceTimeoutError marks a remote call abandoned after the configured
// timeout. It never reaches engine callers; the adapter logs it and falls back
// to the cache.
type PersistenceTimeoutError struct {
	Op      string
	Entity  domain.EntityType
	ID      string
	Timeout time.Duration
}

func (e *PersistenceTimeoutError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("remote %s %s/%s timed out after %s", e.Op, e.Entity, e.ID, e.Timeout)
	}
	return fmt.Sprintf("remote %s %s timed out after %s", e.Op, e.Entity, e.Timeout)
}

func (e *PersistenceTimeoutError) Unwrap() error { return context.DeadlineExceeded }

// StatusError is a non-2xx answer from the record endpoint.
type StatusError struct {
	Method string
	Path   string
	Code   int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.Path, e.Code)
}

func classify(err error, op string, entity domain.EntityType, id string, timeout time.Duration) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &PersistenceTimeoutError{Op: op, Entity: entity, ID: id, Timeout: timeout}
	}
	return err
}
