package storage

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("storage: not found")

// Adapter is durable key-value storage for task records, keyed by
// namespace and record id.
type Adapter interface {
	ReadAll(ctx context.Context, namespace string) ([]Record, error)
	// WriteOne inserts or replaces the record stored under id.
	WriteOne(ctx context.Context, namespace, id string, rec Record) error
	// DeleteOne returns ErrNotFound when nothing is stored under id.
	DeleteOne(ctx context.Context, namespace, id string) error
}
