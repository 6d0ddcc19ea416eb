package dao

import (
	"context"
)

// Service is a keyed registry of live entities
type Service[K comparable, T any] interface {
	// Insert adds a new entity, failing with ErrDuplicateID when the key exists
	Insert(ctx context.Context, t *T) error

	// Find returns the live entity or ErrNotFound
	Find(ctx context.Context, id K) (*T, error)

	// Remove deletes and returns the entity or ErrNotFound
	Remove(ctx context.Context, id K) (*T, error)

	// List returns detached copies matching the parameters
	List(ctx context.Context, parameters ...*Parameter) ([]*T, error)
}
