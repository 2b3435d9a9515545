package kv

import (
	"context"
)

// Repository is a string-keyed byte store with synchronous get/set/remove
// semantics. Get on an absent key returns (nil, nil).
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
