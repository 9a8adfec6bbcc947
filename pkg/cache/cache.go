// Package cache stores rendered artifacts keyed by a hash of their source.
//
// Graphviz layout is the slowest step of rendering a layout; the DOT source
// fully determines the SVG, so the CLI and the HTTP shell keep rendered SVG
// keyed by [Key] of the DOT text and skip Graphviz on a hit.
package cache

import (
	"context"
)

// Cache is a byte store keyed by string.
type Cache interface {
	// Get returns the data stored under key and whether there was any.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key, replacing any earlier value.
	Set(ctx context.Context, key string, data []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}
