// Copyright © 2018 One Concern

package storage

import (
	"context"
	"io"
)

// Store implementations know how to hold objects in digest-named storage slots.
//
// Typically this is something file system-like.
// Implementations of this interface are assumed to be fairly simple.
type Store interface {
	String() string
	Has(context.Context, string) (bool, error)
	Get(context.Context, string) (io.ReadCloser, error)
	Keys(context.Context) ([]string, error)

	// Move relocates a source file into the slot for a key.
	//
	// The slot must not exist already: there is no overwrite.
	// Move blocks until the object is fully in place, or fails.
	Move(ctx context.Context, source, key string) error

	// Path to the slot for a key
	Path(key string) string
}
