// Copyright © 2018 One Concern

// Package status declares error constants returned by
// implementations of the Store interface.
//
// NOTE: such constants are located in a separate package to avoid
// creating undue cyclical dependencies between pkg/storage and one
// of its implementions.
package status

import "github.com/oneconcern/zenodotus/pkg/errors"

var (
	// Sentinel errors returned by implementations of the interface defined by storage

	// ErrNotFound indicates that the slot for a key is empty
	ErrNotFound = errors.New("not found")

	// ErrExists indicates that the slot is already occupied and cannot be overridden
	ErrExists = errors.New("exists already")

	// ErrInvalidKey indicates that the key cannot be used to name a slot
	ErrInvalidKey = errors.New("invalid storage key")

	// ErrMove indicates that a source file could not be relocated into its slot
	ErrMove = errors.New("cannot relocate file into storage")

	// ErrStorage indicates any other storage error
	ErrStorage = errors.New("storage error")
)
