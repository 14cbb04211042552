// Copyright © 2018 One Concern

// Package status exports errors produced by the index package.
package status

import (
	"github.com/oneconcern/zenodotus/pkg/errors"
)

var (
	// ErrSchema indicates the index store could not be opened or its schema could not be created
	ErrSchema = errors.New("index schema error")

	// ErrUnsupportedVersion indicates the index was created by a schema revision this build doesn't know
	ErrUnsupportedVersion = errors.New("unsupported index schema version")

	// ErrConstraint indicates that a digest or a name is already present in the index
	ErrConstraint = errors.New("duplicate entry")

	// ErrNotFound indicates that no entry matches a digest or a digest prefix
	ErrNotFound = errors.New("no matching entry")

	// ErrAmbiguousPrefix indicates that a digest prefix matches more than one entry
	ErrAmbiguousPrefix = errors.New("ambiguous digest prefix")

	// ErrIndex indicates any other failure from the index store
	ErrIndex = errors.New("index store error")
)
