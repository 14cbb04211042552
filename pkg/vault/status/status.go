// Copyright © 2018 One Concern

// Package status exports errors produced by the vault package.
//
// Index errors (schema, constraint, prefix resolution) are declared by pkg/index/status.
package status

import (
	"github.com/oneconcern/zenodotus/pkg/errors"
)

var (
	// ErrIO indicates an unreadable source file or a failed file system operation
	ErrIO = errors.New("i/o error")

	// ErrPrecondition indicates that a vault operation was attempted on an invalid target
	ErrPrecondition = errors.New("precondition failed")
)
