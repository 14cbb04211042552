// Copyright © 2018 One Concern

// Package storage provides the interface to the storage area of a vault.
//
// The storage area holds exactly one object per digest, named after the digest:
// this is a storage slot.
//
// This package supports the following backends:
//   - local file system
package storage
