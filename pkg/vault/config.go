// Copyright © 2018 One Concern

package vault

import (
	"path/filepath"
)

const (
	// IndexFileName is the name of the index inside a vault
	IndexFileName = "zenodotus.sqlite3"

	// StoreDirName is the name of the storage area inside a vault
	StoreDirName = "store"
)

// Config locates a vault. It is passed explicitly to every vault operation.
type Config struct {
	// Root directory of the vault
	Root string `json:"vault" yaml:"vault" mapstructure:"vault"`

	// IndexFile overrides the location of the index, to work with an index outside of a vault
	IndexFile string `json:"file,omitempty" yaml:"file,omitempty" mapstructure:"file"`

	// Digest is the digest scheme for new vaults
	Digest string `json:"digest,omitempty" yaml:"digest,omitempty" mapstructure:"digest"`
}

// IndexPath is the location of the index
func (c Config) IndexPath() string {
	if c.IndexFile != "" {
		return c.IndexFile
	}
	return filepath.Join(c.Root, IndexFileName)
}

// StorePath is the location of the storage area
func (c Config) StorePath() string {
	return filepath.Join(c.Root, StoreDirName)
}
