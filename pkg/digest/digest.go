// Copyright © 2018 One Concern

// Package digest computes the content identity of vault files.
//
// A digest is the lower-case hexadecimal encoding of a cryptographic hash
// over the full content of a file. Two schemes are supported:
//   - blake2b: BLAKE2b-512 (https://github.com/minio/blake2b-simd), the default
//   - sha256: SHA-256 (https://github.com/minio/sha256-simd)
//
// A vault records its scheme once at initialization: all digests in a vault share the same scheme.
package digest

import (
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"strings"

	blake2b "github.com/minio/blake2b-simd"
	sha256 "github.com/minio/sha256-simd"
	"github.com/oneconcern/zenodotus/pkg/errors"
	"github.com/spf13/afero"
)

const (
	// Blake2b is the BLAKE2b-512 digest scheme
	Blake2b = "blake2b"

	// SHA256 is the SHA-256 digest scheme
	SHA256 = "sha256"

	// Default scheme for new vaults
	Default = Blake2b
)

// ErrUnknownScheme is returned for a digest scheme this package doesn't implement
var ErrUnknownScheme = errors.New("unknown digest scheme")

// Sum is the result of digesting some content
type Sum struct {
	Digest string // hex encoded hash
	Size   int64  // number of bytes read
}

// NewHasher yields a fresh hash for the given scheme
func NewHasher(scheme string) (hash.Hash, error) {
	switch scheme {
	case Blake2b:
		return blake2b.New512(), nil
	case SHA256:
		return sha256.New(), nil
	default:
		return nil, ErrUnknownScheme.WrapMessage("%q", scheme)
	}
}

// HexSize is the length of a hex digest for this scheme
func HexSize(scheme string) (int, error) {
	switch scheme {
	case Blake2b:
		return 2 * blake2b.Size, nil
	case SHA256:
		return 2 * sha256.Size, nil
	default:
		return 0, ErrUnknownScheme.WrapMessage("%q", scheme)
	}
}

// Reader digests everything from the reader
func Reader(scheme string, rdr io.Reader) (Sum, error) {
	hasher, err := NewHasher(scheme)
	if err != nil {
		return Sum{}, err
	}
	n, err := io.Copy(hasher, rdr)
	if err != nil {
		return Sum{}, fmt.Errorf("cannot compute digest: %w", err)
	}
	return Sum{
		Digest: hex.EncodeToString(hasher.Sum(nil)),
		Size:   n,
	}, nil
}

// File digests the full content of a file
func File(fs afero.Fs, scheme, path string) (Sum, error) {
	f, err := fs.Open(path)
	if err != nil {
		return Sum{}, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return Sum{}, err
	}
	if fi.IsDir() {
		return Sum{}, fmt.Errorf("%q is a directory", path)
	}
	return Reader(scheme, f)
}

// IsValid tells if a string is a well-formed digest for this scheme
func IsValid(scheme, d string) bool {
	sz, err := HexSize(scheme)
	if err != nil || len(d) != sz {
		return false
	}
	return IsHexPrefix(d)
}

// IsHexPrefix tells if a string only contains lower-case hex digits
func IsHexPrefix(p string) bool {
	for _, c := range p {
		if !strings.ContainsRune("0123456789abcdef", c) {
			return false
		}
	}
	return true
}

// NormalizePrefix lower-cases a user-supplied digest prefix
func NormalizePrefix(p string) string {
	return strings.ToLower(strings.TrimSpace(p))
}
