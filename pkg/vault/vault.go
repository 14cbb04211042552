// Copyright © 2018 One Concern

package vault

import (
	"context"
	"path/filepath"

	"github.com/oneconcern/zenodotus/pkg/index"
	"github.com/oneconcern/zenodotus/pkg/storage"
	"github.com/oneconcern/zenodotus/pkg/storage/localfs"
	"github.com/spf13/afero"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Vault is an opened vault
type Vault struct {
	cfg   Config
	fs    afero.Fs
	index *index.Index
	store storage.Store
	l     *zap.Logger

	// canonical locations, which may not be ingested
	indexPath string
	storePath string
}

// Open an existing vault. The index must exist.
func Open(ctx context.Context, cfg Config, opts ...Option) (*Vault, error) {
	s := newSettings(opts)
	l := s.l.With(zap.String("vault", cfg.Root))

	idx, err := index.Open(ctx, cfg.IndexPath(),
		index.Create(false),
		index.Logger(l),
	)
	if err != nil {
		return nil, err
	}

	store := localfs.New(s.fs, cfg.StorePath(), localfs.Logger(l))
	if l.Core().Enabled(zapcore.DebugLevel) {
		store = storage.Instrument(l, store)
	}

	return &Vault{
		cfg:       cfg,
		fs:        s.fs,
		index:     idx,
		store:     store,
		l:         l,
		indexPath: canonicalOrAbs(s.fs, cfg.IndexPath()),
		storePath: canonicalOrAbs(s.fs, cfg.StorePath()),
	}, nil
}

// canonicalOrAbs canonicalizes a path of the vault, which may not exist yet
func canonicalOrAbs(fs afero.Fs, pth string) string {
	if c, err := canonicalPath(fs, pth); err == nil {
		return c
	}
	if abs, err := filepath.Abs(pth); err == nil {
		return abs
	}
	return filepath.Clean(pth)
}

// Close the vault
func (v *Vault) Close() error {
	return v.index.Close()
}

// Config of this vault
func (v *Vault) Config() Config {
	return v.cfg
}

// Scheme is the digest scheme of this vault
func (v *Vault) Scheme() string {
	return v.index.Scheme()
}

// Tag the entry matched by a digest prefix. It returns the full digest of the tagged entry.
func (v *Vault) Tag(ctx context.Context, prefix, name string, value *string) (string, error) {
	d, err := v.index.AddTag(ctx, prefix, name, value)
	if err != nil {
		return "", err
	}
	v.l.Info("tagged", zap.String("digest", d), zap.String("tag", name))
	return d, nil
}

// List entries and their tags, by digest prefix
func (v *Vault) List(ctx context.Context, prefix string) *index.Iterator {
	return v.index.List(ctx, prefix)
}

// ListApply applies a function on all entries matching a digest prefix
func (v *Vault) ListApply(ctx context.Context, prefix string, apply func(index.EntryTags) error) error {
	return v.index.ListApply(ctx, prefix, apply)
}
