// Copyright © 2018 One Concern

package vault

import (
	"context"
	"path/filepath"

	"github.com/oneconcern/zenodotus/pkg/index"
	"github.com/oneconcern/zenodotus/pkg/vault/status"
	"github.com/spf13/afero"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Initialize a new vault in an existing, empty directory.
//
// The index is created first, then the storage area. If the storage area cannot be created,
// the vault is left half-initialized and the directory must be cleaned up manually before retrying.
//
// The index always goes inside the vault: Config.IndexFile is not used here.
func Initialize(ctx context.Context, cfg Config, opts ...Option) error {
	s := newSettings(opts)
	root := cfg.Root
	l := s.l.With(zap.String("vault", root))

	if err := checkEmptyDir(s.fs, root); err != nil {
		return err
	}

	idx, err := index.Open(ctx, filepath.Join(root, IndexFileName),
		index.DigestScheme(cfg.Digest),
		index.Logger(l),
	)
	if err != nil {
		return err
	}
	l.Debug("index created", zap.String("index", idx.Path()), zap.String("digest", idx.Scheme()))

	if err = s.fs.Mkdir(cfg.StorePath(), 0700); err != nil {
		err = status.ErrIO.WrapWithLog(l, err, zap.String("store", cfg.StorePath()))
		return multierr.Append(err, idx.Close())
	}

	if err = idx.Close(); err != nil {
		return status.ErrIO.Wrap(err)
	}
	l.Info("vault initialized", zap.String("digest", idx.Scheme()))
	return nil
}

func checkEmptyDir(fs afero.Fs, dir string) error {
	fi, err := fs.Stat(dir)
	if err != nil {
		return status.ErrPrecondition.Wrap(err)
	}
	if !fi.IsDir() {
		return status.ErrPrecondition.WrapMessage("%q is not a directory", dir)
	}
	empty, err := afero.IsEmpty(fs, dir)
	if err != nil {
		return status.ErrPrecondition.Wrap(err)
	}
	if !empty {
		return status.ErrPrecondition.WrapMessage("%q is not empty", dir)
	}
	return nil
}
