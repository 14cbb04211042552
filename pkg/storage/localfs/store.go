// Copyright © 2018 One Concern

package localfs

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/oneconcern/zenodotus/pkg/errors"
	"github.com/oneconcern/zenodotus/pkg/storage"
	"github.com/oneconcern/zenodotus/pkg/storage/status"
	"github.com/spf13/afero"
	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

/* staging area for objects copied across devices.
 * it lives inside the storage area, so the final Rename() of a staged object is atomic:
 * a slot is never observed partially written.
 */
const nestedPutStageName = ".put-stage"

// Option to configure a local store
type Option func(*localFS)

// Logger sets a logger for this store
func Logger(l *zap.Logger) Option {
	return func(s *localFS) {
		if l != nil {
			s.l = l
		}
	}
}

// New creates a new local file system store rooted at some directory.
//
// Sources to relocate are resolved on the same afero.Fs as the storage area.
func New(fs afero.Fs, root string, opts ...Option) storage.Store {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	l := &localFS{
		fs:   fs,
		root: root,
		l:    zap.NewNop(),
	}
	for _, apply := range opts {
		apply(l)
	}
	return l
}

type localFS struct {
	fs   afero.Fs
	root string
	l    *zap.Logger
}

func (l *localFS) Path(key string) string {
	return filepath.Join(l.root, key)
}

func (l *localFS) Has(ctx context.Context, key string) (bool, error) {
	if err := maybeInvalidKey(key); err != nil {
		return false, err
	}
	fi, err := l.fs.Stat(l.Path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, status.ErrStorage.Wrap(err)
	}

	return !fi.IsDir(), nil
}

func (l *localFS) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	has, err := l.Has(ctx, key)
	if err != nil {
		return nil, err
	}
	if !has {
		return nil, status.ErrNotFound.WrapMessage("no object for key %s", key)
	}
	f, err := l.fs.Open(l.Path(key))
	if err != nil {
		return nil, status.ErrStorage.Wrap(err)
	}
	return f, nil
}

func (l *localFS) Keys(ctx context.Context) ([]string, error) {
	infos, err := afero.ReadDir(l.fs, l.root)
	if err != nil {
		return nil, status.ErrStorage.Wrap(err)
	}
	res := make([]string, 0, len(infos))
	for _, fi := range infos {
		if fi.IsDir() || maybeInvalidKey(fi.Name()) != nil {
			continue
		}
		res = append(res, fi.Name())
	}
	return res, nil
}

func (l *localFS) Move(ctx context.Context, source, key string) error {
	if err := maybeInvalidKey(key); err != nil {
		return err
	}
	target := l.Path(key)

	exists, err := afero.Exists(l.fs, target)
	if err != nil {
		return status.ErrStorage.Wrap(err)
	}
	if exists {
		return status.ErrExists.WrapMessage("storage slot %q", target)
	}

	err = l.fs.Rename(source, target)
	if err == nil {
		return nil
	}
	if !isCrossDevice(err) {
		return status.ErrMove.Wrap(err)
	}

	l.l.Debug("source is on another device: copying", zap.String("source", source), zap.String("target", target))
	return l.copyThenDelete(source, key)
}

// copyThenDelete copies a source into the staging area, renames it into its slot, then removes the source
func (l *localFS) copyThenDelete(source, key string) error {
	stageDir := l.Path(nestedPutStageName)
	if err := l.fs.MkdirAll(stageDir, 0700); err != nil {
		return status.ErrMove.Wrap(fmt.Errorf("ensuring put staging directory %q: %w", stageDir, err))
	}
	staged := filepath.Join(stageDir, key)

	if err := l.copyFile(source, staged); err != nil {
		_ = l.fs.Remove(staged)
		return status.ErrMove.Wrap(err)
	}
	if err := l.fs.Rename(staged, l.Path(key)); err != nil {
		_ = l.fs.Remove(staged)
		return status.ErrMove.Wrap(err)
	}
	if err := l.fs.Remove(source); err != nil {
		return status.ErrMove.Wrap(fmt.Errorf("object stored, but the source could not be removed: %w", err))
	}
	return nil
}

func (l *localFS) copyFile(source, target string) error {
	src, err := l.fs.Open(source)
	if err != nil {
		return err
	}
	defer src.Close()

	fi, err := src.Stat()
	if err != nil {
		return err
	}

	dst, err := l.fs.OpenFile(target, os.O_CREATE|os.O_EXCL|os.O_WRONLY, fi.Mode().Perm())
	if err != nil {
		return fmt.Errorf("create staged object %q: %w", target, err)
	}
	if _, err = io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return fmt.Errorf("write staged object %q: %w", target, err)
	}
	if err = dst.Sync(); err != nil {
		_ = dst.Close()
		return err
	}
	return dst.Close()
}

func (l *localFS) String() string {
	const localfs = "localfs"
	return localfs + "@" + l.root
}

func isCrossDevice(err error) bool {
	return errors.Is(err, unix.EXDEV)
}

func maybeInvalidKey(key string) error {
	switch {
	case key == "", key == ".", key == "..":
		return status.ErrInvalidKey.WrapMessage("%q", key)
	case strings.ContainsRune(key, os.PathSeparator) || strings.ContainsRune(key, '/'):
		return status.ErrInvalidKey.WrapMessage("key %q must not contain a path separator", key)
	case key == nestedPutStageName:
		return status.ErrInvalidKey.WrapMessage("key '%v' conflicts with put staging area name '%v'", key, nestedPutStageName)
	}
	return nil
}
