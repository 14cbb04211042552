// Copyright © 2018 One Concern

package localfs

import (
	"context"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/oneconcern/zenodotus/pkg/errors"
	"github.com/oneconcern/zenodotus/pkg/storage"
	"github.com/oneconcern/zenodotus/pkg/storage/status"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/sys/unix"
)

const testRoot = "/vault/store"

// exdevFs simulates a storage area mounted on another device than the sources
type exdevFs struct {
	afero.Fs
	root string
}

func (e exdevFs) Rename(oldname, newname string) error {
	if !strings.HasPrefix(oldname, e.root) {
		return &os.LinkError{Op: "rename", Old: oldname, New: newname, Err: unix.EXDEV}
	}
	return e.Fs.Rename(oldname, newname)
}

func setupStore(t testing.TB) (storage.Store, afero.Fs) {
	t.Helper()

	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll(testRoot, 0700))
	require.NoError(t, afero.WriteFile(fs, filepath.Join(testRoot, "sixteentons"), []byte("this is the text"), 0600))
	require.NoError(t, afero.WriteFile(fs, filepath.Join(testRoot, "seventeentons"), []byte("this is the text for another thing"), 0600))

	return New(fs, testRoot, Logger(zaptest.NewLogger(t))), fs
}

func TestHas(t *testing.T) {
	bs, _ := setupStore(t)

	has, err := bs.Has(context.Background(), "sixteentons")
	require.NoError(t, err)
	require.True(t, has)

	has, err = bs.Has(context.Background(), "fifteentons")
	require.NoError(t, err)
	require.False(t, has)

	_, err = bs.Has(context.Background(), "../escape")
	require.Error(t, err)
	assert.True(t, errors.Is(err, status.ErrInvalidKey))
}

func TestGet(t *testing.T) {
	bs, _ := setupStore(t)

	rdr, err := bs.Get(context.Background(), "sixteentons")
	require.NoError(t, err)
	b, err := ioutil.ReadAll(rdr)
	require.NoError(t, err)
	require.NoError(t, rdr.Close())
	assert.Equal(t, "this is the text", string(b))

	_, err = bs.Get(context.Background(), "fifteentons")
	require.Error(t, err)
	assert.True(t, errors.Is(err, status.ErrNotFound))
}

func TestKeys(t *testing.T) {
	bs, fs := setupStore(t)
	require.NoError(t, fs.MkdirAll(filepath.Join(testRoot, nestedPutStageName), 0700))

	keys, err := bs.Keys(context.Background())
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"sixteentons", "seventeentons"}, keys)
}

func TestMove(t *testing.T) {
	bs, fs := setupStore(t)
	ctx := context.Background()
	require.NoError(t, afero.WriteFile(fs, "/home/user/eighteen.txt", []byte("here we go once again"), 0600))

	require.NoError(t, bs.Move(ctx, "/home/user/eighteen.txt", "eighteentons"))

	exists, err := afero.Exists(fs, "/home/user/eighteen.txt")
	require.NoError(t, err)
	assert.False(t, exists, "the source must be gone after a move")

	b, err := afero.ReadFile(fs, bs.Path("eighteentons"))
	require.NoError(t, err)
	assert.Equal(t, "here we go once again", string(b))

	k, _ := bs.Keys(ctx)
	assert.Len(t, k, 3)
}

func TestMoveNoOverwrite(t *testing.T) {
	bs, fs := setupStore(t)
	require.NoError(t, afero.WriteFile(fs, "/home/user/other.txt", []byte("other"), 0600))

	err := bs.Move(context.Background(), "/home/user/other.txt", "sixteentons")
	require.Error(t, err)
	assert.True(t, errors.Is(err, status.ErrExists))

	b, err := afero.ReadFile(fs, bs.Path("sixteentons"))
	require.NoError(t, err)
	assert.Equal(t, "this is the text", string(b))

	exists, _ := afero.Exists(fs, "/home/user/other.txt")
	assert.True(t, exists, "the source must be left untouched")
}

func TestMoveMissingSource(t *testing.T) {
	bs, _ := setupStore(t)

	err := bs.Move(context.Background(), "/home/user/missing.txt", "nineteentons")
	require.Error(t, err)
	assert.True(t, errors.Is(err, status.ErrMove))

	has, err := bs.Has(context.Background(), "nineteentons")
	require.NoError(t, err)
	assert.False(t, has)
}

func TestMoveAcrossDevices(t *testing.T) {
	mem := afero.NewMemMapFs()
	require.NoError(t, mem.MkdirAll(testRoot, 0700))
	fs := exdevFs{Fs: mem, root: testRoot}
	require.NoError(t, afero.WriteFile(fs, "/mnt/usb/photo.jpg", []byte("jpeg bytes"), 0640))

	bs := New(fs, testRoot)
	require.NoError(t, bs.Move(context.Background(), "/mnt/usb/photo.jpg", "photokey"))

	b, err := afero.ReadFile(fs, bs.Path("photokey"))
	require.NoError(t, err)
	assert.Equal(t, "jpeg bytes", string(b))

	exists, _ := afero.Exists(fs, "/mnt/usb/photo.jpg")
	assert.False(t, exists)

	exists, _ = afero.Exists(fs, filepath.Join(testRoot, nestedPutStageName, "photokey"))
	assert.False(t, exists, "nothing must be left in the staging area")

	keys, err := bs.Keys(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"photokey"}, keys)
}

func TestInstrumented(t *testing.T) {
	bs, _ := setupStore(t)
	is := storage.Instrument(zaptest.NewLogger(t), bs)

	has, err := is.Has(context.Background(), "sixteentons")
	require.NoError(t, err)
	assert.True(t, has)
	assert.Equal(t, bs.Path("x"), is.Path("x"))
	assert.Equal(t, "localfs@"+testRoot, is.String())
}
