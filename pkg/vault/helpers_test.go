// Copyright © 2018 One Concern

package vault

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/oneconcern/zenodotus/pkg/digest"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/sys/unix"
)

type vaultFixture struct {
	cfg    Config
	vault  *Vault
	srcDir string
}

func setupVault(t testing.TB, opts ...Option) (vaultFixture, func()) {
	t.Helper()
	ctx := context.Background()

	cfg := Config{Root: t.TempDir()}
	require.NoError(t, Initialize(ctx, cfg))

	opts = append([]Option{Logger(zaptest.NewLogger(t))}, opts...)
	v, err := Open(ctx, cfg, opts...)
	require.NoError(t, err)

	return vaultFixture{
			cfg:    cfg,
			vault:  v,
			srcDir: t.TempDir(),
		}, func() {
			_ = v.Close()
		}
}

func writeSource(t testing.TB, dir, name, content string) string {
	t.Helper()
	pth := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(pth), 0700))
	require.NoError(t, os.WriteFile(pth, []byte(content), 0600))
	return pth
}

func hashOf(t testing.TB, content string) string {
	t.Helper()
	sum, err := digest.Reader(digest.Default, strings.NewReader(content))
	require.NoError(t, err)
	return sum.Digest
}

func fileExists(t testing.TB, pth string) bool {
	t.Helper()
	_, err := os.Stat(pth)
	if os.IsNotExist(err) {
		return false
	}
	require.NoError(t, err)
	return true
}

func dirNames(t testing.TB, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

// renameFailFs fails all renames with some error
type renameFailFs struct {
	afero.Fs
	err error
}

func (f renameFailFs) Rename(oldname, newname string) error {
	return &os.LinkError{Op: "rename", Old: oldname, New: newname, Err: f.err}
}

// exdevFs simulates sources located on another device than the vault
type exdevFs struct {
	afero.Fs
	root string
}

func (f exdevFs) Rename(oldname, newname string) error {
	if !strings.HasPrefix(oldname, f.root) {
		return &os.LinkError{Op: "rename", Old: oldname, New: newname, Err: unix.EXDEV}
	}
	return f.Fs.Rename(oldname, newname)
}

// mkdirFailFs fails directory creation
type mkdirFailFs struct {
	afero.Fs
}

func (f mkdirFailFs) Mkdir(name string, _ os.FileMode) error {
	return &os.PathError{Op: "mkdir", Path: name, Err: unix.EROFS}
}
