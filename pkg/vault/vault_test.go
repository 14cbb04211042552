// Copyright © 2018 One Concern

package vault

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/oneconcern/zenodotus/pkg/errors"
	"github.com/oneconcern/zenodotus/pkg/index"
	indexstatus "github.com/oneconcern/zenodotus/pkg/index/status"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("database/sql.(*DB).connectionOpener"),
	)
}

func strPtr(s string) *string {
	return &s
}

// siblings finds two contents whose digests share their first hex digit
func siblings(t testing.TB) (string, string, string) {
	t.Helper()
	seen := make(map[byte]string, 16)
	for i := 0; i <= 16; i++ {
		content := fmt.Sprintf("file-%d", i)
		first := hashOf(t, content)[0]
		if other, ok := seen[first]; ok {
			return other, content, string(first)
		}
		seen[first] = content
	}
	require.FailNow(t, "pigeonhole principle violated")
	return "", "", ""
}

func TestTag(t *testing.T) {
	ctx := context.Background()
	fx, cleanup := setupVault(t)
	defer cleanup()

	first, second, shared := siblings(t)
	for i, content := range []string{first, second} {
		_, err := fx.vault.Ingest(ctx, Source{
			Path: writeSource(t, fx.srcDir, fmt.Sprintf("%d.txt", i), content),
		})
		require.NoError(t, err)
	}
	h1 := hashOf(t, first)

	t.Run("ambiguous prefix", func(t *testing.T) {
		_, err := fx.vault.Tag(ctx, shared, "color", strPtr("blue"))
		require.Error(t, err)
		assert.True(t, errors.Is(err, indexstatus.ErrAmbiguousPrefix))
	})

	t.Run("unknown prefix", func(t *testing.T) {
		unknown := "0"
		if shared == unknown {
			unknown = "f"
		}
		_, err := fx.vault.Tag(ctx, unknown, "color", strPtr("blue"))
		require.Error(t, err)
		assert.True(t, errors.Is(err, indexstatus.ErrNotFound))
	})

	t.Run("unique prefix", func(t *testing.T) {
		d, err := fx.vault.Tag(ctx, h1[:12], "color", strPtr("blue"))
		require.NoError(t, err)
		assert.Equal(t, h1, d)

		d, err = fx.vault.Tag(ctx, h1, "reviewed", nil)
		require.NoError(t, err)
		assert.Equal(t, h1, d)

		entries, err := fx.vault.index.ListAll(ctx, h1)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, []index.Tag{
			{Name: "color", Value: strPtr("blue")},
			{Name: "reviewed"},
		}, entries[0].Tags)
	})

	t.Run("nothing else was tagged", func(t *testing.T) {
		entries, err := fx.vault.index.ListAll(ctx, hashOf(t, second))
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Empty(t, entries[0].Tags)
	})
}

func TestList(t *testing.T) {
	ctx := context.Background()
	fx, cleanup := setupVault(t)
	defer cleanup()

	first, second, shared := siblings(t)
	third := "a third file"
	for i, content := range []string{first, second, third} {
		_, err := fx.vault.Ingest(ctx, Source{
			Path: writeSource(t, fx.srcDir, fmt.Sprintf("%d.txt", i), content),
		})
		require.NoError(t, err)
	}

	t.Run("everything", func(t *testing.T) {
		it := fx.vault.List(ctx, "")
		defer it.Close()

		var digests []string
		for it.Next() {
			digests = append(digests, it.Entry().Digest)
		}
		require.NoError(t, it.Err())
		assert.ElementsMatch(t, []string{hashOf(t, first), hashOf(t, second), hashOf(t, third)}, digests)
	})

	t.Run("by prefix", func(t *testing.T) {
		var names []string
		require.NoError(t, fx.vault.ListApply(ctx, shared, func(et index.EntryTags) error {
			assert.Equal(t, shared, et.Digest[:1])
			names = append(names, et.Name)
			return nil
		}))
		assert.Subset(t, names, []string{"0.txt", "1.txt"})
	})
}

func TestVerify(t *testing.T) {
	ctx := context.Background()
	fx, cleanup := setupVault(t)
	defer cleanup()

	for i, content := range []string{"one", "two"} {
		_, err := fx.vault.Ingest(ctx, Source{
			Path: writeSource(t, fx.srcDir, fmt.Sprintf("%d.txt", i), content),
		})
		require.NoError(t, err)
	}

	findings, err := fx.vault.Verify(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, findings)

	tampered := hashOf(t, "two")
	require.NoError(t, os.Chmod(filepath.Join(fx.cfg.StorePath(), tampered), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(fx.cfg.StorePath(), tampered), []byte("three"), 0600))

	findings, err = fx.vault.Verify(ctx, "")
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, ProblemMismatch, findings[0].Problem)
	assert.Equal(t, tampered, findings[0].Entry.Digest)

	findings, err = fx.vault.Verify(ctx, hashOf(t, "one"))
	require.NoError(t, err)
	assert.Empty(t, findings, "verification is restricted to a prefix")
}

func TestVerifyOrphans(t *testing.T) {
	ctx := context.Background()
	fx, cleanup := setupVault(t)
	defer cleanup()

	_, err := fx.vault.Ingest(ctx, Source{Path: writeSource(t, fx.srcDir, "one.txt", "one")})
	require.NoError(t, err)

	orphan := hashOf(t, "stray")
	writeSource(t, fx.cfg.StorePath(), orphan, "stray")
	// directories in the storage area, such as the staging area, are not slots
	require.NoError(t, os.Mkdir(filepath.Join(fx.cfg.StorePath(), ".put-stage"), 0700))

	findings, err := fx.vault.Verify(ctx, "")
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, ProblemOrphan, findings[0].Problem)
	assert.Equal(t, orphan, findings[0].Entry.Digest)
	assert.Empty(t, findings[0].Entry.Name)

	findings, err = fx.vault.Verify(ctx, hashOf(t, "one"))
	require.NoError(t, err)
	assert.Empty(t, findings, "orphans outside of the prefix are not reported")

	findings, err = fx.vault.Verify(ctx, strings.ToUpper(orphan[:6]))
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, ProblemOrphan, findings[0].Problem)
}
