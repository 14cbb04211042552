// Copyright © 2018 One Concern

package vault

import (
	"context"
	"strings"

	"github.com/oneconcern/zenodotus/pkg/digest"
	"github.com/oneconcern/zenodotus/pkg/errors"
	"github.com/oneconcern/zenodotus/pkg/index"
	storagestatus "github.com/oneconcern/zenodotus/pkg/storage/status"
	"go.uber.org/zap"
)

// Problem found on an entry by Verify
type Problem string

// Problems reported by Verify
const (
	ProblemMissing    Problem = "missing from storage"
	ProblemMismatch   Problem = "digest mismatch"
	ProblemUnreadable Problem = "unreadable"
	ProblemOrphan     Problem = "not indexed"
)

// Finding reports an entry that doesn't have a sound storage slot.
//
// For ProblemOrphan, the entry only carries the key of a storage slot that no entry claims.
type Finding struct {
	Entry   index.Entry
	Problem Problem
	Err     error
}

// Verify checks that every entry matching a digest prefix has a storage slot,
// and that re-hashing the content of this slot yields the digest of the entry.
//
// Entries left behind by a failed relocation show up as ProblemMissing.
// Storage slots matching the prefix that no entry claims show up as ProblemOrphan.
func (v *Vault) Verify(ctx context.Context, prefix string) ([]Finding, error) {
	var findings []Finding
	checked := 0
	indexed := make(map[string]struct{})

	err := v.index.ListApply(ctx, prefix, func(et index.EntryTags) error {
		checked++
		indexed[et.Digest] = struct{}{}
		if f, ok := v.verifyEntry(ctx, et.Entry); !ok {
			v.l.Warn("verify", zap.String("digest", f.Entry.Digest), zap.String("problem", string(f.Problem)), zap.Error(f.Err))
			findings = append(findings, f)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	keys, err := v.store.Keys(ctx)
	if err != nil {
		return nil, err
	}
	p := digest.NormalizePrefix(prefix)
	for _, key := range keys {
		if _, ok := indexed[key]; ok || !strings.HasPrefix(key, p) {
			continue
		}
		v.l.Warn("verify", zap.String("slot", key), zap.String("problem", string(ProblemOrphan)))
		findings = append(findings, Finding{Entry: index.Entry{Digest: key}, Problem: ProblemOrphan})
	}

	v.l.Info("verified", zap.Int("entries", checked), zap.Int("problems", len(findings)))
	return findings, nil
}

func (v *Vault) verifyEntry(ctx context.Context, e index.Entry) (Finding, bool) {
	rdr, err := v.store.Get(ctx, e.Digest)
	if err != nil {
		if errors.Is(err, storagestatus.ErrNotFound) {
			return Finding{Entry: e, Problem: ProblemMissing}, false
		}
		return Finding{Entry: e, Problem: ProblemUnreadable, Err: err}, false
	}
	defer rdr.Close()

	sum, err := digest.Reader(v.index.Scheme(), rdr)
	if err != nil {
		return Finding{Entry: e, Problem: ProblemUnreadable, Err: err}, false
	}
	if sum.Digest != e.Digest {
		return Finding{Entry: e, Problem: ProblemMismatch}, false
	}
	return Finding{}, true
}
