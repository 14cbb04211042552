// Copyright © 2018 One Concern

package index

import (
	"context"
	"database/sql"

	"github.com/oneconcern/zenodotus/pkg/digest"
	"github.com/oneconcern/zenodotus/pkg/index/status"
	"go.uber.org/zap"
)

// Tag is a free-form annotation on an entry. The value is optional.
type Tag struct {
	Name  string  `json:"name" yaml:"name"`
	Value *string `json:"value,omitempty" yaml:"value,omitempty"`
}

func (t Tag) String() string {
	if t.Value == nil {
		return t.Name
	}
	return t.Name + "=" + *t.Value
}

// Resolve a digest prefix to the full digest of the only entry it matches.
//
// The empty prefix matches every entry.
func (idx *Index) Resolve(ctx context.Context, prefix string) (string, error) {
	p := digest.NormalizePrefix(prefix)

	rows, err := idx.db.QueryContext(ctx,
		`SELECT digest FROM entries WHERE substr(digest, 1, ?) = ? ORDER BY digest LIMIT 2`, len(p), p)
	if err != nil {
		return "", status.ErrIndex.Wrap(err)
	}
	defer rows.Close()

	matches := make([]string, 0, 2)
	for rows.Next() {
		var d string
		if err = rows.Scan(&d); err != nil {
			return "", status.ErrIndex.Wrap(err)
		}
		matches = append(matches, d)
	}
	if err = rows.Err(); err != nil {
		return "", status.ErrIndex.Wrap(err)
	}

	switch len(matches) {
	case 0:
		return "", status.ErrNotFound.WrapMessage("no entry with digest prefix %q", p)
	case 1:
		return matches[0], nil
	default:
		return "", status.ErrAmbiguousPrefix.WrapMessage("%q matches several entries: use a longer prefix", p)
	}
}

// AddTag appends a tag to the entry matched by a digest prefix, and returns the full digest of this entry.
//
// Tags are never deduplicated.
func (idx *Index) AddTag(ctx context.Context, prefix, name string, value *string) (string, error) {
	d, err := idx.Resolve(ctx, prefix)
	if err != nil {
		return "", err
	}

	var v sql.NullString
	if value != nil {
		v = sql.NullString{String: *value, Valid: true}
	}
	if _, err = idx.db.ExecContext(ctx,
		`INSERT INTO tags (digest, name, value) VALUES (?, ?, ?)`, d, name, v); err != nil {
		return "", status.ErrIndex.WrapWithLog(idx.l, err, zap.String("digest", d), zap.String("tag", name))
	}
	idx.l.Debug("tag added", zap.String("digest", d), zap.String("tag", name))
	return d, nil
}
