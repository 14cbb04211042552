// Copyright © 2018 One Concern

package index

import (
	"context"
	"database/sql"

	"github.com/oneconcern/zenodotus/pkg/digest"
	"github.com/oneconcern/zenodotus/pkg/index/status"
)

const listQuery = `SELECT e.digest, e.name, t.name, t.value
FROM entries e LEFT JOIN tags t ON t.digest = e.digest
WHERE substr(e.digest, 1, ?) = ?
ORDER BY e.digest, t.rowid`

// EntryTags is an entry together with all its tags
type EntryTags struct {
	Entry `yaml:",inline"`
	Tags  []Tag `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// Iterator walks entries ordered by digest, one entry with its tags at a time.
//
// Rows are fetched lazily. An open iterator holds the only index connection:
// exhaust it or Close it before issuing other calls on the index.
type Iterator struct {
	rows    *sql.Rows
	current EntryTags
	pending *EntryTags // first row of the next entry, read ahead
	err     error
	done    bool
}

// List entries with a digest starting with prefix. The empty prefix lists the whole index.
//
// Each call starts a new traversal.
func (idx *Index) List(ctx context.Context, prefix string) *Iterator {
	p := digest.NormalizePrefix(prefix)
	rows, err := idx.db.QueryContext(ctx, listQuery, len(p), p)
	if err != nil {
		return &Iterator{err: status.ErrIndex.Wrap(err), done: true}
	}
	return &Iterator{rows: rows}
}

// Next advances to the next entry. It returns false when the traversal is complete or failed.
func (it *Iterator) Next() bool {
	if it.done {
		return false
	}

	var current *EntryTags
	if it.pending != nil {
		current, it.pending = it.pending, nil
	}

	for it.rows.Next() {
		var (
			e        Entry
			tagName  sql.NullString
			tagValue sql.NullString
		)
		if err := it.rows.Scan(&e.Digest, &e.Name, &tagName, &tagValue); err != nil {
			it.fail(status.ErrIndex.Wrap(err))
			return false
		}

		if current != nil && current.Digest != e.Digest {
			it.pending = &EntryTags{Entry: e}
			it.pending.addTag(tagName, tagValue)
			it.current = *current
			return true
		}
		if current == nil {
			current = &EntryTags{Entry: e}
		}
		current.addTag(tagName, tagValue)
	}

	if err := it.rows.Err(); err != nil {
		it.fail(status.ErrIndex.Wrap(err))
		return false
	}
	it.done = true
	_ = it.rows.Close()

	if current == nil {
		return false
	}
	it.current = *current
	return true
}

// Entry yields the current entry and its tags
func (it *Iterator) Entry() EntryTags {
	return it.current
}

// Err reports any error that interrupted the traversal
func (it *Iterator) Err() error {
	return it.err
}

// Close releases the iterator. It is safe to call it several times.
func (it *Iterator) Close() error {
	it.done = true
	if it.rows == nil {
		return nil
	}
	return it.rows.Close()
}

func (it *Iterator) fail(err error) {
	it.err = err
	it.done = true
	_ = it.rows.Close()
}

func (et *EntryTags) addTag(name, value sql.NullString) {
	if !name.Valid {
		// entry without any tag (outer join)
		return
	}
	t := Tag{Name: name.String}
	if value.Valid {
		v := value.String
		t.Value = &v
	}
	et.Tags = append(et.Tags, t)
}

// ListApply walks all entries matching a digest prefix and applies a function on each of them.
//
// The traversal stops on the first error returned by apply.
func (idx *Index) ListApply(ctx context.Context, prefix string, apply func(EntryTags) error) error {
	it := idx.List(ctx, prefix)
	defer it.Close()

	for it.Next() {
		if err := apply(it.Entry()); err != nil {
			return err
		}
	}
	return it.Err()
}

// ListAll collects all entries matching a digest prefix
func (idx *Index) ListAll(ctx context.Context, prefix string) ([]EntryTags, error) {
	var result []EntryTags
	err := idx.ListApply(ctx, prefix, func(et EntryTags) error {
		result = append(result, et)
		return nil
	})
	return result, err
}
