// Copyright © 2018 One Concern

package index

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/oneconcern/zenodotus/pkg/digest"
	"github.com/oneconcern/zenodotus/pkg/errors"
	"github.com/oneconcern/zenodotus/pkg/index/status"
	"go.uber.org/zap"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Entry is an indexed file: its digest and its logical name.
//
// Entries are immutable and never deleted.
type Entry struct {
	Digest string `json:"digest" yaml:"digest"`
	Name   string `json:"name" yaml:"name"`
	_      struct{}
}

func (e Entry) String() string {
	return fmt.Sprintf("%s %q", e.Digest, e.Name)
}

// ConflictError reports the entries that prevent a new (digest, name) pair from being indexed
type ConflictError struct {
	Digest    string
	Name      string
	Conflicts []Entry
}

func (e *ConflictError) Error() string {
	conflicts := make([]string, 0, len(e.Conflicts))
	for _, c := range e.Conflicts {
		conflicts = append(conflicts, c.String())
	}
	return fmt.Sprintf("%v: digest %s or name %q already indexed as [%s]",
		status.ErrConstraint, e.Digest, e.Name, strings.Join(conflicts, ", "))
}

// Unwrap yields status.ErrConstraint
func (e *ConflictError) Unwrap() error {
	return status.ErrConstraint
}

// DuplicateCheck returns all entries with the same digest or the same name.
//
// A non-empty result means that (digest, name) cannot be inserted.
func (idx *Index) DuplicateCheck(ctx context.Context, d, name string) ([]Entry, error) {
	rows, err := idx.db.QueryContext(ctx,
		`SELECT digest, name FROM entries WHERE digest = ? OR name = ? ORDER BY digest`, d, name)
	if err != nil {
		return nil, status.ErrIndex.Wrap(err)
	}
	defer rows.Close()

	var conflicts []Entry
	for rows.Next() {
		var e Entry
		if err = rows.Scan(&e.Digest, &e.Name); err != nil {
			return nil, status.ErrIndex.Wrap(err)
		}
		conflicts = append(conflicts, e)
	}
	if err = rows.Err(); err != nil {
		return nil, status.ErrIndex.Wrap(err)
	}
	return conflicts, nil
}

// CheckDuplicate is like DuplicateCheck, but yields a *ConflictError whenever some entry conflicts
func (idx *Index) CheckDuplicate(ctx context.Context, d, name string) error {
	conflicts, err := idx.DuplicateCheck(ctx, d, name)
	if err != nil {
		return err
	}
	if len(conflicts) > 0 {
		return &ConflictError{Digest: d, Name: name, Conflicts: conflicts}
	}
	return nil
}

// Insert a new entry.
//
// Uniqueness of both the digest and the name is enforced by the store itself,
// regardless of any prior DuplicateCheck.
func (idx *Index) Insert(ctx context.Context, d, name string) error {
	if !digest.IsValid(idx.scheme, d) {
		return status.ErrIndex.WrapMessage("%q is not a valid %s digest", d, idx.scheme)
	}
	if name == "" {
		return status.ErrIndex.WrapMessage("an entry must have a name")
	}

	_, err := idx.db.ExecContext(ctx, `INSERT INTO entries (digest, name) VALUES (?, ?)`, d, name)
	if err != nil {
		if isConstraint(err) {
			return status.ErrConstraint.Wrap(err)
		}
		return status.ErrIndex.WrapWithLog(idx.l, err, zap.String("digest", d))
	}
	idx.l.Debug("entry recorded", zap.String("digest", d), zap.String("name", name))
	return nil
}

// Get the entry for a full digest
func (idx *Index) Get(ctx context.Context, d string) (Entry, error) {
	e := Entry{}
	err := idx.db.QueryRowContext(ctx, `SELECT digest, name FROM entries WHERE digest = ?`, d).
		Scan(&e.Digest, &e.Name)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return Entry{}, status.ErrNotFound.WrapMessage("no entry with digest %s", d)
	case err != nil:
		return Entry{}, status.ErrIndex.Wrap(err)
	}
	return e, nil
}

func isConstraint(err error) bool {
	var serr *sqlite.Error
	if !errors.As(err, &serr) {
		return false
	}
	// extended result codes keep the primary code in the low byte
	return serr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT
}
