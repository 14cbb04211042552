// Copyright © 2018 One Concern

package index

import (
	"context"
	"database/sql"
	"net/url"
	"path/filepath"
	"strconv"

	"github.com/oneconcern/zenodotus/pkg/digest"
	"github.com/oneconcern/zenodotus/pkg/errors"
	"github.com/oneconcern/zenodotus/pkg/index/status"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

const (
	// LatestVersion is the schema revision created and understood by this package
	LatestVersion = 1

	driverName = "sqlite"

	settingVersion = "version"
	settingDigest  = "digest"

	checkTableQuery = `SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`
	getSettingQuery = `SELECT value FROM settings WHERE name = ?`
)

// upgradeStep brings a schema from the version it is registered for to the next one
type upgradeStep func(context.Context, *sql.DB, settings) error

// upgrades maps a source schema version to the step that upgrades it.
// Version 0 stands for a fresh (or never bootstrapped) store.
var upgrades = map[int]upgradeStep{
	0: bootstrapV1,
}

var createV1Statements = []string{
	`CREATE TABLE settings (name TEXT NOT NULL PRIMARY KEY, value TEXT NOT NULL)`,
	`CREATE TABLE entries (digest TEXT NOT NULL PRIMARY KEY, name TEXT NOT NULL UNIQUE)`,
	`CREATE TABLE tags (digest TEXT NOT NULL REFERENCES entries(digest), name TEXT NOT NULL, value TEXT DEFAULT NULL)`,
	`CREATE INDEX tags_by_digest ON tags(digest)`,
}

// Index is a handle on the persistent index of a vault
type Index struct {
	db      *sql.DB
	path    string
	version int
	scheme  string
	l       *zap.Logger
}

// Open the index store at path.
//
// A store without schema is bootstrapped to LatestVersion. Statements run one at a time:
// a failure leaves whatever was already created in place.
func Open(ctx context.Context, path string, opts ...Option) (*Index, error) {
	s := defaultSettings()
	for _, apply := range opts {
		apply(&s)
	}
	l := s.l.With(zap.String("index", path))

	if _, err := digest.HexSize(s.scheme); err != nil {
		return nil, status.ErrSchema.Wrap(err)
	}

	if !s.create {
		exists, err := afero.Exists(afero.NewOsFs(), path)
		if err != nil {
			return nil, status.ErrSchema.Wrap(err)
		}
		if !exists {
			return nil, status.ErrSchema.WrapMessage("index %q does not exist", path)
		}
	}

	dsn, err := dataSourceName(path)
	if err != nil {
		return nil, status.ErrSchema.Wrap(err)
	}
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, status.ErrSchema.WrapWithLog(l, err)
	}
	// a single connection: the index offers no more guarantees than SQLite does for one connection
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	idx := &Index{
		db:   db,
		path: path,
		l:    l,
	}
	if err = idx.bootstrap(ctx, s); err != nil {
		_ = db.Close()
		return nil, err
	}
	return idx, nil
}

func (idx *Index) bootstrap(ctx context.Context, s settings) error {
	if err := idx.db.PingContext(ctx); err != nil {
		return status.ErrSchema.WrapWithLog(idx.l, err)
	}

	version, err := readVersion(ctx, idx.db)
	if err != nil {
		return status.ErrSchema.WrapWithLog(idx.l, err)
	}

	for version < LatestVersion {
		step, ok := upgrades[version]
		if !ok {
			return status.ErrSchema.Wrap(status.ErrUnsupportedVersion.WrapMessage("no upgrade path from version %d", version))
		}
		idx.l.Debug("upgrading index schema", zap.Int("from", version))
		if err = step(ctx, idx.db, s); err != nil {
			return status.ErrSchema.WrapWithLog(idx.l, err, zap.Int("from", version))
		}

		next, err := readVersion(ctx, idx.db)
		if err != nil {
			return status.ErrSchema.WrapWithLog(idx.l, err)
		}
		if next <= version {
			return status.ErrSchema.WrapMessage("upgrade from version %d did not bump the schema version", version)
		}
		version = next
	}

	if version > LatestVersion {
		return status.ErrSchema.Wrap(status.ErrUnsupportedVersion.WrapMessage("index has version %d, expected at most %d", version, LatestVersion))
	}

	scheme, err := readSetting(ctx, idx.db, settingDigest)
	if err != nil {
		return status.ErrSchema.WrapWithLog(idx.l, err)
	}
	if _, err = digest.HexSize(scheme); err != nil {
		return status.ErrSchema.Wrap(err)
	}

	idx.version = version
	idx.scheme = scheme
	idx.l.Debug("index opened", zap.Int("version", version), zap.String("digest", scheme))
	return nil
}

// dataSourceName builds a file URI for the driver: path characters such as '?' or '#' are escaped,
// so that they are never taken for the query part
func dataSourceName(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	u := url.URL{
		Scheme:   "file",
		Path:     filepath.ToSlash(abs),
		RawQuery: "_pragma=foreign_keys(1)",
	}
	return u.String(), nil
}

// readVersion yields the stored schema version, or 0 when there is none
func readVersion(ctx context.Context, db *sql.DB) (int, error) {
	var table string
	err := db.QueryRowContext(ctx, checkTableQuery, "settings").Scan(&table)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return 0, nil
	case err != nil:
		return 0, err
	}

	v, err := readSetting(ctx, db, settingVersion)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return 0, nil
	case err != nil:
		return 0, err
	}

	version, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.New("invalid schema version").WrapMessage("%q", v)
	}
	return version, nil
}

func readSetting(ctx context.Context, db *sql.DB, name string) (string, error) {
	var value string
	err := db.QueryRowContext(ctx, getSettingQuery, name).Scan(&value)
	return value, err
}

// bootstrapV1 creates the full schema and seeds settings.
//
// The version is seeded last, so that an interrupted bootstrap never passes for a complete one.
func bootstrapV1(ctx context.Context, db *sql.DB, s settings) error {
	for _, stmt := range createV1Statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return errors.New("cannot create table").WrapMessage("%v (query: %s)", err, stmt)
		}
	}
	if _, err := db.ExecContext(ctx,
		`INSERT INTO settings (name, value) VALUES (?, ?)`, settingDigest, s.scheme); err != nil {
		return err
	}
	_, err := db.ExecContext(ctx,
		`INSERT INTO settings (name, value) VALUES (?, ?)`, settingVersion, strconv.Itoa(1))
	return err
}

// Version of the index schema
func (idx *Index) Version() int {
	return idx.version
}

// Scheme is the digest scheme used by all entries of this index
func (idx *Index) Scheme() string {
	return idx.scheme
}

// Path to the index store
func (idx *Index) Path() string {
	return idx.path
}

// Close the index store
func (idx *Index) Close() error {
	return idx.db.Close()
}
