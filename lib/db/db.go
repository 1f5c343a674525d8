package db

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/puzpuzpuz/xsync/v3"
	"github.com/wildstrudel/nosqlite/lib/serializer"
	"go.uber.org/zap"

	_ "modernc.org/sqlite"
)

// --------------------------------------------------------------------------
// Options
// --------------------------------------------------------------------------

// Options configures a Database during Open.
type Options struct {
	// Serializer encodes values into the BLOB column and back.
	// Defaults to the binary serializer.
	Serializer serializer.ISerializer
	// Logger receives debug-level events (opens, table creation, drops).
	// Defaults to a no-op logger.
	Logger *zap.Logger
}

// DefaultOptions returns the default Database options.
func DefaultOptions() *Options {
	return &Options{
		Serializer: serializer.NewBinarySerializer(),
		Logger:     zap.NewNop(),
	}
}

// --------------------------------------------------------------------------
// Database
// --------------------------------------------------------------------------

// Database represents one single-file sqlite database holding zero or more
// named collections. Collections map 1:1 to tables; the catalog is derived
// from sqlite_master via the reversible table-name encoding in names.go.
//
// A Database owns one *sql.DB shared by all collection handles. Operations
// against different collections are not atomic with respect to each other
// unless the caller wraps them in a single transaction via Handle().
type Database struct {
	path        string
	conn        *sql.DB
	ser         serializer.ISerializer
	logger      *zap.Logger
	collections *xsync.MapOf[string, *Collection]
	metrics     *opMetrics
}

// DatabaseInfo reports metadata about a database file.
type DatabaseInfo struct {
	Path        string `json:"path"`
	SizeBytes   int64  `json:"size_bytes"`
	Collections int    `json:"collections"`
}

// Open opens the database file at path, creating it if it does not exist.
// It fails with a storage error if the path is inaccessible or the file is
// not a valid sqlite database. The returned Database must be released with
// Close once no longer needed.
func Open(path string, opts *Options) (*Database, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	ser := opts.Serializer
	if ser == nil {
		ser = serializer.NewBinarySerializer()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, WrapError(RetCStorage, fmt.Sprintf("open %s", path), err)
	}

	// sqlite allows a single writer per file; one pooled connection keeps
	// statements serialized and avoids spurious SQLITE_BUSY errors
	conn.SetMaxOpenConns(1)

	// validate the file before handing it out: a corrupt or foreign file
	// fails on the first catalog query
	var n int
	if err := conn.QueryRow(`SELECT count(*) FROM sqlite_master`).Scan(&n); err != nil {
		_ = conn.Close()
		return nil, WrapError(RetCStorage, fmt.Sprintf("%s is not a valid database file", path), err)
	}

	logger.Debug("opened database", zap.String("path", path))

	return &Database{
		path:        path,
		conn:        conn,
		ser:         ser,
		logger:      logger,
		collections: xsync.NewMapOf[string, *Collection](),
		metrics:     newOpMetrics(),
	}, nil
}

// Close releases the underlying connection. The Database and all collection
// handles obtained from it must not be used afterwards.
func (d *Database) Close() error {
	d.logger.Debug("closing database", zap.String("path", d.path))
	if err := d.conn.Close(); err != nil {
		return WrapError(RetCStorage, "close", err)
	}
	return nil
}

// CollectionNames returns the names of all collections in catalog order
// (the sqlite_master order, which is stable absent schema mutation).
func (d *Database) CollectionNames() ([]string, error) {
	rows, err := d.conn.Query(`SELECT name FROM sqlite_master WHERE type = 'table'`)
	if err != nil {
		return nil, WrapError(RetCStorage, "list collections", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var table string
		if err := rows.Scan(&table); err != nil {
			return nil, WrapError(RetCStorage, "list collections", err)
		}
		// skip sqlite internal tables and anything else we did not create
		if name, ok := decodeTableName(table); ok {
			names = append(names, name)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, WrapError(RetCStorage, "list collections", err)
	}
	return names, nil
}

// GetOrCreateCollection returns the collection with the given name, creating
// its backing table first if the collection does not exist yet. The call is
// idempotent; handles are cached, so repeated calls with the same name
// return the same *Collection.
func (d *Database) GetOrCreateCollection(name string) (*Collection, error) {
	if col, ok := d.collections.Load(name); ok {
		return col, nil
	}

	table := encodeTableName(name)

	// encoded table names contain only [a-z0-9_] and are safe to splice
	// into the statement text
	stmt := fmt.Sprintf(
		`CREATE TABLE IF NOT EXISTS %s (key TEXT PRIMARY KEY, value BLOB NOT NULL, ts INTEGER NOT NULL)`,
		table,
	)
	if _, err := d.conn.Exec(stmt); err != nil {
		return nil, WrapError(RetCStorage, fmt.Sprintf("create collection %q", name), err)
	}

	d.logger.Debug("collection ready", zap.String("name", name), zap.String("table", table))

	col := &Collection{name: name, table: table, db: d}
	actual, _ := d.collections.LoadOrStore(name, col)
	return actual, nil
}

// DropCollection deletes the collection's table and all its rows. It returns
// a collection-not-found error if no collection with that name exists;
// dropping is the one collection-level operation that is strict about
// existence.
func (d *Database) DropCollection(name string) error {
	table := encodeTableName(name)

	var found string
	err := d.conn.QueryRow(
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table,
	).Scan(&found)
	if err == sql.ErrNoRows {
		return NewError(RetCCollectionNotFound, fmt.Sprintf("collection %q does not exist", name))
	}
	if err != nil {
		return WrapError(RetCStorage, fmt.Sprintf("drop collection %q", name), err)
	}

	if _, err := d.conn.Exec(fmt.Sprintf(`DROP TABLE %s`, table)); err != nil {
		return WrapError(RetCStorage, fmt.Sprintf("drop collection %q", name), err)
	}

	d.collections.Delete(name)
	d.logger.Debug("dropped collection", zap.String("name", name))
	return nil
}

// Info returns metadata about the database file.
func (d *Database) Info() (DatabaseInfo, error) {
	names, err := d.CollectionNames()
	if err != nil {
		return DatabaseInfo{}, err
	}

	info := DatabaseInfo{Path: d.path, Collections: len(names)}
	if fi, err := os.Stat(d.path); err == nil {
		info.SizeBytes = fi.Size()
	}
	return info, nil
}

// Handle exposes the underlying *sql.DB. It exists so callers can wrap
// operations spanning multiple collections in one transaction; everyday use
// goes through Collection methods.
func (d *Database) Handle() *sql.DB {
	return d.conn
}
