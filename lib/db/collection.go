package db

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// --------------------------------------------------------------------------
// Collection
// --------------------------------------------------------------------------

// Collection is a named key-value namespace inside a Database. Keys are
// strings; values are anything the database's serializer accepts. Every
// write stamps the affected rows with the write time, which drives
// IterByDate and LastModified.
//
// Collection handles are cheap; all state lives in the backing table.
//
// Thread-safety: a Collection is safe for concurrent use. The database
// connection serializes statements, and sqlite guarantees per-statement
// atomicity.
type Collection struct {
	name  string
	table string
	db    *Database
}

// Name returns the collection's name as given to GetOrCreateCollection.
func (c *Collection) Name() string {
	return c.name
}

// Size returns the number of entries in the collection.
func (c *Collection) Size() (int, error) {
	var n int
	err := c.db.conn.QueryRow(fmt.Sprintf(`SELECT count(*) FROM %s`, c.table)).Scan(&n)
	if err != nil {
		return 0, WrapError(RetCStorage, fmt.Sprintf("size of %q", c.name), err)
	}
	return n, nil
}

// Contains reports whether the collection holds an entry for key.
func (c *Collection) Contains(key string) (bool, error) {
	var one int
	err := c.db.conn.QueryRow(
		fmt.Sprintf(`SELECT 1 FROM %s WHERE key = ?`, c.table), key,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, WrapError(RetCStorage, fmt.Sprintf("contains in %q", c.name), err)
	}
	return true, nil
}

// Keys returns all keys in storage order.
func (c *Collection) Keys() ([]string, error) {
	rows, err := c.db.conn.Query(fmt.Sprintf(`SELECT key FROM %s`, c.table))
	if err != nil {
		return nil, WrapError(RetCStorage, fmt.Sprintf("keys of %q", c.name), err)
	}
	defer rows.Close()

	keys := []string{}
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, WrapError(RetCStorage, fmt.Sprintf("keys of %q", c.name), err)
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, WrapError(RetCStorage, fmt.Sprintf("keys of %q", c.name), err)
	}
	return keys, nil
}

// --------------------------------------------------------------------------
// Reads
// --------------------------------------------------------------------------

// Get fetches the given keys and returns a map of the entries that exist.
// Keys with no entry are simply absent from the result; a batch read never
// fails on missing keys. Use ItemGet when a missing key is an error.
func (c *Collection) Get(keys ...string) (map[string]any, error) {
	c.db.metrics.gets.Inc()

	out := make(map[string]any, len(keys))
	if len(keys) == 0 {
		return out, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(keys)), ",")
	args := make([]any, len(keys))
	for i, k := range keys {
		args[i] = k
	}

	rows, err := c.db.conn.Query(
		fmt.Sprintf(`SELECT key, value FROM %s WHERE key IN (%s)`, c.table, placeholders),
		args...,
	)
	if err != nil {
		return nil, WrapError(RetCStorage, fmt.Sprintf("get from %q", c.name), err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			k    string
			blob []byte
		)
		if err := rows.Scan(&k, &blob); err != nil {
			return nil, WrapError(RetCStorage, fmt.Sprintf("get from %q", c.name), err)
		}
		v, err := c.db.ser.Deserialize(blob)
		if err != nil {
			return nil, WrapError(RetCSerialization, fmt.Sprintf("decode value of %q", k), err)
		}
		out[k] = v
	}
	if err := rows.Err(); err != nil {
		return nil, WrapError(RetCStorage, fmt.Sprintf("get from %q", c.name), err)
	}
	return out, nil
}

// ItemGet fetches a single entry and fails with a key-not-found error if no
// entry for key exists.
func (c *Collection) ItemGet(key string) (any, error) {
	c.db.metrics.gets.Inc()

	var blob []byte
	err := c.db.conn.QueryRow(
		fmt.Sprintf(`SELECT value FROM %s WHERE key = ?`, c.table), key,
	).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, NewError(RetCKeyNotFound, fmt.Sprintf("key %q not found in collection %q", key, c.name))
	}
	if err != nil {
		return nil, WrapError(RetCStorage, fmt.Sprintf("get from %q", c.name), err)
	}

	v, err := c.db.ser.Deserialize(blob)
	if err != nil {
		return nil, WrapError(RetCSerialization, fmt.Sprintf("decode value of %q", key), err)
	}
	return v, nil
}

// LastModified returns the time the entry for key was last written. It fails
// with a key-not-found error if no entry exists.
func (c *Collection) LastModified(key string) (time.Time, error) {
	var ts int64
	err := c.db.conn.QueryRow(
		fmt.Sprintf(`SELECT ts FROM %s WHERE key = ?`, c.table), key,
	).Scan(&ts)
	if err == sql.ErrNoRows {
		return time.Time{}, NewError(RetCKeyNotFound, fmt.Sprintf("key %q not found in collection %q", key, c.name))
	}
	if err != nil {
		return time.Time{}, WrapError(RetCStorage, fmt.Sprintf("last-modified in %q", c.name), err)
	}
	return time.Unix(0, ts), nil
}

// --------------------------------------------------------------------------
// Writes
// --------------------------------------------------------------------------

// Set stores value under key, overwriting any previous entry and updating
// its modification time.
func (c *Collection) Set(key string, value any) error {
	c.db.metrics.sets.Inc()

	blob, err := c.db.ser.Serialize(value)
	if err != nil {
		return WrapError(RetCSerialization, fmt.Sprintf("encode value of %q", key), err)
	}

	_, err = c.db.conn.Exec(
		fmt.Sprintf(`REPLACE INTO %s (key, value, ts) VALUES (?, ?, ?)`, c.table),
		key, blob, time.Now().UnixNano(),
	)
	if err != nil {
		return WrapError(RetCStorage, fmt.Sprintf("set in %q", c.name), err)
	}

	c.db.logger.Debug("set", zap.String("collection", c.name), zap.String("key", key))
	return nil
}

// SetAll stores all entries of values in one transaction. Every entry gets
// the same modification timestamp, captured once at the start of the call,
// so a batch is indistinguishable from a single simultaneous write in
// IterByDate order. Either all entries are written or none are.
func (c *Collection) SetAll(values map[string]any) error {
	if len(values) == 0 {
		return nil
	}
	c.db.metrics.sets.Inc()

	// serialize everything up front so an unsupported value rejects the
	// whole batch before any row is touched
	blobs := make(map[string][]byte, len(values))
	for k, v := range values {
		blob, err := c.db.ser.Serialize(v)
		if err != nil {
			return WrapError(RetCSerialization, fmt.Sprintf("encode value of %q", k), err)
		}
		blobs[k] = blob
	}

	ts := time.Now().UnixNano()

	tx, err := c.db.conn.Begin()
	if err != nil {
		return WrapError(RetCStorage, fmt.Sprintf("set batch in %q", c.name), err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(fmt.Sprintf(`REPLACE INTO %s (key, value, ts) VALUES (?, ?, ?)`, c.table))
	if err != nil {
		return WrapError(RetCStorage, fmt.Sprintf("set batch in %q", c.name), err)
	}
	defer stmt.Close()

	for k, blob := range blobs {
		if _, err := stmt.Exec(k, blob, ts); err != nil {
			return WrapError(RetCStorage, fmt.Sprintf("set batch in %q", c.name), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return WrapError(RetCStorage, fmt.Sprintf("set batch in %q", c.name), err)
	}

	c.db.logger.Debug("set batch", zap.String("collection", c.name), zap.Int("entries", len(values)))
	return nil
}

// Delete removes the entries for the given keys. Keys without an entry are
// ignored; a batch delete never fails on missing keys. Use ItemDelete when
// a missing key is an error.
func (c *Collection) Delete(keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	c.db.metrics.deletes.Inc()

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(keys)), ",")
	args := make([]any, len(keys))
	for i, k := range keys {
		args[i] = k
	}

	_, err := c.db.conn.Exec(
		fmt.Sprintf(`DELETE FROM %s WHERE key IN (%s)`, c.table, placeholders),
		args...,
	)
	if err != nil {
		return WrapError(RetCStorage, fmt.Sprintf("delete from %q", c.name), err)
	}

	c.db.logger.Debug("delete", zap.String("collection", c.name), zap.Int("keys", len(keys)))
	return nil
}

// ItemDelete removes a single entry and fails with a key-not-found error if
// no entry for key exists.
func (c *Collection) ItemDelete(key string) error {
	c.db.metrics.deletes.Inc()

	res, err := c.db.conn.Exec(
		fmt.Sprintf(`DELETE FROM %s WHERE key = ?`, c.table), key,
	)
	if err != nil {
		return WrapError(RetCStorage, fmt.Sprintf("delete from %q", c.name), err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return WrapError(RetCStorage, fmt.Sprintf("delete from %q", c.name), err)
	}
	if affected == 0 {
		return NewError(RetCKeyNotFound, fmt.Sprintf("key %q not found in collection %q", key, c.name))
	}

	c.db.logger.Debug("delete", zap.String("collection", c.name), zap.String("key", key))
	return nil
}

// --------------------------------------------------------------------------
// Iteration
// --------------------------------------------------------------------------

// Items calls fn for every entry in storage order. Iteration stops at the
// first error fn returns, and that error is passed through unchanged.
//
// fn must not call other methods of the collection or its database: the
// iteration cursor holds the shared connection until the last row is
// consumed, so a nested query blocks indefinitely.
func (c *Collection) Items(fn func(key string, value any) error) error {
	return c.iterate(
		fmt.Sprintf(`SELECT key, value, ts FROM %s`, c.table),
		func(key string, value any, _ time.Time) error {
			return fn(key, value)
		},
	)
}

// IterByDate calls fn for every entry ordered by modification time, oldest
// first, or newest first when reverse is set. Entries written in the same
// batch share a timestamp and are visited in key order within it. Iteration
// stops at the first error fn returns, and that error is passed through
// unchanged.
//
// fn must not call other methods of the collection or its database: the
// iteration cursor holds the shared connection until the last row is
// consumed, so a nested query blocks indefinitely.
func (c *Collection) IterByDate(reverse bool, fn func(key string, value any) error) error {
	return c.IterByDateWithTime(reverse, func(key string, value any, _ time.Time) error {
		return fn(key, value)
	})
}

// IterByDateWithTime is IterByDate with each entry's modification time
// passed to fn. The timestamp comes out of the iteration query itself, so
// callers that need it do not have to call LastModified from inside the
// callback (which would block on the shared connection).
func (c *Collection) IterByDateWithTime(reverse bool, fn func(key string, value any, modified time.Time) error) error {
	dir := "ASC"
	if reverse {
		dir = "DESC"
	}
	return c.iterate(
		fmt.Sprintf(`SELECT key, value, ts FROM %s ORDER BY ts %s, key ASC`, c.table, dir),
		fn,
	)
}

func (c *Collection) iterate(query string, fn func(key string, value any, modified time.Time) error) error {
	c.db.metrics.iterations.Inc()

	rows, err := c.db.conn.Query(query)
	if err != nil {
		return WrapError(RetCStorage, fmt.Sprintf("iterate %q", c.name), err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			k    string
			blob []byte
			ts   int64
		)
		if err := rows.Scan(&k, &blob, &ts); err != nil {
			return WrapError(RetCStorage, fmt.Sprintf("iterate %q", c.name), err)
		}
		v, err := c.db.ser.Deserialize(blob)
		if err != nil {
			return WrapError(RetCSerialization, fmt.Sprintf("decode value of %q", k), err)
		}
		if err := fn(k, v, time.Unix(0, ts)); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return WrapError(RetCStorage, fmt.Sprintf("iterate %q", c.name), err)
	}
	return nil
}
