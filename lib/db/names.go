package db

import (
	"encoding/hex"
	"strings"
)

// Collection names are arbitrary strings, SQL identifiers are not. Tables
// are therefore named with a fixed prefix followed by the lowercase hex
// encoding of the collection name bytes. The mapping is deterministic and
// reversible, so distinct collection names can never collide and the catalog
// can be rebuilt from sqlite_master alone.
const tablePrefix = "kv_"

// encodeTableName derives the backing table name for a collection name.
func encodeTableName(collection string) string {
	return tablePrefix + hex.EncodeToString([]byte(collection))
}

// decodeTableName recovers the collection name from a table name. The
// boolean is false for tables that do not belong to the catalog (wrong
// prefix or malformed hex), for example sqlite's own internal tables.
func decodeTableName(table string) (string, bool) {
	enc, ok := strings.CutPrefix(table, tablePrefix)
	if !ok {
		return "", false
	}
	raw, err := hex.DecodeString(enc)
	if err != nil {
		return "", false
	}
	return string(raw), true
}
