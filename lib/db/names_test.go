package db

import "testing"

func TestTableNameRoundTrip(t *testing.T) {
	names := []string{
		"",
		"users",
		"with space",
		"UPPER-and-lower",
		"sqlite_master",
		`"; DROP TABLE x; --`,
		"конфиг",
		"emoji-🗄",
	}

	for _, name := range names {
		table := encodeTableName(name)
		got, ok := decodeTableName(table)
		if !ok {
			t.Errorf("decodeTableName(%q) not recognized", table)
			continue
		}
		if got != name {
			t.Errorf("Expected round trip of %q, got %q", name, got)
		}
	}
}

func TestDecodeTableNameRejectsForeign(t *testing.T) {
	tables := []string{
		"",
		"sqlite_sequence",
		"users",
		"kv_zz",  // not hex
		"kv_abc", // odd length
	}

	for _, table := range tables {
		if name, ok := decodeTableName(table); ok {
			t.Errorf("Expected decodeTableName(%q) to be rejected, got %q", table, name)
		}
	}
}
