// Package tursokv provides key-value storage drivers behind one contract, with
// a SQL driver for Turso/libSQL and SQLite databases.
//
// # Overview
//
// Every driver implements Driver: HasItem, GetItem, SetItem, RemoveItem,
// GetKeys and Clear over opaque string values. Store[TKey] wraps a driver with
// typed keys and error logging.
//
// # Turso driver
//
// The Turso driver keeps all data in one table:
//
//	CREATE TABLE IF NOT EXISTS kv (key TEXT PRIMARY KEY, value TEXT)
//
// Each operation is a single parameterized statement. Only the table name is
// interpolated, and it must match ^\w+$.
//
//	d, err := tursokv.NewTurso(tursokv.Options{
//	    URL:  "libsql://my-db.turso.io",
//	    Base: "sessions",
//	})
//	if err != nil {
//	    return err
//	}
//	defer d.Dispose()
//
//	_ = d.SetItem(ctx, "user:1001", "Alice", 0)
//	value, ok, _ := d.GetItem(ctx, "user:1001")
//
// When URL or AuthToken are empty, TURSO_DATABASE_URL and TURSO_AUTH_TOKEN are
// read on first use. Local databases (":memory:", "file:" and "file://" URLs)
// are served by modernc.org/sqlite.
//
// # Namespacing
//
// With a base, keys are stored as "base:key". GetKeys and Clear work on keys
// under the driver's base, and GetKeys strips it from returned keys. The separator is
// not escaped, so base "a" with key "b:c" and base "a:b" with key "c" share
// the stored key "a:b:c".
//
// The Turso driver scans with SQL LIKE, which ignores ASCII case and treats
// '%' and '_' in the base or sub prefix as wildcards. Clear therefore also
// deletes keys of a base that differs only in case or matches those
// wildcards. GetKeys skips keys that do not start with the exact "base:"
// prefix. The sub prefix is matched by LIKE alone.
//
// # Error Handling
//
// Missing keys are not errors: GetItem reports ok=false and HasItem false.
// Sentinel errors cover configuration problems:
//
//	_, err := tursokv.NewTurso(tursokv.Options{Table: "kv-1"})
//	if errors.Is(err, tursokv.ErrInvalidTableName) {
//	    // Handle bad table name
//	}
//
// Database errors are returned as produced by the database driver.
package tursokv
