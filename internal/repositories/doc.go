// Package repositories implements SQLite-backed persistence for the song
// cache and generated playlist records.
//
// The song cache is read-through memoization owned by the caller of the
// scraping core: at most one row exists per (program, date) key and writes
// upsert, so the last writer wins. Serializing concurrent writers to the
// same key is the database's job via the UNIQUE constraint.
package repositories
