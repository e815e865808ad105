// Package storage provides SQLite-backed persistence for trips and their
// derived rows: the denormalized search surface, precomputed facts, semantic
// components, and the dirty queue that drives recomputation.
//
// # Architecture
//
// The trips, travelers, and schedule_items tables are the system of record.
// Everything else is a cache keyed by trip id and rebuilt from the source
// rows, so any derived table can be dropped and recomputed without data
// loss.
//
// Every mutation of a tracked source table records a change through the
// ChangeRecorder hook. The default recorder appends an insert-or-ignore
// marker to the dirty queue; the hook exists so the mechanism ports to
// systems without that table (outbox pattern, CDC).
//
// # Build Modes
//
// Two SQLite drivers are supported via build tags:
//
//   - cgo_sqlite: github.com/mattn/go-sqlite3 (CGO, faster LIKE scans)
//   - default/purego: modernc.org/sqlite (pure Go, cross-compiles cleanly)
//
// # Error Classification
//
// IsComplexityError distinguishes engine rejections of an over-complex or
// slow pattern from data errors. Callers use it to decide whether a failed
// query should fall back to a simpler strategy or propagate.
package storage
