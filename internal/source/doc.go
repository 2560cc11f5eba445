// Package source defines the remote collection contracts browsed by entitydeck panels.
//
// A PaginatedSource yields pages of entities for an opaque Cursor, and a DetailSource
// resolves a single entity id into a DetailRecord. Implementations in this package:
//   - MockSource: in-memory reference backend with simulated latency
//   - SQLSource: keyset-paginated entities stored in SQLite (OpenSQLite) or
//     Postgres (OpenPostgres)
//   - Coalesced: singleflight wrapper that merges concurrent detail lookups
//   - CachedDetails: disk-backed TTL cache in front of any DetailSource
//
// Every failure is reported as a TransportError, DecodeError or NotFoundError so that
// panels can render a human-readable message without knowing the backend.
package source
