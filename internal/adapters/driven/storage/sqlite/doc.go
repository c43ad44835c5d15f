// Package sqlite stores the document catalogue and chunk vectors in one
// SQLite file, by default ~/.docqa/data/docqa.db. The driver is
// modernc.org/sqlite, so no cgo is needed.
//
// Vectors are stored as little-endian float32 blobs next to their chunk
// payload, and Search scores every row by cosine similarity. That is
// linear in the number of chunks, which suits a personal library; use
// the qdrant backend for large collections.
//
// The schema lives in migrations/ and is applied on open. The database
// runs in WAL mode with a busy timeout, so the API server and a CLI
// ingest can share it.
package sqlite
