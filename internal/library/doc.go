// Package library owns the music library database: artists, albums, and
// tracks, each carrying independent per-provider match state. The store is
// the single arbitration point for the enrichment workers — every
// selection query and status write goes through it, one short-lived
// statement or transaction at a time.
package library
