// Package enrich runs the per-provider background workers that drain the
// library's unmatched backlog. Each worker polls the store for the next
// unit of work, queries its provider, and persists exactly one terminal
// status per item. The supervisor owns the worker set and aggregates
// their status for the daemon.
package enrich
