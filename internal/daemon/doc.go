// Package daemon ties the enrichment supervisor, library store, and IPC
// surface together behind a single-instance file lock.
package daemon
