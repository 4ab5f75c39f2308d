// Package ipc exposes daemon control over JSON-RPC on a Unix domain
// socket: status, pause, resume, and stop.
package ipc
