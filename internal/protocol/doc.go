// Package protocol owns the wire contract and parsing primitives.
//
// Ownership boundary:
// - command/response code table
// - pipe-delimited message building and parsing
// - reply classification (success, domain error, unknown)
package protocol
