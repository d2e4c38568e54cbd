// Package client implements the protocol state machine: connection
// lifecycle, the START handshake, and the command/response exchanges
// for authentication and asset operations.
//
// Ownership boundary:
// - connection and authentication state, transitioned only here
// - one-in-flight exchange discipline over the owned transport session
// - translation of reply codes into results or typed failures
// - event bookkeeping for every exchange and transition
package client
