package client

import (
	"errors"
	"fmt"
)

var (
	ErrAlreadyConnected  = errors.New("client: already connected")
	ErrNotReady          = errors.New("client: connection not ready")
	ErrClientTerminal    = errors.New("client: connection is closed or failed")
	ErrHandshakeRejected = errors.New("client: handshake rejected by server")
	ErrExchangeTimeout   = errors.New("client: exchange timed out awaiting reply")
)

// DomainError is a server-side rejection: validation, bad credentials,
// quota. Recoverable; the connection stays up.
type DomainError struct {
	Code   string
	Detail string
}

func (e *DomainError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("client: server rejected request (%s)", e.Code)
	}
	return fmt.Sprintf("client: server rejected request (%s): %s", e.Code, e.Detail)
}

// UnknownResponseError marks a reply code outside the protocol table.
// Surfaced to the caller; connection state is left unchanged.
type UnknownResponseError struct {
	Code string
	Text string
}

func (e *UnknownResponseError) Error() string {
	return fmt.Sprintf("client: unrecognized response code %q", e.Code)
}
