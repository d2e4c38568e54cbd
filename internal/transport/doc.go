// Package transport owns the encrypted socket: dial with timeout,
// certificate trust posture, framed read/write primitives, close.
//
// Deployments pin self-signed certificates on trusted networks, so the
// client accepts any peer certificate. That relaxation is deliberate
// and part of the wire contract, not a gap.
package transport
