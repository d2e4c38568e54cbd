// Package scriptsrv runs a canned protocol server for client tests:
// a TLS listener that plays an ordered script of request/reply
// exchanges using the production framing codec.
package scriptsrv

import (
	"crypto/tls"
	"net"
	"strconv"
	"sync"
	"testing"

	"github.com/assetlink/assetlink/internal/protocol/frame"
	"github.com/assetlink/assetlink/internal/testutil/tlstest"
)

// Exchange is one scripted step. Expect "" matches any request.
type Exchange struct {
	Expect string
	Reply  string
	// Silent suppresses the reply; combined with Drop it simulates a
	// server that hangs up mid-exchange.
	Silent bool
	// Drop closes the connection after this step.
	Drop bool
}

// Server plays one script per accepted connection.
type Server struct {
	t  *testing.T
	ln net.Listener

	mu       sync.Mutex
	requests []string
	done     chan struct{}
}

// Start listens on loopback with a self-signed cert and serves the
// script on every accepted connection until closed.
func Start(t *testing.T, script []Exchange) *Server {
	t.Helper()
	ln, err := tls.Listen("tcp", "127.0.0.1:0", tlstest.ServerConfig(t, "scriptsrv"))
	if err != nil {
		t.Fatalf("scriptsrv listen: %v", err)
	}
	s := &Server{t: t, ln: ln, done: make(chan struct{})}
	go s.acceptLoop(script)
	return s
}

func (s *Server) acceptLoop(script []Exchange) {
	defer close(s.done)
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			return
		}
		s.serve(conn, script)
	}
}

func (s *Server) serve(conn net.Conn, script []Exchange) {
	defer conn.Close()
	for _, step := range script {
		req, err := frame.Decode(conn)
		if err != nil {
			return
		}
		s.mu.Lock()
		s.requests = append(s.requests, req)
		s.mu.Unlock()
		if step.Expect != "" && req != step.Expect {
			s.t.Errorf("scriptsrv: got request %q, script expected %q", req, step.Expect)
		}
		if !step.Silent {
			if err := frame.Write(conn, step.Reply); err != nil {
				return
			}
		}
		if step.Drop {
			return
		}
	}
	// Script exhausted: drain until the client hangs up so trailing
	// writes on the client side do not error spuriously.
	buf := make([]byte, 256)
	for {
		if _, err := conn.Read(buf); err != nil {
			return
		}
	}
}

// Host returns the loopback address the server listens on.
func (s *Server) Host() string {
	host, _, _ := net.SplitHostPort(s.ln.Addr().String())
	return host
}

// Port returns the bound listener port.
func (s *Server) Port() int {
	_, portStr, _ := net.SplitHostPort(s.ln.Addr().String())
	port, _ := strconv.Atoi(portStr)
	return port
}

// Requests returns a snapshot of everything received so far.
func (s *Server) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.requests))
	copy(out, s.requests)
	return out
}

// Close stops accepting and tears the listener down.
func (s *Server) Close() {
	_ = s.ln.Close()
	<-s.done
}
