package transport

import (
	"bufio"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/assetlink/assetlink/internal/protocol/frame"
	"github.com/rs/zerolog/log"
)

var (
	ErrConnectTimeout = errors.New("transport: connect timed out")
	ErrConnectError   = errors.New("transport: connect failed")
	ErrClosed         = errors.New("transport: session closed")
)

// Config carries the dial parameters for one session.
type Config struct {
	Host           string
	Port           int
	ConnectTimeout time.Duration
	// ServerName overrides SNI; defaults to Host. Verification is
	// skipped either way, this only steers certificate selection.
	ServerName string
}

func (c Config) addr() string {
	return net.JoinHostPort(c.Host, fmt.Sprintf("%d", c.Port))
}

// Session is one open TLS connection. Exclusively owned by a single
// protocol client; the internal read buffer must never be shared.
type Session struct {
	conn   *tls.Conn
	reader *bufio.Reader
	writer *bufio.Writer

	mu     sync.Mutex
	closed bool
}

// Dial opens a TLS connection to cfg.Host:cfg.Port. The TCP connect
// and TLS handshake together are bounded by cfg.ConnectTimeout; a
// timed-out handshake is abandoned and the socket closed rather than
// left dangling.
func Dial(ctx context.Context, cfg Config) (*Session, error) {
	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	dialCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	dialer := net.Dialer{Timeout: timeout}
	rawConn, err := dialer.DialContext(dialCtx, "tcp", cfg.addr())
	if err != nil {
		return nil, classifyDialErr(dialCtx, err)
	}

	serverName := cfg.ServerName
	if serverName == "" {
		serverName = cfg.Host
	}
	tlsCfg := &tls.Config{
		MinVersion:         tls.VersionTLS12,
		ServerName:         serverName,
		InsecureSkipVerify: true, // self-signed deployments are the expected posture
	}
	conn := tls.Client(rawConn, tlsCfg)
	if err := conn.HandshakeContext(dialCtx); err != nil {
		_ = rawConn.Close()
		return nil, classifyDialErr(dialCtx, err)
	}

	log.Debug().Str("addr", cfg.addr()).Str("server_name", serverName).Msg("transport session open")
	return &Session{
		conn:   conn,
		reader: bufio.NewReader(conn),
		writer: bufio.NewWriter(conn),
	}, nil
}

func classifyDialErr(ctx context.Context, err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", ErrConnectTimeout, err)
	}
	if errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
		return fmt.Errorf("%w: %v", ErrConnectTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrConnectError, err)
}

// WriteMessage frames text and writes then flushes it.
func (s *Session) WriteMessage(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if err := frame.Write(s.writer, text); err != nil {
		return mapClosedErr(err, s.closed)
	}
	if err := s.writer.Flush(); err != nil {
		return mapClosedErr(err, s.closed)
	}
	return nil
}

// ReadMessage blocks until one complete frame arrives and returns its
// payload. Chunked delivery is coalesced by the framing codec against
// the session's buffered reader.
func (s *Session) ReadMessage() (string, error) {
	if s.isClosed() {
		return "", ErrClosed
	}
	text, err := frame.Decode(s.reader)
	if err != nil {
		return "", mapClosedErr(err, s.isClosed())
	}
	return text, nil
}

// Read exposes the raw chunk primitive: the next available bytes from
// the socket, any positive length. Satisfies io.Reader.
func (s *Session) Read(p []byte) (int, error) {
	if s.isClosed() {
		return 0, ErrClosed
	}
	return s.reader.Read(p)
}

// SetDeadline bounds pending and future reads and writes. The zero
// time clears it.
func (s *Session) SetDeadline(t time.Time) error {
	if s.isClosed() {
		return ErrClosed
	}
	return s.conn.SetDeadline(t)
}

// Close releases the socket. Idempotent; a pending ReadMessage fails
// with the framing codec's closed-connection error rather than hanging.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()
	return s.conn.Close()
}

func (s *Session) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// mapClosedErr folds locally-closed-socket errors into the codec's
// closed-connection sentinel so callers see one taxonomy for "the
// peer went away" and "we tore it down mid-read".
func mapClosedErr(err error, sessionClosed bool) error {
	if errors.Is(err, net.ErrClosed) || sessionClosed {
		return frame.ErrConnectionClosed
	}
	return err
}
