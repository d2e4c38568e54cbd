package client

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/assetlink/assetlink/internal/eventlog"
	"github.com/assetlink/assetlink/internal/observability"
	"github.com/assetlink/assetlink/internal/protocol"
	"github.com/assetlink/assetlink/internal/protocol/frame"
	"github.com/assetlink/assetlink/internal/transport"
	"github.com/rs/zerolog/log"
)

// Config carries everything one Client needs to reach its server.
type Config struct {
	Host     string
	Port     int
	ClientID string

	ConnectTimeout time.Duration
	// ExchangeTimeout bounds each request/response round trip. Zero
	// means an exchange awaits the peer indefinitely; callers then
	// bound it externally via ctx deadline or Close.
	ExchangeTimeout time.Duration
	// MaxConnectAttempts <= 1 means a single dial attempt.
	MaxConnectAttempts int
	Backoff            BackoffConfig
	ServerName         string
}

func DefaultConfig() Config {
	return Config{
		ClientID:           "assetlink",
		ConnectTimeout:     5 * time.Second,
		MaxConnectAttempts: 1,
		Backoff:            DefaultBackoff(),
	}
}

var ErrHostRequired = errors.New("client: host required")

// Client drives the protocol state machine over one exclusively-owned
// transport session. Exchanges are strictly one-in-flight: concurrent
// callers serialize on the exchange lock and are never interleaved on
// the wire.
type Client struct {
	cfg      Config
	recorder *eventlog.Recorder
	rng      *rand.Rand

	// exMu serializes Connect and every operation exchange.
	exMu sync.Mutex

	// stMu guards the state fields and the session pointer so Close
	// can interrupt a pending exchange without taking exMu.
	stMu          sync.Mutex
	state         State
	connected     bool
	authenticated bool
	session       *transport.Session
}

func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.Host) == "" {
		return nil, ErrHostRequired
	}
	if strings.TrimSpace(cfg.ClientID) == "" {
		cfg.ClientID = "assetlink"
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = 5 * time.Second
	}
	return &Client{
		cfg:      cfg,
		recorder: eventlog.NewRecorder(),
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		state:    StateDisconnected,
	}, nil
}

// Events exposes the recorder: the only outward-facing surface toward
// presentation code.
func (c *Client) Events() *eventlog.Recorder { return c.recorder }

func (c *Client) State() State {
	c.stMu.Lock()
	defer c.stMu.Unlock()
	return c.state
}

func (c *Client) Connected() bool {
	c.stMu.Lock()
	defer c.stMu.Unlock()
	return c.connected
}

func (c *Client) Authenticated() bool {
	c.stMu.Lock()
	defer c.stMu.Unlock()
	return c.authenticated
}

// Connect dials the server and performs the protocol handshake. Valid
// only from the disconnected state; a failed connect is terminal for
// this client instance.
func (c *Client) Connect(ctx context.Context) error {
	c.exMu.Lock()
	defer c.exMu.Unlock()

	c.stMu.Lock()
	switch {
	case c.state.terminal():
		c.stMu.Unlock()
		return ErrClientTerminal
	case c.state != StateDisconnected:
		c.stMu.Unlock()
		return ErrAlreadyConnected
	}
	c.state = StateConnecting
	c.stMu.Unlock()

	addr := net.JoinHostPort(c.cfg.Host, strconv.Itoa(c.cfg.Port))
	c.recordSystem(fmt.Sprintf("connecting to %s", addr), eventlog.StatusPending)

	sess, err := c.dial(ctx)
	if err != nil {
		observability.RecordConnect("error")
		c.recordSystem(fmt.Sprintf("connect failed: %v", err), eventlog.StatusError)
		c.failConn()
		return err
	}

	c.stMu.Lock()
	if c.state == StateClosed {
		// Closed while dialing; drop the fresh socket.
		c.stMu.Unlock()
		_ = sess.Close()
		return frame.ErrConnectionClosed
	}
	c.state = StateConnected
	c.session = sess
	c.stMu.Unlock()

	if err := c.handshake(sess); err != nil {
		observability.RecordConnect("error")
		c.failConn()
		return err
	}

	c.stMu.Lock()
	c.state = StateReady
	c.connected = true
	c.authenticated = false
	c.stMu.Unlock()

	observability.RecordConnect("ok")
	c.recordSystem("handshake accepted", eventlog.StatusSuccess)
	log.Info().Str("addr", addr).Str("client_id", c.cfg.ClientID).Msg("protocol session ready")
	return nil
}

func (c *Client) dial(ctx context.Context) (*transport.Session, error) {
	tcfg := transport.Config{
		Host:           c.cfg.Host,
		Port:           c.cfg.Port,
		ConnectTimeout: c.cfg.ConnectTimeout,
		ServerName:     c.cfg.ServerName,
	}
	var attempt int
	for {
		attempt++
		sess, err := transport.Dial(ctx, tcfg)
		if err == nil {
			return sess, nil
		}
		log.Warn().Int("attempt", attempt).Str("host", c.cfg.Host).Err(err).Msg("dial failed")
		if !c.shouldRetry(attempt) {
			return nil, err
		}
		if err := c.sleepBackoff(ctx, attempt); err != nil {
			return nil, err
		}
	}
}

func (c *Client) shouldRetry(attempt int) bool {
	return attempt < c.cfg.MaxConnectAttempts
}

func (c *Client) sleepBackoff(ctx context.Context, attempt int) error {
	delay := NextBackoffDelay(c.cfg.Backoff, attempt, c.rng)
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (c *Client) handshake(sess *transport.Session) error {
	c.stMu.Lock()
	c.state = StateHandshaking
	c.stMu.Unlock()

	request := protocol.Build(protocol.CmdStart, c.cfg.ClientID)
	c.recordSent(request)

	// The handshake reply must arrive within the connect window; an
	// unresponsive server is a handshake failure, not a hang.
	_ = sess.SetDeadline(time.Now().Add(c.cfg.ConnectTimeout))
	defer func() { _ = sess.SetDeadline(time.Time{}) }()

	if err := sess.WriteMessage(request); err != nil {
		err = c.mapTransportErr(err)
		c.recordSystem(fmt.Sprintf("handshake send failed: %v", err), eventlog.StatusError)
		return err
	}
	reply, err := sess.ReadMessage()
	if err != nil {
		err = c.mapTransportErr(err)
		c.recordSystem(fmt.Sprintf("handshake reply failed: %v", err), eventlog.StatusError)
		return err
	}

	msg, perr := protocol.Parse(reply)
	if perr != nil || msg.Classify(protocol.RespAccepted) != protocol.OutcomeSuccess {
		c.recordReceived(reply, eventlog.StatusError)
		c.recordSystem("handshake rejected", eventlog.StatusError)
		return fmt.Errorf("%w: %q", ErrHandshakeRejected, reply)
	}
	c.recordReceived(reply, eventlog.StatusSuccess)
	return nil
}

// Login authenticates this connection. Success flips the session from
// anonymous to authenticated.
func (c *Client) Login(ctx context.Context, username, password string) error {
	_, err := c.exchange(ctx, "login", protocol.RespLoggedIn,
		protocol.Build(protocol.CmdLogin, username, password))
	if err != nil {
		return err
	}
	c.setAuthenticated(true)
	return nil
}

func (c *Client) SignUp(ctx context.Context, username, password, verifyPassword, email string) error {
	_, err := c.exchange(ctx, "signup", protocol.RespSignedUp,
		protocol.Build(protocol.CmdSignUp, username, password, verifyPassword, email))
	return err
}

func (c *Client) SendVerificationCode(ctx context.Context, email string) error {
	_, err := c.exchange(ctx, "send_code", protocol.RespCodeSent,
		protocol.Build(protocol.CmdSendCode, email))
	return err
}

func (c *Client) VerifyCode(ctx context.Context, email, code string) error {
	_, err := c.exchange(ctx, "verify_code", protocol.RespCodeVerified,
		protocol.Build(protocol.CmdVerifyCode, email, code))
	return err
}

func (c *Client) UpdatePassword(ctx context.Context, email, newPassword, confirmPassword string) error {
	_, err := c.exchange(ctx, "update_password", protocol.RespPasswordUpdated,
		protocol.Build(protocol.CmdUpdatePassword, email, newPassword, confirmPassword))
	return err
}

// Logout drops authentication; the connection itself stays up.
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.exchange(ctx, "logout", protocol.RespLoggedOut,
		protocol.Build(protocol.CmdLogout))
	if err != nil {
		return err
	}
	c.setAuthenticated(false)
	return nil
}

// LogAsset registers one already-uploaded asset reference. The wire
// carries only the identifier and name, never asset bytes.
func (c *Client) LogAsset(ctx context.Context, assetID, assetName string) error {
	_, err := c.exchange(ctx, "log_asset", protocol.RespAssetSaved,
		protocol.Build(protocol.CmdLogAsset, assetID, assetName))
	return err
}

// AssetList is one page of asset tokens. Count is server-reported
// metadata and may be empty when the server omits it.
type AssetList struct {
	Tokens []string
	Count  string
}

// RequestAssetList fetches one 0-based page of asset tokens.
func (c *Client) RequestAssetList(ctx context.Context, page, limit int) (AssetList, error) {
	msg, err := c.exchange(ctx, "asset_list", protocol.RespAssetList,
		protocol.Build(protocol.CmdAssetList, strconv.Itoa(page), strconv.Itoa(limit)))
	if err != nil {
		return AssetList{}, err
	}
	return AssetList{Tokens: msg.AssetTokens(), Count: msg.AssetCount()}, nil
}

// Close tears the connection down from any state. A pending exchange
// fails with the closed-connection error rather than hanging.
func (c *Client) Close() error {
	c.stMu.Lock()
	if c.state == StateClosed {
		c.stMu.Unlock()
		return nil
	}
	c.state = StateClosed
	c.connected = false
	c.authenticated = false
	sess := c.session
	c.session = nil
	c.stMu.Unlock()

	c.recordSystem("session closed", eventlog.StatusSuccess)
	if sess != nil {
		return sess.Close()
	}
	return nil
}

// exchange runs one strict request/response round trip under the
// exchange lock. Exactly one sent event precedes transmission; any
// reply records one received event; every failure path records one
// system event before the error propagates.
func (c *Client) exchange(ctx context.Context, op, successPrefix, request string) (protocol.Message, error) {
	c.exMu.Lock()
	defer c.exMu.Unlock()

	if err := ctx.Err(); err != nil {
		return protocol.Message{}, err
	}

	sess, err := c.readySession()
	if err != nil {
		return protocol.Message{}, err
	}

	start := time.Now()
	c.recordSent(request)

	if deadline, ok := c.exchangeDeadline(ctx, start); ok {
		_ = sess.SetDeadline(deadline)
		defer func() { _ = sess.SetDeadline(time.Time{}) }()
	}

	if err := sess.WriteMessage(request); err != nil {
		return protocol.Message{}, c.failExchange(op, start, err)
	}
	reply, err := sess.ReadMessage()
	if err != nil {
		return protocol.Message{}, c.failExchange(op, start, err)
	}

	msg, perr := protocol.Parse(reply)
	if perr != nil {
		c.recordReceived(reply, eventlog.StatusError)
		observability.RecordExchange(op, "unknown", time.Since(start))
		return protocol.Message{}, &UnknownResponseError{Code: "", Text: reply}
	}

	switch msg.Classify(successPrefix) {
	case protocol.OutcomeSuccess:
		c.recordReceived(reply, eventlog.StatusSuccess)
		observability.RecordExchange(op, "success", time.Since(start))
		log.Debug().Str("op", op).Str("code", msg.Code).Msg("exchange ok")
		return msg, nil
	case protocol.OutcomeDomainError:
		c.recordReceived(reply, eventlog.StatusError)
		observability.RecordExchange(op, "domain_error", time.Since(start))
		return protocol.Message{}, &DomainError{Code: msg.Code, Detail: msg.Detail()}
	default:
		c.recordReceived(reply, eventlog.StatusError)
		observability.RecordExchange(op, "unknown", time.Since(start))
		return protocol.Message{}, &UnknownResponseError{Code: msg.Code, Text: reply}
	}
}

// failExchange maps a transport failure, records its system event,
// and drives the connection to the failed state.
func (c *Client) failExchange(op string, start time.Time, err error) error {
	err = c.mapTransportErr(err)
	outcome := "transport_error"
	if errors.Is(err, ErrExchangeTimeout) {
		outcome = "timeout"
	}
	c.recordSystem(fmt.Sprintf("%s exchange failed: %v", op, err), eventlog.StatusError)
	observability.RecordExchange(op, outcome, time.Since(start))
	c.failConn()
	return err
}

func (c *Client) readySession() (*transport.Session, error) {
	c.stMu.Lock()
	defer c.stMu.Unlock()
	if c.state.terminal() {
		return nil, ErrClientTerminal
	}
	if c.state != StateReady || c.session == nil {
		return nil, ErrNotReady
	}
	return c.session, nil
}

func (c *Client) exchangeDeadline(ctx context.Context, start time.Time) (time.Time, bool) {
	var deadline time.Time
	if c.cfg.ExchangeTimeout > 0 {
		deadline = start.Add(c.cfg.ExchangeTimeout)
	}
	if ctxDeadline, ok := ctx.Deadline(); ok && (deadline.IsZero() || ctxDeadline.Before(deadline)) {
		deadline = ctxDeadline
	}
	return deadline, !deadline.IsZero()
}

// mapTransportErr folds the session error surface into the client
// taxonomy: closed sockets become the closed-connection sentinel,
// deadline hits become exchange timeouts.
func (c *Client) mapTransportErr(err error) error {
	if errors.Is(err, transport.ErrClosed) {
		return frame.ErrConnectionClosed
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", ErrExchangeTimeout, err)
	}
	return err
}

// failConn clears both connection flags and releases the transport.
// A client already closed by Close keeps its closed state.
func (c *Client) failConn() {
	c.stMu.Lock()
	if !c.state.terminal() {
		c.state = StateFailed
	}
	c.connected = false
	c.authenticated = false
	sess := c.session
	c.session = nil
	c.stMu.Unlock()
	if sess != nil {
		_ = sess.Close()
	}
}

func (c *Client) setAuthenticated(v bool) {
	c.stMu.Lock()
	if c.connected {
		c.authenticated = v
	}
	c.stMu.Unlock()
}

func (c *Client) recordSent(text string) {
	c.recorder.Record(eventlog.Event{
		Direction: eventlog.DirectionSent,
		Text:      text,
		Status:    eventlog.StatusPending,
	})
}

func (c *Client) recordReceived(text string, status eventlog.Status) {
	c.recorder.Record(eventlog.Event{
		Direction: eventlog.DirectionReceived,
		Text:      text,
		Status:    status,
	})
}

func (c *Client) recordSystem(text string, status eventlog.Status) {
	c.recorder.Record(eventlog.Event{
		Direction: eventlog.DirectionSystem,
		Text:      text,
		Status:    status,
	})
}
