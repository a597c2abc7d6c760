// Package session owns connection establishment and direction
// negotiation.
//
// Ownership boundary:
// - role selection (initiator dials, listener accepts exactly once)
// - direction computation from role and the reverse flag
// - ownership handoff of the channel to the transfer engine
package session

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"

	"github.com/rs/zerolog/log"
)

var ErrConnection = errors.New("session: connection failed")

// Role distinguishes which side establishes the connection.
type Role uint8

const (
	RoleInitiator Role = iota
	RoleListener
)

func (r Role) String() string {
	if r == RoleListener {
		return "listener"
	}
	return "initiator"
}

// Direction is the logical transfer direction of the local side.
type Direction uint8

const (
	DirectionSend Direction = iota
	DirectionReceive
)

func (d Direction) String() string {
	if d == DirectionReceive {
		return "receive"
	}
	return "send"
}

// Config is the immutable session configuration handed in by the CLI.
// An empty Host selects the listener role.
type Config struct {
	Root    string
	Host    string
	Port    int
	Reverse bool
}

func (c Config) Role() Role {
	if c.Host == "" {
		return RoleListener
	}
	return RoleInitiator
}

// Direction derives the local transfer direction: the listener receives
// and the initiator sends, unless the reverse flag inverts both.
func (c Config) Direction() Direction {
	sending := c.Role() == RoleInitiator
	if c.Reverse {
		sending = !sending
	}
	if sending {
		return DirectionSend
	}
	return DirectionReceive
}

func (c Config) addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Session is one end-to-end transfer binding: it exclusively owns the
// channel until Close.
type Session struct {
	Role      Role
	Direction Direction
	Root      string
	Channel   net.Conn
}

func (s *Session) Close() error {
	return s.Channel.Close()
}

// Dial establishes the initiator side.
func Dial(ctx context.Context, cfg Config) (*Session, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", cfg.addr())
	if err != nil {
		return nil, fmt.Errorf("%w: dial %s: %v", ErrConnection, cfg.addr(), err)
	}
	log.Info().Stringer("remote", conn.RemoteAddr()).Msg("connected")
	return &Session{
		Role:      RoleInitiator,
		Direction: cfg.Direction(),
		Root:      cfg.Root,
		Channel:   conn,
	}, nil
}

// Listener is a bound socket waiting for its one connection.
type Listener struct {
	cfg Config
	ln  net.Listener
}

// Listen binds the listener side. The bound address is available
// before Accept blocks, so callers can report it.
func Listen(ctx context.Context, cfg Config) (*Listener, error) {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", cfg.addr())
	if err != nil {
		return nil, fmt.Errorf("%w: listen %s: %v", ErrConnection, cfg.addr(), err)
	}
	log.Info().Stringer("addr", ln.Addr()).Msg("listening")
	return &Listener{cfg: cfg, ln: ln}, nil
}

func (l *Listener) Addr() net.Addr {
	return l.ln.Addr()
}

// Accept waits for the session's single connection and closes the
// bound socket, so no second connection can attach to this session.
func (l *Listener) Accept(ctx context.Context) (*Session, error) {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			l.ln.Close()
		case <-done:
		}
	}()

	conn, err := l.ln.Accept()
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: accept: %v", ErrConnection, ctx.Err())
		}
		return nil, fmt.Errorf("%w: accept: %v", ErrConnection, err)
	}
	l.ln.Close()
	log.Info().Stringer("remote", conn.RemoteAddr()).Msg("connection accepted")
	return &Session{
		Role:      RoleListener,
		Direction: l.cfg.Direction(),
		Root:      l.cfg.Root,
		Channel:   conn,
	}, nil
}

func (l *Listener) Close() error {
	return l.ln.Close()
}

// Negotiate establishes the channel for cfg's role and returns the
// bound session.
func Negotiate(ctx context.Context, cfg Config) (*Session, error) {
	if cfg.Role() == RoleInitiator {
		return Dial(ctx, cfg)
	}
	l, err := Listen(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer l.Close()
	return l.Accept(ctx)
}
