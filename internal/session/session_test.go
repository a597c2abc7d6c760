package session

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"
)

func TestDirectionNegotiation(t *testing.T) {
	cases := []struct {
		name    string
		host    string
		reverse bool
		role    Role
		dir     Direction
	}{
		{"listener default receives", "", false, RoleListener, DirectionReceive},
		{"listener reversed sends", "", true, RoleListener, DirectionSend},
		{"initiator default sends", "10.0.0.7", false, RoleInitiator, DirectionSend},
		{"initiator reversed receives", "10.0.0.7", true, RoleInitiator, DirectionReceive},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Config{Root: ".", Host: tc.host, Port: 5555, Reverse: tc.reverse}
			if got := cfg.Role(); got != tc.role {
				t.Fatalf("expected role %s, got %s", tc.role, got)
			}
			if got := cfg.Direction(); got != tc.dir {
				t.Fatalf("expected direction %s, got %s", tc.dir, got)
			}
		})
	}
}

func TestListenAcceptBindsOneSession(t *testing.T) {
	cfg := Config{Root: ".", Port: 0, Reverse: true}
	l, err := Listen(context.Background(), cfg)
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer l.Close()

	dialErr := make(chan error, 1)
	go func() {
		conn, err := net.Dial("tcp", l.Addr().String())
		if err == nil {
			conn.Close()
		}
		dialErr <- err
	}()

	sess, err := l.Accept(context.Background())
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	defer sess.Close()
	if err := <-dialErr; err != nil {
		t.Fatalf("dial: %v", err)
	}
	if sess.Role != RoleListener || sess.Direction != DirectionSend {
		t.Fatalf("unexpected session: role=%s direction=%s", sess.Role, sess.Direction)
	}

	// The bound socket is gone after the first accept.
	if _, err := net.DialTimeout("tcp", l.Addr().String(), 250*time.Millisecond); err == nil {
		t.Fatal("expected second connection to be refused")
	}
}

func TestDialReachesListener(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()
	go func() {
		conn, err := ln.Accept()
		if err == nil {
			conn.Close()
		}
	}()

	port := ln.Addr().(*net.TCPAddr).Port
	sess, err := Dial(context.Background(), Config{Root: ".", Host: "127.0.0.1", Port: port})
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer sess.Close()
	if sess.Role != RoleInitiator || sess.Direction != DirectionSend {
		t.Fatalf("unexpected session: role=%s direction=%s", sess.Role, sess.Direction)
	}
}

func TestDialConnectionRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()

	_, err = Dial(context.Background(), Config{Root: ".", Host: "127.0.0.1", Port: port})
	if !errors.Is(err, ErrConnection) {
		t.Fatalf("expected ErrConnection, got %v", err)
	}
}

func TestAcceptHonorsCancellation(t *testing.T) {
	l, err := Listen(context.Background(), Config{Root: ".", Port: 0})
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer l.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()
	if _, err := l.Accept(ctx); !errors.Is(err, ErrConnection) {
		t.Fatalf("expected ErrConnection, got %v", err)
	}
}
