package transport

import (
	"bufio"
	"context"
	"errors"
	"net"
	"testing"
	"time"

	ncerr "chalc/internal/errors"
	"chalc/tunnel"
	"chalc/util"
)

// TestTCPDialer_Connect verifies that TCPDialer can reach a local
// TCP server and exchange a line.
func TestTCPDialer_Connect(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		line, _ := bufio.NewReader(conn).ReadString('\n')
		conn.Write([]byte("echo " + line)) //nolint:errcheck
	}()

	d := &TCPDialer{Timeout: 2 * time.Second}
	conn, err := d.Dial(context.Background(), "tcp", ln.Addr().String())
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(2 * time.Second)) //nolint:errcheck
	if _, err := conn.Write([]byte("ping\n")); err != nil {
		t.Fatal(err)
	}
	got, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		t.Fatal(err)
	}
	if got != "echo ping\n" {
		t.Errorf("got %q", got)
	}
}

// TestTCPDialer_ContextCancel verifies that a cancelled context aborts
// the dial.
func TestTCPDialer_ContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := &TCPDialer{Timeout: 2 * time.Second}
	_, err := d.Dial(ctx, "tcp", "127.0.0.1:1")
	if err == nil {
		t.Fatal("expected error from cancelled context")
	}
}

func TestTCPDialer_Refused(t *testing.T) {
	port, err := util.FindFreePort()
	if err != nil {
		t.Fatal(err)
	}
	d := &TCPDialer{Timeout: time.Second}
	if _, err := d.Dial(context.Background(), "tcp", util.FormatAddr("127.0.0.1", port)); err == nil {
		t.Fatal("expected connection refused")
	}
}

// TestTCPDialer_Close verifies Close is a harmless no-op.
func TestTCPDialer_Close(t *testing.T) {
	d := &TCPDialer{}
	if err := d.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

// TestDialers_RejectDatagram verifies that only stream networks are
// accepted.
func TestDialers_RejectDatagram(t *testing.T) {
	dialers := map[string]Dialer{
		"tcp": &TCPDialer{},
		"ssh": NewSSHDialer(&tunnel.SSHConfig{Host: "127.0.0.1", Port: 1}, util.NewLogger(0)),
	}
	for name, d := range dialers {
		t.Run(name, func(t *testing.T) {
			_, err := d.Dial(context.Background(), "udp", "127.0.0.1:2028")
			var une net.UnknownNetworkError
			if !errors.As(err, &une) {
				t.Errorf("want UnknownNetworkError, got %v", err)
			}
		})
	}
}

// TestSSHDialer_BadCredentials verifies that an unusable key is
// reported as an SSH error and leaves the dialer closed.
func TestSSHDialer_BadCredentials(t *testing.T) {
	port, err := util.FindFreePort()
	if err != nil {
		t.Fatal(err)
	}
	d := NewSSHDialer(&tunnel.SSHConfig{
		User:        "nobody",
		Host:        "127.0.0.1",
		Port:        port,
		KeyPath:     "/nonexistent/key",
		ConnTimeout: time.Second,
	}, util.NewLogger(0))

	_, err = d.Dial(context.Background(), "tcp", "127.0.0.1:2028")
	if err == nil {
		t.Fatal("expected error")
	}
	var se *ncerr.SSHError
	if !errors.As(err, &se) || se.Op != "auth" {
		t.Errorf("want SSHError{Op: auth}, got %T: %v", err, err)
	}
	if err := d.Close(); err != nil {
		t.Errorf("Close after failed connect: %v", err)
	}
}
