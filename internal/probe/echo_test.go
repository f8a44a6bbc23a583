//go:build linux

package probe_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/goleak"

	clarinet "github.com/nlebedenco/clarinet-go"
	"github.com/nlebedenco/clarinet-go/internal/probe"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// startEcho runs an echo service on an ephemeral loopback port and returns
// its bound endpoint plus a stop function that waits for shutdown.
func startEcho(t *testing.T, protocol string, reg *prometheus.Registry) (clarinet.Endpoint, func()) {
	t.Helper()

	cfg := probe.Default()
	cfg.Echo.Listen = "127.0.0.1:0"
	cfg.Echo.Protocol = protocol

	var collector *probe.Collector
	if reg != nil {
		collector = probe.NewCollector(reg)
	}
	echo := probe.NewEcho(cfg, slog.New(slog.DiscardHandler), collector)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- echo.Run(ctx) }()

	select {
	case <-echo.Ready():
	case err := <-done:
		cancel()
		t.Fatalf("echo exited before ready: %v", err)
	case <-time.After(5 * time.Second):
		cancel()
		t.Fatal("echo never became ready")
	}

	return echo.Local(), func() {
		cancel()
		select {
		case err := <-done:
			if err != nil {
				t.Errorf("echo run: %v", err)
			}
		case <-time.After(5 * time.Second):
			t.Error("echo did not stop")
		}
	}
}

// TestEchoUDP drives the UDP echo end to end through the clarinet client
// surface.
func TestEchoUDP(t *testing.T) {
	reg := prometheus.NewRegistry()
	local, stop := startEcho(t, "udp", reg)
	defer stop()

	var client clarinet.Socket
	if err := client.Open(clarinet.FamilyInet, clarinet.ProtoUDP); err != nil {
		t.Fatalf("open client: %v", err)
	}
	defer client.Close()
	if err := client.SetOption(clarinet.OptRcvTimeo, 2000); err != nil {
		t.Fatalf("set RCVTIMEO: %v", err)
	}
	if err := client.Bind(clarinet.MakeEndpoint(clarinet.AddrLoopbackIPv4, 0)); err != nil {
		t.Fatalf("bind client: %v", err)
	}

	payload := []byte{0xAA, 0xBB, 0xCC, 0xDD}
	if _, err := client.SendTo(payload, local); err != nil {
		t.Fatalf("sendto: %v", err)
	}

	buf := make([]byte, 16)
	n, from, err := client.RecvFrom(buf)
	if err != nil {
		t.Fatalf("recvfrom: %v", err)
	}
	if !bytes.Equal(buf[:n], payload) {
		t.Fatalf("echo = %x, want %x", buf[:n], payload)
	}
	if !from.Equal(local) {
		t.Fatalf("echo source = %v, want %v", from, local)
	}
}

// TestEchoTCP drives the TCP echo: connect, write, read the same bytes
// back, then close and let the server drop the connection.
func TestEchoTCP(t *testing.T) {
	local, stop := startEcho(t, "tcp", nil)
	defer stop()

	var client clarinet.Socket
	if err := client.Open(clarinet.FamilyInet, clarinet.ProtoTCP); err != nil {
		t.Fatalf("open client: %v", err)
	}
	defer client.Close()
	if err := client.SetOption(clarinet.OptRcvTimeo, 2000); err != nil {
		t.Fatalf("set RCVTIMEO: %v", err)
	}
	if err := client.Connect(local); err != nil {
		t.Fatalf("connect: %v", err)
	}

	payload := []byte("clarinet echo probe")
	if _, err := client.Send(payload); err != nil {
		t.Fatalf("send: %v", err)
	}

	got := make([]byte, 0, len(payload))
	buf := make([]byte, 64)
	for len(got) < len(payload) {
		n, err := client.Recv(buf)
		if err != nil {
			t.Fatalf("recv: %v", err)
		}
		if n == 0 {
			t.Fatal("unexpected orderly shutdown")
		}
		got = append(got, buf[:n]...)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("echo = %q, want %q", got, payload)
	}
}
