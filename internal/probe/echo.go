package probe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	clarinet "github.com/nlebedenco/clarinet-go"
)

// -------------------------------------------------------------------------
// Echo Engine
// -------------------------------------------------------------------------

// pollInterval bounds how long a loop waits in Poll before rechecking the
// context for cancellation.
const pollInterval = 250 * time.Millisecond

// maxDatagram is the largest datagram the UDP echo accepts. Anything larger
// is reported truncated by the socket layer and dropped.
const maxDatagram = 64 * 1024

// Echo is a UDP/TCP echo service built entirely on the public clarinet
// surface. It exists to exercise the library end to end: option lowering,
// bind policy, readiness polling, and the error taxonomy all see real
// traffic here.
type Echo struct {
	cfg     Config
	log     *slog.Logger
	metrics *Collector

	// ready is closed once the listening socket is bound; Local is valid
	// from that point on.
	ready chan struct{}
	local clarinet.Endpoint
}

// NewEcho builds an echo service. The collector may be nil when metrics are
// not wanted.
func NewEcho(cfg Config, logger *slog.Logger, metrics *Collector) *Echo {
	if logger == nil {
		logger = slog.Default()
	}
	return &Echo{
		cfg:     cfg,
		log:     logger,
		metrics: metrics,
		ready:   make(chan struct{}),
	}
}

// Local returns the bound endpoint. Valid after Ready is closed; useful
// when the configuration requested port 0.
func (e *Echo) Local() clarinet.Endpoint { return e.local }

// Ready is closed once the socket is bound and serving.
func (e *Echo) Ready() <-chan struct{} { return e.ready }

// Run serves echo traffic until the context is canceled. The listening
// socket is opened, configured from EchoConfig, bound, and drained with a
// poll loop so cancellation is observed within pollInterval.
func (e *Echo) Run(ctx context.Context) error {
	ep := e.cfg.ListenEndpoint()
	proto := e.cfg.Protocol()

	var sock clarinet.Socket
	if err := sock.Open(ep.Addr.Family(), proto); err != nil {
		return fmt.Errorf("open %s socket: %w", proto, err)
	}
	defer e.closeSocket(&sock)

	if err := e.configure(&sock, ep); err != nil {
		return err
	}
	if err := sock.Bind(ep); err != nil {
		return fmt.Errorf("bind %s: %w", ep, err)
	}

	local, err := sock.LocalEndpoint()
	if err != nil {
		return fmt.Errorf("local endpoint: %w", err)
	}
	e.local = local
	e.log.Info("echo listening",
		slog.String("endpoint", local.String()),
		slog.String("protocol", proto.String()),
	)
	close(e.ready)

	if proto == clarinet.ProtoTCP {
		return e.serveTCP(ctx, &sock)
	}
	return e.serveUDP(ctx, &sock)
}

// configure lowers the EchoConfig knobs through the option engine.
func (e *Echo) configure(sock *clarinet.Socket, ep clarinet.Endpoint) error {
	if err := sock.SetOption(clarinet.OptNonBlock, 1); err != nil {
		return fmt.Errorf("set NONBLOCK: %w", err)
	}
	if e.cfg.Echo.ReuseAddr {
		if err := sock.SetOption(clarinet.OptReuseAddr, 1); err != nil {
			return fmt.Errorf("set REUSEADDR: %w", err)
		}
	}
	if ep.Addr.Family() == clarinet.FamilyInet6 {
		v := int32(0)
		if e.cfg.Echo.IPv6Only {
			v = 1
		}
		if err := sock.SetOption(clarinet.OptIPv6Only, v); err != nil {
			return fmt.Errorf("set IPV6ONLY: %w", err)
		}
	}
	if ttl := e.cfg.Echo.TTL; ttl > 0 {
		if err := sock.SetOption(clarinet.OptTTL, int32(ttl)); err != nil {
			return fmt.Errorf("set TTL: %w", err)
		}
	}
	if v := e.cfg.Echo.SendBuffer; v > 0 {
		if err := sock.SetOption(clarinet.OptSndBuf, int32(v)); err != nil {
			return fmt.Errorf("set SNDBUF: %w", err)
		}
	}
	if v := e.cfg.Echo.RecvBuffer; v > 0 {
		if err := sock.SetOption(clarinet.OptRcvBuf, int32(v)); err != nil {
			return fmt.Errorf("set RCVBUF: %w", err)
		}
	}
	return nil
}

// serveUDP echoes every datagram back to its source.
func (e *Echo) serveUDP(ctx context.Context, sock *clarinet.Socket) error {
	buf := make([]byte, maxDatagram)
	items := []clarinet.PollItem{{Socket: sock, Events: clarinet.PollIn}}

	for {
		if ctx.Err() != nil {
			return nil
		}
		n, err := clarinet.Poll(items, int(pollInterval.Milliseconds()))
		if err != nil {
			if errors.Is(err, clarinet.ErrIntr) {
				continue
			}
			return fmt.Errorf("poll: %w", err)
		}
		if n == 0 {
			continue
		}

		for {
			n, from, err := sock.RecvFrom(buf)
			if err != nil {
				if errors.Is(err, clarinet.ErrAgain) {
					break
				}
				// Truncated or unsourceable datagrams are dropped, the
				// socket stays up.
				e.countError(err)
				if errors.Is(err, clarinet.ErrMsgSize) || errors.Is(err, clarinet.ErrAddrNotAvail) {
					continue
				}
				return fmt.Errorf("recvfrom: %w", err)
			}

			if _, err := sock.SendTo(buf[:n], from); err != nil {
				if errors.Is(err, clarinet.ErrAgain) {
					continue // reply dropped under backpressure
				}
				e.countError(err)
				e.log.Warn("echo reply failed",
					slog.String("peer", from.String()),
					slog.String("error", err.Error()),
				)
				continue
			}
			e.countEcho(clarinet.ProtoUDP, n)
		}
	}
}

// serveTCP accepts connections and echoes each stream until the peer shuts
// down.
func (e *Echo) serveTCP(ctx context.Context, sock *clarinet.Socket) error {
	if err := sock.Listen(-1); err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)
	items := []clarinet.PollItem{{Socket: sock, Events: clarinet.PollIn}}

	for {
		if ctx.Err() != nil {
			break
		}
		n, err := clarinet.Poll(items, int(pollInterval.Milliseconds()))
		if err != nil {
			if errors.Is(err, clarinet.ErrIntr) {
				continue
			}
			g.Wait()
			return fmt.Errorf("poll: %w", err)
		}
		if n == 0 {
			continue
		}

		var client clarinet.Socket
		peer, err := sock.Accept(&client)
		if err != nil {
			if errors.Is(err, clarinet.ErrAgain) {
				continue
			}
			if errors.Is(err, clarinet.ErrAddrNotAvail) {
				// The connection is good even though the peer address was
				// not; serve it with a zero peer.
				peer = clarinet.Endpoint{}
			} else {
				e.countError(err)
				continue
			}
		}

		c := client // escape for the goroutine; the handle moves exactly once
		g.Go(func() error {
			e.echoConn(ctx, &c, peer)
			return nil
		})
	}

	return g.Wait()
}

// echoConn drains one accepted stream, writing every chunk back.
func (e *Echo) echoConn(ctx context.Context, sock *clarinet.Socket, peer clarinet.Endpoint) {
	if e.metrics != nil {
		e.metrics.Connections.Inc()
		defer e.metrics.Connections.Dec()
	}
	defer e.closeSocket(sock)

	if err := sock.SetOption(clarinet.OptNonBlock, 1); err != nil {
		e.countError(err)
		return
	}

	buf := make([]byte, 32*1024)
	items := []clarinet.PollItem{{Socket: sock, Events: clarinet.PollIn}}

	for {
		if ctx.Err() != nil {
			return
		}
		ready, err := clarinet.Poll(items, int(pollInterval.Milliseconds()))
		if err != nil {
			if errors.Is(err, clarinet.ErrIntr) {
				continue
			}
			e.countError(err)
			return
		}
		if ready == 0 {
			continue
		}

		n, err := sock.Recv(buf)
		if err != nil {
			if errors.Is(err, clarinet.ErrAgain) {
				continue
			}
			if !errors.Is(err, clarinet.ErrConnReset) {
				e.countError(err)
			}
			return
		}
		if n == 0 { // orderly shutdown by the peer
			e.log.Debug("peer closed", slog.String("peer", peer.String()))
			return
		}

		if err := e.writeAll(ctx, sock, buf[:n]); err != nil {
			e.countError(err)
			return
		}
		e.countEcho(clarinet.ProtoTCP, n)
	}
}

// writeAll pushes the whole chunk through a non-blocking stream socket,
// polling for writability on backpressure.
func (e *Echo) writeAll(ctx context.Context, sock *clarinet.Socket, p []byte) error {
	items := []clarinet.PollItem{{Socket: sock, Events: clarinet.PollOut}}
	for len(p) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := sock.Send(p)
		if err != nil {
			if errors.Is(err, clarinet.ErrAgain) {
				if _, err := clarinet.Poll(items, int(pollInterval.Milliseconds())); err != nil && !errors.Is(err, clarinet.ErrIntr) {
					return err
				}
				continue
			}
			return err
		}
		p = p[n:]
	}
	return nil
}

func (e *Echo) closeSocket(sock *clarinet.Socket) {
	if err := sock.Close(); err != nil && !errors.Is(err, clarinet.ErrInvalid) {
		e.log.Warn("socket close failed", slog.String("error", err.Error()))
	}
}

func (e *Echo) countEcho(proto clarinet.Protocol, n int) {
	if e.metrics != nil {
		e.metrics.RecordEcho(proto, n)
	}
}

func (e *Echo) countError(err error) {
	if e.metrics != nil {
		e.metrics.RecordError(err)
	}
}
