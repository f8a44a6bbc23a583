package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	clarinet "github.com/nlebedenco/clarinet-go"
)

func optionsCmd() *cobra.Command {
	var (
		endpoint string
		protocol string
	)

	cmd := &cobra.Command{
		Use:   "options",
		Short: "Open a socket and dump its effective option values",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			ep, err := clarinet.ParseEndpoint(endpoint)
			if err != nil {
				return fmt.Errorf("parse endpoint %q: %w", endpoint, err)
			}
			proto := clarinet.ProtoUDP
			if protocol == "tcp" {
				proto = clarinet.ProtoTCP
			} else if protocol != "udp" {
				return fmt.Errorf("protocol %q: must be udp or tcp", protocol)
			}

			if err := clarinet.Initialize(); err != nil {
				return fmt.Errorf("initialize network subsystem: %w", err)
			}
			defer clarinet.Finalize()

			var sock clarinet.Socket
			if err := sock.Open(ep.Addr.Family(), proto); err != nil {
				return fmt.Errorf("open: %w", err)
			}
			defer sock.Close()

			dumpOptions(&sock)
			return nil
		},
	}

	cmd.Flags().StringVar(&endpoint, "endpoint", "127.0.0.1:0", "endpoint selecting the address family")
	cmd.Flags().StringVar(&protocol, "protocol", "udp", "udp or tcp")
	return cmd
}

// dumpOptions prints every readable option, marking the ones the socket
// type or state does not support.
func dumpOptions(sock *clarinet.Socket) {
	options := []struct {
		name string
		opt  clarinet.Option
	}{
		{"REUSEADDR", clarinet.OptReuseAddr},
		{"SNDBUF", clarinet.OptSndBuf},
		{"RCVBUF", clarinet.OptRcvBuf},
		{"SNDTIMEO", clarinet.OptSndTimeo},
		{"RCVTIMEO", clarinet.OptRcvTimeo},
		{"KEEPALIVE", clarinet.OptKeepAlive},
		{"DONTLINGER", clarinet.OptDontLinger},
		{"ERROR", clarinet.OptError},
		{"IPV6ONLY", clarinet.OptIPv6Only},
		{"TTL", clarinet.OptTTL},
		{"MTU", clarinet.OptMTU},
		{"MTU_DISCOVER", clarinet.OptMTUDiscover},
		{"BROADCAST", clarinet.OptBroadcast},
	}

	for _, o := range options {
		v, err := sock.Option(o.opt)
		switch {
		case err == nil:
			fmt.Printf("%-13s %d\n", o.name, v)
		case errors.Is(err, clarinet.ErrProtoNoSupport),
			errors.Is(err, clarinet.ErrNotSup),
			errors.Is(err, clarinet.ErrInvalid):
			fmt.Printf("%-13s (not applicable)\n", o.name)
		case errors.Is(err, clarinet.ErrNotConn):
			fmt.Printf("%-13s (not connected)\n", o.name)
		default:
			fmt.Printf("%-13s error: %v\n", o.name, err)
		}
	}

	if l, err := sock.Linger(); err == nil {
		fmt.Printf("%-13s enabled=%v seconds=%d\n", "LINGER", l.Enabled, l.Seconds)
	}
}
