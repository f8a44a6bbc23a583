package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	clarinet "github.com/nlebedenco/clarinet-go"
)

func parseCmd() *cobra.Command {
	var asEndpoint bool

	cmd := &cobra.Command{
		Use:   "parse <address|endpoint>",
		Short: "Parse a textual address or endpoint and print its canonical form",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if asEndpoint {
				ep, err := clarinet.ParseEndpoint(args[0])
				if err != nil {
					return fmt.Errorf("parse endpoint %q: %w", args[0], err)
				}
				fmt.Printf("canonical: %s\n", ep)
				fmt.Printf("family:    %s\n", ep.Addr.Family())
				fmt.Printf("port:      %d\n", ep.Port)
				printClassification(ep.Addr)
				return nil
			}

			a, err := clarinet.ParseAddr(args[0])
			if err != nil {
				return fmt.Errorf("parse address %q: %w", args[0], err)
			}
			fmt.Printf("canonical: %s\n", a)
			fmt.Printf("family:    %s\n", a.Family())
			if a.Family() == clarinet.FamilyInet6 {
				fmt.Printf("scope:     %d\n", a.ScopeID())
			}
			printClassification(a)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asEndpoint, "endpoint", false,
		"treat the argument as an endpoint (address plus port)")
	return cmd
}

// printClassification lists the predicates that hold for the address.
func printClassification(a clarinet.Addr) {
	classes := []struct {
		name string
		hit  bool
	}{
		{"wildcard", a.IsAnyIP()},
		{"loopback", a.IsLoopbackIP()},
		{"broadcast", a.IsBroadcastIPv4()},
		{"ipv4-mapped", a.IsIPv4Mapped()},
		{"multicast-v6", a.IsMulticastIPv6()},
		{"link-local-v6", a.IsLinkLocalIPv6()},
		{"site-local-v6", a.IsSiteLocalIPv6()},
		{"teredo", a.IsTeredoIPv6()},
	}

	any := false
	for _, c := range classes {
		if c.hit {
			if !any {
				fmt.Printf("classes:  ")
				any = true
			}
			fmt.Printf(" %s", c.name)
		}
	}
	if any {
		fmt.Println()
	}
}
