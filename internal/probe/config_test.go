package probe_test

import (
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v3"

	clarinet "github.com/nlebedenco/clarinet-go"
	"github.com/nlebedenco/clarinet-go/internal/probe"
)

// TestDefaults verifies the built-in configuration is valid on its own.
func TestDefaults(t *testing.T) {
	t.Parallel()

	cfg := probe.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Protocol() != clarinet.ProtoUDP {
		t.Errorf("default protocol = %v", cfg.Protocol())
	}
	ep := cfg.ListenEndpoint()
	if !ep.Addr.IsLoopbackIPv4() {
		t.Errorf("default listen = %v", ep)
	}
}

// TestLoadFromFile round-trips a configuration through a YAML file written
// with the same schema the loader reads.
func TestLoadFromFile(t *testing.T) {
	doc := map[string]any{
		"echo": map[string]any{
			"listen":      "[::1]:9901",
			"protocol":    "tcp",
			"ttl":         64,
			"send_buffer": 65536,
			"recv_buffer": 65536,
			"reuse_addr":  true,
			"ipv6_only":   true,
		},
		"metrics": map[string]any{
			"addr": "127.0.0.1:9102",
			"path": "/metrics",
		},
		"log": map[string]any{
			"level":  "debug",
			"format": "json",
		},
	}
	raw, err := yaml.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}
	path := filepath.Join(t.TempDir(), "probe.yaml")
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	cfg, err := probe.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Echo.Listen != "[::1]:9901" || cfg.Echo.Protocol != "tcp" {
		t.Errorf("echo = %+v", cfg.Echo)
	}
	if cfg.Echo.TTL != 64 || cfg.Echo.SendBuffer != 65536 || !cfg.Echo.IPv6Only {
		t.Errorf("echo options = %+v", cfg.Echo)
	}
	if cfg.Metrics.Addr != "127.0.0.1:9102" {
		t.Errorf("metrics = %+v", cfg.Metrics)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("log = %+v", cfg.Log)
	}
	if cfg.Protocol() != clarinet.ProtoTCP {
		t.Errorf("protocol = %v", cfg.Protocol())
	}
	if ep := cfg.ListenEndpoint(); ep.Port != 9901 || !ep.Addr.IsLoopbackIPv6() {
		t.Errorf("endpoint = %v", cfg.ListenEndpoint())
	}
}

// TestEnvOverride verifies environment variables override the built-in
// defaults.
func TestEnvOverride(t *testing.T) {
	t.Setenv("CLARINET_PROBE_ECHO__LISTEN", "127.0.0.1:9903")
	t.Setenv("CLARINET_PROBE_LOG__LEVEL", "error")

	cfg, err := probe.Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Echo.Listen != "127.0.0.1:9903" {
		t.Errorf("listen = %q", cfg.Echo.Listen)
	}
	if cfg.Log.Level != "error" {
		t.Errorf("level = %q", cfg.Log.Level)
	}
}

// TestValidateRejects walks the validation failure modes.
func TestValidateRejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*probe.Config)
	}{
		{"bad endpoint", func(c *probe.Config) { c.Echo.Listen = "localhost:80" }},
		{"missing port", func(c *probe.Config) { c.Echo.Listen = "127.0.0.1" }},
		{"bad protocol", func(c *probe.Config) { c.Echo.Protocol = "sctp" }},
		{"ttl out of range", func(c *probe.Config) { c.Echo.TTL = 256 }},
		{"bad log format", func(c *probe.Config) { c.Log.Format = "xml" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := probe.Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("validation must fail")
			}
		})
	}
}
