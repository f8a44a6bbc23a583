// Package probe holds the supporting infrastructure of the clarinet-probe
// diagnostic tool: koanf-backed configuration, Prometheus metrics, and the
// echo engine built on the public clarinet API.
package probe

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	clarinet "github.com/nlebedenco/clarinet-go"
)

// -------------------------------------------------------------------------
// Configuration Structures
// -------------------------------------------------------------------------

// Config holds the complete clarinet-probe configuration.
type Config struct {
	Echo    EchoConfig    `koanf:"echo"`
	Metrics MetricsConfig `koanf:"metrics"`
	Log     LogConfig     `koanf:"log"`
}

// EchoConfig describes the echo endpoint and its socket options.
type EchoConfig struct {
	// Listen is the local endpoint, e.g. "127.0.0.1:7700" or "[::1]:7700".
	Listen string `koanf:"listen"`

	// Protocol is "udp" or "tcp".
	Protocol string `koanf:"protocol"`

	// TTL is the IPv4 TTL / IPv6 hop limit for replies; 0 keeps the
	// system default.
	TTL int `koanf:"ttl"`

	// SendBuffer and RecvBuffer size the socket buffers in bytes; 0 keeps
	// the system defaults.
	SendBuffer int `koanf:"send_buffer"`
	RecvBuffer int `koanf:"recv_buffer"`

	// ReuseAddr requests address reuse at bind time.
	ReuseAddr bool `koanf:"reuse_addr"`

	// IPv6Only disables dual-stack when listening on an IPv6 endpoint.
	IPv6Only bool `koanf:"ipv6_only"`
}

// MetricsConfig holds the Prometheus endpoint configuration.
type MetricsConfig struct {
	// Addr is the HTTP listen address for the metrics endpoint; empty
	// disables it.
	Addr string `koanf:"addr"`
	// Path is the URL path for the metrics endpoint.
	Path string `koanf:"path"`
}

// LogConfig holds the logging configuration.
type LogConfig struct {
	// Level is the log level: "debug", "info", "warn", "error".
	Level string `koanf:"level"`
	// Format is the log output format: "json" or "text".
	Format string `koanf:"format"`
}

// -------------------------------------------------------------------------
// Defaults and Loading
// -------------------------------------------------------------------------

// envPrefix is the prefix for environment variable overrides, e.g.
// CLARINET_PROBE_ECHO__LISTEN=0.0.0.0:7700.
const envPrefix = "CLARINET_PROBE_"

// Sentinel validation errors.
var (
	ErrBadProtocol = errors.New(`protocol must be "udp" or "tcp"`)
	ErrBadFormat   = errors.New(`log format must be "json" or "text"`)
)

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Echo: EchoConfig{
			Listen:    "127.0.0.1:7700",
			Protocol:  "udp",
			ReuseAddr: true,
		},
		Metrics: MetricsConfig{
			Addr: "",
			Path: "/metrics",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads the configuration from an optional YAML file and applies
// environment overrides. Missing file path means defaults plus environment.
func Load(path string) (Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	// CLARINET_PROBE_ECHO__LISTEN -> echo.listen
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "__", ".")
	}), nil); err != nil {
		return Config{}, fmt.Errorf("load environment: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration for internal consistency.
func (c Config) Validate() error {
	if _, err := clarinet.ParseEndpoint(c.Echo.Listen); err != nil {
		return fmt.Errorf("echo.listen %q: %w", c.Echo.Listen, err)
	}
	switch c.Echo.Protocol {
	case "udp", "tcp":
	default:
		return fmt.Errorf("echo.protocol %q: %w", c.Echo.Protocol, ErrBadProtocol)
	}
	if c.Echo.TTL < 0 || c.Echo.TTL > 255 {
		return fmt.Errorf("echo.ttl %d: out of range [0, 255]", c.Echo.TTL)
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		return fmt.Errorf("log.format %q: %w", c.Log.Format, ErrBadFormat)
	}
	return nil
}

// ListenEndpoint returns the parsed echo endpoint. Validate must have
// succeeded.
func (c Config) ListenEndpoint() clarinet.Endpoint {
	ep, _ := clarinet.ParseEndpoint(c.Echo.Listen)
	return ep
}

// Protocol returns the parsed echo protocol. Validate must have succeeded.
func (c Config) Protocol() clarinet.Protocol {
	if c.Echo.Protocol == "tcp" {
		return clarinet.ProtoTCP
	}
	return clarinet.ProtoUDP
}

// -------------------------------------------------------------------------
// Logging
// -------------------------------------------------------------------------

// ParseLogLevel maps a configuration string to a slog level, defaulting to
// info for unknown values.
func ParseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger builds the process logger from the log configuration.
func NewLogger(cfg LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLogLevel(cfg.Level)}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}
