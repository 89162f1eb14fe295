// Package config resolves palettenode settings from defaults and the
// environment. Command-line flags are layered on top by the cli package.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jmylchreest/palettenode/internal/colour"
	"github.com/jmylchreest/palettenode/internal/credential"
	"github.com/jmylchreest/palettenode/internal/node"
	"github.com/jmylchreest/palettenode/internal/pixels"
	httputil "github.com/jmylchreest/palettenode/internal/util/http"
)

// EnvPrefix prefixes every environment variable read by this package.
const EnvPrefix = "PALETTENODE_"

// Environment variable names.
const (
	EnvColorCount      = EnvPrefix + "COLOR_COUNT"
	EnvOutputFormat    = EnvPrefix + "OUTPUT_FORMAT"
	EnvAlgorithm       = EnvPrefix + "ALGORITHM"
	EnvContinueOnFail  = EnvPrefix + "CONTINUE_ON_FAIL"
	EnvFetchTimeout    = EnvPrefix + "FETCH_TIMEOUT"
	EnvMaxPayloadBytes = EnvPrefix + "MAX_PAYLOAD_BYTES"
	EnvMaxPixels       = EnvPrefix + "MAX_PIXELS"
	EnvLogLevel        = EnvPrefix + "LOG_LEVEL"
	EnvLogJSON         = EnvPrefix + "LOG_JSON"
	EnvHTTPBinToken    = EnvPrefix + "HTTPBIN_TOKEN"
	EnvHTTPBinDomain   = EnvPrefix + "HTTPBIN_DOMAIN"
)

// Credential holds the httpbin credential settings.
type Credential struct {
	Token  string
	Domain string
}

// Config holds resolved settings.
type Config struct {
	ColorCount      int
	OutputFormat    colour.OutputFormat
	Algorithm       colour.Algorithm
	ContinueOnFail  bool
	FetchTimeout    time.Duration
	MaxPayloadBytes int64
	MaxPixels       int64
	LogLevel        string
	LogJSON         bool
	Credential      Credential
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		ColorCount:      node.DefaultColorCount,
		OutputFormat:    colour.DefaultOutputFormat,
		Algorithm:       colour.DefaultAlgorithm,
		FetchTimeout:    httputil.DefaultTimeout,
		MaxPayloadBytes: pixels.DefaultMaxPayloadBytes,
		MaxPixels:       pixels.DefaultMaxPixels,
		LogLevel:        "warn",
		Credential:      Credential{Domain: credential.DefaultDomain},
	}
}

// Builder provides a fluent interface for constructing a Config.
type Builder struct {
	config Config
	getenv func(string) string
}

// NewBuilder creates a Builder starting from Default.
func NewBuilder() *Builder {
	return &Builder{config: Default()}
}

// WithConfig replaces the starting settings.
func (b *Builder) WithConfig(c Config) *Builder {
	b.config = c
	return b
}

// WithEnvConfig overlays PALETTENODE_* variables from the process environment.
func (b *Builder) WithEnvConfig() *Builder {
	return b.WithEnvFunc(os.Getenv)
}

// WithEnvFunc overlays variables looked up through getenv.
func (b *Builder) WithEnvFunc(getenv func(string) string) *Builder {
	b.getenv = getenv
	return b
}

// Build resolves and validates the settings.
func (b *Builder) Build() (Config, error) {
	cfg := b.config

	if b.getenv != nil {
		if err := applyEnv(&cfg, b.getenv); err != nil {
			return Config{}, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config, getenv func(string) string) error {
	lookup := func(name string) (string, bool) {
		v := strings.TrimSpace(getenv(name))
		return v, v != ""
	}

	if v, ok := lookup(EnvColorCount); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvColorCount, err)
		}
		cfg.ColorCount = n
	}
	if v, ok := lookup(EnvOutputFormat); ok {
		cfg.OutputFormat = colour.OutputFormat(strings.ToLower(v))
	}
	if v, ok := lookup(EnvAlgorithm); ok {
		cfg.Algorithm = colour.Algorithm(strings.ToLower(v))
	}
	if v, ok := lookup(EnvContinueOnFail); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvContinueOnFail, err)
		}
		cfg.ContinueOnFail = b
	}
	if v, ok := lookup(EnvFetchTimeout); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvFetchTimeout, err)
		}
		cfg.FetchTimeout = d
	}
	if v, ok := lookup(EnvMaxPayloadBytes); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvMaxPayloadBytes, err)
		}
		cfg.MaxPayloadBytes = n
	}
	if v, ok := lookup(EnvMaxPixels); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvMaxPixels, err)
		}
		cfg.MaxPixels = n
	}
	if v, ok := lookup(EnvLogLevel); ok {
		cfg.LogLevel = v
	}
	if v, ok := lookup(EnvLogJSON); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvLogJSON, err)
		}
		cfg.LogJSON = b
	}
	if v, ok := lookup(EnvHTTPBinToken); ok {
		cfg.Credential.Token = v
	}
	if v, ok := lookup(EnvHTTPBinDomain); ok {
		cfg.Credential.Domain = v
	}
	return nil
}

// Validate checks that every setting is usable.
func (c Config) Validate() error {
	if err := colour.ValidateCount(c.ColorCount); err != nil {
		return err
	}
	if _, err := colour.ParseOutputFormat(string(c.OutputFormat)); err != nil {
		return err
	}
	if _, err := colour.ParseAlgorithm(string(c.Algorithm)); err != nil {
		return err
	}
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("fetch timeout must be positive, got %s", c.FetchTimeout)
	}
	if c.MaxPayloadBytes <= 0 {
		return fmt.Errorf("max payload bytes must be positive, got %d", c.MaxPayloadBytes)
	}
	if c.MaxPixels <= 0 {
		return fmt.Errorf("max pixels must be positive, got %d", c.MaxPixels)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// Request returns the default node request described by c.
func (c Config) Request() node.Request {
	return node.Request{
		ColorCount:   c.ColorCount,
		OutputFormat: c.OutputFormat,
		Algorithm:    c.Algorithm,
	}
}

// Policy returns the batch failure policy described by c.
func (c Config) Policy() node.Policy {
	return node.PolicyFor(c.ContinueOnFail)
}

// ReaderOptions returns the pixel reader options described by c.
func (c Config) ReaderOptions() []pixels.Option {
	return []pixels.Option{
		pixels.WithTimeout(c.FetchTimeout),
		pixels.WithMaxBytes(c.MaxPayloadBytes),
		pixels.WithMaxPixels(c.MaxPixels),
	}
}

// HTTPBin returns the configured credential.
func (c Config) HTTPBin() credential.HTTPBin {
	return credential.New(c.Credential.Token, c.Credential.Domain)
}
