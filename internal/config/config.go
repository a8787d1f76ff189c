// Package config provides configuration management with hot-reload
// support for the redikv server: fsnotify watches the file, atomic
// pointer swaps publish each successfully validated reload. Generalized
// from the teacher's internal/config package (same Manager/watch-loop
// shape), but the schema itself is redikv's own: the dynamic CONFIG keys
// named by the runtime's CONFIG bridge, plus a tls block matching the
// runtime's TLS candidate config, instead of the teacher's LLM-gateway
// provider/routing/governance schema.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the complete redikv server configuration document.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Policy   PolicyConfig   `yaml:"policy"`
	Keyspace KeyspaceConfig `yaml:"keyspace"`
	Auth     AuthFileConfig `yaml:"auth"`
	TLS      TLSFileConfig  `yaml:"tls"`
	AOF      AOFConfig      `yaml:"aof"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Tracing  TracingConfig  `yaml:"tracing"`
	Logging  LoggingConfig  `yaml:"logging"`
	Vault    VaultConfig    `yaml:"vault"`
}

// ServerConfig is the RESP listener's bind address.
type ServerConfig struct {
	Bind string `yaml:"bind"`
	Port int    `yaml:"port"`
}

// PolicyConfig configures the runtime's Strict/Hardened gate (spec
// §4.3): mode plus, in Hardened mode, which deviation categories are
// allowlisted.
type PolicyConfig struct {
	Mode              string   `yaml:"mode"` // "strict" or "hardened"
	HardenedAllowlist []string `yaml:"hardened_allowlist"`
	MaxArrayLen       int      `yaml:"max_array_len"`
	MaxBulkLen        int      `yaml:"max_bulk_len"`
}

// KeyspaceConfig carries the CONFIG-bridged keyspace knobs: the maxmemory
// limit and the eviction policy name.
type KeyspaceConfig struct {
	MaxmemoryBytes int64  `yaml:"maxmemory_bytes"`
	MaxmemoryPolicy string `yaml:"maxmemory_policy"`
}

// AuthFileConfig carries requirepass, optionally resolved through a
// secret.Provider reference instead of an inline literal (SPEC_FULL §4.3
// [NEW]: "secret-backed requirepass/user passwords").
type AuthFileConfig struct {
	// RequirePass is either a literal password or a "scheme://path"
	// reference resolved via internal/secret.Manager at load time.
	RequirePass  string `yaml:"requirepass"`
	AclLogMaxLen int    `yaml:"acllog_max_len"`
}

// TLSFileConfig mirrors the runtime's TLSCandidateConfig shape so the
// config file and CONFIG-driven TLS application share one contract
// (SPEC_FULL §6).
type TLSFileConfig struct {
	Port        int      `yaml:"port"`
	CertFile    string   `yaml:"cert_file"`
	KeyFile     string   `yaml:"key_file"`
	CAFile      string   `yaml:"ca_file"`
	Protocols   []string `yaml:"protocols"`
	Ciphers     string   `yaml:"ciphers"`
	AuthClients string   `yaml:"auth_clients"` // "Required" | "Optional" | "No"
}

// AOFConfig names where the append-only record stream is written.
type AOFConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// MetricsConfig is the prometheus/client_golang promhttp endpoint
// (SPEC_FULL §6 [NEW]).
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
	Path    string `yaml:"path"`
}

// TracingConfig is the otel trace exporter for command-level spans
// (SPEC_FULL §4.3 [NEW]).
type TracingConfig struct {
	Enabled     bool    `yaml:"enabled"`
	Endpoint    string  `yaml:"endpoint"`
	ServiceName string  `yaml:"service_name"`
	SampleRate  float64 `yaml:"sample_rate"`
	Insecure    bool    `yaml:"insecure"`
}

// LoggingConfig configures the slog-based structured logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "json" or "text"
}

// VaultConfig carries HashiCorp Vault connection settings for the
// secret/vault provider, unchanged in shape from the teacher's.
type VaultConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Address    string `yaml:"address"`
	AuthMethod string `yaml:"auth_method"`
	RoleID     string `yaml:"role_id"`
	SecretID   string `yaml:"secret_id"`
	CACert     string `yaml:"ca_cert"`
	ClientCert string `yaml:"client_cert"`
	ClientKey  string `yaml:"client_key"`
}

// DefaultConfig returns the configuration a bare `redikv-server` should
// run with when no file overrides a field.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{Bind: "127.0.0.1", Port: 6379},
		Policy: PolicyConfig{
			Mode:        "strict",
			MaxArrayLen: 1024 * 1024,
			MaxBulkLen:  512 * 1024 * 1024,
		},
		Keyspace: KeyspaceConfig{MaxmemoryPolicy: "noeviction"},
		Auth:     AuthFileConfig{AclLogMaxLen: 128},
		TLS:      TLSFileConfig{AuthClients: "No"},
		AOF:      AOFConfig{Enabled: false, Path: "redikv.aof"},
		Metrics:  MetricsConfig{Enabled: true, Addr: ":9121", Path: "/metrics"},
		Tracing:  TracingConfig{ServiceName: "redikv"},
		Logging:  LoggingConfig{Level: "info", Format: "json"},
	}
}

// LoadFromFile reads, expands environment references in, and validates
// path, layering it over DefaultConfig.
func LoadFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	expanded := os.ExpandEnv(string(raw))
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate checks the loaded document for internally-inconsistent
// values the runtime could not otherwise reject before bootstrap.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	mode := strings.ToLower(c.Policy.Mode)
	if mode != "strict" && mode != "hardened" {
		return fmt.Errorf("policy.mode must be \"strict\" or \"hardened\", got %q", c.Policy.Mode)
	}
	if c.Keyspace.MaxmemoryBytes < 0 {
		return fmt.Errorf("keyspace.maxmemory_bytes must be >= 0")
	}
	if c.Auth.AclLogMaxLen < 0 {
		return fmt.Errorf("auth.acllog_max_len must be >= 0")
	}
	if c.TLS.Port != 0 {
		if c.TLS.CertFile == "" || c.TLS.KeyFile == "" {
			return fmt.Errorf("tls.cert_file and tls.key_file are required when tls.port is set")
		}
		switch c.TLS.AuthClients {
		case "Required", "Optional", "No", "":
		default:
			return fmt.Errorf("tls.auth_clients must be Required, Optional or No, got %q", c.TLS.AuthClients)
		}
	}
	return nil
}
