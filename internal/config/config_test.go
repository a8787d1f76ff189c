package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Server.Port != 6379 {
		t.Errorf("default port = %d, want 6379", cfg.Server.Port)
	}
	if cfg.Policy.Mode != "strict" {
		t.Errorf("default policy mode = %s, want strict", cfg.Policy.Mode)
	}
	if cfg.Keyspace.MaxmemoryPolicy != "noeviction" {
		t.Errorf("default maxmemory policy = %s, want noeviction", cfg.Keyspace.MaxmemoryPolicy)
	}
	if !cfg.Metrics.Enabled {
		t.Error("metrics should be enabled by default")
	}
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid default", mutate: func(c *Config) {}, wantErr: false},
		{name: "invalid port negative", mutate: func(c *Config) { c.Server.Port = -1 }, wantErr: true},
		{name: "invalid port too high", mutate: func(c *Config) { c.Server.Port = 70000 }, wantErr: true},
		{name: "invalid policy mode", mutate: func(c *Config) { c.Policy.Mode = "bogus" }, wantErr: true},
		{name: "negative maxmemory", mutate: func(c *Config) { c.Keyspace.MaxmemoryBytes = -1 }, wantErr: true},
		{name: "negative acllog-max-len", mutate: func(c *Config) { c.Auth.AclLogMaxLen = -1 }, wantErr: true},
		{
			name: "tls enabled without cert",
			mutate: func(c *Config) {
				c.TLS.Port = 6380
			},
			wantErr: true,
		},
		{
			name: "tls enabled with cert",
			mutate: func(c *Config) {
				c.TLS.Port = 6380
				c.TLS.CertFile = "cert.pem"
				c.TLS.KeyFile = "key.pem"
			},
			wantErr: false,
		},
		{
			name: "tls invalid auth_clients",
			mutate: func(c *Config) {
				c.TLS.Port = 6380
				c.TLS.CertFile = "cert.pem"
				c.TLS.KeyFile = "key.pem"
				c.TLS.AuthClients = "Sometimes"
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	t.Run("valid yaml", func(t *testing.T) {
		content := `
server:
  port: 7000
policy:
  mode: hardened
  hardened_allowlist: ["ResourceClamp"]
keyspace:
  maxmemory_bytes: 1048576
  maxmemory_policy: allkeys-random
`
		path := createTempFile(t, content)
		defer os.Remove(path)

		cfg, err := LoadFromFile(path)
		if err != nil {
			t.Fatalf("LoadFromFile() error = %v", err)
		}
		if cfg.Server.Port != 7000 {
			t.Errorf("port = %d, want 7000", cfg.Server.Port)
		}
		if cfg.Policy.Mode != "hardened" {
			t.Errorf("policy.mode = %s, want hardened", cfg.Policy.Mode)
		}
		if cfg.Keyspace.MaxmemoryBytes != 1048576 {
			t.Errorf("maxmemory_bytes = %d, want 1048576", cfg.Keyspace.MaxmemoryBytes)
		}
	})

	t.Run("environment variable expansion", func(t *testing.T) {
		os.Setenv("TEST_REQUIREPASS", "secret-value-123")
		defer os.Unsetenv("TEST_REQUIREPASS")

		content := `
auth:
  requirepass: ${TEST_REQUIREPASS}
`
		path := createTempFile(t, content)
		defer os.Remove(path)

		cfg, err := LoadFromFile(path)
		if err != nil {
			t.Fatalf("LoadFromFile() error = %v", err)
		}
		if cfg.Auth.RequirePass != "secret-value-123" {
			t.Errorf("requirepass = %s, want secret-value-123", cfg.Auth.RequirePass)
		}
	})

	t.Run("file not found", func(t *testing.T) {
		_, err := LoadFromFile("/nonexistent/path/config.yaml")
		if err == nil {
			t.Error("expected error for nonexistent file")
		}
	})

	t.Run("invalid yaml", func(t *testing.T) {
		content := `
server:
  port: [invalid
`
		path := createTempFile(t, content)
		defer os.Remove(path)

		_, err := LoadFromFile(path)
		if err == nil {
			t.Error("expected error for invalid yaml")
		}
	})
}

func createTempFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	return path
}
