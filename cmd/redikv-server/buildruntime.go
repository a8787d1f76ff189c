package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/blueberrycongee/redikv/internal/config"
	"github.com/blueberrycongee/redikv/internal/runtime"
	"github.com/blueberrycongee/redikv/internal/secret"
	"github.com/blueberrycongee/redikv/internal/secret/env"
	"github.com/blueberrycongee/redikv/internal/secret/vault"
	"github.com/blueberrycongee/redikv/internal/store"
)

// requirePassCacheTTL bounds how long a value resolved through vault:// is
// kept by the CachedProvider before the next lookup goes back to Vault, the
// same TTL the teacher applies to its provider-API-key vault lookups.
const requirePassCacheTTL = 5 * time.Minute

// buildSecretManager registers the env provider unconditionally and the
// vault provider when cfg.Vault.Enabled, mirroring the teacher's
// cmd/server.run secret-manager bootstrap. The vault provider is wrapped
// in a CachedProvider so repeated lookups of the same reference within
// requirePassCacheTTL don't re-hit Vault. In this binary requirepass is
// resolved once, at startup, by buildRuntime.
func buildSecretManager(cfg *config.Config, logger *slog.Logger) *secret.Manager {
	mgr := secret.NewManager()
	mgr.Register("env", env.New())

	if cfg.Vault.Enabled {
		vCfg := vault.Config{
			Address:    cfg.Vault.Address,
			AuthMethod: cfg.Vault.AuthMethod,
			RoleID:     cfg.Vault.RoleID,
			SecretID:   cfg.Vault.SecretID,
			CACert:     cfg.Vault.CACert,
			ClientCert: cfg.Vault.ClientCert,
			ClientKey:  cfg.Vault.ClientKey,
		}
		provider, err := vault.New(vCfg)
		if err != nil {
			logger.Error("failed to initialize vault secret provider, requirepass/ACL secret refs using vault:// will fail", "error", err)
		} else {
			mgr.Register("vault", secret.NewCachedProvider(provider, requirePassCacheTTL))
			logger.Info("vault secret provider registered", "addr", cfg.Vault.Address)
		}
	}
	return mgr
}

// buildRuntime assembles the Store and Runtime from a loaded Config,
// applying every CONFIG-bridged knob through the same store/auth setters
// Runtime.HandleConfig uses for RESP CONFIG SET. It runs once at startup;
// a later config-file reload does not call it, so a reloaded file does not
// change the running Runtime.
func buildRuntime(ctx context.Context, cfg *config.Config, secretMgr *secret.Manager, logger *slog.Logger) (*store.Store, *runtime.Runtime, error) {
	st := store.New()
	st.SetMaxmemory(cfg.Keyspace.MaxmemoryBytes)
	st.SetEvictionPolicy(cfg.Keyspace.MaxmemoryPolicy)

	rt := runtime.New(st)

	switch strings.ToLower(cfg.Policy.Mode) {
	case "hardened":
		rt.Policy.Mode = runtime.Hardened
	default:
		rt.Policy.Mode = runtime.Strict
	}
	if cfg.Policy.MaxArrayLen > 0 {
		rt.Policy.Gate.MaxArrayLen = cfg.Policy.MaxArrayLen
	}
	if cfg.Policy.MaxBulkLen > 0 {
		rt.Policy.Gate.MaxBulkLen = cfg.Policy.MaxBulkLen
	}
	for _, name := range cfg.Policy.HardenedAllowlist {
		rt.Policy.Allow(runtime.DeviationCategory(name))
	}

	rt.Auth.SetAclLogMaxLen(cfg.Auth.AclLogMaxLen)
	if cfg.Auth.RequirePass != "" {
		// Manager.Get already returns a schemeless value as a literal, so
		// a plain-text requirepass and a "vault://.../requirepass#value"
		// reference both resolve through this one call.
		pass, err := secretMgr.Get(ctx, cfg.Auth.RequirePass)
		if err != nil {
			return nil, nil, fmt.Errorf("resolving auth.requirepass: %w", err)
		}
		rt.Auth.SetRequirePass(pass)
	}

	if cfg.TLS.Port != 0 {
		candidate := runtime.TLSCandidateConfig{
			TLSPort:     cfg.TLS.Port,
			CertFile:    cfg.TLS.CertFile,
			KeyFile:     cfg.TLS.KeyFile,
			CAFile:      cfg.TLS.CAFile,
			Protocols:   cfg.TLS.Protocols,
			Ciphers:     cfg.TLS.Ciphers,
			AuthClients: runtime.ClientAuthMode(cfg.TLS.AuthClients),
		}
		if _, err := rt.ApplyTLSConfig(candidate, nowMs()); err != nil {
			return nil, nil, fmt.Errorf("applying tls config: %w", err)
		}
	}

	if cfg.AOF.Enabled {
		f, err := os.OpenFile(cfg.AOF.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("opening aof file %q: %w", cfg.AOF.Path, err)
		}
		rt.SetAOF(f)
		logger.Info("append-only file enabled", "path", cfg.AOF.Path)
	}

	return st, rt, nil
}
