// Package secret resolves "scheme://path" references used by redikv's
// requirepass and ACL user password config fields into plaintext values,
// so a deployment can keep the actual password out of the YAML file on
// disk (SPEC_FULL §4.3 [NEW]: "secret-backed requirepass/user passwords").
package secret

import "context"

// Provider defines the interface for retrieving secrets from various sources.
type Provider interface {
	// Get retrieves the secret value for the given path. Manager strips the
	// "scheme://" prefix first, so path examples are "REDIKV_REQUIREPASS"
	// (env) and "secret/data/redikv#requirepass" (vault).
	Get(ctx context.Context, path string) (string, error)

	// Close releases any resources held by the provider.
	Close() error
}
