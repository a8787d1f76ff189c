// Package env implements a secret.Provider that reads redikv's
// requirepass/ACL user password values straight from the process
// environment, for the "env://" scheme.
package env

import (
	"context"
	"fmt"
	"os"
)

// Provider implements the secret.Provider interface for environment variables.
type Provider struct{}

// New creates a new Env provider.
func New() *Provider {
	return &Provider{}
}

// Get retrieves the value of the environment variable specified by path,
// e.g. path "REDIKV_REQUIREPASS" for requirepass: "env://REDIKV_REQUIREPASS".
func (p *Provider) Get(ctx context.Context, path string) (string, error) {
	val, ok := os.LookupEnv(path)
	if !ok {
		return "", fmt.Errorf("environment variable %q not set", path)
	}
	return val, nil
}

// Close is a no-op for the Env provider.
func (p *Provider) Close() error {
	return nil
}
