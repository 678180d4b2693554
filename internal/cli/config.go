package cli

import (
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/metaloot/registry/internal/config"
)

// Config holds CLI configuration
type Config struct {
	ServerURL string `env:"REGISTRY_SERVER" envDefault:"http://localhost:8080"`
	Key       string `env:"REGISTRY_KEY"`
	Output    string `env:"REGISTRY_OUTPUT" envDefault:"text"`
	Verbose   bool   `env:"REGISTRY_VERBOSE"`

	envErr error
}

// DefaultConfig returns a Config populated from the environment. A malformed
// variable is reported by Validate.
func DefaultConfig() *Config {
	c := &Config{ServerURL: "http://localhost:8080", Output: "text"}
	c.envErr = config.ParseEnv(c)
	return c
}

// Validate checks the environment and flag values
func (c *Config) Validate() error {
	if c.envErr != nil {
		return c.envErr
	}
	switch c.Output {
	case "text", "json", "yaml":
		return nil
	default:
		return fmt.Errorf("unknown output format %q (want text, json or yaml)", c.Output)
	}
}

// Signer parses the configured signing key
func (c *Config) Signer() (solana.PrivateKey, error) {
	if c.Key == "" {
		return nil, errors.New("a signing key is required (--key or REGISTRY_KEY)")
	}
	key, err := solana.PrivateKeyFromBase58(c.Key)
	if err != nil {
		return nil, fmt.Errorf("invalid signing key: %w", err)
	}
	return key, nil
}
