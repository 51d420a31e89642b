// Package config loads and validates the service configuration from a YAML
// file. Values of the form ${VAR} are expanded from the environment, so
// secrets can stay out of the file itself.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/stellar/go/network"
	"github.com/stellar/go/strkey"
	"gopkg.in/yaml.v3"
)

// Config represents the complete service configuration
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Auth    AuthConfig    `yaml:"auth"`
	Horizon HorizonConfig `yaml:"horizon"`
	Redis   RedisConfig   `yaml:"redis"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig holds the listen address
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// AuthConfig holds the authentication parameters
type AuthConfig struct {
	JWTSecret                 string   `yaml:"jwt_secret"`
	SigningSeed               string   `yaml:"signing_seed"`
	HomeDomain                string   `yaml:"home_domain"`
	WebAuthDomain             string   `yaml:"web_auth_domain"`
	HostURL                   string   `yaml:"host_url"`
	NetworkPassphrase         string   `yaml:"network_passphrase"`
	AllowedClientDomains      []string `yaml:"allowed_client_domains"`
	ClientAttributionRequired bool     `yaml:"client_attribution_required"`
}

// HorizonConfig holds the ledger client configuration
type HorizonConfig struct {
	URL string `yaml:"url"`
}

// RedisConfig holds the event stream configuration. An empty URL disables
// event publishing.
type RedisConfig struct {
	URL string `yaml:"url"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Load reads, expands and validates the configuration at path
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(raw))), cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":9000"
	}
	if c.Auth.NetworkPassphrase == "" {
		c.Auth.NetworkPassphrase = network.TestNetworkPassphrase
	}
	if c.Horizon.URL == "" {
		c.Horizon.URL = "https://horizon-testnet.stellar.org"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

func (c *Config) validate() error {
	if c.Auth.JWTSecret == "" {
		return errors.New("config: auth.jwt_secret is required")
	}
	if !strkey.IsValidEd25519SecretSeed(c.Auth.SigningSeed) {
		return errors.New("config: auth.signing_seed must be a valid ed25519 secret seed")
	}
	if c.Auth.HomeDomain == "" {
		return errors.New("config: auth.home_domain is required")
	}
	if c.Auth.WebAuthDomain == "" {
		return errors.New("config: auth.web_auth_domain is required")
	}
	if c.Auth.HostURL == "" {
		return errors.New("config: auth.host_url is required")
	}
	return nil
}
