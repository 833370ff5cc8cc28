// Package config loads SDK configuration from the environment for the CLI
// and other standalone entrypoints.
package config

import (
	"os"

	"github.com/shade-labs/shade-privacy-go/pkg/sdkerrors"
)

// Environment variable names for SDK configuration
const (
	EnvShadeAPIKey     = "SHADE_API_KEY"
	EnvShadeHMACSecret = "SHADE_HMAC_SECRET"
	EnvShadeBaseURL    = "SHADE_BASE_URL"
	EnvShadeVerbose    = "SHADE_VERBOSE"
)

// DefaultBaseURL is used when no base URL is configured.
const DefaultBaseURL = "http://localhost:8000/api"

// Config holds the parameters needed to construct a client.
type Config struct {
	APIKey     string
	HMACSecret string
	BaseURL    string
	Verbose    bool
}

// FromEnv reads configuration from the environment. Missing values are left
// empty; call Validate before use.
func FromEnv() *Config {
	cfg := &Config{
		APIKey:     os.Getenv(EnvShadeAPIKey),
		HMACSecret: os.Getenv(EnvShadeHMACSecret),
		BaseURL:    os.Getenv(EnvShadeBaseURL),
		Verbose:    os.Getenv(EnvShadeVerbose) == "true",
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	return cfg
}

// Validate checks that the required fields are present.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return sdkerrors.NewValidationError("api key is required (set %s)", EnvShadeAPIKey)
	}
	if c.HMACSecret == "" {
		return sdkerrors.NewValidationError("hmac secret is required (set %s)", EnvShadeHMACSecret)
	}
	return nil
}
