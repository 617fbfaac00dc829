// Package config loads promptfan settings from a YAML file, the process
// environment, and an optional .env file.
package config

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	DefaultEndpointURL = "https://api.gmi-serving.com/v1/chat/completions"
	DefaultModelID     = "Qwen/Qwen3-235B-A22B-FP8"
	DefaultMaxTokens   = 500
)

// Config is the resolved runtime configuration.
type Config struct {
	EndpointURL   string       `yaml:"endpoint_url"`
	ModelID       string       `yaml:"model_id"`
	APICredential string       `yaml:"api_credential"`
	MaxTokens     int          `yaml:"max_tokens"`
	Concurrency   int          `yaml:"concurrency"` // 0 = one goroutine per agent, uncapped
	AgentsFile    string       `yaml:"agents_file"`
	Log           LogConfig    `yaml:"log"`
	Output        OutputConfig `yaml:"output"`
}

type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

type OutputConfig struct {
	Format string `yaml:"format"` // text, json
	Color  string `yaml:"color"`  // auto, always, never
}

func defaults() Config {
	return Config{
		EndpointURL: DefaultEndpointURL,
		ModelID:     DefaultModelID,
		MaxTokens:   DefaultMaxTokens,
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Output: OutputConfig{
			Format: "text",
			Color:  "auto",
		},
	}
}

// Validate checks everything except the credential, which is only needed
// when requests are actually sent.
func (c *Config) Validate() error {
	var errs []string

	if c.EndpointURL == "" {
		errs = append(errs, "endpoint_url is required")
	} else if u, err := url.Parse(c.EndpointURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Sprintf("endpoint_url %q must be an absolute http(s) URL", c.EndpointURL))
	}
	if c.ModelID == "" {
		errs = append(errs, "model_id is required")
	}
	if c.MaxTokens < 0 {
		errs = append(errs, "max_tokens cannot be negative")
	}
	if c.Concurrency < 0 {
		errs = append(errs, "concurrency cannot be negative")
	}

	if !oneOf(c.Log.Level, "debug", "info", "warn", "error") {
		errs = append(errs, fmt.Sprintf("log.level %q is not one of debug, info, warn, error", c.Log.Level))
	}
	if !oneOf(c.Log.Format, "text", "json") {
		errs = append(errs, fmt.Sprintf("log.format %q is not one of text, json", c.Log.Format))
	}
	if !oneOf(c.Output.Format, "text", "json") {
		errs = append(errs, fmt.Sprintf("output.format %q is not one of text, json", c.Output.Format))
	}
	if !oneOf(c.Output.Color, "auto", "always", "never") {
		errs = append(errs, fmt.Sprintf("output.color %q is not one of auto, always, never", c.Output.Color))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// RequireCredential fails when no API credential is configured.
func (c *Config) RequireCredential() error {
	if strings.TrimSpace(c.APICredential) == "" {
		return fmt.Errorf("missing required fields:\n  - api_credential (set it in the config file or %s)", EnvAPICredential)
	}
	return nil
}

func oneOf(v string, allowed ...string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}
