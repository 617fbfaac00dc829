package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const DefaultConfigFile = "promptfan.yaml"

// Environment variables read by Load.
const (
	EnvConfig        = "PROMPTFAN_CONFIG"
	EnvEndpointURL   = "PROMPTFAN_ENDPOINT_URL"
	EnvModelID       = "PROMPTFAN_MODEL_ID"
	EnvAPICredential = "PROMPTFAN_API_CREDENTIAL"
	EnvAgentsFile    = "PROMPTFAN_AGENTS_FILE"
)

// envVarPattern matches ${VAR_NAME} references in string values.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Load resolves the configuration. path wins over $PROMPTFAN_CONFIG, which
// wins over ./promptfan.yaml. Only the implicit default file may be absent.
// Environment overrides are applied last.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		if p := os.Getenv(EnvConfig); p != "" {
			path = p
			explicit = true
		} else {
			path = DefaultConfigFile
		}
	}

	cfg := defaults()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
		expandEnv(&cfg)
		if cfg.AgentsFile != "" && !filepath.IsAbs(cfg.AgentsFile) {
			cfg.AgentsFile = filepath.Join(filepath.Dir(path), cfg.AgentsFile)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
		// No config file; defaults + env.
	default:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadDotEnv loads environment variables from path. Missing files are
// ignored and variables already set are not overridden.
func LoadDotEnv(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvEndpointURL); v != "" {
		cfg.EndpointURL = v
	}
	if v := os.Getenv(EnvModelID); v != "" {
		cfg.ModelID = v
	}
	if v := os.Getenv(EnvAPICredential); v != "" {
		cfg.APICredential = v
	}
	if v := os.Getenv(EnvAgentsFile); v != "" {
		cfg.AgentsFile = v
	}
}

// expandEnv resolves ${VAR} references in the decoded string fields.
// Expanding after parsing keeps values such as credentials from being read
// as YAML syntax.
func expandEnv(cfg *Config) {
	for _, field := range []*string{
		&cfg.EndpointURL,
		&cfg.ModelID,
		&cfg.APICredential,
		&cfg.AgentsFile,
		&cfg.Log.Level,
		&cfg.Log.Format,
		&cfg.Output.Format,
		&cfg.Output.Color,
	} {
		*field = resolveEnvVars(*field)
	}
}

// resolveEnvVars replaces all ${VAR_NAME} patterns in s with the
// corresponding environment variable values. Unset variables resolve to "".
func resolveEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(match[2 : len(match)-1])
	})
}
