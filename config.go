package tursokv

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v2"
)

// Options configures a Turso driver.
type Options struct {
	// Base prefixes every key as "base:key". Empty disables namespacing.
	Base string `yaml:"base,omitempty"`

	// Table names the storage table. Defaults to DefaultTable.
	Table string `yaml:"table,omitempty"`

	// URL and AuthToken locate the database. When empty, TURSO_DATABASE_URL
	// and TURSO_AUTH_TOKEN are used.
	URL       string `yaml:"url,omitempty"`
	AuthToken string `yaml:"auth_token,omitempty"`

	// Extra holds backend specific connection parameters.
	Extra map[string]string `yaml:"extra,omitempty"`

	// Version is reserved for compatibility breaks. Only "1" is known.
	Version string `yaml:"version,omitempty"`

	ClientFactory ClientFactory `yaml:"-"`
	Logger        Logger        `yaml:"-"`
}

// DriverVersion is the only Options.Version accepted.
const DriverVersion = "1"

type envConfig struct {
	URL       string `env:"TURSO_DATABASE_URL"`
	AuthToken string `env:"TURSO_AUTH_TOKEN"`
}

func parseEnv() (envConfig, error) {
	var cfg envConfig
	if err := env.Parse(&cfg); err != nil {
		return envConfig{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// clientConfig resolves connection parameters, falling back to the
// environment for anything not set explicitly.
func (o Options) clientConfig() (ClientConfig, error) {
	fallback, err := parseEnv()
	if err != nil {
		return ClientConfig{}, err
	}

	cfg := ClientConfig{URL: o.URL, AuthToken: o.AuthToken, Extra: o.Extra}
	if cfg.URL == "" {
		cfg.URL = fallback.URL
	}
	if cfg.AuthToken == "" {
		cfg.AuthToken = fallback.AuthToken
	}
	if cfg.URL == "" {
		return ClientConfig{}, &RequiredOptionError{Driver: tursoDriverName, Option: "url"}
	}
	return cfg, nil
}

// LoadOptionsFile reads Options from a YAML file.
func LoadOptionsFile(path string) (Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Options{}, fmt.Errorf("read options: %w", err)
	}

	var opts Options
	if err := yaml.UnmarshalStrict(data, &opts); err != nil {
		return Options{}, fmt.Errorf("parse options %s: %w", path, err)
	}
	return opts, nil
}
