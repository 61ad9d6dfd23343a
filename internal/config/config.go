package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	API       APIConfig       `yaml:"api"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	State     StateConfig     `yaml:"state"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
}

type APIConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

type CatalogConfig struct {
	PerPage        int           `yaml:"per_page"`
	LimitExt       int           `yaml:"limit_ext"`
	SearchDebounce time.Duration `yaml:"search_debounce"`
	Placeholder    string        `yaml:"placeholder"`
}

// StateConfig points at local state. An empty Dir disables the promotion
// ledger.
type StateConfig struct {
	Dir string `yaml:"dir"`
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL: "http://localhost:5000",
			Timeout: 30 * time.Second,
		},
		Catalog: CatalogConfig{
			PerPage:        24,
			LimitExt:       200,
			SearchDebounce: 250 * time.Millisecond,
			Placeholder:    "assets/img/main/placeholder.png",
		},
		Tailscale: TailscaleConfig{
			Hostname: "treino",
		},
	}
}

// Load reads config from a YAML file over the defaults, then applies
// environment variable overrides. An empty path skips the file. Env vars use
// the prefix TREINO_:
//
//	TREINO_API_BASE_URL, TREINO_API_TIMEOUT,
//	TREINO_CATALOG_PER_PAGE, TREINO_CATALOG_LIMIT_EXT,
//	TREINO_CATALOG_SEARCH_DEBOUNCE, TREINO_CATALOG_PLACEHOLDER,
//	TREINO_STATE_DIR,
//	TREINO_TAILSCALE_ENABLED, TREINO_TAILSCALE_HOSTNAME, TREINO_TAILSCALE_STATE_DIR
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("TREINO_API_BASE_URL"); v != "" {
		cfg.API.BaseURL = v
	}
	if v := os.Getenv("TREINO_API_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.API.Timeout = d
		}
	}
	if v := os.Getenv("TREINO_CATALOG_PER_PAGE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Catalog.PerPage = n
		}
	}
	if v := os.Getenv("TREINO_CATALOG_LIMIT_EXT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Catalog.LimitExt = n
		}
	}
	if v := os.Getenv("TREINO_CATALOG_SEARCH_DEBOUNCE"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Catalog.SearchDebounce = d
		}
	}
	if v := os.Getenv("TREINO_CATALOG_PLACEHOLDER"); v != "" {
		cfg.Catalog.Placeholder = v
	}
	if v := os.Getenv("TREINO_STATE_DIR"); v != "" {
		cfg.State.Dir = v
	}
	if v := os.Getenv("TREINO_TAILSCALE_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Tailscale.Enabled = b
		}
	}
	if v := os.Getenv("TREINO_TAILSCALE_HOSTNAME"); v != "" {
		cfg.Tailscale.Hostname = v
	}
	if v := os.Getenv("TREINO_TAILSCALE_STATE_DIR"); v != "" {
		cfg.Tailscale.StateDir = v
	}
}

func (c *Config) validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is required")
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be positive")
	}
	if c.Catalog.PerPage <= 0 {
		return fmt.Errorf("catalog.per_page must be positive")
	}
	if c.Catalog.LimitExt <= 0 {
		return fmt.Errorf("catalog.limit_ext must be positive")
	}
	if c.Catalog.SearchDebounce < 0 {
		return fmt.Errorf("catalog.search_debounce must not be negative")
	}
	if c.Tailscale.Enabled && c.Tailscale.Hostname == "" {
		return fmt.Errorf("tailscale.hostname is required when tailscale is enabled")
	}
	return nil
}
