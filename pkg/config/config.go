package config

import (
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
	"gopkg.in/yaml.v3"
)

// Config holds configuration for the mock experiment service.
// Values can come from a YAML file (config.yaml) or environment variables;
// environment variables override YAML values.
type Config struct {
	// Domain is used when deriving entity URLs, matching the real service's
	// host so parity tests see identical links.
	Domain string `yaml:"domain" env:"EGTA_DOMAIN" env-default:"egtaonline.eecs.umich.edu"`

	// DefaultEmail is attached to simulators created without a contact.
	DefaultEmail string `yaml:"default_email" env:"EGTA_DEFAULT_EMAIL" env-default:"egta@mailinator.com"`

	// Env selects logger behavior (local = development console output).
	Env string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`

	// PageSize is the number of entries per page in the global simulation
	// listing. The real service pages by 25.
	PageSize int `yaml:"page_size" env:"EGTA_PAGE_SIZE" env-default:"25"`

	// Seed seeds the synthetic payoff generator. Zero means derive the seed
	// from the clock, which is what tests that don't pin payoffs want.
	Seed int64 `yaml:"seed" env:"EGTA_SEED" env-default:"0"`
}

// Load reads configuration from config.yaml if present, then from the
// environment.
func Load() (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat("config.yaml"); err == nil {
		if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
			return nil, fmt.Errorf("failed to read config.yaml: %w", err)
		}
		return cfg, nil
	}

	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment config: %w", err)
	}
	return cfg, nil
}

// Default returns the configuration with every field at its default,
// ignoring config files and the environment. Convenient for tests and
// embedded use.
func Default() *Config {
	return &Config{
		Domain:       "egtaonline.eecs.umich.edu",
		DefaultEmail: "egta@mailinator.com",
		Env:          "local",
		PageSize:     25,
		Seed:         0,
	}
}

// SimSpec is a declarative description of an experiment's players and
// strategy sets, the same shape the service tooling feeds to simulator and
// game setup.
type SimSpec struct {
	// Players maps role to player count.
	Players map[string]int `yaml:"players"`
	// Strategies maps role to its allowed strategies.
	Strategies map[string][]string `yaml:"strategies"`
}

// Size returns the total player count across roles.
func (s *SimSpec) Size() int {
	total := 0
	for _, c := range s.Players {
		total += c
	}
	return total
}

// LoadSimSpec reads a SimSpec from a YAML file.
func LoadSimSpec(path string) (*SimSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sim spec %s: %w", path, err)
	}
	return ParseSimSpec(data)
}

// ParseSimSpec parses a YAML SimSpec document.
func ParseSimSpec(data []byte) (*SimSpec, error) {
	spec := &SimSpec{}
	if err := yaml.Unmarshal(data, spec); err != nil {
		return nil, fmt.Errorf("failed to parse sim spec: %w", err)
	}
	return spec, nil
}
