// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadFromFile loads configuration from a YAML file.
func LoadFromFile(filename string) (*Config, error) {
	if filename == "" {
		return nil, fmt.Errorf("configuration filename cannot be empty")
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file: %w", err)
	}

	return LoadFromBytes(data)
}

// LoadFromBytes loads configuration from YAML bytes. Environment variables in
// the form ${VAR} are substituted before parsing, so secrets like the sink
// token can stay out of the file.
func LoadFromBytes(data []byte) (*Config, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("configuration data cannot be empty")
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML configuration: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// applyDefaults fills unset fields with the values the original deployment
// ran with.
func applyDefaults(cfg *Config) {
	if len(cfg.Teams) == 0 {
		cfg.Teams = []string{"Cruzeiro", "Atletico-MG", "America-MG"}
	}
	if cfg.Timezone == "" {
		cfg.Timezone = "America/Sao_Paulo"
	}
	if cfg.DaysBack == 0 {
		cfg.DaysBack = 7
	}
	if cfg.DaysForward == 0 {
		cfg.DaysForward = 180
	}
	if cfg.Pause == 0 {
		cfg.Pause = Duration(2 * time.Second)
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	if cfg.HTTP.Timeout == 0 {
		cfg.HTTP.Timeout = Duration(20 * time.Second)
	}
	if cfg.HTTP.RetryAttempts == 0 {
		cfg.HTTP.RetryAttempts = 3
	}
	if cfg.HTTP.RetryDelay == 0 {
		cfg.HTTP.RetryDelay = Duration(time.Second)
	}
	if cfg.HTTP.RateLimit == 0 {
		cfg.HTTP.RateLimit = 1.0
	}
	if cfg.HTTP.RateBurst == 0 {
		cfg.HTTP.RateBurst = 1
	}

	if len(cfg.Aliases) == 0 {
		cfg.Aliases = DefaultAliases()
	}
	if cfg.Sink.Timeout == 0 {
		cfg.Sink.Timeout = Duration(45 * time.Second)
	}
	if cfg.Output.Format == "" {
		cfg.Output.Format = "json"
	}
	if cfg.Metrics.ListenAddress == "" {
		cfg.Metrics.ListenAddress = ":9090"
	}
}

// DefaultAliases is the alias table for the monitored Minas Gerais clubs:
// every spelling, abbreviation, and nickname the supported sources have been
// seen using.
func DefaultAliases() map[string]string {
	return map[string]string{
		"cruzeiro":                "Cruzeiro",
		"cruzeiro ec":             "Cruzeiro",
		"cruzeiro esporte clube":  "Cruzeiro",
		"atletico-mg":             "Atletico-MG",
		"atlético-mg":             "Atletico-MG",
		"atletico mineiro":        "Atletico-MG",
		"atlético mineiro":        "Atletico-MG",
		"atletico":                "Atletico-MG",
		"atlético":                "Atletico-MG",
		"galo":                    "Atletico-MG",
		"america-mg":              "America-MG",
		"américa-mg":              "America-MG",
		"america mineiro":         "America-MG",
		"américa mineiro":         "America-MG",
		"america":                 "America-MG",
		"américa":                 "America-MG",
		"coelho":                  "America-MG",
	}
}
