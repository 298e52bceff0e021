// internal/config/types.go
package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so config files can say "2s" or "500ms"; plain
// integers are taken as nanoseconds the way the stdlib would.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	if value.Tag == "!!int" {
		var n int64
		if err := value.Decode(&n); err != nil {
			return fmt.Errorf("invalid duration value %q", value.Value)
		}
		*d = Duration(n)
		return nil
	}
	var raw string
	if err := value.Decode(&raw); err != nil {
		return fmt.Errorf("invalid duration value %q", value.Value)
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) String() string { return time.Duration(d).String() }

// Std returns the wrapped stdlib duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config is the full process configuration, loaded from a YAML file with
// environment-variable substitution.
type Config struct {
	// Teams are the monitored team names; spellings are canonicalized on load.
	Teams []string `yaml:"teams"`

	// Timezone is the fixed local zone every fixture datetime is expressed in.
	Timezone string `yaml:"timezone"`

	// DaysBack/DaysForward define the search window around the current date.
	DaysBack    int `yaml:"days_back"`
	DaysForward int `yaml:"days_forward"`

	// Pause is the delay between network-bound team iterations, respecting
	// upstream rate limits.
	Pause Duration `yaml:"pause"`

	LogLevel string `yaml:"log_level"`
	DryRun   bool   `yaml:"dry_run"`

	HTTP    HTTPConfig        `yaml:"http"`
	Aliases map[string]string `yaml:"aliases"`
	Venues  []string          `yaml:"venues"`
	Sources SourcesConfig     `yaml:"sources"`
	Sink    SinkConfig        `yaml:"sink"`
	Output  OutputConfig      `yaml:"output"`
	Metrics MetricsConfig     `yaml:"metrics"`
}

// HTTPConfig is the shared fetch policy.
type HTTPConfig struct {
	Timeout       Duration `yaml:"timeout"`
	RetryAttempts int      `yaml:"retry_attempts"`
	RetryDelay    Duration `yaml:"retry_delay"`
	RateLimit     float64  `yaml:"rate_limit"`
	RateBurst     int      `yaml:"rate_burst"`
	UserAgent     string   `yaml:"user_agent"`
}

// SourcesConfig enables and parameterizes the fixture sources.
type SourcesConfig struct {
	Scoreboard *ScoreboardConfig `yaml:"scoreboard"`
	TeamPages  *TeamPagesConfig  `yaml:"team_pages"`
	EventsAPI  *EventsAPIConfig  `yaml:"events_api"`
}

// ScoreboardConfig describes a competition page scraped once per run.
type ScoreboardConfig struct {
	URL         string `yaml:"url"`
	Competition string `yaml:"competition"`
}

// TeamPagesConfig describes per-team fixtures pages.
type TeamPagesConfig struct {
	// Pages maps canonical team name to its fixtures page URL.
	Pages       map[string]string `yaml:"pages"`
	Competition string            `yaml:"competition"`
	// Render fetches pages through headless Chrome; needed when the fixture
	// list is built client-side.
	Render bool `yaml:"render"`
}

// EventsAPIConfig describes a JSON sports-data API.
type EventsAPIConfig struct {
	BaseURL string `yaml:"base_url"`
	// TeamIDs maps canonical team name to the API's team identifier. Teams
	// absent here are resolved through the API's search endpoint.
	TeamIDs     map[string]int    `yaml:"team_ids"`
	Competition string            `yaml:"competition"`
	Headers     map[string]string `yaml:"headers"`
}

// SinkConfig is the downstream ingestion endpoint.
type SinkConfig struct {
	URL     string   `yaml:"url"`
	Token   string   `yaml:"token"`
	Source  string   `yaml:"source"`
	Timeout Duration `yaml:"timeout"`
}

// OutputConfig configures the dry-run export of the deduplicated set.
type OutputConfig struct {
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled       bool   `yaml:"enabled"`
	ListenAddress string `yaml:"listen_address"`
}

// Validate checks the configuration for fatal inconsistencies.
func (c *Config) Validate() error {
	if len(c.Teams) == 0 {
		return fmt.Errorf("at least one team must be configured")
	}
	if c.DaysBack < 0 || c.DaysForward < 0 {
		return fmt.Errorf("days_back and days_forward must be non-negative")
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	if c.Sources.Scoreboard == nil && c.Sources.TeamPages == nil && c.Sources.EventsAPI == nil {
		return fmt.Errorf("at least one source must be configured")
	}
	if c.Sources.Scoreboard != nil && c.Sources.Scoreboard.URL == "" {
		return fmt.Errorf("sources.scoreboard.url is required")
	}
	if c.Sources.TeamPages != nil && len(c.Sources.TeamPages.Pages) == 0 {
		return fmt.Errorf("sources.team_pages.pages is required")
	}
	if c.Sources.EventsAPI != nil && c.Sources.EventsAPI.BaseURL == "" {
		return fmt.Errorf("sources.events_api.base_url is required")
	}
	if !c.DryRun {
		if c.Sink.URL == "" {
			return fmt.Errorf("sink.url is required unless dry_run is set")
		}
		if c.Sink.Token == "" {
			return fmt.Errorf("sink.token is required unless dry_run is set")
		}
	}
	if c.Output.Format != "" {
		switch c.Output.Format {
		case "json", "csv", "excel":
		default:
			return fmt.Errorf("unsupported output format %q", c.Output.Format)
		}
	}
	return nil
}

// Location returns the configured timezone. Validate must have passed.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// WindowBounds computes the search window around now.
func (c *Config) WindowBounds(now time.Time) (from, to time.Time) {
	from = now.AddDate(0, 0, -c.DaysBack)
	to = now.AddDate(0, 0, c.DaysForward)
	return from, to
}
