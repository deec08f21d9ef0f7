package config

import (
	"fmt"
	"time"
)

// Config represents a seam.yaml configuration file.
// All values are optional and act as defaults for seam decode flags.
// CLI flags always override config values.
type Config struct {
	Dir             string       `yaml:"dir"`
	Out             string       `yaml:"out"`
	Journal         string       `yaml:"journal"`
	JournalCompress bool         `yaml:"journal_compress"`
	Quiet           bool         `yaml:"quiet"`
	Sink            SinkConfig   `yaml:"sink"`
	Notify          NotifyConfig `yaml:"notify"`
	Render          RenderConfig `yaml:"render"`
}

// SinkConfig holds output delivery defaults from the config file.
type SinkConfig struct {
	Backend     string `yaml:"backend"`
	Path        string `yaml:"path"`
	Region      string `yaml:"region"`
	Endpoint    string `yaml:"endpoint"`
	S3PathStyle bool   `yaml:"s3_path_style"`
}

// NotifyConfig holds notification adapter defaults from the config file.
type NotifyConfig struct {
	Type    string            `yaml:"type"`
	URL     string            `yaml:"url"`
	Channel string            `yaml:"channel,omitempty"`
	Headers map[string]string `yaml:"headers,omitempty"`
	Timeout Duration          `yaml:"timeout,omitempty"`
	Retries *int              `yaml:"retries,omitempty"`
}

// RenderConfig holds report rendering defaults from the config file.
type RenderConfig struct {
	Format  string `yaml:"format"`
	NoColor bool   `yaml:"no_color"`
}

// Duration wraps time.Duration for YAML string parsing (e.g. "10s", "5m").
type Duration struct {
	time.Duration
}

// UnmarshalYAML parses a duration string like "10s" or "5m30s".
func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = parsed
	return nil
}
