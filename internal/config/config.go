// Package config loads and validates harvester configuration via Viper.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all harvester knobs. Values come from defaults, an
// optional config file, and HARVESTER_* environment variables, in
// ascending precedence; CLI flags override on top.
type Config struct {
	// BaseURL is the portal root, e.g. https://dagsordener.aarhus.dk.
	BaseURL string `mapstructure:"base_url"`
	// OutRoot is the output root for meeting directories.
	OutRoot string `mapstructure:"out_root"`
	// RPS throttles artifact downloads.
	RPS       float64 `mapstructure:"rps"`
	WithAudio bool    `mapstructure:"with_audio"`
	// Headful shows the browser window; useful when selectors drift.
	Headful        bool          `mapstructure:"headful"`
	UserAgent      string        `mapstructure:"user_agent"`
	NavTimeoutSecs int           `mapstructure:"nav_timeout_seconds"`
	Logging        LoggingConfig `mapstructure:"logging"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("HARVESTER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("base_url", "https://dagsordener.aarhus.dk")
	v.SetDefault("out_root", "data/raw/meetings")
	v.SetDefault("rps", 1.5)
	v.SetDefault("with_audio", true)
	v.SetDefault("headful", false)
	v.SetDefault("user_agent", "dagsorden-harvester/0.1 (+https://aarhus.dk)")
	v.SetDefault("nav_timeout_seconds", 45)
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if strings.TrimSpace(c.BaseURL) == "" {
		return fmt.Errorf("base_url is required")
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("base_url must be an absolute URL, got %q", c.BaseURL)
	}
	if strings.TrimSpace(c.OutRoot) == "" {
		return fmt.Errorf("out_root is required")
	}
	if c.RPS <= 0 {
		return fmt.Errorf("rps must be > 0")
	}
	if c.NavTimeoutSecs <= 0 {
		return fmt.Errorf("nav_timeout_seconds must be > 0")
	}
	return nil
}

// NavTimeout converts the navigation timeout into a duration.
func (c Config) NavTimeout() time.Duration {
	return time.Duration(c.NavTimeoutSecs) * time.Second
}
