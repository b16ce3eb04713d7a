package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration. It is built once by Load and
// passed by value afterwards.
type Config struct {
	RadarrURL     string `mapstructure:"radarr_url"`
	RadarrAPIKey  string `mapstructure:"radarr_api_key"`
	SonarrURL     string `mapstructure:"sonarr_url"`
	SonarrAPIKey  string `mapstructure:"sonarr_api_key"`
	LacalePasskey string `mapstructure:"lacale_passkey"`
	LacaleAPIBase string `mapstructure:"lacale_api_base"`

	Search   SearchConfig   `mapstructure:"search"`
	Matching MatchingConfig `mapstructure:"matching"`
	Planner  PlannerConfig  `mapstructure:"planner"`
	Sources  SourcesConfig  `mapstructure:"sources"`
	Report   ReportConfig   `mapstructure:"report"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// SearchConfig tunes the tracker client and its worker pool.
type SearchConfig struct {
	Workers        int           `mapstructure:"workers"`
	MaxAttempts    int           `mapstructure:"max_attempts"`
	BaseDelay      time.Duration `mapstructure:"base_delay"`
	MaxDelay       time.Duration `mapstructure:"max_delay"`
	Jitter         time.Duration `mapstructure:"jitter"`
	NetworkRetries int           `mapstructure:"network_retries"`
	NetworkDelay   time.Duration `mapstructure:"network_delay"`
	MinInterval    time.Duration `mapstructure:"min_interval"` // spacing between request starts
	Timeout        time.Duration `mapstructure:"timeout"`
}

// MatchingConfig holds the classifier thresholds.
type MatchingConfig struct {
	CloseThreshold     float64 `mapstructure:"close_threshold"`
	DifferentThreshold float64 `mapstructure:"different_threshold"`
	YearTolerance      int     `mapstructure:"year_tolerance"`
}

// PlannerConfig controls which tasks are generated.
type PlannerConfig struct {
	Mode            string `mapstructure:"mode"`
	Limit           int    `mapstructure:"limit"` // <= 0 means unlimited
	YearMin         int    `mapstructure:"year_min"`
	YearMax         int    `mapstructure:"year_max"`
	IncludeSpecials bool   `mapstructure:"include_specials"`
}

// SourcesConfig holds settings shared by the catalog sources.
type SourcesConfig struct {
	SentTag string        `mapstructure:"sent_tag"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// ReportConfig holds display and export settings.
type ReportConfig struct {
	Show        string `mapstructure:"show"`
	Sort        string `mapstructure:"sort"`
	HidePresent bool   `mapstructure:"hide_present"`
	Export      string `mapstructure:"export"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Dir    string `mapstructure:"dir"`
}

// Options controls where Load looks for settings.
type Options struct {
	ConfigPath string         // explicit config file; searched for when empty
	EnvFile    string         // dotenv file; ".env" when empty
	Overrides  map[string]any // viper keys set from the command line
}

// Environment variables recognized for the connection settings.
var envKeys = map[string]string{
	"radarr_url":      "RADARR_URL",
	"radarr_api_key":  "RADARR_API_KEY",
	"sonarr_url":      "SONARR_URL",
	"sonarr_api_key":  "SONARR_API_KEY",
	"lacale_passkey":  "LACALE_PASSKEY",
	"lacale_api_base": "LACALE_API_BASE",
}

// Load reads configuration from the dotenv file, a config file, environment
// variables and command line overrides.
// Priority: overrides > environment variables > config file > defaults
func Load(opts Options) (Config, error) {
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	// existing environment variables win over the dotenv file
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to read env file %s: %w", envFile, err)
	}

	v := viper.New()
	setDefaults(v)

	if opts.ConfigPath != "" {
		v.SetConfigFile(opts.ConfigPath)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "lacale-check"))
		}
	}

	for key, env := range envKeys {
		if err := v.BindEnv(key, env); err != nil {
			return Config{}, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}
	v.SetEnvPrefix("LACALE_CHECK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	for key, val := range opts.Overrides {
		v.Set(key, val)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.LacaleAPIBase == "" {
		cfg.LacaleAPIBase = EmbeddedAPIBase
	}

	return cfg, nil
}

// setDefaults sets default values in viper
func setDefaults(v *viper.Viper) {
	for key := range envKeys {
		v.SetDefault(key, "")
	}

	v.SetDefault("search.workers", 4)
	v.SetDefault("search.max_attempts", 5)
	v.SetDefault("search.base_delay", time.Second)
	v.SetDefault("search.max_delay", 30*time.Second)
	v.SetDefault("search.jitter", 250*time.Millisecond)
	v.SetDefault("search.network_retries", 2)
	v.SetDefault("search.network_delay", time.Second)
	v.SetDefault("search.min_interval", 300*time.Millisecond)
	v.SetDefault("search.timeout", 15*time.Second)

	v.SetDefault("matching.close_threshold", 0.85)
	v.SetDefault("matching.different_threshold", 0.40)
	v.SetDefault("matching.year_tolerance", 1)

	v.SetDefault("planner.mode", "full")
	v.SetDefault("planner.limit", 100)
	v.SetDefault("planner.year_min", 0)
	v.SetDefault("planner.year_max", 0)
	v.SetDefault("planner.include_specials", false)

	v.SetDefault("sources.sent_tag", "lacale")
	v.SetDefault("sources.timeout", 30*time.Second)

	v.SetDefault("report.show", "all")
	v.SetDefault("report.sort", "instant")
	v.SetDefault("report.hide_present", false)
	v.SetDefault("report.export", "")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.dir", "")
}
