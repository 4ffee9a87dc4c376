// Package config provides configuration management using Viper.
// It loads configuration from environment variables, .env files, and config files.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	defaultServerPort                = 8080
	defaultServerHost                = "0.0.0.0"
	defaultReadTimeout               = 30 * time.Second
	defaultWriteTimeout              = 30 * time.Second
	defaultDatabasePath              = "./data/glance.db"
	defaultDatabaseConnectionTimeout = 5 * time.Second
	defaultLogLevel                  = "info"
	defaultLogPretty                 = false
	defaultStoryTTL                  = 24 * time.Hour
	defaultImageDuration             = 5 * time.Second
	defaultMaxVideoDuration          = 30 * time.Second
	defaultTickInterval              = 50 * time.Millisecond
	defaultToggleDebounce            = 300 * time.Millisecond
	defaultSwipeThreshold            = 50.0
	defaultSessionIdleTimeout        = 5 * time.Minute
	defaultSessionCleanupInterval    = 30 * time.Second
	envPrefix                        = "GLANCE"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Logging  LoggingConfig
	Stories  StoriesConfig
	Playback PlaybackConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port         int
	Host         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	Path              string
	ConnectionTimeout time.Duration
	MigrationsPath    string
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Pretty bool
}

// StoriesConfig holds story lifecycle configuration
type StoriesConfig struct {
	// TTL is how long a story remains visible after creation.
	TTL time.Duration
	// SupportedImageFormats and SupportedVideoFormats bound what media
	// URLs are accepted when posting a story.
	SupportedImageFormats []string
	SupportedVideoFormats []string
}

// PlaybackConfig holds playback engine configuration
type PlaybackConfig struct {
	// ImageDuration is the fixed display duration for image stories.
	ImageDuration time.Duration
	// MaxVideoDuration caps the playback duration of video stories.
	MaxVideoDuration time.Duration
	// TickInterval is the progress clock poll interval.
	TickInterval time.Duration
	// ToggleDebounce is the minimum gap between accepted pause toggles.
	ToggleDebounce time.Duration
	// SwipeThreshold is the net vertical displacement required to
	// recognize a swipe gesture.
	SwipeThreshold float64
	// InitialMuted is the starting mute preference for new player sessions.
	InitialMuted bool
	// SessionIdleTimeout is how long a player session may sit untouched
	// before the cleanup loop closes it.
	SessionIdleTimeout time.Duration
	// SessionCleanupInterval is how often idle sessions are swept.
	SessionCleanupInterval time.Duration
}

// Load reads configuration from .env file, config files, environment variables, and defaults
func Load() (*Config, error) {
	// .env files are optional in production and CI where env vars are set directly
	_ = godotenv.Load() // nolint:errcheck // .env file is optional

	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/glance")

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults configures default values for all configuration options
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", defaultServerPort)
	v.SetDefault("server.host", defaultServerHost)
	v.SetDefault("server.readtimeout", defaultReadTimeout)
	v.SetDefault("server.writetimeout", defaultWriteTimeout)

	// Database defaults
	v.SetDefault("database.path", defaultDatabasePath)
	v.SetDefault("database.connectiontimeout", defaultDatabaseConnectionTimeout)
	v.SetDefault("database.migrationspath", "file://./migrations")

	// Logging defaults
	v.SetDefault("logging.level", defaultLogLevel)
	v.SetDefault("logging.pretty", defaultLogPretty)

	// Story defaults
	v.SetDefault("stories.ttl", defaultStoryTTL)
	v.SetDefault("stories.supportedimageformats", []string{"jpg", "jpeg", "png", "gif", "webp"})
	v.SetDefault("stories.supportedvideoformats", []string{"mp4", "webm", "mov"})

	// Playback defaults
	v.SetDefault("playback.imageduration", defaultImageDuration)
	v.SetDefault("playback.maxvideoduration", defaultMaxVideoDuration)
	v.SetDefault("playback.tickinterval", defaultTickInterval)
	v.SetDefault("playback.toggledebounce", defaultToggleDebounce)
	v.SetDefault("playback.swipethreshold", defaultSwipeThreshold)
	v.SetDefault("playback.initialmuted", false)
	v.SetDefault("playback.sessionidletimeout", defaultSessionIdleTimeout)
	v.SetDefault("playback.sessioncleanupinterval", defaultSessionCleanupInterval)
}

// Validate checks that configuration values are valid
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be between 1 and 65535)", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("invalid read timeout: %v (must be > 0)", c.Server.ReadTimeout)
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("invalid write timeout: %v (must be > 0)", c.Server.WriteTimeout)
	}
	if c.Database.ConnectionTimeout <= 0 {
		return fmt.Errorf("invalid database connection timeout: %v (must be > 0)", c.Database.ConnectionTimeout)
	}

	validLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLevels, c.Logging.Level) {
		return fmt.Errorf("invalid log level: %s (must be one of: %s)", c.Logging.Level, strings.Join(validLevels, ", "))
	}

	if c.Stories.TTL <= 0 {
		return fmt.Errorf("invalid story ttl: %v (must be > 0)", c.Stories.TTL)
	}

	if err := c.Playback.Validate(); err != nil {
		return err
	}

	return nil
}

// Validate checks that playback configuration values are valid
func (c *PlaybackConfig) Validate() error {
	if c.ImageDuration <= 0 {
		return fmt.Errorf("invalid image duration: %v (must be > 0)", c.ImageDuration)
	}
	if c.MaxVideoDuration < c.ImageDuration {
		return fmt.Errorf("invalid max video duration: %v (must be >= image duration %v)", c.MaxVideoDuration, c.ImageDuration)
	}
	if c.TickInterval <= 0 {
		return fmt.Errorf("invalid tick interval: %v (must be > 0)", c.TickInterval)
	}
	if c.ToggleDebounce < 0 {
		return fmt.Errorf("invalid toggle debounce: %v (must be >= 0)", c.ToggleDebounce)
	}
	if c.SwipeThreshold <= 0 {
		return fmt.Errorf("invalid swipe threshold: %v (must be > 0)", c.SwipeThreshold)
	}
	if c.SessionIdleTimeout <= 0 {
		return fmt.Errorf("invalid session idle timeout: %v (must be > 0)", c.SessionIdleTimeout)
	}
	if c.SessionCleanupInterval <= 0 {
		return fmt.Errorf("invalid session cleanup interval: %v (must be > 0)", c.SessionCleanupInterval)
	}
	return nil
}

// contains checks if a string slice contains a specific value
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
