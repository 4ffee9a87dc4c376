package config

import (
	"testing"
	"time"
)

func TestConfigDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	// Server defaults
	if cfg.Server.Port != defaultServerPort {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, defaultServerPort)
	}
	if cfg.Server.Host != defaultServerHost {
		t.Errorf("Server.Host = %s, want %s", cfg.Server.Host, defaultServerHost)
	}

	// Database defaults
	if cfg.Database.Path != defaultDatabasePath {
		t.Errorf("Database.Path = %s, want %s", cfg.Database.Path, defaultDatabasePath)
	}

	// Logging defaults
	if cfg.Logging.Level != defaultLogLevel {
		t.Errorf("Logging.Level = %s, want %s", cfg.Logging.Level, defaultLogLevel)
	}
	if cfg.Logging.Pretty != defaultLogPretty {
		t.Errorf("Logging.Pretty = %v, want %v", cfg.Logging.Pretty, defaultLogPretty)
	}

	// Story defaults
	if cfg.Stories.TTL != defaultStoryTTL {
		t.Errorf("Stories.TTL = %v, want %v", cfg.Stories.TTL, defaultStoryTTL)
	}
	if len(cfg.Stories.SupportedImageFormats) == 0 {
		t.Error("Stories.SupportedImageFormats is empty")
	}
	if len(cfg.Stories.SupportedVideoFormats) == 0 {
		t.Error("Stories.SupportedVideoFormats is empty")
	}

	// Playback defaults
	if cfg.Playback.ImageDuration != defaultImageDuration {
		t.Errorf("Playback.ImageDuration = %v, want %v", cfg.Playback.ImageDuration, defaultImageDuration)
	}
	if cfg.Playback.MaxVideoDuration != defaultMaxVideoDuration {
		t.Errorf("Playback.MaxVideoDuration = %v, want %v", cfg.Playback.MaxVideoDuration, defaultMaxVideoDuration)
	}
	if cfg.Playback.TickInterval != defaultTickInterval {
		t.Errorf("Playback.TickInterval = %v, want %v", cfg.Playback.TickInterval, defaultTickInterval)
	}
	if cfg.Playback.ToggleDebounce != defaultToggleDebounce {
		t.Errorf("Playback.ToggleDebounce = %v, want %v", cfg.Playback.ToggleDebounce, defaultToggleDebounce)
	}
	if cfg.Playback.SwipeThreshold != defaultSwipeThreshold {
		t.Errorf("Playback.SwipeThreshold = %v, want %v", cfg.Playback.SwipeThreshold, defaultSwipeThreshold)
	}
	if cfg.Playback.InitialMuted {
		t.Error("Playback.InitialMuted = true, want false")
	}
	if cfg.Playback.SessionIdleTimeout != defaultSessionIdleTimeout {
		t.Errorf("Playback.SessionIdleTimeout = %v, want %v", cfg.Playback.SessionIdleTimeout, defaultSessionIdleTimeout)
	}
	if cfg.Playback.SessionCleanupInterval != defaultSessionCleanupInterval {
		t.Errorf("Playback.SessionCleanupInterval = %v, want %v", cfg.Playback.SessionCleanupInterval, defaultSessionCleanupInterval)
	}
}

func TestConfigEnvOverride(t *testing.T) {
	t.Setenv("GLANCE_SERVER_PORT", "9090")
	t.Setenv("GLANCE_LOGGING_LEVEL", "debug")
	t.Setenv("GLANCE_STORIES_TTL", "12h")
	t.Setenv("GLANCE_PLAYBACK_IMAGEDURATION", "7s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %s, want debug", cfg.Logging.Level)
	}
	if cfg.Stories.TTL != 12*time.Hour {
		t.Errorf("Stories.TTL = %v, want 12h", cfg.Stories.TTL)
	}
	if cfg.Playback.ImageDuration != 7*time.Second {
		t.Errorf("Playback.ImageDuration = %v, want 7s", cfg.Playback.ImageDuration)
	}
}

func validTestConfig() Config {
	return Config{
		Server: ServerConfig{
			Port:         8080,
			Host:         "0.0.0.0",
			ReadTimeout:  defaultReadTimeout,
			WriteTimeout: defaultWriteTimeout,
		},
		Database: DatabaseConfig{
			Path:              "./data/glance.db",
			ConnectionTimeout: defaultDatabaseConnectionTimeout,
			MigrationsPath:    "file://./migrations",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Stories: StoriesConfig{
			TTL:                   defaultStoryTTL,
			SupportedImageFormats: []string{"jpg"},
			SupportedVideoFormats: []string{"mp4"},
		},
		Playback: PlaybackConfig{
			ImageDuration:          defaultImageDuration,
			MaxVideoDuration:       defaultMaxVideoDuration,
			TickInterval:           defaultTickInterval,
			ToggleDebounce:         defaultToggleDebounce,
			SwipeThreshold:         defaultSwipeThreshold,
			SessionIdleTimeout:     defaultSessionIdleTimeout,
			SessionCleanupInterval: defaultSessionCleanupInterval,
		},
	}
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid config", func(c *Config) {}, false},
		{"invalid server port (too low)", func(c *Config) { c.Server.Port = 0 }, true},
		{"invalid server port (too high)", func(c *Config) { c.Server.Port = 70000 }, true},
		{"invalid read timeout", func(c *Config) { c.Server.ReadTimeout = 0 }, true},
		{"invalid log level", func(c *Config) { c.Logging.Level = "verbose" }, true},
		{"invalid story ttl", func(c *Config) { c.Stories.TTL = 0 }, true},
		{"invalid image duration", func(c *Config) { c.Playback.ImageDuration = 0 }, true},
		{"max video shorter than image duration", func(c *Config) { c.Playback.MaxVideoDuration = time.Second }, true},
		{"invalid tick interval", func(c *Config) { c.Playback.TickInterval = 0 }, true},
		{"negative toggle debounce", func(c *Config) { c.Playback.ToggleDebounce = -time.Second }, true},
		{"zero toggle debounce is allowed", func(c *Config) { c.Playback.ToggleDebounce = 0 }, false},
		{"invalid swipe threshold", func(c *Config) { c.Playback.SwipeThreshold = 0 }, true},
		{"invalid session idle timeout", func(c *Config) { c.Playback.SessionIdleTimeout = 0 }, true},
		{"invalid cleanup interval", func(c *Config) { c.Playback.SessionCleanupInterval = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validTestConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
