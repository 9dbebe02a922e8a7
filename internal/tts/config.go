package tts

import (
	"fmt"
	"time"
)

// Config contains all synthesis and playback settings.
type Config struct {
	// Default request settings, overridden by CLI flags or UI selection
	Engine   string  `yaml:"engine"`
	Language string  `yaml:"language"`
	Speed    float64 `yaml:"speed"`

	Cloud  CloudConfig  `yaml:"cloud"`
	Local  LocalConfig  `yaml:"local"`
	Cache  CacheConfig  `yaml:"cache"`
	Player PlayerConfig `yaml:"player"`
}

// CloudConfig contains settings for the online Google Translate TTS backend.
type CloudConfig struct {
	Enabled bool   `yaml:"enabled"`
	BaseURL string `yaml:"base_url"`
	// Slow asks the provider for slower speech; unrelated to the speed multiplier.
	Slow              bool          `yaml:"slow"`
	Timeout           time.Duration `yaml:"timeout"`
	RequestsPerMinute int           `yaml:"requests_per_minute"`
}

// LocalConfig contains settings for the offline espeak backend.
type LocalConfig struct {
	// Binary overrides the espeak-ng/espeak lookup.
	Binary string `yaml:"binary"`
	// Rate is the engine's base words-per-minute rate.
	Rate    int           `yaml:"rate"`
	Voice   string        `yaml:"voice"`
	Timeout time.Duration `yaml:"timeout"`
}

// CacheConfig controls the on-disk cache of cloud audio.
type CacheConfig struct {
	Enabled bool   `yaml:"enabled"`
	Dir     string `yaml:"dir"`
	// MaxSize is the cache budget in bytes.
	MaxSize int64 `yaml:"max_size"`
}

// PlayerConfig names the external programs used for playback.
type PlayerConfig struct {
	// SpeedCapable is the player preferred above all others.
	SpeedCapable string `yaml:"speed_capable"`
	// Fallbacks are probed in order on platforms without a native player.
	Fallbacks []string `yaml:"fallbacks"`
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	return Config{
		Engine:   EngineLocal.String(),
		Language: DefaultLanguage,
		Speed:    DefaultSpeed,
		Cloud:    DefaultCloudConfig(),
		Local:    DefaultLocalConfig(),
		Cache: CacheConfig{
			Enabled: true,
			MaxSize: 100 * 1024 * 1024,
		},
		Player: DefaultPlayerConfig(),
	}
}

// DefaultCloudConfig returns the default cloud backend configuration.
func DefaultCloudConfig() CloudConfig {
	return CloudConfig{
		Enabled:           true,
		BaseURL:           "https://translate.google.com",
		Timeout:           30 * time.Second,
		RequestsPerMinute: 50,
	}
}

// DefaultLocalConfig returns the default local backend configuration.
func DefaultLocalConfig() LocalConfig {
	return LocalConfig{
		Rate:    200,
		Timeout: 2 * time.Minute,
	}
}

// DefaultPlayerConfig returns the default player names.
func DefaultPlayerConfig() PlayerConfig {
	return PlayerConfig{
		SpeedCapable: "mpv",
		Fallbacks:    []string{"mpg123", "aplay", "paplay", "xdg-open"},
	}
}

// Validate checks the configuration for values no backend can work with.
func (c *Config) Validate() error {
	if _, err := ParseEngineKind(c.Engine); err != nil {
		return err
	}
	if _, err := NormalizeLanguage(c.Language); err != nil {
		return err
	}
	if _, err := NormalizeSpeed(c.Speed); err != nil {
		return err
	}
	if c.Cloud.RequestsPerMinute < 0 {
		return fmt.Errorf("cloud requests_per_minute must not be negative, got %d", c.Cloud.RequestsPerMinute)
	}
	if c.Local.Rate < 0 {
		return fmt.Errorf("local rate must not be negative, got %d", c.Local.Rate)
	}
	if c.Cache.MaxSize < 0 {
		return fmt.Errorf("cache max_size must not be negative, got %d", c.Cache.MaxSize)
	}
	return nil
}
