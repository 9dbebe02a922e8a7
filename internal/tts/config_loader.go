package tts

import (
	"fmt"
	"time"

	"github.com/dgnsrekt/utts/utils"
	"github.com/dustin/go-humanize"
	"github.com/spf13/viper"
)

// LoadConfigFromViper loads the configuration from the global Viper instance.
func LoadConfigFromViper() (Config, error) {
	return LoadConfig(viper.GetViper())
}

// LoadConfig loads the configuration from v, keeping defaults for unset keys.
func LoadConfig(v *viper.Viper) (Config, error) {
	cfg := DefaultConfig()

	if v.IsSet("engine") {
		cfg.Engine = v.GetString("engine")
	}
	if v.IsSet("language") {
		cfg.Language = v.GetString("language")
	}
	if v.IsSet("speed") {
		cfg.Speed = v.GetFloat64("speed")
	}

	// Cloud settings
	if v.IsSet("cloud.enabled") {
		cfg.Cloud.Enabled = v.GetBool("cloud.enabled")
	}
	if v.IsSet("cloud.base_url") {
		cfg.Cloud.BaseURL = v.GetString("cloud.base_url")
	}
	if v.IsSet("cloud.slow") {
		cfg.Cloud.Slow = v.GetBool("cloud.slow")
	}
	if v.IsSet("cloud.timeout") {
		d, err := parseDuration(v.GetString("cloud.timeout"))
		if err != nil {
			return cfg, fmt.Errorf("cloud.timeout: %w", err)
		}
		cfg.Cloud.Timeout = d
	}
	if v.IsSet("cloud.requests_per_minute") {
		cfg.Cloud.RequestsPerMinute = v.GetInt("cloud.requests_per_minute")
	}

	// Local settings
	if v.IsSet("local.binary") {
		cfg.Local.Binary = utils.ExpandPath(v.GetString("local.binary"))
	}
	if v.IsSet("local.rate") {
		cfg.Local.Rate = v.GetInt("local.rate")
	}
	if v.IsSet("local.voice") {
		cfg.Local.Voice = v.GetString("local.voice")
	}
	if v.IsSet("local.timeout") {
		d, err := parseDuration(v.GetString("local.timeout"))
		if err != nil {
			return cfg, fmt.Errorf("local.timeout: %w", err)
		}
		cfg.Local.Timeout = d
	}

	// Cache settings
	if v.IsSet("cache.enabled") {
		cfg.Cache.Enabled = v.GetBool("cache.enabled")
	}
	if v.IsSet("cache.dir") {
		cfg.Cache.Dir = utils.ExpandPath(v.GetString("cache.dir"))
	}
	if v.IsSet("cache.max_size") {
		size, err := humanize.ParseBytes(v.GetString("cache.max_size"))
		if err != nil {
			return cfg, fmt.Errorf("cache.max_size: %w", err)
		}
		cfg.Cache.MaxSize = int64(size) //nolint:gosec
	}

	// Player settings
	if v.IsSet("player.speed_capable") {
		cfg.Player.SpeedCapable = v.GetString("player.speed_capable")
	}
	if v.IsSet("player.fallbacks") {
		cfg.Player.Fallbacks = v.GetStringSlice("player.fallbacks")
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	// Validate accepted it, so only zero changes here
	cfg.Speed, _ = NormalizeSpeed(cfg.Speed)
	return cfg, nil
}

func parseDuration(s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("duration must not be negative, got %s", s)
	}
	return d, nil
}
