package engines

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/utts/internal/cache"
	"github.com/dgnsrekt/utts/internal/tts"
	gap "github.com/muesli/go-app-paths"
)

// errCloudDisabled is recorded when the configuration turns the cloud off.
var errCloudDisabled = errors.New("disabled in configuration")

// NewManager builds both backends from cfg and registers them with a new
// tts.Manager. A backend that cannot be constructed is logged and left
// unavailable; the other one still works.
func NewManager(cfg tts.Config) *tts.Manager {
	m := tts.NewManager()

	if local, err := newLocal(cfg.Local); err != nil {
		log.Warn("Offline engine unavailable", "error", err)
		m.MarkUnavailable(tts.EngineLocal, err)
	} else {
		m.Register(local)
	}

	if cloud, err := newCloud(cfg); err != nil {
		log.Warn("Online engine unavailable", "error", err)
		m.MarkUnavailable(tts.EngineCloud, err)
	} else {
		m.Register(cloud)
	}

	return m
}

func newLocal(cfg tts.LocalConfig) (*LocalEngine, error) {
	driver, err := NewEspeakDriver(cfg.Binary, cfg.Rate, cfg.Timeout)
	if err != nil {
		return nil, err
	}
	if cfg.Voice != "" {
		if err := driver.SetVoice(cfg.Voice); err != nil {
			return nil, err
		}
	}
	return NewLocalEngine(driver)
}

func newCloud(cfg tts.Config) (*CloudEngine, error) {
	if !cfg.Cloud.Enabled {
		return nil, errCloudDisabled
	}

	var store AudioStore
	if cfg.Cache.Enabled && cfg.Cache.MaxSize > 0 {
		dc, err := openCache(cfg.Cache)
		if err != nil {
			// The engine works without a cache
			log.Warn("Audio cache disabled", "error", err)
		} else {
			store = dc
		}
	}

	engine, err := NewCloudEngine(CloudConfig{
		BaseURL:           cfg.Cloud.BaseURL,
		Slow:              cfg.Cloud.Slow,
		Timeout:           cfg.Cloud.Timeout,
		RequestsPerMinute: cfg.Cloud.RequestsPerMinute,
		Store:             store,
	})
	if err != nil {
		if store != nil {
			_ = store.Close()
		}
		return nil, err
	}
	return engine, nil
}

// memoryCacheSize bounds the in-process copy of recently used audio.
const memoryCacheSize = 16 << 20

func openCache(cfg tts.CacheConfig) (*cache.Tiered, error) {
	dir := cfg.Dir
	if dir == "" {
		d, err := DefaultCacheDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}
	dc, err := cache.NewDiskCache(dir, cfg.MaxSize)
	if err != nil {
		return nil, err
	}
	return cache.NewTiered(dc, min(memoryCacheSize, cfg.MaxSize)), nil
}

// DefaultCacheDir returns the per-user directory for cached audio.
func DefaultCacheDir() (string, error) {
	dir, err := gap.NewScope(gap.User, "utts").CacheDir()
	if err != nil {
		return "", fmt.Errorf("could not determine cache directory: %w", err)
	}
	return filepath.Join(dir, "audio"), nil
}
