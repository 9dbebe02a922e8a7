package tts

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// DefaultSpeed is the speed multiplier used when a request leaves it unset.
const DefaultSpeed = 1.0

// DefaultLanguage is the language used when a request leaves it unset.
const DefaultLanguage = "en"

// FormatSpeed renders a speed multiplier the way users type it: whole
// numbers keep one decimal ("1.0", "2.0"), others use the shortest form
// ("0.75").
func FormatSpeed(speed float64) string {
	if speed == float64(int64(speed)) {
		return strconv.FormatFloat(speed, 'f', 1, 64)
	}
	return strconv.FormatFloat(speed, 'f', -1, 64)
}

// EngineKind selects one of the two synthesis backends.
type EngineKind int

const (
	// EngineLocal is the offline, on-device synthesis engine.
	EngineLocal EngineKind = iota

	// EngineCloud is the network speech provider.
	EngineCloud
)

// String returns the CLI name of the engine.
func (k EngineKind) String() string {
	switch k {
	case EngineLocal:
		return "offline"
	case EngineCloud:
		return "online"
	default:
		return "unknown"
	}
}

// Label returns a human readable engine name for messages.
func (k EngineKind) Label() string {
	switch k {
	case EngineLocal:
		return "Offline"
	case EngineCloud:
		return "Online"
	default:
		return "Unknown"
	}
}

// Engines lists every engine kind in display order.
var Engines = []EngineKind{EngineCloud, EngineLocal}

// ParseEngineKind maps an engine name (and its aliases) to an EngineKind.
func ParseEngineKind(name string) (EngineKind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "offline", "local", "espeak":
		return EngineLocal, nil
	case "online", "cloud", "gtts", "google":
		return EngineCloud, nil
	default:
		return EngineLocal, fmt.Errorf("%w: %q (supported: offline, online)", ErrInvalidEngine, name)
	}
}

// Request is one speak call. It is built per user action and never stored.
type Request struct {
	// Text to synthesize; must contain a non-space character.
	Text string

	// Engine selects the backend.
	Engine EngineKind

	// Language is a short code such as "en"; empty means DefaultLanguage.
	Language string

	// OutputPath, when set, is where the audio is written and is returned
	// verbatim. Empty means a fresh file in the system temp directory.
	OutputPath string

	// Speed is the rate multiplier; zero means DefaultSpeed.
	Speed float64
}

// Synthesizer is the capability both backends implement.
type Synthesizer interface {
	// Synthesize renders text to an audio file and returns its path. On
	// success the file exists and is non-empty; on failure the returned
	// path is "".
	Synthesize(ctx context.Context, text, language, outputPath string, speed float64) (string, error)

	// Kind reports which engine this is.
	Kind() EngineKind

	// Close releases any resources held by the engine.
	Close() error
}
