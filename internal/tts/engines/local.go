package engines

import (
	"context"
	"errors"
	"math"
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/utts/internal/tts"
)

// defaultBaseRate is used when the driver cannot report its rate.
const defaultBaseRate = 200

// LocalEngine synthesizes speech on-device through a Driver. Calls are
// serialized because a driver holds one voice and one rate at a time.
type LocalEngine struct {
	driver Driver

	mu       sync.Mutex
	baseRate int // 0 until read from the driver
}

// NewLocalEngine wraps driver.
func NewLocalEngine(driver Driver) (*LocalEngine, error) {
	if driver == nil {
		return nil, errors.New("local engine requires a driver")
	}
	return &LocalEngine{driver: driver}, nil
}

// Kind implements tts.Synthesizer.
func (e *LocalEngine) Kind() tts.EngineKind { return tts.EngineLocal }

// Synthesize renders text with the voice best matching lang at base rate
// times speed, writing a WAV file to outputPath or a fresh temp file.
func (e *LocalEngine) Synthesize(ctx context.Context, text, lang, outputPath string, speed float64) (string, error) {
	if err := tts.ValidateText(text); err != nil {
		return "", err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.selectVoice(ctx, lang)
	e.applyRate(speed)

	path := outputPath
	if path == "" {
		path = tts.TempPath(".wav")
	}

	if err := e.driver.SaveToFile(ctx, text, path); err != nil {
		return "", tts.SynthesisError(tts.EngineLocal, err)
	}
	if err := tts.CheckArtifact(path); err != nil {
		if outputPath == "" {
			_ = os.Remove(path)
		}
		return "", tts.SynthesisError(tts.EngineLocal, err)
	}
	return path, nil
}

// selectVoice switches to the first voice matching lang. Failures and a
// missing match leave the current voice in place.
func (e *LocalEngine) selectVoice(ctx context.Context, lang string) {
	voices, err := e.driver.Voices(ctx)
	if err != nil {
		log.Debug("Could not list voices", "error", err)
		return
	}
	v, ok := matchVoice(voices, lang)
	if !ok {
		log.Debug("No voice for language, keeping current", "lang", lang, "voice", e.driver.Voice())
		return
	}
	if err := e.driver.SetVoice(v.ID); err != nil {
		log.Debug("Could not set voice", "voice", v.ID, "error", err)
	}
}

// applyRate sets the driver rate to round(base * speed). The base is the
// first rate the driver reports, so consecutive calls do not compound.
func (e *LocalEngine) applyRate(speed float64) {
	if e.baseRate == 0 {
		if r, err := e.driver.Rate(); err == nil && r > 0 {
			e.baseRate = r
		}
	}
	base := e.baseRate
	if base == 0 {
		base = defaultBaseRate
	}

	rate := int(math.Round(float64(base) * speed))
	if err := e.driver.SetRate(rate); err != nil {
		log.Debug("Could not set rate", "rate", rate, "error", err)
	}
}

// matchVoice returns the first voice whose ID contains lang or whose
// language list contains it.
func matchVoice(voices []Voice, lang string) (Voice, bool) {
	lang = strings.ToLower(lang)
	for _, v := range voices {
		if strings.Contains(strings.ToLower(v.ID), lang) || slices.Contains(v.Languages, lang) {
			return v, true
		}
	}
	return Voice{}, false
}

// Close implements tts.Synthesizer.
func (e *LocalEngine) Close() error { return nil }

// Ensure LocalEngine implements the Synthesizer interface
var _ tts.Synthesizer = (*LocalEngine)(nil)
