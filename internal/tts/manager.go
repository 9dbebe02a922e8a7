package tts

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Manager is the single entry point both frontends use to synthesize speech.
// It owns the backends for the lifetime of the process; a backend that failed
// to construct stays unavailable until the process exits.
type Manager struct {
	mu       sync.RWMutex
	backends map[EngineKind]Synthesizer
	missing  map[EngineKind]error
}

// NewManager returns a Manager with no backends registered.
func NewManager() *Manager {
	return &Manager{
		backends: make(map[EngineKind]Synthesizer),
		missing:  make(map[EngineKind]error),
	}
}

// Register makes s the backend for its engine kind.
func (m *Manager) Register(s Synthesizer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.backends[s.Kind()] = s
	delete(m.missing, s.Kind())
}

// MarkUnavailable records why kind has no backend. Later Speak calls for
// kind fail with an UnavailableBackendError wrapping reason.
func (m *Manager) MarkUnavailable(kind EngineKind, reason error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.backends, kind)
	m.missing[kind] = reason
}

// Available returns nil when kind can be used, or the UnavailableBackendError
// a Speak call would return.
func (m *Manager) Available(kind EngineKind) error {
	_, err := m.backend(kind)
	return err
}

func (m *Manager) backend(kind EngineKind) (Synthesizer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.backends[kind]; ok {
		return s, nil
	}
	reason := m.missing[kind]
	if reason == nil {
		reason = ErrEngineNotAvailable
	}
	return nil, UnavailableBackendError(kind, reason)
}

// Speak validates req and hands it to the selected backend, returning the
// path of the produced audio file. Backend results and errors are returned
// unchanged.
func (m *Manager) Speak(ctx context.Context, req Request) (string, error) {
	if err := ValidateText(req.Text); err != nil {
		return "", err
	}
	speed, err := NormalizeSpeed(req.Speed)
	if err != nil {
		return "", err
	}
	lang, err := NormalizeLanguage(req.Language)
	if err != nil {
		return "", err
	}

	s, err := m.backend(req.Engine)
	if err != nil {
		return "", err
	}

	start := time.Now()
	log.Debug("Synthesis started",
		"engine", req.Engine,
		"lang", lang,
		"speed", speed,
		"textLength", len(req.Text),
		"output", req.OutputPath)

	path, err := s.Synthesize(ctx, req.Text, lang, req.OutputPath, speed)
	if err != nil {
		log.Error("Synthesis failed", "engine", req.Engine, "duration", time.Since(start), "error", err)
		return "", err
	}

	log.Info("Synthesis completed", "engine", req.Engine, "path", path, "duration", time.Since(start))
	return path, nil
}

// Close releases every registered backend.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs []error
	for kind, s := range m.backends {
		if err := s.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s engine: %w", kind, err))
		}
	}
	return errors.Join(errs...)
}
