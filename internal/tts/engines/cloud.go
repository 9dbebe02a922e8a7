package engines

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/utts/internal/cache"
	"github.com/dgnsrekt/utts/internal/text"
	"github.com/dgnsrekt/utts/internal/tts"
	"golang.org/x/time/rate"
)

const (
	// maxChunkRunes is the longest text the translate endpoint accepts per request.
	maxChunkRunes = 100

	// maxResponseSize guards against a misbehaving endpoint.
	maxResponseSize = 10 * 1024 * 1024

	userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
)

// AudioStore is the subset of the disk cache the cloud engine uses.
type AudioStore interface {
	Get(key string) ([]byte, bool)
	Put(key string, value []byte) error
	Close() error
}

// CloudEngine synthesizes speech with the Google Translate TTS endpoint.
// It produces MP3 audio and has no control over speech rate: the speed
// multiplier is accepted and ignored.
type CloudEngine struct {
	baseURL string
	slow    bool
	client  *http.Client

	// Rate limiting to avoid being blocked by Google
	rateLimiter *rate.Limiter

	store AudioStore

	mu sync.Mutex
}

// CloudConfig holds configuration for the cloud engine.
type CloudConfig struct {
	// BaseURL of the translate service, without path.
	BaseURL string

	// Slow asks for slower speech.
	Slow bool

	// Timeout per HTTP request (defaults to 30s)
	Timeout time.Duration

	// Rate limit requests per minute to avoid being blocked (defaults to 50)
	RequestsPerMinute int

	// Store caches whole synthesized texts; nil disables caching.
	Store AudioStore

	// Client overrides the HTTP client.
	Client *http.Client
}

// NewCloudEngine creates a new cloud TTS engine.
func NewCloudEngine(config CloudConfig) (*CloudEngine, error) {
	if config.BaseURL == "" {
		config.BaseURL = tts.DefaultCloudConfig().BaseURL
	}
	u, err := url.Parse(config.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid cloud base URL %q", config.BaseURL)
	}

	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.RequestsPerMinute == 0 {
		config.RequestsPerMinute = 50
	}

	client := config.Client
	if client == nil {
		client = &http.Client{Timeout: config.Timeout}
	}

	return &CloudEngine{
		baseURL:     u.String(),
		slow:        config.Slow,
		client:      client,
		rateLimiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(config.RequestsPerMinute)), 3),
		store:       config.Store,
	}, nil
}

// Kind implements tts.Synthesizer.
func (e *CloudEngine) Kind() tts.EngineKind { return tts.EngineCloud }

// Synthesize downloads speech for text and writes it to outputPath, or to a
// fresh temp file when outputPath is empty.
func (e *CloudEngine) Synthesize(ctx context.Context, input, lang, outputPath string, _ float64) (string, error) {
	if err := tts.ValidateText(input); err != nil {
		return "", err
	}

	key := cache.Key(input, lang, strconv.FormatBool(e.slow))
	audio, hit := e.cached(key)
	if !hit {
		var err error
		audio, err = e.fetch(ctx, input, lang)
		if err != nil {
			return "", tts.SynthesisError(tts.EngineCloud, err)
		}
		e.remember(key, audio)
	}

	path := outputPath
	if path == "" {
		path = tts.TempPath(".mp3")
	}
	if err := writeAudio(path, audio); err != nil {
		return "", tts.SynthesisError(tts.EngineCloud, err)
	}
	if err := tts.CheckArtifact(path); err != nil {
		return "", tts.SynthesisError(tts.EngineCloud, err)
	}

	log.Debug("Cloud audio written", "path", path, "bytes", len(audio), "cacheHit", hit)
	return path, nil
}

func (e *CloudEngine) cached(key string) ([]byte, bool) {
	if e.store == nil {
		return nil, false
	}
	return e.store.Get(key)
}

func (e *CloudEngine) remember(key string, audio []byte) {
	if e.store == nil {
		return
	}
	// Cache errors are non-fatal
	if err := e.store.Put(key, audio); err != nil {
		log.Debug("Could not cache cloud audio", "error", err)
	}
}

// fetch requests every chunk of input in order and concatenates the MP3
// streams.
func (e *CloudEngine) fetch(ctx context.Context, input, lang string) ([]byte, error) {
	chunks := text.Chunk(input, maxChunkRunes)
	if len(chunks) == 0 {
		return nil, tts.ErrEmptyText
	}

	var audio bytes.Buffer
	for i, chunk := range chunks {
		if err := e.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait cancelled: %w", err)
		}
		data, err := e.fetchChunk(ctx, chunk, lang, i, len(chunks))
		if err != nil {
			return nil, fmt.Errorf("chunk %d/%d: %w", i+1, len(chunks), err)
		}
		audio.Write(data)
	}
	return audio.Bytes(), nil
}

func (e *CloudEngine) fetchChunk(ctx context.Context, chunk, lang string, idx, total int) ([]byte, error) {
	q := url.Values{}
	q.Set("ie", "UTF-8")
	q.Set("client", "tw-ob")
	q.Set("tl", lang)
	q.Set("q", chunk)
	q.Set("total", strconv.Itoa(total))
	q.Set("idx", strconv.Itoa(idx))
	q.Set("textlen", strconv.Itoa(len([]rune(chunk))))
	if e.slow {
		q.Set("ttsspeed", "0.24")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.baseURL+"/translate_tts?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("unable to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Referer", e.baseURL+"/")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("HTTP status %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize+1))
	if err != nil {
		return nil, fmt.Errorf("unable to read response: %w", err)
	}
	if len(data) == 0 {
		return nil, errors.New("empty audio response")
	}
	if len(data) > maxResponseSize {
		return nil, fmt.Errorf("audio response too large (max %d bytes)", maxResponseSize)
	}
	return data, nil
}

// Close releases resources held by the engine.
func (e *CloudEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.store != nil {
		if err := e.store.Close(); err != nil {
			return fmt.Errorf("failed to close cache: %w", err)
		}
		e.store = nil
	}
	return nil
}

// writeAudio writes data next to path and renames it into place, so path
// never holds a partial file.
func writeAudio(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tts-*.part")
	if err != nil {
		return fmt.Errorf("unable to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	_, err = tmp.Write(data)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("unable to write audio: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("unable to move audio into place: %w", err)
	}
	return nil
}

// Ensure CloudEngine implements the Synthesizer interface
var _ tts.Synthesizer = (*CloudEngine)(nil)
