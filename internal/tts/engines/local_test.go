package engines

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dgnsrekt/utts/internal/tts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDriver records what the engine asked of it.
type fakeDriver struct {
	voices    []Voice
	voicesErr error
	voice     string
	rate      int
	rateErr   error
	setRates  []int
	writeData string
	saveErr   error
	saved     []string
}

func (d *fakeDriver) Voices(context.Context) ([]Voice, error) { return d.voices, d.voicesErr }
func (d *fakeDriver) Voice() string                          { return d.voice }

func (d *fakeDriver) SetVoice(id string) error {
	d.voice = id
	return nil
}

func (d *fakeDriver) Rate() (int, error) {
	if d.rateErr != nil {
		return 0, d.rateErr
	}
	return d.rate, nil
}

func (d *fakeDriver) SetRate(wpm int) error {
	d.setRates = append(d.setRates, wpm)
	d.rate = wpm
	return nil
}

func (d *fakeDriver) SaveToFile(_ context.Context, text, path string) error {
	if d.saveErr != nil {
		return d.saveErr
	}
	d.saved = append(d.saved, text)
	return os.WriteFile(path, []byte(d.writeData), 0o644)
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{
		voices: []Voice{
			{ID: "gmw/en", Name: "English", Languages: []string{"en-gb", "en"}},
			{ID: "roa/es", Name: "Spanish", Languages: []string{"es"}},
			{ID: "gmw/de", Name: "German", Languages: []string{"de"}},
		},
		voice:     "default",
		rate:      200,
		writeData: "RIFF....WAVE",
	}
}

func TestLocalEngine_Rate(t *testing.T) {
	tests := []struct {
		name    string
		rate    int
		rateErr error
		speeds  []float64
		want    []int
	}{
		{name: "double", rate: 200, speeds: []float64{2.0}, want: []int{400}},
		{name: "half", rate: 200, speeds: []float64{0.5}, want: []int{100}},
		{name: "rounded", rate: 175, speeds: []float64{1.5}, want: []int{263}},
		{name: "unreadable rate uses default", rateErr: errors.New("no rate"), speeds: []float64{1.0}, want: []int{200}},
		{name: "calls do not compound", rate: 200, speeds: []float64{2.0, 2.0, 1.0}, want: []int{400, 400, 200}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newFakeDriver()
			d.rate = tt.rate
			d.rateErr = tt.rateErr
			e, err := NewLocalEngine(d)
			require.NoError(t, err)

			for _, speed := range tt.speeds {
				out := filepath.Join(t.TempDir(), "out.wav")
				path, err := e.Synthesize(context.Background(), "hello", "en", out, speed)
				require.NoError(t, err)
				assert.Equal(t, out, path)
			}
			assert.Equal(t, tt.want, d.setRates)
		})
	}
}

func TestLocalEngine_VoiceSelection(t *testing.T) {
	tests := []struct {
		name string
		lang string
		want string
	}{
		{name: "id substring", lang: "es", want: "roa/es"},
		{name: "language list", lang: "en-gb", want: "gmw/en"},
		{name: "no match keeps current", lang: "xx", want: "default"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newFakeDriver()
			e, err := NewLocalEngine(d)
			require.NoError(t, err)

			out := filepath.Join(t.TempDir(), "out.wav")
			path, err := e.Synthesize(context.Background(), "hola", tt.lang, out, 1.0)
			require.NoError(t, err)
			assert.Equal(t, out, path)
			assert.Equal(t, tt.want, d.voice)
		})
	}
}

func TestLocalEngine_VoiceListErrorIsIgnored(t *testing.T) {
	d := newFakeDriver()
	d.voicesErr = errors.New("boom")
	e, err := NewLocalEngine(d)
	require.NoError(t, err)

	_, err = e.Synthesize(context.Background(), "hello", "es", filepath.Join(t.TempDir(), "out.wav"), 1.0)
	require.NoError(t, err)
	assert.Equal(t, "default", d.voice)
}

func TestLocalEngine_TempFile(t *testing.T) {
	d := newFakeDriver()
	e, err := NewLocalEngine(d)
	require.NoError(t, err)

	path, err := e.Synthesize(context.Background(), "hello", "en", "", 1.0)
	require.NoError(t, err)
	defer os.Remove(path) //nolint:errcheck

	assert.Equal(t, ".wav", filepath.Ext(path))
	assert.True(t, strings.HasPrefix(filepath.Base(path), "tts_"))
	assert.FileExists(t, path)
}

func TestLocalEngine_Failures(t *testing.T) {
	t.Run("empty text never reaches driver", func(t *testing.T) {
		d := newFakeDriver()
		e, _ := NewLocalEngine(d)

		path, err := e.Synthesize(context.Background(), "\n\t ", "en", "", 1.0)
		assert.Empty(t, path)
		assert.True(t, tts.IsValidation(err))
		assert.Empty(t, d.saved)
	})

	t.Run("driver error", func(t *testing.T) {
		d := newFakeDriver()
		d.saveErr = errors.New("render failed")
		e, _ := NewLocalEngine(d)

		path, err := e.Synthesize(context.Background(), "hello", "en", "", 1.0)
		assert.Empty(t, path)
		assert.ErrorIs(t, err, tts.ErrSynthesisFailed)
	})

	t.Run("empty artifact", func(t *testing.T) {
		d := newFakeDriver()
		d.writeData = ""
		e, _ := NewLocalEngine(d)

		path, err := e.Synthesize(context.Background(), "hello", "en", filepath.Join(t.TempDir(), "out.wav"), 1.0)
		assert.Empty(t, path)
		assert.ErrorIs(t, err, tts.ErrSynthesisFailed)
	})
}

func TestNewLocalEngine_NilDriver(t *testing.T) {
	_, err := NewLocalEngine(nil)
	assert.Error(t, err)
}
