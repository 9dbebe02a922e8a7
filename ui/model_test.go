package ui

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dgnsrekt/utts/internal/audio"
	"github.com/dgnsrekt/utts/internal/tts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSpeaker struct {
	requests []tts.Request
	err      error
}

func (s *fakeSpeaker) Speak(_ context.Context, req tts.Request) (string, error) {
	s.requests = append(s.requests, req)
	if s.err != nil {
		return "", s.err
	}
	path := req.OutputPath
	if path == "" {
		path = "/tmp/tts_test.mp3"
		return path, nil
	}
	return path, os.WriteFile(path, []byte("ID3 some audio"), 0o644)
}

type fakePlayer struct {
	paths  []string
	speeds []float64
	notice string
	err    error
}

func (p *fakePlayer) Play(path string, speed float64, n audio.Notifier) error {
	p.paths = append(p.paths, path)
	p.speeds = append(p.speeds, speed)
	if p.notice != "" && n != nil {
		n.Notify("Notice", p.notice)
	}
	return p.err
}

func testUIConfig() Config {
	return Config{
		Engine:    "online",
		Language:  "en",
		Speed:     1.0,
		Languages: []string{"en", "es", "fr"},
		Speeds:    []float64{0.5, 1.0, 2.0},
		SaveExt:   ".mp3",
	}
}

func newTestModel(t *testing.T) (model, *fakeSpeaker, *fakePlayer) {
	t.Helper()
	s := &fakeSpeaker{}
	p := &fakePlayer{}
	m := newModel(testUIConfig(), s, p)
	t.Cleanup(m.cancel)
	return m, s, p
}

func key(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case "ctrl+p":
		return tea.KeyMsg{Type: tea.KeyCtrlP}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case "ctrl+o":
		return tea.KeyMsg{Type: tea.KeyCtrlO}
	case "ctrl+v":
		return tea.KeyMsg{Type: tea.KeyCtrlV}
	case "ctrl+e":
		return tea.KeyMsg{Type: tea.KeyCtrlE}
	case "ctrl+l":
		return tea.KeyMsg{Type: tea.KeyCtrlL}
	case "ctrl+r":
		return tea.KeyMsg{Type: tea.KeyCtrlR}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

// update feeds msg to m and returns the new model.
func update(t *testing.T, m model, msg tea.Msg) (model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(model)
	require.True(t, ok)
	return nm, cmd
}

// drain runs cmd and returns the messages it produced, skipping spinner
// ticks and cursor blinks.
func drain(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		var out []tea.Msg
		for _, c := range msg {
			out = append(out, drain(c)...)
		}
		return out
	case spinner.TickMsg:
		return nil
	case synthesizedMsg, playbackStartedMsg, savedMsg, pastedMsg:
		return []tea.Msg{msg}
	default:
		return nil
	}
}

// run feeds msg to m and then every message its commands produce.
func run(t *testing.T, m model, msg tea.Msg) model {
	t.Helper()
	queue := []tea.Msg{msg}
	for len(queue) > 0 {
		var cmd tea.Cmd
		m, cmd = update(t, m, queue[0])
		queue = append(queue[1:], drain(cmd)...)
	}
	return m
}

func TestPlay(t *testing.T) {
	m, s, p := newTestModel(t)
	m.textarea.SetValue("  hello world  ")

	m, cmd := update(t, m, key("ctrl+p"))
	assert.Equal(t, busySynthesizing, m.busy)
	assert.Equal(t, statusSynthesizing, m.status)

	// controls are disabled while busy
	busy, _ := update(t, m, key("ctrl+e"))
	assert.Equal(t, m.engine, busy.engine)

	msgs := drain(cmd)
	require.Len(t, msgs, 1)
	m, cmd = update(t, m, msgs[0])
	assert.Equal(t, busyPlaying, m.busy)
	assert.Equal(t, statusPlaying, m.status)

	m = run(t, m, drain(cmd)[0])
	assert.Equal(t, idle, m.busy)
	assert.Equal(t, statusDone, m.status)
	assert.Empty(t, m.dialogs)

	require.Len(t, s.requests, 1)
	assert.Equal(t, tts.Request{Text: "hello world", Engine: tts.EngineCloud, Language: "en", Speed: 1.0}, s.requests[0])
	assert.Equal(t, []string{"/tmp/tts_test.mp3"}, p.paths)
}

func TestPlayBlankIsNoop(t *testing.T) {
	m, s, _ := newTestModel(t)
	m.textarea.SetValue(" \n\t")

	m, cmd := update(t, m, key("ctrl+p"))
	assert.Nil(t, cmd)
	assert.Equal(t, idle, m.busy)
	assert.Empty(t, s.requests)

	m, _ = update(t, m, key("ctrl+s"))
	assert.Equal(t, promptNone, m.prompt)
}

func TestPlaySpeedNotice(t *testing.T) {
	m, _, p := newTestModel(t)
	p.notice = audio.SpeedWarning
	m.textarea.SetValue("hello")

	m, _ = update(t, m, key("ctrl+r")) // 1.0 -> 2.0
	assert.Equal(t, 2.0, m.selectedSpeed())

	m = run(t, m, key("ctrl+p"))
	require.Len(t, m.dialogs, 1)
	assert.Equal(t, audio.SpeedWarning, m.dialogs[0].body)
	assert.Equal(t, []float64{2.0}, p.speeds)
	assert.Equal(t, statusDone, m.status)

	// enter dismisses the dialog
	m, _ = update(t, m, key("enter"))
	assert.Empty(t, m.dialogs)
}

func TestPlayFailures(t *testing.T) {
	t.Run("synthesis", func(t *testing.T) {
		m, s, p := newTestModel(t)
		s.err = tts.UnavailableBackendError(tts.EngineCloud, errors.New("offline"))
		m.textarea.SetValue("hello")

		m = run(t, m, key("ctrl+p"))
		assert.Equal(t, idle, m.busy)
		assert.Equal(t, statusError, m.status)
		require.Len(t, m.dialogs, 1)
		assert.True(t, m.dialogs[0].isError)
		assert.Contains(t, m.dialogs[0].body, "Online engine is not available")
		assert.Empty(t, p.paths)
	})

	t.Run("playback", func(t *testing.T) {
		m, _, p := newTestModel(t)
		p.err = tts.PlaybackError("/tmp/x", errors.New("no player"))
		m.textarea.SetValue("hello")

		m = run(t, m, key("ctrl+p"))
		assert.Equal(t, statusError, m.status)
		require.Len(t, m.dialogs, 1)
		assert.Contains(t, m.dialogs[0].body, "unable to play audio")
	})
}

func typeText(t *testing.T, m model, s string) model {
	t.Helper()
	for _, r := range s {
		m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func TestSave(t *testing.T) {
	m, s, _ := newTestModel(t)
	m.textarea.SetValue("hello")
	dir := t.TempDir()

	m, _ = update(t, m, key("ctrl+s"))
	require.Equal(t, promptSave, m.prompt)

	m = typeText(t, m, filepath.Join(dir, "speech"))
	m = run(t, m, key("enter"))

	want := filepath.Join(dir, "speech.mp3")
	require.Len(t, s.requests, 1)
	assert.Equal(t, want, s.requests[0].OutputPath)
	assert.Equal(t, statusSaved, m.status)
	assert.Equal(t, promptNone, m.prompt)
	require.Len(t, m.dialogs, 1)
	assert.Equal(t, "Saved to "+want+" (14 B)", m.dialogs[0].body)
}

func TestSaveCloudSpeedNote(t *testing.T) {
	tests := []struct {
		name     string
		engine   string
		speedKey bool
		dialogs  int
	}{
		{name: "cloud normal speed", engine: "online", dialogs: 1},
		{name: "cloud changed speed", engine: "online", speedKey: true, dialogs: 2},
		{name: "local changed speed", engine: "offline", speedKey: true, dialogs: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testUIConfig()
			cfg.Engine = tt.engine
			m := newModel(cfg, &fakeSpeaker{}, &fakePlayer{})
			defer m.cancel()
			m.textarea.SetValue("hello")

			if tt.speedKey {
				m, _ = update(t, m, key("ctrl+r"))
			}
			m, _ = update(t, m, key("ctrl+s"))
			m = typeText(t, m, filepath.Join(t.TempDir(), "out.wav"))
			m = run(t, m, key("enter"))

			assert.Len(t, m.dialogs, tt.dialogs)
			if tt.dialogs == 2 {
				assert.Equal(t, savedSpeedNote, m.dialogs[1].body)
			}
		})
	}
}

func TestSavePromptCancel(t *testing.T) {
	m, s, _ := newTestModel(t)
	m.textarea.SetValue("hello")

	m, _ = update(t, m, key("ctrl+s"))
	m = typeText(t, m, "out")
	m, _ = update(t, m, key("esc"))
	assert.Equal(t, promptNone, m.prompt)
	assert.Empty(t, s.requests)
	assert.Equal(t, "hello", m.textarea.Value())
}

func TestLoad(t *testing.T) {
	m, _, _ := newTestModel(t)
	m.textarea.SetValue("old")

	path := filepath.Join(t.TempDir(), "input.txt")
	require.NoError(t, os.WriteFile(path, []byte("new text"), 0o644))

	m, _ = update(t, m, key("ctrl+o"))
	m = typeText(t, m, path)
	m, _ = update(t, m, key("enter"))
	assert.Equal(t, "new text", m.textarea.Value())
	assert.Empty(t, m.dialogs)

	m, _ = update(t, m, key("ctrl+o"))
	m = typeText(t, m, filepath.Join(t.TempDir(), "missing.txt"))
	m, _ = update(t, m, key("enter"))
	assert.Equal(t, "new text", m.textarea.Value())
	require.Len(t, m.dialogs, 1)
	assert.True(t, m.dialogs[0].isError)
}

func TestPaste(t *testing.T) {
	orig := readClipboard
	t.Cleanup(func() { readClipboard = orig })

	m, _, _ := newTestModel(t)
	m.textarea.SetValue("old")

	readClipboard = func() (string, error) { return "from clipboard", nil }
	m = run(t, m, key("ctrl+v"))
	assert.Equal(t, "from clipboard", m.textarea.Value())

	readClipboard = func() (string, error) { return "", errors.New("no clipboard") }
	m = run(t, m, key("ctrl+v"))
	assert.Equal(t, "from clipboard", m.textarea.Value())
	require.Len(t, m.dialogs, 1)
}

func TestPasteWhileBusyIsDropped(t *testing.T) {
	m, _, _ := newTestModel(t)
	m.textarea.SetValue("old")

	m, _ = update(t, m, key("ctrl+p"))
	require.NotEqual(t, idle, m.busy)

	m, _ = update(t, m, pastedMsg{text: "late paste"})
	assert.Equal(t, "old", m.textarea.Value())
	assert.Empty(t, m.dialogs)
}

func TestSelectors(t *testing.T) {
	m, _, _ := newTestModel(t)
	assert.Equal(t, tts.EngineCloud, m.selectedEngine())

	m, _ = update(t, m, key("ctrl+e"))
	assert.Equal(t, tts.EngineLocal, m.selectedEngine())
	m, _ = update(t, m, key("ctrl+e"))
	assert.Equal(t, tts.EngineCloud, m.selectedEngine())

	m, _ = update(t, m, key("ctrl+l"))
	assert.Equal(t, "es", m.selectedLanguage())

	m, _ = update(t, m, key("ctrl+r"))
	m, _ = update(t, m, key("ctrl+r"))
	assert.Equal(t, 0.5, m.selectedSpeed())

	view := m.View()
	assert.Contains(t, view, "online")
	assert.Contains(t, view, "es")
	assert.Contains(t, view, "0.5x")
}

func TestSelectorsAddConfiguredValues(t *testing.T) {
	cfg := testUIConfig()
	cfg.Engine = "offline"
	cfg.Language = "zh-CN"
	cfg.Speed = 1.5

	m := newModel(cfg, &fakeSpeaker{}, &fakePlayer{})
	defer m.cancel()

	assert.Equal(t, tts.EngineLocal, m.selectedEngine())
	assert.Equal(t, "zh-CN", m.selectedLanguage())
	assert.Equal(t, 1.5, m.selectedSpeed())
	assert.Equal(t, []float64{0.5, 1.0, 1.5, 2.0}, m.speeds)
}

func TestQuit(t *testing.T) {
	m, _, _ := newTestModel(t)
	m.textarea.SetValue("hello")
	m, _ = update(t, m, key("ctrl+p"))

	_, cmd := update(t, m, key("ctrl+c"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Error(t, m.ctx.Err())
}

func TestViewShowsStatus(t *testing.T) {
	m, _, _ := newTestModel(t)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	view := m.View()
	assert.Contains(t, view, statusReady)
	assert.True(t, strings.Contains(view, "ctrl+p play"))
}
