package ui

import (
	"context"
	"fmt"
	"os"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/utts/internal/audio"
	"github.com/dgnsrekt/utts/internal/tts"
)

// Speaker turns a request into an audio file.
type Speaker interface {
	Speak(ctx context.Context, req tts.Request) (string, error)
}

// Player starts playback of an audio file.
type Player interface {
	Play(path string, speed float64, n audio.Notifier) error
}

// readClipboard is replaced in tests.
var readClipboard = clipboard.ReadAll

type (
	// synthesizedMsg is sent when audio for playback has been rendered.
	synthesizedMsg struct {
		path  string
		speed float64
		err   error
	}

	// playbackStartedMsg is sent once a player has been launched.
	playbackStartedMsg struct {
		notices []dialog
		err     error
	}

	// savedMsg is sent when a save completes.
	savedMsg struct {
		path   string
		size   int64
		engine tts.EngineKind
		speed  float64
		err    error
	}

	// pastedMsg carries the clipboard contents.
	pastedMsg struct {
		text string
		err  error
	}
)

func synthesizeCmd(ctx context.Context, s Speaker, req tts.Request) tea.Cmd {
	return func() tea.Msg {
		path, err := s.Speak(ctx, req)
		return synthesizedMsg{path: path, speed: req.Speed, err: err}
	}
}

func playCmd(p Player, path string, speed float64) tea.Cmd {
	return func() tea.Msg {
		var notices []dialog
		n := audio.NotifierFunc(func(title, msg string) {
			notices = append(notices, dialog{title: title, body: msg})
		})
		err := p.Play(path, speed, n)
		return playbackStartedMsg{notices: notices, err: err}
	}
}

func saveCmd(ctx context.Context, s Speaker, req tts.Request) tea.Cmd {
	return func() tea.Msg {
		path, err := s.Speak(ctx, req)
		msg := savedMsg{path: path, engine: req.Engine, speed: req.Speed, err: err}
		if err == nil {
			if info, statErr := os.Stat(path); statErr == nil {
				msg.size = info.Size()
			}
		}
		return msg
	}
}

func pasteCmd() tea.Msg {
	text, err := readClipboard()
	if err != nil {
		log.Debug("Clipboard read failed", "error", err)
		return pastedMsg{err: fmt.Errorf("unable to read clipboard: %w", err)}
	}
	return pastedMsg{text: text}
}
