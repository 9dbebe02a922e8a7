package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/utts/internal/audio"
	"github.com/dgnsrekt/utts/internal/text"
	"github.com/dgnsrekt/utts/internal/tts"
	"github.com/dgnsrekt/utts/ui"
)

// errSilentExit fails the command after its message has been printed.
var errSilentExit = errors.New("exit status 1")

// cliEngines are the names accepted by --engine.
var cliEngines = []string{tts.EngineLocal.String(), tts.EngineCloud.String()}

// cliOptions are the settings of one CLI run.
type cliOptions struct {
	Text     string
	Input    string
	Engine   tts.EngineKind
	Language string
	File     string
	Play     bool
	Speed    float64
	Markdown bool
}

// runCLI synthesizes opts.Text (or the input file), optionally saving and
// playing it. Missing input fails with errSilentExit; synthesis and playback
// failures are printed and the run still succeeds.
func runCLI(ctx context.Context, w io.Writer, stdin io.Reader, opts cliOptions, s ui.Speaker, p ui.Player) error {
	input, err := readInput(opts, stdin)
	if err != nil {
		fmt.Fprintf(w, "Error: %s\n", err)
		return errSilentExit
	}
	if opts.Markdown {
		input = text.StripMarkdown(input)
	}

	// zero means DefaultSpeed
	if speed, err := tts.NormalizeSpeed(opts.Speed); err == nil {
		opts.Speed = speed
	}

	fmt.Fprintf(w, "[*] Engine: %s | Lang: %s | Speed: %s\n", opts.Engine, opts.Language, tts.FormatSpeed(opts.Speed))

	path, err := s.Speak(ctx, tts.Request{
		Text:       input,
		Engine:     opts.Engine,
		Language:   opts.Language,
		OutputPath: opts.File,
		Speed:      opts.Speed,
	})
	if err != nil {
		fmt.Fprintf(w, "Error: %s\n", err)
		return nil
	}

	if opts.File != "" {
		fmt.Fprintf(w, "[*] Saved to: %s\n", path)
	} else {
		log.Debug("Audio left in temp file", "path", path)
	}

	if opts.Play {
		fmt.Fprintln(w, "[*] Playing...")
		notices := audio.NotifierFunc(func(_, msg string) {
			fmt.Fprintf(w, "[!] %s\n", msg)
		})
		if err := p.Play(path, opts.Speed, notices); err != nil {
			fmt.Fprintf(w, "Error: %s\n", err)
		}
	}
	return nil
}

// readInput returns the text to speak: the input file when one is given
// ("-" reads stdin), the positional text otherwise.
func readInput(opts cliOptions, stdin io.Reader) (string, error) {
	input := opts.Text
	switch opts.Input {
	case "":
	case "-":
		b, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("unable to read from stdin: %w", err)
		}
		input = string(b)
	default:
		b, err := os.ReadFile(opts.Input)
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("File %s not found.", opts.Input) //nolint:staticcheck
		}
		if err != nil {
			return "", fmt.Errorf("unable to read file: %w", err)
		}
		input = string(b)
	}

	if strings.TrimSpace(input) == "" {
		return "", errors.New("No text provided. Use arguments or run without arguments for GUI.") //nolint:staticcheck
	}
	return input, nil
}
