package engines

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// lookPath and commandContext are replaced in tests.
var (
	lookPath       = exec.LookPath
	commandContext = exec.CommandContext
)

// espeakBinaries are probed in order when no binary is configured.
var espeakBinaries = []string{"espeak-ng", "espeak"}

// espeak accepts words-per-minute rates in this range.
const (
	minEspeakRate = 80
	maxEspeakRate = 500
)

// Voice describes one voice offered by a local driver.
type Voice struct {
	ID        string
	Name      string
	Languages []string
}

// Driver is an on-device speech engine. Rate is in words per minute.
type Driver interface {
	Voices(ctx context.Context) ([]Voice, error)
	Voice() string
	SetVoice(id string) error
	Rate() (int, error)
	SetRate(wpm int) error
	SaveToFile(ctx context.Context, text, path string) error
}

// EspeakDriver drives the espeak-ng (or espeak) command line tool. Each
// render runs a fresh process with the text passed as an argument.
type EspeakDriver struct {
	binary  string
	timeout time.Duration

	mu    sync.Mutex
	voice string
	rate  int
}

// NewEspeakDriver locates binary, or the first installed espeak flavor when
// binary is empty. It fails when nothing can be run.
func NewEspeakDriver(binary string, rate int, timeout time.Duration) (*EspeakDriver, error) {
	candidates := espeakBinaries
	if binary != "" {
		candidates = []string{binary}
	}

	var path string
	for _, name := range candidates {
		if p, err := lookPath(name); err == nil {
			path = p
			break
		}
	}
	if path == "" {
		return nil, fmt.Errorf("no espeak binary found (tried %s)", strings.Join(candidates, ", "))
	}

	if timeout == 0 {
		timeout = 2 * time.Minute
	}

	d := &EspeakDriver{binary: path, timeout: timeout}
	if rate > 0 {
		if err := d.SetRate(rate); err != nil {
			return nil, err
		}
	}
	log.Debug("Using espeak", "binary", path)
	return d, nil
}

// Voices lists the voices espeak reports.
func (d *EspeakDriver) Voices(ctx context.Context) ([]Voice, error) {
	out, stderr, err := d.run(ctx, "--voices")
	if err != nil {
		return nil, fmt.Errorf("listing voices failed: %w, stderr: %s", err, stderr)
	}
	return parseVoices(out), nil
}

// Voice returns the selected voice ID, "" for espeak's default.
func (d *EspeakDriver) Voice() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.voice
}

// SetVoice selects the voice used by later renders.
func (d *EspeakDriver) SetVoice(id string) error {
	if strings.TrimSpace(id) == "" {
		return errors.New("voice id is empty")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.voice = id
	return nil
}

// Rate returns the configured rate. It fails when none has been set so
// callers fall back to their own default.
func (d *EspeakDriver) Rate() (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.rate == 0 {
		return 0, errors.New("rate not set")
	}
	return d.rate, nil
}

// SetRate sets the words-per-minute rate for later renders.
func (d *EspeakDriver) SetRate(wpm int) error {
	if wpm < minEspeakRate || wpm > maxEspeakRate {
		return fmt.Errorf("rate %d out of range [%d, %d]", wpm, minEspeakRate, maxEspeakRate)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.rate = wpm
	return nil
}

// SaveToFile renders text to a WAV file at path and waits for espeak to exit.
func (d *EspeakDriver) SaveToFile(ctx context.Context, text, path string) error {
	d.mu.Lock()
	args := []string{"-w", path}
	if d.voice != "" {
		args = append(args, "-v", d.voice)
	}
	if d.rate != 0 {
		args = append(args, "-s", fmt.Sprint(d.rate))
	}
	d.mu.Unlock()

	// "--" keeps text starting with a dash from being read as a flag
	args = append(args, "--", text)

	_, stderr, err := d.run(ctx, args...)
	if err != nil {
		return fmt.Errorf("espeak failed: %w, stderr: %s", err, stderr)
	}
	return nil
}

func (d *EspeakDriver) run(ctx context.Context, args ...string) ([]byte, string, error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	cmd := commandContext(ctx, d.binary, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, stderr.String(), fmt.Errorf("timeout: %w", ctx.Err())
		}
		return nil, stderr.String(), err
	}
	return stdout.Bytes(), stderr.String(), nil
}

// parseVoices reads the table printed by "espeak --voices":
//
//	Pty Language       Age/Gender VoiceName          File                 Other Languages
//	 5  af              --/M      Afrikaans          gmw/af
//	 5  en-gb           --/M      English_(Great_Britain) gmw/en            (en 2)
//	 5  en-gb-scotland  --/M      English_(Scotland) gmw/en-GB-scotland (en-uk 2)(en 3)
func parseVoices(out []byte) []Voice {
	var voices []Voice
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 5 || fields[0] == "Pty" {
			continue
		}
		v := Voice{
			ID:        fields[4],
			Name:      strings.ReplaceAll(fields[3], "_", " "),
			Languages: []string{fields[1]},
		}
		// other languages come as "(code priority)" pairs, possibly adjacent
		tail := strings.Join(fields[5:], " ")
		pairs := strings.FieldsFunc(tail, func(r rune) bool { return r == '(' || r == ')' })
		for _, pair := range pairs {
			if f := strings.Fields(pair); len(f) > 0 {
				v.Languages = append(v.Languages, f[0])
			}
		}
		voices = append(voices, v)
	}
	return voices
}

// Ensure EspeakDriver implements the Driver interface
var _ Driver = (*EspeakDriver)(nil)
