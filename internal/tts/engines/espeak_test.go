package engines

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const voicesOutput = `Pty Language       Age/Gender VoiceName          File                 Other Languages
 5  af              --/M      Afrikaans          gmw/af
 5  en-gb           --/M      English_(Great_Britain) gmw/en            (en 2)
 5  es              --/M      Spanish_(Spain)    roa/es
 5  en-gb-scotland  --/M      English_(Scotland) gmw/en-GB-scotland (en-uk 2)(en 3)
`

func TestParseVoices(t *testing.T) {
	voices := parseVoices([]byte(voicesOutput))
	require.Len(t, voices, 4)

	assert.Equal(t, Voice{ID: "gmw/af", Name: "Afrikaans", Languages: []string{"af"}}, voices[0])
	assert.Equal(t, "gmw/en", voices[1].ID)
	assert.Equal(t, "English (Great Britain)", voices[1].Name)
	assert.Equal(t, []string{"en-gb", "en"}, voices[1].Languages)
	assert.Equal(t, "roa/es", voices[2].ID)
	assert.Equal(t, []string{"en-gb-scotland", "en-uk", "en"}, voices[3].Languages)
	assert.Equal(t, "English (Scotland)", voices[3].Name)
}

// fakeExec runs this test binary as the espeak process.
func fakeExec(t *testing.T) {
	t.Helper()
	origLook, origCmd := lookPath, commandContext
	t.Cleanup(func() { lookPath, commandContext = origLook, origCmd })

	lookPath = func(name string) (string, error) {
		if name == "espeak-ng" {
			return "/usr/bin/espeak-ng", nil
		}
		return "", exec.ErrNotFound
	}
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		cs := append([]string{"-test.run=TestHelperProcess", "--", name}, args...)
		cmd := exec.CommandContext(ctx, os.Args[0], cs...)
		cmd.Env = append(os.Environ(), "GO_WANT_HELPER_PROCESS=1")
		return cmd
	}
}

// TestHelperProcess pretends to be espeak. It is not a real test.
func TestHelperProcess(_ *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	args := os.Args
	for len(args) > 0 && args[0] != "--" {
		args = args[1:]
	}
	args = args[2:] // drop "--" and the binary name

	if len(args) == 1 && args[0] == "--voices" {
		fmt.Print(voicesOutput)
		os.Exit(0)
	}
	for i, a := range args {
		if a == "-w" && i+1 < len(args) {
			_ = os.WriteFile(args[i+1], []byte(strings.Join(args, " ")), 0o644)
			os.Exit(0)
		}
	}
	fmt.Fprintln(os.Stderr, "unexpected arguments")
	os.Exit(2)
}

func TestNewEspeakDriver(t *testing.T) {
	fakeExec(t)

	d, err := NewEspeakDriver("", 200, 0)
	require.NoError(t, err)
	assert.Equal(t, "/usr/bin/espeak-ng", d.binary)

	rate, err := d.Rate()
	require.NoError(t, err)
	assert.Equal(t, 200, rate)

	_, err = NewEspeakDriver("missing-tts", 0, 0)
	assert.Error(t, err)
}

func TestEspeakDriver_Voices(t *testing.T) {
	fakeExec(t)

	d, err := NewEspeakDriver("", 0, 0)
	require.NoError(t, err)

	voices, err := d.Voices(context.Background())
	require.NoError(t, err)
	assert.Len(t, voices, 4)

	_, err = d.Rate()
	assert.Error(t, err, "rate is unknown until set")
}

func TestEspeakDriver_SaveToFile(t *testing.T) {
	fakeExec(t)

	d, err := NewEspeakDriver("", 0, 0)
	require.NoError(t, err)
	require.NoError(t, d.SetVoice("roa/es"))
	require.NoError(t, d.SetRate(300))

	out := filepath.Join(t.TempDir(), "out.wav")
	require.NoError(t, d.SaveToFile(context.Background(), "-hola", out))

	args, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "-w "+out+" -v roa/es -s 300 -- -hola", string(args))
}

func TestEspeakDriver_SetRateRange(t *testing.T) {
	d := &EspeakDriver{}
	assert.Error(t, d.SetRate(10))
	assert.Error(t, d.SetRate(1000))
	assert.NoError(t, d.SetRate(80))
	assert.Error(t, d.SetVoice(" "))
}
