package audio

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/utts/internal/tts"
)

// SpeedWarning is shown when playback falls back to a player that cannot
// change speed.
const SpeedWarning = "Playback speed requires 'mpv' to work. Playing at normal speed."

// errNoLauncher is the cause when no launcher could even be tried.
var errNoLauncher = errors.New("no audio player found")

// Notifier receives user-visible notices raised during playback.
type Notifier interface {
	Notify(title, message string)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(title, message string)

// Notify implements Notifier.
func (f NotifierFunc) Notify(title, message string) { f(title, message) }

// Dispatcher plays files through the first launcher in its chain that
// starts successfully.
type Dispatcher struct {
	chain []Launcher
}

// NewDispatcher builds the launcher chain for the current platform.
func NewDispatcher(cfg tts.PlayerConfig) *Dispatcher {
	return newDispatcher(cfg, runtime.GOOS)
}

func newDispatcher(cfg tts.PlayerConfig, goos string) *Dispatcher {
	var chain []Launcher
	if cfg.SpeedCapable != "" {
		chain = append(chain, SpeedPlayer(cfg.SpeedCapable))
	}

	switch goos {
	case "windows":
		chain = append(chain, windowsStart())
	case "darwin":
		chain = append(chain, Program("afplay"))
	default:
		for _, name := range cfg.Fallbacks {
			chain = append(chain, Program(name))
		}
	}

	chain = append(chain, opener(goos))
	return &Dispatcher{chain: chain}
}

// NewDispatcherWith returns a Dispatcher over an explicit chain.
func NewDispatcherWith(chain ...Launcher) *Dispatcher {
	return &Dispatcher{chain: chain}
}

// Play starts playback of path at speed. When the launcher that wins cannot
// honor a speed other than 1.0, n (which may be nil) is told that playback
// runs at normal speed. Play returns a PlaybackError when every launcher
// fails.
func (d *Dispatcher) Play(path string, speed float64, n Notifier) error {
	var errs []error
	for _, l := range d.chain {
		if !l.Available() {
			log.Debug("Player not installed", "player", l.Name())
			continue
		}
		if err := l.Launch(path, speed); err != nil {
			log.Debug("Player failed to start", "player", l.Name(), "error", err)
			errs = append(errs, err)
			continue
		}

		log.Info("Playback started", "player", l.Name(), "path", path, "speed", speed)
		if speed != 1.0 && !l.SupportsSpeed() && n != nil {
			n.Notify("Notice", SpeedWarning)
		}
		return nil
	}

	if len(errs) == 0 {
		errs = append(errs, errNoLauncher)
	}
	err := fmt.Errorf("no player could open %s: %w", path, errors.Join(errs...))
	return tts.PlaybackError(path, err)
}
