package audio

import (
	"fmt"
	"os/exec"
	"strconv"

	"github.com/charmbracelet/log"
)

// lookPath and startCommand are replaced in tests.
var (
	lookPath     = exec.LookPath
	startCommand = func(cmd *exec.Cmd) error { return cmd.Start() }
)

// Launcher starts one external mechanism that can play an audio file.
type Launcher interface {
	// Name identifies the launcher in logs.
	Name() string

	// Available reports whether the launcher can be tried at all.
	Available() bool

	// SupportsSpeed reports whether Launch honors the speed argument.
	SupportsSpeed() bool

	// Launch starts playback of path without waiting for it to finish.
	Launch(path string, speed float64) error
}

// commandLauncher runs a program found on PATH.
type commandLauncher struct {
	name  string
	bin   string
	speed bool

	// always skips the PATH probe, for shell builtins like "start"
	always bool

	args func(path string, speed float64) []string
}

func (l *commandLauncher) Name() string        { return l.name }
func (l *commandLauncher) SupportsSpeed() bool { return l.speed }

func (l *commandLauncher) Available() bool {
	if l.always {
		return true
	}
	_, err := lookPath(l.bin)
	return err == nil
}

func (l *commandLauncher) Launch(path string, speed float64) error {
	args := l.args(path, speed)
	cmd := exec.Command(l.bin, args...) //nolint:gosec

	log.Debug("Launching player", "player", l.name, "args", args)
	if err := startCommand(cmd); err != nil {
		return fmt.Errorf("%s: %w", l.name, err)
	}

	// reap the process once playback ends
	go func() {
		if cmd.Process == nil {
			return
		}
		if err := cmd.Wait(); err != nil {
			log.Debug("Player exited", "player", l.name, "error", err)
		}
	}()
	return nil
}

// SpeedPlayer returns a launcher for a player that accepts --speed, such
// as mpv. The flag is only passed when speed differs from 1.0.
func SpeedPlayer(bin string) Launcher {
	return &commandLauncher{
		name:  bin,
		bin:   bin,
		speed: true,
		args: func(path string, speed float64) []string {
			if speed != 1.0 {
				return []string{"--speed=" + strconv.FormatFloat(speed, 'f', -1, 64), path}
			}
			return []string{path}
		},
	}
}

// Program returns a launcher that runs bin with the file as its only
// argument.
func Program(bin string) Launcher {
	return &commandLauncher{
		name: bin,
		bin:  bin,
		args: func(path string, _ float64) []string { return []string{path} },
	}
}

// windowsStart opens the file with its associated application.
func windowsStart() Launcher {
	return &commandLauncher{
		name:   "start",
		bin:    "cmd",
		always: true,
		args: func(path string, _ float64) []string {
			return []string{"/c", "start", "", path}
		},
	}
}

// opener returns the desktop "open with default application" launcher. It
// is always tried, since it is the last resort.
func opener(goos string) Launcher {
	switch goos {
	case "windows":
		return windowsStart()
	case "darwin":
		return &commandLauncher{name: "open", bin: "open", always: true, args: func(path string, _ float64) []string { return []string{path} }}
	default:
		return &commandLauncher{name: "xdg-open", bin: "xdg-open", always: true, args: func(path string, _ float64) []string { return []string{path} }}
	}
}
