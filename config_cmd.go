package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/charmbracelet/x/editor"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const defaultConfig = `# default engine: "offline" (espeak-ng) or "online" (Google Translate)
# engine: "offline"
# default language code
language: "en"
# default speed multiplier
speed: 1.0
# write debug messages to the log file
debug: false

# online engine
cloud:
  enabled: true
  base_url: "https://translate.google.com"
  # ask for slower speech (independent of speed)
  slow: false
  timeout: "30s"
  requests_per_minute: 50

# offline engine
local:
  # binary: "espeak-ng"
  # base words-per-minute rate, scaled by speed
  rate: 200
  # voice: "gmw/en-US"
  timeout: "2m"

# cache of online audio
cache:
  enabled: true
  # dir: "~/.cache/utts/audio"
  max_size: "100MB"

# playback
player:
  # preferred player, used for speed changes
  speed_capable: "mpv"
  # tried in order when the preferred player is missing (Linux/BSD)
  fallbacks: ["mpg123", "aplay", "paplay", "xdg-open"]
`

var configCmd = &cobra.Command{
	Use:     "config",
	Hidden:  false,
	Short:   "Edit the utts config file",
	Long:    paragraph(fmt.Sprintf("\n%s the utts config file. We’ll use EDITOR to determine which editor to use. If the config file doesn't exist, it will be created.", keyword("Edit"))),
	Example: paragraph("utts config\nutts config --config path/to/config.yml"),
	Args:    cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		if err := ensureConfigFile(); err != nil {
			return err
		}

		c, err := editor.Cmd("utts", configFile)
		if err != nil {
			return fmt.Errorf("unable to set config file: %w", err)
		}
		c.Stdin = os.Stdin
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr
		if err := c.Run(); err != nil {
			return fmt.Errorf("unable to run command: %w", err)
		}

		fmt.Println("Wrote config file to:", configFile)
		return nil
	},
}

// ensureConfigFile writes the commented default configuration to configFile
// unless a file is already there.
func ensureConfigFile() error {
	if configFile == "" {
		configFile = viper.GetViper().ConfigFileUsed()
	}
	if configFile == "" {
		return errors.New("no configuration file location, pass --config")
	}

	if ext := path.Ext(configFile); ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("'%s' is not a supported configuration type: use '%s' or '%s'", ext, ".yaml", ".yml")
	}

	_, err := os.Stat(configFile)
	switch {
	case err == nil:
		return nil
	case !errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("unable to stat config file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(configFile), 0o700); err != nil {
		return fmt.Errorf("unable create directory: %w", err)
	}
	if err := os.WriteFile(configFile, []byte(defaultConfig), 0o600); err != nil {
		return fmt.Errorf("unable to write config file: %w", err)
	}
	return nil
}
