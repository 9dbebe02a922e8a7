// Package main provides the entry point for the utts CLI application.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/utts/internal/audio"
	"github.com/dgnsrekt/utts/internal/tts"
	"github.com/dgnsrekt/utts/internal/tts/engines"
	"github.com/dgnsrekt/utts/ui"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	configFile string
	input      string
	outputFile string
	play       bool
	markdown   bool

	rootCmd = &cobra.Command{
		Use:   "utts [TEXT]",
		Short: "Speak text with an online or offline voice",
		Long: paragraph(
			fmt.Sprintf("\nTurn text into %s, online or offline. Run without arguments for the interactive form.", keyword("speech")),
		),
		Example: paragraph("utts \"hello world\" --play\nutts -i notes.txt --engine online --lang fr --file notes.mp3\nutts -i README.md --markdown --speed 1.5 --play"),
		SilenceErrors:    true,
		SilenceUsage:     true,
		TraverseChildren: true,
		Args:             cobra.MaximumNArgs(1),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return validateOptions(cmd)
		},
		RunE: execute,
	}
)

func validateOptions(cmd *cobra.Command) error {
	if cmd.Flags().Changed("config") {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("unable to read config file: %w", err)
		}
	}

	// --engine only takes the CLI names; the config file also accepts aliases
	if f := cmd.Flags().Lookup("engine"); f != nil && f.Changed && !slices.Contains(cliEngines, f.Value.String()) {
		return fmt.Errorf("invalid engine %q (choose from %s)", f.Value.String(), strings.Join(cliEngines, ", "))
	}
	return nil
}

// interactive reports whether the run should open the form: no text and no
// flags other than --config.
func interactive(cmd *cobra.Command, args []string) bool {
	if len(args) > 0 {
		return false
	}
	n := 0
	cmd.Flags().Visit(func(f *pflag.Flag) {
		if f.Name != "config" {
			n++
		}
	})
	return n == 0
}

func execute(cmd *cobra.Command, args []string) error {
	cfg, err := tts.LoadConfigFromViper()
	if err != nil {
		return err
	}

	if interactive(cmd, args) {
		return runTUI(cfg)
	}

	kind, err := tts.ParseEngineKind(cfg.Engine)
	if err != nil {
		return err
	}

	opts := cliOptions{
		Input:    input,
		Engine:   kind,
		Language: cfg.Language,
		File:     outputFile,
		Play:     play,
		Speed:    cfg.Speed,
		Markdown: markdown,
	}
	if len(args) > 0 {
		opts.Text = args[0]
	}

	manager := engines.NewManager(cfg)
	defer manager.Close() //nolint:errcheck

	return runCLI(cmd.Context(), cmd.OutOrStdout(), cmd.InOrStdin(), opts, manager, audio.NewDispatcher(cfg.Player))
}

func runTUI(cfg tts.Config) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("the interactive form needs a terminal, pass TEXT or --input to use the command line")
	}

	// Read environment to get UI settings
	uiCfg, err := env.ParseAs[ui.Config]()
	if err != nil {
		return fmt.Errorf("error parsing config: %v", err)
	}

	// The form starts on the online engine unless one is configured
	uiCfg.Engine = tts.EngineCloud.String()
	if viper.IsSet("engine") {
		uiCfg.Engine = cfg.Engine
	}
	uiCfg.Language = cfg.Language
	uiCfg.Speed = cfg.Speed

	manager := engines.NewManager(cfg)
	defer manager.Close() //nolint:errcheck

	// Run Bubble Tea program
	if _, err := ui.NewProgram(uiCfg, manager, audio.NewDispatcher(cfg.Player)).Run(); err != nil {
		return fmt.Errorf("unable to run tui program: %w", err)
	}
	return nil
}

func main() {
	closer, err := setupLog()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errSilentExit) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		_ = closer()
		os.Exit(1)
	}
	_ = closer()
}

func init() {
	tryLoadConfigFromDefaultPlaces()
	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:7] + ")\n")
	}
	if Version == "" {
		Version = "unknown (built from source)"
	}
	rootCmd.Version = Version
	rootCmd.InitDefaultCompletionCmd()

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", fmt.Sprintf("config file (default %s)", viper.GetViper().ConfigFileUsed()))
	rootCmd.Flags().StringVarP(&input, "input", "i", "", "read text from a file (- for stdin)")
	rootCmd.Flags().String("engine", tts.EngineLocal.String(), "synthesis engine (offline or online)")
	rootCmd.Flags().String("lang", tts.DefaultLanguage, "language code")
	rootCmd.Flags().StringVar(&outputFile, "file", "", "save audio to this path")
	rootCmd.Flags().BoolVar(&play, "play", false, "play audio after generation")
	rootCmd.Flags().Float64("speed", tts.DefaultSpeed, "playback/synthesis speed multiplier (e.g. 0.5, 1.0, 2.0)")
	rootCmd.Flags().BoolVar(&markdown, "markdown", false, "strip markdown formatting before speaking")

	// Config bindings
	_ = viper.BindPFlag("engine", rootCmd.Flags().Lookup("engine"))
	_ = viper.BindPFlag("language", rootCmd.Flags().Lookup("lang"))
	_ = viper.BindPFlag("speed", rootCmd.Flags().Lookup("speed"))

	viper.SetDefault("debug", false)

	rootCmd.AddCommand(configCmd, manCmd)
}

func tryLoadConfigFromDefaultPlaces() {
	scope := gap.NewScope(gap.User, "utts")
	dirs, err := scope.ConfigDirs()
	if err != nil {
		fmt.Println("Could not load find configuration directory.")
		os.Exit(1)
	}

	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		dirs = append([]string{filepath.Join(c, "utts")}, dirs...)
	}

	if c := os.Getenv("UTTS_CONFIG_HOME"); c != "" {
		dirs = append([]string{c}, dirs...)
	}

	for _, v := range dirs {
		viper.AddConfigPath(v)
	}

	viper.SetConfigName("utts")
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("utts")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Warn("Could not parse configuration file", "err", err)
		}
	}

	if used := viper.ConfigFileUsed(); used != "" {
		log.Debug("Using configuration file", "path", viper.ConfigFileUsed())
		return
	}

	if viper.ConfigFileUsed() == "" {
		configFile = filepath.Join(dirs[0], "utts.yml")
	}
	if err := ensureConfigFile(); err != nil {
		log.Error("Could not create default configuration", "error", err)
	}
}
