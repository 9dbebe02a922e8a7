package ui

// Config contains TUI-specific configuration.
type Config struct {
	// Initial selections, from flags or the config file
	Engine   string
	Language string
	Speed    float64

	// Languages offered by the language selector
	Languages []string `env:"UTTS_LANGUAGES" envSeparator:"," envDefault:"en,es,fr,de,it,pt,ru,ja,ko"`

	// Speeds offered by the speed selector; must include 1.0
	Speeds []float64 `env:"UTTS_SPEEDS" envSeparator:"," envDefault:"0.5,1.0,2.0"`

	// Default extension added to save paths without one
	SaveExt string `env:"UTTS_SAVE_EXT" envDefault:".mp3"`

	// For debugging the UI
	EnableMouse bool `env:"UTTS_ENABLE_MOUSE"`
	AltScreen   bool `env:"UTTS_ALT_SCREEN" envDefault:"true"`
}
