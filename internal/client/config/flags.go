package config

import (
	"flag"

	"github.com/dmitrijs2005/aither/internal/flagx"
)

// parseFlags overlays cfg with the flags it knows about (-d, -m, -l, -r).
// Unknown arguments are filtered out first; a malformed known flag panics.
func parseFlags(cfg *Config, args []string) {
	args = flagx.FilterArgs(args, []string{"-d", "-m", "-l"}, []string{"-r"})

	fs := flag.NewFlagSet("aither", flag.ContinueOnError)
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "path of the SQLite database file")
	fs.StringVar(&cfg.GeminiModel, "m", cfg.GeminiModel, "Gemini model name")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level (debug, info, warn, error)")
	fs.BoolVar(&cfg.RenderMarkdown, "r", cfg.RenderMarkdown, "render assistant replies as Markdown")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
