package config

import (
	"flag"

	"github.com/avetisov/credkeeper/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-s string   base URL of the credkeeper server (default from Config)
//
// The function filters args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with subcommand words.
func parseFlags(cfg *Config, args []string) {
	filtered := flagx.FilterArgs(args, []string{"-s"})

	fs := flag.NewFlagSet("credctl", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerURL, "s", cfg.ServerURL, "base URL of the credkeeper server")

	if err := fs.Parse(filtered); err != nil {
		panic(err)
	}
}
