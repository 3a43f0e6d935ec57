package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/pebble/internal/config"
	"github.com/vango-dev/pebble/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ┌─┐┌─┐┌┐ ┌┐ ┬  ┌─┐
  ├─┘├┤ ├┴┐├┴┐│  ├┤
  ┴  └─┘└─┘└─┘┴─┘└─┘
`

// rootOptions are the flags shared by every command.
type rootOptions struct {
	configDir string
	logLevel  string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		errors.Fprint(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "pebble",
		Short: "Scoped reactive cells for Go",
		Long: `Pebble runs and serves catalogs of reactive cells.

Cells are named, lazily created values that live inside a boundary:

  • Plain cells hold a value
  • Computed cells derive a value from other cells
  • Proxy cells read and write through other cells
  • Custom cells bring their own tracking

Use 'pebble run' to play a scenario against a catalog and
'pebble serve' to inspect a live boundary over HTTP.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configDir, "config", "c", ".", "Directory containing pebble.json")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Override log.level from pebble.json")

	rootCmd.AddCommand(
		runCmd(opts),
		validateCmd(),
		serveCmd(opts),
		snapshotCmd(opts),
		versionCmd(),
	)

	return rootCmd
}

// loadConfig loads and validates pebble.json, applying flag overrides.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(o.configDir)
	if err != nil {
		return nil, err
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// logger builds the command logger. Logs go to stderr so that command
// output on stdout stays machine-readable.
func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	return cfg.NewLogger(w).With("version", version)
}

// printBanner prints the ASCII art banner.
func printBanner(w io.Writer) {
	fmt.Fprint(w, banner)
}

// success prints a success message.
func success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "  %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func warn(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[33m⚠\033[0m %s\n", fmt.Sprintf(format, args...))
}
