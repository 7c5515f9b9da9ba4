package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"progress/internal/config"

	"github.com/spf13/cobra"
)

var (
	debug       bool
	upstreamURL string

	rootCmd = &cobra.Command{
		Use:   "progress",
		Short: "Timeline of recent GitHub issues and pull requests",
		Long: `progress fetches issue and pull request activity from the aggregation worker
and shows it newest first, marking quiet periods of more than a day.

Examples:
  progress serve                          # Serve the progress page on $PORT
  progress show                           # Print the timeline in the terminal
  progress show --server localhost:8080   # Print the timeline served by a running instance`,
		SilenceUsage: true,
	}
)

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&upstreamURL, "upstream", "",
		"Aggregation worker URL (overrides UPSTREAM_URL)")

	rootCmd.AddCommand(serveCmd, showCmd)
}

func newLogger(w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
}

func loadConfig() *config.Config {
	cfg := config.LoadFromEnv()
	if upstreamURL != "" {
		cfg.UpstreamURL = upstreamURL
	}
	return cfg
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
