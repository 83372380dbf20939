package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/RyanBlaney/brainwave-monitor/internal/app"
)

var (
	serveSource        string
	serveMode          string
	serveAddr          string
	serveSeed          int64
	serveMonitorConfig string
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Ingest EEG samples and serve the latest assessment over HTTP",
	Long: `Open the configured sample source, keep the most recent window of
samples and serve the band power assessment of that window.

Endpoints:
  GET /eeg-latest   latest assessment, or a collecting sentinel while the
                    window is still filling
  GET /health       window fill and source counters
  GET /metrics      Prometheus exposition (when enabled)

Examples:
  # Serve a synthetic high-variance signal on the default port
  brainwave-monitor serve

  # Serve a reproducible alpha-mode signal on another port
  brainwave-monitor serve --mode alpha --seed 42 --addr :9000

  # Serve a device stream published over MQTT
  brainwave-monitor serve --source hardware

  # Overlay a monitor configuration file
  brainwave-monitor serve --monitor-config ./monitor.yaml`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveSource, "source", "",
		"sample source (synthetic, hardware)")
	serveCmd.Flags().StringVar(&serveMode, "mode", "",
		"synthetic signal mode (beta, alpha, theta, random)")
	serveCmd.Flags().StringVar(&serveAddr, "addr", "",
		"HTTP listen address (default :8000)")
	serveCmd.Flags().Int64Var(&serveSeed, "seed", 0,
		"synthetic generator seed (0 seeds from the clock)")
	serveCmd.Flags().StringVar(&serveMonitorConfig, "monitor-config", "",
		"monitor configuration file overlaid on the base configuration")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	monitor, err := app.NewMonitorApp(&app.Context{
		ConfigFile:   serveMonitorConfig,
		OutputFormat: outputFormat,
		SourceType:   serveSource,
		Mode:         serveMode,
		Addr:         serveAddr,
		Seed:         serveSeed,
		Verbose:      verbose,
		LogLevel:     logLevel,
	})
	if err != nil {
		return fmt.Errorf("failed to create monitor: %w", err)
	}

	if err := monitor.Serve(ctx); err != nil {
		return fmt.Errorf("monitor stopped: %w", err)
	}
	return nil
}
