package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/RyanBlaney/brainwave-monitor/internal/app"
)

var (
	assessSource        string
	assessMode          string
	assessSeed          int64
	assessTimeout       time.Duration
	assessOutputFile    string
	assessMonitorConfig string
	assessSummary       bool
)

// assessCmd represents the assess command
var assessCmd = &cobra.Command{
	Use:   "assess",
	Short: "Fill one window from the source and print its assessment",
	Long: `Collect one full window of samples from the configured source,
estimate the band powers and print the assessment through the selected
output format.

Examples:
  # Assess a synthetic signal and print JSON
  brainwave-monitor assess

  # Show a colored summary instead of formatted output
  brainwave-monitor assess --summary --mode theta

  # Assess a device stream and write YAML to a file
  brainwave-monitor assess --source hardware -o yaml --output-file result.yaml`,
	RunE: runAssess,
}

func init() {
	rootCmd.AddCommand(assessCmd)

	assessCmd.Flags().StringVar(&assessSource, "source", "",
		"sample source (synthetic, hardware)")
	assessCmd.Flags().StringVar(&assessMode, "mode", "",
		"synthetic signal mode (beta, alpha, theta, random)")
	assessCmd.Flags().Int64Var(&assessSeed, "seed", 0,
		"synthetic generator seed (0 seeds from the clock)")
	assessCmd.Flags().DurationVar(&assessTimeout, "timeout", 0,
		"maximum time to wait for a full window (default twice the window plus the resolve timeout)")
	assessCmd.Flags().StringVar(&assessOutputFile, "output-file", "",
		"write the formatted assessment to this file")
	assessCmd.Flags().StringVar(&assessMonitorConfig, "monitor-config", "",
		"monitor configuration file overlaid on the base configuration")
	assessCmd.Flags().BoolVar(&assessSummary, "summary", false,
		"print a colored summary instead of formatted output")
}

func runAssess(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	monitor, err := app.NewMonitorApp(&app.Context{
		ConfigFile:   assessMonitorConfig,
		OutputFile:   assessOutputFile,
		OutputFormat: outputFormat,
		SourceType:   assessSource,
		Mode:         assessMode,
		Seed:         assessSeed,
		Timeout:      assessTimeout,
		Verbose:      verbose,
		LogLevel:     logLevel,
	})
	if err != nil {
		return fmt.Errorf("failed to create monitor: %w", err)
	}

	if !assessSummary {
		return monitor.RunAssess(ctx)
	}

	config := monitor.Config()
	printHeader("Brainwave Assessment", string(config.SourceType()))
	printStep(1, fmt.Sprintf("Collecting %d samples at %d Hz", config.WindowSize(), config.EEG.SampleRate))

	start := time.Now()
	assessment, pipeline, err := monitor.Assess(ctx)
	if err != nil {
		printError("Assessment failed: %v", err)
		return err
	}

	stats := pipeline.Ingestor.Stats()
	printSuccess("Window filled in %v", time.Since(start).Round(time.Millisecond))
	if stats.PullErrors > 0 {
		printWarning("%d pull errors while filling", stats.PullErrors)
	}
	fmt.Println()

	printStep(2, "Assessment")
	displayAssessment(assessment)
	return nil
}
