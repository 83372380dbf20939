package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/RyanBlaney/brainwave-monitor/configs"
	"github.com/RyanBlaney/brainwave-monitor/internal/app"
)

// configTestCmd represents the config test command
var configTestCmd = &cobra.Command{
	Use:   "config-test",
	Short: "Test and display all configuration values",
	Long: `Load the configuration and display every value to verify that your
configuration file and environment overrides are parsed correctly.

Examples:
  # Test with default config file
  brainwave-monitor config-test

  # Test with specific config file
  brainwave-monitor --config /path/to/config.yaml config-test

  # Test an environment override
  BRAINWAVE_MONITOR_EEG_SAMPLE_RATE=512 brainwave-monitor config-test`,
	RunE: runConfigTest,
}

// generateConfigCmd writes an example monitor configuration
var generateConfigCmd = &cobra.Command{
	Use:   "generate-config [output-file]",
	Short: "Write an example monitor configuration file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		outputFile := "brainwave-monitor.yaml"
		if len(args) == 1 {
			outputFile = args[0]
		}
		if err := app.GenerateExampleConfig(outputFile); err != nil {
			return err
		}
		printSuccess("Example configuration written to %s", outputFile)
		return nil
	},
}

// validateConfigCmd checks a monitor configuration file
var validateConfigCmd = &cobra.Command{
	Use:   "validate-config <config-file>",
	Short: "Validate a monitor configuration file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := app.ValidateConfigFile(args[0])
		if err != nil {
			printError("%v", err)
			return err
		}
		printSuccess("%s is valid (%s source, %d sample window)", args[0], config.SourceType(), config.WindowSize())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configTestCmd)
	rootCmd.AddCommand(generateConfigCmd)
	rootCmd.AddCommand(validateConfigCmd)
}

func runConfigTest(cmd *cobra.Command, args []string) error {
	fmt.Println("BRAINWAVE MONITOR CONFIGURATION TEST")
	fmt.Println(strings.Repeat("=", 80))

	config, err := configs.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	printSection("APPLICATION SETTINGS")
	printKeyValue("Verbose", fmt.Sprintf("%t", config.Verbose))
	printKeyValue("Log Level", config.LogLevel)
	printKeyValue("Output Format", config.OutputFormat)
	printKeyValue("Config Directory", config.ConfigDir)

	printSection("EEG CONFIGURATION")
	printKeyValue("Sample Rate", fmt.Sprintf("%d Hz", config.EEG.SampleRate))
	printKeyValue("Window", fmt.Sprintf("%d s (%d samples)", config.EEG.WindowSeconds, config.WindowSize()))
	printKeyValue("State Threshold", fmt.Sprintf("%.2f", config.EEG.StateThreshold))
	printSubsection(fmt.Sprintf("Bands (%d)", len(config.EEG.Bands)))
	for _, band := range config.EEG.Bands {
		printKeyValue("  "+titleCaser.String(band.Name), fmt.Sprintf("(%g, %g] Hz", band.Low, band.High))
	}

	printSection("SPECTRAL CONFIGURATION")
	printKeyValue("Segment Length", fmt.Sprintf("%d", config.Spectral.SegmentLength))
	printKeyValue("Overlap", fmt.Sprintf("%.2f", config.Spectral.Overlap))
	printKeyValue("Window Function", config.Spectral.WindowFunction)

	printSection("SOURCE CONFIGURATION")
	printKeyValue("Type", config.Source.Type)

	printSubsection("Synthetic")
	printKeyValue("  Mode", config.Source.Synthetic.Mode)
	printKeyValue("  Baseline", fmt.Sprintf("%.1f µV", config.Source.Synthetic.Baseline))
	printKeyValue("  Seed", fmt.Sprintf("%d", config.Source.Synthetic.Seed))
	printKeyValue("  Paced", fmt.Sprintf("%t", config.Source.Synthetic.Paced))

	printSubsection("Hardware")
	printKeyValue("  Broker", config.Source.Hardware.Broker)
	printKeyValue("  Topic", config.Source.Hardware.Topic)
	printKeyValue("  Signal Type", config.Source.Hardware.SignalType)
	printKeyValue("  Client ID", config.Source.Hardware.ClientID)
	printKeyValue("  QoS", fmt.Sprintf("%d", config.Source.Hardware.QoS))
	printKeyValue("  Connect Timeout", config.Source.Hardware.ConnectTimeout.String())
	printKeyValue("  Resolve Timeout", config.Source.Hardware.ResolveTimeout.String())
	printKeyValue("  Queue Size", fmt.Sprintf("%d", config.Source.Hardware.QueueSize))

	printSection("SERVER CONFIGURATION")
	printKeyValue("Address", config.Server.Addr)
	printKeyValue("Read Timeout", config.Server.ReadTimeout.String())
	printKeyValue("Write Timeout", config.Server.WriteTimeout.String())
	printKeyValue("Shutdown Timeout", config.Server.ShutdownTimeout.String())

	printSection("METRICS CONFIGURATION")
	printKeyValue("Enabled", fmt.Sprintf("%t", config.Metrics.Enabled))
	printKeyValue("Prometheus", fmt.Sprintf("%t", config.Metrics.Prometheus))
	printKeyValue("Log File", config.Metrics.LogFile)
	printKeyValue("Prefix", config.Metrics.Prefix)

	printSection("VALIDATION")
	if err := configs.ValidateConfig(config); err != nil {
		printKeyValue("Status", "INVALID")
		printKeyValue("Error", err.Error())
		return err
	}
	printKeyValue("Status", "VALID")

	fmt.Println()
	return nil
}

func printSubsection(title string) {
	fmt.Printf("\n  %s\n", title)
}
