package app

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/RyanBlaney/brainwave-monitor/configs"
	"github.com/RyanBlaney/brainwave-monitor/pkg/eeg/analyzers"
)

// loadMonitorConfigFromFile overlays a monitor configuration file on base.
// Settings missing from the file keep their base value.
func loadMonitorConfigFromFile(filePath string, base *configs.Config) (*configs.Config, error) {
	// Check if file exists
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file does not exist: %s", filePath)
	}

	// Determine file format
	ext := filepath.Ext(filePath)
	switch ext {
	case ".yaml", ".yml":
		return loadMonitorConfigFromYAML(filePath, base)
	case ".json":
		return loadMonitorConfigFromJSON(filePath, base)
	default:
		// Try YAML first, then JSON
		if cfg, err := loadMonitorConfigFromYAML(filePath, base); err == nil {
			return cfg, nil
		}
		return loadMonitorConfigFromJSON(filePath, base)
	}
}

// loadMonitorConfigFromYAML loads monitor config from a YAML file
func loadMonitorConfigFromYAML(filePath string, base *configs.Config) (*configs.Config, error) {
	data, err := readConfigFile(filePath)
	if err != nil {
		return nil, err
	}

	config := copyConfig(base)
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}

	return config, nil
}

// loadMonitorConfigFromJSON loads monitor config from a JSON file
func loadMonitorConfigFromJSON(filePath string, base *configs.Config) (*configs.Config, error) {
	data, err := readConfigFile(filePath)
	if err != nil {
		return nil, err
	}

	// viper decodes "10s" style durations like the base configuration does
	v := viper.New()
	v.SetConfigType("json")
	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("failed to parse JSON config: %w", err)
	}

	config := copyConfig(base)
	if v.IsSet("eeg.bands") {
		config.EEG.Bands = nil
	}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to decode JSON config: %w", err)
	}

	return config, nil
}

func readConfigFile(filePath string) ([]byte, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return data, nil
}

func copyConfig(base *configs.Config) *configs.Config {
	if base == nil {
		return configs.GetDefaultConfig()
	}
	config := *base
	config.EEG.Bands = append([]analyzers.Band(nil), base.EEG.Bands...)
	return &config
}

// mergeMonitorConfig applies CLI flags on top of the loaded configuration
func mergeMonitorConfig(config *configs.Config, ctx *Context) *configs.Config {
	merged := copyConfig(config)

	if ctx.SourceType != "" {
		merged.Source.Type = ctx.SourceType
	}
	if ctx.Mode != "" {
		merged.Source.Synthetic.Mode = ctx.Mode
	}
	if ctx.Seed != 0 {
		merged.Source.Synthetic.Seed = ctx.Seed
	}
	if ctx.Addr != "" {
		merged.Server.Addr = ctx.Addr
	}
	if ctx.OutputFormat != "" {
		merged.OutputFormat = ctx.OutputFormat
	}
	if ctx.LogLevel != "" {
		merged.LogLevel = ctx.LogLevel
	}
	if ctx.Verbose {
		merged.Verbose = true
	}

	return merged
}

// GenerateExampleConfig writes an example monitor configuration as YAML
func GenerateExampleConfig(outputFile string) error {
	exampleConfig := configs.GetDefaultConfig()
	exampleConfig.Source.Synthetic.Seed = 42
	exampleConfig.Source.Hardware.ClientID = "brainwave-monitor-example"
	exampleConfig.Metrics.Enabled = true

	// Write to YAML file
	data, err := yaml.Marshal(exampleConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal example config: %w", err)
	}

	// Ensure directory exists
	dir := filepath.Dir(outputFile)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(outputFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ValidateConfigFile loads a monitor configuration file over the defaults
// and validates the result
func ValidateConfigFile(configFile string) (*configs.Config, error) {
	config, err := loadMonitorConfigFromFile(configFile, configs.GetDefaultConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := configs.ValidateConfig(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
