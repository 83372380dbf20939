package configs

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/RyanBlaney/brainwave-monitor/pkg/eeg/analyzers"
	"github.com/RyanBlaney/brainwave-monitor/pkg/eeg/classifier"
	"github.com/RyanBlaney/brainwave-monitor/pkg/source/common"
	"github.com/RyanBlaney/brainwave-monitor/pkg/source/hardware"
	"github.com/RyanBlaney/brainwave-monitor/pkg/source/synthetic"
)

// Config represents the application configuration
type Config struct {
	// Application settings
	Verbose      bool   `mapstructure:"verbose" yaml:"verbose" json:"verbose"`
	LogLevel     string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	OutputFormat string `mapstructure:"output_format" yaml:"output_format" json:"output_format"`
	ConfigDir    string `mapstructure:"config_dir" yaml:"config_dir" json:"config_dir"`

	// Signal and window configuration
	EEG EEGConfig `mapstructure:"eeg" yaml:"eeg" json:"eeg"`

	// Welch estimator configuration
	Spectral SpectralConfig `mapstructure:"spectral" yaml:"spectral" json:"spectral"`

	// Sample source selection
	Source SourceConfig `mapstructure:"source" yaml:"source" json:"source"`

	// HTTP endpoint configuration
	Server ServerConfig `mapstructure:"server" yaml:"server" json:"server"`

	// Metric sinks
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics" json:"metrics"`
}

// EEGConfig contains the sampling and classification settings
type EEGConfig struct {
	SampleRate     int              `mapstructure:"sample_rate" yaml:"sample_rate" json:"sample_rate"`
	WindowSeconds  int              `mapstructure:"window_seconds" yaml:"window_seconds" json:"window_seconds"`
	StateThreshold float64          `mapstructure:"state_threshold" yaml:"state_threshold" json:"state_threshold"`
	Bands          []analyzers.Band `mapstructure:"bands" yaml:"bands" json:"bands"`
}

// SpectralConfig contains power spectral density estimation settings
type SpectralConfig struct {
	SegmentLength  int     `mapstructure:"segment_length" yaml:"segment_length" json:"segment_length"`
	Overlap        float64 `mapstructure:"overlap" yaml:"overlap" json:"overlap"`
	WindowFunction string  `mapstructure:"window_function" yaml:"window_function" json:"window_function"`
}

// SourceConfig selects and configures the sample source
type SourceConfig struct {
	Type      string                `mapstructure:"type" yaml:"type" json:"type"`
	Synthetic SyntheticSourceConfig `mapstructure:"synthetic" yaml:"synthetic" json:"synthetic"`
	Hardware  HardwareSourceConfig  `mapstructure:"hardware" yaml:"hardware" json:"hardware"`
}

// SyntheticSourceConfig contains simulated signal settings
type SyntheticSourceConfig struct {
	Mode     string  `mapstructure:"mode" yaml:"mode" json:"mode"`
	Baseline float64 `mapstructure:"baseline" yaml:"baseline" json:"baseline"`
	Seed     int64   `mapstructure:"seed" yaml:"seed" json:"seed"`
	Paced    bool    `mapstructure:"paced" yaml:"paced" json:"paced"` // emit at the sample rate
}

// HardwareSourceConfig contains device stream settings
type HardwareSourceConfig struct {
	Broker         string        `mapstructure:"broker" yaml:"broker" json:"broker"`
	Topic          string        `mapstructure:"topic" yaml:"topic" json:"topic"`
	SignalType     string        `mapstructure:"signal_type" yaml:"signal_type" json:"signal_type"`
	ClientID       string        `mapstructure:"client_id" yaml:"client_id" json:"client_id"`
	QoS            int           `mapstructure:"qos" yaml:"qos" json:"qos"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout" yaml:"connect_timeout" json:"connect_timeout"`
	ResolveTimeout time.Duration `mapstructure:"resolve_timeout" yaml:"resolve_timeout" json:"resolve_timeout"`
	QueueSize      int           `mapstructure:"queue_size" yaml:"queue_size" json:"queue_size"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Addr            string        `mapstructure:"addr" yaml:"addr" json:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" yaml:"read_timeout" json:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" yaml:"write_timeout" json:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" json:"shutdown_timeout"`
}

// MetricsConfig contains metric sink settings
type MetricsConfig struct {
	Enabled    bool   `mapstructure:"enabled" yaml:"enabled" json:"enabled"`
	Prometheus bool   `mapstructure:"prometheus" yaml:"prometheus" json:"prometheus"`
	LogFile    string `mapstructure:"log_file" yaml:"log_file" json:"log_file"`
	Prefix     string `mapstructure:"prefix" yaml:"prefix" json:"prefix"`
}

// LoadConfig loads configuration from viper
func LoadConfig() (*Config, error) {
	return LoadConfigFrom(viper.GetViper())
}

// LoadConfigFrom decodes configuration from the given viper instance
func LoadConfigFrom(v *viper.Viper) (*Config, error) {
	config := &Config{}

	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unable to decode configuration: %w", err)
	}

	return config, nil
}

// ValidateConfig validates the configuration
func ValidateConfig(config *Config) error {
	if config.EEG.SampleRate <= 0 {
		return fmt.Errorf("eeg sample rate must be positive")
	}

	if config.EEG.WindowSeconds <= 0 {
		return fmt.Errorf("eeg window seconds must be positive")
	}

	if config.EEG.StateThreshold <= 0 || config.EEG.StateThreshold >= 1 {
		return fmt.Errorf("state threshold must be between 0 and 1")
	}

	if len(config.EEG.Bands) > 0 {
		if err := analyzers.ValidateBands(config.EEG.Bands); err != nil {
			return fmt.Errorf("invalid eeg bands: %w", err)
		}
	}

	if config.Spectral.SegmentLength <= 0 {
		return fmt.Errorf("spectral segment length must be positive")
	}

	if config.Spectral.Overlap < 0 || config.Spectral.Overlap >= 1 {
		return fmt.Errorf("spectral overlap must be in [0, 1)")
	}

	if !analyzers.NewWindowGenerator().Supports(analyzers.ParseWindowType(config.Spectral.WindowFunction)) {
		return fmt.Errorf("unsupported window function: %s", config.Spectral.WindowFunction)
	}

	switch common.ParseSourceType(config.Source.Type) {
	case common.SourceTypeSynthetic:
		if _, err := synthetic.ParseMode(config.Source.Synthetic.Mode); err != nil {
			return err
		}
	case common.SourceTypeHardware:
		hw := config.Source.Hardware
		if hw.Broker == "" {
			return fmt.Errorf("hardware broker is required")
		}
		if hw.Topic == "" {
			return fmt.Errorf("hardware topic is required")
		}
		if hw.QoS < 0 || hw.QoS > 2 {
			return fmt.Errorf("hardware qos must be 0, 1 or 2")
		}
		if hw.ResolveTimeout <= 0 {
			return fmt.Errorf("hardware resolve timeout must be positive")
		}
	default:
		return fmt.Errorf("unsupported source type: %s", config.Source.Type)
	}

	if config.Server.Addr == "" {
		return fmt.Errorf("server address is required")
	}

	return nil
}

// WindowSize returns the rolling window capacity in samples
func (c *Config) WindowSize() int {
	return c.EEG.SampleRate * c.EEG.WindowSeconds
}

// SourceType returns the configured source type
func (c *Config) SourceType() common.SourceType {
	return common.ParseSourceType(c.Source.Type)
}

// ToSpectralConfig builds the analyzer configuration
func (c *Config) ToSpectralConfig() *analyzers.SpectralConfig {
	bands := c.EEG.Bands
	if len(bands) == 0 {
		bands = analyzers.DefaultBands()
	}

	return &analyzers.SpectralConfig{
		SampleRate:     c.EEG.SampleRate,
		SegmentLength:  c.Spectral.SegmentLength,
		Overlap:        c.Spectral.Overlap,
		WindowFunction: analyzers.ParseWindowType(c.Spectral.WindowFunction),
		Bands:          append([]analyzers.Band(nil), bands...),
	}
}

// ToClassifier builds the state classifier for the configured threshold
func (c *Config) ToClassifier() *classifier.Classifier {
	threshold := c.EEG.StateThreshold
	if threshold <= 0 {
		threshold = classifier.DefaultThreshold
	}

	return classifier.New([]classifier.Rule{
		classifier.Above(analyzers.BandBeta, threshold, classifier.StateBeta),
		classifier.Above(analyzers.BandAlpha, threshold, classifier.StateAlpha),
		classifier.Above(analyzers.BandTheta, threshold, classifier.StateTheta),
	}, classifier.StateLowActivity)
}

// ToSyntheticConfig builds the synthetic source configuration
func (c *Config) ToSyntheticConfig() (*synthetic.Config, error) {
	mode, err := synthetic.ParseMode(c.Source.Synthetic.Mode)
	if err != nil {
		return nil, err
	}

	config := &synthetic.Config{
		Mode:     mode,
		Baseline: c.Source.Synthetic.Baseline,
		Seed:     c.Source.Synthetic.Seed,
	}
	if c.Source.Synthetic.Paced {
		config.SampleRate = c.EEG.SampleRate
	}
	return config, nil
}

// ToHardwareConfig builds the device source configuration
func (c *Config) ToHardwareConfig() *hardware.Config {
	hw := c.Source.Hardware
	return &hardware.Config{
		Broker:         hw.Broker,
		Topic:          hw.Topic,
		SignalType:     hw.SignalType,
		ClientID:       hw.ClientID,
		QoS:            byte(hw.QoS),
		ConnectTimeout: hw.ConnectTimeout,
		ResolveTimeout: hw.ResolveTimeout,
		QueueSize:      hw.QueueSize,
	}
}
