package configs

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/RyanBlaney/brainwave-monitor/pkg/eeg/analyzers"
	"github.com/RyanBlaney/brainwave-monitor/pkg/eeg/classifier"
	"github.com/RyanBlaney/brainwave-monitor/pkg/source/hardware"
	"github.com/RyanBlaney/brainwave-monitor/pkg/source/synthetic"
)

const (
	AppName   = "brainwave-monitor"
	EnvPrefix = "BRAINWAVE_MONITOR"
)

// SetDefaults sets default configuration values for all components
func SetDefaults(v *viper.Viper) {
	// Application defaults
	v.SetDefault("verbose", false)
	v.SetDefault("log_level", "info")
	v.SetDefault("output_format", "json")

	home, _ := os.UserHomeDir()
	v.SetDefault("config_dir", filepath.Join(home, ".config", AppName))

	setEEGDefaults(v)
	setSourceDefaults(v)

	// Server defaults
	v.SetDefault("server.addr", ":8000")
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "10s")
	v.SetDefault("server.shutdown_timeout", "5s")

	// Metrics defaults
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.prometheus", true)
	v.SetDefault("metrics.log_file", defaultMetricsLogFile())
	v.SetDefault("metrics.prefix", "brainwave")
}

// setEEGDefaults sets signal, band and estimator defaults
func setEEGDefaults(v *viper.Viper) {
	v.SetDefault("eeg.sample_rate", 256)
	v.SetDefault("eeg.window_seconds", 2)
	v.SetDefault("eeg.state_threshold", classifier.DefaultThreshold)

	bands := make([]map[string]any, 0, 4)
	for _, band := range analyzers.DefaultBands() {
		bands = append(bands, map[string]any{
			"name": band.Name,
			"low":  band.Low,
			"high": band.High,
		})
	}
	v.SetDefault("eeg.bands", bands)

	v.SetDefault("spectral.segment_length", 256)
	v.SetDefault("spectral.overlap", 0.5)
	v.SetDefault("spectral.window_function", string(analyzers.WindowHann))
}

// setSourceDefaults sets sample source defaults
func setSourceDefaults(v *viper.Viper) {
	hw := hardware.DefaultConfig()

	v.SetDefault("source.type", "synthetic")

	v.SetDefault("source.synthetic.mode", string(synthetic.ModeBeta))
	v.SetDefault("source.synthetic.baseline", synthetic.DefaultBaseline)
	v.SetDefault("source.synthetic.seed", 0)
	v.SetDefault("source.synthetic.paced", true)

	v.SetDefault("source.hardware.broker", hw.Broker)
	v.SetDefault("source.hardware.topic", hw.Topic)
	v.SetDefault("source.hardware.signal_type", hw.SignalType)
	v.SetDefault("source.hardware.client_id", "")
	v.SetDefault("source.hardware.qos", int(hw.QoS))
	v.SetDefault("source.hardware.connect_timeout", hw.ConnectTimeout.String())
	v.SetDefault("source.hardware.resolve_timeout", hw.ResolveTimeout.String())
	v.SetDefault("source.hardware.queue_size", hw.QueueSize)
}

// GetDefaultConfig returns a Config struct with all default values set
func GetDefaultConfig() *Config {
	home, _ := os.UserHomeDir()

	return &Config{
		Verbose:      false,
		LogLevel:     "info",
		OutputFormat: "json",
		ConfigDir:    filepath.Join(home, ".config", AppName),

		EEG:      GetDefaultEEGConfig(),
		Spectral: GetDefaultSpectralConfig(),
		Source:   GetDefaultSourceConfig(),
		Server:   GetDefaultServerConfig(),
		Metrics:  GetDefaultMetricsConfig(),
	}
}

// GetDefaultEEGConfig returns the 256 Hz, two second window defaults
func GetDefaultEEGConfig() EEGConfig {
	return EEGConfig{
		SampleRate:     256,
		WindowSeconds:  2,
		StateThreshold: classifier.DefaultThreshold,
		Bands:          analyzers.DefaultBands(),
	}
}

// GetDefaultSpectralConfig returns default Welch settings
func GetDefaultSpectralConfig() SpectralConfig {
	return SpectralConfig{
		SegmentLength:  256,
		Overlap:        0.5,
		WindowFunction: string(analyzers.WindowHann),
	}
}

// GetDefaultSourceConfig returns a synthetic beta source
func GetDefaultSourceConfig() SourceConfig {
	hw := hardware.DefaultConfig()

	return SourceConfig{
		Type: "synthetic",
		Synthetic: SyntheticSourceConfig{
			Mode:     string(synthetic.ModeBeta),
			Baseline: synthetic.DefaultBaseline,
			Paced:    true,
		},
		Hardware: HardwareSourceConfig{
			Broker:         hw.Broker,
			Topic:          hw.Topic,
			SignalType:     hw.SignalType,
			QoS:            int(hw.QoS),
			ConnectTimeout: hw.ConnectTimeout,
			ResolveTimeout: hw.ResolveTimeout,
			QueueSize:      hw.QueueSize,
		},
	}
}

// GetDefaultServerConfig returns default HTTP settings
func GetDefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:            ":8000",
		ReadTimeout:     10 * time.Second,
		WriteTimeout:    10 * time.Second,
		ShutdownTimeout: 5 * time.Second,
	}
}

// GetDefaultMetricsConfig returns default metric sink settings
func GetDefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Enabled:    false,
		Prometheus: true,
		LogFile:    defaultMetricsLogFile(),
		Prefix:     "brainwave",
	}
}

func defaultMetricsLogFile() string {
	return filepath.Join(os.TempDir(), AppName+"-metrics.log")
}

// DevelopmentConfig returns defaults tuned for local runs: debug logging and
// a seeded synthetic source so results repeat.
func DevelopmentConfig() *Config {
	config := GetDefaultConfig()
	config.Verbose = true
	config.LogLevel = "debug"
	config.Source.Synthetic.Seed = 42
	config.Server.Addr = "127.0.0.1:8000"
	return config
}
