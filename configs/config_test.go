package configs

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanBlaney/brainwave-monitor/pkg/eeg/analyzers"
	"github.com/RyanBlaney/brainwave-monitor/pkg/eeg/classifier"
	"github.com/RyanBlaney/brainwave-monitor/pkg/source/common"
	"github.com/RyanBlaney/brainwave-monitor/pkg/source/synthetic"
)

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)
	return v
}

func TestViperDefaultsMatchDefaultConfig(t *testing.T) {
	config, err := LoadConfigFrom(newViper())
	require.NoError(t, err)

	assert.Equal(t, GetDefaultConfig(), config)
	assert.NoError(t, ValidateConfig(config))
	assert.Equal(t, 512, config.WindowSize())
	assert.Equal(t, common.SourceTypeSynthetic, config.SourceType())
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("BRAINWAVE_MONITOR_EEG_SAMPLE_RATE", "128")
	t.Setenv("BRAINWAVE_MONITOR_SOURCE_TYPE", "hardware")
	t.Setenv("BRAINWAVE_MONITOR_SOURCE_HARDWARE_RESOLVE_TIMEOUT", "3s")

	config, err := LoadConfigFrom(newViper())
	require.NoError(t, err)

	assert.Equal(t, 128, config.EEG.SampleRate)
	assert.Equal(t, common.SourceTypeHardware, config.SourceType())
	assert.Equal(t, 3*time.Second, config.Source.Hardware.ResolveTimeout)
	assert.Equal(t, 256, config.WindowSize())
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"defaults", func(c *Config) {}, ""},
		{"zero sample rate", func(c *Config) { c.EEG.SampleRate = 0 }, "sample rate must be positive"},
		{"negative window", func(c *Config) { c.EEG.WindowSeconds = -1 }, "window seconds must be positive"},
		{"threshold above one", func(c *Config) { c.EEG.StateThreshold = 1.5 }, "state threshold"},
		{"missing alpha band", func(c *Config) {
			c.EEG.Bands = []analyzers.Band{
				{Name: analyzers.BandTheta, Low: 4, High: 8},
				{Name: analyzers.BandBeta, Low: 12, High: 30},
			}
		}, "invalid eeg bands"},
		{"zero segment", func(c *Config) { c.Spectral.SegmentLength = 0 }, "segment length"},
		{"full overlap", func(c *Config) { c.Spectral.Overlap = 1 }, "overlap"},
		{"unknown window", func(c *Config) { c.Spectral.WindowFunction = "kaiser" }, "unsupported window function"},
		{"window alias", func(c *Config) { c.Spectral.WindowFunction = "hanning" }, ""},
		{"unknown mode", func(c *Config) { c.Source.Synthetic.Mode = "gamma" }, "unknown synthetic mode"},
		{"mode alias", func(c *Config) { c.Source.Synthetic.Mode = "moderate" }, ""},
		{"unknown source", func(c *Config) { c.Source.Type = "lsl" }, "unsupported source type"},
		{"hardware without broker", func(c *Config) {
			c.Source.Type = "hardware"
			c.Source.Hardware.Broker = ""
		}, "broker is required"},
		{"hardware bad qos", func(c *Config) {
			c.Source.Type = "mqtt"
			c.Source.Hardware.QoS = 3
		}, "qos"},
		{"hardware no resolve timeout", func(c *Config) {
			c.Source.Type = "device"
			c.Source.Hardware.ResolveTimeout = 0
		}, "resolve timeout"},
		{"empty server addr", func(c *Config) { c.Server.Addr = "" }, "server address"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := GetDefaultConfig()
			tt.mutate(config)

			err := ValidateConfig(config)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConverters(t *testing.T) {
	config := GetDefaultConfig()
	config.Spectral.WindowFunction = "hanning"
	config.Source.Synthetic.Mode = "low"
	config.Source.Synthetic.Seed = 9
	config.Source.Hardware.QoS = 2

	spectral := config.ToSpectralConfig()
	assert.Equal(t, 256, spectral.SampleRate)
	assert.Equal(t, analyzers.WindowHann, spectral.WindowFunction)
	assert.Equal(t, analyzers.DefaultBands(), spectral.Bands)

	_, err := analyzers.NewSpectralAnalyzer(spectral, nil)
	require.NoError(t, err)

	syn, err := config.ToSyntheticConfig()
	require.NoError(t, err)
	assert.Equal(t, synthetic.ModeTheta, syn.Mode)
	assert.Equal(t, 256, syn.SampleRate)
	assert.Equal(t, int64(9), syn.Seed)

	config.Source.Synthetic.Paced = false
	syn, err = config.ToSyntheticConfig()
	require.NoError(t, err)
	assert.Zero(t, syn.SampleRate)

	hw := config.ToHardwareConfig()
	assert.Equal(t, byte(2), hw.QoS)
	assert.Equal(t, "EEG", hw.SignalType)
	assert.Equal(t, "devices/+/eeg", hw.Topic)
}

func TestToClassifierUsesThreshold(t *testing.T) {
	config := GetDefaultConfig()
	config.EEG.StateThreshold = 0.5

	cls := config.ToClassifier()
	powers := analyzers.BandPowers{analyzers.BandBeta: 0.4, analyzers.BandAlpha: 0.6}

	assert.Equal(t, classifier.StateAlpha, cls.Classify(powers))
	assert.Equal(t, classifier.StateBeta, GetDefaultConfig().ToClassifier().Classify(powers))
}

func TestDevelopmentConfig(t *testing.T) {
	config := DevelopmentConfig()

	assert.Equal(t, "debug", config.LogLevel)
	assert.NotZero(t, config.Source.Synthetic.Seed)
	assert.NoError(t, ValidateConfig(config))
}
