package app

import (
	"fmt"

	"github.com/RyanBlaney/latency-benchmark-common/logging"

	"github.com/RyanBlaney/brainwave-monitor/configs"
	"github.com/RyanBlaney/brainwave-monitor/pkg/eeg"
	"github.com/RyanBlaney/brainwave-monitor/pkg/eeg/analyzers"
	"github.com/RyanBlaney/brainwave-monitor/pkg/eeg/buffer"
	"github.com/RyanBlaney/brainwave-monitor/pkg/source"
	"github.com/RyanBlaney/brainwave-monitor/pkg/source/common"
)

// Pipeline is the assembled source -> window -> assessment chain
type Pipeline struct {
	Window   *buffer.RollingWindow
	Analyzer *analyzers.SpectralAnalyzer
	Assessor *eeg.Assessor
	Source   common.SampleSource
	Ingestor *source.Ingestor
}

// NewSourceFactory creates a source factory from the configured source settings
func NewSourceFactory(config *configs.Config, logger logging.Logger) (*source.Factory, error) {
	syntheticConfig, err := config.ToSyntheticConfig()
	if err != nil {
		return nil, fmt.Errorf("invalid synthetic source configuration: %w", err)
	}

	return source.NewFactory(&source.FactoryConfig{
		Synthetic: syntheticConfig,
		Hardware:  config.ToHardwareConfig(),
	}, logger), nil
}

// BuildPipeline wires the components described by config. A nil factory
// builds one from config.
func BuildPipeline(config *configs.Config, factory *source.Factory, logger logging.Logger) (*Pipeline, error) {
	if factory == nil {
		var err error
		factory, err = NewSourceFactory(config, logger)
		if err != nil {
			return nil, err
		}
	}

	analyzer, err := analyzers.NewSpectralAnalyzer(config.ToSpectralConfig(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create spectral analyzer: %w", err)
	}

	window := buffer.NewRollingWindow(config.WindowSize())

	src, err := factory.CreateSource(config.SourceType())
	if err != nil {
		return nil, fmt.Errorf("failed to create sample source: %w", err)
	}

	return &Pipeline{
		Window:   window,
		Analyzer: analyzer,
		Assessor: eeg.NewAssessor(&eeg.AssessorConfig{
			Window:     window,
			Analyzer:   analyzer,
			Classifier: config.ToClassifier(),
			Logger:     logger,
		}),
		Source:   src,
		Ingestor: source.NewIngestor(src, window, nil, logger),
	}, nil
}
