package source

import (
	"fmt"
	"sort"
	"sync"

	"github.com/RyanBlaney/latency-benchmark-common/logging"

	"github.com/RyanBlaney/brainwave-monitor/pkg/source/common"
	"github.com/RyanBlaney/brainwave-monitor/pkg/source/hardware"
	"github.com/RyanBlaney/brainwave-monitor/pkg/source/synthetic"
)

// Constructor builds a fresh sample source
type Constructor func() (common.SampleSource, error)

// FactoryConfig carries the settings handed to the built-in sources
type FactoryConfig struct {
	Synthetic *synthetic.Config
	Hardware  *hardware.Config
}

// Factory creates sample sources by type
type Factory struct {
	constructors map[common.SourceType]Constructor
	mu           sync.RWMutex
}

// NewFactory creates a factory with the synthetic and hardware sources registered
func NewFactory(config *FactoryConfig, logger logging.Logger) *Factory {
	if config == nil {
		config = &FactoryConfig{}
	}
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}

	f := &Factory{
		constructors: make(map[common.SourceType]Constructor),
	}

	f.RegisterSource(common.SourceTypeSynthetic, func() (common.SampleSource, error) {
		return synthetic.NewSource(config.Synthetic, logger)
	})
	f.RegisterSource(common.SourceTypeHardware, func() (common.SampleSource, error) {
		return hardware.NewSource(config.Hardware, nil, logger), nil
	})

	return f
}

// CreateSource creates a source of the given type
func (f *Factory) CreateSource(sourceType common.SourceType) (common.SampleSource, error) {
	f.mu.RLock()
	constructor, exists := f.constructors[sourceType]
	f.mu.RUnlock()

	if !exists {
		return nil, common.NewSourceError(
			sourceType, common.ErrCodeUnsupported,
			fmt.Sprintf("unsupported source type: %s", sourceType),
			nil,
		)
	}

	return constructor()
}

// RegisterSource registers or replaces the constructor for a source type
func (f *Factory) RegisterSource(sourceType common.SourceType, constructor Constructor) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.constructors[sourceType] = constructor
}

// SupportedTypes returns the registered source types in name order
func (f *Factory) SupportedTypes() []common.SourceType {
	f.mu.RLock()
	defer f.mu.RUnlock()

	types := make([]common.SourceType, 0, len(f.constructors))
	for sourceType := range f.constructors {
		types = append(types, sourceType)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}
