package source

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanBlaney/brainwave-monitor/pkg/source/common"
	"github.com/RyanBlaney/brainwave-monitor/pkg/source/synthetic"
)

func TestNewFactory(t *testing.T) {
	factory := NewFactory(nil, nil)

	assert.Equal(t, []common.SourceType{common.SourceTypeHardware, common.SourceTypeSynthetic},
		factory.SupportedTypes())

	for _, sourceType := range factory.SupportedTypes() {
		src, err := factory.CreateSource(sourceType)
		require.NoError(t, err, sourceType)
		assert.Equal(t, sourceType, src.Type())
	}
}

func TestCreateSource(t *testing.T) {
	tests := []struct {
		sourceType  common.SourceType
		expectedErr error
	}{
		{common.SourceTypeSynthetic, nil},
		{common.SourceTypeHardware, nil},
		{common.SourceTypeUnsupported, errors.New("unsupported source type: unsupported")},
		{"lsl", errors.New("unsupported source type: lsl")},
	}

	factory := NewFactory(nil, nil)
	for _, tt := range tests {
		src, err := factory.CreateSource(tt.sourceType)
		if tt.expectedErr != nil {
			require.Error(t, err)
			assert.Equal(t, tt.expectedErr.Error(), err.Error())
			assert.True(t, common.IsSourceError(err, common.ErrCodeUnsupported))
			assert.Nil(t, src)
			continue
		}
		require.NoError(t, err)
		assert.NotNil(t, src)
	}
}

func TestCreateSourcePassesConfig(t *testing.T) {
	factory := NewFactory(&FactoryConfig{
		Synthetic: &synthetic.Config{Mode: synthetic.ModeRandom, Baseline: 10, Seed: 3},
	}, nil)

	src, err := factory.CreateSource(common.SourceTypeSynthetic)
	require.NoError(t, err)

	sample, err := src.Next(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 10, sample.Value, synthetic.ModeRandom.Amplitude())
}

func TestCreateSourceReportsConstructorError(t *testing.T) {
	factory := NewFactory(&FactoryConfig{
		Synthetic: &synthetic.Config{Mode: "gamma"},
	}, nil)

	_, err := factory.CreateSource(common.SourceTypeSynthetic)
	assert.True(t, common.IsSourceError(err, common.ErrCodeUnsupported))
}

func TestRegisterSource(t *testing.T) {
	factory := NewFactory(nil, nil)
	scripted := &scriptedSource{}

	factory.RegisterSource("replay", func() (common.SampleSource, error) {
		return scripted, nil
	})

	src, err := factory.CreateSource("replay")
	require.NoError(t, err)
	assert.Same(t, scripted, src)
	assert.Contains(t, factory.SupportedTypes(), common.SourceType("replay"))
}
