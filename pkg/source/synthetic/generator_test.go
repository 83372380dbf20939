package synthetic

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanBlaney/brainwave-monitor/pkg/source/common"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		input    string
		expected Mode
		wantErr  bool
	}{
		{"beta", ModeBeta, false},
		{"High", ModeBeta, false},
		{"moderate", ModeAlpha, false},
		{" theta ", ModeTheta, false},
		{"low-variance", ModeTheta, false},
		{"minimal", ModeRandom, false},
		{"random", ModeRandom, false},
		{"gamma", "", true},
	}

	for _, tt := range tests {
		mode, err := ParseMode(tt.input)
		if tt.wantErr {
			assert.Error(t, err, tt.input)
			continue
		}
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.expected, mode, tt.input)
	}
}

func TestModeAmplitudesDecrease(t *testing.T) {
	modes := Modes()
	for i := 1; i < len(modes); i++ {
		assert.Greater(t, modes[i-1].Amplitude(), modes[i].Amplitude())
	}
}

func TestSamplesStayWithinAmplitude(t *testing.T) {
	for _, mode := range Modes() {
		src, err := NewSource(&Config{Mode: mode, Baseline: DefaultBaseline, Seed: 11}, nil)
		require.NoError(t, err)
		require.NoError(t, src.Open(context.Background()))

		minSeen, maxSeen := math.Inf(1), math.Inf(-1)
		for i := 0; i < 2000; i++ {
			sample, err := src.Next(context.Background())
			require.NoError(t, err)

			assert.InDelta(t, DefaultBaseline, sample.Value, mode.Amplitude(), "mode %s", mode)
			assert.True(t, sample.Timestamp.IsZero())
			minSeen = math.Min(minSeen, sample.Value)
			maxSeen = math.Max(maxSeen, sample.Value)
		}

		// the jitter should actually use most of its range
		assert.Greater(t, maxSeen-minSeen, mode.Amplitude(), "mode %s", mode)
		require.NoError(t, src.Close())
	}
}

func TestSeededSourcesAreReproducible(t *testing.T) {
	a, err := NewSource(&Config{Mode: ModeAlpha, Baseline: 0, Seed: 5}, nil)
	require.NoError(t, err)
	b, err := NewSource(&Config{Mode: ModeAlpha, Baseline: 0, Seed: 5}, nil)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		sa, _ := a.Next(context.Background())
		sb, _ := b.Next(context.Background())
		assert.Equal(t, sa, sb)
	}
}

func TestUnknownModeRejected(t *testing.T) {
	_, err := NewSource(&Config{Mode: "gamma"}, nil)
	require.Error(t, err)
	assert.True(t, common.IsSourceError(err, common.ErrCodeUnsupported))
}

func TestPacedNextHonoursContext(t *testing.T) {
	// one sample per second so the deadline fires first
	src, err := NewSource(&Config{Mode: ModeBeta, Baseline: DefaultBaseline, SampleRate: 1, Seed: 1}, nil)
	require.NoError(t, err)
	require.NoError(t, src.Open(context.Background()))
	defer src.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = src.Next(ctx)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestPacedNextProducesAtRate(t *testing.T) {
	src, err := NewSource(&Config{Mode: ModeTheta, Baseline: DefaultBaseline, SampleRate: 1000, Seed: 1}, nil)
	require.NoError(t, err)
	require.NoError(t, src.Open(context.Background()))
	defer src.Close()

	start := time.Now()
	for i := 0; i < 20; i++ {
		_, err := src.Next(context.Background())
		require.NoError(t, err)
	}

	assert.GreaterOrEqual(t, time.Since(start), 15*time.Millisecond)
}

func TestNextAfterClose(t *testing.T) {
	src, err := NewSource(nil, nil)
	require.NoError(t, err)
	require.NoError(t, src.Open(context.Background()))
	require.NoError(t, src.Close())

	_, err = src.Next(context.Background())
	assert.ErrorIs(t, err, common.ErrSourceClosed)
	assert.ErrorIs(t, src.Open(context.Background()), common.ErrSourceClosed)
}

func TestCloseUnblocksPacedNext(t *testing.T) {
	// one sample per second so Next is still waiting when Close runs
	src, err := NewSource(&Config{Mode: ModeAlpha, Baseline: DefaultBaseline, SampleRate: 1, Seed: 1}, nil)
	require.NoError(t, err)
	require.NoError(t, src.Open(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		_, err := src.Next(ctx)
		errCh <- err
	}()

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, src.Close())
	require.NoError(t, src.Close())

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, common.ErrSourceClosed)
	case <-time.After(time.Second):
		t.Fatal("Next did not return after Close")
	}
}
