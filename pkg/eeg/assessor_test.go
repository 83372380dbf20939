package eeg

import (
	"math"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanBlaney/brainwave-monitor/pkg/eeg/analyzers"
	"github.com/RyanBlaney/brainwave-monitor/pkg/eeg/buffer"
	"github.com/RyanBlaney/brainwave-monitor/pkg/eeg/classifier"
)

var fixedTime = time.Date(2025, 3, 14, 9, 26, 53, 0, time.Local)

func newTestAssessor(t *testing.T, sampleRate, windowSeconds int) (*Assessor, *buffer.RollingWindow) {
	t.Helper()

	config := analyzers.DefaultSpectralConfig()
	config.SampleRate = sampleRate
	analyzer, err := analyzers.NewSpectralAnalyzer(config, nil)
	require.NoError(t, err)

	window := buffer.NewRollingWindow(sampleRate * windowSeconds)

	return NewAssessor(&AssessorConfig{
		Window:   window,
		Analyzer: analyzer,
		Clock:    func() time.Time { return fixedTime },
	}), window
}

func TestGetAssessmentCollectingUntilFull(t *testing.T) {
	assessor, window := newTestAssessor(t, 256, 2)
	rng := rand.New(rand.NewSource(1))

	sentinel := Assessment{
		CognitiveState: classifier.StateCollecting,
		Timestamp:      "2025-03-14T09:26:53",
	}

	assert.Equal(t, sentinel, assessor.GetAssessment())

	for i := 0; i < 511; i++ {
		window.Push(420 + (rng.Float64()*2-1)*300)
		if i%64 == 0 {
			assert.Equal(t, sentinel, assessor.GetAssessment(), "after %d samples", i+1)
		}
	}
	assert.Equal(t, sentinel, assessor.GetAssessment(), "511 samples")
	assert.False(t, assessor.GetAssessment().Ready())

	window.Push(420)

	result := assessor.GetAssessment()
	assert.True(t, result.Ready())
	assert.NotEqual(t, classifier.StateCollecting, result.CognitiveState)
	assert.Contains(t, classifier.NewDefault().Labels(), result.CognitiveState)
	assert.Equal(t, "2025-03-14T09:26:53", result.Timestamp)
}

func TestGetAssessmentIdempotent(t *testing.T) {
	assessor, window := newTestAssessor(t, 256, 2)
	rng := rand.New(rand.NewSource(3))

	for i := 0; i < 700; i++ {
		window.Push(rng.NormFloat64())
	}

	assert.Equal(t, assessor.GetAssessment(), assessor.GetAssessment())
}

func TestGetAssessmentConstantInput(t *testing.T) {
	assessor, window := newTestAssessor(t, 256, 2)
	for i := 0; i < 512; i++ {
		window.Push(420)
	}

	result := assessor.GetAssessment()
	assert.Equal(t, 0.0, result.Theta)
	assert.Equal(t, 0.0, result.Alpha)
	assert.Equal(t, 0.0, result.Beta)
	assert.Equal(t, 0.0, result.ThetaAlphaRatio)
	assert.Equal(t, classifier.StateLowActivity, result.CognitiveState)
}

func TestGetAssessmentAlphaRhythm(t *testing.T) {
	assessor, window := newTestAssessor(t, 256, 2)
	for i := 0; i < 512; i++ {
		window.Push(420 + 40*math.Sin(2*math.Pi*10*float64(i)/256))
	}

	result := assessor.GetAssessment()
	assert.Equal(t, classifier.StateAlpha, result.CognitiveState)
	assert.Greater(t, result.Alpha, 0.8)
	assert.InDelta(t, result.Theta/result.Alpha, result.ThetaAlphaRatio, 1e-12)
}

func TestGetAssessmentSmallWindow(t *testing.T) {
	// 64 Hz x 1 s = 64 samples, shorter than the default segment length
	assessor, window := newTestAssessor(t, 64, 1)
	for i := 0; i < 64; i++ {
		window.Push(math.Sin(2 * math.Pi * 20 * float64(i) / 64))
	}

	result := assessor.GetAssessment()
	assert.Equal(t, classifier.StateBeta, result.CognitiveState)
	fill, capacity := assessor.WindowFill()
	assert.Equal(t, 64, fill)
	assert.Equal(t, 64, capacity)
}

func TestGetAssessmentConcurrentWithProducer(t *testing.T) {
	assessor, window := newTestAssessor(t, 256, 2)

	var wg sync.WaitGroup
	stop := make(chan struct{})

	wg.Add(1)
	go func() {
		defer wg.Done()
		rng := rand.New(rand.NewSource(9))
		for {
			select {
			case <-stop:
				return
			default:
				window.Push(420 + (rng.Float64()*2-1)*150)
			}
		}
	}()

	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				result := assessor.GetAssessment()
				if !result.Ready() {
					continue
				}
				for _, p := range []float64{result.Theta, result.Alpha, result.Beta} {
					if p < 0 || p > 1 {
						t.Errorf("band power out of range: %v", p)
					}
				}
			}
		}()
	}

	time.Sleep(50 * time.Millisecond)
	close(stop)
	wg.Wait()
}
