package analyzers

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const (
	testSampleRate = 256
	testWindowSize = 512
)

type SpectralAnalyzerTestSuite struct {
	suite.Suite
	analyzer *SpectralAnalyzer
}

func (s *SpectralAnalyzerTestSuite) SetupTest() {
	analyzer, err := NewSpectralAnalyzer(DefaultSpectralConfig(), nil)
	s.Require().NoError(err)
	s.analyzer = analyzer
}

func TestSpectralAnalyzerSuite(t *testing.T) {
	suite.Run(t, new(SpectralAnalyzerTestSuite))
}

func sine(freq, amplitude, offset float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = offset + amplitude*math.Sin(2*math.Pi*freq*float64(i)/testSampleRate)
	}
	return out
}

func (s *SpectralAnalyzerTestSuite) TestWelchShape() {
	psd, err := s.analyzer.Welch(sine(10, 1, 0, testWindowSize))
	s.Require().NoError(err)

	s.Equal(3, psd.Segments, "512 samples with 256-point segments and 50% overlap")
	s.Equal(256, psd.SegmentLength)
	s.Len(psd.Frequencies, 129)
	s.Len(psd.Power, 129)
	s.InDelta(1.0, psd.FreqResolution, 1e-12)
	s.InDelta(0.0, psd.Frequencies[0], 1e-12)
	s.InDelta(128.0, psd.Frequencies[128], 1e-12)

	for i, p := range psd.Power {
		s.GreaterOrEqual(p, 0.0, "negative density at bin %d", i)
	}
}

func (s *SpectralAnalyzerTestSuite) TestWelchEmptySignal() {
	_, err := s.analyzer.Welch(nil)
	s.Error(err)
}

func (s *SpectralAnalyzerTestSuite) TestWelchShortSignalClampsSegment() {
	psd, err := s.analyzer.Welch(sine(10, 1, 0, 100))
	s.Require().NoError(err)

	s.Equal(1, psd.Segments)
	s.Equal(100, psd.SegmentLength)
	s.Len(psd.Power, 51)
}

// The mean of a sinusoid's density integrates to its variance (A^2/2).
func (s *SpectralAnalyzerTestSuite) TestWelchPowerMatchesVariance() {
	psd, err := s.analyzer.Welch(sine(16, 2, 420, testWindowSize))
	s.Require().NoError(err)

	integrated := psd.TotalPower() * psd.FreqResolution
	s.InEpsilon(2.0, integrated, 0.05)
}

func (s *SpectralAnalyzerTestSuite) TestDominantBand() {
	tests := []struct {
		name string
		freq float64
		band string
	}{
		{"delta", 2, BandDelta},
		{"theta", 6, BandTheta},
		{"alpha", 10, BandAlpha},
		{"beta", 20, BandBeta},
	}

	for _, tt := range tests {
		powers, err := s.analyzer.ComputeBandPowers(sine(tt.freq, 50, 420, testWindowSize))
		s.Require().NoError(err, tt.name)

		s.Greater(powers.Get(tt.band), 0.8, "%s sine should land in %s", tt.name, tt.band)
		for _, other := range []string{BandDelta, BandTheta, BandAlpha, BandBeta} {
			if other != tt.band {
				s.Less(powers.Get(other), 0.2, "%s sine leaked into %s", tt.name, other)
			}
		}
	}
}

func (s *SpectralAnalyzerTestSuite) TestConstantSignalYieldsZeroPowers() {
	signal := make([]float64, testWindowSize)
	for i := range signal {
		signal[i] = 420
	}

	powers, err := s.analyzer.ComputeBandPowers(signal)
	s.Require().NoError(err)

	for _, band := range DefaultBands() {
		s.Equal(0.0, powers.Get(band.Name), band.Name)
	}
	s.Equal(0.0, ThetaAlphaRatio(powers))
}

func (s *SpectralAnalyzerTestSuite) TestNoiseBandPowersAreBounded() {
	rng := rand.New(rand.NewSource(7))

	for trial := 0; trial < 20; trial++ {
		signal := make([]float64, testWindowSize)
		for i := range signal {
			signal[i] = 420 + (rng.Float64()*2-1)*300
		}

		powers, err := s.analyzer.ComputeBandPowers(signal)
		s.Require().NoError(err)

		for name, p := range powers {
			s.GreaterOrEqual(p, 0.0, name)
			s.LessOrEqual(p, 1.0, name)
		}

		sum := powers.Sum()
		s.Greater(sum, 0.0)
		s.LessOrEqual(sum, 1.0+1e-9)
	}
}

func (s *SpectralAnalyzerTestSuite) TestDeterministic() {
	rng := rand.New(rand.NewSource(42))
	signal := make([]float64, testWindowSize)
	for i := range signal {
		signal[i] = rng.NormFloat64()
	}

	first, err := s.analyzer.ComputeBandPowers(signal)
	s.Require().NoError(err)
	second, err := s.analyzer.ComputeBandPowers(signal)
	s.Require().NoError(err)

	s.Equal(first, second)
}

func (s *SpectralAnalyzerTestSuite) TestWelchDoesNotMutateInput() {
	signal := sine(10, 1, 5, testWindowSize)
	original := append([]float64(nil), signal...)

	_, err := s.analyzer.Welch(signal)
	s.Require().NoError(err)

	s.Equal(original, signal)
}

// Normalisation divides by the whole spectrum, so power outside the named
// bands (DC here) lowers every relative value.
func TestRelativeBandPowersUsesTotalSpectrum(t *testing.T) {
	analyzer, err := NewSpectralAnalyzer(DefaultSpectralConfig(), nil)
	require.NoError(t, err)

	psd := &PSDResult{
		Frequencies: []float64{0, 4, 8, 12, 30, 60},
		Power:       []float64{1, 1, 2, 2, 2, 2},
	}

	powers := analyzer.RelativeBandPowers(psd)

	assert.InDelta(t, 0.1, powers.Get(BandDelta), 1e-12, "4 Hz belongs to delta")
	assert.InDelta(t, 0.2, powers.Get(BandTheta), 1e-12, "8 Hz belongs to theta")
	assert.InDelta(t, 0.2, powers.Get(BandAlpha), 1e-12, "12 Hz belongs to alpha")
	assert.InDelta(t, 0.2, powers.Get(BandBeta), 1e-12, "30 Hz belongs to beta")
	assert.InDelta(t, 0.7, powers.Sum(), 1e-12)
}

func TestRelativeBandPowersZeroTotal(t *testing.T) {
	analyzer, err := NewSpectralAnalyzer(nil, nil)
	require.NoError(t, err)

	powers := analyzer.RelativeBandPowers(&PSDResult{
		Frequencies: []float64{0, 1, 2},
		Power:       []float64{0, 0, 0},
	})

	for _, band := range DefaultBands() {
		assert.Equal(t, 0.0, powers.Get(band.Name))
	}
}

func TestNewSpectralAnalyzerValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*SpectralConfig)
	}{
		{"zero sample rate", func(c *SpectralConfig) { c.SampleRate = 0 }},
		{"negative overlap", func(c *SpectralConfig) { c.Overlap = -0.1 }},
		{"full overlap", func(c *SpectralConfig) { c.Overlap = 1 }},
		{"unknown window", func(c *SpectralConfig) { c.WindowFunction = "kaiser" }},
		{"missing alpha band", func(c *SpectralConfig) {
			c.Bands = []Band{{Name: BandTheta, Low: 4, High: 8}, {Name: BandBeta, Low: 12, High: 30}}
		}},
		{"inverted band", func(c *SpectralConfig) {
			c.Bands = []Band{{Name: BandTheta, Low: 8, High: 4}, {Name: BandAlpha, Low: 8, High: 12}, {Name: BandBeta, Low: 12, High: 30}}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultSpectralConfig()
			tt.mutate(config)

			_, err := NewSpectralAnalyzer(config, nil)
			assert.Error(t, err)
		})
	}
}

func TestThetaAlphaRatio(t *testing.T) {
	assert.InDelta(t, 2.0, ThetaAlphaRatio(BandPowers{BandTheta: 0.4, BandAlpha: 0.2, BandBeta: 0.1}), 1e-12)
	assert.Equal(t, 0.0, ThetaAlphaRatio(BandPowers{BandTheta: 0.4, BandAlpha: 0}))
	assert.Equal(t, 0.0, ThetaAlphaRatio(BandPowers{}))
}

func TestBandContainsEdges(t *testing.T) {
	bands := DefaultBands()
	delta, theta := bands[0], bands[1]

	assert.True(t, delta.Contains(4))
	assert.False(t, theta.Contains(4))
	assert.True(t, theta.Contains(8))
	assert.False(t, delta.Contains(0.5))
}

func TestWindowGenerator(t *testing.T) {
	wg := NewWindowGenerator()

	hann, err := wg.Periodic(WindowHann, 256)
	require.NoError(t, err)
	require.Len(t, hann, 256)
	assert.InDelta(t, 0.0, hann[0], 1e-12)
	assert.InDelta(t, 1.0, hann[128], 1e-12, "periodic Hann peaks at N/2")

	rect, err := wg.Periodic(WindowRectangular, 8)
	require.NoError(t, err)
	for _, v := range rect {
		assert.Equal(t, 1.0, v)
	}

	_, err = wg.Periodic("kaiser", 8)
	assert.Error(t, err)

	_, err = wg.Periodic(WindowHann, 0)
	assert.Error(t, err)

	assert.Equal(t, WindowHann, ParseWindowType("Hanning"))
	assert.Equal(t, WindowRectangular, ParseWindowType("boxcar"))
}
