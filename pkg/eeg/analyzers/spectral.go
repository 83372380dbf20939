package analyzers

import (
	"fmt"
	"math/cmplx"

	"github.com/RyanBlaney/latency-benchmark-common/logging"
	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/spectral"
	"gonum.org/v1/gonum/floats"
)

const (
	defaultSegmentLength = 256
	defaultOverlap       = 0.5
)

// SpectralConfig holds the parameters of the Welch estimate and band table
type SpectralConfig struct {
	SampleRate     int        `json:"sample_rate"`
	SegmentLength  int        `json:"segment_length"`
	Overlap        float64    `json:"overlap"` // fraction of a segment shared with the next
	WindowFunction WindowType `json:"window_function"`
	Bands          []Band     `json:"bands"`
}

// DefaultSpectralConfig returns the 256 Hz, 256-point Hann, 50% overlap setup
func DefaultSpectralConfig() *SpectralConfig {
	return &SpectralConfig{
		SampleRate:     256,
		SegmentLength:  defaultSegmentLength,
		Overlap:        defaultOverlap,
		WindowFunction: WindowHann,
		Bands:          DefaultBands(),
	}
}

// SpectralAnalyzer estimates power spectral density and relative band power.
// It holds only immutable configuration and is safe for concurrent use.
type SpectralAnalyzer struct {
	windowGenerator *WindowGenerator
	sampleRate      int
	segmentLength   int
	overlap         float64
	windowFunction  WindowType
	bands           []Band
	logger          logging.Logger
}

// PSDResult holds a one-sided power spectral density estimate
type PSDResult struct {
	Frequencies    []float64 `json:"frequencies"`     // Hz, 0..Nyquist
	Power          []float64 `json:"power"`           // density per bin (units^2/Hz)
	Segments       int       `json:"segments"`        // number of averaged segments
	SegmentLength  int       `json:"segment_length"`  // points per segment
	SampleRate     int       `json:"sample_rate"`     // sample rate
	FreqResolution float64   `json:"freq_resolution"` // Hz per bin
}

// TotalPower returns the summed density over the whole spectrum
func (r *PSDResult) TotalPower() float64 {
	return floats.Sum(r.Power)
}

// NewSpectralAnalyzer creates a new spectral analyzer
func NewSpectralAnalyzer(config *SpectralConfig, logger logging.Logger) (*SpectralAnalyzer, error) {
	if config == nil {
		config = DefaultSpectralConfig()
	}
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}

	if config.SampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %d", config.SampleRate)
	}

	segmentLength := config.SegmentLength
	if segmentLength <= 0 {
		segmentLength = defaultSegmentLength
	}

	overlap := config.Overlap
	if overlap < 0 || overlap >= 1 {
		return nil, fmt.Errorf("overlap must be in [0, 1), got %.2f", overlap)
	}

	windowGenerator := NewWindowGenerator()
	windowFunction := ParseWindowType(string(config.WindowFunction))
	if !windowGenerator.Supports(windowFunction) {
		return nil, fmt.Errorf("unsupported window function: %s", config.WindowFunction)
	}

	bands := config.Bands
	if len(bands) == 0 {
		bands = DefaultBands()
	}
	if err := ValidateBands(bands); err != nil {
		return nil, fmt.Errorf("invalid band table: %w", err)
	}

	return &SpectralAnalyzer{
		windowGenerator: windowGenerator,
		sampleRate:      config.SampleRate,
		segmentLength:   segmentLength,
		overlap:         overlap,
		windowFunction:  windowFunction,
		bands:           append([]Band(nil), bands...),
		logger: logger.WithFields(logging.Fields{
			"component":   "spectral_analyzer",
			"sample_rate": config.SampleRate,
		}),
	}, nil
}

// Bands returns a copy of the analyzer's band table
func (sa *SpectralAnalyzer) Bands() []Band {
	return append([]Band(nil), sa.bands...)
}

// Welch estimates the power spectral density of signal by averaging
// periodograms of overlapping, mean-detrended, windowed segments.
func (sa *SpectralAnalyzer) Welch(signal []float64) (*PSDResult, error) {
	if len(signal) == 0 {
		return nil, fmt.Errorf("empty signal")
	}

	nperseg := min(sa.segmentLength, len(signal))
	noverlap := int(float64(nperseg) * sa.overlap)

	win, err := sa.windowGenerator.Periodic(sa.windowFunction, nperseg)
	if err != nil {
		return nil, fmt.Errorf("failed to generate window: %w", err)
	}

	freqBins := nperseg/2 + 1
	fs := float64(sa.sampleRate)

	result := &PSDResult{
		Frequencies:    make([]float64, freqBins),
		Power:          make([]float64, freqBins),
		SegmentLength:  nperseg,
		SampleRate:     sa.sampleRate,
		FreqResolution: fs / float64(nperseg),
	}
	for i := range result.Frequencies {
		result.Frequencies[i] = float64(i) * result.FreqResolution
	}

	segments := spectral.Segment(signal, nperseg, noverlap)
	result.Segments = len(segments)

	// A constant signal has no spectral content once detrended
	if floats.Max(signal) == floats.Min(signal) {
		return result, nil
	}

	// density scaling: 1 / (fs * sum(w^2))
	scale := 1.0 / (fs * floats.Dot(win, win))

	for _, segment := range segments {
		floats.AddConst(-floats.Sum(segment)/float64(nperseg), segment)
		floats.Mul(segment, win)

		spectrum := fft.FFTReal(segment)

		for j := 0; j < freqBins; j++ {
			p := real(cmplx.Conj(spectrum[j])*spectrum[j]) * scale

			// fold negative frequencies; DC and Nyquist have no mirror
			if j > 0 && !(nperseg%2 == 0 && j == freqBins-1) {
				p *= 2
			}

			result.Power[j] += p / float64(len(segments))
		}
	}

	return result, nil
}

// RelativeBandPowers sums the density inside each band and divides by the
// power of the whole spectrum, including bins outside every band. Zero total
// power yields zero for every band.
func (sa *SpectralAnalyzer) RelativeBandPowers(psd *PSDResult) BandPowers {
	powers := make(BandPowers, len(sa.bands))
	total := psd.TotalPower()

	for _, band := range sa.bands {
		bandPower := 0.0
		for i, freq := range psd.Frequencies {
			if band.Contains(freq) {
				bandPower += psd.Power[i]
			}
		}

		if total > 0 {
			powers[band.Name] = bandPower / total
		} else {
			powers[band.Name] = 0
		}
	}

	return powers
}

// ComputeBandPowers runs the Welch estimate on signal and returns the relative
// power of every configured band.
func (sa *SpectralAnalyzer) ComputeBandPowers(signal []float64) (BandPowers, error) {
	logger := sa.logger.WithFields(logging.Fields{
		"function":      "ComputeBandPowers",
		"signal_length": len(signal),
	})

	psd, err := sa.Welch(signal)
	if err != nil {
		return nil, fmt.Errorf("failed to estimate power spectral density: %w", err)
	}

	powers := sa.RelativeBandPowers(psd)

	logger.Debug("Band powers computed", logging.Fields{
		"segments":        psd.Segments,
		"freq_resolution": psd.FreqResolution,
		"total_power":     psd.TotalPower(),
		"delta":           powers.Get(BandDelta),
		"theta":           powers.Get(BandTheta),
		"alpha":           powers.Get(BandAlpha),
		"beta":            powers.Get(BandBeta),
	})

	return powers, nil
}
