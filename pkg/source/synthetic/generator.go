package synthetic

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/RyanBlaney/latency-benchmark-common/logging"

	"github.com/RyanBlaney/brainwave-monitor/pkg/source/common"
)

// Mode selects the jitter amplitude of the simulated signal
type Mode string

const (
	ModeBeta   Mode = "beta"   // high variance
	ModeAlpha  Mode = "alpha"  // moderate variance
	ModeTheta  Mode = "theta"  // low variance
	ModeRandom Mode = "random" // minimal variance
)

// DefaultBaseline is the simulated resting amplitude in microvolts
const DefaultBaseline = 420.0

var amplitudes = map[Mode]float64{
	ModeBeta:   300,
	ModeAlpha:  150,
	ModeTheta:  80,
	ModeRandom: 20,
}

// ParseMode maps a configured mode name, or its variance alias, to a Mode
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "beta", "high", "high-variance":
		return ModeBeta, nil
	case "alpha", "moderate", "moderate-variance":
		return ModeAlpha, nil
	case "theta", "low", "low-variance":
		return ModeTheta, nil
	case "random", "minimal", "minimal-variance":
		return ModeRandom, nil
	}
	return "", fmt.Errorf("unknown synthetic mode: %q", s)
}

// Modes returns every supported mode from highest to lowest variance
func Modes() []Mode {
	return []Mode{ModeBeta, ModeAlpha, ModeTheta, ModeRandom}
}

// Amplitude returns the half-width of the uniform jitter for the mode
func (m Mode) Amplitude() float64 {
	return amplitudes[m]
}

// Config contains synthetic source settings
type Config struct {
	Mode       Mode    `json:"mode"`
	Baseline   float64 `json:"baseline"`
	SampleRate int     `json:"sample_rate"` // pacing in Hz; zero disables pacing
	Seed       int64   `json:"seed"`        // zero seeds from the clock
}

// DefaultConfig returns a 256 Hz beta-mode generator around the default baseline
func DefaultConfig() *Config {
	return &Config{
		Mode:       ModeBeta,
		Baseline:   DefaultBaseline,
		SampleRate: 256,
	}
}

// Source generates baseline + uniform jitter samples at the sampling rate
type Source struct {
	config *Config
	logger logging.Logger

	mu     sync.Mutex
	rng    *rand.Rand
	ticker *time.Ticker
	closed bool
	done   chan struct{}
}

// NewSource creates a synthetic source
func NewSource(config *Config, logger logging.Logger) (*Source, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}

	if _, ok := amplitudes[config.Mode]; !ok {
		return nil, common.NewSourceError(common.SourceTypeSynthetic, common.ErrCodeUnsupported,
			fmt.Sprintf("unknown synthetic mode: %q", config.Mode), nil)
	}

	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &Source{
		config: config,
		rng:    rand.New(rand.NewSource(seed)),
		done:   make(chan struct{}),
		logger: logger.WithFields(logging.Fields{
			"component": "synthetic_source",
			"mode":      config.Mode,
		}),
	}, nil
}

// Type returns the source type
func (s *Source) Type() common.SourceType {
	return common.SourceTypeSynthetic
}

// Open starts the sample clock
func (s *Source) Open(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return common.ErrSourceClosed
	}

	if s.config.SampleRate > 0 && s.ticker == nil {
		s.ticker = time.NewTicker(time.Second / time.Duration(s.config.SampleRate))
	}

	s.logger.Info("Synthetic source started", logging.Fields{
		"baseline":    s.config.Baseline,
		"amplitude":   s.config.Mode.Amplitude(),
		"sample_rate": s.config.SampleRate,
	})

	return nil
}

// Next waits for the next sample tick and returns a jittered sample
func (s *Source) Next(ctx context.Context) (common.Sample, error) {
	s.mu.Lock()
	ticker, closed := s.ticker, s.closed
	s.mu.Unlock()

	if closed {
		return common.Sample{}, common.ErrSourceClosed
	}

	if ticker != nil {
		select {
		case <-ctx.Done():
			return common.Sample{}, ctx.Err()
		case <-s.done:
			return common.Sample{}, common.ErrSourceClosed
		case <-ticker.C:
		}
	} else if err := ctx.Err(); err != nil {
		return common.Sample{}, err
	}

	return common.Sample{Value: s.generate()}, nil
}

// Close stops the sample clock
func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ticker != nil {
		s.ticker.Stop()
		s.ticker = nil
	}
	if !s.closed {
		close(s.done)
	}
	s.closed = true

	return nil
}

func (s *Source) generate() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	amplitude := s.config.Mode.Amplitude()
	return s.config.Baseline + (s.rng.Float64()*2-1)*amplitude
}
