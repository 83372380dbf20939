package source

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/RyanBlaney/latency-benchmark-common/logging"

	"github.com/RyanBlaney/brainwave-monitor/pkg/source/common"
)

// Sink receives ingested sample values
type Sink interface {
	Push(sample float64)
}

// IngestorConfig holds configuration for the ingestion loop
type IngestorConfig struct {
	// Pause after a failed pull before asking the source again
	ErrorBackoff time.Duration `json:"error_backoff"`
	// Emit a debug progress line every N samples; zero disables it
	LogEvery int64 `json:"log_every"`
}

// DefaultIngestorConfig returns the default ingestion settings
func DefaultIngestorConfig() *IngestorConfig {
	return &IngestorConfig{
		ErrorBackoff: 100 * time.Millisecond,
		LogEvery:     1024,
	}
}

// Ingestor moves samples from a source into a sink for the lifetime of the
// process. It is the only writer of the sink.
type Ingestor struct {
	source common.SampleSource
	sink   Sink
	config *IngestorConfig
	logger logging.Logger

	ingested   atomic.Int64
	pullErrors atomic.Int64

	mu           sync.RWMutex
	lastSampleAt time.Time
}

// NewIngestor creates an ingestor pulling from source into sink
func NewIngestor(source common.SampleSource, sink Sink, config *IngestorConfig, logger logging.Logger) *Ingestor {
	if config == nil {
		config = DefaultIngestorConfig()
	}
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}

	return &Ingestor{
		source: source,
		sink:   sink,
		config: config,
		logger: logger.WithFields(logging.Fields{
			"component":   "ingestor",
			"source_type": source.Type(),
		}),
	}
}

// Run pulls samples until ctx is done or the source is closed. Pull errors are
// logged and counted and the loop carries on. The source must already be open.
func (i *Ingestor) Run(ctx context.Context) error {
	i.logger.Info("Starting sample ingestion")

	for {
		sample, err := i.source.Next(ctx)
		if err != nil {
			switch {
			case ctx.Err() != nil:
				i.logger.Info("Sample ingestion stopped", logging.Fields{
					"samples_ingested": i.ingested.Load(),
					"pull_errors":      i.pullErrors.Load(),
				})
				return nil
			case errors.Is(err, common.ErrSourceClosed):
				i.logger.Info("Sample source closed, stopping ingestion", logging.Fields{
					"samples_ingested": i.ingested.Load(),
				})
				return nil
			}

			i.pullErrors.Add(1)
			i.logger.Warn("Failed to read sample", logging.Fields{
				"error":       err.Error(),
				"pull_errors": i.pullErrors.Load(),
			})

			if !i.backoff(ctx) {
				return nil
			}
			continue
		}

		i.sink.Push(sample.Value)
		n := i.ingested.Add(1)

		now := time.Now()
		i.mu.Lock()
		i.lastSampleAt = now
		i.mu.Unlock()

		if i.config.LogEvery > 0 && n%i.config.LogEvery == 0 {
			fields := logging.Fields{"samples_ingested": n}
			if !sample.Timestamp.IsZero() {
				fields["device_time"] = sample.Timestamp.Format(time.RFC3339Nano)
				fields["device_lag_ms"] = now.Sub(sample.Timestamp).Milliseconds()
			}
			i.logger.Debug("Ingestion progress", fields)
		}
	}
}

func (i *Ingestor) backoff(ctx context.Context) bool {
	if i.config.ErrorBackoff <= 0 {
		return ctx.Err() == nil
	}

	timer := time.NewTimer(i.config.ErrorBackoff)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// Stats returns the ingestion counters
func (i *Ingestor) Stats() common.SourceStats {
	i.mu.RLock()
	last := i.lastSampleAt
	i.mu.RUnlock()

	return common.SourceStats{
		Type:            i.source.Type(),
		SamplesIngested: i.ingested.Load(),
		PullErrors:      i.pullErrors.Load(),
		LastSampleAt:    last,
	}
}

// Source returns the source feeding the ingestor
func (i *Ingestor) Source() common.SampleSource {
	return i.source
}
