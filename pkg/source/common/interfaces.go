package common

import (
	"context"
	"time"
)

// SourceType represents the kind of sample source feeding the monitor
type SourceType string

const (
	SourceTypeSynthetic   SourceType = "synthetic"
	SourceTypeHardware    SourceType = "hardware"
	SourceTypeUnsupported SourceType = "unsupported"
)

// Sample is a single amplitude reading. Timestamp is the device clock when the
// source provides one and the zero time otherwise.
type Sample struct {
	Value     float64   `json:"value"`
	Timestamp time.Time `json:"timestamp,omitzero"`
}

// SampleSource produces one scalar sample at a time at the nominal sampling rate.
type SampleSource interface {
	// Type returns the source type this implementation provides.
	Type() SourceType

	// Open prepares the source. Sources backed by external devices resolve
	// their stream here and fail if none can be found.
	Open(ctx context.Context) error

	// Next blocks until the next sample is available or ctx is done.
	Next(ctx context.Context) (Sample, error)

	// Close releases any resources held by the source.
	Close() error
}

// SourceStats describes the ingestion state of a running source
type SourceStats struct {
	Type            SourceType `json:"type"`
	SamplesIngested int64      `json:"samples_ingested"`
	PullErrors      int64      `json:"pull_errors"`
	LastSampleAt    time.Time  `json:"last_sample_at,omitzero"`
}
