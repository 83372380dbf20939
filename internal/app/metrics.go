package app

import (
	"context"
	"syscall"
	"time"

	"github.com/RyanBlaney/latency-benchmark-common/logging"
	"github.com/tunein/go-logging/v7/pkg/logger"
	"github.com/tunein/go-logging/v7/pkg/logger/logtypes"
	"github.com/tunein/go-logging/v7/pkg/rootcollector"
	"github.com/tunein/go-logging/v7/pkg/rootlogger"

	"github.com/RyanBlaney/brainwave-monitor/configs"
	"github.com/RyanBlaney/brainwave-monitor/pkg/eeg"
	"github.com/RyanBlaney/brainwave-monitor/pkg/eeg/classifier"
	"github.com/RyanBlaney/brainwave-monitor/pkg/source/common"
)

const ingestReportInterval = 10 * time.Second

var stateTags = map[string]string{
	classifier.StateBeta:        "beta",
	classifier.StateAlpha:       "alpha",
	classifier.StateTheta:       "theta",
	classifier.StateLowActivity: "low_activity",
	classifier.StateCollecting:  "collecting",
}

// metricsReporter sends assessment and ingestion metrics to rootcollector
type metricsReporter struct {
	prefix   string
	baseTags []string
	logger   logging.Logger
}

func newMetricsReporter(config configs.MetricsConfig, sourceType common.SourceType, appLogger logging.Logger) *metricsReporter {
	err := rootlogger.Configure(logger.LogOptions{
		Out:          config.LogFile,
		ReopenSignal: syscall.SIGHUP,
		Level:        logtypes.InfoLevel,
	})
	if err != nil {
		appLogger.Error(err, "Failed configuring metric log writer", logging.Fields{
			"log_file": config.LogFile,
		})
	}

	prefix := config.Prefix
	if prefix == "" {
		prefix = "brainwave"
	}

	return &metricsReporter{
		prefix:   prefix,
		baseTags: []string{"source:" + string(sourceType)},
		logger:   appLogger.WithFields(logging.Fields{"component": "metrics_reporter"}),
	}
}

// ObserveAssessment emits one count per assessment and the band figures of
// complete ones. Powers are sent in permille since metrics are integers.
func (r *metricsReporter) ObserveAssessment(a eeg.Assessment) {
	state, ok := stateTags[a.CognitiveState]
	if !ok {
		state = "unknown"
	}
	rootcollector.Metric(r.prefix+".assessment.count", 1, r.tags("state:"+state))

	if !a.Ready() {
		return
	}

	rootcollector.Metric(r.prefix+".band.relative_power.permille", int64(a.Theta*1000), r.tags("band:theta"))
	rootcollector.Metric(r.prefix+".band.relative_power.permille", int64(a.Alpha*1000), r.tags("band:alpha"))
	rootcollector.Metric(r.prefix+".band.relative_power.permille", int64(a.Beta*1000), r.tags("band:beta"))
	rootcollector.Metric(r.prefix+".theta_alpha_ratio.milli", int64(a.ThetaAlphaRatio*1000), r.tags())
}

// reportIngest emits ingestion counters
func (r *metricsReporter) reportIngest(stats common.SourceStats) {
	rootcollector.Metric(r.prefix+".ingest.samples", stats.SamplesIngested, r.tags())
	rootcollector.Metric(r.prefix+".ingest.errors", stats.PullErrors, r.tags())

	if !stats.LastSampleAt.IsZero() {
		rootcollector.Metric(r.prefix+".ingest.staleness.ms", time.Since(stats.LastSampleAt).Milliseconds(), r.tags())
	}
}

// run reports ingestion counters periodically until ctx is done
func (r *metricsReporter) run(ctx context.Context, stats func() common.SourceStats) {
	ticker := time.NewTicker(ingestReportInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.reportIngest(stats())
			return
		case <-ticker.C:
			r.reportIngest(stats())
		}
	}
}

func (r *metricsReporter) tags(extra ...string) []string {
	tags := make([]string, 0, len(r.baseTags)+len(extra))
	tags = append(tags, r.baseTags...)
	return append(tags, extra...)
}
