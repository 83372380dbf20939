// Package eeg turns the rolling sample window into cognitive state assessments.
package eeg

import (
	"time"

	"github.com/RyanBlaney/latency-benchmark-common/logging"

	"github.com/RyanBlaney/brainwave-monitor/pkg/eeg/analyzers"
	"github.com/RyanBlaney/brainwave-monitor/pkg/eeg/buffer"
	"github.com/RyanBlaney/brainwave-monitor/pkg/eeg/classifier"
)

// TimestampLayout is the format of Assessment.Timestamp
const TimestampLayout = "2006-01-02T15:04:05"

// Assessment is the result of one analysis pass over the window
type Assessment struct {
	Theta           float64 `json:"theta" yaml:"theta"`
	Alpha           float64 `json:"alpha" yaml:"alpha"`
	Beta            float64 `json:"beta" yaml:"beta"`
	ThetaAlphaRatio float64 `json:"theta_alpha_ratio" yaml:"theta_alpha_ratio"`
	CognitiveState  string  `json:"cognitive_state" yaml:"cognitive_state"`
	Timestamp       string  `json:"timestamp" yaml:"timestamp"`
}

// Ready reports whether the assessment came from a full window
func (a Assessment) Ready() bool {
	return a.CognitiveState != classifier.StateCollecting
}

// AssessorConfig wires the assessor to its window and analysis stages
type AssessorConfig struct {
	Window     *buffer.RollingWindow
	Analyzer   *analyzers.SpectralAnalyzer
	Classifier *classifier.Classifier
	Clock      func() time.Time
	Logger     logging.Logger
}

// Assessor produces assessments from snapshots of a shared window. It keeps
// no state between calls.
type Assessor struct {
	window     *buffer.RollingWindow
	analyzer   *analyzers.SpectralAnalyzer
	classifier *classifier.Classifier
	clock      func() time.Time
	logger     logging.Logger
}

// NewAssessor creates an assessor. Window and Analyzer are required.
func NewAssessor(config *AssessorConfig) *Assessor {
	logger := config.Logger
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}

	cls := config.Classifier
	if cls == nil {
		cls = classifier.NewDefault()
	}

	clock := config.Clock
	if clock == nil {
		clock = time.Now
	}

	return &Assessor{
		window:     config.Window,
		analyzer:   config.Analyzer,
		classifier: cls,
		clock:      clock,
		logger: logger.WithFields(logging.Fields{
			"component":   "assessor",
			"window_size": config.Window.Capacity(),
		}),
	}
}

// GetAssessment snapshots the window and assesses it. Until the window is
// full the all-zero "Collecting data..." result is returned.
func (a *Assessor) GetAssessment() Assessment {
	snapshot := a.window.Snapshot()
	timestamp := a.clock().Format(TimestampLayout)

	if len(snapshot) < a.window.Capacity() {
		a.logger.Debug("Window not full, returning collecting result", logging.Fields{
			"samples": len(snapshot),
		})
		return collecting(timestamp)
	}

	powers, err := a.analyzer.ComputeBandPowers(snapshot)
	if err != nil {
		a.logger.Error(err, "Failed to compute band powers", logging.Fields{
			"samples": len(snapshot),
		})
		return collecting(timestamp)
	}

	return Assessment{
		Theta:           powers.Get(analyzers.BandTheta),
		Alpha:           powers.Get(analyzers.BandAlpha),
		Beta:            powers.Get(analyzers.BandBeta),
		ThetaAlphaRatio: analyzers.ThetaAlphaRatio(powers),
		CognitiveState:  a.classifier.Classify(powers),
		Timestamp:       timestamp,
	}
}

// WindowFill returns the number of buffered samples and the window capacity
func (a *Assessor) WindowFill() (int, int) {
	return a.window.Len(), a.window.Capacity()
}

func collecting(timestamp string) Assessment {
	return Assessment{
		CognitiveState: classifier.StateCollecting,
		Timestamp:      timestamp,
	}
}
