package classifier

import (
	"github.com/RyanBlaney/brainwave-monitor/pkg/eeg/analyzers"
)

// Cognitive state labels
const (
	StateBeta        = "Beta (Focused)"
	StateAlpha       = "Alpha (Calm Readiness)"
	StateTheta       = "Theta (Relaxed/Creative)"
	StateLowActivity = "Low Activity"
	StateCollecting  = "Collecting data..."
)

// DefaultThreshold is the relative power a band must exceed to dominate
const DefaultThreshold = 0.30

// Rule labels a band power set when its predicate holds
type Rule struct {
	Label     string
	Predicate func(analyzers.BandPowers) bool
}

// Above builds a rule firing when band power is strictly greater than threshold
func Above(band string, threshold float64, label string) Rule {
	return Rule{
		Label: label,
		Predicate: func(powers analyzers.BandPowers) bool {
			return powers.Get(band) > threshold
		},
	}
}

// Classifier evaluates rules in order; the first match wins and the fallback
// label is used when none match.
type Classifier struct {
	rules    []Rule
	fallback string
}

// DefaultRules returns beta, alpha, theta checks in priority order
func DefaultRules() []Rule {
	return []Rule{
		Above(analyzers.BandBeta, DefaultThreshold, StateBeta),
		Above(analyzers.BandAlpha, DefaultThreshold, StateAlpha),
		Above(analyzers.BandTheta, DefaultThreshold, StateTheta),
	}
}

// New creates a classifier. Nil rules select DefaultRules.
func New(rules []Rule, fallback string) *Classifier {
	if rules == nil {
		rules = DefaultRules()
	}
	if fallback == "" {
		fallback = StateLowActivity
	}

	return &Classifier{
		rules:    append([]Rule(nil), rules...),
		fallback: fallback,
	}
}

// NewDefault returns the standard EEG state classifier
func NewDefault() *Classifier {
	return New(nil, "")
}

// Classify returns the label of the first matching rule
func (c *Classifier) Classify(powers analyzers.BandPowers) string {
	for _, rule := range c.rules {
		if rule.Predicate(powers) {
			return rule.Label
		}
	}
	return c.fallback
}

// Labels returns every label the classifier can produce, in rule order
func (c *Classifier) Labels() []string {
	labels := make([]string, 0, len(c.rules)+1)
	for _, rule := range c.rules {
		labels = append(labels, rule.Label)
	}
	return append(labels, c.fallback)
}
