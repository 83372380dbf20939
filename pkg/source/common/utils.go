package common

import (
	"strings"
)

// ParseSourceType maps a configured source name to a SourceType
func ParseSourceType(s string) SourceType {
	s = strings.ToLower(strings.TrimSpace(s))

	switch s {
	case "synthetic", "simulated", "fake":
		return SourceTypeSynthetic
	case "hardware", "device", "sensor", "mqtt":
		return SourceTypeHardware
	default:
		return SourceTypeUnsupported
	}
}

// NormalizeSignalType normalizes device signal types so "eeg", " EEG " and
// "Eeg" all resolve to the same stream.
func NormalizeSignalType(signalType string) string {
	return strings.ToUpper(strings.TrimSpace(signalType))
}
