package analyzers

import (
	"fmt"
)

// Band names used throughout the monitor
const (
	BandDelta = "delta"
	BandTheta = "theta"
	BandAlpha = "alpha"
	BandBeta  = "beta"
)

// Band is a frequency interval (Low, High] in Hz. A frequency equal to Low
// belongs to the band below.
type Band struct {
	Name string  `json:"name" yaml:"name" mapstructure:"name"`
	Low  float64 `json:"low" yaml:"low" mapstructure:"low"`
	High float64 `json:"high" yaml:"high" mapstructure:"high"`
}

// Contains reports whether freq falls inside the band
func (b Band) Contains(freq float64) bool {
	return freq > b.Low && freq <= b.High
}

// BandPowers maps band name to relative power
type BandPowers map[string]float64

// Get returns the power of a band, zero when the band was not analysed
func (bp BandPowers) Get(name string) float64 {
	return bp[name]
}

// Sum returns the combined relative power of all bands
func (bp BandPowers) Sum() float64 {
	total := 0.0
	for _, p := range bp {
		total += p
	}
	return total
}

// DefaultBands returns the standard EEG band table
func DefaultBands() []Band {
	return []Band{
		{Name: BandDelta, Low: 0.5, High: 4},
		{Name: BandTheta, Low: 4, High: 8},
		{Name: BandAlpha, Low: 8, High: 12},
		{Name: BandBeta, Low: 12, High: 30},
	}
}

// ValidateBands checks band edges and that the classifier bands are present
func ValidateBands(bands []Band) error {
	if len(bands) == 0 {
		return fmt.Errorf("band table is empty")
	}

	seen := make(map[string]bool, len(bands))
	for _, b := range bands {
		if b.Name == "" {
			return fmt.Errorf("band with edges (%.2f, %.2f] has no name", b.Low, b.High)
		}
		if seen[b.Name] {
			return fmt.Errorf("duplicate band: %s", b.Name)
		}
		if b.Low < 0 || b.High <= b.Low {
			return fmt.Errorf("band %s has invalid edges (%.2f, %.2f]", b.Name, b.Low, b.High)
		}
		seen[b.Name] = true
	}

	for _, required := range []string{BandTheta, BandAlpha, BandBeta} {
		if !seen[required] {
			return fmt.Errorf("band table is missing required band: %s", required)
		}
	}

	return nil
}

// ThetaAlphaRatio returns theta/alpha, or 0 when alpha carries no power
func ThetaAlphaRatio(powers BandPowers) float64 {
	alpha := powers.Get(BandAlpha)
	if alpha <= 0 {
		return 0
	}
	return powers.Get(BandTheta) / alpha
}
