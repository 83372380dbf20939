package analyzers

import (
	"fmt"
	"strings"

	"github.com/mjibson/go-dsp/window"
)

// WindowType names a tapering window applied to each Welch segment
type WindowType string

const (
	WindowHann        WindowType = "hann"
	WindowHamming     WindowType = "hamming"
	WindowBlackman    WindowType = "blackman"
	WindowBartlett    WindowType = "bartlett"
	WindowFlatTop     WindowType = "flattop"
	WindowRectangular WindowType = "rectangular"
)

// WindowGenerator builds window coefficients backed by go-dsp/window
type WindowGenerator struct {
	functions map[WindowType]func(int) []float64
}

// NewWindowGenerator creates a window generator with all supported windows registered
func NewWindowGenerator() *WindowGenerator {
	return &WindowGenerator{
		functions: map[WindowType]func(int) []float64{
			WindowHann:        window.Hann,
			WindowHamming:     window.Hamming,
			WindowBlackman:    window.Blackman,
			WindowBartlett:    window.Bartlett,
			WindowFlatTop:     window.FlatTop,
			WindowRectangular: window.Rectangular,
		},
	}
}

// ParseWindowType normalizes a configured window name
func ParseWindowType(name string) WindowType {
	name = strings.ToLower(strings.TrimSpace(name))
	switch name {
	case "", "hanning":
		return WindowHann
	case "boxcar", "none":
		return WindowRectangular
	case "flat_top":
		return WindowFlatTop
	}
	return WindowType(name)
}

// Supports reports whether the generator knows the window type
func (wg *WindowGenerator) Supports(windowType WindowType) bool {
	_, ok := wg.functions[windowType]
	return ok
}

// Periodic returns a size-point periodic window, the DFT-even form used for
// spectral estimation: the symmetric size+1 window with its last point dropped.
func (wg *WindowGenerator) Periodic(windowType WindowType, size int) ([]float64, error) {
	fn, ok := wg.functions[windowType]
	if !ok {
		return nil, fmt.Errorf("unsupported window function: %s", windowType)
	}
	if size < 1 {
		return nil, fmt.Errorf("window size must be positive, got %d", size)
	}
	if size == 1 {
		return []float64{1}, nil
	}

	return fn(size + 1)[:size], nil
}
