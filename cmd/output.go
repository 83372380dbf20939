package cmd

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/RyanBlaney/brainwave-monitor/pkg/eeg"
	"github.com/RyanBlaney/brainwave-monitor/pkg/eeg/classifier"
)

// ANSI terminal colors
const (
	ColorReset  = "\033[0m"
	ColorBold   = "\033[1m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorBlue   = "\033[34m"
	ColorPurple = "\033[35m"
	ColorCyan   = "\033[36m"
	ColorWhite  = "\033[37m"
)

var titleCaser = cases.Title(language.English)

func printHeader(title, detail string) {
	fmt.Printf("%s%s%s%s: %s%s%s\n", ColorBold, ColorBlue, title, ColorReset, ColorCyan, detail, ColorReset)
	fmt.Printf("%s%s%s\n\n", ColorBlue, strings.Repeat("═", 80), ColorReset)
}

func printStep(num int, title string) {
	fmt.Printf("%s%s%d%s %s%s%s\n", ColorBold, ColorPurple, num, ColorReset, ColorWhite, title, ColorReset)
}

func printSectionHeader(title string) {
	fmt.Printf("%s%s%s%s\n", ColorBold, ColorBlue, title, ColorReset)
}

func printSuccess(format string, args ...any) {
	fmt.Printf("   %s✓%s %s\n", ColorGreen, ColorReset, fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	fmt.Printf("   %s⚠%s %s\n", ColorYellow, ColorReset, fmt.Sprintf(format, args...))
}

func printError(format string, args ...any) {
	fmt.Printf("   %s✗%s %s\n", ColorRed, ColorReset, fmt.Sprintf(format, args...))
}

func printInfo(format string, args ...any) {
	fmt.Printf("   %s•%s %s\n", ColorCyan, ColorReset, fmt.Sprintf(format, args...))
}

func printSection(title string) {
	fmt.Printf("\n%s\n", title)
	fmt.Println(strings.Repeat("-", len(title)))
}

func printKeyValue(key, value string) {
	if value == "" {
		fmt.Printf("%-35s\n", key)
	} else {
		fmt.Printf("%-35s %s\n", key+":", value)
	}
}

// stateColor picks a display color per cognitive state
func stateColor(state string) string {
	switch state {
	case classifier.StateBeta:
		return ColorRed
	case classifier.StateAlpha:
		return ColorGreen
	case classifier.StateTheta:
		return ColorPurple
	case classifier.StateCollecting:
		return ColorYellow
	default:
		return ColorWhite
	}
}

// powerBar renders a relative power as a 40 column bar
func powerBar(power float64) string {
	width := int(power*40 + 0.5)
	if width < 0 {
		width = 0
	}
	if width > 40 {
		width = 40
	}
	return strings.Repeat("█", width) + strings.Repeat("░", 40-width)
}

func displayAssessment(a eeg.Assessment) {
	printSectionHeader("Band Powers")
	for _, band := range []struct {
		name  string
		power float64
	}{
		{"theta", a.Theta},
		{"alpha", a.Alpha},
		{"beta", a.Beta},
	} {
		fmt.Printf("   %-6s %s %6.2f%%\n", titleCaser.String(band.name), powerBar(band.power), band.power*100)
	}
	fmt.Println()

	printSectionHeader("Cognitive State")
	color := stateColor(a.CognitiveState)
	fmt.Printf("   %s%s%s%s\n", ColorBold, color, a.CognitiveState, ColorReset)
	printInfo("Theta/alpha ratio: %.3f", a.ThetaAlphaRatio)
	printInfo("Timestamp: %s", a.Timestamp)
}
