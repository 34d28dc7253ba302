package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

// Color scheme for vsixextract
var (
	// Primary actions
	Success = color.New(color.FgGreen)
	Error   = color.New(color.FgRed, color.Bold)
	Warning = color.New(color.FgYellow)
	Info    = color.New(color.FgCyan)

	// Secondary actions
	Muted = color.New(color.Faint)
	Bold  = color.New(color.Bold)

	// Relocation strategy colors
	StrategyExtensionDir = color.New(color.FgMagenta)
	StrategyContents     = color.New(color.FgBlue)
	StrategyNone         = color.New(color.Faint)
)

const separator = "────────────────────────────────────────"

// Status indicators are colored when printed so that InitColors applies.

// CheckMark returns the success indicator
func CheckMark() string { return color.GreenString("✓") }

// CrossMark returns the failure indicator
func CrossMark() string { return color.RedString("✗") }

// Arrow returns the info indicator
func Arrow() string { return color.CyanString("→") }

// Bullet returns the list bullet
func Bullet() string { return color.HiBlackString("•") }

// InitColors applies a color mode ("auto", "always" or "never"). In auto
// mode NO_COLOR and TERM=dumb disable colors.
func InitColors(mode string) {
	switch mode {
	case "always":
		EnableColors()
		return
	case "never":
		DisableColors()
		return
	}

	if os.Getenv("NO_COLOR") != "" || os.Getenv("TERM") == "dumb" {
		DisableColors()
	}
}

// PrintSuccess prints a success message
func PrintSuccess(w io.Writer, format string, args ...any) {
	Success.Fprintf(w, "%s %s\n", CheckMark(), fmt.Sprintf(format, args...))
}

// PrintError prints an error message
func PrintError(w io.Writer, format string, args ...any) {
	Error.Fprintf(w, "%s Error: %s\n", CrossMark(), fmt.Sprintf(format, args...))
}

// PrintWarning prints a warning message
func PrintWarning(w io.Writer, format string, args ...any) {
	Warning.Fprintf(w, "Warning: %s\n", fmt.Sprintf(format, args...))
}

// PrintInfo prints an info message
func PrintInfo(w io.Writer, format string, args ...any) {
	Info.Fprintf(w, "%s %s\n", Arrow(), fmt.Sprintf(format, args...))
}

// PrintKeyValue prints a key-value pair with color
func PrintKeyValue(w io.Writer, key, value string) {
	Bold.Fprintf(w, "%s: ", key)
	fmt.Fprintln(w, value)
}

// PrintHeader prints a section header
func PrintHeader(w io.Writer, text string) {
	fmt.Fprintln(w)
	Bold.Fprintln(w, text)
	Muted.Fprintln(w, separator)
}

// PrintList prints a bulleted list
func PrintList(w io.Writer, items []string) {
	for _, item := range items {
		fmt.Fprintf(w, "  %s %s\n", Bullet(), item)
	}
}

// ColorizeStrategy returns a colored relocation strategy name
func ColorizeStrategy(strategy string) string {
	switch strategy {
	case "extension-dir":
		return StrategyExtensionDir.Sprint(strategy)
	case "contents":
		return StrategyContents.Sprint(strategy)
	case "none":
		return StrategyNone.Sprint(strategy)
	default:
		return strategy
	}
}

// ColorizeStatus returns a colored history status
func ColorizeStatus(status string) string {
	switch status {
	case "success":
		return Success.Sprint(status)
	case "failed":
		return Error.Sprint(status)
	default:
		return status
	}
}

// DisableColors disables all color output
func DisableColors() {
	color.NoColor = true
}

// EnableColors enables color output
func EnableColors() {
	color.NoColor = false
}
