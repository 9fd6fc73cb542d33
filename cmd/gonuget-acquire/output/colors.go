// Package output provides console output formatting and colorization for
// the gonuget-acquire CLI.
package output

import (
	"io"
	"os"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// Color schemes
var (
	ColorSuccess = color.New(color.FgGreen)
	ColorError   = color.New(color.FgRed)
	ColorWarning = color.New(color.FgYellow)
	ColorInfo    = color.New(color.FgCyan)
	ColorDebug   = color.New(color.FgWhite)
	ColorHeader  = color.New(color.Bold, color.FgWhite)
)

// TTYDetector reports whether an io.Writer is a terminal, abstracted so
// tests can substitute a fake without touching the real file descriptor.
type TTYDetector interface {
	IsTTY(w io.Writer) bool
}

// RealTTYDetector uses golang.org/x/term to query the real terminal.
type RealTTYDetector struct{}

// IsTTY reports whether w is a terminal (not piped or redirected).
func (RealTTYDetector) IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// DefaultTTYDetector is the detector used outside of tests.
var DefaultTTYDetector TTYDetector = RealTTYDetector{}

// IsColorEnabled reports whether color output should be used for stdout.
func IsColorEnabled() bool {
	if !DefaultTTYDetector.IsTTY(os.Stdout) {
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if termEnv := os.Getenv("TERM"); termEnv == "dumb" || termEnv == "" {
		return false
	}
	return true
}

// DisableColors disables all color output.
func DisableColors() { color.NoColor = true }

// EnableColors enables color output.
func EnableColors() { color.NoColor = false }
