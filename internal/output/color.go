// Package output provides styled terminal rendering helpers for shiftwatch.
package output

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// Palette. Green, amber and red follow the efficiency bands.
var (
	ColorPrimary   = lipgloss.Color("#4fc3f7")
	ColorOnTrack   = lipgloss.Color("#81c784")
	ColorAttention = lipgloss.Color("#ffd54f")
	ColorCritical  = lipgloss.Color("#e57373")
	ColorMuted     = lipgloss.Color("#8a8a8a")
)

// Shared styles. They are rebuilt by SetNoColor, so callers must read them
// at render time rather than caching them.
var (
	StyleHeader  lipgloss.Style
	StyleSuccess lipgloss.Style
	StyleWarning lipgloss.Style
	StyleError   lipgloss.Style
	StyleMuted   lipgloss.Style
	StyleBold    lipgloss.Style
	StyleLabel   lipgloss.Style
	StyleValue   lipgloss.Style
)

const (
	labelWidth = 18
	valueWidth = 14
)

var noColor bool

func init() {
	buildStyles(false)
}

func buildStyles(plain bool) {
	base := lipgloss.NewStyle()
	fg := func(c lipgloss.Color) lipgloss.Style {
		if plain {
			return base
		}
		return base.Foreground(c)
	}

	StyleHeader = fg(ColorPrimary).Bold(!plain)
	StyleSuccess = fg(ColorOnTrack)
	StyleWarning = fg(ColorAttention)
	StyleError = fg(ColorCritical)
	StyleMuted = fg(ColorMuted)
	StyleBold = base.Bold(!plain)
	StyleLabel = fg(ColorMuted).Width(labelWidth)
	StyleValue = base.Bold(!plain).Width(valueWidth)
}

// SetNoColor switches every shared style between plain and colored output.
func SetNoColor(disabled bool) {
	noColor = disabled
	buildStyles(disabled)
}

// IsNoColor returns whether color output is currently disabled.
func IsNoColor() bool {
	return noColor
}

// ConfigureColor disables color when the user asked for it or when stdout
// is not a terminal.
func ConfigureColor(enabled bool) {
	SetNoColor(!enabled || !isTerminal(os.Stdout))
}

func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
