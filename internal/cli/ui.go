package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorAccent = lipgloss.Color("36")
	colorOK     = lipgloss.Color("35")
	colorWarn   = lipgloss.Color("220")
	colorFail   = lipgloss.Color("167")
	colorLink   = lipgloss.Color("75")
	colorLabel  = lipgloss.Color("245")
	colorMuted  = lipgloss.Color("240")
)

// Styles shared with the pickers in tui.go.
var (
	StyleTitle     = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	StyleHighlight = lipgloss.NewStyle().Foreground(colorAccent)
	StyleDim       = lipgloss.NewStyle().Foreground(colorMuted)
	StyleWarning   = lipgloss.NewStyle().Foreground(colorWarn)

	styleIconSpinner = lipgloss.NewStyle().Foreground(colorAccent)
	styleCommand     = lipgloss.NewStyle().Foreground(colorLink)
	styleLabel       = lipgloss.NewStyle().Foreground(colorLabel).Width(10)
)

// marker is the glyph that leads a one-line status message.
type marker struct {
	glyph string
	color lipgloss.Color
	// tint also colors the message, not just the glyph.
	tint bool
}

var (
	markOK   = marker{glyph: "✓", color: colorOK}
	markFail = marker{glyph: "✗", color: colorFail}
	markWarn = marker{glyph: "!", color: colorWarn, tint: true}
	markInfo = marker{glyph: "›", color: colorLabel}
)

func (m marker) printf(format string, args ...any) {
	style := lipgloss.NewStyle().Foreground(m.color)
	msg := fmt.Sprintf(format, args...)
	if m.tint {
		msg = style.Render(msg)
	}
	fmt.Println(style.Render(m.glyph) + " " + msg)
}

// printDetail prints an indented, muted line under a status message.
func printDetail(format string, args ...any) {
	fmt.Println("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints where a PNG was written.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render("→") + " " + path)
}

func printKeyValue(key, value string) {
	fmt.Println(styleLabel.Render(key) + " " + value)
}

// printNextStep suggests the command to run next.
func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

// conversionStats summarizes a finished conversion.
type conversionStats struct {
	Bytes    int
	Scale    float64
	Duration time.Duration
}

// String renders the stats as "1.2 KiB · 2x · 14ms".
func (s conversionStats) String() string {
	var parts []string
	if s.Bytes > 0 {
		parts = append(parts, formatSize(int64(s.Bytes)))
	}
	if s.Scale > 0 {
		parts = append(parts, fmt.Sprintf("%gx", s.Scale))
	}
	parts = append(parts, s.Duration.Round(time.Millisecond).String())
	return strings.Join(parts, " · ")
}

func printStats(s conversionStats) {
	fmt.Println("  " + StyleDim.Render(s.String()))
}

// formatSize renders n bytes with a binary unit.
func formatSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
