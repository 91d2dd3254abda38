// Package reportstyle renders compiler output (validation results, compile
// warnings, timeline summaries) for a terminal: color-coded by severity and
// with locale-aware number grouping for frame counts and durations.
package reportstyle

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// HeaderStyle renders a section header in a compile/validate report.
var HeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))

var levelStyles = map[string]lipgloss.Style{
	"error":   lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
	"warning": lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
	"info":    lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	"ok":      lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
}

// LevelStyle returns the style for a script/timeline validation level
// ("error", "warning", "info"), falling back to a plain style for anything
// else so an unrecognized level never crashes report rendering.
func LevelStyle(level string) lipgloss.Style {
	if s, ok := levelStyles[level]; ok {
		return s
	}
	return lipgloss.NewStyle()
}

// WarningKindStyle returns the style used to render a compile warning kind.
// Every compile-time warning kind renders the same as "warning" — the
// distinction that matters to a reader is severity, not which kind fired.
func WarningKindStyle(kind string) lipgloss.Style {
	return levelStyles["warning"]
}

var printer = message.NewPrinter(language.English)

// FormatFrames renders a frame count with thousands separators, e.g.
// "12,345 frames".
func FormatFrames(frames int) string {
	return printer.Sprintf("%d frames", frames)
}

// FormatSeconds renders a frame count as a grouped frame count plus its
// equivalent duration in seconds at the given frame rate, e.g.
// "12,345 frames (411.50s)".
func FormatSeconds(frames, fps int) string {
	if fps <= 0 {
		return FormatFrames(frames)
	}
	seconds := float64(frames) / float64(fps)
	return printer.Sprintf("%d frames (%s)", frames, fmt.Sprintf("%.2fs", seconds))
}

// FormatCount renders a plain integer count with thousands separators, e.g.
// for clip/asset/warning counts in a summary line.
func FormatCount(n int) string {
	return printer.Sprintf("%d", n)
}
