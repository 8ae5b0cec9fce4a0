// Copyright (c) 2025 the pathindex authors
// This software is released under the MIT License.
// See the LICENSE.txt file for the full license text.

// Package ux provides terminal output styling for the pathindex CLI.
//
// Styling is disabled automatically when stdout is not a terminal or
// when NO_COLOR is set, so command output stays pipeable.
package ux

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// Palette: warm amber accents over neutral grays.
var (
	ColorAccent  = lipgloss.Color("#E8A33D") // amber - highlights
	ColorSuccess = lipgloss.Color("#4CAF82") // green - success
	ColorWarning = lipgloss.Color("#F4D03F") // gold - warnings
	ColorError   = lipgloss.Color("#E74C3C") // red - errors
	ColorMuted   = lipgloss.Color("#6B7680") // gray - secondary text
)

// Styles provides pre-configured lipgloss styles.
var Styles = struct {
	Title     lipgloss.Style
	Bold      lipgloss.Style
	Muted     lipgloss.Style
	Success   lipgloss.Style
	Warning   lipgloss.Style
	Error     lipgloss.Style
	Highlight lipgloss.Style
}{
	Title:     lipgloss.NewStyle().Bold(true).Foreground(ColorAccent),
	Bold:      lipgloss.NewStyle().Bold(true),
	Muted:     lipgloss.NewStyle().Foreground(ColorMuted),
	Success:   lipgloss.NewStyle().Foreground(ColorSuccess),
	Warning:   lipgloss.NewStyle().Foreground(ColorWarning),
	Error:     lipgloss.NewStyle().Foreground(ColorError),
	Highlight: lipgloss.NewStyle().Foreground(ColorAccent).Bold(true),
}

// colorEnabled is resolved once at startup.
var colorEnabled = detectColor()

func detectColor() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

// ColorEnabled reports whether styled output is active.
func ColorEnabled() bool {
	return colorEnabled
}

// SetColorEnabled overrides color detection. Used by tests and the
// --no-color flag.
func SetColorEnabled(enabled bool) {
	colorEnabled = enabled
}

func render(style lipgloss.Style, s string) string {
	if !colorEnabled {
		return s
	}
	return style.Render(s)
}

// Successf prints a styled success line to stdout.
func Successf(format string, args ...any) {
	fmt.Println(render(Styles.Success, "✓ ") + fmt.Sprintf(format, args...))
}

// Warnf prints a styled warning line to stdout.
func Warnf(format string, args ...any) {
	fmt.Println(render(Styles.Warning, "⚠ ") + fmt.Sprintf(format, args...))
}

// Errorf prints a styled error line to stderr.
func Errorf(format string, args ...any) {
	fmt.Fprintln(os.Stderr, render(Styles.Error, "✗ ")+fmt.Sprintf(format, args...))
}

// Titlef prints a styled title line to stdout.
func Titlef(format string, args ...any) {
	fmt.Println(render(Styles.Title, fmt.Sprintf(format, args...)))
}

// KeyValue formats an aligned key-value block, keys muted.
func KeyValue(pairs [][2]string) string {
	width := 0
	for _, p := range pairs {
		if len(p[0]) > width {
			width = len(p[0])
		}
	}
	var sb strings.Builder
	for _, p := range pairs {
		key := fmt.Sprintf("%-*s", width, p[0])
		sb.WriteString("  " + render(Styles.Muted, key) + "  " + p[1] + "\n")
	}
	return sb.String()
}

// Table renders rows under a muted header with aligned columns.
func Table(header []string, rows [][]string) string {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	// The final column is left unpadded so lines carry no trailing
	// spaces.
	var sb strings.Builder
	for i, h := range header {
		if i < len(header)-1 {
			sb.WriteString(render(Styles.Muted, fmt.Sprintf("%-*s", widths[i], h)))
			sb.WriteString("  ")
		} else {
			sb.WriteString(render(Styles.Muted, h))
		}
	}
	sb.WriteString("\n")
	for _, row := range rows {
		for i, cell := range row {
			if i < len(row)-1 {
				sb.WriteString(fmt.Sprintf("%-*s", widths[i], cell))
				sb.WriteString("  ")
			} else {
				sb.WriteString(cell)
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
