// Copyright (C) 2026 MHP Labs (dev@mhplabs.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package ux provides rich terminal output styling for the MHP CLI.
package ux

import (
	"fmt"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// MHP color palette - clinical greens and vitals reds
var (
	ColorGreenBright = lipgloss.Color("#2ECC71") // Bright green - good scores, success
	ColorGreenDeep   = lipgloss.Color("#1E8449") // Deep green - borders, accents
	ColorAmber       = lipgloss.Color("#F4D03F") // Amber - moderate scores, warnings
	ColorRed         = lipgloss.Color("#E74C3C") // Red - bad scores, errors
	ColorSlate       = lipgloss.Color("#5D6D7E") // Slate - muted text, borders
	ColorSky         = lipgloss.Color("#5DADE2") // Sky blue - titles, highlights
)

// Styles provides pre-configured lipgloss styles
var Styles = struct {
	Title     lipgloss.Style
	Subtitle  lipgloss.Style
	Bold      lipgloss.Style
	Muted     lipgloss.Style
	Success   lipgloss.Style
	Warning   lipgloss.Style
	Error     lipgloss.Style
	Highlight lipgloss.Style

	Box lipgloss.Style

	ScoreLow      lipgloss.Style
	ScoreModerate lipgloss.Style
	ScoreHigh     lipgloss.Style
}{
	Title:     lipgloss.NewStyle().Bold(true).Foreground(ColorSky),
	Subtitle:  lipgloss.NewStyle().Foreground(ColorSky),
	Bold:      lipgloss.NewStyle().Bold(true),
	Muted:     lipgloss.NewStyle().Foreground(ColorSlate),
	Success:   lipgloss.NewStyle().Foreground(ColorGreenBright),
	Warning:   lipgloss.NewStyle().Foreground(ColorAmber),
	Error:     lipgloss.NewStyle().Foreground(ColorRed),
	Highlight: lipgloss.NewStyle().Foreground(ColorGreenBright).Bold(true),

	Box: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorGreenDeep).
		Padding(0, 1),

	ScoreLow:      lipgloss.NewStyle().Bold(true).Foreground(ColorRed),
	ScoreModerate: lipgloss.NewStyle().Bold(true).Foreground(ColorAmber),
	ScoreHigh:     lipgloss.NewStyle().Bold(true).Foreground(ColorGreenBright),
}

var (
	colorOnce    sync.Once
	colorEnabled bool
)

// ColorEnabled reports whether styled output should be used: stdout is a
// terminal and NO_COLOR is unset.
func ColorEnabled() bool {
	colorOnce.Do(func() {
		if os.Getenv("NO_COLOR") != "" {
			colorEnabled = false
			return
		}
		colorEnabled = isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	})
	return colorEnabled
}

// render applies the style only when color output is enabled.
func render(style lipgloss.Style, text string) string {
	if !ColorEnabled() {
		return text
	}
	return style.Render(text)
}

// ScoreStyle picks the style for a 0-100 wellness score: red below the
// low band, amber through the moderate band, green above.
func ScoreStyle(score int) lipgloss.Style {
	switch {
	case score <= 33:
		return Styles.ScoreLow
	case score <= 66:
		return Styles.ScoreModerate
	default:
		return Styles.ScoreHigh
	}
}

// RenderScore formats a score with its band color applied.
func RenderScore(score int) string {
	return render(ScoreStyle(score), fmt.Sprintf("%d", score))
}

// Title prints a styled title line.
func Title(text string) {
	fmt.Println(render(Styles.Title, text))
}

// Success prints a success message with a checkmark.
func Success(text string) {
	fmt.Printf("%s %s\n", render(Styles.Success, "✓"), render(Styles.Success, text))
}

// Warning prints a warning message.
func Warning(text string) {
	fmt.Printf("%s %s\n", render(Styles.Warning, "⚠"), render(Styles.Warning, text))
}

// Error prints an error message to stderr.
func Error(text string) {
	fmt.Fprintf(os.Stderr, "%s %s\n", renderFor(os.Stderr, Styles.Error, "✗"), renderFor(os.Stderr, Styles.Error, text))
}

// Info prints an informational line with a muted gutter.
func Info(text string) {
	fmt.Printf("%s %s\n", render(Styles.Muted, "│"), text)
}

// Muted prints secondary text.
func Muted(text string) {
	fmt.Println(render(Styles.Muted, text))
}

// KeyValue prints an aligned "key: value" detail line.
func KeyValue(key, value string) {
	fmt.Printf("  %s %s\n", render(Styles.Muted, key+":"), value)
}

// Box prints content in a rounded box under a styled title.
func Box(title, content string) {
	if !ColorEnabled() {
		fmt.Printf("%s\n%s\n", title, content)
		return
	}
	boxStyle := Styles.Box.Width(60)
	titleLine := Styles.Title.Render(title)
	fmt.Println(boxStyle.Render(titleLine + "\n" + content))
}

// renderFor styles text destined for a specific stream, gating on that
// stream being a terminal.
func renderFor(f *os.File, style lipgloss.Style, text string) string {
	if os.Getenv("NO_COLOR") != "" {
		return text
	}
	if !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd()) {
		return text
	}
	return style.Render(text)
}
