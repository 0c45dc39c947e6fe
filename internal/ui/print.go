package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Out receives all styled output. Commands point it at cobra's writer.
var Out io.Writer = os.Stdout

var (
	accentColor  = lipgloss.AdaptiveColor{Light: "#7D56F4", Dark: "#AD8EE6"}
	successColor = lipgloss.AdaptiveColor{Light: "#00AA00", Dark: "#00FF00"}
	warningColor = lipgloss.AdaptiveColor{Light: "#CC6600", Dark: "#FFAA00"}
	errorColor   = lipgloss.AdaptiveColor{Light: "#CC0000", Dark: "#FF0000"}
	infoColor    = lipgloss.AdaptiveColor{Light: "#0066CC", Dark: "#00AAFF"}
	dimColor     = lipgloss.AdaptiveColor{Light: "#666666", Dark: "#999999"}

	labelStyle = lipgloss.NewStyle().Foreground(dimColor)
	valueStyle = lipgloss.NewStyle().Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#333333", Dark: "#FFFFFF"})
	dimStyle = lipgloss.NewStyle().Foreground(dimColor)
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(accentColor).MarginBottom(1)
	dividerStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#CCCCCC", Dark: "#444444"})
	boxStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(accentColor).Padding(0, 1)
	boxTitle     = lipgloss.NewStyle().Bold(true).Foreground(accentColor)
)

func PrintHeader(text string) {
	fmt.Fprintln(Out, headerStyle.Render("  "+text))
}

// mark writes one status line led by a coloured glyph.
func mark(glyph string, color lipgloss.AdaptiveColor, text string) {
	fmt.Fprintln(Out, lipgloss.NewStyle().Foreground(color).Render(glyph)+" "+text)
}

func PrintSuccess(text string) { mark("✔", successColor, text) }
func PrintWarning(text string) { mark("⚠", warningColor, text) }
func PrintError(text string)   { mark("✖", errorColor, text) }
func PrintInfo(text string)    { mark("ℹ", infoColor, text) }

// PrintHighlight prints an indented "label: value" line.
func PrintHighlight(label, value string) {
	fmt.Fprintln(Out, "  "+labelStyle.Render(label+":")+" "+valueStyle.Render(value))
}

func PrintList(items []string) {
	for _, it := range items {
		fmt.Fprintln(Out, "    "+dimStyle.Render("•")+" "+it)
	}
}

func PrintDivider() {
	fmt.Fprintln(Out, dividerStyle.Render("  "+strings.Repeat("─", 50)))
}

// PrintBox frames content, with an optional title above the border.
func PrintBox(title, content string) {
	if title != "" {
		fmt.Fprintln(Out, boxTitle.Render("  "+title))
	}
	fmt.Fprintln(Out, boxStyle.Render(content))
}
