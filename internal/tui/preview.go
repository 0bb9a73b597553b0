package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var previewStyle = lipgloss.NewStyle().
	Border(lipgloss.Border{
		Top:         "-",
		Bottom:      "-",
		Left:        "|",
		Right:       "|",
		TopLeft:     "+",
		TopRight:    "+",
		BottomLeft:  "+",
		BottomRight: "+",
	}).
	BorderForeground(lipgloss.Color("62")).
	Padding(0, 2)

// RenderPreview draws label lines inside an ASCII box for the terminal.
func RenderPreview(lines []string) string {
	return previewStyle.Render(strings.Join(lines, "\n"))
}
