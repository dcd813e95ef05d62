package cli

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// Small reusable theme for command output.

var (
	cPrimary = lipgloss.Color("63")  // blue
	cGood    = lipgloss.Color("42")  // green
	cWarn    = lipgloss.Color("214") // orange
	cMuted   = lipgloss.Color("244") // gray
	cGold    = lipgloss.Color("220") // gold
)

var (
	styleTitle = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	styleGood  = lipgloss.NewStyle().Bold(true).Foreground(cGood)
	styleWarn  = lipgloss.NewStyle().Bold(true).Foreground(cWarn)
	styleMuted = lipgloss.NewStyle().Foreground(cMuted)
	styleGold  = lipgloss.NewStyle().Bold(true).Foreground(cGold)
	styleAI    = lipgloss.NewStyle().Italic(true).Foreground(cPrimary)
	stylePanel = lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(cMuted).Padding(0, 1)
)

// stdoutIsTerminal gates styled rendering; piped output stays plain.
func stdoutIsTerminal() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

// render applies style only when writing to a terminal.
func render(style lipgloss.Style, text string) string {
	if !stdoutIsTerminal() {
		return text
	}
	return style.Render(text)
}
