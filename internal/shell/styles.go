// Package shell is the terminal front end: it renders results and update
// states, asks the user for decisions and runs the interactive menu.
package shell

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7D56F4")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF4C4C")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFB86C")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FA9A")).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#AAAAAA"))

	addedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FA9A"))

	removedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF4C4C"))

	codeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8BE9FD"))
)
