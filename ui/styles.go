package ui

import "github.com/charmbracelet/lipgloss"

var (
	fuchsia     = lipgloss.Color("#EE6FF8")
	yellowGreen = lipgloss.Color("#ECFD65")
	red         = lipgloss.AdaptiveColor{Light: "#FF4672", Dark: "#ED567A"}
	mintGreen   = lipgloss.AdaptiveColor{Light: "#89F0CB", Dark: "#89F0CB"}
	darkGreen   = lipgloss.AdaptiveColor{Light: "#1C8760", Dark: "#1C8760"}
	gray        = lipgloss.AdaptiveColor{Light: "#909090", Dark: "#626262"}

	statusBarNoteFg = lipgloss.AdaptiveColor{Light: "#656565", Dark: "#7D7D7D"}
	statusBarBg     = lipgloss.AdaptiveColor{Light: "#E6E6E6", Dark: "#242424"}

	logoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ECFD65")).
			Background(fuchsia).
			Bold(true).
			Padding(0, 1).
			Render

	selectorLabelStyle = lipgloss.NewStyle().
				Foreground(gray).
				Render

	selectorValueStyle = lipgloss.NewStyle().
				Foreground(yellowGreen).
				Bold(true).
				Render

	statusBarStyle = lipgloss.NewStyle().
			Foreground(statusBarNoteFg).
			Background(statusBarBg)

	statusBarMessageStyle = lipgloss.NewStyle().
				Foreground(mintGreen).
				Background(darkGreen).
				Padding(0, 1).
				Render

	statusBarErrorStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#FFFFFF")).
				Background(red).
				Padding(0, 1).
				Render

	helpStyle = lipgloss.NewStyle().
			Foreground(gray).
			Render

	dialogStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(fuchsia).
			Padding(1, 2)

	dialogErrorStyle = dialogStyle.
				BorderForeground(red)

	dialogTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Render
)
