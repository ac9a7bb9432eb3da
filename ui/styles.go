package ui

import "github.com/charmbracelet/lipgloss"

var (
	// Colors
	colorRed     = lipgloss.Color("#FF5555")
	colorYellow  = lipgloss.Color("#F1FA8C")
	colorGreen   = lipgloss.Color("#50FA7B")
	colorCyan    = lipgloss.Color("#8BE9FD")
	colorMagenta = lipgloss.Color("#FF79C6")
	colorOrange  = lipgloss.Color("#FFB86C")
	colorWhite   = lipgloss.Color("#F8F8F2")
	colorGray    = lipgloss.Color("#6272A4")

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorGray).
			Padding(0, 1)

	activePanelStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorCyan).
				Padding(0, 1)

	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	labelStyle = lipgloss.NewStyle().Foreground(colorGray)
	valueStyle = lipgloss.NewStyle().Foreground(colorWhite)
	warnStyle  = lipgloss.NewStyle().Foreground(colorYellow).Bold(true)
	critStyle  = lipgloss.NewStyle().Foreground(colorRed).Bold(true)
	okStyle    = lipgloss.NewStyle().Foreground(colorGreen)
	headerStyle = lipgloss.NewStyle().Foreground(colorMagenta).Bold(true)
	helpStyle  = lipgloss.NewStyle().Foreground(colorGray)
	dimStyle   = lipgloss.NewStyle().Foreground(colorGray)
	orangeStyle = lipgloss.NewStyle().Foreground(colorOrange)
)

// stateColor picks a connection-table row color by TCP state: established
// traffic is healthy green, handshake and closing states (SYN_*, FIN_WAIT*,
// CLOSE_WAIT, CLOSING, LAST_ACK) are cautionary yellow, and LISTEN,
// TIME_WAIT, CLOSED and DELETE_TCB fade to gray.
func stateColor(state string) lipgloss.Style {
	switch state {
	case "ESTABLISHED":
		return okStyle
	case "LISTEN":
		return dimStyle
	case "SYN_SENT", "SYN_RECEIVED", "FIN_WAIT1", "FIN_WAIT2", "CLOSE_WAIT", "CLOSING", "LAST_ACK":
		return warnStyle
	case "TIME_WAIT", "CLOSED", "DELETE_TCB":
		return dimStyle
	default:
		return valueStyle
	}
}

// directionColor distinguishes inbound/outbound packet snippets and
// traffic-log rows.
func directionColor(outbound bool) lipgloss.Style {
	if outbound {
		return orangeStyle
	}
	return okStyle
}
