package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("33"))
	dimStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	badgeStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("33")).Background(lipgloss.Color("195")).Padding(0, 1)
	onlineStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("34"))
	botBubbleStyle  = lipgloss.NewStyle().Background(lipgloss.Color("255")).Foreground(lipgloss.Color("235")).Padding(0, 1)
	userBubbleStyle = lipgloss.NewStyle().Background(lipgloss.Color("27")).Foreground(lipgloss.Color("231")).Padding(0, 1)
	inputBoxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("63")).Padding(0, 1)
	disabledBox     = inputBoxStyle.BorderForeground(lipgloss.Color("240"))
	footerStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)
