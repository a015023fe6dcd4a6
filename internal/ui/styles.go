package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/Dicklesworthstone/rktop/internal/model"
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("25"))
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("220"))
	textStyle     = lipgloss.NewStyle().Bold(true)
	subtleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	goodStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("28"))
	badStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("124"))
	freqStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("83"))
	footerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("240"))
	warningStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("220"))
	criticalStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203"))
	coolStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("83"))
)

// loadStyle colours a utilisation reading.
func loadStyle(t model.Tier) lipgloss.Style {
	switch t {
	case model.TierCritical:
		return criticalStyle
	case model.TierWarning:
		return warningStyle
	default:
		return textStyle
	}
}

// tempStyle is loadStyle except that normal temperatures are green.
func tempStyle(t model.Tier) lipgloss.Style {
	if t == model.TierNormal {
		return coolStyle
	}
	return loadStyle(t)
}
