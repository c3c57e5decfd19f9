package tui

import "github.com/charmbracelet/lipgloss"

// Theme holds the color scheme for the viewer.
type Theme struct {
	Accent   lipgloss.Color
	Current  lipgloss.Color
	Decision lipgloss.Color
	End      lipgloss.Color
	Warning  lipgloss.Color
	Hint     lipgloss.Color
	Disabled lipgloss.Color
}

// defaultTheme provides default colors.
var defaultTheme = Theme{
	Accent:   lipgloss.Color("#5FAFD7"), // light blue
	Current:  lipgloss.Color("#00D787"), // green
	Decision: lipgloss.Color("#FFAF00"), // amber
	End:      lipgloss.Color("#AF87FF"), // violet
	Warning:  lipgloss.Color("#FF005F"), // red
	Hint:     lipgloss.Color("#6C6C6C"), // dim gray
	Disabled: lipgloss.Color("#3A3A3A"), // dark gray
}

func (t Theme) titleStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Accent).Bold(true)
}

func (t Theme) folderStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Accent)
}

func (t Theme) activeTabStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Accent).Bold(true).Underline(true)
}

func (t Theme) tabStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Hint)
}

func (t Theme) currentStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Current).Bold(true)
}

func (t Theme) decisionStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Decision)
}

func (t Theme) endStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.End)
}

func (t Theme) warningStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Warning).Bold(true)
}

func (t Theme) hintStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Hint).Italic(true)
}

func (t Theme) disabledStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Disabled)
}

func (t Theme) boxStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Accent).
		Padding(0, 1)
}
