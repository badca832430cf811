package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/renato0307/sqldesk/internal/domain"
	"github.com/renato0307/sqldesk/internal/theme"
)

const runningMark = "●"

// renderTabBar renders the tab bar projection on one line, trimming to width
func renderTabBar(views []domain.TabView, width int) string {
	parts := make([]string, 0, len(views))
	for _, v := range views {
		label := v.Title
		if v.Running {
			label = theme.TabRunningStyle.Render(runningMark) + " " + label
		}
		if v.Active {
			parts = append(parts, theme.ActiveTabStyle.Render(label))
		} else {
			parts = append(parts, theme.TabStyle.Render(label))
		}
	}

	bar := lipgloss.JoinHorizontal(lipgloss.Top, parts...)
	if width > 0 && lipgloss.Width(bar) > width {
		bar = lipgloss.NewStyle().MaxWidth(width).Render(bar)
	}
	return strings.TrimRight(bar, " ")
}
