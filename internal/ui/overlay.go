package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/renato0307/sqldesk/internal/theme"
)

var dimStyle = lipgloss.NewStyle().Foreground(theme.ColorVersion)

// overlayAnchor chooses where the overlay is placed vertically
type overlayAnchor int

const (
	anchorCenter overlayAnchor = iota
	anchorTop
)

// compositeOverlay draws overlay on top of a dimmed copy of background.
// The background is padded to width x height so the overlay always has room.
func compositeOverlay(background, overlay string, width, height int, anchor overlayAnchor) string {
	bgLines := dimLines(background, width, height)
	overlayLines := strings.Split(overlay, "\n")

	overlayWidth := 0
	for _, line := range overlayLines {
		overlayWidth = max(overlayWidth, lipgloss.Width(line))
	}

	startX := max((width-overlayWidth)/2, 0)
	startY := 0
	switch anchor {
	case anchorCenter:
		startY = max((height-len(overlayLines))/2, 0)
	case anchorTop:
		startY = min(2, max(height-len(overlayLines), 0))
	}

	leftPad := dimStyle.Render(strings.Repeat(" ", startX))
	for i, line := range overlayLines {
		y := startY + i
		if y >= len(bgLines) {
			break
		}
		rightPad := max(width-startX-lipgloss.Width(line), 0)
		bgLines[y] = leftPad + line + dimStyle.Render(strings.Repeat(" ", rightPad))
	}

	return strings.Join(bgLines, "\n")
}

// dimLines strips styling from background and re-renders it muted
func dimLines(background string, width, height int) []string {
	lines := strings.Split(background, "\n")
	for len(lines) < height {
		lines = append(lines, "")
	}
	for i, line := range lines {
		plain := stripAnsi(line)
		if pad := width - lipgloss.Width(plain); pad > 0 {
			plain += strings.Repeat(" ", pad)
		}
		lines[i] = dimStyle.Render(plain)
	}
	return lines
}

// stripAnsi removes ANSI escape sequences from s
func stripAnsi(s string) string {
	var b strings.Builder
	inEscape := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '\x1b' {
			inEscape = true
			continue
		}
		if inEscape {
			if (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') {
				inEscape = false
			}
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}
