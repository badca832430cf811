package theme

import "github.com/charmbracelet/lipgloss"

// Color is an alias for lipgloss.Color for convenience
type Color = lipgloss.Color

// Brand colors
const (
	ColorPrimary   Color = "99" // Purple - app name, titles
	ColorSecondary Color = "86" // Cyan - subtitles, active tab
)

// Execution state colors
const (
	ColorFailure Color = "1" // Red - failed execution
	ColorRunning Color = "3" // Yellow - query in flight
	ColorSuccess Color = "2" // Green - successful execution
)

// UI semantic colors
const (
	ColorBorder    Color = "238" // Dark gray - panel borders
	ColorError     Color = "196" // Bright red
	ColorHighlight Color = "255" // White - emphasis
	ColorMuted     Color = "241" // Gray - secondary text
	ColorNormal    Color = "250" // Default text
	ColorNull      Color = "243" // Gray - NULL cells
	ColorSubtle    Color = "245" // Light gray - labels
	ColorVersion   Color = "240" // Dark gray
)

// Accent colors
const (
	ColorHelpGroup Color = "141" // Purple
	ColorSelected  Color = "57"  // Violet - selected row background
	ColorSpinner   Color = "205" // Pink
	ColorTabActive Color = "62"  // Blue-violet - active tab background
)
