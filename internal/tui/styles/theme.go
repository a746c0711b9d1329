package styles

import (
	"github.com/allbin/ch55x-tools/internal/tui/colors"
	"github.com/charmbracelet/lipgloss"
)

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colors.Mauve).
			Background(colors.Surface0).
			Padding(0, 1)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(colors.Green).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(colors.Yellow).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(colors.Red).
			Bold(true)

	InfoStyle = lipgloss.NewStyle().
			Foreground(colors.Sky).
			Bold(true)

	// Values such as measured speeds and matched ports
	HighlightStyle = lipgloss.NewStyle().
			Foreground(colors.Peach).
			Bold(true)

	MutedStyle = lipgloss.NewStyle().
			Foreground(colors.Overlay0)
)

// Status symbols prefixed to console messages
var (
	SymbolOK    = SuccessStyle.Render("✓")
	SymbolError = ErrorStyle.Render("✗")
	SymbolInfo  = InfoStyle.Render("⚡")
	SymbolWarn  = WarningStyle.Render("!")
)
