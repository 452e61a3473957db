package style

import (
	"github.com/charmbracelet/lipgloss"
)

// Base styles
var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(HeadingColor).
			Bold(true)

	NormalStyle = lipgloss.NewStyle().
			Foreground(TextColor)

	MutedStyle = lipgloss.NewStyle().
			Foreground(MutedColor)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(SuccessColor).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(WarningColor).
			Bold(true)

	DeprecatedStyle = lipgloss.NewStyle().
			Foreground(DeprecatedColor)

	InfoStyle = lipgloss.NewStyle().
			Foreground(InfoColor)

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(BorderColor).
			Padding(0, 1)

	CodeStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor)

	PathStyle = lipgloss.NewStyle().
			Foreground(SecondaryColor).
			Italic(true)
)

// Registry styles
var (
	BlockNameStyle = lipgloss.NewStyle().
			Foreground(BlockNameColor).
			Bold(true)

	CategoryStyle = lipgloss.NewStyle().
			Foreground(CategoryColor)
)

// Indicators
var (
	SuccessIndicator    = SuccessStyle.Render("✓")
	ErrorIndicator      = ErrorStyle.Render("✗")
	WarningIndicator    = WarningStyle.Render("!")
	DeprecatedIndicator = DeprecatedStyle.Render("~")
	InfoIndicator       = InfoStyle.Render("•")
)

// Indent pads s by two spaces per level.
func Indent(s string, level int) string {
	return lipgloss.NewStyle().PaddingLeft(level * 2).Render(s)
}

func Bold(s string) string {
	return lipgloss.NewStyle().Bold(true).Render(s)
}
