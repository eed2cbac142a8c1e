package common

import (
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

// Color palette
var (
	ColorPrimary   = lipgloss.Color("#2E8B57") // Sea green
	ColorSecondary = lipgloss.Color("#20B2AA") // Light sea green

	ColorSuccess = lipgloss.Color("#32CD32")
	ColorWarning = lipgloss.Color("#FFD700")
	ColorError   = lipgloss.Color("#FF6347")

	ColorSubtle     = lipgloss.Color("#666666")
	ColorMuted      = lipgloss.Color("#888888")
	ColorBorder     = lipgloss.Color("#444444")
	ColorForeground = lipgloss.Color("#FFFFFF")
)

// Base styles
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary).
			MarginBottom(1)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(ColorMuted).
			MarginBottom(1)

	TextStyle = lipgloss.NewStyle().
			Foreground(ColorForeground)

	MutedTextStyle = lipgloss.NewStyle().
			Foreground(ColorSubtle)

	ErrorTextStyle = lipgloss.NewStyle().
			Foreground(ColorError)

	SuccessTextStyle = lipgloss.NewStyle().
				Foreground(ColorSuccess)

	WarningTextStyle = lipgloss.NewStyle().
				Foreground(ColorWarning)

	PrimaryTextStyle = lipgloss.NewStyle().
				Foreground(ColorPrimary)

	LabelStyle = lipgloss.NewStyle().
			Foreground(ColorMuted).
			Width(14)

	InputStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)

	FocusedInputStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(ColorPrimary).
				Padding(0, 1)

	ButtonStyle = lipgloss.NewStyle().
			Background(ColorPrimary).
			Foreground(ColorForeground).
			Padding(0, 2).
			MarginTop(1)

	DisabledButtonStyle = lipgloss.NewStyle().
				Background(ColorBorder).
				Foreground(ColorMuted).
				Padding(0, 2).
				MarginTop(1)

	BoxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(1, 2)

	FocusedBoxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(ColorPrimary).
			Padding(1, 2)

	// Verdict boxes on the check-in screen
	AuthorizedBoxStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.DoubleBorder()).
				BorderForeground(ColorSuccess).
				Padding(1, 2)

	DeniedBoxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.DoubleBorder()).
			BorderForeground(ColorError).
			Padding(1, 2)

	HelpKeyStyle = lipgloss.NewStyle().
			Foreground(ColorSecondary).
			Bold(true)

	HelpDescStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	HelpSepStyle = lipgloss.NewStyle().
			Foreground(ColorBorder)

	// QRStyle frames terminal QR codes.
	QRStyle = lipgloss.NewStyle().
		Foreground(ColorForeground).
		Background(lipgloss.Color("#000000"))
)

// Logo returns the attendcli ASCII art logo
func Logo() string {
	logo := `
       _   _                 _
  __ _| |_| |_ ___ _ __   __| |
 / _` + "`" + ` | __| __/ _ \ '_ \ / _` + "`" + ` |
| (_| | |_| ||  __/ | | | (_| |
 \__,_|\__|\__\___|_| |_|\__,_|
`
	return lipgloss.NewStyle().
		Foreground(ColorPrimary).
		Bold(true).
		Render(logo)
}

// TableStyles returns the table styles shared by list screens.
func TableStyles() table.Styles {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(ColorBorder).
		BorderBottom(true).
		Bold(true).
		Foreground(ColorSecondary)
	s.Selected = s.Selected.
		Foreground(ColorForeground).
		Background(ColorPrimary).
		Bold(true)
	return s
}

// FormatHelp formats a help line with key and description
func FormatHelp(key, desc string) string {
	return HelpKeyStyle.Render(key) +
		HelpSepStyle.Render(" ") +
		HelpDescStyle.Render(desc)
}

// Truncate shortens s to maxLen runes, marking the cut with an ellipsis.
func Truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
