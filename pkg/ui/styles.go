package ui

import "github.com/charmbracelet/lipgloss"

// Color palette. The brand red matches the URL annotation on screenshots.
var (
	Primary   = lipgloss.Color("#E5484D") // Annotation red
	Secondary = lipgloss.Color("#3E9BFF") // Link blue
	Light     = lipgloss.Color("#EDEDED")

	Success = lipgloss.Color("#30A46C")
	Warning = lipgloss.Color("#F5A524")
	Error   = lipgloss.Color("#FF3838")
	Muted   = lipgloss.Color("#7C7F87")
)

// Pre-configured styles
var (
	BannerStyle = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	VersionStyle = lipgloss.NewStyle().
			Foreground(Secondary).
			Bold(true)

	// Summary box
	SectionStyle = lipgloss.NewStyle().
			Foreground(Light).
			Bold(true)

	// " :: Name : value" lines under the banner
	ConfigLabelStyle = lipgloss.NewStyle().
				Foreground(Muted)

	ConfigValueStyle = lipgloss.NewStyle().
				Foreground(Light)

	StatLabelStyle = lipgloss.NewStyle().
			Foreground(Muted)

	StatValueStyle = lipgloss.NewStyle().
			Foreground(Light).
			Bold(true)

	// [+] [!] [X] [*] tokens
	SuccessStyle = lipgloss.NewStyle().
			Foreground(Success).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(Warning).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)

	InfoStyle = lipgloss.NewStyle().
			Foreground(Primary)

	// Divider
	DividerStyle = lipgloss.NewStyle().
			Foreground(Muted)

	// URL style
	URLStyle = lipgloss.NewStyle().
			Foreground(Secondary).
			Underline(true)
)

// StatusStyle returns the style for a capture status.
func StatusStyle(status string) lipgloss.Style {
	switch status {
	case "captured":
		return SuccessStyle
	case "skipped":
		return WarningStyle
	case "failed":
		return ErrorStyle
	default:
		return StatLabelStyle
	}
}
