package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/roachagram/internal/prefs"
)

// Theme defines colors for the UI. The light and dark palettes follow the
// document themes so the terminal and HTML output look alike.
type Theme struct {
	Name string

	Background string
	Surface    string
	Border     string

	Text    string
	Muted   string
	Faint   string
	Accent  string
	Success string
	Warning string
	Danger  string
}

// Styles contains pre-built Lipgloss styles for the theme.
type Styles struct {
	Text        lipgloss.Style
	Bold        lipgloss.Style
	MutedText   lipgloss.Style
	FaintText   lipgloss.Style
	AccentText  lipgloss.Style
	SuccessText lipgloss.Style
	WarningText lipgloss.Style
	DangerText  lipgloss.Style

	Header lipgloss.Style
	Footer lipgloss.Style
	Logo   lipgloss.Style
	Panel  lipgloss.Style
	Input  lipgloss.Style
}

// Styles returns Lipgloss styles for this theme.
func (t Theme) Styles() Styles {
	return Styles{
		Text: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Text)),

		Bold: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Text)).
			Bold(true),

		MutedText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Muted)),

		FaintText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Faint)),

		AccentText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Accent)),

		SuccessText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Success)).
			Bold(true),

		WarningText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Warning)),

		DangerText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Danger)).
			Bold(true),

		Header: lipgloss.NewStyle().
			Background(lipgloss.Color(t.Surface)).
			Foreground(lipgloss.Color(t.Text)).
			Padding(0, 1),

		Footer: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Muted)).
			Padding(0, 1),

		Logo: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Accent)).
			Bold(true),

		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(t.Border)).
			Padding(0, 1),

		Input: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color(t.Accent)).
			Padding(0, 1),
	}
}

var themes = map[string]Theme{
	prefs.ThemeLight: lightTheme(),
	prefs.ThemeDark:  darkTheme(),
}

// GetTheme returns a theme by name, defaulting to light.
func GetTheme(name string) Theme {
	if t, ok := themes[name]; ok {
		return t
	}
	return lightTheme()
}

func lightTheme() Theme {
	return Theme{
		Name: prefs.ThemeLight,

		Background: "#ffffff",
		Surface:    "#f1f5f9", // slate-100
		Border:     "#cbd5e1", // slate-300

		Text:    "#000000",
		Muted:   "#475569", // slate-600
		Faint:   "#94a3b8", // slate-400
		Accent:  "#8b4513", // roach brown
		Success: "#16a34a", // green-600
		Warning: "#d97706", // amber-600
		Danger:  "#dc2626", // red-600
	}
}

func darkTheme() Theme {
	return Theme{
		Name: prefs.ThemeDark,

		Background: "#121212",
		Surface:    "#1e1e1e",
		Border:     "#3a3a3a",

		Text:    "#f5f5f5",
		Muted:   "#a3a3a3",
		Faint:   "#737373",
		Accent:  "#d2a679", // light roach brown
		Success: "#22c55e", // green-500
		Warning: "#f59e0b", // amber-500
		Danger:  "#ef4444", // red-500
	}
}
