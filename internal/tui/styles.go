package tui

import "github.com/charmbracelet/lipgloss"

// Theme is the colour palette selected by the theme dialog.
type Theme struct {
	Primary lipgloss.Color
	Accent  lipgloss.Color
	Muted   lipgloss.Color
	Text    lipgloss.Color
	Error   lipgloss.Color
	Warning lipgloss.Color
	Success lipgloss.Color
	Surface lipgloss.Color

	// Markdown is the glamour standard style used for assistant replies.
	Markdown string
}

var themes = map[string]Theme{
	"default": {
		Primary:  lipgloss.Color("#7C3AED"), // Purple
		Accent:   lipgloss.Color("#10B981"), // Green
		Muted:    lipgloss.Color("#6B7280"),
		Text:     lipgloss.Color("#E5E7EB"),
		Error:    lipgloss.Color("#EF4444"),
		Warning:  lipgloss.Color("#F59E0B"),
		Success:  lipgloss.Color("#10B981"),
		Surface:  lipgloss.Color("#2D2D2D"),
		Markdown: "dark",
	},
	"midnight": {
		Primary:  lipgloss.Color("#3B82F6"),
		Accent:   lipgloss.Color("#A78BFA"),
		Muted:    lipgloss.Color("#64748B"),
		Text:     lipgloss.Color("#E2E8F0"),
		Error:    lipgloss.Color("#F87171"),
		Warning:  lipgloss.Color("#FBBF24"),
		Success:  lipgloss.Color("#34D399"),
		Surface:  lipgloss.Color("#1E293B"),
		Markdown: "dracula",
	},
	"forest": {
		Primary:  lipgloss.Color("#16A34A"),
		Accent:   lipgloss.Color("#84CC16"),
		Muted:    lipgloss.Color("#6B7F6B"),
		Text:     lipgloss.Color("#DCFCE7"),
		Error:    lipgloss.Color("#DC2626"),
		Warning:  lipgloss.Color("#CA8A04"),
		Success:  lipgloss.Color("#22C55E"),
		Surface:  lipgloss.Color("#14291C"),
		Markdown: "dark",
	},
	"sunset": {
		Primary:  lipgloss.Color("#F97316"),
		Accent:   lipgloss.Color("#EC4899"),
		Muted:    lipgloss.Color("#9A7B6B"),
		Text:     lipgloss.Color("#FFEDD5"),
		Error:    lipgloss.Color("#E11D48"),
		Warning:  lipgloss.Color("#FACC15"),
		Success:  lipgloss.Color("#4ADE80"),
		Surface:  lipgloss.Color("#3B1F14"),
		Markdown: "pink",
	},
	"mono": {
		Primary:  lipgloss.Color("#FFFFFF"),
		Accent:   lipgloss.Color("#D4D4D4"),
		Muted:    lipgloss.Color("#737373"),
		Text:     lipgloss.Color("#F5F5F5"),
		Error:    lipgloss.Color("#FFFFFF"),
		Warning:  lipgloss.Color("#D4D4D4"),
		Success:  lipgloss.Color("#D4D4D4"),
		Surface:  lipgloss.Color("#262626"),
		Markdown: "notty",
	},
}

// ThemeByID returns the palette for id, falling back to the default theme.
func ThemeByID(id string) Theme {
	if t, ok := themes[id]; ok {
		return t
	}
	return themes["default"]
}

// Styles are the lipgloss styles derived from a Theme.
type Styles struct {
	Theme Theme

	Logo        lipgloss.Style
	Tab         lipgloss.Style
	TabSelected lipgloss.Style
	Hint        lipgloss.Style

	Header      lipgloss.Style
	HeaderBrand lipgloss.Style
	HeaderMeta  lipgloss.Style

	Input       lipgloss.Style
	InputBusy   lipgloss.Style
	Placeholder lipgloss.Style

	UserLabel      lipgloss.Style
	AssistantLabel lipgloss.Style
	Meta           lipgloss.Style
	Tool           lipgloss.Style
	ToolFocused    lipgloss.Style
	ToolResult     lipgloss.Style
	Loader         lipgloss.Style

	Status lipgloss.Style
	Notice lipgloss.Style
	Error  lipgloss.Style
	Ok     lipgloss.Style

	Dialog         lipgloss.Style
	DialogTitle    lipgloss.Style
	Row            lipgloss.Style
	RowSelected    lipgloss.Style
	RowDescription lipgloss.Style

	Cell        lipgloss.Style
	CellFocused lipgloss.Style
	CellTitle   lipgloss.Style
	TableHeader lipgloss.Style
}

// NewStyles builds the style set for t.
func NewStyles(t Theme) Styles {
	return Styles{
		Theme: t,

		Logo:        lipgloss.NewStyle().Foreground(t.Primary).Bold(true),
		Tab:         lipgloss.NewStyle().Foreground(t.Muted).Padding(0, 2),
		TabSelected: lipgloss.NewStyle().Foreground(t.Text).Background(t.Primary).Bold(true).Padding(0, 2),
		Hint:        lipgloss.NewStyle().Foreground(t.Muted),

		Header: lipgloss.NewStyle().Background(t.Surface),
		HeaderBrand: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(t.Primary).
			Padding(0, 1),
		HeaderMeta: lipgloss.NewStyle().Foreground(t.Muted).Background(t.Surface).Padding(0, 1),

		Input: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Primary).
			Padding(0, 1),
		InputBusy: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Muted).
			Padding(0, 1),
		Placeholder: lipgloss.NewStyle().Foreground(t.Muted),

		UserLabel:      lipgloss.NewStyle().Foreground(t.Accent).Bold(true),
		AssistantLabel: lipgloss.NewStyle().Foreground(t.Primary).Bold(true),
		Meta:           lipgloss.NewStyle().Foreground(t.Muted),
		Tool:           lipgloss.NewStyle().Foreground(t.Warning),
		ToolFocused:    lipgloss.NewStyle().Foreground(t.Warning).Reverse(true),
		ToolResult:     lipgloss.NewStyle().Foreground(t.Muted),
		Loader:         lipgloss.NewStyle().Foreground(t.Primary),

		Status: lipgloss.NewStyle().Foreground(t.Muted).Padding(0, 1),
		Notice: lipgloss.NewStyle().Foreground(t.Warning).Padding(0, 1),
		Error:  lipgloss.NewStyle().Foreground(t.Error),
		Ok:     lipgloss.NewStyle().Foreground(t.Success),

		Dialog: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Primary).
			Padding(1, 2),
		DialogTitle:    lipgloss.NewStyle().Foreground(t.Primary).Bold(true).MarginBottom(1),
		Row:            lipgloss.NewStyle().Padding(0, 1),
		RowSelected:    lipgloss.NewStyle().Foreground(t.Text).Background(t.Surface).Bold(true).Padding(0, 1),
		RowDescription: lipgloss.NewStyle().Foreground(t.Muted),

		Cell: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(t.Muted).
			Padding(0, 1),
		CellFocused: lipgloss.NewStyle().
			Border(lipgloss.ThickBorder()).
			BorderForeground(t.Primary).
			Padding(0, 1),
		CellTitle:   lipgloss.NewStyle().Foreground(t.Accent).Bold(true),
		TableHeader: lipgloss.NewStyle().Foreground(t.Primary).Bold(true),
	}
}
