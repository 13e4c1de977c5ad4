package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/multilogue/internal/display"
	"github.com/five82/multilogue/internal/logtail"
	"github.com/five82/multilogue/internal/render"
)

// Theme is a named color set. Colors are hex strings.
type Theme struct {
	Name string

	Background string
	Bar        string // header and status bar
	Panel      string // modals and the token popup
	Rule       string // code block borders
	Focus      string // focused borders

	Text    string
	Muted   string
	Faint   string
	Accent  string
	Success string
	Warning string
	Danger  string
	Info    string

	// Speakers colors dialogue labels, cycling per distinct speaker.
	Speakers []string
}

// Styles holds the foreground styles derived from a theme.
type Styles struct {
	Text        lipgloss.Style
	MutedText   lipgloss.Style
	FaintText   lipgloss.Style
	AccentText  lipgloss.Style
	WarningText lipgloss.Style
	DangerText  lipgloss.Style
	InfoText    lipgloss.Style
	Logo        lipgloss.Style

	modeColors map[display.Mode]string
	background string
	muted      string
}

func fg(color string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
}

// Styles builds the text styles for this theme.
func (t Theme) Styles() Styles {
	return Styles{
		Text:        fg(t.Text),
		MutedText:   fg(t.Muted),
		FaintText:   fg(t.Faint),
		AccentText:  fg(t.Accent),
		WarningText: fg(t.Warning),
		DangerText:  fg(t.Danger).Bold(true),
		InfoText:    fg(t.Info),
		Logo:        fg(t.Accent).Bold(true),
		modeColors: map[display.Mode]string{
			display.Viewing: t.Accent,
			display.Editing: t.Warning,
			display.Picking: t.Info,
		},
		background: t.Background,
		muted:      t.Muted,
	}
}

// ModeStyle returns the badge style for a display mode.
func (s Styles) ModeStyle(mode display.Mode) lipgloss.Style {
	color, ok := s.modeColors[mode]
	if !ok {
		color = s.muted
	}
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(s.background)).
		Background(lipgloss.Color(color)).
		Padding(0, 1)
}

// WithBackground returns a copy with every text style painted on bgColor,
// so segments rendered side by side leave no unpainted gaps.
func (s Styles) WithBackground(bgColor string) Styles {
	bg := lipgloss.Color(bgColor)
	out := s
	for _, style := range []*lipgloss.Style{
		&out.Text, &out.MutedText, &out.FaintText, &out.AccentText,
		&out.WarningText, &out.DangerText, &out.InfoText, &out.Logo,
	} {
		*style = style.Background(bg)
	}
	return out
}

// Palette maps the theme onto the dialogue renderer's colors.
func (t Theme) Palette() render.Palette {
	speakers := make([]lipgloss.Color, 0, len(t.Speakers))
	for _, c := range t.Speakers {
		speakers = append(speakers, lipgloss.Color(c))
	}
	return render.Palette{
		Text:     lipgloss.Color(t.Text),
		Faint:    lipgloss.Color(t.Faint),
		Accent:   lipgloss.Color(t.Accent),
		Border:   lipgloss.Color(t.Rule),
		Speakers: speakers,
	}
}

// LogStyles colors the log overlay.
func (t Theme) LogStyles() logtail.Styles {
	return logtail.Styles{
		Time:  fg(t.Faint),
		Debug: fg(t.Muted).Bold(true),
		Info:  fg(t.Success).Bold(true),
		Warn:  fg(t.Warning).Bold(true),
		Error: fg(t.Danger).Bold(true),
		Msg:   fg(t.Text),
		Attr:  fg(t.Muted),
	}
}

const defaultThemeName = "Dusk"

var themeOrder = []string{"Dusk", "Gruvbox", "Nord"}

var themes = map[string]Theme{
	"Dusk":    duskTheme(),
	"Gruvbox": gruvboxTheme(),
	"Nord":    nordTheme(),
}

// GetTheme returns the named theme, or Dusk when the name is unknown.
func GetTheme(name string) Theme {
	if t, ok := themes[name]; ok {
		return t
	}
	return themes[defaultThemeName]
}

// NextTheme returns the theme after current in the cycle.
func NextTheme(current string) string {
	for i, name := range themeOrder {
		if name == current {
			return themeOrder[(i+1)%len(themeOrder)]
		}
	}
	return themeOrder[0]
}

// ThemeNames returns the theme names in cycle order.
func ThemeNames() []string {
	return append([]string(nil), themeOrder...)
}

func duskTheme() Theme {
	return Theme{
		Name:       "Dusk",
		Background: "#14161f",
		Bar:        "#1c1f2b",
		Panel:      "#252938",
		Rule:       "#3b4159",
		Focus:      "#8aa4e6",

		Text:    "#d6d8e3",
		Muted:   "#8b90a8",
		Faint:   "#666b82",
		Accent:  "#8aa4e6",
		Success: "#8cc79b",
		Warning: "#e3c27a",
		Danger:  "#e07a86",
		Info:    "#79c7d4",

		Speakers: []string{"#8aa4e6", "#e8a16a", "#8cc79b", "#b894e0", "#79c7d4"},
	}
}

func gruvboxTheme() Theme {
	// https://github.com/morhetz/gruvbox
	return Theme{
		Name:       "Gruvbox",
		Background: "#1d2021", // bg0_h
		Bar:        "#282828", // bg0
		Panel:      "#3c3836", // bg1
		Rule:       "#504945", // bg2
		Focus:      "#83a598", // blue

		Text:    "#ebdbb2", // fg
		Muted:   "#bdae93", // fg3
		Faint:   "#928374", // gray
		Accent:  "#83a598",
		Success: "#b8bb26", // green
		Warning: "#fabd2f", // yellow
		Danger:  "#fb4934", // red
		Info:    "#8ec07c", // aqua

		Speakers: []string{"#83a598", "#fe8019", "#b8bb26", "#d3869b", "#8ec07c"},
	}
}

func nordTheme() Theme {
	// https://www.nordtheme.com/docs/colors-and-palettes
	return Theme{
		Name:       "Nord",
		Background: "#242933",
		Bar:        "#2e3440", // nord0
		Panel:      "#3b4252", // nord1
		Rule:       "#4c566a", // nord3
		Focus:      "#88c0d0", // nord8

		Text:    "#eceff4", // nord6
		Muted:   "#d8dee9", // nord4
		Faint:   "#7b88a1",
		Accent:  "#88c0d0",
		Success: "#a3be8c", // nord14
		Warning: "#ebcb8b", // nord13
		Danger:  "#bf616a", // nord11
		Info:    "#81a1c1", // nord9

		Speakers: []string{"#88c0d0", "#d08770", "#a3be8c", "#b48ead", "#81a1c1"},
	}
}
