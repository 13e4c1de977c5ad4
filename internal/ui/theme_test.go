package ui

import (
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/multilogue/internal/display"
)

func TestNextTheme_CyclesAllThemes(t *testing.T) {
	tests := []struct {
		current string
		want    string
	}{
		{"Dusk", "Gruvbox"},
		{"Gruvbox", "Nord"},
		{"Nord", "Dusk"},
		{"Unknown", "Dusk"},
	}
	for _, tt := range tests {
		if got := NextTheme(tt.current); got != tt.want {
			t.Fatalf("NextTheme(%q) = %q, want %q", tt.current, got, tt.want)
		}
	}
}

func TestThemeNames_ReturnsCopy(t *testing.T) {
	names := ThemeNames()
	names[0] = "Mutated"
	if got := ThemeNames()[0]; got != "Dusk" {
		t.Fatalf("ThemeNames()[0] = %q after caller mutation", got)
	}
}

func TestGetTheme_UnknownFallsBackToDusk(t *testing.T) {
	for _, name := range ThemeNames() {
		if got := GetTheme(name).Name; got != name {
			t.Fatalf("GetTheme(%q).Name = %q", name, got)
		}
	}
	if got := GetTheme("Solarized").Name; got != "Dusk" {
		t.Fatalf("GetTheme(Solarized).Name = %q, want Dusk", got)
	}
}

func TestPalette_CarriesSpeakerColors(t *testing.T) {
	for _, name := range ThemeNames() {
		th := GetTheme(name)
		p := th.Palette()
		if len(p.Speakers) != len(th.Speakers) || len(p.Speakers) == 0 {
			t.Fatalf("%s: Palette().Speakers = %v", name, p.Speakers)
		}
		if string(p.Text) != th.Text || string(p.Border) != th.Rule {
			t.Fatalf("%s: palette text/border = %q/%q", name, p.Text, p.Border)
		}
	}
}

func TestModeStyle_UsesModeColors(t *testing.T) {
	th := GetTheme("Nord")
	styles := th.Styles()
	tests := []struct {
		mode display.Mode
		want string
	}{
		{display.Viewing, th.Accent},
		{display.Editing, th.Warning},
		{display.Picking, th.Info},
		{display.Mode(42), th.Muted},
	}
	for _, tt := range tests {
		if got := styles.ModeStyle(tt.mode).GetBackground(); got != lipgloss.Color(tt.want) {
			t.Fatalf("ModeStyle(%s) background = %v, want %s", tt.mode, got, tt.want)
		}
	}
}

func TestWithBackground_PaintsEveryTextStyle(t *testing.T) {
	th := GetTheme("Gruvbox")
	styles := th.Styles().WithBackground(th.Bar)
	want := lipgloss.Color(th.Bar)
	for name, s := range map[string]lipgloss.Style{
		"Text":   styles.Text,
		"Muted":  styles.MutedText,
		"Faint":  styles.FaintText,
		"Accent": styles.AccentText,
		"Danger": styles.DangerText,
		"Logo":   styles.Logo,
	} {
		if got := s.GetBackground(); got != want {
			t.Fatalf("%s background = %v, want %v", name, got, want)
		}
	}
	if got := th.Styles().Text.GetBackground(); got == want {
		t.Fatalf("WithBackground modified the receiver")
	}
}
