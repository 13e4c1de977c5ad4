package ui

import (
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/dustin/go-humanize"

	"github.com/five82/multilogue/internal/display"
)

// renderHeader renders the top bar: logo, mode badge, machine activity and
// the store it reads.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Bar)
	bg := NewBgStyle(m.theme.Bar)

	mode := m.state.Mode
	if m.pickerOpen {
		mode = display.Picking
	}
	parts := []string{
		bg.Render("multilogue", styles.Logo),
		styles.ModeStyle(mode).Render(strings.ToUpper(mode.String())),
	}
	if m.running > 0 {
		parts = append(parts, bg.Render("● machine thinking…", styles.WarningText))
	}
	if m.state.RenderErr != nil {
		parts = append(parts, bg.Render("render failed", styles.DangerText))
	}

	if m.snapshot != nil {
		snap := m.snapshot()
		if m.width >= LayoutCompactWidth && snap.Path != "" {
			parts = append(parts, bg.Render(truncateMiddle(snap.Path, m.width/3), styles.MutedText))
		}
		if !snap.LastUpdated.IsZero() {
			parts = append(parts, bg.Render("saved "+humanize.Time(snap.LastUpdated), styles.FaintText))
		}
		if snap.LastError != nil {
			parts = append(parts, bg.Render("store error", styles.DangerText))
		}
	}

	return bg.FillLine(bg.Spaces(1)+bg.Join(parts, "  "), m.width)
}

// renderStatusBar shows the latest log record, or the keys that act in the
// current mode once it fades.
func (m Model) renderStatusBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.Bar)
	bg := NewBgStyle(m.theme.Bar)

	if m.status.Summary != "" {
		style := styles.InfoText
		switch {
		case m.status.Level >= slog.LevelError:
			style = styles.DangerText
		case m.status.Level >= slog.LevelWarn:
			style = styles.WarningText
		}
		return bg.FillLine(bg.Spaces(1)+bg.Render(truncate(firstLine(m.status.Summary), m.width-2), style), m.width)
	}

	editing := m.state.Mode == display.Editing && !m.pickerOpen
	picking := m.pickerOpen || m.state.Mode == display.Picking
	bindings := m.keys.shortHelpFor(editing, picking)

	colon := bg.Render(":", styles.FaintText)
	segments := make([]string, 0, len(bindings)+1)
	for _, b := range bindings {
		segments = append(segments, m.renderBinding(b, colon, styles, bg))
	}
	if picking && !m.pickerOpen {
		segments = append(segments, bg.Render("e", styles.AccentText)+colon+bg.Render("New dialogue", styles.MutedText))
	}
	if !editing {
		segments = append(segments, bg.Render("T", styles.AccentText)+colon+bg.Render(m.theme.Name, styles.FaintText))
	}
	return bg.FillLine(bg.Spaces(1)+bg.Join(segments, "  "), m.width)
}

func (m Model) renderBinding(b key.Binding, colon string, styles Styles, bg BgStyle) string {
	h := b.Help()
	return bg.Render(h.Key, styles.AccentText) + colon + bg.Render(h.Desc, styles.MutedText)
}
