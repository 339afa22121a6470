// ABOUTME: Lipgloss palettes and styles for the watch view.
// ABOUTME: The palette follows the stored light or dark theme.
package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/healhub/internal/models"
	"github.com/harperreed/healhub/internal/toast"
)

type palette struct {
	primary lipgloss.Color
	fg      lipgloss.Color
	muted   lipgloss.Color
	subtle  lipgloss.Color
	success lipgloss.Color
	warning lipgloss.Color
	danger  lipgloss.Color
	water   lipgloss.Color
}

var palettes = map[models.Theme]palette{
	models.ThemeDark: {
		primary: lipgloss.Color("#7AA2F7"),
		fg:      lipgloss.Color("#C0CAF5"),
		muted:   lipgloss.Color("#666666"),
		subtle:  lipgloss.Color("#414868"),
		success: lipgloss.Color("#2ECC71"),
		warning: lipgloss.Color("#F39C12"),
		danger:  lipgloss.Color("#E74C3C"),
		water:   lipgloss.Color("#2EC4B6"),
	},
	models.ThemeLight: {
		primary: lipgloss.Color("#3B5BDB"),
		fg:      lipgloss.Color("#1A1B26"),
		muted:   lipgloss.Color("#868E96"),
		subtle:  lipgloss.Color("#CED4DA"),
		success: lipgloss.Color("#2B8A3E"),
		warning: lipgloss.Color("#E67700"),
		danger:  lipgloss.Color("#C92A2A"),
		water:   lipgloss.Color("#1098AD"),
	},
}

type styles struct {
	pal      palette
	title    lipgloss.Style
	muted    lipgloss.Style
	panel    lipgloss.Style
	label    lipgloss.Style
	value    lipgloss.Style
	footer   lipgloss.Style
	toastBox map[toast.Type]lipgloss.Style
}

func newStyles(theme models.Theme) styles {
	pal, ok := palettes[theme]
	if !ok {
		pal = palettes[models.ThemeLight]
	}

	box := func(c lipgloss.Color) lipgloss.Style {
		return lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(c).
			Padding(0, 1)
	}

	return styles{
		pal:   pal,
		title: lipgloss.NewStyle().Bold(true).Foreground(pal.primary),
		muted: lipgloss.NewStyle().Foreground(pal.muted),
		panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(pal.subtle).
			Padding(0, 2),
		label:  lipgloss.NewStyle().Foreground(pal.muted).Width(12),
		value:  lipgloss.NewStyle().Bold(true).Foreground(pal.fg),
		footer: lipgloss.NewStyle().Foreground(pal.muted).Padding(0, 1),
		toastBox: map[toast.Type]lipgloss.Style{
			toast.Info:    box(pal.primary),
			toast.Success: box(pal.success),
			toast.Warning: box(pal.warning),
			toast.Error:   box(pal.danger),
		},
	}
}
