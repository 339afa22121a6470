// ABOUTME: Bubble Tea watch view showing today's totals, a water chart, and live toasts.
// ABOUTME: The scheduler runs alongside; toast changes arrive as ToastsMsg.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/healhub/internal/models"
	"github.com/harperreed/healhub/internal/report"
	"github.com/harperreed/healhub/internal/state"
	"github.com/harperreed/healhub/internal/toast"
)

const maxReminders = 5

// Options configures the watch view.
type Options struct {
	Location  *time.Location
	Refresh   time.Duration
	ChartDays int
}

// ToastsMsg carries the active toasts after a queue change.
type ToastsMsg []toast.Toast

type tickMsg time.Time

// Model is the root watch model.
type Model struct {
	store   *state.Store
	toasts  *toast.Queue
	loc     *time.Location
	refresh time.Duration
	days    int

	width  int
	height int

	theme   models.Theme
	styles  styles
	summary report.Summary
	water   []report.Point
	active  []toast.Toast
	help    help.Model
}

// New builds the watch model and loads the first snapshot.
func New(st *state.Store, toasts *toast.Queue, opts Options) Model {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Refresh <= 0 {
		opts.Refresh = time.Second
	}
	if opts.ChartDays <= 0 {
		opts.ChartDays = 7
	}

	m := Model{
		store:   st,
		toasts:  toasts,
		loc:     opts.Location,
		refresh: opts.Refresh,
		days:    opts.ChartDays,
		width:   80,
		help:    help.New(),
	}
	m.load()
	return m
}

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) Init() tea.Cmd {
	return tickCmd(m.refresh)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		case key.Matches(msg, keys.Dismiss):
			if len(m.active) > 0 {
				m.toasts.Remove(m.active[0].ID)
			}
			m.active = m.toasts.Active()
		case key.Matches(msg, keys.Clear):
			for _, t := range m.active {
				m.toasts.Remove(t.ID)
			}
			m.active = m.toasts.Active()
		case key.Matches(msg, keys.Theme):
			m.store.ToggleTheme()
			m.load()
		}
		return m, nil

	case ToastsMsg:
		m.active = []toast.Toast(msg)
		return m, nil

	case tickMsg:
		m.load()
		return m, tickCmd(m.refresh)
	}

	return m, nil
}

// load refreshes everything read from the store and toast queue.
func (m *Model) load() {
	now := m.store.Clock().Now()
	trackers := m.store.Trackers().All()

	m.summary = report.Today(report.Inputs{
		Trackers:     trackers,
		Medicines:    m.store.Medicines().All(),
		Reminders:    m.store.ListReminders(),
		Appointments: m.store.Appointments().All(),
	}, now, m.loc)
	m.water = report.LastNDays(report.GroupByDate(trackers, models.TrackerWater, m.loc), m.days, now, m.loc)
	m.active = m.toasts.Active()

	m.theme = m.store.Theme().Get()
	m.styles = newStyles(m.theme)
}

func (m Model) View() string {
	s := m.styles
	w := m.width - 4
	if w < 40 {
		w = 40
	}

	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		s.title.Render("healhub"),
		s.muted.Render(fmt.Sprintf("  %s  ·  %s theme", m.summary.Date, m.theme)),
	)

	sections := []string{header, m.totalsView(w), m.chartView(w)}
	if r := m.remindersView(w); r != "" {
		sections = append(sections, r)
	}
	if t := m.toastsView(w); t != "" {
		sections = append(sections, t)
	}
	sections = append(sections, s.footer.Render(m.help.View(keys)))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) totalsView(w int) string {
	s := m.styles
	row := func(label, value string) string {
		return s.label.Render(label) + s.value.Render(value)
	}

	meds := m.summary.Medicines
	rows := []string{
		row("Water", fmt.Sprintf("%.0f ml", m.summary.WaterML)),
		row("Sleep", fmt.Sprintf("%.1f h", m.summary.SleepHours)),
		row("Exercise", fmt.Sprintf("%.0f min", m.summary.ExerciseMinutes)),
		row("Medicines", fmt.Sprintf("%d/%d taken", meds.Taken, meds.Taken+meds.NotTaken)),
	}
	if m.summary.LatestMood != nil {
		rows = append(rows, row("Mood", fmt.Sprintf("%.0f", *m.summary.LatestMood)))
	}
	if m.summary.LatestBMI != nil {
		rows = append(rows, row("BMI", fmt.Sprintf("%.1f (%s)", *m.summary.LatestBMI, report.BMICategory(*m.summary.LatestBMI))))
	}

	return s.panel.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m Model) chartView(w int) string {
	s := m.styles
	chart := barchart.New(w-6, 8)

	bars := make([]barchart.BarData, 0, len(m.water))
	for _, p := range m.water {
		label := p.Date
		if t, err := time.Parse("2006-01-02", p.Date); err == nil {
			label = t.Format("Mon")
		}
		bars = append(bars, barchart.BarData{
			Label: label,
			Values: []barchart.BarValue{{
				Name:  "water",
				Value: p.Value,
				Style: lipgloss.NewStyle().Foreground(s.pal.water),
			}},
		})
	}
	chart.PushAll(bars)
	chart.Draw()

	title := s.muted.Render(fmt.Sprintf("Water, last %d days", len(m.water)))
	return s.panel.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, title, chart.View()))
}

func (m Model) remindersView(w int) string {
	pending := m.summary.PendingReminders
	if len(pending) == 0 {
		return ""
	}
	s := m.styles

	lines := []string{s.muted.Render("Pending reminders")}
	for i, r := range pending {
		if i == maxReminders {
			lines = append(lines, s.muted.Render(fmt.Sprintf("… %d more", len(pending)-maxReminders)))
			break
		}
		label := r.Title
		if med, ok := m.store.LookupMedicine(r.MedicineID); ok {
			label += " · " + med.Label()
		}
		lines = append(lines, fmt.Sprintf("%s  %s", s.value.Render(shortTime(r.Time)), label))
	}
	return s.panel.Width(w).Render(strings.Join(lines, "\n"))
}

func (m Model) toastsView(w int) string {
	if len(m.active) == 0 {
		return ""
	}
	s := m.styles

	boxes := make([]string, 0, len(m.active))
	for _, t := range m.active {
		style, ok := s.toastBox[t.Type]
		if !ok {
			style = s.toastBox[toast.Info]
		}
		body := s.value.Render(t.Title)
		if t.Description != "" {
			body += "\n" + t.Description
		}
		boxes = append(boxes, style.Width(w).Render(body))
	}
	return lipgloss.JoinVertical(lipgloss.Left, boxes...)
}

// shortTime trims a stored ISO time to its HH:MM part for display.
func shortTime(iso string) string {
	if i := strings.IndexByte(iso, 'T'); i >= 0 && len(iso) >= i+6 {
		return iso[i+1 : i+6]
	}
	return iso
}

// Run starts the program and forwards toast changes to it until ctx is
// cancelled or the user quits.
func Run(ctx context.Context, m Model, opts ...tea.ProgramOption) error {
	p := tea.NewProgram(m, append(opts, tea.WithContext(ctx))...)
	unsubscribe := m.toasts.Subscribe(func(active []toast.Toast) {
		p.Send(ToastsMsg(active))
	})
	defer unsubscribe()

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
