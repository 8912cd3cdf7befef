package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"botdrop/internal/resolver"
)

// Loader produces the picker rows. force asks the loader to bypass caches.
type Loader func(ctx context.Context, force bool) Page

// PickerModel is a filterable single-choice list whose rows are loaded in the
// background. Each load is tagged with a request id; results that arrive after
// a newer load started, or after the picker closed, are dropped.
type PickerModel struct {
	ctx   context.Context
	title string
	load  Loader
	gen   *resolver.Generation

	spinner spinner.Model
	filter  textinput.Model

	loading  bool
	items    []Item
	visible  []int
	cursor   int
	advisory string
	source   string
	err      error

	height    int
	chosen    string
	done      bool
	cancelled bool
}

// NewPicker creates a picker titled title that fills itself from load.
func NewPicker(ctx context.Context, title string, load Loader) PickerModel {
	if ctx == nil {
		ctx = context.Background()
	}
	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	ti := textinput.New()
	ti.Placeholder = "filter"
	ti.Prompt = "/ "
	ti.Focus()
	return PickerModel{
		ctx:     ctx,
		title:   title,
		load:    load,
		gen:     &resolver.Generation{},
		spinner: sp,
		filter:  ti,
		loading: true,
		height:  12,
	}
}

// Chosen returns the selected value and whether the user confirmed one.
func (m PickerModel) Chosen() (string, bool) {
	return m.chosen, m.chosen != "" && !m.cancelled
}

// Err returns the error of the last applied load, if any.
func (m PickerModel) Err() error {
	return m.err
}

// loadCmd starts a new request. Any request started earlier becomes stale.
func (m PickerModel) loadCmd(force bool) tea.Cmd {
	id := m.gen.Next()
	ctx, load := m.ctx, m.load
	return func() tea.Msg {
		return pageLoadedMsg{id: id, page: load(ctx, force)}
	}
}

// Init satisfies the tea.Model interface.
func (m PickerModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, textinput.Blink, m.loadCmd(false))
}

// Update satisfies the tea.Model interface.
func (m PickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case pageLoadedMsg:
		if m.done || !m.gen.IsCurrent(msg.id) {
			return m, nil
		}
		m.applyPage(msg.page)
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		if msg.Height > 8 {
			m.height = msg.Height - 8
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.gen.Invalidate()
			m.cancelled = true
			m.done = true
			return m, tea.Quit
		case tea.KeyEnter:
			if len(m.visible) == 0 {
				return m, nil
			}
			m.chosen = m.items[m.visible[m.cursor]].Value
			m.gen.Invalidate()
			m.done = true
			return m, tea.Quit
		case tea.KeyUp, tea.KeyCtrlP:
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil
		case tea.KeyDown, tea.KeyCtrlN:
			if m.cursor < len(m.visible)-1 {
				m.cursor++
			}
			return m, nil
		case tea.KeyCtrlR:
			m.loading = true
			m.err = nil
			return m, tea.Batch(m.spinner.Tick, m.loadCmd(true))
		}
	}

	var cmd tea.Cmd
	before := m.filter.Value()
	m.filter, cmd = m.filter.Update(msg)
	if m.filter.Value() != before {
		m.refilter()
	}
	return m, cmd
}

func (m *PickerModel) applyPage(page Page) {
	m.loading = false
	m.items = page.Items
	m.advisory = page.Advisory
	m.source = page.Source
	m.err = page.Err
	m.refilter()
}

func (m *PickerModel) refilter() {
	query := strings.ToLower(strings.TrimSpace(m.filter.Value()))
	visible := make([]int, 0, len(m.items))
	for i, item := range m.items {
		if query == "" || strings.Contains(strings.ToLower(item.Value), query) {
			visible = append(visible, i)
		}
	}
	m.visible = visible
	if m.cursor >= len(m.visible) {
		m.cursor = max(len(m.visible)-1, 0)
	}
}

// View satisfies the tea.Model interface.
func (m PickerModel) View() string {
	if m.done {
		return ""
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render(m.title))
	if m.source != "" && !m.loading {
		b.WriteString("  " + SourceStyle(m.source).Render("["+m.source+"]"))
	}
	b.WriteString("\n")
	b.WriteString(m.filter.View())
	b.WriteString("\n\n")

	switch {
	case m.loading:
		fmt.Fprintf(&b, "%s Loading...\n", m.spinner.View())
	case m.err != nil:
		b.WriteString(ErrorStyle.Render(m.err.Error()) + "\n")
	case len(m.visible) == 0:
		b.WriteString(HelpStyle.Render("No matches") + "\n")
	default:
		start := 0
		if m.cursor >= m.height {
			start = m.cursor - m.height + 1
		}
		end := min(start+m.height, len(m.visible))
		for row := start; row < end; row++ {
			item := m.items[m.visible[row]]
			line := item.Value
			if item.Note != "" {
				line += "  " + NoteStyle.Render("← "+item.Note)
			}
			if row == m.cursor {
				b.WriteString(CursorStyle.Render("> ") + line + "\n")
			} else {
				b.WriteString("  " + line + "\n")
			}
		}
	}

	if m.advisory != "" && !m.loading {
		b.WriteString("\n" + AdvisoryStyle.Render(m.advisory) + "\n")
	}
	b.WriteString("\n" + HelpStyle.Render("↑/↓ move • enter select • ctrl+r refresh • esc cancel") + "\n")
	return b.String()
}
