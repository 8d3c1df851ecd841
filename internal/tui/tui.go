// Package tui provides the interactive terminal playground: a source
// editor on the left, the formatted SQL on the right, re-rendered live on
// every keystroke.
//
// Each edit triggers a pipeline run through the sequencer; the view polls
// the sequencer and always shows the outcome of the most recently issued
// run. Stale completions are discarded upstream, so rapid typing never
// flickers older results over newer ones.
package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/koskimas/kysely-playground-sub001/internal/pipeline"
	"github.com/koskimas/kysely-playground-sub001/pkg/core"
)

const pollInterval = 30 * time.Millisecond

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	paneStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

// pollMsg asks the model to check the sequencer for a settled outcome.
type pollMsg struct{}

func poll() tea.Cmd {
	return tea.Tick(pollInterval, func(time.Time) tea.Msg {
		return pollMsg{}
	})
}

// Model is the bubbletea model for the playground.
type Model struct {
	ctx      context.Context
	pipeline *pipeline.Pipeline

	editor textarea.Model
	output viewport.Model

	dialects   []string
	dialectIdx int
	options    core.FormatOptions

	width   int
	height  int
	loading bool
	lastErr error
}

// New creates the playground model.
func New(ctx context.Context, p *pipeline.Pipeline, dialects []string, initialDialect string, opts core.FormatOptions) Model {
	ed := textarea.New()
	ed.Placeholder = `query = select_from("table").select("col")`
	ed.Focus()

	idx := 0
	for i, d := range dialects {
		if d == initialDialect {
			idx = i
			break
		}
	}

	return Model{
		ctx:        ctx,
		pipeline:   p,
		editor:     ed,
		output:     viewport.New(40, 10),
		dialects:   dialects,
		dialectIdx: idx,
		options:    opts,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "tab":
			m.dialectIdx = (m.dialectIdx + 1) % len(m.dialects)
			m.loading = true
			m.pipeline.SetDialect(m.ctx, m.dialects[m.dialectIdx])
			return m, poll()
		case "ctrl+p":
			m.options.InlineParameters = !m.options.InlineParameters
			m.loading = true
			m.pipeline.SetOptions(m.ctx, m.options)
			return m, poll()
		case "ctrl+k":
			if m.options.KeywordCase == core.KeywordUpper {
				m.options.KeywordCase = core.KeywordLower
			} else {
				m.options.KeywordCase = core.KeywordUpper
			}
			m.loading = true
			m.pipeline.SetOptions(m.ctx, m.options)
			return m, poll()
		}

		before := m.editor.Value()
		var cmd tea.Cmd
		m.editor, cmd = m.editor.Update(msg)
		if m.editor.Value() != before {
			m.loading = true
			m.pipeline.SetSource(m.ctx, m.editor.Value())
			return m, tea.Batch(cmd, poll())
		}
		return m, cmd

	case pollMsg:
		if m.pipeline.Sequencer().IsLoading() {
			return m, poll()
		}
		m.loading = false
		if out, ok := m.pipeline.Sequencer().Outcome(); ok {
			m.lastErr = out.Err
			if out.Err == nil {
				m.output.SetContent(out.SQL)
			}
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	return m, cmd
}

func (m *Model) resize() {
	paneWidth := m.width/2 - 4
	paneHeight := m.height - 6
	if paneWidth < 10 {
		paneWidth = 10
	}
	if paneHeight < 3 {
		paneHeight = 3
	}
	m.editor.SetWidth(paneWidth)
	m.editor.SetHeight(paneHeight)
	m.output.Width = paneWidth
	m.output.Height = paneHeight
}

// View implements tea.Model.
func (m Model) View() string {
	title := titleStyle.Render("query playground")

	status := fmt.Sprintf("dialect: %s  inline: %t  case: %s",
		m.dialects[m.dialectIdx], m.options.InlineParameters, m.options.KeywordCase)
	if m.loading {
		status += "  (compiling…)"
	}

	output := m.output.View()
	if m.lastErr != nil {
		output = errorStyle.Render(m.lastErr.Error())
	}

	panes := lipgloss.JoinHorizontal(lipgloss.Top,
		paneStyle.Render(m.editor.View()),
		paneStyle.Render(output),
	)

	help := statusStyle.Render("tab: dialect • ctrl+p: inline params • ctrl+k: keyword case • esc: quit")

	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		statusStyle.Render(status),
		panes,
		help,
	)
}

// Run starts the interactive playground and blocks until it exits.
func Run(ctx context.Context, p *pipeline.Pipeline, dialects []string, initialDialect string, opts core.FormatOptions) error {
	m := New(ctx, p, dialects, initialDialect, opts)
	prog := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := prog.Run()
	return err
}
