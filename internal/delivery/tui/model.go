package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/yourusername/breakdown-bot/internal/domain/entity"
	"github.com/yourusername/breakdown-bot/internal/lookup"
	"github.com/yourusername/breakdown-bot/internal/usecase"
)

type mode int

const (
	modeSearch mode = iota
	modeForm
	modeConfirm
	modeSaving
)

// explainedMsg arrives when the language model answered (or failed).
type explainedMsg struct {
	seq     int
	outcome usecase.SearchOutcome
}

// appendedMsg arrives when a confirmed row was written.
type appendedMsg struct {
	state  usecase.InteractionState
	result usecase.AppendResult
	err    error
}

// Model bubbletea model of the lookup tool
type Model struct {
	ctx    context.Context
	lookup usecase.LookupUseCase
	entry  usecase.EntryUseCase

	state       usecase.InteractionState
	input       textinput.Model
	formInput   textinput.Model
	suggestions []lookup.Suggestion
	cursor      int // -1 when no suggestion is highlighted

	mode        mode
	outcome     *usecase.SearchOutcome
	explanation string
	explaining  bool
	seq         int

	status string
	err    error

	styles   Styles
	renderer *glamour.TermRenderer
	width    int
}

// New builds the model. ctx bounds the language model calls.
func New(ctx context.Context, lookupUC usecase.LookupUseCase, entryUC usecase.EntryUseCase) Model {
	ti := textinput.New()
	ti.Placeholder = "Search Machine Name or Problem"
	ti.Prompt = "> "
	ti.CharLimit = 256
	ti.Focus()

	fi := textinput.New()
	fi.Prompt = "> "
	fi.CharLimit = 1024

	renderer, _ := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)

	return Model{
		ctx:       ctx,
		lookup:    lookupUC,
		entry:     entryUC,
		state:     usecase.NewInteractionState(),
		input:     ti,
		formInput: fi,
		cursor:    -1,
		styles:    DefaultStyles(),
		renderer:  renderer,
		width:     80,
	}
}

// Run starts the program and blocks until the user quits.
func Run(ctx context.Context, lookupUC usecase.LookupUseCase, entryUC usecase.EntryUseCase) error {
	p := tea.NewProgram(New(ctx, lookupUC, entryUC), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = msg.Width - 8
		m.formInput.Width = msg.Width - 8
		return m, nil

	case explainedMsg:
		if msg.seq != m.seq {
			return m, nil
		}
		m.explaining = false
		out := msg.outcome
		m.outcome = &out
		m.explanation = m.renderMarkdown(out.Explanation)
		return m, nil

	case appendedMsg:
		if msg.err != nil {
			m.state = msg.state
			m.mode = modeConfirm
			m.status = ""
			m.err = msg.err
			return m, nil
		}
		m.state = msg.state
		m.mode = modeSearch
		m.err = nil
		m.status = fmt.Sprintf("Row added successfully! %d rows in the dataset.", msg.result.RowCount)
		m.input.Focus()
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.mode {
		case modeForm:
			return m.updateForm(msg)
		case modeConfirm:
			return m.updateConfirm(msg)
		case modeSaving:
			return m, nil
		default:
			return m.updateSearch(msg)
		}
	}
	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up":
		if len(m.suggestions) > 0 {
			if m.cursor <= 0 {
				m.cursor = len(m.suggestions) - 1
			} else {
				m.cursor--
			}
		}
		return m, nil
	case "down":
		if len(m.suggestions) > 0 {
			m.cursor = (m.cursor + 1) % len(m.suggestions)
		}
		return m, nil
	case "tab":
		if m.cursor >= 0 && m.cursor < len(m.suggestions) {
			m.input.SetValue(m.suggestions[m.cursor].Text)
			m.input.CursorEnd()
			m.refreshSuggestions()
		}
		return m, nil
	case "enter":
		if m.cursor >= 0 && m.cursor < len(m.suggestions) {
			picked := m.suggestions[m.cursor]
			m.input.SetValue(picked.Text)
			m.input.CursorEnd()
		}
		return m.search()
	case "ctrl+a":
		m.state = m.entry.BeginForm(m.state)
		m.mode = modeForm
		m.status = ""
		m.err = nil
		m.input.Blur()
		m.formInput.SetValue("")
		return m, m.formInput.Focus()
	}

	var cmd tea.Cmd
	before := m.input.Value()
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != before {
		m.refreshSuggestions()
	}
	return m, cmd
}

func (m *Model) refreshSuggestions() {
	m.cursor = -1
	s, err := m.lookup.Suggest(m.ctx, m.input.Value())
	if err != nil {
		m.err = err
		m.suggestions = nil
		return
	}
	m.err = nil
	m.suggestions = s
}

func (m Model) search() (tea.Model, tea.Cmd) {
	next, out, err := m.lookup.Lookup(m.ctx, m.state, m.input.Value())
	m.seq++
	m.state = next
	m.suggestions = out.Suggestions
	m.cursor = -1
	m.explanation = ""
	m.explaining = false
	m.status = ""
	if err != nil {
		m.err = err
		m.outcome = nil
		return m, nil
	}
	m.err = nil
	m.outcome = &out
	if out.Status != usecase.OutcomeMatches {
		return m, nil
	}

	m.explaining = true
	seq, ctx, lookupUC := m.seq, m.ctx, m.lookup
	return m, func() tea.Msg {
		return explainedMsg{seq: seq, outcome: lookupUC.Explain(ctx, out)}
	}
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return m.leaveForm("Add cancelled.")
	case "enter":
		col, ok := m.entry.CurrentField(m.state)
		if ok {
			next, err := m.entry.SetField(m.state, col, m.formInput.Value())
			if err != nil {
				m.err = err
				return m, nil
			}
			m.state = next
			m.formInput.SetValue("")
		}
		if _, more := m.entry.CurrentField(m.state); more {
			return m, nil
		}
		next, err := m.entry.RequestAdd(m.state)
		if errors.Is(err, entity.ErrEmptyRecord) {
			return m.leaveForm("All fields are empty, nothing to add.")
		}
		if err != nil {
			m.err = err
			return m, nil
		}
		m.state = next
		m.mode = modeConfirm
		m.formInput.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.formInput, cmd = m.formInput.Update(msg)
	return m, cmd
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+y", "y":
		state, ctx, entryUC := m.state, m.ctx, m.entry
		// one save per confirmation; keys are ignored until appendedMsg
		m.mode = modeSaving
		m.state.ConfirmPending = false
		m.status = "Saving..."
		m.err = nil
		return m, func() tea.Msg {
			next, res, err := entryUC.ConfirmAdd(ctx, state, "tui")
			return appendedMsg{state: next, result: res, err: err}
		}
	case "esc", "n":
		m.state = m.entry.CancelAdd(m.state)
		return m.leaveForm("Add cancelled.")
	}
	return m, nil
}

func (m Model) leaveForm(status string) (tea.Model, tea.Cmd) {
	next := m.entry.ClearForm(m.entry.CancelAdd(m.state))
	next.FormActive = false
	next.FormCleared = false
	m.state = next
	m.mode = modeSearch
	m.status = status
	m.err = nil
	m.formInput.Blur()
	return m, m.input.Focus()
}

func (m Model) renderMarkdown(md string) string {
	if md == "" || m.renderer == nil {
		return md
	}
	out, err := m.renderer.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n")
}
