package tui

import (
	"fmt"
	"strings"

	"github.com/yourusername/breakdown-bot/internal/usecase"
)

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render("Machine Breakdown Lookup"))
	b.WriteString("\n\n")

	switch m.mode {
	case modeForm:
		b.WriteString(m.formView())
	case modeConfirm, modeSaving:
		b.WriteString(m.confirmView())
	default:
		b.WriteString(m.searchView())
	}

	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(m.styles.Error.Render("Error: " + m.err.Error()))
	}
	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(m.styles.Status.Render(m.status))
	}
	b.WriteString("\n\n")
	b.WriteString(m.styles.Help.Render(m.helpLine()))
	return b.String()
}

func (m Model) searchView() string {
	var b strings.Builder
	b.WriteString(m.styles.Input.Render(m.input.View()))
	b.WriteString("\n")

	for i, s := range m.suggestions {
		if i == m.cursor {
			b.WriteString(m.styles.Selected.Render("> " + s.Text))
		} else {
			b.WriteString(m.styles.Suggestion.Render(s.Text))
		}
		b.WriteString("\n")
	}

	if m.outcome == nil {
		return b.String()
	}
	b.WriteString("\n")
	switch m.outcome.Status {
	case usecase.OutcomeNoMatches:
		b.WriteString("No matches found.")
	case usecase.OutcomeMatches:
		b.WriteString(m.styles.Header.Render(fmt.Sprintf("Matching Results (%d found)", len(m.outcome.Matches))))
		b.WriteString("\n")
		b.WriteString(m.styles.Table.Render(m.outcome.Table))
		b.WriteString("\n\n")
		b.WriteString(m.styles.Header.Render("Explanation"))
		b.WriteString("\n")
		switch {
		case m.explaining:
			b.WriteString(m.styles.Status.Render("Asking the language model..."))
		case m.outcome.ExplainErr != nil:
			b.WriteString(m.styles.Error.Render("Explanation unavailable: " + m.outcome.ExplainErr.Error()))
		default:
			b.WriteString(m.explanation)
		}
	}
	return b.String()
}

func (m Model) formView() string {
	var b strings.Builder
	b.WriteString(m.styles.Header.Render("Add a new row"))
	b.WriteString("\n")
	cols := m.entry.Columns()
	current, _ := m.entry.CurrentField(m.state)
	for _, col := range cols {
		switch {
		case col == current:
			b.WriteString(m.styles.Selected.Render("> " + col))
			b.WriteString("\n")
			b.WriteString(m.styles.Input.Render(m.formInput.View()))
		default:
			v := m.state.Form[col]
			b.WriteString(m.styles.Suggestion.Render(fmt.Sprintf("%s: %s", col, v)))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) confirmView() string {
	var b strings.Builder
	b.WriteString(m.styles.Header.Render("New row"))
	b.WriteString("\n")
	for _, col := range m.entry.Columns() {
		v := m.state.Form[col]
		if strings.TrimSpace(v) == "" {
			v = "(empty)"
		}
		b.WriteString(fmt.Sprintf("  %s: %s\n", col, v))
	}
	b.WriteString("\nAre you sure you want to add this row?\n\n")
	b.WriteString(m.styles.Button.Render("Yes (ctrl+y)"))
	b.WriteString("  ")
	b.WriteString(m.styles.Button.Render("Cancel (esc)"))
	return b.String()
}

func (m Model) helpLine() string {
	switch m.mode {
	case modeForm:
		return "enter: next field • esc: cancel • ctrl+c: quit"
	case modeConfirm:
		return "ctrl+y: add row • esc: cancel • ctrl+c: quit"
	case modeSaving:
		return "saving... • ctrl+c: quit"
	default:
		return "enter: search • ↑/↓: select • tab: fill • ctrl+a: add row • ctrl+c: quit"
	}
}
