package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"prepdeck/internal/logger"
)

type noteKind int

const (
	noteSuccess noteKind = iota
	noteWarning
	noteError
)

type notification struct {
	kind noteKind
	text string
}

// dismissMsg hides the notification of generation gen, if it is still shown.
type dismissMsg struct {
	gen int
}

func (n notification) View() string {
	switch n.kind {
	case noteError:
		return errorStyle.Render(n.text)
	case noteWarning:
		return warnStyle.Render(n.text)
	default:
		return successStyle.Render(n.text)
	}
}

func dismissAfter(d time.Duration, gen int) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg { return dismissMsg{gen: gen} })
}

// notify replaces the current notification. The pending dismiss of the old one
// no longer matches the generation and is ignored.
func (m Model) notify(kind noteKind, text string) (Model, tea.Cmd) {
	m.noteGen++
	m.note = &notification{kind: kind, text: text}
	if m.notifyFor <= 0 {
		return m, nil
	}
	return m, dismissAfter(m.notifyFor, m.noteGen)
}

func (m Model) fail(err error) (Model, tea.Cmd) {
	m.log.Error("operation failed", logger.Error(err))
	return m.notify(noteError, "Error: "+err.Error())
}
