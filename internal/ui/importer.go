package ui

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"prepdeck/internal/csvio"
	"prepdeck/internal/logger"
	"prepdeck/internal/model"
)

type importer struct {
	path    textinput.Model
	loading bool
	err     string
}

// importDoneMsg carries the parsed batch of one upload back to Update.
type importDoneMsg struct {
	questions []model.Question
	err       error
}

func newImporter(width int) *importer {
	ti := textinput.New()
	ti.Placeholder = "path/to/questions.csv"
	ti.Prompt = "file: "
	ti.CharLimit = 1024
	ti.Width = max(width-12, 20)
	ti.Focus()
	return &importer{path: ti}
}

func readCSV(path string) tea.Cmd {
	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return importDoneMsg{err: err}
		}
		defer f.Close()
		qs, err := csvio.Import(f, csvio.ImportOptions{})
		return importDoneMsg{questions: qs, err: err}
	}
}

func (m Model) openImport() (Model, tea.Cmd) {
	m.imp = newImporter(m.width)
	m.screen = screenImport
	return m, textinput.Blink
}

func (m Model) updateImport(msg tea.KeyMsg) (Model, tea.Cmd) {
	imp := m.imp
	switch msg.String() {
	case "esc":
		if imp.loading {
			return m, nil
		}
		m.imp = nil
		m.screen = screenHome
		return m, nil
	case "enter":
		if imp.loading {
			return m, nil
		}
		path := strings.TrimSpace(imp.path.Value())
		if path == "" {
			imp.err = "Please select a CSV file."
			return m, nil
		}
		if !strings.EqualFold(filepath.Ext(path), ".csv") {
			imp.err = "Please upload a valid CSV file."
			return m, nil
		}
		imp.loading = true
		imp.err = ""
		return m, readCSV(path)
	}
	if imp.loading {
		return m, nil
	}
	var cmd tea.Cmd
	imp.path, cmd = imp.path.Update(msg)
	return m, cmd
}

func (m Model) finishImport(msg importDoneMsg) (Model, tea.Cmd) {
	imp := m.imp
	if imp == nil {
		return m, nil
	}
	imp.loading = false
	if msg.err != nil {
		var pe *model.ParseError
		if errors.As(msg.err, &pe) {
			imp.err = pe.Error()
		} else {
			imp.err = "Failed to read the file: " + msg.err.Error()
		}
		m.log.Warn("import failed", logger.Error(msg.err))
		return m, nil
	}

	added, err := m.store.Append(msg.questions)
	var pe *model.PersistenceError
	if err != nil && !errors.As(err, &pe) {
		imp.err = err.Error()
		return m, nil
	}
	m.imp = nil
	m.screen = screenHome
	m.home.refresh()
	if err != nil {
		return m.fail(err)
	}
	return m.notify(noteSuccess, fmt.Sprintf("Successfully imported %d questions.", len(added)))
}

func (m Model) viewImport() string {
	imp := m.imp
	var b strings.Builder
	b.WriteString(titleStyle.Render("Import Questions from CSV"))
	b.WriteString("\n\n")
	b.WriteString(mutedStyle.Render("Columns: title (or question), content (or answer), linkedQuestionTitle, tags (separated by ; or ,)"))
	b.WriteString("\n\n")
	b.WriteString(imp.path.View())
	b.WriteString("\n")
	if imp.loading {
		b.WriteString("\n")
		b.WriteString(mutedStyle.Render("Importing..."))
		b.WriteString("\n")
	}
	if imp.err != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(imp.err))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("enter upload • esc back"))
	return b.String()
}
