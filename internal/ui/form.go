package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"prepdeck/internal/link"
	"prepdeck/internal/model"
	"prepdeck/internal/render"
)

const (
	previewLength = 150
	deleteKey     = "ctrl+d"
)

type formField int

const (
	fieldTitle formField = iota
	fieldTags
	fieldContent
)

// form is the create and edit screen. id is empty while creating.
type form struct {
	id      string
	title   textinput.Model
	tags    textinput.Model
	content textarea.Model
	focus   formField

	// linkedTo is the id the edited question shares its answer with.
	linkedTo string
	err      string

	picker        *linkPicker
	confirmDelete bool
}

type linkPicker struct {
	candidates []model.Question
	cursor     int
}

func newForm(width int) *form {
	title := textinput.New()
	title.Placeholder = "Question title"
	title.Prompt = ""
	title.CharLimit = 512
	title.Width = max(width-12, 20)

	tags := textinput.New()
	tags.Placeholder = "go; concurrency"
	tags.Prompt = ""
	tags.CharLimit = 256
	tags.Width = max(width-12, 20)

	content := textarea.New()
	content.Placeholder = "Write your answer in markdown. You can use **bold**, *italic*, lists, code blocks, and more."
	content.ShowLineNumbers = false
	content.CharLimit = 0
	content.SetWidth(max(width-4, 20))
	content.SetHeight(10)

	f := &form{title: title, tags: tags, content: content}
	f.setFocus(fieldTitle)
	return f
}

func newEditForm(q model.Question, width int) *form {
	f := newForm(width)
	f.id = q.ID
	f.title.SetValue(q.Title)
	f.tags.SetValue(strings.Join(q.Tags, "; "))
	f.content.SetValue(q.Content)
	f.linkedTo = q.LinkedID()
	return f
}

func (f *form) editing() bool { return f.id != "" }

func (f *form) linked() bool { return f.linkedTo != "" }

func (f *form) setFocus(field formField) {
	f.focus = field
	f.title.Blur()
	f.tags.Blur()
	f.content.Blur()
	switch field {
	case fieldTitle:
		f.title.Focus()
	case fieldTags:
		f.tags.Focus()
	case fieldContent:
		f.content.Focus()
	}
}

func (f *form) fields() []formField {
	if f.linked() {
		return []formField{fieldTitle, fieldTags}
	}
	return []formField{fieldTitle, fieldTags, fieldContent}
}

func (f *form) cycle(delta int) {
	fields := f.fields()
	cur := 0
	for i, fl := range fields {
		if fl == f.focus {
			cur = i
		}
	}
	f.setFocus(fields[wrapIndex(cur+delta, len(fields))])
}

// validate checks the form before anything reaches the store.
func (f *form) validate() error {
	if strings.TrimSpace(f.title.Value()) == "" {
		return &model.ValidationError{Field: "title"}
	}
	if !f.linked() && strings.TrimSpace(f.content.Value()) == "" {
		return &model.ValidationError{Field: "content", Reason: "an answer is required unless the question shares one"}
	}
	return nil
}

func (f *form) input() model.Input {
	return model.Input{
		Title:   f.title.Value(),
		Content: f.content.Value(),
		Tags:    model.SplitTags(f.tags.Value()),
	}
}

// patch leaves the content out for a linked question so the link survives.
func (f *form) patch() model.Patch {
	p := model.Patch{
		Title: model.StringPtr(f.title.Value()),
		Tags:  model.TagsPtr(model.SplitTags(f.tags.Value())),
	}
	if !f.linked() {
		p.Content = model.StringPtr(f.content.Value())
	}
	return p
}

func (m Model) openCreate() (Model, tea.Cmd) {
	m.form = newForm(m.width)
	m.screen = screenCreate
	return m, textinput.Blink
}

func (m Model) openEdit(id string) (Model, tea.Cmd) {
	q, ok := m.store.Get(id)
	if !ok {
		return m.notify(noteError, (&model.NotFoundError{ID: id}).Error())
	}
	m.form = newEditForm(q, m.width)
	m.screen = screenEdit
	return m, textinput.Blink
}

func (m Model) closeForm() Model {
	m.form = nil
	m.screen = screenHome
	m.home.refresh()
	return m
}

func (m Model) updateForm(msg tea.KeyMsg) (Model, tea.Cmd) {
	f := m.form
	key := msg.String()
	if f.confirmDelete {
		return m.updateFormDelete(key)
	}
	if f.picker != nil {
		return m.updatePicker(key)
	}

	switch key {
	case "esc":
		return m.closeForm(), nil
	case "tab":
		f.cycle(1)
		return m, nil
	case "shift+tab":
		f.cycle(-1)
		return m, nil
	case m.cfg.Keys.Save:
		return m.submitForm()
	case "enter":
		if f.focus != fieldContent {
			fields := f.fields()
			if f.focus == fields[len(fields)-1] {
				return m.submitForm()
			}
			f.cycle(1)
			return m, nil
		}
	case m.cfg.Keys.Link:
		if f.editing() && !f.linked() {
			candidates := m.store.LinkCandidates(f.id)
			if len(candidates) == 0 {
				f.err = "No other question has an answer to share."
				return m, nil
			}
			f.picker = &linkPicker{candidates: candidates}
		}
		return m, nil
	case m.cfg.Keys.Unlink:
		if f.editing() && f.linked() {
			return m.unlink()
		}
		return m, nil
	case deleteKey:
		if f.editing() {
			f.confirmDelete = true
		}
		return m, nil
	}

	var cmd tea.Cmd
	switch f.focus {
	case fieldTitle:
		f.title, cmd = f.title.Update(msg)
	case fieldTags:
		f.tags, cmd = f.tags.Update(msg)
	case fieldContent:
		if !f.linked() {
			f.content, cmd = f.content.Update(msg)
		}
	}
	return m, cmd
}

func (m Model) submitForm() (Model, tea.Cmd) {
	f := m.form
	if err := f.validate(); err != nil {
		f.err = err.Error()
		return m, nil
	}

	var err error
	if f.editing() {
		_, err = m.store.Update(f.id, f.patch())
	} else {
		_, err = m.store.Create(f.input())
	}
	var ve *model.ValidationError
	if errors.As(err, &ve) {
		f.err = ve.Error()
		return m, nil
	}
	created := !f.editing()
	m = m.closeForm()
	if err != nil {
		return m.fail(err)
	}
	if created {
		return m.notify(noteSuccess, "Question added.")
	}
	return m.notify(noteSuccess, "Question updated.")
}

func (m Model) unlink() (Model, tea.Cmd) {
	f := m.form
	_, err := m.store.Update(f.id, model.Patch{Link: model.StringPtr(""), Content: model.StringPtr("")})
	var pe *model.PersistenceError
	if err != nil && !errors.As(err, &pe) {
		return m.fail(err)
	}
	f.linkedTo = ""
	f.content.SetValue("")
	f.setFocus(fieldContent)
	if err != nil {
		return m.fail(err)
	}
	return m.notify(noteSuccess, "Answer unlinked.")
}

func (m Model) updatePicker(key string) (Model, tea.Cmd) {
	f := m.form
	p := f.picker
	switch key {
	case "j", "down":
		p.cursor = wrapIndex(p.cursor+1, len(p.candidates))
	case "k", "up":
		p.cursor = wrapIndex(p.cursor-1, len(p.candidates))
	case "esc":
		f.picker = nil
	case "enter":
		target := p.candidates[clampCursor(p.cursor, len(p.candidates))]
		_, err := m.store.Update(f.id, model.Patch{Link: model.StringPtr(target.ID), Content: model.StringPtr("")})
		var pe *model.PersistenceError
		if err != nil && !errors.As(err, &pe) {
			f.picker = nil
			f.err = err.Error()
			return m, nil
		}
		m = m.closeForm()
		if err != nil {
			return m.fail(err)
		}
		return m.notify(noteSuccess, fmt.Sprintf("Now sharing the answer of %q.", target.Title))
	}
	return m, nil
}

func (m Model) updateFormDelete(key string) (Model, tea.Cmd) {
	f := m.form
	switch key {
	case "y", "Y":
		id := f.id
		m = m.closeForm()
		return m.deleteQuestion(id)
	case "n", "N", "esc":
		f.confirmDelete = false
	}
	return m, nil
}

func (m Model) viewForm() string {
	f := m.form
	var b strings.Builder
	if f.editing() {
		b.WriteString(titleStyle.Render("Edit Question"))
	} else {
		b.WriteString(titleStyle.Render("Add Question"))
	}
	b.WriteString("\n\n")

	if f.linked() {
		b.WriteString(m.sharedPanel(f.linkedTo))
		b.WriteString("\n\n")
	}

	b.WriteString(fieldLabel("Title", f.focus == fieldTitle))
	b.WriteString(f.title.View())
	b.WriteString("\n")
	b.WriteString(fieldLabel("Tags", f.focus == fieldTags))
	b.WriteString(f.tags.View())
	b.WriteString("\n")
	if f.linked() {
		b.WriteString(mutedStyle.Render("This question is using a shared answer. Unlink to edit directly."))
	} else {
		b.WriteString(fieldLabel("Answer (markdown)", f.focus == fieldContent))
		b.WriteString("\n")
		b.WriteString(f.content.View())
	}
	b.WriteString("\n")

	if f.err != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(f.err))
		b.WriteString("\n")
	}

	switch {
	case f.confirmDelete:
		b.WriteString("\n")
		b.WriteString(boxStyle.Render(fmt.Sprintf("Delete %q?\nThis action cannot be undone. y/n", f.title.Value())))
	case f.picker != nil:
		b.WriteString("\n")
		b.WriteString(m.renderPicker())
	}

	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(m.formHelp()))
	return b.String()
}

func (m Model) sharedPanel(targetID string) string {
	var b strings.Builder
	b.WriteString(badgeShared.Render("This question uses a shared answer"))
	b.WriteString("\n")
	target, ok := m.store.Get(targetID)
	if !ok {
		b.WriteString("Linked to question: " + link.UnknownTitle)
		return boxStyle.Render(b.String())
	}
	b.WriteString("Linked to question: " + target.Title)
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("Preview of shared answer:"))
	b.WriteString("\n")
	b.WriteString(render.Preview(target.Content, previewLength))
	return boxStyle.Render(b.String())
}

func (m Model) renderPicker() string {
	p := m.form.picker
	var b strings.Builder
	b.WriteString(titleStyle.Render("Use answer from another question"))
	b.WriteString("\n\n")
	for i, q := range p.candidates {
		if i == p.cursor {
			b.WriteString(selectedStyle.Render("> " + q.Title))
		} else {
			b.WriteString("  " + q.Title)
		}
		b.WriteString("\n")
	}
	if cur := p.candidates[clampCursor(p.cursor, len(p.candidates))]; cur.Content != "" {
		b.WriteString("\n")
		b.WriteString(mutedStyle.Render(render.Preview(cur.Content, previewLength)))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("j/k move • enter link • esc cancel"))
	return boxStyle.Render(b.String())
}

func (m Model) formHelp() string {
	f := m.form
	parts := []string{"tab next field", m.cfg.Keys.Save + " save", "esc cancel"}
	if f.editing() {
		if f.linked() {
			parts = append(parts, m.cfg.Keys.Unlink+" unlink")
		} else {
			parts = append(parts, m.cfg.Keys.Link+" use another answer")
		}
		parts = append(parts, deleteKey+" delete")
	}
	return strings.Join(parts, " • ")
}

func fieldLabel(name string, focused bool) string {
	if focused {
		return selectedStyle.Render(name+": ")
	}
	return name + ": "
}
