package ui

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prepdeck/internal/config"
	"prepdeck/internal/csvio"
	"prepdeck/internal/keynav"
	"prepdeck/internal/model"
	"prepdeck/internal/render"
	"prepdeck/internal/store"
)

var t0 = time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)

func seed() []model.Question {
	return []model.Question{
		{ID: "q1", Title: "What is a goroutine?", Content: "A lightweight thread managed by the Go runtime.", Tags: []string{"go", "concurrency"}, CreatedAt: t0},
		{ID: "q2", Title: "What is a channel?", Content: "A typed conduit.", Tags: []string{"go"}, CreatedAt: t0.Add(time.Hour)},
		{ID: "q3", Title: "Explain goroutines vs threads", Tags: []string{}, LinkedAnswerID: model.StringPtr("q1"), CreatedAt: t0.Add(2 * time.Hour)},
		{ID: "q4", Title: "What is a mutex?", Tags: []string{}, CreatedAt: t0.Add(3 * time.Hour)},
	}
}

func newTestModel(t *testing.T, qs []model.Question) (Model, *store.Store) {
	t.Helper()
	n := 0
	s := store.New(nil, qs,
		store.WithClock(func() time.Time { return t0.Add(24 * time.Hour) }),
		store.WithIDs(func() string { n++; return "new-" + string(rune('a'+n-1)) }),
	)
	m := New(s, Options{
		Config:      config.Default(t.TempDir()),
		Renderer:    render.New(render.StyleNone),
		NotifyAfter: 5 * time.Second,
		ExportDir:   t.TempDir(),
		Now:         func() time.Time { return t0 },
	})
	return m, s
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "space":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "ctrl+f":
		return tea.KeyMsg{Type: tea.KeyCtrlF}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case "ctrl+l":
		return tea.KeyMsg{Type: tea.KeyCtrlL}
	case "ctrl+u":
		return tea.KeyMsg{Type: tea.KeyCtrlU}
	case "ctrl+d":
		return tea.KeyMsg{Type: tea.KeyCtrlD}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
}

func press(m Model, keys ...string) Model {
	for _, k := range keys {
		next, _ := m.Update(keyMsg(k))
		m = next.(Model)
	}
	return m
}

func titles(m Model) []string {
	out := make([]string, len(m.home.items))
	for i, q := range m.home.items {
		out[i] = q.Title
	}
	return out
}

func activeID(t *testing.T, m Model) string {
	t.Helper()
	q, ok := m.home.active()
	require.True(t, ok, "no active row")
	return q.ID
}

func TestHomeStartsBrowsingNewestFirst(t *testing.T) {
	m, _ := newTestModel(t, seed())

	assert.Equal(t, keynav.Browsing, m.home.nav.State())
	assert.Equal(t, []string{"What is a mutex?", "Explain goroutines vs threads", "What is a channel?", "What is a goroutine?"}, titles(m))
	assert.Equal(t, "q4", activeID(t, m))

	out := m.View()
	assert.Contains(t, out, "No Answer")
	assert.Contains(t, out, "Shared Answer")
	assert.Contains(t, out, "concurrency")
}

func TestHomeEmptyShowsPlaceholder(t *testing.T) {
	m, _ := newTestModel(t, nil)
	assert.Equal(t, keynav.Idle, m.home.nav.State())
	assert.Contains(t, m.View(), emptyListText)
}

func TestNavigateAndExpandLinked(t *testing.T) {
	m, _ := newTestModel(t, seed())

	m = press(m, "j")
	assert.Equal(t, "q3", activeID(t, m))
	m = press(m, "enter")
	assert.True(t, m.home.expanded["q3"])
	out := m.View()
	assert.Contains(t, out, "shared with: What is a goroutine?")
	assert.Contains(t, out, "lightweight thread")

	m = press(m, "space")
	assert.False(t, m.home.expanded["q3"])

	// k at the top moves into the search box.
	m = press(m, "k", "k")
	assert.Equal(t, keynav.SearchFocused, m.home.nav.State())
	assert.True(t, m.home.search.Focused())
}

func TestSearchFiltersAndEscClears(t *testing.T) {
	m, _ := newTestModel(t, seed())

	m = press(m, "/", "channel")
	assert.Equal(t, keynav.SearchFocused, m.home.nav.State())
	assert.Equal(t, []string{"What is a channel?"}, titles(m))

	m = press(m, "enter")
	assert.Equal(t, keynav.Browsing, m.home.nav.State())
	assert.Equal(t, "q2", activeID(t, m))
	assert.False(t, m.home.search.Focused())

	m = press(m, "esc")
	assert.Equal(t, "", m.home.search.Value())
	assert.Len(t, m.home.items, 4)
}

func TestSearchWithNoMatchKeepsFocus(t *testing.T) {
	m, _ := newTestModel(t, seed())
	m = press(m, "ctrl+f", "zzz", "enter")
	assert.Equal(t, keynav.SearchFocused, m.home.nav.State())
	assert.Empty(t, m.home.items)
	assert.Contains(t, m.View(), emptyListText)
}

func TestHelpAndSortOverlays(t *testing.T) {
	m, _ := newTestModel(t, seed())

	m = press(m, "?")
	assert.True(t, m.home.helpOpen)
	assert.Contains(t, m.View(), "Keyboard Shortcuts")
	m = press(m, "esc")
	assert.False(t, m.home.helpOpen)

	m = press(m, "s")
	assert.True(t, m.home.sortOpen)
	// newest is selected; one down is oldest.
	m = press(m, "j", "enter")
	assert.False(t, m.home.sortOpen)
	assert.Equal(t, "What is a goroutine?", titles(m)[0])
}

func TestTagOverlayFilters(t *testing.T) {
	m, _ := newTestModel(t, seed())

	m = press(m, "t")
	require.True(t, m.home.tagOpen)
	// Tags are sorted: concurrency, go.
	m = press(m, "space")
	assert.Equal(t, []string{"concurrency"}, m.home.filter.Tags)
	assert.Equal(t, []string{"What is a goroutine?"}, titles(m))

	m = press(m, "c", "esc")
	assert.False(t, m.home.tagOpen)
	assert.Len(t, m.home.items, 4)
}

func TestAnswerModal(t *testing.T) {
	m, _ := newTestModel(t, seed())

	m = press(m, "j", "j", "m")
	assert.Equal(t, keynav.ModalOpen, m.home.nav.State())
	assert.Equal(t, "q2", m.home.modalID)
	assert.Contains(t, m.View(), "A typed conduit.")

	// Application keys are off while the modal is open.
	m = press(m, "d")
	assert.Equal(t, confirmNone, m.confirm)

	m = press(m, "esc")
	assert.Equal(t, keynav.Browsing, m.home.nav.State())
	assert.Equal(t, "", m.home.modalID)

	m = press(m, "m", "e")
	assert.Equal(t, screenEdit, m.screen)
	assert.Equal(t, "q2", m.form.id)
}

func TestCreateValidatesContent(t *testing.T) {
	m, s := newTestModel(t, seed())

	m = press(m, "n")
	require.Equal(t, screenCreate, m.screen)
	m = press(m, "What is defer?", "ctrl+s")
	assert.Equal(t, screenCreate, m.screen)
	assert.Contains(t, m.form.err, "content")
	assert.Equal(t, 4, s.Len())

	m = press(m, "tab", "go; basics", "tab", "Runs when the function returns.", "ctrl+s")
	assert.Equal(t, screenHome, m.screen)
	require.Equal(t, 5, s.Len())
	require.NotNil(t, m.note)
	assert.Equal(t, "Question added.", m.note.text)

	q, ok := s.Get("new-a")
	require.True(t, ok)
	assert.Equal(t, "What is defer?", q.Title)
	assert.Equal(t, []string{"go", "basics"}, q.Tags)
	assert.Equal(t, "Runs when the function returns.", q.Content)
}

func TestCreateRequiresTitle(t *testing.T) {
	m, s := newTestModel(t, seed())
	m = press(m, "n", "ctrl+s")
	assert.Equal(t, "title is required", m.form.err)
	m = press(m, "esc")
	assert.Equal(t, screenHome, m.screen)
	assert.Equal(t, 4, s.Len())
}

func TestEditLinkedShowsPanelAndUnlinks(t *testing.T) {
	m, s := newTestModel(t, seed())

	m = press(m, "j", "e")
	require.Equal(t, screenEdit, m.screen)
	out := m.View()
	assert.Contains(t, out, "Linked to question: What is a goroutine?")
	assert.Contains(t, out, "Preview of shared answer:")

	// Saving a linked question leaves the link alone.
	m = press(m, " again", "ctrl+s")
	q, _ := s.Get("q3")
	assert.Equal(t, "Explain goroutines vs threads again", q.Title)
	assert.True(t, q.IsLinked())

	// The row stays active after saving.
	assert.Equal(t, "q3", activeID(t, m))
	m = press(m, "e", "ctrl+u")
	assert.Equal(t, screenEdit, m.screen)
	assert.False(t, m.form.linked())
	q, _ = s.Get("q3")
	assert.False(t, q.IsLinked())
	assert.Equal(t, "", q.Content)
}

func TestEditLinkPicker(t *testing.T) {
	m, s := newTestModel(t, seed())

	m = press(m, "e", "ctrl+l")
	require.NotNil(t, m.form.picker)
	var ids []string
	for _, q := range m.form.picker.candidates {
		ids = append(ids, q.ID)
	}
	assert.Equal(t, []string{"q1", "q2"}, ids)

	m = press(m, "j", "enter")
	assert.Equal(t, screenHome, m.screen)
	q, _ := s.Get("q4")
	assert.Equal(t, "q2", q.LinkedID())
	assert.Contains(t, m.note.text, "What is a channel?")
}

func TestDeleteRepairsLinks(t *testing.T) {
	m, s := newTestModel(t, seed())

	m = press(m, "j", "j", "j")
	assert.Equal(t, "q1", activeID(t, m))
	m = press(m, "d")
	assert.Equal(t, confirmDelete, m.confirm)
	assert.Contains(t, m.View(), "This action cannot be undone.")

	m = press(m, "y")
	assert.Equal(t, confirmNone, m.confirm)
	assert.Equal(t, 3, s.Len())
	q, _ := s.Get("q3")
	assert.False(t, q.IsLinked())
	// The active row is clamped to the shorter view.
	assert.Equal(t, "q2", activeID(t, m))
}

func TestDeleteFromForm(t *testing.T) {
	m, s := newTestModel(t, seed())
	m = press(m, "e", "ctrl+d", "y")
	assert.Equal(t, screenHome, m.screen)
	_, ok := s.Get("q4")
	assert.False(t, ok)
}

func TestClearAllData(t *testing.T) {
	m, s := newTestModel(t, seed())

	m = press(m, "X", "n")
	assert.Equal(t, 4, s.Len())

	m = press(m, "X", "y")
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, keynav.Idle, m.home.nav.State())
	assert.Equal(t, "All data has been cleared.", m.note.text)
}

func TestExport(t *testing.T) {
	empty, _ := newTestModel(t, nil)
	empty = press(empty, "x")
	assert.Equal(t, "No questions to export.", empty.note.text)
	assert.Equal(t, noteWarning, empty.note.kind)

	m, _ := newTestModel(t, seed())
	m = press(m, "x")
	require.Equal(t, noteSuccess, m.note.kind, m.note.text)
	data, err := os.ReadFile(filepath.Join(m.exportDir, csvio.FileName(t0)))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"Explain goroutines vs threads","","What is a goroutine?",""`)
}

func TestImportFlow(t *testing.T) {
	m, s := newTestModel(t, seed())
	path := filepath.Join(t.TempDir(), "batch.csv")
	csv := "title,content,linkedQuestionTitle,tags\n" +
		"\"What is defer?\",\"Runs at function exit.\",\"\",\"go\"\n" +
		"\"When does defer run?\",\"\",\"What is defer?\",\"go;basics\"\n"
	require.NoError(t, os.WriteFile(path, []byte(csv), 0o644))

	m = press(m, "i")
	require.Equal(t, screenImport, m.screen)
	m = press(m, path)

	next, cmd := m.Update(keyMsg("enter"))
	m = next.(Model)
	require.NotNil(t, cmd)
	assert.True(t, m.imp.loading)

	// A second upload while loading is ignored.
	next, again := m.Update(keyMsg("enter"))
	m = next.(Model)
	assert.Nil(t, again)

	next, _ = m.Update(cmd())
	m = next.(Model)
	assert.Equal(t, screenHome, m.screen)
	assert.Equal(t, "Successfully imported 2 questions.", m.note.text)
	require.Equal(t, 6, s.Len())
}

func TestImportRejectsNonCSV(t *testing.T) {
	m, _ := newTestModel(t, seed())
	m = press(m, "i", "notes.txt", "enter")
	assert.Equal(t, "Please upload a valid CSV file.", m.imp.err)
	assert.False(t, m.imp.loading)
}

func TestImportShowsParseError(t *testing.T) {
	m, s := newTestModel(t, seed())
	path := filepath.Join(t.TempDir(), "bad.csv")
	require.NoError(t, os.WriteFile(path, []byte("name,answer\nfoo,bar\n"), 0o644))

	m = press(m, "i", path)
	next, cmd := m.Update(keyMsg("enter"))
	m = next.(Model)
	next, _ = m.Update(cmd())
	m = next.(Model)

	assert.Equal(t, screenImport, m.screen)
	assert.Contains(t, m.imp.err, "title")
	assert.Equal(t, 4, s.Len())
}

func TestNotificationGenerations(t *testing.T) {
	m, _ := newTestModel(t, nil)

	m, _ = m.notify(noteSuccess, "first")
	m, _ = m.notify(noteError, "second")

	next, _ := m.Update(dismissMsg{gen: 1})
	m = next.(Model)
	require.NotNil(t, m.note)
	assert.Equal(t, "second", m.note.text)

	next, _ = m.Update(dismissMsg{gen: 2})
	m = next.(Model)
	assert.Nil(t, m.note)
}

func TestNavKey(t *testing.T) {
	k, ok := navKey(keyMsg("?"), keynav.FromList)
	require.True(t, ok)
	assert.Equal(t, keynav.Key{Name: "?", Shift: true}, k)

	k, ok = navKey(keyMsg("ctrl+f"), keynav.FromSearch)
	require.True(t, ok)
	assert.Equal(t, keynav.Key{Name: "f", Ctrl: true, Origin: keynav.FromSearch}, k)

	k, ok = navKey(keyMsg("space"), keynav.FromList)
	require.True(t, ok)
	assert.Equal(t, keynav.KeySpace, k.Name)

	_, ok = navKey(keyMsg("abc"), keynav.FromList)
	assert.False(t, ok)
}
