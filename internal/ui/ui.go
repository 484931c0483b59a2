package ui

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"prepdeck/internal/config"
	"prepdeck/internal/csvio"
	"prepdeck/internal/keynav"
	"prepdeck/internal/logger"
	"prepdeck/internal/model"
	"prepdeck/internal/render"
	"prepdeck/internal/store"
	"prepdeck/internal/view"
)

type screen int

const (
	screenHome screen = iota
	screenCreate
	screenEdit
	screenImport
)

type confirmKind int

const (
	confirmNone confirmKind = iota
	confirmDelete
	confirmClear
)

type Options struct {
	Config      config.Config
	Log         logger.Logger
	Sort        view.SortMode
	NotifyAfter time.Duration
	// Renderer defaults to one detecting the terminal background.
	Renderer *render.Renderer
	// ExportDir is where exports are written; empty means the working directory.
	ExportDir string
	Now       func() time.Time
	// Welcome is shown once at startup, e.g. after the config was created.
	Welcome string
}

type Model struct {
	store     *store.Store
	cfg       config.Config
	log       logger.Logger
	now       func() time.Time
	exportDir string
	notifyFor time.Duration

	screen screen
	home   *browser
	form   *form
	imp    *importer

	confirm   confirmKind
	pendingID string

	note    *notification
	noteGen int
	width   int
	height  int
}

// Run starts the TUI on the alternate screen and blocks until it quits.
func Run(s *store.Store, opts Options) error {
	m := New(s, opts)
	program := tea.NewProgram(m, tea.WithAltScreen())
	_, err := program.Run()
	return err
}

func New(s *store.Store, opts Options) Model {
	if opts.Log == nil {
		opts.Log = logger.Nop()
	}
	if opts.Renderer == nil {
		opts.Renderer = render.New("")
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Sort == "" {
		opts.Sort = view.SortNewest
	}
	m := Model{
		store:     s,
		cfg:       opts.Config,
		log:       opts.Log,
		now:       opts.Now,
		exportDir: opts.ExportDir,
		notifyFor: opts.NotifyAfter,
		screen:    screenHome,
		home:      newBrowser(s, opts.Renderer, opts.Sort),
		width:     80,
	}
	if opts.Welcome != "" {
		m.note = &notification{kind: noteSuccess, text: opts.Welcome}
	}
	return m
}

func (m Model) Init() tea.Cmd {
	if m.note != nil && m.notifyFor > 0 {
		return dismissAfter(m.notifyFor, m.noteGen)
	}
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.home.width = msg.Width
		m.home.search.Width = max(msg.Width-10, 20)
	case dismissMsg:
		if msg.gen == m.noteGen {
			m.note = nil
		}
	case importDoneMsg:
		return m.finishImport(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch m.screen {
	case screenCreate, screenEdit:
		return m.updateForm(msg)
	case screenImport:
		return m.updateImport(msg)
	}
	if m.confirm != confirmNone {
		return m.updateConfirm(msg.String())
	}
	return m.updateHome(msg)
}

func (m Model) updateHome(msg tea.KeyMsg) (Model, tea.Cmd) {
	b := m.home
	key := msg.String()
	switch {
	case b.helpOpen:
		b.updateHelp(key)
		return m, nil
	case b.sortOpen:
		b.updateSort(key)
		return m, nil
	case b.tagOpen:
		b.updateTags(key, m.cfg.Keys.Tags)
		return m, nil
	}

	searching := b.nav.State() == keynav.SearchFocused
	if !searching && b.nav.State() != keynav.ModalOpen {
		if next, cmd, ok := m.appKey(key); ok {
			return next, cmd
		}
	}

	origin := keynav.FromList
	if searching {
		origin = keynav.FromSearch
	}
	if k, ok := navKey(msg, origin); ok && b.nav.Dispatch(k) {
		if id := b.editID; id != "" {
			b.editID = ""
			return m.openEdit(id)
		}
		if b.nav.State() == keynav.SearchFocused {
			return m, b.search.Focus()
		}
		return m, nil
	}

	if b.nav.State() == keynav.SearchFocused {
		var cmd tea.Cmd
		before := b.search.Value()
		b.search, cmd = b.search.Update(msg)
		if b.search.Value() != before {
			b.refresh()
		}
		return m, cmd
	}
	return m, nil
}

// appKey handles the configurable application keys of the home screen.
func (m Model) appKey(key string) (Model, tea.Cmd, bool) {
	k := m.cfg.Keys
	b := m.home
	switch key {
	case k.Quit:
		return m, tea.Quit, true
	case k.New:
		next, cmd := m.openCreate()
		return next, cmd, true
	case k.Import:
		next, cmd := m.openImport()
		return next, cmd, true
	case k.Export:
		next, cmd := m.export()
		return next, cmd, true
	case k.Tags:
		b.tagOpen = true
		b.tagCursor = 0
		return m, nil, true
	case k.Delete:
		q, ok := b.active()
		if !ok {
			return m, nil, true
		}
		m.confirm = confirmDelete
		m.pendingID = q.ID
		return m, nil, true
	case k.Clear:
		m.confirm = confirmClear
		return m, nil, true
	}
	return m, nil, false
}

func (m Model) updateConfirm(key string) (Model, tea.Cmd) {
	switch key {
	case "y", "Y":
		kind, id := m.confirm, m.pendingID
		m.confirm, m.pendingID = confirmNone, ""
		if kind == confirmClear {
			return m.clearAll()
		}
		return m.deleteQuestion(id)
	case "n", "N", "esc":
		m.confirm, m.pendingID = confirmNone, ""
		return m.notify(noteWarning, "Cancelled.")
	}
	return m, nil
}

func (m Model) deleteQuestion(id string) (Model, tea.Cmd) {
	q, _ := m.store.Get(id)
	err := m.store.Delete(id)
	var nf *model.NotFoundError
	if errors.As(err, &nf) {
		return m.fail(err)
	}
	delete(m.home.expanded, id)
	m.home.refresh()
	if err != nil {
		return m.fail(err)
	}
	return m.notify(noteSuccess, fmt.Sprintf("Deleted %q.", q.Title))
}

func (m Model) clearAll() (Model, tea.Cmd) {
	err := m.store.Clear()
	m.home.reload()
	if err != nil {
		return m.fail(err)
	}
	return m.notify(noteSuccess, "All data has been cleared.")
}

func (m Model) export() (Model, tea.Cmd) {
	if m.store.Len() == 0 {
		return m.notify(noteWarning, "No questions to export.")
	}
	path := filepath.Join(m.exportDir, csvio.FileName(m.now()))
	f, err := os.Create(path)
	if err != nil {
		return m.fail(err)
	}
	err = csvio.Export(f, m.store, m.store.List())
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return m.fail(err)
	}
	m.log.Info("questions exported", logger.String("path", path), logger.Int("count", m.store.Len()))
	return m.notify(noteSuccess, "Exported to "+path)
}

func (m Model) View() string {
	var body string
	switch m.screen {
	case screenCreate, screenEdit:
		body = m.viewForm()
	case screenImport:
		body = m.viewImport()
	default:
		body = m.viewHome()
	}

	var b strings.Builder
	b.WriteString(body)
	b.WriteString("\n")
	if m.note != nil {
		b.WriteString(m.note.View())
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) viewHome() string {
	b := m.home
	switch {
	case b.helpOpen:
		return renderHelp(m.cfg.Keys)
	case b.sortOpen:
		return b.renderSort()
	case b.tagOpen:
		return b.renderTags()
	case b.modalID != "":
		return b.renderModal()
	}

	var sb strings.Builder
	sb.WriteString(b.View())
	switch m.confirm {
	case confirmDelete:
		q, _ := m.store.Get(m.pendingID)
		sb.WriteString("\n")
		sb.WriteString(boxStyle.Render(fmt.Sprintf("Delete %q?\nThis action cannot be undone. y/n", q.Title)))
		sb.WriteString("\n")
	case confirmClear:
		sb.WriteString("\n")
		sb.WriteString(boxStyle.Render("Clear all data?\nEvery question will be removed. This action cannot be undone. y/n"))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	sb.WriteString(mutedStyle.Render(homeHelp(m.cfg.Keys)))
	return lipgloss.NewStyle().MaxWidth(max(m.width, 20)).Render(sb.String())
}

func homeHelp(k config.Keymap) string {
	return fmt.Sprintf("j/k move • enter expand • e edit • m open • / search • s sort • %s tags • %s add • %s delete • %s import • %s export • ? help • %s quit",
		k.Tags, k.New, k.Delete, k.Import, k.Export, k.Quit)
}
