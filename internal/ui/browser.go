package ui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"

	"prepdeck/internal/keynav"
	"prepdeck/internal/link"
	"prepdeck/internal/model"
	"prepdeck/internal/render"
	"prepdeck/internal/store"
	"prepdeck/internal/view"
)

const emptyListText = "No questions found. Try adding some or adjusting your search."

// browser is the home screen. It is shared by pointer between copies of
// Model because the navigation machine calls back into it.
type browser struct {
	store *store.Store
	md    *render.Renderer
	nav   *keynav.Machine

	search   textinput.Model
	filter   view.Filter
	items    []model.Question
	expanded map[string]bool
	modalID  string

	helpOpen   bool
	sortOpen   bool
	sortCursor int
	tagOpen    bool
	tagCursor  int

	// editID is set by the Edit action and consumed by Model.
	editID string
	width  int
}

func newBrowser(s *store.Store, md *render.Renderer, sort view.SortMode) *browser {
	ti := textinput.New()
	ti.Placeholder = "Search questions..."
	ti.Prompt = "/ "
	ti.CharLimit = 256
	ti.Width = 40

	b := &browser{
		store:    s,
		md:       md,
		search:   ti,
		filter:   view.Filter{Sort: sort},
		expanded: map[string]bool{},
		width:    80,
	}
	b.items = b.compute()
	b.nav = keynav.New(b, len(b.items))
	return b
}

func (b *browser) compute() []model.Question {
	b.filter.Search = b.search.Value()
	available := view.AvailableTags(b.store.List())
	var kept []string
	for _, t := range b.filter.Tags {
		if slices.Contains(available, t) {
			kept = append(kept, t)
		}
	}
	b.filter.Tags = kept
	return view.Apply(b.store, b.store.List(), b.filter)
}

// refresh recomputes the view after the store or the filter changed.
func (b *browser) refresh() {
	b.items = b.compute()
	b.nav.SetLength(len(b.items))
	if b.modalID != "" {
		if _, ok := b.store.Get(b.modalID); !ok {
			b.modalID = ""
		}
	}
}

// reload is used after the collection was replaced wholesale.
func (b *browser) reload() {
	b.items = b.compute()
	b.nav.Reset(len(b.items))
	b.modalID = ""
	b.expanded = map[string]bool{}
}

func (b *browser) at(index int) (model.Question, bool) {
	if index < 0 || index >= len(b.items) {
		return model.Question{}, false
	}
	return b.items[index], true
}

func (b *browser) active() (model.Question, bool) {
	i, ok := b.nav.Active()
	if !ok {
		return model.Question{}, false
	}
	return b.at(i)
}

func (b *browser) FocusSearch() { b.search.Focus() }

func (b *browser) FocusList() { b.search.Blur() }

func (b *browser) ClearFilters() {
	b.search.SetValue("")
	b.filter.Tags = nil
	b.refresh()
}

func (b *browser) OpenSort() {
	b.sortOpen = true
	for i, mode := range view.SortModes {
		if mode == b.filter.Sort {
			b.sortCursor = i
		}
	}
}

func (b *browser) OpenHelp() { b.helpOpen = true }

func (b *browser) ToggleExpand(index int) {
	if q, ok := b.at(index); ok {
		b.expanded[q.ID] = !b.expanded[q.ID]
	}
}

func (b *browser) Edit(index int) {
	if q, ok := b.at(index); ok {
		b.editID = q.ID
	}
}

func (b *browser) OpenModal(index int) {
	if q, ok := b.at(index); ok {
		b.modalID = q.ID
	}
}

func (b *browser) CloseModal() { b.modalID = "" }

func (b *browser) setSort(mode view.SortMode) {
	b.filter.Sort = mode
	b.refresh()
}

func (b *browser) toggleTag(tag string) {
	b.filter.Tags = view.ToggleTag(b.filter.Tags, tag)
	b.refresh()
}

func (b *browser) clearTags() {
	b.filter.Tags = nil
	b.refresh()
}

func (b *browser) View() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Interview Questions"))
	sb.WriteString("  ")
	sb.WriteString(mutedStyle.Render(fmt.Sprintf("sort: %s • %d of %d", b.filter.Sort.Label(), len(b.items), b.store.Len())))
	sb.WriteString("\n\n")
	sb.WriteString(b.search.View())
	sb.WriteString("\n")
	if bar := b.tagBar(); bar != "" {
		sb.WriteString(bar)
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	if len(b.items) == 0 {
		sb.WriteString(mutedStyle.Render(emptyListText))
		sb.WriteString("\n")
		return sb.String()
	}
	active, hasActive := b.nav.Active()
	for i, q := range b.items {
		sb.WriteString(b.renderItem(q, hasActive && i == active))
	}
	return sb.String()
}

func (b *browser) tagBar() string {
	available := view.AvailableTags(b.store.List())
	if len(available) == 0 {
		return ""
	}
	parts := make([]string, 0, len(available))
	for _, t := range available {
		if slices.Contains(b.filter.Tags, t) {
			parts = append(parts, activeTag.Render(t+" ✓"))
		} else {
			parts = append(parts, tagStyle.Render(t))
		}
	}
	return mutedStyle.Render("tags: ") + strings.Join(parts, " ")
}

func (b *browser) renderItem(q model.Question, selected bool) string {
	var sb strings.Builder
	cursor := "  "
	title := q.Title
	if selected {
		cursor = "> "
		title = selectedStyle.Render(title)
	}
	sb.WriteString(cursor)
	sb.WriteString(title)
	if badge := answerBadge(b.store, q); badge != "" {
		sb.WriteString(" ")
		sb.WriteString(badge)
	}
	if len(q.Tags) > 0 {
		sb.WriteString(" ")
		sb.WriteString(tagStyle.Render("[" + strings.Join(q.Tags, ", ") + "]"))
	}
	sb.WriteString("\n")
	sb.WriteString("    ")
	sb.WriteString(mutedStyle.Render(itemDates(q)))
	sb.WriteString("\n")

	if b.expanded[q.ID] {
		sb.WriteString(indent(b.answerBody(q, b.width-6), "    "))
		sb.WriteString("\n")
	}
	return sb.String()
}

// answerBody is the rendered answer of q plus the shared-with line.
func (b *browser) answerBody(q model.Question, width int) string {
	var sb strings.Builder
	if title, ok := link.Title(b.store, q); ok {
		sb.WriteString(badgeShared.Render("shared with: " + title))
		sb.WriteString("\n")
	}
	content := link.Content(b.store, q)
	if strings.TrimSpace(content) == "" {
		sb.WriteString(warnStyle.Render("No answer has been provided for this question yet. Press e to add one."))
		return sb.String()
	}
	sb.WriteString(b.md.Markdown(content, width))
	return sb.String()
}

func answerBadge(l link.Lookup, q model.Question) string {
	switch {
	case !link.HasAnswer(l, q):
		return badgeNoAnswer.Render("No Answer")
	case q.IsLinked():
		return badgeShared.Render("Shared Answer")
	default:
		return ""
	}
}

func itemDates(q model.Question) string {
	out := "created " + q.CreatedAt.Local().Format("2006-01-02")
	if q.UpdatedAt != nil {
		out += " • updated " + q.UpdatedAt.Local().Format("2006-01-02")
	}
	return out
}

func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}
