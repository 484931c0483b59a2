package ui

import (
	"fmt"
	"slices"
	"strings"

	"prepdeck/internal/config"
	"prepdeck/internal/view"
)

type shortcut struct {
	keys   string
	action string
}

func shortcuts(k config.Keymap) []shortcut {
	return []shortcut{
		{"j or ↓", "Move to next question"},
		{"k or ↑", "Move to previous question"},
		{"enter or space", "Expand/collapse the selected question's answer"},
		{"e", "Edit the selected question"},
		{"m", "Open the answer of the selected question"},
		{"/ or ctrl+f", "Focus the search box"},
		{"esc", "Clear all filters"},
		{"s", "Open the sort selector"},
		{k.Tags, "Open the tag filter"},
		{k.New, "Add a question"},
		{k.Delete, "Delete the selected question"},
		{k.Import, "Import questions from CSV"},
		{k.Export, "Export questions to CSV"},
		{k.Clear, "Clear all data"},
		{"?", "Show this help dialog"},
		{k.Quit, "Quit"},
	}
}

func renderHelp(k config.Keymap) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Keyboard Shortcuts"))
	b.WriteString("\n\n")
	for _, s := range shortcuts(k) {
		b.WriteString(fmt.Sprintf("%-16s %s\n", s.keys, s.action))
	}
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("esc or ? to close"))
	return boxStyle.Render(b.String())
}

// updateHelp handles keys while the help overlay is shown.
func (b *browser) updateHelp(key string) {
	switch key {
	case "esc", "?", "q", "enter":
		b.helpOpen = false
	}
}

func (b *browser) updateSort(key string) {
	switch key {
	case "j", "down":
		b.sortCursor = wrapIndex(b.sortCursor+1, len(view.SortModes))
	case "k", "up":
		b.sortCursor = wrapIndex(b.sortCursor-1, len(view.SortModes))
	case "enter", " ":
		b.sortOpen = false
		b.setSort(view.SortModes[b.sortCursor])
	case "esc", "s":
		b.sortOpen = false
	}
}

func (b *browser) renderSort() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Sort by"))
	sb.WriteString("\n\n")
	for i, mode := range view.SortModes {
		line := "  " + mode.Label()
		if i == b.sortCursor {
			line = selectedStyle.Render("> " + mode.Label())
		}
		if mode == b.filter.Sort {
			line += mutedStyle.Render(" (current)")
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	sb.WriteString(mutedStyle.Render("j/k move • enter select • esc cancel"))
	return boxStyle.Render(sb.String())
}

func (b *browser) updateTags(key, closeKey string) {
	tags := view.AvailableTags(b.store.List())
	switch key {
	case "j", "down":
		b.tagCursor = wrapIndex(b.tagCursor+1, len(tags))
	case "k", "up":
		b.tagCursor = wrapIndex(b.tagCursor-1, len(tags))
	case "enter", " ":
		if len(tags) > 0 {
			b.toggleTag(tags[clampCursor(b.tagCursor, len(tags))])
		}
	case "c":
		b.clearTags()
	case "esc", closeKey:
		b.tagOpen = false
	}
}

func (b *browser) renderTags() string {
	tags := view.AvailableTags(b.store.List())
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Filter by tags"))
	sb.WriteString("\n\n")
	if len(tags) == 0 {
		sb.WriteString(mutedStyle.Render("No tags yet."))
		sb.WriteString("\n")
	}
	for i, t := range tags {
		mark := "[ ]"
		if slices.Contains(b.filter.Tags, t) {
			mark = "[x]"
		}
		line := "  " + mark + " " + t
		if i == b.tagCursor {
			line = selectedStyle.Render("> " + mark + " " + t)
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	sb.WriteString(mutedStyle.Render("j/k move • space toggle • c clear filters • esc close"))
	return boxStyle.Render(sb.String())
}

func (b *browser) renderModal() string {
	q, ok := b.store.Get(b.modalID)
	if !ok {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(titleStyle.Render(q.Title))
	sb.WriteString("\n")
	if len(q.Tags) > 0 {
		sb.WriteString(tagStyle.Render(strings.Join(q.Tags, ", ")))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	sb.WriteString(b.answerBody(q, b.width-8))
	sb.WriteString("\n\n")
	sb.WriteString(mutedStyle.Render("e edit • esc close"))
	return boxStyle.Render(sb.String())
}

func wrapIndex(idx, n int) int {
	if n <= 0 {
		return 0
	}
	idx %= n
	if idx < 0 {
		idx += n
	}
	return idx
}

func clampCursor(cur, n int) int {
	if n <= 0 {
		return 0
	}
	if cur < 0 {
		return 0
	}
	if cur >= n {
		return n - 1
	}
	return cur
}
