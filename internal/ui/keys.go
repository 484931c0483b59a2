package ui

import (
	"unicode"

	tea "github.com/charmbracelet/bubbletea"

	"prepdeck/internal/keynav"
)

// navKey converts a bubbletea key into the machine's representation. ok is
// false for keys the machine never looks at (pastes, multi-rune input).
func navKey(msg tea.KeyMsg, origin keynav.Origin) (keynav.Key, bool) {
	k := keynav.Key{Origin: origin}
	if msg.Alt {
		return k, false
	}
	switch msg.Type {
	case tea.KeyUp:
		k.Name = keynav.KeyUp
	case tea.KeyDown:
		k.Name = keynav.KeyDown
	case tea.KeyEnter:
		k.Name = keynav.KeyEnter
	case tea.KeySpace:
		k.Name = keynav.KeySpace
	case tea.KeyEsc:
		k.Name = keynav.KeyEscape
	case tea.KeyTab:
		k.Name = keynav.KeyTab
	case tea.KeyShiftTab:
		k.Name = keynav.KeyTab
		k.Shift = true
	case tea.KeyCtrlF:
		k.Name = "f"
		k.Ctrl = true
	case tea.KeyRunes:
		if len(msg.Runes) != 1 || msg.Paste {
			return k, false
		}
		r := msg.Runes[0]
		if r == ' ' {
			k.Name = keynav.KeySpace
			break
		}
		// Terminals report shifted characters already shifted.
		k.Shift = r == '?' || unicode.IsUpper(r)
		k.Name = string(r)
	default:
		return k, false
	}
	return k, true
}
