// Package keynav is the keyboard state machine of the question list. It tracks
// which row of the current view is active and turns key presses into calls on
// an Actions implementation supplied by the owning screen.
//
// All transitions are synchronous; the machine keeps no timers.
package keynav

// State of the machine.
type State int

const (
	Idle State = iota
	Browsing
	SearchFocused
	ModalOpen
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Browsing:
		return "browsing"
	case SearchFocused:
		return "search"
	case ModalOpen:
		return "modal"
	default:
		return "unknown"
	}
}

// Origin says which widget a key event came from.
type Origin int

const (
	// FromList covers the list and anything that is not a text field.
	FromList Origin = iota
	// FromSearch is the search box of the list screen.
	FromSearch
	// FromTextInput is any other text field. Its keys are left alone.
	FromTextInput
)

// Key names recognised by Dispatch.
const (
	KeyUp     = "up"
	KeyDown   = "down"
	KeyEnter  = "enter"
	KeySpace  = "space"
	KeyEscape = "esc"
	KeyTab    = "tab"
)

// Key is one key press. Name is a single character for printable keys and one
// of the Key* constants otherwise.
type Key struct {
	Name   string
	Ctrl   bool
	Shift  bool
	Origin Origin
}

// Actions are the side effects the machine triggers. ClearFilters is expected
// to recompute the view and report its new length through SetLength.
type Actions interface {
	FocusSearch()
	FocusList()
	ClearFilters()
	OpenSort()
	OpenHelp()
	ToggleExpand(index int)
	Edit(index int)
	OpenModal(index int)
	CloseModal()
}

type Machine struct {
	actions Actions
	state   State
	active  int
	length  int
}

// New returns a machine over a view of length rows.
func New(actions Actions, length int) *Machine {
	m := &Machine{actions: actions}
	m.Reset(length)
	return m
}

func (m *Machine) State() State { return m.state }

func (m *Machine) Len() int { return m.length }

// Active returns the focused row. ok is false unless a row is focused.
func (m *Machine) Active() (index int, ok bool) {
	if m.state != Browsing && m.state != ModalOpen {
		return 0, false
	}
	return m.active, true
}

// Reset is used when the list is populated from scratch.
func (m *Machine) Reset(length int) {
	m.length = max(length, 0)
	m.active = 0
	if m.length > 0 {
		m.state = Browsing
	} else {
		m.state = Idle
	}
}

// SetLength re-clamps the active row after the view changed size.
func (m *Machine) SetLength(length int) {
	m.length = max(length, 0)
	switch m.state {
	case Idle:
		if m.length > 0 {
			m.state = Browsing
			m.active = 0
		}
	case SearchFocused:
		m.active = min(m.active, max(m.length-1, 0))
	default:
		m.clamp()
	}
}

// Select focuses row index, clamped to the view.
func (m *Machine) Select(index int) {
	m.state = Browsing
	m.active = max(index, 0)
	m.clamp()
}

// Blur leaves the search field without moving into the list, as when the
// search box loses focus by mouse or by a screen change.
func (m *Machine) Blur() {
	if m.state == SearchFocused {
		m.enterBrowsing(m.active)
	}
}

// Dispatch feeds one key press to the machine and reports whether it was
// consumed. Unconsumed keys should reach the focused widget unchanged.
func (m *Machine) Dispatch(k Key) bool {
	if k.Ctrl && k.Name == "f" {
		m.focusSearch()
		return true
	}
	if k.Origin == FromTextInput {
		if isHelp(k) {
			m.actions.OpenHelp()
			return true
		}
		return false
	}

	switch m.state {
	case ModalOpen:
		return m.dispatchModal(k)
	case SearchFocused:
		return m.dispatchSearch(k)
	case Browsing:
		return m.dispatchBrowsing(k)
	default:
		return m.dispatchIdle(k)
	}
}

func (m *Machine) dispatchModal(k Key) bool {
	switch {
	case k.Name == KeyEscape:
		m.state = Browsing
		m.actions.CloseModal()
		return true
	case k.Name == "e" && !k.Ctrl:
		m.state = Browsing
		m.actions.CloseModal()
		m.actions.Edit(m.active)
		return true
	}
	return false
}

func (m *Machine) dispatchSearch(k Key) bool {
	switch {
	case isHelp(k):
		m.actions.OpenHelp()
		return true
	case k.Name == KeyEscape:
		m.enterBrowsing(0)
		m.actions.FocusList()
		m.actions.ClearFilters()
		m.clamp()
		return true
	case (k.Name == KeyEnter || k.Name == KeyDown || k.Name == KeyTab) && !k.Shift:
		if m.length == 0 {
			return false
		}
		m.enterBrowsing(0)
		m.actions.FocusList()
		return true
	}
	return false
}

func (m *Machine) dispatchBrowsing(k Key) bool {
	if k.Ctrl {
		return false
	}
	switch {
	case isHelp(k):
		m.actions.OpenHelp()
	case k.Name == "j" || k.Name == KeyDown:
		if m.active+1 < m.length {
			m.active++
		}
	case k.Name == "k" || k.Name == KeyUp:
		if m.active > 0 {
			m.active--
		} else {
			m.focusSearch()
		}
	case k.Name == KeyEnter || k.Name == KeySpace:
		m.actions.ToggleExpand(m.active)
	case k.Name == "e":
		m.actions.Edit(m.active)
	case k.Name == "m":
		m.state = ModalOpen
		m.actions.OpenModal(m.active)
	case k.Name == "/":
		m.focusSearch()
	case k.Name == KeyEscape:
		m.actions.ClearFilters()
		m.clamp()
	case k.Name == "s":
		m.actions.OpenSort()
	default:
		return false
	}
	return true
}

// dispatchIdle handles an empty view: only keys that do not need a row apply.
func (m *Machine) dispatchIdle(k Key) bool {
	if k.Ctrl {
		return false
	}
	switch {
	case isHelp(k):
		m.actions.OpenHelp()
	case k.Name == "/" || k.Name == "k" || k.Name == KeyUp:
		m.focusSearch()
	case k.Name == "j" || k.Name == KeyDown:
		if m.length == 0 {
			return true
		}
		m.enterBrowsing(0)
	case k.Name == KeyEscape:
		m.actions.ClearFilters()
	case k.Name == "s":
		m.actions.OpenSort()
	default:
		return false
	}
	return true
}

func (m *Machine) focusSearch() {
	if m.state == ModalOpen {
		m.actions.CloseModal()
	}
	m.state = SearchFocused
	m.actions.FocusSearch()
}

func (m *Machine) enterBrowsing(index int) {
	m.state = Browsing
	m.active = index
	m.clamp()
}

// clamp applies the re-clamping rule to Browsing and ModalOpen.
func (m *Machine) clamp() {
	if m.state != Browsing && m.state != ModalOpen {
		return
	}
	if m.length == 0 {
		if m.state == ModalOpen {
			m.actions.CloseModal()
		}
		m.state = Idle
		m.active = 0
		return
	}
	if m.active >= m.length {
		m.active = m.length - 1
	}
}

func isHelp(k Key) bool {
	return k.Name == "?" && k.Shift
}
