// Package render turns answer markdown into terminal output.
package render

import (
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/ansi"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"
)

const (
	StyleDark  = "dark"
	StyleLight = "light"
	StyleNone  = "notty"
)

const minWidth = 10

// Renderer caches one glamour renderer per style and wrap width. Building a
// renderer with auto style can block on terminal queries, so the style is
// always resolved up front.
type Renderer struct {
	mu    sync.Mutex
	style string
	cache map[string]*glamour.TermRenderer
}

// New returns a renderer for style. An empty style is detected from the
// environment.
func New(style string) *Renderer {
	if style == "" {
		style = DetectStyle()
	}
	return &Renderer{style: style, cache: map[string]*glamour.TermRenderer{}}
}

func (r *Renderer) Style() string { return r.style }

// Markdown renders md wrapped at width. Rendering failures return md as is.
func (r *Renderer) Markdown(md string, width int) string {
	md = strings.TrimSpace(md)
	if md == "" {
		return ""
	}
	tr, err := r.renderer(width)
	if err != nil {
		return md
	}
	out, err := tr.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n")
}

func (r *Renderer) renderer(width int) (*glamour.TermRenderer, error) {
	if width < minWidth {
		width = minWidth
	}
	key := r.style + ":" + strconv.Itoa(width)

	r.mu.Lock()
	defer r.mu.Unlock()
	if tr := r.cache[key]; tr != nil {
		return tr, nil
	}
	cfg := styleConfig(r.style)
	zero := uint(0)
	cfg.Document.Margin = &zero
	tr, err := glamour.NewTermRenderer(
		glamour.WithStyles(cfg),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, err
	}
	r.cache[key] = tr
	return tr, nil
}

func styleConfig(style string) ansi.StyleConfig {
	switch style {
	case StyleLight:
		return styles.LightStyleConfig
	case StyleNone:
		return styles.NoTTYStyleConfig
	default:
		return styles.DarkStyleConfig
	}
}

// DetectStyle picks light or dark from PREPDECK_MD_STYLE, then COLORFGBG,
// then lipgloss background detection.
func DetectStyle() string {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("PREPDECK_MD_STYLE"))) {
	case StyleLight:
		return StyleLight
	case StyleDark:
		return StyleDark
	case StyleNone:
		return StyleNone
	}
	// COLORFGBG is usually "fg;bg"; xterm colours 7-15 are light.
	if v := strings.TrimSpace(os.Getenv("COLORFGBG")); v != "" {
		parts := strings.Split(v, ";")
		if bg, err := strconv.Atoi(strings.TrimSpace(parts[len(parts)-1])); err == nil {
			if bg >= 7 {
				return StyleLight
			}
			return StyleDark
		}
	}
	if lipgloss.HasDarkBackground() {
		return StyleDark
	}
	return StyleLight
}

// Preview cuts s to n runes, adding "..." when something was dropped.
func Preview(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
