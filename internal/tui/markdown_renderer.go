package tui

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// minMarkdownWidth keeps short descriptions from wrapping into single words.
const minMarkdownWidth = 24

// markdownRenderer renders task descriptions for the detail overlay. The glamour
// renderer is rebuilt only when the wrap width changes, and the last result is kept
// so repeated frames of the same overlay skip rendering.
type markdownRenderer struct {
	width    int
	renderer *glamour.TermRenderer

	lastSource string
	lastWidth  int
	lastOutput string
}

// render returns ANSI-styled text, or the trimmed source when glamour fails.
func (r *markdownRenderer) render(source string, width int) string {
	source = strings.TrimSpace(source)
	if source == "" {
		return ""
	}
	wrap := max(minMarkdownWidth, width)
	if source == r.lastSource && wrap == r.lastWidth {
		return r.lastOutput
	}

	if r.renderer == nil || r.width != wrap {
		renderer, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle("dark"),
			glamour.WithWordWrap(wrap),
		)
		if err != nil {
			return source
		}
		r.renderer = renderer
		r.width = wrap
	}

	out, err := r.renderer.Render(source)
	if err != nil {
		return source
	}
	r.lastSource = source
	r.lastWidth = wrap
	r.lastOutput = strings.Trim(out, "\n")
	return r.lastOutput
}
