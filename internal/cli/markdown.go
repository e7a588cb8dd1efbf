package cli

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

// markdownRenderer prints assistant answers. Styles are only used on a
// terminal; pipes and files get the plain "notty" style.
type markdownRenderer struct {
	renderer *glamour.TermRenderer
	out      io.Writer
}

func newMarkdownRenderer(out io.Writer, raw bool) (*markdownRenderer, error) {
	if raw {
		return &markdownRenderer{out: out}, nil
	}

	style := glamour.WithStandardStyle("notty")
	if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		style = glamour.WithAutoStyle()
	}
	r, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(100))
	if err != nil {
		return nil, err
	}
	return &markdownRenderer{renderer: r, out: out}, nil
}

// Print renders content, falling back to the raw text if rendering fails.
func (m *markdownRenderer) Print(content string) {
	if !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	if m.renderer == nil {
		io.WriteString(m.out, content)
		return
	}

	rendered, err := m.renderer.Render(content)
	if err != nil {
		io.WriteString(m.out, content)
		return
	}
	for strings.Contains(rendered, "\n\n\n") {
		rendered = strings.ReplaceAll(rendered, "\n\n\n", "\n\n")
	}
	io.WriteString(m.out, rendered)
}
