package format

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

const textWrap = 100

// Markdowner lets a value choose its own text rendering.
type Markdowner interface {
	Markdown() string
}

var (
	mdRendererMu sync.Mutex
	// Renderers are cached per style; building one reads the style tables.
	mdRenderers = map[string]*glamour.TermRenderer{}
)

// WriteText renders the envelope's data as markdown through glamour. Terminals
// get the dark or light style (PANDORA_MD_STYLE overrides); NO_COLOR and
// anything that is not a terminal get the plain "notty" style.
func WriteText(w io.Writer, v any) error {
	md, err := Markdown(v)
	if err != nil {
		return err
	}
	out, err := renderMarkdown(md, markdownStyle(w))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, strings.TrimRight(out, "\n"))
	return err
}

// Markdown builds the markdown document WriteText renders.
func Markdown(v any) (string, error) {
	if m, ok := v.(Markdowner); ok {
		return m.Markdown(), nil
	}
	x, err := plain(v)
	if err != nil {
		return "", err
	}
	data, meta, hints := envelope(x)

	var b strings.Builder
	if m, ok := v.(map[string]any); ok {
		if md, ok := m["data"].(Markdowner); ok {
			b.WriteString(md.Markdown())
			writeFooter(&b, meta, hints)
			return b.String(), nil
		}
	}
	if page, ok := data.(map[string]any); ok {
		if list, ok := page["list"].([]any); ok {
			writeItems(&b, list)
			b.WriteString("\n_" + pageSummary(page) + "_\n")
			writeFooter(&b, meta, hints)
			return b.String(), nil
		}
	}
	switch d := data.(type) {
	case []any:
		writeItems(&b, d)
	case map[string]any:
		writeObject(&b, d, "")
	default:
		b.WriteString(cell(d) + "\n")
	}
	writeFooter(&b, meta, hints)
	return b.String(), nil
}

func writeItems(b *strings.Builder, list []any) {
	if len(list) == 0 {
		b.WriteString("_No results._\n")
		return
	}
	for _, e := range list {
		m, ok := e.(map[string]any)
		if !ok {
			b.WriteString("- " + cell(e) + "\n")
			continue
		}
		writeObject(b, m, "### ")
		b.WriteString("\n")
	}
}

// writeObject writes a heading from the id/title/name fields (when heading is
// set) followed by one bullet per remaining field.
func writeObject(b *strings.Builder, m map[string]any, heading string) {
	skip := map[string]bool{}
	if heading != "" {
		var parts []string
		for _, k := range []string{"id", "title", "name"} {
			if s := cell(m[k]); s != "" {
				parts = append(parts, s)
				skip[k] = true
			}
		}
		if len(parts) > 0 {
			b.WriteString(heading + escapeMarkdown(strings.Join(parts, " · ")) + "\n\n")
		}
	}
	for _, k := range orderedKeys(m) {
		if skip[k] || m[k] == nil {
			continue
		}
		s := cell(m[k])
		if s == "" {
			continue
		}
		if strings.Contains(s, "\n") {
			b.WriteString("- **" + k + "**:\n\n")
			for _, line := range strings.Split(s, "\n") {
				b.WriteString("  > " + line + "\n")
			}
			continue
		}
		b.WriteString("- **" + k + "**: " + escapeMarkdown(s) + "\n")
	}
}

func writeFooter(b *strings.Builder, meta map[string]any, hints []string) {
	if len(meta) == 0 && len(hints) == 0 {
		return
	}
	b.WriteString("\n---\n\n")
	for _, k := range orderedKeys(meta) {
		b.WriteString("- " + k + ": " + escapeMarkdown(cell(meta[k])) + "\n")
	}
	for _, h := range hints {
		b.WriteString("- `" + h + "`\n")
	}
}

var markdownEscaper = strings.NewReplacer("*", `\*`, "_", `\_`, "`", "\\`", "#", `\#`)

func escapeMarkdown(s string) string { return markdownEscaper.Replace(s) }

func markdownStyle(w io.Writer) string {
	if !isTerminal(w) {
		return pickMarkdownStyle(false, termenv.Ascii, nil)
	}
	return pickMarkdownStyle(true, termenv.ColorProfile(), lipgloss.HasDarkBackground)
}

// pickMarkdownStyle maps the terminal state onto a glamour standard style.
// NO_COLOR and colorless profiles get "notty" like any non-terminal writer.
func pickMarkdownStyle(tty bool, profile termenv.Profile, dark func() bool) string {
	switch s := strings.ToLower(strings.TrimSpace(os.Getenv("PANDORA_MD_STYLE"))); s {
	case "dark", "light", "notty", "ascii":
		return s
	}
	if !tty || strings.TrimSpace(os.Getenv("NO_COLOR")) != "" || profile == termenv.Ascii {
		return "notty"
	}
	if dark != nil && !dark() {
		return "light"
	}
	return "dark"
}

func renderMarkdown(md, style string) (string, error) {
	mdRendererMu.Lock()
	defer mdRendererMu.Unlock()
	r := mdRenderers[style]
	if r == nil {
		rr, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(style),
			glamour.WithWordWrap(textWrap),
		)
		if err != nil {
			return "", err
		}
		mdRenderers[style] = rr
		r = rr
	}
	return r.Render(md)
}
