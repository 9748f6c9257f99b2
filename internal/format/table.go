package format

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

const maxCellWidth = 48

// leadingColumns are shown first, in this order, when present.
var leadingColumns = []string{"id", "title", "name", "date", "status", "priority", "progress"}

// WriteTable renders the envelope's data: a list (or a page's list) as one row
// per element, an object as key/value rows, a scalar as a single cell. Meta and
// hints follow the table as plain lines.
func WriteTable(w io.Writer, v any) error {
	x, err := plain(v)
	if err != nil {
		return err
	}
	data, meta, hints := envelope(x)

	var footer []string
	if page, ok := data.(map[string]any); ok {
		if list, ok := page["list"].([]any); ok {
			data = list
			footer = append(footer, pageSummary(page))
		}
	}

	r := lipgloss.NewRenderer(w)
	header := r.NewStyle().Bold(true).Padding(0, 1)
	body := r.NewStyle().Padding(0, 1)
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(r.NewStyle().Foreground(lipgloss.Color("240"))).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return body
		})

	switch d := data.(type) {
	case []any:
		cols := columns(d)
		if len(cols) == 0 {
			t = t.Headers("value")
			for _, e := range d {
				t = t.Row(truncate(cell(e), maxCellWidth))
			}
		} else {
			t = t.Headers(cols...)
			for _, e := range d {
				m, _ := e.(map[string]any)
				row := make([]string, len(cols))
				for i, c := range cols {
					row[i] = truncate(cell(m[c]), maxCellWidth)
				}
				t = t.Row(row...)
			}
		}
		if len(d) == 0 {
			footer = append(footer, "(no results)")
		}
	case map[string]any:
		t = t.Headers("field", "value")
		for _, k := range orderedKeys(d) {
			t = t.Row(k, truncate(cell(d[k]), maxCellWidth*2))
		}
	default:
		t = t.Headers("value").Row(cell(d))
	}

	if _, err := fmt.Fprintln(w, t.String()); err != nil {
		return err
	}
	for _, k := range orderedKeys(meta) {
		footer = append(footer, k+": "+cell(meta[k]))
	}
	for _, h := range hints {
		footer = append(footer, "hint: "+h)
	}
	if len(footer) > 0 {
		_, err = fmt.Fprintln(w, strings.Join(footer, "\n"))
	}
	return err
}

func pageSummary(page map[string]any) string {
	return fmt.Sprintf("page %s/%s, %s total", orDash(cell(page["page"])), orDash(cell(page["totalPages"])), orDash(cell(page["total"])))
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// columns is the union of object keys across rows, leading columns first.
func columns(rows []any) []string {
	seen := map[string]bool{}
	for _, r := range rows {
		m, ok := r.(map[string]any)
		if !ok {
			return nil
		}
		for k := range m {
			seen[k] = true
		}
	}
	keys := make(map[string]any, len(seen))
	for k := range seen {
		keys[k] = nil
	}
	return orderedKeys(keys)
}

func orderedKeys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for _, k := range leadingColumns {
		if _, ok := m[k]; ok {
			out = append(out, k)
		}
	}
	rest := make([]string, 0, len(m))
	for k := range m {
		if !isLeading(k) {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}

func isLeading(k string) bool {
	for _, c := range leadingColumns {
		if c == k {
			return true
		}
	}
	return false
}
