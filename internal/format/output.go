package format

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

const (
	JSON  = "json"
	Table = "table"
	Text  = "text"
)

// Formats lists the accepted --format values.
func Formats() []string { return []string{JSON, Table, Text} }

// Write writes output in the requested format.
//
// Supported formats:
// - json (default): the value as-is, envelope included
// - table: the envelope's data rendered as a lipgloss table
// - text: the envelope's data rendered as terminal markdown
func Write(w io.Writer, v any, format string, pretty bool) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", JSON:
		return WriteJSON(w, v, pretty)
	case Table:
		return WriteTable(w, v)
	case Text, "markdown", "md":
		return WriteText(w, v)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// WriteJSON writes strict JSON output for CLI commands.
//
// NOTE: Output stays strict JSON. Paging details and follow-up commands go in
// the `meta` object and `_hints` list of the envelope.
func WriteJSON(w io.Writer, v any, pretty bool) error {
	var b []byte
	var err error
	if pretty {
		b, err = json.MarshalIndent(v, "", "  ")
	} else {
		b, err = json.Marshal(v)
	}
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(b))
	return err
}

// plain converts v into generic JSON values (map[string]any, []any, json.Number,
// string, bool, nil) so the table and text writers see the same field names as JSON.
func plain(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

// envelope splits {"data": ..., "meta": ..., "_hints": [...]} into its parts.
// Values without a data key are returned whole as data.
func envelope(v any) (data any, meta map[string]any, hints []string) {
	m, ok := v.(map[string]any)
	if !ok {
		return v, nil, nil
	}
	d, ok := m["data"]
	if !ok {
		return v, nil, nil
	}
	meta, _ = m["meta"].(map[string]any)
	if hs, ok := m["_hints"].([]any); ok {
		for _, h := range hs {
			if s, ok := h.(string); ok {
				hints = append(hints, s)
			}
		}
	}
	return d, meta, hints
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func cell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	case bool:
		if x {
			return "true"
		}
		return "false"
	case []any:
		parts := make([]string, 0, len(x))
		scalar := true
		for _, e := range x {
			switch e.(type) {
			case map[string]any, []any:
				scalar = false
			}
			parts = append(parts, cell(e))
		}
		if scalar {
			return strings.Join(parts, ", ")
		}
	case map[string]any:
		for _, k := range []string{"name", "title", "id"} {
			if s := cell(x[k]); s != "" {
				return s
			}
		}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
