package format

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Status string `json:"status,omitempty"`
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, map[string]any{"data": row{ID: "T-1", Title: "x"}}, "", false))
	assert.Equal(t, `{"data":{"id":"T-1","title":"x"}}`+"\n", buf.String())

	buf.Reset()
	require.NoError(t, Write(&buf, []int{1}, "json", true))
	assert.Equal(t, "[\n  1\n]\n", buf.String())
}

func TestWriteUnknownFormat(t *testing.T) {
	err := Write(&bytes.Buffer{}, nil, "edn", false)
	assert.EqualError(t, err, "unknown format: edn")
}

func TestWriteTableList(t *testing.T) {
	var buf bytes.Buffer
	env := map[string]any{
		"data": map[string]any{
			"list":       []row{{ID: "T-1", Title: "Alpha", Status: "Published"}, {ID: "T-2", Title: "Beta"}},
			"total":      2,
			"page":       1,
			"totalPages": 1,
		},
		"_hints": []string{"pandora tasks show T-1"},
	}
	require.NoError(t, Write(&buf, env, "table", false))
	out := buf.String()

	lines := strings.Split(out, "\n")
	var header string
	for _, l := range lines {
		if strings.Contains(l, "title") {
			header = l
			break
		}
	}
	require.NotEmpty(t, header, out)
	assert.Less(t, strings.Index(header, "id"), strings.Index(header, "title"))
	assert.Less(t, strings.Index(header, "title"), strings.Index(header, "status"))
	assert.Contains(t, out, "Alpha")
	assert.Contains(t, out, "Published")
	assert.Contains(t, out, "page 1/1, 2 total")
	assert.Contains(t, out, "hint: pandora tasks show T-1")
}

func TestWriteTableObjectAndEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, map[string]any{"data": row{ID: "T-1", Title: "Alpha"}}))
	assert.Contains(t, buf.String(), "field")
	assert.Contains(t, buf.String(), "Alpha")

	buf.Reset()
	require.NoError(t, WriteTable(&buf, map[string]any{"data": []row{}}))
	assert.Contains(t, buf.String(), "(no results)")
}

func TestCell(t *testing.T) {
	assert.Equal(t, "", cell(nil))
	assert.Equal(t, "3", cell(json.Number("3")))
	assert.Equal(t, "a, b", cell([]any{"a", "b"}))
	assert.Equal(t, "Alice", cell(map[string]any{"id": "1", "name": "Alice"}))
	assert.Equal(t, "ab…", truncate("abcdef", 3))
	assert.Equal(t, "a b", truncate(" a \n b ", 10))
}

type doc struct{}

func (doc) Markdown() string { return "# Custom heading\n\nbody text\n" }

func TestMarkdown(t *testing.T) {
	md, err := Markdown(map[string]any{
		"data": []row{{ID: "T-1", Title: "Alpha", Status: "Done"}},
		"meta": map[string]any{"count": 1},
	})
	require.NoError(t, err)
	assert.Contains(t, md, "### T-1 · Alpha")
	assert.Contains(t, md, "- **status**: Done")
	assert.Contains(t, md, "- count: 1")

	md, err = Markdown(map[string]any{"data": doc{}})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(md, "# Custom heading"))
}

func TestWriteTextPlainStyle(t *testing.T) {
	t.Setenv("PANDORA_MD_STYLE", "")
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, map[string]any{"data": row{ID: "T-9", Title: "Ship it"}}, "text", false))
	assert.Contains(t, buf.String(), "Ship it")
	assert.Contains(t, buf.String(), "T-9")
	assert.NotContains(t, buf.String(), "\x1b[")
}

func TestPickMarkdownStyle(t *testing.T) {
	dark := func() bool { return true }
	light := func() bool { return false }
	tests := []struct {
		name     string
		override string
		noColor  string
		tty      bool
		profile  termenv.Profile
		bg       func() bool
		want     string
	}{
		{name: "pipe", tty: false, profile: termenv.TrueColor, bg: dark, want: "notty"},
		{name: "dark terminal", tty: true, profile: termenv.ANSI256, bg: dark, want: "dark"},
		{name: "light terminal", tty: true, profile: termenv.ANSI256, bg: light, want: "light"},
		{name: "no color", noColor: "1", tty: true, profile: termenv.TrueColor, bg: light, want: "notty"},
		{name: "ascii profile", tty: true, profile: termenv.Ascii, bg: dark, want: "notty"},
		{name: "override", override: "Light", tty: false, profile: termenv.Ascii, want: "light"},
		{name: "unknown override", override: "neon", tty: true, profile: termenv.ANSI, bg: dark, want: "dark"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("PANDORA_MD_STYLE", tt.override)
			t.Setenv("NO_COLOR", tt.noColor)
			assert.Equal(t, tt.want, pickMarkdownStyle(tt.tty, tt.profile, tt.bg))
		})
	}
}
