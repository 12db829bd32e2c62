package formatter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderTable_AlignsColumns(t *testing.T) {
	out := RenderTable(
		[]string{"ID", "NOMBRE"},
		[][]string{
			{"1", "Agrícola Los Sauces"},
			{"42", "Juan Pérez"},
		},
	)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "NOMBRE")
	assert.Contains(t, lines[1], "─")
	assert.Contains(t, lines[2], "Agrícola Los Sauces")

	// "42" is wider than "1": names start at the same column.
	assert.Equal(t,
		strings.Index(stripAnsi(lines[2]), "Agrícola"),
		strings.Index(stripAnsi(lines[3]), "Juan"),
	)
}

func TestRenderTable_EmptyHeaders(t *testing.T) {
	assert.Equal(t, "", RenderTable(nil, [][]string{{"x"}}))
}

func TestRenderTable_ShortRows(t *testing.T) {
	out := RenderTable([]string{"A", "B", "C"}, [][]string{{"solo"}})
	assert.Contains(t, out, "solo")
}

func stripAnsi(s string) string {
	var b strings.Builder
	inEscape := false
	for _, r := range s {
		switch {
		case inEscape:
			if r == 'm' {
				inEscape = false
			}
		case r == '\x1b':
			inEscape = true
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
