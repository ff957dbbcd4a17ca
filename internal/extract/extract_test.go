package extract

import (
	"testing"

	"github.com/stretchr/testify/require"

	appErr "github.com/insightlens/insightlens/internal/pkg/errors"
)

func TestTextPlain(t *testing.T) {
	out, err := Text("notes.txt", []byte("hello world"))
	require.NoError(t, err)
	require.Equal(t, "hello world", out)
}

func TestTextUnsupportedExtension(t *testing.T) {
	_, err := Text("report.pdf", []byte("%PDF-1.4"))
	require.ErrorIs(t, err, appErr.ErrInvalidFile)

	_, err = Text("slides.docx", []byte("zip"))
	require.ErrorIs(t, err, appErr.ErrInvalidFile)
}

func TestSupported(t *testing.T) {
	require.True(t, Supported("a.txt"))
	require.True(t, Supported("a.MD"))
	require.True(t, Supported("noext"))
	require.False(t, Supported("a.pdf"))
	require.False(t, Supported("a.docx"))
}

func TestMarkdownKeepsHeadingMarkers(t *testing.T) {
	source := "# Title\n\nSome *emphasized* paragraph.\n\n## Sub\n\nmore text\n"
	out := Markdown([]byte(source))
	require.Contains(t, out, "# Title")
	require.Contains(t, out, "## Sub")
	require.Contains(t, out, "Some emphasized paragraph.")
	require.NotContains(t, out, "*emphasized*")
}

func TestMarkdownFencedCodeKeptVerbatim(t *testing.T) {
	source := "# Title\n\n```\nline one\nline two\n```\n"
	out := Markdown([]byte(source))
	require.Contains(t, out, "line one\nline two")
}

func TestMarkdownViaText(t *testing.T) {
	out, err := Text("doc.md", []byte("## Heading\n\nbody"))
	require.NoError(t, err)
	require.Contains(t, out, "## Heading")
	require.Contains(t, out, "body")
}
