package extract

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	appErr "github.com/insightlens/insightlens/internal/pkg/errors"
)

// Supported reports whether the file's extension belongs to a format Text
// can handle, so uploads of binary formats can be rejected before storage.
func Supported(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".txt", ".text", ".md", ".markdown", "":
		return true
	default:
		return false
	}
}

// Text extracts plain text from an uploaded file based on its extension.
// Only textual formats are supported; binary formats (pdf, docx) are
// rejected so the caller can fail the upload early.
func Text(filename string, data []byte) (string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".txt", ".text", "":
		return string(data), nil
	case ".md", ".markdown":
		return Markdown(data), nil
	default:
		return "", fmt.Errorf("%w: unsupported file type %q", appErr.ErrInvalidFile, filepath.Ext(filename))
	}
}

// Markdown flattens a markdown document to plain text. Headings keep their
// marker prefix so downstream heading detection still sees them; fenced
// code blocks keep their raw lines; everything else is reduced to its
// text content, block by block.
func Markdown(source []byte) string {
	md := goldmark.New()
	reader := text.NewReader(source)
	doc := md.Parser().Parse(reader)

	var b strings.Builder
	for node := doc.FirstChild(); node != nil; node = node.NextSibling() {
		switch n := node.(type) {
		case *ast.Heading:
			heading := strings.TrimSpace(string(n.Text(source)))
			if heading == "" {
				continue
			}
			b.WriteString(strings.Repeat("#", n.Level))
			b.WriteString(" ")
			b.WriteString(heading)
			b.WriteString("\n\n")
		case *ast.FencedCodeBlock:
			for i := 0; i < n.Lines().Len(); i++ {
				line := n.Lines().At(i)
				b.Write(line.Value(source))
			}
			b.WriteString("\n")
		default:
			txt := nodeText(node, source)
			if txt == "" {
				continue
			}
			b.WriteString(txt)
			b.WriteString("\n\n")
		}
	}
	return strings.TrimSpace(b.String())
}

func nodeText(n ast.Node, source []byte) string {
	var sb strings.Builder
	_ = ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if node.Kind() == ast.KindText {
			sb.Write(node.(*ast.Text).Segment.Value(source))
			if node.(*ast.Text).SoftLineBreak() || node.(*ast.Text).HardLineBreak() {
				sb.WriteString("\n")
			}
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(sb.String())
}
