// Package export turns a note into downloadable files.
package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html"
	"os/exec"
	"strings"

	"github.com/vinizap/takenote/domain"
	"github.com/vinizap/takenote/markup"
)

var ErrPDFUnavailable = errors.New("pdf export is not configured")

type File struct {
	Name        string
	ContentType string
	Body        []byte
}

// TextFile exports the raw note content.
func TextFile(n domain.Note) File {
	return File{
		Name:        FileName(n.Title, "txt"),
		ContentType: "text/plain; charset=utf-8",
		Body:        []byte(n.Content),
	}
}

// FileName builds "<title>.<ext>", falling back to "note" for an empty title.
// Path separators and control characters are replaced.
func FileName(title, ext string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\' || r == ':' || r == '"':
			return '_'
		case r < 0x20 || r == 0x7f:
			return -1
		}
		return r
	}, strings.TrimSpace(title))
	if name == "" {
		name = "note"
	}
	return name + "." + ext
}

// Fragment is the HTML body handed to the PDF exporter: the title as a
// heading followed by the rendered content.
func Fragment(n domain.Note) (string, error) {
	body, err := markup.Render(n.Content)
	if err != nil {
		return "", err
	}
	return "<h1>" + html.EscapeString(n.Title) + "</h1>\n<div>" + body + "</div>\n", nil
}

const documentTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
body { font-family: sans-serif; margin: 1in; line-height: 1.5; }
img { max-width: 100%%; }
table { border-collapse: collapse; }
td, th { border: 1px solid #ccc; padding: 4px 8px; }
</style>
</head>
<body>
%s</body>
</html>
`

// HTMLFile wraps the fragment of n in a standalone document.
func HTMLFile(n domain.Note) (File, error) {
	frag, err := Fragment(n)
	if err != nil {
		return File{}, err
	}
	doc := fmt.Sprintf(documentTemplate, html.EscapeString(n.Title), frag)
	return File{
		Name:        FileName(n.Title, "html"),
		ContentType: "text/html; charset=utf-8",
		Body:        []byte(doc),
	}, nil
}

type PDFRenderer interface {
	RenderPDF(ctx context.Context, title, document string) ([]byte, error)
}

// CommandRenderer pipes an HTML document through an external converter that
// reads HTML on stdin and writes PDF on stdout, e.g.
// ["wkhtmltopdf", "--quiet", "-", "-"].
type CommandRenderer struct {
	Command []string
}

func (r CommandRenderer) RenderPDF(ctx context.Context, title, document string) ([]byte, error) {
	if len(r.Command) == 0 {
		return nil, ErrPDFUnavailable
	}
	cmd := exec.CommandContext(ctx, r.Command[0], r.Command[1:]...)
	cmd.Stdin = strings.NewReader(document)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return nil, fmt.Errorf("render pdf %q: %w: %s", title, err, msg)
		}
		return nil, fmt.Errorf("render pdf %q: %w", title, err)
	}
	return stdout.Bytes(), nil
}

// PDFFile renders n through r. A nil renderer reports ErrPDFUnavailable.
func PDFFile(ctx context.Context, r PDFRenderer, n domain.Note) (File, error) {
	if r == nil {
		return File{}, ErrPDFUnavailable
	}
	doc, err := HTMLFile(n)
	if err != nil {
		return File{}, err
	}
	body, err := r.RenderPDF(ctx, n.Title, string(doc.Body))
	if err != nil {
		return File{}, err
	}
	return File{
		Name:        FileName(n.Title, "pdf"),
		ContentType: "application/pdf",
		Body:        body,
	}, nil
}
