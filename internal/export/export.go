// Package export renders saved notes into downloadable documents.
package export

import (
	"bytes"
	"fmt"
	"html/template"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	ghhtml "github.com/yuin/goldmark/renderer/html"

	"secrecy-ai/internal/chat"
)

// Format identifies an export output format.
type Format string

const (
	FormatText Format = "txt"
	FormatHTML Format = "html"
	FormatDoc  Format = "doc"
)

// ParseFormat converts a format name from the request into a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "txt", "text":
		return FormatText, nil
	case "html":
		return FormatHTML, nil
	case "doc", "word":
		return FormatDoc, nil
	default:
		return "", fmt.Errorf("unknown export format %q", s)
	}
}

// MIMEType returns the Content-Type for the format.
func (f Format) MIMEType() string {
	switch f {
	case FormatHTML:
		return "text/html; charset=utf-8"
	case FormatDoc:
		return "application/msword"
	default:
		return "text/plain; charset=utf-8"
	}
}

// Exporter renders note content, treating it as markdown for rich formats.
type Exporter struct {
	markdown goldmark.Markdown
	page     *template.Template
}

// pageData holds template data for rendered note pages.
type pageData struct {
	Title   string
	Content template.HTML
}

// New creates an Exporter.
func New() *Exporter {
	tmpl := template.Must(template.New("note").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>{{.Title}}</title>
  <style>
    body {
      font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', sans-serif;
      margin: 0 auto;
      padding: 2rem;
      max-width: 800px;
      line-height: 1.7;
      color: #1e293b;
    }
    h1 {
      font-size: 1.6rem;
      border-bottom: 1px solid #cbd5e1;
      padding-bottom: 0.75rem;
    }
    pre {
      background: #f1f5f9;
      padding: 1rem;
      overflow-x: auto;
      border-radius: 8px;
    }
    code {
      font-family: 'SFMono-Regular', Consolas, 'Liberation Mono', Menlo, monospace;
      background: #f1f5f9;
      padding: 2px 5px;
      border-radius: 4px;
    }
    pre code {
      background: transparent;
      padding: 0;
    }
    blockquote {
      border-left: 4px solid #94a3b8;
      padding-left: 1rem;
      margin-left: 0;
      color: #475569;
    }
  </style>
</head>
<body>
  <h1>{{.Title}}</h1>
  <article>{{.Content}}</article>
</body>
</html>`))

	return &Exporter{
		markdown: goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,
				extension.Table,
				extension.TaskList,
				extension.Strikethrough,
				extension.Linkify,
			),
			goldmark.WithRendererOptions(
				ghhtml.WithUnsafe(),
			),
			goldmark.WithParserOptions(
				parser.WithAutoHeadingID(),
			),
		),
		page: tmpl,
	}
}

// Render produces the document bytes and a suggested filename for the note.
func (e *Exporter) Render(note chat.Note, format Format) ([]byte, string, error) {
	filename := fmt.Sprintf("%s.%s", sanitizeFilename(note.Title), format)

	switch format {
	case FormatText:
		body := fmt.Sprintf("%s\n\n%s\n", note.Title, note.Content)
		return []byte(body), filename, nil

	case FormatHTML, FormatDoc:
		var rendered bytes.Buffer
		if err := e.markdown.Convert([]byte(note.Content), &rendered); err != nil {
			return nil, "", fmt.Errorf("failed to render note content: %w", err)
		}

		var out bytes.Buffer
		err := e.page.Execute(&out, pageData{
			Title:   note.Title,
			Content: template.HTML(rendered.String()),
		})
		if err != nil {
			return nil, "", fmt.Errorf("failed to render note page: %w", err)
		}
		return out.Bytes(), filename, nil

	default:
		return nil, "", fmt.Errorf("unknown export format %q", format)
	}
}

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// sanitizeFilename turns a note title into a safe download filename.
func sanitizeFilename(title string) string {
	name := unsafeFilenameChars.ReplaceAllString(title, "_")
	name = strings.Trim(name, "_")
	if name == "" {
		name = "note"
	}
	return name
}
