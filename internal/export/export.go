// Package export renders a conversation as a Markdown or HTML transcript and
// writes it to disk.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/renameio/v2"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/Guepard-Corp/qwery-core-sub001/internal/chat"
)

// ErrNoConversation is returned when there is nothing to export.
var ErrNoConversation = errors.New("No conversation to export")

// Options select the optional sections of a transcript.
type Options struct {
	// Thinking includes the assistant's reasoning.
	Thinking bool
	// ToolDetails includes tool arguments and output.
	ToolDetails bool
	// HTML renders the transcript as a standalone HTML page.
	HTML bool
}

// Markdown renders conv as a Markdown transcript.
func Markdown(conv chat.Conversation, opts Options) string {
	var b strings.Builder
	title := conv.Title
	if title == "" {
		title = "Conversation"
	}
	fmt.Fprintf(&b, "# %s\n\n", title)
	if !conv.CreatedAt.IsZero() {
		fmt.Fprintf(&b, "_Started %s_\n\n", conv.CreatedAt.Format("2006-01-02 15:04"))
	}

	for _, m := range conv.Messages {
		if m.Role == chat.RoleUser {
			b.WriteString("## You\n\n")
			b.WriteString(m.Content)
			b.WriteString("\n\n")
			continue
		}

		b.WriteString("## Qwery")
		if meta := meta(m); meta != "" {
			fmt.Fprintf(&b, " (%s)", meta)
		}
		b.WriteString("\n\n")
		if opts.Thinking && strings.TrimSpace(m.Reasoning) != "" {
			b.WriteString("> **Thinking**\n>\n")
			for _, line := range strings.Split(strings.TrimSpace(m.Reasoning), "\n") {
				b.WriteString("> " + line + "\n")
			}
			b.WriteString("\n")
		}
		b.WriteString(m.Content)
		b.WriteString("\n\n")
		writeTools(&b, m.ToolCalls, opts.ToolDetails)
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}

func meta(m chat.ChatMessage) string {
	var parts []string
	if m.Model != "" {
		parts = append(parts, m.Model)
	}
	if m.Duration != "" {
		parts = append(parts, m.Duration)
	}
	return strings.Join(parts, ", ")
}

func writeTools(b *strings.Builder, calls []chat.ToolCall, details bool) {
	if len(calls) == 0 {
		return
	}
	if !details {
		names := make([]string, len(calls))
		for i, c := range calls {
			names[i] = "`" + c.Name + "`"
		}
		fmt.Fprintf(b, "_Tools: %s_\n\n", strings.Join(names, ", "))
		return
	}
	for _, c := range calls {
		fmt.Fprintf(b, "### Tool `%s` (%s)\n\n", c.Name, c.Status)
		if c.Args != "" && c.Args != `""` {
			fmt.Fprintf(b, "Input:\n\n```json\n%s\n```\n\n", c.Args)
		}
		if c.Output != "" {
			fmt.Fprintf(b, "Output:\n\n```\n%s\n```\n\n", c.Output)
		}
	}
}

var md = goldmark.New(
	goldmark.WithExtensions(
		extension.Table,
		extension.Linkify,
	),
	goldmark.WithParserOptions(
		parser.WithAutoHeadingID(),
	),
	goldmark.WithRendererOptions(
		html.WithHardWraps(),
	),
)

var page = template.Must(template.New("transcript").Parse(`<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: system-ui, sans-serif; max-width: 50rem; margin: 2rem auto; padding: 0 1rem; }
pre { background: #f4f4f4; padding: .75rem; overflow-x: auto; }
blockquote { color: #666; border-left: 3px solid #ccc; margin-left: 0; padding-left: 1rem; }
</style>
</head>
<body>
{{.Content}}
</body>
</html>
`))

// RenderHTML converts a Markdown transcript into a standalone HTML page.
// Raw HTML in messages is escaped.
func RenderHTML(title, markdown string) ([]byte, error) {
	var body bytes.Buffer
	if err := md.Convert([]byte(markdown), &body); err != nil {
		return nil, fmt.Errorf("converting transcript: %w", err)
	}
	var out bytes.Buffer
	err := page.Execute(&out, struct {
		Title   string
		Content template.HTML
	}{title, template.HTML(body.String())})
	if err != nil {
		return nil, fmt.Errorf("executing template: %w", err)
	}
	return out.Bytes(), nil
}

// Write renders conv into dir/filename and returns the written path.
// A filename ending in .html selects HTML output regardless of opts.HTML.
func Write(dir, filename string, conv chat.Conversation, opts Options) (string, error) {
	if len(conv.Messages) == 0 {
		return "", ErrNoConversation
	}
	filename = strings.TrimSpace(filename)
	if filename == "" {
		return "", errors.New("export filename is empty")
	}
	path := filename
	if !filepath.IsAbs(path) {
		path = filepath.Join(dir, filename)
	}

	data := []byte(Markdown(conv, opts))
	if opts.HTML || strings.EqualFold(filepath.Ext(path), ".html") {
		var err error
		if data, err = RenderHTML(conv.Title, string(data)); err != nil {
			return "", err
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("creating directory for %s: %w", path, err)
	}
	if err := renameio.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}
