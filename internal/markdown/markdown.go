// Package markdown understands the inline markup allowed in portfolio
// descriptions and renders it for terminals and HTML.
package markdown

import (
	"html"
	"html/template"
	"strings"
)

const (
	sgrReset  = "\x1b[0m"
	sgrBold   = "\x1b[1m"
	sgrItalic = "\x1b[3m"
	sgrCode   = "\x1b[36m"
)

// Span represents a styled slice of text.
type Span struct {
	Text   string
	Bold   bool
	Italic bool
	Code   bool
}

// ParseInline parses a subset of inline markdown (bold, italic, code).
// Supported markers: **bold**, *italic*, and `code`.
func ParseInline(input string) []Span {
	if input == "" {
		return nil
	}
	var spans []Span
	var buf strings.Builder
	bold := false
	italic := false
	code := false

	flush := func() {
		if buf.Len() == 0 {
			return
		}
		spans = append(spans, Span{
			Text:   buf.String(),
			Bold:   bold,
			Italic: italic,
			Code:   code,
		})
		buf.Reset()
	}

	for i := 0; i < len(input); {
		ch := input[i]
		if ch == '\\' && i+1 < len(input) {
			buf.WriteByte(input[i+1])
			i += 2
			continue
		}
		if ch == '`' {
			if code {
				flush()
				code = false
				i++
				continue
			}
			if hasClosing(input[i+1:], "`") {
				flush()
				code = true
				i++
				continue
			}
		}
		if !code && ch == '*' {
			if strings.HasPrefix(input[i:], "**") {
				if bold {
					flush()
					bold = false
					i += 2
					continue
				}
				if hasClosing(input[i+2:], "**") {
					flush()
					bold = true
					i += 2
					continue
				}
				buf.WriteString("**")
				i += 2
				continue
			}
			if italic {
				flush()
				italic = false
				i++
				continue
			}
			if hasClosing(input[i+1:], "*") {
				flush()
				italic = true
				i++
				continue
			}
		}
		buf.WriteByte(ch)
		i++
	}
	flush()
	return spans
}

func hasClosing(remaining, marker string) bool {
	if remaining == "" || marker == "" {
		return false
	}
	return strings.Contains(remaining, marker)
}

// Terminal renders input with SGR attributes. Each styled span is closed
// with a full reset followed by resume, so the text that follows keeps the
// color the caller set before the call.
func Terminal(input, resume string) string {
	spans := ParseInline(input)
	var b strings.Builder
	for _, span := range spans {
		if !span.styled() {
			b.WriteString(span.Text)
			continue
		}
		if span.Bold {
			b.WriteString(sgrBold)
		}
		if span.Italic {
			b.WriteString(sgrItalic)
		}
		if span.Code {
			b.WriteString(sgrCode)
		}
		b.WriteString(span.Text)
		b.WriteString(sgrReset)
		b.WriteString(resume)
	}
	return b.String()
}

// HTML renders input as escaped HTML with strong, em and code elements.
func HTML(input string) template.HTML {
	var b strings.Builder
	for _, span := range ParseInline(input) {
		text := html.EscapeString(span.Text)
		if span.Code {
			text = "<code>" + text + "</code>"
		}
		if span.Italic {
			text = "<em>" + text + "</em>"
		}
		if span.Bold {
			text = "<strong>" + text + "</strong>"
		}
		b.WriteString(text)
	}
	return template.HTML(b.String())
}

func (s Span) styled() bool {
	return s.Bold || s.Italic || s.Code
}
