package console

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// bulletRunes are the markers that open a bulleted line.
const bulletRunes = "•·▪▫-*"

// Wrap breaks one logical line into rows no wider than maxWidth visible
// columns. Bulleted and indented lines keep their text aligned under the
// first word on every continuation row. Escape sequences never count toward
// the width and stay attached to the word next to them. A word wider than
// maxWidth is placed alone on its row and left intact.
func Wrap(line string, maxWidth int) []string {
	if maxWidth <= 0 || VisualLength(line) <= maxWidth {
		return []string{line}
	}

	prefixWidth := hangingWidth(StripCodes(line))
	split := offsetAtColumn(line, prefixWidth)
	prefix, content := line[:split], line[split:]
	indent := strings.Repeat(" ", prefixWidth)

	var (
		rows      []string
		current   strings.Builder
		width     int
		pending   string
		lineStart int
	)
	current.WriteString(prefix)
	width = prefixWidth
	lineStart = prefixWidth

	closeRow := func() {
		rows = append(rows, strings.TrimRight(current.String(), " \t"))
		current.Reset()
	}

	for _, tok := range splitWords(content) {
		if tok.space {
			pending = tok.text
			continue
		}
		wordWidth := VisualLength(tok.text)
		gapWidth := VisualLength(pending)
		if wordWidth == 0 {
			// Escape codes only: stay on this row, dropping the gap if it
			// would overflow.
			if width+gapWidth <= maxWidth {
				current.WriteString(pending)
				width += gapWidth
				pending = ""
			}
			current.WriteString(tok.text)
			continue
		}
		if width > lineStart && width+gapWidth+wordWidth > maxWidth {
			closeRow()
			lineStart = continuationIndent(prefixWidth, wordWidth, maxWidth)
			current.WriteString(indent[:lineStart])
			current.WriteString(tok.text)
			width = lineStart + wordWidth
			pending = ""
			continue
		}
		if width == lineStart && lineStart > 0 && width+gapWidth+wordWidth > maxWidth && wordWidth <= maxWidth {
			// Only the prefix is on this row and the word cannot follow it.
			if strings.TrimSpace(StripCodes(prefix)) == "" {
				current.Reset()
				current.WriteString(escapesOnly(prefix))
			} else {
				closeRow()
			}
			lineStart = 0
			current.WriteString(tok.text)
			width = wordWidth
			pending = ""
			continue
		}
		current.WriteString(pending)
		current.WriteString(tok.text)
		width += gapWidth + wordWidth
		pending = ""
	}
	if width > lineStart || len(rows) == 0 {
		closeRow()
	}
	if len(rows) == 1 && strings.TrimSpace(StripCodes(rows[0])) == "" {
		return []string{""}
	}
	return rows
}

// continuationIndent drops the hanging indent when it would push a word
// that fits the width on its own past the edge.
func continuationIndent(prefixWidth, wordWidth, maxWidth int) int {
	if prefixWidth+wordWidth > maxWidth && wordWidth <= maxWidth {
		return 0
	}
	return prefixWidth
}

// hangingWidth returns the visible width of a bullet prefix (leading
// whitespace, bullet, whitespace) or, failing that, of the leading
// indentation. Both need text after them to count.
func hangingWidth(plain string) int {
	runes := []rune(plain)
	i := 0
	for i < len(runes) && unicode.IsSpace(runes[i]) {
		i++
	}
	if i < len(runes) && strings.ContainsRune(bulletRunes, runes[i]) {
		j := i + 1
		k := j
		for k < len(runes) && unicode.IsSpace(runes[k]) {
			k++
		}
		if k > j && k < len(runes) {
			return k
		}
	}
	if i > 0 && i < len(runes) {
		return i
	}
	return 0
}

type wordToken struct {
	text  string
	space bool
}

// splitWords cuts s into alternating runs of whitespace and non-whitespace.
// Escape sequences contain no whitespace, so they ride along with the word
// they touch.
func splitWords(s string) []wordToken {
	var tokens []wordToken
	start := 0
	inSpace := false
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		space := r == ' ' || r == '\t'
		if i > start && space != inSpace {
			tokens = append(tokens, wordToken{text: s[start:i], space: inSpace})
			start = i
		}
		inSpace = space
		i += size
	}
	if start < len(s) {
		tokens = append(tokens, wordToken{text: s[start:], space: inSpace})
	}
	return tokens
}

// escapesOnly keeps the escape sequences of s and drops everything else.
func escapesOnly(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); {
		if s[i] != 0x1b {
			i++
			continue
		}
		end := skipEscape(s, i+1)
		b.WriteString(s[i:end])
		i = end
	}
	return b.String()
}
