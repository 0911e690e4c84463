package console

import (
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/x/ansi"
)

const (
	ansiReset = "\x1b[0m"

	clearScreen = "\x1b[2J\x1b[H"
	eraseLine   = "\x1b[2K\r"
	hideCursor  = "\x1b[?25l"
	showCursor  = "\x1b[?25h"
	cursorLeft  = "\x1b[D"
	cursorRight = "\x1b[C"

	focusReportingOn  = "\x1b[?1004h"
	focusReportingOff = "\x1b[?1004l"
)

// StripCodes removes SGR color codes and OSC-8 hyperlink markers from s.
func StripCodes(s string) string {
	if strings.IndexByte(s, 0x1b) < 0 {
		return s
	}
	return ansi.Strip(s)
}

// VisualLength reports how many columns s occupies once escape codes are
// removed. Every remaining rune counts as one column, wide runes included.
func VisualLength(s string) int {
	return utf8.RuneCountInString(StripCodes(s))
}

// offsetAtColumn returns the byte offset in s just past the col-th visible
// rune. Escape sequences met before that rune are included in the prefix.
func offsetAtColumn(s string, col int) int {
	if col <= 0 {
		return 0
	}
	visible := 0
	for i := 0; i < len(s); {
		if s[i] == 0x1b {
			i = skipEscape(s, i+1)
			continue
		}
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
		visible++
		if visible == col {
			return i
		}
	}
	return len(s)
}

func skipEscape(text string, i int) int {
	if i >= len(text) {
		return i
	}
	switch text[i] {
	case '[':
		return skipCSI(text, i+1)
	case ']':
		return skipOSC(text, i+1)
	default:
		return i + 1
	}
}

func skipCSI(text string, i int) int {
	for i < len(text) {
		b := text[i]
		if b >= 0x40 && b <= 0x7e {
			return i + 1
		}
		i++
	}
	return i
}

func skipOSC(text string, i int) int {
	for i < len(text) {
		switch text[i] {
		case 0x07:
			return i + 1
		case 0x1b:
			if i+1 < len(text) && text[i+1] == '\\' {
				return i + 2
			}
		}
		i++
	}
	return i
}
