package shell

import (
	"strings"
)

// Command is one parsed input line.
type Command struct {
	// Name is the leading run of letters, digits and dashes.
	Name string
	// Args is everything after Name, trimmed.
	Args string
	// Raw is the trimmed input.
	Raw string
}

// Parse splits input into a command name and its argument string. Input
// that does not start with a name character is kept whole as the name.
func Parse(input string) Command {
	raw := strings.TrimSpace(input)
	i := 0
	for i < len(raw) && isNameByte(raw[i]) {
		i++
	}
	if i == 0 {
		return Command{Name: raw, Raw: raw}
	}
	return Command{
		Name: raw[:i],
		Args: strings.TrimSpace(raw[i:]),
		Raw:  raw,
	}
}

// Sub splits an argument string into its first token and the trimmed rest.
func Sub(args string) (string, string) {
	args = strings.TrimSpace(args)
	i := 0
	for i < len(args) && !isSpace(args[i]) {
		i++
	}
	return args[:i], strings.TrimSpace(args[i:])
}

// flags collects the long and short flags in args. Combined short flags
// such as -av count as -a and -v.
type flags map[string]bool

func parseFlags(args string) flags {
	out := flags{}
	for _, field := range strings.Fields(args) {
		switch {
		case strings.HasPrefix(field, "--"):
			out[field] = true
		case strings.HasPrefix(field, "-") && len(field) > 1:
			for _, r := range field[1:] {
				out["-"+string(r)] = true
			}
		}
	}
	return out
}

func (f flags) has(names ...string) bool {
	for _, name := range names {
		if f[name] {
			return true
		}
	}
	return false
}

// firstWord returns the first run of word characters in s, or s itself
// when it starts with something else.
func firstWord(s string) string {
	i := 0
	for i < len(s) && isWordByte(s[i]) {
		i++
	}
	if i == 0 {
		return s
	}
	return s[:i]
}

func isNameByte(b byte) bool {
	return isWordByte(b) && b != '_' || b == '-'
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9' || b == '_'
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}
