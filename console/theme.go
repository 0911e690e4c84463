package console

import (
	"fmt"
	"sort"
	"strconv"

	"pkt.systems/termfolio/schema"
)

// DefaultTheme is the palette used when none is configured.
const DefaultTheme = "classic"

type rgb struct {
	r int
	g int
	b int
}

// Theme holds the SGR sequences used for the prompt segments and error
// output.
type Theme struct {
	Name   string
	User   string
	Host   string
	Path   string
	Symbol string
	Error  string
}

var themes = map[string]Theme{
	"classic": {
		Name:   "classic",
		User:   "\x1b[32m",
		Host:   "\x1b[36m",
		Path:   "\x1b[33m",
		Symbol: "\x1b[32m",
		Error:  "\x1b[31m",
	},
	"outrun": {
		Name:   "outrun",
		User:   ansiFgRGB(rgb{r: 255, g: 91, b: 189}),
		Host:   ansiFgRGB(rgb{r: 0, g: 229, b: 255}),
		Path:   ansiFgRGB(rgb{r: 110, g: 136, b: 255}),
		Symbol: ansiFgRGB(rgb{r: 240, g: 241, b: 255}),
		Error:  ansiFgRGB(rgb{r: 255, g: 107, b: 107}),
	},
	"gruvbox": {
		Name:   "gruvbox",
		User:   ansiFgRGB(rgb{r: 184, g: 187, b: 38}),
		Host:   ansiFgRGB(rgb{r: 131, g: 165, b: 152}),
		Path:   ansiFgRGB(rgb{r: 250, g: 189, b: 47}),
		Symbol: ansiFgRGB(rgb{r: 235, g: 219, b: 178}),
		Error:  ansiFgRGB(rgb{r: 251, g: 73, b: 52}),
	},
	"tokyo-midnight": {
		Name:   "tokyo-midnight",
		User:   ansiFgRGB(rgb{r: 158, g: 206, b: 106}),
		Host:   ansiFgRGB(rgb{r: 122, g: 162, b: 247}),
		Path:   ansiFgRGB(rgb{r: 187, g: 154, b: 247}),
		Symbol: ansiFgRGB(rgb{r: 192, g: 202, b: 245}),
		Error:  ansiFgRGB(rgb{r: 247, g: 118, b: 142}),
	},
}

// ThemeNamed looks up a palette; the empty name selects DefaultTheme.
func ThemeNamed(name string) (Theme, error) {
	if name == "" {
		name = DefaultTheme
	}
	theme, ok := themes[name]
	if !ok {
		return Theme{}, fmt.Errorf("%w: %q", schema.ErrUnknownTheme, name)
	}
	return theme, nil
}

// ThemeNames lists the known palettes in sorted order.
func ThemeNames() []string {
	names := make([]string, 0, len(themes))
	for name := range themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Prompt renders "user@host:~$ " in the theme's colors.
func (t Theme) Prompt(user, host string) string {
	return t.User + user + ansiReset + "@" +
		t.Host + host + ansiReset + ":" +
		t.Path + "~" + ansiReset +
		t.Symbol + "$" + ansiReset + " "
}

func ansiFgRGB(c rgb) string {
	return "\x1b[38;2;" + strconv.Itoa(c.r) + ";" + strconv.Itoa(c.g) + ";" + strconv.Itoa(c.b) + "m"
}
