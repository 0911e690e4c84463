// Package shell is the portfolio command interpreter behind the terminal.
package shell

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/mdp/qrterminal/v3"

	"pkt.systems/termfolio/console"
	"pkt.systems/termfolio/internal/markdown"
	"pkt.systems/termfolio/schema"
)

const (
	colorReset       = "\x1b[0m"
	colorCyan        = "\x1b[36m"
	colorYellow      = "\x1b[33m"
	colorMagenta     = "\x1b[35m"
	colorWhite       = "\x1b[37m"
	colorGray        = "\x1b[90m"
	colorBrightGreen = "\x1b[92m"

	defaultColumns = 80
	previewCount   = 4
)

// ContentSource supplies the current portfolio content.
type ContentSource interface {
	Snapshot() (schema.Content, bool)
}

// Interpreter answers the commands typed at the portfolio prompt.
type Interpreter struct {
	content ContentSource
	columns func() int
}

type Option func(*Interpreter)

// WithColumns reports the live terminal width, used to size the banner and
// QR codes.
func WithColumns(fn func() int) Option {
	return func(in *Interpreter) {
		in.columns = fn
	}
}

func New(content ContentSource, opts ...Option) *Interpreter {
	in := &Interpreter{content: content}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

var _ console.Interpreter = (*Interpreter)(nil)

// Execute runs one line. Blank input produces no records.
func (in *Interpreter) Execute(input string) []schema.OutputRecord {
	cmd := Parse(input)
	if cmd.Raw == "" {
		return nil
	}
	switch cmd.Name {
	case "clear":
		return []schema.OutputRecord{schema.Clear()}
	case "shiv":
		return in.shiv(cmd.Args)
	case "rm":
		return []schema.OutputRecord{schema.Output("Yo chill don't delete anything haha...")}
	default:
		return notFound(cmd.Raw)
	}
}

func notFound(s string) []schema.OutputRecord {
	return []schema.OutputRecord{schema.Error("zsh: command not found: " + firstWord(s))}
}

func (in *Interpreter) shiv(args string) []schema.OutputRecord {
	sub, rest := Sub(args)
	switch sub {
	case "":
		return []schema.OutputRecord{schema.Output(in.intro())}
	case "help", "--help", "-h":
		return []schema.OutputRecord{schema.Output(helpText())}
	case "experience":
		return in.experience(parseFlags(rest))
	case "projects":
		return in.projects(parseFlags(rest))
	case "contact":
		if rest == "" {
			return []schema.OutputRecord{schema.Output(contactHelp())}
		}
		return in.contact(rest)
	default:
		return notFound(args)
	}
}

func (in *Interpreter) cols() int {
	if in.columns == nil {
		return defaultColumns
	}
	if cols := in.columns(); cols > 0 {
		return cols
	}
	return defaultColumns
}

func (in *Interpreter) snapshot() (schema.Content, bool) {
	if in.content == nil {
		return schema.Content{}, false
	}
	return in.content.Snapshot()
}

func link(url, text string) string {
	return "\x1b]8;;" + url + "\x1b\\" + text + "\x1b]8;;\x1b\\"
}

func (in *Interpreter) intro() string {
	var b strings.Builder
	b.WriteString(colorBrightGreen + bannerFor(in.cols()) + colorReset)
	b.WriteString("\n\nHey, I'm Shivansh, an engineer who's previously built systems at ")
	b.WriteString(colorWhite + "[Stealth Startup]" + colorReset + ", ")
	b.WriteString(link("https://magichour.ai/", colorMagenta+"[MagicHour AI]"+colorReset) + ", and ")
	b.WriteString(link("https://www.happyrobot.ai/", colorCyan+"[Happyrobot]"+colorReset) + ". ")
	b.WriteString("\n\nCurrently I'm building applied AI, fashion tech, and developer tools. I'm also ")
	b.WriteString("studying EECS and Business at " + colorYellow + "UC Berkeley's M.E.T. program" + colorReset + ". ")
	b.WriteString("\n\nType \"shiv help\" to get started.")
	return b.String()
}

func helpText() string {
	green := func(s string) string { return colorBrightGreen + s + colorReset }
	dash := colorGray + "-" + colorReset
	lines := []string{
		colorWhite + "Available commands:" + colorReset,
		"  " + green("shiv") + "            " + dash + " Display ASCII art of my name",
		"  " + green("shiv help") + "       " + dash + " Show this help message",
		"  " + green("shiv experience") + " " + dash + " Show my work experience (use " + green("--all") + " for all)",
		"  " + green("shiv projects") + "   " + dash + " List my projects (use " + green("--all") + " for all, " + green("--verbose") + " for descriptions)",
		"  " + green("shiv contact") + "    " + dash + " List contact options",
		"  " + green("clear") + "           " + dash + " Clear the screen",
	}
	return strings.Join(lines, "\n")
}

func (in *Interpreter) experience(f flags) []schema.OutputRecord {
	c, ok := in.snapshot()
	if !ok {
		return []schema.OutputRecord{schema.Output("Loading...")}
	}
	if len(c.Experience) == 0 {
		return []schema.OutputRecord{schema.Output("No experience listed yet.")}
	}
	showAll := f.has("--all", "-a")
	shown := c.Experience
	if !showAll && len(shown) > previewCount {
		shown = shown[:previewCount]
	}
	var b strings.Builder
	for _, exp := range shown {
		fmt.Fprintf(&b, "  %s%s - %s%s\n", colorCyan, exp.Title, exp.Company, colorReset)
		fmt.Fprintf(&b, "  %s%s%s\n", colorGray, exp.Period, colorReset)
		for _, desc := range exp.Description {
			fmt.Fprintf(&b, "    • %s\n", markdown.Terminal(desc, ""))
		}
		b.WriteString("\n")
	}
	if !showAll && len(c.Experience) > previewCount {
		fmt.Fprintf(&b, "  %sShowing %d of %d experiences. Use %sshiv experience --all%s%s to see all.%s",
			colorGray, previewCount, len(c.Experience), colorBrightGreen, colorReset, colorGray, colorReset)
	}
	return []schema.OutputRecord{schema.Output(strings.TrimRight(b.String(), " \n"))}
}

func (in *Interpreter) projects(f flags) []schema.OutputRecord {
	c, ok := in.snapshot()
	if !ok {
		return []schema.OutputRecord{schema.Output("Loading...")}
	}
	if len(c.Projects) == 0 {
		return []schema.OutputRecord{schema.Output("No projects listed yet.")}
	}
	showAll := f.has("--all", "-a")
	verbose := f.has("--verbose", "-v")
	shown := c.Projects
	if !showAll && len(shown) > previewCount {
		shown = shown[:previewCount]
	}
	var b strings.Builder
	for _, p := range shown {
		fmt.Fprintf(&b, "  %s\n", projectTitle(p))
		fmt.Fprintf(&b, "    %s%s%s\n", colorCyan, markdown.Terminal(p.Tagline, colorCyan), colorReset)
		if verbose {
			for _, desc := range p.Description {
				fmt.Fprintf(&b, "    • %s\n", markdown.Terminal(desc, ""))
			}
			fmt.Fprintf(&b, "    %sTech: %s%s\n", colorGray, strings.Join(p.Tech, ", "), colorReset)
			if p.Period != "" {
				fmt.Fprintf(&b, "    %sPeriod: %s%s\n", colorGray, p.Period, colorReset)
			}
		}
		b.WriteString("\n")
	}
	if !showAll && len(c.Projects) > previewCount {
		fmt.Fprintf(&b, "  %sShowing %d of %d projects. Add the --all flag (%sshiv projects --all%s%s) to see all projects. Add the %s--verbose%s%s flag for descriptions. Add both for both.%s",
			colorGray, previewCount, len(c.Projects),
			colorBrightGreen, colorReset, colorGray,
			colorBrightGreen, colorReset, colorGray, colorReset)
	}
	return []schema.OutputRecord{schema.Output(strings.TrimRight(b.String(), " \n"))}
}

// projectTitle links the trimmed name and keeps any padding outside the
// link.
func projectTitle(p schema.Project) string {
	if p.Link == "" {
		return colorMagenta + p.Name + colorReset
	}
	trimmed := strings.TrimSpace(p.Name)
	start := strings.Index(p.Name, trimmed)
	leading := p.Name[:start]
	trailing := p.Name[start+len(trimmed):]
	return leading + link(p.Link, colorMagenta+trimmed+colorReset) + trailing
}

type contactOption struct {
	long  string
	short string
	label string
	help  string
	value func(schema.Links) (url, text string)
}

var contactOptions = []contactOption{
	{long: "--email", short: "-e", label: "Email", help: "Show my email address", value: func(l schema.Links) (string, string) {
		return mailto(l.Email), l.Email
	}},
	{long: "--message", short: "-m", label: "Messages", help: "Show my number for messages", value: func(l schema.Links) (string, string) {
		return sms(l.Phone), l.Phone
	}},
	{short: "-x", label: "X", help: "Show my X (Twitter) profile", value: func(l schema.Links) (string, string) {
		return l.X, l.X
	}},
	{long: "--linkedin", short: "-l", label: "LinkedIn", help: "Show my LinkedIn profile", value: func(l schema.Links) (string, string) {
		return l.LinkedIn, l.LinkedIn
	}},
	{long: "--github", short: "-g", label: "GitHub", help: "Show my GitHub profile", value: func(l schema.Links) (string, string) {
		return l.GitHub, l.GitHub
	}},
	{long: "--instagram", short: "-i", label: "Instagram", help: "Show my Instagram profile", value: func(l schema.Links) (string, string) {
		return l.Instagram, l.Instagram
	}},
}

func mailto(addr string) string {
	if addr == "" {
		return ""
	}
	return "mailto:" + addr
}

func sms(number string) string {
	if number == "" {
		return ""
	}
	return "sms:" + number
}

func contactHelp() string {
	green := func(s string) string { return colorBrightGreen + s + colorReset }
	or := " " + colorGray + "or" + colorReset + " "
	dash := colorGray + "-" + colorReset
	lines := []string{
		colorCyan + "To contact me, type \"shiv contact\" followed by one of the options below.",
		"For example: \"shiv contact --email\" or \"shiv contact -e\" (both work the same way)." + colorReset,
		"",
		colorWhite + "Contact options:" + colorReset,
	}
	for _, opt := range contactOptions {
		var label string
		width := len(opt.short)
		if opt.long != "" {
			label = green(opt.long) + or + green(opt.short)
			width += len(opt.long) + 4
		} else {
			label = green(opt.short)
		}
		pad := 18 - width
		if pad < 1 {
			pad = 1
		}
		lines = append(lines, "  "+label+strings.Repeat(" ", pad)+dash+" "+opt.help)
	}
	lines = append(lines, "  "+green("--qr")+"              "+dash+" Add a QR code to any option above")
	return strings.Join(lines, "\n")
}

func (in *Interpreter) contact(args string) []schema.OutputRecord {
	f := parseFlags(args)
	wantQR := f["--qr"]
	var selected string
	for _, field := range strings.Fields(args) {
		if field == "--qr" {
			continue
		}
		if selected != "" {
			return invalidContact(args)
		}
		selected = field
	}
	var opt *contactOption
	for i := range contactOptions {
		if selected != "" && (selected == contactOptions[i].long || selected == contactOptions[i].short) {
			opt = &contactOptions[i]
			break
		}
	}
	if opt == nil {
		return invalidContact(args)
	}
	c, ok := in.snapshot()
	if !ok {
		return []schema.OutputRecord{schema.Output("Loading...")}
	}
	url, text := opt.value(c.Links)
	if url == "" {
		return []schema.OutputRecord{schema.Output(opt.label + " link not configured yet.")}
	}
	records := []schema.OutputRecord{
		schema.Output(fmt.Sprintf("%s%s:%s %s", colorWhite, opt.label, colorReset, link(url, colorCyan+text+colorReset))),
	}
	if wantQR {
		records = append(records, in.qr(url))
	}
	return records
}

func invalidContact(args string) []schema.OutputRecord {
	return []schema.OutputRecord{schema.Error(fmt.Sprintf("Invalid contact option: %s. Use \"shiv contact\" to see available options.", args))}
}

// qr renders url as a half-block QR code, or explains why it cannot.
func (in *Interpreter) qr(url string) schema.OutputRecord {
	var buf bytes.Buffer
	qrterminal.GenerateHalfBlock(url, qrterminal.L, &buf)
	code := strings.TrimRight(buf.String(), "\n")
	width := 0
	for _, line := range strings.Split(code, "\n") {
		if w := console.VisualLength(line); w > width {
			width = w
		}
	}
	if width > in.cols() {
		return schema.Output(fmt.Sprintf("%sWiden the terminal to at least %d columns to see the QR code.%s", colorGray, width, colorReset))
	}
	return schema.Output(code)
}
