package shell

import (
	"strings"
	"testing"

	"pkt.systems/termfolio/console"
	"pkt.systems/termfolio/internal/content"
	"pkt.systems/termfolio/schema"
)

type stubContent struct {
	content schema.Content
	loaded  bool
}

func (s stubContent) Snapshot() (schema.Content, bool) {
	return s.content, s.loaded
}

func sampleInterpreter(t *testing.T, cols int) *Interpreter {
	t.Helper()
	c, err := content.Load("")
	if err != nil {
		t.Fatalf("load sample: %v", err)
	}
	return New(content.NewStaticStore(c), WithColumns(func() int { return cols }))
}

func single(t *testing.T, records []schema.OutputRecord) schema.OutputRecord {
	t.Helper()
	if len(records) != 1 {
		t.Fatalf("expected one record, got %d: %+v", len(records), records)
	}
	return records[0]
}

func plain(rec schema.OutputRecord) string {
	return console.StripCodes(rec.Content)
}

func TestExecuteBlankInput(t *testing.T) {
	in := New(nil)
	if got := in.Execute("   "); got != nil {
		t.Fatalf("expected no records, got %+v", got)
	}
}

func TestExecuteClear(t *testing.T) {
	rec := single(t, New(nil).Execute(" clear "))
	if !rec.IsClear() {
		t.Fatalf("expected clear sentinel, got %+v", rec)
	}
}

func TestExecuteUnknownCommand(t *testing.T) {
	cases := map[string]string{
		"ls -la":        "zsh: command not found: ls",
		"git.status":    "zsh: command not found: git",
		"./deploy.sh":   "zsh: command not found: ./deploy.sh",
		"shiv dance":    "zsh: command not found: dance",
		"shiv sing-now": "zsh: command not found: sing",
	}
	in := New(nil)
	for input, want := range cases {
		rec := single(t, in.Execute(input))
		if rec.Kind != schema.RecordError || rec.Content != want {
			t.Fatalf("Execute(%q) = %+v, want error %q", input, rec, want)
		}
	}
}

func TestExecuteRm(t *testing.T) {
	rec := single(t, New(nil).Execute("rm -rf /"))
	if rec.Kind != schema.RecordOutput || !strings.Contains(rec.Content, "don't delete") {
		t.Fatalf("unexpected rm output %+v", rec)
	}
}

func TestHelpListsCommands(t *testing.T) {
	for _, input := range []string{"shiv help", "shiv --help", "shiv -h"} {
		text := plain(single(t, New(nil).Execute(input)))
		for _, want := range []string{"Available commands:", "shiv experience", "shiv projects", "shiv contact"} {
			if !strings.Contains(text, want) {
				t.Fatalf("%q: help missing %q:\n%s", input, want, text)
			}
		}
	}
}

func TestBannerFollowsWidth(t *testing.T) {
	cases := []struct {
		cols int
		want string
	}{
		{cols: 120, want: bannerLarge},
		{cols: 86, want: bannerLarge},
		{cols: 60, want: bannerMedium},
		{cols: 40, want: bannerSmall},
	}
	for _, tc := range cases {
		rec := single(t, sampleInterpreter(t, tc.cols).Execute("shiv"))
		if !strings.Contains(rec.Content, tc.want) {
			t.Fatalf("cols %d: expected matching banner", tc.cols)
		}
		if !strings.Contains(plain(rec), "Type \"shiv help\" to get started.") {
			t.Fatalf("cols %d: missing intro", tc.cols)
		}
	}
}

func TestBannersFitTheirThreshold(t *testing.T) {
	for _, tc := range []struct {
		banner string
		width  int
	}{
		{bannerLarge, largeBannerWidth},
		{bannerMedium, mediumBannerWidth},
	} {
		for _, line := range strings.Split(tc.banner, "\n") {
			if console.VisualLength(line) > tc.width {
				t.Fatalf("banner line wider than %d: %q", tc.width, line)
			}
		}
	}
}

func TestExperiencePreview(t *testing.T) {
	in := sampleInterpreter(t, 80)
	text := plain(single(t, in.Execute("shiv experience")))
	if !strings.HasPrefix(text, "  Founding Engineer - Stealth Startup\n  2025 - present\n    • ") {
		t.Fatalf("unexpected layout:\n%s", text)
	}
	if strings.Contains(text, "Teaching Assistant") {
		t.Fatalf("preview should stop at four entries")
	}
	if !strings.Contains(text, "Showing 4 of 5 experiences.") {
		t.Fatalf("expected preview note:\n%s", text)
	}

	all := plain(single(t, in.Execute("shiv experience --all")))
	if !strings.Contains(all, "Teaching Assistant") || strings.Contains(all, "Showing 4 of") {
		t.Fatalf("expected all entries without note:\n%s", all)
	}
	if short := plain(single(t, in.Execute("shiv experience -a"))); short != all {
		t.Fatalf("expected -a to match --all")
	}
}

func TestProjectsVerboseAndLinks(t *testing.T) {
	in := sampleInterpreter(t, 80)
	rec := single(t, in.Execute("shiv projects"))
	if !strings.Contains(rec.Content, "\x1b]8;;https://example.com/termfolio\x1b\\\x1b[35mtermfolio\x1b[0m\x1b]8;;\x1b\\") {
		t.Fatalf("expected hyperlinked title, got %q", rec.Content)
	}
	text := plain(rec)
	if strings.Contains(text, "Tech:") {
		t.Fatalf("descriptions should need --verbose")
	}
	if !strings.Contains(text, "Showing 4 of 5 projects.") {
		t.Fatalf("expected preview note:\n%s", text)
	}

	verbose := plain(single(t, in.Execute("shiv projects -av")))
	for _, want := range []string{"Tech: Go, SSH, ANSI", "Period: 2025", "dotfiles", "    • Line editor"} {
		if !strings.Contains(verbose, want) {
			t.Fatalf("verbose listing missing %q:\n%s", want, verbose)
		}
	}
	if strings.Contains(verbose, "Showing") {
		t.Fatalf("--all should drop the preview note")
	}
}

func TestProjectTitleKeepsPadding(t *testing.T) {
	got := projectTitle(schema.Project{Name: "  demo ", Link: "https://d.example"})
	want := "  " + link("https://d.example", colorMagenta+"demo"+colorReset) + " "
	if got != want {
		t.Fatalf("unexpected title %q", got)
	}
}

func TestNotLoadedShowsLoading(t *testing.T) {
	in := New(stubContent{})
	for _, input := range []string{"shiv experience", "shiv projects", "shiv contact -g"} {
		rec := single(t, in.Execute(input))
		if rec.Content != "Loading..." {
			t.Fatalf("%q: expected Loading..., got %+v", input, rec)
		}
	}
}

func TestContactOptions(t *testing.T) {
	in := sampleInterpreter(t, 80)
	text := plain(single(t, in.Execute("shiv contact")))
	if !strings.Contains(text, "Contact options:") || !strings.Contains(text, "--github or -g") {
		t.Fatalf("unexpected contact help:\n%s", text)
	}

	rec := single(t, in.Execute("shiv contact -e"))
	if !strings.Contains(rec.Content, "\x1b]8;;mailto:hello@example.com\x1b\\") {
		t.Fatalf("expected mailto link, got %q", rec.Content)
	}
	rec = single(t, in.Execute("shiv contact --github"))
	if plain(rec) != "GitHub: https://github.com/example" {
		t.Fatalf("unexpected github output %q", plain(rec))
	}
	rec = single(t, in.Execute("shiv contact --instagram"))
	if rec.Content != "Instagram link not configured yet." {
		t.Fatalf("unexpected instagram output %+v", rec)
	}
}

func TestContactInvalidOption(t *testing.T) {
	in := sampleInterpreter(t, 80)
	for _, input := range []string{"shiv contact --fax", "shiv contact -e -g", "shiv contact --qr"} {
		rec := single(t, in.Execute(input))
		if rec.Kind != schema.RecordError || !strings.HasPrefix(rec.Content, "Invalid contact option: ") {
			t.Fatalf("%q: expected invalid option error, got %+v", input, rec)
		}
	}
}

func TestContactQRCode(t *testing.T) {
	records := sampleInterpreter(t, 120).Execute("shiv contact -g --qr")
	if len(records) != 2 {
		t.Fatalf("expected link and QR records, got %+v", records)
	}
	if !strings.ContainsAny(records[1].Content, "▀▄█") {
		t.Fatalf("expected half-block QR code, got %q", records[1].Content)
	}

	narrow := sampleInterpreter(t, 10).Execute("shiv contact -g --qr")
	if !strings.Contains(plain(narrow[1]), "Widen the terminal") {
		t.Fatalf("expected width hint, got %q", narrow[1].Content)
	}
}

func TestDescriptionsRenderInlineMarkup(t *testing.T) {
	in := New(stubContent{loaded: true, content: schema.Content{
		Experience: []schema.Experience{{Title: "Engineer", Company: "Acme", Description: schema.Description{"shipped **v2**"}}},
	}})
	rec := single(t, in.Execute("shiv experience"))
	if !strings.Contains(rec.Content, "    • shipped \x1b[1mv2\x1b[0m") {
		t.Fatalf("expected bold description, got %q", rec.Content)
	}
}
