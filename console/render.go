package console

import (
	"strings"

	"pkt.systems/termfolio/schema"
)

// renderRecords formats one batch of interpreter output for a grid cols
// wide. Output is framed by a blank line on each side; error lines are
// colored, output lines are wrapped.
func renderRecords(records []schema.OutputRecord, cols int, theme Theme) string {
	if len(records) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("\r\n")
	for _, rec := range records {
		lines := strings.Split(rec.Content, "\n")
		if len(lines) > 1 && lines[len(lines)-1] == "" {
			lines = lines[:len(lines)-1]
		}
		if rec.Kind == schema.RecordError {
			for _, line := range lines {
				b.WriteString(theme.Error)
				b.WriteString(line)
				b.WriteString(ansiReset)
				b.WriteString("\r\n")
			}
			continue
		}
		for _, line := range lines {
			if strings.TrimSpace(line) == "" {
				b.WriteString("\r\n")
				continue
			}
			for _, row := range Wrap(line, cols) {
				b.WriteString(row)
				b.WriteString("\r\n")
			}
		}
	}
	b.WriteString("\r\n")
	return b.String()
}

// Render formats records exactly as a session prints them after a command,
// for callers that print one batch without a session.
func Render(records []schema.OutputRecord, cols int, theme Theme) string {
	return renderRecords(records, cols, theme)
}

func hasClear(records []schema.OutputRecord) bool {
	for _, rec := range records {
		if rec.IsClear() {
			return true
		}
	}
	return false
}

// render writes a batch and keeps the newest line in view.
func (s *Session) render(records []schema.OutputRecord) {
	out := renderRecords(records, s.Columns(), s.cfg.Theme)
	if out == "" {
		return
	}
	s.write(out)
	s.scrollToBottom()
}

// scrollToBottom scrolls now and once more after the settle delay. Each
// attempt stands alone; a failed one is logged and the next still runs.
func (s *Session) scrollToBottom() {
	s.tryScroll("immediate")
	s.schedule(s.cfg.ScrollSettle, func() {
		s.tryScroll("settled")
	})
}

func (s *Session) tryScroll(phase string) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Warn("scroll to bottom panicked", "phase", phase, "panic", r)
		}
	}()
	if err := s.surface.ScrollToBottom(); err != nil {
		s.log.Debug("scroll to bottom failed", "phase", phase, "err", err)
	}
}
