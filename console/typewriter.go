package console

// typewriter types a scripted command on the visitor's behalf. While active,
// user-sourced input is dropped. Once it finishes it never starts again.
type typewriter struct {
	text     []rune
	position int
	active   bool
}

func newTypewriter(cfg TypewriterConfig) typewriter {
	if !cfg.Enabled || cfg.Text == "" {
		return typewriter{}
	}
	return typewriter{text: []rune(cfg.Text), active: true}
}

func (s *Session) startTypewriter() {
	if !s.state.typewriter.active {
		return
	}
	s.log.Debug("typewriter start", "text", string(s.state.typewriter.text))
	s.schedule(s.cfg.Typewriter.StartDelay, s.typeNext)
}

func (s *Session) typeNext() {
	tw := &s.state.typewriter
	if tw.position < len(tw.text) {
		r := tw.text[tw.position]
		tw.position++
		s.dispatch(keyEvent(SyntheticSourced, key{kind: keyRune, r: r}))
		s.schedule(s.cfg.Typewriter.CharDelay, s.typeNext)
		return
	}
	s.schedule(s.cfg.Typewriter.EnterDelay, func() {
		s.dispatch(keyEvent(SyntheticSourced, key{kind: keyEnter}))
		s.schedule(s.cfg.Typewriter.SettleDelay, s.finishTypewriter)
	})
}

func (s *Session) finishTypewriter() {
	s.state.typewriter.active = false
	s.scrollToBottom()
	s.focus()
	s.log.Debug("typewriter done")
}
