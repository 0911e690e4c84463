package console

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"pkt.systems/pslog"

	"pkt.systems/termfolio/schema"
)

const clearCommand = "clear"

// Interpreter runs one submitted line and returns what to print.
type Interpreter interface {
	Execute(command string) []schema.OutputRecord
}

// InterpreterFunc adapts a function to Interpreter.
type InterpreterFunc func(command string) []schema.OutputRecord

func (f InterpreterFunc) Execute(command string) []schema.OutputRecord {
	return f(command)
}

// State is everything a session remembers between events.
type State struct {
	editor     lineEditor
	history    *History
	typewriter typewriter
}

// Session is one mounted terminal. All of its state is owned by the
// goroutine running Run.
type Session struct {
	surface Surface
	interp  Interpreter
	cfg     Config
	prompt  string
	log     pslog.Logger

	state State
	size  Size

	sched     scheduler
	calls     chan func()
	timers    map[int]func()
	nextTimer int
	reflowGen int
}

func NewSession(surface Surface, interp Interpreter, cfg Config) *Session {
	if cfg.Theme.Name == "" {
		cfg.Theme, _ = ThemeNamed(DefaultTheme)
	}
	if cfg.Reflow.MaxAttempts <= 0 {
		cfg.Reflow = DefaultRetryPolicy()
	}
	s := &Session{
		surface: surface,
		interp:  interp,
		cfg:     cfg,
		prompt:  cfg.Theme.Prompt(cfg.User, cfg.Host),
		log:     pslog.Ctx(context.Background()),
		state: State{
			history:    NewHistory(cfg.HistoryLimit),
			typewriter: newTypewriter(cfg.Typewriter),
		},
		calls:  make(chan func(), 16),
		timers: make(map[int]func()),
	}
	return s
}

// Columns is the live grid width, or 80 before the first successful fit.
func (s *Session) Columns() int {
	if s.size.Cols <= 0 {
		return 80
	}
	return s.size.Cols
}

// History exposes the submitted lines.
func (s *Session) History() *History {
	return s.state.history
}

// Run mounts the session, processes input until the reader ends, the
// visitor quits or ctx is done, then unmounts. Each value received on resize
// asks for a reflow.
func (s *Session) Run(ctx context.Context, input io.Reader, resize <-chan struct{}) error {
	if ctx == nil {
		ctx = context.Background()
	}
	s.log = pslog.Ctx(ctx)
	done := make(chan struct{})
	defer close(done)
	if s.sched == nil {
		s.sched = &loopScheduler{calls: s.calls, done: done}
	}

	if err := s.mount(); err != nil {
		return err
	}
	defer s.unmount()

	keys := make(chan Event, 16)
	go decodeKeys(input, keys, done)

	var observeC <-chan time.Time
	if s.cfg.ObserveInterval > 0 {
		ticker := time.NewTicker(s.cfg.ObserveInterval)
		defer ticker.Stop()
		observeC = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-keys:
			if !ok {
				return nil
			}
			if s.dispatch(ev) {
				return nil
			}
		case _, ok := <-resize:
			if !ok {
				resize = nil
				continue
			}
			s.reflow(TriggerResize)
		case fn := <-s.calls:
			fn()
		case <-observeC:
			s.observe()
		}
	}
}

func (s *Session) mount() error {
	if m, ok := s.surface.(Mounter); ok {
		if err := m.Mount(); err != nil {
			return fmt.Errorf("mount surface: %w", err)
		}
	}
	s.reflow(TriggerMount)
	s.log.Info("terminal mounted", "cols", s.size.Cols, "rows", s.size.Rows, "typewriter", s.state.typewriter.active)
	s.writePrompt()
	s.startTypewriter()
	return nil
}

func (s *Session) unmount() {
	for id, cancel := range s.timers {
		cancel()
		delete(s.timers, id)
	}
	s.reflowGen++
	if m, ok := s.surface.(Mounter); ok {
		if err := m.Unmount(); err != nil {
			s.log.Debug("unmount surface failed", "err", err)
		}
	}
	s.log.Info("terminal unmounted", "history", s.state.history.Len())
	s.state.editor.Clear()
	s.state.typewriter = typewriter{}
}

// dispatch handles one event and reports whether the session should end.
func (s *Session) dispatch(ev Event) bool {
	if ev.Source == UserSourced && s.state.typewriter.active {
		s.log.Trace("input dropped while typing", "kind", ev.Kind)
		return false
	}
	switch ev.Kind {
	case EventKey:
		return s.handleKey(ev.key)
	case EventFocus:
		if !ev.focused {
			s.focus()
		}
	}
	return false
}

func (s *Session) handleKey(k key) bool {
	ed := &s.state.editor
	switch k.kind {
	case keyEnter:
		s.submit()
	case keyRune:
		atEnd := ed.Cursor() == ed.Len()
		ed.InsertRune(k.r)
		if atEnd {
			s.write(string(k.r))
		} else {
			s.redrawLine()
		}
	case keyBackspace:
		if ed.Backspace() {
			s.redrawLine()
		}
	case keyKillLine, keyCtrlU:
		if ed.Len() > 0 {
			ed.Clear()
			s.redrawLine()
		}
	case keyCtrlK:
		if ed.KillLineEnd() {
			s.redrawLine()
		}
	case keyCtrlW:
		if ed.DeleteWordBackward() {
			s.redrawLine()
		}
	case keyDelete:
		if ed.Delete() {
			s.redrawLine()
		}
	case keyCtrlD:
		if ed.Len() == 0 {
			s.write("\r\n")
			return true
		}
		if ed.Delete() {
			s.redrawLine()
		}
	case keyLeft:
		if ed.MoveLeft() {
			s.write(cursorLeft)
		}
	case keyRight:
		if ed.MoveRight() {
			s.write(cursorRight)
		}
	case keyHome, keyCtrlA:
		s.moveCursor(ed.MoveStart)
	case keyEnd, keyCtrlE:
		s.moveCursor(ed.MoveEnd)
	case keyAltB:
		s.moveCursor(ed.MoveWordLeft)
	case keyAltF:
		s.moveCursor(ed.MoveWordRight)
	case keyUp:
		if entry, ok := s.state.history.Older(); ok {
			ed.SetString(entry)
			s.redrawLine()
		}
	case keyDown:
		if entry, ok := s.state.history.Newer(); ok {
			ed.SetString(entry)
			s.redrawLine()
		}
	case keyCtrlC:
		s.write("^C\r\n")
		ed.Clear()
		s.state.history.Reset()
		s.writePrompt()
	case keyCtrlL:
		s.write(clearScreen)
		s.redrawLine()
	case keyTab:
	}
	return false
}

// submit runs the Enter protocol: the literal clear command is handled
// here, anything else non-blank is recorded and sent to the interpreter.
func (s *Session) submit() {
	raw := s.state.editor.String()
	trimmed := strings.TrimSpace(raw)
	if trimmed == clearCommand {
		s.write(clearScreen)
		s.state.history.Push(raw)
		s.state.editor.Clear()
		s.writePrompt()
		return
	}
	s.write("\r\n")
	if trimmed != "" {
		s.state.history.Push(raw)
		records := s.execute(raw)
		if hasClear(records) {
			s.write(clearScreen)
		} else {
			s.render(records)
		}
	}
	s.state.editor.Clear()
	s.writePrompt()
}

func (s *Session) execute(command string) (records []schema.OutputRecord) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("interpreter panicked", "command", command, "panic", r)
			records = []schema.OutputRecord{schema.Error("internal error")}
		}
	}()
	if s.interp == nil {
		return nil
	}
	start := time.Now()
	records = s.interp.Execute(command)
	s.log.Debug("command executed", "command", command, "records", len(records), "elapsed", time.Since(start))
	return records
}

func (s *Session) writePrompt() {
	s.write(s.prompt)
	s.scrollToBottom()
}

// redrawLine repaints the prompt and buffer and puts the cursor back at
// its offset.
func (s *Session) redrawLine() {
	ed := &s.state.editor
	var b strings.Builder
	b.WriteString(hideCursor)
	b.WriteString(eraseLine)
	b.WriteString(s.prompt)
	b.WriteString(ed.String())
	if back := ed.Len() - ed.Cursor(); back > 0 {
		fmt.Fprintf(&b, "\x1b[%dD", back)
	}
	b.WriteString(showCursor)
	s.write(b.String())
}

func (s *Session) moveCursor(move func()) {
	before := s.state.editor.Cursor()
	move()
	delta := s.state.editor.Cursor() - before
	switch {
	case delta < 0:
		s.write(fmt.Sprintf("\x1b[%dD", -delta))
	case delta > 0:
		s.write(fmt.Sprintf("\x1b[%dC", delta))
	}
}

func (s *Session) focus() {
	if err := s.surface.Focus(); err != nil {
		s.log.Debug("focus failed", "err", err)
	}
}

func (s *Session) write(out string) {
	if out == "" {
		return
	}
	if _, err := io.WriteString(s.surface, out); err != nil {
		s.log.Debug("terminal write failed", "err", err)
	}
}

// schedule runs fn on the session goroutine after d. Pending callbacks are
// dropped on unmount.
func (s *Session) schedule(d time.Duration, fn func()) {
	if s.sched == nil {
		return
	}
	id := s.nextTimer
	s.nextTimer++
	s.timers[id] = s.sched.After(d, func() {
		if _, ok := s.timers[id]; !ok {
			return
		}
		delete(s.timers, id)
		fn()
	})
}

type scheduler interface {
	After(d time.Duration, fn func()) (cancel func())
}

// loopScheduler posts callbacks back to the session goroutine.
type loopScheduler struct {
	calls chan<- func()
	done  <-chan struct{}
}

func (l *loopScheduler) After(d time.Duration, fn func()) func() {
	t := time.AfterFunc(d, func() {
		select {
		case l.calls <- fn:
		case <-l.done:
		}
	})
	return func() { t.Stop() }
}
