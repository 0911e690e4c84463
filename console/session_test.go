package console

import (
	"bytes"
	"context"
	"errors"
	"io"
	"math/rand"
	"reflect"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"pkt.systems/pslog"

	"pkt.systems/termfolio/schema"
)

type fakeSurface struct {
	out       strings.Builder
	size      Size
	fitErr    error
	fits      int
	scrolls   int
	scrollErr error
	focuses   int
}

func (f *fakeSurface) Write(p []byte) (int, error) {
	return f.out.Write(p)
}

func (f *fakeSurface) Fit() (Size, error) {
	f.fits++
	if f.fitErr != nil {
		return Size{}, f.fitErr
	}
	return f.size, nil
}

func (f *fakeSurface) ScrollToBottom() error {
	f.scrolls++
	return f.scrollErr
}

func (f *fakeSurface) Focus() error {
	f.focuses++
	return nil
}

type pendingCall struct {
	due       time.Duration
	seq       int
	fn        func()
	cancelled bool
}

// manualScheduler runs callbacks on a virtual clock, on the test goroutine.
type manualScheduler struct {
	now     time.Duration
	seq     int
	pending []*pendingCall
}

func (m *manualScheduler) After(d time.Duration, fn func()) func() {
	call := &pendingCall{due: m.now + d, seq: m.seq, fn: fn}
	m.seq++
	m.pending = append(m.pending, call)
	return func() { call.cancelled = true }
}

func (m *manualScheduler) next() *pendingCall {
	sort.SliceStable(m.pending, func(i, j int) bool {
		if m.pending[i].due != m.pending[j].due {
			return m.pending[i].due < m.pending[j].due
		}
		return m.pending[i].seq < m.pending[j].seq
	})
	if len(m.pending) == 0 {
		return nil
	}
	call := m.pending[0]
	m.pending = m.pending[1:]
	return call
}

// runOne fires the earliest pending callback.
func (m *manualScheduler) runOne() bool {
	call := m.next()
	if call == nil {
		return false
	}
	m.now = call.due
	if !call.cancelled {
		call.fn()
	}
	return true
}

func (m *manualScheduler) runUntilIdle(t *testing.T) {
	t.Helper()
	for i := 0; i < 10000; i++ {
		if !m.runOne() {
			return
		}
	}
	t.Fatalf("scheduler did not go idle")
}

type recordingInterpreter struct {
	commands []string
	respond  func(string) []schema.OutputRecord
}

func (r *recordingInterpreter) Execute(command string) []schema.OutputRecord {
	r.commands = append(r.commands, command)
	if r.respond != nil {
		return r.respond(command)
	}
	return []schema.OutputRecord{schema.Output("ran " + command)}
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Typewriter.Enabled = false
	return cfg
}

func newTestSession(t *testing.T, interp Interpreter, cfg Config) (*Session, *fakeSurface, *manualScheduler) {
	t.Helper()
	surface := &fakeSurface{size: Size{Cols: 80, Rows: 24}}
	sched := &manualScheduler{}
	s := NewSession(surface, interp, cfg)
	s.sched = sched
	if err := s.mount(); err != nil {
		t.Fatalf("mount: %v", err)
	}
	return s, surface, sched
}

func typeText(s *Session, src Source, text string) {
	for _, r := range text {
		s.dispatch(keyEvent(src, key{kind: keyRune, r: r}))
	}
}

func press(s *Session, src Source, kind keyKind) bool {
	return s.dispatch(keyEvent(src, key{kind: kind}))
}

func submitLine(s *Session, line string) {
	typeText(s, UserSourced, line)
	press(s, UserSourced, keyEnter)
}

func TestMountWritesPromptAndFits(t *testing.T) {
	s, surface, _ := newTestSession(t, &recordingInterpreter{}, testConfig())
	if surface.fits != 1 {
		t.Fatalf("expected one fit on mount, got %d", surface.fits)
	}
	if s.Columns() != 80 {
		t.Fatalf("expected 80 columns, got %d", s.Columns())
	}
	if got := StripCodes(surface.out.String()); got != "shivansh@terminal:~$ " {
		t.Fatalf("unexpected mount output %q", got)
	}
}

func TestSubmitSendsLineVerbatim(t *testing.T) {
	interp := &recordingInterpreter{}
	s, surface, _ := newTestSession(t, interp, testConfig())

	submitLine(s, "shiv help")
	submitLine(s, "  shiv  projects -v ")

	want := []string{"shiv help", "  shiv  projects -v "}
	if !reflect.DeepEqual(interp.commands, want) {
		t.Fatalf("unexpected commands %q", interp.commands)
	}
	if !strings.Contains(surface.out.String(), "\r\n\r\nran shiv help\r\n\r\n") {
		t.Fatalf("expected framed output, got %q", surface.out.String())
	}
	if got := s.History().Entries(); !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected history %q", got)
	}
}

func TestClearBypassesInterpreter(t *testing.T) {
	interp := &recordingInterpreter{}
	s, surface, _ := newTestSession(t, interp, testConfig())
	surface.out.Reset()

	submitLine(s, " clear ")

	if len(interp.commands) != 0 {
		t.Fatalf("interpreter should not run for clear, got %q", interp.commands)
	}
	out := surface.out.String()
	if !strings.Contains(out, clearScreen) {
		t.Fatalf("expected clear screen sequence, got %q", out)
	}
	if !strings.HasSuffix(out, s.prompt) {
		t.Fatalf("expected fresh prompt after clear, got %q", out)
	}
	if got := s.History().Entries(); !reflect.DeepEqual(got, []string{" clear "}) {
		t.Fatalf("expected clear in history, got %q", got)
	}
	if s.state.editor.Len() != 0 {
		t.Fatalf("expected empty buffer")
	}
}

func TestClearSentinelSuppressesBatch(t *testing.T) {
	interp := &recordingInterpreter{respond: func(string) []schema.OutputRecord {
		return []schema.OutputRecord{
			schema.Output("before"),
			schema.Clear(),
			schema.Output("after"),
		}
	}}
	s, surface, _ := newTestSession(t, interp, testConfig())
	surface.out.Reset()

	submitLine(s, "wipe")

	out := surface.out.String()
	if !strings.Contains(out, clearScreen) {
		t.Fatalf("expected clear screen sequence, got %q", out)
	}
	if strings.Contains(out, "before") || strings.Contains(out, "after") {
		t.Fatalf("batch should be suppressed, got %q", out)
	}
	if !strings.HasSuffix(out, s.prompt) {
		t.Fatalf("expected prompt after clear, got %q", out)
	}
}

func TestBlankSubmitIsNotRecorded(t *testing.T) {
	interp := &recordingInterpreter{}
	s, surface, _ := newTestSession(t, interp, testConfig())
	surface.out.Reset()

	submitLine(s, "   ")

	if len(interp.commands) != 0 || s.History().Len() != 0 {
		t.Fatalf("blank line should not run or be recorded")
	}
	if got := surface.out.String(); !strings.HasPrefix(got, "   \r\n") || !strings.HasSuffix(got, s.prompt) {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestHistoryNavigationThroughKeys(t *testing.T) {
	s, _, _ := newTestSession(t, &recordingInterpreter{}, testConfig())
	submitLine(s, "ls")
	submitLine(s, "pwd")

	steps := []struct {
		kind keyKind
		want string
	}{
		{kind: keyUp, want: "pwd"},
		{kind: keyUp, want: "ls"},
		{kind: keyDown, want: "pwd"},
		{kind: keyDown, want: ""},
	}
	for i, step := range steps {
		press(s, UserSourced, step.kind)
		if got := s.state.editor.String(); got != step.want {
			t.Fatalf("step %d: expected %q, got %q", i, step.want, got)
		}
		if s.state.editor.Cursor() != s.state.editor.Len() {
			t.Fatalf("step %d: expected cursor at end", i)
		}
	}
}

func TestTypewriterLocksInputUntilDone(t *testing.T) {
	interp := &recordingInterpreter{}
	cfg := testConfig()
	cfg.Typewriter.Enabled = true
	s, surface, sched := newTestSession(t, interp, cfg)

	submitLine(s, "ls")
	s.dispatch(focusEvent(UserSourced, false))
	if len(interp.commands) != 0 || s.state.editor.Len() != 0 {
		t.Fatalf("input during the typewriter should be dropped")
	}
	if surface.focuses != 0 {
		t.Fatalf("focus events during the typewriter should be dropped")
	}

	sched.runUntilIdle(t)

	if !reflect.DeepEqual(interp.commands, []string{"shiv"}) {
		t.Fatalf("expected typewriter command, got %q", interp.commands)
	}
	if s.state.typewriter.active {
		t.Fatalf("expected typewriter to unlock")
	}
	if surface.focuses != 1 {
		t.Fatalf("expected focus after unlock, got %d", surface.focuses)
	}

	submitLine(s, "ls")
	if !reflect.DeepEqual(interp.commands, []string{"shiv", "ls"}) {
		t.Fatalf("expected input after unlock, got %q", interp.commands)
	}
}

func TestTypewriterTiming(t *testing.T) {
	interp := &recordingInterpreter{}
	cfg := testConfig()
	cfg.Typewriter.Enabled = true
	s, _, sched := newTestSession(t, interp, cfg)

	for sched.now < cfg.Typewriter.StartDelay+3*cfg.Typewriter.CharDelay {
		if !sched.runOne() {
			t.Fatalf("scheduler ran dry")
		}
	}
	if got := s.state.editor.String(); got != "shiv" {
		t.Fatalf("expected full text typed by %v, got %q", sched.now, got)
	}
	if len(interp.commands) != 0 {
		t.Fatalf("enter should wait for the pause")
	}
	sched.runUntilIdle(t)
	if len(interp.commands) != 1 {
		t.Fatalf("expected one command, got %q", interp.commands)
	}
}

func TestFocusOutRefocusesAfterUnlock(t *testing.T) {
	s, surface, _ := newTestSession(t, &recordingInterpreter{}, testConfig())
	s.dispatch(focusEvent(UserSourced, true))
	if surface.focuses != 0 {
		t.Fatalf("focus-in should not refocus")
	}
	s.dispatch(focusEvent(UserSourced, false))
	if surface.focuses != 1 {
		t.Fatalf("expected refocus, got %d", surface.focuses)
	}
}

func TestCursorStaysInBounds(t *testing.T) {
	s, _, _ := newTestSession(t, &recordingInterpreter{}, testConfig())
	kinds := []keyKind{keyLeft, keyRight, keyBackspace, keyRune, keyHome, keyEnd, keyDelete, keyCtrlK, keyCtrlW, keyAltB, keyAltF}
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 2000; i++ {
		k := key{kind: kinds[rng.Intn(len(kinds))]}
		if k.kind == keyRune {
			k.r = rune('a' + rng.Intn(3))
			if rng.Intn(4) == 0 {
				k.r = ' '
			}
		}
		s.handleKey(k)
		ed := &s.state.editor
		if ed.Cursor() < 0 || ed.Cursor() > ed.Len() {
			t.Fatalf("cursor %d out of bounds for length %d after %v", ed.Cursor(), ed.Len(), k.kind)
		}
	}
}

func TestRedrawLinePlacesCursor(t *testing.T) {
	s, surface, _ := newTestSession(t, &recordingInterpreter{}, testConfig())
	typeText(s, UserSourced, "abc")
	surface.out.Reset()
	press(s, UserSourced, keyLeft)
	press(s, UserSourced, keyLeft)
	typeText(s, UserSourced, "X")

	out := surface.out.String()
	want := cursorLeft + cursorLeft + hideCursor + eraseLine + s.prompt + "aXbc\x1b[2D" + showCursor
	if out != want {
		t.Fatalf("unexpected redraw %q", out)
	}
}

func TestHomeEndMoveRelative(t *testing.T) {
	s, surface, _ := newTestSession(t, &recordingInterpreter{}, testConfig())
	typeText(s, UserSourced, "hello")
	surface.out.Reset()
	press(s, UserSourced, keyCtrlA)
	press(s, UserSourced, keyCtrlA)
	press(s, UserSourced, keyCtrlE)
	if got := surface.out.String(); got != "\x1b[5D\x1b[5C" {
		t.Fatalf("unexpected cursor movement %q", got)
	}
}

func TestKillLineClearsBuffer(t *testing.T) {
	s, _, _ := newTestSession(t, &recordingInterpreter{}, testConfig())
	typeText(s, UserSourced, "shiv projects")
	press(s, UserSourced, keyKillLine)
	if s.state.editor.Len() != 0 {
		t.Fatalf("expected empty buffer after kill-line")
	}
	typeText(s, UserSourced, "abc")
	press(s, UserSourced, keyLeft)
	press(s, UserSourced, keyCtrlU)
	if s.state.editor.Len() != 0 || s.state.editor.Cursor() != 0 {
		t.Fatalf("expected Ctrl+U to clear the whole buffer")
	}
}

func TestCtrlCAbandonsLine(t *testing.T) {
	interp := &recordingInterpreter{}
	s, surface, _ := newTestSession(t, interp, testConfig())
	submitLine(s, "ls")
	press(s, UserSourced, keyUp)
	surface.out.Reset()
	press(s, UserSourced, keyCtrlC)

	if got := surface.out.String(); got != "^C\r\n"+s.prompt {
		t.Fatalf("unexpected output %q", got)
	}
	if s.state.editor.Len() != 0 || s.History().Browsing() {
		t.Fatalf("expected empty live line after Ctrl+C")
	}
	if len(interp.commands) != 1 {
		t.Fatalf("Ctrl+C must not submit")
	}
}

func TestCtrlLKeepsLine(t *testing.T) {
	s, surface, _ := newTestSession(t, &recordingInterpreter{}, testConfig())
	typeText(s, UserSourced, "shiv")
	surface.out.Reset()
	press(s, UserSourced, keyCtrlL)
	out := surface.out.String()
	if !strings.HasPrefix(out, clearScreen) || !strings.Contains(out, s.prompt+"shiv") {
		t.Fatalf("unexpected output %q", out)
	}
	if s.state.editor.String() != "shiv" {
		t.Fatalf("buffer should survive Ctrl+L")
	}
}

func TestCtrlDEndsSessionOnEmptyLine(t *testing.T) {
	s, _, _ := newTestSession(t, &recordingInterpreter{}, testConfig())
	typeText(s, UserSourced, "ab")
	press(s, UserSourced, keyHome)
	if press(s, UserSourced, keyCtrlD) {
		t.Fatalf("Ctrl+D with text should not end the session")
	}
	if s.state.editor.String() != "b" {
		t.Fatalf("expected Ctrl+D to delete under cursor, got %q", s.state.editor.String())
	}
	press(s, UserSourced, keyCtrlK)
	if !press(s, UserSourced, keyCtrlD) {
		t.Fatalf("Ctrl+D on an empty line should end the session")
	}
}

func TestInterpreterPanicBecomesErrorRecord(t *testing.T) {
	interp := InterpreterFunc(func(string) []schema.OutputRecord {
		panic("boom")
	})
	s, surface, _ := newTestSession(t, interp, testConfig())
	submitLine(s, "explode")
	if !strings.Contains(surface.out.String(), "\x1b[31minternal error\x1b[0m") {
		t.Fatalf("expected error record, got %q", surface.out.String())
	}
}

func TestScrollRetriesAfterFailure(t *testing.T) {
	s, surface, sched := newTestSession(t, &recordingInterpreter{}, testConfig())
	sched.runUntilIdle(t)
	surface.scrolls = 0
	surface.scrollErr = errors.New("renderer not initialized")

	submitLine(s, "shiv")
	immediate := surface.scrolls
	if immediate == 0 {
		t.Fatalf("expected an immediate scroll attempt")
	}
	sched.runUntilIdle(t)
	if surface.scrolls <= immediate {
		t.Fatalf("expected a settled scroll attempt after the failed one")
	}
}

func TestReflowRetriesUntilReady(t *testing.T) {
	s, surface, sched := newTestSession(t, &recordingInterpreter{}, testConfig())
	sched.runUntilIdle(t)
	surface.fitErr = schema.ErrSurfaceNotReady
	surface.size = Size{Cols: 120, Rows: 40}

	s.reflow(TriggerResize)
	if surface.fits != 2 {
		t.Fatalf("expected immediate attempt, got %d fits", surface.fits)
	}
	sched.runOne()
	if surface.fits != 3 {
		t.Fatalf("expected a retry, got %d fits", surface.fits)
	}
	surface.fitErr = nil
	sched.runUntilIdle(t)
	if s.Columns() != 120 {
		t.Fatalf("expected 120 columns after retry, got %d", s.Columns())
	}
}

func TestReflowGivesUp(t *testing.T) {
	surface := &fakeSurface{fitErr: schema.ErrSurfaceNotReady}
	sched := &manualScheduler{}
	cfg := testConfig()
	cfg.Reflow.MaxAttempts = 3
	s := NewSession(surface, &recordingInterpreter{}, cfg)
	s.sched = sched
	if err := s.mount(); err != nil {
		t.Fatalf("mount: %v", err)
	}
	sched.runUntilIdle(t)
	if surface.fits != 3 {
		t.Fatalf("expected 3 attempts, got %d", surface.fits)
	}
	if s.Columns() != 80 {
		t.Fatalf("expected fallback width, got %d", s.Columns())
	}
}

func TestReflowSupersedesPendingRetries(t *testing.T) {
	cfg := testConfig()
	cfg.Reflow.MaxAttempts = 3
	s, surface, sched := newTestSession(t, &recordingInterpreter{}, cfg)
	sched.runUntilIdle(t)
	surface.fitErr = schema.ErrSurfaceNotReady

	s.reflow(TriggerResize)
	s.reflow(TriggerObserve)
	sched.runUntilIdle(t)
	// mount, two first attempts, then two retries of the newest chain
	if surface.fits != 5 {
		t.Fatalf("expected 5 fits, got %d", surface.fits)
	}
}

func TestReflowLogsFitFailures(t *testing.T) {
	capture := &bytes.Buffer{}
	logger := pslog.NewWithOptions(capture, pslog.Options{
		Mode:          pslog.ModeStructured,
		NoColor:       true,
		MinLevel:      pslog.InfoLevel,
		VerboseFields: true,
	})
	s, surface, _ := newTestSession(t, &recordingInterpreter{}, testConfig())
	s.log = logger
	surface.fitErr = errors.New("renderer detached")

	s.reflow(TriggerResize)

	if !strings.Contains(capture.String(), "terminal fit failed") {
		t.Fatalf("expected fit failure to be logged, got %q", capture.String())
	}
	if !strings.Contains(capture.String(), "renderer detached") {
		t.Fatalf("expected error in log entry, got %q", capture.String())
	}
}

func TestObserveReflowsOnSizeChange(t *testing.T) {
	var size WindowSize
	size.Set(80, 24)
	surface := NewStreamSurface(&bytes.Buffer{}, size.Size)
	s := NewSession(surface, &recordingInterpreter{}, testConfig())
	s.sched = &manualScheduler{}
	if err := s.mount(); err != nil {
		t.Fatalf("mount: %v", err)
	}
	size.Set(132, 40)
	s.observe()
	if s.Columns() != 132 {
		t.Fatalf("expected observer to pick up new width, got %d", s.Columns())
	}
}

func TestRetryPolicyDelay(t *testing.T) {
	p := RetryPolicy{MaxAttempts: 6, InitialDelay: 100 * time.Millisecond, Multiplier: 2, MaxDelay: time.Second}
	want := []time.Duration{100 * time.Millisecond, 200 * time.Millisecond, 400 * time.Millisecond, 800 * time.Millisecond, time.Second, time.Second}
	for i, w := range want {
		if got := p.Delay(i + 1); got != w {
			t.Fatalf("retry %d: expected %v, got %v", i+1, w, got)
		}
	}
}

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func waitFor(t *testing.T, timeout time.Duration, ready func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if ready() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timeout waiting for condition")
}

func TestRunProcessesInputUntilEOF(t *testing.T) {
	out := &lockedBuffer{}
	var size WindowSize
	size.Set(60, 20)
	surface := NewStreamSurface(out, size.Size, WithFocusReporting(true))

	interp := InterpreterFunc(func(command string) []schema.OutputRecord {
		return []schema.OutputRecord{schema.Output("echo: " + command)}
	})
	cfg := testConfig()
	cfg.ObserveInterval = 10 * time.Millisecond
	cfg.ScrollSettle = time.Millisecond
	s := NewSession(surface, interp, cfg)

	inR, inW := io.Pipe()
	resize := make(chan struct{}, 1)
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.Run(context.Background(), inR, resize)
	}()

	if _, err := io.WriteString(inW, "shiv help\r"); err != nil {
		t.Fatalf("write input: %v", err)
	}
	waitFor(t, 2*time.Second, func() bool {
		return strings.Contains(out.String(), "echo: shiv help")
	})
	size.Set(100, 30)
	resize <- struct{}{}
	_ = inW.Close()

	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("run: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("session did not end on EOF")
	}
	got := out.String()
	if !strings.HasPrefix(got, focusReportingOn) {
		t.Fatalf("expected focus reporting on mount, got %q", got)
	}
	if !strings.HasSuffix(got, focusReportingOff+showCursor) {
		t.Fatalf("expected teardown sequence, got %q", got)
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	var size WindowSize
	size.Set(80, 24)
	s := NewSession(NewStreamSurface(&lockedBuffer{}, size.Size), &recordingInterpreter{}, DefaultConfig())
	inR, inW := io.Pipe()
	defer inW.Close()

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.Run(ctx, inR, nil)
	}()
	cancel()
	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("run: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("session did not stop on cancel")
	}
}
