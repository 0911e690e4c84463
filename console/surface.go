package console

import (
	"fmt"
	"io"
	"sync/atomic"

	"pkt.systems/termfolio/schema"
)

// Size is the character grid of a surface.
type Size struct {
	Cols int
	Rows int
}

// Surface is what a session draws on.
type Surface interface {
	io.Writer
	// Fit sizes the grid to its container. It returns
	// schema.ErrSurfaceNotReady while the container has no measurable size.
	Fit() (Size, error)
	ScrollToBottom() error
	Focus() error
}

// Mounter is implemented by surfaces that need setup and teardown around a
// session.
type Mounter interface {
	Mount() error
	Unmount() error
}

// Measurer reports the container size without refitting. Sessions poll it
// to notice size changes that arrive without a resize notification.
type Measurer interface {
	Measure() (Size, error)
}

// SizeFunc reports the current size of a terminal.
type SizeFunc func() (cols, rows int, err error)

// StreamSurface draws on a byte stream such as an SSH channel or a local
// TTY. The terminal on the other end owns scrolling.
type StreamSurface struct {
	w              io.Writer
	size           SizeFunc
	focusReporting bool
}

type StreamOption func(*StreamSurface)

// WithFocusReporting asks the terminal to report focus changes while
// mounted.
func WithFocusReporting(enabled bool) StreamOption {
	return func(s *StreamSurface) {
		s.focusReporting = enabled
	}
}

func NewStreamSurface(w io.Writer, size SizeFunc, opts ...StreamOption) *StreamSurface {
	s := &StreamSurface{w: w, size: size}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *StreamSurface) Write(p []byte) (int, error) {
	return s.w.Write(p)
}

func (s *StreamSurface) Measure() (Size, error) {
	if s.size == nil {
		return Size{}, schema.ErrSurfaceNotReady
	}
	cols, rows, err := s.size()
	if err != nil {
		return Size{}, fmt.Errorf("measure terminal: %w", err)
	}
	if cols <= 0 {
		return Size{}, schema.ErrSurfaceNotReady
	}
	return Size{Cols: cols, Rows: rows}, nil
}

func (s *StreamSurface) Fit() (Size, error) {
	return s.Measure()
}

func (s *StreamSurface) ScrollToBottom() error {
	return nil
}

func (s *StreamSurface) Focus() error {
	_, err := io.WriteString(s.w, showCursor)
	return err
}

func (s *StreamSurface) Mount() error {
	if !s.focusReporting {
		return nil
	}
	_, err := io.WriteString(s.w, focusReportingOn)
	return err
}

func (s *StreamSurface) Unmount() error {
	out := showCursor
	if s.focusReporting {
		out = focusReportingOff + out
	}
	_, err := io.WriteString(s.w, out)
	return err
}

// WindowSize is a size holder that a transport goroutine updates while the
// session goroutine reads it.
type WindowSize struct {
	packed atomic.Uint64
}

func (w *WindowSize) Set(cols, rows int) {
	if cols < 0 {
		cols = 0
	}
	if rows < 0 {
		rows = 0
	}
	w.packed.Store(uint64(uint32(cols))<<32 | uint64(uint32(rows)))
}

// Size satisfies SizeFunc.
func (w *WindowSize) Size() (int, int, error) {
	v := w.packed.Load()
	return int(v >> 32), int(uint32(v)), nil
}
