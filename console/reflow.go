package console

import (
	"errors"
	"time"

	"pkt.systems/termfolio/schema"
)

// Trigger names what asked for a reflow.
type Trigger int

const (
	TriggerMount Trigger = iota
	TriggerResize
	TriggerObserve
)

func (t Trigger) String() string {
	switch t {
	case TriggerMount:
		return "mount"
	case TriggerResize:
		return "resize"
	case TriggerObserve:
		return "observe"
	default:
		return "unknown"
	}
}

// RetryPolicy bounds the attempts made while a surface is not ready.
type RetryPolicy struct {
	MaxAttempts  int
	InitialDelay time.Duration
	Multiplier   float64
	MaxDelay     time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:  5,
		InitialDelay: 100 * time.Millisecond,
		Multiplier:   2,
		MaxDelay:     time.Second,
	}
}

// Delay returns how long to wait before the given retry, counting from 1.
func (p RetryPolicy) Delay(retry int) time.Duration {
	if retry < 1 {
		retry = 1
	}
	delay := float64(p.InitialDelay)
	mult := p.Multiplier
	if mult < 1 {
		mult = 1
	}
	for i := 1; i < retry; i++ {
		delay *= mult
		if p.MaxDelay > 0 && delay >= float64(p.MaxDelay) {
			return p.MaxDelay
		}
	}
	if p.MaxDelay > 0 && time.Duration(delay) > p.MaxDelay {
		return p.MaxDelay
	}
	return time.Duration(delay)
}

// reflow fits the surface to its container. A surface that is not ready yet
// is retried under the policy; a newer reflow supersedes pending retries.
func (s *Session) reflow(trigger Trigger) {
	s.reflowGen++
	s.reflowAttempt(trigger, s.reflowGen, 1)
}

func (s *Session) reflowAttempt(trigger Trigger, gen, attempt int) {
	if gen != s.reflowGen {
		return
	}
	size, err := s.surface.Fit()
	switch {
	case err == nil:
		changed := size != s.size
		s.size = size
		if changed {
			s.log.Debug("terminal fit", "trigger", trigger.String(), "cols", size.Cols, "rows", size.Rows, "attempt", attempt)
			if trigger != TriggerMount {
				s.scrollToBottom()
			}
		}
	case errors.Is(err, schema.ErrSurfaceNotReady):
		if attempt >= s.cfg.Reflow.MaxAttempts {
			s.log.Debug("terminal fit gave up", "trigger", trigger.String(), "attempts", attempt)
			return
		}
		delay := s.cfg.Reflow.Delay(attempt)
		s.log.Trace("terminal not ready", "trigger", trigger.String(), "attempt", attempt, "retry_in", delay)
		s.schedule(delay, func() {
			s.reflowAttempt(trigger, gen, attempt+1)
		})
	default:
		s.log.Warn("terminal fit failed", "trigger", trigger.String(), "err", err)
	}
}

// observe polls the container size and reflows when it moved.
func (s *Session) observe() {
	m, ok := s.surface.(Measurer)
	if !ok {
		return
	}
	size, err := m.Measure()
	if err != nil || size == s.size {
		return
	}
	s.reflow(TriggerObserve)
}
