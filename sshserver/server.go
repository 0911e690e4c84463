package sshserver

import (
	"context"
	"io"
	"net"
	"sync/atomic"
	"time"

	gliderssh "github.com/gliderlabs/ssh"
	"github.com/google/uuid"

	"pkt.systems/pslog"
	"pkt.systems/termfolio/console"
	"pkt.systems/termfolio/internal/logx"
	"pkt.systems/termfolio/internal/shell"
)

// Server exposes the portfolio terminal over SSH. Any user name is accepted
// without credentials; each pty session gets its own console session.
type Server struct {
	Addr        string
	HostKeyPath string
	Listener    net.Listener
	Content     shell.ContentSource
	Terminal    console.Config
	MaxSessions int
	IdleTimeout time.Duration
	logger      pslog.Logger
	active      atomic.Int64
}

// ListenAndServe starts the SSH server and shuts down on context cancellation.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s.logger == nil {
		s.logger = pslog.Ctx(ctx)
	}

	signer, err := EnsureHostKey(s.HostKeyPath)
	if err != nil {
		return err
	}

	server := &gliderssh.Server{
		Addr:        s.Addr,
		Handler:     s.handleSession,
		IdleTimeout: s.IdleTimeout,
	}
	server.AddHostKey(signer)
	s.logger.Info("ssh host key", "path", s.HostKeyPath, "fingerprint", Fingerprint(signer))

	errCh := make(chan error, 1)
	go func() {
		if s.Listener != nil {
			errCh <- server.Serve(s.Listener)
			return
		}
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		_ = server.Close()
		return nil
	case err := <-errCh:
		return err
	}
}

// Active reports how many terminal sessions are running.
func (s *Server) Active() int {
	return int(s.active.Load())
}

func (s *Server) handleSession(sess gliderssh.Session) {
	log := s.logger
	if log == nil {
		log = pslog.Ctx(sess.Context())
	}
	sessionID := uuid.NewString()
	log = logx.WithRemote(log.With("session", sessionID), sess.RemoteAddr(), sess.User())
	ctx := logx.ContextWithSessionLogger(sess.Context(), log, sessionID)

	pty, winCh, ok := sess.Pty()
	if !ok {
		log.Info("ssh session rejected", "reason", "pty required")
		_, _ = io.WriteString(sess, "termfolio needs an interactive terminal, try: ssh -t\n")
		_ = sess.Exit(1)
		return
	}

	active := s.active.Add(1)
	defer s.active.Add(-1)
	if s.MaxSessions > 0 && active > int64(s.MaxSessions) {
		log.Warn("ssh session rejected", "reason", "session limit", "limit", s.MaxSessions)
		_, _ = io.WriteString(sess, "Too many visitors right now, try again shortly.\r\n")
		_ = sess.Exit(1)
		return
	}

	size := &console.WindowSize{}
	size.Set(pty.Window.Width, pty.Window.Height)
	resize := make(chan struct{}, 1)
	go forwardWindow(ctx, winCh, size, resize)

	surface := console.NewStreamSurface(sess, size.Size, console.WithFocusReporting(true))
	term := shell.NewTerminal(surface, s.Content, s.Terminal)

	log.Info("ssh session opened", "term", pty.Term, "cols", pty.Window.Width, "rows", pty.Window.Height)
	start := time.Now()
	if err := term.Run(ctx, sess, resize); err != nil {
		log.Warn("ssh session failed", "err", err)
		_ = sess.Exit(1)
		return
	}
	log.Info("ssh session closed", "duration_ms", time.Since(start).Milliseconds(), "history", term.History().Len())
	_, _ = io.WriteString(sess, "\r\n")
	_ = sess.Exit(0)
}

// forwardWindow copies window changes into size and coalesces them into
// resize notifications; a pending notification already covers the latest size.
func forwardWindow(ctx context.Context, winCh <-chan gliderssh.Window, size *console.WindowSize, resize chan<- struct{}) {
	for {
		select {
		case <-ctx.Done():
			return
		case win, ok := <-winCh:
			if !ok {
				return
			}
			size.Set(win.Width, win.Height)
			select {
			case resize <- struct{}{}:
			default:
			}
		}
	}
}
