package logx

import (
	"context"
	"net"

	"pkt.systems/pslog"
)

type contextKey int

const (
	sessionKey contextKey = iota
)

// Ctx returns the logger bound to the provided context.
func Ctx(ctx context.Context) pslog.Logger {
	return pslog.Ctx(ctx)
}

// WithSession annotates the logger with a session id unless the context
// already carries the same one.
func WithSession(ctx context.Context, sessionID string) pslog.Logger {
	log := pslog.Ctx(ctx)
	if sessionID == "" {
		return log
	}
	if current, ok := ctx.Value(sessionKey).(string); ok && current == sessionID {
		return log
	}
	return log.With("session", sessionID)
}

// WithRemote annotates the logger with the peer address and, for SSH, the
// user name the client asked for.
func WithRemote(log pslog.Logger, addr net.Addr, user string) pslog.Logger {
	if addr != nil {
		log = log.With("remote", addr.String())
	}
	if user != "" {
		log = log.With("ssh_user", user)
	}
	return log
}

// ContextWithSession stores the session marker on the context for log de-duplication.
func ContextWithSession(ctx context.Context, sessionID string) context.Context {
	if ctx == nil || sessionID == "" {
		return ctx
	}
	return context.WithValue(ctx, sessionKey, sessionID)
}

// ContextWithSessionLogger attaches the logger and session marker to the context.
func ContextWithSessionLogger(ctx context.Context, log pslog.Logger, sessionID string) context.Context {
	ctx = pslog.ContextWithLogger(ctx, log)
	return ContextWithSession(ctx, sessionID)
}

// SessionID returns the session marker stored on the context.
func SessionID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(sessionKey).(string)
	return id
}
