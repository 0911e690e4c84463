package sshserver

import "time"

// Config defines SSH server settings.
type Config struct {
	Addr        string
	HostKeyPath string
	// MaxSessions caps concurrent visitors; zero means no cap.
	MaxSessions int
	IdleTimeout time.Duration
}
