package integration_test

import (
	"bytes"
	"context"
	"io"
	"io/fs"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/ssh"

	"pkt.systems/termfolio/console"
	"pkt.systems/termfolio/internal/content"
	"pkt.systems/termfolio/sshserver"
)

func requireLong(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
}

// fastTerminal keeps the opening typewriter but shrinks its delays.
func fastTerminal() console.Config {
	cfg := console.DefaultConfig()
	cfg.Typewriter.StartDelay = 10 * time.Millisecond
	cfg.Typewriter.CharDelay = 5 * time.Millisecond
	cfg.Typewriter.EnterDelay = 10 * time.Millisecond
	cfg.Typewriter.SettleDelay = 10 * time.Millisecond
	cfg.ObserveInterval = 0
	return cfg
}

// writeSampleContent copies the embedded sample into a fresh directory.
func writeSampleContent(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range []string{content.ExperienceFile, content.ProjectsFile, content.LinksFile} {
		data, err := fs.ReadFile(content.Sample(), name)
		if err != nil {
			t.Fatalf("read sample %s: %v", name, err)
		}
		if err := os.WriteFile(filepath.Join(dir, name), data, 0o600); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}

func startSSHServer(t *testing.T, store *content.Store, cfg console.Config, maxSessions int) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	server := &sshserver.Server{
		Addr:        ln.Addr().String(),
		Listener:    ln,
		HostKeyPath: filepath.Join(t.TempDir(), "host_ed25519"),
		Content:     store,
		Terminal:    cfg,
		MaxSessions: maxSessions,
	}
	done := make(chan struct{})
	go func() {
		_ = server.ListenAndServe(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		_ = ln.Close()
		<-done
	})
	return ln.Addr().String()
}

func dialSSH(t *testing.T, addr string) *ssh.Client {
	t.Helper()
	client, err := ssh.Dial("tcp", addr, &ssh.ClientConfig{
		User:            "guest",
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         5 * time.Second,
	})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func startSSHSession(t *testing.T, client *ssh.Client, cols, rows int) (io.WriteCloser, *lockedBuffer, *ssh.Session) {
	t.Helper()
	session, err := client.NewSession()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = session.Close() })
	if err := session.RequestPty("xterm-256color", rows, cols, ssh.TerminalModes{}); err != nil {
		t.Fatal(err)
	}
	stdin, err := session.StdinPipe()
	if err != nil {
		t.Fatal(err)
	}
	stdout, err := session.StdoutPipe()
	if err != nil {
		t.Fatal(err)
	}
	if err := session.Shell(); err != nil {
		t.Fatal(err)
	}
	output := &lockedBuffer{}
	go func() {
		_, _ = io.Copy(output, stdout)
	}()
	return stdin, output, session
}

func expectOutput(t *testing.T, buffer *lockedBuffer, substr string, timeout time.Duration) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if strings.Contains(buffer.String(), substr) {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("timeout waiting for %q in output: %q", substr, buffer.String())
}

func waitForSessionClose(t *testing.T, session *ssh.Session) {
	t.Helper()
	done := make(chan error, 1)
	go func() {
		done <- session.Wait()
	}()
	select {
	case <-time.After(5 * time.Second):
		t.Fatalf("session did not close")
	case <-done:
	}
}

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (l *lockedBuffer) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.buf.Write(p)
}

func (l *lockedBuffer) String() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.buf.String()
}

// Since returns what arrived after mark, a length taken from an earlier String.
func (l *lockedBuffer) Since(mark int) string {
	l.mu.Lock()
	defer l.mu.Unlock()
	data := l.buf.String()
	if mark > len(data) {
		return ""
	}
	return data[mark:]
}
