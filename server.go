package termfolio

import (
	"context"
	"errors"
	"sync"
	"time"

	"pkt.systems/pslog"
	"pkt.systems/termfolio/console"
	"pkt.systems/termfolio/httpapi"
	"pkt.systems/termfolio/internal/content"
	"pkt.systems/termfolio/sshserver"
)

// Server composes the SSH terminal, the HTTP plain view and the content watcher.
type Server interface {
	Start(ctx context.Context) error
	Wait() error
	Stop(ctx context.Context) error
}

// ServerConfig configures the compositor.
type ServerConfig struct {
	HTTP     httpapi.Config
	SSH      sshserver.Config
	Terminal console.Config
}

// ServerDeps captures dependencies required to build the server.
type ServerDeps struct {
	Content *content.Store
}

// ServerOption toggles compositor components.
type ServerOption func(*serverOptions)

type serverOptions struct {
	enableHTTP    bool
	enableSSH     bool
	watchContent  bool
	watchDebounce time.Duration
}

// WithHTTP enables the plain view and JSON API.
func WithHTTP() ServerOption {
	return func(o *serverOptions) { o.enableHTTP = true }
}

// WithSSH enables the SSH terminal.
func WithSSH() ServerOption {
	return func(o *serverOptions) { o.enableSSH = true }
}

// WithContentWatch reloads content when files in the content directory
// change, waiting debounce after the last change.
func WithContentWatch(debounce time.Duration) ServerOption {
	return func(o *serverOptions) {
		o.watchContent = true
		o.watchDebounce = debounce
	}
}

// New constructs a composable termfolio server.
func New(cfg ServerConfig, deps ServerDeps, opts ...ServerOption) (Server, error) {
	options := serverOptions{}
	for _, opt := range opts {
		opt(&options)
	}
	if !options.enableHTTP && !options.enableSSH {
		return nil, errors.New("no services enabled")
	}
	if deps.Content == nil {
		return nil, errors.New("content store is required")
	}
	if options.watchContent && deps.Content.Dir() == "" {
		return nil, errors.New("content watch needs a content directory")
	}

	var httpSrv *httpapi.Server
	var sshSrv *sshserver.Server
	if options.enableHTTP {
		httpSrv = httpapi.NewServer(cfg.HTTP, deps.Content)
	}
	if options.enableSSH {
		sshSrv = &sshserver.Server{
			Addr:        cfg.SSH.Addr,
			HostKeyPath: cfg.SSH.HostKeyPath,
			Content:     deps.Content,
			Terminal:    cfg.Terminal,
			MaxSessions: cfg.SSH.MaxSessions,
			IdleTimeout: cfg.SSH.IdleTimeout,
		}
	}

	return &compositeServer{
		cfg:     cfg,
		options: options,
		content: deps.Content,
		httpSrv: httpSrv,
		sshSrv:  sshSrv,
	}, nil
}

type compositeServer struct {
	cfg     ServerConfig
	options serverOptions
	content *content.Store
	httpSrv *httpapi.Server
	sshSrv  *sshserver.Server
	logger  pslog.Logger

	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	errCh   chan error
	wg      sync.WaitGroup
	started bool
}

func (s *compositeServer) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		pslog.Ctx(ctx).Warn("server start rejected", "reason", "already started")
		return errors.New("server already started")
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.errCh = make(chan error, 3)
	s.started = true
	s.logger = pslog.Ctx(s.ctx)
	s.mu.Unlock()

	log := s.logger
	log.Info(
		"server start",
		"http", s.options.enableHTTP,
		"ssh", s.options.enableSSH,
		"watch_content", s.options.watchContent,
		"http_addr", s.cfg.HTTP.Addr,
		"http_base_path", s.cfg.HTTP.BasePath,
		"ssh_addr", s.cfg.SSH.Addr,
		"content_dir", s.content.Dir(),
	)
	if s.options.enableHTTP && s.httpSrv != nil {
		s.run("http server", func(ctx context.Context) error {
			return httpapi.ListenAndServe(ctx, s.cfg.HTTP.Addr, s.httpSrv.Handler())
		})
	}
	if s.options.enableSSH && s.sshSrv != nil {
		s.run("ssh server", s.sshSrv.ListenAndServe)
	}
	if s.options.watchContent {
		s.run("content watch", func(ctx context.Context) error {
			return s.content.Watch(ctx, s.options.watchDebounce)
		})
	}
	return nil
}

func (s *compositeServer) run(name string, fn func(context.Context) error) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := fn(s.ctx); err != nil {
			s.logger.Error(name+" failed", "err", err)
			s.errCh <- err
		}
	}()
}

func (s *compositeServer) Wait() error {
	s.mu.Lock()
	ctx := s.ctx
	errCh := s.errCh
	started := s.started
	s.mu.Unlock()
	if !started {
		return errors.New("server not started")
	}

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		if err != nil {
			pslog.Ctx(ctx).Error("server stopped", "err", err)
			_ = s.Stop(context.Background())
			return err
		}
		return nil
	}
}

func (s *compositeServer) Stop(ctx context.Context) error {
	s.mu.Lock()
	cancel := s.cancel
	started := s.started
	log := s.logger
	s.mu.Unlock()
	if !started {
		return nil
	}
	if log == nil {
		log = pslog.Ctx(context.Background())
	}
	log.Info("server stop requested")
	if cancel != nil {
		cancel()
	}
	if ctx == nil {
		log.Info("server stop completed")
		return nil
	}
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-ctx.Done():
		log.Warn("server stop timed out", "err", ctx.Err())
		return ctx.Err()
	case <-done:
		log.Info("server stopped")
		return nil
	}
}
