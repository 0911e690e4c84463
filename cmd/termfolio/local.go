package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"pkt.systems/pslog"
	"pkt.systems/termfolio/console"
	"pkt.systems/termfolio/internal/appconfig"
	"pkt.systems/termfolio/internal/content"
	"pkt.systems/termfolio/internal/logx"
	"pkt.systems/termfolio/internal/shell"
)

func newLocalCmd() *cobra.Command {
	var cfgPath string
	var contentDir string
	var logPath string
	var noTypewriter bool
	cmd := &cobra.Command{
		Use:   "local",
		Short: "Run the portfolio terminal on this TTY",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := appconfig.Load(cfgPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("content-dir") {
				cfg.ContentDir = contentDir
			}
			termCfg, err := cfg.Terminal.Console()
			if err != nil {
				return err
			}
			if noTypewriter {
				termCfg.Typewriter.Enabled = false
			}
			store := content.NewStore(cfg.ContentDir)
			if err := store.Reload(); err != nil {
				return err
			}

			logger, closeLog, err := localLogger(logPath)
			if err != nil {
				return err
			}
			defer closeLog()
			sessionID := uuid.NewString()
			ctx := logx.ContextWithSessionLogger(cmd.Context(), logger.With("session", sessionID), sessionID)
			if cfg.WatchContent && cfg.ContentDir != "" {
				watchCtx, cancel := context.WithCancel(ctx)
				defer cancel()
				go func() {
					if err := store.Watch(watchCtx, contentDebounce); err != nil {
						pslog.Ctx(ctx).Warn("content watch failed", "err", err)
					}
				}()
			}
			return runLocal(ctx, os.Stdin, os.Stdout, store, termCfg)
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "path to config file")
	cmd.Flags().StringVar(&contentDir, "content-dir", "", "directory holding the content files (empty uses the sample)")
	cmd.Flags().StringVar(&logPath, "log-file", "", "write logs to this file; the TTY itself stays clean")
	cmd.Flags().BoolVar(&noTypewriter, "no-typewriter", false, "skip the scripted opening command")
	return cmd
}

func runLocal(ctx context.Context, in, out *os.File, store *content.Store, cfg console.Config) error {
	inFd, outFd := int(in.Fd()), int(out.Fd())
	if !term.IsTerminal(inFd) || !term.IsTerminal(outFd) {
		return errors.New("local needs a terminal on stdin and stdout; try termfolio exec for scripts")
	}
	state, err := term.MakeRaw(inFd)
	if err != nil {
		return fmt.Errorf("raw mode: %w", err)
	}
	defer func() { _ = term.Restore(inFd, state) }()

	size := func() (int, int, error) {
		return term.GetSize(outFd)
	}
	resize, stopResize := watchResize(ctx)
	defer stopResize()

	surface := console.NewStreamSurface(out, size, console.WithFocusReporting(true))
	session := shell.NewTerminal(surface, store, cfg)
	pslog.Ctx(ctx).Info("local session opened")
	err = session.Run(ctx, in, resize)
	_, _ = io.WriteString(out, "\r\n")
	pslog.Ctx(ctx).Info("local session closed", "history", session.History().Len())
	return err
}

// localLogger keeps log lines off the TTY the session draws on.
func localLogger(path string) (pslog.Logger, func(), error) {
	if path == "" {
		return pslog.NewWithOptions(io.Discard, pslog.Options{Mode: pslog.ModeStructured, NoColor: true}), func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	logger := pslog.NewWithOptions(f, pslog.Options{Mode: pslog.ModeStructured, NoColor: true, MinLevel: pslog.DebugLevel})
	return logger, func() { _ = f.Close() }, nil
}
