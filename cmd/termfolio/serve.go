package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"pkt.systems/pslog"
	"pkt.systems/termfolio"
	"pkt.systems/termfolio/httpapi"
	"pkt.systems/termfolio/internal/appconfig"
	"pkt.systems/termfolio/internal/content"
	"pkt.systems/termfolio/sshserver"
)

const contentDebounce = 200 * time.Millisecond

func newServeCmd() *cobra.Command {
	var cfgPath string
	var contentDir string
	var noWatch bool
	var noSSH bool
	var noHTTP bool
	var sshCommand string
	var title string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the SSH terminal and the HTTP plain view",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := pslog.Ctx(cmd.Context())
			cfg, err := appconfig.Load(cfgPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("content-dir") {
				cfg.ContentDir = contentDir
			}
			if noWatch {
				cfg.WatchContent = false
			}
			termCfg, err := cfg.Terminal.Console()
			if err != nil {
				return err
			}

			store := content.NewStore(cfg.ContentDir)
			if err := store.Reload(); err != nil {
				return err
			}
			logger.Info("content loaded", "dir", displayDir(cfg.ContentDir))

			serverCfg := termfolio.ServerConfig{
				HTTP: httpapi.Config{
					Addr:       cfg.HTTP.Addr,
					BasePath:   cfg.HTTP.BasePath,
					Title:      title,
					SSHCommand: sshCommand,
				},
				SSH:      toSSHConfig(cfg.SSH),
				Terminal: termCfg,
			}
			var opts []termfolio.ServerOption
			if !noHTTP {
				opts = append(opts, termfolio.WithHTTP())
			}
			if !noSSH {
				opts = append(opts, termfolio.WithSSH())
			}
			if cfg.WatchContent && cfg.ContentDir != "" {
				opts = append(opts, termfolio.WithContentWatch(contentDebounce))
			}
			server, err := termfolio.New(serverCfg, termfolio.ServerDeps{Content: store}, opts...)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			go func() {
				<-ctx.Done()
				stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := server.Stop(stopCtx); err != nil {
					logger.Warn("server stop failed", "err", err)
				}
			}()
			if !noHTTP {
				logger.Info("http server listening", "addr", serverCfg.HTTP.Addr)
			}
			if !noSSH {
				logger.Info("ssh server listening", "addr", serverCfg.SSH.Addr)
			}
			if err := server.Start(ctx); err != nil {
				return err
			}
			return server.Wait()
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "path to config file")
	cmd.Flags().StringVar(&contentDir, "content-dir", "", "directory holding experience.json, projects.json and links.json (empty serves the sample)")
	cmd.Flags().BoolVar(&noWatch, "no-watch", false, "do not reload content when files change")
	cmd.Flags().BoolVar(&noSSH, "no-ssh", false, "disable the SSH terminal")
	cmd.Flags().BoolVar(&noHTTP, "no-http", false, "disable the HTTP plain view")
	cmd.Flags().StringVar(&sshCommand, "ssh-command", "", "command advertised on the plain page for reaching the terminal")
	cmd.Flags().StringVar(&title, "title", "", "title of the plain page")
	return cmd
}

func toSSHConfig(cfg appconfig.SSHConfig) sshserver.Config {
	return sshserver.Config{
		Addr:        cfg.Addr,
		HostKeyPath: cfg.HostKeyPath,
		MaxSessions: cfg.MaxSessions,
		IdleTimeout: time.Duration(cfg.IdleTimeoutMinutes) * time.Minute,
	}
}

func displayDir(dir string) string {
	if dir == "" {
		return "(embedded sample)"
	}
	return dir
}
