package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"pkt.systems/pslog"
	"pkt.systems/termfolio/bootstrap"
)

func newBootstrapCmd() *cobra.Command {
	var outputDir string
	var overwrite bool
	var binPath string
	var sets []string
	cmd := &cobra.Command{
		Use:   "bootstrap",
		Short: "Generate a deployment directory with config, content, Containerfile and systemd unit",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := pslog.Ctx(cmd.Context())
			out := outputDir
			if out == "" {
				home, err := os.UserHomeDir()
				if err != nil {
					return err
				}
				out = filepath.Join(home, ".termfolio")
			}
			overrides := make([]bootstrap.ConfigOverride, 0, len(sets))
			for _, raw := range sets {
				override, err := bootstrap.ParseOverride(raw)
				if err != nil {
					return err
				}
				overrides = append(overrides, override)
			}
			paths, err := bootstrap.Write(out, bootstrap.Options{
				Overwrite: overwrite,
				BinPath:   binPath,
				Overrides: overrides,
			})
			if err != nil {
				return err
			}
			logger.Info("bootstrap wrote", "path", paths.ConfigPath, "name", "config.yaml")
			logger.Info("bootstrap wrote", "path", paths.ContentDir, "name", "content/")
			logger.Info("bootstrap wrote", "path", paths.Containerfile, "name", "Containerfile")
			logger.Info("bootstrap wrote", "path", paths.ServiceUnit, "name", "termfolio.service")
			_, err = fmt.Fprintln(cmd.OutOrStdout(), paths.ConfigPath)
			return err
		},
	}
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "output directory (default ~/.termfolio)")
	cmd.Flags().BoolVar(&overwrite, "force", false, "overwrite existing files")
	cmd.Flags().StringVar(&binPath, "bin", "", "binary path used by the systemd unit")
	cmd.Flags().StringArrayVar(&sets, "set", nil, "config override as key=value, for example --set http.addr=:8080")
	return cmd
}
