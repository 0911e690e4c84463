package main

import (
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"pkt.systems/termfolio/console"
	"pkt.systems/termfolio/internal/appconfig"
	"pkt.systems/termfolio/internal/content"
	"pkt.systems/termfolio/internal/shell"
)

const fallbackColumns = 80

func newExecCmd() *cobra.Command {
	var cfgPath string
	var contentDir string
	var cols int
	var plain bool
	cmd := &cobra.Command{
		Use:   "exec <command...>",
		Short: "Run one portfolio command and print its output",
		Example: "  termfolio exec shiv projects --all\n" +
			"  termfolio exec --plain --cols 60 shiv experience",
		Args: cobra.MinimumNArgs(1),
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
			c, err := content.Load(cfg.ContentDir)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if cols <= 0 {
				cols = outputColumns(out)
			}
			interp := shell.New(content.NewStaticStore(c), shell.WithColumns(func() int { return cols }))
			return printRecords(out, interp, strings.Join(args, " "), cols, termCfg.Theme, plain)
		},
	}
	cmd.Flags().SetInterspersed(false)
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "path to config file")
	cmd.Flags().StringVar(&contentDir, "content-dir", "", "directory holding the content files (empty uses the sample)")
	cmd.Flags().IntVar(&cols, "cols", 0, "wrap width (defaults to the terminal width, or 80)")
	cmd.Flags().BoolVar(&plain, "plain", false, "strip colors and links and use bare newlines")
	return cmd
}

func printRecords(w io.Writer, interp console.Interpreter, line string, cols int, theme console.Theme, plain bool) error {
	records := interp.Execute(line)
	for _, rec := range records {
		if rec.IsClear() {
			return nil
		}
	}
	out := console.Render(records, cols, theme)
	if plain {
		out = strings.ReplaceAll(console.StripCodes(out), "\r\n", "\n")
	}
	_, err := io.WriteString(w, out)
	return err
}

func outputColumns(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return fallbackColumns
	}
	cols, _, err := term.GetSize(int(f.Fd()))
	if err != nil || cols <= 0 {
		return fallbackColumns
	}
	return cols
}
