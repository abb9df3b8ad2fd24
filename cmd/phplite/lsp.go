package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tangzhangming/phplite/internal/lsp"
)

func newLSPCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "lsp",
		Short: "Run the language server on stdio",
		Long: `Run the language server over stdin/stdout.
Logging goes to the file named by [lsp] log_file in phplite.toml.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			defer func() { _ = a.logger.Sync() }()

			srv := lsp.NewServer(a.compiler, a.logger)
			err := srv.Serve(ctx, &stdio{in: a.stdin, out: cmd.OutOrStdout()})
			if err == context.Canceled {
				return nil
			}
			return err
		},
	}
}

// stdio 将标准输入输出组合为 io.ReadWriteCloser
type stdio struct {
	in  io.Reader
	out io.Writer
}

func (s *stdio) Read(p []byte) (int, error)  { return s.in.Read(p) }
func (s *stdio) Write(p []byte) (int, error) { return s.out.Write(p) }

func (s *stdio) Close() error {
	if c, ok := s.in.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
