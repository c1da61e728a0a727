package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/canvasboard/internal/server"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the views and canvas HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = opts.config.GetString(cfgKeyListenAddr)
			}

			backend, _, err := opts.attach()
			if err != nil {
				return err
			}
			defer backend.Detach()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return sysError(server.Run(ctx, server.Config{
				Addr:     addr,
				Board:    backend,
				PageSize: opts.config.GetInt(cfgKeyPageSize),
				Logger:   opts.logger,
			}))
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config listen_addr)")
	return cmd
}
