package commands

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pennywyse/pennywyse/internal/logger"
	"github.com/pennywyse/pennywyse/internal/server"
)

func newServeCommand(repo *string) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the ledger API for the dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openProject(*repo, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			pl, err := p.pipeline()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = p.cfg.Server.Addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			ctx = logger.WithContext(ctx, p.log)

			srv := server.New(p.store, pl, p.categories, p.log)
			return srv.Run(ctx, addr, p.cfg.Server.Mode)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")

	return cmd
}
