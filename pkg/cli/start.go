package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func newStartCommand(info BuildInfo) *cobra.Command {
	var flags configFlags

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the mock server and the admin API",
		Long: `Start the mock server.

Routes and collections are read from the mocks folder, which is created with an
example when missing. OpenAPI documents in <path>/openapi become routes too.
Changes in the folder are reloaded automatically unless --no-watch is set.`,
		Example: `  # Start with defaults
  mocks start

  # Serve another folder on a custom port, selecting a collection
  mocks start --path fixtures --port 3000 --collection errors

  # Start without admin API and file watching
  mocks start --no-admin --no-watch`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := flags.load(cmd)
			if err != nil {
				return err
			}
			log := newLogger(cfg, cmd.ErrOrStderr())

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := startApp(ctx, cfg, log, info.resolve().Version)
			if err != nil {
				return err
			}
			log.Debug("configuration loaded", "sources", cfg.Sources)

			<-ctx.Done()
			log.Info("shutting down")
			a.shutdown()
			return nil
		},
	}
	flags.register(cmd, true)
	return cmd
}
