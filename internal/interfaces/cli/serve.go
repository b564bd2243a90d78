package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"airledger-backend/bootstrap"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, rootOpts, port)
		},
	}
	cmd.Flags().StringVarP(&port, "port", "p", "", "listen port, defaults to PORT")
	return cmd
}

func runServe(cmd *cobra.Command, opts *RootOptions, port string) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	if port != "" {
		cfg.Port = port
	}
	deps, err := bootstrap.Open(cfg)
	if err != nil {
		return err
	}
	defer deps.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := deps.Verify(ctx); err != nil {
		return err
	}

	app := deps.App()
	go func() {
		<-ctx.Done()
		if err := app.ShutdownWithContext(context.Background()); err != nil {
			log.Error().Err(err).Msg("shutdown")
		}
	}()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Server running at http://localhost:%s\n", cfg.Port)
	fmt.Fprintf(out, "Health check: http://localhost:%s/health/json\n", cfg.Port)
	fmt.Fprintln(out, "---")
	return app.Listen(":" + cfg.Port)
}
