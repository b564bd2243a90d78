package cli

import (
	"fmt"
	"os"

	"airledger-backend/internal/config"
	"airledger-backend/internal/pkg/constants"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Store string // overrides STORE_BACKEND when set
}

// NewRootCommand creates the root command for the airledger CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "airledger",
		Short: "Air rights marketplace ledger",
		Long:  "Serve and administer the air rights ledger: listings, sales, leases and fee settlement.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.Store != "" && !constants.IsValidStoreBackend(opts.Store) {
				return fmt.Errorf("invalid store %q: must be one of %v", opts.Store, constants.ValidStoreBackends)
			}
			return nil
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.Store, "store", "", "store backend (postgres|sqlite|leveldb), defaults to STORE_BACKEND")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewInitRegistryCommand(opts))
	cmd.AddCommand(NewFundCommand(opts))

	return cmd
}

// loadConfig reads the environment and applies flag overrides.
func loadConfig(opts *RootOptions) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if opts.Store != "" {
		cfg.StoreBackend = opts.Store
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	config.SetupLogging(cfg)
	return cfg, nil
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
