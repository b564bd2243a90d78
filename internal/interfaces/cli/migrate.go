package cli

import (
	"fmt"

	"airledger-backend/bootstrap"
	"airledger-backend/internal/pkg/constants"

	"github.com/spf13/cobra"
)

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the record table for SQL stores",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(rootOpts)
			if err != nil {
				return err
			}
			if cfg.StoreBackend == constants.StoreLevelDB {
				fmt.Fprintln(cmd.OutOrStdout(), "leveldb store needs no migration")
				return nil
			}
			st, err := bootstrap.OpenStore(cfg, true)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "migrated %s store\n", cfg.StoreBackend)
			return st.Close()
		},
	}
}
