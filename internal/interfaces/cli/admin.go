package cli

import (
	"encoding/json"
	"io"

	"airledger-backend/bootstrap"
	"airledger-backend/internal/domain"

	"github.com/spf13/cobra"
)

// NewInitRegistryCommand creates the init-registry command.
func NewInitRegistryCommand(rootOpts *RootOptions) *cobra.Command {
	var authority string
	cmd := &cobra.Command{
		Use:   "init-registry",
		Short: "Create the registry with the given authority",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			caller, err := domain.ParseIdentity(authority)
			if err != nil {
				return err
			}
			return withDeps(rootOpts, func(d *bootstrap.Deps) error {
				reg, err := d.Ledger.InitializeRegistry(cmd.Context(), caller)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), reg)
			})
		},
	}
	cmd.Flags().StringVar(&authority, "authority", "", "identity that becomes the registry authority")
	_ = cmd.MarkFlagRequired("authority")
	return cmd
}

// NewFundCommand creates the fund command.
func NewFundCommand(rootOpts *RootOptions) *cobra.Command {
	var authority, owner string
	var amount uint64
	cmd := &cobra.Command{
		Use:   "fund",
		Short: "Credit an account (authority only)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			caller, err := domain.ParseIdentity(authority)
			if err != nil {
				return err
			}
			to, err := domain.ParseIdentity(owner)
			if err != nil {
				return err
			}
			return withDeps(rootOpts, func(d *bootstrap.Deps) error {
				acct, err := d.Ledger.FundAccount(cmd.Context(), caller, to, amount)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), acct)
			})
		},
	}
	cmd.Flags().StringVar(&authority, "authority", "", "registry authority signing the credit")
	cmd.Flags().StringVar(&owner, "owner", "", "account to credit")
	cmd.Flags().Uint64Var(&amount, "amount", 0, "amount in base units")
	_ = cmd.MarkFlagRequired("authority")
	_ = cmd.MarkFlagRequired("owner")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func withDeps(opts *RootOptions, fn func(*bootstrap.Deps) error) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	deps, err := bootstrap.Open(cfg)
	if err != nil {
		return err
	}
	defer deps.Close()
	return fn(deps)
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
