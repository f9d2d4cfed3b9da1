package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newAccountsCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "accounts",
		Short: "List the accounts exports are routed to",
		Long: `Prints each configured account in the order file names are matched:
prefix rules first, the fallback account last.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig(cmd)
			if err != nil {
				return err
			}
			for _, a := range cfg.Router().All() {
				prefix := a.Prefix
				if prefix == "" {
					prefix = "-"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-8s %-16s %s\n", a.Name, prefix, a.ID)
			}
			return nil
		},
	}
}
