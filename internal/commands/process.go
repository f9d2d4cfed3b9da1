package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bankpush/bankpush/internal/logger"
	"github.com/bankpush/bankpush/internal/ynab"
)

func newProcessCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "process <file>...",
		Short: "Submit the uncleared transactions of bank export files",
		Long: `Parses each export, reconciles foreign transaction fee lines and submits
every uncleared transaction to the account matching the file name prefix.
A file is deleted once all of its transactions were submitted.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig(cmd)
			if err != nil {
				return err
			}
			log := logger.FromContext(cmd.Context())
			proc, err := newProcessor(cfg, log)
			if err != nil {
				return err
			}
			router := cfg.Router()

			for _, path := range args {
				account := router.Resolve(path)
				log.Info().Str("file", path).Str("account", account.Name).Msg("processing")

				sum, err := proc.Process(cmd.Context(), path, ynab.Target{BudgetID: cfg.YNAB.BudgetID, AccountID: account.ID})
				if err != nil {
					return fmt.Errorf("processing %s: %w", path, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: submitted %d of %d transactions (%d cleared, %d fee lines reconciled)\n",
					path, sum.Submitted, sum.Parsed, sum.Cleared, sum.Reconciled)
			}
			return nil
		},
	}
}
