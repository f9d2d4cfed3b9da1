package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/bankpush/bankpush/internal/importer"
	"github.com/bankpush/bankpush/internal/logger"
	"github.com/bankpush/bankpush/internal/ynab"
)

const preflightWorkers = 4

func newScanCommand(opts *rootOptions) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "scan [directory]",
		Short: "Process every export in a directory",
		Long: `Finds files named <prefix>-*-*.csv for each configured account prefix and
processes them one after another. All headers are checked before anything
is submitted.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			cfg, err := opts.loadConfig(cmd)
			if err != nil {
				return err
			}
			router := cfg.Router()
			log := logger.FromContext(cmd.Context())

			files, err := importer.Scan(dir, router.Prefixes())
			if err != nil {
				return err
			}
			if len(files) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No export files found in %s\n", dir)
				return nil
			}

			if err := preflight(cmd.Context(), files); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if dryRun {
				for _, f := range files {
					fmt.Fprintf(out, "%s -> %s (%d bytes)\n", f.Name, router.Resolve(f.Name).Name, f.Size)
				}
				return nil
			}

			proc, err := newProcessor(cfg, log)
			if err != nil {
				return err
			}
			for _, f := range files {
				account := router.Resolve(f.Name)
				sum, err := proc.Process(cmd.Context(), f.Path, ynab.Target{BudgetID: cfg.YNAB.BudgetID, AccountID: account.ID})
				if err != nil {
					return fmt.Errorf("processing %s: %w", f.Name, err)
				}
				fmt.Fprintf(out, "%s: submitted %d of %d transactions (%d cleared, %d fee lines reconciled)\n",
					f.Name, sum.Submitted, sum.Parsed, sum.Cleared, sum.Reconciled)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "list the files and their accounts without submitting")

	return cmd
}

// preflight checks the header of every file concurrently and returns the
// first failure.
func preflight(ctx context.Context, files []importer.FileInfo) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(preflightWorkers)

	for _, f := range files {
		f := f
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := checkFileHeader(f.Path); err != nil {
				return fmt.Errorf("%s: %w", f.Name, err)
			}
			return nil
		})
	}
	return g.Wait()
}

func checkFileHeader(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening export: %w", err)
	}
	defer f.Close()

	line, err := bufio.NewReader(importer.Decode(f)).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("reading header: %w", err)
	}
	return importer.CheckHeader(line)
}
