package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/bankpush/bankpush/internal/config"
)

// importDir is where init expects bank exports to be dropped for scan.
const importDir = "import"

func newInitCommand() *cobra.Command {
	var budgetID string
	var force bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Write a skeleton bankpush.yaml",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			if err := runInit(absDir, budgetID, force); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Initialized bankpush in %s\n", absDir)
			return nil
		},
	}

	cmd.Flags().StringVar(&budgetID, "budget-id", "", "YNAB budget ID")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")

	return cmd
}

func runInit(dir, budgetID string, force bool) error {
	if err := os.MkdirAll(filepath.Join(dir, importDir), 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", importDir, err)
	}

	path := filepath.Join(dir, config.DefaultPath)
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("checking %s: %w", path, err)
		}
	}

	// Credentials and account IDs come from the environment.
	cfg := config.Default()
	cfg.YNAB.BudgetID = budgetID
	if err := config.Save(path, cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	gitignore := importDir + "/\n"
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0o644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}
	return nil
}
