package commands

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/bankpush/bankpush/internal/batch"
	"github.com/bankpush/bankpush/internal/buildinfo"
	"github.com/bankpush/bankpush/internal/config"
	"github.com/bankpush/bankpush/internal/importer"
	"github.com/bankpush/bankpush/internal/logger"
	"github.com/bankpush/bankpush/internal/ynab"
)

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	configPath string
	logLevel   string
	logFormat  string
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:     "bankpush",
		Short:   "Push bank CSV exports into a YNAB budget",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			log, err := logger.NewFormat(cmd.ErrOrStderr(), opts.logFormat, opts.logLevel)
			if err != nil {
				return err
			}
			cmd.SetContext(logger.WithContext(cmd.Context(), log))
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", config.DefaultPath, "config file")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", "console", "log format (console, json)")

	rootCmd.AddCommand(newAccountsCommand(opts))
	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newProcessCommand(opts))
	rootCmd.AddCommand(newScanCommand(opts))
	rootCmd.AddCommand(newServeCommand(opts))

	return rootCmd
}

// loadConfig reads the config file and environment. The default file may be
// absent; an explicitly named one may not.
func (o *rootOptions) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	optional := !cmd.Flags().Changed("config")
	cfg, err := config.Load(o.configPath, optional)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newProcessor wires the parser, API client and pacing from cfg.
func newProcessor(cfg *config.Config, log zerolog.Logger) (*batch.Processor, error) {
	parser := importer.DefaultRegistry().Get("danish")
	if parser == nil {
		return nil, fmt.Errorf("no parser registered for format %q", "danish")
	}

	client := ynab.NewClient(ynab.Options{
		BaseURL:            cfg.YNAB.BaseURL,
		AccessToken:        cfg.YNAB.AccessToken,
		InsecureSkipVerify: !cfg.YNAB.VerifySSL,
		MaxAttempts:        cfg.YNAB.MaxAttempts,
		InitialDelay:       cfg.YNAB.InitialDelay,
		Logger:             log,
	})
	if !cfg.YNAB.VerifySSL {
		log.Warn().Msg("TLS certificate verification is disabled")
	}

	return batch.NewProcessor(parser, client,
		batch.WithPacing(cfg.YNAB.Pacing),
		batch.WithLogger(log),
	), nil
}
