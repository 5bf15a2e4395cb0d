package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"bulk-doi/internal/common/config"

	"github.com/spf13/cobra"
)

type options struct {
	configPath  string
	submit      bool
	live        bool
	publish     bool
	logLevel    string
	metricsFile string
	notify      bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "bulkdoi <requests.csv>",
		Short: "Mint DataCite DOIs for every row of a CSV file",
		Long: `bulkdoi reads a CSV file with the columns URL, Creators, Title, Publisher,
Publication Year, Resource Type and Description, assigns a fresh DOI to every
valid row and prints one result line per row.

Without --submit nothing is registered and the payloads are printed instead.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.publish && !opts.submit {
				return fmt.Errorf("--publish requires --submit")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, opts, args[0], cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.configPath, "config", "c", config.DefaultPath, "Path to the configuration file")
	flags.BoolVarP(&opts.submit, "submit", "s", false, "Register the DOIs with DataCite (default is a dry run)")
	flags.BoolVarP(&opts.live, "live", "l", false, "Use the live DataCite system instead of the test system")
	flags.BoolVarP(&opts.publish, "publish", "p", false, "Publish DOIs after creating them. Published DOIs cannot be deleted")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides the config file")
	flags.StringVar(&opts.metricsFile, "metrics-file", "", "Write run metrics in Prometheus text format to this file")
	flags.BoolVar(&opts.notify, "notify", false, "Send the run summary to the configured notification channels")

	return cmd
}
