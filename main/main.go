package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"bulk-txn-submit/core"
)

var (
	verbosity int
	logger    *zap.Logger = zap.NewNop()
)

// Prepare the global logger from the verbosity flag
func prepareLogger(cmd *cobra.Command, args []string) error {
	level, err := core.ParseLogLevel(verbosity)
	if err != nil {
		return err
	}

	logger, err = core.NewLogger(level)
	if err != nil {
		return fmt.Errorf("failed to produce a logger: %w", err)
	}

	zap.ReplaceGlobals(logger)

	return nil
}

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bulk-txn-submit",
		Short: "Submit workload transactions to a Move ledger",
		Long: `Generate and submit workload specific signed transactions.

Each work item produces one result line on standard output:
  clickr-play:     <sender>\t<status>
  ddos-increment:  <sender>\t<counter>\t<status>

Logs are written to standard error.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: prepareLogger,
	}

	cmd.PersistentFlags().IntVarP(&verbosity, "verbosity", "v", int(core.LOG_INFO),
		"Log verbosity from 0 (silent) to 6 (trace)")

	cmd.AddCommand(NewSubmitCmd())

	return cmd
}

// Main running function
func main() {
	err := NewRootCmd().Execute()

	_ = logger.Sync()

	if err != nil {
		fmt.Fprintf(os.Stderr, "%s %s\n", color.RedString("bulk-txn-submit:"),
			err.Error())
		os.Exit(1)
	}
}
