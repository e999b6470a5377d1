package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"bulk-txn-submit/blockchains/aptos"
	"bulk-txn-submit/core"
	"bulk-txn-submit/core/configs"
	"bulk-txn-submit/core/configs/parsers"
	"bulk-txn-submit/core/configs/validators"
	"bulk-txn-submit/core/coordinator"
	"bulk-txn-submit/core/results"
	"bulk-txn-submit/workloads"
)

// Arguments shared by all workloads
type submitArgs struct {
	clusterConfigPath string
	targets           []string
	chainId           uint8
	coinSourceKey     string
	clickrAddress     string
	ddosAddress       string
	resultDir         string
	yes               bool
	factoryArgs       configs.TransactionFactoryArgs
}

func NewSubmitCmd() *cobra.Command {
	args := &submitArgs{factoryArgs: configs.DefaultTransactionFactoryArgs()}

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a workload",
		Long: `Submit a workload to a cluster.

The cluster is described by a YAML file (--cluster-config) and/or flags;
flags take precedence over the file.

Examples:
  # Play clickr 100 times
  bulk-txn-submit submit --targets 127.0.0.1:8080 --coin-source-key 0x... clickr-play --num-txns 100

  # Increment an existing counter
  bulk-txn-submit submit --cluster-config cluster.yaml ddos-increment --num-txns 10 --counter-address 0x...`,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&args.clusterConfigPath, "cluster-config", "", "Path to the cluster YAML file")
	flags.StringSliceVar(&args.targets, "targets", nil, "REST endpoints of the nodes")
	flags.Uint8Var(&args.chainId, "chain-id", 0, "Chain id (read from the first node when 0)")
	flags.StringVar(&args.coinSourceKey, "coin-source-key", "", "Hex ed25519 seed of the paying account")
	flags.StringVar(&args.clickrAddress, "clickr-address", "", "Address of the clickr module (default: well-known deployment)")
	flags.StringVar(&args.ddosAddress, "ddos-address", "", "Address of the ddos_coin module (default: well-known deployment)")
	flags.StringVar(&args.resultDir, "result-dir", "", "Directory to write the run results to")
	flags.BoolVarP(&args.yes, "yes", "y", false, "Do not ask for confirmation")
	flags.Uint64Var(&args.factoryArgs.GasPrice, "gas-price", configs.DefaultGasPrice,
		"Gas unit price of workload transactions")
	flags.Uint64Var(&args.factoryArgs.InitGasPriceMultiplier, "init-gas-price-multiplier", configs.DefaultInitGasPriceMultiplier,
		"Gas price multiplier of setup transactions")
	flags.Uint64Var(&args.factoryArgs.OctasPerWorkloadTransaction, "octas-per-workload-transaction", configs.DefaultOctasPerWorkloadTransaction,
		"Budget of a workload transaction in octas")
	flags.Uint64Var(&args.factoryArgs.ExpirationSecs, "expiration-secs", configs.DefaultExpirationSecs,
		"Lifetime of a transaction in seconds")

	cmd.AddCommand(newClickrPlayCmd(args))
	cmd.AddCommand(newDdosIncrementCmd(args))

	return cmd
}

func newClickrPlayCmd(args *submitArgs) *cobra.Command {
	var numTxns uint

	cmd := &cobra.Command{
		Use:   "clickr-play",
		Short: "Call clickr::play once per transaction",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			sub, err := args.submission(ctx, cmd)
			if err != nil {
				return err
			}

			start := time.Now()

			lines, err := sub.ClickrPlay(ctx, int(numTxns))
			if err != nil {
				return err
			}

			return args.report("clickr-play", lines, time.Since(start))
		},
	}

	cmd.Flags().UintVar(&numTxns, "num-txns", 0, "Number of transactions")
	_ = cmd.MarkFlagRequired("num-txns")

	return cmd
}

func newDdosIncrementCmd(args *submitArgs) *cobra.Command {
	var numTxns uint
	var counterAddress string

	cmd := &cobra.Command{
		Use:   "ddos-increment",
		Short: "Call ddos_coin::increment_user_counter once per transaction",
		Long: `Increment a user counter once per transaction.

Without --counter-address, a new counter is registered first with
ddos_coin::new_user_counter and its address is read from the
CreateUserCounterEvent of that transaction.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var counter *aptos.AccountAddress

			if counterAddress != "" {
				addr, err := aptos.ParseAddressRelaxed(counterAddress)
				if err != nil {
					return fmt.Errorf("invalid counter address: %w", err)
				}
				counter = &addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			sub, err := args.submission(ctx, cmd)
			if err != nil {
				return err
			}

			start := time.Now()

			lines, err := sub.DdosIncrement(ctx, int(numTxns), counter)
			if err != nil {
				return err
			}

			return args.report("ddos-increment", lines, time.Since(start))
		},
	}

	cmd.Flags().UintVar(&numTxns, "num-txns", 0, "Number of transactions")
	cmd.Flags().StringVar(&counterAddress, "counter-address", "", "Existing user counter to increment")
	_ = cmd.MarkFlagRequired("num-txns")

	return cmd
}

// Merge the cluster file with the command line flags
func (a *submitArgs) clusterConfig(cmd *cobra.Command) (*configs.ClusterConfig, error) {
	var config *configs.ClusterConfig
	var err error

	if a.clusterConfigPath != "" {
		config, err = parsers.ParseClusterConfig(a.clusterConfigPath)
		if err != nil {
			return nil, fmt.Errorf("failed to parse cluster config: %w", err)
		}
	} else {
		config = &configs.ClusterConfig{}
	}

	flags := cmd.Flags()

	if flags.Changed("targets") {
		config.Nodes = a.targets
	}

	if flags.Changed("chain-id") {
		config.ChainId = a.chainId
	}

	if flags.Changed("coin-source-key") {
		config.CoinSourceKey, err = configs.ParseSourceKey(a.coinSourceKey)
		if err != nil {
			return nil, fmt.Errorf("invalid coin source key: %w", err)
		}
	}

	if flags.Changed("clickr-address") {
		config.Contracts.Clickr = a.clickrAddress
	}

	if flags.Changed("ddos-address") {
		config.Contracts.Ddos = a.ddosAddress
	}

	if ok, err := validators.ValidateClusterConfig(config); !ok {
		return nil, err
	}

	return config, nil
}

func (a *submitArgs) submission(ctx context.Context, cmd *cobra.Command) (*core.Submission, error) {
	config, err := a.clusterConfig(cmd)
	if err != nil {
		return nil, err
	}

	contracts, err := workloads.ParseContracts(config.Contracts.Clickr, config.Contracts.Ddos)
	if err != nil {
		return nil, err
	}

	cluster, err := core.NewCluster(ctx, logger, config)
	if err != nil {
		return nil, fmt.Errorf("failed to build cluster: %w", err)
	}

	bootstrap := cluster.RandomClient()

	source, err := cluster.LoadCoinSourceAccount(ctx, bootstrap)
	if err != nil {
		return nil, err
	}

	clients := make([]coordinator.LedgerClient, 0, len(cluster.AllClients()))
	for _, c := range cluster.AllClients() {
		clients = append(clients, c)
	}

	sub := &core.Submission{
		Logger:         logger,
		Source:         source,
		Clients:        clients,
		Bootstrap:      bootstrap,
		ChainId:        cluster.ChainId(),
		FactoryArgs:    a.factoryArgs,
		Contracts:      contracts,
		MaxSubmitBatch: core.MaxSubmitBatch,
		PollInterval:   core.DefaultPollInterval,
		Confirm:        promptYes,
	}

	if a.yes {
		sub.Confirm = core.AlwaysConfirm
	}

	logger.Debug("submission ready",
		zap.String("cluster", config.Name),
		zap.Int("nodes", len(clients)),
		zap.Uint8("chain_id", cluster.ChainId()))

	return sub, nil
}

// Write one line per work item to standard output, a summary to standard
// error and, if asked, the run to the result directory.
func (a *submitArgs) report(workload string, lines []string, elapsed time.Duration) error {
	out := bufio.NewWriter(os.Stdout)

	for _, line := range lines {
		if _, err := fmt.Fprintln(out, line); err != nil {
			return err
		}
	}

	if err := out.Flush(); err != nil {
		return err
	}

	r := results.CalculateResults(workload, lines, workloads.StatusSuccess, elapsed)

	summary := color.GreenString
	if r.Count(workloads.StatusSuccess) < r.Total {
		summary = color.YellowString
	}

	fmt.Fprintln(os.Stderr, summary("%d/%d transactions succeeded in %.1fs (%.1f txn/s)",
		r.Count(workloads.StatusSuccess), r.Total, r.Elapsed, r.Throughput))

	for _, status := range r.SortedStatuses() {
		if status != workloads.StatusSuccess {
			fmt.Fprintf(os.Stderr, "  %-10s %d\n", status, r.Count(status))
		}
	}

	if a.resultDir == "" {
		return nil
	}

	path, err := results.WriteResultsToFile(a.clusterConfigPath, r, lines, a.resultDir)
	if err != nil {
		return fmt.Errorf("failed to write results: %w", err)
	}

	logger.Info("results written", zap.String("path", path))

	return nil
}
