package configs

import (
	"time"

	"bulk-txn-submit/blockchains/aptos"
)

// ClusterConfig contains the information about the ledger cluster file
type ClusterConfig struct {
	Name          string          `yaml:"name"`            // Name of the cluster (used in logs only)
	Nodes         []string        `yaml:"nodes"`           // REST endpoints of the nodes
	ChainId       uint8           `yaml:"chain_id"`        // Chain id, 0 to read it from the first node
	CoinSourceKey SourceKey       `yaml:"coin_source_key"` // Seed of the account paying for the workload
	Contracts     ContractsConfig `yaml:"contracts"`       // Overrides of the workload module addresses
}

// ContractsConfig holds the contract addresses in their textual form; an
// empty value selects the default deployment.
type ContractsConfig struct {
	Clickr string `yaml:"clickr"`
	Ddos   string `yaml:"ddos"`
}

const (
	// Max gas of setup transactions.
	initMaxGasAmount = 1_000_000

	DefaultGasPrice                    = 100
	DefaultInitGasPriceMultiplier      = 2
	DefaultOctasPerWorkloadTransaction = 100_000
	DefaultExpirationSecs              = 60
)

// TransactionFactoryArgs are the fee parameters of a run.
type TransactionFactoryArgs struct {
	GasPrice                    uint64 // Gas unit price of workload transactions
	InitGasPriceMultiplier      uint64 // Multiplier of the gas price for setup transactions
	OctasPerWorkloadTransaction uint64 // Budget of one workload transaction
	ExpirationSecs              uint64 // Lifetime of a transaction
}

func DefaultTransactionFactoryArgs() TransactionFactoryArgs {
	return TransactionFactoryArgs{
		GasPrice:                    DefaultGasPrice,
		InitGasPriceMultiplier:      DefaultInitGasPriceMultiplier,
		OctasPerWorkloadTransaction: DefaultOctasPerWorkloadTransaction,
		ExpirationSecs:              DefaultExpirationSecs,
	}
}

// WithParams configures a factory for workload transactions: the max gas
// is the budget divided by the gas price.
func (a TransactionFactoryArgs) WithParams(f *aptos.TransactionFactory) *aptos.TransactionFactory {
	var maxGas uint64

	if a.GasPrice > 0 {
		maxGas = a.OctasPerWorkloadTransaction / a.GasPrice
	}

	return f.WithGasUnitPrice(a.GasPrice).
		WithMaxGasAmount(maxGas).
		WithExpirationDelay(time.Duration(a.ExpirationSecs) * time.Second)
}

// WithInitParams configures a factory for setup transactions, which pay a
// higher gas price to be included before the workload.
func (a TransactionFactoryArgs) WithInitParams(f *aptos.TransactionFactory) *aptos.TransactionFactory {
	return f.WithGasUnitPrice(a.GasPrice * a.InitGasPriceMultiplier).
		WithMaxGasAmount(initMaxGasAmount).
		WithExpirationDelay(time.Duration(a.ExpirationSecs) * time.Second)
}

// Cost in APT of `n` workload transactions at full budget.
func (a TransactionFactoryArgs) WorkloadCost(n int) float64 {
	return float64(n) * float64(a.OctasPerWorkloadTransaction) / 1e8
}
