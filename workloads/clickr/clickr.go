// Package clickr drives the `clickr::play` entry point.
package clickr

import (
	"go.uber.org/zap"

	"bulk-txn-submit/blockchains/aptos"
	"bulk-txn-submit/workloads"
)

const (
	ModuleName   = "clickr"
	FunctionPlay = "play"
)

func ModuleId(contract aptos.AccountAddress) aptos.ModuleId {
	return aptos.NewModuleId(contract, ModuleName)
}

// PlayBuilder signs one `play()` call per work item.
type PlayBuilder struct {
	logger *zap.Logger
	module aptos.ModuleId
}

func NewPlayBuilder(logger *zap.Logger, contract aptos.AccountAddress) *PlayBuilder {
	return &PlayBuilder{
		logger: logger,
		module: ModuleId(contract),
	}
}

func (this *PlayBuilder) Build(item workloads.Unit, account *aptos.LocalAccount, factory *aptos.TransactionFactory) (*aptos.SignedTransaction, error) {
	return account.SignWithTransactionBuilder(factory.EntryFunction(
		aptos.NewEntryFunction(this.module, FunctionPlay, nil)))
}

// Result line: `sender<TAB>status`.
func (this *PlayBuilder) SuccessOutput(item workloads.Unit, out *aptos.Transaction) string {
	var outcome workloads.Outcome = workloads.Summarize(out)

	if outcome.Err != nil {
		this.logger.Warn("unexpected play record", zap.Error(outcome.Err))
	}

	return workloads.FormatLine(outcome.Sender, outcome.Status)
}
