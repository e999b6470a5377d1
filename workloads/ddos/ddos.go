// Package ddos drives the `ddos_coin` module: a setup call creates a user
// counter object, then every workload transaction increments it.
package ddos

import (
	"fmt"

	"go.uber.org/zap"

	"bulk-txn-submit/blockchains/aptos"
	"bulk-txn-submit/workloads"
)

const (
	ModuleName = "ddos_coin"

	FunctionNewUserCounter       = "new_user_counter"
	FunctionIncrementUserCounter = "increment_user_counter"

	EventCreateUserCounter = "CreateUserCounterEvent"
)

func ModuleId(contract aptos.AccountAddress) aptos.ModuleId {
	return aptos.NewModuleId(contract, ModuleName)
}

// IncrementBuilder signs one `increment_user_counter(counter)` call per
// work item.
type IncrementBuilder struct {
	logger  *zap.Logger
	module  aptos.ModuleId
	counter aptos.AccountAddress
	arg     []byte
}

// The counter address must already exist on chain, see
// RegisterUserCounter.
func NewIncrementBuilder(logger *zap.Logger, contract, counter aptos.AccountAddress) (*IncrementBuilder, error) {
	var arg []byte
	var err error

	arg, err = counter.BcsSerialize()
	if err != nil {
		return nil, fmt.Errorf("cannot encode counter address %s: %w",
			counter, err)
	}

	return &IncrementBuilder{
		logger:  logger,
		module:  ModuleId(contract),
		counter: counter,
		arg:     arg,
	}, nil
}

func (this *IncrementBuilder) Counter() aptos.AccountAddress {
	return this.counter
}

func (this *IncrementBuilder) Build(item workloads.Unit, account *aptos.LocalAccount, factory *aptos.TransactionFactory) (*aptos.SignedTransaction, error) {
	var arg []byte = make([]byte, len(this.arg))

	copy(arg, this.arg)

	return account.SignWithTransactionBuilder(factory.EntryFunction(
		aptos.NewEntryFunction(this.module,
			FunctionIncrementUserCounter, [][]byte{arg})))
}

// Result line: `sender<TAB>counter<TAB>status`.
func (this *IncrementBuilder) SuccessOutput(item workloads.Unit, out *aptos.Transaction) string {
	var outcome workloads.Outcome = workloads.Summarize(out)

	if outcome.Err != nil {
		this.logger.Warn("unexpected increment record",
			zap.Error(outcome.Err))
	} else if outcome.Status == workloads.StatusAborted {
		this.logger.Debug("increment aborted",
			zap.String("sender", outcome.Sender),
			zap.String("vm_status", out.VmStatus))
	}

	return workloads.FormatLine(outcome.Sender,
		this.counter.StandardString(), outcome.Status)
}
