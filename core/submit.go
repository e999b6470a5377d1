package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"bulk-txn-submit/blockchains/aptos"
	"bulk-txn-submit/core/configs"
	"bulk-txn-submit/core/coordinator"
	"bulk-txn-submit/workloads"
	"bulk-txn-submit/workloads/clickr"
	"bulk-txn-submit/workloads/ddos"
)

const (
	MaxSubmitBatch = 10

	DefaultPollInterval = 100 * time.Millisecond
)

var ErrUserAborted = errors.New("user aborted")

// Ask the operator a yes/no question.
type Confirmer func(message string) (bool, error)

func AlwaysConfirm(string) (bool, error) {
	return true, nil
}

// Everything a workload run needs once the cluster is resolved.
type Submission struct {
	Logger         *zap.Logger
	Source         *aptos.LocalAccount
	Clients        []coordinator.LedgerClient
	Bootstrap      ddos.Submitter
	ChainId        uint8
	FactoryArgs    configs.TransactionFactoryArgs
	Contracts      workloads.Contracts
	MaxSubmitBatch int
	PollInterval   time.Duration
	Confirm        Confirmer
}

func (this *Submission) workloadFactory() *aptos.TransactionFactory {
	return this.FactoryArgs.WithParams(
		aptos.NewTransactionFactory(this.ChainId))
}

func (this *Submission) initFactory() *aptos.TransactionFactory {
	return this.FactoryArgs.WithInitParams(
		aptos.NewTransactionFactory(this.ChainId))
}

func (this *Submission) confirm(n int) error {
	var message string
	var ok bool
	var err error

	if this.Confirm == nil {
		return nil
	}

	message = fmt.Sprintf("About to submit %d transactions and spend "+
		"%g APT. Continue?", n, this.FactoryArgs.WorkloadCost(n))

	ok, err = this.Confirm(message)
	if err != nil {
		return err
	}

	if !ok {
		return ErrUserAborted
	}

	return nil
}

func unitWork(numTxns int) ([]workloads.Unit, error) {
	if numTxns < 0 {
		return nil, fmt.Errorf("invalid number of transactions %d",
			numTxns)
	}

	return workloads.UnitWork(numTxns), nil
}

func execute[T any](ctx context.Context, this *Submission, work []T, builder workloads.SignedTransactionBuilder[T]) ([]string, error) {
	var batch int = this.MaxSubmitBatch
	var poll time.Duration = this.PollInterval

	if batch == 0 {
		batch = MaxSubmitBatch
	}

	if poll == 0 {
		poll = DefaultPollInterval
	}

	return coordinator.ExecuteTxnList(ctx, this.Logger,
		[]*aptos.LocalAccount{this.Source}, this.Clients, work, batch,
		poll, this.workloadFactory(), builder)
}

func (this *Submission) ClickrPlay(ctx context.Context, numTxns int) ([]string, error) {
	var builder *clickr.PlayBuilder
	var work []workloads.Unit
	var err error

	work, err = unitWork(numTxns)
	if err != nil {
		return nil, err
	}

	builder = clickr.NewPlayBuilder(this.Logger, this.Contracts.Clickr)

	err = this.confirm(len(work))
	if err != nil {
		return nil, err
	}

	return execute[workloads.Unit](ctx, this, work, builder)
}

// Run the increment workload against `counter`, or against a new counter
// registered first when `counter` is nil.
func (this *Submission) DdosIncrement(ctx context.Context, numTxns int, counter *aptos.AccountAddress) ([]string, error) {
	var builder *ddos.IncrementBuilder
	var address aptos.AccountAddress
	var work []workloads.Unit
	var err error

	work, err = unitWork(numTxns)
	if err != nil {
		return nil, err
	}

	if counter != nil {
		address = *counter
		this.Logger.Info("use existing user counter",
			zap.String("counter", address.StandardString()))
	} else {
		if this.Bootstrap == nil {
			return nil, fmt.Errorf("no client to register a user " +
				"counter")
		}

		address, err = ddos.RegisterUserCounter(ctx, this.Logger,
			this.Contracts.Ddos, this.Source, this.Bootstrap,
			this.initFactory())
		if err != nil {
			return nil, fmt.Errorf("cannot register user counter: %w",
				err)
		}

		this.Logger.Info("registered user counter",
			zap.String("counter", address.StandardString()))
	}

	builder, err = ddos.NewIncrementBuilder(this.Logger,
		this.Contracts.Ddos, address)
	if err != nil {
		return nil, err
	}

	err = this.confirm(len(work))
	if err != nil {
		return nil, err
	}

	return execute[workloads.Unit](ctx, this, work, builder)
}
