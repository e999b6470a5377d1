// Package coordinator fans work items out over source accounts and ledger
// nodes, submits their transactions in batches and collects the result
// line of every item.
package coordinator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"bulk-txn-submit/blockchains/aptos"
	"bulk-txn-submit/workloads"
)

// LedgerClient is the part of a node client the coordinator uses.
// *aptos.Client implements it.
type LedgerClient interface {
	GetAccount(ctx context.Context, address aptos.AccountAddress) (*aptos.AccountData, error)

	SubmitBcs(ctx context.Context, stx *aptos.SignedTransaction) (*aptos.PendingTransaction, error)

	GetTransactionByHash(ctx context.Context, hash common.Hash) (*aptos.Transaction, error)
}

type executor[T any] struct {
	logger       *zap.Logger
	clients      []LedgerClient
	work         []T
	batch        int
	pollInterval time.Duration
	factory      *aptos.TransactionFactory
	builder      workloads.SignedTransactionBuilder[T]
	outcomes     []*aptos.Transaction
	clock        func() time.Time
}

type submission struct {
	index    int
	stx      *aptos.SignedTransaction
	hash     common.Hash
	rejected bool
	done     bool
}

// ExecuteTxnList builds one transaction per work item, submits them and
// returns the result line of each item, in work order.
//
// Work is split round robin over `accounts`. Each account sends at most
// `maxSubmitBatch` transactions at a time and waits, polling every
// `pollInterval`, for the whole batch to be included or expired before the
// next one. Items whose transaction cannot be built, submitted or included
// are reported with a nil outcome; only account synchronization errors and
// context cancellation abort the run.
func ExecuteTxnList[T any](ctx context.Context, logger *zap.Logger, accounts []*aptos.LocalAccount, clients []LedgerClient, work []T, maxSubmitBatch int, pollInterval time.Duration, factory *aptos.TransactionFactory, builder workloads.SignedTransactionBuilder[T]) ([]string, error) {
	var this *executor[T]
	var group *errgroup.Group
	var gctx context.Context
	var lines []string
	var err error
	var i int

	if len(accounts) == 0 {
		return nil, fmt.Errorf("no source account")
	}

	if len(clients) == 0 {
		return nil, fmt.Errorf("no ledger client")
	}

	if maxSubmitBatch < 1 {
		return nil, fmt.Errorf("invalid batch size %d", maxSubmitBatch)
	}

	this = &executor[T]{
		logger:       logger,
		clients:      clients,
		work:         work,
		batch:        maxSubmitBatch,
		pollInterval: pollInterval,
		factory:      factory,
		builder:      builder,
		outcomes:     make([]*aptos.Transaction, len(work)),
		clock:        time.Now,
	}

	group, gctx = errgroup.WithContext(ctx)

	for i = range accounts {
		account := accounts[i]
		indices := assignedIndices(i, len(accounts), len(work))

		group.Go(func() error {
			return this.runAccount(gctx, account, indices)
		})
	}

	err = group.Wait()
	if err != nil {
		return nil, err
	}

	lines = make([]string, len(work))
	for i = range work {
		lines[i] = builder.SuccessOutput(work[i], this.outcomes[i])
	}

	return lines, nil
}

func assignedIndices(account, naccount, nwork int) []int {
	var ret []int = make([]int, 0, nwork/naccount+1)
	var i int

	for i = account; i < nwork; i += naccount {
		ret = append(ret, i)
	}

	return ret
}

func (this *executor[T]) client(index int) LedgerClient {
	return this.clients[index%len(this.clients)]
}

func (this *executor[T]) syncSequence(ctx context.Context, account *aptos.LocalAccount, index int) error {
	var data *aptos.AccountData
	var err error

	data, err = this.client(index).GetAccount(ctx, account.Address())
	if err != nil {
		return fmt.Errorf("cannot read account %s: %w",
			account.Address(), err)
	}

	account.SetSequenceNumber(data.SequenceNumber)

	return nil
}

func (this *executor[T]) runAccount(ctx context.Context, account *aptos.LocalAccount, indices []int) error {
	var subs []*submission
	var start, end int
	var err error

	if len(indices) == 0 {
		return nil
	}

	err = this.syncSequence(ctx, account, indices[0])
	if err != nil {
		return err
	}

	for start = 0; start < len(indices); start = end {
		end = start + this.batch
		if end > len(indices) {
			end = len(indices)
		}

		subs = this.buildBatch(account, indices[start:end])

		this.submitBatch(ctx, subs)

		err = this.waitBatch(ctx, subs)
		if err != nil {
			return err
		}

		// Failed submissions leave holes in the sequence.
		err = this.syncSequence(ctx, account, indices[start])
		if err != nil {
			return err
		}
	}

	return nil
}

func (this *executor[T]) buildBatch(account *aptos.LocalAccount, indices []int) []*submission {
	var ret []*submission = make([]*submission, 0, len(indices))
	var stx *aptos.SignedTransaction
	var index int
	var err error

	for _, index = range indices {
		stx, err = this.builder.Build(this.work[index], account,
			this.factory)
		if err != nil {
			this.logger.Warn("cannot build transaction",
				zap.Int("item", index), zap.Error(err))
			continue
		}

		account.IncrementSequenceNumber()

		ret = append(ret, &submission{
			index: index,
			stx:   stx,
		})
	}

	return ret
}

func (this *executor[T]) submitBatch(ctx context.Context, subs []*submission) {
	var wg sync.WaitGroup
	var sub *submission

	for _, sub = range subs {
		wg.Add(1)

		go func(sub *submission) {
			var pending *aptos.PendingTransaction
			var err error

			defer wg.Done()

			pending, err = this.client(sub.index).
				SubmitBcs(ctx, sub.stx)
			if err != nil {
				this.logger.Warn("cannot submit transaction",
					zap.Int("item", sub.index),
					zap.Error(err))
				sub.rejected = true
				sub.done = true
				return
			}

			sub.hash = pending.Hash
		}(sub)
	}

	wg.Wait()

	skipBlocked(this.logger, subs)
}

// A batch comes from a single account: once a sequence number is rejected,
// the ledger never executes the higher ones of the same batch. Stop
// waiting for them.
func skipBlocked(logger *zap.Logger, subs []*submission) {
	var lowest uint64
	var found bool
	var sub *submission

	for _, sub = range subs {
		if !sub.rejected {
			continue
		}

		if !found || (sub.stx.RawTxn.SequenceNumber < lowest) {
			lowest = sub.stx.RawTxn.SequenceNumber
			found = true
		}
	}

	if !found {
		return
	}

	for _, sub = range subs {
		if sub.done || (sub.stx.RawTxn.SequenceNumber < lowest) {
			continue
		}

		logger.Debug("transaction blocked by rejected predecessor",
			zap.Int("item", sub.index),
			zap.Uint64("sequence", sub.stx.RawTxn.SequenceNumber),
			zap.Uint64("rejected", lowest))
		sub.done = true
	}
}

func (this *executor[T]) waitBatch(ctx context.Context, subs []*submission) error {
	var txn *aptos.Transaction
	var sub *submission
	var remaining int
	var err error

	for {
		remaining = 0

		for _, sub = range subs {
			if sub.done {
				continue
			}

			txn, err = this.client(sub.index).
				GetTransactionByHash(ctx, sub.hash)
			if err == nil && !txn.IsPending() {
				this.outcomes[sub.index] = txn
				sub.done = true
				continue
			}

			if err != nil && !aptos.IsNotFound(err) {
				this.logger.Debug("cannot poll transaction",
					zap.Int("item", sub.index),
					zap.Error(err))
			}

			if uint64(this.clock().Unix()) >
				sub.stx.RawTxn.ExpirationTimestampSecs {
				this.logger.Warn("transaction expired",
					zap.Int("item", sub.index),
					zap.String("hash", sub.hash.Hex()))
				sub.done = true
				continue
			}

			remaining += 1
		}

		if remaining == 0 {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(this.pollInterval):
		}
	}
}
