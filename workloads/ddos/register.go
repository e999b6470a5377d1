package ddos

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"bulk-txn-submit/blockchains/aptos"
)

// Submitter submits a transaction and blocks until the ledger includes it.
// *aptos.Client implements it.
type Submitter interface {
	SubmitAndWaitBcs(ctx context.Context, stx *aptos.SignedTransaction) (*aptos.Transaction, error)
}

type CreateUserCounterEvent struct {
	UserCounter aptos.AccountAddress `json:"user_counter"`
}

func CreateUserCounterEventType(contract aptos.AccountAddress) string {
	return ModuleId(contract).String() + "::" + EventCreateUserCounter
}

// RegisterUserCounter creates a new user counter object and returns its
// address, read from the event emitted by the creating transaction.
// Every call submits a new transaction and creates a new counter.
// The only deadline is the one carried by `ctx`.
func RegisterUserCounter(ctx context.Context, logger *zap.Logger, contract aptos.AccountAddress, account *aptos.LocalAccount, client Submitter, factory *aptos.TransactionFactory) (aptos.AccountAddress, error) {
	var event CreateUserCounterEvent
	var stx *aptos.SignedTransaction
	var none aptos.AccountAddress
	var txn *aptos.Transaction
	var eventType string
	var err error

	stx, err = account.SignWithTransactionBuilder(factory.EntryFunction(
		aptos.NewEntryFunction(ModuleId(contract),
			FunctionNewUserCounter, nil)))
	if err != nil {
		return none, fmt.Errorf("cannot sign %s: %w",
			FunctionNewUserCounter, err)
	}

	txn, err = client.SubmitAndWaitBcs(ctx, stx)
	if err != nil {
		return none, fmt.Errorf("%s from %s (sequence %d) failed: %w",
			FunctionNewUserCounter, account.Address(),
			stx.RawTxn.SequenceNumber, err)
	}

	if !txn.Success {
		return none, fmt.Errorf("%s transaction %s (version %d) "+
			"failed: %s", FunctionNewUserCounter, txn.Hash.Hex(),
			txn.Version, txn.VmStatus)
	}

	logger.Info("new_user_counter txn committed",
		zap.String("hash", txn.Hash.Hex()),
		zap.Uint64("version", txn.Version),
		zap.String("vm_status", txn.VmStatus),
		zap.Int("events", len(txn.Events)))

	eventType = CreateUserCounterEventType(contract)

	err = aptos.SearchSingleEventData(txn.Events, eventType, &event)
	if err != nil {
		return none, fmt.Errorf("%s transaction %s: %w",
			FunctionNewUserCounter, txn.Hash.Hex(), err)
	}

	return event.UserCounter, nil
}
