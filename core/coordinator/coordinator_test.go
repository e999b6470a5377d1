package coordinator

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/sha3"

	"bulk-txn-submit/blockchains/aptos"
	"bulk-txn-submit/workloads"
)

const testSeed = "0xf5981d1c9cbdc1e0e570d19d833e0db96af31d3b65f6b67f8e5b2ab7afc5ffc8"

// In memory ledger: accepted transactions are included on the first poll
// after submission.
type fakeLedger struct {
	mutex     sync.Mutex
	sequences map[aptos.AccountAddress]uint64
	txns      map[common.Hash]*aptos.Transaction
	polled    map[common.Hash]bool
	submitted int
	maxBatch  int
	inflight  int
	reject    func(stx *aptos.SignedTransaction) bool
	abort     func(stx *aptos.SignedTransaction) bool
	include   bool

	// With gaps, a rejected sequence number blocks the higher ones of the
	// same sender until the account is read again.
	gaps    bool
	blocked map[aptos.AccountAddress]uint64
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		sequences: make(map[aptos.AccountAddress]uint64),
		txns:      make(map[common.Hash]*aptos.Transaction),
		polled:    make(map[common.Hash]bool),
		include:   true,
		blocked:   make(map[aptos.AccountAddress]uint64),
	}
}

func (this *fakeLedger) GetAccount(ctx context.Context, address aptos.AccountAddress) (*aptos.AccountData, error) {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	if sequence, ok := this.blocked[address]; ok {
		delete(this.blocked, address)
		this.sequences[address] = sequence
	}

	return &aptos.AccountData{SequenceNumber: this.sequences[address]}, nil
}

func (this *fakeLedger) SubmitBcs(ctx context.Context, stx *aptos.SignedTransaction) (*aptos.PendingTransaction, error) {
	raw, err := stx.BcsSerialize()
	if err != nil {
		return nil, err
	}

	this.mutex.Lock()
	defer this.mutex.Unlock()

	if this.reject != nil && this.reject(stx) {
		if this.gaps {
			lowest, ok := this.blocked[stx.Sender()]
			if !ok || stx.RawTxn.SequenceNumber < lowest {
				this.blocked[stx.Sender()] = stx.RawTxn.SequenceNumber
			}
		}
		return nil, &aptos.ApiError{Status: http.StatusBadRequest, Message: "rejected"}
	}

	sum := sha3.Sum256(raw)
	hash := common.BytesToHash(sum[:])

	success := this.abort == nil || !this.abort(stx)

	this.submitted += 1
	this.inflight += 1
	if this.inflight > this.maxBatch {
		this.maxBatch = this.inflight
	}

	if stx.RawTxn.SequenceNumber >= this.sequences[stx.Sender()] {
		this.sequences[stx.Sender()] = stx.RawTxn.SequenceNumber + 1
	}
	this.txns[hash] = &aptos.Transaction{
		Type:           "user_transaction",
		Hash:           hash,
		Success:        success,
		Sender:         stx.Sender().StandardString(),
		SequenceNumber: stx.RawTxn.SequenceNumber,
	}

	return &aptos.PendingTransaction{Hash: hash}, nil
}

func (this *fakeLedger) GetTransactionByHash(ctx context.Context, hash common.Hash) (*aptos.Transaction, error) {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	txn, ok := this.txns[hash]
	if !ok || !this.include {
		return nil, &aptos.ApiError{Status: http.StatusNotFound, Message: "not found"}
	}

	address, _ := aptos.ParseAddressRelaxed(txn.Sender)
	if lowest, blocked := this.blocked[address]; blocked && txn.SequenceNumber > lowest {
		return nil, &aptos.ApiError{Status: http.StatusNotFound, Message: "not found"}
	}

	if !this.polled[hash] {
		this.polled[hash] = true
		return &aptos.Transaction{Type: "pending_transaction", Hash: hash}, nil
	}

	if this.inflight > 0 {
		this.inflight -= 1
	}

	return txn, nil
}

// Work items are integers; negative items cannot be built.
type intBuilder struct{}

func (intBuilder) Build(item int, account *aptos.LocalAccount, factory *aptos.TransactionFactory) (*aptos.SignedTransaction, error) {
	if item < 0 {
		return nil, errors.New("negative item")
	}

	arg := []byte(strconv.Itoa(item))
	module := aptos.NewModuleId(aptos.AccountAddress{1}, "test")

	return account.SignWithTransactionBuilder(factory.EntryFunction(
		aptos.NewEntryFunction(module, "run", [][]byte{arg})))
}

func (intBuilder) SuccessOutput(item int, out *aptos.Transaction) string {
	outcome := workloads.Summarize(out)
	return workloads.FormatLine(strconv.Itoa(item), outcome.Status)
}

func testAccount(t *testing.T) *aptos.LocalAccount {
	account, err := aptos.LocalAccountFromHexSeed(testSeed)
	require.NoError(t, err)
	return account
}

func run(t *testing.T, ledger *fakeLedger, work []int, batch int, factory *aptos.TransactionFactory) ([]string, error) {
	return ExecuteTxnList[int](context.Background(), zaptest.NewLogger(t),
		[]*aptos.LocalAccount{testAccount(t)}, []LedgerClient{ledger, ledger},
		work, batch, time.Millisecond, factory, intBuilder{})
}

func TestExecuteTxnList(t *testing.T) {
	ledger := newFakeLedger()
	account := testAccount(t)
	ledger.sequences[account.Address()] = 40

	work := make([]int, 25)
	for i := range work {
		work[i] = i
	}

	lines, err := run(t, ledger, work, 10, aptos.NewTransactionFactory(4))
	require.NoError(t, err)

	require.Len(t, lines, len(work))
	for i, line := range lines {
		assert.Equal(t, fmt.Sprintf("%d\tsuccess", i), line)
	}

	assert.Equal(t, 25, ledger.submitted)
	assert.LessOrEqual(t, ledger.maxBatch, 10)
	assert.Equal(t, uint64(65), ledger.sequences[account.Address()])
}

func TestExecuteTxnListPartialFailures(t *testing.T) {
	ledger := newFakeLedger()
	ledger.reject = func(stx *aptos.SignedTransaction) bool {
		return string(stx.EntryFunction().Args[0]) == "2"
	}
	ledger.abort = func(stx *aptos.SignedTransaction) bool {
		return string(stx.EntryFunction().Args[0]) == "3"
	}

	lines, err := run(t, ledger, []int{0, 1, 2, 3, -1, 5}, 3, aptos.NewTransactionFactory(4))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"0\tsuccess",
		"1\tsuccess",
		"2\tfailure",
		"3\taborted",
		"-1\tfailure",
		"5\tsuccess",
	}, lines)
}

func TestExecuteTxnListRejectedBlocksBatch(t *testing.T) {
	ledger := newFakeLedger()
	ledger.gaps = true
	ledger.reject = func(stx *aptos.SignedTransaction) bool {
		return string(stx.EntryFunction().Args[0]) == "1"
	}

	factory := aptos.NewTransactionFactory(4).WithExpirationDelay(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	lines, err := ExecuteTxnList[int](ctx, zaptest.NewLogger(t),
		[]*aptos.LocalAccount{testAccount(t)}, []LedgerClient{ledger},
		[]int{0, 1, 2, 3}, 3, time.Millisecond, factory, intBuilder{})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"0\tsuccess",
		"1\tfailure",
		"2\tfailure",
		"3\tsuccess",
	}, lines)
}

func TestExecuteTxnListExpired(t *testing.T) {
	ledger := newFakeLedger()
	ledger.include = false

	factory := aptos.NewTransactionFactory(4).WithClock(func() time.Time {
		return time.Now().Add(-time.Hour)
	})

	lines, err := run(t, ledger, []int{0, 1}, 10, factory)
	require.NoError(t, err)

	assert.Equal(t, []string{"0\tfailure", "1\tfailure"}, lines)
}

func TestExecuteTxnListEmpty(t *testing.T) {
	lines, err := run(t, newFakeLedger(), nil, 10, aptos.NewTransactionFactory(4))
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestExecuteTxnListInvalidArguments(t *testing.T) {
	ctx := context.Background()
	logger := zaptest.NewLogger(t)
	factory := aptos.NewTransactionFactory(4)
	accounts := []*aptos.LocalAccount{testAccount(t)}
	clients := []LedgerClient{newFakeLedger()}

	_, err := ExecuteTxnList[int](ctx, logger, nil, clients, []int{1}, 10,
		time.Millisecond, factory, intBuilder{})
	assert.Error(t, err)

	_, err = ExecuteTxnList[int](ctx, logger, accounts, nil, []int{1}, 10,
		time.Millisecond, factory, intBuilder{})
	assert.Error(t, err)

	_, err = ExecuteTxnList[int](ctx, logger, accounts, clients, []int{1}, 0,
		time.Millisecond, factory, intBuilder{})
	assert.Error(t, err)
}

func TestExecuteTxnListCancelled(t *testing.T) {
	ledger := newFakeLedger()
	ledger.include = false

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := ExecuteTxnList[int](ctx, zaptest.NewLogger(t),
		[]*aptos.LocalAccount{testAccount(t)}, []LedgerClient{ledger},
		[]int{0}, 10, time.Millisecond, aptos.NewTransactionFactory(4),
		intBuilder{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestAssignedIndices(t *testing.T) {
	assert.Equal(t, []int{0, 3, 6}, assignedIndices(0, 3, 7))
	assert.Equal(t, []int{1, 4}, assignedIndices(1, 3, 7))
	assert.Equal(t, []int{2, 5}, assignedIndices(2, 3, 7))
	assert.Empty(t, assignedIndices(1, 2, 1))
}
