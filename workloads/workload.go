// Package workloads defines how a workload turns work items into signed
// transactions and how it reports what happened to them.
package workloads

import (
	"fmt"
	"strings"

	"bulk-txn-submit/blockchains/aptos"
)

const (
	DefaultClickrAddress = "0xff9659c0da82a6701e5641584a05ca03576bed4c994ab677dd6d12fe679f6615"
	DefaultDdosAddress   = "0x66398cf97d29fd3825f65b37cb2773268e5438d37e20777e6a98261da0cf1f1e"
)

// Status tokens of a result line.
const (
	StatusSuccess   = "success"
	StatusFailure   = "failure"
	StatusAborted   = "aborted"
	StatusMalformed = "malformed"
)

// SignedTransactionBuilder produces the transaction for one work item and
// formats the result line for it.
//
// Build must not perform I/O nor modify the account: the caller owns the
// sequence number and advances it after a successful build.
// SuccessOutput receives nil when the transaction was not submitted or not
// included. Both methods are called concurrently.
type SignedTransactionBuilder[T any] interface {
	Build(item T, account *aptos.LocalAccount, factory *aptos.TransactionFactory) (*aptos.SignedTransaction, error)

	SuccessOutput(item T, out *aptos.Transaction) string
}

// Unit is the work item of workloads whose transactions carry no
// per-item data.
type Unit struct{}

func UnitWork(n int) []Unit {
	return make([]Unit, n)
}

// Contracts holds the addresses the workload modules are published at.
type Contracts struct {
	Clickr aptos.AccountAddress
	Ddos   aptos.AccountAddress
}

// ParseContracts parses contract addresses strictly. An empty string
// selects the well-known deployment.
func ParseContracts(clickr, ddos string) (Contracts, error) {
	var ret Contracts
	var err error

	if clickr == "" {
		clickr = DefaultClickrAddress
	}

	if ddos == "" {
		ddos = DefaultDdosAddress
	}

	ret.Clickr, err = aptos.ParseAddressStrict(clickr)
	if err != nil {
		return ret, fmt.Errorf("invalid clickr contract address: %w",
			err)
	}

	ret.Ddos, err = aptos.ParseAddressStrict(ddos)
	if err != nil {
		return ret, fmt.Errorf("invalid ddos contract address: %w", err)
	}

	return ret, nil
}

// Outcome is the common part of every result line.
type Outcome struct {
	Sender string
	Status string
	Err    error
}

// Summarize reads the sender and status of an on-chain record. A record
// that is not a well formed user transaction yields StatusMalformed and the
// decoding error in Err.
func Summarize(out *aptos.Transaction) Outcome {
	var user *aptos.UserTransaction
	var err error

	if out == nil {
		return Outcome{Sender: "", Status: StatusFailure}
	}

	user, err = out.UserTransaction()
	if err != nil {
		return Outcome{Sender: "", Status: StatusMalformed, Err: err}
	}

	if !out.Success {
		return Outcome{
			Sender: user.Sender.StandardString(),
			Status: StatusAborted,
		}
	}

	return Outcome{
		Sender: user.Sender.StandardString(),
		Status: StatusSuccess,
	}
}

func FormatLine(fields ...string) string {
	return strings.Join(fields, "\t")
}
