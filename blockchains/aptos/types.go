package aptos

import (
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

const (
	transaction_type_user    = "user_transaction"
	transaction_type_pending = "pending_transaction"
)

type LedgerInfo struct {
	ChainId       uint8  `json:"chain_id"`
	Epoch         uint64 `json:"epoch,string"`
	LedgerVersion uint64 `json:"ledger_version,string"`
	BlockHeight   uint64 `json:"block_height,string"`
}

type AccountData struct {
	SequenceNumber    uint64 `json:"sequence_number,string"`
	AuthenticationKey string `json:"authentication_key"`
}

type PendingTransaction struct {
	Hash                    common.Hash `json:"hash"`
	Sender                  string      `json:"sender"`
	SequenceNumber          uint64      `json:"sequence_number,string"`
	ExpirationTimestampSecs uint64      `json:"expiration_timestamp_secs,string"`
}

type EventGuid struct {
	CreationNumber string `json:"creation_number"`
	AccountAddress string `json:"account_address"`
}

type Event struct {
	Guid           *EventGuid      `json:"guid,omitempty"`
	SequenceNumber uint64          `json:"sequence_number,string"`
	Type           string          `json:"type"`
	Data           json.RawMessage `json:"data"`
}

// A transaction as reported by the ledger once it is known to a node.
// Only user transactions carry a sender; other kinds (block metadata,
// state checkpoints, genesis) leave it empty.
type Transaction struct {
	Type                    string      `json:"type"`
	Hash                    common.Hash `json:"hash"`
	Version                 uint64      `json:"version,string"`
	Success                 bool        `json:"success"`
	VmStatus                string      `json:"vm_status"`
	Sender                  string      `json:"sender"`
	SequenceNumber          uint64      `json:"sequence_number,string"`
	ExpirationTimestampSecs uint64      `json:"expiration_timestamp_secs,string"`
	Events                  []Event     `json:"events"`
}

type UserTransaction struct {
	Sender         AccountAddress
	SequenceNumber uint64
}

func (this *Transaction) IsPending() bool {
	return this.Type == transaction_type_pending
}

// Interpret this transaction as a signed user transaction.
func (this *Transaction) UserTransaction() (*UserTransaction, error) {
	var sender AccountAddress
	var err error

	if this.Type != transaction_type_user {
		return nil, fmt.Errorf("transaction %s is not a user "+
			"transaction (%s)", this.Hash.Hex(), this.Type)
	}

	if this.Sender == "" {
		return nil, fmt.Errorf("transaction %s has no sender",
			this.Hash.Hex())
	}

	sender, err = ParseAddressRelaxed(this.Sender)
	if err != nil {
		return nil, fmt.Errorf("transaction %s has invalid sender: %w",
			this.Hash.Hex(), err)
	}

	return &UserTransaction{
		Sender:         sender,
		SequenceNumber: this.SequenceNumber,
	}, nil
}

type ApiError struct {
	Status      int    `json:"-"`
	Message     string `json:"message"`
	ErrorCode   string `json:"error_code"`
	VmErrorCode *int   `json:"vm_error_code,omitempty"`
}

func (this *ApiError) Error() string {
	if this.VmErrorCode != nil {
		return fmt.Sprintf("api error %d (%s, vm error %d): %s",
			this.Status, this.ErrorCode, *this.VmErrorCode,
			this.Message)
	}

	return fmt.Sprintf("api error %d (%s): %s", this.Status,
		this.ErrorCode, this.Message)
}
