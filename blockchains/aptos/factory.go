package aptos

import (
	"time"
)

const (
	defaultGasUnitPrice = 100

	defaultMaxGasAmount = 1_000_000

	defaultExpirationDelay = 30 * time.Second
)

// Binds the chain identifier and the fee parameters into transaction
// envelopes. Values are immutable: every `With` method returns a copy so a
// factory can be shared across goroutines.
type TransactionFactory struct {
	chainId         uint8
	gasUnitPrice    uint64
	maxGasAmount    uint64
	expirationDelay time.Duration
	clock           func() time.Time
}

func NewTransactionFactory(chainId uint8) *TransactionFactory {
	return &TransactionFactory{
		chainId:         chainId,
		gasUnitPrice:    defaultGasUnitPrice,
		maxGasAmount:    defaultMaxGasAmount,
		expirationDelay: defaultExpirationDelay,
		clock:           time.Now,
	}
}

func (this *TransactionFactory) clone() *TransactionFactory {
	var ret TransactionFactory = *this
	return &ret
}

func (this *TransactionFactory) WithGasUnitPrice(price uint64) *TransactionFactory {
	var ret *TransactionFactory = this.clone()
	ret.gasUnitPrice = price
	return ret
}

func (this *TransactionFactory) WithMaxGasAmount(amount uint64) *TransactionFactory {
	var ret *TransactionFactory = this.clone()
	ret.maxGasAmount = amount
	return ret
}

func (this *TransactionFactory) WithExpirationDelay(delay time.Duration) *TransactionFactory {
	var ret *TransactionFactory = this.clone()
	ret.expirationDelay = delay
	return ret
}

// Replace the wall clock used to compute expiration timestamps.
func (this *TransactionFactory) WithClock(clock func() time.Time) *TransactionFactory {
	var ret *TransactionFactory = this.clone()
	ret.clock = clock
	return ret
}

func (this *TransactionFactory) ChainId() uint8 {
	return this.chainId
}

func (this *TransactionFactory) GasUnitPrice() uint64 {
	return this.gasUnitPrice
}

func (this *TransactionFactory) MaxGasAmount() uint64 {
	return this.maxGasAmount
}

func (this *TransactionFactory) ExpirationDelay() time.Duration {
	return this.expirationDelay
}

func (this *TransactionFactory) EntryFunction(fun EntryFunction) *TransactionBuilder {
	return &TransactionBuilder{
		payload:      &TransactionPayload__EntryFunction{fun},
		maxGasAmount: this.maxGasAmount,
		gasUnitPrice: this.gasUnitPrice,
		expiration:   uint64(this.clock().Add(this.expirationDelay).Unix()),
		chainId:      this.chainId,
	}
}

type TransactionBuilder struct {
	sender       AccountAddress
	sequence     uint64
	payload      TransactionPayload
	maxGasAmount uint64
	gasUnitPrice uint64
	expiration   uint64
	chainId      uint8
}

func (this *TransactionBuilder) Sender(sender AccountAddress) *TransactionBuilder {
	this.sender = sender
	return this
}

func (this *TransactionBuilder) SequenceNumber(sequence uint64) *TransactionBuilder {
	this.sequence = sequence
	return this
}

func (this *TransactionBuilder) Build() RawTransaction {
	return RawTransaction{
		Sender:                  this.sender,
		SequenceNumber:          this.sequence,
		Payload:                 this.payload,
		MaxGasAmount:            this.maxGasAmount,
		GasUnitPrice:            this.gasUnitPrice,
		ExpirationTimestampSecs: this.expiration,
		ChainId:                 this.chainId,
	}
}
