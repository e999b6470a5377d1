package aptos

import (
	"fmt"

	"golang.org/x/crypto/sha3"

	"github.com/novifinancial/serde-reflection/serde-generate/runtime/golang/bcs"
	"github.com/novifinancial/serde-reflection/serde-generate/runtime/golang/serde"
)

const (
	payload_variant_entry_function uint32 = 2

	authenticator_variant_ed25519 uint32 = 0

	rawTransactionSalt = "APTOS::RawTransaction"
)

type ModuleId struct {
	Address AccountAddress
	Name    string
}

func NewModuleId(address AccountAddress, name string) ModuleId {
	return ModuleId{
		Address: address,
		Name:    name,
	}
}

func (this ModuleId) String() string {
	return this.Address.StandardString() + "::" + this.Name
}

func (this *ModuleId) Serialize(serializer serde.Serializer) error {
	var err error

	err = this.Address.Serialize(serializer)
	if err != nil {
		return err
	}

	return serializer.SerializeStr(this.Name)
}

// A call to a public entry function. The arguments are already BCS encoded
// by the caller, one byte string per Move parameter.
type EntryFunction struct {
	Module   ModuleId
	Function string
	Args     [][]byte
}

func NewEntryFunction(module ModuleId, function string, args [][]byte) EntryFunction {
	if args == nil {
		args = [][]byte{}
	}

	return EntryFunction{
		Module:   module,
		Function: function,
		Args:     args,
	}
}

func (this *EntryFunction) Serialize(serializer serde.Serializer) error {
	var arg []byte
	var err error

	err = this.Module.Serialize(serializer)
	if err != nil {
		return err
	}

	err = serializer.SerializeStr(this.Function)
	if err != nil {
		return err
	}

	// Type arguments: none of the workload entry points are generic.
	err = serializer.SerializeLen(0)
	if err != nil {
		return err
	}

	err = serializer.SerializeLen(uint64(len(this.Args)))
	if err != nil {
		return err
	}

	for _, arg = range this.Args {
		err = serializer.SerializeBytes(arg)
		if err != nil {
			return err
		}
	}

	return nil
}

type TransactionPayload interface {
	isTransactionPayload()
	Serialize(serializer serde.Serializer) error
}

type TransactionPayload__EntryFunction struct {
	Value EntryFunction
}

func (*TransactionPayload__EntryFunction) isTransactionPayload() {}

func (this *TransactionPayload__EntryFunction) Serialize(serializer serde.Serializer) error {
	var err error

	err = serializer.SerializeVariantIndex(payload_variant_entry_function)
	if err != nil {
		return err
	}

	return this.Value.Serialize(serializer)
}

type RawTransaction struct {
	Sender                  AccountAddress
	SequenceNumber          uint64
	Payload                 TransactionPayload
	MaxGasAmount            uint64
	GasUnitPrice            uint64
	ExpirationTimestampSecs uint64
	ChainId                 uint8
}

func (this *RawTransaction) Serialize(serializer serde.Serializer) error {
	var err error

	if this.Payload == nil {
		return fmt.Errorf("raw transaction has no payload")
	}

	err = this.Sender.Serialize(serializer)
	if err != nil {
		return err
	}

	err = serializer.SerializeU64(this.SequenceNumber)
	if err != nil {
		return err
	}

	err = this.Payload.Serialize(serializer)
	if err != nil {
		return err
	}

	err = serializer.SerializeU64(this.MaxGasAmount)
	if err != nil {
		return err
	}

	err = serializer.SerializeU64(this.GasUnitPrice)
	if err != nil {
		return err
	}

	err = serializer.SerializeU64(this.ExpirationTimestampSecs)
	if err != nil {
		return err
	}

	return serializer.SerializeU8(this.ChainId)
}

func (this *RawTransaction) BcsSerialize() ([]byte, error) {
	var serializer serde.Serializer = bcs.NewSerializer()
	var err error

	err = this.Serialize(serializer)
	if err != nil {
		return nil, err
	}

	return serializer.GetBytes(), nil
}

// The bytes an account signs: a domain separating hash prefix followed by
// the BCS encoding of the raw transaction.
func (this *RawTransaction) SigningMessage() ([]byte, error) {
	var prefix [32]byte
	var raw []byte
	var err error

	raw, err = this.BcsSerialize()
	if err != nil {
		return nil, err
	}

	prefix = sha3.Sum256([]byte(rawTransactionSalt))

	return append(prefix[:], raw...), nil
}

type SignedTransaction struct {
	RawTxn    RawTransaction
	PublicKey []byte
	Signature []byte
}

func (this *SignedTransaction) Serialize(serializer serde.Serializer) error {
	var err error

	err = this.RawTxn.Serialize(serializer)
	if err != nil {
		return err
	}

	err = serializer.SerializeVariantIndex(authenticator_variant_ed25519)
	if err != nil {
		return err
	}

	err = serializer.SerializeBytes(this.PublicKey)
	if err != nil {
		return err
	}

	return serializer.SerializeBytes(this.Signature)
}

func (this *SignedTransaction) BcsSerialize() ([]byte, error) {
	var serializer serde.Serializer = bcs.NewSerializer()
	var err error

	err = this.Serialize(serializer)
	if err != nil {
		return nil, err
	}

	return serializer.GetBytes(), nil
}

func (this *SignedTransaction) Sender() AccountAddress {
	return this.RawTxn.Sender
}

// Return the entry function carried by this transaction or nil if the
// payload is of another kind.
func (this *SignedTransaction) EntryFunction() *EntryFunction {
	var payload *TransactionPayload__EntryFunction
	var ok bool

	payload, ok = this.RawTxn.Payload.(*TransactionPayload__EntryFunction)
	if !ok {
		return nil
	}

	return &payload.Value
}

func (this *SignedTransaction) getName() string {
	return fmt.Sprintf("%s:%d", this.RawTxn.Sender.StandardString(),
		this.RawTxn.SequenceNumber)
}
