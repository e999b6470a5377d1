package aptos

import (
	"encoding/hex"
	"fmt"
	"strings"
	"sync/atomic"

	"golang.org/x/crypto/ed25519"
	"golang.org/x/crypto/sha3"
)

const ed25519_scheme uint8 = 0

// A ledger account whose private key is held locally.
// The sequence number is owned by whoever drives submissions for this
// account; signing never changes it.
type LocalAccount struct {
	address  AccountAddress
	key      ed25519.PrivateKey
	sequence uint64
}

func NewLocalAccount(key ed25519.PrivateKey, sequence uint64) *LocalAccount {
	return &LocalAccount{
		address:  AuthKeyAddress(key.Public().(ed25519.PublicKey)),
		key:      key,
		sequence: sequence,
	}
}

// Build an account from a hex encoded ed25519 seed, with or without `0x`.
func LocalAccountFromHexSeed(str string) (*LocalAccount, error) {
	var seed []byte
	var err error

	seed, err = hex.DecodeString(strings.TrimPrefix(str, "0x"))
	if err != nil {
		return nil, fmt.Errorf("failed to decode hex key: %w", err)
	}

	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("key must be %d bytes (got %d)",
			ed25519.SeedSize, len(seed))
	}

	return NewLocalAccount(ed25519.NewKeyFromSeed(seed), 0), nil
}

// Single key accounts live at the authentication key of their public key.
func AuthKeyAddress(public ed25519.PublicKey) AccountAddress {
	var material []byte

	material = make([]byte, 0, len(public)+1)
	material = append(material, public...)
	material = append(material, ed25519_scheme)

	return AccountAddress(sha3.Sum256(material))
}

func (this *LocalAccount) Address() AccountAddress {
	return this.address
}

func (this *LocalAccount) PublicKey() ed25519.PublicKey {
	return this.key.Public().(ed25519.PublicKey)
}

func (this *LocalAccount) SequenceNumber() uint64 {
	return atomic.LoadUint64(&this.sequence)
}

func (this *LocalAccount) SetSequenceNumber(sequence uint64) {
	atomic.StoreUint64(&this.sequence, sequence)
}

// Return the sequence number before the increment.
func (this *LocalAccount) IncrementSequenceNumber() uint64 {
	return atomic.AddUint64(&this.sequence, 1) - 1
}

func (this *LocalAccount) SignTransaction(raw RawTransaction) (*SignedTransaction, error) {
	var message []byte
	var err error

	message, err = raw.SigningMessage()
	if err != nil {
		return nil, err
	}

	return &SignedTransaction{
		RawTxn:    raw,
		PublicKey: []byte(this.PublicKey()),
		Signature: ed25519.Sign(this.key, message),
	}, nil
}

// Stamp the builder with this account address and current sequence number,
// then sign.
func (this *LocalAccount) SignWithTransactionBuilder(builder *TransactionBuilder) (*SignedTransaction, error) {
	var raw RawTransaction

	raw = builder.Sender(this.address).
		SequenceNumber(this.SequenceNumber()).
		Build()

	return this.SignTransaction(raw)
}
