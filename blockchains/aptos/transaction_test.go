package aptos

import (
	"encoding/binary"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ed25519"
	"golang.org/x/crypto/sha3"
)

const testSeed = "0xf5981d1c9cbdc1e0e570d19d833e0db96af31d3b65f6b67f8e5b2ab7afc5ffc8"

func fixedClock() time.Time {
	return time.Unix(1_700_000_000, 0)
}

func testAccount(t *testing.T) *LocalAccount {
	account, err := LocalAccountFromHexSeed(testSeed)
	require.NoError(t, err)
	return account
}

func testEntryFunction() EntryFunction {
	var contract AccountAddress
	contract[AddressLength-1] = 1

	return NewEntryFunction(NewModuleId(contract, "clickr"), "play", nil)
}

func TestLocalAccountFromHexSeed(t *testing.T) {
	account := testAccount(t)

	public := account.PublicKey()
	material := append(append([]byte{}, public...), 0)
	assert.Equal(t, AccountAddress(sha3.Sum256(material)), account.Address())
	assert.Equal(t, uint64(0), account.SequenceNumber())

	_, err := LocalAccountFromHexSeed("0x1234")
	assert.Error(t, err)

	_, err = LocalAccountFromHexSeed("not hex")
	assert.Error(t, err)
}

func TestSequenceNumber(t *testing.T) {
	account := testAccount(t)

	account.SetSequenceNumber(7)
	assert.Equal(t, uint64(7), account.IncrementSequenceNumber())
	assert.Equal(t, uint64(8), account.SequenceNumber())
}

func TestFactoryIsCopyOnWrite(t *testing.T) {
	base := NewTransactionFactory(4)
	derived := base.WithGasUnitPrice(200).WithMaxGasAmount(500).
		WithExpirationDelay(time.Minute)

	assert.Equal(t, uint64(defaultGasUnitPrice), base.GasUnitPrice())
	assert.Equal(t, uint64(defaultMaxGasAmount), base.MaxGasAmount())
	assert.Equal(t, defaultExpirationDelay, base.ExpirationDelay())

	assert.Equal(t, uint8(4), derived.ChainId())
	assert.Equal(t, uint64(200), derived.GasUnitPrice())
	assert.Equal(t, uint64(500), derived.MaxGasAmount())
	assert.Equal(t, time.Minute, derived.ExpirationDelay())
}

func TestBuildRawTransaction(t *testing.T) {
	account := testAccount(t)
	account.SetSequenceNumber(3)

	factory := NewTransactionFactory(4).WithClock(fixedClock).
		WithExpirationDelay(60 * time.Second)

	stx, err := account.SignWithTransactionBuilder(
		factory.EntryFunction(testEntryFunction()))
	require.NoError(t, err)

	raw := stx.RawTxn
	assert.Equal(t, account.Address(), raw.Sender)
	assert.Equal(t, uint64(3), raw.SequenceNumber)
	assert.Equal(t, uint64(1_700_000_060), raw.ExpirationTimestampSecs)
	assert.Equal(t, uint8(4), raw.ChainId)
	assert.Equal(t, account.Address(), stx.Sender())

	// Signing never moves the sequence number.
	assert.Equal(t, uint64(3), account.SequenceNumber())

	fun := stx.EntryFunction()
	require.NotNil(t, fun)
	assert.Equal(t, "play", fun.Function)
	assert.Equal(t, "0x1::clickr", fun.Module.String())
	assert.Empty(t, fun.Args)
}

func TestRawTransactionBcsLayout(t *testing.T) {
	account := testAccount(t)
	account.SetSequenceNumber(0x0102)

	factory := NewTransactionFactory(9).WithClock(fixedClock).
		WithGasUnitPrice(100).WithMaxGasAmount(1000)

	raw := factory.EntryFunction(testEntryFunction()).
		Sender(account.Address()).SequenceNumber(account.SequenceNumber()).
		Build()

	content, err := raw.BcsSerialize()
	require.NoError(t, err)

	addr := account.Address()
	assert.Equal(t, addr[:], content[:AddressLength])
	assert.Equal(t, uint64(0x0102), binary.LittleEndian.Uint64(content[AddressLength:]))

	// Payload variant index, then module address.
	offset := AddressLength + 8
	assert.Equal(t, byte(payload_variant_entry_function), content[offset])

	// Trailer: max gas, gas price, expiration, chain id.
	tail := content[len(content)-25:]
	assert.Equal(t, uint64(1000), binary.LittleEndian.Uint64(tail[0:]))
	assert.Equal(t, uint64(100), binary.LittleEndian.Uint64(tail[8:]))
	assert.Equal(t, uint64(fixedClock().Add(defaultExpirationDelay).Unix()),
		binary.LittleEndian.Uint64(tail[16:]))
	assert.Equal(t, uint8(9), tail[24])

	_, err = (&RawTransaction{}).BcsSerialize()
	assert.Error(t, err)
}

func TestSignatureVerifies(t *testing.T) {
	account := testAccount(t)
	factory := NewTransactionFactory(4).WithClock(fixedClock)

	stx, err := account.SignWithTransactionBuilder(
		factory.EntryFunction(testEntryFunction()))
	require.NoError(t, err)

	message, err := stx.RawTxn.SigningMessage()
	require.NoError(t, err)

	prefix := sha3.Sum256([]byte("APTOS::RawTransaction"))
	assert.Equal(t, prefix[:], message[:32])
	assert.True(t, ed25519.Verify(account.PublicKey(), message, stx.Signature))
}

func TestSignedTransactionBcs(t *testing.T) {
	account := testAccount(t)
	factory := NewTransactionFactory(4).WithClock(fixedClock)

	stx, err := account.SignWithTransactionBuilder(
		factory.EntryFunction(testEntryFunction()))
	require.NoError(t, err)

	raw, err := stx.RawTxn.BcsSerialize()
	require.NoError(t, err)

	content, err := stx.BcsSerialize()
	require.NoError(t, err)

	// raw | variant 0 | len 32 | key | len 64 | signature
	require.Len(t, content, len(raw)+1+1+32+1+64)
	assert.Equal(t, raw, content[:len(raw)])
	assert.Equal(t, byte(authenticator_variant_ed25519), content[len(raw)])
	assert.Equal(t, byte(32), content[len(raw)+1])
	assert.Equal(t, []byte(account.PublicKey()), content[len(raw)+2:len(raw)+34])
	assert.Equal(t, byte(64), content[len(raw)+34])
	assert.Equal(t, stx.Signature, content[len(raw)+35:])

	again, err := account.SignWithTransactionBuilder(
		factory.EntryFunction(testEntryFunction()))
	require.NoError(t, err)

	againContent, err := again.BcsSerialize()
	require.NoError(t, err)
	assert.Equal(t, content, againContent)
}
