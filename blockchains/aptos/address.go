package aptos

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/novifinancial/serde-reflection/serde-generate/runtime/golang/bcs"
	"github.com/novifinancial/serde-reflection/serde-generate/runtime/golang/serde"
)

const AddressLength = 32

type AccountAddress [AddressLength]uint8

// Parse an address the way the ledger tooling does for hard-coded
// constants: the `0x` prefix is mandatory and only the special addresses
// (0x0 to 0xf) may use the short form.
func ParseAddressStrict(str string) (AccountAddress, error) {
	var ret AccountAddress
	var digits string
	var err error

	if !strings.HasPrefix(str, "0x") {
		return ret, fmt.Errorf("address '%s' is missing 0x prefix", str)
	}

	digits = str[2:]

	if (len(digits) != 1) && (len(digits) != 2*AddressLength) {
		return ret, fmt.Errorf("address '%s' must be in long form",
			str)
	}

	ret, err = ParseAddressRelaxed(str)
	if err != nil {
		return ret, err
	}

	return ret, nil
}

// Parse an address with an optional `0x` prefix and any number of hex
// digits up to the full length. Leading zeros may be omitted.
func ParseAddressRelaxed(str string) (AccountAddress, error) {
	var ret AccountAddress
	var digits string
	var raw []byte
	var err error

	digits = strings.TrimPrefix(str, "0x")

	if len(digits) == 0 {
		return ret, fmt.Errorf("empty address")
	}

	if len(digits) > 2*AddressLength {
		return ret, fmt.Errorf("address '%s' is too long", str)
	}

	if len(digits)%2 == 1 {
		digits = "0" + digits
	}

	raw, err = hex.DecodeString(digits)
	if err != nil {
		return ret, fmt.Errorf("address '%s' is not hex: %w", str, err)
	}

	copy(ret[AddressLength-len(raw):], raw)

	return ret, nil
}

func (this AccountAddress) IsSpecial() bool {
	var i int

	for i = 0; i < AddressLength-1; i++ {
		if this[i] != 0 {
			return false
		}
	}

	return this[AddressLength-1] < 0x10
}

// Canonical textual form: short for special addresses, 64 hex digits
// otherwise.
func (this AccountAddress) StandardString() string {
	if this.IsSpecial() {
		return fmt.Sprintf("0x%x", this[AddressLength-1])
	}

	return "0x" + hex.EncodeToString(this[:])
}

func (this AccountAddress) String() string {
	return this.StandardString()
}

func (this AccountAddress) MarshalText() ([]byte, error) {
	return []byte(this.StandardString()), nil
}

func (this *AccountAddress) UnmarshalText(text []byte) error {
	var addr AccountAddress
	var err error

	addr, err = ParseAddressRelaxed(string(text))
	if err != nil {
		return err
	}

	*this = addr

	return nil
}

// Addresses are a fixed size array in BCS: no length prefix.
func (this AccountAddress) Serialize(serializer serde.Serializer) error {
	var err error
	var b uint8

	for _, b = range this {
		err = serializer.SerializeU8(b)
		if err != nil {
			return err
		}
	}

	return nil
}

func (this AccountAddress) BcsSerialize() ([]byte, error) {
	var serializer serde.Serializer = bcs.NewSerializer()
	var err error

	err = this.Serialize(serializer)
	if err != nil {
		return nil, err
	}

	return serializer.GetBytes(), nil
}

func DeserializeAccountAddress(deserializer serde.Deserializer) (AccountAddress, error) {
	var ret AccountAddress
	var err error
	var i int

	for i = range ret {
		ret[i], err = deserializer.DeserializeU8()
		if err != nil {
			return ret, err
		}
	}

	return ret, nil
}

func BcsDeserializeAccountAddress(input []byte) (AccountAddress, error) {
	var deserializer serde.Deserializer = bcs.NewDeserializer(input)
	var ret AccountAddress
	var err error

	ret, err = DeserializeAccountAddress(deserializer)
	if err != nil {
		return ret, err
	}

	if deserializer.GetBufferOffset() < uint64(len(input)) {
		return ret, fmt.Errorf("some input bytes were not read")
	}

	return ret, nil
}
