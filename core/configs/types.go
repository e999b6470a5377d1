package configs

import (
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/ed25519"
)

// SourceKey is the ed25519 seed of an account that pays for transactions.
type SourceKey []byte

// Naive check if the prefixed key has "0x" leading.
func checkPrefix(keyHex string) bool {
	return len(keyHex) >= 2 && // Length must be 0x or more
		keyHex[0] == '0' && // Starts with 0
		(keyHex[1] == 'x' || keyHex[1] == 'X') // followed by an x or X
}

// ParseSourceKey decodes a hex seed, with or without the 0x prefix.
func ParseSourceKey(keyHex string) (SourceKey, error) {
	var seed []byte
	var err error

	if len(keyHex) == 0 {
		return nil, errors.New("empty key")
	}

	if checkPrefix(keyHex) {
		keyHex = keyHex[2:]
	}

	seed, err = hex.DecodeString(keyHex)
	if err != nil {
		return nil, err
	}

	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("key must be %d bytes, got %d",
			ed25519.SeedSize, len(seed))
	}

	return SourceKey(seed), nil
}

func (sk *SourceKey) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var keyHex string
	var key SourceKey

	err := unmarshal(&keyHex)
	if err != nil {
		return err
	}

	key, err = ParseSourceKey(keyHex)
	if err != nil {
		return fmt.Errorf("invalid coin source key: %w", err)
	}

	*sk = key

	return nil
}

// Hex is the form accepted by the account loader.
func (sk SourceKey) Hex() string {
	return hex.EncodeToString(sk)
}
