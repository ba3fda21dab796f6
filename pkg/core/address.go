package core

import (
	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/go-faster/errors"
)

// ValidatorPrefixSuffix is appended to an account prefix to get the validator operator prefix.
const ValidatorPrefixSuffix = "valoper"

// ParseAddress decodes a bech32 account address and returns its human-readable prefix
// together with the validator operator address sharing the same key.
func ParseAddress(address string) (prefix string, validator string, err error) {
	hrp, data, err := bech32.Decode(address)
	if err != nil {
		return "", "", errors.Wrapf(err, "decode address %q", address)
	}
	validator, err = bech32.Encode(hrp+ValidatorPrefixSuffix, data)
	if err != nil {
		return "", "", errors.Wrap(err, "encode validator address")
	}
	return hrp, validator, nil
}

// ValidatorAddress converts a self-delegator address to the validator operator address.
func ValidatorAddress(address string) (string, error) {
	_, validator, err := ParseAddress(address)
	return validator, err
}
