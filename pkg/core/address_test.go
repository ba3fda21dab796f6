package core

import (
	"testing"

	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/stretchr/testify/require"
)

func testAddress(t *testing.T, prefix string, fill byte) string {
	t.Helper()
	raw := make([]byte, 20)
	for i := range raw {
		raw[i] = fill
	}
	conv, err := bech32.ConvertBits(raw, 8, 5, true)
	require.NoError(t, err)
	addr, err := bech32.Encode(prefix, conv)
	require.NoError(t, err)
	return addr
}

func TestParseAddress(t *testing.T) {
	addr := testAddress(t, "secret", 7)

	prefix, validator, err := ParseAddress(addr)
	require.NoError(t, err)
	require.Equal(t, "secret", prefix)

	hrp, data, err := bech32.Decode(validator)
	require.NoError(t, err)
	require.Equal(t, "secretvaloper", hrp)
	_, accData, err := bech32.Decode(addr)
	require.NoError(t, err)
	require.Equal(t, accData, data)
}

func TestParseAddress_invalid(t *testing.T) {
	_, _, err := ParseAddress("secret1example")
	require.Error(t, err)
}

func TestNewSession(t *testing.T) {
	addr := testAddress(t, "secret", 1)
	s, err := NewSession(addr, "secret-4", "uscrt", nil, nil)
	require.NoError(t, err)
	require.Equal(t, "secret", s.AddressPrefix)
	require.NotEmpty(t, s.ValidatorAddress)
	require.False(t, s.IsAuthenticated())

	u := Unauthenticated("secret", "secret-4", "uscrt")
	require.False(t, u.IsAuthenticated())
	require.Empty(t, u.Address)
}

func TestParseVoteOption(t *testing.T) {
	opt, err := ParseVoteOption("no_with_veto")
	require.NoError(t, err)
	require.Equal(t, VoteOptionNoWithVeto, opt)

	_, err = ParseVoteOption("YES/NO/ABSTAIN/NO_WITH_VETO")
	require.EqualError(t, err, "unknown vote option YES/NO/ABSTAIN/NO_WITH_VETO")
}
