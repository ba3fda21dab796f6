package signer

import (
	"bytes"
	"context"
	"net/http"
	"testing"

	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/stretchr/testify/require"
)

func testAddress(t *testing.T, prefix string) string {
	t.Helper()
	data, err := bech32.ConvertBits(bytes.Repeat([]byte{7}, 20), 8, 5, true)
	require.Nil(t, err)
	address, err := bech32.Encode(prefix, data)
	require.Nil(t, err)
	return address
}

func TestSessionProvider_Connect(t *testing.T) {
	tests := []struct {
		name    string
		address string
		chainID string
		wantErr string
	}{
		{name: "ok", address: testAddress(t, "secret"), chainID: "secret-4"},
		{name: "chain id not reported", address: testAddress(t, "secret"), chainID: ""},
		{name: "other chain", address: testAddress(t, "secret"), chainID: "pulsar-3", wantErr: "signer is connected to pulsar-3"},
		{name: "other prefix", address: testAddress(t, "cosmos"), chainID: "secret-4", wantErr: "does not have prefix secret"},
		{name: "malformed address", address: "secret1nope", chainID: "secret-4", wantErr: "secret1nope"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"address":"` + tt.address + `","chain_id":"` + tt.chainID + `"}`))
			})
			p := NewSessionProvider(c, nil, "secret", "secret-4", "uscrt")
			s, err := p.Connect(context.Background())
			if tt.wantErr != "" {
				require.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.Nil(t, err)
			require.True(t, s.IsAuthenticated())
			require.Equal(t, tt.address, s.Address)
			require.Equal(t, testAddress(t, "secretvaloper"), s.ValidatorAddress)
			require.Equal(t, "secret-4", s.ChainID)
			require.Equal(t, "uscrt", s.GasDenom)
		})
	}

	p := NewSessionProvider(nil, nil, "secret", "secret-4", "uscrt")
	disconnected := p.Disconnected()
	require.False(t, disconnected.IsAuthenticated())
	require.Equal(t, "secret", disconnected.AddressPrefix)
}
