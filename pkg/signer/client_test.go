package signer

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/arnac-io/txcomposer/pkg/core"
)

var testFee = core.FeeOptions{GasLimit: 150_000, GasPrice: decimal.RequireFromString("0.1"), FeeDenom: "uscrt"}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		require.Equal(t, "Bearer secret-token", r.Header.Get("Authorization"))
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return NewClient(zap.NewNop(), srv.URL, WithToken("secret-token"), WithRetry(3, time.Millisecond)), &calls
}

func sendMsg() core.Msg {
	return core.MsgSend{
		FromAddress: "secret1from",
		ToAddress:   "secret1to",
		Amount:      core.Coins{core.NewCoin(1, "uscrt")},
	}
}

func TestEncodeMsg(t *testing.T) {
	tests := []struct {
		name string
		msg  core.Msg
		want string
	}{
		{
			name: "send",
			msg:  sendMsg(),
			want: `{"@type":"/cosmos.bank.v1beta1.MsgSend","from_address":"secret1from","to_address":"secret1to","amount":[{"denom":"uscrt","amount":"1"}]}`,
		},
		{
			name: "unjail",
			msg:  core.MsgUnjail{ValidatorAddr: "secretvaloper1x"},
			want: `{"@type":"/cosmos.slashing.v1beta1.MsgUnjail","validator_addr":"secretvaloper1x"}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EncodeMsg(tt.msg)
			require.Nil(t, err)
			require.JSONEq(t, tt.want, string(got))
			require.Equal(t, `{"@type":`, string(got[:9]))
		})
	}
}

func TestClient_Account(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/account", r.URL.Path)
		w.Write([]byte(`{"address":"secret1abc","chain_id":"secret-4"}`))
	})
	account, err := c.Account(context.Background())
	require.Nil(t, err)
	require.Equal(t, Account{Address: "secret1abc", ChainID: "secret-4"}, account)
}

func TestClient_Simulate(t *testing.T) {
	tests := []struct {
		name      string
		status    []int
		body      string
		wantGas   uint64
		wantErr   func(t *testing.T, err error)
		wantCalls int32
	}{
		{
			name:      "ok",
			status:    []int{http.StatusOK},
			body:      `{"gas_used":"81234"}`,
			wantGas:   81234,
			wantCalls: 1,
		},
		{
			name:   "rejected",
			status: []int{http.StatusUnprocessableEntity},
			body:   `{"code":5,"log":"insufficient funds"}`,
			wantErr: func(t *testing.T, err error) {
				var rejection *core.RejectionError
				require.True(t, errors.As(err, &rejection))
				require.Equal(t, uint32(5), rejection.Code)
				require.Equal(t, "insufficient funds", rejection.Log)
			},
			wantCalls: 1,
		},
		{
			name:      "retried",
			status:    []int{http.StatusBadGateway, http.StatusOK},
			body:      `{"gas_used":"10"}`,
			wantGas:   10,
			wantCalls: 2,
		},
		{
			name:   "bad request",
			status: []int{http.StatusBadRequest},
			body:   `{"error":"malformed message"}`,
			wantErr: func(t *testing.T, err error) {
				require.ErrorContains(t, err, "signer returned 400: malformed message")
			},
			wantCalls: 1,
		},
		{
			name:   "unauthorized",
			status: []int{http.StatusUnauthorized},
			body:   `{}`,
			wantErr: func(t *testing.T, err error) {
				require.ErrorIs(t, err, core.ErrUnauthenticated)
			},
			wantCalls: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var n int32
			c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				require.Equal(t, http.MethodPost, r.Method)
				require.Equal(t, "/v1/simulate", r.URL.Path)
				body, err := io.ReadAll(r.Body)
				require.Nil(t, err)
				parsed := gjson.ParseBytes(body)
				require.Equal(t, "150000", parsed.Get("fee.gas_limit").String())
				require.Equal(t, "15000", parsed.Get("fee.amount.0.amount").String())
				require.Equal(t, "/cosmos.bank.v1beta1.MsgSend", parsed.Get("messages.0.@type").String())
				i := atomic.AddInt32(&n, 1) - 1
				w.WriteHeader(tt.status[i])
				w.Write([]byte(tt.body))
			})
			res, err := c.Simulate(context.Background(), []core.Msg{sendMsg()}, testFee)
			require.Equal(t, tt.wantCalls, atomic.LoadInt32(calls))
			if tt.wantErr != nil {
				require.NotNil(t, err)
				tt.wantErr(t, err)
				return
			}
			require.Nil(t, err)
			require.Equal(t, tt.wantGas, res.GasUsed)
		})
	}
}

func TestClient_SimulateZeroFee(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req txRequest
		require.Nil(t, json.NewDecoder(r.Body).Decode(&req))
		require.Empty(t, req.Fee.Amount)
		require.Len(t, req.Messages, 1)
		w.Write([]byte(`{"gas_used":"1"}`))
	})
	_, err := c.Simulate(context.Background(), []core.Msg{sendMsg()}, core.FeeOptions{GasLimit: 150_000, FeeDenom: "uscrt"})
	require.Nil(t, err)
}

func TestClient_Broadcast(t *testing.T) {
	t.Run("accepted", func(t *testing.T) {
		c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/v1/broadcast", r.URL.Path)
			w.Write([]byte(`{"code":0,"txhash":"ABC123","raw_log":"[]","height":"42","gas_used":"90000"}`))
		})
		resp, err := c.Broadcast(context.Background(), []core.Msg{sendMsg()}, testFee)
		require.Nil(t, err)
		require.Equal(t, core.TxResponse{TxHash: "ABC123", RawLog: "[]", Height: 42, GasUsed: 90000}, resp)
	})
	t.Run("not retried", func(t *testing.T) {
		c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
		_, err := c.Broadcast(context.Background(), []core.Msg{sendMsg()}, testFee)
		require.ErrorContains(t, err, "signer returned 503")
		require.Equal(t, int32(1), atomic.LoadInt32(calls))
	})
}
