package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/arnac-io/txcomposer/pkg/broadcast"
	"github.com/arnac-io/txcomposer/pkg/composer"
	"github.com/arnac-io/txcomposer/pkg/core"
	"github.com/arnac-io/txcomposer/pkg/draft"
	"github.com/arnac-io/txcomposer/pkg/pusher/sources"
	pusher "github.com/arnac-io/txcomposer/pkg/pusher/websocket"
	"github.com/arnac-io/txcomposer/pkg/references"
	"github.com/arnac-io/txcomposer/pkg/registry"
	"github.com/arnac-io/txcomposer/pkg/validation"
)

type fakeSigner struct {
	mu      sync.Mutex
	release chan struct{}
}

func (f *fakeSigner) Simulate(ctx context.Context, msgs []core.Msg, fee core.FeeOptions) (core.SimulateResult, error) {
	return core.SimulateResult{GasUsed: 1000}, nil
}

func (f *fakeSigner) Broadcast(ctx context.Context, msgs []core.Msg, fee core.FeeOptions) (core.TxResponse, error) {
	if f.release != nil {
		<-f.release
	}
	return core.TxResponse{Code: 5, TxHash: "FAILED", RawLog: "insufficient funds"}, nil
}

type fakeQuerier struct{}

func (fakeQuerier) Balances(ctx context.Context, address string) (core.Coins, error) {
	return core.Coins{core.NewCoin(2_500_000, "uscrt")}, nil
}

func (fakeQuerier) Balance(ctx context.Context, address, denom string) (core.Coin, error) {
	return core.NewCoin(2_500_000, denom), nil
}

func (fakeQuerier) Delegations(ctx context.Context, delegator string) ([]core.Delegation, error) {
	return nil, nil
}

func (fakeQuerier) Rewards(ctx context.Context, delegator, validator string) (core.Coins, error) {
	return nil, nil
}

type fakeSessions struct {
	signer *fakeSigner
	err    error
}

func (f fakeSessions) Connect(ctx context.Context) (core.Session, error) {
	if f.err != nil {
		return core.Session{}, f.err
	}
	return core.Session{
		Address:          "secret1alice",
		AddressPrefix:    "secret",
		ValidatorAddress: "secretvaloper1alice",
		ChainID:          "secret-4",
		GasDenom:         "uscrt",
		Signer:           f.signer,
		Querier:          fakeQuerier{},
	}, nil
}

func (f fakeSessions) Disconnected() core.Session {
	return core.Unauthenticated("secret", "secret-4", "uscrt")
}

type testServer struct {
	url          string
	engine       *validation.Engine
	orchestrator *broadcast.Orchestrator
	source       *sources.DraftSource
}

func newTestServer(t *testing.T, sessions fakeSessions) testServer {
	t.Helper()
	logger := zap.NewNop()
	reg := registry.Default()
	source := sources.NewDraftSource(logger)
	engine := validation.NewEngine(logger, reg, validation.WithNotifier(source.SlotChanged))
	orchestrator := broadcast.NewOrchestrator(logger, reg, references.NewExplorerResolver(nil), broadcast.WithNotifier(source.OutcomeChanged))
	c := composer.New(context.Background(), logger, reg, draft.NewMemoryStore(), engine, orchestrator, sessions.Disconnected())
	require.Nil(t, c.Init(context.Background()))
	srv := httptest.NewServer(NewRouter(logger, NewHandler(logger, c, sessions), WithDraftSource(source)))
	t.Cleanup(func() {
		srv.Close()
		engine.Wait()
		orchestrator.Wait()
	})
	return testServer{url: srv.URL, engine: engine, orchestrator: orchestrator, source: source}
}

func (s testServer) do(t *testing.T, method, path, body string) (int, gjson.Result) {
	t.Helper()
	req, err := http.NewRequest(method, s.url+path, strings.NewReader(body))
	require.Nil(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.Nil(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.Nil(t, err)
	return resp.StatusCode, gjson.ParseBytes(data)
}

func TestHandler_Draft(t *testing.T) {
	s := newTestServer(t, fakeSessions{signer: &fakeSigner{}})

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
		check      func(t *testing.T, res gjson.Result)
	}{
		{
			name:       "message types",
			method:     http.MethodGet,
			path:       "/v1/message-types",
			wantStatus: http.StatusOK,
			check: func(t *testing.T, res gjson.Result) {
				require.Len(t, res.Get("message_types").Array(), len(registry.Kinds()))
				require.Equal(t, "bank", res.Get("message_types.0.category").String())
			},
		},
		{
			name:       "initial draft",
			method:     http.MethodGet,
			path:       "/v1/draft",
			wantStatus: http.StatusOK,
			check: func(t *testing.T, res gjson.Result) {
				require.Len(t, res.Get("slots").Array(), 1)
				require.Equal(t, "idle", res.Get("slots.0.validation.state").String())
				require.Equal(t, "idle", res.Get("outcome.status").String())
			},
		},
		{
			name:       "set type",
			method:     http.MethodPut,
			path:       "/v1/draft/slots/0/type",
			body:       `{"type":"MsgDelegate"}`,
			wantStatus: http.StatusOK,
			check: func(t *testing.T, res gjson.Result) {
				require.Equal(t, "MsgDelegate", res.Get("type").String())
				require.Equal(t, "secretvaloper1example", gjson.Get(res.Get("input").String(), "validator_address").String())
			},
		},
		{
			name:       "unknown type",
			method:     http.MethodPut,
			path:       "/v1/draft/slots/0/type",
			body:       `{"type":"MsgNope"}`,
			wantStatus: http.StatusBadRequest,
			check: func(t *testing.T, res gjson.Result) {
				require.Contains(t, res.Get("error").String(), `"MsgNope"`)
			},
		},
		{
			name:       "unknown type is not stored",
			method:     http.MethodGet,
			path:       "/v1/draft",
			wantStatus: http.StatusOK,
			check: func(t *testing.T, res gjson.Result) {
				require.Equal(t, "MsgDelegate", res.Get("slots.0.type").String())
				require.Equal(t, "secretvaloper1example", gjson.Get(res.Get("slots.0.input").String(), "validator_address").String())
			},
		},
		{
			name:       "add slot",
			method:     http.MethodPost,
			path:       "/v1/draft/slots",
			wantStatus: http.StatusCreated,
			check: func(t *testing.T, res gjson.Result) {
				require.Equal(t, int64(1), res.Get("index").Int())
			},
		},
		{
			name:       "set input",
			method:     http.MethodPut,
			path:       "/v1/draft/slots/1/input",
			body:       `{"input":"{\"broken\""}`,
			wantStatus: http.StatusOK,
			check: func(t *testing.T, res gjson.Result) {
				require.Equal(t, `{"broken"`, res.Get("input").String())
			},
		},
		{
			name:       "unknown slot",
			method:     http.MethodPut,
			path:       "/v1/draft/slots/7/type",
			body:       `{"type":"MsgSend"}`,
			wantStatus: http.StatusNotFound,
			check: func(t *testing.T, res gjson.Result) {
				require.Contains(t, res.Get("error").String(), "slot not found")
			},
		},
		{
			name:       "bad index",
			method:     http.MethodDelete,
			path:       "/v1/draft/slots/first",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "bad body",
			method:     http.MethodPut,
			path:       "/v1/draft/slots/0/input",
			body:       `not json`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "info without session",
			method:     http.MethodGet,
			path:       "/v1/draft/slots/0/info",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "info of untyped slot",
			method:     http.MethodGet,
			path:       "/v1/draft/slots/1/info",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "delete slot",
			method:     http.MethodDelete,
			path:       "/v1/draft/slots/0",
			wantStatus: http.StatusOK,
			check: func(t *testing.T, res gjson.Result) {
				require.Len(t, res.Get("slots").Array(), 1)
				require.Equal(t, `{"broken"`, res.Get("slots.0.input").String())
				require.Equal(t, int64(0), res.Get("slots.0.index").Int())
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, res := s.do(t, tt.method, tt.path, tt.body)
			require.Equal(t, tt.wantStatus, status, res.Raw)
			if tt.check != nil {
				tt.check(t, res)
			}
		})
	}
}

func TestHandler_Session(t *testing.T) {
	signer := &fakeSigner{}
	s := newTestServer(t, fakeSessions{signer: signer})

	status, res := s.do(t, http.MethodGet, "/v1/session", "")
	require.Equal(t, http.StatusOK, status)
	require.False(t, res.Get("authenticated").Bool())

	status, _ = s.do(t, http.MethodPut, "/v1/draft/slots/0/type", `{"type":"MsgSend"}`)
	require.Equal(t, http.StatusOK, status)

	status, res = s.do(t, http.MethodPut, "/v1/session", "")
	require.Equal(t, http.StatusOK, status)
	require.True(t, res.Get("authenticated").Bool())
	require.Equal(t, "secret1alice", res.Get("address").String())

	s.engine.Wait()
	_, res = s.do(t, http.MethodGet, "/v1/draft", "")
	require.Equal(t, "secret1alice", gjson.Get(res.Get("slots.0.input").String(), "from_address").String())
	require.Equal(t, "valid", res.Get("slots.0.validation.state").String())

	status, res = s.do(t, http.MethodDelete, "/v1/session", "")
	require.Equal(t, http.StatusOK, status)
	require.False(t, res.Get("authenticated").Bool())

	failing := newTestServer(t, fakeSessions{err: errors.New("signer unreachable")})
	status, res = failing.do(t, http.MethodPut, "/v1/session", "")
	require.Equal(t, http.StatusBadGateway, status)
	require.Contains(t, res.Get("error").String(), "signer unreachable")
}

func TestHandler_Tx(t *testing.T) {
	signer := &fakeSigner{release: make(chan struct{})}
	s := newTestServer(t, fakeSessions{signer: signer})

	status, _ := s.do(t, http.MethodPut, "/v1/session", "")
	require.Equal(t, http.StatusOK, status)
	status, _ = s.do(t, http.MethodPut, "/v1/draft/slots/0/type", `{"type":"MsgSend"}`)
	require.Equal(t, http.StatusOK, status)

	status, _ = s.do(t, http.MethodDelete, "/v1/tx", "")
	require.Equal(t, http.StatusConflict, status)

	status, res := s.do(t, http.MethodPost, "/v1/tx", "")
	require.Equal(t, http.StatusAccepted, status)
	require.Equal(t, "submitting", res.Get("status").String())

	status, _ = s.do(t, http.MethodPost, "/v1/tx", "")
	require.Equal(t, http.StatusConflict, status)

	close(signer.release)
	s.orchestrator.Wait()

	status, res = s.do(t, http.MethodGet, "/v1/tx", "")
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "failed", res.Get("status").String())
	require.Equal(t, "rejected", res.Get("failure").String())
	require.Equal(t, "insufficient funds", res.Get("raw_log").String())
	require.Equal(t, "https://www.mintscan.io/secret/txs/FAILED", res.Get("explorer_url").String())

	status, res = s.do(t, http.MethodDelete, "/v1/tx", "")
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "idle", res.Get("status").String())
}

func TestHandler_Info(t *testing.T) {
	s := newTestServer(t, fakeSessions{signer: &fakeSigner{}})
	status, _ := s.do(t, http.MethodPut, "/v1/session", "")
	require.Equal(t, http.StatusOK, status)
	status, _ = s.do(t, http.MethodPut, "/v1/draft/slots/0/type", `{"type":"MsgSend"}`)
	require.Equal(t, http.StatusOK, status)

	status, res := s.do(t, http.MethodGet, "/v1/draft/slots/0/info", "")
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "Balances", res.Get("title").String())
	require.Equal(t, `["uscrt","2500000","2.5 SCRT"]`, res.Get("rows.0").Raw)

	req, err := http.NewRequest(http.MethodGet, s.url+"/v1/draft/slots/0/info?format=text", nil)
	require.Nil(t, err)
	req.Header.Set("Accept-Language", "ru-RU,ru;q=0.9")
	resp, err := http.DefaultClient.Do(req)
	require.Nil(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.Nil(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "text/plain; charset=utf-8", resp.Header.Get("Content-Type"))
	require.Contains(t, string(body), "Балансы\n")
	require.Contains(t, string(body), "2.5 SCRT")

	status, _ = s.do(t, http.MethodPut, "/v1/draft/slots/0/type", `{"type":"MsgVote"}`)
	require.Equal(t, http.StatusOK, status)
	status, res = s.do(t, http.MethodGet, "/v1/draft/slots/0/info", "")
	require.Equal(t, http.StatusNotFound, status)
	require.Contains(t, res.Get("error").String(), "no info provider")
}

func TestHandler_Events(t *testing.T) {
	s := newTestServer(t, fakeSessions{signer: &fakeSigner{}})

	url := strings.Replace(s.url, "http", "ws", -1) + "/v1/events"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.Nil(t, err)
	defer conn.Close()
	require.Nil(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	require.Nil(t, conn.WriteJSON(pusher.JsonRPCRequest{ID: 1, JSONRPC: "2.0", Method: "subscribe_draft"}))
	_, msg, err := conn.ReadMessage()
	require.Nil(t, err)
	require.Equal(t, "success! you have subscribed to draft changes", gjson.GetBytes(msg, "result").String())

	status, _ := s.do(t, http.MethodPut, "/v1/draft/slots/0/type", `{"type":"MsgSend"}`)
	require.Equal(t, http.StatusOK, status)

	_, msg, err = conn.ReadMessage()
	require.Nil(t, err)
	require.Equal(t, "slot_changed", gjson.GetBytes(msg, "method").String())
	require.Equal(t, int64(0), gjson.GetBytes(msg, "params.index").Int())
	require.Equal(t, "invalid", gjson.GetBytes(msg, "params.validation.state").String())
	require.Equal(t, "from_address: must not be empty", gjson.GetBytes(msg, "params.validation.error_text").String())

	status, _ = s.do(t, http.MethodPost, "/v1/tx", "")
	require.Equal(t, http.StatusAccepted, status)
	s.orchestrator.Wait()
	for _, want := range []string{"submitting", "failed"} {
		_, msg, err = conn.ReadMessage()
		require.Nil(t, err)
		require.Equal(t, "outcome_changed", gjson.GetBytes(msg, "method").String())
		require.Equal(t, want, gjson.GetBytes(msg, "params.status").String())
	}
}
