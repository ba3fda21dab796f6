package signer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/arnac-io/txcomposer/pkg/core"
)

// Client talks to a signer daemon that holds the account key.
// The daemon signs and submits transactions; this client only builds requests and maps responses.
type Client struct {
	logger  *zap.Logger
	baseURL string
	options Options
}

var _ core.Signer = (*Client)(nil)

type Options struct {
	httpClient *http.Client
	token      string
	attempts   uint
	delay      time.Duration
}

type Option func(o *Options)

func WithHTTPClient(c *http.Client) Option {
	return func(o *Options) {
		o.httpClient = c
	}
}

// WithToken authenticates requests with a bearer token.
func WithToken(token string) Option {
	return func(o *Options) {
		o.token = token
	}
}

// WithRetry configures retries of simulations. Broadcasts are never retried.
func WithRetry(attempts uint, delay time.Duration) Option {
	return func(o *Options) {
		o.attempts = attempts
		o.delay = delay
	}
}

func NewClient(logger *zap.Logger, baseURL string, opts ...Option) *Client {
	options := Options{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		attempts:   3,
		delay:      200 * time.Millisecond,
	}
	for _, o := range opts {
		o(&options)
	}
	return &Client{
		logger:  logger,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		options: options,
	}
}

type Account struct {
	Address string `json:"address"`
	ChainID string `json:"chain_id"`
}

type coin struct {
	Denom  string `json:"denom"`
	Amount string `json:"amount"`
}

type fee struct {
	GasLimit uint64 `json:"gas_limit,string"`
	Amount   []coin `json:"amount"`
}

type txRequest struct {
	Messages []json.RawMessage `json:"messages"`
	Fee      fee               `json:"fee"`
}

type simulateResponse struct {
	GasUsed uint64 `json:"gas_used,string"`
}

type broadcastResponse struct {
	Code    uint32 `json:"code"`
	TxHash  string `json:"txhash"`
	RawLog  string `json:"raw_log"`
	Height  int64  `json:"height,string"`
	GasUsed uint64 `json:"gas_used,string"`
}

type errorResponse struct {
	Code  uint32 `json:"code"`
	Log   string `json:"log"`
	Error string `json:"error"`
}

// Account returns the account the daemon signs for.
func (c *Client) Account(ctx context.Context) (Account, error) {
	var account Account
	if err := c.do(ctx, http.MethodGet, "/v1/account", nil, &account); err != nil {
		return Account{}, err
	}
	return account, nil
}

func (c *Client) Simulate(ctx context.Context, msgs []core.Msg, fee core.FeeOptions) (core.SimulateResult, error) {
	body, err := newTxRequest(msgs, fee)
	if err != nil {
		return core.SimulateResult{}, err
	}
	var resp simulateResponse
	err = retry.Do(func() error {
		return c.do(ctx, http.MethodPost, "/v1/simulate", body, &resp)
	},
		retry.Attempts(c.options.attempts),
		retry.Delay(c.options.delay),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			var rejection *core.RejectionError
			var statusErr *statusError
			switch {
			case errors.As(err, &rejection), errors.Is(err, core.ErrUnauthenticated):
				return false
			case errors.As(err, &statusErr):
				return statusErr.code >= 500
			}
			return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
		}),
	)
	if err != nil {
		return core.SimulateResult{}, err
	}
	return core.SimulateResult{GasUsed: resp.GasUsed}, nil
}

func (c *Client) Broadcast(ctx context.Context, msgs []core.Msg, fee core.FeeOptions) (core.TxResponse, error) {
	body, err := newTxRequest(msgs, fee)
	if err != nil {
		return core.TxResponse{}, err
	}
	var resp broadcastResponse
	if err := c.do(ctx, http.MethodPost, "/v1/broadcast", body, &resp); err != nil {
		return core.TxResponse{}, err
	}
	c.logger.Info("transaction broadcast", zap.String("tx_hash", resp.TxHash), zap.Uint32("code", resp.Code))
	return core.TxResponse{
		Code:    resp.Code,
		TxHash:  resp.TxHash,
		RawLog:  resp.RawLog,
		Height:  resp.Height,
		GasUsed: resp.GasUsed,
	}, nil
}

func newTxRequest(msgs []core.Msg, options core.FeeOptions) ([]byte, error) {
	req := txRequest{
		Fee: fee{GasLimit: options.GasLimit, Amount: []coin{}},
	}
	if amount := options.Fee(); amount.Amount.IsPositive() {
		req.Fee.Amount = append(req.Fee.Amount, coin{Denom: amount.Denom, Amount: amount.Amount.String()})
	}
	for _, m := range msgs {
		encoded, err := EncodeMsg(m)
		if err != nil {
			return nil, err
		}
		req.Messages = append(req.Messages, encoded)
	}
	return json.Marshal(req)
}

// EncodeMsg renders a message in the JSON form of a protobuf Any: {"@type": <type url>, ...fields}.
func EncodeMsg(m core.Msg) (json.RawMessage, error) {
	fields, err := json.Marshal(m)
	if err != nil {
		return nil, errors.Wrapf(err, "encode %s", m.TypeURL())
	}
	typeURL, err := json.Marshal(m.TypeURL())
	if err != nil {
		return nil, err
	}
	out := append([]byte(`{"@type":`), typeURL...)
	if len(fields) > 2 {
		out = append(out, ',')
	}
	return append(out, fields[1:]...), nil
}

type statusError struct {
	code    int
	message string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("signer returned %d: %s", e.code, e.message)
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, dest any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.options.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.options.token)
	}
	resp, err := c.options.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	switch {
	case resp.StatusCode == http.StatusOK:
		return json.Unmarshal(data, dest)
	case resp.StatusCode == http.StatusUnprocessableEntity:
		var e errorResponse
		if err := json.Unmarshal(data, &e); err != nil {
			return &statusError{code: resp.StatusCode, message: string(data)}
		}
		return &core.RejectionError{Code: e.Code, Log: e.Log}
	case resp.StatusCode == http.StatusUnauthorized:
		return core.ErrUnauthenticated
	}
	var e errorResponse
	if json.Unmarshal(data, &e) != nil || e.Error == "" {
		e.Error = http.StatusText(resp.StatusCode)
	}
	return &statusError{code: resp.StatusCode, message: e.Error}
}
