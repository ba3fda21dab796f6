package websocket

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/arnac-io/txcomposer/pkg/pusher/metrics"
	"github.com/arnac-io/txcomposer/pkg/pusher/sources"
)

var upgrader websocket.Upgrader

// JsonRPCRequest represents a request in the JSON-RPC protocol supported by "/v1/events".
type JsonRPCRequest struct {
	ID      uint64 `json:"id,omitempty"`
	JSONRPC string `json:"jsonrpc,omitempty"`
	Method  string `json:"method,omitempty"`
}

// JsonRPCResponse represents a response in the JSON-RPC protocol supported by "/v1/events".
type JsonRPCResponse struct {
	ID      uint64          `json:"id,omitempty"`
	JSONRPC string          `json:"jsonrpc,omitempty"`
	Method  string          `json:"method,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// Source provides draft change events.
type Source interface {
	SubscribeToDraft(deliveryFn sources.DeliveryFn) sources.CancelFn
}

// Handler upgrades the connection and serves subscriptions to draft changes until the client goes away.
func Handler(logger *zap.Logger, source Source) func(w http.ResponseWriter, r *http.Request) error {
	return func(w http.ResponseWriter, r *http.Request) error {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return err
		}
		defer conn.Close()
		metrics.OpenWebsocketConnection()
		defer metrics.CloseWebsocketConnection()
		logger.Debug("new websocket connection", zap.String("remote_addr", conn.RemoteAddr().String()))

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()
		session := newSession(logger, conn, source)
		if err := session.watchPongs(); err != nil {
			return err
		}
		requestCh := session.Run(ctx)
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					return nil
				}
				return err
			}
			var request JsonRPCRequest
			if err := json.Unmarshal(msg, &request); err != nil {
				logger.Debug("malformed websocket request", zap.Error(err))
				continue
			}
			select {
			case requestCh <- request:
			case <-session.done:
				return nil
			}
		}
	}
}
