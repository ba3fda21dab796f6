package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/arnac-io/txcomposer/pkg/pusher/events"
	"github.com/arnac-io/txcomposer/pkg/pusher/metrics"
	"github.com/arnac-io/txcomposer/pkg/pusher/sources"
)

const (
	pingInterval = 5 * time.Second
	pongWait     = 3 * pingInterval
	writeWait    = 10 * time.Second
)

type event struct {
	Name   events.Name
	Method string
	Params []byte
}

// session is a single websocket connection subscribed to draft changes.
// Everything besides sendEvent runs on the goroutine started by Run.
type session struct {
	logger       *zap.Logger
	conn         *websocket.Conn
	source       Source
	eventCh      chan event
	pingInterval time.Duration
	subscription sources.CancelFn
	done         chan struct{}
}

func newSession(logger *zap.Logger, conn *websocket.Conn, source Source) *session {
	return &session{
		logger:       logger,
		conn:         conn,
		source:       source,
		eventCh:      make(chan event, 1000),
		pingInterval: pingInterval,
		done:         make(chan struct{}),
	}
}

// watchPongs expects a pong for every ping, otherwise ReadMessage fails after pongWait.
func (s *session) watchPongs() error {
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	return s.conn.SetReadDeadline(time.Now().Add(pongWait))
}

func (s *session) unsubscribe() {
	if s.subscription != nil {
		s.subscription()
		s.subscription = nil
	}
}

// Run writes events, responses and pings to the connection until ctx is done or a write fails.
// The connection is closed when Run's goroutine exits.
func (s *session) Run(ctx context.Context) chan JsonRPCRequest {
	requestCh := make(chan JsonRPCRequest)
	go func() {
		defer close(s.done)
		defer s.conn.Close()
		defer s.unsubscribe()

		for {
			var err error
			select {
			case <-ctx.Done():
				return
			case e := <-s.eventCh:
				err = s.writeJSON(JsonRPCResponse{
					JSONRPC: "2.0",
					Method:  e.Method,
					Params:  e.Params,
				})
				if err == nil {
					metrics.EventSent(e.Name)
				}
			case request := <-requestCh:
				var response string
				switch request.Method {
				case "subscribe_draft":
					response = s.subscribeToDraft()
				case "unsubscribe_draft":
					response = s.unsubscribeFromDraft()
				default:
					response = fmt.Sprintf("method %q is not supported", request.Method)
				}
				err = s.writeResponse(response, request)
			case <-time.After(s.pingInterval):
				metrics.EventSent(events.PingEvent)
				err = s.conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(writeWait))
			}
			if err != nil {
				s.logger.Debug("websocket session failed", zap.Error(err))
				return
			}
		}
	}()
	return requestCh
}

func (s *session) sendEvent(e event) {
	select {
	case s.eventCh <- e:
	default:
		metrics.EventDropped(e.Name)
		s.logger.Warn("event channel is full, dropping event", zap.String("event", string(e.Name)))
	}
}

func (s *session) subscribeToDraft() string {
	if s.subscription != nil {
		return "you are already subscribed to draft changes"
	}
	s.subscription = s.source.SubscribeToDraft(func(name events.Name, params []byte) {
		s.sendEvent(event{Name: name, Method: string(name), Params: params})
	})
	return "success! you have subscribed to draft changes"
}

func (s *session) unsubscribeFromDraft() string {
	if s.subscription == nil {
		return "you are not subscribed to draft changes"
	}
	s.unsubscribe()
	return "success! you have unsubscribed from draft changes"
}

func (s *session) writeJSON(v any) error {
	if err := s.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return s.conn.WriteJSON(v)
}

func (s *session) writeResponse(message string, request JsonRPCRequest) error {
	result, err := json.Marshal(message)
	if err != nil {
		return err
	}
	return s.writeJSON(JsonRPCResponse{
		ID:      request.ID,
		JSONRPC: request.JSONRPC,
		Method:  request.Method,
		Result:  result,
	})
}
