package sources

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"github.com/arnac-io/txcomposer/pkg/broadcast"
	"github.com/arnac-io/txcomposer/pkg/pusher/events"
	"github.com/arnac-io/txcomposer/pkg/validation"
)

// DeliveryFn receives an event with its JSON encoded params. It must not block.
type DeliveryFn func(name events.Name, params []byte)

// CancelFn stops a subscription.
type CancelFn func()

// SlotChange is the payload of events.SlotChangedEvent.
type SlotChange struct {
	Index      int               `json:"index"`
	Validation validation.Result `json:"validation"`
}

// DraftSource fans validation results and submission outcomes out to subscribers.
// SlotChanged and OutcomeChanged plug into validation.WithNotifier and broadcast.WithNotifier.
type DraftSource struct {
	logger *zap.Logger

	mu          sync.Mutex
	next        uint64
	subscribers map[uint64]DeliveryFn
}

func NewDraftSource(logger *zap.Logger) *DraftSource {
	return &DraftSource{
		logger:      logger,
		subscribers: map[uint64]DeliveryFn{},
	}
}

func (s *DraftSource) SubscribeToDraft(deliveryFn DeliveryFn) CancelFn {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	id := s.next
	s.subscribers[id] = deliveryFn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subscribers, id)
	}
}

// Subscribers returns the number of active subscriptions.
func (s *DraftSource) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subscribers)
}

func (s *DraftSource) SlotChanged(index int, r validation.Result) {
	s.deliver(events.SlotChangedEvent, SlotChange{Index: index, Validation: r})
}

func (s *DraftSource) OutcomeChanged(o broadcast.Outcome) {
	s.deliver(events.OutcomeChangedEvent, o)
}

func (s *DraftSource) deliver(name events.Name, payload any) {
	s.mu.Lock()
	fns := make([]DeliveryFn, 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		fns = append(fns, fn)
	}
	s.mu.Unlock()
	if len(fns) == 0 {
		return
	}
	params, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error("failed to marshal event", zap.String("event", string(name)), zap.Error(err))
		return
	}
	for _, fn := range fns {
		fn(name, params)
	}
}
