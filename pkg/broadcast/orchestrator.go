package broadcast

import (
	"context"
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"
	"github.com/sourcegraph/conc"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/arnac-io/txcomposer/pkg/core"
	"github.com/arnac-io/txcomposer/pkg/draft"
	"github.com/arnac-io/txcomposer/pkg/registry"
	"github.com/arnac-io/txcomposer/pkg/sentry"
)

var broadcasts = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "txcomposer_broadcasts_total",
	Help: "Number of submitted drafts by outcome",
}, []string{"outcome"})

type Status int

const (
	Idle Status = iota
	Submitting
	Succeeded
	Failed
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Submitting:
		return "submitting"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	}
	return "unknown"
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

type FailureKind int

const (
	FailureNone FailureKind = iota
	// FailureConversion means at least one slot could not be converted; nothing was sent.
	FailureConversion
	// FailureRejected means the transaction was executed with a nonzero code.
	FailureRejected
	// FailureTransport means the broadcast call itself failed.
	FailureTransport
)

func (k FailureKind) String() string {
	switch k {
	case FailureConversion:
		return "conversion"
	case FailureRejected:
		return "rejected"
	case FailureTransport:
		return "transport"
	}
	return ""
}

func (k FailureKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// SlotError is a conversion failure of a single slot.
type SlotError struct {
	Index int
	Err   error
}

func (e SlotError) Error() string {
	return fmt.Sprintf("message #%d: %v", e.Index, e.Err)
}

func (e SlotError) Unwrap() error {
	return e.Err
}

// Outcome is the state of the latest submission.
type Outcome struct {
	Status      Status      `json:"status"`
	Failure     FailureKind `json:"failure,omitempty"`
	TxHash      string      `json:"tx_hash,omitempty"`
	Code        uint32      `json:"code,omitempty"`
	RawLog      string      `json:"raw_log,omitempty"`
	ExplorerURL string      `json:"explorer_url,omitempty"`
	Error       string      `json:"error,omitempty"`
	SlotErrors  []SlotError `json:"-"`
}

type Converter interface {
	ConvertInput(name, input string, s core.Session) (core.Msg, error)
}

type Linker interface {
	Link(chainID, txHash string) (string, bool)
}

type Options struct {
	gasLimit uint64
	gasPrice decimal.Decimal
	notify   func(Outcome)
}

type Option func(o *Options)

func WithGasLimit(limit uint64) Option {
	return func(o *Options) {
		o.gasLimit = limit
	}
}

// WithGasPrice sets the price of one unit of gas in the session's gas denom.
func WithGasPrice(price decimal.Decimal) Option {
	return func(o *Options) {
		o.gasPrice = price
	}
}

// WithNotifier registers fn to receive every outcome change.
// fn is called with the orchestrator locked and must neither block nor call back into it.
func WithNotifier(fn func(Outcome)) Option {
	return func(o *Options) {
		o.notify = fn
	}
}

// Orchestrator submits a whole draft as one transaction. Only one submission can be in flight,
// and a finished submission has to be dismissed before the next one.
type Orchestrator struct {
	logger  *zap.Logger
	conv    Converter
	links   Linker
	options Options

	mu      sync.Mutex
	outcome Outcome
	wg      conc.WaitGroup
}

func NewOrchestrator(logger *zap.Logger, conv Converter, links Linker, opts ...Option) *Orchestrator {
	options := Options{
		gasLimit: 150_000,
		gasPrice: decimal.RequireFromString("0.1"),
	}
	for _, o := range opts {
		o(&options)
	}
	return &Orchestrator{
		logger:  logger,
		conv:    conv,
		links:   links,
		options: options,
	}
}

// Submit converts every slot of d and broadcasts the messages as a single transaction.
// It returns false without doing anything unless the orchestrator is idle.
// Conversion happens before Submit returns; the broadcast itself is detached from ctx cancellation.
func (o *Orchestrator) Submit(ctx context.Context, d draft.Draft, s core.Session) bool {
	o.mu.Lock()
	if o.outcome.Status != Idle {
		o.mu.Unlock()
		return false
	}
	o.set(Outcome{Status: Submitting})
	o.mu.Unlock()

	msgs, slotErrors := o.convert(d, s)
	if len(slotErrors) > 0 {
		var err error
		for _, e := range slotErrors {
			err = multierr.Append(err, e)
		}
		broadcasts.WithLabelValues("conversion_error").Inc()
		o.finish(Outcome{Status: Failed, Failure: FailureConversion, Error: err.Error(), SlotErrors: slotErrors})
		return true
	}
	if !s.IsAuthenticated() {
		broadcasts.WithLabelValues("transport_error").Inc()
		o.finish(Outcome{Status: Failed, Failure: FailureTransport, Error: core.ErrUnauthenticated.Error()})
		return true
	}

	fee := core.FeeOptions{GasLimit: o.options.gasLimit, GasPrice: o.options.gasPrice, FeeDenom: s.GasDenom}
	ctx = context.WithoutCancel(ctx)
	o.wg.Go(func() {
		resp, err := s.Signer.Broadcast(ctx, msgs, fee)
		o.finish(o.interpret(resp, err, s, len(msgs)))
	})
	return true
}

func (o *Orchestrator) convert(d draft.Draft, s core.Session) ([]core.Msg, []SlotError) {
	var (
		msgs     []core.Msg
		failures []SlotError
	)
	for _, slot := range d.Slots() {
		if slot.Type == "" {
			failures = append(failures, SlotError{Index: slot.Index, Err: &registry.ConversionError{Reason: "message type is not selected"}})
			continue
		}
		msg, err := o.conv.ConvertInput(slot.Type, slot.Input, s)
		if err != nil {
			failures = append(failures, SlotError{Index: slot.Index, Err: err})
			continue
		}
		msgs = append(msgs, msg)
	}
	return msgs, failures
}

func (o *Orchestrator) interpret(resp core.TxResponse, err error, s core.Session, count int) Outcome {
	if err != nil {
		broadcasts.WithLabelValues("transport_error").Inc()
		o.logger.Error("broadcast failed", zap.String("chain_id", s.ChainID), zap.Int("messages", count), zap.Error(err))
		sentry.Send("broadcast failed", sentry.SentryInfoData{
			"chain_id": s.ChainID,
			"messages": count,
			"error":    err.Error(),
		}, sentry.LevelError)
		return Outcome{Status: Failed, Failure: FailureTransport, Error: err.Error()}
	}
	outcome := Outcome{TxHash: resp.TxHash, Code: resp.Code}
	outcome.ExplorerURL, _ = o.links.Link(s.ChainID, resp.TxHash)
	if resp.Code == 0 {
		broadcasts.WithLabelValues("succeeded").Inc()
		o.logger.Info("transaction committed", zap.String("tx_hash", resp.TxHash), zap.Int64("height", resp.Height))
		outcome.Status = Succeeded
		return outcome
	}
	broadcasts.WithLabelValues("rejected").Inc()
	o.logger.Warn("transaction rejected", zap.String("tx_hash", resp.TxHash), zap.Uint32("code", resp.Code))
	outcome.Status = Failed
	outcome.Failure = FailureRejected
	outcome.RawLog = resp.RawLog
	outcome.Error = resp.RawLog
	return outcome
}

func (o *Orchestrator) finish(outcome Outcome) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.set(outcome)
}

// set must be called with mu held.
func (o *Orchestrator) set(outcome Outcome) {
	o.outcome = outcome
	if o.options.notify != nil {
		o.options.notify(outcome)
	}
}

func (o *Orchestrator) Outcome() Outcome {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.outcome
}

// Dismiss clears a finished outcome. It does nothing while idle or submitting.
func (o *Orchestrator) Dismiss() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.outcome.Status != Succeeded && o.outcome.Status != Failed {
		return false
	}
	o.set(Outcome{})
	return true
}

// Wait blocks until the broadcast in flight, if any, has finished.
// Submit must not be called concurrently with Wait.
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}
