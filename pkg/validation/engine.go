package validation

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/sourcegraph/conc"
	"go.uber.org/zap"

	"github.com/arnac-io/txcomposer/pkg/core"
	"github.com/arnac-io/txcomposer/pkg/registry"
)

type State int

const (
	Idle State = iota
	Validating
	Valid
	Invalid
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Validating:
		return "validating"
	case Valid:
		return "valid"
	case Invalid:
		return "invalid"
	}
	return "unknown"
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Result is the validation state of one slot.
type Result struct {
	State        State  `json:"state"`
	IsLoading    bool   `json:"is_loading"`
	IsError      bool   `json:"is_error"`
	ErrorText    string `json:"error_text,omitempty"`
	Inconclusive bool   `json:"inconclusive,omitempty"`
	// Err is one of *registry.ParseError, *registry.ConversionError, *SimulationError or *TransportError.
	Err error `json:"-"`
}

func invalid(err error) Result {
	return Result{State: Invalid, IsError: true, ErrorText: err.Error(), Err: err}
}

// Converter turns slot input into a message.
type Converter interface {
	ConvertInput(name, input string, s core.Session) (core.Msg, error)
}

type Options struct {
	gasLimit uint64
	timeout  time.Duration
	notify   func(index int, r Result)
}

type Option func(o *Options)

// WithGasLimit sets the gas limit of simulated transactions.
func WithGasLimit(limit uint64) Option {
	return func(o *Options) {
		o.gasLimit = limit
	}
}

// WithTimeout bounds a single simulation request.
func WithTimeout(timeout time.Duration) Option {
	return func(o *Options) {
		o.timeout = timeout
	}
}

// WithNotifier registers fn to receive every result change together with the slot's current index.
// fn is called with the engine locked and must neither block nor call back into the engine.
func WithNotifier(fn func(index int, r Result)) Option {
	return func(o *Options) {
		o.notify = fn
	}
}

type slot struct {
	seq    uint64
	result Result
	cancel context.CancelFunc
}

// Engine validates draft slots. Each slot keeps the result of its latest trigger only:
// a newer trigger cancels the request in flight and responses of superseded triggers are dropped.
type Engine struct {
	logger  *zap.Logger
	conv    Converter
	options Options

	mu    sync.Mutex
	slots []*slot
	seq   uint64
	wg    conc.WaitGroup
}

func NewEngine(logger *zap.Logger, conv Converter, opts ...Option) *Engine {
	options := Options{
		gasLimit: 150_000,
		timeout:  30 * time.Second,
	}
	for _, o := range opts {
		o(&options)
	}
	return &Engine{
		logger:  logger,
		conv:    conv,
		options: options,
		slots:   []*slot{{}},
	}
}

// set stores the result of slot i and notifies about it. Must be called with mu held.
func (e *Engine) set(i int, result Result) {
	e.slots[i].result = result
	if e.options.notify != nil {
		e.options.notify(i, result)
	}
}

// grow makes sure slot i exists. Must be called with mu held.
func (e *Engine) grow(i int) {
	for len(e.slots) <= i {
		e.slots = append(e.slots, &slot{})
	}
}

// supersede starts a new generation for sl and returns its sequence number. Must be called with mu held.
func (e *Engine) supersede(sl *slot) uint64 {
	if sl.cancel != nil {
		sl.cancel()
		sl.cancel = nil
	}
	e.seq++
	sl.seq = e.seq
	return sl.seq
}

// Trigger validates the slot at index against its current type and input.
// Local failures are applied before Trigger returns; the simulation runs in the background on ctx.
// Once ctx is done no simulation is started and the slot is marked invalid instead.
func (e *Engine) Trigger(ctx context.Context, index int, msgType, input string, s core.Session) uint64 {
	var (
		msg core.Msg
		err error
	)
	if msgType != "" {
		msg, err = e.conv.ConvertInput(msgType, input, s)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.grow(index)
	sl := e.slots[index]
	seq := e.supersede(sl)

	switch {
	case msgType == "":
		e.set(index, Result{State: Idle})
		return seq
	case err != nil:
		var parseErr *registry.ParseError
		if errors.As(err, &parseErr) {
			outcomes.WithLabelValues("parse_error").Inc()
		} else {
			outcomes.WithLabelValues("conversion_error").Inc()
		}
		e.set(index, invalid(err))
		return seq
	case !s.IsAuthenticated():
		outcomes.WithLabelValues("transport_error").Inc()
		e.set(index, invalid(&TransportError{Err: core.ErrUnauthenticated}))
		return seq
	case ctx.Err() != nil:
		outcomes.WithLabelValues("transport_error").Inc()
		e.set(index, invalid(&TransportError{Err: ctx.Err()}))
		return seq
	}

	ctx, cancel := context.WithTimeout(ctx, e.options.timeout)
	sl.cancel = cancel
	e.set(index, Result{State: Validating, IsLoading: true})
	fee := core.FeeOptions{GasLimit: e.options.gasLimit, FeeDenom: s.GasDenom}
	e.wg.Go(func() {
		defer cancel()
		_, err := s.Signer.Simulate(ctx, []core.Msg{msg}, fee)
		e.apply(sl, seq, index, e.classify(err, index))
	})
	return seq
}

func (e *Engine) classify(err error, index int) Result {
	if err == nil {
		outcomes.WithLabelValues("valid").Inc()
		return Result{State: Valid}
	}
	var rejection *core.RejectionError
	if errors.As(err, &rejection) {
		if strings.Contains(rejection.Log, EncryptedSentinel) {
			outcomes.WithLabelValues("inconclusive").Inc()
			e.logger.Info("simulation failed inside encrypted execution, treating message as valid",
				zap.Int("slot", index), zap.String("log", rejection.Log))
			return Result{State: Valid, Inconclusive: true, Err: &SimulationError{Log: rejection.Log, Inconclusive: true}}
		}
		outcomes.WithLabelValues("rejected").Inc()
		return invalid(&SimulationError{Log: rejection.Log})
	}
	outcomes.WithLabelValues("transport_error").Inc()
	return invalid(&TransportError{Err: err})
}

func (e *Engine) apply(sl *slot, seq uint64, index int, result Result) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if sl.seq != seq {
		outcomes.WithLabelValues("stale").Inc()
		e.logger.Debug("dropping stale validation result", zap.Int("slot", index), zap.Uint64("seq", seq))
		return
	}
	sl.cancel = nil
	// removed slots are superseded, so sl is still tracked but may have moved
	for i, current := range e.slots {
		if current == sl {
			e.set(i, result)
			return
		}
	}
}

// Fail marks the slot invalid with err, superseding any validation in flight.
func (e *Engine) Fail(index int, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.grow(index)
	sl := e.slots[index]
	e.supersede(sl)
	e.set(index, invalid(err))
}

// Remove drops the state of slot k; the states of later slots move down with their slots.
// Removing the only slot leaves a single idle slot.
func (e *Engine) Remove(k int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if k < 0 || k >= len(e.slots) {
		return
	}
	sl := e.slots[k]
	e.supersede(sl)
	e.slots = append(e.slots[:k], e.slots[k+1:]...)
	if len(e.slots) == 0 {
		e.slots = append(e.slots, &slot{})
	}
}

// Resize sets the number of tracked slots to n, dropping states past the end.
func (e *Engine) Resize(n int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if n < 1 {
		n = 1
	}
	for _, sl := range e.slots[min(n, len(e.slots)):] {
		e.supersede(sl)
	}
	if n < len(e.slots) {
		e.slots = e.slots[:n]
	}
	e.grow(n - 1)
}

func (e *Engine) Result(i int) (Result, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if i < 0 || i >= len(e.slots) {
		return Result{}, false
	}
	return e.slots[i].result, true
}

func (e *Engine) Results() []Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	results := make([]Result, len(e.slots))
	for i, sl := range e.slots {
		results[i] = sl.result
	}
	return results
}

// Wait blocks until every simulation started so far has finished.
// Callers must stop calling Trigger first, usually by canceling the context they pass to it:
// a Trigger on a done context never starts a simulation.
func (e *Engine) Wait() {
	e.wg.Wait()
}
