package composer

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/arnac-io/txcomposer/pkg/broadcast"
	"github.com/arnac-io/txcomposer/pkg/core"
	"github.com/arnac-io/txcomposer/pkg/draft"
	"github.com/arnac-io/txcomposer/pkg/registry"
	"github.com/arnac-io/txcomposer/pkg/validation"
)

// Composer applies user commands to the stored draft and keeps the validation state in step with it.
// Validations outlive the request that triggered them and run on the context given to New.
type Composer struct {
	ctx          context.Context
	logger       *zap.Logger
	registry     *registry.Registry
	store        draft.Store
	engine       *validation.Engine
	orchestrator *broadcast.Orchestrator

	// mu serializes draft mutations so engine slot states line up with draft indices.
	mu      sync.Mutex
	session core.Session
}

type MessageType struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	HasInfo  bool   `json:"has_info"`
}

// SlotView is a slot together with its latest validation result.
type SlotView struct {
	draft.Slot
	Validation validation.Result `json:"validation"`
}

type View struct {
	Slots   []SlotView        `json:"slots"`
	Outcome broadcast.Outcome `json:"outcome"`
}

func New(ctx context.Context, logger *zap.Logger, reg *registry.Registry, store draft.Store,
	engine *validation.Engine, orchestrator *broadcast.Orchestrator, s core.Session) *Composer {
	return &Composer{
		ctx:          ctx,
		logger:       logger,
		registry:     reg,
		store:        store,
		engine:       engine,
		orchestrator: orchestrator,
		session:      s,
	}
}

// Init loads the stored draft and validates every typed slot.
func (c *Composer) Init(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, err := c.store.Get(ctx, draft.New())
	if err != nil {
		return errors.Wrap(err, "load draft")
	}
	c.engine.Resize(d.Len())
	c.validateAll(d)
	c.logger.Info("draft loaded", zap.Int("slots", d.Len()))
	return nil
}

func (c *Composer) MessageTypes() []MessageType {
	descriptors := c.registry.Descriptors()
	types := make([]MessageType, 0, len(descriptors))
	for _, d := range descriptors {
		types = append(types, MessageType{Name: d.Name(), Category: d.Category, HasInfo: d.HasInfo()})
	}
	return types
}

func (c *Composer) Session() core.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

func (c *Composer) Draft(ctx context.Context) (draft.Draft, error) {
	return c.store.Get(ctx, draft.New())
}

// View reads the draft and the validation results under mu, so slot i is paired with its own result.
func (c *Composer) View(ctx context.Context) (View, error) {
	c.mu.Lock()
	d, err := c.Draft(ctx)
	if err != nil {
		c.mu.Unlock()
		return View{}, err
	}
	results := c.engine.Results()
	view := View{Outcome: c.orchestrator.Outcome()}
	c.mu.Unlock()
	for _, slot := range d.Slots() {
		sv := SlotView{Slot: slot}
		if slot.Index < len(results) {
			sv.Validation = results[slot.Index]
		}
		view.Slots = append(view.Slots, sv)
	}
	return view, nil
}

// update applies fn to the stored draft and returns the stored result.
// Must be called with mu held.
func (c *Composer) update(ctx context.Context, fn func(draft.Draft) (draft.Draft, error)) (draft.Draft, error) {
	var next draft.Draft
	err := c.store.Set(ctx, func(d draft.Draft) (draft.Draft, error) {
		var err error
		next, err = fn(d)
		return next, err
	})
	return next, err
}

func (c *Composer) AddSlot(ctx context.Context) (draft.Slot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, err := c.update(ctx, func(d draft.Draft) (draft.Draft, error) {
		return d.AddSlot(), nil
	})
	if err != nil {
		return draft.Slot{}, err
	}
	c.engine.Resize(d.Len())
	return d.Slot(d.Len() - 1)
}

// SetType selects the message type of slot i. An empty type clears the selection; unknown types are rejected.
func (c *Composer) SetType(ctx context.Context, i int, msgType string) (draft.Slot, error) {
	if _, ok := c.registry.Lookup(msgType); msgType != "" && !ok {
		return draft.Slot{}, fmt.Errorf("%w: %q", registry.ErrUnknownType, msgType)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	before, err := c.store.Get(ctx, draft.New())
	if err != nil {
		return draft.Slot{}, err
	}
	d, err := c.update(ctx, func(d draft.Draft) (draft.Draft, error) {
		return d.SetType(i, msgType, c.registry, c.session)
	})
	if err != nil {
		return draft.Slot{}, err
	}
	slot, err := d.Slot(i)
	if err != nil {
		return draft.Slot{}, err
	}
	if prev, err := before.Slot(i); err != nil || prev != slot {
		c.validate(slot)
	}
	return slot, nil
}

func (c *Composer) SetInput(ctx context.Context, i int, text string) (draft.Slot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, err := c.update(ctx, func(d draft.Draft) (draft.Draft, error) {
		return d.SetInput(i, text, c.registry, c.session)
	})
	if err != nil {
		return draft.Slot{}, err
	}
	slot, err := d.Slot(i)
	if err != nil {
		return draft.Slot{}, err
	}
	c.validate(slot)
	return slot, nil
}

func (c *Composer) DeleteSlot(ctx context.Context, k int) (draft.Draft, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, err := c.update(ctx, func(d draft.Draft) (draft.Draft, error) {
		return d.DeleteSlot(k)
	})
	if err != nil {
		return draft.Draft{}, err
	}
	c.engine.Remove(k)
	return d, nil
}

// SetSession replaces the session and revalidates the draft.
// Session-derived fields of every slot are refreshed only for a connected wallet:
// disconnecting keeps the addresses the user already has in the draft.
func (c *Composer) SetSession(ctx context.Context, s core.Session) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var (
		d   draft.Draft
		err error
	)
	if s.IsAuthenticated() {
		d, err = c.update(ctx, func(d draft.Draft) (draft.Draft, error) {
			return d.Refresh(c.registry, s), nil
		})
	} else {
		d, err = c.store.Get(ctx, draft.New())
	}
	if err != nil {
		return err
	}
	c.session = s
	c.logger.Info("session changed", zap.String("address", s.Address), zap.String("chain_id", s.ChainID))
	c.validateAll(d)
	return nil
}

// Submit broadcasts the draft. Slots that fail to convert are marked invalid.
// It returns false when a previous submission has not been dismissed yet.
func (c *Composer) Submit(ctx context.Context) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, err := c.store.Get(ctx, draft.New())
	if err != nil {
		return false, err
	}
	if !c.orchestrator.Submit(ctx, d, c.session) {
		return false, nil
	}
	for _, e := range c.orchestrator.Outcome().SlotErrors {
		c.engine.Fail(e.Index, e.Err)
	}
	return true, nil
}

func (c *Composer) Outcome() broadcast.Outcome {
	return c.orchestrator.Outcome()
}

func (c *Composer) Dismiss() bool {
	return c.orchestrator.Dismiss()
}

// Info renders the info table of the message type selected in slot i.
// The slot and the session are read together; the queries run without holding mu.
func (c *Composer) Info(ctx context.Context, i int) (registry.Info, error) {
	c.mu.Lock()
	d, err := c.Draft(ctx)
	if err != nil {
		c.mu.Unlock()
		return registry.Info{}, err
	}
	s := c.session
	c.mu.Unlock()
	slot, err := d.Slot(i)
	if err != nil {
		return registry.Info{}, err
	}
	return c.registry.Info(ctx, slot.Type, s)
}

// Must be called with mu held.
func (c *Composer) validate(slot draft.Slot) {
	c.engine.Trigger(c.ctx, slot.Index, slot.Type, slot.Input, c.session)
}

// Must be called with mu held.
func (c *Composer) validateAll(d draft.Draft) {
	for _, slot := range d.Slots() {
		c.validate(slot)
	}
}
