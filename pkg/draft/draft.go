package draft

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/arnac-io/txcomposer/pkg/core"
	"github.com/arnac-io/txcomposer/pkg/registry"
)

var ErrSlotNotFound = errors.New("slot not found")

// Generator produces example payloads for message types.
type Generator interface {
	Example(name string, s core.Session, previous []byte) ([]byte, error)
}

// Slot pairs a message type with the raw JSON typed by the user.
type Slot struct {
	Index int    `json:"index"`
	Type  string `json:"type"`
	Input string `json:"input"`
}

// Draft is an ordered list of slots. Slot identity is positional: indices are always 0..Len()-1.
// A Draft is a value; every operation returns a new Draft and leaves the receiver untouched.
type Draft struct {
	slots []Slot
}

// New returns a draft with a single empty slot.
func New() Draft {
	return Draft{slots: []Slot{{}}}
}

func (d Draft) Len() int {
	return len(d.slots)
}

func (d Draft) Slot(i int) (Slot, error) {
	if i < 0 || i >= len(d.slots) {
		return Slot{}, fmt.Errorf("%w: %d", ErrSlotNotFound, i)
	}
	return d.slots[i], nil
}

func (d Draft) Slots() []Slot {
	slots := make([]Slot, len(d.slots))
	copy(slots, d.slots)
	return slots
}

func (d Draft) clone() Draft {
	return Draft{slots: d.Slots()}
}

// AddSlot appends an empty slot.
func (d Draft) AddSlot() Draft {
	next := d.clone()
	next.slots = append(next.slots, Slot{Index: len(next.slots)})
	return next
}

// SetType changes the type of slot i and replaces its input with a fresh example.
// Setting the current type again leaves the slot untouched.
func (d Draft) SetType(i int, msgType string, gen Generator, s core.Session) (Draft, error) {
	slot, err := d.Slot(i)
	if err != nil {
		return d, err
	}
	if slot.Type == msgType {
		return d, nil
	}
	input, err := example(gen, msgType, s)
	if err != nil {
		return d, err
	}
	next := d.clone()
	next.slots[i].Type = msgType
	next.slots[i].Input = input
	return next, nil
}

// SetInput stores text verbatim. An empty text resets the slot to a fresh example of its type.
func (d Draft) SetInput(i int, text string, gen Generator, s core.Session) (Draft, error) {
	slot, err := d.Slot(i)
	if err != nil {
		return d, err
	}
	if text == "" {
		text, err = example(gen, slot.Type, s)
		if err != nil {
			return d, err
		}
	}
	next := d.clone()
	next.slots[i].Input = text
	return next, nil
}

// DeleteSlot removes slot k and shifts the following slots down by one.
// Deleting the only slot resets it instead.
func (d Draft) DeleteSlot(k int) (Draft, error) {
	if _, err := d.Slot(k); err != nil {
		return d, err
	}
	if len(d.slots) == 1 {
		return New(), nil
	}
	slots := make([]Slot, 0, len(d.slots)-1)
	slots = append(slots, d.slots[:k]...)
	slots = append(slots, d.slots[k+1:]...)
	for i := k; i < len(slots); i++ {
		slots[i].Index = i
	}
	return Draft{slots: slots}, nil
}

// Refresh updates the session-derived fields of every typed slot holding valid JSON.
// Refreshed input is re-indented; anything else is kept verbatim.
func (d Draft) Refresh(gen Generator, s core.Session) Draft {
	next := d.clone()
	for i, slot := range next.slots {
		if slot.Type == "" || !gjson.Valid(slot.Input) {
			continue
		}
		b, err := gen.Example(slot.Type, s, []byte(slot.Input))
		switch {
		case err == nil:
			next.slots[i].Input = string(b)
		case errors.Is(err, registry.ErrNotObject):
			next.slots[i].Input = string(registry.FormatJSON([]byte(slot.Input)))
		}
	}
	return next
}

// example returns a fresh payload for msgType, or an empty one when the type is empty or unknown.
func example(gen Generator, msgType string, s core.Session) (string, error) {
	if msgType == "" {
		return "", nil
	}
	b, err := gen.Example(msgType, s, nil)
	if errors.Is(err, registry.ErrUnknownType) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return string(b), nil
}
