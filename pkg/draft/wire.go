package draft

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/go-faster/errors"
	"golang.org/x/exp/slices"
)

// Wire is the persisted form of a Draft: slot index -> [type, input].
type Wire map[string][2]string

func (d Draft) Wire() Wire {
	w := make(Wire, len(d.slots))
	for i, slot := range d.slots {
		w[strconv.Itoa(i)] = [2]string{slot.Type, slot.Input}
	}
	return w
}

// FromWire rebuilds a Draft. Keys are ordered numerically and indices are made contiguous.
func FromWire(w Wire) (Draft, error) {
	if len(w) == 0 {
		return New(), nil
	}
	type entry struct {
		key   int
		value [2]string
	}
	entries := make([]entry, 0, len(w))
	for key, value := range w {
		n, err := strconv.Atoi(key)
		if err != nil || n < 0 {
			return Draft{}, fmt.Errorf("invalid slot index %q", key)
		}
		entries = append(entries, entry{key: n, value: value})
	}
	slices.SortFunc(entries, func(a, b entry) int {
		return a.key - b.key
	})
	d := Draft{slots: make([]Slot, len(entries))}
	for i, e := range entries {
		d.slots[i] = Slot{Index: i, Type: e.value[0], Input: e.value[1]}
	}
	return d, nil
}

func Encode(d Draft) ([]byte, error) {
	return json.Marshal(d.Wire())
}

// Decode parses the persisted form. Empty data yields the default draft.
func Decode(data []byte) (Draft, error) {
	if len(data) == 0 {
		return New(), nil
	}
	var w Wire
	if err := json.Unmarshal(data, &w); err != nil {
		return Draft{}, errors.Wrap(err, "decode draft")
	}
	return FromWire(w)
}
