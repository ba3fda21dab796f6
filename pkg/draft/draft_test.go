package draft

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/arnac-io/txcomposer/pkg/core"
	"github.com/arnac-io/txcomposer/pkg/registry"
)

func testSession(t *testing.T, fill byte) core.Session {
	t.Helper()
	data, err := bech32.ConvertBits(bytes.Repeat([]byte{fill}, 20), 8, 5, true)
	require.Nil(t, err)
	address, err := bech32.Encode("secret", data)
	require.Nil(t, err)
	s, err := core.NewSession(address, "secret-4", "uscrt", nil, nil)
	require.Nil(t, err)
	return s
}

// draftOf builds a draft from (type, input) pairs.
func draftOf(pairs ...[2]string) Draft {
	d := Draft{}
	for i, p := range pairs {
		d.slots = append(d.slots, Slot{Index: i, Type: p[0], Input: p[1]})
	}
	return d
}

func TestNew(t *testing.T) {
	d := New()
	require.Equal(t, 1, d.Len())
	require.Equal(t, []Slot{{Index: 0}}, d.Slots())
}

func TestAddSlot(t *testing.T) {
	d := draftOf([2]string{"MsgSend", "{}"}, [2]string{"MsgVote", "x"})
	next := d.AddSlot()
	require.Equal(t, 2, d.Len())
	require.Equal(t, 3, next.Len())
	slot, err := next.Slot(2)
	require.Nil(t, err)
	require.Equal(t, Slot{Index: 2}, slot)
	if diff := cmp.Diff(d.Slots(), next.Slots()[:2]); diff != "" {
		t.Fatalf("existing slots changed (-want +got):\n%s", diff)
	}
}

func TestSetType(t *testing.T) {
	s := testSession(t, 1)
	gen := registry.Default()
	sendExample, err := gen.Example("MsgSend", s, nil)
	require.Nil(t, err)

	tests := []struct {
		name      string
		draft     Draft
		index     int
		msgType   string
		wantInput string
		wantErr   error
	}{
		{
			name:      "new type replaces input",
			draft:     draftOf([2]string{"MsgVote", `{"voter":"me"}`}),
			msgType:   "MsgSend",
			wantInput: string(sendExample),
		},
		{
			name:      "same type keeps input",
			draft:     draftOf([2]string{"MsgSend", `{"edited":true}`}),
			msgType:   "MsgSend",
			wantInput: `{"edited":true}`,
		},
		{
			name:      "empty type clears input",
			draft:     draftOf([2]string{"MsgSend", `{}`}),
			msgType:   "",
			wantInput: "",
		},
		{
			name:      "unknown type clears input",
			draft:     draftOf([2]string{"MsgSend", `{}`}),
			msgType:   "MsgTransfer",
			wantInput: "",
		},
		{
			name:    "out of range",
			draft:   New(),
			index:   3,
			msgType: "MsgSend",
			wantErr: ErrSlotNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, err := tt.draft.SetType(tt.index, tt.msgType, gen, s)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.Nil(t, err)
			slot, err := next.Slot(tt.index)
			require.Nil(t, err)
			require.Equal(t, tt.msgType, slot.Type)
			require.Equal(t, tt.wantInput, slot.Input)
		})
	}
}

type failingGenerator struct{}

func (failingGenerator) Example(name string, s core.Session, previous []byte) ([]byte, error) {
	return nil, fmt.Errorf("generator is broken")
}

func TestSetType_GeneratorError(t *testing.T) {
	d := New()
	next, err := d.SetType(0, "MsgSend", failingGenerator{}, core.Session{})
	require.ErrorContains(t, err, "generator is broken")
	require.Equal(t, d.Slots(), next.Slots())
}

func TestSetInput(t *testing.T) {
	s := testSession(t, 1)
	gen := registry.Default()
	d := draftOf([2]string{"MsgDelegate", "{}"}, [2]string{"", ""})

	next, err := d.SetInput(0, "{ not json", gen, s)
	require.Nil(t, err)
	slot, _ := next.Slot(0)
	require.Equal(t, "{ not json", slot.Input)

	next, err = next.SetInput(0, "", gen, s)
	require.Nil(t, err)
	example, err := gen.Example("MsgDelegate", s, nil)
	require.Nil(t, err)
	slot, _ = next.Slot(0)
	require.Equal(t, string(example), slot.Input)

	next, err = next.SetInput(1, "", gen, s)
	require.Nil(t, err)
	slot, _ = next.Slot(1)
	require.Equal(t, "", slot.Input)

	_, err = next.SetInput(-1, "x", gen, s)
	require.ErrorIs(t, err, ErrSlotNotFound)
}

func TestDeleteSlot(t *testing.T) {
	for n := 1; n <= 5; n++ {
		for k := 0; k < n; k++ {
			t.Run(fmt.Sprintf("n=%d,k=%d", n, k), func(t *testing.T) {
				var pairs [][2]string
				for i := 0; i < n; i++ {
					pairs = append(pairs, [2]string{"MsgSend", fmt.Sprintf(`{"slot":%d}`, i)})
				}
				d := draftOf(pairs...)
				next, err := d.DeleteSlot(k)
				require.Nil(t, err)

				wantLen := n - 1
				if wantLen < 1 {
					wantLen = 1
				}
				require.Equal(t, wantLen, next.Len())
				old, got := d.Slots(), next.Slots()
				for i := range got {
					require.Equal(t, i, got[i].Index)
				}
				if n == 1 {
					require.Equal(t, New().Slots(), got)
					return
				}
				if diff := cmp.Diff(old[:k], got[:k]); diff != "" {
					t.Fatalf("prefix changed (-want +got):\n%s", diff)
				}
				for i := k; i < n-1; i++ {
					require.Equal(t, old[i+1].Type, got[i].Type)
					require.Equal(t, old[i+1].Input, got[i].Input)
				}
			})
		}
	}
}

func TestDeleteSlot_Middle(t *testing.T) {
	d := draftOf([2]string{"MsgSend", "A"}, [2]string{"MsgVote", "B"}, [2]string{"MsgDeposit", "C"})
	next, err := d.DeleteSlot(1)
	require.Nil(t, err)
	want := []Slot{
		{Index: 0, Type: "MsgSend", Input: "A"},
		{Index: 1, Type: "MsgDeposit", Input: "C"},
	}
	if diff := cmp.Diff(want, next.Slots()); diff != "" {
		t.Fatalf("unexpected slots (-want +got):\n%s", diff)
	}
	_, err = next.DeleteSlot(2)
	require.ErrorIs(t, err, ErrSlotNotFound)
}

func TestRefresh(t *testing.T) {
	s := testSession(t, 5)
	d := draftOf(
		[2]string{"MsgSend", `{"from_address":"secret1old","to_address":"secret1friend","amount":"9uscrt"}`},
		[2]string{"MsgSend", `{"from_address": broken`},
		[2]string{"", `{"from_address":"secret1old"}`},
		[2]string{"MsgVote", `[1,2]`},
	)
	next := d.Refresh(registry.Default(), s)
	want := []Slot{
		{Index: 0, Type: "MsgSend", Input: `{
  "from_address": "` + s.Address + `",
  "to_address": "secret1friend",
  "amount": "9uscrt"
}`},
		{Index: 1, Type: "MsgSend", Input: `{"from_address": broken`},
		{Index: 2, Type: "", Input: `{"from_address":"secret1old"}`},
		{Index: 3, Type: "MsgVote", Input: "[\n  1,\n  2\n]"},
	}
	if diff := cmp.Diff(want, next.Slots()); diff != "" {
		t.Fatalf("unexpected slots (-want +got):\n%s", diff)
	}
}

func TestWire(t *testing.T) {
	d := draftOf([2]string{"MsgSend", `{"a":1}`}, [2]string{"", ""})
	data, err := Encode(d)
	require.Nil(t, err)
	require.JSONEq(t, `{"0":["MsgSend","{\"a\":1}"],"1":["",""]}`, string(data))

	decoded, err := Decode(data)
	require.Nil(t, err)
	require.Equal(t, d.Slots(), decoded.Slots())

	tests := []struct {
		name    string
		data    string
		want    []Slot
		wantErr bool
	}{
		{name: "empty", data: "", want: New().Slots()},
		{name: "null", data: "null", want: New().Slots()},
		{name: "empty object", data: "{}", want: New().Slots()},
		{
			name: "gaps are closed",
			data: `{"10":["MsgVote","c"],"2":["MsgSend","b"],"0":["","a"]}`,
			want: []Slot{
				{Index: 0, Type: "", Input: "a"},
				{Index: 1, Type: "MsgSend", Input: "b"},
				{Index: 2, Type: "MsgVote", Input: "c"},
			},
		},
		{name: "non numeric key", data: `{"first":["",""]}`, wantErr: true},
		{name: "negative key", data: `{"-1":["",""]}`, wantErr: true},
		{name: "not json", data: `{"0":`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Decode([]byte(tt.data))
			if tt.wantErr {
				require.NotNil(t, err)
				return
			}
			require.Nil(t, err)
			require.Equal(t, tt.want, d.Slots())
		})
	}
}

func TestStores(t *testing.T) {
	stores := map[string]func(t *testing.T) Store{
		"memory": func(t *testing.T) Store {
			return NewMemoryStore()
		},
		"sqlite": func(t *testing.T) Store {
			store, err := OpenSQLite(filepath.Join(t.TempDir(), "drafts.db"), "default")
			require.Nil(t, err)
			t.Cleanup(func() { store.Close() })
			return store
		},
	}
	for name, open := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := open(t)

			def := draftOf([2]string{"MsgSend", "default"})
			got, err := store.Get(ctx, def)
			require.Nil(t, err)
			require.Equal(t, def.Slots(), got.Slots())

			err = store.Set(ctx, func(d Draft) (Draft, error) {
				require.Equal(t, New().Slots(), d.Slots())
				return d.AddSlot().AddSlot(), nil
			})
			require.Nil(t, err)
			got, err = store.Get(ctx, def)
			require.Nil(t, err)
			require.Equal(t, 3, got.Len())

			failure := errors.New("update failed")
			err = store.Set(ctx, func(d Draft) (Draft, error) {
				return d.AddSlot(), failure
			})
			require.ErrorIs(t, err, failure)
			got, err = store.Get(ctx, def)
			require.Nil(t, err)
			require.Equal(t, 3, got.Len())
		})
	}
}
