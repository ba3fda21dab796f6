package registry

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"

	"github.com/arnac-io/txcomposer/pkg/core"
)

// reader extracts typed fields from a parsed payload. The first failure is kept
// and every later call becomes a no-op, so converters read fields in order and check once.
type reader struct {
	raw    gjson.Result
	prefix string
	err    *error
}

func newReader(raw gjson.Result) *reader {
	var err error
	return &reader{raw: raw, err: &err}
}

func (r *reader) Err() error {
	return *r.err
}

func (r *reader) path(field string) string {
	if r.prefix == "" {
		return field
	}
	return r.prefix + "." + field
}

func (r *reader) fail(field, reason string) {
	if *r.err == nil {
		*r.err = &ConversionError{Field: r.path(field), Reason: reason}
	}
}

// lookup returns a field that is present and not null.
func (r *reader) lookup(field string) (gjson.Result, bool) {
	if *r.err != nil {
		return gjson.Result{}, false
	}
	v := r.raw.Get(field)
	if !v.Exists() || v.Type == gjson.Null {
		return v, false
	}
	return v, true
}

func (r *reader) require(field string) (gjson.Result, bool) {
	v, ok := r.lookup(field)
	if !ok && *r.err == nil {
		r.fail(field, "missing required field")
	}
	return v, ok
}

func (r *reader) str(field string, v gjson.Result) (string, bool) {
	if v.Type != gjson.String {
		r.fail(field, "expected a string")
		return "", false
	}
	return v.Str, true
}

func (r *reader) String(field string) string {
	v, ok := r.require(field)
	if !ok {
		return ""
	}
	s, ok := r.str(field, v)
	if ok && strings.TrimSpace(s) == "" {
		r.fail(field, "must not be empty")
	}
	return s
}

func (r *reader) OptionalString(field string) string {
	v, ok := r.lookup(field)
	if !ok {
		return ""
	}
	s, _ := r.str(field, v)
	return s
}

func (r *reader) Coin(field string) core.Coin {
	s := r.String(field)
	if r.Err() != nil {
		return core.Coin{}
	}
	c, err := core.ParseCoin(s)
	if err != nil {
		r.fail(field, err.Error())
	}
	return c
}

func (r *reader) Coins(field string) core.Coins {
	s := r.String(field)
	if r.Err() != nil {
		return nil
	}
	coins, err := core.ParseCoins(s)
	if err != nil {
		r.fail(field, err.Error())
	}
	return coins
}

func (r *reader) OptionalCoins(field string) core.Coins {
	s := r.OptionalString(field)
	if s == "" || r.Err() != nil {
		return nil
	}
	coins, err := core.ParseCoins(s)
	if err != nil {
		r.fail(field, err.Error())
	}
	return coins
}

func (r *reader) decimal(field string, v gjson.Result) decimal.Decimal {
	var text string
	switch v.Type {
	case gjson.Number:
		text = v.Raw
	case gjson.String:
		text = strings.TrimSpace(v.Str)
	default:
		r.fail(field, "expected a number")
		return decimal.Decimal{}
	}
	d, err := decimal.NewFromString(text)
	if err != nil {
		r.fail(field, "invalid number "+strconv.Quote(text))
		return decimal.Decimal{}
	}
	if d.IsNegative() {
		r.fail(field, "must not be negative")
	}
	return d
}

func (r *reader) Decimal(field string) decimal.Decimal {
	v, ok := r.require(field)
	if !ok {
		return decimal.Decimal{}
	}
	return r.decimal(field, v)
}

func (r *reader) OptionalDecimal(field string) *decimal.Decimal {
	v, ok := r.lookup(field)
	if !ok {
		return nil
	}
	d := r.decimal(field, v)
	return &d
}

func (r *reader) Uint64(field string) uint64 {
	v, ok := r.require(field)
	if !ok {
		return 0
	}
	var text string
	switch v.Type {
	case gjson.Number:
		text = v.Raw
	case gjson.String:
		text = strings.TrimSpace(v.Str)
	default:
		r.fail(field, "expected an integer")
		return 0
	}
	n, err := strconv.ParseUint(text, 10, 64)
	if err != nil {
		r.fail(field, "invalid integer "+strconv.Quote(text))
	}
	return n
}

func (r *reader) Bool(field string) bool {
	v, ok := r.require(field)
	if !ok {
		return false
	}
	return r.boolean(field, v)
}

func (r *reader) OptionalBool(field string) bool {
	v, ok := r.lookup(field)
	if !ok {
		return false
	}
	return r.boolean(field, v)
}

func (r *reader) boolean(field string, v gjson.Result) bool {
	if v.Type != gjson.True && v.Type != gjson.False {
		r.fail(field, "expected true or false")
		return false
	}
	return v.Bool()
}

// Object returns a copy of a nested JSON object.
func (r *reader) Object(field string) json.RawMessage {
	v, ok := r.require(field)
	if !ok {
		return nil
	}
	if !v.IsObject() {
		r.fail(field, "expected a JSON object")
		return nil
	}
	return json.RawMessage(v.Raw)
}

// Time accepts an RFC 3339 string or a unix timestamp in seconds.
func (r *reader) Time(field string) int64 {
	v, ok := r.require(field)
	if !ok {
		return 0
	}
	switch v.Type {
	case gjson.Number:
		n, err := strconv.ParseInt(v.Raw, 10, 64)
		if err != nil {
			r.fail(field, "invalid unix timestamp "+v.Raw)
		}
		return n
	case gjson.String:
		t, err := time.Parse(time.RFC3339, strings.TrimSpace(v.Str))
		if err != nil {
			r.fail(field, "expected an RFC 3339 time, e.g. 2020-09-15T14:00:00Z")
			return 0
		}
		return t.Unix()
	}
	r.fail(field, "expected a time")
	return 0
}

func (r *reader) VoteOption(field string) core.VoteOption {
	s := r.String(field)
	if r.Err() != nil {
		return core.VoteOptionUnspecified
	}
	option, err := core.ParseVoteOption(s)
	if err != nil {
		r.fail(field, err.Error()+", expected one of "+core.VoteOptionChoices)
	}
	return option
}

// Nested returns a reader scoped to a required object field.
func (r *reader) Nested(field string) *reader {
	v, ok := r.require(field)
	if ok && !v.IsObject() {
		r.fail(field, "expected a JSON object")
	}
	return &reader{raw: v, prefix: r.path(field), err: r.err}
}

// OptionalNested is like Nested but returns nil when the field is absent.
func (r *reader) OptionalNested(field string) *reader {
	if _, ok := r.lookup(field); !ok {
		return nil
	}
	return r.Nested(field)
}

// Each calls fn with a reader for every element of a required array field.
func (r *reader) Each(field string, fn func(item *reader)) {
	v, ok := r.require(field)
	if !ok {
		return
	}
	if !v.IsArray() {
		r.fail(field, "expected an array")
		return
	}
	for i, item := range v.Array() {
		if *r.err != nil {
			return
		}
		element := field + "." + strconv.Itoa(i)
		if !item.IsObject() {
			r.fail(element, "expected a JSON object")
			return
		}
		fn(&reader{raw: item, prefix: r.path(element), err: r.err})
	}
}

// done returns msg unless a field failed to convert.
func (r *reader) done(msg core.Msg) (core.Msg, error) {
	if err := r.Err(); err != nil {
		return nil, err
	}
	return msg, nil
}
