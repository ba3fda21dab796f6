package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
	"golang.org/x/exp/slices"

	"github.com/arnac-io/txcomposer/pkg/core"
)

// InfoProvider returns read-only information relevant to composing a message.
type InfoProvider func(ctx context.Context, s core.Session) (Info, error)

// contextField is a payload field whose value is derived from the session.
type contextField struct {
	path string
	// parent, when set, must exist in a previous payload for the field to be refreshed.
	parent string
	value  func(s core.Session) string
}

func account(path string) contextField {
	return contextField{path: path, value: func(s core.Session) string { return s.Address }}
}

func validator(path string) contextField {
	return contextField{path: path, value: func(s core.Session) string { return s.ValidatorAddress }}
}

func (f contextField) under(parent string) contextField {
	f.parent = parent
	return f
}

// Descriptor describes a single message kind.
type Descriptor struct {
	Kind     Kind
	Category string

	example func(s core.Session) any
	refresh []contextField
	convert func(r *reader, s core.Session) (core.Msg, error)
	info    InfoProvider
}

func (d Descriptor) Name() string {
	return d.Kind.String()
}

func (d Descriptor) HasInfo() bool {
	return d.info != nil
}

// Example returns a pretty-printed payload for the kind.
// With a nil previous payload it returns a complete representative example.
// Otherwise only the session-derived fields of previous are updated and everything else,
// key order included, is kept.
func (d Descriptor) Example(s core.Session, previous []byte) ([]byte, error) {
	if previous == nil {
		b, err := json.Marshal(d.example(s))
		if err != nil {
			return nil, err
		}
		return FormatJSON(b), nil
	}
	if !gjson.ValidBytes(previous) {
		return nil, &ParseError{Err: jsonSyntaxError(previous)}
	}
	if !gjson.ParseBytes(previous).IsObject() {
		return nil, ErrNotObject
	}
	out := bytes.Clone(previous)
	for _, f := range d.refresh {
		if f.parent != "" && !gjson.GetBytes(out, f.parent).Exists() {
			continue
		}
		var err error
		out, err = sjson.SetBytes(out, f.path, f.value(s))
		if err != nil {
			return nil, fmt.Errorf("refresh %s: %w", f.path, err)
		}
	}
	return FormatJSON(out), nil
}

// Convert builds a structured message from a parsed payload. raw is never modified.
func (d Descriptor) Convert(raw gjson.Result, s core.Session) (core.Msg, error) {
	if !raw.IsObject() {
		return nil, &ConversionError{Reason: ErrNotObject.Error()}
	}
	return d.convert(newReader(raw), s)
}

func (d Descriptor) Info(ctx context.Context, s core.Session) (Info, error) {
	if d.info == nil {
		return Info{}, ErrNoInfo
	}
	return d.info(ctx, s)
}

// Registry is the closed catalog of message kinds.
type Registry struct {
	byKind [kindCount]Descriptor
	sorted []Descriptor
}

var defaultRegistry = mustBuild(allDescriptors())

// Default returns the registry holding every supported message kind.
func Default() *Registry {
	return defaultRegistry
}

func allDescriptors() []Descriptor {
	var all []Descriptor
	all = append(all, bankDescriptors()...)
	all = append(all, computeDescriptors()...)
	all = append(all, distributionDescriptors()...)
	all = append(all, govDescriptors()...)
	all = append(all, slashingDescriptors()...)
	all = append(all, stakingDescriptors()...)
	all = append(all, vestingDescriptors()...)
	return all
}

func mustBuild(descriptors []Descriptor) *Registry {
	r, err := build(descriptors)
	if err != nil {
		panic(err)
	}
	return r
}

// build checks that every kind has exactly one complete descriptor.
func build(descriptors []Descriptor) (*Registry, error) {
	r := &Registry{}
	for _, d := range descriptors {
		if d.Kind <= KindUnknown || d.Kind >= kindCount {
			return nil, fmt.Errorf("descriptor for invalid kind %d", d.Kind)
		}
		if r.byKind[d.Kind].Kind != KindUnknown {
			return nil, fmt.Errorf("duplicate descriptor for %s", d.Kind)
		}
		if d.Category == "" || d.example == nil || d.convert == nil {
			return nil, fmt.Errorf("incomplete descriptor for %s", d.Kind)
		}
		r.byKind[d.Kind] = d
	}
	for _, k := range Kinds() {
		if r.byKind[k].Kind == KindUnknown {
			return nil, fmt.Errorf("no descriptor for %s", k)
		}
		r.sorted = append(r.sorted, r.byKind[k])
	}
	slices.SortFunc(r.sorted, func(a, b Descriptor) int {
		if c := strings.Compare(a.Category, b.Category); c != 0 {
			return c
		}
		return strings.Compare(a.Name(), b.Name())
	})
	return r, nil
}

// Descriptors returns all descriptors ordered by category and then by name.
func (r *Registry) Descriptors() []Descriptor {
	return slices.Clone(r.sorted)
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.sorted))
	for _, d := range r.sorted {
		names = append(names, d.Name())
	}
	return names
}

func (r *Registry) Lookup(name string) (Descriptor, bool) {
	k, ok := ParseKind(name)
	if !ok {
		return Descriptor{}, false
	}
	return r.byKind[k], true
}

func (r *Registry) lookup(name string) (Descriptor, error) {
	d, ok := r.Lookup(name)
	if !ok {
		return Descriptor{}, fmt.Errorf("%w: %q", ErrUnknownType, name)
	}
	return d, nil
}

func (r *Registry) Example(name string, s core.Session, previous []byte) ([]byte, error) {
	d, err := r.lookup(name)
	if err != nil {
		return nil, err
	}
	return d.Example(s, previous)
}

func (r *Registry) Convert(name string, raw gjson.Result, s core.Session) (core.Msg, error) {
	d, err := r.lookup(name)
	if err != nil {
		return nil, err
	}
	return d.Convert(raw, s)
}

// ConvertInput parses slot input and converts it.
// Malformed JSON is reported as *ParseError, invalid fields as *ConversionError.
func (r *Registry) ConvertInput(name, input string, s core.Session) (core.Msg, error) {
	d, err := r.lookup(name)
	if err != nil {
		return nil, err
	}
	if !gjson.Valid(input) {
		return nil, &ParseError{Err: jsonSyntaxError([]byte(input))}
	}
	return d.Convert(gjson.Parse(input), s)
}

func (r *Registry) Info(ctx context.Context, name string, s core.Session) (Info, error) {
	d, err := r.lookup(name)
	if err != nil {
		return Info{}, err
	}
	return d.Info(ctx, s)
}

// FormatJSON re-indents a valid JSON document with two spaces, keeping key order.
func FormatJSON(b []byte) []byte {
	return bytes.TrimSpace(pretty.PrettyOptions(b, &pretty.Options{Indent: "  "}))
}

// jsonSyntaxError reports why b is not valid JSON, in the words of encoding/json.
func jsonSyntaxError(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	return fmt.Errorf("invalid JSON")
}

func exampleAddress(s core.Session) string {
	return s.AddressPrefix + "1example"
}

func exampleValidator(s core.Session) string {
	return s.AddressPrefix + core.ValidatorPrefixSuffix + "1example"
}

func exampleAmount(s core.Session, amount int64) string {
	return core.NewCoin(amount, s.GasDenom).String()
}
