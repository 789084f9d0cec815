package key

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	json2 "github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
)

// Attr is one primary key attribute.
type Attr struct {
	Name  string
	Value any
}

// Key identifies one unit of computation. Attributes are kept sorted by name
// so that two keys with the same content always encode to the same bytes.
// A Key must not be modified once built.
type Key struct {
	attrs []Attr
}

func New(attrs ...Attr) Key {
	k := Key{attrs: append([]Attr{}, attrs...)}
	sort.Slice(k.attrs, func(i, j int) bool {
		return k.attrs[i].Name < k.attrs[j].Name
	})
	return k
}

func FromMap(m map[string]any) Key {
	attrs := make([]Attr, 0, len(m))
	for name, value := range m {
		attrs = append(attrs, Attr{Name: name, Value: value})
	}
	return New(attrs...)
}

func (k Key) Len() int {
	return len(k.attrs)
}

func (k Key) Names() []string {
	names := make([]string, len(k.attrs))
	for i, attr := range k.attrs {
		names[i] = attr.Name
	}
	return names
}

func (k Key) Get(name string) (any, bool) {
	for _, attr := range k.attrs {
		if attr.Name == name {
			return attr.Value, true
		}
	}
	return nil, false
}

func (k Key) Map() map[string]any {
	m := make(map[string]any, len(k.attrs))
	for _, attr := range k.attrs {
		m[attr.Name] = attr.Value
	}
	return m
}

// Project returns a new key with only the given attributes. Missing names are
// just skipped, the caller decides whether a shorter key is acceptable.
func (k Key) Project(names ...string) Key {
	attrs := []Attr{}
	for _, name := range names {
		if value, exists := k.Get(name); exists {
			attrs = append(attrs, Attr{Name: name, Value: value})
		}
	}
	return New(attrs...)
}

// Encode returns the canonical JSON encoding of the key: one object with the
// attributes in name order, values marshaled deterministically. This is the
// form stored on disk and the form used for ordering and equality.
func (k Key) Encode() ([]byte, error) {
	buffer := &bytes.Buffer{}
	e := jsontext.NewEncoder(buffer)

	err := e.WriteToken(jsontext.BeginObject)
	if err != nil {
		return nil, fmt.Errorf("encode key: %w", err)
	}
	for _, attr := range k.attrs {
		err = e.WriteToken(jsontext.String(attr.Name))
		if err != nil {
			return nil, fmt.Errorf("encode key attribute '%s': %w", attr.Name, err)
		}
		err = json2.MarshalEncode(e, attr.Value, json2.Deterministic(true))
		if err != nil {
			return nil, fmt.Errorf("encode key attribute '%s': %w", attr.Name, err)
		}
	}
	err = e.WriteToken(jsontext.EndObject)
	if err != nil {
		return nil, fmt.Errorf("encode key: %w", err)
	}

	return bytes.TrimRight(buffer.Bytes(), "\n"), nil
}

func Decode(b []byte) (Key, error) {
	m := map[string]any{}
	err := json2.Unmarshal(b, &m)
	if err != nil {
		return Key{}, fmt.Errorf("decode key: %w", err)
	}
	return FromMap(m), nil
}

// Equal compares by canonical encoding, so an int 1 and a float64 1 coming
// back from JSON are the same attribute value.
func (k Key) Equal(other Key) bool {
	return k.canonical() == other.canonical()
}

// Less orders keys by their canonical encoding. Values that cannot be
// marshaled fall back to the String form, which keeps the order total.
func (k Key) Less(other Key) bool {
	return k.canonical() < other.canonical()
}

func (k Key) canonical() string {
	b, err := k.Encode()
	if err != nil {
		return k.String()
	}
	return string(b)
}

// String renders the key for humans: (a=1, b=x).
func (k Key) String() string {
	parts := make([]string, len(k.attrs))
	for i, attr := range k.attrs {
		parts[i] = fmt.Sprintf("%s=%v", attr.Name, attr.Value)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
