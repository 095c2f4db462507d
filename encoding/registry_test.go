package encoding

import (
	"reflect"
	"testing"
)

type point struct {
	X, Y int
}

func newTestRegistry(t *testing.T) *Registry {
	r := NewRegistry()
	if err := r.Register(`point`, NewJsonEncoder(func() interface{} { return new(point) })); err != nil {
		t.Fatal(err)
	}

	return r
}

func TestRegistry_RoundTrip(t *testing.T) {
	r := newTestRegistry(t)

	byt, err := r.Encode(`point`, &point{X: 1, Y: 2})
	if err != nil {
		t.Fatal(err)
	}

	tag, v, err := r.Decode(byt)
	if err != nil {
		t.Fatal(err)
	}

	if tag != `point` {
		t.Errorf("tag = %s", tag)
	}

	if !reflect.DeepEqual(v, &point{X: 1, Y: 2}) {
		t.Errorf("Decode() = %+v", v)
	}
}

func TestRegistry_Register(t *testing.T) {
	r := newTestRegistry(t)

	if err := r.Register(`point`, NewJsonEncoder(func() interface{} { return new(point) })); err == nil {
		t.Error(`expected duplicate registration error`)
	}

	if err := r.Register(``, NewJsonEncoder(func() interface{} { return new(point) })); err == nil {
		t.Error(`expected empty tag error`)
	}

	if !reflect.DeepEqual(r.Tags(), []string{`point`}) {
		t.Errorf("Tags() = %v", r.Tags())
	}
}

func TestRegistry_Decode(t *testing.T) {
	r := newTestRegistry(t)

	tests := []struct {
		name string
		data []byte
	}{
		{name: `malformed`, data: []byte(`not json`)},
		{name: `missing_type`, data: []byte(`{"payload":"e30="}`)},
		{name: `unknown_type`, data: []byte(`{"type":"circle","payload":"e30="}`)},
		{name: `bad_payload`, data: []byte(`{"type":"point","payload":"bm90IGpzb24="}`)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := r.Decode(tt.data); err == nil {
				t.Error(`expected decode error`)
			}
		})
	}
}

func TestJsonEncoder_Encode_WrongType(t *testing.T) {
	enc := NewJsonEncoder(func() interface{} { return new(point) })()
	if _, err := enc.Encode(point{}); err == nil {
		t.Error(`expected type error`)
	}
}
