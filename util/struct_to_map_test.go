package util

import (
	"reflect"
	"testing"
)

type nested struct {
	Size int64
}

type sample struct {
	Name   string
	Nested *nested
	Values map[string]string
	Any    interface{}
	hidden string
}

func TestStrToMap(t *testing.T) {
	got := StrToMap(`opts`, &sample{
		Name:   `job`,
		Nested: &nested{Size: 64},
		Values: map[string]string{`b`: `2`, `a`: `1`},
		hidden: `x`,
	})

	want := [][]string{
		{`opts.Any`, `<nil>`},
		{`opts.Name`, `job`},
		{`opts.Nested.Size`, `64`},
		{`opts.Values.a`, `1`},
		{`opts.Values.b`, `2`},
	}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("StrToMap() = %v, want %v", got, want)
	}
}

func TestStrToMap_Nil(t *testing.T) {
	var s *sample
	if got := StrToMap(`opts`, s); len(got) != 0 {
		t.Errorf("StrToMap() = %v", got)
	}
}
