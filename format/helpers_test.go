package format

import (
	"testing"

	"github.com/tryfix/log"
	"github.com/tryfix/sourceformat/encoding"
	"github.com/tryfix/sourceformat/source"
)

func newTestFormat(t *testing.T) *SourceFormat {
	registry := encoding.NewRegistry()
	if err := registry.Register(source.MockSourceType, source.MockSourceEncoder()); err != nil {
		t.Fatal(err)
	}

	return NewSourceFormat(source.NewOptions(), NewCodec(registry, log.NewNoopLogger()))
}

func mockSource(name string, n int, elementSize int64) *source.MockSource {
	elements := make([]int, n)
	for i := range elements {
		elements[i] = i + 1
	}

	return &source.MockSource{
		Name:             name,
		Elements:         elements,
		ElementSizeBytes: elementSize,
	}
}

func readAll(t *testing.T, it *ReaderIterator) []interface{} {
	defer func() {
		if err := it.Close(); err != nil {
			t.Error(err)
		}
	}()

	var out []interface{}
	for {
		ok, err := it.HasNext()
		if err != nil {
			t.Fatal(err)
		}
		if !ok {
			return out
		}

		v, err := it.Next()
		if err != nil {
			t.Fatal(err)
		}
		out = append(out, v)
	}
}
