package format

import (
	"context"
	"encoding/json"
	"reflect"
	"testing"

	"github.com/tryfix/sourceformat/cloud"
	"github.com/tryfix/sourceformat/source"
)

func TestCodec_RoundTrip(t *testing.T) {
	f := newTestFormat(t)
	src := mockSource(`src`, 3, 10)
	src.Sorted = true

	encoded, err := f.Codec().Serialize(src, nil)
	if err != nil {
		t.Fatal(err)
	}

	if encoded.Spec.ClassName() != ClassName {
		t.Errorf("class = %s", encoded.Spec.ClassName())
	}

	if !encoded.Metadata.ProducesSortedKeys {
		t.Error(`expected sorted metadata`)
	}

	if encoded.Metadata.EstimatedSizeBytes == nil || *encoded.Metadata.EstimatedSizeBytes != 30 {
		t.Errorf("EstimatedSizeBytes = %v", encoded.Metadata.EstimatedSizeBytes)
	}

	decoded, err := f.Codec().Deserialize(encoded.Spec)
	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(decoded, src) {
		t.Errorf("decoded = %+v, want %+v", decoded, src)
	}

	reader, err := decoded.CreateReader(context.Background(), source.NewOptions())
	if err != nil {
		t.Fatal(err)
	}

	got := readAll(t, NewReaderIterator(decoded, reader))
	if !reflect.DeepEqual(got, []interface{}{1, 2, 3}) {
		t.Errorf("elements = %v", got)
	}
}

func TestCodec_RoundTrip_OverTheWire(t *testing.T) {
	f := newTestFormat(t)
	src := mockSource(`src`, 2, 1)

	encoded, err := f.Codec().Serialize(src, nil)
	if err != nil {
		t.Fatal(err)
	}

	byt, err := json.Marshal(encoded.Spec)
	if err != nil {
		t.Fatal(err)
	}

	spec := cloud.Object{}
	if err := json.Unmarshal(byt, &spec); err != nil {
		t.Fatal(err)
	}

	decoded, err := f.Codec().Deserialize(spec)
	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(decoded, src) {
		t.Errorf("decoded = %+v", decoded)
	}
}

func TestCodec_Serialize_EstimationFailureIsSoft(t *testing.T) {
	f := newTestFormat(t)
	src := mockSource(`src`, 3, 10)
	src.Sorted = true
	src.EstimateErr = `size unknown`

	encoded, err := f.Codec().Serialize(src, nil)
	if err != nil {
		t.Fatalf("Serialize() error = %v", err)
	}

	if encoded.Metadata.EstimatedSizeBytes != nil {
		t.Error(`estimated size must be absent`)
	}

	if !encoded.Metadata.ProducesSortedKeys {
		t.Error(`sortedness must be kept`)
	}

	if _, err := cloud.GetString(encoded.Spec, SerializedSourceKey); err != nil {
		t.Error(err)
	}
}

func TestCodec_Serialize_Errors(t *testing.T) {
	f := newTestFormat(t)

	sortedFails := mockSource(`src`, 1, 1)
	sortedFails.SortedErr = `order unknown`

	if _, err := f.Codec().Serialize(sortedFails, nil); err == nil {
		t.Error(`expected sortedness error`)
	}

	if _, err := f.Codec().Serialize(&unregisteredSource{}, nil); err == nil {
		t.Error(`expected unknown encoder error`)
	}
}

func TestCodec_Deserialize_Errors(t *testing.T) {
	f := newTestFormat(t)

	invalid := mockSource(`broken`, 1, 1)
	invalid.Invalid = true
	encodedInvalid, err := f.Codec().Serialize(invalid, nil)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		spec cloud.Object
	}{
		{name: `missing_key`, spec: cloud.ForClass(ClassName)},
		{name: `not_base64`, spec: cloud.Object{SerializedSourceKey: `%%%`}},
		{name: `not_an_envelope`, spec: cloud.Object{SerializedSourceKey: `bm90IGpzb24=`}},
		{name: `unknown_type`, spec: cloud.Object{SerializedSourceKey: `eyJ0eXBlIjoiZmlsZSIsInBheWxvYWQiOiJlMzA9In0=`}},
		{name: `invalid_source`, spec: encodedInvalid.Spec},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.Codec().Deserialize(tt.spec); err == nil {
				t.Error(`expected decode error`)
			}
		})
	}
}

type unregisteredSource struct {
	source.MockSource
}

func (u *unregisteredSource) SourceType() string {
	return `unregistered`
}
