package format

import (
	"context"
	"encoding/base64"
	"reflect"
	"strings"
	"testing"

	"github.com/tryfix/sourceformat/api"
	"github.com/tryfix/sourceformat/cloud"
	"github.com/tryfix/sourceformat/source"
)

func encode(t *testing.T, f *SourceFormat, src source.Source) *api.Source {
	encoded, err := f.Codec().Serialize(src, nil)
	if err != nil {
		t.Fatal(err)
	}

	return encoded
}

// encodeWithoutMetadata builds a spec for sources whose metadata cannot be computed.
func encodeWithoutMetadata(t *testing.T, f *SourceFormat, src source.Source) *api.Source {
	blob, err := f.Codec().Registry().Encode(src.SourceType(), src)
	if err != nil {
		t.Fatal(err)
	}

	spec := cloud.ForClass(ClassName)
	cloud.AddString(spec, SerializedSourceKey, base64.StdEncoding.EncodeToString(blob))

	return &api.Source{Spec: spec}
}

func int64Ptr(v int64) *int64 {
	return &v
}

func TestSourceFormat_PerformSourceOperation_Unsupported(t *testing.T) {
	f := newTestFormat(t)

	tests := []struct {
		name string
		req  *api.OperationRequest
	}{
		{name: `nil_request`, req: nil},
		{name: `unknown_kind`, req: &api.OperationRequest{}},
		{name: `kind_without_payload`, req: &api.OperationRequest{Kind: api.OperationSplit}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := f.PerformSourceOperation(context.Background(), tt.req)
			if err != ErrUnsupportedOperation {
				t.Errorf("error = %v, want %v", err, ErrUnsupportedOperation)
			}
			if res != nil {
				t.Errorf("response = %+v, want nil", res)
			}
		})
	}
}

func TestSourceFormat_GetMetadata(t *testing.T) {
	f := newTestFormat(t)
	src := mockSource(`src`, 4, 25)
	src.Sorted = true

	res, err := f.PerformSourceOperation(context.Background(), api.NewGetMetadataRequest(encode(t, f, src)))
	if err != nil {
		t.Fatal(err)
	}

	if res.Kind != api.OperationGetMetadata || res.Split != nil {
		t.Errorf("response = %+v", res)
	}

	want := &api.SourceMetadata{ProducesSortedKeys: true, EstimatedSizeBytes: int64Ptr(100)}
	if !reflect.DeepEqual(res.GetMetadata.Metadata, want) {
		t.Errorf("metadata = %+v, want %+v", res.GetMetadata.Metadata, want)
	}
}

func TestSourceFormat_GetMetadata_Failures(t *testing.T) {
	f := newTestFormat(t)

	estimateFails := mockSource(`src`, 1, 1)
	estimateFails.EstimateErr = `size unknown`

	sortedFails := mockSource(`src`, 1, 1)
	sortedFails.SortedErr = `order unknown`

	tests := []struct {
		name string
		src  *api.Source
	}{
		{name: `estimate_fails`, src: encode(t, f, estimateFails)},
		{name: `sorted_fails`, src: encodeWithoutMetadata(t, f, sortedFails)},
		{name: `no_source`, src: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.PerformSourceOperation(context.Background(), api.NewGetMetadataRequest(tt.src)); err == nil {
				t.Error(`expected hard error`)
			}
		})
	}
}

func TestSourceFormat_Split(t *testing.T) {
	f := newTestFormat(t)
	// 200 MiB in 1 MiB elements
	src := mockSource(`src`, 200, 1<<20)

	res, err := f.PerformSourceOperation(context.Background(), api.NewSplitRequest(encode(t, f, src), int64Ptr(64<<20)))
	if err != nil {
		t.Fatal(err)
	}

	if res.Kind != api.OperationSplit || res.GetMetadata != nil {
		t.Errorf("response = %+v", res)
	}

	if res.Split.Outcome != api.SplitOutcomeSplittingHappened {
		t.Errorf("outcome = %s", res.Split.Outcome)
	}

	if len(res.Split.Shards) < 3 {
		t.Fatalf("shards = %d, want at least 3", len(res.Split.Shards))
	}

	var total int
	for _, shard := range res.Split.Shards {
		if shard.DerivationMode != api.DerivationModeIndependent {
			t.Errorf("derivation mode = %s", shard.DerivationMode)
		}

		if !shard.Source.DoesNotNeedSplitting {
			t.Error(`shard must not need splitting`)
		}

		if shard.Source.Metadata == nil || shard.Source.Metadata.EstimatedSizeBytes == nil {
			t.Error(`shard metadata missing`)
		}

		reader, err := f.CreateReader(`read`, shard.Source.Spec)
		if err != nil {
			t.Fatalf("shard does not decode: %v", err)
		}

		if err := reader.Source().Validate(); err != nil {
			t.Error(err)
		}

		it, err := reader.Iterator(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		total += len(readAll(t, it))
	}

	if total != 200 {
		t.Errorf("shards cover %d elements, want 200", total)
	}
}

func TestSourceFormat_Split_DefaultSize(t *testing.T) {
	f := newTestFormat(t)
	src := encode(t, f, mockSource(`src`, 300, 1<<20))

	split := func(size *int64) *api.SplitResponse {
		res, err := f.PerformSourceOperation(context.Background(), api.NewSplitRequest(src, size))
		if err != nil {
			t.Fatal(err)
		}
		return res.Split
	}

	want := split(int64Ptr(DefaultDesiredBundleSizeBytes))

	tests := []struct {
		name string
		size *int64
	}{
		{name: `absent`, size: nil},
		{name: `zero`, size: int64Ptr(0)},
		{name: `negative`, size: int64Ptr(-1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := split(tt.size); !reflect.DeepEqual(got, want) {
				t.Errorf("split(%v) differs from split(%d)", tt.size, DefaultDesiredBundleSizeBytes)
			}
		})
	}

	if len(want.Shards) != 5 {
		t.Errorf("shards = %d, want 5", len(want.Shards))
	}
}

func TestSourceFormat_Split_InvalidBundle(t *testing.T) {
	f := newTestFormat(t)
	src := mockSource(`src`, 10, 1)
	src.InvalidBundles = []int{1}

	_, err := f.PerformSourceOperation(context.Background(), api.NewSplitRequest(encode(t, f, src), int64Ptr(4)))
	if err == nil {
		t.Fatal(`expected invalid bundle error`)
	}

	for _, want := range []string{
		`Splitting a valid source produced an invalid bundle`,
		src.String(),
		`MockSource{name: src[1], elements: 4}`,
	} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %q", err.Error(), want)
		}
	}
}

func TestSourceFormat_Split_SingleShard(t *testing.T) {
	f := newTestFormat(t)

	tests := []struct {
		name string
		src  *source.MockSource
	}{
		{name: `empty`, src: mockSource(`empty`, 0, 1)},
		{name: `smaller_than_bundle`, src: mockSource(`small`, 3, 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := f.PerformSourceOperation(context.Background(), api.NewSplitRequest(encode(t, f, tt.src), nil))
			if err != nil {
				t.Fatal(err)
			}
			if len(res.Split.Shards) != 1 {
				t.Errorf("shards = %d, want 1", len(res.Split.Shards))
			}
		})
	}
}

func TestSourceFormat_Split_Failures(t *testing.T) {
	f := newTestFormat(t)

	splitFails := mockSource(`src`, 3, 1)
	splitFails.SplitErr = `cannot split`

	invalid := mockSource(`src`, 3, 1)
	invalid.Invalid = true

	tests := []struct {
		name string
		src  *source.MockSource
	}{
		{name: `split_fails`, src: splitFails},
		{name: `invalid_source`, src: invalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.PerformSourceOperation(context.Background(), api.NewSplitRequest(encode(t, f, tt.src), nil)); err == nil {
				t.Error(`expected error`)
			}
		})
	}
}
