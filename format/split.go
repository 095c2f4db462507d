package format

import (
	"context"
	"fmt"

	"github.com/tryfix/errors"
	"github.com/tryfix/sourceformat/api"
)

// DefaultDesiredBundleSizeBytes is used when a split request names no positive shard size.
const DefaultDesiredBundleSizeBytes int64 = 64 * (1 << 20)

func desiredBundleSize(options *api.SplitOptions) int64 {
	if options == nil || options.DesiredShardSizeBytes == nil || *options.DesiredShardSizeBytes <= 0 {
		return DefaultDesiredBundleSizeBytes
	}

	return *options.DesiredShardSizeBytes
}

// performSplit produces independent, unsplittable shards. A single invalid bundle fails the
// whole operation.
func (f *SourceFormat) performSplit(ctx context.Context, request *api.SplitRequest) (*api.SplitResponse, error) {
	if request == nil {
		return nil, ErrUnsupportedOperation
	}

	src, err := f.decodeRequestSource(request.Source)
	if err != nil {
		return nil, err
	}

	f.logger.Debug(fmt.Sprintf(`Splitting source: %s`, src))

	bundles, err := src.SplitIntoBundles(desiredBundleSize(request.Options), f.options)
	if err != nil {
		return nil, errors.WithPrevious(err, fmt.Sprintf(`cannot split source %s`, src))
	}

	f.logger.TraceContext(ctx, fmt.Sprintf(`Splitting produced %d bundles`, len(bundles)))

	shards := make([]*api.SplitShard, 0, len(bundles))
	for _, bundle := range bundles {
		if err := bundle.Validate(); err != nil {
			return nil, errors.WithPrevious(err, fmt.Sprintf(
				"Splitting a valid source produced an invalid bundle. \nOriginal source: %s\nInvalid bundle: %s", src, bundle))
		}

		encoded, err := f.codec.Serialize(bundle, f.options)
		if err != nil {
			return nil, err
		}
		encoded.DoesNotNeedSplitting = true

		shards = append(shards, &api.SplitShard{
			DerivationMode: api.DerivationModeIndependent,
			Source:         encoded,
		})
	}

	f.metrics.splitShards.Count(float64(len(shards)), map[string]string{`source_type`: src.SourceType()})

	return &api.SplitResponse{
		Outcome: api.SplitOutcomeSplittingHappened,
		Shards:  shards,
	}, nil
}
