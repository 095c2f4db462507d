package format

import (
	"context"
	"fmt"

	"github.com/tryfix/errors"
	"github.com/tryfix/sourceformat/api"
)

func (f *SourceFormat) performGetMetadata(ctx context.Context, request *api.GetMetadataRequest) (*api.GetMetadataResponse, error) {
	if request == nil {
		return nil, ErrUnsupportedOperation
	}

	src, err := f.decodeRequestSource(request.Source)
	if err != nil {
		return nil, err
	}

	sorted, err := src.ProducesSortedKeys(f.options)
	if err != nil {
		return nil, errors.WithPrevious(err, fmt.Sprintf(`cannot determine key order of source %s`, src))
	}

	size, err := src.EstimatedSizeBytes(f.options)
	if err != nil {
		return nil, errors.WithPrevious(err, fmt.Sprintf(`cannot estimate size of source %s`, src))
	}

	f.logger.TraceContext(ctx, fmt.Sprintf(`metadata of %s: sorted=%t size=%d`, src, sorted, size))

	return &api.GetMetadataResponse{
		Metadata: &api.SourceMetadata{
			ProducesSortedKeys: sorted,
			EstimatedSizeBytes: &size,
		},
	}, nil
}
