/**
 * Copyright 2020 TryFix Engineering.
 * All rights reserved.
 * Authors:
 *    Gayan Yapa (gmbyapa@gmail.com)
 */

package format

import (
	"context"
	"time"

	"github.com/tryfix/errors"
	"github.com/tryfix/log"
	"github.com/tryfix/metrics"
	"github.com/tryfix/sourceformat/api"
	"github.com/tryfix/sourceformat/source"
)

var ErrUnsupportedOperation = errors.New(`unknown source operation request`)

// SourceFormat executes source operations against sources encoded by its Codec.
type SourceFormat struct {
	options *source.Options
	codec   *Codec
	logger  log.Logger
	metrics struct {
		operationLatency metrics.Observer
		splitShards      metrics.Counter
		readElements     metrics.Counter
	}
}

func NewSourceFormat(options *source.Options, codec *Codec) *SourceFormat {
	options = options.Normalize()

	f := &SourceFormat{
		options: options,
		codec:   codec,
		logger:  options.Logger.NewLog(log.Prefixed(`source-format`)),
	}

	f.metrics.operationLatency = options.MetricsReporter.Observer(metrics.MetricConf{
		Path:   `source_operation_latency_microseconds`,
		Labels: []string{`operation`},
	})
	f.metrics.splitShards = options.MetricsReporter.Counter(metrics.MetricConf{
		Path:   `source_split_shards`,
		Labels: []string{`source_type`},
	})
	f.metrics.readElements = options.MetricsReporter.Counter(metrics.MetricConf{
		Path:   `source_reader_elements`,
		Labels: []string{`source_type`},
	})

	return f
}

func (f *SourceFormat) Codec() *Codec {
	return f.codec
}

// PerformSourceOperation runs exactly one operation. The response kind always mirrors the request kind.
func (f *SourceFormat) PerformSourceOperation(ctx context.Context, request *api.OperationRequest) (*api.OperationResponse, error) {
	if request == nil {
		return nil, ErrUnsupportedOperation
	}

	defer func(begin time.Time) {
		f.metrics.operationLatency.Observe(float64(time.Since(begin).Nanoseconds()/1e3), map[string]string{
			`operation`: request.Kind.String(),
		})
	}(time.Now())

	switch request.Kind {
	case api.OperationGetMetadata:
		res, err := f.performGetMetadata(ctx, request.GetMetadata)
		if err != nil {
			return nil, err
		}
		return &api.OperationResponse{Kind: request.Kind, GetMetadata: res}, nil

	case api.OperationSplit:
		res, err := f.performSplit(ctx, request.Split)
		if err != nil {
			return nil, err
		}
		return &api.OperationResponse{Kind: request.Kind, Split: res}, nil

	case api.OperationUnknown:
	}

	return nil, ErrUnsupportedOperation
}

// invalidSourceError marks failures caused by the source descriptor a request carried, as opposed
// to failures of the decoded source itself.
type invalidSourceError struct {
	err error
}

func (e *invalidSourceError) Error() string {
	return e.err.Error()
}

func isInvalidSource(err error) bool {
	_, ok := err.(*invalidSourceError)
	return ok
}

func (f *SourceFormat) decodeRequestSource(src *api.Source) (source.Source, error) {
	if src == nil || src.Spec == nil {
		return nil, &invalidSourceError{err: errors.New(`operation request carries no source`)}
	}

	decoded, err := f.codec.Deserialize(src.Spec)
	if err != nil {
		return nil, &invalidSourceError{err: err}
	}

	return decoded, nil
}
