package kafka

import (
	"context"
	"fmt"

	"github.com/tryfix/errors"
	"github.com/tryfix/sourceformat/data"
	"github.com/tryfix/sourceformat/encoding"
	"github.com/tryfix/sourceformat/source"
)

const SourceType = `kafka`

// Source reads offsets [StartOffset, EndOffset) of one topic partition.
type Source struct {
	Topic              string `json:"topic"`
	Partition          int32  `json:"partition"`
	StartOffset        int64  `json:"start_offset"`
	EndOffset          int64  `json:"end_offset"`
	AverageRecordBytes int64  `json:"average_record_bytes"`

	fetchers FetcherBuilder
}

func NewSource(topic string, partition int32, start, end, averageRecordBytes int64, fetchers FetcherBuilder) *Source {
	return &Source{
		Topic:              topic,
		Partition:          partition,
		StartOffset:        start,
		EndOffset:          end,
		AverageRecordBytes: averageRecordBytes,
		fetchers:           fetchers,
	}
}

type encoder struct {
	json     encoding.Encoder
	fetchers FetcherBuilder
}

// Encoder attaches fetchers to every decoded source. The builder itself never leaves the process.
func Encoder(fetchers FetcherBuilder) encoding.Builder {
	jsonBuilder := encoding.NewJsonEncoder(func() interface{} { return new(Source) })
	return func() encoding.Encoder {
		return &encoder{json: jsonBuilder(), fetchers: fetchers}
	}
}

func (e *encoder) Encode(v interface{}) ([]byte, error) {
	return e.json.Encode(v)
}

func (e *encoder) Decode(byt []byte) (interface{}, error) {
	v, err := e.json.Decode(byt)
	if err != nil {
		return nil, err
	}

	src := v.(*Source)
	src.fetchers = e.fetchers

	return src, nil
}

func (s *Source) Validate() error {
	if s.Topic == `` {
		return errors.New(`topic cannot be empty`)
	}

	if s.Partition < 0 {
		return errors.Errorf(`invalid partition %d`, s.Partition)
	}

	if s.StartOffset < 0 || s.StartOffset > s.EndOffset {
		return errors.Errorf(`invalid offset range [%d, %d)`, s.StartOffset, s.EndOffset)
	}

	if s.AverageRecordBytes < 1 {
		return errors.New(`average record size should be greater than zero`)
	}

	return nil
}

func (s *Source) CreateReader(ctx context.Context, _ *source.Options) (source.Reader, error) {
	if s.fetchers == nil {
		return nil, errors.Errorf(`no fetcher configured for %s`, s)
	}

	return &reader{ctx: ctx, source: s}, nil
}

func (s *Source) SplitIntoBundles(desiredBundleSizeBytes int64, _ *source.Options) ([]source.Source, error) {
	perBundle := desiredBundleSizeBytes / s.AverageRecordBytes
	if perBundle < 1 {
		perBundle = 1
	}

	var bundles []source.Source
	for start := s.StartOffset; start < s.EndOffset; {
		end := s.EndOffset
		if perBundle < s.EndOffset-start {
			end = start + perBundle
		}
		bundles = append(bundles, NewSource(s.Topic, s.Partition, start, end, s.AverageRecordBytes, s.fetchers))
		start = end
	}

	if len(bundles) == 0 {
		return []source.Source{s}, nil
	}

	return bundles, nil
}

func (s *Source) EstimatedSizeBytes(_ *source.Options) (int64, error) {
	return (s.EndOffset - s.StartOffset) * s.AverageRecordBytes, nil
}

// ProducesSortedKeys is false: records are ordered by offset, not by key.
func (s *Source) ProducesSortedKeys(_ *source.Options) (bool, error) {
	return false, nil
}

func (s *Source) SourceType() string {
	return SourceType
}

func (s *Source) String() string {
	return fmt.Sprintf(`kafka.Source{%s[%d] offsets: [%d, %d)}`, s.Topic, s.Partition, s.StartOffset, s.EndOffset)
}

type reader struct {
	ctx     context.Context
	source  *Source
	fetcher PartitionFetcher
	current *data.Record
}

func (r *reader) Start() (bool, error) {
	if r.source.StartOffset >= r.source.EndOffset {
		return false, nil
	}

	fetcher, err := r.source.fetchers(r.source.Topic, r.source.Partition, r.source.StartOffset)
	if err != nil {
		return false, err
	}
	r.fetcher = fetcher

	return r.fetch()
}

// Advance never fetches past EndOffset, a fetch there would block until new records arrive.
func (r *reader) Advance() (bool, error) {
	if r.current == nil || r.current.Offset+1 >= r.source.EndOffset {
		r.current = nil
		return false, nil
	}

	return r.fetch()
}

func (r *reader) fetch() (bool, error) {
	rec, err := r.fetcher.Fetch(r.ctx)
	if err != nil {
		r.current = nil
		return false, err
	}

	if rec.Offset >= r.source.EndOffset {
		r.current = nil
		return false, nil
	}

	r.current = rec
	return true, nil
}

func (r *reader) Current() (interface{}, error) {
	if r.current == nil {
		return nil, errors.New(`no current record`)
	}

	return r.current, nil
}

func (r *reader) Close() error {
	if r.fetcher == nil {
		return nil
	}

	return r.fetcher.Close()
}
