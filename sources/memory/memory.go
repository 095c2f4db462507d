/**
 * Copyright 2020 TryFix Engineering.
 * All rights reserved.
 * Authors:
 *    Gayan Yapa (gmbyapa@gmail.com)
 */

package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/tryfix/errors"
	"github.com/tryfix/sourceformat/encoding"
	"github.com/tryfix/sourceformat/source"
)

const SourceType = `memory`

// Source reads Values[From:To] in order.
type Source struct {
	Name             string  `json:"name"`
	Values           []int64 `json:"values"`
	From             int     `json:"from"`
	To               int     `json:"to"`
	ElementSizeBytes int64   `json:"element_size_bytes"`
}

func NewSource(name string, elementSizeBytes int64, values ...int64) *Source {
	return &Source{
		Name:             name,
		Values:           values,
		From:             0,
		To:               len(values),
		ElementSizeBytes: elementSizeBytes,
	}
}

func Encoder() encoding.Builder {
	return encoding.NewJsonEncoder(func() interface{} { return new(Source) })
}

func (s *Source) Validate() error {
	if s.From < 0 || s.From > s.To {
		return errors.Errorf(`invalid range [%d, %d)`, s.From, s.To)
	}

	if s.To > len(s.Values) {
		return errors.Errorf(`range end %d exceeds %d values`, s.To, len(s.Values))
	}

	if s.ElementSizeBytes < 1 {
		return errors.New(`element size should be greater than zero`)
	}

	return nil
}

func (s *Source) CreateReader(_ context.Context, _ *source.Options) (source.Reader, error) {
	return &reader{source: s, pos: s.From - 1}, nil
}

// SplitIntoBundles cuts the range into contiguous bundles of desiredBundleSizeBytes worth of
// elements, at least one element each.
func (s *Source) SplitIntoBundles(desiredBundleSizeBytes int64, _ *source.Options) ([]source.Source, error) {
	perBundle := desiredBundleSizeBytes / s.ElementSizeBytes
	if perBundle < 1 {
		perBundle = 1
	}

	var bundles []source.Source
	for from := s.From; from < s.To; {
		to := s.To
		if perBundle < int64(s.To-from) {
			to = from + int(perBundle)
		}

		bundles = append(bundles, &Source{
			Name:             s.Name,
			Values:           s.Values[from:to],
			From:             0,
			To:               to - from,
			ElementSizeBytes: s.ElementSizeBytes,
		})
		from = to
	}

	if len(bundles) == 0 {
		return []source.Source{s}, nil
	}

	return bundles, nil
}

func (s *Source) EstimatedSizeBytes(_ *source.Options) (int64, error) {
	return int64(s.To-s.From) * s.ElementSizeBytes, nil
}

func (s *Source) ProducesSortedKeys(_ *source.Options) (bool, error) {
	values := s.Values[s.From:s.To]
	return sort.SliceIsSorted(values, func(i, j int) bool { return values[i] < values[j] }), nil
}

func (s *Source) SourceType() string {
	return SourceType
}

func (s *Source) String() string {
	return fmt.Sprintf(`memory.Source{name: %s, range: [%d, %d)}`, s.Name, s.From, s.To)
}

type reader struct {
	source *Source
	pos    int
}

func (r *reader) Start() (bool, error) {
	r.pos = r.source.From
	return r.pos < r.source.To, nil
}

func (r *reader) Advance() (bool, error) {
	r.pos++
	return r.pos < r.source.To, nil
}

func (r *reader) Current() (interface{}, error) {
	if r.pos < r.source.From || r.pos >= r.source.To {
		return nil, errors.New(`no current element`)
	}

	return r.source.Values[r.pos], nil
}

func (r *reader) Close() error {
	return nil
}
