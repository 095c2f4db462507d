package source

import (
	"context"
	"fmt"

	"github.com/tryfix/errors"
	"github.com/tryfix/sourceformat/encoding"
)

const MockSourceType = `mock`

// MockSource is a configurable Source for tests. Every field survives encoding so decoded
// copies misbehave the same way.
type MockSource struct {
	Name             string `json:"name"`
	Elements         []int  `json:"elements"`
	ElementSizeBytes int64  `json:"element_size_bytes"`
	Sorted           bool   `json:"sorted"`
	Invalid          bool   `json:"invalid"`
	// InvalidBundles marks bundle indexes returned by SplitIntoBundles as invalid.
	InvalidBundles []int  `json:"invalid_bundles,omitempty"`
	EstimateErr    string `json:"estimate_err,omitempty"`
	SortedErr      string `json:"sorted_err,omitempty"`
	SplitErr       string `json:"split_err,omitempty"`
	StartErr       string `json:"start_err,omitempty"`
	// AdvanceErrAt fails the n-th Advance call (1 based). Zero disables.
	AdvanceErrAt int `json:"advance_err_at,omitempty"`
}

func MockSourceEncoder() encoding.Builder {
	return encoding.NewJsonEncoder(func() interface{} { return new(MockSource) })
}

func (m *MockSource) Validate() error {
	if m.Invalid {
		return errors.Errorf(`mock source [%s] is invalid`, m.Name)
	}

	return nil
}

func (m *MockSource) CreateReader(_ context.Context, _ *Options) (Reader, error) {
	r := NewMockReader(m.Elements)
	if m.StartErr != `` {
		r.StartErr = errors.New(m.StartErr)
	}
	if m.AdvanceErrAt > 0 {
		r.AdvanceErrAt = m.AdvanceErrAt
		r.AdvanceErr = errors.New(`mock advance failure`)
	}

	return r, nil
}

func (m *MockSource) SplitIntoBundles(desiredBundleSizeBytes int64, _ *Options) ([]Source, error) {
	if m.SplitErr != `` {
		return nil, errors.New(m.SplitErr)
	}

	perBundle := 1
	if m.ElementSizeBytes > 0 && desiredBundleSizeBytes > m.ElementSizeBytes {
		perBundle = int(desiredBundleSizeBytes / m.ElementSizeBytes)
	}

	var bundles []Source
	for i := 0; i*perBundle < len(m.Elements); i++ {
		from := i * perBundle
		to := from + perBundle
		if to > len(m.Elements) {
			to = len(m.Elements)
		}

		b := &MockSource{
			Name:             fmt.Sprintf(`%s[%d]`, m.Name, i),
			Elements:         append([]int(nil), m.Elements[from:to]...),
			ElementSizeBytes: m.ElementSizeBytes,
			Sorted:           m.Sorted,
		}

		for _, idx := range m.InvalidBundles {
			if idx == i {
				b.Invalid = true
			}
		}

		bundles = append(bundles, b)
	}

	if len(bundles) == 0 {
		bundles = append(bundles, m)
	}

	return bundles, nil
}

func (m *MockSource) EstimatedSizeBytes(_ *Options) (int64, error) {
	if m.EstimateErr != `` {
		return 0, errors.New(m.EstimateErr)
	}

	return int64(len(m.Elements)) * m.ElementSizeBytes, nil
}

func (m *MockSource) ProducesSortedKeys(_ *Options) (bool, error) {
	if m.SortedErr != `` {
		return false, errors.New(m.SortedErr)
	}

	return m.Sorted, nil
}

func (m *MockSource) SourceType() string {
	return MockSourceType
}

func (m *MockSource) String() string {
	return fmt.Sprintf(`MockSource{name: %s, elements: %d}`, m.Name, len(m.Elements))
}

// MockReader reads a fixed slice and counts every call made to it.
type MockReader struct {
	elements     []int
	pos          int
	Starts       int
	Advances     int
	Currents     int
	Closes       int
	StartErr     error
	AdvanceErr   error
	AdvanceErrAt int
}

func NewMockReader(elements []int) *MockReader {
	return &MockReader{elements: elements, pos: -1}
}

func (r *MockReader) Start() (bool, error) {
	r.Starts++
	if r.StartErr != nil {
		return false, r.StartErr
	}

	r.pos = 0
	return r.pos < len(r.elements), nil
}

func (r *MockReader) Advance() (bool, error) {
	r.Advances++
	if r.AdvanceErr != nil && r.Advances == r.AdvanceErrAt {
		return false, r.AdvanceErr
	}

	r.pos++
	return r.pos < len(r.elements), nil
}

func (r *MockReader) Current() (interface{}, error) {
	r.Currents++
	if r.pos < 0 || r.pos >= len(r.elements) {
		return nil, errors.New(`no current element`)
	}

	return r.elements[r.pos], nil
}

func (r *MockReader) Close() error {
	r.Closes++
	return nil
}
