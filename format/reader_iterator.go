package format

import (
	"fmt"

	"github.com/tryfix/errors"
	"github.com/tryfix/metrics"
	"github.com/tryfix/sourceformat/source"
)

var (
	// ErrExhausted is returned by Next once the reader has no more elements.
	ErrExhausted = errors.New(`reader iterator exhausted`)

	// ErrBroken is returned after the underlying reader failed. The iterator still has to be closed.
	ErrBroken = errors.New(`reader iterator unusable after a read failure`)

	ErrCopyUnsupported = errors.New(`reader iterator copy is not supported`)

	// ErrClosed is returned by HasNext and Next once Close was called.
	ErrClosed = errors.New(`reader iterator closed`)
)

type iteratorState int

const (
	stateNotStarted iteratorState = iota
	statePrimed
	stateExhausted
	stateBroken
)

func (s iteratorState) String() string {
	switch s {
	case statePrimed:
		return `primed`
	case stateExhausted:
		return `exhausted`
	case stateBroken:
		return `broken`
	}

	return `not_started`
}

// Progress is the position report of a running iterator.
type Progress struct {
	FractionConsumed float64
}

type DynamicSplitRequest struct {
	FractionConsumed float64
}

type DynamicSplitResult struct {
	Residual *Progress
}

// ReaderIterator adapts a source.Reader to a look-ahead iterator. HasNext starts the reader on
// first use and afterwards only reports the buffered state; Next hands out the buffered element
// and advances the reader once. Every element costs exactly one Start or Advance call.
type ReaderIterator struct {
	source  source.Source
	reader  source.Reader
	state   iteratorState
	next    interface{}
	closed  bool
	counter metrics.Counter
}

func NewReaderIterator(src source.Source, reader source.Reader) *ReaderIterator {
	return &ReaderIterator{
		source:  src,
		reader:  reader,
		state:   stateNotStarted,
		counter: metrics.NoopReporter().Counter(metrics.MetricConf{Path: `source_reader_elements`}),
	}
}

func (i *ReaderIterator) withCounter(c metrics.Counter) *ReaderIterator {
	i.counter = c
	return i
}

func (i *ReaderIterator) HasNext() (bool, error) {
	if i.closed {
		return false, ErrClosed
	}

	switch i.state {
	case stateNotStarted:
		if err := i.start(); err != nil {
			return false, err
		}
	case stateBroken:
		return false, ErrBroken
	}

	return i.state == statePrimed, nil
}

func (i *ReaderIterator) Next() (interface{}, error) {
	ok, err := i.HasNext()
	if err != nil {
		return nil, err
	}

	if !ok {
		return nil, ErrExhausted
	}

	res := i.next
	i.next = nil

	if err := i.advance(); err != nil {
		return nil, err
	}

	i.counter.Count(1, map[string]string{`source_type`: i.source.SourceType()})

	return res, nil
}

func (i *ReaderIterator) start() error {
	available, err := i.reader.Start()
	if err != nil {
		i.state = stateBroken
		return errors.WithPrevious(err, fmt.Sprintf(`failed to start reading from source: %s`, i.source))
	}

	return i.buffer(available)
}

func (i *ReaderIterator) advance() error {
	available, err := i.reader.Advance()
	if err != nil {
		i.state = stateBroken
		return errors.WithPrevious(err, fmt.Sprintf(`failed to advance reading from source: %s`, i.source))
	}

	return i.buffer(available)
}

func (i *ReaderIterator) buffer(available bool) error {
	if !available {
		i.state = stateExhausted
		return nil
	}

	current, err := i.reader.Current()
	if err != nil {
		i.state = stateBroken
		return errors.WithPrevious(err, fmt.Sprintf(`failed to read current element from source: %s`, i.source))
	}

	i.next = current
	i.state = statePrimed

	return nil
}

func (i *ReaderIterator) Copy() (*ReaderIterator, error) {
	return nil, ErrCopyUnsupported
}

// Progress is not tracked, callers get nil.
func (i *ReaderIterator) Progress() *Progress {
	return nil
}

// RequestDynamicSplit always declines.
func (i *ReaderIterator) RequestDynamicSplit(_ DynamicSplitRequest) *DynamicSplitResult {
	return nil
}

// Close releases the reader. Calling it again is a no-op.
func (i *ReaderIterator) Close() error {
	if i.closed {
		return nil
	}
	i.closed = true
	i.next = nil

	if err := i.reader.Close(); err != nil {
		return errors.WithPrevious(err, fmt.Sprintf(`failed to close reader of source: %s`, i.source))
	}

	return nil
}
