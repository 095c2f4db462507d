package format

import (
	"context"
	"fmt"

	"github.com/tryfix/errors"
	"github.com/tryfix/sourceformat/cloud"
	"github.com/tryfix/sourceformat/session"
	"github.com/tryfix/sourceformat/source"
)

// Reader opens reading sessions over one decoded source.
type Reader struct {
	format   *SourceFormat
	source   source.Source
	stepName string
}

// CreateReader decodes spec once. Every call to Iterator opens an independent session on it.
func (f *SourceFormat) CreateReader(stepName string, spec cloud.Object) (*Reader, error) {
	src, err := f.codec.Deserialize(spec)
	if err != nil {
		return nil, err
	}

	return &Reader{
		format:   f,
		source:   src,
		stepName: stepName,
	}, nil
}

func (r *Reader) Source() source.Source {
	return r.source
}

// Iterator opens a new native reader. The caller owns the returned iterator and must close it on
// every exit path.
func (r *Reader) Iterator(ctx context.Context) (*ReaderIterator, error) {
	ctx = session.FromSession(ctx, r.stepName, r.source.String())

	reader, err := r.source.CreateReader(ctx, r.format.options)
	if err != nil {
		return nil, errors.WithPrevious(err, fmt.Sprintf(`cannot create reader for source: %s`, r.source))
	}

	r.format.logger.TraceContext(ctx, fmt.Sprintf(`reading session %s opened on %s`,
		session.MetaFromContext(ctx), r.source))

	return NewReaderIterator(r.source, reader).withCounter(r.format.metrics.readElements), nil
}
