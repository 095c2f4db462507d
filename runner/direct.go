package runner

import (
	"context"
	"fmt"

	"github.com/tryfix/errors"
	"github.com/tryfix/sourceformat/source"
)

// Evaluate reads every element of src in order, the way a direct runner materializes a read.
// The reader is closed on every path.
func Evaluate(ctx context.Context, src source.Source, options *source.Options) (elements []interface{}, err error) {
	options = options.Normalize()

	reader, err := src.CreateReader(ctx, options)
	if err != nil {
		return nil, errors.WithPrevious(err, fmt.Sprintf(`cannot create reader for source: %s`, src))
	}

	defer func() {
		if closeErr := reader.Close(); closeErr != nil && err == nil {
			err = errors.WithPrevious(closeErr, fmt.Sprintf(`cannot close reader for source: %s`, src))
		}
	}()

	available, err := reader.Start()
	for ; err == nil && available; available, err = reader.Advance() {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		v, cErr := reader.Current()
		if cErr != nil {
			return nil, errors.WithPrevious(cErr, fmt.Sprintf(`cannot read from source: %s`, src))
		}
		elements = append(elements, v)
	}

	if err != nil {
		return nil, errors.WithPrevious(err, fmt.Sprintf(`failed reading from source: %s`, src))
	}

	return elements, nil
}
