package kafka

import (
	"context"
	"fmt"

	"github.com/tryfix/errors"
	"github.com/tryfix/sourceformat/data"
	"github.com/tryfix/sourceformat/encoding"
	"github.com/tryfix/sourceformat/runner"
)

// NewSink returns an emitter that writes every element it receives to topic. Records keep their
// key, value and headers. Any other element is written as the value, encoded by values.
func NewSink(producer Producer, topic string, values encoding.Encoder) runner.Emitter {
	return func(ctx context.Context, shard int, element interface{}) error {
		rec, err := toRecord(element, values)
		if err != nil {
			return errors.WithPrevious(err, fmt.Sprintf(`cannot emit element of shard %d`, shard))
		}
		rec.Topic = topic

		if _, _, err := producer.Produce(ctx, rec); err != nil {
			return errors.WithPrevious(err, fmt.Sprintf(`cannot emit element of shard %d`, shard))
		}

		return nil
	}
}

func toRecord(element interface{}, values encoding.Encoder) (*data.Record, error) {
	if rec, ok := element.(*data.Record); ok {
		return &data.Record{
			Key:       rec.Key,
			Value:     rec.Value,
			Timestamp: rec.Timestamp,
			Headers:   rec.Headers,
			UUID:      rec.UUID,
		}, nil
	}

	if values == nil {
		return nil, errors.Errorf(`no value encoder for %T`, element)
	}

	byt, err := values.Encode(element)
	if err != nil {
		return nil, err
	}

	return &data.Record{Value: byt}, nil
}
