package kafka

import (
	"context"
	"fmt"

	"github.com/Shopify/sarama"
	"github.com/tryfix/errors"
	"github.com/tryfix/log"
	"github.com/tryfix/sourceformat/data"
)

// PartitionFetcher pulls records of one partition in offset order.
type PartitionFetcher interface {
	// Fetch blocks until the next record is available or ctx is done.
	Fetch(ctx context.Context) (*data.Record, error)
	Close() error
}

// FetcherBuilder opens a fetcher positioned at offset.
type FetcherBuilder func(topic string, partition int32, offset int64) (PartitionFetcher, error)

type saramaFetcher struct {
	consumer  sarama.Consumer
	partition sarama.PartitionConsumer
	logger    log.Logger
}

// NewFetcherBuilder returns a builder backed by sarama partition consumers. Each fetcher owns its
// own consumer so sessions never share connections.
func NewFetcherBuilder(config *Config) (FetcherBuilder, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}

	logger := config.Logger.NewLog(log.Prefixed(`kafka-fetcher`))

	return func(topic string, partition int32, offset int64) (PartitionFetcher, error) {
		consumer, err := sarama.NewConsumer(config.BootstrapServers, config.Config)
		if err != nil {
			return nil, errors.WithPrevious(err, `new consumer failed`)
		}

		pc, err := consumer.ConsumePartition(topic, partition, offset)
		if err != nil {
			if cErr := consumer.Close(); cErr != nil {
				logger.Error(cErr)
			}
			return nil, errors.WithPrevious(err, fmt.Sprintf(`cannot initiate partition consumer for %s_%d`, topic, partition))
		}

		return &saramaFetcher{
			consumer:  consumer,
			partition: pc,
			logger:    logger,
		}, nil
	}, nil
}

func (f *saramaFetcher) Fetch(ctx context.Context) (*data.Record, error) {
	select {
	case msg, ok := <-f.partition.Messages():
		if !ok {
			return nil, errors.New(`partition consumer closed`)
		}
		return data.FromConsumerMessage(msg), nil
	case err, ok := <-f.partition.Errors():
		if !ok {
			return nil, errors.New(`partition consumer closed`)
		}
		return nil, errors.WithPrevious(err, `partition consumer error`)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (f *saramaFetcher) Close() error {
	if err := f.partition.Close(); err != nil {
		f.logger.Warn(fmt.Sprintf(`partition consumer error while closing [%s]`, err))
	}

	return f.consumer.Close()
}
