package kafka

import (
	"fmt"

	"github.com/Shopify/sarama"
	"github.com/tryfix/errors"
	"github.com/tryfix/log"
)

// OffsetLister reports the readable offset range of topic partitions.
type OffsetLister interface {
	Partitions(topic string) ([]int32, error)
	// Offsets returns the oldest available offset and the offset the next record will get.
	Offsets(topic string, partition int32) (oldest, newest int64, err error)
	Close() error
}

type saramaOffsetLister struct {
	client sarama.Client
	logger log.Logger
}

func NewOffsetLister(config *Config) (OffsetLister, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}

	client, err := sarama.NewClient(config.BootstrapServers, config.Config)
	if err != nil {
		return nil, errors.WithPrevious(err, `cannot create kafka client`)
	}

	return &saramaOffsetLister{
		client: client,
		logger: config.Logger.NewLog(log.Prefixed(`offset-lister`)),
	}, nil
}

func (l *saramaOffsetLister) Partitions(topic string) ([]int32, error) {
	pts, err := l.client.Partitions(topic)
	if err != nil {
		return nil, errors.WithPrevious(err, fmt.Sprintf(`cannot get partitions of %s`, topic))
	}

	return pts, nil
}

func (l *saramaOffsetLister) Offsets(topic string, partition int32) (oldest, newest int64, err error) {
	oldest, err = l.client.GetOffset(topic, partition, sarama.OffsetOldest)
	if err != nil {
		return 0, 0, errors.WithPrevious(err, fmt.Sprintf(`cannot get oldest offset of %s_%d`, topic, partition))
	}

	newest, err = l.client.GetOffset(topic, partition, sarama.OffsetNewest)
	if err != nil {
		return 0, 0, errors.WithPrevious(err, fmt.Sprintf(`cannot get newest offset of %s_%d`, topic, partition))
	}

	return oldest, newest, nil
}

func (l *saramaOffsetLister) Close() error {
	if err := l.client.Close(); err != nil {
		l.logger.Warn(fmt.Sprintf(`kafka client cannot close : %+v`, err))
		return err
	}

	return nil
}

// PartitionSources snapshots every partition of topic into a source covering what is currently
// readable. Records produced afterwards are not part of any returned source.
func PartitionSources(lister OffsetLister, topic string, averageRecordBytes int64, fetchers FetcherBuilder) ([]*Source, error) {
	pts, err := lister.Partitions(topic)
	if err != nil {
		return nil, err
	}

	sources := make([]*Source, 0, len(pts))
	for _, pt := range pts {
		oldest, newest, err := lister.Offsets(topic, pt)
		if err != nil {
			return nil, err
		}

		src := NewSource(topic, pt, oldest, newest, averageRecordBytes, fetchers)
		if err := src.Validate(); err != nil {
			return nil, errors.WithPrevious(err, fmt.Sprintf(`invalid range for %s_%d`, topic, pt))
		}

		sources = append(sources, src)
	}

	return sources, nil
}
