package kafka

import (
	"context"
	"hash"
	"hash/fnv"
	"sync"

	"github.com/tryfix/sourceformat/data"
)

// MockProducer appends records to MockTopics, choosing the partition by key hash.
type MockProducer struct {
	mu     *sync.Mutex
	hasher hash.Hash32
	topics *MockTopics
}

func NewMockProducer(topics *MockTopics) *MockProducer {
	return &MockProducer{
		mu:     new(sync.Mutex),
		hasher: fnv.New32a(),
		topics: topics,
	}
}

func (mp *MockProducer) Produce(_ context.Context, message *data.Record) (partition int32, offset int64, err error) {
	topic, err := mp.topics.Topic(message.Topic)
	if err != nil {
		return 0, 0, err
	}

	mp.mu.Lock()
	mp.hasher.Reset()
	_, err = mp.hasher.Write(message.Key)
	sum := mp.hasher.Sum32()
	mp.mu.Unlock()
	if err != nil {
		return 0, 0, err
	}

	p := int32(int64(sum) % int64(len(topic.partitions)))
	pt, err := topic.Partition(p)
	if err != nil {
		return 0, 0, err
	}

	message.Partition = p
	pt.Append(message)

	return p, message.Offset, nil
}

func (mp *MockProducer) Close() error {
	return nil
}
