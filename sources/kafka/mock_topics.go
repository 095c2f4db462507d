package kafka

import (
	"context"
	"sync"
	"time"

	"github.com/Shopify/sarama"
	"github.com/google/uuid"
	"github.com/tryfix/errors"
	"github.com/tryfix/sourceformat/data"
)

type MockPartition struct {
	records []*data.Record
	*sync.Mutex
}

// Append assigns the next offset to r.
func (p *MockPartition) Append(r *data.Record) {
	p.Lock()
	defer p.Unlock()

	r.Offset = int64(len(p.records))
	p.records = append(p.records, r)
}

func (p *MockPartition) Latest() int64 {
	p.Lock()
	defer p.Unlock()

	return int64(len(p.records))
}

func (p *MockPartition) Record(offset int64) (*data.Record, bool) {
	p.Lock()
	defer p.Unlock()

	if offset < 0 || offset >= int64(len(p.records)) {
		return nil, false
	}

	return p.records[offset], true
}

type MockTopic struct {
	Name       string
	partitions []*MockPartition
}

func (tp *MockTopic) Partition(id int32) (*MockPartition, error) {
	if id < 0 || int(id) >= len(tp.partitions) {
		return nil, sarama.ErrUnknownTopicOrPartition
	}

	return tp.partitions[id], nil
}

// MockTopics is an in process stand in for a kafka cluster.
type MockTopics struct {
	*sync.Mutex
	topics map[string]*MockTopic
}

func NewMockTopics() *MockTopics {
	return &MockTopics{
		topics: make(map[string]*MockTopic),
		Mutex:  new(sync.Mutex),
	}
}

func (td *MockTopics) AddTopic(name string, numPartitions int32) error {
	td.Lock()
	defer td.Unlock()

	if _, ok := td.topics[name]; ok {
		return errors.New(`topic already exists`)
	}

	topic := &MockTopic{Name: name, partitions: make([]*MockPartition, numPartitions)}
	for i := range topic.partitions {
		topic.partitions[i] = &MockPartition{Mutex: new(sync.Mutex)}
	}
	td.topics[name] = topic

	return nil
}

func (td *MockTopics) Topic(name string) (*MockTopic, error) {
	td.Lock()
	defer td.Unlock()

	t, ok := td.topics[name]
	if !ok {
		return nil, sarama.ErrUnknownTopicOrPartition
	}

	return t, nil
}

func (td *MockTopics) Produce(topic string, partition int32, key, value []byte) error {
	t, err := td.Topic(topic)
	if err != nil {
		return err
	}

	pt, err := t.Partition(partition)
	if err != nil {
		return err
	}

	pt.Append(&data.Record{
		Key:       key,
		Value:     value,
		Topic:     topic,
		Partition: partition,
		Timestamp: time.Now(),
		UUID:      uuid.New(),
	})

	return nil
}

// MockFetchers counts fetchers opened and closed through its builder.
type MockFetchers struct {
	topics *MockTopics
	mu     *sync.Mutex
	opened int
	closed int
}

func NewMockFetchers(topics *MockTopics) *MockFetchers {
	return &MockFetchers{topics: topics, mu: new(sync.Mutex)}
}

func (m *MockFetchers) Builder() FetcherBuilder {
	return func(topic string, partition int32, offset int64) (PartitionFetcher, error) {
		t, err := m.topics.Topic(topic)
		if err != nil {
			return nil, err
		}

		pt, err := t.Partition(partition)
		if err != nil {
			return nil, err
		}

		m.mu.Lock()
		m.opened++
		m.mu.Unlock()

		return &mockFetcher{partition: pt, offset: offset, fetchers: m}, nil
	}
}

func (m *MockFetchers) Open() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.opened - m.closed
}

func (m *MockFetchers) Opened() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.opened
}

type mockFetcher struct {
	partition *MockPartition
	offset    int64
	fetchers  *MockFetchers
}

// Fetch fails instead of blocking when the partition has no record at the current offset.
func (f *mockFetcher) Fetch(ctx context.Context) (*data.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rec, ok := f.partition.Record(f.offset)
	if !ok {
		return nil, sarama.ErrOffsetOutOfRange
	}
	f.offset++

	return rec, nil
}

func (f *mockFetcher) Close() error {
	f.fetchers.mu.Lock()
	defer f.fetchers.mu.Unlock()

	f.fetchers.closed++
	return nil
}

func (td *MockTopics) Partitions(topic string) ([]int32, error) {
	t, err := td.Topic(topic)
	if err != nil {
		return nil, err
	}

	pts := make([]int32, len(t.partitions))
	for i := range t.partitions {
		pts[i] = int32(i)
	}

	return pts, nil
}

// Offsets reports the full partition, mock partitions never truncate.
func (td *MockTopics) Offsets(topic string, partition int32) (oldest, newest int64, err error) {
	t, err := td.Topic(topic)
	if err != nil {
		return 0, 0, err
	}

	pt, err := t.Partition(partition)
	if err != nil {
		return 0, 0, err
	}

	return 0, pt.Latest(), nil
}

func (td *MockTopics) Close() error {
	return nil
}
