package data

import (
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/Shopify/sarama"
	"github.com/google/uuid"
)

func TestRecord_RecordKey(t *testing.T) {
	rec := Record{
		Key:   []byte(`k`),
		Value: []byte(`v`),
	}
	if !reflect.DeepEqual(rec.RecordKey(), []byte(`k`)) {
		t.Fail()
	}
	if !reflect.DeepEqual(rec.RecordValue(), []byte(`v`)) {
		t.Fail()
	}
}

func TestRecord_String(t *testing.T) {
	r := Record{
		Offset:    1000,
		Topic:     `test`,
		Partition: 1,
	}
	if r.String() != fmt.Sprintf(`%s_%d_%d`, r.Topic, r.Partition, r.Offset) {
		t.Fail()
	}
}

func TestFromConsumerMessage(t *testing.T) {
	ts := time.Unix(1600000000, 0)
	msg := &sarama.ConsumerMessage{
		Key:       []byte(`k`),
		Value:     []byte(`v`),
		Topic:     `events`,
		Partition: 2,
		Offset:    42,
		Timestamp: ts,
		Headers:   []*sarama.RecordHeader{{Key: []byte(`h`), Value: []byte(`1`)}},
	}

	rec := FromConsumerMessage(msg)
	if rec.UUID == uuid.Nil {
		t.Error(`record uuid not set`)
	}

	rec.UUID = uuid.Nil
	want := &Record{
		Key:       []byte(`k`),
		Value:     []byte(`v`),
		Topic:     `events`,
		Partition: 2,
		Offset:    42,
		Timestamp: ts,
		Headers:   msg.Headers,
	}
	if !reflect.DeepEqual(rec, want) {
		t.Errorf("FromConsumerMessage() = %+v, want %+v", rec, want)
	}
}
